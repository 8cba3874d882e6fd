package domain

import (
	"strings"

	"github.com/oklog/ulid/v2"
)

// ParseULID parses a string into a ULID, reporting malformed input as ErrInvalidField
func ParseULID(id string) (ulid.ULID, error) {
	parsedID, err := ulid.Parse(strings.TrimSpace(id))
	if err != nil {
		return ulid.ULID{}, ErrInvalidField.WithMessage("invalid ULID").WithCause(err)
	}
	return parsedID, nil
}
