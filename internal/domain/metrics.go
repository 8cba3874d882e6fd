package domain

// OutcomeVerified labels a successful verification attempt
const OutcomeVerified = "verified"

// VerificationRecorder counts verification attempts by outcome, either
// OutcomeVerified or the ErrorKind of the failure.
type VerificationRecorder interface {
	RecordVerificationAttempt(outcome string)
}

// OutcomeOf returns the label a recorder should use for err
func OutcomeOf(err error) string {
	if err == nil {
		return OutcomeVerified
	}
	return string(KindOf(err))
}
