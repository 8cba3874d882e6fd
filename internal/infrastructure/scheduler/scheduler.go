package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron/v2"
	"go.uber.org/zap"
)

// Purger removes verification tokens that can no longer be used
type Purger interface {
	PurgeExpired(ctx context.Context) (int64, error)
}

const purgeJobName = "purge-verification-tokens"

// Scheduler runs the periodic token purge
type Scheduler struct {
	scheduler gocron.Scheduler
	purger    Purger
	timeout   time.Duration
	logger    *zap.Logger
}

func New(purger Purger, logger *zap.Logger) (*Scheduler, error) {
	s, err := gocron.NewScheduler(gocron.WithLogger(zapLogger{logger.Sugar()}))
	if err != nil {
		return nil, fmt.Errorf("error creating scheduler: %w", err)
	}
	return &Scheduler{
		scheduler: s,
		purger:    purger,
		timeout:   time.Minute,
		logger:    logger,
	}, nil
}

// SchedulePurge runs the purge now and then every interval.
// A run still in progress delays the next one instead of overlapping it.
func (s *Scheduler) SchedulePurge(interval time.Duration) error {
	if interval <= 0 {
		return fmt.Errorf("invalid purge interval %s", interval)
	}

	_, err := s.scheduler.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(s.purge),
		gocron.WithName(purgeJobName),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithStartAt(gocron.WithStartImmediately()),
	)
	if err != nil {
		return fmt.Errorf("error scheduling %s: %w", purgeJobName, err)
	}
	return nil
}

func (s *Scheduler) purge() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	if _, err := s.purger.PurgeExpired(ctx); err != nil {
		s.logger.Error("Job failed", zap.String("job", purgeJobName), zap.Error(err))
	}
}

func (s *Scheduler) Start() {
	s.scheduler.Start()
}

// Shutdown stops scheduling and waits for running jobs
func (s *Scheduler) Shutdown() error {
	return s.scheduler.Shutdown()
}

type zapLogger struct {
	log *zap.SugaredLogger
}

func (l zapLogger) Debug(msg string, args ...any) { l.log.Debugw(msg, args...) }
func (l zapLogger) Info(msg string, args ...any)  { l.log.Infow(msg, args...) }
func (l zapLogger) Warn(msg string, args ...any)  { l.log.Warnw(msg, args...) }
func (l zapLogger) Error(msg string, args ...any) { l.log.Errorw(msg, args...) }
