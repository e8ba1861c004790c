// Package scheduler runs the periodic maintenance jobs.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"bharatprint/services"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Schedules use a leading seconds field and are evaluated in UTC.
const (
	SweepSchedule = "0 * * * * *" // every minute
	TrialSchedule = "0 5 0 * * *" // daily at 00:05
	ResetSchedule = "0 0 0 1 * *" // first of the month
)

const jobTimeout = 5 * time.Minute

// cronLogger adapts zap to the cron logger interface.
type cronLogger struct {
	s *zap.SugaredLogger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.s.Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.s.Errorw(msg, append(keysAndValues, "error", err)...)
}

// New registers the document sweeper, trial expiry and monthly usage reset.
// The returned scheduler is not started.
func New(db *gorm.DB, svc *services.Services) (*cron.Cron, error) {
	logger := svc.Logger.Named("scheduler")
	clog := cronLogger{s: logger.Sugar()}
	c := cron.New(
		cron.WithSeconds(),
		cron.WithLocation(time.UTC),
		cron.WithLogger(clog),
		cron.WithChain(cron.Recover(clog), cron.SkipIfStillRunning(clog)),
	)

	jobs := []struct {
		name string
		spec string
		run  func(ctx context.Context) error
	}{
		{"sweep-documents", SweepSchedule, func(ctx context.Context) error {
			_, err := svc.SweepDocuments(ctx, db)
			return err
		}},
		{"check-trials", TrialSchedule, func(ctx context.Context) error {
			_, err := svc.ExpireTrials(ctx, db)
			return err
		}},
		{"reset-usage", ResetSchedule, func(context.Context) error {
			_, err := svc.ResetMonthlyUsage(db)
			return err
		}},
	}

	for _, job := range jobs {
		_, err := c.AddFunc(job.spec, func() {
			ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
			defer cancel()
			if err := job.run(ctx); err != nil {
				logger.Error("Scheduled job failed", zap.String("job", job.name), zap.Error(err))
			}
		})
		if err != nil {
			return nil, fmt.Errorf("failed to add cron job %s: %w", job.name, err)
		}
	}
	return c, nil
}
