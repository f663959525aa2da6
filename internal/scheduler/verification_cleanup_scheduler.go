package scheduler

import (
	"github.com/robfig/cron/v3"
	"github.com/volunteerhub/portal-backend/pkg/logger"
)

// CodePurger deletes verification codes whose window has closed.
type CodePurger interface {
	PurgeExpired() (int64, error)
}

// VerificationCleanupScheduler purges expired verification codes on a cron schedule.
type VerificationCleanupScheduler struct {
	cron     *cron.Cron
	purger   CodePurger
	schedule string
}

func NewVerificationCleanupScheduler(purger CodePurger, schedule string) *VerificationCleanupScheduler {
	return &VerificationCleanupScheduler{
		cron:     cron.New(),
		purger:   purger,
		schedule: schedule,
	}
}

// Start registers the purge job and starts the cron runner.
func (s *VerificationCleanupScheduler) Start() error {
	if _, err := s.cron.AddFunc(s.schedule, s.RunOnce); err != nil {
		logger.Error("Failed to add cron job for verification cleanup", err, map[string]interface{}{
			"schedule": s.schedule,
		})
		return err
	}

	s.cron.Start()
	logger.Info("Verification cleanup scheduler started", map[string]interface{}{
		"schedule": s.schedule,
	})
	return nil
}

// RunOnce performs a single purge.
func (s *VerificationCleanupScheduler) RunOnce() {
	removed, err := s.purger.PurgeExpired()
	if err != nil {
		logger.Error("Failed to purge expired verification codes", err)
		return
	}
	if removed > 0 {
		logger.Info("Purged expired verification codes", map[string]interface{}{
			"removed": removed,
		})
	}
}

// Stop waits for a running purge to finish.
func (s *VerificationCleanupScheduler) Stop() {
	logger.Info("Stopping verification cleanup scheduler...", nil)
	<-s.cron.Stop().Done()
	logger.Info("Verification cleanup scheduler stopped", nil)
}
