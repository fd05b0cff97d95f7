package scheduler

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/heliumhq/invite-dashboard-api/databases"
)

// JobTimeout bounds a single run of any job
const JobTimeout = 5 * time.Minute

// lockTTL outlives JobTimeout so a lease is never lost mid-run
const lockTTL = 10 * time.Minute

// CodeArchiver archives invite codes that have been used
type CodeArchiver interface {
	ArchiveUsed(ctx context.Context) (int64, error)
}

// WaitlistArchiver archives waitlist entries; no ids means every notified entry
type WaitlistArchiver interface {
	Archive(ctx context.Context, ids []string) (int64, error)
}

// Scheduler handles periodic background maintenance jobs
type Scheduler struct {
	cron       *cron.Cron
	Codes      CodeArchiver
	Waitlist   WaitlistArchiver
	LockDB     databases.SchedulerLockDatabase
	instanceID string
}

// NewScheduler creates a new scheduler instance
func NewScheduler(codes CodeArchiver, waitlist WaitlistArchiver, lockDB databases.SchedulerLockDatabase) *Scheduler {
	// Heroku style dyno names identify the instance; fall back to something unique
	instanceID := os.Getenv("DYNO")
	if instanceID == "" {
		instanceID = fmt.Sprintf("instance-%d", time.Now().UnixNano())
	}

	return &Scheduler{
		cron:       cron.New(cron.WithLocation(time.UTC)),
		Codes:      codes,
		Waitlist:   waitlist,
		LockDB:     lockDB,
		instanceID: instanceID,
	}
}

// Start registers the jobs that have a schedule and starts the cron loop.
// An empty spec leaves that job disabled.
func (s *Scheduler) Start(archiveUsedCodesSpec, archiveNotifiedWaitlistSpec string) error {
	if archiveUsedCodesSpec != "" {
		if _, err := s.cron.AddFunc(archiveUsedCodesSpec, s.ArchiveUsedCodes); err != nil {
			return fmt.Errorf("failed to register archive used codes job: %w", err)
		}
	}
	if archiveNotifiedWaitlistSpec != "" {
		if _, err := s.cron.AddFunc(archiveNotifiedWaitlistSpec, s.ArchiveNotifiedWaitlist); err != nil {
			return fmt.Errorf("failed to register archive waitlist job: %w", err)
		}
	}

	s.cron.Start()
	zap.S().Infow("Maintenance scheduler started", "jobs", len(s.cron.Entries()), "instance", s.instanceID)
	return nil
}

// Stop gracefully stops the scheduler, waiting for running jobs
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	zap.S().Info("Maintenance scheduler stopped")
}

// ArchiveUsedCodes archives every used invite code that is still active
func (s *Scheduler) ArchiveUsedCodes() {
	s.runLocked("archive_used_codes", func(ctx context.Context) (int64, error) {
		return s.Codes.ArchiveUsed(ctx)
	})
}

// ArchiveNotifiedWaitlist archives every waitlist entry that has been notified
func (s *Scheduler) ArchiveNotifiedWaitlist() {
	s.runLocked("archive_notified_waitlist", func(ctx context.Context) (int64, error) {
		return s.Waitlist.Archive(ctx, nil)
	})
}

func (s *Scheduler) runLocked(job string, run func(ctx context.Context) (int64, error)) {
	ctx, cancel := context.WithTimeout(context.Background(), JobTimeout)
	defer cancel()

	if s.LockDB != nil {
		acquired, err := s.LockDB.TryAcquireLock(ctx, job, s.instanceID, lockTTL)
		if err != nil {
			zap.S().Errorw("failed to acquire lock", "job", job, "error", err)
			return
		}
		if !acquired {
			zap.S().Debugw("job already running on another instance, skipping", "job", job)
			return
		}
		defer func() {
			if err := s.LockDB.ReleaseLock(context.WithoutCancel(ctx), job, s.instanceID); err != nil {
				zap.S().Warnw("failed to release lock", "job", job, "error", err)
			}
		}()
	}

	start := time.Now()
	count, err := run(ctx)
	if err != nil {
		zap.S().Errorw("scheduled job failed", "job", job, "error", err)
		return
	}
	zap.S().Infow("scheduled job complete",
		"job", job,
		"archived", count,
		"duration", time.Since(start),
		"instance", s.instanceID,
	)
}
