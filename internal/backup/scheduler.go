package backup

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// ValidateSchedule checks a five-field cron expression.
func ValidateSchedule(schedule string) error {
	_, err := cronParser.Parse(schedule)
	return err
}

// Scheduler runs snapshots on a cron schedule.
type Scheduler struct {
	snapshotter *Snapshotter
	schedule    string

	cron      *cron.Cron
	entryID   cron.EntryID
	mu        sync.RWMutex
	isRunning bool
}

// NewScheduler creates a scheduler; call Start to activate it.
func NewScheduler(snapshotter *Snapshotter, schedule string) *Scheduler {
	return &Scheduler{
		snapshotter: snapshotter,
		schedule:    schedule,
		cron:        cron.New(cron.WithParser(cronParser)),
	}
}

// Start registers the backup job and starts the cron loop. The scheduler
// stops when ctx is cancelled.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}

	if err := ValidateSchedule(s.schedule); err != nil {
		return fmt.Errorf("invalid cron schedule '%s': %w", s.schedule, err)
	}

	entryID, err := s.cron.AddFunc(s.schedule, s.runBackup)
	if err != nil {
		return fmt.Errorf("failed to schedule backup job: %w", err)
	}
	s.entryID = entryID

	s.cron.Start()
	s.isRunning = true

	log.Printf("Backup scheduler: started with schedule '%s'", s.schedule)

	go func() {
		<-ctx.Done()
		s.Stop()
	}()

	return nil
}

// Stop waits for a running backup to finish and stops the scheduler.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}

	<-s.cron.Stop().Done()
	s.isRunning = false

	log.Printf("Backup scheduler: stopped")
}

// NextRun returns when the next backup will occur, or nil when stopped.
func (s *Scheduler) NextRun() *time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.isRunning {
		return nil
	}
	entry := s.cron.Entry(s.entryID)
	if !entry.Valid() {
		return nil
	}
	next := entry.Next
	return &next
}

func (s *Scheduler) runBackup() {
	path, err := s.snapshotter.Snapshot()
	switch {
	case errors.Is(err, ErrNothingToBackUp):
		log.Printf("Backup: skipped (no library file yet)")
	case err != nil:
		log.Printf("Backup: failed: %v", err)
	default:
		log.Printf("Backup: wrote %s", path)
	}
}
