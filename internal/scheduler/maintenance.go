// Package scheduler runs periodic maintenance on a cron schedule.
package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/mikestefanello/backlite"
	"github.com/robfig/cron/v3"

	"github.com/mrlokans/bookshare/internal/tasks"
)

// DefaultPruneSchedule trims expired login-limiter entries.
const DefaultPruneSchedule = "*/10 * * * *"

// Enqueuer adds tasks to the background queue.
type Enqueuer interface {
	Enqueue(ctx context.Context, task backlite.Task) (string, error)
}

// Pruner drops stale in-memory state.
type Pruner interface {
	Prune() int
}

// MaintenanceScheduler enqueues the orphan-book repair and audit cleanup
// tasks on a cron schedule and prunes the login limiter.
type MaintenanceScheduler struct {
	enqueuer           Enqueuer
	pruner             Pruner
	schedule           string
	auditRetentionDays int

	cron    *cron.Cron
	entryID cron.EntryID
	mu      sync.RWMutex
	running bool
}

// ValidateCronSchedule validates a five-field cron schedule string.
func ValidateCronSchedule(schedule string) error {
	_, err := parser().Parse(schedule)
	return err
}

func parser() cron.Parser {
	return cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
}

// NewMaintenanceScheduler creates a scheduler. Either collaborator may be nil,
// in which case its job is not scheduled.
func NewMaintenanceScheduler(enqueuer Enqueuer, pruner Pruner, schedule string, auditRetentionDays int) *MaintenanceScheduler {
	return &MaintenanceScheduler{
		enqueuer:           enqueuer,
		pruner:             pruner,
		schedule:           schedule,
		auditRetentionDays: auditRetentionDays,
		cron:               cron.New(cron.WithParser(parser())),
	}
}

// Start registers the jobs and starts the cron loop. The scheduler stops when
// ctx is cancelled.
func (s *MaintenanceScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return nil
	}

	if s.enqueuer != nil {
		if err := ValidateCronSchedule(s.schedule); err != nil {
			return fmt.Errorf("invalid cron schedule '%s': %w", s.schedule, err)
		}
		entryID, err := s.cron.AddFunc(s.schedule, func() { s.RunNow(ctx) })
		if err != nil {
			return fmt.Errorf("failed to schedule maintenance job: %w", err)
		}
		s.entryID = entryID
	}

	if s.pruner != nil {
		if _, err := s.cron.AddFunc(DefaultPruneSchedule, s.prune); err != nil {
			return fmt.Errorf("failed to schedule limiter prune: %w", err)
		}
	}

	s.cron.Start()
	s.running = true

	if next := s.nextRunLocked(); next != nil {
		log.Printf("Maintenance scheduler: started with schedule '%s'. Next run: %v", s.schedule, *next)
	} else {
		log.Printf("Maintenance scheduler: started")
	}

	go func() {
		<-ctx.Done()
		s.Stop()
	}()

	return nil
}

// Stop waits for running jobs and halts the scheduler.
func (s *MaintenanceScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}

	<-s.cron.Stop().Done()
	s.running = false

	log.Printf("Maintenance scheduler: stopped")
}

// IsRunning returns whether the scheduler is active.
func (s *MaintenanceScheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running
}

// NextRunTime returns when the next maintenance run will occur.
func (s *MaintenanceScheduler) NextRunTime() *time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.running {
		return nil
	}
	return s.nextRunLocked()
}

func (s *MaintenanceScheduler) nextRunLocked() *time.Time {
	if s.entryID == 0 {
		return nil
	}
	entry := s.cron.Entry(s.entryID)
	if !entry.Valid() {
		return nil
	}
	t := entry.Next
	if t.IsZero() {
		t = entry.Schedule.Next(time.Now())
	}
	return &t
}

// RunNow enqueues both maintenance tasks immediately.
func (s *MaintenanceScheduler) RunNow(ctx context.Context) {
	if s.enqueuer == nil {
		return
	}

	if id, err := s.enqueuer.Enqueue(ctx, tasks.CleanupOrphanBooksTask{}); err != nil {
		log.Printf("Maintenance: failed to enqueue orphan cleanup: %v", err)
	} else {
		log.Printf("Maintenance: enqueued orphan cleanup task %s", id)
	}

	task := tasks.CleanupAuditEventsTask{RetentionDays: s.auditRetentionDays}
	if id, err := s.enqueuer.Enqueue(ctx, task); err != nil {
		log.Printf("Maintenance: failed to enqueue audit cleanup: %v", err)
	} else {
		log.Printf("Maintenance: enqueued audit cleanup task %s", id)
	}
}

func (s *MaintenanceScheduler) prune() {
	if n := s.pruner.Prune(); n > 0 {
		log.Printf("Maintenance: pruned %d login limiter entries", n)
	}
}
