package tasks

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/mikestefanello/backlite"
)

const (
	QueueCleanupOrphanBooks = "cleanup_orphan_books"
	QueueCleanupAuditEvents = "cleanup_audit_events"

	// DefaultAuditRetentionDays applies when a task carries no retention.
	DefaultAuditRetentionDays = 30

	// Finished maintenance tasks stay inspectable through GET /admin/tasks/:id for a day.
	statusRetention = 24 * time.Hour
)

var errNoCleaner = errors.New("cleaner not configured")

// maintenanceQueue is the shared shape of the repair queues: a few attempts,
// payloads kept only for failed runs.
func maintenanceQueue(name string, backoff, timeout time.Duration) backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        name,
		MaxAttempts: 3,
		Backoff:     backoff,
		Timeout:     timeout,
		Retention: &backlite.Retention{
			Duration: statusRetention,
			Data:     &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// OrphanBooksCleaner removes books that have no publication row.
type OrphanBooksCleaner interface {
	DeleteOrphans(ctx context.Context) (int64, error)
}

// CleanupOrphanBooksTask repairs books left behind by partial publish or
// delete sequences. RequestedBy is the admin that triggered it, zero when
// scheduled.
type CleanupOrphanBooksTask struct {
	RequestedBy uint `json:"requested_by,omitempty"`
}

func (t CleanupOrphanBooksTask) Config() backlite.QueueConfig {
	return maintenanceQueue(QueueCleanupOrphanBooks, time.Minute, 5*time.Minute)
}

func CleanupOrphanBooksProcessor(cleaner OrphanBooksCleaner) backlite.QueueProcessor[CleanupOrphanBooksTask] {
	return func(ctx context.Context, task CleanupOrphanBooksTask) error {
		if cleaner == nil {
			return fmt.Errorf("%s: %w", QueueCleanupOrphanBooks, errNoCleaner)
		}

		deleted, err := cleaner.DeleteOrphans(ctx)
		if err != nil {
			return fmt.Errorf("cleanup orphan books: %w", err)
		}

		if task.RequestedBy != 0 {
			log.Printf("[TASK] Removed %d orphan books (requested by user %d)", deleted, task.RequestedBy)
		} else {
			log.Printf("[TASK] Removed %d orphan books", deleted)
		}
		return nil
	}
}

func NewCleanupOrphanBooksQueue(cleaner OrphanBooksCleaner) backlite.Queue {
	return backlite.NewQueue(CleanupOrphanBooksProcessor(cleaner))
}

// AuditEventCleaner deletes audit events older than a retention period.
type AuditEventCleaner interface {
	DeleteOldEvents(ctx context.Context, retention time.Duration) (int64, error)
}

// CleanupAuditEventsTask trims the audit trail of login, profile and book events.
type CleanupAuditEventsTask struct {
	RetentionDays int `json:"retention_days"`
}

func (t CleanupAuditEventsTask) Config() backlite.QueueConfig {
	return maintenanceQueue(QueueCleanupAuditEvents, 5*time.Minute, 2*time.Minute)
}

// Retention is the configured window, or the default when unset.
func (t CleanupAuditEventsTask) Retention() time.Duration {
	days := t.RetentionDays
	if days <= 0 {
		days = DefaultAuditRetentionDays
	}
	return time.Duration(days) * 24 * time.Hour
}

func CleanupAuditEventsProcessor(cleaner AuditEventCleaner) backlite.QueueProcessor[CleanupAuditEventsTask] {
	return func(ctx context.Context, task CleanupAuditEventsTask) error {
		if cleaner == nil {
			return fmt.Errorf("%s: %w", QueueCleanupAuditEvents, errNoCleaner)
		}

		retention := task.Retention()
		deleted, err := cleaner.DeleteOldEvents(ctx, retention)
		if err != nil {
			return fmt.Errorf("cleanup audit events: %w", err)
		}

		log.Printf("[TASK] Removed %d audit events older than %s", deleted, retention)
		return nil
	}
}

func NewCleanupAuditEventsQueue(cleaner AuditEventCleaner) backlite.Queue {
	return backlite.NewQueue(CleanupAuditEventsProcessor(cleaner))
}
