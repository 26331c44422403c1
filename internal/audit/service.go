// Package audit records security-relevant actions (registration, logins,
// profile changes, publications, deletions, uploads and requests) to the
// audit_events table. Writes happen in the background so they never delay
// or fail a request.
package audit

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	auditRepo "github.com/mrlokans/bookshare/internal/database/audit"
	"github.com/mrlokans/bookshare/internal/entities"
)

// Repository is the persistence the service writes through.
type Repository interface {
	LogEvent(ctx context.Context, event *entities.AuditEvent) error
	GetEvents(ctx context.Context, userID uint, eventType entities.AuditEventType, limit, offset int) ([]entities.AuditEvent, int64, error)
	DeleteOldEvents(ctx context.Context, olderThan time.Time) (int64, error)
}

var _ Repository = (*auditRepo.Repository)(nil)

// Meta carries request-scoped details copied onto every event.
type Meta struct {
	IPAddress string
	RequestID string
}

// Service provides high-level audit logging functionality.
type Service struct {
	repo    Repository
	pending sync.WaitGroup
}

// NewService creates a new audit service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Log records an event synchronously.
func (s *Service) Log(ctx context.Context, event *entities.AuditEvent) error {
	return s.repo.LogEvent(ctx, event)
}

// LogAsync records an audit event in the background (non-blocking).
func (s *Service) LogAsync(event *entities.AuditEvent) {
	s.pending.Add(1)
	go func() {
		defer s.pending.Done()
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.repo.LogEvent(ctx, event); err != nil {
			log.Printf("Failed to log audit event %s: %v", event.Action, err)
		}
	}()
}

// Wait blocks until all background writes have finished.
func (s *Service) Wait() {
	s.pending.Wait()
}

func (s *Service) LogRegister(meta Meta, userID uint, username string, err error) {
	s.LogAsync(newEvent(meta, userID, entities.AuditEventRegister, "user_register",
		"Registered user "+username, "user", userID, nil, err))
}

func (s *Service) LogLogin(meta Meta, userID uint, login string, err error) {
	s.LogAsync(newEvent(meta, userID, entities.AuditEventAuth, "user_login",
		"Login as "+login, "user", userID, nil, err))
}

func (s *Service) LogUpdate(meta Meta, actorID, targetID uint, columns []string, err error) {
	s.LogAsync(newEvent(meta, actorID, entities.AuditEventUpdate, "user_update",
		"Updated user profile", "user", targetID, map[string]any{"columns": columns}, err))
}

func (s *Service) LogPublish(meta Meta, userID, bookID uint, name string, genreIDs []uint, err error) {
	s.LogAsync(newEvent(meta, userID, entities.AuditEventPublish, "book_publish",
		"Published book "+name, "book", bookID, map[string]any{"genres": genreIDs}, err))
}

func (s *Service) LogDelete(meta Meta, userID, bookID uint, err error) {
	s.LogAsync(newEvent(meta, userID, entities.AuditEventDelete, "book_delete",
		"Deleted book", "book", bookID, nil, err))
}

func (s *Service) LogUpload(meta Meta, actorID, targetID uint, size int64, err error) {
	s.LogAsync(newEvent(meta, actorID, entities.AuditEventUpload, "photo_upload",
		"Uploaded profile photo", "user", targetID, map[string]any{"bytes": size}, err))
}

func (s *Service) LogRequest(meta Meta, userID, requestID, bookID uint, err error) {
	s.LogAsync(newEvent(meta, userID, entities.AuditEventRequest, "request_create",
		"Requested book", "request", requestID, map[string]any{"book_id": bookID}, err))
}

// GetEvents retrieves paginated audit events.
func (s *Service) GetEvents(ctx context.Context, userID uint, eventType entities.AuditEventType, limit, offset int) ([]entities.AuditEvent, int64, error) {
	return s.repo.GetEvents(ctx, userID, eventType, limit, offset)
}

// DeleteOldEvents removes events older than the specified duration.
func (s *Service) DeleteOldEvents(ctx context.Context, retention time.Duration) (int64, error) {
	cutoff := time.Now().Add(-retention)
	return s.repo.DeleteOldEvents(ctx, cutoff)
}

func newEvent(meta Meta, userID uint, eventType entities.AuditEventType, action, description, entityType string, entityID uint, metadata map[string]any, err error) *entities.AuditEvent {
	event := &entities.AuditEvent{
		UserID:      userID,
		EventType:   eventType,
		Action:      action,
		Description: truncate(description, 500),
		EntityType:  entityType,
		IPAddress:   meta.IPAddress,
		RequestID:   meta.RequestID,
		Status:      entities.AuditStatusSuccess,
	}
	if entityID != 0 {
		event.EntityID = &entityID
	}
	if len(metadata) > 0 {
		if data, e := json.Marshal(metadata); e == nil {
			event.Metadata = string(data)
		}
	}
	if err != nil {
		event.Status = entities.AuditStatusFailed
		event.ErrorMsg = truncate(err.Error(), 500)
	}
	return event
}

// truncate shortens a string to max length.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
