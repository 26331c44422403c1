package entities

import "time"

type AuditEventType string

const (
	AuditEventRegister AuditEventType = "register"
	AuditEventAuth     AuditEventType = "auth"
	AuditEventUpdate   AuditEventType = "update"
	AuditEventPublish  AuditEventType = "publish"
	AuditEventDelete   AuditEventType = "delete"
	AuditEventUpload   AuditEventType = "upload"
	AuditEventRequest  AuditEventType = "request"
)

type AuditStatus string

const (
	AuditStatusSuccess AuditStatus = "success"
	AuditStatusFailed  AuditStatus = "failed"
)

type AuditEvent struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	UserID      uint           `gorm:"index" json:"user_id"`
	EventType   AuditEventType `gorm:"index;size:50" json:"event_type"`
	Action      string         `gorm:"size:100" json:"action"`      // e.g., "book_publish", "user_login"
	Description string         `gorm:"size:500" json:"description"` // Human-readable summary
	EntityType  string         `gorm:"size:50" json:"entity_type"`  // "book", "user", "request"
	EntityID    *uint          `gorm:"index" json:"entity_id,omitempty"`
	IPAddress   string         `gorm:"size:45" json:"ip_address,omitempty"`
	RequestID   string         `gorm:"size:36;index" json:"request_id,omitempty"`
	Status      AuditStatus    `gorm:"size:20" json:"status"`
	ErrorMsg    string         `gorm:"size:500" json:"error_msg,omitempty"`
	Metadata    string         `gorm:"type:text" json:"metadata,omitempty"` // JSON object with event specifics
	CreatedAt   time.Time      `gorm:"index" json:"created_at"`
}

func (AuditEvent) TableName() string {
	return "audit_events"
}
