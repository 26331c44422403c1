package entities

import "time"

type RequestStatus string

const (
	RequestStatusPending  RequestStatus = "pending"
	RequestStatusAccepted RequestStatus = "accepted"
	RequestStatusRejected RequestStatus = "rejected"
)

// Request is a lending/exchange request from one user to the owner of a book.
type Request struct {
	ID              uint          `gorm:"primaryKey" json:"id"`
	RequesterUserID uint          `gorm:"index;not null" json:"requester_user_id"`
	ReceiverUserID  uint          `gorm:"index;not null" json:"receiver_user_id"`
	BookID          uint          `gorm:"index" json:"book_id"`
	Status          RequestStatus `gorm:"size:20;not null;default:'pending'" json:"status"`
	CreatedAt       time.Time     `json:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at"`
}

func (Request) TableName() string {
	return "requests"
}
