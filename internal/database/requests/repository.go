// Package requests provides database operations for lending requests.
package requests

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/mrlokans/bookshare/internal/entities"
)

var (
	ErrBookNotFound     = errors.New("requested book not found")
	ErrOwnBook          = errors.New("cannot request own book")
	ErrDuplicateRequest = errors.New("pending request already exists")
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// ListSent returns requests where the user is the requester, newest first.
func (r *Repository) ListSent(ctx context.Context, userID uint) ([]entities.Request, error) {
	return r.list(ctx, "requester_user_id = ?", userID)
}

// ListReceived returns requests where the user is the receiver, newest first.
func (r *Repository) ListReceived(ctx context.Context, userID uint) ([]entities.Request, error) {
	return r.list(ctx, "receiver_user_id = ?", userID)
}

func (r *Repository) list(ctx context.Context, cond string, userID uint) ([]entities.Request, error) {
	requests := make([]entities.Request, 0)
	err := r.db.WithContext(ctx).
		Where(cond, userID).
		Order("created_at DESC, id DESC").
		Find(&requests).Error
	return requests, err
}

// Create opens a pending request from requesterID for bookID. The receiver is
// the book's owner.
func (r *Repository) Create(ctx context.Context, requesterID, bookID uint) (*entities.Request, error) {
	var request *entities.Request

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var book entities.Book
		err := tx.First(&book, bookID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrBookNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to load book: %w", err)
		}
		if book.OwnerID == requesterID {
			return ErrOwnBook
		}

		var pending int64
		err = tx.Model(&entities.Request{}).
			Where("requester_user_id = ? AND book_id = ? AND status = ?", requesterID, bookID, entities.RequestStatusPending).
			Count(&pending).Error
		if err != nil {
			return fmt.Errorf("failed to check existing requests: %w", err)
		}
		if pending > 0 {
			return ErrDuplicateRequest
		}

		request = &entities.Request{
			RequesterUserID: requesterID,
			ReceiverUserID:  book.OwnerID,
			BookID:          book.ID,
			Status:          entities.RequestStatusPending,
		}
		if err := tx.Create(request).Error; err != nil {
			return fmt.Errorf("failed to create request: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return request, nil
}
