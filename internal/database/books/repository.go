// Package books provides database operations for book listing, publishing
// and deletion.
//
// Publish and DeleteOwned run their dependent writes inside a single
// transaction so a book always exists together with its publication and
// genre links, or not at all.
//
// # Usage
//
//	repo := books.NewRepository(db)
//	book, err := repo.Publish(ctx, books.PublishParams{...})
package books

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/mrlokans/bookshare/internal/entities"
)

var (
	ErrBookNotFound = errors.New("book not found")
	// ErrBookNotOwned covers both a missing book and one published by someone else.
	ErrBookNotOwned = errors.New("book not owned by user or does not exist")
	ErrUnknownGenre = errors.New("unknown genre")
	ErrNoGenres     = errors.New("at least one genre is required")
)

// PublishParams holds everything needed to publish a book.
type PublishParams struct {
	Name        string
	Description string
	Author      string
	Location    string
	OwnerID     uint
	GenreIDs    []uint
}

// Repository handles all book database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new books repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// List returns every book ordered by ID.
func (r *Repository) List(ctx context.Context) ([]entities.Book, error) {
	books := make([]entities.Book, 0)
	err := r.db.WithContext(ctx).Order("id ASC").Find(&books).Error
	return books, err
}

// GetByID retrieves a book by its ID.
func (r *Repository) GetByID(ctx context.Context, id uint) (*entities.Book, error) {
	var book entities.Book
	err := r.db.WithContext(ctx).First(&book, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrBookNotFound
	}
	if err != nil {
		return nil, err
	}
	return &book, nil
}

// ListPublishedBy returns the books the user has a publication for.
func (r *Repository) ListPublishedBy(ctx context.Context, userID uint) ([]entities.Book, error) {
	books := make([]entities.Book, 0)
	err := r.db.WithContext(ctx).
		Joins("INNER JOIN publications ON publications.id_book = books.id").
		Where("publications.id_user = ?", userID).
		Order("books.id ASC").
		Find(&books).Error
	return books, err
}

// GenreIDs returns the genre ids linked to a book, ascending.
func (r *Repository) GenreIDs(ctx context.Context, bookID uint) ([]uint, error) {
	ids := make([]uint, 0)
	err := r.db.WithContext(ctx).
		Model(&entities.BookGenre{}).
		Where("id_book = ?", bookID).
		Order("id_genre ASC").
		Pluck("id_genre", &ids).Error
	return ids, err
}

// Publish creates the book, its genre links and the publication record in one
// transaction. Any failure, including an unknown genre id, rolls back all of it.
func (r *Repository) Publish(ctx context.Context, params PublishParams) (*entities.Book, error) {
	genreIDs := uniqueIDs(params.GenreIDs)
	if len(genreIDs) == 0 {
		return nil, ErrNoGenres
	}

	book := &entities.Book{
		Name:        params.Name,
		Description: params.Description,
		Author:      params.Author,
		OwnerID:     params.OwnerID,
		State:       entities.BookStateAvailable,
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var known int64
		if err := tx.Model(&entities.Genre{}).Where("id IN ?", genreIDs).Count(&known).Error; err != nil {
			return fmt.Errorf("failed to check genres: %w", err)
		}
		if known != int64(len(genreIDs)) {
			return ErrUnknownGenre
		}

		if err := tx.Create(book).Error; err != nil {
			return fmt.Errorf("failed to create book: %w", err)
		}

		links := make([]entities.BookGenre, 0, len(genreIDs))
		for _, genreID := range genreIDs {
			links = append(links, entities.BookGenre{BookID: book.ID, GenreID: genreID})
		}
		if err := tx.Create(&links).Error; err != nil {
			return fmt.Errorf("failed to link genres: %w", err)
		}

		publication := &entities.Publication{
			Location: params.Location,
			UserID:   params.OwnerID,
			BookID:   book.ID,
		}
		if err := tx.Create(publication).Error; err != nil {
			return fmt.Errorf("failed to create publication: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return book, nil
}

// DeleteOwned removes a book published by userID together with its
// publications and genre links. A book that does not exist or was published by
// another user yields ErrBookNotOwned and nothing is deleted.
func (r *Repository) DeleteOwned(ctx context.Context, bookID, userID uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var owned int64
		err := tx.Model(&entities.Book{}).
			Joins("INNER JOIN publications ON publications.id_book = books.id").
			Where("books.id = ? AND publications.id_user = ?", bookID, userID).
			Count(&owned).Error
		if err != nil {
			return fmt.Errorf("failed to check ownership: %w", err)
		}
		if owned == 0 {
			return ErrBookNotOwned
		}

		return deleteBookRows(tx, []uint{bookID})
	})
}

// DeleteOrphans removes books that have no publication, left behind by writes
// that predate transactional publishing. Returns the number of books removed.
func (r *Repository) DeleteOrphans(ctx context.Context) (int64, error) {
	var removed int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ids := make([]uint, 0)
		err := tx.Model(&entities.Book{}).
			Where("NOT EXISTS (SELECT 1 FROM publications WHERE publications.id_book = books.id)").
			Pluck("id", &ids).Error
		if err != nil {
			return fmt.Errorf("failed to find orphan books: %w", err)
		}
		if len(ids) == 0 {
			return nil
		}

		if err := deleteBookRows(tx, ids); err != nil {
			return err
		}
		removed = int64(len(ids))
		return nil
	})
	return removed, err
}

// deleteBookRows deletes publications, then genre links, then the books.
func deleteBookRows(tx *gorm.DB, bookIDs []uint) error {
	if err := tx.Where("id_book IN ?", bookIDs).Delete(&entities.Publication{}).Error; err != nil {
		return fmt.Errorf("failed to delete publications: %w", err)
	}
	if err := tx.Where("id_book IN ?", bookIDs).Delete(&entities.BookGenre{}).Error; err != nil {
		return fmt.Errorf("failed to delete genre links: %w", err)
	}
	if err := tx.Where("id IN ?", bookIDs).Delete(&entities.Book{}).Error; err != nil {
		return fmt.Errorf("failed to delete books: %w", err)
	}
	return nil
}

func uniqueIDs(ids []uint) []uint {
	seen := make(map[uint]struct{}, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
