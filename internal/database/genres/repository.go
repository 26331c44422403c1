// Package genres provides read access to the genre catalogue and its seeding.
package genres

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/mrlokans/bookshare/internal/entities"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// List returns all genres ordered by name ascending.
func (r *Repository) List(ctx context.Context) ([]entities.Genre, error) {
	genres := make([]entities.Genre, 0)
	err := r.db.WithContext(ctx).Order("name ASC").Find(&genres).Error
	return genres, err
}

// Seed inserts the named genres that do not exist yet and returns how many
// were created.
func (r *Repository) Seed(ctx context.Context, names []string) (int, error) {
	created := 0
	for _, name := range names {
		genre := entities.Genre{Name: name}
		result := r.db.WithContext(ctx).Where(entities.Genre{Name: name}).FirstOrCreate(&genre)
		if result.Error != nil {
			return created, fmt.Errorf("failed to create genre %s: %w", name, result.Error)
		}
		if result.RowsAffected > 0 {
			created++
		}
	}
	return created, nil
}

// CountByIDs returns how many of the given ids exist.
func (r *Repository) CountByIDs(ctx context.Context, ids []uint) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	var count int64
	err := r.db.WithContext(ctx).Model(&entities.Genre{}).Where("id IN ?", ids).Count(&count).Error
	return count, err
}
