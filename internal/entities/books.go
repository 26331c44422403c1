package entities

import "time"

type BookState string

const (
	BookStateAvailable BookState = "available"
	BookStateLent      BookState = "lent"
)

type Book struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"index;size:512;not null" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	Author      string    `gorm:"index;size:256" json:"author"`
	OwnerID     uint      `gorm:"index;not null" json:"owner_id"`
	State       BookState `gorm:"size:20;not null;default:'available'" json:"state"`
	Owner       User      `gorm:"foreignKey:OwnerID" json:"-"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (Book) TableName() string {
	return "books"
}

// Genre is static reference data seeded at startup.
type Genre struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"uniqueIndex;size:100;not null" json:"name"`
}

func (Genre) TableName() string {
	return "genres"
}

// BookGenre links a book to one of its genres.
type BookGenre struct {
	BookID  uint `gorm:"column:id_book;primaryKey" json:"id_book"`
	GenreID uint `gorm:"column:id_genre;primaryKey" json:"id_genre"`
}

func (BookGenre) TableName() string {
	return "books_genres"
}

// Publication records who published a book and where it can be picked up.
type Publication struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Location  string    `gorm:"size:256;not null" json:"location"`
	UserID    uint      `gorm:"column:id_user;index;not null" json:"id_user"`
	BookID    uint      `gorm:"column:id_book;index;not null" json:"id_book"`
	CreatedAt time.Time `json:"created_at"`
}

func (Publication) TableName() string {
	return "publications"
}
