package schemas

import (
	"strings"

	"github.com/mrlokans/bookshare/internal/database/books"
)

// BookPublish is the publish payload. Required-field checks live here rather
// than in the handler.
type BookPublish struct {
	Name        string `json:"name" binding:"required,max=512"`
	Description string `json:"description" binding:"required"`
	Author      string `json:"author" binding:"required,max=256"`
	Location    string `json:"location" binding:"required,max=256"`
	Genres      []uint `json:"genres" binding:"required,min=1,dive,min=1"`
}

// Validate rejects text fields that only hold whitespace.
func (b BookPublish) Validate() error {
	return requireNonBlank([]string{"name", "description", "author", "location"},
		b.Name, b.Description, b.Author, b.Location)
}

// Params converts the payload into repository parameters for the owner.
func (b BookPublish) Params(ownerID uint) books.PublishParams {
	return books.PublishParams{
		Name:        strings.TrimSpace(b.Name),
		Description: strings.TrimSpace(b.Description),
		Author:      strings.TrimSpace(b.Author),
		Location:    strings.TrimSpace(b.Location),
		OwnerID:     ownerID,
		GenreIDs:    b.Genres,
	}
}

type BookPublished struct {
	Message string `json:"message"`
	BookID  uint   `json:"bookId"`
}

// RequestCreate opens a lending request for a book.
type RequestCreate struct {
	BookID uint `json:"book_id" binding:"required,min=1"`
}

// Message is the body of plain success responses.
type Message struct {
	Message string `json:"message"`
}
