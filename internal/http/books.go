package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/bookshare/internal/apperror"
	"github.com/mrlokans/bookshare/internal/auth"
	"github.com/mrlokans/bookshare/internal/database/books"
	"github.com/mrlokans/bookshare/internal/schemas"
)

// BooksController handles book listing, publishing, deletion and genres.
type BooksController struct {
	books  BookStore
	genres GenreStore
	audit  AuditLogger
	loc    *apperror.Localizer
}

func NewBooksController(bookStore BookStore, genreStore GenreStore, auditLogger AuditLogger, loc *apperror.Localizer) *BooksController {
	return &BooksController{
		books:  bookStore,
		genres: genreStore,
		audit:  auditLogger,
		loc:    loc,
	}
}

// ListBooks handles GET /books.
func (bc *BooksController) ListBooks(c *gin.Context) {
	list, err := bc.books.List(c.Request.Context())
	if err != nil {
		failInternal(c, err, apperror.CodeInternal)
		return
	}
	if len(list) == 0 {
		fail(c, apperror.NewNotFound(apperror.CodeNoBooks))
		return
	}
	c.JSON(http.StatusOK, list)
}

// GetBook handles GET /books/:id.
func (bc *BooksController) GetBook(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	book, err := bc.books.GetByID(c.Request.Context(), id)
	if errors.Is(err, books.ErrBookNotFound) {
		fail(c, apperror.NewNotFound(apperror.CodeBookNotFound))
		return
	}
	if err != nil {
		failInternal(c, err, apperror.CodeInternal)
		return
	}
	c.JSON(http.StatusOK, book)
}

// MyBooks handles GET /books/my-books.
func (bc *BooksController) MyBooks(c *gin.Context) {
	list, err := bc.books.ListPublishedBy(c.Request.Context(), auth.GetUserID(c))
	if err != nil {
		failInternal(c, err, apperror.CodeInternal)
		return
	}
	if len(list) == 0 {
		fail(c, apperror.NewNotFound(apperror.CodeNoOwnBooks))
		return
	}
	c.JSON(http.StatusOK, list)
}

// ListGenres handles GET /books/genres, ordered by name.
func (bc *BooksController) ListGenres(c *gin.Context) {
	list, err := bc.genres.List(c.Request.Context())
	if err != nil {
		failInternal(c, err, apperror.CodeInternal)
		return
	}
	c.JSON(http.StatusOK, list)
}

// Publish handles POST /books/publish. The book, its genre links and its
// publication are written atomically.
func (bc *BooksController) Publish(c *gin.Context) {
	var req schemas.BookPublish
	if !bindJSON(c, &req) {
		return
	}

	userID := auth.GetUserID(c)
	params := req.Params(userID)
	book, err := bc.books.Publish(c.Request.Context(), params)

	var bookID uint
	if book != nil {
		bookID = book.ID
	}
	bc.audit.LogPublish(auditMeta(c), userID, bookID, params.Name, params.GenreIDs, err)

	switch {
	case errors.Is(err, books.ErrUnknownGenre):
		fail(c, apperror.NewBadRequest(apperror.CodeUnknownGenre, err))
		return
	case errors.Is(err, books.ErrNoGenres):
		fail(c, apperror.NewBadRequest(apperror.CodeMissingFields, err))
		return
	case err != nil:
		failInternal(c, err, apperror.CodeBookPublishFailed)
		return
	}

	c.JSON(http.StatusCreated, schemas.BookPublished{
		Message: bc.loc.Message(apperror.MsgBookPublished, c.GetHeader("Accept-Language")),
		BookID:  book.ID,
	})
}

// DeleteBook handles DELETE /books/:id. A missing book and one published by
// someone else get the same 403.
func (bc *BooksController) DeleteBook(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	userID := auth.GetUserID(c)
	err := bc.books.DeleteOwned(c.Request.Context(), id, userID)
	bc.audit.LogDelete(auditMeta(c), userID, id, err)

	switch {
	case errors.Is(err, books.ErrBookNotOwned):
		fail(c, apperror.NewForbidden(apperror.CodeBookForbidden))
		return
	case err != nil:
		failInternal(c, err, apperror.CodeBookDeleteFailed)
		return
	}

	c.JSON(http.StatusOK, message(c, bc.loc, apperror.MsgBookDeleted))
}
