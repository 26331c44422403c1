package http

import (
	"errors"
	"io"
	"math"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/bookshare/internal/apperror"
	"github.com/mrlokans/bookshare/internal/auth"
	"github.com/mrlokans/bookshare/internal/database/users"
	"github.com/mrlokans/bookshare/internal/entities"
	"github.com/mrlokans/bookshare/internal/photos"
	"github.com/mrlokans/bookshare/internal/schemas"
)

// UsersController handles registration, login, profile reads and updates,
// photo uploads and per-user request listings.
type UsersController struct {
	users       UserStore
	requests    RequestStore
	authService *auth.Service
	photos      PhotoStore
	audit       AuditLogger
	loc         *apperror.Localizer
}

func NewUsersController(userStore UserStore, requestStore RequestStore, authService *auth.Service, photoStore PhotoStore, auditLogger AuditLogger, loc *apperror.Localizer) *UsersController {
	return &UsersController{
		users:       userStore,
		requests:    requestStore,
		authService: authService,
		photos:      photoStore,
		audit:       auditLogger,
		loc:         loc,
	}
}

// ListUsers handles GET /users/all. An empty table yields [].
func (uc *UsersController) ListUsers(c *gin.Context) {
	list, err := uc.users.List(c.Request.Context())
	if err != nil {
		failInternal(c, err, apperror.CodeInternal)
		return
	}
	c.JSON(http.StatusOK, list)
}

// GetUser handles GET /users/:id.
func (uc *UsersController) GetUser(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	user, err := uc.users.GetByID(c.Request.Context(), id)
	if errors.Is(err, users.ErrUserNotFound) {
		fail(c, apperror.NewNotFound(apperror.CodeUserNotFound))
		return
	}
	if err != nil {
		failInternal(c, err, apperror.CodeInternal)
		return
	}
	c.JSON(http.StatusOK, user)
}

// Register handles POST /users/register.
func (uc *UsersController) Register(c *gin.Context) {
	var req schemas.UserCreate
	if !bindJSON(c, &req) {
		return
	}

	user := req.ToEntity()
	err := uc.authService.Register(c.Request.Context(), user, req.Password)
	uc.audit.LogRegister(auditMeta(c), user.ID, user.Username, err)

	switch {
	case errors.Is(err, auth.ErrUserExists):
		fail(c, apperror.NewConflict(apperror.CodeUserExists))
		return
	case errors.Is(err, auth.ErrPasswordTooLong):
		fail(c, apperror.NewBadRequest(apperror.CodeValidationFailed, err))
		return
	case err != nil:
		failInternal(c, err, apperror.CodeUserRegisterFailed)
		return
	}

	c.JSON(http.StatusCreated, schemas.NewUserPublic(user))
}

// Login handles POST /users/login.
func (uc *UsersController) Login(c *gin.Context) {
	var req schemas.Login
	if !bindJSON(c, &req) {
		return
	}

	token, user, err := uc.authService.Login(c.Request.Context(), c.ClientIP(), req.Username, req.Password)

	var userID uint
	if user != nil {
		userID = user.ID
	}
	uc.audit.LogLogin(auditMeta(c), userID, req.Username, err)

	var locked *auth.LockedError
	switch {
	case errors.As(err, &locked):
		c.Header("Retry-After", strconv.Itoa(int(math.Ceil(locked.RetryAfter.Seconds()))))
		fail(c, apperror.New(apperror.TooManyRequests, apperror.CodeTooManyAttempts, err))
		return
	case errors.Is(err, auth.ErrInvalidCredentials):
		fail(c, apperror.New(apperror.Unauthorized, apperror.CodeInvalidCredentials, err))
		return
	case err != nil:
		failInternal(c, err, apperror.CodeInternal)
		return
	}

	c.JSON(http.StatusOK, schemas.LoginResponse{
		Token: token,
		User:  schemas.NewUserPublic(user),
	})
}

// UpdateUser handles PUT /users/:id. Only whitelisted columns reach the
// database; changing the role requires an admin caller.
func (uc *UsersController) UpdateUser(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req schemas.UserUpdate
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		fail(c, apperror.NewBadRequest(apperror.CodeValidationFailed, err))
		return
	}

	fields, err := req.Fields()
	if err != nil {
		fail(c, apperror.NewBadRequest(apperror.CodeValidationFailed, err))
		return
	}
	if len(fields) == 0 {
		fail(c, apperror.NewBadRequest(apperror.CodeNoUpdateFields, nil))
		return
	}
	if _, changesRole := fields["role"]; changesRole && auth.GetUserRole(c) != entities.UserRoleAdmin {
		fail(c, apperror.NewForbidden(apperror.CodeInsufficientRole))
		return
	}

	ctx := c.Request.Context()
	username, _ := fields["username"].(string)
	email, _ := fields["email"].(string)
	if username != "" || email != "" {
		exists, err := uc.users.ExistsByUsernameOrEmail(ctx, username, email, id)
		if err != nil {
			failInternal(c, err, apperror.CodeUserUpdateFailed)
			return
		}
		if exists {
			fail(c, apperror.NewConflict(apperror.CodeUserExists))
			return
		}
	}

	if password, ok := fields["password"].(string); ok {
		hash, err := uc.authService.HashPassword(password)
		if err != nil {
			fail(c, apperror.NewBadRequest(apperror.CodeValidationFailed, err))
			return
		}
		fields["password"] = hash
	}

	err = uc.users.Update(ctx, id, fields)
	uc.audit.LogUpdate(auditMeta(c), auth.GetUserID(c), id, req.Columns(), err)

	switch {
	case errors.Is(err, users.ErrUserNotFound):
		fail(c, apperror.NewNotFound(apperror.CodeUserNotFound))
		return
	case errors.Is(err, users.ErrUserExists):
		fail(c, apperror.NewConflict(apperror.CodeUserExists))
		return
	case err != nil:
		failInternal(c, err, apperror.CodeUserUpdateFailed)
		return
	}

	c.JSON(http.StatusOK, message(c, uc.loc, apperror.MsgUserUpdated))
}

// UploadPhoto handles PUT /users/photo. The target user comes from the
// id_user query parameter or form field; the file from the "photo" part
// (or "file").
func (uc *UsersController) UploadPhoto(c *gin.Context) {
	targetID, ok := parseQueryID(c, "id_user")
	if !ok {
		return
	}
	if !auth.CanActOn(c, targetID) {
		fail(c, apperror.NewForbidden(apperror.CodeInsufficientRole))
		return
	}

	fileHeader, err := c.FormFile("photo")
	if err != nil {
		fileHeader, err = c.FormFile("file")
	}
	if err != nil {
		fail(c, apperror.NewBadRequest(apperror.CodePhotoMissing, err))
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		fail(c, apperror.NewBadRequest(apperror.CodePhotoMissing, err))
		return
	}
	defer file.Close()

	size, err := uc.photos.Save(targetID, file)
	uc.audit.LogUpload(auditMeta(c), auth.GetUserID(c), targetID, size, err)

	switch {
	case errors.Is(err, photos.ErrTooLarge):
		fail(c, apperror.NewBadRequest(apperror.CodePhotoTooLarge, err))
		return
	case errors.Is(err, photos.ErrNotImage), errors.Is(err, photos.ErrEmpty):
		fail(c, apperror.NewBadRequest(apperror.CodePhotoInvalid, err))
		return
	case err != nil:
		failInternal(c, err, apperror.CodePhotoSaveFailed)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"url": uc.photos.URL(targetID)})
}

// SentRequests handles GET /users/:id/sent-requests.
func (uc *UsersController) SentRequests(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	list, err := uc.requests.ListSent(c.Request.Context(), id)
	if err != nil {
		failInternal(c, err, apperror.CodeInternal)
		return
	}
	if len(list) == 0 {
		fail(c, apperror.NewNotFound(apperror.CodeNoSentRequests))
		return
	}
	c.JSON(http.StatusOK, list)
}

// ReceivedRequests handles GET /users/:id/received-requests.
func (uc *UsersController) ReceivedRequests(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	list, err := uc.requests.ListReceived(c.Request.Context(), id)
	if err != nil {
		failInternal(c, err, apperror.CodeInternal)
		return
	}
	if len(list) == 0 {
		fail(c, apperror.NewNotFound(apperror.CodeNoReceivedRequests))
		return
	}
	c.JSON(http.StatusOK, list)
}
