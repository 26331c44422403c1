package auth

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/bookshare/internal/apperror"
	"github.com/mrlokans/bookshare/internal/entities"
)

// Context keys for user data
const (
	ContextKeyUserID   = "auth_user_id"
	ContextKeyUsername = "auth_username"
	ContextKeyRole     = "auth_role"
)

// Middleware authenticates bearer tokens and enforces authorization rules.
//
// Failures set the status, abort the chain and attach an *apperror.Error;
// the HTTP layer renders the error body.
type Middleware struct {
	tokens *TokenIssuer
}

func NewMiddleware(tokens *TokenIssuer) *Middleware {
	return &Middleware{tokens: tokens}
}

// RequireAuth rejects requests without a valid bearer token with 401.
func (m *Middleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c)
		if !ok {
			abort(c, apperror.NewUnauthorized(apperror.CodeAuthRequired))
			return
		}

		claims, err := m.tokens.Parse(token)
		if err != nil {
			abort(c, apperror.New(apperror.Unauthorized, apperror.CodeInvalidToken, err))
			return
		}

		c.Set(ContextKeyUserID, claims.UserID)
		c.Set(ContextKeyUsername, claims.Username)
		c.Set(ContextKeyRole, claims.Role)
		c.Next()
	}
}

// RequireSelfOrAdmin allows the request when the path parameter matches the
// authenticated user or the user is an admin. Must run after RequireAuth.
func (m *Middleware) RequireSelfOrAdmin(param string) gin.HandlerFunc {
	return func(c *gin.Context) {
		targetID, err := strconv.ParseUint(c.Param(param), 10, 32)
		if err != nil || targetID == 0 {
			abort(c, apperror.NewBadRequest(apperror.CodeInvalidID, err))
			return
		}
		if !CanActOn(c, uint(targetID)) {
			abort(c, apperror.NewForbidden(apperror.CodeInsufficientRole))
			return
		}
		c.Next()
	}
}

// RequireRole returns a middleware that requires one of the given roles.
func (m *Middleware) RequireRole(roles ...entities.UserRole) gin.HandlerFunc {
	roleSet := make(map[entities.UserRole]bool)
	for _, r := range roles {
		roleSet[r] = true
	}

	return func(c *gin.Context) {
		if !roleSet[GetUserRole(c)] {
			abort(c, apperror.NewForbidden(apperror.CodeInsufficientRole))
			return
		}
		c.Next()
	}
}

func abort(c *gin.Context, err *apperror.Error) {
	c.Status(err.Kind.Status())
	c.Abort()
	_ = c.Error(err)
}

func bearerToken(c *gin.Context) (string, bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return "", false
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", false
	}

	token := strings.TrimSpace(parts[1])
	return token, token != ""
}

// CanActOn reports whether the authenticated user may act on targetID's data.
func CanActOn(c *gin.Context, targetID uint) bool {
	userID := GetUserID(c)
	if userID == 0 {
		return false
	}
	return userID == targetID || GetUserRole(c) == entities.UserRoleAdmin
}

// GetUserID retrieves the authenticated user's ID from the context, 0 if unauthenticated.
func GetUserID(c *gin.Context) uint {
	if id, exists := c.Get(ContextKeyUserID); exists {
		if userID, ok := id.(uint); ok {
			return userID
		}
	}
	return 0
}

func GetUsername(c *gin.Context) string {
	if name, exists := c.Get(ContextKeyUsername); exists {
		if username, ok := name.(string); ok {
			return username
		}
	}
	return ""
}

func GetUserRole(c *gin.Context) entities.UserRole {
	if r, exists := c.Get(ContextKeyRole); exists {
		if role, ok := r.(entities.UserRole); ok {
			return role
		}
	}
	return ""
}
