// Package auth provides password hashing, bearer tokens and authorization
// middleware.
//
// Clients log in with POST /users/login and receive an HS256 JWT carrying the
// user's id, username and role. Protected routes require the token in an
// "Authorization: Bearer <token>" header.
//
// # Configuration
//
//	AUTH_JWT_SECRET=<random string>    # Random per process if empty; tokens die on restart
//	AUTH_ISSUER=bookshare
//	AUTH_TOKEN_EXPIRY=24h
//	AUTH_BCRYPT_COST=10
//	AUTH_LOGIN_MAX_ATTEMPTS=5          # Failed logins per IP+login before lockout
//	AUTH_LOGIN_WINDOW=15m
//	AUTH_LOGIN_LOCKOUT=30m
//
// # Usage
//
//	tokens, _ := auth.NewTokenIssuer(cfg.Auth.JWTSecret, cfg.Auth.Issuer, cfg.Auth.TokenExpiry)
//	mw := auth.NewMiddleware(tokens)
//	router.GET("/users/:id", mw.RequireAuth(), mw.RequireSelfOrAdmin("id"), handler)
//
// Extract the caller in handlers:
//
//	userID := auth.GetUserID(c)
package auth
