// Package database provides the data access layer for the application.
//
// # Architecture
//
// The database layer is organized into domain-specific sub-packages:
//
//	database/
//	├── database.go      # Connection setup, migrations, genre seeding
//	├── users/           # Registration, lookup and whitelisted updates
//	├── books/           # Listing, transactional publish and delete
//	├── genres/          # Genre catalogue
//	├── requests/        # Lending requests
//	└── audit/           # Audit trail persistence
//
// # Drivers
//
// SQLite (the default) and PostgreSQL are supported through the matching gorm
// dialectors, selected by config.Database.Driver:
//
//	db, err := database.NewDatabase(cfg.Database)
//	booksRepo := books.NewRepository(db.DB)
//
// # Adding a New Domain
//
//  1. Create a new sub-package: internal/database/<domain>/
//  2. Define a Repository struct with a *gorm.DB field
//  3. Add NewRepository(db *gorm.DB) constructor
//  4. Accept a context.Context on every method and use db.WithContext
//  5. Add compile-time interface check where a consumer defines an interface
package database
