package config

const (
	// DefaultDatabasePath is the default path for the SQLite database
	DefaultDatabasePath = "./bookshare.db"

	// DefaultPublicDir is the default root for publicly served uploads
	DefaultPublicDir = "./public"
)
