package config

const (
	// DefaultDatabasePath is the default path for the main application database
	DefaultDatabasePath = "./librarian.db"

	// DefaultCatalogBaseURL points at the public book catalog mirror.
	// Override with CATALOG_BASE_URL when the mirror moves.
	DefaultCatalogBaseURL = "https://flibusta.is"
)
