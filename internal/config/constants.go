package config

const (
	// DefaultLibraryPath is where the collection is stored when LIBRARY_PATH is unset
	DefaultLibraryPath = "./library.json"

	// DefaultOpenLibraryBaseURL is the public catalog API
	DefaultOpenLibraryBaseURL = "https://openlibrary.org"

	// DefaultEnvFile is read at startup if present
	DefaultEnvFile = ".env"
)
