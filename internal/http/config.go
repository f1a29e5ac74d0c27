package http

import (
	"context"

	"github.com/mrlokans/bookshelf/internal/entities"
	"github.com/mrlokans/bookshelf/internal/library"
	"github.com/mrlokans/bookshelf/internal/metadata"
	"github.com/mrlokans/bookshelf/internal/readonly"
)

// MetadataProxy looks up catalog candidates and summaries. Implementations
// never fail; they degrade to empty results.
type MetadataProxy interface {
	Search(ctx context.Context, q string, field metadata.SearchField) []metadata.Candidate
	Summary(ctx context.Context, workKey string) string
}

// CoverCache serves locally cached cover images.
type CoverCache interface {
	GetCover(ctx context.Context, bookID, coverURL string) (string, error)
	InvalidateCover(bookID string) error
}

// Archiver keeps a copy of deleted records.
type Archiver interface {
	ArchiveDeleted(book entities.Book, route string) (string, error)
}

// RouterConfig contains all dependencies and configuration needed
// to create the HTTP router.
type RouterConfig struct {
	// Core dependencies
	Library *library.Library
	Proxy   MetadataProxy

	// Optional supporting features; nil disables them
	CoverCache CoverCache
	Auditor    Archiver
	ReadOnly   *readonly.Middleware
	Sessions   *SessionManager

	// CSRF protection for the HTML forms; empty disables it
	CSRFSecret    []byte
	SecureCookies bool

	// Directory with *.html templates overriding the embedded ones
	TemplatesPath string

	// Application info
	Version string
}
