package interfaces

// This file contains compile-time interface implementation checks.
// These ensure that concrete types satisfy their interfaces at compile time,
// catching missing methods before runtime.
//
// To verify all checks pass: go build ./internal/interfaces/...

import (
	"github.com/mrlokans/bookshelf/internal/audit"
	"github.com/mrlokans/bookshelf/internal/covers"
	"github.com/mrlokans/bookshelf/internal/http"
	"github.com/mrlokans/bookshelf/internal/metadata"
	"github.com/mrlokans/bookshelf/internal/storage"
)

// =============================================================================
// Persistence
// =============================================================================

// Store implementations
var _ storage.Store = (*storage.FileStore)(nil)
var _ storage.Store = (*storage.MemoryStore)(nil)

// =============================================================================
// External Services
// =============================================================================

// Catalog implementations
var _ metadata.Catalog = (*metadata.OpenLibraryClient)(nil)

// MetadataProxy implementations
var _ http.MetadataProxy = (*metadata.Proxy)(nil)

// =============================================================================
// Supporting Features
// =============================================================================

// CoverCache implementations
var _ http.CoverCache = (*covers.Cache)(nil)

// Archiver implementations
var _ http.Archiver = (*audit.Auditor)(nil)
