// Package interfaces documents the core abstractions used throughout the application.
//
// # Interface Categories
//
// ## Persistence
//
//   - storage.Store: load and save the whole collection (internal/storage/storage.go).
//     FileStore backs the server, MemoryStore backs tests.
//
// ## External Services
//
//   - metadata.Catalog: raw catalog lookups that return errors (internal/metadata/proxy.go)
//   - http.MetadataProxy: catalog lookups that degrade to empty results (internal/http/config.go)
//
// ## Supporting Features
//
//   - http.CoverCache: local cover image cache (internal/http/config.go)
//   - http.Archiver: copies of deleted records (internal/http/config.go)
//
// # Adding a New Catalog
//
// To look books up somewhere other than OpenLibrary (e.g., Google Books):
//
//  1. Implement Catalog in internal/metadata/
//
//     type GoogleBooksClient struct {
//         apiKey     string
//         httpClient *http.Client
//     }
//
//     func (c *GoogleBooksClient) Search(ctx context.Context, q string, field SearchField) ([]Candidate, error)
//     func (c *GoogleBooksClient) WorkDescription(ctx context.Context, key string) (string, error)
//
//  2. Wrap it with metadata.NewProxy in entrypoint.go
//
// # Compile-Time Interface Checks
//
// All implementations should include compile-time checks to ensure they satisfy
// their interfaces:
//
//	var _ SomeInterface = (*MyImplementation)(nil)
//
// See checks.go for the current list.
package interfaces
