package storage

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"github.com/mrlokans/bookshelf/internal/entities"
)

// FileStore keeps the collection in one JSON file.
type FileStore struct {
	path string
}

// NewFileStore creates a store backed by the file at path. The file does not
// need to exist yet.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Load reads the full collection. A missing or empty file is an empty collection.
func (s *FileStore) Load() ([]entities.Book, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return []entities.Book{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read library: %w", err)
	}

	if len(bytes.TrimSpace(data)) == 0 {
		return []entities.Book{}, nil
	}

	var books []entities.Book
	if err := json.Unmarshal(data, &books); err != nil {
		return nil, fmt.Errorf("decode library %s: %w", s.path, err)
	}
	if books == nil {
		books = []entities.Book{}
	}

	if err := prepare(books); err != nil {
		return nil, fmt.Errorf("load library: %w", err)
	}
	return books, nil
}

// Save overwrites the file with the full collection. The caller's slice is
// not modified.
func (s *FileStore) Save(books []entities.Book) error {
	books = clone(books)
	if err := prepare(books); err != nil {
		return fmt.Errorf("save library: %w", err)
	}

	data, err := json.MarshalIndent(books, "", "  ")
	if err != nil {
		return fmt.Errorf("encode library: %w", err)
	}

	if err := os.WriteFile(s.path, data, 0644); err != nil {
		return fmt.Errorf("write library: %w", err)
	}
	return nil
}
