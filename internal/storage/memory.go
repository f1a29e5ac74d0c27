package storage

import "github.com/mrlokans/bookshelf/internal/entities"

// MemoryStore is an in-process Store used by tests.
type MemoryStore struct {
	books []entities.Book
	loads int
	saves int
}

// NewMemoryStore creates a store holding a copy of books.
func NewMemoryStore(books ...entities.Book) *MemoryStore {
	return &MemoryStore{books: clone(books)}
}

func (s *MemoryStore) Load() ([]entities.Book, error) {
	s.loads++
	return clone(s.books), nil
}

func (s *MemoryStore) Save(books []entities.Book) error {
	books = clone(books)
	if err := prepare(books); err != nil {
		return err
	}
	s.books = books
	s.saves++
	return nil
}

// Loads returns how many times Load was called.
func (s *MemoryStore) Loads() int {
	return s.loads
}

// Saves returns how many times Save succeeded.
func (s *MemoryStore) Saves() int {
	return s.saves
}

func clone(books []entities.Book) []entities.Book {
	out := make([]entities.Book, len(books))
	copy(out, books)
	return out
}
