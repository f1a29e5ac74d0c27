// Package library implements the load-mutate-save operations on a book collection.
package library

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mrlokans/bookshelf/internal/entities"
	"github.com/mrlokans/bookshelf/internal/query"
	"github.com/mrlokans/bookshelf/internal/storage"
)

// DateLayout is the ISO date format stored in read_date.
const DateLayout = "2006-01-02"

// Fields holds the user-editable part of a book record.
type Fields struct {
	Title         string
	Author        string
	ISBN          string
	CoverURL      string
	Pages         string
	CopyrightYear string
	PlotSummary   string
	Format        string
	ReadTimeHrs   string
	ReadDate      string
	Rating        string
	Status        string
}

// FieldsOf extracts the editable fields of an existing book.
func FieldsOf(b entities.Book) Fields {
	return Fields{
		Title:         b.Title,
		Author:        b.Author,
		ISBN:          b.ISBN,
		CoverURL:      b.CoverURL,
		Pages:         b.Pages,
		CopyrightYear: b.CopyrightYear,
		PlotSummary:   b.PlotSummary,
		Format:        b.Format,
		ReadTimeHrs:   b.ReadTimeHrs,
		ReadDate:      b.ReadDate,
		Rating:        b.Rating,
		Status:        b.Status,
	}
}

func (f Fields) apply(b *entities.Book) {
	b.Title = f.Title
	b.Author = f.Author
	b.ISBN = f.ISBN
	b.CoverURL = f.CoverURL
	b.Pages = f.Pages
	b.CopyrightYear = f.CopyrightYear
	b.PlotSummary = f.PlotSummary
	b.Format = f.Format
	b.ReadTimeHrs = f.ReadTimeHrs
	b.ReadDate = f.ReadDate
	b.Rating = f.Rating
	b.Status = f.Status
	b.Normalize()
}

// Library wraps a Store with the collection operations used by the UI and CLI.
type Library struct {
	store Store
	now   func() time.Time
	newID func() string
}

// Store is the persistence the library needs.
type Store = storage.Store

// New creates a Library over store.
func New(store Store) *Library {
	return &Library{
		store: store,
		now:   time.Now,
		newID: func() string { return uuid.New().String() },
	}
}

// SetClock replaces the clock used for default read dates.
func (l *Library) SetClock(now func() time.Time) {
	l.now = now
}

// List loads the collection and applies the query engine.
func (l *Library) List(opts query.Options) ([]entities.Book, error) {
	books, err := l.store.Load()
	if err != nil {
		return nil, err
	}
	return query.Apply(books, opts), nil
}

// Entry is a listed book together with its position in insertion order.
type Entry struct {
	Index int
	Book  entities.Book
}

// EntriesOf applies opts to an already loaded collection and keeps each
// book's insertion-order position for the legacy routes.
func EntriesOf(books []entities.Book, opts query.Options) []Entry {
	positions := query.Positions(books, opts)
	entries := make([]Entry, 0, len(positions))
	for _, pos := range positions {
		entries = append(entries, Entry{Index: pos, Book: books[pos]})
	}
	return entries
}

// All loads the collection in insertion order.
func (l *Library) All() ([]entities.Book, error) {
	return l.store.Load()
}

// Get returns the book with the given id or storage.ErrNotFound.
func (l *Library) Get(id string) (*entities.Book, error) {
	books, err := l.store.Load()
	if err != nil {
		return nil, err
	}
	idx, err := storage.FindByID(books, id)
	if err != nil {
		return nil, err
	}
	return &books[idx], nil
}

// Add creates a book with a fresh id, defaulting the read date to today and
// the status to "To Read".
func (l *Library) Add(f Fields) (*entities.Book, error) {
	book := entities.Book{ID: l.newID()}
	f.apply(&book)
	if book.ReadDate == "" {
		book.ReadDate = l.now().Format(DateLayout)
	}
	if book.Status == "" {
		book.Status = entities.StatusToRead
	}
	if err := storage.Validate(&book); err != nil {
		return nil, err
	}

	books, err := l.store.Load()
	if err != nil {
		return nil, err
	}
	books = append(books, book)
	if err := l.store.Save(books); err != nil {
		return nil, err
	}
	return &book, nil
}

// Update replaces the editable fields of the book with the given id. The
// previous version is returned alongside the updated one.
func (l *Library) Update(id string, f Fields) (updated, previous *entities.Book, err error) {
	books, err := l.store.Load()
	if err != nil {
		return nil, nil, err
	}
	idx, err := storage.FindByID(books, id)
	if err != nil {
		return nil, nil, err
	}

	before := books[idx]
	book := books[idx]
	f.apply(&book)
	if err := storage.Validate(&book); err != nil {
		return nil, nil, err
	}
	books[idx] = book

	if err := l.store.Save(books); err != nil {
		return nil, nil, err
	}
	return &book, &before, nil
}

// Delete removes the book with the given id and returns it.
func (l *Library) Delete(id string) (*entities.Book, error) {
	books, err := l.store.Load()
	if err != nil {
		return nil, err
	}
	rest, removed, err := storage.RemoveByID(books, id)
	if err != nil {
		return nil, err
	}
	if err := l.store.Save(rest); err != nil {
		return nil, err
	}
	return &removed, nil
}

// RemoveAt removes the book at a position in insertion order.
func (l *Library) RemoveAt(index int) (*entities.Book, error) {
	books, err := l.store.Load()
	if err != nil {
		return nil, err
	}
	return l.removeAt(books, index)
}

func (l *Library) removeAt(books []entities.Book, index int) (*entities.Book, error) {
	rest, removed, err := storage.RemoveAt(books, index)
	if err != nil {
		return nil, err
	}
	if err := l.store.Save(rest); err != nil {
		return nil, err
	}
	return &removed, nil
}

// SetStatusAt changes the reading status of the book at a position.
func (l *Library) SetStatusAt(index int, status string) (*entities.Book, error) {
	books, err := l.store.Load()
	if err != nil {
		return nil, err
	}
	if index < 0 || index >= len(books) {
		return nil, fmt.Errorf("%w: %d", storage.ErrIndexOutOfRange, index)
	}
	books[index].Status = status
	if err := l.store.Save(books); err != nil {
		return nil, err
	}
	return &books[index], nil
}
