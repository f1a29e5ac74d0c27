// Package storage persists the whole book collection as a single JSON array.
//
// There is no partial update and no locking: every mutation loads the full
// collection, changes it in memory and writes it back. Concurrent writers race
// and the last one wins.
package storage

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/mrlokans/bookshelf/internal/entities"
)

var (
	// ErrNotFound is returned when no book has the requested id.
	ErrNotFound = errors.New("book not found")
	// ErrIndexOutOfRange is returned by positional lookups past the collection end.
	ErrIndexOutOfRange = errors.New("book index out of range")
	// ErrInvalidRecord is returned when a record fails boundary validation.
	ErrInvalidRecord = errors.New("invalid book record")
)

// Store loads and saves the full collection.
type Store interface {
	Load() ([]entities.Book, error)
	Save(books []entities.Book) error
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks a new or edited record. Every rule applies, including the
// required title.
func Validate(book *entities.Book) error {
	return wrapValidation(validate.Struct(book))
}

// validateStored checks a record already in the collection. Older files may
// hold records saved with an empty title, so the title rule is skipped.
func validateStored(book *entities.Book) error {
	return wrapValidation(validate.StructExcept(book, "Title"))
}

func wrapValidation(err error) error {
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidRecord, describe(verrs[0]))
	}
	return fmt.Errorf("%w: %v", ErrInvalidRecord, err)
}

// prepare normalizes every record in place and validates it.
func prepare(books []entities.Book) error {
	for i := range books {
		books[i].Normalize()
		if err := validateStored(&books[i]); err != nil {
			return fmt.Errorf("record %d: %w", i, err)
		}
	}
	return nil
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", jsonName(fe.Field()))
	case "datetime":
		return fmt.Sprintf("%s must be a YYYY-MM-DD date", jsonName(fe.Field()))
	default:
		return fmt.Sprintf("%s failed %s", jsonName(fe.Field()), fe.Tag())
	}
}

func jsonName(field string) string {
	switch field {
	case "ReadDate":
		return "read_date"
	case "Title":
		return "title"
	default:
		return field
	}
}

// FindByID returns the position of the book with the given id.
func FindByID(books []entities.Book, id string) (int, error) {
	if id == "" {
		return -1, ErrNotFound
	}
	for i := range books {
		if books[i].ID == id {
			return i, nil
		}
	}
	return -1, ErrNotFound
}

// RemoveAt returns a new collection without the book at index, plus the removed book.
func RemoveAt(books []entities.Book, index int) ([]entities.Book, entities.Book, error) {
	if index < 0 || index >= len(books) {
		return books, entities.Book{}, fmt.Errorf("%w: %d", ErrIndexOutOfRange, index)
	}
	removed := books[index]
	result := make([]entities.Book, 0, len(books)-1)
	result = append(result, books[:index]...)
	result = append(result, books[index+1:]...)
	return result, removed, nil
}

// RemoveByID returns a new collection without the book with the given id.
func RemoveByID(books []entities.Book, id string) ([]entities.Book, entities.Book, error) {
	idx, err := FindByID(books, id)
	if err != nil {
		return books, entities.Book{}, err
	}
	return RemoveAt(books, idx)
}
