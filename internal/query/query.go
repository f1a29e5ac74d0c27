// Package query filters and orders an in-memory book collection for display.
package query

import (
	"sort"
	"strings"

	"github.com/mrlokans/bookshelf/internal/entities"
)

// Sort selects the display order of a collection.
type Sort string

const (
	SortAuthor   Sort = "author"
	SortTitle    Sort = "title"
	SortDateAsc  Sort = "date_asc"
	SortDateDesc Sort = "date_desc"
)

// DefaultSort is used when no (or an unknown) sort key is requested.
const DefaultSort = SortDateDesc

// missingDate makes undated books sort as the earliest read.
const missingDate = "0000-00-00"

var leadingArticles = []string{"the ", "an ", "a "}

// Options describes one list request.
type Options struct {
	Query  string
	Format string
	Sort   Sort
}

// ParseSort maps a request value onto a Sort, falling back to DefaultSort.
func ParseSort(value string) Sort {
	switch s := Sort(strings.ToLower(strings.TrimSpace(value))); s {
	case SortAuthor, SortTitle, SortDateAsc, SortDateDesc:
		return s
	default:
		return DefaultSort
	}
}

// Apply returns a new slice holding the books that match opts, in the
// requested order. The input slice is left untouched.
func Apply(books []entities.Book, opts Options) []entities.Book {
	return Sorted(Filter(books, opts.Query, opts.Format), opts.Sort)
}

// Filter keeps books whose lowercased title or author contains the
// lowercased query, and whose format equals format exactly when set.
func Filter(books []entities.Book, q, format string) []entities.Book {
	q = strings.ToLower(q)

	result := make([]entities.Book, 0, len(books))
	for _, b := range books {
		if !Matches(b, q) {
			continue
		}
		if format != "" && b.Format != format {
			continue
		}
		result = append(result, b)
	}
	return result
}

// Matches reports whether a lowercased query hits the book's title or author.
func Matches(b entities.Book, q string) bool {
	if q == "" {
		return true
	}
	return strings.Contains(strings.ToLower(b.Title), q) ||
		strings.Contains(strings.ToLower(b.Author), q)
}

// Sorted returns a stably sorted copy of books. Ties keep insertion order.
func Sorted(books []entities.Book, by Sort) []entities.Book {
	result := make([]entities.Book, len(books))
	copy(result, books)

	less := lessFunc(by)
	sort.SliceStable(result, func(i, j int) bool {
		return less(result[i], result[j])
	})
	return result
}

// Positions returns the insertion-order positions of the books Apply would
// return, in the same order. The positional routes address books this way.
func Positions(books []entities.Book, opts Options) []int {
	q := strings.ToLower(opts.Query)

	positions := make([]int, 0, len(books))
	for i, b := range books {
		if Matches(b, q) && (opts.Format == "" || b.Format == opts.Format) {
			positions = append(positions, i)
		}
	}

	less := lessFunc(opts.Sort)
	sort.SliceStable(positions, func(i, j int) bool {
		return less(books[positions[i]], books[positions[j]])
	})
	return positions
}

func lessFunc(by Sort) func(a, b entities.Book) bool {
	switch ParseSort(string(by)) {
	case SortAuthor:
		return func(a, b entities.Book) bool {
			return strings.ToLower(a.Author) < strings.ToLower(b.Author)
		}
	case SortTitle:
		return func(a, b entities.Book) bool {
			return TitleKey(a.Title) < TitleKey(b.Title)
		}
	case SortDateAsc:
		return func(a, b entities.Book) bool {
			return dateKey(a) < dateKey(b)
		}
	default:
		return func(a, b entities.Book) bool {
			return dateKey(a) > dateKey(b)
		}
	}
}

// TitleKey lowercases a title and strips a single leading article.
func TitleKey(title string) string {
	key := strings.ToLower(title)
	for _, article := range leadingArticles {
		if strings.HasPrefix(key, article) {
			return key[len(article):]
		}
	}
	return key
}

func dateKey(b entities.Book) string {
	if b.ReadDate == "" {
		return missingDate
	}
	return b.ReadDate
}

// Formats lists the distinct non-empty formats present in books, sorted.
func Formats(books []entities.Book) []string {
	seen := make(map[string]struct{})
	for _, b := range books {
		if b.Format != "" {
			seen[b.Format] = struct{}{}
		}
	}

	formats := make([]string, 0, len(seen))
	for f := range seen {
		formats = append(formats, f)
	}
	sort.Strings(formats)
	return formats
}
