package entities

import "strings"

// Well-known formats. The field is free text; these only drive the form
// dropdown and the audiobook read-time rule.
const (
	FormatPaper     = "Paper"
	FormatHardcover = "Hardcover"
	FormatEbook     = "Ebook"
	FormatAudiobook = "Audiobook"
)

// Reading statuses used by the legacy status route and the add form.
const (
	StatusToRead  = "To Read"
	StatusReading = "Reading"
	StatusRead    = "Read"
)

// KnownFormats is the list offered by the add/edit forms.
var KnownFormats = []string{FormatPaper, FormatHardcover, FormatEbook, FormatAudiobook}

// KnownStatuses is the list offered by the add/edit forms.
var KnownStatuses = []string{StatusToRead, StatusReading, StatusRead}

// Book is one tracked book and its reading metadata. Every optional field is a
// plain string that defaults to "".
type Book struct {
	ID            string `json:"id"`
	Title         string `json:"title" validate:"required"`
	Author        string `json:"author"`
	ISBN          string `json:"isbn"`
	CoverURL      string `json:"cover_url"`
	Pages         string `json:"pages"`
	CopyrightYear string `json:"copyright_year"`
	PlotSummary   string `json:"plot_summary"`
	Format        string `json:"format"`
	ReadTimeHrs   string `json:"read_time_hrs"`
	ReadDate      string `json:"read_date" validate:"omitempty,datetime=2006-01-02"`
	Rating        string `json:"rating"`
	Status        string `json:"status"`
}

// IsAudiobook reports whether the book is tracked as an audiobook.
func (b *Book) IsAudiobook() bool {
	return b.Format == FormatAudiobook
}

// Normalize trims the free-text fields and drops the read time of anything
// that is not an audiobook.
func (b *Book) Normalize() {
	b.Title = strings.TrimSpace(b.Title)
	b.Author = strings.TrimSpace(b.Author)
	b.ISBN = strings.TrimSpace(b.ISBN)
	b.CoverURL = strings.TrimSpace(b.CoverURL)
	b.Pages = strings.TrimSpace(b.Pages)
	b.CopyrightYear = strings.TrimSpace(b.CopyrightYear)
	b.Format = strings.TrimSpace(b.Format)
	b.ReadTimeHrs = strings.TrimSpace(b.ReadTimeHrs)
	b.ReadDate = strings.TrimSpace(b.ReadDate)
	b.Rating = strings.TrimSpace(b.Rating)
	b.Status = strings.TrimSpace(b.Status)

	if !b.IsAudiobook() {
		b.ReadTimeHrs = ""
	}
}
