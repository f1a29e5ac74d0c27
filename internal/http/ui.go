package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/mrlokans/bookshelf/internal/entities"
	"github.com/mrlokans/bookshelf/internal/library"
	"github.com/mrlokans/bookshelf/internal/query"
	"github.com/mrlokans/bookshelf/internal/readonly"
	"github.com/mrlokans/bookshelf/internal/security"
	"github.com/mrlokans/bookshelf/internal/storage"
)

// sortOption is one entry of the sort dropdown.
type sortOption struct {
	Value query.Sort
	Label string
}

var sortOptions = []sortOption{
	{query.SortDateDesc, "Read date, newest first"},
	{query.SortDateAsc, "Read date, oldest first"},
	{query.SortTitle, "Title"},
	{query.SortAuthor, "Author"},
}

// bookForm is the add/edit form payload.
type bookForm struct {
	Title         string `form:"title" binding:"required"`
	Author        string `form:"author"`
	ISBN          string `form:"isbn"`
	CoverURL      string `form:"cover_url"`
	Pages         string `form:"pages"`
	CopyrightYear string `form:"copyright_year"`
	PlotSummary   string `form:"plot_summary"`
	Format        string `form:"format"`
	ReadTimeHrs   string `form:"read_time_hrs"`
	ReadDate      string `form:"read_date" binding:"omitempty,datetime=2006-01-02"`
	Rating        string `form:"rating"`
	Status        string `form:"status"`
}

func (f bookForm) fields() library.Fields {
	return library.Fields(f)
}

type UIController struct {
	library  *library.Library
	covers   CoverCache
	auditor  Archiver
	sessions *SessionManager
}

func NewUIController(lib *library.Library, covers CoverCache, auditor Archiver, sessions *SessionManager) *UIController {
	return &UIController{
		library:  lib,
		covers:   covers,
		auditor:  auditor,
		sessions: sessions,
	}
}

// page merges the values every template needs into data.
func (controller *UIController) page(c *gin.Context, data gin.H) gin.H {
	data["Flash"] = controller.sessions.PopFlash(c)
	data["ReadOnly"] = c.GetBool(readonly.ContextKey)
	data["CSRFToken"] = security.GetCSRFToken(c)
	data["CSRFField"] = security.CSRFFieldName
	return data
}

// BooksPage renders the filtered and sorted collection.
// GET / and GET /books
func (controller *UIController) BooksPage(c *gin.Context) {
	all, err := controller.library.All()
	if err != nil {
		respondInternalError(c, err, "load library")
		return
	}

	opts := query.Options{
		Query:  c.Query("q"),
		Format: c.Query("format"),
		Sort:   query.ParseSort(c.Query("sort")),
	}
	entries := library.EntriesOf(all, opts)

	c.HTML(http.StatusOK, "index", controller.page(c, gin.H{
		"Entries":  entries,
		"Total":    len(all),
		"Query":    opts.Query,
		"Format":   opts.Format,
		"Sort":     opts.Sort,
		"Formats":  query.Formats(all),
		"Sorts":    sortOptions,
		"Statuses": entities.KnownStatuses,
	}))
}

// AddPage renders the add form, prefilled from query parameters when the
// user arrives from a catalog lookup.
// GET /add
func (controller *UIController) AddPage(c *gin.Context) {
	prefill := library.Fields{
		Title:         c.Query("title"),
		Author:        c.Query("author"),
		ISBN:          c.Query("isbn"),
		CoverURL:      c.Query("cover_url"),
		Pages:         c.Query("pages"),
		CopyrightYear: c.Query("copyright_year"),
		PlotSummary:   c.Query("plot_summary"),
		Format:        c.Query("format"),
		Status:        entities.StatusToRead,
	}
	controller.renderForm(c, http.StatusOK, "/add", "Add book", prefill, "")
}

// AddBook creates a book from the submitted form.
// POST /add
func (controller *UIController) AddBook(c *gin.Context) {
	var form bookForm
	if err := c.ShouldBind(&form); err != nil {
		controller.renderForm(c, http.StatusBadRequest, "/add", "Add book", form.fields(), formError(err))
		return
	}

	book, err := controller.library.Add(form.fields())
	if err != nil {
		if errors.Is(err, storage.ErrInvalidRecord) {
			controller.renderForm(c, http.StatusBadRequest, "/add", "Add book", form.fields(), formError(err))
			return
		}
		respondInternalError(c, err, "add book")
		return
	}

	controller.sessions.Flash(c, fmt.Sprintf("Added %q.", book.Title))
	redirectToList(c)
}

// BookPage renders the details of one book.
// GET /book/:id
func (controller *UIController) BookPage(c *gin.Context) {
	book, ok := controller.findBook(c)
	if !ok {
		return
	}

	c.HTML(http.StatusOK, "detail", controller.page(c, gin.H{
		"PageTitle": book.Title,
		"Book":      book,
	}))
}

// EditPage renders the edit form of one book.
// GET /edit/:id
func (controller *UIController) EditPage(c *gin.Context) {
	book, ok := controller.findBook(c)
	if !ok {
		return
	}
	controller.renderForm(c, http.StatusOK, "/edit/"+book.ID, "Edit "+book.Title, library.FieldsOf(*book), "")
}

// UpdateBook replaces the editable fields of one book.
// POST /edit/:id
func (controller *UIController) UpdateBook(c *gin.Context) {
	id := c.Param("id")
	action := "/edit/" + id

	var form bookForm
	if err := c.ShouldBind(&form); err != nil {
		controller.renderForm(c, http.StatusBadRequest, action, "Edit book", form.fields(), formError(err))
		return
	}

	updated, previous, err := controller.library.Update(id, form.fields())
	switch {
	case errors.Is(err, storage.ErrNotFound):
		redirectToList(c)
		return
	case errors.Is(err, storage.ErrInvalidRecord):
		controller.renderForm(c, http.StatusBadRequest, action, "Edit book", form.fields(), formError(err))
		return
	case err != nil:
		respondInternalError(c, err, "update book")
		return
	}

	if previous.CoverURL != updated.CoverURL {
		controller.invalidateCover(updated.ID)
	}

	controller.sessions.Flash(c, fmt.Sprintf("Saved %q.", updated.Title))
	c.Redirect(http.StatusSeeOther, "/book/"+updated.ID)
}

// DeleteBook removes one book and archives it.
// POST /delete/:id
func (controller *UIController) DeleteBook(c *gin.Context) {
	removed, err := controller.library.Delete(c.Param("id"))
	if errors.Is(err, storage.ErrNotFound) {
		redirectToList(c)
		return
	}
	if err != nil {
		respondInternalError(c, err, "delete book")
		return
	}

	controller.afterRemoval(c, removed)
	redirectToList(c)
}

// RemoveAt deletes a book by its position in insertion order.
// GET /remove/:index
func (controller *UIController) RemoveAt(c *gin.Context) {
	index, ok := parseIndexParam(c, "index")
	if !ok {
		return
	}

	removed, err := controller.library.RemoveAt(index)
	if err != nil {
		respondInternalError(c, err, "remove book")
		return
	}

	controller.afterRemoval(c, removed)
	redirectToList(c)
}

// SetStatus changes the reading status of a book by its position.
// GET /status/:index/:status
func (controller *UIController) SetStatus(c *gin.Context) {
	index, ok := parseIndexParam(c, "index")
	if !ok {
		return
	}

	book, err := controller.library.SetStatusAt(index, c.Param("status"))
	if err != nil {
		respondInternalError(c, err, "set status")
		return
	}

	controller.sessions.Flash(c, fmt.Sprintf("%q marked as %s.", book.Title, book.Status))
	redirectToList(c)
}

// Export downloads the whole collection in the storage format.
// GET /export
func (controller *UIController) Export(c *gin.Context) {
	books, err := controller.library.All()
	if err != nil {
		respondInternalError(c, err, "export library")
		return
	}

	data, err := json.MarshalIndent(books, "", "  ")
	if err != nil {
		respondInternalError(c, err, "encode library")
		return
	}

	c.Header("Content-Disposition", `attachment; filename="library.json"`)
	c.Data(http.StatusOK, "application/json; charset=utf-8", data)
}

// findBook loads the book named by the :id parameter. A missing book
// redirects to the list.
func (controller *UIController) findBook(c *gin.Context) (*entities.Book, bool) {
	book, err := controller.library.Get(c.Param("id"))
	if errors.Is(err, storage.ErrNotFound) {
		redirectToList(c)
		return nil, false
	}
	if err != nil {
		respondInternalError(c, err, "load book")
		return nil, false
	}
	return book, true
}

func (controller *UIController) renderForm(c *gin.Context, status int, action, title string, book library.Fields, errMsg string) {
	c.HTML(status, "form", controller.page(c, gin.H{
		"PageTitle": title,
		"Action":    action,
		"Book":      book,
		"Error":     errMsg,
		"Lookup":    action == "/add",
		"Formats":   entities.KnownFormats,
		"Statuses":  entities.KnownStatuses,
	}))
}

// afterRemoval archives a deleted record, drops its cached cover and
// leaves a flash message.
func (controller *UIController) afterRemoval(c *gin.Context, removed *entities.Book) {
	if controller.auditor != nil {
		if _, err := controller.auditor.ArchiveDeleted(*removed, c.FullPath()); err != nil {
			log.Printf("Failed to archive deleted book %q: %v", removed.Title, err)
		}
	}
	controller.invalidateCover(removed.ID)
	controller.sessions.Flash(c, fmt.Sprintf("Removed %q.", removed.Title))
}

func (controller *UIController) invalidateCover(bookID string) {
	if controller.covers == nil || bookID == "" {
		return
	}
	if err := controller.covers.InvalidateCover(bookID); err != nil {
		log.Printf("Failed to invalidate cover for book %s: %v", bookID, err)
	}
}

// formError turns a binding or storage validation error into a message
// for the form.
func formError(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		switch verrs[0].Field() {
		case "Title":
			return "Title is required."
		case "ReadDate":
			return "Read date must be a YYYY-MM-DD date."
		default:
			return fmt.Sprintf("%s is invalid.", verrs[0].Field())
		}
	}
	if errors.Is(err, storage.ErrInvalidRecord) {
		return err.Error()
	}
	return "The form could not be read."
}
