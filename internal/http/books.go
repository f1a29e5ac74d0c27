package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/bookshelf/internal/library"
	"github.com/mrlokans/bookshelf/internal/query"
)

type BooksController struct {
	library *library.Library
}

func NewBooksController(lib *library.Library) *BooksController {
	return &BooksController{library: lib}
}

// GetAllBooks returns the collection as JSON, honoring the same q, format
// and sort parameters as the list view.
// GET /api/books
func (controller *BooksController) GetAllBooks(c *gin.Context) {
	books, err := controller.library.List(query.Options{
		Query:  c.Query("q"),
		Format: c.Query("format"),
		Sort:   query.ParseSort(c.Query("sort")),
	})
	if err != nil {
		respondJSONInternalError(c, err, "list books")
		return
	}

	c.JSON(http.StatusOK, books)
}
