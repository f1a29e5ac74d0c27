package http

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/bookshelf/internal/library"
	"github.com/mrlokans/bookshelf/internal/storage"
)

// CoversController handles book cover requests.
type CoversController struct {
	cache   CoverCache
	library *library.Library
}

// NewCoversController creates a new CoversController.
func NewCoversController(cache CoverCache, lib *library.Library) *CoversController {
	return &CoversController{
		cache:   cache,
		library: lib,
	}
}

// GetCover serves a cached book cover image.
// GET /book/:id/cover
func (cc *CoversController) GetCover(c *gin.Context) {
	book, err := cc.library.Get(c.Param("id"))
	if errors.Is(err, storage.ErrNotFound) {
		c.Status(http.StatusNotFound)
		return
	}
	if err != nil {
		respondInternalError(c, err, "load book for cover")
		return
	}

	if book.CoverURL == "" {
		c.Status(http.StatusNotFound)
		return
	}

	cachePath, err := cc.cache.GetCover(c.Request.Context(), book.ID, book.CoverURL)
	if err != nil || cachePath == "" {
		if err != nil {
			log.Printf("Cover cache miss for book %s: %v", book.ID, err)
		}
		// Fallback: redirect to original URL
		c.Redirect(http.StatusTemporaryRedirect, book.CoverURL)
		return
	}

	c.File(cachePath)
}
