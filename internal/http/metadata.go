package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/bookshelf/internal/metadata"
)

// SummaryResponse is the body of GET /api/summary.
type SummaryResponse struct {
	Summary string `json:"summary"`
}

// MetadataController exposes the catalog lookups used by the add form.
// Both endpoints always answer 200; failures show up as empty results.
type MetadataController struct {
	proxy MetadataProxy
}

func NewMetadataController(proxy MetadataProxy) *MetadataController {
	return &MetadataController{proxy: proxy}
}

// Search returns catalog candidates for a query.
// GET /api/search?q=&field=
func (mc *MetadataController) Search(c *gin.Context) {
	field := metadata.ParseSearchField(c.Query("field"))
	candidates := mc.proxy.Search(c.Request.Context(), c.Query("q"), field)
	if candidates == nil {
		candidates = []metadata.Candidate{}
	}
	c.JSON(http.StatusOK, candidates)
}

// Summary returns the truncated description of a catalog work.
// GET /api/summary?key=
func (mc *MetadataController) Summary(c *gin.Context) {
	c.JSON(http.StatusOK, SummaryResponse{
		Summary: mc.proxy.Summary(c.Request.Context(), c.Query("key")),
	})
}
