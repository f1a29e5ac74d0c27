package http

import (
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// ErrorResponse is the error body of the JSON endpoints.
type ErrorResponse struct {
	Error string `json:"error"`
}

// --- Error Response Helpers ---

// respondInternalError logs the error and sends a plain 500 response.
// The actual error is logged but not exposed to the client.
func respondInternalError(c *gin.Context, err error, context string) {
	log.Printf("Internal error (%s): %v", context, err)
	c.String(http.StatusInternalServerError, "Internal server error")
}

// respondJSONInternalError is respondInternalError for the JSON endpoints.
func respondJSONInternalError(c *gin.Context, err error, context string) {
	log.Printf("Internal error (%s): %v", context, err)
	c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
}

// redirectToList sends the browser back to the collection view.
func redirectToList(c *gin.Context) {
	c.Redirect(http.StatusSeeOther, "/")
}

// --- Parameter Parsing ---

// parseIndexParam extracts a positional index from URL parameters.
// Anything but a non-negative integer responds with 404, as if the route did
// not exist.
func parseIndexParam(c *gin.Context, paramName string) (int, bool) {
	index, err := strconv.Atoi(c.Param(paramName))
	if err != nil || index < 0 {
		c.String(http.StatusNotFound, "Not found")
		return 0, false
	}
	return index, true
}
