package http

import (
	"github.com/gin-gonic/gin"

	"github.com/mrlokans/bookshelf/internal/security"
)

// NewRouter creates and configures the HTTP router with all endpoints.
// Uses RouterConfig to receive all dependencies.
func NewRouter(cfg RouterConfig) (*gin.Engine, error) {
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	// Apply security headers to all responses
	router.Use(security.HeadersMiddleware())

	// Read-only mode runs first so blocked writes never reach CSRF or handlers
	if cfg.ReadOnly != nil {
		router.Use(cfg.ReadOnly.Handler())
	}

	// CSRF must run before session so that session context is preserved
	if len(cfg.CSRFSecret) > 0 {
		router.Use(security.CSRFMiddleware(cfg.CSRFSecret, cfg.SecureCookies))
	}

	if cfg.Sessions != nil {
		router.Use(cfg.Sessions.SessionLoadSave())
	}

	tmpl, err := loadTemplates(cfg.TemplatesPath, cfg.CoverCache != nil)
	if err != nil {
		return nil, err
	}
	router.SetHTMLTemplate(tmpl)

	health := NewHealthController(cfg.Library, cfg.Version)
	ui := NewUIController(cfg.Library, cfg.CoverCache, cfg.Auditor, cfg.Sessions)
	books := NewBooksController(cfg.Library)
	metadataController := NewMetadataController(cfg.Proxy)

	// Health endpoints
	router.GET("/health", health.Status)
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "pong",
		})
	})

	// UI routes
	router.GET("/", ui.BooksPage)
	router.GET("/books", ui.BooksPage)
	router.GET("/add", ui.AddPage)
	router.POST("/add", ui.AddBook)
	router.GET("/book/:id", ui.BookPage)
	router.GET("/edit/:id", ui.EditPage)
	router.POST("/edit/:id", ui.UpdateBook)
	router.POST("/delete/:id", ui.DeleteBook)
	router.GET("/export", ui.Export)

	// Positional routes kept for links saved from the first version of the app
	router.GET("/remove/:index", ui.RemoveAt)
	router.GET("/status/:index/:status", ui.SetStatus)

	// Book cover endpoint
	if cfg.CoverCache != nil {
		covers := NewCoversController(cfg.CoverCache, cfg.Library)
		router.GET("/book/:id/cover", covers.GetCover)
	}

	// JSON endpoints
	router.GET("/api/books", books.GetAllBooks)
	router.GET("/api/search", metadataController.Search)
	router.GET("/api/summary", metadataController.Summary)

	return router, nil
}
