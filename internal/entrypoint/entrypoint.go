package entrypoint

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/bookshelf/internal/audit"
	"github.com/mrlokans/bookshelf/internal/backup"
	"github.com/mrlokans/bookshelf/internal/config"
	"github.com/mrlokans/bookshelf/internal/covers"
	http_controllers "github.com/mrlokans/bookshelf/internal/http"
	"github.com/mrlokans/bookshelf/internal/library"
	"github.com/mrlokans/bookshelf/internal/logging"
	"github.com/mrlokans/bookshelf/internal/metadata"
	"github.com/mrlokans/bookshelf/internal/readonly"
	"github.com/mrlokans/bookshelf/internal/security"
	"github.com/mrlokans/bookshelf/internal/storage"
)

// ShutdownFunc is called during graceful shutdown to clean up resources.
type ShutdownFunc func(ctx context.Context)

func Serve(router *gin.Engine, cfg *config.Config, onShutdown ShutdownFunc) {
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler: router,
	}

	go func() {
		log.Printf("Starting server at %s:%d", cfg.HTTP.Host, cfg.HTTP.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// Wait for SIGINT or SIGTERM, then give in-flight requests the
	// configured timeout to finish.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Printf("Shutdown Server, waiting %v before killing\n", timeout)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	// Stop background jobs before the server
	if onShutdown != nil {
		onShutdown(ctx)
	}

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server Shutdown:", err)
	}

	log.Println("Server exiting")
}

func Run(cfg *config.Config, version string) {
	logCloser := logging.Setup(cfg.Logging)
	defer logCloser.Close()

	log.Printf("Starting Bookshelf v%s", version)
	log.Printf("Library file: %s", cfg.Library.Path)

	store := storage.NewFileStore(cfg.Library.Path)
	if _, err := store.Load(); err != nil {
		log.Fatalf("Failed to read library %s: %v", cfg.Library.Path, err)
	}
	lib := library.New(store)

	client := metadata.NewOpenLibraryClient(
		metadata.WithBaseURL(cfg.OpenLibrary.BaseURL),
		metadata.WithTimeout(cfg.OpenLibrary.Timeout),
		metadata.WithRateLimit(cfg.OpenLibrary.RPS),
	)
	proxy := metadata.NewProxy(client)

	auditor := audit.NewAuditor(cfg.Audit.Dir)

	routerCfg := http_controllers.RouterConfig{
		Library:       lib,
		Proxy:         proxy,
		Auditor:       auditor,
		Sessions:      http_controllers.NewSessionManager(cfg.Security.SessionLifetime, cfg.Security.SecureCookies),
		SecureCookies: cfg.Security.SecureCookies,
		TemplatesPath: cfg.UI.TemplatesPath,
		Version:       version,
	}

	// A nil *covers.Cache must not end up in the interface field
	coverCache, err := covers.NewCache(cfg.Covers.Dir)
	if err != nil {
		log.Printf("WARNING: Failed to initialize cover cache: %v", err)
	} else {
		log.Printf("Cover cache initialized at %s", cfg.Covers.Dir)
		routerCfg.CoverCache = coverCache
	}

	if cfg.Global.ReadOnly {
		log.Printf("Read-only mode enabled - write operations will be blocked")
		routerCfg.ReadOnly = readonly.NewMiddleware(true)
	}

	// Generate or use configured CSRF secret
	if cfg.Security.CSRFSecret != "" {
		routerCfg.CSRFSecret = security.DecodeSecret(cfg.Security.CSRFSecret)
	} else {
		secret, err := security.GenerateSecret()
		if err != nil {
			log.Fatalf("Failed to generate CSRF secret: %v", err)
		}
		routerCfg.CSRFSecret = security.DecodeSecret(secret)
		log.Printf("Generated CSRF secret (set CSRF_SECRET to keep forms valid across restarts)")
	}

	router, err := http_controllers.NewRouter(routerCfg)
	if err != nil {
		log.Fatalf("Failed to create router: %v", err)
	}

	// Scheduled backups of the library file
	var scheduler *backup.Scheduler
	schedulerCtx, schedulerCancel := context.WithCancel(context.Background())
	defer schedulerCancel()
	if cfg.Backup.Enabled {
		snapshotter := backup.NewSnapshotter(cfg.Library.Path, cfg.Backup.Dir, cfg.Backup.Keep)
		scheduler = backup.NewScheduler(snapshotter, cfg.Backup.Schedule)
		if err := scheduler.Start(schedulerCtx); err != nil {
			log.Printf("WARNING: Failed to start backup scheduler: %v", err)
			scheduler = nil
		} else if next := scheduler.NextRun(); next != nil {
			log.Printf("Backups enabled (%s), next run at %s", cfg.Backup.Schedule, next.Format(time.RFC3339))
		}
	}

	onShutdown := func(ctx context.Context) {
		if scheduler != nil {
			scheduler.Stop()
		}
		schedulerCancel()
	}

	Serve(router, cfg, onShutdown)
}
