package entrypoint

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/akhmetov/librarian/internal/archive"
	"github.com/akhmetov/librarian/internal/catalog"
	"github.com/akhmetov/librarian/internal/config"
	"github.com/akhmetov/librarian/internal/covers"
	"github.com/akhmetov/librarian/internal/database"
	"github.com/akhmetov/librarian/internal/database/bookmarks"
	"github.com/akhmetov/librarian/internal/database/books"
	"github.com/akhmetov/librarian/internal/database/history"
	"github.com/akhmetov/librarian/internal/database/stats"
	"github.com/akhmetov/librarian/internal/fb2"
	http_controllers "github.com/akhmetov/librarian/internal/http"
	"github.com/akhmetov/librarian/internal/library"
	"github.com/akhmetov/librarian/internal/reading"
	"github.com/akhmetov/librarian/internal/scheduler"
	"github.com/akhmetov/librarian/internal/textstore"
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
		fmt.Printf("Starting server at %s:%d\n", cfg.HTTP.Host, cfg.HTTP.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// Graceful shutdown on SIGINT/SIGTERM
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Printf("Shutdown Server, waiting %v before killing\n", timeout)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if onShutdown != nil {
		onShutdown(ctx)
	}

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server Shutdown:", err)
	}

	log.Println("Server exiting")
}

// BuildService constructs the acquisition pipeline from configuration.
// Shared between the HTTP server and the CLI.
func BuildService(cfg *config.Config, db *database.Database) (*library.Service, error) {
	texts, err := textstore.NewStore(cfg.Storage.TextsDir)
	if err != nil {
		return nil, fmt.Errorf("init text store: %w", err)
	}

	coverStore, err := covers.NewStore(cfg.Storage.CoversDir)
	if err != nil {
		return nil, fmt.Errorf("init cover store: %w", err)
	}

	fetcher, err := archive.NewFetcher(cfg.Catalog.BaseURL, cfg.Storage.TempDir,
		archive.WithTimeout(cfg.Catalog.RequestTimeout))
	if err != nil {
		return nil, fmt.Errorf("init fetcher: %w", err)
	}

	catalogClient := catalog.NewClient(cfg.Catalog.BaseURL,
		catalog.WithTimeout(cfg.Catalog.RequestTimeout))

	return library.NewService(
		catalogClient,
		fetcher,
		fb2.NewParser(),
		texts,
		coverStore,
		books.NewRepository(db.DB),
		history.NewRepository(db.DB),
		cfg.Catalog.FetchRetries,
		cfg.Catalog.RetryDelay,
	), nil
}

func Run(cfg *config.Config, version string) {
	log.Printf("Starting Librarian v%s", version)

	db, err := database.NewDatabase(cfg.Database.Path)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("Failed to close database: %v", err)
		}
	}()

	service, err := BuildService(cfg, db)
	if err != nil {
		log.Fatalf("Failed to build acquisition pipeline: %v", err)
	}

	bookRepo := books.NewRepository(db.DB)
	historyRepo := history.NewRepository(db.DB)

	cleanup := scheduler.NewCleanupScheduler(historyRepo, cfg.Storage.TempDir,
		cfg.Cleanup.TempMaxAge, cfg.Cleanup.HistoryRetention)
	// Sweep leftovers from a previous crash before accepting requests.
	cleanup.RunOnce()
	if err := cleanup.Start(cfg.Cleanup.Schedule); err != nil {
		log.Printf("Failed to start cleanup scheduler: %v", err)
	}

	routerCfg := http_controllers.RouterConfig{
		Library:    http_controllers.NewLibraryController(service, bookRepo),
		Reader:     http_controllers.NewReaderController(service, reading.NewTracker(bookRepo)),
		Covers:     http_controllers.NewCoversController(service),
		Favourites: http_controllers.NewFavouritesController(bookRepo),
		Bookmarks:  http_controllers.NewBookmarksController(bookmarks.NewRepository(db.DB)),
		Stats:      http_controllers.NewStatsController(stats.NewRepository(db.DB)),
		History:    http_controllers.NewHistoryController(historyRepo),
		Health:     http_controllers.NewHealthController(db, version),
	}

	router := http_controllers.NewRouter(routerCfg)

	onShutdown := func(ctx context.Context) {
		cleanup.Stop()
	}

	Serve(router, cfg, onShutdown)
}
