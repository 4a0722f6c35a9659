package http

import (
	"github.com/gin-gonic/gin"
)

// RouterConfig receives all controller dependencies, improving testability
// and reducing parameter count.
type RouterConfig struct {
	Library    *LibraryController
	Reader     *ReaderController
	Covers     *CoversController
	Favourites *FavouritesController
	Bookmarks  *BookmarksController
	Stats      *StatsController
	History    *HistoryController
	Health     *HealthController
}

// NewRouter creates and configures the HTTP router with all endpoints.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	router.GET("/health", cfg.Health.Status)

	api := router.Group("/api")
	{
		api.GET("/books", cfg.Library.ListBooks)
		api.POST("/books/acquire", cfg.Library.AcquireBook)
		api.GET("/books/favourites", cfg.Favourites.ListFavourites)
		api.GET("/books/last-read", cfg.Library.LastRead)
		api.GET("/books/:id", cfg.Library.GetBook)
		api.DELETE("/books/:id", cfg.Library.DeleteBook)

		api.GET("/books/:id/text", cfg.Reader.GetText)
		api.GET("/books/:id/position", cfg.Reader.GetPosition)
		api.PUT("/books/:id/progress", cfg.Reader.UpdateProgress)
		api.GET("/books/:id/cover", cfg.Covers.GetCover)

		api.POST("/books/:id/favourite", cfg.Favourites.AddFavourite)
		api.DELETE("/books/:id/favourite", cfg.Favourites.RemoveFavourite)
		api.PUT("/books/:id/rating", cfg.Favourites.SetRating)

		api.POST("/books/:id/bookmarks", cfg.Bookmarks.AddBookmark)
		api.GET("/books/:id/bookmarks", cfg.Bookmarks.ListBookmarks)
		api.DELETE("/bookmarks/:id", cfg.Bookmarks.DeleteBookmark)

		api.GET("/catalog/search", cfg.Library.SearchCatalog)
		api.GET("/search-history", cfg.History.ListHistory)
		api.DELETE("/search-history", cfg.History.ClearHistory)

		api.POST("/reading-time", cfg.Stats.TrackTime)
		api.GET("/stats", cfg.Stats.GetStats)
	}

	return router
}
