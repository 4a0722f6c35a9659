package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/akhmetov/librarian/internal/entities"
)

// StatsStore defines database operations for reading statistics.
type StatsStore interface {
	AddSeconds(day time.Time, seconds int) error
	Recent(n int) ([]entities.ReadingStat, error)
	TotalSeconds() (int64, error)
}

type StatsController struct {
	store StatsStore
}

func NewStatsController(store StatsStore) *StatsController {
	return &StatsController{store: store}
}

// TrackTimeRequest reports seconds spent reading since the last ping.
type TrackTimeRequest struct {
	Seconds int `json:"seconds" binding:"required"`
}

// TrackTime accumulates reading time into today's stats row.
// POST /api/reading-time
func (sc *StatsController) TrackTime(c *gin.Context) {
	var req TrackTimeRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Seconds <= 0 {
		respondBadRequest(c, "seconds must be a positive integer")
		return
	}

	if err := sc.store.AddSeconds(time.Now(), req.Seconds); err != nil {
		respondInternalError(c, err, "track time")
		return
	}
	c.Status(http.StatusNoContent)
}

// GetStats returns recent daily reading stats and the all-time total.
// GET /api/stats
func (sc *StatsController) GetStats(c *gin.Context) {
	recent, err := sc.store.Recent(30)
	if err != nil {
		respondInternalError(c, err, "get stats")
		return
	}
	total, err := sc.store.TotalSeconds()
	if err != nil {
		respondInternalError(c, err, "get stats total")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"days":          recent,
		"total_seconds": total,
	})
}
