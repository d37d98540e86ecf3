// Package monitor exposes a small HTTP surface over a live training run:
// a health probe and the most recent metric records. It reads from the
// in-memory metric ring; the trainer remains the only writer.
package monitor

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v5"

	"github.com/genotools/genovae/internal/metrics"
	"github.com/genotools/genovae/internal/version"
)

// Server serves monitoring endpoints for one training run.
type Server struct {
	ring    *metrics.Ring
	started time.Time
}

// NewServer creates a monitor over the given metric ring.
func NewServer(ring *metrics.Ring) *Server {
	return &Server{ring: ring, started: time.Now().UTC()}
}

// Register installs the routes on e.
func (s *Server) Register(e *echo.Echo) {
	e.GET("/healthz", s.handleHealth)
	e.GET("/metrics/latest", s.handleLatest)
}

type healthResponse struct {
	Status  string `json:"status"`
	Run     string `json:"run"`
	Version string `json:"version"`
	Uptime  string `json:"uptime"`
}

type latestResponse struct {
	Run     string           `json:"run"`
	Records []metrics.Record `json:"records"`
}

func (s *Server) handleHealth(c *echo.Context) error {
	return c.JSON(http.StatusOK, healthResponse{
		Status:  "ok",
		Run:     s.ring.Run(),
		Version: version.String(),
		Uptime:  time.Since(s.started).Round(time.Second).String(),
	})
}

// handleLatest returns up to n recent records (all retained records when n
// is absent or invalid), oldest first.
func (s *Server) handleLatest(c *echo.Context) error {
	n := 0
	if raw := c.QueryParam("n"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			return echo.NewHTTPError(http.StatusBadRequest, "n must be a non-negative integer")
		}
		n = parsed
	}
	records := s.ring.Latest(n)
	if records == nil {
		records = []metrics.Record{}
	}
	return c.JSON(http.StatusOK, latestResponse{
		Run:     s.ring.Run(),
		Records: records,
	})
}
