// Package web serves a read-only status page, its JSON form and the
// Prometheus metrics.
package web

import (
	"context"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/sweeney/grow-controller/internal/datalog"
	"github.com/sweeney/grow-controller/internal/status"
)

// Limits for /history.json.
const (
	defaultHistory = 30
	maxHistory     = 720
)

// History returns stored readings, newest first.
type History interface {
	Recent(ctx context.Context, limit int) ([]datalog.StoredReading, error)
}

// Server serves the status page over HTTP.
type Server struct {
	httpServer *http.Server
	tracker    *status.Tracker
	history    History
}

// New creates a Server that reads state from tracker. metrics, if not nil,
// is mounted at /metrics and history, if not nil, at /history.json.
func New(addr string, tracker *status.Tracker, metrics http.Handler, history History) *Server {
	gin.SetMode(gin.ReleaseMode)
	s := &Server{tracker: tracker, history: history}

	r := gin.New()
	r.Use(gin.Recovery())
	r.GET("/", s.handleIndex)
	r.GET("/index.html", s.handleIndex)
	r.GET("/index.json", s.handleJSON)
	if metrics != nil {
		r.GET("/metrics", gin.WrapH(metrics))
	}
	if history != nil {
		r.GET("/history.json", s.handleHistory)
	}

	s.httpServer = &http.Server{
		Addr:    addr,
		Handler: r,
	}
	return s
}

// Handler returns the router.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// ListenAndServe starts listening. It blocks until the server is shut down.
func (s *Server) ListenAndServe() error {
	return s.httpServer.ListenAndServe()
}

// Serve accepts connections on the given listener.
func (s *Server) Serve(ln net.Listener) error {
	return s.httpServer.Serve(ln)
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleIndex(c *gin.Context) {
	snap := s.tracker.Snapshot()
	c.Header("Content-Type", "text/html; charset=utf-8")
	c.Status(http.StatusOK)
	renderHTML(c.Writer, snap)
}

func (s *Server) handleJSON(c *gin.Context) {
	c.Data(http.StatusOK, "application/json", status.FormatJSON(s.tracker.Snapshot()))
}

type historyReading struct {
	ID          string  `json:"id"`
	RecordedAt  string  `json:"recorded_at"`
	Temperature float64 `json:"temperature_c"`
	Humidity    float64 `json:"humidity_pct"`
}

// handleHistory returns the latest readings. ?limit= selects how many.
func (s *Server) handleHistory(c *gin.Context) {
	limit := defaultHistory
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		limit = min(n, maxHistory)
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	rows, err := s.history.Recent(ctx, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	out := make([]historyReading, 0, len(rows))
	for _, r := range rows {
		out = append(out, historyReading{
			ID:          r.ID,
			RecordedAt:  r.RecordedAt,
			Temperature: r.Temperature,
			Humidity:    r.Humidity,
		})
	}
	c.JSON(http.StatusOK, gin.H{"readings": out})
}
