package dashboard

/*
Responsibilities

- Serve read-only statistics over HTTP

The dashboard is a pure reader of the catalog. It never calls an engine
and keeps serving through engine crashes; the worst it can show is stale
numbers.
*/

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/TheBoringRats/ratcrowler/internal/catalog"
	"github.com/TheBoringRats/ratcrowler/internal/metadata"
)

const defaultRecentLimit = 20

type Server struct {
	metadataSink metadata.MetadataSink
	cat          *catalog.Catalog
	httpServer   *http.Server
}

func NewServer(metadataSink metadata.MetadataSink, cat *catalog.Catalog, port int) *Server {
	s := &Server{
		metadataSink: metadataSink,
		cat:          cat,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/stats", s.handleStats)
	mux.HandleFunc("GET /api/recent-pages", s.handleRecentPages)

	s.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

// Handler exposes the route table; tests mount it on their own listener.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start serves until ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- s.httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.httpServer.Shutdown(shutdownCtx)
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	}
}

type statsResponse struct {
	TotalURLsCrawled    int64     `json:"totalUrlsCrawled"`
	TotalBacklinksFound int64     `json:"totalBacklinksFound"`
	UniqueDomains       int64     `json:"uniqueDomains"`
	CrawlRatePerHour    float64   `json:"crawlRatePerHour"`
	BacklinkRatePerHour float64   `json:"backlinkRatePerHour"`
	DatabaseSizeMB      float64   `json:"databaseSizeMb"`
	CurrentMode         string    `json:"currentMode"`
	NextModeSwitch      time.Time `json:"nextModeSwitch"`
	UptimeSeconds       int64     `json:"uptimeSeconds"`
	LastUpdated         time.Time `json:"lastUpdated"`
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.cat.GetStats()
	if err != nil {
		s.recordError("Server.handleStats", err.Error())
		http.Error(w, "stats unavailable", http.StatusInternalServerError)
		return
	}

	writeJSON(w, statsResponse{
		TotalURLsCrawled:    stats.TotalURLsCrawled,
		TotalBacklinksFound: stats.TotalBacklinksFound,
		UniqueDomains:       stats.UniqueDomains,
		CrawlRatePerHour:    stats.CrawlRatePerHour,
		BacklinkRatePerHour: stats.BacklinkRatePerHour,
		DatabaseSizeMB:      stats.DatabaseSizeMB,
		CurrentMode:         stats.CurrentMode,
		NextModeSwitch:      stats.NextModeSwitch,
		UptimeSeconds:       stats.UptimeSeconds,
		LastUpdated:         stats.LastUpdated,
	})
}

type recentPage struct {
	URL            string    `json:"url"`
	Title          string    `json:"title"`
	HTTPStatus     int       `json:"httpStatus"`
	WordCount      int       `json:"wordCount"`
	ResponseTimeMs int64     `json:"responseTimeMs"`
	CrawlTime      time.Time `json:"crawlTime"`
}

func (s *Server) handleRecentPages(w http.ResponseWriter, r *http.Request) {
	limit := defaultRecentLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 && n <= 500 {
			limit = n
		}
	}

	pages, err := s.cat.RecentPages(limit)
	if err != nil {
		s.recordError("Server.handleRecentPages", err.Error())
		http.Error(w, "pages unavailable", http.StatusInternalServerError)
		return
	}

	response := make([]recentPage, 0, len(pages))
	for _, p := range pages {
		response = append(response, recentPage{
			URL:            p.URL,
			Title:          p.Title,
			HTTPStatus:     p.HTTPStatus,
			WordCount:      p.WordCount,
			ResponseTimeMs: p.ResponseTimeMs,
			CrawlTime:      p.CrawlTime,
		})
	}
	writeJSON(w, response)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func (s *Server) recordError(method, message string) {
	s.metadataSink.RecordError(
		time.Now(),
		"dashboard",
		method,
		metadata.CauseStorageFailure,
		message,
		nil,
	)
}
