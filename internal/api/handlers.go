package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/rentalwatch/enjoytravel-scraper/internal/artifacts"
	"github.com/rentalwatch/enjoytravel-scraper/internal/jobs"
	"github.com/rentalwatch/enjoytravel-scraper/internal/progress"
	"github.com/rentalwatch/enjoytravel-scraper/internal/scrape"
)

type Handlers struct {
	scraper   *scrape.Service
	runner    *jobs.Runner
	progress  progress.Store
	artifacts *artifacts.Store
	logger    *slog.Logger
}

func NewHandlers(scraper *scrape.Service, runner *jobs.Runner, store progress.Store, artifactStore *artifacts.Store, logger *slog.Logger) *Handlers {
	return &Handlers{
		scraper:   scraper,
		runner:    runner,
		progress:  store,
		artifacts: artifactStore,
		logger:    logger.With("component", "api"),
	}
}

// Routes mounts the API surface on a chi router.
func (h *Handlers) Routes(r chi.Router) {
	r.Post("/api/search-location", h.SearchLocation)
	r.Post("/api/scrape", h.StartScrape)
	r.Get("/api/scrape-progress/{sessionID}", h.ScrapeProgress)
	r.Post("/api/bulk-scrape", h.StartBulkScrape)
	r.Get("/api/bulk-scrape-progress/{sessionID}", h.ScrapeProgress)
	r.Get("/api/download-csv/{filename}", h.DownloadCSV)
}

type searchLocationRequest struct {
	Query string `json:"query"`
}

// SearchLocation resolves a location query synchronously; it is the one
// endpoint whose failures surface as HTTP errors rather than progress
// states.
func (h *Handlers) SearchLocation(w http.ResponseWriter, r *http.Request) {
	var req searchLocationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Query == "" {
		h.respondError(w, http.StatusBadRequest, "Location query is required")
		return
	}

	locations, err := h.scraper.SearchLocations(r.Context(), req.Query)
	if errors.Is(err, scrape.ErrNoLocations) {
		h.respondError(w, http.StatusNotFound, "No locations found")
		return
	}
	if err != nil {
		h.logger.Error("location search failed", "query", req.Query, "error", err)
		h.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]any{"locations": locations})
}

type startResponse struct {
	SessionID string `json:"sessionId"`
	Message   string `json:"message"`
}

// StartScrape kicks off a single-date run and immediately returns its
// session ID. Outcomes, including validation failures, are reported
// through the progress endpoint only.
func (h *Handlers) StartScrape(w http.ResponseWriter, r *http.Request) {
	var req scrape.SingleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	sessionID := "session-" + uuid.New().String()
	h.progress.Set(r.Context(), sessionID, progress.Run{
		Status: progress.StatusStarting, Message: "Initializing scraper...", Progress: 0,
	})

	h.runner.Submit(sessionID, func(ctx context.Context) {
		h.scraper.RunSingle(ctx, sessionID, req)
	})

	h.respondJSON(w, http.StatusOK, startResponse{
		SessionID: sessionID,
		Message:   "Scraping started. Use /api/scrape-progress/{sessionId} to get updates.",
	})
}

// StartBulkScrape kicks off a day-by-day sweep.
func (h *Handlers) StartBulkScrape(w http.ResponseWriter, r *http.Request) {
	var req scrape.BulkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	sessionID := "bulk-" + uuid.New().String()
	h.progress.Set(r.Context(), sessionID, progress.Run{
		Status: progress.StatusStarting, Message: "Initializing bulk search...", Progress: 0,
	})

	h.runner.Submit(sessionID, func(ctx context.Context) {
		h.scraper.RunBulk(ctx, sessionID, req)
	})

	h.respondJSON(w, http.StatusOK, startResponse{
		SessionID: sessionID,
		Message:   "Bulk scraping started. Use /api/bulk-scrape-progress/{sessionId} to get updates.",
	})
}

// ScrapeProgress reports the current state of a session. Unknown
// sessions poll as the idle default, never as an error.
func (h *Handlers) ScrapeProgress(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	run, err := h.progress.Get(r.Context(), sessionID)
	if err != nil {
		h.logger.Error("progress lookup failed", "session", sessionID, "error", err)
	}
	h.respondJSON(w, http.StatusOK, run)
}

// DownloadCSV serves a stored artifact. Lookup is exact after
// canonicalization; a miss reports what was requested and what exists.
func (h *Handlers) DownloadCSV(w http.ResponseWriter, r *http.Request) {
	requested := chi.URLParam(r, "filename")

	filename, content, ok := h.artifacts.Get(requested)
	if !ok {
		h.logger.Warn("csv not found", "requested", requested)
		h.respondJSON(w, http.StatusNotFound, map[string]any{
			"error":     "CSV file not found. It may have expired or the session was cleared.",
			"requested": requested,
			"available": h.artifacts.Names(),
		})
		return
	}

	h.logger.Info("csv downloaded", "filename", filename, "bytes", len(content))
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(content))
}

func (h *Handlers) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}

func (h *Handlers) respondError(w http.ResponseWriter, status int, message string) {
	h.respondJSON(w, status, map[string]string{"error": message})
}
