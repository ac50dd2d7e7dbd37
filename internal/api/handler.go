// Package api exposes the match engine over HTTP.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strconv"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/gyaneshwarpardhi/scrimstats/internal/config"
	"github.com/gyaneshwarpardhi/scrimstats/internal/engine"
	"github.com/gyaneshwarpardhi/scrimstats/internal/event"
	"github.com/gyaneshwarpardhi/scrimstats/internal/identity"
	"github.com/gyaneshwarpardhi/scrimstats/internal/metrics"
	"github.com/gyaneshwarpardhi/scrimstats/internal/store"
	"github.com/gyaneshwarpardhi/scrimstats/internal/summary"
)

const (
	maxBatchSize = 100
	defaultLimit = 50
	maxLimit     = 500
)

// Handler holds all HTTP handler dependencies.
type Handler struct {
	eng    *engine.Engine
	loader *config.Loader
	store  *store.Store
	logger *slog.Logger
	mux    *http.ServeMux
}

// New creates an HTTP handler and registers all routes. st may be nil, in
// which case rows are not persisted and the summaries routes return 503.
func New(eng *engine.Engine, loader *config.Loader, st *store.Store, logger *slog.Logger) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	h := &Handler{eng: eng, loader: loader, store: st, logger: logger, mux: http.NewServeMux()}

	h.mux.HandleFunc("POST /v1/matches", h.processMatch)
	h.mux.HandleFunc("POST /v1/matches/batch", h.processBatch)
	h.mux.HandleFunc("GET /v1/summaries", h.listSummaries)
	h.mux.HandleFunc("GET /v1/summaries/{id}", h.getSummary)
	h.mux.HandleFunc("GET /v1/config", h.showConfig)
	h.mux.HandleFunc("POST /v1/config/reload", h.reloadConfig)
	h.mux.HandleFunc("GET /healthz", h.healthz)
	h.mux.HandleFunc("GET /readyz", h.readyz)
	h.mux.Handle("GET /metrics", promhttp.Handler())

	return loggingMiddleware(logger, h.mux)
}

type matchRequest struct {
	Dir string `json:"dir"`
	// Save defaults to true when a store is configured.
	Save *bool `json:"save,omitempty"`
}

type matchResponse struct {
	JobID     string              `json:"job_id"`
	SummaryID string              `json:"summary_id,omitempty"`
	Match     *engine.MatchResult `json:"match"`
}

// POST /v1/matches: run one match directory synchronously.
func (h *Handler) processMatch(w http.ResponseWriter, r *http.Request) {
	var req matchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid JSON: %s", err))
		return
	}
	if msg := checkDir(req.Dir); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	jobID := uuid.New().String()
	res, err := h.eng.ProcessSync(r.Context(), req.Dir)
	if err != nil {
		h.logger.Warn("match failed", "job_id", jobID, "dir", req.Dir, "err", err)
		writeError(w, statusFor(err), err.Error())
		return
	}

	resp := matchResponse{JobID: jobID, Match: res}
	if h.store != nil && (req.Save == nil || *req.Save) {
		sum, err := h.store.Save(r.Context(), res.Dir, res.Variant, res.Result.Row)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		resp.SummaryID = sum.ID.String()
	}
	writeJSON(w, http.StatusOK, resp)
}

type batchRequest struct {
	Dirs []string `json:"dirs"`
	Save *bool    `json:"save,omitempty"`
}

type batchItem struct {
	SummaryID string              `json:"summary_id,omitempty"`
	Match     *engine.MatchResult `json:"match"`
}

// POST /v1/matches/batch: run up to 100 match directories, results in
// request order. Individual failures do not fail the batch.
func (h *Handler) processBatch(w http.ResponseWriter, r *http.Request) {
	var req batchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid JSON: %s", err))
		return
	}
	if len(req.Dirs) == 0 {
		writeError(w, http.StatusBadRequest, "batch must contain at least one directory")
		return
	}
	if len(req.Dirs) > maxBatchSize {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("batch size %d exceeds max %d", len(req.Dirs), maxBatchSize))
		return
	}

	jobID := uuid.New().String()
	results, err := h.eng.RunBatch(r.Context(), req.Dirs)
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}

	save := h.store != nil && (req.Save == nil || *req.Save)
	items := make([]batchItem, len(results))
	failed := 0
	for i, res := range results {
		items[i].Match = res
		if res.Err != nil {
			failed++
			continue
		}
		if save {
			sum, err := h.store.Save(r.Context(), res.Dir, res.Variant, res.Result.Row)
			if err != nil {
				writeError(w, http.StatusInternalServerError, err.Error())
				return
			}
			items[i].SummaryID = sum.ID.String()
		}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"job_id":    jobID,
		"total":     len(results),
		"succeeded": len(results) - failed,
		"failed":    failed,
		"results":   items,
	})
}

// GET /v1/summaries?limit=N&variant=V&format=csv: newest stored rows
// first. CSV output needs rows of a single layout; filter by variant.
func (h *Handler) listSummaries(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		writeError(w, http.StatusServiceUnavailable, "storage is not configured")
		return
	}
	limit := defaultLimit
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n <= 0 || n > maxLimit {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("limit must be between 1 and %d", maxLimit))
			return
		}
		limit = n
	}
	sums, err := h.store.List(r.Context(), r.URL.Query().Get("variant"), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if sums == nil {
		sums = []*store.Summary{}
	}

	switch r.URL.Query().Get("format") {
	case "", "json":
	case "csv":
		rows := make([]*summary.Row, len(sums))
		for i, s := range sums {
			rows[i] = s.Row
		}
		writeCSV(w, rows)
		return
	default:
		writeError(w, http.StatusBadRequest, "format must be json or csv")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"count":     len(sums),
		"summaries": sums,
	})
}

// GET /v1/summaries/{id}
func (h *Handler) getSummary(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		writeError(w, http.StatusServiceUnavailable, "storage is not configured")
		return
	}
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid summary id")
		return
	}
	sum, err := h.store.Get(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, sum)
}

// GET /v1/config: the active variant, columns and milestone rules.
func (h *Handler) showConfig(w http.ResponseWriter, r *http.Request) {
	p := h.eng.Pipeline()
	cfg := p.Config()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"version":     cfg.Version,
		"variant":     cfg.Variant,
		"roster_size": cfg.RosterSize,
		"home":        cfg.Home.Players,
		"columns":     p.Header(),
		"milestones":  cfg.Milestones,
	})
}

// POST /v1/config/reload: re-read the config file. Change callbacks
// rebuild the pipeline; if the engine is still on an older config the
// rebuild failed and the previous pipeline stays active.
func (h *Handler) reloadConfig(w http.ResponseWriter, r *http.Request) {
	cfg, err := h.loader.Reload()
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if h.eng.Pipeline().Config() != cfg {
		writeError(w, http.StatusUnprocessableEntity, "config reloaded but pipeline rebuild failed; previous pipeline kept")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"reloaded": true,
		"version":  cfg.Version,
		"variant":  cfg.Variant.Name,
	})
}

// GET /healthz: always 200 (liveness probe).
func (h *Handler) healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GET /readyz: 503 if the match queue is over 80% full or storage is down.
func (h *Handler) readyz(w http.ResponseWriter, r *http.Request) {
	util := h.eng.QueueUtilization()
	metrics.QueueUtilization.Set(util)
	if h.store != nil {
		if err := h.store.Ping(r.Context()); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]interface{}{
				"status": "storage unavailable",
				"error":  err.Error(),
			})
			return
		}
	}
	if util > 0.8 {
		writeJSON(w, http.StatusServiceUnavailable, map[string]interface{}{
			"status":            "overloaded",
			"queue_utilization": util,
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":            "ready",
		"queue_utilization": util,
	})
}

func checkDir(dir string) string {
	if dir == "" {
		return "dir is required"
	}
	fi, err := os.Stat(dir)
	if err != nil {
		return fmt.Sprintf("dir %s: %s", dir, err)
	}
	if !fi.IsDir() {
		return fmt.Sprintf("%s is not a directory", dir)
	}
	return ""
}

// statusFor maps engine and pipeline errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, engine.ErrQueueFull):
		return http.StatusTooManyRequests
	case errors.Is(err, engine.ErrTimeout):
		return http.StatusGatewayTimeout
	case errors.Is(err, identity.ErrAmbiguousIdentity), errors.Is(err, event.ErrMalformedInput):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
