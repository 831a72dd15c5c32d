package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/goran-ethernal/HolderIndexor/internal/logger"
	"github.com/goran-ethernal/HolderIndexor/internal/population"
	"github.com/goran-ethernal/HolderIndexor/pkg/holders"
)

// HolderService defines the query surface served by the API.
type HolderService interface {
	Collections() []population.CollectionInfo
	ListHolders(ctx context.Context, collection string, page, pageSize int) (*holders.HolderPage, error)
	GetHolder(ctx context.Context, collection, wallet string) (*holders.Holder, bool, error)
	GetProgress(ctx context.Context, collection string) (*holders.ProgressState, error)
	TriggerPopulation(ctx context.Context, collection string, force bool) (holders.TriggerStatus, error)
}

// Handler handles HTTP requests for the API.
type Handler struct {
	service HolderService
	log     *logger.Logger
}

// NewHandler creates a new API handler.
func NewHandler(service HolderService, log *logger.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log,
	}
}

// ListCollections returns every configured collection.
// @Summary List collections
// @Description Get the configured collections with their contracts, tier tables and reward strategy
// @Tags Collections
// @Produce json
// @Success 200 {array} population.CollectionInfo "List of collections"
// @Router /api/v1/collections [get]
func (h *Handler) ListCollections(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.service.Collections())
}

// ListHolders returns one page of ranked holders.
// @Summary List holders of a collection
// @Description Retrieve holders of the last committed snapshot ordered by rank, with collection totals
// @Tags Holders
// @Produce json
// @Param name path string true "Collection name"
// @Param page query int false "1-based page number" default(1)
// @Param pageSize query int false "Holders per page, at most 1000" default(50)
// @Success 200 {object} holders.HolderPage "Page of holders with summary"
// @Failure 400 {object} ErrorResponse "Invalid parameters"
// @Failure 404 {object} ErrorResponse "Collection not found or disabled"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /api/v1/collections/{name}/holders [get]
func (h *Handler) ListHolders(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")

	page, err := intParam(r, "page")
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	pageSize, err := intParam(r, "pageSize")
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.service.ListHolders(r.Context(), name, page, pageSize)
	if err != nil {
		h.respondServiceError(w, err, "list holders")
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// GetHolder returns a single holder.
// @Summary Get a holder
// @Description Look a wallet up in the last committed snapshot. Wallets are matched case-insensitively
// @Tags Holders
// @Produce json
// @Param name path string true "Collection name"
// @Param wallet path string true "Wallet address"
// @Success 200 {object} holders.Holder "Holder"
// @Failure 400 {object} ErrorResponse "Invalid wallet address"
// @Failure 404 {object} ErrorResponse "Collection or holder not found"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /api/v1/collections/{name}/holders/{wallet} [get]
func (h *Handler) GetHolder(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	wallet := r.PathValue("wallet")

	holder, found, err := h.service.GetHolder(r.Context(), name, wallet)
	if err != nil {
		h.respondServiceError(w, err, "get holder")
		return
	}
	if !found {
		respondError(w, http.StatusNotFound, fmt.Sprintf("wallet '%s' holds no tokens of '%s'", wallet, name))
		return
	}

	respondJSON(w, http.StatusOK, holder)
}

// GetProgress returns the progress of the latest population.
// @Summary Get population progress
// @Description Poll the state machine of the latest population run of a collection
// @Tags Population
// @Produce json
// @Param name path string true "Collection name"
// @Success 200 {object} holders.ProgressState "Progress state"
// @Failure 404 {object} ErrorResponse "Collection not found or disabled"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /api/v1/collections/{name}/progress [get]
func (h *Handler) GetProgress(w http.ResponseWriter, r *http.Request) {
	progress, err := h.service.GetProgress(r.Context(), r.PathValue("name"))
	if err != nil {
		h.respondServiceError(w, err, "get progress")
		return
	}

	respondJSON(w, http.StatusOK, progress)
}

// TriggerPopulation starts a population run.
// @Summary Trigger a population
// @Description Start a background population run. Returns in_progress when a run of the collection is already in flight
// @Tags Population
// @Produce json
// @Param name path string true "Collection name"
// @Param force query bool false "Rebuild from live ownership instead of replaying events" default(false)
// @Success 202 {object} TriggerResponse "Run started"
// @Success 200 {object} TriggerResponse "Run already in progress"
// @Failure 400 {object} ErrorResponse "Invalid parameters"
// @Failure 404 {object} ErrorResponse "Collection not found or disabled"
// @Failure 503 {object} ErrorResponse "Shutting down"
// @Router /api/v1/collections/{name}/populate [post]
func (h *Handler) TriggerPopulation(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")

	var force bool
	if v := r.URL.Query().Get("force"); v != "" {
		parsed, err := strconv.ParseBool(v)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid force: must be a boolean")
			return
		}
		force = parsed
	}

	status, err := h.service.TriggerPopulation(r.Context(), name, force)
	if err != nil {
		h.respondServiceError(w, err, "trigger population")
		return
	}

	code := http.StatusAccepted
	if status == holders.StatusInProgress {
		code = http.StatusOK
	}
	respondJSON(w, code, TriggerResponse{Collection: name, Status: status})
}

// Health returns the health status of the API and the population of every enabled collection.
// @Summary Health check
// @Description Check the API and the outcome of the latest population of every enabled collection
// @Tags Health
// @Produce json
// @Success 200 {object} HealthResponse "API and collection health status"
// @Router /health [get]
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	response := HealthResponse{
		Status:      "ok",
		Timestamp:   time.Now(),
		Collections: []CollectionStatus{},
	}

	for _, c := range h.service.Collections() {
		if !c.Enabled {
			continue
		}

		status := CollectionStatus{Name: c.Name}
		progress, err := h.service.GetProgress(r.Context(), c.Name)
		if err != nil {
			h.log.Warnf("failed to read progress of %s: %v", c.Name, err)
		} else {
			status.Step = progress.Step
			status.LastProcessedBlock = progress.LastProcessedBlock
			status.LastUpdated = progress.LastUpdated
			status.Healthy = progress.Step != holders.StepError
		}

		if !status.Healthy {
			response.Status = "degraded"
		}
		response.Collections = append(response.Collections, status)
	}

	respondJSON(w, http.StatusOK, response)
}

// respondServiceError maps service errors to HTTP statuses.
func (h *Handler) respondServiceError(w http.ResponseWriter, err error, action string) {
	switch {
	case errors.Is(err, population.ErrConfiguration):
		respondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, population.ErrInvalidArgument):
		respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, population.ErrShuttingDown):
		respondError(w, http.StatusServiceUnavailable, err.Error())
	default:
		h.log.Errorf("Failed to %s: %v", action, err)
		respondError(w, http.StatusInternalServerError, "failed to "+action)
	}
}

// intParam parses an optional non-negative integer query parameter. Absent parameters are 0.
func intParam(r *http.Request, name string) (int, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return 0, nil
	}

	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid %s: must be a non-negative integer", name)
	}
	return n, nil
}

// respondJSON sends a JSON response.
func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")

	// Encode JSON first to catch any errors before writing status
	encoded, err := json.Marshal(data)
	if err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(status)

	// Headers already sent, a failed write can only be dropped
	_, _ = w.Write(encoded)
}

// respondError sends an error response.
func respondError(w http.ResponseWriter, status int, message string) {
	response := ErrorResponse{
		Error:   http.StatusText(status),
		Message: message,
		Code:    status,
	}
	respondJSON(w, status, response)
}
