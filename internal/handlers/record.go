// Package handlers provides the HTTP handlers for the record API.
package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"records-backend/internal/service/record"
	"records-backend/pkg/api"
	appErrors "records-backend/pkg/errors"
	"records-backend/pkg/observability"
	"records-backend/pkg/utils"
)

const internalErrorMessage = "an internal error occurred"

// RecordHandler handles record-related HTTP requests.
type RecordHandler struct {
	service record.Service
	logger  *zap.Logger
	metrics *observability.Collector
}

// NewRecordHandler creates a new record handler.
func NewRecordHandler(service record.Service, logger *zap.Logger, metrics *observability.Collector) *RecordHandler {
	return &RecordHandler{
		service: service,
		logger:  logger,
		metrics: metrics,
	}
}

// ListRecords handles GET /records
func (h *RecordHandler) ListRecords(w http.ResponseWriter, r *http.Request) {
	records, err := h.service.List(r.Context())
	if err != nil {
		h.handleServiceError(w, err)
		return
	}
	api.JSON(w, http.StatusOK, records)
}

// CreateRecord handles POST /records.
// A malformed body is not distinguished from a store failure; both collapse
// into the generic 500 response.
func (h *RecordHandler) CreateRecord(w http.ResponseWriter, r *http.Request) {
	var req api.CreateRecordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Error("failed to decode create request", zap.Error(err))
		api.Error(w, http.StatusInternalServerError, internalErrorMessage)
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		h.logger.Warn("invalid create request", zap.Error(err))
		api.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	created, err := h.service.Create(r.Context(), req.Name, req.Email)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.metrics.RecordsCreated.Inc()
	api.JSON(w, http.StatusCreated, created)
}

// BulkCreateRecords handles POST /records/bulk
func (h *RecordHandler) BulkCreateRecords(w http.ResponseWriter, r *http.Request) {
	// An absent body or a missing count field both fall back to the default.
	count := record.DefaultBulkCount
	var req api.BulkCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err == nil && req.Count != nil {
		count = *req.Count
	}

	records, err := h.service.BulkCreate(r.Context(), count)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.metrics.RecordsCreated.Add(float64(len(records)))
	api.JSON(w, http.StatusCreated, api.BulkCreateResponse{
		Message: fmt.Sprintf("created %d records", len(records)),
		Records: records,
	})
}

// SearchRecords handles GET /records/search
func (h *RecordHandler) SearchRecords(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")

	results, err := h.service.Search(r.Context(), query)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	api.JSON(w, http.StatusOK, api.SearchResponse{
		Results: results,
		Count:   len(results),
	})
}

// GetStats handles GET /records/stats
func (h *RecordHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.Stats(r.Context())
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	api.JSON(w, http.StatusOK, api.StatsResponse{
		TotalRecords:        stats.TotalRecords,
		RecordsCreatedToday: stats.RecordsCreatedToday,
		RecentRecords:       stats.RecentRecords,
		LastUpdated:         stats.LastUpdated,
	})
}

// ExportRecords handles GET /records/export
func (h *RecordHandler) ExportRecords(w http.ResponseWriter, r *http.Request) {
	records, err := h.service.List(r.Context())
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	body, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		h.logger.Error("failed to marshal export", zap.Error(err))
		api.Error(w, http.StatusInternalServerError, internalErrorMessage)
		return
	}

	filename := fmt.Sprintf("records-export-%s.json", time.Now().UTC().Format("2006-01-02"))
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

// GetRecord handles GET /records/{recordID}
func (h *RecordHandler) GetRecord(w http.ResponseWriter, r *http.Request) {
	recordID := chi.URLParam(r, "recordID")
	if recordID == "" {
		api.Error(w, http.StatusBadRequest, "id required")
		return
	}

	found, err := h.service.Get(r.Context(), recordID)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}
	api.JSON(w, http.StatusOK, found)
}

// UpdateRecord handles PUT /records/{recordID}
func (h *RecordHandler) UpdateRecord(w http.ResponseWriter, r *http.Request) {
	recordID := chi.URLParam(r, "recordID")
	if recordID == "" {
		api.Error(w, http.StatusBadRequest, "id required")
		return
	}

	var req api.UpdateRecordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Error("failed to decode update request", zap.Error(err))
		api.Error(w, http.StatusInternalServerError, internalErrorMessage)
		return
	}

	updated, err := h.service.Update(r.Context(), recordID, req.Name, req.Email)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}
	api.JSON(w, http.StatusOK, updated)
}

// DeleteRecord handles DELETE /records/{recordID}
func (h *RecordHandler) DeleteRecord(w http.ResponseWriter, r *http.Request) {
	recordID := chi.URLParam(r, "recordID")
	if recordID == "" {
		api.Error(w, http.StatusBadRequest, "id required")
		return
	}

	if err := h.service.Delete(r.Context(), recordID); err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.metrics.RecordsDeleted.Inc()
	api.JSON(w, http.StatusOK, api.MessageResponse{
		Message: fmt.Sprintf("record %s deleted", recordID),
	})
}

// handleServiceError converts service errors to HTTP responses. Operational
// failures are logged with their cause but reported with a fixed message.
func (h *RecordHandler) handleServiceError(w http.ResponseWriter, err error) {
	switch {
	case appErrors.IsValidation(err):
		h.logger.Warn("validation error", zap.Error(err))
		api.Error(w, http.StatusBadRequest, err.Error())
	case appErrors.IsNotFound(err):
		api.Error(w, http.StatusNotFound, "record not found")
	default:
		h.logger.Error("internal error", zap.Error(err))
		api.Error(w, http.StatusInternalServerError, internalErrorMessage)
	}
}
