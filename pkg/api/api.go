// Package api defines the contracts for API requests and responses.
// It decouples the API structure from the internal domain models.
package api

import (
	"encoding/json"
	"net/http"
)

// CreateRecordRequest is the expected body for a POST /records request.
// Both fields must be present; their content is free text.
type CreateRecordRequest struct {
	Name  string `json:"name" validate:"required"`
	Email string `json:"email" validate:"required"`
}

// UpdateRecordRequest is the expected body for a PUT /records/{recordId} request.
// Fields left out of the body are written back as null, not left unchanged.
type UpdateRecordRequest struct {
	Name  *string `json:"name"`
	Email *string `json:"email"`
}

// BulkCreateRequest is the expected body for a POST /records/bulk request.
type BulkCreateRequest struct {
	Count *int `json:"count"`
}

// BulkCreateResponse is the response for a bulk generation call.
type BulkCreateResponse struct {
	Message string      `json:"message"`
	Records interface{} `json:"records"`
}

// SearchResponse is the response for GET /records/search.
type SearchResponse struct {
	Results interface{} `json:"results"`
	Count   int         `json:"count"`
}

// StatsResponse is the response for GET /records/stats.
type StatsResponse struct {
	TotalRecords        int         `json:"totalRecords"`
	RecordsCreatedToday int         `json:"recordsCreatedToday"`
	RecentRecords       interface{} `json:"recentRecords"`
	LastUpdated         string      `json:"lastUpdated"`
}

// MessageResponse is a standardized informational message.
type MessageResponse struct {
	Message string `json:"message"`
}

// JSON writes data as a JSON response with the given status code.
func JSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(data)
}

// Error writes a JSON error response in the {message} shape.
func Error(w http.ResponseWriter, statusCode int, message string) {
	JSON(w, statusCode, MessageResponse{Message: message})
}
