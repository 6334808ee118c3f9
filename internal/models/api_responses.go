// Harmonium - Music Library Analytics and Recommendations
// Copyright 2026 Harmonium Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/harmonium-app/harmonium

package models

import "time"

// APIResponse is the standard envelope for all API responses.
//
// Every endpoint returns this structure so clients can handle success and
// failure uniformly:
//
//	{
//	  "status": "success",
//	  "data": { ... },
//	  "metadata": {"timestamp": "...", "query_time_ms": 12}
//	}
//
// On failure, Data is omitted and Error is populated:
//
//	{
//	  "status": "error",
//	  "error": {"code": "NOT_FOUND", "message": "song 42 not found"}
//	}
type APIResponse struct {
	// Status is "success" or "error".
	Status string `json:"status"`

	// Data carries the endpoint-specific payload. Omitted on error.
	Data interface{} `json:"data,omitempty"`

	// Metadata carries response timing information.
	Metadata *Metadata `json:"metadata,omitempty"`

	// Error is populated only when Status is "error".
	Error *APIError `json:"error,omitempty"`
}

// Metadata holds per-response timing and caching information.
type Metadata struct {
	// Timestamp is when the response was generated (UTC, RFC3339).
	Timestamp time.Time `json:"timestamp"`

	// QueryTimeMS is the server-side processing time in milliseconds.
	QueryTimeMS int64 `json:"query_time_ms"`
}

// APIError is the structured error payload inside APIResponse.
type APIError struct {
	// Code is a stable machine-readable error identifier, e.g. "NOT_FOUND",
	// "VALIDATION_ERROR", "STORE_UNAVAILABLE".
	Code string `json:"code"`

	// Message is a human-readable description of the failure.
	Message string `json:"message"`

	// Details carries optional field-level error information.
	Details map[string]interface{} `json:"details,omitempty"`
}

// Error codes used across the API layer.
const (
	ErrCodeNotFound         = "NOT_FOUND"
	ErrCodeValidation       = "VALIDATION_ERROR"
	ErrCodeStoreUnavailable = "STORE_UNAVAILABLE"
	ErrCodeInternal         = "INTERNAL_ERROR"
	ErrCodeEventPublish     = "EVENT_PUBLISH_FAILED"
)

// NewSuccessResponse builds a success envelope around the given payload.
func NewSuccessResponse(data interface{}, queryTime time.Duration) *APIResponse {
	return &APIResponse{
		Status: "success",
		Data:   data,
		Metadata: &Metadata{
			Timestamp:   time.Now().UTC(),
			QueryTimeMS: queryTime.Milliseconds(),
		},
	}
}

// NewErrorResponse builds an error envelope.
func NewErrorResponse(code, message string, details map[string]interface{}) *APIResponse {
	return &APIResponse{
		Status: "error",
		Metadata: &Metadata{
			Timestamp: time.Now().UTC(),
		},
		Error: &APIError{
			Code:    code,
			Message: message,
			Details: details,
		},
	}
}
