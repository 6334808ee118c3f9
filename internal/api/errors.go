// Harmonium - Music Library Analytics and Recommendations
// Copyright 2026 Harmonium Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/harmonium-app/harmonium

package api

import (
	"errors"
	"net/http"

	"github.com/harmonium-app/harmonium/internal/database"
	"github.com/harmonium-app/harmonium/internal/models"
	"github.com/harmonium-app/harmonium/internal/recommend"
)

// respondEngineError maps domain errors onto HTTP statuses:
// not found 404, invalid input 400, store unavailable 503, else 500.
func respondEngineError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, recommend.ErrNotFound) || errors.Is(err, database.ErrNotFound):
		respondError(w, http.StatusNotFound, models.ErrCodeNotFound, err.Error(), nil)
	case errors.Is(err, recommend.ErrInvalidInput):
		respondError(w, http.StatusBadRequest, models.ErrCodeValidation, err.Error(), nil)
	case errors.Is(err, recommend.ErrStoreUnavailable):
		respondError(w, http.StatusServiceUnavailable, models.ErrCodeStoreUnavailable, err.Error(), nil)
	default:
		respondError(w, http.StatusInternalServerError, models.ErrCodeInternal, err.Error(), nil)
	}
}
