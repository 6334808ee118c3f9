// Harmonium - Music Library Analytics and Recommendations
// Copyright 2026 Harmonium Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/harmonium-app/harmonium

package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/harmonium-app/harmonium/internal/eventstream"
	"github.com/harmonium-app/harmonium/internal/models"
)

// EventPublisher publishes play events onto the event stream.
type EventPublisher interface {
	PublishEvent(ctx context.Context, event *eventstream.PlaybackEvent) error
}

// pathID parses a positive int64 path parameter, responding 400 on
// malformed input.
func pathID(w http.ResponseWriter, r *http.Request, key string) (int64, bool) {
	raw := chi.URLParam(r, key)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		respondError(w, http.StatusBadRequest, models.ErrCodeValidation,
			key+" must be a positive integer", nil)
		return 0, false
	}
	return id, true
}

type createSongRequest struct {
	Title    string  `json:"title" validate:"required,max=512"`
	Artist   string  `json:"artist" validate:"required,max=512"`
	Album    string  `json:"album" validate:"omitempty,max=512"`
	AudioRef string  `json:"audio_ref" validate:"omitempty,max=2048"`
	ArtRef   string  `json:"art_ref" validate:"omitempty,max=2048"`
	Duration float64 `json:"duration" validate:"omitempty,gte=0"`
}

// ListSongs returns the full catalog.
//
// GET /api/v1/songs
func (h *Handler) ListSongs(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	songs, err := h.library.ListSongs(r.Context(), nil)
	if err != nil {
		respondEngineError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, models.NewSuccessResponse(map[string]interface{}{
		"songs": songs,
		"count": len(songs),
	}, time.Since(start)))
}

// CreateSong adds a song to the catalog.
//
// POST /api/v1/songs
func (h *Handler) CreateSong(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req createSongRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, apiErr.Details)
		return
	}

	song, err := h.library.CreateSong(r.Context(), &models.Song{
		Title:    req.Title,
		Artist:   req.Artist,
		Album:    req.Album,
		AudioRef: req.AudioRef,
		ArtRef:   req.ArtRef,
		Duration: req.Duration,
	})
	if err != nil {
		respondEngineError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, models.NewSuccessResponse(song, time.Since(start)))
}

// GetSong returns a single song by id.
//
// GET /api/v1/songs/{songID}
func (h *Handler) GetSong(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	songID, ok := pathID(w, r, "songID")
	if !ok {
		return
	}

	song, err := h.library.GetSong(r.Context(), songID)
	if err != nil {
		respondEngineError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, models.NewSuccessResponse(song, time.Since(start)))
}

// DeleteSong removes a song and its play history.
//
// DELETE /api/v1/songs/{songID}
func (h *Handler) DeleteSong(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	songID, ok := pathID(w, r, "songID")
	if !ok {
		return
	}

	if err := h.library.DeleteSong(r.Context(), songID); err != nil {
		respondEngineError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, models.NewSuccessResponse(map[string]interface{}{
		"deleted": songID,
	}, time.Since(start)))
}

type recordPlayRequest struct {
	SongID   int64      `json:"song_id" validate:"required,gt=0"`
	PlayedAt *time.Time `json:"played_at"`
}

// RecordPlay accepts a play event and publishes it to the event stream.
// Persistence is asynchronous; the endpoint returns 202 on accept.
//
// POST /api/v1/history
func (h *Handler) RecordPlay(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req recordPlayRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, apiErr.Details)
		return
	}

	// Reject plays for unknown songs up front; the async consumer could
	// only Nack them later.
	if _, err := h.library.GetSong(r.Context(), req.SongID); err != nil {
		respondEngineError(w, err)
		return
	}

	playedAt := time.Time{}
	if req.PlayedAt != nil {
		playedAt = *req.PlayedAt
	}
	event := eventstream.NewPlaybackEvent(req.SongID, playedAt, "api")

	if err := h.publisher.PublishEvent(r.Context(), event); err != nil {
		respondError(w, http.StatusServiceUnavailable, models.ErrCodeEventPublish,
			"failed to publish play event: "+err.Error(), nil)
		return
	}

	respondJSON(w, http.StatusAccepted, models.NewSuccessResponse(map[string]interface{}{
		"event_id":  event.EventID,
		"song_id":   event.SongID,
		"played_at": event.PlayedAt,
	}, time.Since(start)))
}

// ListHistory returns raw play-history records, newest first.
//
// GET /api/v1/history?limit=N
func (h *Handler) ListHistory(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	limit := getIntParam(r, "limit", 100)
	if limit < 1 || limit > 1000 {
		respondError(w, http.StatusBadRequest, models.ErrCodeValidation,
			"limit must be between 1 and 1000", nil)
		return
	}

	records, err := h.library.ListHistory(r.Context(), limit)
	if err != nil {
		respondEngineError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, models.NewSuccessResponse(map[string]interface{}{
		"history": records,
		"count":   len(records),
	}, time.Since(start)))
}

// ListeningStats returns aggregate play-history statistics.
//
// GET /api/v1/history/stats?top=N
func (h *Handler) ListeningStats(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	topN := getIntParam(r, "top", 10)
	if topN < 1 || topN > 100 {
		respondError(w, http.StatusBadRequest, models.ErrCodeValidation,
			"top must be between 1 and 100", nil)
		return
	}

	stats, err := h.library.ListeningStats(r.Context(), topN)
	if err != nil {
		respondEngineError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, models.NewSuccessResponse(stats, time.Since(start)))
}
