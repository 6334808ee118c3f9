// Harmonium - Music Library Analytics and Recommendations
// Copyright 2026 Harmonium Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/harmonium-app/harmonium

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/harmonium-app/harmonium/internal/metrics"
	"github.com/harmonium-app/harmonium/internal/models"
	"github.com/harmonium-app/harmonium/internal/recommend"
)

// RecommendationEngine is the engine surface the handlers call.
type RecommendationEngine interface {
	PersonalizedRecommendations(ctx context.Context, limit int) ([]models.ScoredSong, error)
	BecauseYouPlayed(ctx context.Context, songID int64, limit int) ([]models.ScoredSong, error)
	SmartShuffle(ctx context.Context, queue []int64) ([]int64, error)
	TopPlaylist(ctx context.Context, limit int) (*models.VirtualPlaylist, error)
	RecentPlaylist(ctx context.Context, limit int) (*models.VirtualPlaylist, error)
	Config() recommend.Config
}

// Library is the catalog, history, and playlist surface the handlers call.
type Library interface {
	CreateSong(ctx context.Context, song *models.Song) (*models.Song, error)
	GetSong(ctx context.Context, id int64) (*models.Song, error)
	ListSongs(ctx context.Context, excludeIDs []int64) ([]models.Song, error)
	DeleteSong(ctx context.Context, id int64) error
	ListHistory(ctx context.Context, limit int) ([]models.HistoryRecord, error)
	ListeningStats(ctx context.Context, topN int) (*models.ListeningStats, error)
	CreatePlaylist(ctx context.Context, name string) (*models.Playlist, error)
	ListPlaylists(ctx context.Context) ([]models.Playlist, error)
	AddPlaylistSong(ctx context.Context, playlistID, songID int64) error
	ListPlaylistSongs(ctx context.Context, playlistID int64) ([]models.Song, error)
	Ping(ctx context.Context) error
}

// Handler holds the dependencies for all HTTP handlers.
type Handler struct {
	engine    RecommendationEngine
	library   Library
	publisher EventPublisher
}

// NewHandler creates a Handler.
func NewHandler(engine RecommendationEngine, library Library, publisher EventPublisher) *Handler {
	return &Handler{
		engine:    engine,
		library:   library,
		publisher: publisher,
	}
}

// Health reports service and database health.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	dbStatus := "up"
	status := http.StatusOK
	if err := h.library.Ping(r.Context()); err != nil {
		dbStatus = "down"
		status = http.StatusServiceUnavailable
	}

	data := map[string]interface{}{
		"status":   "ok",
		"database": dbStatus,
	}
	if status != http.StatusOK {
		data["status"] = "degraded"
	}

	respondJSON(w, status, models.NewSuccessResponse(data, time.Since(start)))
}

// Recommendations returns personalized recommendations.
//
// GET /api/v1/recommendations?limit=N
func (h *Handler) Recommendations(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	limit := getIntParam(r, "limit", h.engine.Config().DefaultRecommendLimit)

	songs, err := h.engine.PersonalizedRecommendations(r.Context(), limit)
	if err != nil {
		metrics.RecordEngineOperation("personalized", "error", time.Since(start))
		respondEngineError(w, err)
		return
	}
	metrics.RecordEngineOperation("personalized", "success", time.Since(start))

	respondJSON(w, http.StatusOK, models.NewSuccessResponse(map[string]interface{}{
		"recommendations": songs,
		"count":           len(songs),
	}, time.Since(start)))
}

// BecauseYouPlayed returns songs similar to a seed song.
//
// GET /api/v1/recommendations/because/{songID}?limit=N
func (h *Handler) BecauseYouPlayed(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	songID, ok := pathID(w, r, "songID")
	if !ok {
		return
	}
	limit := getIntParam(r, "limit", h.engine.Config().DefaultSimilarLimit)

	songs, err := h.engine.BecauseYouPlayed(r.Context(), songID, limit)
	if err != nil {
		metrics.RecordEngineOperation("similar", "error", time.Since(start))
		respondEngineError(w, err)
		return
	}
	metrics.RecordEngineOperation("similar", "success", time.Since(start))

	respondJSON(w, http.StatusOK, models.NewSuccessResponse(map[string]interface{}{
		"seed_song_id":    songID,
		"recommendations": songs,
		"count":           len(songs),
	}, time.Since(start)))
}

type smartShuffleRequest struct {
	Queue []int64 `json:"queue"`
}

// SmartShuffle reorders a playback queue by listening-history weights.
//
// POST /api/v1/shuffle/smart {"queue": [ids]}
func (h *Handler) SmartShuffle(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req smartShuffleRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}

	queue, err := h.engine.SmartShuffle(r.Context(), req.Queue)
	if err != nil {
		metrics.RecordEngineOperation("shuffle", "error", time.Since(start))
		respondEngineError(w, err)
		return
	}
	metrics.RecordEngineOperation("shuffle", "success", time.Since(start))

	respondJSON(w, http.StatusOK, models.NewSuccessResponse(map[string]interface{}{
		"queue": queue,
		"count": len(queue),
	}, time.Since(start)))
}

// TopPlaylist returns the auto-generated most-played playlist.
//
// GET /api/v1/playlists/auto/top?limit=N
func (h *Handler) TopPlaylist(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	limit := getIntParam(r, "limit", h.engine.Config().DefaultPlaylistLimit)

	playlist, err := h.engine.TopPlaylist(r.Context(), limit)
	if err != nil {
		metrics.RecordEngineOperation("playlist_top", "error", time.Since(start))
		respondEngineError(w, err)
		return
	}
	metrics.RecordEngineOperation("playlist_top", "success", time.Since(start))

	respondJSON(w, http.StatusOK, models.NewSuccessResponse(playlist, time.Since(start)))
}

// RecentPlaylist returns the auto-generated recently-played playlist.
//
// GET /api/v1/playlists/auto/recent?limit=N
func (h *Handler) RecentPlaylist(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	limit := getIntParam(r, "limit", h.engine.Config().DefaultPlaylistLimit)

	playlist, err := h.engine.RecentPlaylist(r.Context(), limit)
	if err != nil {
		metrics.RecordEngineOperation("playlist_recent", "error", time.Since(start))
		respondEngineError(w, err)
		return
	}
	metrics.RecordEngineOperation("playlist_recent", "success", time.Since(start))

	respondJSON(w, http.StatusOK, models.NewSuccessResponse(playlist, time.Since(start)))
}
