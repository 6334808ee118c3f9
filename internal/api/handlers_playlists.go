// Harmonium - Music Library Analytics and Recommendations
// Copyright 2026 Harmonium Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/harmonium-app/harmonium

package api

import (
	"net/http"
	"time"

	"github.com/harmonium-app/harmonium/internal/models"
)

type createPlaylistRequest struct {
	Name string `json:"name" validate:"required,max=255"`
}

type addPlaylistSongRequest struct {
	SongID int64 `json:"song_id" validate:"required,gt=0"`
}

// CreatePlaylist creates an empty named playlist.
//
// POST /api/v1/playlists
func (h *Handler) CreatePlaylist(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req createPlaylistRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, apiErr.Details)
		return
	}

	playlist, err := h.library.CreatePlaylist(r.Context(), req.Name)
	if err != nil {
		respondEngineError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, models.NewSuccessResponse(playlist, time.Since(start)))
}

// ListPlaylists returns all user playlists, newest first.
//
// GET /api/v1/playlists
func (h *Handler) ListPlaylists(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	playlists, err := h.library.ListPlaylists(r.Context())
	if err != nil {
		respondEngineError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, models.NewSuccessResponse(map[string]interface{}{
		"playlists": playlists,
		"count":     len(playlists),
	}, time.Since(start)))
}

// AddPlaylistSong adds a song to a playlist. Re-adding a song already in
// the playlist succeeds without duplicating it.
//
// POST /api/v1/playlists/{playlistID}/songs
func (h *Handler) AddPlaylistSong(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	playlistID, ok := pathID(w, r, "playlistID")
	if !ok {
		return
	}

	var req addPlaylistSongRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, apiErr.Details)
		return
	}

	if err := h.library.AddPlaylistSong(r.Context(), playlistID, req.SongID); err != nil {
		respondEngineError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, models.NewSuccessResponse(map[string]interface{}{
		"playlist_id": playlistID,
		"song_id":     req.SongID,
	}, time.Since(start)))
}

// ListPlaylistSongs returns the songs in a playlist, most recently added
// first.
//
// GET /api/v1/playlists/{playlistID}/songs
func (h *Handler) ListPlaylistSongs(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	playlistID, ok := pathID(w, r, "playlistID")
	if !ok {
		return
	}

	songs, err := h.library.ListPlaylistSongs(r.Context(), playlistID)
	if err != nil {
		respondEngineError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, models.NewSuccessResponse(map[string]interface{}{
		"playlist_id": playlistID,
		"songs":       songs,
		"count":       len(songs),
	}, time.Since(start)))
}
