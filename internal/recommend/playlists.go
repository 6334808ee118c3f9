// Harmonium - Music Library Analytics and Recommendations
// Copyright 2026 Harmonium Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/harmonium-app/harmonium

package recommend

import (
	"context"

	"github.com/harmonium-app/harmonium/internal/models"
)

// Virtual playlist identities. These are stable ids clients can bookmark;
// the contents are recomputed on every request.
const (
	TopPlaylistID      = "auto-top"
	TopPlaylistName    = "Top Songs"
	RecentPlaylistID   = "auto-recent"
	RecentPlaylistName = "Recently Played"
)

// TopPlaylist returns the virtual playlist of the listener's most played
// songs: every song with at least one play, ordered by total play count
// descending then song id descending.
func (e *Engine) TopPlaylist(ctx context.Context, limit int) (*models.VirtualPlaylist, error) {
	if limit <= 0 {
		return nil, invalidInput("limit must be positive, got %d", limit)
	}

	songs, err := e.store.TopSongsByPlayCount(ctx, limit)
	if err != nil {
		return nil, storeFailure("top playlist", err)
	}

	return &models.VirtualPlaylist{
		ID:          TopPlaylistID,
		Name:        TopPlaylistName,
		Description: "Your most played songs",
		Songs:       ensureSongs(songs),
		GeneratedAt: e.now().UTC(),
	}, nil
}

// RecentPlaylist returns the virtual playlist of songs played within the
// configured recency window, ordered by most recent play descending then
// play count descending.
func (e *Engine) RecentPlaylist(ctx context.Context, limit int) (*models.VirtualPlaylist, error) {
	if limit <= 0 {
		return nil, invalidInput("limit must be positive, got %d", limit)
	}

	songs, err := e.store.RecentSongsByLastPlayed(ctx, e.config.RecentPlaylistWindowDays, limit)
	if err != nil {
		return nil, storeFailure("recent playlist", err)
	}

	return &models.VirtualPlaylist{
		ID:          RecentPlaylistID,
		Name:        RecentPlaylistName,
		Description: "Songs you played recently",
		Songs:       ensureSongs(songs),
		GeneratedAt: e.now().UTC(),
	}, nil
}

// ensureSongs normalizes a nil slice to an empty one so playlists always
// serialize with a songs array, even when no play events exist.
func ensureSongs(songs []models.PlaylistSong) []models.PlaylistSong {
	if songs == nil {
		return []models.PlaylistSong{}
	}
	return songs
}
