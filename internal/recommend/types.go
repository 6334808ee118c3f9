// Harmonium - Music Library Analytics and Recommendations
// Copyright 2026 Harmonium Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/harmonium-app/harmonium

package recommend

import (
	"context"
	"time"

	"github.com/harmonium-app/harmonium/internal/models"
)

// Store is the read-only query surface the engine needs over songs and play
// history. The engine performs no writes and assumes each query is
// internally snapshot-consistent; it does not require transactional
// isolation across queries.
//
// Implementations own their query timeouts. Missing songs must surface as
// errors matching ErrNotFound.
type Store interface {
	// GetSongByID returns the catalog song with the given id.
	GetSongByID(ctx context.Context, id int64) (*models.Song, error)

	// ListSongs returns all catalog songs except those in excludeIDs.
	// An empty excludeIDs returns the full catalog.
	ListSongs(ctx context.Context, excludeIDs []int64) ([]models.Song, error)

	// RecentHistory returns up to limit play events joined with song
	// metadata, newest first.
	RecentHistory(ctx context.Context, limit int) ([]HistoryEntry, error)

	// RecentDistinctSongIDs returns up to count distinct song ids ordered by
	// most recent play, newest first.
	RecentDistinctSongIDs(ctx context.Context, count int) ([]int64, error)

	// TotalPlayCount returns the all-time play count for a song. Unknown
	// songs report zero, not an error.
	TotalPlayCount(ctx context.Context, songID int64) (int64, error)

	// RecentArtistPlayCounts returns per-artist play counts within the last
	// windowDays days.
	RecentArtistPlayCounts(ctx context.Context, windowDays int) (map[string]int64, error)

	// SongsByPopularity returns catalog songs (including never-played ones)
	// with their total play counts, ordered by play count descending then
	// song id descending. A non-positive limit returns the whole catalog.
	// Songs in excludeIDs are omitted.
	SongsByPopularity(ctx context.Context, excludeIDs []int64, limit int) ([]models.ScoredSong, error)

	// TopSongsByPlayCount returns played songs ordered by total play count
	// descending, then song id descending.
	TopSongsByPlayCount(ctx context.Context, limit int) ([]models.PlaylistSong, error)

	// RecentSongsByLastPlayed returns songs played within the last
	// withinDays days, ordered by last play descending then play count
	// descending.
	RecentSongsByLastPlayed(ctx context.Context, withinDays, limit int) ([]models.PlaylistSong, error)
}

// HistoryEntry is one play event joined with the song metadata the pattern
// analyzer scores against.
type HistoryEntry struct {
	SongID   int64
	Artist   string
	Album    string
	PlayedAt time.Time
}

// AffinityMap holds the recency-weighted listening-pattern scores built per
// request by the pattern analyzer. Empty maps are the designated signal for
// sparse history, not an error.
type AffinityMap struct {
	Artists map[string]float64
	Albums  map[string]float64
	Songs   map[int64]float64
}

// Empty reports whether no listening pattern could be derived, which routes
// the candidate scorer to its popularity fallback.
func (m *AffinityMap) Empty() bool {
	return len(m.Artists) == 0
}
