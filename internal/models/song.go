// Harmonium - Music Library Analytics and Recommendations
// Copyright 2026 Harmonium Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/harmonium-app/harmonium

// Package models defines the shared domain and API types for Harmonium.
package models

import "time"

// Song is a catalog entry. Songs are created by catalog ingestion and are
// read-only from the recommendation engine's perspective.
type Song struct {
	ID       int64   `json:"id"`
	Title    string  `json:"title"`
	Artist   string  `json:"artist"`
	Album    string  `json:"album,omitempty"`
	AudioRef string  `json:"audio_ref"`
	ArtRef   string  `json:"art_ref,omitempty"`
	Duration float64 `json:"duration,omitempty"` // seconds
}

// HasAlbum reports whether the song carries album metadata.
// Album matching in similarity scoring requires both sides to be non-empty.
func (s *Song) HasAlbum() bool {
	return s.Album != ""
}

// PlayEvent is a single append-only play-history record.
type PlayEvent struct {
	ID       int64     `json:"id"`
	SongID   int64     `json:"song_id"`
	PlayedAt time.Time `json:"played_at"`
}

// HistoryRecord is a play-history row joined with song metadata, used by
// raw history listings.
type HistoryRecord struct {
	ID       int64     `json:"id"`
	SongID   int64     `json:"song_id"`
	PlayedAt time.Time `json:"played_at"`
	Title    string    `json:"title"`
	Artist   string    `json:"artist"`
	AudioRef string    `json:"audio_ref"`
	ArtRef   string    `json:"art_ref,omitempty"`
}

// Playlist is a user-created, persisted playlist. Only the listener's own
// collections are stored; engine-computed playlists stay virtual.
type Playlist struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	SongCount int64     `json:"song_count"`
}

// ScoredSong is a song annotated with a computed recommendation score.
// Request-scoped; never persisted.
type ScoredSong struct {
	Song
	Score     float64 `json:"score"`
	PlayCount int64   `json:"play_count,omitempty"`
}

// PlaylistSong is a song inside a virtual playlist, annotated with the
// aggregates the playlist was ordered by.
type PlaylistSong struct {
	Song
	PlayCount    int64      `json:"play_count"`
	LastPlayedAt *time.Time `json:"last_played_at,omitempty"`
}

// VirtualPlaylist is a playlist computed on demand from play-history
// aggregates. It is never stored; re-running the composer recomputes it.
type VirtualPlaylist struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Songs       []PlaylistSong `json:"songs"`
	GeneratedAt time.Time      `json:"generated_at"`
}

// ArtistStat is an aggregate row in listening statistics.
type ArtistStat struct {
	Artist    string `json:"artist"`
	PlayCount int64  `json:"play_count"`
}

// AlbumStat is an aggregate row in listening statistics.
type AlbumStat struct {
	Album     string `json:"album"`
	Artist    string `json:"artist"`
	PlayCount int64  `json:"play_count"`
}

// SongStat is an aggregate row in listening statistics.
type SongStat struct {
	SongID    int64  `json:"song_id"`
	Title     string `json:"title"`
	Artist    string `json:"artist"`
	PlayCount int64  `json:"play_count"`
}

// ListeningStats summarizes a listener's play history.
type ListeningStats struct {
	TotalPlays  int64        `json:"total_plays"`
	UniqueSongs int64        `json:"unique_songs"`
	TopArtists  []ArtistStat `json:"top_artists"`
	TopAlbums   []AlbumStat  `json:"top_albums"`
	TopSongs    []SongStat   `json:"top_songs"`
}
