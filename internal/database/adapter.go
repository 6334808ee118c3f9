// Harmonium - Music Library Analytics and Recommendations
// Copyright 2026 Harmonium Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/harmonium-app/harmonium

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/harmonium-app/harmonium/internal/models"
	"github.com/harmonium-app/harmonium/internal/recommend"
)

// scanPlaylistSongs drains rows shaped as (song columns, play_count,
// last_played) into playlist entries.
func scanPlaylistSongs(rows *sql.Rows) ([]models.PlaylistSong, error) {
	var songs []models.PlaylistSong
	for rows.Next() {
		var song models.PlaylistSong
		var lastPlayed sql.NullTime
		if err := rows.Scan(&song.ID, &song.Title, &song.Artist, &song.Album,
			&song.AudioRef, &song.ArtRef, &song.Duration,
			&song.PlayCount, &lastPlayed); err != nil {
			return nil, fmt.Errorf("scan playlist song: %w", err)
		}
		if lastPlayed.Valid {
			t := lastPlayed.Time
			song.LastPlayedAt = &t
		}
		songs = append(songs, song)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate playlist songs: %w", err)
	}
	return songs, nil
}

// StoreAdapter bridges the database to the recommendation engine's Store
// interface. It exists so the recommend package depends on an interface it
// owns rather than on this package, and so not-found conditions are
// translated into the error kind the engine documents.
type StoreAdapter struct {
	db *DB
}

// NewStoreAdapter creates a Store implementation over the database.
func NewStoreAdapter(db *DB) *StoreAdapter {
	return &StoreAdapter{db: db}
}

var _ recommend.Store = (*StoreAdapter)(nil)

// GetSongByID implements recommend.Store.
func (a *StoreAdapter) GetSongByID(ctx context.Context, id int64) (*models.Song, error) {
	song, err := a.db.GetSong(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("song %d: %w", id, recommend.ErrNotFound)
	}
	return song, err
}

// ListSongs implements recommend.Store.
func (a *StoreAdapter) ListSongs(ctx context.Context, excludeIDs []int64) ([]models.Song, error) {
	return a.db.ListSongs(ctx, excludeIDs)
}

// RecentHistory implements recommend.Store.
func (a *StoreAdapter) RecentHistory(ctx context.Context, limit int) ([]recommend.HistoryEntry, error) {
	return a.db.RecentHistory(ctx, limit)
}

// RecentDistinctSongIDs implements recommend.Store.
func (a *StoreAdapter) RecentDistinctSongIDs(ctx context.Context, count int) ([]int64, error) {
	return a.db.RecentDistinctSongIDs(ctx, count)
}

// TotalPlayCount implements recommend.Store.
func (a *StoreAdapter) TotalPlayCount(ctx context.Context, songID int64) (int64, error) {
	return a.db.TotalPlayCount(ctx, songID)
}

// RecentArtistPlayCounts implements recommend.Store.
func (a *StoreAdapter) RecentArtistPlayCounts(ctx context.Context, windowDays int) (map[string]int64, error) {
	return a.db.RecentArtistPlayCounts(ctx, windowDays)
}

// SongsByPopularity implements recommend.Store.
func (a *StoreAdapter) SongsByPopularity(ctx context.Context, excludeIDs []int64, limit int) ([]models.ScoredSong, error) {
	return a.db.SongsByPopularity(ctx, excludeIDs, limit)
}

// TopSongsByPlayCount implements recommend.Store.
func (a *StoreAdapter) TopSongsByPlayCount(ctx context.Context, limit int) ([]models.PlaylistSong, error) {
	return a.db.TopSongsByPlayCount(ctx, limit)
}

// RecentSongsByLastPlayed implements recommend.Store.
func (a *StoreAdapter) RecentSongsByLastPlayed(ctx context.Context, withinDays, limit int) ([]models.PlaylistSong, error) {
	return a.db.RecentSongsByLastPlayed(ctx, withinDays, limit)
}
