// Harmonium - Music Library Analytics and Recommendations
// Copyright 2026 Harmonium Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/harmonium-app/harmonium

package database

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/harmonium-app/harmonium/internal/metrics"
	"github.com/harmonium-app/harmonium/internal/models"
	"github.com/harmonium-app/harmonium/internal/recommend"
)

// RecentHistory returns up to limit play events joined with song metadata,
// newest first. This feeds the pattern analyzer.
func (db *DB) RecentHistory(ctx context.Context, limit int) ([]recommend.HistoryEntry, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	defer metrics.TimeDBQuery("recent_history")()

	rows, err := db.conn.QueryContext(ctx,
		`SELECT h.song_id, s.artist, COALESCE(s.album, ''), h.played_at
		 FROM play_history h
		 JOIN songs s ON s.id = h.song_id
		 ORDER BY h.played_at DESC
		 LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query recent history: %w", err)
	}
	defer rows.Close()

	var entries []recommend.HistoryEntry
	for rows.Next() {
		var entry recommend.HistoryEntry
		if err := rows.Scan(&entry.SongID, &entry.Artist, &entry.Album, &entry.PlayedAt); err != nil {
			return nil, fmt.Errorf("scan history entry: %w", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate recent history: %w", err)
	}
	return entries, nil
}

// RecentDistinctSongIDs returns up to count distinct song ids ordered by
// most recent play.
func (db *DB) RecentDistinctSongIDs(ctx context.Context, count int) ([]int64, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	defer metrics.TimeDBQuery("recent_distinct_song_ids")()

	rows, err := db.conn.QueryContext(ctx,
		`SELECT song_id
		 FROM play_history
		 GROUP BY song_id
		 ORDER BY MAX(played_at) DESC
		 LIMIT ?`, count)
	if err != nil {
		return nil, fmt.Errorf("query recent song ids: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan song id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate recent song ids: %w", err)
	}
	return ids, nil
}

// TotalPlayCount returns the all-time play count for a song. Unknown songs
// report zero.
func (db *DB) TotalPlayCount(ctx context.Context, songID int64) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	defer metrics.TimeDBQuery("total_play_count")()

	var count int64
	row := db.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM play_history WHERE song_id = ?`, songID)
	if err := row.Scan(&count); err != nil {
		return 0, fmt.Errorf("query play count for song %d: %w", songID, err)
	}
	return count, nil
}

// RecentArtistPlayCounts returns per-artist play counts within the last
// windowDays days.
func (db *DB) RecentArtistPlayCounts(ctx context.Context, windowDays int) (map[string]int64, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	defer metrics.TimeDBQuery("recent_artist_play_counts")()

	cutoff := time.Now().UTC().AddDate(0, 0, -windowDays)
	rows, err := db.conn.QueryContext(ctx,
		`SELECT s.artist, COUNT(*)
		 FROM play_history h
		 JOIN songs s ON s.id = h.song_id
		 WHERE h.played_at >= ?
		 GROUP BY s.artist`, cutoff)
	if err != nil {
		return nil, fmt.Errorf("query artist play counts: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int64)
	for rows.Next() {
		var artist string
		var count int64
		if err := rows.Scan(&artist, &count); err != nil {
			return nil, fmt.Errorf("scan artist play count: %w", err)
		}
		counts[artist] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate artist play counts: %w", err)
	}
	return counts, nil
}

// SongsByPopularity returns catalog songs with their total play counts,
// ordered by play count descending then id descending. Never-played songs
// are included with zero counts. A non-positive limit returns everything.
func (db *DB) SongsByPopularity(ctx context.Context, excludeIDs []int64, limit int) ([]models.ScoredSong, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	defer metrics.TimeDBQuery("songs_by_popularity")()

	var sb strings.Builder
	sb.WriteString(
		`SELECT s.id, s.title, s.artist, COALESCE(s.album, ''), s.audio_ref,
		        COALESCE(s.art_ref, ''), COALESCE(s.duration, 0),
		        COUNT(h.id) AS play_count
		 FROM songs s
		 LEFT JOIN play_history h ON h.song_id = s.id`)
	args := make([]interface{}, 0, len(excludeIDs)+1)
	if len(excludeIDs) > 0 {
		sb.WriteString(" WHERE s.id NOT IN (" + placeholders(len(excludeIDs)) + ")")
		for _, id := range excludeIDs {
			args = append(args, id)
		}
	}
	sb.WriteString(` GROUP BY s.id, s.title, s.artist, s.album, s.audio_ref, s.art_ref, s.duration
		 ORDER BY play_count DESC, s.id DESC`)
	if limit > 0 {
		sb.WriteString(" LIMIT ?")
		args = append(args, limit)
	}

	rows, err := db.conn.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("query songs by popularity: %w", err)
	}
	defer rows.Close()

	var songs []models.ScoredSong
	for rows.Next() {
		var song models.ScoredSong
		if err := rows.Scan(&song.ID, &song.Title, &song.Artist, &song.Album,
			&song.AudioRef, &song.ArtRef, &song.Duration, &song.PlayCount); err != nil {
			return nil, fmt.Errorf("scan popular song: %w", err)
		}
		song.Score = float64(song.PlayCount)
		songs = append(songs, song)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate songs by popularity: %w", err)
	}
	return songs, nil
}

// TopSongsByPlayCount returns played songs ordered by total play count
// descending then song id descending.
func (db *DB) TopSongsByPlayCount(ctx context.Context, limit int) ([]models.PlaylistSong, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	defer metrics.TimeDBQuery("top_songs_by_play_count")()

	rows, err := db.conn.QueryContext(ctx,
		`SELECT s.id, s.title, s.artist, COALESCE(s.album, ''), s.audio_ref,
		        COALESCE(s.art_ref, ''), COALESCE(s.duration, 0),
		        COUNT(h.id) AS play_count, MAX(h.played_at) AS last_played
		 FROM songs s
		 JOIN play_history h ON h.song_id = s.id
		 GROUP BY s.id, s.title, s.artist, s.album, s.audio_ref, s.art_ref, s.duration
		 ORDER BY play_count DESC, s.id DESC
		 LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query top songs: %w", err)
	}
	defer rows.Close()

	return scanPlaylistSongs(rows)
}

// RecentSongsByLastPlayed returns songs played within the last withinDays
// days, ordered by last play descending then play count descending.
func (db *DB) RecentSongsByLastPlayed(ctx context.Context, withinDays, limit int) ([]models.PlaylistSong, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	defer metrics.TimeDBQuery("recent_songs_by_last_played")()

	cutoff := time.Now().UTC().AddDate(0, 0, -withinDays)
	rows, err := db.conn.QueryContext(ctx,
		`SELECT s.id, s.title, s.artist, COALESCE(s.album, ''), s.audio_ref,
		        COALESCE(s.art_ref, ''), COALESCE(s.duration, 0),
		        COUNT(h.id) AS play_count, MAX(h.played_at) AS last_played
		 FROM songs s
		 JOIN play_history h ON h.song_id = s.id
		 WHERE h.played_at >= ?
		 GROUP BY s.id, s.title, s.artist, s.album, s.audio_ref, s.art_ref, s.duration
		 ORDER BY last_played DESC, play_count DESC
		 LIMIT ?`, cutoff, limit)
	if err != nil {
		return nil, fmt.Errorf("query recent songs: %w", err)
	}
	defer rows.Close()

	return scanPlaylistSongs(rows)
}
