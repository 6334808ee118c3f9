// Harmonium - Music Library Analytics and Recommendations
// Copyright 2026 Harmonium Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/harmonium-app/harmonium

package database

import (
	"context"
	"fmt"
	"time"

	"github.com/harmonium-app/harmonium/internal/metrics"
	"github.com/harmonium-app/harmonium/internal/models"
)

// InsertPlayEvent appends a play-history record. The referenced song must
// exist; DuckDB does not enforce the reference so we check it here.
func (db *DB) InsertPlayEvent(ctx context.Context, songID int64, playedAt time.Time) (*models.PlayEvent, error) {
	if _, err := db.GetSong(ctx, songID); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	defer metrics.TimeDBQuery("insert_play_event")()

	row := db.conn.QueryRowContext(ctx,
		`INSERT INTO play_history (song_id, played_at) VALUES (?, ?) RETURNING id`,
		songID, playedAt.UTC())

	event := models.PlayEvent{SongID: songID, PlayedAt: playedAt.UTC()}
	if err := row.Scan(&event.ID); err != nil {
		return nil, fmt.Errorf("insert play event: %w", err)
	}
	return &event, nil
}

// ListHistory returns up to limit play-history records joined with song
// metadata, newest first.
func (db *DB) ListHistory(ctx context.Context, limit int) ([]models.HistoryRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	defer metrics.TimeDBQuery("list_history")()

	rows, err := db.conn.QueryContext(ctx,
		`SELECT h.id, h.song_id, h.played_at, s.title, s.artist,
		        s.audio_ref, COALESCE(s.art_ref, '')
		 FROM play_history h
		 JOIN songs s ON s.id = h.song_id
		 ORDER BY h.played_at DESC, h.id DESC
		 LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	var records []models.HistoryRecord
	for rows.Next() {
		var record models.HistoryRecord
		if err := rows.Scan(&record.ID, &record.SongID, &record.PlayedAt,
			&record.Title, &record.Artist, &record.AudioRef, &record.ArtRef); err != nil {
			return nil, fmt.Errorf("scan history record: %w", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate history: %w", err)
	}
	return records, nil
}

// ListeningStats aggregates the listener's play history: totals plus the
// top artists, albums, and songs by play count.
func (db *DB) ListeningStats(ctx context.Context, topN int) (*models.ListeningStats, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	defer metrics.TimeDBQuery("listening_stats")()

	stats := &models.ListeningStats{
		TopArtists: []models.ArtistStat{},
		TopAlbums:  []models.AlbumStat{},
		TopSongs:   []models.SongStat{},
	}

	row := db.conn.QueryRowContext(ctx,
		`SELECT COUNT(*), COUNT(DISTINCT song_id) FROM play_history`)
	if err := row.Scan(&stats.TotalPlays, &stats.UniqueSongs); err != nil {
		return nil, fmt.Errorf("query play totals: %w", err)
	}

	rows, err := db.conn.QueryContext(ctx,
		`SELECT s.artist, COUNT(*) AS plays
		 FROM play_history h JOIN songs s ON s.id = h.song_id
		 GROUP BY s.artist
		 ORDER BY plays DESC, s.artist
		 LIMIT ?`, topN)
	if err != nil {
		return nil, fmt.Errorf("query top artists: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var stat models.ArtistStat
		if err := rows.Scan(&stat.Artist, &stat.PlayCount); err != nil {
			return nil, fmt.Errorf("scan artist stat: %w", err)
		}
		stats.TopArtists = append(stats.TopArtists, stat)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate top artists: %w", err)
	}

	albumRows, err := db.conn.QueryContext(ctx,
		`SELECT s.album, s.artist, COUNT(*) AS plays
		 FROM play_history h JOIN songs s ON s.id = h.song_id
		 WHERE s.album IS NOT NULL AND s.album <> ''
		 GROUP BY s.album, s.artist
		 ORDER BY plays DESC, s.album
		 LIMIT ?`, topN)
	if err != nil {
		return nil, fmt.Errorf("query top albums: %w", err)
	}
	defer albumRows.Close()
	for albumRows.Next() {
		var stat models.AlbumStat
		if err := albumRows.Scan(&stat.Album, &stat.Artist, &stat.PlayCount); err != nil {
			return nil, fmt.Errorf("scan album stat: %w", err)
		}
		stats.TopAlbums = append(stats.TopAlbums, stat)
	}
	if err := albumRows.Err(); err != nil {
		return nil, fmt.Errorf("iterate top albums: %w", err)
	}

	songRows, err := db.conn.QueryContext(ctx,
		`SELECT s.id, s.title, s.artist, COUNT(*) AS plays
		 FROM play_history h JOIN songs s ON s.id = h.song_id
		 GROUP BY s.id, s.title, s.artist
		 ORDER BY plays DESC, s.id DESC
		 LIMIT ?`, topN)
	if err != nil {
		return nil, fmt.Errorf("query top songs: %w", err)
	}
	defer songRows.Close()
	for songRows.Next() {
		var stat models.SongStat
		if err := songRows.Scan(&stat.SongID, &stat.Title, &stat.Artist, &stat.PlayCount); err != nil {
			return nil, fmt.Errorf("scan song stat: %w", err)
		}
		stats.TopSongs = append(stats.TopSongs, stat)
	}
	if err := songRows.Err(); err != nil {
		return nil, fmt.Errorf("iterate top songs: %w", err)
	}

	return stats, nil
}
