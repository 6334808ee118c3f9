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
	"strings"

	"github.com/harmonium-app/harmonium/internal/metrics"
	"github.com/harmonium-app/harmonium/internal/models"
)

// CreateSong inserts a catalog song and returns it with the assigned id.
func (db *DB) CreateSong(ctx context.Context, song *models.Song) (*models.Song, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	defer metrics.TimeDBQuery("create_song")()

	row := db.conn.QueryRowContext(ctx,
		`INSERT INTO songs (title, artist, album, audio_ref, art_ref, duration)
		 VALUES (?, ?, ?, ?, ?, ?)
		 RETURNING id`,
		song.Title, song.Artist, nullString(song.Album), song.AudioRef,
		nullString(song.ArtRef), nullFloat(song.Duration))

	created := *song
	if err := row.Scan(&created.ID); err != nil {
		return nil, fmt.Errorf("insert song: %w", err)
	}
	return &created, nil
}

// GetSong returns the catalog song with the given id, or ErrNotFound.
func (db *DB) GetSong(ctx context.Context, id int64) (*models.Song, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	defer metrics.TimeDBQuery("get_song")()

	row := db.conn.QueryRowContext(ctx,
		`SELECT id, title, artist, COALESCE(album, ''), audio_ref,
		        COALESCE(art_ref, ''), COALESCE(duration, 0)
		 FROM songs WHERE id = ?`, id)

	var song models.Song
	err := row.Scan(&song.ID, &song.Title, &song.Artist, &song.Album,
		&song.AudioRef, &song.ArtRef, &song.Duration)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("song %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("query song %d: %w", id, err)
	}
	return &song, nil
}

// ListSongs returns catalog songs ordered by id, omitting excludeIDs.
func (db *DB) ListSongs(ctx context.Context, excludeIDs []int64) ([]models.Song, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	defer metrics.TimeDBQuery("list_songs")()

	query := `SELECT id, title, artist, COALESCE(album, ''), audio_ref,
	                 COALESCE(art_ref, ''), COALESCE(duration, 0)
	          FROM songs`
	args := make([]interface{}, 0, len(excludeIDs))
	if len(excludeIDs) > 0 {
		query += " WHERE id NOT IN (" + placeholders(len(excludeIDs)) + ")"
		for _, id := range excludeIDs {
			args = append(args, id)
		}
	}
	query += " ORDER BY id"

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query songs: %w", err)
	}
	defer rows.Close()

	var songs []models.Song
	for rows.Next() {
		var song models.Song
		if err := rows.Scan(&song.ID, &song.Title, &song.Artist, &song.Album,
			&song.AudioRef, &song.ArtRef, &song.Duration); err != nil {
			return nil, fmt.Errorf("scan song: %w", err)
		}
		songs = append(songs, song)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate songs: %w", err)
	}
	return songs, nil
}

// DeleteSong removes a song, its play history, and its playlist
// memberships. Returns ErrNotFound when the id does not exist.
func (db *DB) DeleteSong(ctx context.Context, id int64) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	defer metrics.TimeDBQuery("delete_song")()

	// One transaction covers the song, its history, and its playlist
	// memberships so a failure partway cannot leave orphaned rows.
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete song %d: %w", id, err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM play_history WHERE song_id = ?`, id); err != nil {
		return fmt.Errorf("delete history for song %d: %w", id, err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM playlist_songs WHERE song_id = ?`, id); err != nil {
		return fmt.Errorf("delete playlist memberships for song %d: %w", id, err)
	}

	result, err := tx.ExecContext(ctx, `DELETE FROM songs WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete song %d: %w", id, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete song %d: rows affected: %w", id, err)
	}
	if affected == 0 {
		return fmt.Errorf("song %d: %w", id, ErrNotFound)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit delete song %d: %w", id, err)
	}
	return nil
}

// placeholders builds a "?, ?, ?" list of the given length.
func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

func nullString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

func nullFloat(f float64) interface{} {
	if f == 0 {
		return nil
	}
	return f
}
