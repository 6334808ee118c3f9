// Harmonium - Music Library Analytics and Recommendations
// Copyright 2026 Harmonium Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/harmonium-app/harmonium

package database

import (
	"context"
	"fmt"
	"time"
)

// createSchema creates the Harmonium tables, sequences, and indexes.
// Everything is idempotent so startup can run it unconditionally.
func (db *DB) createSchema() error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	statements := []string{
		`CREATE SEQUENCE IF NOT EXISTS songs_id_seq`,
		`CREATE TABLE IF NOT EXISTS songs (
			id BIGINT PRIMARY KEY DEFAULT nextval('songs_id_seq'),
			title VARCHAR NOT NULL,
			artist VARCHAR NOT NULL,
			album VARCHAR,
			audio_ref VARCHAR NOT NULL,
			art_ref VARCHAR,
			duration DOUBLE,
			created_at TIMESTAMP NOT NULL DEFAULT current_timestamp
		)`,
		`CREATE SEQUENCE IF NOT EXISTS play_history_id_seq`,
		`CREATE TABLE IF NOT EXISTS play_history (
			id BIGINT PRIMARY KEY DEFAULT nextval('play_history_id_seq'),
			song_id BIGINT NOT NULL,
			played_at TIMESTAMP NOT NULL
		)`,
		`CREATE SEQUENCE IF NOT EXISTS playlists_id_seq`,
		`CREATE TABLE IF NOT EXISTS playlists (
			id BIGINT PRIMARY KEY DEFAULT nextval('playlists_id_seq'),
			name VARCHAR NOT NULL,
			created_at TIMESTAMP NOT NULL DEFAULT current_timestamp
		)`,
		`CREATE TABLE IF NOT EXISTS playlist_songs (
			playlist_id BIGINT NOT NULL,
			song_id BIGINT NOT NULL,
			added_at TIMESTAMP NOT NULL DEFAULT current_timestamp,
			UNIQUE (playlist_id, song_id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_playlist_songs_playlist ON playlist_songs(playlist_id)`,
		`CREATE INDEX IF NOT EXISTS idx_play_history_played_at ON play_history(played_at)`,
		`CREATE INDEX IF NOT EXISTS idx_play_history_song_id ON play_history(song_id)`,
		`CREATE INDEX IF NOT EXISTS idx_songs_artist ON songs(artist)`,
	}

	for _, stmt := range statements {
		if _, err := db.conn.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("schema statement failed: %w", err)
		}
	}
	return nil
}
