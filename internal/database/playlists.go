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

	"github.com/harmonium-app/harmonium/internal/metrics"
	"github.com/harmonium-app/harmonium/internal/models"
)

// CreatePlaylist creates an empty named playlist and returns it with its
// assigned id and creation time.
func (db *DB) CreatePlaylist(ctx context.Context, name string) (*models.Playlist, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	defer metrics.TimeDBQuery("create_playlist")()

	row := db.conn.QueryRowContext(ctx,
		`INSERT INTO playlists (name) VALUES (?) RETURNING id, created_at`, name)

	playlist := models.Playlist{Name: name}
	if err := row.Scan(&playlist.ID, &playlist.CreatedAt); err != nil {
		return nil, fmt.Errorf("insert playlist: %w", err)
	}
	return &playlist, nil
}

// ListPlaylists returns all playlists with their song counts, newest
// first.
func (db *DB) ListPlaylists(ctx context.Context) ([]models.Playlist, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	defer metrics.TimeDBQuery("list_playlists")()

	rows, err := db.conn.QueryContext(ctx,
		`SELECT p.id, p.name, p.created_at, COUNT(ps.song_id) AS song_count
		 FROM playlists p
		 LEFT JOIN playlist_songs ps ON ps.playlist_id = p.id
		 GROUP BY p.id, p.name, p.created_at
		 ORDER BY p.created_at DESC, p.id DESC`)
	if err != nil {
		return nil, fmt.Errorf("query playlists: %w", err)
	}
	defer rows.Close()

	var playlists []models.Playlist
	for rows.Next() {
		var playlist models.Playlist
		if err := rows.Scan(&playlist.ID, &playlist.Name,
			&playlist.CreatedAt, &playlist.SongCount); err != nil {
			return nil, fmt.Errorf("scan playlist: %w", err)
		}
		playlists = append(playlists, playlist)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate playlists: %w", err)
	}
	return playlists, nil
}

// AddPlaylistSong adds a song to a playlist. Adding a song that is already
// in the playlist is a no-op. Returns ErrNotFound when either the playlist
// or the song does not exist.
func (db *DB) AddPlaylistSong(ctx context.Context, playlistID, songID int64) error {
	if err := db.playlistExists(ctx, playlistID); err != nil {
		return err
	}
	if _, err := db.GetSong(ctx, songID); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	defer metrics.TimeDBQuery("add_playlist_song")()

	_, err := db.conn.ExecContext(ctx,
		`INSERT OR IGNORE INTO playlist_songs (playlist_id, song_id) VALUES (?, ?)`,
		playlistID, songID)
	if err != nil {
		return fmt.Errorf("add song %d to playlist %d: %w", songID, playlistID, err)
	}
	return nil
}

// ListPlaylistSongs returns the songs in a playlist, most recently added
// first. Returns ErrNotFound when the playlist does not exist.
func (db *DB) ListPlaylistSongs(ctx context.Context, playlistID int64) ([]models.Song, error) {
	if err := db.playlistExists(ctx, playlistID); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	defer metrics.TimeDBQuery("list_playlist_songs")()

	rows, err := db.conn.QueryContext(ctx,
		`SELECT s.id, s.title, s.artist, COALESCE(s.album, ''), s.audio_ref,
		        COALESCE(s.art_ref, ''), COALESCE(s.duration, 0)
		 FROM songs s
		 JOIN playlist_songs ps ON ps.song_id = s.id
		 WHERE ps.playlist_id = ?
		 ORDER BY ps.added_at DESC, s.id DESC`, playlistID)
	if err != nil {
		return nil, fmt.Errorf("query playlist %d songs: %w", playlistID, err)
	}
	defer rows.Close()

	var songs []models.Song
	for rows.Next() {
		var song models.Song
		if err := rows.Scan(&song.ID, &song.Title, &song.Artist, &song.Album,
			&song.AudioRef, &song.ArtRef, &song.Duration); err != nil {
			return nil, fmt.Errorf("scan playlist song: %w", err)
		}
		songs = append(songs, song)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate playlist songs: %w", err)
	}
	return songs, nil
}

// playlistExists checks a playlist id, returning ErrNotFound for unknown
// playlists.
func (db *DB) playlistExists(ctx context.Context, playlistID int64) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var id int64
	err := db.conn.QueryRowContext(ctx,
		`SELECT id FROM playlists WHERE id = ?`, playlistID).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("playlist %d: %w", playlistID, ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("query playlist %d: %w", playlistID, err)
	}
	return nil
}
