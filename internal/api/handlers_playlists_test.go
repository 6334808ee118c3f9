// Harmonium - Music Library Analytics and Recommendations
// Copyright 2026 Harmonium Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/harmonium-app/harmonium

package api

import (
	"net/http"
	"testing"
	"time"

	"github.com/harmonium-app/harmonium/internal/models"
)

func TestCreatePlaylist(t *testing.T) {
	library := newMockLibrary()
	srv := newTestServer(&mockEngine{}, library, &mockPublisher{})

	rec := doRequest(t, srv, http.MethodPost, "/api/v1/playlists",
		createPlaylistRequest{Name: "Road Trip"})

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d (body: %s)", rec.Code, http.StatusCreated, rec.Body.String())
	}
	if len(library.playlists) != 1 {
		t.Errorf("library has %d playlists, want 1", len(library.playlists))
	}
}

func TestCreatePlaylistRequiresName(t *testing.T) {
	srv := newTestServer(&mockEngine{}, newMockLibrary(), &mockPublisher{})

	rec := doRequest(t, srv, http.MethodPost, "/api/v1/playlists", createPlaylistRequest{})

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
	resp := decodeResponse(t, rec)
	if resp.Error == nil || resp.Error.Code != models.ErrCodeValidation {
		t.Errorf("error = %+v, want code %q", resp.Error, models.ErrCodeValidation)
	}
}

func TestListPlaylists(t *testing.T) {
	library := newMockLibrary()
	library.playlists[1] = &models.Playlist{ID: 1, Name: "Focus"}
	library.playlists[2] = &models.Playlist{ID: 2, Name: "Gym"}
	srv := newTestServer(&mockEngine{}, library, &mockPublisher{})

	rec := doRequest(t, srv, http.MethodGet, "/api/v1/playlists", nil)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	resp := decodeResponse(t, rec)
	data, ok := resp.Data.(map[string]interface{})
	if !ok {
		t.Fatalf("data = %T, want object", resp.Data)
	}
	if count, ok := data["count"].(float64); !ok || count != 2 {
		t.Errorf("count = %v, want 2", data["count"])
	}
}

func TestAddPlaylistSong(t *testing.T) {
	library := newMockLibrary()
	library.playlists[1] = &models.Playlist{ID: 1, Name: "Focus"}
	library.songs[7] = &models.Song{ID: 7, Title: "t", Artist: "a"}
	srv := newTestServer(&mockEngine{}, library, &mockPublisher{})

	rec := doRequest(t, srv, http.MethodPost, "/api/v1/playlists/1/songs",
		addPlaylistSongRequest{SongID: 7})

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d (body: %s)", rec.Code, http.StatusCreated, rec.Body.String())
	}
	if got := library.members[1]; len(got) != 1 || got[0] != 7 {
		t.Errorf("playlist members = %v, want [7]", got)
	}
}

func TestAddPlaylistSongUnknownPlaylist(t *testing.T) {
	library := newMockLibrary()
	library.songs[7] = &models.Song{ID: 7, Title: "t", Artist: "a"}
	srv := newTestServer(&mockEngine{}, library, &mockPublisher{})

	rec := doRequest(t, srv, http.MethodPost, "/api/v1/playlists/99/songs",
		addPlaylistSongRequest{SongID: 7})

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestAddPlaylistSongUnknownSong(t *testing.T) {
	library := newMockLibrary()
	library.playlists[1] = &models.Playlist{ID: 1, Name: "Focus"}
	srv := newTestServer(&mockEngine{}, library, &mockPublisher{})

	rec := doRequest(t, srv, http.MethodPost, "/api/v1/playlists/1/songs",
		addPlaylistSongRequest{SongID: 404})

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestListPlaylistSongs(t *testing.T) {
	library := newMockLibrary()
	library.playlists[1] = &models.Playlist{ID: 1, Name: "Focus"}
	library.songs[7] = &models.Song{ID: 7, Title: "t", Artist: "a"}
	library.members[1] = []int64{7}
	srv := newTestServer(&mockEngine{}, library, &mockPublisher{})

	rec := doRequest(t, srv, http.MethodGet, "/api/v1/playlists/1/songs", nil)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	resp := decodeResponse(t, rec)
	data, ok := resp.Data.(map[string]interface{})
	if !ok {
		t.Fatalf("data = %T, want object", resp.Data)
	}
	if count, ok := data["count"].(float64); !ok || count != 1 {
		t.Errorf("count = %v, want 1", data["count"])
	}
}

func TestListPlaylistSongsUnknownPlaylist(t *testing.T) {
	srv := newTestServer(&mockEngine{}, newMockLibrary(), &mockPublisher{})

	rec := doRequest(t, srv, http.MethodGet, "/api/v1/playlists/99/songs", nil)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

// The /playlists/auto routes share a prefix with /playlists/{playlistID};
// the static segment must keep routing to the virtual playlists.
func TestAutoPlaylistRoutesUnaffected(t *testing.T) {
	engine := &mockEngine{playlist: &models.VirtualPlaylist{ID: "auto-top", Name: "Top Songs"}}
	srv := newTestServer(engine, newMockLibrary(), &mockPublisher{})

	for _, path := range []string{"/api/v1/playlists/auto/top", "/api/v1/playlists/auto/recent"} {
		rec := doRequest(t, srv, http.MethodGet, path, nil)
		if rec.Code != http.StatusOK {
			t.Errorf("%s: status = %d, want %d", path, rec.Code, http.StatusOK)
		}
	}
}

func TestListHistory(t *testing.T) {
	library := newMockLibrary()
	library.history = []models.HistoryRecord{
		{ID: 2, SongID: 7, PlayedAt: time.Now().UTC(), Title: "t", Artist: "a"},
		{ID: 1, SongID: 7, PlayedAt: time.Now().UTC().Add(-time.Hour), Title: "t", Artist: "a"},
	}
	srv := newTestServer(&mockEngine{}, library, &mockPublisher{})

	rec := doRequest(t, srv, http.MethodGet, "/api/v1/history", nil)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if library.lastLimit != 100 {
		t.Errorf("default limit = %d, want 100", library.lastLimit)
	}
	resp := decodeResponse(t, rec)
	data, ok := resp.Data.(map[string]interface{})
	if !ok {
		t.Fatalf("data = %T, want object", resp.Data)
	}
	if count, ok := data["count"].(float64); !ok || count != 2 {
		t.Errorf("count = %v, want 2", data["count"])
	}
}

func TestListHistoryLimitOutOfRange(t *testing.T) {
	srv := newTestServer(&mockEngine{}, newMockLibrary(), &mockPublisher{})

	for _, limit := range []string{"0", "1001", "-5"} {
		rec := doRequest(t, srv, http.MethodGet, "/api/v1/history?limit="+limit, nil)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("limit %s: status = %d, want %d", limit, rec.Code, http.StatusBadRequest)
		}
	}
}
