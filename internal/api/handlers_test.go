// Harmonium - Music Library Analytics and Recommendations
// Copyright 2026 Harmonium Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/harmonium-app/harmonium

package api

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/harmonium-app/harmonium/internal/database"
	"github.com/harmonium-app/harmonium/internal/eventstream"
	"github.com/harmonium-app/harmonium/internal/models"
	"github.com/harmonium-app/harmonium/internal/recommend"
)

// mockEngine returns canned results and records the limits it was
// called with.
type mockEngine struct {
	cfg recommend.Config

	scored   []models.ScoredSong
	queue    []int64
	playlist *models.VirtualPlaylist
	err      error

	lastLimit  int
	lastSeedID int64
	lastQueue  []int64
}

func (m *mockEngine) PersonalizedRecommendations(ctx context.Context, limit int) ([]models.ScoredSong, error) {
	m.lastLimit = limit
	return m.scored, m.err
}

func (m *mockEngine) BecauseYouPlayed(ctx context.Context, songID int64, limit int) ([]models.ScoredSong, error) {
	m.lastSeedID = songID
	m.lastLimit = limit
	return m.scored, m.err
}

func (m *mockEngine) SmartShuffle(ctx context.Context, queue []int64) ([]int64, error) {
	m.lastQueue = queue
	return m.queue, m.err
}

func (m *mockEngine) TopPlaylist(ctx context.Context, limit int) (*models.VirtualPlaylist, error) {
	m.lastLimit = limit
	return m.playlist, m.err
}

func (m *mockEngine) RecentPlaylist(ctx context.Context, limit int) (*models.VirtualPlaylist, error) {
	m.lastLimit = limit
	return m.playlist, m.err
}

func (m *mockEngine) Config() recommend.Config {
	return m.cfg
}

// mockLibrary is an in-memory catalog.
type mockLibrary struct {
	songs     map[int64]*models.Song
	stats     *models.ListeningStats
	history   []models.HistoryRecord
	playlists map[int64]*models.Playlist
	members   map[int64][]int64
	err       error
	pingErr   error
	deleted   []int64
	lastLimit int
}

func newMockLibrary() *mockLibrary {
	return &mockLibrary{
		songs:     make(map[int64]*models.Song),
		playlists: make(map[int64]*models.Playlist),
		members:   make(map[int64][]int64),
	}
}

func (m *mockLibrary) CreateSong(ctx context.Context, song *models.Song) (*models.Song, error) {
	if m.err != nil {
		return nil, m.err
	}
	created := *song
	created.ID = int64(len(m.songs) + 1)
	m.songs[created.ID] = &created
	return &created, nil
}

func (m *mockLibrary) GetSong(ctx context.Context, id int64) (*models.Song, error) {
	if m.err != nil {
		return nil, m.err
	}
	song, ok := m.songs[id]
	if !ok {
		return nil, fmt.Errorf("song %d: %w", id, database.ErrNotFound)
	}
	return song, nil
}

func (m *mockLibrary) ListSongs(ctx context.Context, excludeIDs []int64) ([]models.Song, error) {
	if m.err != nil {
		return nil, m.err
	}
	out := make([]models.Song, 0, len(m.songs))
	for _, s := range m.songs {
		out = append(out, *s)
	}
	return out, nil
}

func (m *mockLibrary) DeleteSong(ctx context.Context, id int64) error {
	if m.err != nil {
		return m.err
	}
	if _, ok := m.songs[id]; !ok {
		return fmt.Errorf("song %d: %w", id, database.ErrNotFound)
	}
	delete(m.songs, id)
	m.deleted = append(m.deleted, id)
	return nil
}

func (m *mockLibrary) ListeningStats(ctx context.Context, topN int) (*models.ListeningStats, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.stats, nil
}

func (m *mockLibrary) ListHistory(ctx context.Context, limit int) ([]models.HistoryRecord, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.lastLimit = limit
	if limit < len(m.history) {
		return m.history[:limit], nil
	}
	return m.history, nil
}

func (m *mockLibrary) CreatePlaylist(ctx context.Context, name string) (*models.Playlist, error) {
	if m.err != nil {
		return nil, m.err
	}
	playlist := &models.Playlist{ID: int64(len(m.playlists) + 1), Name: name}
	m.playlists[playlist.ID] = playlist
	return playlist, nil
}

func (m *mockLibrary) ListPlaylists(ctx context.Context) ([]models.Playlist, error) {
	if m.err != nil {
		return nil, m.err
	}
	out := make([]models.Playlist, 0, len(m.playlists))
	for _, p := range m.playlists {
		out = append(out, *p)
	}
	return out, nil
}

func (m *mockLibrary) AddPlaylistSong(ctx context.Context, playlistID, songID int64) error {
	if m.err != nil {
		return m.err
	}
	if _, ok := m.playlists[playlistID]; !ok {
		return fmt.Errorf("playlist %d: %w", playlistID, database.ErrNotFound)
	}
	if _, ok := m.songs[songID]; !ok {
		return fmt.Errorf("song %d: %w", songID, database.ErrNotFound)
	}
	for _, existing := range m.members[playlistID] {
		if existing == songID {
			return nil
		}
	}
	m.members[playlistID] = append(m.members[playlistID], songID)
	return nil
}

func (m *mockLibrary) ListPlaylistSongs(ctx context.Context, playlistID int64) ([]models.Song, error) {
	if m.err != nil {
		return nil, m.err
	}
	if _, ok := m.playlists[playlistID]; !ok {
		return nil, fmt.Errorf("playlist %d: %w", playlistID, database.ErrNotFound)
	}
	out := make([]models.Song, 0, len(m.members[playlistID]))
	for _, id := range m.members[playlistID] {
		out = append(out, *m.songs[id])
	}
	return out, nil
}

func (m *mockLibrary) Ping(ctx context.Context) error {
	return m.pingErr
}

// mockPublisher records published events.
type mockPublisher struct {
	events []*eventstream.PlaybackEvent
	err    error
}

func (m *mockPublisher) PublishEvent(ctx context.Context, event *eventstream.PlaybackEvent) error {
	if m.err != nil {
		return m.err
	}
	m.events = append(m.events, event)
	return nil
}

func newTestServer(engine *mockEngine, library *mockLibrary, publisher *mockPublisher) http.Handler {
	if engine.cfg.DecayFactor == 0 {
		engine.cfg = recommend.DefaultConfig()
	}
	handler := NewHandler(engine, library, publisher)
	mwConfig := DefaultChiMiddlewareConfig()
	mwConfig.RateLimitDisabled = true
	return NewRouter(handler, mwConfig).Setup()
}

func doRequest(t *testing.T, srv http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reqBody *bytes.Buffer
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request body: %v", err)
		}
		reqBody = bytes.NewBuffer(data)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	return rec
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) *models.APIResponse {
	t.Helper()
	var resp models.APIResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v (body: %s)", err, rec.Body.String())
	}
	return &resp
}

func TestHealthOK(t *testing.T) {
	srv := newTestServer(&mockEngine{}, newMockLibrary(), &mockPublisher{})

	rec := doRequest(t, srv, http.MethodGet, "/api/v1/health", nil)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	resp := decodeResponse(t, rec)
	if resp.Status != "success" {
		t.Errorf("Status = %q, want success", resp.Status)
	}
}

func TestHealthDegradedOnDatabaseFailure(t *testing.T) {
	library := newMockLibrary()
	library.pingErr = errors.New("connection refused")
	srv := newTestServer(&mockEngine{}, library, &mockPublisher{})

	rec := doRequest(t, srv, http.MethodGet, "/api/v1/health", nil)

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusServiceUnavailable)
	}
}

func TestRecommendationsDefaultLimit(t *testing.T) {
	engine := &mockEngine{scored: []models.ScoredSong{
		{Song: models.Song{ID: 1, Title: "a", Artist: "x"}, Score: 16},
	}}
	srv := newTestServer(engine, newMockLibrary(), &mockPublisher{})

	rec := doRequest(t, srv, http.MethodGet, "/api/v1/recommendations", nil)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d (body: %s)", rec.Code, http.StatusOK, rec.Body.String())
	}
	if want := recommend.DefaultConfig().DefaultRecommendLimit; engine.lastLimit != want {
		t.Errorf("engine limit = %d, want %d", engine.lastLimit, want)
	}
}

func TestRecommendationsExplicitLimit(t *testing.T) {
	engine := &mockEngine{}
	srv := newTestServer(engine, newMockLibrary(), &mockPublisher{})

	doRequest(t, srv, http.MethodGet, "/api/v1/recommendations?limit=5", nil)

	if engine.lastLimit != 5 {
		t.Errorf("engine limit = %d, want 5", engine.lastLimit)
	}
}

func TestRecommendationsErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"store unavailable", fmt.Errorf("recent history: %w: boom", recommend.ErrStoreUnavailable), http.StatusServiceUnavailable, models.ErrCodeStoreUnavailable},
		{"invalid input", fmt.Errorf("%w: limit must be positive", recommend.ErrInvalidInput), http.StatusBadRequest, models.ErrCodeValidation},
		{"not found", fmt.Errorf("song 9: %w", recommend.ErrNotFound), http.StatusNotFound, models.ErrCodeNotFound},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, models.ErrCodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := &mockEngine{err: tt.err}
			srv := newTestServer(engine, newMockLibrary(), &mockPublisher{})

			rec := doRequest(t, srv, http.MethodGet, "/api/v1/recommendations", nil)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			resp := decodeResponse(t, rec)
			if resp.Error == nil || resp.Error.Code != tt.wantCode {
				t.Errorf("error = %+v, want code %q", resp.Error, tt.wantCode)
			}
		})
	}
}

func TestBecauseYouPlayed(t *testing.T) {
	engine := &mockEngine{scored: []models.ScoredSong{
		{Song: models.Song{ID: 2, Title: "b", Artist: "x"}, Score: 153},
	}}
	srv := newTestServer(engine, newMockLibrary(), &mockPublisher{})

	rec := doRequest(t, srv, http.MethodGet, "/api/v1/recommendations/because/7?limit=3", nil)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if engine.lastSeedID != 7 {
		t.Errorf("seed id = %d, want 7", engine.lastSeedID)
	}
	if engine.lastLimit != 3 {
		t.Errorf("limit = %d, want 3", engine.lastLimit)
	}
}

func TestBecauseYouPlayedMalformedID(t *testing.T) {
	engine := &mockEngine{}
	srv := newTestServer(engine, newMockLibrary(), &mockPublisher{})

	rec := doRequest(t, srv, http.MethodGet, "/api/v1/recommendations/because/abc", nil)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
	if engine.lastSeedID != 0 {
		t.Error("engine should not be called for malformed id")
	}
}

func TestSmartShuffle(t *testing.T) {
	engine := &mockEngine{queue: []int64{3, 1, 2}}
	srv := newTestServer(engine, newMockLibrary(), &mockPublisher{})

	rec := doRequest(t, srv, http.MethodPost, "/api/v1/shuffle/smart", smartShuffleRequest{Queue: []int64{1, 2, 3}})

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d (body: %s)", rec.Code, http.StatusOK, rec.Body.String())
	}
	if len(engine.lastQueue) != 3 {
		t.Errorf("engine queue = %v, want 3 ids", engine.lastQueue)
	}

	resp := decodeResponse(t, rec)
	data, ok := resp.Data.(map[string]interface{})
	if !ok {
		t.Fatalf("Data has type %T", resp.Data)
	}
	queue, ok := data["queue"].([]interface{})
	if !ok || len(queue) != 3 {
		t.Errorf("queue = %v, want 3 entries", data["queue"])
	}
}

func TestSmartShuffleInvalidBody(t *testing.T) {
	srv := newTestServer(&mockEngine{}, newMockLibrary(), &mockPublisher{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/shuffle/smart", bytes.NewBufferString("{not json"))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestPlaylistEndpoints(t *testing.T) {
	playlist := &models.VirtualPlaylist{
		ID:          recommend.TopPlaylistID,
		Name:        recommend.TopPlaylistName,
		Songs:       []models.PlaylistSong{},
		GeneratedAt: time.Now().UTC(),
	}
	engine := &mockEngine{playlist: playlist}
	srv := newTestServer(engine, newMockLibrary(), &mockPublisher{})

	for _, path := range []string{"/api/v1/playlists/auto/top", "/api/v1/playlists/auto/recent"} {
		rec := doRequest(t, srv, http.MethodGet, path, nil)
		if rec.Code != http.StatusOK {
			t.Errorf("%s: status = %d, want %d", path, rec.Code, http.StatusOK)
		}
		if want := recommend.DefaultConfig().DefaultPlaylistLimit; engine.lastLimit != want {
			t.Errorf("%s: limit = %d, want %d", path, engine.lastLimit, want)
		}
	}
}

func TestCreateSong(t *testing.T) {
	library := newMockLibrary()
	srv := newTestServer(&mockEngine{}, library, &mockPublisher{})

	rec := doRequest(t, srv, http.MethodPost, "/api/v1/songs", createSongRequest{
		Title:  "Holocene",
		Artist: "Bon Iver",
		Album:  "Bon Iver, Bon Iver",
	})

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d (body: %s)", rec.Code, http.StatusCreated, rec.Body.String())
	}
	if len(library.songs) != 1 {
		t.Errorf("library has %d songs, want 1", len(library.songs))
	}
}

func TestCreateSongValidation(t *testing.T) {
	srv := newTestServer(&mockEngine{}, newMockLibrary(), &mockPublisher{})

	rec := doRequest(t, srv, http.MethodPost, "/api/v1/songs", createSongRequest{Artist: "Bon Iver"})

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
	resp := decodeResponse(t, rec)
	if resp.Error == nil || resp.Error.Code != models.ErrCodeValidation {
		t.Errorf("error = %+v, want code %q", resp.Error, models.ErrCodeValidation)
	}
}

func TestGetSongNotFound(t *testing.T) {
	srv := newTestServer(&mockEngine{}, newMockLibrary(), &mockPublisher{})

	rec := doRequest(t, srv, http.MethodGet, "/api/v1/songs/99", nil)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestDeleteSong(t *testing.T) {
	library := newMockLibrary()
	library.songs[4] = &models.Song{ID: 4, Title: "t", Artist: "a"}
	srv := newTestServer(&mockEngine{}, library, &mockPublisher{})

	rec := doRequest(t, srv, http.MethodDelete, "/api/v1/songs/4", nil)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if len(library.deleted) != 1 || library.deleted[0] != 4 {
		t.Errorf("deleted = %v, want [4]", library.deleted)
	}
}

func TestRecordPlayPublishes(t *testing.T) {
	library := newMockLibrary()
	library.songs[12] = &models.Song{ID: 12, Title: "t", Artist: "a"}
	publisher := &mockPublisher{}
	srv := newTestServer(&mockEngine{}, library, publisher)

	rec := doRequest(t, srv, http.MethodPost, "/api/v1/history", recordPlayRequest{SongID: 12})

	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d, want %d (body: %s)", rec.Code, http.StatusAccepted, rec.Body.String())
	}
	if len(publisher.events) != 1 {
		t.Fatalf("published %d events, want 1", len(publisher.events))
	}
	if publisher.events[0].SongID != 12 {
		t.Errorf("event SongID = %d, want 12", publisher.events[0].SongID)
	}
	if publisher.events[0].EventID == "" {
		t.Error("event should carry a generated EventID")
	}
}

func TestRecordPlayUnknownSong(t *testing.T) {
	publisher := &mockPublisher{}
	srv := newTestServer(&mockEngine{}, newMockLibrary(), publisher)

	rec := doRequest(t, srv, http.MethodPost, "/api/v1/history", recordPlayRequest{SongID: 999})

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
	if len(publisher.events) != 0 {
		t.Error("no event should be published for an unknown song")
	}
}

func TestRecordPlayPublishFailure(t *testing.T) {
	library := newMockLibrary()
	library.songs[5] = &models.Song{ID: 5, Title: "t", Artist: "a"}
	publisher := &mockPublisher{err: errors.New("circuit open")}
	srv := newTestServer(&mockEngine{}, library, publisher)

	rec := doRequest(t, srv, http.MethodPost, "/api/v1/history", recordPlayRequest{SongID: 5})

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusServiceUnavailable)
	}
	resp := decodeResponse(t, rec)
	if resp.Error == nil || resp.Error.Code != models.ErrCodeEventPublish {
		t.Errorf("error = %+v, want code %q", resp.Error, models.ErrCodeEventPublish)
	}
}

func TestListeningStats(t *testing.T) {
	library := newMockLibrary()
	library.stats = &models.ListeningStats{TotalPlays: 42, UniqueSongs: 7}
	srv := newTestServer(&mockEngine{}, library, &mockPublisher{})

	rec := doRequest(t, srv, http.MethodGet, "/api/v1/history/stats", nil)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
}

func TestListeningStatsTopOutOfRange(t *testing.T) {
	srv := newTestServer(&mockEngine{}, newMockLibrary(), &mockPublisher{})

	rec := doRequest(t, srv, http.MethodGet, "/api/v1/history/stats?top=500", nil)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestRequestIDHeaderOnResponses(t *testing.T) {
	srv := newTestServer(&mockEngine{}, newMockLibrary(), &mockPublisher{})

	rec := doRequest(t, srv, http.MethodGet, "/api/v1/health", nil)

	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("response should carry X-Request-ID")
	}
}
