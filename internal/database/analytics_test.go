// Harmonium - Music Library Analytics and Recommendations
// Copyright 2026 Harmonium Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/harmonium-app/harmonium

package database

import (
	"context"
	"testing"
	"time"
)

func TestRecentHistoryNewestFirst(t *testing.T) {
	db := setupTestDB(t)

	song := seedSong(t, db, "Looped", "Artist", "Album")
	now := time.Now().UTC()
	seedPlay(t, db, song.ID, now.Add(-2*time.Hour))
	seedPlay(t, db, song.ID, now)
	seedPlay(t, db, song.ID, now.Add(-time.Hour))

	entries, err := db.RecentHistory(context.Background(), 10)
	if err != nil {
		t.Fatalf("RecentHistory failed: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("Expected 3 entries, got %d", len(entries))
	}
	for i := 1; i < len(entries); i++ {
		if entries[i].PlayedAt.After(entries[i-1].PlayedAt) {
			t.Errorf("Entries not ordered newest first at position %d", i)
		}
	}
	if entries[0].Artist != "Artist" || entries[0].Album != "Album" {
		t.Errorf("Expected song metadata joined in, got %+v", entries[0])
	}
}

func TestRecentHistoryHonorsLimit(t *testing.T) {
	db := setupTestDB(t)

	song := seedSong(t, db, "Looped", "Artist", "")
	now := time.Now().UTC()
	for i := 0; i < 5; i++ {
		seedPlay(t, db, song.ID, now.Add(-time.Duration(i)*time.Minute))
	}

	entries, err := db.RecentHistory(context.Background(), 2)
	if err != nil {
		t.Fatalf("RecentHistory failed: %v", err)
	}
	if len(entries) != 2 {
		t.Errorf("Expected 2 entries with limit 2, got %d", len(entries))
	}
}

func TestRecentDistinctSongIDs(t *testing.T) {
	db := setupTestDB(t)

	a := seedSong(t, db, "First", "Artist", "")
	b := seedSong(t, db, "Second", "Artist", "")

	now := time.Now().UTC()
	// a is played twice, but its most recent play is older than b's.
	seedPlay(t, db, a.ID, now.Add(-3*time.Hour))
	seedPlay(t, db, a.ID, now.Add(-2*time.Hour))
	seedPlay(t, db, b.ID, now)

	ids, err := db.RecentDistinctSongIDs(context.Background(), 10)
	if err != nil {
		t.Fatalf("RecentDistinctSongIDs failed: %v", err)
	}
	if len(ids) != 2 {
		t.Fatalf("Expected 2 distinct ids, got %d", len(ids))
	}
	if ids[0] != b.ID || ids[1] != a.ID {
		t.Errorf("Expected order [%d %d], got %v", b.ID, a.ID, ids)
	}
}

func TestTotalPlayCount(t *testing.T) {
	db := setupTestDB(t)

	song := seedSong(t, db, "Counted", "Artist", "")
	now := time.Now().UTC()
	for i := 0; i < 4; i++ {
		seedPlay(t, db, song.ID, now.Add(-time.Duration(i)*time.Hour))
	}

	count, err := db.TotalPlayCount(context.Background(), song.ID)
	if err != nil {
		t.Fatalf("TotalPlayCount failed: %v", err)
	}
	if count != 4 {
		t.Errorf("Expected count 4, got %d", count)
	}

	count, err = db.TotalPlayCount(context.Background(), 9999)
	if err != nil {
		t.Fatalf("TotalPlayCount for unknown song failed: %v", err)
	}
	if count != 0 {
		t.Errorf("Expected zero count for unknown song, got %d", count)
	}
}

func TestRecentArtistPlayCountsWindow(t *testing.T) {
	db := setupTestDB(t)

	recent := seedSong(t, db, "Recent", "Fresh Artist", "")
	stale := seedSong(t, db, "Stale", "Old Artist", "")

	now := time.Now().UTC()
	seedPlay(t, db, recent.ID, now.Add(-24*time.Hour))
	seedPlay(t, db, recent.ID, now.Add(-48*time.Hour))
	seedPlay(t, db, stale.ID, now.AddDate(0, 0, -45))

	counts, err := db.RecentArtistPlayCounts(context.Background(), 30)
	if err != nil {
		t.Fatalf("RecentArtistPlayCounts failed: %v", err)
	}
	if counts["Fresh Artist"] != 2 {
		t.Errorf("Expected 2 plays for Fresh Artist, got %d", counts["Fresh Artist"])
	}
	if _, ok := counts["Old Artist"]; ok {
		t.Error("Expected plays outside the window to be excluded")
	}
}

func TestSongsByPopularityIncludesUnplayed(t *testing.T) {
	db := setupTestDB(t)

	popular := seedSong(t, db, "Popular", "Artist", "")
	quiet := seedSong(t, db, "Quiet", "Artist", "")
	unplayed := seedSong(t, db, "Unplayed", "Artist", "")

	now := time.Now().UTC()
	seedPlay(t, db, popular.ID, now)
	seedPlay(t, db, popular.ID, now.Add(-time.Hour))
	seedPlay(t, db, quiet.ID, now)

	songs, err := db.SongsByPopularity(context.Background(), nil, 0)
	if err != nil {
		t.Fatalf("SongsByPopularity failed: %v", err)
	}
	if len(songs) != 3 {
		t.Fatalf("Expected 3 songs, got %d", len(songs))
	}
	if songs[0].ID != popular.ID || songs[0].PlayCount != 2 {
		t.Errorf("Expected %d first with 2 plays, got %+v", popular.ID, songs[0])
	}
	if songs[2].ID != unplayed.ID || songs[2].PlayCount != 0 {
		t.Errorf("Expected unplayed song last with zero count, got %+v", songs[2])
	}
	if songs[0].Score != 2 {
		t.Errorf("Expected score to mirror play count, got %v", songs[0].Score)
	}
}

func TestSongsByPopularityExcludeAndLimit(t *testing.T) {
	db := setupTestDB(t)

	a := seedSong(t, db, "A", "Artist", "")
	b := seedSong(t, db, "B", "Artist", "")
	c := seedSong(t, db, "C", "Artist", "")

	now := time.Now().UTC()
	seedPlay(t, db, a.ID, now)
	seedPlay(t, db, b.ID, now)
	seedPlay(t, db, c.ID, now)

	songs, err := db.SongsByPopularity(context.Background(), []int64{a.ID}, 1)
	if err != nil {
		t.Fatalf("SongsByPopularity failed: %v", err)
	}
	if len(songs) != 1 {
		t.Fatalf("Expected 1 song with limit 1, got %d", len(songs))
	}
	// Equal play counts break ties by id descending.
	if songs[0].ID != c.ID {
		t.Errorf("Expected highest remaining id %d, got %d", c.ID, songs[0].ID)
	}
}

func TestTopSongsByPlayCount(t *testing.T) {
	db := setupTestDB(t)

	top := seedSong(t, db, "Top", "Artist", "")
	mid := seedSong(t, db, "Mid", "Artist", "")
	seedSong(t, db, "Never", "Artist", "")

	now := time.Now().UTC()
	for i := 0; i < 3; i++ {
		seedPlay(t, db, top.ID, now.Add(-time.Duration(i)*time.Hour))
	}
	seedPlay(t, db, mid.ID, now)

	songs, err := db.TopSongsByPlayCount(context.Background(), 50)
	if err != nil {
		t.Fatalf("TopSongsByPlayCount failed: %v", err)
	}
	// Unplayed songs never appear in the top playlist.
	if len(songs) != 2 {
		t.Fatalf("Expected 2 played songs, got %d", len(songs))
	}
	if songs[0].ID != top.ID || songs[0].PlayCount != 3 {
		t.Errorf("Expected %d first with 3 plays, got %+v", top.ID, songs[0])
	}
	if songs[0].LastPlayedAt == nil {
		t.Error("Expected last played timestamp to be populated")
	}
}

func TestRecentSongsByLastPlayed(t *testing.T) {
	db := setupTestDB(t)

	fresh := seedSong(t, db, "Fresh", "Artist", "")
	older := seedSong(t, db, "Older", "Artist", "")
	ancient := seedSong(t, db, "Ancient", "Artist", "")

	now := time.Now().UTC()
	seedPlay(t, db, fresh.ID, now.Add(-time.Hour))
	seedPlay(t, db, older.ID, now.AddDate(0, 0, -3))
	seedPlay(t, db, ancient.ID, now.AddDate(0, 0, -30))

	songs, err := db.RecentSongsByLastPlayed(context.Background(), 7, 50)
	if err != nil {
		t.Fatalf("RecentSongsByLastPlayed failed: %v", err)
	}
	if len(songs) != 2 {
		t.Fatalf("Expected 2 songs within 7 days, got %d", len(songs))
	}
	if songs[0].ID != fresh.ID || songs[1].ID != older.ID {
		t.Errorf("Expected order [%d %d], got [%d %d]",
			fresh.ID, older.ID, songs[0].ID, songs[1].ID)
	}
}
