// Harmonium - Music Library Analytics and Recommendations
// Copyright 2026 Harmonium Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/harmonium-app/harmonium

package recommend

import "fmt"

// Config holds the tunable parameters of the engine. Zero values are not
// usable; start from DefaultConfig and override selectively.
type Config struct {
	// DecayFactor is the per-day exponential decay applied to play-event
	// weights during pattern analysis. Must be in (0, 1].
	DecayFactor float64 `koanf:"decay_factor"`

	// HistoryWindow is the maximum number of recent play events the pattern
	// analyzer reads.
	HistoryWindow int `koanf:"history_window"`

	// RecentExcludeCount is how many most-recently-played distinct songs are
	// excluded from personalized recommendations and penalized in shuffle.
	RecentExcludeCount int `koanf:"recent_exclude_count"`

	// ArtistWeight and AlbumWeight scale artist/album affinity in the
	// personalized score. ArtistMatchBonus is added once when the candidate's
	// artist has any affinity at all.
	ArtistWeight     float64 `koanf:"artist_weight"`
	AlbumWeight      float64 `koanf:"album_weight"`
	ArtistMatchBonus float64 `koanf:"artist_match_bonus"`

	// Similarity base scores for "because you played" candidates.
	SimilarBothBase   float64 `koanf:"similar_both_base"`
	SimilarArtistBase float64 `koanf:"similar_artist_base"`
	SimilarAlbumBase  float64 `koanf:"similar_album_base"`

	// Shuffle weighting parameters.
	ShuffleBaseWeight       float64 `koanf:"shuffle_base_weight"`
	ShufflePlayCountCap     int64   `koanf:"shuffle_play_count_cap"`
	ShuffleArtistBoost      float64 `koanf:"shuffle_artist_boost"`
	ShuffleArtistBoostCap   float64 `koanf:"shuffle_artist_boost_cap"`
	ShuffleRecentPenalty    float64 `koanf:"shuffle_recent_penalty"`
	ShuffleJitter           float64 `koanf:"shuffle_jitter"`
	ShuffleArtistWindowDays int     `koanf:"shuffle_artist_window_days"`

	// RecentPlaylistWindowDays bounds the Recent virtual playlist.
	RecentPlaylistWindowDays int `koanf:"recent_playlist_window_days"`

	// Default result counts when the caller does not specify a limit.
	DefaultRecommendLimit int `koanf:"default_recommend_limit"`
	DefaultSimilarLimit   int `koanf:"default_similar_limit"`
	DefaultPlaylistLimit  int `koanf:"default_playlist_limit"`
}

// DefaultConfig returns the production defaults.
func DefaultConfig() Config {
	return Config{
		DecayFactor:              0.95,
		HistoryWindow:            200,
		RecentExcludeCount:       10,
		ArtistWeight:             10,
		AlbumWeight:              5,
		ArtistMatchBonus:         1,
		SimilarBothBase:          150,
		SimilarArtistBase:        100,
		SimilarAlbumBase:         50,
		ShuffleBaseWeight:        10,
		ShufflePlayCountCap:      20,
		ShuffleArtistBoost:       5,
		ShuffleArtistBoostCap:    15,
		ShuffleRecentPenalty:     30,
		ShuffleJitter:            5,
		ShuffleArtistWindowDays:  30,
		RecentPlaylistWindowDays: 7,
		DefaultRecommendLimit:    20,
		DefaultSimilarLimit:      10,
		DefaultPlaylistLimit:     50,
	}
}

// Validate checks the configuration for values the engine cannot run with.
func (c *Config) Validate() error {
	if c.DecayFactor <= 0 || c.DecayFactor > 1 {
		return fmt.Errorf("decay_factor must be in (0, 1], got %v", c.DecayFactor)
	}
	if c.HistoryWindow <= 0 {
		return fmt.Errorf("history_window must be positive, got %d", c.HistoryWindow)
	}
	if c.RecentExcludeCount < 0 {
		return fmt.Errorf("recent_exclude_count must be non-negative, got %d", c.RecentExcludeCount)
	}
	if c.ShuffleBaseWeight < 1 {
		return fmt.Errorf("shuffle_base_weight must be at least 1, got %v", c.ShuffleBaseWeight)
	}
	if c.ShuffleJitter < 0 {
		return fmt.Errorf("shuffle_jitter must be non-negative, got %v", c.ShuffleJitter)
	}
	if c.ShuffleArtistWindowDays <= 0 {
		return fmt.Errorf("shuffle_artist_window_days must be positive, got %d", c.ShuffleArtistWindowDays)
	}
	if c.RecentPlaylistWindowDays <= 0 {
		return fmt.Errorf("recent_playlist_window_days must be positive, got %d", c.RecentPlaylistWindowDays)
	}
	if c.DefaultRecommendLimit <= 0 || c.DefaultSimilarLimit <= 0 || c.DefaultPlaylistLimit <= 0 {
		return fmt.Errorf("default limits must be positive")
	}
	return nil
}
