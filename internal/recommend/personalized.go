// Harmonium - Music Library Analytics and Recommendations
// Copyright 2026 Harmonium Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/harmonium-app/harmonium

package recommend

import (
	"context"
	"math"
	"sort"

	"github.com/harmonium-app/harmonium/internal/metrics"
	"github.com/harmonium-app/harmonium/internal/models"
)

// PersonalizedRecommendations scores the catalog against the listener's
// affinity maps and returns the top limit candidates.
//
// The most recently played distinct songs are excluded so the list stays
// fresh. When the listener has no history at all, the scorer delegates
// entirely to the popularity fallback; the two paths never mix.
func (e *Engine) PersonalizedRecommendations(ctx context.Context, limit int) ([]models.ScoredSong, error) {
	if limit <= 0 {
		return nil, invalidInput("limit must be positive, got %d", limit)
	}

	patterns, err := e.AnalyzePatterns(ctx)
	if err != nil {
		return nil, err
	}

	recent, err := e.store.RecentDistinctSongIDs(ctx, e.config.RecentExcludeCount)
	if err != nil {
		return nil, storeFailure("personalized: recent song ids", err)
	}

	if patterns.Empty() {
		e.logger.Debug().Msg("No listening history, using popularity fallback")
		metrics.RecordEngineFallback("personalized")
		return e.popularityFallback(ctx, nil, limit)
	}

	songs, err := e.store.ListSongs(ctx, recent)
	if err != nil {
		return nil, storeFailure("personalized: list songs", err)
	}

	candidates := make([]models.ScoredSong, 0, len(songs))
	for _, song := range songs {
		score := e.scoreCandidate(&song, patterns)
		if score <= 0 {
			continue
		}
		candidates = append(candidates, models.ScoredSong{Song: song, Score: score})
	}

	sortByScoreThenID(candidates)
	if len(candidates) > limit {
		candidates = candidates[:limit]
	}

	e.logger.Debug().
		Int("candidates", len(candidates)).
		Int("excluded", len(recent)).
		Msg("Personalized recommendations computed")

	return candidates, nil
}

// scoreCandidate applies the affinity weighting rule to one catalog song.
func (e *Engine) scoreCandidate(song *models.Song, patterns *AffinityMap) float64 {
	artistAff := patterns.Artists[song.Artist]

	var albumAff float64
	if song.HasAlbum() {
		albumAff = patterns.Albums[song.Album]
	}

	score := e.config.ArtistWeight*artistAff + e.config.AlbumWeight*albumAff
	if artistAff > 0 {
		score += e.config.ArtistMatchBonus
	}
	return round2(score)
}

// popularityFallback returns up to limit catalog songs ordered by total
// play count descending then id descending, with score set to the play
// count. All songs are eligible; never-played songs simply sort last.
func (e *Engine) popularityFallback(ctx context.Context, excludeIDs []int64, limit int) ([]models.ScoredSong, error) {
	songs, err := e.store.SongsByPopularity(ctx, excludeIDs, limit)
	if err != nil {
		return nil, storeFailure("popularity fallback", err)
	}
	return songs, nil
}

// sortByScoreThenID orders candidates by score descending, breaking ties by
// song id descending so repeated runs return identical orderings.
func sortByScoreThenID(candidates []models.ScoredSong) {
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].Score != candidates[j].Score {
			return candidates[i].Score > candidates[j].Score
		}
		return candidates[i].ID > candidates[j].ID
	})
}

// round2 rounds to two decimal places to keep scores presentable.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
