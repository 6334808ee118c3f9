// Harmonium - Music Library Analytics and Recommendations
// Copyright 2026 Harmonium Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/harmonium-app/harmonium

package recommend

import (
	"context"

	"github.com/harmonium-app/harmonium/internal/metrics"
	"github.com/harmonium-app/harmonium/internal/models"
)

// BecauseYouPlayed returns "because you played X" recommendations for a
// seed song: the rest of the catalog scored by artist/album match plus
// total play count.
//
// Scoring per candidate: 150 base for matching both artist and album (both
// non-empty), 100 for artist only, 50 for album only (both non-empty),
// 0 otherwise, plus the candidate's total play count. Candidates with zero
// score are dropped; if nothing qualifies, the popularity fallback runs
// with the seed excluded.
//
// Returns ErrNotFound when songID does not resolve to a catalog song.
func (e *Engine) BecauseYouPlayed(ctx context.Context, songID int64, limit int) ([]models.ScoredSong, error) {
	if songID <= 0 {
		return nil, invalidInput("song id must be positive, got %d", songID)
	}
	if limit <= 0 {
		return nil, invalidInput("limit must be positive, got %d", limit)
	}

	seed, err := e.store.GetSongByID(ctx, songID)
	if err != nil {
		return nil, storeFailure("because you played: seed lookup", err)
	}

	// One query fetches the whole catalog with play counts, ordered by
	// popularity, which doubles as the fallback result.
	byPopularity, err := e.store.SongsByPopularity(ctx, []int64{songID}, 0)
	if err != nil {
		return nil, storeFailure("because you played: catalog", err)
	}

	candidates := make([]models.ScoredSong, 0, len(byPopularity))
	for _, candidate := range byPopularity {
		score := e.similarityBase(seed, &candidate.Song) + float64(candidate.PlayCount)
		if score <= 0 {
			continue
		}
		candidates = append(candidates, models.ScoredSong{
			Song:      candidate.Song,
			Score:     score,
			PlayCount: candidate.PlayCount,
		})
	}

	if len(candidates) == 0 {
		e.logger.Debug().
			Int64("seed_id", songID).
			Msg("No similarity matches, using popularity fallback")
		metrics.RecordEngineFallback("similar")
		if len(byPopularity) > limit {
			byPopularity = byPopularity[:limit]
		}
		return byPopularity, nil
	}

	sortByScoreThenID(candidates)
	if len(candidates) > limit {
		candidates = candidates[:limit]
	}
	return candidates, nil
}

// similarityBase computes the artist/album match component of the
// similarity score. Album matches require both sides to carry album
// metadata; two songs with empty albums do not match.
func (e *Engine) similarityBase(seed, candidate *models.Song) float64 {
	artistMatch := candidate.Artist == seed.Artist
	albumMatch := seed.HasAlbum() && candidate.HasAlbum() && candidate.Album == seed.Album

	switch {
	case artistMatch && albumMatch:
		return e.config.SimilarBothBase
	case artistMatch:
		return e.config.SimilarArtistBase
	case albumMatch:
		return e.config.SimilarAlbumBase
	default:
		return 0
	}
}
