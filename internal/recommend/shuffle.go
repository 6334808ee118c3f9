// Harmonium - Music Library Analytics and Recommendations
// Copyright 2026 Harmonium Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/harmonium-app/harmonium

package recommend

import (
	"context"
	"errors"
	"sort"

	"github.com/harmonium-app/harmonium/internal/models"
)

// WeightedQueueEntry is one shuffle queue position with its computed
// weight. Exported for observability; SmartShuffle callers normally only
// need the reordered ids.
type WeightedQueueEntry struct {
	SongID int64
	Weight float64
}

// SmartShuffle reorders a caller-supplied queue of song ids by weighted
// priority rather than uniformly at random.
//
// Per queue entry the weight starts at a base, gains up to a capped bonus
// for total play count, gains a capped boost when the song's artist was
// played recently, loses a penalty when the song itself is among the most
// recently played, and finally takes bounded jitter. Weights are floored
// at 1 so nothing is starved.
//
// The output is always a permutation of the input: same ids, same
// multiplicity, same length. Ids that do not resolve to catalog songs are
// kept and weighted from the base alone. An empty queue returns an empty
// queue without touching the store.
func (e *Engine) SmartShuffle(ctx context.Context, queue []int64) ([]int64, error) {
	if len(queue) == 0 {
		return []int64{}, nil
	}
	for _, id := range queue {
		if id <= 0 {
			return nil, invalidInput("queue contains non-positive song id %d", id)
		}
	}

	distinct := distinctIDs(queue)

	songs, playCounts, err := e.lookupQueueSongs(ctx, distinct)
	if err != nil {
		return nil, err
	}

	artistPlays, err := e.store.RecentArtistPlayCounts(ctx, e.config.ShuffleArtistWindowDays)
	if err != nil {
		return nil, storeFailure("smart shuffle: recent artist plays", err)
	}

	recentIDs, err := e.store.RecentDistinctSongIDs(ctx, e.config.RecentExcludeCount)
	if err != nil {
		return nil, storeFailure("smart shuffle: recent song ids", err)
	}
	recentSet := make(map[int64]struct{}, len(recentIDs))
	for _, id := range recentIDs {
		recentSet[id] = struct{}{}
	}

	entries := make([]WeightedQueueEntry, len(queue))
	for i, id := range queue {
		entries[i] = WeightedQueueEntry{
			SongID: id,
			Weight: e.queueWeight(id, songs[id], playCounts[id], artistPlays, recentSet),
		}
	}

	// Stable sort keeps equal-weight entries in their original queue order.
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Weight > entries[j].Weight
	})

	out := make([]int64, len(entries))
	for i, entry := range entries {
		out[i] = entry.SongID
	}
	return out, nil
}

// queueWeight computes the shuffle weight for one queue entry. song is nil
// for ids that do not resolve to the catalog; those keep base weight and
// jitter only.
func (e *Engine) queueWeight(id int64, song *models.Song, playCount int64, artistPlays map[string]int64, recentSet map[int64]struct{}) float64 {
	cfg := &e.config
	weight := cfg.ShuffleBaseWeight

	if playCount > cfg.ShufflePlayCountCap {
		playCount = cfg.ShufflePlayCountCap
	}
	weight += float64(playCount)

	if song != nil {
		boost := cfg.ShuffleArtistBoost * float64(artistPlays[song.Artist])
		if boost > cfg.ShuffleArtistBoostCap {
			boost = cfg.ShuffleArtistBoostCap
		}
		weight += boost
	}

	if _, recent := recentSet[id]; recent {
		weight -= cfg.ShuffleRecentPenalty
	}

	weight += e.jitter()

	if weight < 1 {
		weight = 1
	}
	return weight
}

// lookupQueueSongs resolves the distinct queue ids to songs and play
// counts. Unknown ids are recorded with a nil song and zero count rather
// than failing the shuffle.
func (e *Engine) lookupQueueSongs(ctx context.Context, ids []int64) (map[int64]*models.Song, map[int64]int64, error) {
	songs := make(map[int64]*models.Song, len(ids))
	counts := make(map[int64]int64, len(ids))

	for _, id := range ids {
		song, err := e.store.GetSongByID(ctx, id)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				songs[id] = nil
				continue
			}
			return nil, nil, storeFailure("smart shuffle: song lookup", err)
		}
		songs[id] = song

		count, err := e.store.TotalPlayCount(ctx, id)
		if err != nil {
			return nil, nil, storeFailure("smart shuffle: play count", err)
		}
		counts[id] = count
	}
	return songs, counts, nil
}

// distinctIDs returns the unique ids in queue, preserving first-seen order.
func distinctIDs(queue []int64) []int64 {
	seen := make(map[int64]struct{}, len(queue))
	out := make([]int64, 0, len(queue))
	for _, id := range queue {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
