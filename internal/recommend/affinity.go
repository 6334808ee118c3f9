// Harmonium - Music Library Analytics and Recommendations
// Copyright 2026 Harmonium Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/harmonium-app/harmonium

package recommend

import (
	"context"
	"math"
)

// AnalyzePatterns builds the recency-weighted affinity maps from the most
// recent play events, newest first, bounded by the configured history
// window.
//
// Each event contributes decayFactor^daysAgo to its artist, to its album
// (only when album metadata exists), and to its song id. An event played
// today contributes 1.0; each elapsed day multiplies the contribution by
// the decay factor. Zero play events yield three empty maps, which is the
// designated sparse-history signal rather than an error.
func (e *Engine) AnalyzePatterns(ctx context.Context) (*AffinityMap, error) {
	history, err := e.store.RecentHistory(ctx, e.config.HistoryWindow)
	if err != nil {
		return nil, storeFailure("analyze patterns: recent history", err)
	}

	m := &AffinityMap{
		Artists: make(map[string]float64),
		Albums:  make(map[string]float64),
		Songs:   make(map[int64]float64),
	}

	for _, entry := range history {
		weight := math.Pow(e.config.DecayFactor, float64(e.daysAgo(entry.PlayedAt)))
		if math.IsNaN(weight) || math.IsInf(weight, 0) {
			// Degrade to zero contribution rather than propagate NaN.
			continue
		}

		m.Artists[entry.Artist] += weight
		if entry.Album != "" {
			m.Albums[entry.Album] += weight
		}
		m.Songs[entry.SongID] += weight
	}

	e.logger.Debug().
		Int("events", len(history)).
		Int("artists", len(m.Artists)).
		Int("albums", len(m.Albums)).
		Msg("Listening patterns analyzed")

	return m, nil
}
