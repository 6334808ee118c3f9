// Harmonium - Music Library Analytics and Recommendations
// Copyright 2026 Harmonium Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/harmonium-app/harmonium

// Package recommend implements Harmonium's rule-based recommendation engine.
//
// The engine combines recency-weighted listening-pattern analysis with
// similarity and popularity scoring. No machine learning is involved; every
// score is the result of a documented arithmetic rule, which keeps the
// output explainable and the tests exact.
//
// Five operations are exposed:
//
//   - PersonalizedRecommendations: affinity-scored catalog candidates,
//     excluding recently played songs, with a popularity fallback when the
//     listener has no history.
//   - BecauseYouPlayed: "because you played X" similarity scoring against a
//     seed song (artist/album match plus popularity).
//   - SmartShuffle: reorders a caller-supplied queue by play count, recent
//     artist activity, a recent-repeat penalty, and bounded jitter.
//   - TopPlaylist / RecentPlaylist: virtual playlists aggregated from play
//     history, recomputed per request and never persisted.
//
// All operations are stateless reads over a Store; concurrent requests need
// no coordination. The only mutable state is the jitter source, which is
// seedable and mutex-guarded so tests can pin orderings.
package recommend
