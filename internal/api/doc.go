// Harmonium - Music Library Analytics and Recommendations
// Copyright 2026 Harmonium Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/harmonium-app/harmonium

// Package api provides the HTTP surface using the chi router.
//
// All responses share the models.APIResponse envelope. Handlers depend
// on narrow interfaces (RecommendationEngine, Library, EventPublisher)
// so tests can substitute in-memory fakes.
package api
