// Harmonium - Music Library Analytics and Recommendations
// Copyright 2026 Harmonium Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/harmonium-app/harmonium

// Package middleware provides HTTP middleware for request tracing and
// Prometheus instrumentation. Cross-cutting concerns like CORS and rate
// limiting come from the chi ecosystem and are wired in the API router.
package middleware
