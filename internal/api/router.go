// Harmonium - Music Library Analytics and Recommendations
// Copyright 2026 Harmonium Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/harmonium-app/harmonium

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/harmonium-app/harmonium/internal/middleware"
)

// Router wires handlers and middleware into the chi mux.
type Router struct {
	handler *Handler
	chiMW   *ChiMiddleware
}

// NewRouter creates a Router.
func NewRouter(handler *Handler, mwConfig *ChiMiddlewareConfig) *Router {
	return &Router{
		handler: handler,
		chiMW:   NewChiMiddleware(mwConfig),
	}
}

// Setup builds the full route tree.
func (router *Router) Setup() http.Handler {
	r := chi.NewRouter()

	// Global middleware, applied to every route in order.
	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(router.chiMW.CORS())

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(router.chiMW.RateLimit())
		r.Use(middleware.PrometheusMetrics)

		r.Get("/health", router.handler.Health)

		r.Route("/recommendations", func(r chi.Router) {
			r.Get("/", router.handler.Recommendations)
			r.Get("/because/{songID}", router.handler.BecauseYouPlayed)
		})

		r.Post("/shuffle/smart", router.handler.SmartShuffle)

		r.Route("/playlists", func(r chi.Router) {
			r.Get("/", router.handler.ListPlaylists)
			r.Post("/", router.handler.CreatePlaylist)

			// Static /auto takes precedence over {playlistID}.
			r.Route("/auto", func(r chi.Router) {
				r.Get("/top", router.handler.TopPlaylist)
				r.Get("/recent", router.handler.RecentPlaylist)
			})

			r.Route("/{playlistID}/songs", func(r chi.Router) {
				r.Get("/", router.handler.ListPlaylistSongs)
				r.Post("/", router.handler.AddPlaylistSong)
			})
		})

		r.Route("/songs", func(r chi.Router) {
			r.Get("/", router.handler.ListSongs)
			r.Post("/", router.handler.CreateSong)
			r.Get("/{songID}", router.handler.GetSong)
			r.Delete("/{songID}", router.handler.DeleteSong)
		})

		r.Route("/history", func(r chi.Router) {
			r.Get("/", router.handler.ListHistory)
			r.Post("/", router.handler.RecordPlay)
			r.Get("/stats", router.handler.ListeningStats)
		})
	})

	return r
}
