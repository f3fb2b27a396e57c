// BetaBuddy - Beta Testing Marketplace
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/betabuddy

package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/betabuddy/internal/auth"
	"github.com/tomtom215/betabuddy/internal/authz"
	"github.com/tomtom215/betabuddy/internal/middleware"
	"github.com/tomtom215/betabuddy/internal/upload"
)

// RouterOptions tunes the middleware chain.
type RouterOptions struct {
	// RequestTimeout cancels API request contexts; zero disables it.
	RequestTimeout time.Duration

	// SlowRequest is the access log threshold for slow-request warnings.
	SlowRequest time.Duration
}

// Router assembles handlers and middleware into a chi mux.
type Router struct {
	handler       *Handler
	sessions      *auth.SessionManager
	authz         *authz.Middleware
	chiMiddleware *ChiMiddleware
	uploadDir     string
	opts          RouterOptions
}

// NewRouter creates a Router. uploads supplies the directory served at
// /uploads/.
func NewRouter(handler *Handler, sessions *auth.SessionManager, authzMw *authz.Middleware, chiMw *ChiMiddleware, uploads *upload.Store, opts RouterOptions) *Router {
	if chiMw == nil {
		chiMw = NewChiMiddleware(nil)
	}
	if opts.SlowRequest <= 0 {
		opts.SlowRequest = time.Second
	}
	return &Router{
		handler:       handler,
		sessions:      sessions,
		authz:         authzMw,
		chiMiddleware: chiMw,
		uploadDir:     uploads.Dir(),
		opts:          opts,
	}
}

// SetupChi builds the HTTP handler.
func (router *Router) SetupChi() http.Handler {
	h := router.handler
	can := router.authz.Require

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.AccessLog(router.opts.SlowRequest))
	r.Use(middleware.PrometheusMetrics)
	r.Use(chimiddleware.Recoverer)
	r.Use(router.chiMiddleware.CORS()) // global so OPTIONS preflight is answered

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, http.StatusNotFound, ErrCodeNotFound, "Not found", nil)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, http.StatusMethodNotAllowed, ErrCodeMethodNotAllowed, "Method not allowed", nil)
	})

	r.Handle("/metrics", promhttp.Handler())
	r.Handle(upload.URLPrefix+"*", router.uploadsHandler())

	r.Route("/api", func(r chi.Router) {
		r.Use(APISecurityHeaders())
		r.Use(chimiddleware.Compress(5, "application/json"))

		r.Route("/health", func(r chi.Router) {
			r.Get("/", h.Health)
			r.Get("/live", h.HealthLive)
			r.Get("/ready", h.HealthReady)
		})

		r.Group(func(r chi.Router) {
			if router.opts.RequestTimeout > 0 {
				r.Use(chimiddleware.Timeout(router.opts.RequestTimeout))
			}
			r.Use(router.chiMiddleware.RateLimit())
			r.Use(router.sessions.Authenticate)

			authLimit := router.chiMiddleware.RateLimitAuth()
			r.With(authLimit, can(authz.ObjectSession, authz.ActionWrite)).Post("/register", h.Register)
			r.With(authLimit, can(authz.ObjectSession, authz.ActionWrite)).Post("/login", h.Login)
			r.With(can(authz.ObjectSession, authz.ActionWrite)).Post("/logout", h.Logout)

			r.With(can(authz.ObjectProfile, authz.ActionRead)).Get("/user", h.CurrentUser)
			r.With(can(authz.ObjectProfile, authz.ActionWrite)).Patch("/user", h.UpdateProfile)
			r.With(can(authz.ObjectUploads, authz.ActionWrite)).Post("/user/avatar", h.UploadAvatar)

			r.Route("/apps", func(r chi.Router) {
				r.With(can(authz.ObjectApps, authz.ActionRead)).Get("/", h.ListApps)
				r.With(can(authz.ObjectApps, authz.ActionWrite), can(authz.ObjectUploads, authz.ActionWrite)).Post("/", h.SubmitApp)
				r.With(can(authz.ObjectApps, authz.ActionRead)).Get("/{id}", h.GetApp)
				r.With(can(authz.ObjectTesting, authz.ActionWrite)).Post("/{id}/test", h.StartTesting)
				r.With(can(authz.ObjectFeedback, authz.ActionWrite)).Post("/{id}/feedback", h.SubmitFeedback)
			})

			r.With(can(authz.ObjectProfile, authz.ActionRead)).Get("/my/apps", h.MyApps)
			r.With(can(authz.ObjectTesting, authz.ActionRead)).Get("/my/testing", h.MyTesting)

			r.With(can(authz.ObjectTesters, authz.ActionRead)).Get("/testers/top", h.TopTesters)

			r.With(can(authz.ObjectUsers, authz.ActionRead)).Get("/admin/users", h.AdminUsers)
			r.With(can(authz.ObjectAudit, authz.ActionRead)).Get("/admin/audit", h.AdminAudit)
		})
	})

	return r
}

// uploadsHandler serves stored uploads read-only. Directory paths are
// answered with 404 rather than a listing.
func (router *Router) uploadsHandler() http.Handler {
	files := http.StripPrefix(upload.URLPrefix, http.FileServer(http.Dir(router.uploadDir)))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			respondError(w, http.StatusMethodNotAllowed, ErrCodeMethodNotAllowed, "Method not allowed", nil)
			return
		}
		if strings.HasSuffix(r.URL.Path, "/") {
			respondError(w, http.StatusNotFound, ErrCodeNotFound, "Not found", nil)
			return
		}
		w.Header().Set("X-Content-Type-Options", "nosniff")
		files.ServeHTTP(w, r)
	})
}
