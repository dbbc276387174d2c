// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package router sets up all HTTP routes and middleware chains for the
// poster shop. It organizes routes into public, seller, admin and rpc groups
// with appropriate middleware stacks.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"postershop/internal/auth"
	"postershop/internal/handlers"
	"postershop/internal/middleware"
)

// Deps are the handler groups and middleware the router wires together.
type Deps struct {
	Verifier    *auth.Verifier
	Public      *handlers.Public
	Seller      *handlers.Seller
	Admin       *handlers.Admin
	RPC         *handlers.RPC
	RPCLimiter  *middleware.RateLimiter // optional
	CORSOrigins []string
}

// New creates and returns the configured Chi router with all middleware
// and route groups wired up.
func New(d Deps) chi.Router {
	r := chi.NewRouter()

	// Global middleware, applied to every request.
	r.Use(chimw.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(middleware.SecureHeaders)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: d.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Authorization", "Content-Type", "X-Request-Id"},
		ExposedHeaders: []string{"Retry-After"},
		MaxAge:         300,
	}))
	r.Use(middleware.Authenticate(d.Verifier))

	r.Get("/health", healthHandler)

	r.Route("/api", func(r chi.Router) {
		// Storefront, no authentication.
		r.Get("/posters", d.Public.ListPosters)
		r.Get("/posters/{id}", d.Public.GetPoster)
		r.Get("/categories", d.Public.ListCategories)
		r.Get("/categories/{key}", d.Public.GetCategory)
		r.Get("/collections", d.Public.ListCollections)
		r.Get("/collections/{key}", d.Public.GetCollection)
		r.Get("/tags", d.Public.ListTags)

		// Any signed-in caller.
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireCaller)
			r.Post("/uploads", d.Seller.Upload)
			r.Route("/seller", func(r chi.Router) {
				r.Get("/posters", d.Seller.MyPosters)
				r.Post("/posters/{id}/submit", d.Seller.Resubmit)
				r.Get("/orders", d.Seller.MyOrders)
			})
		})

		// Back office, admin role only.
		r.Route("/admin", func(r chi.Router) {
			r.Use(middleware.RequireAdmin)

			r.Route("/posters", func(r chi.Router) {
				r.Get("/", d.Admin.ListPosters)
				r.Post("/", d.Admin.CreatePoster)
				r.Get("/{id}", d.Admin.GetPoster)
				r.Put("/{id}", d.Admin.UpdatePoster)
				r.Delete("/{id}", d.Admin.DeletePoster)
				r.Post("/{id}/{action}", d.Admin.SetPosterStatus)
			})

			r.Route("/orders", func(r chi.Router) {
				r.Get("/", d.Admin.ListOrders)
				r.Post("/", d.Admin.CreateOrder)
				r.Put("/{id}/status", d.Admin.SetOrderStatus)
			})

			r.Post("/reconcile", d.Admin.Reconcile)
		})
	})

	// Callable functions. Authentication is checked by the gate so failures
	// use the callable error envelope.
	r.Route("/rpc", func(r chi.Router) {
		if d.RPCLimiter != nil {
			r.Use(d.RPCLimiter.Middleware)
		}
		r.Post("/submitPoster", d.RPC.SubmitPoster)
		r.Post("/reviewPosterStatus", d.RPC.ReviewPosterStatus)
	})

	return r
}

// healthHandler returns a simple JSON health check response.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}
