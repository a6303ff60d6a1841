// Package httpapi exposes the service over HTTP: a chi router with a
// public group (signup, login, renew, health) and a guarded group behind
// the access-token middleware.
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/DeepaPrasanna/social-media/internal/logging"
	"github.com/DeepaPrasanna/social-media/internal/server/services"
)

type Server struct {
	address string
	logger  logging.Logger
	auth    *services.AuthService
	users   *services.UserService
	posts   *services.PostService
}

func NewServer(address string, l logging.Logger, as *services.AuthService, us *services.UserService, ps *services.PostService) *Server {
	return &Server{
		address: address,
		logger:  l.With("module", "http_server"),
		auth:    as,
		users:   us,
		posts:   ps,
	}
}

// Router builds the route tree. Split out from Run so tests can mount it
// on httptest.NewServer.
func (s *Server) Router() *chi.Mux {
	r := chi.NewRouter()

	r.Group(func(r chi.Router) {
		r.Get("/health", s.health)
		r.Post("/auth/signup", s.signup)
		r.Post("/auth/login", s.login)
		r.Post("/auth/renew", s.renew)
	})

	r.Group(func(r chi.Router) {
		r.Use(s.guard)

		r.Post("/auth/logout", s.logout)

		r.Route("/users", func(r chi.Router) {
			r.Get("/{id}", s.getUser)
			r.Patch("/{id}", s.updateUser)
			r.Delete("/{id}", s.deleteUser)
			r.Patch("/{id}/reset-password", s.resetPassword)
			r.Post("/me/profile-picture", s.uploadProfilePicture)
		})

		r.Route("/posts", func(r chi.Router) {
			r.Post("/", s.createPost)
			r.Get("/", s.feed)
			r.Get("/search", s.searchPosts)
			r.Get("/{id}", s.getPost)
			r.Patch("/{id}", s.updatePost)
			r.Delete("/{id}", s.deletePost)
			r.Post("/{id}/share", s.sharePost)
		})
	})

	return r
}

// Run serves until the context is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:    s.address,
		Handler: s.Router(),
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(ctx, "HTTP server shutdown failed", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address)

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}

	return nil
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}
