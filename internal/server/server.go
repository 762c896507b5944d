package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/avlund/tend/internal/engine"
	"github.com/avlund/tend/internal/store"
)

// Server is the tend HTTP API server.
type Server struct {
	db      *store.DB
	engine  *engine.Engine
	router  chi.Router
	version string
	started time.Time
}

// New creates a new Server around the given engine.
func New(db *store.DB, eng *engine.Engine, version string) *Server {
	s := &Server{
		db:      db,
		engine:  eng,
		version: version,
		started: time.Now(),
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", s.handleHealth)

		r.Get("/friends", s.handleListFriends)
		r.Post("/friends", s.handleCreateFriend)
		r.Get("/friends/{friendID}", s.handleGetFriend)
		r.Patch("/friends/{friendID}", s.handleEditFriend)
		r.Delete("/friends/{friendID}", s.handleDeleteFriend)
		r.Put("/friends/{friendID}/categories", s.handleSetCategories)

		r.Post("/friends/{friendID}/interactions", s.handleLogInteraction)
		r.Get("/friends/{friendID}/interactions", s.handleListInteractions)
		r.Get("/friends/{friendID}/preview", s.handlePreview)

		r.Get("/categories", s.handleListCategories)
		r.Post("/categories", s.handleCreateCategory)
		r.Delete("/categories/{categoryID}", s.handleDeleteCategory)

		r.Post("/decay", s.handleDecay)
		r.Get("/birthdays", s.handleBirthdays)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	dbOK := true
	if err := s.db.Ping(); err != nil {
		dbOK = false
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"status":  "ok",
		"version": s.version,
		"uptime":  time.Since(s.started).Seconds(),
		"db":      dbOK,
		"db_path": s.db.Path,
	})
}
