package httpserver

import (
	"net/http"

	"github.com/gorilla/mux"

	"nmsportal/backend/services/portal-service/internal/http/handlers"
)

// RouterDeps collects handler dependencies.
type RouterDeps struct {
	Login    http.HandlerFunc
	Me       http.HandlerFunc
	Health   http.HandlerFunc
	Sessions *handlers.SessionsHandlers
	Replay   http.Handler
}

// NewRouter wires HTTP routes. Everything under /api except login requires a token.
func NewRouter(deps RouterDeps, authMiddleware func(http.Handler) http.Handler) *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/health", deps.Health).Methods(http.MethodGet)
	r.HandleFunc("/api/auth/login", deps.Login).Methods(http.MethodPost)
	r.Handle("/api/auth/me", authMiddleware(deps.Me)).Methods(http.MethodGet)

	api := r.PathPrefix("/api/sessions").Subrouter()
	api.Use(mux.MiddlewareFunc(authMiddleware))

	api.HandleFunc("", deps.Sessions.List).Methods(http.MethodGet)
	api.HandleFunc("/rederive", deps.Sessions.Rederive).Methods(http.MethodPost)
	api.HandleFunc("/{name}/summary", deps.Sessions.Summary).Methods(http.MethodGet)
	api.HandleFunc("/{name}/table", deps.Sessions.Table).Methods(http.MethodGet)
	api.HandleFunc("/{name}/track", deps.Sessions.Track).Methods(http.MethodGet)
	api.HandleFunc("/{name}/history", deps.Sessions.History).Methods(http.MethodGet)
	if deps.Replay != nil {
		api.Handle("/{name}/replay", deps.Replay).Methods(http.MethodGet)
	}

	return r
}
