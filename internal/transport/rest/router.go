package rest

import (
	"net/http"
	"os"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"gameplatform/internal/broadcast"
	"gameplatform/internal/cache"
	"gameplatform/internal/session"
	"gameplatform/internal/transport/rest/handler"
	"gameplatform/internal/transport/sse"
	"gameplatform/internal/transport/ws"
)

// Container holds all dependencies for the router
type Container struct {
	Manager        *session.Manager
	Hub            *broadcast.Hub
	Leaderboard    cache.LeaderboardCache
	AllowedOrigins string
}

// NewRouter creates the API router with all endpoints
func NewRouter(c *Container) http.Handler {
	r := mux.NewRouter()

	sessionHandler := handler.NewSessionHandler(c.Manager)
	leaderboardHandler := handler.NewLeaderboardHandler(c.Leaderboard)
	wsHandler := ws.NewHandler(c.Manager, c.Hub)
	sseHandler := sse.NewHandler(c.Manager, c.Hub)

	// CORS middleware (apply first)
	r.Use(corsMiddleware(c.AllowedOrigins))

	// Health check
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	r.Handle("/metrics", promhttp.Handler()).Methods("GET")

	// API v1 routes
	v1 := r.PathPrefix("/v1").Subrouter()

	v1.HandleFunc("/sessions", sessionHandler.Create).Methods("POST", "OPTIONS")
	v1.HandleFunc("/sessions/{code}", sessionHandler.Get).Methods("GET", "OPTIONS")
	v1.HandleFunc("/sessions/{code}/join", sessionHandler.Join).Methods("POST", "OPTIONS")
	v1.HandleFunc("/sessions/{code}/move", sessionHandler.Move).Methods("POST", "OPTIONS")
	v1.HandleFunc("/sessions/{code}/roll", sessionHandler.Roll).Methods("POST", "OPTIONS")
	v1.HandleFunc("/sessions/{code}/choice", sessionHandler.Choice).Methods("POST", "OPTIONS")
	v1.HandleFunc("/sessions/{code}/leave", sessionHandler.Leave).Methods("POST", "OPTIONS")

	v1.HandleFunc("/leaderboard/{gameType}", leaderboardHandler.Top).Methods("GET", "OPTIONS")

	// WebSocket route (session commands and live updates)
	v1.HandleFunc("/ws", wsHandler.Serve).Methods("GET")

	// Server-sent events fallback for spectators without WebSocket support
	v1.HandleFunc("/sse/sessions/{code}", sseHandler.Stream).Methods("GET")

	return r
}

func corsMiddleware(allowedOrigins string) mux.MiddlewareFunc {
	if allowedOrigins == "" {
		allowedOrigins = "*"
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			allowedMethods := os.Getenv("CORS_ALLOWED_METHODS")
			if allowedMethods == "" {
				allowedMethods = "GET, POST, OPTIONS"
			}

			allowedHeaders := os.Getenv("CORS_ALLOWED_HEADERS")
			if allowedHeaders == "" {
				allowedHeaders = "Content-Type, Authorization"
			}

			w.Header().Set("Access-Control-Allow-Origin", allowedOrigins)
			w.Header().Set("Access-Control-Allow-Methods", allowedMethods)
			w.Header().Set("Access-Control-Allow-Headers", allowedHeaders)

			if r.Method == "OPTIONS" {
				w.WriteHeader(http.StatusOK)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
