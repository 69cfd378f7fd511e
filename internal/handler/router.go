/*
Package handler provides the HTTP handlers and routing setup for the server.

This file defines the main Router, applying middleware like logging, CORS,
and IP-based rate limiting before delegating to the REST and WebSocket handlers.
*/
package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/rs/cors"
	"golang.org/x/time/rate"

	"mchat/internal/pkg/auth/jwt"
	"mchat/internal/pkg/limiter"
	"mchat/internal/pkg/logx"
	"mchat/internal/pkg/resp"
)

const (
	AuthRate  = 0.2
	AuthBurst = 5
	WSRate    = 0.5
	WSBurst   = 5
)

// Router sets up the chi routing table: CORS, request logging, per-route
// rate limiting, the authenticated REST API, and the WebSocket endpoint.
func Router(deps *AppDeps) http.Handler {
	authLimiter := limiter.NewIPRateLimiter(rate.Limit(AuthRate), AuthBurst)
	wsLimiter := limiter.NewIPRateLimiter(rate.Limit(WSRate), WSBurst)

	r := chi.NewRouter()

	allowedOrigins := make(map[string]struct{})
	for _, origin := range deps.Config.AllowedOrigins {
		allowedOrigins[origin] = struct{}{}
	}

	var wsUpgrader = websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
		CheckOrigin: func(r *http.Request) bool {
			if deps.Config.Environment == "development" {
				return true
			}

			origin := r.Header.Get("Origin")
			if _, ok := allowedOrigins[origin]; ok {
				return true
			}

			logx.Warn("WebSocket connection rejected: Origin not allowed.", "origin", origin)
			return false
		},
	}

	corsAllowedOrigins := []string{}
	if deps.Config.Environment == "development" {
		corsAllowedOrigins = []string{"*"}
	} else if len(deps.Config.AllowedOrigins) > 0 {
		corsAllowedOrigins = deps.Config.AllowedOrigins
	}

	c := cors.New(cors.Options{
		AllowedOrigins:   corsAllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	})
	r.Use(c.Handler)

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logx.RequestLogger())
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		data := map[string]string{
			"status":  "ok",
			"service": "mchat-server",
		}
		resp.RespondSuccess(w, r, data)
	})

	r.Route("/api", func(api chi.Router) {
		api.Group(func(public chi.Router) {
			public.Use(authLimiter.Middleware)
			public.Post("/user", HandleRegister(deps))
			public.Post("/user/login", HandleLogin(deps))
		})

		api.Group(func(private chi.Router) {
			private.Use(jwt.RequireAuth(deps.Config.JWTSecret))

			private.Get("/user", HandleSearchUsers(deps))
			private.Post("/user/avatar/presign", HandlePresignAvatar(deps))
			private.Post("/user/avatar", HandleUploadAvatar(deps))
			private.Get("/user/avatar", HandlePresignAvatarDownload(deps))
			private.Delete("/user/avatar", HandleDeleteAvatar(deps))

			private.Post("/chat", HandleAccessChat(deps))
			private.Get("/chat", HandleListChats(deps))
			private.Post("/chat/group", HandleCreateGroup(deps))
			private.Put("/chat/group/rename", HandleRenameGroup(deps))
			private.Put("/chat/group/add", HandleAddToGroup(deps))
			private.Put("/chat/group/remove", HandleRemoveFromGroup(deps))

			private.Post("/message", HandleSendMessage(deps))
			private.Get("/message/{chatID}", HandleListMessages(deps))
		})
	})

	r.Get("/ws", HandleWebSocket(wsUpgrader, wsLimiter, deps))

	return r
}
