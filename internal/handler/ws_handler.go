/*
Package handler provides the HTTP handlers and routing setup for the server.

This file contains the WebSocket upgrade handler: rate limiting, session
validation, the protocol upgrade, and handing the connection to the Hub.
*/
package handler

import (
	"net/http"

	"github.com/gorilla/websocket"

	"mchat/internal/pkg/auth/jwt"
	"mchat/internal/pkg/errs"
	"mchat/internal/pkg/limiter"
	"mchat/internal/pkg/logx"
	"mchat/internal/pkg/resp"
)

// HandleWebSocket processes WebSocket connection requests. The session is
// validated before the upgrade; the hub itself never sees unauthenticated
// transports. Identity binding still happens through the setup event, so
// the fanout core stays independent of the auth mechanism.
func HandleWebSocket(upgrader websocket.Upgrader, rateLimiter *limiter.IPRateLimiter, deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ip := limiter.ClientIP(r)

		if !rateLimiter.GetLimiter(ip).Allow() {
			logx.Warn("WebSocket connection rejected: Rate limit exceeded.", "ip", ip)
			resp.RespondError(w, r, errs.NewError(errs.ErrRateLimitExceeded))
			return
		}

		tokenString := jwt.TokenFromRequest(r)
		if tokenString == "" {
			resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
			return
		}

		session, err := jwt.ParseToken(tokenString, deps.Config.JWTSecret)
		if err != nil {
			logx.Warn("WebSocket connection rejected: Invalid session token", "error", err)
			resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logx.Error(err, "Failed to upgrade connection to WebSocket")
			return
		}

		client := deps.Hub.Admit(conn)

		logx.Info("WebSocket connection established",
			"conn_id", client.ID,
			"session_user", session.ID,
		)

		go client.WritePump()
		client.ReadPump()
	}
}
