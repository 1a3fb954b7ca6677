package ws

import (
	"context"
	"net/http"

	"go.uber.org/zap"
	"nhooyr.io/websocket"

	authsvc "github.com/Princeaman007/agence/internal/services/auth"
)

// TokenValidator checks an access token and its backing session.
type TokenValidator interface {
	ValidateAccessToken(ctx context.Context, accessToken string) (authsvc.AccessClaims, error)
}

// ServeWS upgrades to WebSocket. Auth is done via ?token=xxx query param
// because browsers cannot set headers on WebSocket handshakes.
func ServeWS(hub *Hub, tokens TokenValidator, log *zap.Logger) http.HandlerFunc {
	if log == nil {
		log = zap.NewNop()
	}
	return func(w http.ResponseWriter, r *http.Request) {
		tokenStr := r.URL.Query().Get("token")
		if tokenStr == "" {
			http.Error(w, "missing token", http.StatusUnauthorized)
			return
		}

		claims, err := tokens.ValidateAccessToken(r.Context(), tokenStr)
		if err != nil {
			http.Error(w, "invalid token", http.StatusUnauthorized)
			return
		}

		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			InsecureSkipVerify: true,
		})
		if err != nil {
			log.Warn("ws: accept failed", zap.Error(err))
			return
		}

		client := NewClient(hub, conn, claims.UserID)

		// Pumps outlive the HTTP handler; the request context dies with it.
		ctx := context.WithoutCancel(r.Context())
		hub.Register(ctx, client)
		go client.WritePump(ctx)
		go client.ReadPump(ctx)
	}
}
