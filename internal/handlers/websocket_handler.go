package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/stemcomputerscienceclub/STEMuiz/internal/auth"
	"github.com/stemcomputerscienceclub/STEMuiz/internal/constants"
	"github.com/stemcomputerscienceclub/STEMuiz/internal/game"
	"github.com/stemcomputerscienceclub/STEMuiz/internal/middleware"
	"github.com/stemcomputerscienceclub/STEMuiz/internal/models"
	"github.com/stemcomputerscienceclub/STEMuiz/internal/repository"
	ws "github.com/stemcomputerscienceclub/STEMuiz/internal/websocket"
)

// SessionLookup finds the persisted record of a session.
type SessionLookup interface {
	GetSession(ctx context.Context, id string) (*models.GameSession, error)
}

type WebSocketHandler struct {
	hub      *ws.Hub
	upgrader websocket.Upgrader
	verifier *auth.Verifier
	sessions SessionLookup
	logger   *zap.Logger
}

func NewWebSocketHandler(hub *ws.Hub, allowedOrigins []string, verifier *auth.Verifier, sessions SessionLookup, logger *zap.Logger) *WebSocketHandler {
	return &WebSocketHandler{
		hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(allowedOrigins),
		},
		verifier: verifier,
		sessions: sessions,
		logger:   logger,
	}
}

func originChecker(allowed []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		return slices.Contains(allowed, "*") || slices.Contains(allowed, origin)
	}
}

// HandleWebSocket upgrades the connection first so that a rejected client
// still gets an error event before the socket closes.
func (h *WebSocketHandler) HandleWebSocket(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("failed to upgrade connection", zap.Error(err))
		return
	}

	sessionID := c.Query("sessionId")
	role := c.Query("role")
	name := c.Query("name")

	userID, err := h.admit(c, sessionID, role, name)
	if err != nil {
		h.logger.Info("connection rejected",
			zap.String("session_id", sessionID),
			zap.String("role", role),
			zap.Error(err),
		)
		reject(conn, err)
		return
	}

	client := ws.NewClient(h.hub, conn, sessionID, role, name, userID)

	select {
	case h.hub.Register <- client:
	case <-h.hub.Done():
		reject(conn, errors.New("server is shutting down"))
		return
	}

	go client.WritePump()
	go client.ReadPump()
}

// admit validates the connection parameters and returns the host's user ID.
func (h *WebSocketHandler) admit(c *gin.Context, sessionID, role, name string) (string, error) {
	if sessionID == "" {
		return "", game.ErrMissingSessionID
	}

	switch role {
	case constants.RolePlayer:
		if name == "" {
			return "", game.ErrMissingName
		}
		return "", nil
	case constants.RoleHost:
	default:
		return "", game.ErrInvalidRole
	}

	if !h.verifier.Enabled() {
		return "", nil
	}

	token := c.Query("token")
	if token == "" {
		token, _ = middleware.BearerToken(c.GetHeader("Authorization"))
	}
	claims, err := h.verifier.Verify(token)
	if err != nil {
		return "", fmt.Errorf("%w: %v", game.ErrUnauthorized, err)
	}
	userID := claims.Identity()

	if h.sessions == nil {
		return userID, nil
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	session, err := h.sessions.GetSession(ctx, sessionID)
	switch {
	case errors.Is(err, repository.ErrSessionNotFound):
		// Ad hoc sessions have no persisted owner.
		return userID, nil
	case err != nil:
		return "", fmt.Errorf("failed to load session: %w", err)
	case session.HostID != userID:
		return "", game.ErrUnauthorized
	}
	return userID, nil
}

func reject(conn *websocket.Conn, err error) {
	defer conn.Close()

	conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
	if werr := conn.WriteJSON(ws.Message{
		Type:    ws.MessageTypeError,
		Payload: ws.ErrorPayload{Message: err.Error()},
	}); werr != nil {
		return
	}
	conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.ClosePolicyViolation, ""))
}
