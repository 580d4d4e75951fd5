package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/stemcomputerscienceclub/STEMuiz/internal/dto"
	"github.com/stemcomputerscienceclub/STEMuiz/internal/middleware"
	"github.com/stemcomputerscienceclub/STEMuiz/internal/models"
	"github.com/stemcomputerscienceclub/STEMuiz/internal/repository"
)

type SessionRepository interface {
	CreateSession(ctx context.Context, quizID, hostID string) (*models.GameSession, error)
	GetSession(ctx context.Context, id string) (*models.GameSession, error)
	GetSessionByPIN(ctx context.Context, pin string) (*models.GameSession, error)
}

type SessionHandler struct {
	repo   SessionRepository
	logger *zap.Logger
}

func NewSessionHandler(repo SessionRepository, logger *zap.Logger) *SessionHandler {
	return &SessionHandler{repo: repo, logger: logger}
}

func (h *SessionHandler) CreateSession(c *gin.Context) {
	var req dto.CreateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.JSONError(c, http.StatusBadRequest, "quiz_id is required")
		return
	}

	hostID := c.GetString(middleware.ContextUserID)
	session, err := h.repo.CreateSession(c.Request.Context(), req.QuizID, hostID)
	if err != nil {
		h.logger.Error("failed to create session", zap.String("quiz_id", req.QuizID), zap.Error(err))
		dto.JSONError(c, http.StatusInternalServerError, "Failed to create session")
		return
	}

	h.logger.Info("session created",
		zap.String("session_id", session.ID),
		zap.String("quiz_id", session.QuizID),
		zap.String("host_id", hostID),
	)
	c.JSON(http.StatusCreated, dto.NewSessionResponse(session))
}

func (h *SessionHandler) GetSession(c *gin.Context) {
	session, err := h.repo.GetSession(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeLookupError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewSessionResponse(session))
}

func (h *SessionHandler) GetSessionByPIN(c *gin.Context) {
	pin := c.Param("pin")
	if len(pin) != 6 {
		dto.JSONError(c, http.StatusBadRequest, "PIN must be 6 digits")
		return
	}

	session, err := h.repo.GetSessionByPIN(c.Request.Context(), pin)
	if err != nil {
		h.writeLookupError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.PINLookupResponse{ID: session.ID, Status: session.Status})
}

func (h *SessionHandler) writeLookupError(c *gin.Context, err error) {
	if errors.Is(err, repository.ErrSessionNotFound) {
		dto.JSONError(c, http.StatusNotFound, "Session not found")
		return
	}
	h.logger.Error("failed to load session", zap.Error(err))
	dto.JSONError(c, http.StatusInternalServerError, "Failed to load session")
}
