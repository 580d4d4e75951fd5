package dto

import (
	"time"

	"github.com/stemcomputerscienceclub/STEMuiz/internal/models"
)

type CreateSessionRequest struct {
	QuizID string `json:"quiz_id" binding:"required"`
}

type SessionResponse struct {
	ID        string     `json:"id"`
	QuizID    string     `json:"quiz_id"`
	HostID    string     `json:"host_id"`
	PIN       string     `json:"pin"`
	Status    string     `json:"status"`
	CreatedAt time.Time  `json:"created_at"`
	StartedAt *time.Time `json:"started_at,omitempty"`
	EndedAt   *time.Time `json:"ended_at,omitempty"`
}

// PINLookupResponse is what a player needs to connect; it hides the host.
type PINLookupResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

func NewSessionResponse(s *models.GameSession) SessionResponse {
	resp := SessionResponse{
		ID:        s.ID,
		QuizID:    s.QuizID,
		HostID:    s.HostID,
		PIN:       s.PIN,
		Status:    s.Status,
		CreatedAt: s.CreatedAt,
	}
	if s.StartedAt.Valid {
		resp.StartedAt = &s.StartedAt.Time
	}
	if s.EndedAt.Valid {
		resp.EndedAt = &s.EndedAt.Time
	}
	return resp
}
