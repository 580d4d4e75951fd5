package repository

import (
	"context"
	"crypto/rand"
	"database/sql"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"

	"github.com/stemcomputerscienceclub/STEMuiz/internal/constants"
	"github.com/stemcomputerscienceclub/STEMuiz/internal/models"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrPINExhausted    = errors.New("could not generate a unique PIN")
)

const sessionColumns = `id, quiz_id, host_id, pin, status, created_at, started_at, ended_at`

type SessionRepository struct {
	db *sql.DB
}

func NewSessionRepository(db *sql.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// CreateSession stores a new waiting session with a fresh ID and PIN.
func (r *SessionRepository) CreateSession(ctx context.Context, quizID, hostID string) (*models.GameSession, error) {
	pin, err := r.generateUniquePIN(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to generate PIN: %w", err)
	}

	session := &models.GameSession{
		ID:        uuid.NewString(),
		QuizID:    quizID,
		HostID:    hostID,
		PIN:       pin,
		Status:    constants.SessionStatusWaiting,
		CreatedAt: time.Now().UTC(),
	}

	query := `
		INSERT INTO game_sessions (id, quiz_id, host_id, pin, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err = r.db.ExecContext(ctx, query,
		session.ID,
		session.QuizID,
		session.HostID,
		session.PIN,
		session.Status,
		session.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert session: %w", err)
	}
	return session, nil
}

func (r *SessionRepository) GetSession(ctx context.Context, id string) (*models.GameSession, error) {
	query := `SELECT ` + sessionColumns + ` FROM game_sessions WHERE id = $1`
	return r.scanOne(r.db.QueryRowContext(ctx, query, id))
}

// GetSessionByPIN resolves a PIN to a session that has not finished yet.
func (r *SessionRepository) GetSessionByPIN(ctx context.Context, pin string) (*models.GameSession, error) {
	query := `
		SELECT ` + sessionColumns + `
		FROM game_sessions
		WHERE pin = $1 AND status <> $2
		ORDER BY created_at DESC
		LIMIT 1
	`
	return r.scanOne(r.db.QueryRowContext(ctx, query, pin, constants.SessionStatusCompleted))
}

// UpdateStatus sets the status and stamps started_at or ended_at on the
// matching transition.
func (r *SessionRepository) UpdateStatus(ctx context.Context, id, status string) error {
	query := `
		UPDATE game_sessions
		SET status = $1::VARCHAR,
			started_at = CASE WHEN $1::VARCHAR = 'active' AND started_at IS NULL THEN NOW() ELSE started_at END,
			ended_at = CASE WHEN $1::VARCHAR = 'completed' THEN NOW() ELSE ended_at END
		WHERE id = $2
	`
	res, err := r.db.ExecContext(ctx, query, status, id)
	if err != nil {
		return fmt.Errorf("failed to update session status: %w", err)
	}
	return expectOneRow(res)
}

func (r *SessionRepository) DeleteSession(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM game_sessions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return expectOneRow(res)
}

func (r *SessionRepository) scanOne(row *sql.Row) (*models.GameSession, error) {
	session := &models.GameSession{}
	err := row.Scan(
		&session.ID,
		&session.QuizID,
		&session.HostID,
		&session.PIN,
		&session.Status,
		&session.CreatedAt,
		&session.StartedAt,
		&session.EndedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}
	return session, nil
}

func (r *SessionRepository) generateUniquePIN(ctx context.Context) (string, error) {
	for range constants.PinMaxAttempts {
		n, err := rand.Int(rand.Reader, big.NewInt(900000))
		if err != nil {
			return "", err
		}
		pin := fmt.Sprintf("%06d", n.Int64()+100000)

		var exists bool
		query := `SELECT EXISTS(SELECT 1 FROM game_sessions WHERE pin = $1 AND status <> $2)`
		if err := r.db.QueryRowContext(ctx, query, pin, constants.SessionStatusCompleted).Scan(&exists); err != nil {
			return "", err
		}
		if !exists {
			return pin, nil
		}
	}
	return "", ErrPINExhausted
}

func expectOneRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrSessionNotFound
	}
	return nil
}
