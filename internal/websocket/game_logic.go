package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/stemcomputerscienceclub/STEMuiz/internal/constants"
	"github.com/stemcomputerscienceclub/STEMuiz/internal/game"
	"github.com/stemcomputerscienceclub/STEMuiz/internal/models"
	"github.com/stemcomputerscienceclub/STEMuiz/internal/repository"
)

var errInvalidPayload = errors.New("invalid payload")

func (r *Room) handleMessage(c *Client, msg InboundMessage) {
	r.logger.Debug("received message",
		zap.String("type", string(msg.Type)),
		zap.String("role", c.Role),
		zap.String("player_id", c.PlayerID),
	)

	switch msg.Type {
	case MessageTypePing:
		c.SendMessage(MessageTypePong, nil)
		return
	case MessageTypeAnswerSubmit:
		r.handleAnswer(c, msg.Payload)
		return
	}

	if !c.IsHost() {
		if isHostCommand(msg.Type) {
			r.reportError(c, game.ErrHostOnly)
		} else {
			c.SendError(fmt.Sprintf("Unknown message type: %s", msg.Type))
		}
		return
	}

	switch msg.Type {
	case MessageTypeGameStart:
		r.handleStartGame(c, msg.Payload)

	case MessageTypeQuestionNext:
		q, err := r.session.NextQuestion()
		if err != nil {
			r.reportError(c, err)
			return
		}
		r.afterAdvance(q)

	case MessageTypeQuestionStart:
		var payload StartQuestionPayload
		if err := decodePayload(msg.Payload, &payload); err != nil || payload.Index == nil {
			r.reportError(c, game.ErrInvalidQuestionIndex)
			return
		}
		q, err := r.session.StartQuestion(*payload.Index)
		if err != nil {
			r.reportError(c, err)
			return
		}
		r.afterAdvance(q)

	case MessageTypeQuestionSkip:
		if err := r.session.SkipQuestion(); err != nil {
			r.reportError(c, err)
			return
		}
		r.timer.Stop()

	case MessageTypeQuestionEnd:
		if err := r.session.EndQuestion(); err != nil {
			r.reportError(c, err)
			return
		}
		r.timer.Stop()

	case MessageTypeGameEnd:
		r.timer.Stop()
		r.session.End()
		r.background(r.deleteSession)

	case MessageTypeLeaderboardShow:
		r.session.ShowLeaderboard()

	default:
		c.SendError(fmt.Sprintf("Unknown message type: %s", msg.Type))
	}
}

func isHostCommand(t MessageType) bool {
	switch t {
	case MessageTypeGameStart, MessageTypeQuestionNext, MessageTypeQuestionStart,
		MessageTypeQuestionSkip, MessageTypeQuestionEnd, MessageTypeGameEnd,
		MessageTypeLeaderboardShow:
		return true
	}
	return false
}

func (r *Room) handleStartGame(c *Client, raw json.RawMessage) {
	quiz, err := decodeQuiz(raw)
	if err != nil {
		r.reportError(c, fmt.Errorf("%w: %v", game.ErrInvalidQuiz, err))
		return
	}
	if err := r.session.Start(quiz); err != nil {
		r.reportError(c, err)
		return
	}
	r.logger.Info("game started", zap.Int("questions", r.session.TotalQuestions()))

	event := models.GameStartedEvent{
		SessionID:     r.id,
		QuestionCount: r.session.TotalQuestions(),
		PlayerCount:   len(r.session.Players()),
		OccurredAt:    time.Now(),
	}
	r.background(func() {
		r.persistStatus(constants.SessionStatusActive)
		r.hub.publish(constants.EventGameStarted, event)
	})
}

// decodeQuiz accepts the quiz either bare or wrapped as {"quiz": {...}}.
func decodeQuiz(raw json.RawMessage) (models.QuizData, error) {
	var wrapped struct {
		Quiz *models.QuizData `json:"quiz"`
	}
	if err := decodePayload(raw, &wrapped); err != nil {
		return models.QuizData{}, err
	}
	if wrapped.Quiz != nil {
		return *wrapped.Quiz, nil
	}

	var quiz models.QuizData
	if err := decodePayload(raw, &quiz); err != nil {
		return models.QuizData{}, err
	}
	return quiz, nil
}

func (r *Room) handleAnswer(c *Client, raw json.RawMessage) {
	if c.IsHost() {
		c.SendError("Hosts cannot answer questions")
		return
	}

	var payload AnswerPayload
	if err := decodePayload(raw, &payload); err != nil {
		r.reportError(c, errInvalidPayload)
		return
	}
	sub, ok := payload.submission()
	if !ok {
		r.reportError(c, game.ErrInvalidOption)
		return
	}
	if err := r.session.SubmitAnswer(c.PlayerID, sub); err != nil {
		r.reportError(c, err)
	}
}

// afterAdvance arms the timer for a new question, or wraps up a finished game.
func (r *Room) afterAdvance(q *game.Question) {
	if q != nil {
		r.timer.Start(r.session.QuestionIndex(), q.TimeLimit, r.expire)
		return
	}

	r.timer.Stop()
	r.logger.Info("game completed")

	event := models.GameCompletedEvent{
		SessionID:   r.id,
		Leaderboard: finalResults(r.session.Leaderboard()),
		OccurredAt:  time.Now(),
	}
	r.background(func() {
		r.persistStatus(constants.SessionStatusCompleted)
		r.hub.publish(constants.EventGameCompleted, event)
	})
}

// expire runs on the timer goroutine.
func (r *Room) expire(index int) {
	r.enqueue(func() {
		if r.session.ExpireQuestion(index) {
			r.logger.Debug("question timed out", zap.Int("index", index))
		}
	})
}

func (r *Room) persistStatus(status string) {
	if r.hub.sessions == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), collaboratorWait)
	defer cancel()

	err := r.hub.sessions.UpdateStatus(ctx, r.id, status)
	if err == nil || errors.Is(err, repository.ErrSessionNotFound) {
		return
	}
	r.logger.Error("failed to update session status", zap.String("status", status), zap.Error(err))
	r.enqueue(func() { r.emitHostError("Failed to save session status") })
}

// deleteSession removes the persisted record and then the live session. If the
// delete fails the live session stays so the host can retry game:end.
func (r *Room) deleteSession() {
	if r.hub.sessions != nil {
		ctx, cancel := context.WithTimeout(context.Background(), collaboratorWait)
		err := r.hub.sessions.DeleteSession(ctx, r.id)
		cancel()
		if err != nil && !errors.Is(err, repository.ErrSessionNotFound) {
			r.logger.Error("failed to delete session", zap.Error(err))
			r.enqueue(func() { r.emitHostError("Failed to end session, try again") })
			return
		}
	}

	r.hub.publish(constants.EventGameEnded, models.GameEndedEvent{SessionID: r.id, OccurredAt: time.Now()})
	r.hub.rooms.Remove(r.id)
}

// reportError sends err to the offending client. Protocol errors also close
// the connection.
func (r *Room) reportError(c *Client, err error) {
	c.SendError(errorMessage(err))
	if game.IsProtocolError(err) {
		r.logger.Info("closing connection", zap.String("role", c.Role), zap.Error(err))
		c.Close()
	}
}

func errorMessage(err error) string {
	switch {
	case errors.Is(err, game.ErrDuplicateName):
		return "Name already taken"
	case errors.Is(err, game.ErrMissingName):
		return "Player name is required"
	case errors.Is(err, game.ErrNoActiveQuestion):
		return "No active question"
	case errors.Is(err, game.ErrHostOnly):
		return "Only the host can do that"
	}
	return err.Error()
}

func decodePayload(raw json.RawMessage, v any) error {
	if len(raw) == 0 {
		return errInvalidPayload
	}
	return json.Unmarshal(raw, v)
}
