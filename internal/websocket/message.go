package websocket

import (
	"encoding/json"

	"github.com/stemcomputerscienceclub/STEMuiz/internal/game"
)

type MessageType string

const (
	// Host -> Server
	MessageTypeGameStart       MessageType = "game:start"
	MessageTypeQuestionNext    MessageType = "question:next"
	MessageTypeQuestionStart   MessageType = "question:start"
	MessageTypeQuestionSkip    MessageType = "question:skip"
	MessageTypeQuestionEnd     MessageType = "question:end"
	MessageTypeGameEnd         MessageType = "game:end"
	MessageTypeLeaderboardShow MessageType = "leaderboard:show"

	// Player -> Server
	MessageTypeAnswerSubmit MessageType = "answer:submit"

	// Either direction
	MessageTypePing MessageType = "ping"

	// Server -> Client, besides the game events
	MessageTypeGameRestore MessageType = game.EventGameRestore
	MessageTypeError       MessageType = "error"
	MessageTypePong        MessageType = "pong"
)

// Message is an outbound frame.
type Message struct {
	Type    MessageType `json:"type"`
	Payload any         `json:"payload,omitempty"`
}

// InboundMessage is a frame read from a client. The payload is decoded once
// the type is known.
type InboundMessage struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type StartQuestionPayload struct {
	Index *int `json:"index"`
}

// AnswerPayload accepts both optionIndex and answer for the chosen option.
type AnswerPayload struct {
	OptionIndex    *int     `json:"optionIndex"`
	Answer         *int     `json:"answer"`
	TimeSpent      *float64 `json:"timeSpent"`
	TimePercentage *float64 `json:"timePercentage"`
}

func (p AnswerPayload) submission() (game.Submission, bool) {
	option := p.OptionIndex
	if option == nil {
		option = p.Answer
	}
	if option == nil {
		return game.Submission{}, false
	}
	return game.Submission{
		OptionIndex:    *option,
		TimeSpent:      p.TimeSpent,
		TimePercentage: p.TimePercentage,
	}, true
}

type ErrorPayload struct {
	Message     string `json:"message"`
	Recoverable bool   `json:"recoverable,omitempty"`
}
