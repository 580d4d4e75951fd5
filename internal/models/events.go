package models

import "time"

// Lifecycle events published to the game events exchange.

type GameStartedEvent struct {
	SessionID     string    `json:"session_id"`
	QuestionCount int       `json:"question_count"`
	PlayerCount   int       `json:"player_count"`
	OccurredAt    time.Time `json:"occurred_at"`
}

type GameCompletedEvent struct {
	SessionID   string        `json:"session_id"`
	Leaderboard []FinalResult `json:"leaderboard"`
	OccurredAt  time.Time     `json:"occurred_at"`
}

type FinalResult struct {
	PlayerID       string `json:"player_id"`
	Name           string `json:"name"`
	Score          int    `json:"score"`
	CorrectAnswers int    `json:"correct_answers"`
	Position       int    `json:"position"`
}

type GameEndedEvent struct {
	SessionID  string    `json:"session_id"`
	OccurredAt time.Time `json:"occurred_at"`
}
