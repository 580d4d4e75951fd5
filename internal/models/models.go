package models

import (
	"database/sql"
	"time"
)

// GameSession is the persisted record of a hosted quiz run. The live game
// state for the same ID is kept in memory by the game package.
type GameSession struct {
	ID        string
	QuizID    string
	HostID    string
	PIN       string
	Status    string // "waiting", "active", "completed"
	CreatedAt time.Time
	StartedAt sql.NullTime
	EndedAt   sql.NullTime
}

// QuizData is the payload a host sends with game:start.
type QuizData struct {
	Title              string     `json:"title,omitempty"`
	Questions          []Question `json:"questions"`
	RandomQuestions    bool       `json:"random_questions,omitempty"`
	RandomizeQuestions bool       `json:"randomize_questions,omitempty"`
}

// Shuffle reports whether either spelling of the shuffle flag is set.
func (q QuizData) Shuffle() bool {
	return q.RandomQuestions || q.RandomizeQuestions
}

type Question struct {
	ID           string   `json:"id,omitempty"`
	Question     string   `json:"question"`
	Text         string   `json:"text,omitempty"`
	QuestionType string   `json:"question_type,omitempty"`
	Options      []string `json:"options"`
	CorrectIndex int      `json:"correct_index"`
	Points       int      `json:"points,omitempty"`
	TimeLimit    int      `json:"time_limit,omitempty"` // seconds
	ImageURL     string   `json:"image_url,omitempty"`
}
