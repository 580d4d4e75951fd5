package game

import (
	"fmt"
	"strings"
	"time"

	"github.com/stemcomputerscienceclub/STEMuiz/internal/models"
)

const (
	QuestionTypeMultipleChoice = "multiple_choice"
	QuestionTypeTrueFalse      = "true_false"
)

// Question is a validated quiz question with defaults applied.
type Question struct {
	ID           string
	Text         string
	Type         string
	Options      []string
	CorrectIndex int
	Points       int
	TimeLimit    time.Duration
	ImageURL     string
}

func (q *Question) PlayerView() PlayerQuestion {
	return PlayerQuestion{
		ID:           q.ID,
		Question:     q.Text,
		QuestionType: q.Type,
		Options:      q.Options,
		Points:       q.Points,
		TimeLimit:    seconds(q.TimeLimit),
		ImageURL:     q.ImageURL,
	}
}

func (q *Question) HostView() HostQuestion {
	return HostQuestion{PlayerQuestion: q.PlayerView(), CorrectIndex: q.CorrectIndex}
}

// NormalizeQuiz validates the quiz payload sent with game:start and fills in
// default points and time limits.
func NormalizeQuiz(data models.QuizData, defaultPoints int, defaultTimeLimit time.Duration) ([]Question, error) {
	if len(data.Questions) == 0 {
		return nil, ErrNoQuestions
	}

	questions := make([]Question, 0, len(data.Questions))
	for i, raw := range data.Questions {
		text := strings.TrimSpace(raw.Question)
		if text == "" {
			text = strings.TrimSpace(raw.Text)
		}
		if text == "" {
			return nil, fmt.Errorf("%w: question %d has no text", ErrInvalidQuiz, i+1)
		}
		if len(raw.Options) < 2 {
			return nil, fmt.Errorf("%w: question %d needs at least 2 options", ErrInvalidQuiz, i+1)
		}
		if raw.CorrectIndex < 0 || raw.CorrectIndex >= len(raw.Options) {
			return nil, fmt.Errorf("%w: question %d has correct index %d out of range", ErrInvalidQuiz, i+1, raw.CorrectIndex)
		}

		q := Question{
			ID:           raw.ID,
			Text:         text,
			Type:         raw.QuestionType,
			Options:      raw.Options,
			CorrectIndex: raw.CorrectIndex,
			Points:       raw.Points,
			TimeLimit:    time.Duration(raw.TimeLimit) * time.Second,
			ImageURL:     raw.ImageURL,
		}
		if q.Type == "" {
			q.Type = QuestionTypeMultipleChoice
			if len(q.Options) == 2 {
				q.Type = QuestionTypeTrueFalse
			}
		}
		if q.Points <= 0 {
			q.Points = defaultPoints
		}
		if q.TimeLimit <= 0 {
			q.TimeLimit = defaultTimeLimit
		}
		questions = append(questions, q)
	}
	return questions, nil
}

// seconds rounds d up to whole seconds for the wire.
func seconds(d time.Duration) int {
	return int((d + time.Second - 1) / time.Second)
}
