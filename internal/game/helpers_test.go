package game

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/stemcomputerscienceclub/STEMuiz/internal/models"
)

const hosts, players = "hosts", "players"

type emitted struct {
	to      string
	event   string
	payload any
}

type recorder struct {
	events []emitted
}

func (r *recorder) EmitHosts(event string, payload any) {
	r.events = append(r.events, emitted{hosts, event, payload})
}

func (r *recorder) EmitPlayers(event string, payload any) {
	r.events = append(r.events, emitted{players, event, payload})
}

func (r *recorder) EmitPlayer(id, event string, payload any) {
	r.events = append(r.events, emitted{id, event, payload})
}

func (r *recorder) find(to, event string) []any {
	var out []any
	for _, e := range r.events {
		if e.to == to && e.event == event {
			out = append(out, e.payload)
		}
	}
	return out
}

func (r *recorder) reset() { r.events = nil }

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newTestSession(t *testing.T) (*Session, *recorder, *fakeClock) {
	t.Helper()
	rec := &recorder{}
	clock := &fakeClock{now: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
	s := NewSession("session-1", rec, Options{Now: clock.Now})
	return s, rec, clock
}

// trueFalseQuiz builds n true/false questions whose answer is option 0.
func trueFalseQuiz(n int) models.QuizData {
	quiz := models.QuizData{Title: "test"}
	for i := 0; i < n; i++ {
		quiz.Questions = append(quiz.Questions, models.Question{
			Question:     "Is this true?",
			Options:      []string{"True", "False"},
			CorrectIndex: 0,
			Points:       1000,
			TimeLimit:    30,
		})
	}
	return quiz
}

func join(t *testing.T, s *Session, names ...string) []*Player {
	t.Helper()
	out := make([]*Player, 0, len(names))
	for _, name := range names {
		p, err := s.Join(name)
		require.NoError(t, err)
		out = append(out, p)
	}
	return out
}

func answer(t *testing.T, s *Session, p *Player, option int) {
	t.Helper()
	require.NoError(t, s.SubmitAnswer(p.ID, Submission{OptionIndex: option}))
}

func startGame(t *testing.T, s *Session, questions int) {
	t.Helper()
	require.NoError(t, s.Start(trueFalseQuiz(questions)))
	q, err := s.NextQuestion()
	require.NoError(t, err)
	require.NotNil(t, q)
}

func achievementCount(rec *recorder, playerID string, id int) int {
	n := 0
	for _, p := range rec.find(playerID, EventAchievementEarned) {
		if p.(Achievement).ID == id {
			n++
		}
	}
	return n
}
