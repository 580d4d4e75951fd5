package game

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stemcomputerscienceclub/STEMuiz/internal/constants"
	"github.com/stemcomputerscienceclub/STEMuiz/internal/models"
)

func TestStart(t *testing.T) {
	s, rec, _ := newTestSession(t)

	require.NoError(t, s.Start(trueFalseQuiz(3)))

	assert.Equal(t, constants.SessionStatusActive, s.Status())
	assert.Equal(t, -1, s.QuestionIndex())
	assert.Nil(t, s.CurrentQuestion())
	assert.Equal(t, []any{GameStartPayload{TotalQuestions: 3}}, rec.find(players, EventGameStart))
	assert.Len(t, rec.find(hosts, EventGameStarted), 1)
	assert.Empty(t, rec.find(players, EventQuestionStart))

	require.ErrorIs(t, s.Start(trueFalseQuiz(3)), ErrGameAlreadyStarted)
}

func TestStartRejectsBadQuiz(t *testing.T) {
	s, _, _ := newTestSession(t)

	require.ErrorIs(t, s.Start(models.QuizData{}), ErrNoQuestions)

	quiz := trueFalseQuiz(1)
	quiz.Questions[0].CorrectIndex = 2
	require.ErrorIs(t, s.Start(quiz), ErrInvalidQuiz)

	quiz = trueFalseQuiz(1)
	quiz.Questions[0].Options = []string{"only"}
	require.ErrorIs(t, s.Start(quiz), ErrInvalidQuiz)

	assert.Equal(t, constants.SessionStatusWaiting, s.Status())
	assert.False(t, IsProtocolError(ErrInvalidQuiz))
}

func TestStartAppliesDefaults(t *testing.T) {
	s, _, _ := newTestSession(t)
	quiz := models.QuizData{Questions: []models.Question{
		{Text: "2 + 2?", Options: []string{"3", "4", "5"}, CorrectIndex: 1},
	}}

	require.NoError(t, s.Start(quiz))
	q, err := s.NextQuestion()
	require.NoError(t, err)

	assert.Equal(t, "2 + 2?", q.Text)
	assert.Equal(t, 1000, q.Points)
	assert.Equal(t, QuestionTypeMultipleChoice, q.Type)
	assert.Equal(t, 30, seconds(q.TimeLimit))
}

func TestStartShufflesOnce(t *testing.T) {
	rec := &recorder{}
	calls := 0
	s := NewSession("s", rec, Options{Shuffle: func(qs []Question) {
		calls++
		slices.Reverse(qs)
	}})

	quiz := trueFalseQuiz(3)
	for i := range quiz.Questions {
		quiz.Questions[i].ID = string(rune('a' + i))
	}
	quiz.RandomQuestions = true
	require.NoError(t, s.Start(quiz))

	var order []string
	for {
		q, err := s.NextQuestion()
		require.NoError(t, err)
		if q == nil {
			break
		}
		order = append(order, q.ID)
	}
	assert.Equal(t, []string{"c", "b", "a"}, order)
	assert.Equal(t, 1, calls)
}

func TestNextQuestionPayloads(t *testing.T) {
	s, rec, _ := newTestSession(t)
	require.NoError(t, s.Start(trueFalseQuiz(2)))

	_, err := s.NextQuestion()
	require.NoError(t, err)

	hostStarts := rec.find(hosts, EventQuestionStart)
	require.Len(t, hostStarts, 1)
	hp := hostStarts[0].(QuestionStartPayload)
	hq, ok := hp.Question.(HostQuestion)
	require.True(t, ok)
	assert.Equal(t, 0, hq.CorrectIndex)
	assert.Equal(t, 1, hp.QuestionNumber)
	assert.Equal(t, 2, hp.TotalQuestions)
	assert.Equal(t, 30, hp.TimeLimit)

	playerStarts := rec.find(players, EventQuestionStart)
	require.Len(t, playerStarts, 1)
	pp := playerStarts[0].(QuestionStartPayload)
	_, ok = pp.Question.(PlayerQuestion)
	assert.True(t, ok, "players must not see the correct index")

	assert.Len(t, rec.find(players, EventNextQuestion), 1)
}

func TestQuestionIndexStaysInRange(t *testing.T) {
	s, _, _ := newTestSession(t)
	join(t, s, "Alice")
	require.NoError(t, s.Start(trueFalseQuiz(3)))

	for {
		q, err := s.NextQuestion()
		require.NoError(t, err)

		assert.LessOrEqual(t, s.QuestionIndex(), s.TotalQuestions())
		assert.Equal(t, s.QuestionIndex() == s.TotalQuestions(), s.Status() == constants.SessionStatusCompleted)
		if q == nil {
			break
		}
	}

	assert.Equal(t, 3, s.QuestionIndex())
	_, err := s.NextQuestion()
	require.ErrorIs(t, err, ErrGameNotActive)
	assert.Equal(t, 3, s.QuestionIndex())
}

func TestGameOverBroadcastsFinalLeaderboard(t *testing.T) {
	s, rec, _ := newTestSession(t)
	p := join(t, s, "Alice")[0]
	startGame(t, s, 1)
	answer(t, s, p, 0)
	rec.reset()

	q, err := s.NextQuestion()
	require.NoError(t, err)
	assert.Nil(t, q)

	assert.Equal(t, []any{GameEndPayload{Cleanup: false}}, rec.find(hosts, EventGameEnd))
	assert.Equal(t, []any{GameEndPayload{Cleanup: false}}, rec.find(players, EventGameEnd))
	boards := rec.find(players, EventLeaderboardShow)
	require.Len(t, boards, 1)
	final := boards[0].(LeaderboardPayload)
	require.Len(t, final.Leaderboard, 1)
	assert.Equal(t, 1000, final.Leaderboard[0].Score)
	assert.Len(t, rec.find(p.ID, EventAnswerResult), 1)
}

func TestStartQuestionByIndex(t *testing.T) {
	s, _, _ := newTestSession(t)
	require.NoError(t, s.Start(trueFalseQuiz(4)))

	q, err := s.StartQuestion(2)
	require.NoError(t, err)
	require.NotNil(t, q)
	assert.Equal(t, 2, s.QuestionIndex())

	_, err = s.StartQuestion(1)
	require.ErrorIs(t, err, ErrInvalidQuestionIndex)
	_, err = s.StartQuestion(2)
	require.ErrorIs(t, err, ErrInvalidQuestionIndex)
	_, err = s.StartQuestion(5)
	require.ErrorIs(t, err, ErrInvalidQuestionIndex)

	q, err = s.StartQuestion(4)
	require.NoError(t, err)
	assert.Nil(t, q)
	assert.Equal(t, constants.SessionStatusCompleted, s.Status())
}

func TestFinalizeIsIdempotent(t *testing.T) {
	s, rec, _ := newTestSession(t)
	ps := join(t, s, "Alice", "Bob")
	startGame(t, s, 2)
	answer(t, s, ps[0], 0)
	answer(t, s, ps[1], 1)

	require.NoError(t, s.EndQuestion())
	require.NoError(t, s.EndQuestion())
	assert.False(t, s.ExpireQuestion(0))

	assert.Equal(t, 1000, ps[0].Score)
	assert.Equal(t, 1, ps[0].CorrectAnswers)
	assert.Len(t, rec.find(ps[0].ID, EventAnswerResult), 1)
	assert.Len(t, rec.find(ps[1].ID, EventAnswerResult), 1)
	assert.Len(t, rec.find(players, EventLeaderboardShow), 1)
	require.ErrorIs(t, s.SkipQuestion(), ErrNoActiveQuestion)

	// advancing does not score the finished question again
	_, err := s.NextQuestion()
	require.NoError(t, err)
	assert.Equal(t, 1000, ps[0].Score)
	assert.Len(t, rec.find(ps[0].ID, EventAnswerResult), 1)
}

func TestSkipQuestion(t *testing.T) {
	s, rec, _ := newTestSession(t)
	p := join(t, s, "Alice")[0]
	startGame(t, s, 2)
	answer(t, s, p, 0)

	require.NoError(t, s.SkipQuestion())

	assert.Len(t, rec.find(players, EventQuestionSkip), 1)
	assert.Equal(t, 1000, p.Score)
	boards := rec.find(hosts, EventLeaderboardShow)
	require.Len(t, boards, 1)
	require.NotNil(t, boards[0].(LeaderboardPayload).CorrectAnswerIndex)
	assert.Equal(t, 0, *boards[0].(LeaderboardPayload).CorrectAnswerIndex)

	require.ErrorIs(t, s.SubmitAnswer(p.ID, Submission{OptionIndex: 1}), ErrNoActiveQuestion)
}

func TestStaleTimerDoesNotTouchLaterQuestion(t *testing.T) {
	s, rec, _ := newTestSession(t)
	p := join(t, s, "Alice")[0]
	startGame(t, s, 3)

	require.NoError(t, s.SkipQuestion())
	_, err := s.NextQuestion()
	require.NoError(t, err)
	answer(t, s, p, 0)

	assert.False(t, s.ExpireQuestion(0))
	assert.Zero(t, p.Score)
	require.NoError(t, s.SubmitAnswer(p.ID, Submission{OptionIndex: 0}))

	assert.True(t, s.ExpireQuestion(1))
	assert.False(t, s.ExpireQuestion(1))
	assert.Equal(t, 1000, p.Score)
	assert.Len(t, rec.find(p.ID, EventAnswerResult), 2)
}

func TestEndGameFromAnyState(t *testing.T) {
	s, rec, _ := newTestSession(t)
	p := join(t, s, "Alice")[0]
	startGame(t, s, 3)
	answer(t, s, p, 0)

	s.End()

	assert.Equal(t, constants.SessionStatusCompleted, s.Status())
	assert.Equal(t, []any{GameEndPayload{Cleanup: true}}, rec.find(hosts, EventGameEnd))
	assert.Equal(t, []any{GameEndPayload{Cleanup: true}}, rec.find(players, EventGameEnd))
	assert.Len(t, rec.find(players, EventLeaderboardShow), 1)
	assert.Empty(t, rec.find(p.ID, EventAnswerResult))
	assert.Zero(t, p.Score)

	require.ErrorIs(t, s.SubmitAnswer(p.ID, Submission{OptionIndex: 0}), ErrNoActiveQuestion)
	assert.False(t, s.ExpireQuestion(0))

	waiting, rec2, _ := newTestSession(t)
	waiting.End()
	assert.Equal(t, constants.SessionStatusCompleted, waiting.Status())
	assert.Len(t, rec2.find(hosts, EventGameEnd), 1)
}

func TestSnapshots(t *testing.T) {
	rec := &recorder{}
	var taken []Snapshot
	s := NewSession("s-1", rec, Options{OnSnapshot: func(snap Snapshot) { taken = append(taken, snap) }})
	assert.Nil(t, s.Snapshot())

	p := join(t, s, "Alice")[0]
	require.NoError(t, s.Start(trueFalseQuiz(1)))
	_, err := s.NextQuestion()
	require.NoError(t, err)

	snap := s.Snapshot()
	require.NotNil(t, snap)
	assert.Equal(t, "s-1", snap.SessionID)
	assert.Equal(t, constants.SessionStatusActive, snap.Status)
	assert.Equal(t, 0, snap.QuestionIndex)
	require.NotNil(t, snap.CurrentQuestion)
	assert.Equal(t, 0, snap.CurrentQuestion.CorrectIndex)

	answer(t, s, p, 0)
	require.NoError(t, s.EndQuestion())
	assert.Equal(t, 1000, s.Snapshot().Leaderboard[0].Score)

	_, err = s.NextQuestion()
	require.NoError(t, err)
	final := s.Snapshot()
	assert.Equal(t, constants.SessionStatusCompleted, final.Status)
	assert.Nil(t, final.CurrentQuestion)

	// start, question start, finalize, game over
	assert.Len(t, taken, 4)
}
