package game

import (
	"github.com/stemcomputerscienceclub/STEMuiz/internal/constants"
	"github.com/stemcomputerscienceclub/STEMuiz/internal/models"
)

// Start moves a waiting session to active. Questions are shuffled once here
// when the quiz asks for it; no question is shown until NextQuestion.
func (s *Session) Start(quiz models.QuizData) error {
	if s.status != constants.SessionStatusWaiting {
		return ErrGameAlreadyStarted
	}

	questions, err := NormalizeQuiz(quiz, s.opts.DefaultPoints, s.opts.DefaultTimeLimit)
	if err != nil {
		return err
	}
	if quiz.Shuffle() {
		s.opts.Shuffle(questions)
	}

	s.questions = questions
	s.status = constants.SessionStatusActive
	s.index = -1
	s.current = nil

	payload := GameStartPayload{TotalQuestions: len(questions)}
	s.emit.EmitPlayers(EventGameStart, payload)
	s.emit.EmitHosts(EventGameStarted, payload)

	s.takeSnapshot()
	return nil
}

// NextQuestion finalizes the current question, if any, and shows the next one.
// It returns nil once the quiz has run out of questions and the game is over.
func (s *Session) NextQuestion() (*Question, error) {
	if s.status != constants.SessionStatusActive {
		return nil, ErrGameNotActive
	}
	return s.advance(s.index + 1), nil
}

// StartQuestion jumps forward to the question at index. Going back is not
// allowed; index == TotalQuestions ends the game.
func (s *Session) StartQuestion(index int) (*Question, error) {
	if s.status != constants.SessionStatusActive {
		return nil, ErrGameNotActive
	}
	if index <= s.index || index > len(s.questions) {
		return nil, ErrInvalidQuestionIndex
	}
	return s.advance(index), nil
}

func (s *Session) advance(index int) *Question {
	if s.current != nil {
		s.finalize()
	}

	s.index = index
	if index >= len(s.questions) {
		s.index = len(s.questions)
		s.complete(false)
		return nil
	}

	s.current = &s.questions[index]
	s.questionStartedAt = s.opts.Now()
	s.finalized = false
	s.firstCorrectID = ""
	s.pending = make(map[string]*pendingAnswer)

	number := index + 1
	total := len(s.questions)
	timeLimit := seconds(s.current.TimeLimit)

	s.emit.EmitPlayers(EventNextQuestion, NextQuestionPayload{QuestionNumber: number, TotalQuestions: total})
	s.emit.EmitHosts(EventQuestionStart, QuestionStartPayload{
		Question:       s.current.HostView(),
		QuestionNumber: number,
		TotalQuestions: total,
		TimeLimit:      timeLimit,
	})
	s.emit.EmitPlayers(EventQuestionStart, QuestionStartPayload{
		Question:       s.current.PlayerView(),
		QuestionNumber: number,
		TotalQuestions: total,
		TimeLimit:      timeLimit,
	})

	s.takeSnapshot()
	return s.current
}

// EndQuestion closes answer collection and shows the leaderboard. Calling it
// again for the same question does nothing.
func (s *Session) EndQuestion() error {
	if s.status != constants.SessionStatusActive || s.current == nil {
		return ErrNoActiveQuestion
	}
	if s.finalize() {
		s.showLeaderboard()
	}
	return nil
}

// SkipQuestion ends the open question early on the host's request.
func (s *Session) SkipQuestion() error {
	if !s.questionOpen() {
		return ErrNoActiveQuestion
	}
	s.emit.EmitPlayers(EventQuestionSkip, QuestionSkipPayload{QuestionNumber: s.index + 1})
	s.finalize()
	s.showLeaderboard()
	return nil
}

// ExpireQuestion is the timer path. It only acts if the question at index is
// still the open one, so a timer that outlived its question is harmless.
func (s *Session) ExpireQuestion(index int) bool {
	if !s.questionOpen() || s.index != index {
		return false
	}
	s.finalize()
	s.showLeaderboard()
	return true
}

// ShowLeaderboard re-broadcasts the current standings.
func (s *Session) ShowLeaderboard() {
	s.showLeaderboard()
}

// End stops the game from any state. Pending answers are dropped unscored.
func (s *Session) End() {
	s.pending = make(map[string]*pendingAnswer)
	s.finalized = true
	s.complete(true)
}

func (s *Session) complete(cleanup bool) {
	s.status = constants.SessionStatusCompleted
	s.current = nil

	payload := GameEndPayload{Cleanup: cleanup}
	s.emit.EmitHosts(EventGameEnd, payload)
	s.emit.EmitPlayers(EventGameEnd, payload)
	s.showLeaderboard()

	s.takeSnapshot()
}

func (s *Session) showLeaderboard() {
	payload := LeaderboardPayload{
		Leaderboard:         s.Leaderboard(),
		PreviousLeaderboard: s.PreviousLeaderboard(),
	}
	if s.current != nil {
		idx := s.current.CorrectIndex
		payload.CorrectAnswerIndex = &idx
	}
	s.emit.EmitHosts(EventLeaderboardShow, payload)
	s.emit.EmitPlayers(EventLeaderboardShow, payload)
}
