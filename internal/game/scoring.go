package game

import (
	"math"
	"time"
)

const maxStreakMultiplier = 1.5

// Submission is a player's answer. TimeSpent is in seconds; TimePercentage is
// the fraction of the time limit used, in [0, 1]. Either may be omitted.
type Submission struct {
	OptionIndex    int
	TimeSpent      *float64
	TimePercentage *float64
}

// SubmitAnswer records or replaces a player's answer to the open question.
// Correctness is not revealed until the question is finalized.
func (s *Session) SubmitAnswer(playerID string, sub Submission) error {
	if !s.questionOpen() {
		return ErrNoActiveQuestion
	}
	p, ok := s.players[playerID]
	if !ok {
		return ErrUnknownPlayer
	}
	if sub.OptionIndex < 0 || sub.OptionIndex >= len(s.current.Options) {
		return ErrInvalidOption
	}

	// Any resubmission counts as a change, even back to the same option.
	_, changed := s.pending[playerID]

	s.answerSeq++
	s.pending[playerID] = &pendingAnswer{
		option:    sub.OptionIndex,
		timeSpent: s.timeSpent(sub),
		changed:   changed,
		seq:       s.answerSeq,
	}

	s.emit.EmitHosts(EventPlayerAnswer, PlayerAnswerPayload{
		PlayerID:         p.ID,
		PlayerName:       p.Name,
		Answer:           sub.OptionIndex,
		HasChangedAnswer: changed,
	})
	s.emit.EmitPlayer(playerID, EventAnswerReceived, AnswerReceivedPayload{Answer: sub.OptionIndex})
	return nil
}

// timeSpent is measured from the moment the question started. A client can
// report a longer time than the server saw, never a shorter one.
func (s *Session) timeSpent(sub Submission) time.Duration {
	limit := s.current.TimeLimit
	spent := s.opts.Now().Sub(s.questionStartedAt)

	var reported time.Duration
	switch {
	case sub.TimeSpent != nil:
		reported = time.Duration(*sub.TimeSpent * float64(time.Second))
	case sub.TimePercentage != nil:
		reported = time.Duration(*sub.TimePercentage * float64(limit))
	}
	spent = max(spent, reported)

	return min(max(spent, 0), limit)
}

// finalize scores the current question once. It reports whether it did any work.
func (s *Session) finalize() bool {
	if s.current == nil || s.finalized {
		return false
	}
	s.finalized = true

	q := s.current
	before := s.Leaderboard()

	firstSeq := math.MaxInt
	var answered []*Player
	for _, id := range s.order {
		p := s.players[id]
		a, ok := s.pending[id]
		if !ok {
			p.Streak = 0
			s.emit.EmitPlayer(id, EventAnswerResult, AnswerResult{
				TotalScore:    p.Score,
				CorrectAnswer: q.CorrectIndex,
				Timeout:       true,
			})
			continue
		}

		correct := a.option == q.CorrectIndex
		points := 0
		if correct {
			points = CalculatePoints(q.Points, q.TimeLimit, a.timeSpent, p.Streak)
			p.Score += points
			p.CorrectAnswers++
			p.Streak++
			if a.seq < firstSeq {
				firstSeq = a.seq
				s.firstCorrectID = id
			}
		} else {
			p.Streak = 0
		}

		s.emit.EmitPlayer(id, EventAnswerResult, AnswerResult{
			Correct:          correct,
			IsCorrect:        correct,
			Points:           points,
			TotalScore:       p.Score,
			CorrectAnswer:    q.CorrectIndex,
			Streak:           p.Streak,
			HasChangedAnswer: a.changed,
		})
		answered = append(answered, p)
	}

	s.pending = make(map[string]*pendingAnswer)
	// Standings before the first scored round are just join order.
	if s.scoredRounds > 0 {
		s.previous = before
	}
	s.scoredRounds++

	s.evaluateAchievements(answered)
	s.takeSnapshot()
	return true
}

// CalculatePoints returns the score for a correct answer:
// base * (0.5 + 0.5*timeBonus) * min(1.5, 1 + 0.1*priorStreak), rounded,
// where timeBonus is the unused fraction of the time limit.
func CalculatePoints(base int, limit, spent time.Duration, priorStreak int) int {
	bonus := 0.0
	if limit > 0 {
		bonus = float64(limit-spent) / float64(limit)
		bonus = min(max(bonus, 0), 1)
	}
	multiplier := min(maxStreakMultiplier, 1+0.1*float64(max(priorStreak, 0)))
	return int(math.Round(float64(base) * (0.5 + 0.5*bonus) * multiplier))
}
