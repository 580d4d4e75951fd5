package game

import "time"

// Snapshot is what a reconnecting host needs to pick up where it left off.
type Snapshot struct {
	SessionID       string             `json:"sessionId"`
	Status          string             `json:"status"`
	QuestionIndex   int                `json:"questionIndex"`
	TotalQuestions  int                `json:"totalQuestions"`
	CurrentQuestion *HostQuestion      `json:"currentQuestion"`
	Leaderboard     []LeaderboardEntry `json:"leaderboard"`
	TakenAt         time.Time          `json:"takenAt"`
}

// Snapshot returns the last snapshot taken, or nil before the game starts.
func (s *Session) Snapshot() *Snapshot {
	if s.snapshot == nil {
		return nil
	}
	snap := *s.snapshot
	return &snap
}

func (s *Session) takeSnapshot() {
	snap := Snapshot{
		SessionID:      s.id,
		Status:         s.status,
		QuestionIndex:  s.index,
		TotalQuestions: len(s.questions),
		Leaderboard:    s.Leaderboard(),
		TakenAt:        s.opts.Now(),
	}
	if s.current != nil {
		q := s.current.HostView()
		snap.CurrentQuestion = &q
	}
	s.snapshot = &snap

	if s.opts.OnSnapshot != nil {
		s.opts.OnSnapshot(snap)
	}
}
