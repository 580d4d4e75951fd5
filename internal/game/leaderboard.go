package game

import "sort"

type LeaderboardEntry struct {
	ID             string        `json:"id"`
	Name           string        `json:"name"`
	Score          int           `json:"score"`
	CorrectAnswers int           `json:"correctAnswers"`
	Streak         int           `json:"streak"`
	Achievements   []Achievement `json:"achievements"`
	Position       int           `json:"position"`
	// Delta is how many places the player moved up since the previous round.
	Delta int `json:"delta"`
}

// Leaderboard ranks players by score. Equal scores keep join order.
func (s *Session) Leaderboard() []LeaderboardEntry {
	entries := make([]LeaderboardEntry, 0, len(s.order))
	for _, id := range s.order {
		p := s.players[id]
		entries = append(entries, LeaderboardEntry{
			ID:             p.ID,
			Name:           p.Name,
			Score:          p.Score,
			CorrectAnswers: p.CorrectAnswers,
			Streak:         p.Streak,
			Achievements:   cloneAchievements(p.Achievements),
		})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Score > entries[j].Score
	})

	prev := positions(s.previous)
	for i := range entries {
		entries[i].Position = i + 1
		if before, ok := prev[entries[i].ID]; ok {
			entries[i].Delta = before - i
		}
	}
	return entries
}

// PreviousLeaderboard is the standing captured just before the last question
// was scored. It is empty until a second question has been scored.
func (s *Session) PreviousLeaderboard() []LeaderboardEntry {
	out := make([]LeaderboardEntry, len(s.previous))
	copy(out, s.previous)
	return out
}

func positions(board []LeaderboardEntry) map[string]int {
	idx := make(map[string]int, len(board))
	for i, e := range board {
		idx[e.ID] = i
	}
	return idx
}
