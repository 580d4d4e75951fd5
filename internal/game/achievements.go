package game

var (
	AchievementFirstCorrect = Achievement{ID: 1, Name: "Speed Demon", Description: "First player to answer correctly", Icon: "⚡"}
	AchievementPerfectScore = Achievement{ID: 2, Name: "Perfect Score", Description: "Got all questions correct", Icon: "🎯"}
	AchievementThreeStreak  = Achievement{ID: 3, Name: "Hat Trick", Description: "Three correct answers in a row", Icon: "🎩"}
	AchievementFiveStreak   = Achievement{ID: 4, Name: "On Fire", Description: "Five correct answers in a row", Icon: "🔥"}
	AchievementComeback     = Achievement{ID: 5, Name: "Comeback Kid", Description: "From bottom half to top three", Icon: "🚀"}
)

// Catalog lists every achievement a player can earn.
func Catalog() []Achievement {
	return []Achievement{
		AchievementFirstCorrect,
		AchievementPerfectScore,
		AchievementThreeStreak,
		AchievementFiveStreak,
		AchievementComeback,
	}
}

func (s *Session) evaluateAchievements(answered []*Player) {
	if len(answered) == 0 {
		return
	}

	current := positions(s.Leaderboard())
	previous := positions(s.previous)
	lastQuestion := s.index == len(s.questions)-1

	for _, p := range answered {
		if p.ID == s.firstCorrectID {
			s.award(p, AchievementFirstCorrect)
		}
		if p.Streak >= 3 {
			s.award(p, AchievementThreeStreak)
		}
		if p.Streak >= 5 {
			s.award(p, AchievementFiveStreak)
		}
		if lastQuestion && p.CorrectAnswers == len(s.questions) {
			s.award(p, AchievementPerfectScore)
		}
		if len(s.previous) >= s.opts.MinComebackPlayers {
			before, ok := previous[p.ID]
			if ok && before >= len(s.previous)/2 && current[p.ID] < 3 {
				s.award(p, AchievementComeback)
			}
		}
	}
}

// award is a no-op if the player already holds the achievement.
func (s *Session) award(p *Player, a Achievement) {
	if p.hasAchievement(a.ID) {
		return
	}
	a.EarnedAt = s.opts.Now()
	p.Achievements = append(p.Achievements, a)

	s.emit.EmitPlayer(p.ID, EventAchievementEarned, a)
	s.emit.EmitHosts(EventPlayerAchievement, PlayerAchievementPayload{
		PlayerID:    p.ID,
		PlayerName:  p.Name,
		Achievement: a,
	})
}
