package game

import "time"

// Event names shared with the websocket clients.
const (
	EventPlayerJoin        = "player:join"
	EventPlayerLeave       = "player:leave"
	EventPlayerAnswer      = "player:answer"
	EventPlayerAchievement = "player:achievement"
	EventPlayerWelcome     = "player:welcome"
	EventGameRestore       = "game:restore"
	EventGameStart         = "game:start"
	EventGameStarted       = "game:started"
	EventGameEnd           = "game:end"
	EventNextQuestion      = "next:question"
	EventQuestionStart     = "question:start"
	EventQuestionSkip      = "question:skip"
	EventLeaderboardShow   = "leaderboard:show"
	EventAnswerResult      = "answer:result"
	EventAnswerReceived    = "answer:received"
	EventAchievementEarned = "achievement:earned"
)

// Emitter delivers events to the broadcast groups of one session. Calls are
// made from the goroutine that owns the session.
type Emitter interface {
	EmitHosts(event string, payload any)
	EmitPlayers(event string, payload any)
	EmitPlayer(playerID, event string, payload any)
}

type PlayerInfo struct {
	ID             string        `json:"id"`
	Name           string        `json:"name"`
	Score          int           `json:"score"`
	CorrectAnswers int           `json:"correctAnswers"`
	Streak         int           `json:"streak"`
	Achievements   []Achievement `json:"achievements"`
}

type PlayerWelcomePayload struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type PlayerLeavePayload struct {
	PlayerID   string `json:"playerId"`
	PlayerName string `json:"playerName"`
}

type GameStartPayload struct {
	TotalQuestions int `json:"totalQuestions"`
}

type NextQuestionPayload struct {
	QuestionNumber int `json:"questionNumber"`
	TotalQuestions int `json:"totalQuestions"`
}

type QuestionSkipPayload struct {
	QuestionNumber int `json:"questionNumber"`
}

type PlayerAnswerPayload struct {
	PlayerID         string `json:"playerId"`
	PlayerName       string `json:"playerName"`
	Answer           int    `json:"answer"`
	HasChangedAnswer bool   `json:"hasChangedAnswer"`
}

type PlayerAchievementPayload struct {
	PlayerID    string      `json:"playerId"`
	PlayerName  string      `json:"playerName"`
	Achievement Achievement `json:"achievement"`
}

type AnswerReceivedPayload struct {
	Answer int `json:"answer"`
}

// PlayerQuestion is the question as players see it: no correct index.
type PlayerQuestion struct {
	ID           string   `json:"id,omitempty"`
	Question     string   `json:"question"`
	QuestionType string   `json:"questionType"`
	Options      []string `json:"options"`
	Points       int      `json:"points"`
	TimeLimit    int      `json:"timeLimit"`
	ImageURL     string   `json:"imageUrl,omitempty"`
}

// HostQuestion extends PlayerQuestion with the answer key.
type HostQuestion struct {
	PlayerQuestion
	CorrectIndex int `json:"correctIndex"`
}

type QuestionStartPayload struct {
	Question       any `json:"question"`
	QuestionNumber int `json:"questionNumber"`
	TotalQuestions int `json:"totalQuestions"`
	TimeLimit      int `json:"timeLimit"`
}

type LeaderboardPayload struct {
	Leaderboard         []LeaderboardEntry `json:"leaderboard"`
	PreviousLeaderboard []LeaderboardEntry `json:"previousLeaderboard"`
	CorrectAnswerIndex  *int               `json:"correctAnswerIndex,omitempty"`
}

type AnswerResult struct {
	Correct          bool `json:"correct"`
	IsCorrect        bool `json:"isCorrect"`
	Points           int  `json:"points"`
	TotalScore       int  `json:"totalScore"`
	CorrectAnswer    int  `json:"correctAnswer"`
	Streak           int  `json:"streak"`
	Timeout          bool `json:"timeout,omitempty"`
	HasChangedAnswer bool `json:"hasChangedAnswer,omitempty"`
}

type GameEndPayload struct {
	Cleanup bool `json:"cleanup"`
}

type Achievement struct {
	ID          int       `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Icon        string    `json:"icon"`
	EarnedAt    time.Time `json:"earnedAt,omitzero"`
}
