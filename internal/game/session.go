package game

import (
	"math/rand/v2"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/stemcomputerscienceclub/STEMuiz/internal/constants"
)

type Options struct {
	DefaultTimeLimit   time.Duration
	DefaultPoints      int
	MinComebackPlayers int

	// Now and Shuffle are replaceable in tests.
	Now     func() time.Time
	Shuffle func([]Question)

	// OnSnapshot is called with every snapshot the session takes.
	OnSnapshot func(Snapshot)
}

func (o *Options) withDefaults() {
	if o.DefaultTimeLimit <= 0 {
		o.DefaultTimeLimit = 30 * time.Second
	}
	if o.DefaultPoints <= 0 {
		o.DefaultPoints = 1000
	}
	if o.MinComebackPlayers <= 0 {
		o.MinComebackPlayers = 6
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	if o.Shuffle == nil {
		o.Shuffle = func(qs []Question) {
			rand.Shuffle(len(qs), func(i, j int) { qs[i], qs[j] = qs[j], qs[i] })
		}
	}
}

type Player struct {
	ID             string
	Name           string
	Score          int
	Streak         int
	CorrectAnswers int
	Achievements   []Achievement
	Connected      bool
}

func (p *Player) Info() PlayerInfo {
	return PlayerInfo{
		ID:             p.ID,
		Name:           p.Name,
		Score:          p.Score,
		CorrectAnswers: p.CorrectAnswers,
		Streak:         p.Streak,
		Achievements:   cloneAchievements(p.Achievements),
	}
}

func (p *Player) hasAchievement(id int) bool {
	for _, a := range p.Achievements {
		if a.ID == id {
			return true
		}
	}
	return false
}

type pendingAnswer struct {
	option    int
	timeSpent time.Duration
	changed   bool
	seq       int
}

// Session is the state of one live quiz. It is not safe for concurrent use:
// the owner must call every method from a single goroutine.
type Session struct {
	id   string
	opts Options
	emit Emitter

	status    string
	questions []Question
	index     int

	current           *Question
	questionStartedAt time.Time
	finalized         bool
	firstCorrectID    string

	players map[string]*Player
	order   []string

	pending   map[string]*pendingAnswer
	answerSeq int

	previous     []LeaderboardEntry
	scoredRounds int
	snapshot     *Snapshot
}

func NewSession(id string, emit Emitter, opts Options) *Session {
	opts.withDefaults()
	return &Session{
		id:      id,
		opts:    opts,
		emit:    emit,
		status:  constants.SessionStatusWaiting,
		index:   -1,
		players: make(map[string]*Player),
		pending: make(map[string]*pendingAnswer),
	}
}

func (s *Session) ID() string { return s.id }

func (s *Session) Status() string { return s.status }

func (s *Session) QuestionIndex() int { return s.index }

func (s *Session) TotalQuestions() int { return len(s.questions) }

// CurrentQuestion returns the active question, or nil between games.
func (s *Session) CurrentQuestion() *Question { return s.current }

func (s *Session) Player(id string) (*Player, bool) {
	p, ok := s.players[id]
	return p, ok
}

// Players returns all players in join order, including disconnected ones.
func (s *Session) Players() []*Player {
	out := make([]*Player, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.players[id])
	}
	return out
}

// Join adds a new player. Names are unique per session, compared case-insensitively
// against every player that ever joined.
func (s *Session) Join(name string) (*Player, error) {
	if name == "" {
		return nil, ErrMissingName
	}
	for _, p := range s.players {
		if strings.EqualFold(p.Name, name) {
			return nil, ErrDuplicateName
		}
	}

	p := &Player{
		ID:           uuid.NewString(),
		Name:         name,
		Achievements: []Achievement{},
		Connected:    true,
	}
	s.players[p.ID] = p
	s.order = append(s.order, p.ID)

	s.emit.EmitHosts(EventPlayerJoin, p.Info())
	return p, nil
}

// Welcome greets a player whose connection is now addressable. A player who
// arrives mid-question gets that question with the time that is left.
func (s *Session) Welcome(playerID string) {
	p, ok := s.players[playerID]
	if !ok {
		return
	}
	s.emit.EmitPlayer(playerID, EventPlayerWelcome, PlayerWelcomePayload{ID: p.ID, Name: p.Name})

	if s.status != constants.SessionStatusActive {
		return
	}
	s.emit.EmitPlayer(playerID, EventGameStart, GameStartPayload{TotalQuestions: len(s.questions)})

	if !s.questionOpen() {
		return
	}
	remaining := s.current.TimeLimit - s.opts.Now().Sub(s.questionStartedAt)
	if remaining <= 0 {
		return
	}
	s.emit.EmitPlayer(playerID, EventQuestionStart, QuestionStartPayload{
		Question:       s.current.PlayerView(),
		QuestionNumber: s.index + 1,
		TotalQuestions: len(s.questions),
		TimeLimit:      seconds(remaining),
	})
}

// Leave marks a player as disconnected. Their score and achievements stay.
func (s *Session) Leave(playerID string) {
	p, ok := s.players[playerID]
	if !ok || !p.Connected {
		return
	}
	p.Connected = false
	s.emit.EmitHosts(EventPlayerLeave, PlayerLeavePayload{PlayerID: p.ID, PlayerName: p.Name})
}

func (s *Session) questionOpen() bool {
	return s.status == constants.SessionStatusActive && s.current != nil && !s.finalized
}

func cloneAchievements(in []Achievement) []Achievement {
	out := make([]Achievement, len(in))
	copy(out, in)
	return out
}
