package game

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJoin(t *testing.T) {
	s, rec, _ := newTestSession(t)

	p, err := s.Join("Alice")
	require.NoError(t, err)
	assert.NotEmpty(t, p.ID)
	assert.True(t, p.Connected)

	joins := rec.find(hosts, EventPlayerJoin)
	require.Len(t, joins, 1)
	info := joins[0].(PlayerInfo)
	assert.Equal(t, p.ID, info.ID)
	assert.Equal(t, "Alice", info.Name)
	assert.Zero(t, info.Score)
}

func TestJoinMissingName(t *testing.T) {
	s, _, _ := newTestSession(t)

	_, err := s.Join("")
	require.ErrorIs(t, err, ErrMissingName)
	assert.True(t, IsProtocolError(err))
	assert.Empty(t, s.Players())
}

func TestJoinDuplicateNameIsCaseInsensitive(t *testing.T) {
	s, rec, _ := newTestSession(t)
	join(t, s, "Alice")
	startGame(t, s, 1)
	rec.reset()

	_, err := s.Join("aLiCe")
	require.ErrorIs(t, err, ErrDuplicateName)
	assert.True(t, IsProtocolError(err))
	assert.Len(t, s.Players(), 1)
	assert.Empty(t, rec.find(hosts, EventPlayerJoin))

	// no trimming: a padded name is a different name
	_, err = s.Join(" alice")
	require.NoError(t, err)
}

func TestJoinDuplicateNameIncludesDisconnectedPlayers(t *testing.T) {
	s, _, _ := newTestSession(t)
	alice := join(t, s, "Alice")[0]
	s.Leave(alice.ID)

	_, err := s.Join("ALICE")
	require.ErrorIs(t, err, ErrDuplicateName)
}

func TestLeaveKeepsPlayerRecord(t *testing.T) {
	s, rec, _ := newTestSession(t)
	ps := join(t, s, "Alice", "Bob")
	startGame(t, s, 1)
	answer(t, s, ps[0], 0)
	require.NoError(t, s.EndQuestion())

	s.Leave(ps[0].ID)
	s.Leave(ps[0].ID)

	leaves := rec.find(hosts, EventPlayerLeave)
	require.Len(t, leaves, 1)
	assert.Equal(t, ps[0].ID, leaves[0].(PlayerLeavePayload).PlayerID)

	p, ok := s.Player(ps[0].ID)
	require.True(t, ok)
	assert.False(t, p.Connected)
	assert.Equal(t, 1000, p.Score)
	assert.Len(t, s.Leaderboard(), 2)
}

func TestWelcomeBeforeStart(t *testing.T) {
	s, rec, _ := newTestSession(t)
	p := join(t, s, "Alice")[0]

	s.Welcome(p.ID)

	welcome := rec.find(p.ID, EventPlayerWelcome)
	require.Len(t, welcome, 1)
	assert.Equal(t, PlayerWelcomePayload{ID: p.ID, Name: "Alice"}, welcome[0])
	assert.Empty(t, rec.find(p.ID, EventQuestionStart))
}

func TestWelcomeLateJoinerGetsRemainingTime(t *testing.T) {
	s, rec, clock := newTestSession(t)
	join(t, s, "Alice")
	startGame(t, s, 2)
	clock.Advance(10 * time.Second)

	late := join(t, s, "Bob")[0]
	s.Welcome(late.ID)

	starts := rec.find(late.ID, EventQuestionStart)
	require.Len(t, starts, 1)
	payload := starts[0].(QuestionStartPayload)
	assert.Equal(t, 20, payload.TimeLimit)
	assert.Equal(t, 1, payload.QuestionNumber)
	assert.Equal(t, 2, payload.TotalQuestions)
	_, isPlayerView := payload.Question.(PlayerQuestion)
	assert.True(t, isPlayerView)

	require.NoError(t, s.SubmitAnswer(late.ID, Submission{OptionIndex: 0}))
}

func TestWelcomeAfterTimeRanOut(t *testing.T) {
	s, rec, clock := newTestSession(t)
	startGame(t, s, 1)
	clock.Advance(31 * time.Second)

	late := join(t, s, "Bob")[0]
	s.Welcome(late.ID)

	assert.Len(t, rec.find(late.ID, EventGameStart), 1)
	assert.Empty(t, rec.find(late.ID, EventQuestionStart))
}
