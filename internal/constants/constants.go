package constants

// Persisted session statuses; the in-memory game uses the same values.
const (
	SessionStatusWaiting   = "waiting"
	SessionStatusActive    = "active"
	SessionStatusCompleted = "completed"
)

const (
	RoleHost   = "host"
	RolePlayer = "player"
)

// Routing keys published on the game events exchange.
const (
	EventGameStarted   = "game.started"
	EventGameCompleted = "game.completed"
	EventGameEnded     = "game.ended"
)

const (
	PinMaxAttempts = 10
	SnapshotKeyFmt = "game:%s:snapshot"
)
