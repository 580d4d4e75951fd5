package game

import "errors"

// Protocol errors terminate the offending connection.
var (
	ErrMissingSessionID = errors.New("session ID is required")
	ErrInvalidRole      = errors.New("role must be host or player")
	ErrMissingName      = errors.New("player name is required")
	ErrDuplicateName    = errors.New("name already taken")
	ErrUnauthorized     = errors.New("not allowed to host this session")
)

// State errors are reported to the caller and leave the session untouched.
var (
	ErrNoActiveQuestion     = errors.New("no active question")
	ErrNoQuestions          = errors.New("quiz has no questions")
	ErrInvalidQuiz          = errors.New("invalid quiz data")
	ErrGameNotActive        = errors.New("game is not active")
	ErrGameAlreadyStarted   = errors.New("game has already started")
	ErrInvalidQuestionIndex = errors.New("invalid question index")
	ErrUnknownPlayer        = errors.New("player is not part of this session")
	ErrInvalidOption        = errors.New("option index out of range")
	ErrHostOnly             = errors.New("only the host can do that")
)

// IsProtocolError reports whether err must close the connection that caused it.
func IsProtocolError(err error) bool {
	return errors.Is(err, ErrMissingSessionID) ||
		errors.Is(err, ErrInvalidRole) ||
		errors.Is(err, ErrMissingName) ||
		errors.Is(err, ErrDuplicateName) ||
		errors.Is(err, ErrUnauthorized)
}
