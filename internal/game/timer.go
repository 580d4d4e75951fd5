package game

import (
	"sync"
	"time"
)

// QuestionTimer runs at most one countdown at a time. Starting a new countdown
// or calling Stop cancels the previous one.
type QuestionTimer struct {
	mu    sync.Mutex
	timer *time.Timer
}

// Start calls fire(index) once d has elapsed. fire runs on its own goroutine,
// so callers hand the work back to the session owner.
func (t *QuestionTimer) Start(index int, d time.Duration, fire func(index int)) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.timer != nil {
		t.timer.Stop()
	}
	t.timer = time.AfterFunc(d, func() { fire(index) })
}

func (t *QuestionTimer) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
}
