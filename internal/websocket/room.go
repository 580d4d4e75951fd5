package websocket

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/stemcomputerscienceclub/STEMuiz/internal/game"
)

const (
	roomQueueSize    = 256
	jobQueueSize     = 32
	collaboratorWait = 5 * time.Second
)

// Room owns one game session. Every session mutation runs on the room's loop
// goroutine; other goroutines hand work over through enqueue.
type Room struct {
	id      string
	hub     *Hub
	session *game.Session
	timer   game.QuestionTimer

	hosts   map[*Client]bool
	players map[string]*Client

	commands chan func()
	// jobs carries collaborator writes, run one at a time in order.
	jobs     chan func()
	jobsDone chan struct{}
	ctx      context.Context
	cancel   context.CancelFunc
	stopped  chan struct{}

	snapMu       sync.Mutex
	latestSnap   *game.Snapshot
	snapSignal   chan struct{}
	snapsFlushed chan struct{}
	// keepSnapshot leaves the Redis mirror in place on stop, for process
	// shutdown where the session should survive a restart.
	keepSnapshot atomic.Bool

	logger *zap.Logger
}

func (h *Hub) newRoom(id string) *Room {
	ctx, cancel := context.WithCancel(context.Background())
	r := &Room{
		id:           id,
		hub:          h,
		hosts:        make(map[*Client]bool),
		players:      make(map[string]*Client),
		commands:     make(chan func(), roomQueueSize),
		jobs:         make(chan func(), jobQueueSize),
		jobsDone:     make(chan struct{}),
		ctx:          ctx,
		cancel:       cancel,
		stopped:      make(chan struct{}),
		snapSignal:   make(chan struct{}, 1),
		snapsFlushed: make(chan struct{}),
		logger:       h.logger.With(zap.String("session_id", id)),
	}

	opts := h.gameOpts
	opts.OnSnapshot = r.mirrorSnapshot
	r.session = game.NewSession(id, r, opts)

	go r.run()
	go r.snapshotWriter()
	go r.jobWorker()
	return r
}

func (r *Room) run() {
	defer close(r.stopped)
	defer r.shutdown()

	for {
		select {
		case cmd := <-r.commands:
			cmd()
		case <-r.ctx.Done():
			return
		}
	}
}

// enqueue schedules fn on the room loop. It reports false if the room is
// already stopping.
func (r *Room) enqueue(fn func()) bool {
	select {
	case <-r.ctx.Done():
		return false
	default:
	}
	select {
	case r.commands <- fn:
		return true
	case <-r.ctx.Done():
		return false
	}
}

// background queues fn behind earlier collaborator work. Jobs queued before
// the room stops still run; later ones are dropped.
func (r *Room) background(fn func()) {
	select {
	case r.jobs <- fn:
	case <-r.ctx.Done():
	}
}

func (r *Room) jobWorker() {
	defer close(r.jobsDone)

	for {
		select {
		case job := <-r.jobs:
			job()
		case <-r.ctx.Done():
			for {
				select {
				case job := <-r.jobs:
					job()
				default:
					return
				}
			}
		}
	}
}

func (r *Room) stop() {
	r.cancel()
}

func (r *Room) shutdown() {
	r.timer.Stop()
	for c := range r.hosts {
		c.Close()
	}
	for _, c := range r.players {
		c.Close()
	}

	<-r.jobsDone
	<-r.snapsFlushed
	if r.hub.snapshots == nil {
		return
	}
	if r.keepSnapshot.Load() {
		// The loop has exited, so nothing can replace the last snapshot now.
		r.flushSnapshot()
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), collaboratorWait)
	defer cancel()
	if err := r.hub.snapshots.Delete(ctx, r.id); err != nil {
		r.logger.Warn("failed to delete snapshot", zap.Error(err))
	}
}

func (r *Room) join(c *Client) {
	if c.IsHost() {
		r.hosts[c] = true
		r.hub.rooms.CancelRemoval(r.id)
		r.logger.Info("host joined", zap.Int("hosts", len(r.hosts)))
		r.restoreHost(c)
		return
	}

	p, err := r.session.Join(c.Name)
	if err != nil {
		r.reportError(c, err)
		return
	}
	c.PlayerID = p.ID
	r.players[p.ID] = c
	r.logger.Info("player joined", zap.String("player_id", p.ID), zap.String("name", p.Name))

	r.session.Welcome(p.ID)
}

func (r *Room) restoreHost(c *Client) {
	snap := r.session.Snapshot()
	if snap == nil && r.hub.snapshots != nil {
		ctx, cancel := context.WithTimeout(r.ctx, collaboratorWait)
		defer cancel()

		var err error
		snap, err = r.hub.snapshots.Load(ctx, r.id)
		if err != nil {
			r.logger.Warn("failed to load snapshot", zap.Error(err))
		}
	}
	if snap != nil {
		c.SendMessage(MessageTypeGameRestore, snap)
	}
}

func (r *Room) leave(c *Client) {
	defer c.Close()

	switch {
	case c.IsHost() && r.hosts[c]:
		delete(r.hosts, c)
		r.logger.Info("host left", zap.Int("hosts", len(r.hosts)))
		if len(r.hosts) == 0 {
			r.hub.rooms.ScheduleRemoval(r.id)
		}
	case c.PlayerID != "" && r.players[c.PlayerID] == c:
		delete(r.players, c.PlayerID)
		r.session.Leave(c.PlayerID)
		r.logger.Info("player left", zap.String("player_id", c.PlayerID))
	}
}

// EmitHosts, EmitPlayers and EmitPlayer make the room the session's emitter.

func (r *Room) EmitHosts(event string, payload any) {
	for c := range r.hosts {
		c.SendMessage(MessageType(event), payload)
	}
}

func (r *Room) EmitPlayers(event string, payload any) {
	for _, c := range r.players {
		c.SendMessage(MessageType(event), payload)
	}
}

func (r *Room) EmitPlayer(playerID, event string, payload any) {
	if c, ok := r.players[playerID]; ok {
		c.SendMessage(MessageType(event), payload)
	}
}

func (r *Room) emitHostError(message string) {
	for c := range r.hosts {
		c.SendMessage(MessageTypeError, ErrorPayload{Message: message, Recoverable: true})
	}
}

// mirrorSnapshot keeps only the newest snapshot; the writer saves whatever is
// latest when it gets to it.
func (r *Room) mirrorSnapshot(snap game.Snapshot) {
	if r.hub.snapshots == nil {
		return
	}
	r.snapMu.Lock()
	r.latestSnap = &snap
	r.snapMu.Unlock()

	select {
	case r.snapSignal <- struct{}{}:
	default:
	}
}

func (r *Room) snapshotWriter() {
	defer close(r.snapsFlushed)

	for {
		select {
		case <-r.snapSignal:
			r.flushSnapshot()
		case <-r.ctx.Done():
			return
		}
	}
}

// flushSnapshot saves the pending snapshot, if any.
func (r *Room) flushSnapshot() {
	r.snapMu.Lock()
	snap := r.latestSnap
	r.latestSnap = nil
	r.snapMu.Unlock()
	if snap == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), collaboratorWait)
	defer cancel()
	if err := r.hub.snapshots.Save(ctx, *snap); err != nil {
		r.logger.Warn("failed to mirror snapshot", zap.Error(err))
	}
}
