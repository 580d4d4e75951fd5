package websocket

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/stemcomputerscienceclub/STEMuiz/internal/game"
	"github.com/stemcomputerscienceclub/STEMuiz/internal/models"
	"github.com/stemcomputerscienceclub/STEMuiz/internal/registry"
)

// SessionStore is the persisted side of a session.
type SessionStore interface {
	UpdateStatus(ctx context.Context, id, status string) error
	DeleteSession(ctx context.Context, id string) error
}

// SnapshotStore mirrors game snapshots outside the process.
type SnapshotStore interface {
	Save(ctx context.Context, snap game.Snapshot) error
	Load(ctx context.Context, sessionID string) (*game.Snapshot, error)
	Delete(ctx context.Context, sessionID string) error
}

type EventPublisher interface {
	Publish(ctx context.Context, routingKey string, event any) error
}

type ClientMessage struct {
	Client  *Client
	Message InboundMessage
}

// HubConfig wires the hub to its collaborators. Sessions, Snapshots and
// Events are optional.
type HubConfig struct {
	Sessions  SessionStore
	Snapshots SnapshotStore
	Events    EventPublisher
	Game      game.Options
	GCDelay   time.Duration
	Logger    *zap.Logger
}

type Hub struct {
	Register      chan *Client
	Unregister    chan *Client
	HandleMessage chan *ClientMessage

	rooms *registry.Registry[*Room]

	sessions  SessionStore
	snapshots SnapshotStore
	events    EventPublisher
	gameOpts  game.Options

	logger *zap.Logger
	done   chan struct{}
}

func NewHub(cfg HubConfig) *Hub {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	h := &Hub{
		Register:      make(chan *Client),
		Unregister:    make(chan *Client),
		HandleMessage: make(chan *ClientMessage),
		sessions:      cfg.Sessions,
		snapshots:     cfg.Snapshots,
		events:        cfg.Events,
		gameOpts:      cfg.Game,
		logger:        logger,
		done:          make(chan struct{}),
	}
	h.rooms = registry.New(cfg.GCDelay, h.newRoom, func(id string, room *Room) {
		h.logger.Info("session removed", zap.String("session_id", id))
		room.stop()
	})
	return h
}

// Run routes connection events to their rooms until ctx is cancelled, then
// shuts every room down.
func (h *Hub) Run(ctx context.Context) {
	defer h.shutdown()

	for {
		select {
		case client := <-h.Register:
			h.registerClient(client)

		case client := <-h.Unregister:
			h.unregisterClient(client)

		case clientMsg := <-h.HandleMessage:
			h.handleClientMessage(clientMsg)

		case <-ctx.Done():
			return
		}
	}
}

func (h *Hub) registerClient(client *Client) {
	room, created := h.rooms.GetOrCreate(client.SessionID)
	if created {
		h.logger.Info("session created", zap.String("session_id", client.SessionID))
		if !client.IsHost() {
			// Hostless sessions are collected unless a host shows up.
			h.rooms.ScheduleRemoval(client.SessionID)
		}
	}
	client.logger.Debug("client registered", zap.String("name", client.Name))

	if !room.enqueue(func() { room.join(client) }) {
		client.SendError("Session is closing")
		client.Close()
	}
}

func (h *Hub) unregisterClient(client *Client) {
	room, ok := h.rooms.Get(client.SessionID)
	if !ok {
		client.Close()
		return
	}
	if !room.enqueue(func() { room.leave(client) }) {
		client.Close()
	}
	client.logger.Debug("client unregistered", zap.String("player_id", client.PlayerID))
}

func (h *Hub) handleClientMessage(clientMsg *ClientMessage) {
	client := clientMsg.Client
	room, ok := h.rooms.Get(client.SessionID)
	if !ok {
		client.SendError("Session not found")
		return
	}
	room.enqueue(func() { room.handleMessage(client, clientMsg.Message) })
}

// SessionCount reports how many sessions are live.
func (h *Hub) SessionCount() int {
	return h.rooms.Len()
}

// Done is closed once Run has returned and all rooms are stopped.
func (h *Hub) Done() <-chan struct{} {
	return h.done
}

func (h *Hub) shutdown() {
	rooms := make(map[string]*Room)
	h.rooms.Each(func(id string, room *Room) {
		room.keepSnapshot.Store(true)
		rooms[id] = room
	})
	for id, room := range rooms {
		h.rooms.Remove(id)
		<-room.stopped
	}
	close(h.done)
}

func (h *Hub) publish(routingKey string, event any) {
	if h.events == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := h.events.Publish(ctx, routingKey, event); err != nil {
		h.logger.Warn("failed to publish game event", zap.String("routing_key", routingKey), zap.Error(err))
	}
}

func finalResults(board []game.LeaderboardEntry) []models.FinalResult {
	out := make([]models.FinalResult, len(board))
	for i, e := range board {
		out[i] = models.FinalResult{
			PlayerID:       e.ID,
			Name:           e.Name,
			Score:          e.Score,
			CorrectAnswers: e.CorrectAnswers,
			Position:       e.Position,
		}
	}
	return out
}
