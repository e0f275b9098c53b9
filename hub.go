package server

import (
	"encoding/json"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"orb-arena/server/logging"
)

// Hub owns the authoritative world and every live subscriber. All world
// access funnels through the hub mutex; the tick loop is the only writer.
type Hub struct {
	mu          sync.Mutex
	world       *World
	pending     []Command
	subscribers map[string]*subscriber
	nextSub     atomic.Uint64

	cfg       WorldConfig
	publisher logging.Publisher

	lastRTT time.Duration
}

type subscriber struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

// NewHub builds a hub with a fresh duel.
func NewHub(cfg WorldConfig, publisher logging.Publisher) *Hub {
	normalized := cfg.normalized()
	return &Hub{
		world:       newWorld(normalized, publisher),
		subscribers: make(map[string]*subscriber),
		cfg:         normalized,
		publisher:   publisher,
	}
}

// Join restarts the duel with the requested archetype and hands back the
// player id plus the opening snapshot.
func (h *Hub) Join(archetype string) joinResponse {
	h.mu.Lock()
	defer h.mu.Unlock()

	if parsed, ok := parseArchetype(archetype); ok {
		h.cfg.PlayerArchetype = parsed
	}
	h.world = newWorld(h.cfg, h.publisher)
	h.pending = h.pending[:0]

	return joinResponse{
		ID:        h.world.playerID,
		Snapshot:  h.world.Snapshot(),
		Config:    h.cfg,
		TickRate:  tickRate,
		Heartbeat: heartbeatInterval.Milliseconds(),
	}
}

// Restart rebuilds the world with the current config. Valid in any phase;
// clients offer it on the victory and defeat screens.
func (h *Hub) Restart() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.world = newWorld(h.cfg, h.publisher)
	h.pending = h.pending[:0]
}

// Subscribe attaches a WebSocket connection and returns the current snapshot.
func (h *Hub) Subscribe(conn *websocket.Conn) (*subscriber, string, WorldSnapshot) {
	h.mu.Lock()
	defer h.mu.Unlock()

	id := h.world.playerID
	if existing, ok := h.subscribers[id]; ok {
		existing.conn.Close()
	}
	sub := &subscriber{conn: conn}
	h.subscribers[id] = sub
	if player, ok := h.world.units[id]; ok {
		player.lastHeartbeat = time.Now()
	}
	return sub, id, h.world.Snapshot()
}

// Disconnect drops the subscriber for an id and closes its connection.
func (h *Hub) Disconnect(id string) {
	h.mu.Lock()
	sub, ok := h.subscribers[id]
	if ok {
		delete(h.subscribers, id)
	}
	h.mu.Unlock()
	if ok {
		sub.conn.Close()
	}
}

// queueCommand appends an intent for the next tick.
func (h *Hub) queueCommand(cmd Command) {
	h.mu.Lock()
	h.pending = append(h.pending, cmd)
	h.mu.Unlock()
}

// UpdateIntent stores the latest movement vector for the player.
func (h *Hub) UpdateIntent(id string, dx, dy float64) {
	h.queueCommand(Command{
		ActorID:  id,
		Type:     CommandMove,
		IssuedAt: time.Now(),
		Move:     &MoveCommand{DX: dx, DY: dy},
	})
}

// UpdateAim stores the pointer's world position for the player.
func (h *Hub) UpdateAim(id string, x, y float64) {
	h.queueCommand(Command{
		ActorID:  id,
		Type:     CommandAim,
		IssuedAt: time.Now(),
		Aim:      &AimCommand{X: x, Y: y},
	})
}

// PressAction queues a press edge for an ability slot.
func (h *Hub) PressAction(id, slot string) bool {
	parsed, ok := parseActionSlot(slot)
	if !ok {
		return false
	}
	h.queueCommand(Command{
		ActorID:  id,
		Type:     CommandPress,
		IssuedAt: time.Now(),
		Action:   &ActionCommand{Slot: parsed},
	})
	return true
}

// ReleaseAction queues a release edge for an ability slot.
func (h *Hub) ReleaseAction(id, slot string) bool {
	parsed, ok := parseActionSlot(slot)
	if !ok {
		return false
	}
	h.queueCommand(Command{
		ActorID:  id,
		Type:     CommandRelease,
		IssuedAt: time.Now(),
		Action:   &ActionCommand{Slot: parsed},
	})
	return true
}

// UpdateHeartbeat records the heartbeat and returns the measured RTT.
func (h *Hub) UpdateHeartbeat(id string, receivedAt time.Time, clientSent int64) time.Duration {
	h.queueCommand(Command{
		ActorID:   id,
		Type:      CommandHeartbeat,
		IssuedAt:  receivedAt,
		Heartbeat: &HeartbeatCommand{ReceivedAt: receivedAt, ClientSent: clientSent},
	})

	var rtt time.Duration
	if clientSent > 0 {
		clientTime := time.UnixMilli(clientSent)
		if clientTime.Before(receivedAt.Add(5 * time.Second)) {
			rtt = receivedAt.Sub(clientTime)
			if rtt < 0 {
				rtt = 0
			}
			h.mu.Lock()
			h.lastRTT = rtt
			h.mu.Unlock()
		}
	}
	return rtt
}

// ApplyStatTables swaps in a hot-reloaded balance table.
func (h *Hub) ApplyStatTables(tables StatTables) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.cfg.Stats = tables
	h.world.applyStatTables(tables)
}

// advance runs one simulation step and returns the broadcast payload plus
// subscribers that timed out on heartbeats.
func (h *Hub) advance(tick uint64, now time.Time, dt float64) (stateMessage, []*subscriber) {
	h.mu.Lock()

	toClose := make([]*subscriber, 0)
	if player, ok := h.world.units[h.world.playerID]; ok && !player.lastHeartbeat.IsZero() {
		if now.Sub(player.lastHeartbeat) > disconnectAfter {
			if sub, ok := h.subscribers[player.ID]; ok {
				toClose = append(toClose, sub)
				delete(h.subscribers, player.ID)
				log.Printf("dropping subscriber %s after heartbeat timeout", player.ID)
			}
			player.lastHeartbeat = time.Time{}
		}
	}

	commands := h.pending
	h.pending = nil
	h.world.Step(tick, now, dt, commands)

	msg := stateMessage{
		Type:       "state",
		Snapshot:   h.world.Snapshot(),
		Sounds:     h.world.flushSoundTriggers(),
		ServerTime: now.UnixMilli(),
	}
	h.mu.Unlock()
	return msg, toClose
}

// RunSimulation drives the fixed-rate tick loop until the stop channel closes.
func (h *Hub) RunSimulation(stop <-chan struct{}) {
	ticker := time.NewTicker(time.Second / tickRate)
	defer ticker.Stop()

	last := time.Now()
	var tick uint64
	for {
		select {
		case <-stop:
			return
		case now := <-ticker.C:
			dt := now.Sub(last).Seconds()
			if dt <= 0 {
				dt = 1.0 / float64(tickRate)
			}
			last = now
			tick++

			msg, toClose := h.advance(tick, now, dt)
			for _, sub := range toClose {
				sub.conn.Close()
			}
			h.broadcastState(msg)
		}
	}
}

// broadcastState sends one tick's snapshot to every subscriber.
func (h *Hub) broadcastState(msg stateMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		log.Printf("failed to marshal state message: %v", err)
		return
	}

	h.mu.Lock()
	subs := make(map[string]*subscriber, len(h.subscribers))
	for id, sub := range h.subscribers {
		subs[id] = sub
	}
	h.mu.Unlock()

	for id, sub := range subs {
		sub.mu.Lock()
		sub.conn.SetWriteDeadline(time.Now().Add(writeWait))
		err := sub.conn.WriteMessage(websocket.TextMessage, data)
		sub.mu.Unlock()
		if err != nil {
			log.Printf("failed to send update to %s: %v", id, err)
			h.Disconnect(id)
		}
	}
}

// DiagnosticsSnapshot exposes loop health for the diagnostics endpoint.
func (h *Hub) DiagnosticsSnapshot() diagnosticsPayload {
	h.mu.Lock()
	defer h.mu.Unlock()

	payload := diagnosticsPayload{
		Status:      "ok",
		ServerTime:  time.Now().UnixMilli(),
		Tick:        h.world.currentTick,
		Phase:       h.world.phase,
		TickRate:    tickRate,
		Heartbeat:   heartbeatInterval.Milliseconds(),
		RTTMillis:   h.lastRTT.Milliseconds(),
		Subscribers: len(h.subscribers),
	}
	if player, ok := h.world.units[h.world.playerID]; ok {
		payload.LastHeartbeat = player.lastHeartbeat.UnixMilli()
	}
	return payload
}
