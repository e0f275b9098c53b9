package server

import (
	"context"
	"math"
	"math/rand"
	"time"

	"orb-arena/server/logging"
	loggingmatch "orb-arena/server/logging/match"
)

// CommandType enumerates the supported simulation commands.
type CommandType string

const (
	CommandMove      CommandType = "Move"
	CommandAim       CommandType = "Aim"
	CommandPress     CommandType = "Press"
	CommandRelease   CommandType = "Release"
	CommandHeartbeat CommandType = "Heartbeat"
)

// ActionSlot names the three ability inputs every archetype binds.
type ActionSlot string

const (
	SlotPrimary   ActionSlot = "primary"
	SlotSecondary ActionSlot = "secondary"
	SlotSkill     ActionSlot = "skill"
)

func parseActionSlot(value string) (ActionSlot, bool) {
	switch ActionSlot(value) {
	case SlotPrimary, SlotSecondary, SlotSkill:
		return ActionSlot(value), true
	default:
		return "", false
	}
}

// Command represents an intent captured for processing on the next tick.
// The AI path emits the exact same shape as the input path.
type Command struct {
	OriginTick uint64
	ActorID    string
	Type       CommandType
	IssuedAt   time.Time
	Move       *MoveCommand
	Aim        *AimCommand
	Action     *ActionCommand
	Heartbeat  *HeartbeatCommand
}

// MoveCommand carries the desired movement vector.
type MoveCommand struct {
	DX float64
	DY float64
}

// AimCommand carries the pointer's world position.
type AimCommand struct {
	X float64
	Y float64
}

// ActionCommand carries a press or release edge for an ability slot.
type ActionCommand struct {
	Slot ActionSlot
}

// HeartbeatCommand updates connectivity metadata for the player.
type HeartbeatCommand struct {
	ReceivedAt time.Time
	ClientSent int64
}

// Ability cooldown keys.
const (
	abilityFlask      = "flask"
	abilityDetonate   = "detonate"
	abilityModeToggle = "mode-toggle"
	abilityDrone      = "drone"
	abilitySlam       = "slam"
	abilityBash       = "bash"
	abilityYowl       = "yowl"
	abilityMark       = "mark"
)

// Phase is the match lifecycle.
type Phase string

const (
	PhaseActive  Phase = "active"
	PhaseVictory Phase = "victory"
	PhaseDefeat  Phase = "defeat"
)

// World owns the authoritative simulation state. It is only ever touched by
// the tick function; the hub serializes access with its own mutex.
type World struct {
	units    map[string]*unitState
	playerID string
	enemyID  string

	projectiles   []*projectileState
	groundEffects []*groundEffectState
	drones        map[string]*droneState
	obstacles     []Obstacle

	soundTriggers []SoundTrigger

	nextProjectileID uint64
	nextZoneID       uint64
	nextDroneID      uint64

	config      WorldConfig
	rng         *rand.Rand
	publisher   logging.Publisher
	currentTick uint64
	phase       Phase

	camera  vec2
	pointer vec2
}

// newWorld builds a fresh duel from the config.
func newWorld(cfg WorldConfig, publisher logging.Publisher) *World {
	normalized := cfg.normalized()
	if publisher == nil {
		publisher = logging.NopPublisher()
	}

	w := &World{
		units:     make(map[string]*unitState),
		drones:    make(map[string]*droneState),
		config:    normalized,
		rng:       rand.New(rand.NewSource(int64(seedHash(normalized.Seed)))),
		publisher: publisher,
		phase:     PhaseActive,
		playerID:  "unit-player",
		enemyID:   "unit-enemy",
	}
	if normalized.Obstacles {
		w.obstacles = defaultArenaObstacles()
	}

	player := newUnitState(w.playerID, normalized.PlayerArchetype, normalized.Stats.For(normalized.PlayerArchetype), spawnPoints[0])
	enemy := newUnitState(w.enemyID, normalized.EnemyArchetype, normalized.Stats.For(normalized.EnemyArchetype), spawnPoints[1])
	enemy.ai = newAIState()
	w.units[player.ID] = player
	w.units[enemy.ID] = enemy
	w.camera = player.pos()

	loggingmatch.Started(
		context.Background(),
		w.publisher,
		0,
		loggingmatch.StartedPayload{
			PlayerArchetype: string(normalized.PlayerArchetype),
			EnemyArchetype:  string(normalized.EnemyArchetype),
			Seed:            normalized.Seed,
		},
		nil,
	)
	return w
}

func seedHash(seed string) uint64 {
	// FNV-1a keeps equal seeds deterministic without importing hash/fnv's
	// streaming interface for four lines of work.
	var h uint64 = 14695981039346656037
	for i := 0; i < len(seed); i++ {
		h ^= uint64(seed[i])
		h *= 1099511628211
	}
	return h
}

// unitOrder returns unit ids in the fixed player-before-enemy order used
// wherever ordering matters.
func (w *World) unitOrder() [2]string {
	return [2]string{w.playerID, w.enemyID}
}

// opponentOf resolves the other duelist.
func (w *World) opponentOf(id string) *unitState {
	if id == w.playerID {
		return w.units[w.enemyID]
	}
	return w.units[w.playerID]
}

// stats hands back the archetype's stat block; nil units fall back to the
// bruiser table so callers always get sane numbers.
func (w *World) stats(unit *unitState) ArchetypeStats {
	if unit == nil {
		return w.config.Stats.Bruiser
	}
	return w.config.Stats.For(unit.Archetype)
}

// applyStatTables swaps in new balance numbers mid-match. Base fields are
// refreshed immediately; current health is clamped rather than rescaled.
func (w *World) applyStatTables(tables StatTables) {
	if w == nil {
		return
	}
	w.config.Stats = tables
	for _, unit := range w.units {
		stats := tables.For(unit.Archetype)
		unit.speed = stats.Speed
		unit.Mass = stats.Mass
		unit.Radius = stats.Radius
		unit.MaxHealth = stats.MaxHealth
		if unit.Health > unit.MaxHealth {
			unit.Health = unit.MaxHealth
		}
	}
}

// Step advances the simulation by one tick: player commands and ability
// machines, then AI, physics, ephemeral objects, statuses, and finally the
// win/loss check.
func (w *World) Step(tick uint64, now time.Time, dt float64, commands []Command) {
	if dt <= 0 {
		dt = 1.0 / float64(tickRate)
	}
	if dt > maxDelta {
		dt = maxDelta
	}
	w.currentTick = tick

	for _, cmd := range commands {
		w.applyCommand(cmd, now)
	}
	if w.phase == PhaseActive {
		for _, cmd := range w.runAI(tick, now) {
			w.applyCommand(cmd, now)
		}
	}

	for _, id := range w.unitOrder() {
		unit, ok := w.units[id]
		if !ok || !unit.Alive {
			continue
		}
		w.advanceKit(unit, dt, now)
	}

	for _, id := range w.unitOrder() {
		unit, ok := w.units[id]
		if !ok {
			continue
		}
		w.applyMovementIntent(unit, dt)
		w.integrateUnit(unit, dt)
		w.resolveObstacleCollisions(unit, now)
	}
	w.resolveUnitCollision(w.units[w.playerID], w.units[w.enemyID], now)
	for _, id := range w.unitOrder() {
		if unit, ok := w.units[id]; ok {
			w.resolveObstacleCollisions(unit, now)
		}
	}

	w.advanceProjectiles(dt, now)
	w.advanceGroundEffects(dt, now)
	w.advanceDrones(dt, now)

	w.advanceStatusEffects(dt, now)

	w.updateCamera(dt)
	w.checkMatchEnd()
}

// applyCommand routes one intent into the world. Dead units and unknown
// actors are silently ignored.
func (w *World) applyCommand(cmd Command, now time.Time) {
	unit, ok := w.units[cmd.ActorID]
	if !ok {
		return
	}

	switch cmd.Type {
	case CommandMove:
		if cmd.Move == nil || !unit.Alive {
			return
		}
		dx, dy := cmd.Move.DX, cmd.Move.DY
		length := math.Hypot(dx, dy)
		if length > 1 {
			dx /= length
			dy /= length
		}
		unit.intentX = dx
		unit.intentY = dy
		if dx != 0 || dy != 0 {
			unit.Facing = angleOf(dx, dy)
		}
		if !cmd.IssuedAt.IsZero() {
			unit.lastInput = cmd.IssuedAt
		} else {
			unit.lastInput = now
		}

	case CommandAim:
		if cmd.Aim == nil || !unit.Alive {
			return
		}
		unit.aim = vec2{X: cmd.Aim.X, Y: cmd.Aim.Y}
		offset := unit.aim.sub(unit.pos())
		if offset.length() > 0 {
			unit.Aim = angleOf(offset.X, offset.Y)
		}
		if cmd.ActorID == w.playerID {
			w.pointer = unit.aim
		}

	case CommandPress:
		if cmd.Action == nil || !unit.Alive || !unit.status.canAct() {
			return
		}
		w.handleActionPress(unit, cmd.Action.Slot, now)

	case CommandRelease:
		if cmd.Action == nil || !unit.Alive {
			return
		}
		w.handleActionRelease(unit, cmd.Action.Slot, now)

	case CommandHeartbeat:
		if cmd.Heartbeat == nil {
			return
		}
		unit.lastHeartbeat = cmd.Heartbeat.ReceivedAt
	}
}

// handleActionPress is the single per-archetype dispatch point for press
// edges; release edges mirror it below.
func (w *World) handleActionPress(unit *unitState, slot ActionSlot, now time.Time) {
	switch unit.Archetype {
	case ArchetypePyro:
		w.pyroPress(unit, slot, now)
	case ArchetypeGunner:
		w.gunnerPress(unit, slot, now)
	case ArchetypeBruiser:
		w.bruiserPress(unit, slot, now)
	case ArchetypeStray:
		w.strayPress(unit, slot, now)
	}
}

func (w *World) handleActionRelease(unit *unitState, slot ActionSlot, now time.Time) {
	switch unit.Archetype {
	case ArchetypePyro:
		w.pyroRelease(unit, slot, now)
	case ArchetypeGunner:
		w.gunnerRelease(unit, slot, now)
	case ArchetypeBruiser:
		w.bruiserRelease(unit, slot, now)
	case ArchetypeStray:
		w.strayRelease(unit, slot, now)
	}
}

// advanceKit runs the per-tick half of each archetype's state machine.
func (w *World) advanceKit(unit *unitState, dt float64, now time.Time) {
	switch unit.Archetype {
	case ArchetypePyro:
		w.advancePyro(unit, dt, now)
	case ArchetypeGunner:
		w.advanceGunner(unit, dt, now)
	case ArchetypeBruiser:
		w.advanceBruiser(unit, dt, now)
	case ArchetypeStray:
		w.advanceStray(unit, dt, now)
	}
}

// WorldSnapshot is the read-only view handed to the render collaborator.
type WorldSnapshot struct {
	Tick          uint64         `json:"t"`
	Phase         Phase          `json:"phase"`
	Units         []Unit         `json:"units"`
	Projectiles   []Projectile   `json:"projectiles,omitempty"`
	GroundEffects []GroundEffect `json:"groundEffects,omitempty"`
	Drones        []Drone        `json:"drones,omitempty"`
	Obstacles     []Obstacle     `json:"obstacles"`
	Camera        vec2           `json:"camera"`
}

// Snapshot copies the live collections into broadcast-friendly structs.
func (w *World) Snapshot() WorldSnapshot {
	snapshot := WorldSnapshot{
		Tick:      w.currentTick,
		Phase:     w.phase,
		Units:     make([]Unit, 0, len(w.units)),
		Obstacles: append([]Obstacle(nil), w.obstacles...),
		Camera:    w.camera,
	}
	for _, id := range w.unitOrder() {
		unit, ok := w.units[id]
		if !ok {
			continue
		}
		view := unit.snapshot()
		if view.Pyro != nil {
			view.Pyro.Pools = w.pyroPoolCount(id)
		}
		snapshot.Units = append(snapshot.Units, view)
	}
	for _, proj := range w.projectiles {
		if proj.life > 0 {
			snapshot.Projectiles = append(snapshot.Projectiles, proj.Projectile)
		}
	}
	for _, zone := range w.groundEffects {
		if zone.life > 0 {
			view := zone.GroundEffect
			view.Life = zone.life
			snapshot.GroundEffects = append(snapshot.GroundEffects, view)
		}
	}
	for _, drone := range w.drones {
		snapshot.Drones = append(snapshot.Drones, drone.Drone)
	}
	return snapshot
}
