package server

import (
	"math"
	"time"
)

const (
	aiDecisionDelayMin   = 6
	aiDecisionDelayMax   = 14
	aiStuckWindowTicks   = 30
	aiStuckDistance      = 9.0
	aiEscapeTicks        = 40
	aiLookaheadDistance  = 72.0
	aiAimLeadFactor      = 0.22
	aiAimTolerance       = 0.35
	aiRetreatHealthFrac  = 0.3
	aiDroneThreatRange   = 160.0
	aiDroneFocusFar      = 320.0
	aiPyroEngageFactor   = 0.8
	aiGunnerRifleRange   = 420.0
	aiGunnerScatterRange = 190.0
	aiStrayPounceRange   = 260.0
	aiStrayYowlCrowd     = 110.0
)

// abilityReady resolves the ability's cooldown from the stat block and
// checks it against the unit's cooldown map.
func (w *World) abilityReady(unit *unitState, name string, now time.Time) bool {
	stats := w.stats(unit)
	var seconds float64
	switch name {
	case abilityFlask:
		seconds = stats.Pyro.FlaskCooldown
	case abilityDetonate:
		seconds = stats.Pyro.DetonateCooldown
	case abilityModeToggle:
		seconds = stats.Gunner.ModeCooldown
	case abilityDrone:
		seconds = stats.Gunner.DroneCooldown
	case abilitySlam:
		seconds = stats.Bruiser.SlamCooldown
	case abilityBash:
		seconds = stats.Bruiser.BashCooldown
	case abilityYowl:
		seconds = stats.Stray.YowlCooldown
	case abilityMark:
		seconds = stats.Stray.MarkCooldown
	}
	return !unit.onCooldown(name, secondsToDuration(seconds), now)
}

// aiState is the blackboard for the scripted opponent. Movement decisions
// persist between decision ticks; ability edges are emitted immediately.
type aiState struct {
	nextDecisionTick uint64
	moveDir          vec2
	held             map[ActionSlot]uint64
	lastPos          vec2
	stuckSince       uint64
	escapeDir        vec2
	escapeUntilTick  uint64
}

func newAIState() *aiState {
	return &aiState{held: make(map[ActionSlot]uint64)}
}

// runAI drives every unit that carries an aiState. The output is ordinary
// commands, indistinguishable from the player's input path.
func (w *World) runAI(tick uint64, now time.Time) []Command {
	if w == nil {
		return nil
	}
	var commands []Command
	for _, id := range w.unitOrder() {
		unit, ok := w.units[id]
		if !ok || unit.ai == nil || !unit.Alive {
			continue
		}
		commands = append(commands, w.runUnitAI(unit, tick, now)...)
	}
	return commands
}

// aiTarget is what the brain aims and attacks at: the opponent, or a
// hostile drone that slipped close while the opponent sits far away.
type aiTarget struct {
	pos   vec2
	vel   vec2
	alive bool
	drone bool
}

// aiSelectTarget cedes focus to a nearby hostile drone when the opponent
// is well outside engagement distance. Attacks against either go through
// the same command path.
func (w *World) aiSelectTarget(unit, opponent *unitState) aiTarget {
	focus := aiTarget{
		pos:   opponent.pos(),
		vel:   vec2{X: opponent.VX, Y: opponent.VY},
		alive: opponent.Alive,
	}
	at, ok := w.aiNearestHostileDrone(unit)
	if !ok {
		return focus
	}
	oppDist := focus.pos.sub(unit.pos()).length()
	droneDist := at.sub(unit.pos()).length()
	if droneDist < oppDist && oppDist > aiDroneFocusFar {
		return aiTarget{pos: at, alive: true, drone: true}
	}
	return focus
}

func (w *World) runUnitAI(unit *unitState, tick uint64, now time.Time) []Command {
	ai := unit.ai
	target := w.opponentOf(unit.ID)
	if target == nil {
		return nil
	}
	focus := w.aiSelectTarget(unit, target)

	commands := make([]Command, 0, 4)

	// Scheduled releases fire regardless of the decision cadence so charge
	// holds land at the intended ratio.
	for slot, releaseTick := range ai.held {
		if releaseTick <= tick {
			delete(ai.held, slot)
			commands = append(commands, Command{
				OriginTick: tick,
				ActorID:    unit.ID,
				Type:       CommandRelease,
				IssuedAt:   now,
				Action:     &ActionCommand{Slot: slot},
			})
		}
	}

	aimPoint := w.aiAimPoint(focus)
	commands = append(commands, Command{
		OriginTick: tick,
		ActorID:    unit.ID,
		Type:       CommandAim,
		IssuedAt:   now,
		Aim:        &AimCommand{X: aimPoint.X, Y: aimPoint.Y},
	})

	if ai.nextDecisionTick <= tick {
		ai.moveDir = w.aiMoveDirection(unit, focus, tick)
		ai.nextDecisionTick = tick + aiDecisionDelayMin + uint64(w.rng.Intn(aiDecisionDelayMax-aiDecisionDelayMin+1))
	}
	commands = append(commands, Command{
		OriginTick: tick,
		ActorID:    unit.ID,
		Type:       CommandMove,
		IssuedAt:   now,
		Move:       &MoveCommand{DX: ai.moveDir.X, DY: ai.moveDir.Y},
	})

	if focus.alive && unit.status.canAct() {
		commands = append(commands, w.aiAttackCommands(unit, focus, tick, now)...)
	}

	return commands
}

// aiAimPoint leads the target by a fraction of its velocity so projectile
// kits connect against a moving opponent.
func (w *World) aiAimPoint(focus aiTarget) vec2 {
	lead := focus.vel.scale(aiAimLeadFactor)
	point := focus.pos.add(lead)
	point.X = clamp(point.X, 0, arenaWidth)
	point.Y = clamp(point.Y, 0, arenaHeight)
	return point
}

// aiDesiredRange is the range band each kit tries to hold.
func (w *World) aiDesiredRange(unit *unitState) float64 {
	stats := w.stats(unit)
	switch unit.Archetype {
	case ArchetypePyro:
		if unit.pyro != nil && unit.pyro.overheated {
			return stats.Pyro.FlameReachMax * 1.6
		}
		return stats.Pyro.FlameReachMax * aiPyroEngageFactor
	case ArchetypeGunner:
		if unit.gunner != nil && unit.gunner.mode == ModeScatter {
			return aiGunnerScatterRange
		}
		return aiGunnerRifleRange
	case ArchetypeStray:
		return aiStrayPounceRange * 0.7
	default:
		return w.stats(unit).Bruiser.ComboReach * 0.8
	}
}

func (w *World) aiMoveDirection(unit *unitState, focus aiTarget, tick uint64) vec2 {
	ai := unit.ai
	pos := unit.pos()

	// Stuck detection: if the intent was nonzero but the unit barely moved
	// over the window, sidestep for a while before re-seeking.
	if ai.escapeUntilTick > tick {
		return ai.escapeDir
	}
	if tick >= ai.stuckSince+aiStuckWindowTicks {
		moved := pos.sub(ai.lastPos).length()
		if (ai.moveDir.X != 0 || ai.moveDir.Y != 0) && moved < aiStuckDistance {
			angle := angleOf(ai.moveDir.X, ai.moveDir.Y) + math.Pi/2
			if w.rng.Intn(2) == 0 {
				angle -= math.Pi
			}
			ai.escapeDir = vec2{X: math.Cos(angle), Y: math.Sin(angle)}
			ai.escapeUntilTick = tick + aiEscapeTicks
			ai.lastPos = pos
			ai.stuckSince = tick
			return ai.escapeDir
		}
		ai.lastPos = pos
		ai.stuckSince = tick
	}

	toTarget := focus.pos.sub(pos)
	dist := toTarget.length()
	desired := w.aiDesiredRange(unit)
	lowHealth := unit.Health < unit.MaxHealth*aiRetreatHealthFrac

	var dir vec2
	switch {
	case !focus.alive:
		return vec2{}
	case lowHealth && unit.Archetype != ArchetypeBruiser && dist < desired*1.4:
		dir = toTarget.scale(-1).normalized()
	case dist > desired*1.1:
		dir = toTarget.normalized()
	case dist < desired*0.7:
		dir = toTarget.scale(-1).normalized()
	default:
		// Strafe around the band instead of standing still.
		perp := vec2{X: -toTarget.Y, Y: toTarget.X}.normalized()
		if w.rng.Intn(2) == 0 {
			perp = perp.scale(-1)
		}
		dir = perp
	}

	// Step away from a hostile drone that got inside its own firing orbit,
	// unless the drone is the thing being attacked.
	if threat, ok := w.aiNearestHostileDrone(unit); ok && !focus.drone {
		away := pos.sub(threat).normalized()
		dir = dir.add(away.scale(0.6)).normalized()
	}

	return w.aiAvoidObstacles(pos, dir)
}

func (w *World) aiNearestHostileDrone(unit *unitState) (vec2, bool) {
	best := aiDroneThreatRange
	var at vec2
	found := false
	for _, drone := range w.drones {
		if drone.OwnerID == unit.ID {
			continue
		}
		d := distance(unit.X, unit.Y, drone.X, drone.Y)
		if d < best {
			best = d
			at = vec2{X: drone.X, Y: drone.Y}
			found = true
		}
	}
	return at, found
}

// aiAvoidObstacles nudges the direction away from blocking walls on the
// lookahead point. Water is left alone; the slow is not worth rerouting.
func (w *World) aiAvoidObstacles(pos, dir vec2) vec2 {
	if dir.length() == 0 {
		return dir
	}
	ahead := pos.add(dir.scale(aiLookaheadDistance))
	for _, obstacle := range w.obstacles {
		if !obstacle.blocksMovement() {
			continue
		}
		if !circleRectOverlap(ahead.X, ahead.Y, 20, obstacle) {
			continue
		}
		away := pos.sub(obstacle.center()).normalized()
		dir = dir.add(away).normalized()
		break
	}
	return dir
}

// aiFacing reports whether the unit's aim is close enough to land a
// directional attack.
func aiFacing(unit *unitState, at vec2) bool {
	to := at.sub(unit.pos())
	if to.length() == 0 {
		return true
	}
	return math.Abs(angleDiff(unit.Aim, angleOf(to.X, to.Y))) < aiAimTolerance
}

func (w *World) aiAttackCommands(unit *unitState, focus aiTarget, tick uint64, now time.Time) []Command {
	switch unit.Archetype {
	case ArchetypePyro:
		return w.aiPyroAttacks(unit, focus, tick, now)
	case ArchetypeGunner:
		return w.aiGunnerAttacks(unit, focus, tick, now)
	case ArchetypeBruiser:
		return w.aiBruiserAttacks(unit, focus, tick, now)
	case ArchetypeStray:
		return w.aiStrayAttacks(unit, focus, tick, now)
	}
	return nil
}

func aiPress(unit *unitState, slot ActionSlot, tick uint64, now time.Time) Command {
	return Command{
		OriginTick: tick,
		ActorID:    unit.ID,
		Type:       CommandPress,
		IssuedAt:   now,
		Action:     &ActionCommand{Slot: slot},
	}
}

func aiRelease(unit *unitState, slot ActionSlot, tick uint64, now time.Time) Command {
	return Command{
		OriginTick: tick,
		ActorID:    unit.ID,
		Type:       CommandRelease,
		IssuedAt:   now,
		Action:     &ActionCommand{Slot: slot},
	}
}

func (w *World) aiPyroAttacks(unit *unitState, focus aiTarget, tick uint64, now time.Time) []Command {
	kit := unit.pyro
	if kit == nil {
		return nil
	}
	stats := w.stats(unit).Pyro
	dist := focus.pos.sub(unit.pos()).length()
	var commands []Command

	inReach := dist <= stats.FlameReachMax && aiFacing(unit, focus.pos)
	if kit.channeling && (!inReach || kit.overheated) {
		commands = append(commands, aiRelease(unit, SlotPrimary, tick, now))
	} else if !kit.channeling && inReach && !kit.overheated && kit.heat < stats.HeatMax*0.85 {
		commands = append(commands, aiPress(unit, SlotPrimary, tick, now))
	}

	if w.abilityReady(unit, abilityFlask, now) && dist > stats.FlameReachMax*0.6 && dist < 520 {
		commands = append(commands, aiPress(unit, SlotSkill, tick, now))
	}

	// Detonate only when a pool can plausibly catch the target.
	if w.abilityReady(unit, abilityDetonate, now) && w.pyroPoolCount(unit.ID) > 0 {
		for _, zone := range w.groundEffects {
			if zone.Kind != ZoneFirePool || zone.OwnerID != unit.ID || zone.life <= 0 {
				continue
			}
			if distance(zone.X, zone.Y, focus.pos.X, focus.pos.Y) < zone.Radius*1.8 {
				commands = append(commands, aiPress(unit, SlotSecondary, tick, now))
				break
			}
		}
	}
	return commands
}

func (w *World) aiGunnerAttacks(unit *unitState, focus aiTarget, tick uint64, now time.Time) []Command {
	kit := unit.gunner
	if kit == nil {
		return nil
	}
	dist := focus.pos.sub(unit.pos()).length()
	var commands []Command

	wantScatter := dist < aiGunnerScatterRange
	if w.abilityReady(unit, abilityModeToggle, now) {
		if wantScatter && kit.mode == ModeRifle && kit.scatterAmmo >= 1 {
			commands = append(commands, aiPress(unit, SlotSkill, tick, now))
		} else if !wantScatter && kit.mode == ModeScatter && kit.rifleAmmo > 0 {
			commands = append(commands, aiPress(unit, SlotSkill, tick, now))
		}
	}

	canShoot := aiFacing(unit, focus.pos) && !w.aiShotBlocked(unit.pos(), focus.pos)
	if kit.triggerHeld && !canShoot {
		commands = append(commands, aiRelease(unit, SlotPrimary, tick, now))
	} else if !kit.triggerHeld && canShoot {
		commands = append(commands, aiPress(unit, SlotPrimary, tick, now))
	}

	if kit.droneID == "" && kit.droneRebuild <= 0 && w.abilityReady(unit, abilityDrone, now) {
		commands = append(commands, aiPress(unit, SlotSecondary, tick, now))
	}
	return commands
}

// aiShotBlocked samples the firing line against blocking walls.
func (w *World) aiShotBlocked(from, to vec2) bool {
	span := to.sub(from)
	steps := int(span.length()/24) + 1
	for _, obstacle := range w.obstacles {
		if !obstacle.blocksMovement() {
			continue
		}
		for i := 1; i < steps; i++ {
			p := from.add(span.scale(float64(i) / float64(steps)))
			if circleRectOverlap(p.X, p.Y, 4, obstacle) {
				return true
			}
		}
	}
	return false
}

func (w *World) aiBruiserAttacks(unit *unitState, focus aiTarget, tick uint64, now time.Time) []Command {
	kit := unit.bruiser
	if kit == nil {
		return nil
	}
	stats := w.stats(unit).Bruiser
	ai := unit.ai
	dist := focus.pos.sub(unit.pos()).length()
	var commands []Command

	if kit.slamCharge.charging() || kit.bashCharge.charging() {
		return nil
	}

	switch {
	case dist <= stats.ComboReach && aiFacing(unit, focus.pos):
		commands = append(commands, aiPress(unit, SlotPrimary, tick, now))
	case dist <= stats.SlamMaxRange && dist > stats.ComboReach && w.abilityReady(unit, abilitySlam, now):
		hold := uint64(stats.SlamMaxCharge * float64(tickRate) * clamp(dist/stats.SlamMaxRange, 0.4, 1))
		commands = append(commands, aiPress(unit, SlotSkill, tick, now))
		ai.held[SlotSkill] = tick + hold
	case dist <= stats.BashReach*1.2 && w.abilityReady(unit, abilityBash, now):
		commands = append(commands, aiPress(unit, SlotSecondary, tick, now))
		ai.held[SlotSecondary] = tick + uint64(stats.BashMaxCharge*float64(tickRate)*0.7)
	}
	return commands
}

func (w *World) aiStrayAttacks(unit *unitState, focus aiTarget, tick uint64, now time.Time) []Command {
	kit := unit.stray
	if kit == nil {
		return nil
	}
	stats := w.stats(unit).Stray
	ai := unit.ai
	dist := focus.pos.sub(unit.pos()).length()
	var commands []Command

	if dist < aiStrayYowlCrowd && w.abilityReady(unit, abilityYowl, now) {
		commands = append(commands, aiPress(unit, SlotSecondary, tick, now))
		return commands
	}

	if w.abilityReady(unit, abilityMark, now) && dist > stats.SwipeReach {
		commands = append(commands, aiPress(unit, SlotSkill, tick, now))
	}

	if kit.pounceCharge.charging() || kit.pounceTimer > 0 {
		return commands
	}
	if _, held := ai.held[SlotPrimary]; held {
		return commands
	}

	switch {
	case dist <= stats.SwipeReach:
		// Tap: press and release inside the tap threshold.
		commands = append(commands, aiPress(unit, SlotPrimary, tick, now))
		ai.held[SlotPrimary] = tick + 2
	case dist <= aiStrayPounceRange && aiFacing(unit, focus.pos):
		hold := uint64(stats.PounceMaxCharge * float64(tickRate) * clamp(dist/aiStrayPounceRange, 0.35, 1))
		commands = append(commands, aiPress(unit, SlotPrimary, tick, now))
		ai.held[SlotPrimary] = tick + hold
	}
	return commands
}
