package server

import (
	"context"
	"time"

	"orb-arena/server/logging"
	loggingcombat "orb-arena/server/logging/combat"
	loggingmatch "orb-arena/server/logging/match"
)

type damageKind int

const (
	damagePhysical damageKind = iota
	damageFire
)

// damageMultiplier folds the damage-type-conditional resistance rules into a
// single scalar.
func (w *World) damageMultiplier(target *unitState, kind damageKind) float64 {
	multiplier := 1.0
	if kind == damageFire {
		switch {
		case target.status.wet > 0:
			multiplier *= wetFireResist
		case target.Archetype == ArchetypePyro:
			multiplier *= pyroFireResist
		default:
			multiplier *= crossFireResist
		}
		multiplier *= 1 + target.status.flameExposure*flameExposureFactor
	}
	if target.pouncing() {
		multiplier *= pounceDamageTaken
	}
	return multiplier
}

// applyDamage is the only way health goes down. It clamps, applies
// resistances, and routes lethal damage through the revival rules.
func (w *World) applyDamage(target *unitState, amount float64, kind damageKind, sourceID string, now time.Time) bool {
	if w == nil || target == nil || !target.Alive || amount <= 0 {
		return false
	}
	if target.status.invincible > 0 {
		return false
	}

	amount *= w.damageMultiplier(target, kind)
	if amount <= 0 {
		return false
	}
	if !target.applyHealthDelta(-amount) {
		return false
	}

	loggingcombat.Damage(
		context.Background(),
		w.publisher,
		w.currentTick,
		w.entityRef(sourceID),
		logging.UnitRef(target.ID),
		loggingcombat.DamagePayload{Amount: amount, TargetHealth: target.Health},
		nil,
	)

	if target.Health <= 0 {
		w.handleLethalDamage(target, sourceID, now)
	}
	return true
}

// handleLethalDamage kills the unit unless an archetype revival rule steps
// in. The stray burns a life, heals to full, turns briefly invincible, and
// teleports to the spawn point farthest from its opponent.
func (w *World) handleLethalDamage(target *unitState, sourceID string, now time.Time) {
	if target.stray != nil && target.stray.lives > 1 {
		target.stray.lives--
		target.Health = target.MaxHealth
		stats := w.stats(target).Stray
		w.applyInvincible(target, stats.ReviveInvincible)
		target.VX, target.VY = 0, 0
		target.status = statusTimers{invincible: target.status.invincible}

		spawn := w.farthestSpawnFrom(target)
		target.X = spawn.X
		target.Y = spawn.Y

		w.pushSound(soundRevive, target.pos(), target.ID)
		loggingcombat.Revived(
			context.Background(),
			w.publisher,
			w.currentTick,
			logging.UnitRef(target.ID),
			loggingcombat.RevivedPayload{LivesLeft: target.stray.lives},
			nil,
		)
		return
	}

	target.Alive = false
	target.Health = 0
	w.pushSound(soundDefeat, target.pos(), target.ID)
	loggingcombat.Defeat(
		context.Background(),
		w.publisher,
		w.currentTick,
		w.entityRef(sourceID),
		logging.UnitRef(target.ID),
		loggingcombat.DefeatPayload{},
		nil,
	)
}

// farthestSpawnFrom picks the spawn point with the most distance to the
// unit's opponent.
func (w *World) farthestSpawnFrom(unit *unitState) vec2 {
	opponent := w.opponentOf(unit.ID)
	if opponent == nil {
		return spawnPoints[0]
	}
	best := spawnPoints[0]
	bestDistSq := -1.0
	for _, spawn := range spawnPoints {
		dx := spawn.X - opponent.X
		dy := spawn.Y - opponent.Y
		distSq := dx*dx + dy*dy
		if distSq > bestDistSq {
			bestDistSq = distSq
			best = spawn
		}
	}
	return best
}

// checkMatchEnd transitions the world phase once a death is permanent.
// Player death is evaluated before the enemy's so a mutual kill counts as a
// defeat.
func (w *World) checkMatchEnd() {
	if w.phase != PhaseActive {
		return
	}
	player := w.units[w.playerID]
	enemy := w.units[w.enemyID]
	var phase Phase
	var winner string
	switch {
	case player != nil && !player.Alive:
		phase, winner = PhaseDefeat, w.enemyID
	case enemy != nil && !enemy.Alive:
		phase, winner = PhaseVictory, w.playerID
	default:
		return
	}
	w.phase = phase
	loggingmatch.Ended(
		context.Background(),
		w.publisher,
		w.currentTick,
		loggingmatch.EndedPayload{Winner: winner, Phase: string(phase)},
		nil,
	)
}

// healUnit restores health with clamping. Used by pools and revival.
func (w *World) healUnit(target *unitState, amount float64) {
	if w == nil || target == nil || !target.Alive || amount <= 0 {
		return
	}
	target.applyHealthDelta(amount)
}
