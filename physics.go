package server

import (
	"math"
	"time"
)

// applyMovementIntent turns buffered intent into acceleration. Fear
// overrides the supplied vector with flight directly away from the opponent.
func (w *World) applyMovementIntent(unit *unitState, dt float64) {
	if unit == nil || !unit.Alive {
		return
	}
	if unit.pouncing() {
		return
	}

	dx := unit.intentX
	dy := unit.intentY
	if unit.status.fear > 0 {
		if opponent := w.opponentOf(unit.ID); opponent != nil {
			away := unit.pos().sub(opponent.pos()).normalized()
			dx, dy = away.X, away.Y
		}
	}

	length := math.Hypot(dx, dy)
	if length > 1 {
		dx /= length
		dy /= length
	}
	if dx == 0 && dy == 0 {
		return
	}

	factor := unit.status.moveFactor()
	if w.inWater(unit) {
		factor *= waterSlowFactor
	}
	if unit.bruiser != nil && (unit.bruiser.slamCharge.charging() || unit.bruiser.bashCharge.charging()) {
		factor *= w.stats(unit).Bruiser.ChargeMoveFactor
	}

	maxSpeed := unit.speed * factor
	if unit.status.fear > 0 {
		maxSpeed = fearMoveSpeed * factor
	}

	unit.VX += dx * moveAccel * factor * dt
	unit.VY += dy * moveAccel * factor * dt

	// Input-driven speed is capped; knockback may exceed the cap and is
	// bled off by friction instead.
	speed := math.Hypot(unit.VX, unit.VY)
	if speed > maxSpeed && speed > 0 {
		heading := vec2{X: dx, Y: dy}
		velocity := vec2{X: unit.VX, Y: unit.VY}
		if velocity.normalized().dot(heading) > 0.99 {
			unit.VX *= maxSpeed / speed
			unit.VY *= maxSpeed / speed
		}
	}
}

// integrateUnit advances position and applies friction and arena bounds.
func (w *World) integrateUnit(unit *unitState, dt float64) {
	if unit == nil || !unit.Alive {
		return
	}

	unit.X += unit.VX * dt
	unit.Y += unit.VY * dt

	decay := math.Pow(friction, dt*tickRate)
	unit.VX *= decay
	unit.VY *= decay

	if unit.X < unit.Radius {
		unit.X = unit.Radius
		unit.VX *= boundsBounce
	} else if unit.X > arenaWidth-unit.Radius {
		unit.X = arenaWidth - unit.Radius
		unit.VX *= boundsBounce
	}
	if unit.Y < unit.Radius {
		unit.Y = unit.Radius
		unit.VY *= boundsBounce
	} else if unit.Y > arenaHeight-unit.Radius {
		unit.Y = arenaHeight - unit.Radius
		unit.VY *= boundsBounce
	}
}

func (w *World) inWater(unit *unitState) bool {
	for _, obs := range w.obstacles {
		if obs.Type != obstacleTypeWater {
			continue
		}
		if circleRectOverlap(unit.X, unit.Y, unit.Radius, obs) {
			return true
		}
	}
	return false
}

// resolveObstacleCollisions pushes units out of walls and reflects their
// velocity across the contact normal. Water soaks instead of blocking; the
// stray vaults sufficiently thin walls at half speed.
func (w *World) resolveObstacleCollisions(unit *unitState, now time.Time) {
	if unit == nil || !unit.Alive {
		return
	}
	for _, obs := range w.obstacles {
		if !circleRectOverlap(unit.X, unit.Y, unit.Radius, obs) {
			continue
		}
		if obs.Type == obstacleTypeWater {
			w.applyWet(unit, 1.5)
			continue
		}

		closestX := clamp(unit.X, obs.X, obs.X+obs.Width)
		closestY := clamp(unit.Y, obs.Y, obs.Y+obs.Height)
		dx := unit.X - closestX
		dy := unit.Y - closestY
		distSq := dx*dx + dy*dy

		var nx, ny, overlap float64
		if distSq == 0 {
			// Center inside the rect: push out along the shallowest axis.
			left := unit.X - obs.X
			right := obs.X + obs.Width - unit.X
			top := unit.Y - obs.Y
			bottom := obs.Y + obs.Height - unit.Y
			minDist := left
			nx, ny = -1, 0
			overlap = left + unit.Radius
			if right < minDist {
				minDist = right
				nx, ny = 1, 0
				overlap = right + unit.Radius
			}
			if top < minDist {
				minDist = top
				nx, ny = 0, -1
				overlap = top + unit.Radius
			}
			if bottom < minDist {
				nx, ny = 0, 1
				overlap = bottom + unit.Radius
			}
		} else {
			dist := math.Sqrt(distSq)
			if dist >= unit.Radius {
				continue
			}
			nx = dx / dist
			ny = dy / dist
			overlap = unit.Radius - dist
		}

		if unit.Archetype == ArchetypeStray && obs.blocksMovement() {
			thickness := obs.Width
			if math.Abs(ny) > math.Abs(nx) {
				thickness = obs.Height
			}
			if thickness < vaultMaxThickness {
				unit.VX *= vaultSlowFactor
				unit.VY *= vaultSlowFactor
				continue
			}
		}

		unit.X += nx * overlap
		unit.Y += ny * overlap

		// Reflect velocity across the contact normal.
		dot := unit.VX*nx + unit.VY*ny
		if dot < 0 {
			unit.VX -= 2 * dot * nx
			unit.VY -= 2 * dot * ny
			unit.VX *= -boundsBounce
			unit.VY *= -boundsBounce
		}
	}
}

// resolveUnitCollision separates two overlapping units and exchanges
// momentum elastically. Fast impacts hurt both parties.
func (w *World) resolveUnitCollision(a, b *unitState, now time.Time) {
	if a == nil || b == nil || !a.Alive || !b.Alive {
		return
	}
	if a.pouncing() || b.pouncing() {
		return
	}

	dx := b.X - a.X
	dy := b.Y - a.Y
	distSq := dx*dx + dy*dy
	minDist := a.Radius + b.Radius

	var dist float64
	if distSq == 0 {
		dx, dy = 1, 0
		dist = 1
	} else {
		dist = math.Sqrt(distSq)
	}
	if dist >= minDist {
		return
	}

	nx := dx / dist
	ny := dy / dist

	// Mass-weighted positional separation.
	overlap := minDist - dist
	total := a.Mass + b.Mass
	a.X -= nx * overlap * (b.Mass / total)
	a.Y -= ny * overlap * (b.Mass / total)
	b.X += nx * overlap * (a.Mass / total)
	b.Y += ny * overlap * (a.Mass / total)

	// Elastic exchange along the contact normal with restitution.
	relVel := (b.VX-a.VX)*nx + (b.VY-a.VY)*ny
	if relVel < 0 {
		impulse := -(1 + restitution) * relVel / (1/a.Mass + 1/b.Mass)
		a.VX -= impulse * nx / a.Mass
		a.VY -= impulse * ny / a.Mass
		b.VX += impulse * nx / b.Mass
		b.VY += impulse * ny / b.Mass

		closing := -relVel
		if closing > impactDamageSpeed {
			damage := (closing - impactDamageSpeed) * impactDamageScale
			w.applyDamage(a, damage, damagePhysical, b.ID, now)
			w.applyDamage(b, damage, damagePhysical, a.ID, now)
		}
	}
}

// applyImpulse adds a knockback impulse with the speed-change ceiling from
// the balance sheet. Charging bruisers shrug off part of it.
func (w *World) applyImpulse(unit *unitState, ix, iy float64) {
	if unit == nil || !unit.Alive {
		return
	}
	scale := 1.0
	if unit.bruiser != nil && (unit.bruiser.slamCharge.charging() || unit.bruiser.bashCharge.charging()) {
		scale = 1 - w.stats(unit).Bruiser.ChargeKnockResist
	}
	dvx := ix * scale / unit.Mass
	dvy := iy * scale / unit.Mass
	magnitude := math.Hypot(dvx, dvy)
	if magnitude > maxKnockbackDelta {
		factor := maxKnockbackDelta / magnitude
		dvx *= factor
		dvy *= factor
	}
	unit.VX += dvx
	unit.VY += dvy
}
