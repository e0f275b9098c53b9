package server

import (
	"math"
	"time"
)

// strayKit is the nine-lives cat kit's mutable state.
type strayKit struct {
	lives int

	swipeTimer   float64
	pounceCharge chargeState
	pounceTimer  float64
	pounceDir    vec2
	pounceHit    bool
	pounceFull   bool
}

const strayTapThreshold = 0.15

func newStrayKit(stats StrayStats) *strayKit {
	return &strayKit{
		lives:        stats.Lives,
		pounceCharge: newChargeState(stats.PounceMaxCharge, stats.PounceHoldGrace),
	}
}

func (k *strayKit) snapshot() *StraySnapshot {
	return &StraySnapshot{
		Lives:        k.lives,
		PounceCharge: k.pounceCharge.ratio(),
		Pouncing:     k.pounceTimer > 0,
	}
}

func (w *World) strayPress(unit *unitState, slot ActionSlot, now time.Time) {
	kit := unit.stray
	if kit == nil {
		return
	}
	switch slot {
	case SlotPrimary:
		if unit.status.canSwing() && kit.pounceTimer <= 0 {
			kit.pounceCharge.begin()
		}
	case SlotSecondary:
		w.strayYowl(unit, now)
	case SlotSkill:
		w.strayMark(unit, now)
	}
}

func (w *World) strayRelease(unit *unitState, slot ActionSlot, now time.Time) {
	kit := unit.stray
	if kit == nil {
		return
	}
	if slot != SlotPrimary {
		return
	}
	if !kit.pounceCharge.charging() {
		return
	}
	held := kit.pounceCharge.elapsed
	ratio, _ := kit.pounceCharge.release()
	if held < strayTapThreshold {
		w.straySwipe(unit, now)
		return
	}
	w.strayLaunchPounce(unit, ratio, now)
}

// advanceStray auto-releases an overheld pounce charge and runs the pounce
// itself: constant velocity, collision bypass, one guaranteed hit.
func (w *World) advanceStray(unit *unitState, dt float64, now time.Time) {
	kit := unit.stray
	if kit == nil {
		return
	}
	kit.swipeTimer = maxf(0, kit.swipeTimer-dt)

	if kit.pounceCharge.advance(dt) {
		if ratio, ok := kit.pounceCharge.release(); ok {
			w.strayLaunchPounce(unit, ratio, now)
		}
	}

	if kit.pounceTimer <= 0 {
		return
	}
	kit.pounceTimer -= dt
	if kit.pounceTimer <= 0 {
		kit.pounceTimer = 0
		return
	}

	if kit.pounceHit {
		return
	}
	stats := w.stats(unit).Stray
	for _, target := range w.units {
		if target.ID == unit.ID || !target.Alive {
			continue
		}
		if target.pos().sub(unit.pos()).length() > target.Radius+unit.Radius {
			continue
		}
		kit.pounceHit = true
		w.applyDamage(target, stats.PounceDamage, damagePhysical, unit.ID, now)
		w.applySlow(target, stats.PounceSlow, unit.ID, now)
		w.applyDisarm(target, stats.PounceDisarm, unit.ID, now)
		if kit.pounceFull {
			w.applySilence(target, stats.PounceSilence, unit.ID, now)
		}
		break
	}
}

// straySwipe is the short-tap strike: fast, cheap, short reach.
func (w *World) straySwipe(unit *unitState, now time.Time) bool {
	kit := unit.stray
	if !unit.status.canSwing() || kit.swipeTimer > 0 {
		return false
	}
	stats := w.stats(unit).Stray
	kit.swipeTimer = stats.SwipeInterval

	origin := unit.pos()
	for _, target := range w.units {
		if target.ID == unit.ID || !target.Alive {
			continue
		}
		if coneContains(origin, unit.Aim, stats.SwipeReach, stats.SwipeHalfArc, target.pos(), target.Radius) {
			w.applyDamage(target, stats.SwipeDamage, damagePhysical, unit.ID, now)
		}
	}
	for _, drone := range w.drones {
		if drone.OwnerID == unit.ID || drone.Health <= 0 {
			continue
		}
		if coneContains(origin, unit.Aim, stats.SwipeReach, stats.SwipeHalfArc, drone.pos(), drone.Radius) {
			w.damageDrone(drone, stats.SwipeDamage, now)
		}
	}
	w.pushSound(soundSwipe, origin, unit.ID)
	return true
}

// strayLaunchPounce fires the unit along its aim with charge-scaled speed.
// Pouncing bypasses unit collision and halves incoming damage.
func (w *World) strayLaunchPounce(unit *unitState, ratio float64, now time.Time) bool {
	kit := unit.stray
	if !unit.status.canSwing() {
		return false
	}
	stats := w.stats(unit).Stray

	dir := unit.aim.sub(unit.pos()).normalized()
	if dir.length() == 0 {
		dir = vec2{X: math.Cos(unit.Aim), Y: math.Sin(unit.Aim)}
	}
	speed := chargeScale(stats.PounceMinSpeed, stats.PounceMaxSpeed, ratio)

	kit.pounceTimer = stats.PounceDuration
	kit.pounceDir = dir
	kit.pounceHit = false
	kit.pounceFull = ratio >= 1
	unit.VX = dir.X * speed
	unit.VY = dir.Y * speed

	w.pushSound(soundPounce, unit.pos(), unit.ID)
	return true
}

// strayYowl is the area burst: knockback everything nearby, deflect
// projectiles back at their senders, and terrify when down to the last life.
func (w *World) strayYowl(unit *unitState, now time.Time) bool {
	kit := unit.stray
	if kit == nil || !unit.status.canCast() {
		return false
	}
	stats := w.stats(unit).Stray
	if unit.onCooldown(abilityYowl, secondsToDuration(stats.YowlCooldown), now) {
		return false
	}
	unit.startCooldown(abilityYowl, now)

	origin := unit.pos()
	for _, target := range w.units {
		if target.ID == unit.ID || !target.Alive {
			continue
		}
		offset := target.pos().sub(origin)
		if offset.length() > stats.YowlRadius+target.Radius {
			continue
		}
		dir := offset.normalized()
		if dir.length() == 0 {
			dir = vec2{X: 1, Y: 0}
		}
		w.applyImpulse(target, dir.X*stats.YowlKnock, dir.Y*stats.YowlKnock)
		if kit.lives <= 1 {
			w.applyFear(target, stats.YowlFear, unit.ID, now)
		} else {
			w.applySlow(target, stats.YowlSlow, unit.ID, now)
		}
	}

	// Deflection: the projectile flips direction and changes hands, so it
	// now hurts whoever fired it.
	for _, proj := range w.projectiles {
		if proj.OwnerID == unit.ID || proj.life <= 0 {
			continue
		}
		if proj.pos().sub(origin).length() > stats.YowlRadius+proj.Radius {
			continue
		}
		proj.velocity = proj.velocity.scale(-1)
		proj.OwnerID = unit.ID
		proj.target = nil
		if proj.hitIDs != nil {
			proj.hitIDs = make(map[string]struct{})
		}
	}

	w.pushSound(soundYowl, origin, unit.ID)
	return true
}

// strayMark drops a tracking doom mark on the best target: a live hostile
// drone outranks an opposing unit that is dead or beyond its own drone's
// aggro reach; otherwise the unit itself.
func (w *World) strayMark(unit *unitState, now time.Time) bool {
	if !unit.status.canCast() {
		return false
	}
	stats := w.stats(unit).Stray
	if unit.onCooldown(abilityMark, secondsToDuration(stats.MarkCooldown), now) {
		return false
	}

	targetID, ok := w.strayMarkTarget(unit)
	if !ok {
		return false
	}
	unit.startCooldown(abilityMark, now)

	var at vec2
	if target, exists := w.units[targetID]; exists {
		at = target.pos()
	} else if drone, exists := w.drones[targetID]; exists {
		at = drone.pos()
	}

	w.spawnGroundEffect(&groundEffectState{
		GroundEffect: GroundEffect{
			Kind:    ZoneDoomMark,
			OwnerID: unit.ID,
			X:       at.X,
			Y:       at.Y,
			Radius:  stats.MarkRadius,
		},
		life:     stats.MarkDelay,
		targetID: targetID,
	})
	w.pushSound(soundMark, at, unit.ID)
	return true
}

// strayMarkTarget applies the mark's target priority rules.
func (w *World) strayMarkTarget(unit *unitState) (string, bool) {
	opponent := w.opponentOf(unit.ID)

	var nearestDrone *droneState
	nearestDroneDist := math.MaxFloat64
	for _, drone := range w.drones {
		if drone.OwnerID == unit.ID || drone.Health <= 0 {
			continue
		}
		dist := drone.pos().sub(unit.pos()).length()
		if dist < nearestDroneDist {
			nearestDroneDist = dist
			nearestDrone = drone
		}
	}

	if opponent == nil || !opponent.Alive {
		if nearestDrone != nil {
			return nearestDrone.ID, true
		}
		return "", false
	}

	opponentDist := opponent.pos().sub(unit.pos()).length()
	if nearestDrone != nil {
		aggro := w.stats(w.opponentOf(unit.ID)).Gunner.DroneAggroRange
		if aggro > 0 && opponentDist > aggro && nearestDroneDist < opponentDist {
			return nearestDrone.ID, true
		}
	}
	return opponent.ID, true
}
