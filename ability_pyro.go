package server

import "time"

// pyroKit is the heat-resource flamethrower kit's mutable state.
type pyroKit struct {
	heat       float64
	heatMax    float64
	overheated bool
	channeling bool
}

func newPyroKit(stats PyroStats) *pyroKit {
	return &pyroKit{heatMax: stats.HeatMax}
}

func (k *pyroKit) snapshot() *PyroSnapshot {
	return &PyroSnapshot{
		Heat:       k.heat,
		HeatMax:    k.heatMax,
		Overheated: k.overheated,
		Channeling: k.channeling,
	}
}

func (w *World) pyroPress(unit *unitState, slot ActionSlot, now time.Time) {
	kit := unit.pyro
	if kit == nil {
		return
	}
	switch slot {
	case SlotPrimary:
		if kit.overheated || !unit.status.canSwing() {
			return
		}
		if !kit.channeling {
			kit.channeling = true
			w.pushSound(soundFlameOn, unit.pos(), unit.ID)
		}
	case SlotSecondary:
		w.pyroDetonate(unit, now)
	case SlotSkill:
		w.pyroThrowFlask(unit, now)
	}
}

func (w *World) pyroRelease(unit *unitState, slot ActionSlot, now time.Time) {
	kit := unit.pyro
	if kit == nil {
		return
	}
	if slot == SlotPrimary && kit.channeling {
		kit.channeling = false
		w.pushSound(soundFlameOff, unit.pos(), unit.ID)
	}
}

// flameCone derives reach and half-angle from the aim distance. The cone
// keeps a constant area: pushing reach out narrows the arc quadratically.
func (w *World) flameCone(unit *unitState) (reach, halfAngle float64) {
	stats := w.stats(unit).Pyro
	dist := unit.aim.sub(unit.pos()).length()
	reach = clamp(dist, stats.FlameReachMin, stats.FlameReachMax)
	ratio := stats.FlameReachMin / reach
	halfAngle = stats.FlameBaseHalfAngle * ratio * ratio
	return reach, halfAngle
}

// advancePyro runs the channel, heat meter, and passive cooling each tick.
func (w *World) advancePyro(unit *unitState, dt float64, now time.Time) {
	kit := unit.pyro
	if kit == nil {
		return
	}
	stats := w.stats(unit).Pyro

	if kit.channeling && (!unit.status.canSwing() || kit.overheated) {
		kit.channeling = false
	}

	if kit.channeling {
		kit.heat += stats.HeatPerSecond * dt
		if kit.heat >= stats.HeatMax {
			kit.heat = stats.HeatMax
			kit.overheated = true
			kit.channeling = false
			w.pushSound(soundOverheat, unit.pos(), unit.ID)
		}
		w.flameTick(unit, dt, now)
		return
	}

	cool := stats.CoolPerSecond
	if kit.overheated {
		cool = stats.OverheatCoolPerSecond
	}
	kit.heat = maxf(0, kit.heat-cool*dt)
	if kit.overheated && kit.heat <= 0 {
		kit.overheated = false
	}
}

// flameTick damages everything inside the current cone and stokes flame
// exposure on victims.
func (w *World) flameTick(unit *unitState, dt float64, now time.Time) {
	stats := w.stats(unit).Pyro
	reach, halfAngle := w.flameCone(unit)
	origin := unit.pos()

	for _, target := range w.units {
		if target.ID == unit.ID || !target.Alive {
			continue
		}
		if !coneContains(origin, unit.Aim, reach, halfAngle, target.pos(), target.Radius) {
			continue
		}
		target.status.inFlames = true
		w.applyDamage(target, stats.FlameDPS*dt, damageFire, unit.ID, now)
		w.applyBurn(target, 1.0, unit.ID, now)
	}
	for _, drone := range w.drones {
		if drone.OwnerID == unit.ID || drone.Health <= 0 {
			continue
		}
		if !coneContains(origin, unit.Aim, reach, halfAngle, drone.pos(), drone.Radius) {
			continue
		}
		w.damageDrone(drone, stats.FlameDPS*dt, now)
	}
}

// pyroThrowFlask lobs a flask at the aim point. The projectile detonates
// into a fire pool when its flight time runs out.
func (w *World) pyroThrowFlask(unit *unitState, now time.Time) bool {
	if !unit.status.canCast() {
		return false
	}
	stats := w.stats(unit).Pyro
	if unit.onCooldown(abilityFlask, secondsToDuration(stats.FlaskCooldown), now) {
		return false
	}
	unit.startCooldown(abilityFlask, now)

	target := unit.aim
	offset := target.sub(unit.pos())
	flight := stats.FlaskFlightTime
	if flight <= 0 {
		flight = 0.8
	}
	velocity := offset.scale(1 / flight)

	w.spawnProjectile(&projectileState{
		Projectile: Projectile{
			Kind:    ProjectileLobbed,
			OwnerID: unit.ID,
			X:       unit.X,
			Y:       unit.Y,
			Radius:  stats.FlaskRadius,
			Damage:  stats.FlaskDamage,
		},
		velocity: velocity,
		life:     flight,
		target:   &target,
	})
	w.pushSound(soundFlask, unit.pos(), unit.ID)
	return true
}

// pyroDetonate consumes every surviving fire pool for burst damage plus
// knockback away from each pool center.
func (w *World) pyroDetonate(unit *unitState, now time.Time) bool {
	if !unit.status.canCast() {
		return false
	}
	stats := w.stats(unit).Pyro
	if unit.onCooldown(abilityDetonate, secondsToDuration(stats.DetonateCooldown), now) {
		return false
	}

	detonated := 0
	for _, zone := range w.groundEffects {
		if zone.Kind != ZoneFirePool || zone.OwnerID != unit.ID || zone.life <= 0 {
			continue
		}
		detonated++
		center := zone.pos()
		for _, target := range w.units {
			if target.ID == unit.ID || !target.Alive {
				continue
			}
			dist := target.pos().sub(center).length()
			if dist > zone.Radius+target.Radius {
				continue
			}
			falloff := 1 - clamp(dist/(zone.Radius+target.Radius), 0, 1)*0.5
			w.applyDamage(target, stats.DetonateDamage*falloff, damageFire, unit.ID, now)
			dir := target.pos().sub(center).normalized()
			if dir.length() == 0 {
				dir = vec2{X: 1, Y: 0}
			}
			w.applyImpulse(target, dir.X*stats.DetonateKnockback, dir.Y*stats.DetonateKnockback)
		}
		zone.life = 0
		w.pushSound(soundExplosion, center, unit.ID)
	}

	if detonated == 0 {
		return false
	}
	unit.startCooldown(abilityDetonate, now)
	return true
}

func secondsToDuration(seconds float64) time.Duration {
	return time.Duration(seconds * float64(time.Second))
}

// pyroPoolCount reports surviving pools for the snapshot.
func (w *World) pyroPoolCount(ownerID string) int {
	count := 0
	for _, zone := range w.groundEffects {
		if zone.Kind == ZoneFirePool && zone.OwnerID == ownerID && zone.life > 0 {
			count++
		}
	}
	return count
}
