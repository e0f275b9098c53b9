package server

import (
	"math"
	"time"
)

// bruiserKit is the combo-and-charge melee kit's mutable state.
type bruiserKit struct {
	comboStep   int
	comboWindow float64
	swingTimer  float64
	slamCharge  chargeState
	bashCharge  chargeState
}

func newBruiserKit(stats BruiserStats) *bruiserKit {
	return &bruiserKit{
		slamCharge: newChargeState(stats.SlamMaxCharge, stats.SlamHoldGrace),
		bashCharge: newChargeState(stats.BashMaxCharge, stats.BashHoldGrace),
	}
}

func (k *bruiserKit) snapshot() *BruiserSnapshot {
	return &BruiserSnapshot{
		ComboStep:   k.comboStep,
		ComboWindow: k.comboWindow,
		SlamCharge:  k.slamCharge.ratio(),
		BashCharge:  k.bashCharge.ratio(),
	}
}

func (w *World) bruiserPress(unit *unitState, slot ActionSlot, now time.Time) {
	kit := unit.bruiser
	if kit == nil {
		return
	}
	switch slot {
	case SlotPrimary:
		w.bruiserComboSwing(unit, now)
	case SlotSecondary:
		if unit.status.canCast() && !kit.slamCharge.charging() {
			kit.bashCharge.begin()
		}
	case SlotSkill:
		if unit.status.canCast() && !kit.bashCharge.charging() {
			kit.slamCharge.begin()
		}
	}
}

func (w *World) bruiserRelease(unit *unitState, slot ActionSlot, now time.Time) {
	kit := unit.bruiser
	if kit == nil {
		return
	}
	switch slot {
	case SlotSecondary:
		if ratio, ok := kit.bashCharge.release(); ok {
			w.bruiserBash(unit, ratio, now)
		}
	case SlotSkill:
		if ratio, ok := kit.slamCharge.release(); ok {
			w.bruiserSlam(unit, ratio, now)
		}
	}
}

// advanceBruiser decays the combo window and auto-releases overheld charges.
func (w *World) advanceBruiser(unit *unitState, dt float64, now time.Time) {
	kit := unit.bruiser
	if kit == nil {
		return
	}
	kit.swingTimer = maxf(0, kit.swingTimer-dt)

	if kit.comboWindow > 0 {
		kit.comboWindow -= dt
		if kit.comboWindow <= 0 {
			kit.comboWindow = 0
			kit.comboStep = 0
		}
	}

	if kit.slamCharge.advance(dt) {
		if ratio, ok := kit.slamCharge.release(); ok {
			w.bruiserSlam(unit, ratio, now)
		}
	}
	if kit.bashCharge.advance(dt) {
		if ratio, ok := kit.bashCharge.release(); ok {
			w.bruiserBash(unit, ratio, now)
		}
	}
}

// bruiserComboSwing advances the 3-step combo. A press after the window
// lapsed starts over from step 0.
func (w *World) bruiserComboSwing(unit *unitState, now time.Time) bool {
	kit := unit.bruiser
	if !unit.status.canSwing() || kit.swingTimer > 0 {
		return false
	}
	if kit.slamCharge.charging() || kit.bashCharge.charging() {
		return false
	}
	stats := w.stats(unit).Bruiser

	if kit.comboWindow <= 0 {
		kit.comboStep = 0
	}

	step := kit.comboStep
	damage := stats.ComboDamage[step]
	finisher := step == len(stats.ComboDamage)-1

	kit.swingTimer = stats.ComboInterval
	kit.comboWindow = stats.ComboWindow
	kit.comboStep = (step + 1) % len(stats.ComboDamage)

	origin := unit.pos()
	for _, target := range w.units {
		if target.ID == unit.ID || !target.Alive {
			continue
		}
		if !coneContains(origin, unit.Aim, stats.ComboReach, stats.ComboHalfArc, target.pos(), target.Radius) {
			continue
		}
		w.applyDamage(target, damage, damagePhysical, unit.ID, now)
		if finisher {
			dir := target.pos().sub(origin).normalized()
			w.applyImpulse(target, dir.X*stats.FinishKnock, dir.Y*stats.FinishKnock)
		}
	}
	for _, drone := range w.drones {
		if drone.OwnerID == unit.ID || drone.Health <= 0 {
			continue
		}
		if coneContains(origin, unit.Aim, stats.ComboReach, stats.ComboHalfArc, drone.pos(), drone.Radius) {
			w.damageDrone(drone, damage, now)
		}
	}

	w.pushSound(soundSwing, origin, unit.ID)
	return true
}

// bruiserSlam is the charged skill: a directional shockwave whose damage,
// range, and width all scale with charge time.
func (w *World) bruiserSlam(unit *unitState, ratio float64, now time.Time) bool {
	if !unit.status.canCast() {
		return false
	}
	stats := w.stats(unit).Bruiser
	if unit.onCooldown(abilitySlam, secondsToDuration(stats.SlamCooldown), now) {
		return false
	}
	unit.startCooldown(abilitySlam, now)

	damage := chargeScale(stats.SlamMinDamage, stats.SlamMaxDamage, ratio)
	reach := chargeScale(stats.SlamMinRange, stats.SlamMaxRange, ratio)
	width := chargeScale(stats.SlamMinWidth, stats.SlamMaxWidth, ratio)

	origin := unit.pos()
	dir := vec2{X: math.Cos(unit.Aim), Y: math.Sin(unit.Aim)}
	end := origin.add(dir.scale(reach))

	w.hitAlongSegment(unit.ID, origin, end, width/2, func(target *unitState) {
		w.applyDamage(target, damage, damagePhysical, unit.ID, now)
		push := target.pos().sub(origin).normalized()
		w.applyImpulse(target, push.X*stats.FinishKnock, push.Y*stats.FinishKnock)
	})

	w.pushSound(soundSlam, origin, unit.ID)
	return true
}

// bruiserBash is the charged secondary: a single directional hit with
// charge-scaled damage and knockback.
func (w *World) bruiserBash(unit *unitState, ratio float64, now time.Time) bool {
	if !unit.status.canCast() {
		return false
	}
	stats := w.stats(unit).Bruiser
	if unit.onCooldown(abilityBash, secondsToDuration(stats.BashCooldown), now) {
		return false
	}
	unit.startCooldown(abilityBash, now)

	damage := chargeScale(stats.BashMinDamage, stats.BashMaxDamage, ratio)
	knock := chargeScale(stats.BashMinKnock, stats.BashMaxKnock, ratio)
	origin := unit.pos()

	for _, target := range w.units {
		if target.ID == unit.ID || !target.Alive {
			continue
		}
		if !coneContains(origin, unit.Aim, stats.BashReach, 0.6, target.pos(), target.Radius) {
			continue
		}
		w.applyDamage(target, damage, damagePhysical, unit.ID, now)
		dir := target.pos().sub(origin).normalized()
		w.applyImpulse(target, dir.X*knock, dir.Y*knock)
	}

	w.pushSound(soundBash, origin, unit.ID)
	return true
}

// hitAlongSegment applies fn to every enemy unit within radius of the
// segment and returns how many were hit.
func (w *World) hitAlongSegment(ownerID string, a, b vec2, radius float64, fn func(*unitState)) int {
	hits := 0
	for _, target := range w.units {
		if target.ID == ownerID || !target.Alive {
			continue
		}
		if pointSegmentDistance(target.pos(), a, b) <= radius+target.Radius {
			hits++
			fn(target)
		}
	}
	return hits
}
