package server

import "time"

// statusTimers is the per-unit block of countdown timers. All values are
// seconds remaining; a timer at or below zero is inactive.
type statusTimers struct {
	slow       float64
	burn       float64
	silence    float64
	disarm     float64
	fear       float64
	paralyze   float64
	invincible float64
	wet        float64

	// flameExposure ramps while in flame contact and decays otherwise,
	// scaling incoming fire damage. Not a countdown.
	flameExposure float64
	inFlames      bool

	burnSource string
}

func (s *statusTimers) advance(dt float64) {
	s.slow = maxf(0, s.slow-dt)
	s.burn = maxf(0, s.burn-dt)
	s.silence = maxf(0, s.silence-dt)
	s.disarm = maxf(0, s.disarm-dt)
	s.fear = maxf(0, s.fear-dt)
	s.paralyze = maxf(0, s.paralyze-dt)
	s.invincible = maxf(0, s.invincible-dt)
	s.wet = maxf(0, s.wet-dt)

	if s.inFlames {
		s.flameExposure += flameExposureRamp * dt
	} else {
		s.flameExposure = maxf(0, s.flameExposure-flameExposureDecay*dt)
	}
	s.inFlames = false
}

func maxf(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

// extend raises a timer to at least duration without shortening it.
func extend(timer *float64, duration float64) {
	if duration > *timer {
		*timer = duration
	}
}

func (s *statusTimers) snapshot() map[string]float64 {
	out := make(map[string]float64)
	put := func(name string, value float64) {
		if value > 0 {
			out[name] = value
		}
	}
	put("slow", s.slow)
	put("burn", s.burn)
	put("silence", s.silence)
	put("disarm", s.disarm)
	put("fear", s.fear)
	put("paralyze", s.paralyze)
	put("invincible", s.invincible)
	put("wet", s.wet)
	put("flameExposure", s.flameExposure)
	if len(out) == 0 {
		return nil
	}
	return out
}

// moveFactor folds movement-impairing statuses into a speed multiplier.
func (s *statusTimers) moveFactor() float64 {
	factor := 1.0
	if s.slow > 0 {
		factor *= slowMoveFactor
	}
	if s.paralyze > 0 {
		factor *= paralyzeMoveFactor
	}
	return factor
}

func (s *statusTimers) canAct() bool   { return s.paralyze <= 0 }
func (s *statusTimers) canCast() bool  { return s.silence <= 0 && s.paralyze <= 0 }
func (s *statusTimers) canSwing() bool { return s.disarm <= 0 && s.paralyze <= 0 }

// applySlow and friends are the single mutation points so input- and
// AI-driven abilities cannot diverge.
func (w *World) applySlow(target *unitState, duration float64, source string, now time.Time) {
	if w == nil || target == nil || duration <= 0 {
		return
	}
	extend(&target.status.slow, duration)
	w.publishStatusApplied(target.ID, "slow", duration, source)
}

func (w *World) applyBurn(target *unitState, duration float64, source string, now time.Time) {
	if w == nil || target == nil || duration <= 0 {
		return
	}
	extend(&target.status.burn, duration)
	target.status.burnSource = source
	w.publishStatusApplied(target.ID, "burn", duration, source)
}

func (w *World) applySilence(target *unitState, duration float64, source string, now time.Time) {
	if w == nil || target == nil || duration <= 0 {
		return
	}
	extend(&target.status.silence, duration)
	w.interruptCasting(target, now)
	w.publishStatusApplied(target.ID, "silence", duration, source)
}

func (w *World) applyDisarm(target *unitState, duration float64, source string, now time.Time) {
	if w == nil || target == nil || duration <= 0 {
		return
	}
	extend(&target.status.disarm, duration)
	w.publishStatusApplied(target.ID, "disarm", duration, source)
}

func (w *World) applyFear(target *unitState, duration float64, source string, now time.Time) {
	if w == nil || target == nil || duration <= 0 {
		return
	}
	extend(&target.status.fear, duration)
	w.interruptCasting(target, now)
	w.publishStatusApplied(target.ID, "fear", duration, source)
}

func (w *World) applyParalyze(target *unitState, duration float64, source string, now time.Time) {
	if w == nil || target == nil || duration <= 0 {
		return
	}
	extend(&target.status.paralyze, duration)
	w.interruptCasting(target, now)
	w.publishStatusApplied(target.ID, "paralyze", duration, source)
}

func (w *World) applyInvincible(target *unitState, duration float64) {
	if w == nil || target == nil || duration <= 0 {
		return
	}
	extend(&target.status.invincible, duration)
}

func (w *World) applyWet(target *unitState, duration float64) {
	if w == nil || target == nil || duration <= 0 {
		return
	}
	if target.status.wet <= 0 {
		w.publishStatusApplied(target.ID, "wet", duration, "")
	}
	extend(&target.status.wet, duration)
	// Water dousing also ends any burn outright.
	target.status.burn = 0
}

// interruptCasting forcibly resets any in-progress charge or combo to its
// neutral state. Called on silence, fear, and paralysis.
func (w *World) interruptCasting(target *unitState, now time.Time) {
	if target == nil {
		return
	}
	if target.pyro != nil {
		target.pyro.channeling = false
	}
	if target.bruiser != nil {
		target.bruiser.slamCharge.interrupt()
		target.bruiser.bashCharge.interrupt()
		target.bruiser.comboStep = 0
		target.bruiser.comboWindow = 0
	}
	if target.stray != nil {
		target.stray.pounceCharge.interrupt()
	}
}

// advanceStatusEffects applies the per-tick consequences of active timers:
// burn damage over time and fear-forced movement.
func (w *World) advanceStatusEffects(dt float64, now time.Time) {
	for _, unit := range w.units {
		if !unit.Alive {
			continue
		}
		if unit.status.burn > 0 {
			damage := (burnFlatPerSecond + unit.MaxHealth*burnPctPerSecond) * dt
			w.applyDamage(unit, damage, damageFire, unit.status.burnSource, now)
		}
		unit.status.advance(dt)
	}
}
