package server

import "time"

// Archetype tags the closed set of combatant kits.
type Archetype string

const (
	ArchetypePyro    Archetype = "pyro"
	ArchetypeGunner  Archetype = "gunner"
	ArchetypeBruiser Archetype = "bruiser"
	ArchetypeStray   Archetype = "stray"
)

func parseArchetype(value string) (Archetype, bool) {
	switch Archetype(value) {
	case ArchetypePyro, ArchetypeGunner, ArchetypeBruiser, ArchetypeStray:
		return Archetype(value), true
	default:
		return "", false
	}
}

// Unit is the broadcast-friendly view of a combatant ball.
type Unit struct {
	ID        string    `json:"id"`
	Archetype Archetype `json:"archetype"`
	X         float64   `json:"x"`
	Y         float64   `json:"y"`
	VX        float64   `json:"vx"`
	VY        float64   `json:"vy"`
	Radius    float64   `json:"radius"`
	Mass      float64   `json:"mass"`
	Health    float64   `json:"health"`
	MaxHealth float64   `json:"maxHealth"`
	Alive     bool      `json:"alive"`
	Facing    float64   `json:"facing"`
	Aim       float64   `json:"aim"`

	Statuses map[string]float64 `json:"statuses,omitempty"`

	Pyro    *PyroSnapshot    `json:"pyro,omitempty"`
	Gunner  *GunnerSnapshot  `json:"gunner,omitempty"`
	Bruiser *BruiserSnapshot `json:"bruiser,omitempty"`
	Stray   *StraySnapshot   `json:"stray,omitempty"`
}

// PyroSnapshot exposes the heat kit's resource state.
type PyroSnapshot struct {
	Heat       float64 `json:"heat"`
	HeatMax    float64 `json:"heatMax"`
	Overheated bool    `json:"overheated"`
	Channeling bool    `json:"channeling"`
	Pools      int     `json:"pools"`
}

// GunnerSnapshot exposes ammo pools, weapon mode, and drone readiness.
type GunnerSnapshot struct {
	Mode         WeaponMode `json:"mode"`
	RifleAmmo    int        `json:"rifleAmmo"`
	ScatterAmmo  int        `json:"scatterAmmo"`
	Reloading    bool       `json:"reloading"`
	DroneID      string     `json:"droneId,omitempty"`
	DroneRebuild float64    `json:"droneRebuild,omitempty"`
}

// BruiserSnapshot exposes the combo counter and charge progress.
type BruiserSnapshot struct {
	ComboStep   int     `json:"comboStep"`
	ComboWindow float64 `json:"comboWindow"`
	SlamCharge  float64 `json:"slamCharge"`
	BashCharge  float64 `json:"bashCharge"`
}

// StraySnapshot exposes remaining lives and pounce state.
type StraySnapshot struct {
	Lives        int     `json:"lives"`
	PounceCharge float64 `json:"pounceCharge"`
	Pouncing     bool    `json:"pouncing"`
}

type unitState struct {
	Unit

	speed float64

	intentX float64
	intentY float64
	aim     vec2

	status    statusTimers
	cooldowns map[string]time.Time

	pyro    *pyroKit
	gunner  *gunnerKit
	bruiser *bruiserKit
	stray   *strayKit

	ai *aiState

	lastInput     time.Time
	lastHeartbeat time.Time
}

// onCooldown reports whether an ability fired more recently than its cooldown.
func (s *unitState) onCooldown(name string, cooldown time.Duration, now time.Time) bool {
	if s.cooldowns == nil {
		return false
	}
	last, ok := s.cooldowns[name]
	return ok && now.Sub(last) < cooldown
}

func (s *unitState) startCooldown(name string, now time.Time) {
	if s.cooldowns == nil {
		s.cooldowns = make(map[string]time.Time)
	}
	s.cooldowns[name] = now
}

func (s *unitState) pos() vec2 { return vec2{X: s.X, Y: s.Y} }

// pouncing reports whether the unit is mid-pounce and bypassing collisions.
func (s *unitState) pouncing() bool {
	return s.stray != nil && s.stray.pounceTimer > 0
}

func (s *unitState) snapshot() Unit {
	unit := s.Unit
	unit.Statuses = s.status.snapshot()
	switch s.Archetype {
	case ArchetypePyro:
		if s.pyro != nil {
			unit.Pyro = s.pyro.snapshot()
		}
	case ArchetypeGunner:
		if s.gunner != nil {
			unit.Gunner = s.gunner.snapshot()
		}
	case ArchetypeBruiser:
		if s.bruiser != nil {
			unit.Bruiser = s.bruiser.snapshot()
		}
	case ArchetypeStray:
		if s.stray != nil {
			unit.Stray = s.stray.snapshot()
		}
	}
	return unit
}

// applyHealthDelta mutates health with clamping and reports whether it changed.
func (s *unitState) applyHealthDelta(delta float64) bool {
	if delta == 0 {
		return false
	}
	next := clamp(s.Health+delta, 0, s.MaxHealth)
	if next == s.Health {
		return false
	}
	s.Health = next
	return true
}

// newUnitState builds a combatant from its archetype stat block.
func newUnitState(id string, archetype Archetype, stats ArchetypeStats, spawn vec2) *unitState {
	state := &unitState{
		Unit: Unit{
			ID:        id,
			Archetype: archetype,
			X:         spawn.X,
			Y:         spawn.Y,
			Radius:    stats.Radius,
			Mass:      stats.Mass,
			Health:    stats.MaxHealth,
			MaxHealth: stats.MaxHealth,
			Alive:     true,
		},
		speed:     stats.Speed,
		cooldowns: make(map[string]time.Time),
	}
	switch archetype {
	case ArchetypePyro:
		state.pyro = newPyroKit(stats.Pyro)
	case ArchetypeGunner:
		state.gunner = newGunnerKit(stats.Gunner)
	case ArchetypeBruiser:
		state.bruiser = newBruiserKit(stats.Bruiser)
	case ArchetypeStray:
		state.stray = newStrayKit(stats.Stray)
	}
	return state
}
