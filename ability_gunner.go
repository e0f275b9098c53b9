package server

import (
	"math"
	"time"
)

// WeaponMode selects between the gunner's two ammo pools.
type WeaponMode string

const (
	ModeRifle   WeaponMode = "rifle"
	ModeScatter WeaponMode = "scatter"
)

// gunnerKit is the dual-mode ammo kit's mutable state.
type gunnerKit struct {
	mode        WeaponMode
	triggerHeld bool
	fireTimer   float64

	rifleAmmo   int
	rifleReload float64 // full-magazine reload, runs only after hitting empty
	rifleRound  float64 // single-round trickle timer while above empty

	scatterAmmo   float64
	scatterReload float64 // whole-pool refill, runs only after the pool runs dry

	droneID      string
	droneRebuild float64
}

func newGunnerKit(stats GunnerStats) *gunnerKit {
	return &gunnerKit{
		mode:        ModeRifle,
		rifleAmmo:   stats.RifleAmmoMax,
		scatterAmmo: float64(stats.ScatterAmmoMax),
	}
}

// reloading reports whether the current mode's pool is mid-refill.
func (k *gunnerKit) reloading() bool {
	if k.mode == ModeScatter {
		return k.scatterReload > 0
	}
	return k.rifleReload > 0
}

func (k *gunnerKit) snapshot() *GunnerSnapshot {
	return &GunnerSnapshot{
		Mode:         k.mode,
		RifleAmmo:    k.rifleAmmo,
		ScatterAmmo:  int(k.scatterAmmo),
		Reloading:    k.reloading(),
		DroneID:      k.droneID,
		DroneRebuild: k.droneRebuild,
	}
}

func (w *World) gunnerPress(unit *unitState, slot ActionSlot, now time.Time) {
	kit := unit.gunner
	if kit == nil {
		return
	}
	switch slot {
	case SlotPrimary:
		kit.triggerHeld = true
	case SlotSecondary:
		w.gunnerDeployDrone(unit, now)
	case SlotSkill:
		w.gunnerToggleMode(unit, now)
	}
}

func (w *World) gunnerRelease(unit *unitState, slot ActionSlot, now time.Time) {
	kit := unit.gunner
	if kit == nil {
		return
	}
	if slot == SlotPrimary {
		kit.triggerHeld = false
	}
}

// gunnerToggleMode is the skill: swap ammo pools, eat the switch penalty.
func (w *World) gunnerToggleMode(unit *unitState, now time.Time) bool {
	kit := unit.gunner
	if kit == nil || !unit.status.canCast() {
		return false
	}
	stats := w.stats(unit).Gunner
	if unit.onCooldown(abilityModeToggle, secondsToDuration(stats.ModeCooldown), now) {
		return false
	}
	unit.startCooldown(abilityModeToggle, now)

	if kit.mode == ModeRifle {
		kit.mode = ModeScatter
	} else {
		kit.mode = ModeRifle
	}
	kit.fireTimer = maxf(kit.fireTimer, stats.SwitchPenalty)
	w.pushSound(soundModeSwitch, unit.pos(), unit.ID)
	return true
}

// advanceGunner runs held-trigger firing and both ammo regeneration rules.
func (w *World) advanceGunner(unit *unitState, dt float64, now time.Time) {
	kit := unit.gunner
	if kit == nil {
		return
	}
	stats := w.stats(unit).Gunner

	kit.fireTimer = maxf(0, kit.fireTimer-dt)
	kit.droneRebuild = maxf(0, kit.droneRebuild-dt)

	// Rifle: empty triggers a full-magazine reload; otherwise rounds
	// trickle back one at a time.
	if kit.rifleReload > 0 {
		kit.rifleReload -= dt
		if kit.rifleReload <= 0 {
			kit.rifleReload = 0
			kit.rifleAmmo = stats.RifleAmmoMax
			w.pushSound(soundReload, unit.pos(), unit.ID)
		}
	} else if kit.rifleAmmo > 0 && kit.rifleAmmo < stats.RifleAmmoMax {
		kit.rifleRound += dt
		if stats.RifleRoundTime > 0 && kit.rifleRound >= stats.RifleRoundTime {
			kit.rifleRound = 0
			kit.rifleAmmo++
		}
	} else {
		kit.rifleRound = 0
	}

	// Scatter: the pool holds its level until it runs dry, then the whole
	// thing comes back at once after the refill duration.
	if kit.scatterReload > 0 {
		kit.scatterReload -= dt
		if kit.scatterReload <= 0 {
			kit.scatterReload = 0
			kit.scatterAmmo = float64(stats.ScatterAmmoMax)
			w.pushSound(soundReload, unit.pos(), unit.ID)
		}
	}

	if kit.triggerHeld && kit.fireTimer <= 0 && unit.status.canSwing() {
		w.gunnerFire(unit, now)
	}
}

// gunnerFire resolves one trigger pull in the current mode. Empty pools
// reject the shot.
func (w *World) gunnerFire(unit *unitState, now time.Time) bool {
	kit := unit.gunner
	stats := w.stats(unit).Gunner
	dir := unit.aim.sub(unit.pos()).normalized()
	if dir.length() == 0 {
		dir = vec2{X: math.Cos(unit.Aim), Y: math.Sin(unit.Aim)}
	}

	switch kit.mode {
	case ModeRifle:
		if kit.rifleAmmo <= 0 || kit.reloading() {
			return false
		}
		kit.rifleAmmo--
		kit.fireTimer = stats.RifleInterval
		if kit.rifleAmmo == 0 {
			kit.rifleReload = stats.RifleReload
			kit.rifleRound = 0
		}
		w.spawnProjectile(&projectileState{
			Projectile: Projectile{
				Kind:    ProjectilePiercing,
				OwnerID: unit.ID,
				X:       unit.X + dir.X*(unit.Radius+6),
				Y:       unit.Y + dir.Y*(unit.Radius+6),
				Radius:  5,
				Damage:  stats.RifleDamage,
			},
			velocity: dir.scale(stats.RifleSpeed),
			life:     1.6,
			hitIDs:   make(map[string]struct{}),
		})
		w.pushSound(soundRifleShot, unit.pos(), unit.ID)
		return true

	case ModeScatter:
		if kit.scatterAmmo < 1 || kit.scatterReload > 0 {
			return false
		}
		kit.scatterAmmo--
		if kit.scatterAmmo < 1 {
			kit.scatterReload = stats.ScatterReload
		}
		kit.fireTimer = stats.ScatterInterval
		base := angleOf(dir.X, dir.Y)
		pellets := stats.ScatterPellets
		if pellets < 1 {
			pellets = 1
		}
		for i := 0; i < pellets; i++ {
			spread := 0.0
			if pellets > 1 {
				spread = (float64(i)/float64(pellets-1) - 0.5) * stats.ScatterSpread
			}
			angle := base + spread
			pelletDir := vec2{X: math.Cos(angle), Y: math.Sin(angle)}
			w.spawnProjectile(&projectileState{
				Projectile: Projectile{
					Kind:    ProjectileDirect,
					OwnerID: unit.ID,
					X:       unit.X + pelletDir.X*(unit.Radius+4),
					Y:       unit.Y + pelletDir.Y*(unit.Radius+4),
					Radius:  3,
					Damage:  stats.ScatterDamage,
				},
				velocity: pelletDir.scale(stats.ScatterSpeed),
				life:     0.45,
			})
		}
		w.pushSound(soundScatterShot, unit.pos(), unit.ID)
		return true
	}
	return false
}

// gunnerDeployDrone launches the autonomous wing-drone when no drone is out
// and the rebuild timer has lapsed.
func (w *World) gunnerDeployDrone(unit *unitState, now time.Time) bool {
	kit := unit.gunner
	if kit == nil || !unit.status.canCast() {
		return false
	}
	if kit.droneID != "" || kit.droneRebuild > 0 {
		return false
	}
	stats := w.stats(unit).Gunner
	if unit.onCooldown(abilityDrone, secondsToDuration(stats.DroneCooldown), now) {
		return false
	}
	unit.startCooldown(abilityDrone, now)

	drone := w.spawnDrone(unit, stats)
	kit.droneID = drone.ID
	w.pushSound(soundDroneDeploy, unit.pos(), unit.ID)
	return true
}
