package server

import (
	"fmt"
	"time"
)

// ProjectileKind drives how a projectile resolves collisions.
type ProjectileKind string

const (
	ProjectileDirect   ProjectileKind = "direct"
	ProjectileLobbed   ProjectileKind = "lobbed"
	ProjectilePiercing ProjectileKind = "piercing"
	ProjectileDrone    ProjectileKind = "drone-shot"
)

// Projectile is the broadcast view of an in-flight shot.
type Projectile struct {
	ID      string         `json:"id"`
	Kind    ProjectileKind `json:"kind"`
	OwnerID string         `json:"owner"`
	X       float64        `json:"x"`
	Y       float64        `json:"y"`
	Radius  float64        `json:"radius"`
	Damage  float64        `json:"damage"`
}

type projectileState struct {
	Projectile
	velocity  vec2
	life      float64
	target    *vec2
	hitIDs    map[string]struct{}
	flyByDone bool
}

func (p *projectileState) pos() vec2 { return vec2{X: p.X, Y: p.Y} }

// landingPoint extrapolates where the projectile will be when its lifetime
// runs out.
func (p *projectileState) landingPoint() vec2 {
	if p.target != nil {
		return *p.target
	}
	return p.pos().add(p.velocity.scale(p.life))
}

func (w *World) spawnProjectile(proj *projectileState) *projectileState {
	if proj == nil {
		return nil
	}
	w.nextProjectileID++
	proj.ID = fmt.Sprintf("proj-%d", w.nextProjectileID)
	w.projectiles = append(w.projectiles, proj)
	return proj
}

// advanceProjectiles integrates every live projectile and resolves its
// collisions by kind.
func (w *World) advanceProjectiles(dt float64, now time.Time) {
	for _, proj := range w.projectiles {
		if proj.life <= 0 {
			continue
		}
		proj.X += proj.velocity.X * dt
		proj.Y += proj.velocity.Y * dt
		proj.life -= dt

		switch proj.Kind {
		case ProjectileLobbed:
			w.advanceLobbed(proj, now)
		case ProjectilePiercing:
			w.advancePiercing(proj, now)
		default:
			w.advanceDirect(proj, now)
		}
	}
	w.pruneProjectiles()
}

// advanceDirect ends the projectile on any wall or first valid target hit.
func (w *World) advanceDirect(proj *projectileState, now time.Time) {
	if proj.life <= 0 {
		return
	}
	if proj.X < 0 || proj.Y < 0 || proj.X > arenaWidth || proj.Y > arenaHeight {
		proj.life = 0
		return
	}
	for _, obs := range w.obstacles {
		if !obs.blocksMovement() {
			continue
		}
		if circleRectOverlap(proj.X, proj.Y, proj.Radius, obs) {
			proj.life = 0
			return
		}
	}
	for _, target := range w.units {
		if target.ID == proj.OwnerID || !target.Alive {
			continue
		}
		if target.pos().sub(proj.pos()).length() > target.Radius+proj.Radius {
			continue
		}
		w.applyDamage(target, proj.Damage, damagePhysical, proj.OwnerID, now)
		proj.life = 0
		return
	}
	for _, drone := range w.drones {
		if drone.OwnerID == proj.OwnerID || drone.Health <= 0 {
			continue
		}
		if drone.pos().sub(proj.pos()).length() > drone.Radius+proj.Radius {
			continue
		}
		w.damageDrone(drone, proj.Damage, now)
		proj.life = 0
		return
	}
}

// advancePiercing passes through walls and records victims so each target
// is only hit once.
func (w *World) advancePiercing(proj *projectileState, now time.Time) {
	if proj.life <= 0 {
		return
	}
	if proj.X < 0 || proj.Y < 0 || proj.X > arenaWidth || proj.Y > arenaHeight {
		proj.life = 0
		return
	}
	if proj.hitIDs == nil {
		proj.hitIDs = make(map[string]struct{})
	}
	for _, target := range w.units {
		if target.ID == proj.OwnerID || !target.Alive {
			continue
		}
		if _, seen := proj.hitIDs[target.ID]; seen {
			continue
		}
		if target.pos().sub(proj.pos()).length() > target.Radius+proj.Radius {
			continue
		}
		proj.hitIDs[target.ID] = struct{}{}
		w.applyDamage(target, proj.Damage, damagePhysical, proj.OwnerID, now)
	}
	for _, drone := range w.drones {
		if drone.OwnerID == proj.OwnerID || drone.Health <= 0 {
			continue
		}
		if _, seen := proj.hitIDs[drone.ID]; seen {
			continue
		}
		if drone.pos().sub(proj.pos()).length() > drone.Radius+proj.Radius {
			continue
		}
		proj.hitIDs[drone.ID] = struct{}{}
		w.damageDrone(drone, proj.Damage, now)
	}
}

// advanceLobbed flies over everything until lifetime expiry, grazing the
// primary target on the way past, then detonates at the landing point.
func (w *World) advanceLobbed(proj *projectileState, now time.Time) {
	if proj.life > 0 {
		if proj.flyByDone {
			return
		}
		for _, target := range w.units {
			if target.ID == proj.OwnerID || !target.Alive {
				continue
			}
			if target.pos().sub(proj.pos()).length() > target.Radius+proj.Radius {
				continue
			}
			proj.flyByDone = true
			// Partial graze; halved again when the blast will catch the
			// same target anyway, so damage is not double counted.
			grazeFactor := 0.4
			blastRadius := w.stats(w.units[proj.OwnerID]).Pyro.PoolRadius
			if target.pos().sub(proj.landingPoint()).length() <= blastRadius+target.Radius {
				grazeFactor = 0.2
			}
			w.applyDamage(target, proj.Damage*grazeFactor, damageFire, proj.OwnerID, now)
			break
		}
		return
	}
	w.detonateLobbed(proj, now)
}

// detonateLobbed deals one falloff-scaled blast and leaves a fire pool.
func (w *World) detonateLobbed(proj *projectileState, now time.Time) {
	center := proj.pos()
	owner := w.units[proj.OwnerID]
	var stats PyroStats
	if owner != nil {
		stats = w.stats(owner).Pyro
	} else {
		stats = DefaultStatTables().Pyro.Pyro
	}

	blastRadius := stats.PoolRadius
	for _, target := range w.units {
		if target.ID == proj.OwnerID || !target.Alive {
			continue
		}
		dist := target.pos().sub(center).length()
		if dist > blastRadius+target.Radius {
			continue
		}
		falloff := 1 - clamp(dist/(blastRadius+target.Radius), 0, 1)*0.5
		w.applyDamage(target, proj.Damage*falloff, damageFire, proj.OwnerID, now)
	}

	w.spawnGroundEffect(&groundEffectState{
		GroundEffect: GroundEffect{
			Kind:    ZoneFirePool,
			OwnerID: proj.OwnerID,
			X:       center.X,
			Y:       center.Y,
			Radius:  stats.PoolRadius,
		},
		life: stats.PoolDuration,
	})
	w.pushSound(soundExplosion, center, proj.OwnerID)
}

// pruneProjectiles drops expired projectiles in place.
func (w *World) pruneProjectiles() {
	if len(w.projectiles) == 0 {
		return
	}
	filtered := w.projectiles[:0]
	for _, proj := range w.projectiles {
		if proj.life > 0 {
			filtered = append(filtered, proj)
		}
	}
	w.projectiles = filtered
}
