package server

import (
	"fmt"
	"time"
)

// ZoneKind tags the closed set of ground effects.
type ZoneKind string

const (
	ZoneFirePool ZoneKind = "fire-pool"
	ZoneDoomMark ZoneKind = "doom-mark"
	ZoneCrack    ZoneKind = "crack"
)

// GroundEffect is the broadcast view of an area object.
type GroundEffect struct {
	ID      string   `json:"id"`
	Kind    ZoneKind `json:"kind"`
	OwnerID string   `json:"owner"`
	X       float64  `json:"x"`
	Y       float64  `json:"y"`
	Radius  float64  `json:"radius"`
	Life    float64  `json:"life"`
}

type groundEffectState struct {
	GroundEffect
	life     float64
	targetID string
}

func (z *groundEffectState) pos() vec2 { return vec2{X: z.X, Y: z.Y} }

func (w *World) spawnGroundEffect(zone *groundEffectState) *groundEffectState {
	if zone == nil {
		return nil
	}
	w.nextZoneID++
	zone.ID = fmt.Sprintf("zone-%d", w.nextZoneID)
	w.groundEffects = append(w.groundEffects, zone)
	return zone
}

// advanceGroundEffects counts lifetimes down and applies each kind's
// per-tick or expiry behavior.
func (w *World) advanceGroundEffects(dt float64, now time.Time) {
	for _, zone := range w.groundEffects {
		if zone.life <= 0 {
			continue
		}
		zone.life -= dt
		switch zone.Kind {
		case ZoneFirePool:
			w.tickFirePool(zone, dt, now)
		case ZoneDoomMark:
			w.tickDoomMark(zone, dt, now)
		}
	}
	w.pruneGroundEffects()
}

// tickFirePool mends its owner and burns everyone else standing in it.
func (w *World) tickFirePool(zone *groundEffectState, dt float64, now time.Time) {
	stats := DefaultStatTables().Pyro.Pyro
	if owner := w.units[zone.OwnerID]; owner != nil {
		stats = w.stats(owner).Pyro
	}

	for _, unit := range w.units {
		if !unit.Alive {
			continue
		}
		if unit.pos().sub(zone.pos()).length() > zone.Radius+unit.Radius {
			continue
		}
		if unit.ID == zone.OwnerID {
			w.healUnit(unit, stats.PoolOwnerHealPS*dt)
			continue
		}
		unit.status.inFlames = true
		w.applyDamage(unit, stats.PoolDPS*dt, damageFire, zone.OwnerID, now)
		w.applyBurn(unit, 1.0, zone.OwnerID, now)
	}
	for _, drone := range w.drones {
		if drone.OwnerID == zone.OwnerID || drone.Health <= 0 {
			continue
		}
		if drone.pos().sub(zone.pos()).length() <= zone.Radius+drone.Radius {
			w.damageDrone(drone, stats.PoolDPS*dt, now)
		}
	}
}

// tickDoomMark tracks its target until the delay lapses, then detonates
// with falloff damage and cracks any destructible wall it catches.
func (w *World) tickDoomMark(zone *groundEffectState, dt float64, now time.Time) {
	stats := DefaultStatTables().Stray.Stray
	if owner := w.units[zone.OwnerID]; owner != nil {
		stats = w.stats(owner).Stray
	}

	// The tracked entity may be gone; the mark then detonates in place.
	var targetPos *vec2
	if target, ok := w.units[zone.targetID]; ok && target.Alive {
		p := target.pos()
		targetPos = &p
	} else if drone, ok := w.drones[zone.targetID]; ok && drone.Health > 0 {
		p := drone.pos()
		targetPos = &p
	}
	if targetPos != nil && stats.MarkTrackSpeed > 0 {
		offset := targetPos.sub(zone.pos())
		step := stats.MarkTrackSpeed * dt
		if offset.length() <= step {
			zone.X, zone.Y = targetPos.X, targetPos.Y
		} else {
			dir := offset.normalized()
			zone.X += dir.X * step
			zone.Y += dir.Y * step
		}
	}

	if zone.life > 0 {
		return
	}

	center := zone.pos()
	for _, unit := range w.units {
		if !unit.Alive {
			continue
		}
		dist := unit.pos().sub(center).length()
		if dist > zone.Radius+unit.Radius {
			continue
		}
		falloff := 1 - clamp(dist/(zone.Radius+unit.Radius), 0, 1)*0.6
		w.applyDamage(unit, stats.MarkDamage*falloff, damagePhysical, zone.OwnerID, now)
	}
	for _, drone := range w.drones {
		if drone.Health <= 0 {
			continue
		}
		if drone.pos().sub(center).length() <= zone.Radius+drone.Radius {
			w.damageDrone(drone, stats.MarkDamage, now)
		}
	}

	// Terrain destruction: trade the wall for a crack marker.
	destroyed := make([]Obstacle, 0)
	for _, obs := range w.obstacles {
		if !obs.Destructible {
			continue
		}
		if circleRectOverlap(center.X, center.Y, zone.Radius, obs) {
			destroyed = append(destroyed, obs)
		}
	}
	for _, obs := range destroyed {
		w.removeObstacle(obs.ID)
		w.spawnGroundEffect(&groundEffectState{
			GroundEffect: GroundEffect{
				Kind:    ZoneCrack,
				OwnerID: zone.OwnerID,
				X:       obs.center().X,
				Y:       obs.center().Y,
				Radius:  maxf(obs.Width, obs.Height) / 2,
			},
			life: 10,
		})
	}

	w.pushSound(soundMarkBlast, center, zone.OwnerID)
}

func (w *World) pruneGroundEffects() {
	if len(w.groundEffects) == 0 {
		return
	}
	filtered := w.groundEffects[:0]
	for _, zone := range w.groundEffects {
		if zone.life > 0 {
			filtered = append(filtered, zone)
		}
	}
	w.groundEffects = filtered
}
