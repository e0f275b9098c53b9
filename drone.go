package server

import (
	"fmt"
	"math"
	"time"
)

// DronePhase is the drone's patrol/engage/return state machine.
type DronePhase string

const (
	DronePatrol    DronePhase = "patrol"
	DroneEngage    DronePhase = "engage"
	DroneReturning DronePhase = "return"
)

const (
	dronePatrolRadius  = 70.0
	dronePatrolRate    = 1.6 // radians per second around the owner
	droneDockDistance  = 24.0
	droneReturnBattery = 2.0
)

// Drone is the broadcast view of a deployed wing-drone.
type Drone struct {
	ID        string     `json:"id"`
	OwnerID   string     `json:"owner"`
	X         float64    `json:"x"`
	Y         float64    `json:"y"`
	Radius    float64    `json:"radius"`
	Health    float64    `json:"health"`
	MaxHealth float64    `json:"maxHealth"`
	Battery   float64    `json:"battery"`
	Phase     DronePhase `json:"phase"`
}

type droneState struct {
	Drone
	fireTimer   float64
	patrolAngle float64
}

func (d *droneState) pos() vec2 { return vec2{X: d.X, Y: d.Y} }

func (w *World) spawnDrone(owner *unitState, stats GunnerStats) *droneState {
	w.nextDroneID++
	drone := &droneState{
		Drone: Drone{
			ID:        fmt.Sprintf("drone-%d", w.nextDroneID),
			OwnerID:   owner.ID,
			X:         owner.X,
			Y:         owner.Y - owner.Radius - 12,
			Radius:    9,
			Health:    stats.DroneHealth,
			MaxHealth: stats.DroneHealth,
			Battery:   stats.DroneBattery,
			Phase:     DronePatrol,
		},
	}
	w.drones[drone.ID] = drone
	return drone
}

// damageDrone hurts a drone and routes its destruction through the owner's
// rebuild rule.
func (w *World) damageDrone(drone *droneState, amount float64, now time.Time) {
	if w == nil || drone == nil || drone.Health <= 0 || amount <= 0 {
		return
	}
	drone.Health = clamp(drone.Health-amount, 0, drone.MaxHealth)
	if drone.Health <= 0 {
		w.destroyDrone(drone, true)
	}
}

// destroyDrone removes the drone. Loss and dock-after-depletion both push
// the owner into a rebuild period before the next deploy.
func (w *World) destroyDrone(drone *droneState, destroyed bool) {
	if drone == nil {
		return
	}
	delete(w.drones, drone.ID)

	// The owner may already be gone; expiring the drone is still fine.
	owner, ok := w.units[drone.OwnerID]
	if !ok || owner.gunner == nil {
		return
	}
	if owner.gunner.droneID == drone.ID {
		owner.gunner.droneID = ""
	}
	owner.gunner.droneRebuild = w.stats(owner).Gunner.DroneRebuild
	if destroyed {
		w.pushSound(soundDroneDown, drone.pos(), drone.OwnerID)
	}
}

// advanceDrones runs every drone's patrol/engage/return machine.
func (w *World) advanceDrones(dt float64, now time.Time) {
	for _, drone := range w.drones {
		w.advanceDrone(drone, dt, now)
	}
}

func (w *World) advanceDrone(drone *droneState, dt float64, now time.Time) {
	if drone == nil || drone.Health <= 0 {
		return
	}

	owner, ok := w.units[drone.OwnerID]
	if !ok {
		// Orphaned drone: power down quietly.
		w.destroyDrone(drone, false)
		return
	}

	stats := w.stats(owner).Gunner
	drone.Battery = maxf(0, drone.Battery-dt)
	drone.fireTimer = maxf(0, drone.fireTimer-dt)

	target := w.droneTarget(drone, owner, stats)

	switch {
	case drone.Battery <= droneReturnBattery:
		drone.Phase = DroneReturning
	case target != nil:
		drone.Phase = DroneEngage
	default:
		drone.Phase = DronePatrol
	}

	switch drone.Phase {
	case DroneReturning:
		offset := owner.pos().sub(drone.pos())
		if offset.length() <= droneDockDistance {
			w.destroyDrone(drone, false)
			return
		}
		dir := offset.normalized()
		drone.X += dir.X * stats.DroneSpeed * dt
		drone.Y += dir.Y * stats.DroneSpeed * dt

	case DroneEngage:
		offset := target.pos().sub(drone.pos())
		dist := offset.length()
		// Hold a loose firing orbit rather than ramming the target.
		if dist > 140 {
			dir := offset.normalized()
			drone.X += dir.X * stats.DroneSpeed * dt
			drone.Y += dir.Y * stats.DroneSpeed * dt
		}
		if drone.fireTimer <= 0 && dist <= stats.DroneAggroRange {
			drone.fireTimer = stats.DroneFireInterval
			dir := offset.normalized()
			w.spawnProjectile(&projectileState{
				Projectile: Projectile{
					Kind:    ProjectileDrone,
					OwnerID: drone.OwnerID,
					X:       drone.X + dir.X*(drone.Radius+3),
					Y:       drone.Y + dir.Y*(drone.Radius+3),
					Radius:  3,
					Damage:  stats.DroneDamage,
				},
				velocity: dir.scale(stats.DroneShotSpeed),
				life:     1.0,
			})
			w.pushSound(soundDroneShot, drone.pos(), drone.OwnerID)
		}

	default: // patrol
		drone.patrolAngle += dronePatrolRate * dt
		anchor := owner.pos()
		goal := vec2{
			X: anchor.X + math.Cos(drone.patrolAngle)*dronePatrolRadius,
			Y: anchor.Y + math.Sin(drone.patrolAngle)*dronePatrolRadius,
		}
		offset := goal.sub(drone.pos())
		dist := offset.length()
		if dist > 1 {
			dir := offset.normalized()
			speed := math.Min(stats.DroneSpeed, dist/dt)
			drone.X += dir.X * speed * dt
			drone.Y += dir.Y * speed * dt
		}
	}

	drone.X = clamp(drone.X, drone.Radius, arenaWidth-drone.Radius)
	drone.Y = clamp(drone.Y, drone.Radius, arenaHeight-drone.Radius)

	if drone.Battery <= 0 && drone.Phase != DroneReturning {
		drone.Phase = DroneReturning
	}
}

// droneTarget picks the nearest living opposing unit inside aggro range.
func (w *World) droneTarget(drone *droneState, owner *unitState, stats GunnerStats) *unitState {
	var best *unitState
	bestDist := stats.DroneAggroRange
	for _, unit := range w.units {
		if unit.ID == owner.ID || !unit.Alive {
			continue
		}
		dist := unit.pos().sub(drone.pos()).length()
		if dist <= bestDist {
			bestDist = dist
			best = unit
		}
	}
	return best
}
