package server

import (
	"math"
	"testing"
	"time"
)

func TestUnitCollisionConservesMomentum(t *testing.T) {
	w := newDuelWorld(ArchetypeBruiser, ArchetypeBruiser)
	a := w.units[w.playerID]
	b := w.units[w.enemyID]
	a.X, a.Y, a.VX, a.VY = 400, 360, 300, 0
	b.X, b.Y, b.VX, b.VY = 430, 360, -300, 0

	before := a.Mass*a.VX + b.Mass*b.VX
	relBefore := b.VX - a.VX

	w.resolveUnitCollision(a, b, time.Unix(0, 0))

	after := a.Mass*a.VX + b.Mass*b.VX
	if math.Abs(after-before) > 1e-6 {
		t.Fatalf("momentum changed: %v -> %v", before, after)
	}
	relAfter := b.VX - a.VX
	want := -restitution * relBefore
	if math.Abs(relAfter-want) > 1e-6 {
		t.Fatalf("expected relative velocity %v, got %v", want, relAfter)
	}
	if dist := distance(a.X, a.Y, b.X, b.Y); dist < a.Radius+b.Radius-1e-6 {
		t.Fatalf("units still overlapping after separation: %v", dist)
	}
}

func TestFastImpactDamagesBothUnits(t *testing.T) {
	w := newDuelWorld(ArchetypeBruiser, ArchetypeBruiser)
	a := w.units[w.playerID]
	b := w.units[w.enemyID]
	a.X, a.Y, a.VX = 400, 360, 300
	b.X, b.Y, b.VX = 430, 360, -300

	w.resolveUnitCollision(a, b, time.Unix(0, 0))

	wantDamage := (600 - impactDamageSpeed) * impactDamageScale
	if math.Abs((a.MaxHealth-a.Health)-wantDamage) > 1e-6 {
		t.Fatalf("expected %v impact damage on a, got %v", wantDamage, a.MaxHealth-a.Health)
	}
	if math.Abs((b.MaxHealth-b.Health)-wantDamage) > 1e-6 {
		t.Fatalf("expected %v impact damage on b, got %v", wantDamage, b.MaxHealth-b.Health)
	}
}

func TestSlowImpactIsFree(t *testing.T) {
	w := newDuelWorld(ArchetypeBruiser, ArchetypeBruiser)
	a := w.units[w.playerID]
	b := w.units[w.enemyID]
	a.X, a.Y, a.VX = 400, 360, 100
	b.X, b.Y, b.VX = 430, 360, -100

	w.resolveUnitCollision(a, b, time.Unix(0, 0))

	if a.Health != a.MaxHealth || b.Health != b.MaxHealth {
		t.Fatalf("slow bump dealt damage: %v / %v", a.Health, b.Health)
	}
}

func TestKnockbackDeltaCeiling(t *testing.T) {
	w := newDuelWorld(ArchetypeStray, ArchetypePyro)
	unit := w.units[w.playerID]

	w.applyImpulse(unit, 1e9, 0)

	speed := math.Hypot(unit.VX, unit.VY)
	if math.Abs(speed-maxKnockbackDelta) > 1e-6 {
		t.Fatalf("expected knockback capped at %v, got %v", maxKnockbackDelta, speed)
	}
}

func TestChargingBruiserShrugsOffKnockback(t *testing.T) {
	w := newDuelWorld(ArchetypeBruiser, ArchetypeBruiser)
	plain := w.units[w.playerID]
	braced := w.units[w.enemyID]
	braced.bruiser.bashCharge.begin()

	w.applyImpulse(plain, 300, 0)
	w.applyImpulse(braced, 300, 0)

	if braced.VX >= plain.VX {
		t.Fatalf("charging unit took full knockback: %v vs %v", braced.VX, plain.VX)
	}
	resist := w.stats(braced).Bruiser.ChargeKnockResist
	if math.Abs(braced.VX-plain.VX*(1-resist)) > 1e-6 {
		t.Fatalf("expected knockback scaled by %v, got %v vs %v", 1-resist, braced.VX, plain.VX)
	}
}

func TestArenaBoundsBounce(t *testing.T) {
	w := newDuelWorld(ArchetypeBruiser, ArchetypePyro)
	unit := w.units[w.playerID]
	unit.X, unit.VX = unit.Radius+1, -400

	w.integrateUnit(unit, testDT)

	if unit.X != unit.Radius {
		t.Fatalf("expected unit pinned to the wall, X=%v", unit.X)
	}
	if unit.VX <= 0 {
		t.Fatalf("expected velocity reflected inward, VX=%v", unit.VX)
	}
}

func TestWaterSoaksUnits(t *testing.T) {
	w := newDuelWorld(ArchetypeBruiser, ArchetypePyro)
	unit := w.units[w.playerID]
	w.obstacles = []Obstacle{{
		ID: "pool", Type: obstacleTypeWater,
		X: unit.X - 50, Y: unit.Y - 50, Width: 100, Height: 100,
	}}

	startX := unit.X
	w.resolveObstacleCollisions(unit, time.Unix(0, 0))

	if unit.status.wet <= 0 {
		t.Fatalf("expected wet status from water, got %v", unit.status.wet)
	}
	if unit.X != startX {
		t.Fatalf("water should not block movement, X moved to %v", unit.X)
	}
}

func TestFearOverridesMovementIntent(t *testing.T) {
	w := newDuelWorld(ArchetypeBruiser, ArchetypePyro)
	player := w.units[w.playerID]
	enemy := w.units[w.enemyID]
	enemy.X, enemy.Y = player.X+200, player.Y

	player.intentX, player.intentY = 1, 0 // toward the enemy
	player.status.fear = 1

	w.applyMovementIntent(player, testDT)

	if player.VX >= 0 {
		t.Fatalf("feared unit should flee away from opponent, VX=%v", player.VX)
	}
}

func TestStrayVaultsThinWalls(t *testing.T) {
	w := newDuelWorld(ArchetypeStray, ArchetypeBruiser)
	stray := w.units[w.playerID]
	bruiser := w.units[w.enemyID]
	wall := Obstacle{ID: "wall", Type: obstacleTypeWall, X: 100, Y: 100, Width: 24, Height: 200}
	w.obstacles = []Obstacle{wall}

	stray.X, stray.Y, stray.VX = 110, 200, 200
	w.resolveObstacleCollisions(stray, time.Unix(0, 0))
	if stray.X != 110 {
		t.Fatalf("stray should pass through a thin wall, got X=%v", stray.X)
	}
	if math.Abs(stray.VX-200*vaultSlowFactor) > 1e-9 {
		t.Fatalf("expected vault to halve speed, VX=%v", stray.VX)
	}

	bruiser.X, bruiser.Y = 110, 200
	w.resolveObstacleCollisions(bruiser, time.Unix(0, 0))
	if bruiser.X > wall.X && bruiser.X < wall.X+wall.Width {
		t.Fatalf("bruiser should be pushed out of the wall, X=%v", bruiser.X)
	}
}

func TestWaterSlowsMovement(t *testing.T) {
	w := newDuelWorld(ArchetypeBruiser, ArchetypePyro)
	dry := w.units[w.playerID]
	soaked := w.units[w.enemyID]
	w.obstacles = []Obstacle{{
		ID: "pool", Type: obstacleTypeWater,
		X: soaked.X - 60, Y: soaked.Y - 60, Width: 120, Height: 120,
	}}

	dry.intentX, soaked.intentX = 1, 1
	w.applyMovementIntent(dry, testDT)
	w.applyMovementIntent(soaked, testDT)

	if soaked.VX >= dry.VX {
		t.Fatalf("expected water to slow acceleration: %v vs %v", soaked.VX, dry.VX)
	}
}
