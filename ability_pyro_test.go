package server

import (
	"testing"
	"time"
)

func TestPyroOverheatCycle(t *testing.T) {
	w := newDuelWorld(ArchetypePyro, ArchetypeBruiser)
	pyro := w.units[w.playerID]
	kit := pyro.pyro
	stats := w.stats(pyro).Pyro
	now := time.Unix(0, 0)

	w.pyroPress(pyro, SlotPrimary, now)
	if !kit.channeling {
		t.Fatalf("press did not start the channel")
	}

	for i := 0; i < 10*tickRate && !kit.overheated; i++ {
		now = now.Add(time.Second / tickRate)
		w.advancePyro(pyro, testDT, now)
	}
	if !kit.overheated {
		t.Fatalf("heat never reached the cap, heat=%v", kit.heat)
	}
	if kit.channeling {
		t.Fatalf("overheat should force the channel off")
	}

	// Presses are rejected until the meter fully empties.
	w.pyroPress(pyro, SlotPrimary, now)
	if kit.channeling {
		t.Fatalf("overheated pyro restarted the channel")
	}

	wantCool := stats.HeatMax/stats.OverheatCoolPerSecond + 1
	for i := 0; i < int(wantCool*float64(tickRate)) && kit.overheated; i++ {
		now = now.Add(time.Second / tickRate)
		w.advancePyro(pyro, testDT, now)
	}
	if kit.overheated || kit.heat != 0 {
		t.Fatalf("overheat did not clear: overheated=%v heat=%v", kit.overheated, kit.heat)
	}
}

func TestFlameTickBurnsTargetsInCone(t *testing.T) {
	w := newDuelWorld(ArchetypePyro, ArchetypeBruiser)
	pyro := w.units[w.playerID]
	target := w.units[w.enemyID]
	target.X, target.Y = pyro.X+120, pyro.Y
	pyro.Aim = 0
	pyro.aim = target.pos()
	pyro.pyro.channeling = true

	w.advancePyro(pyro, testDT, time.Unix(0, 0))

	if target.Health >= target.MaxHealth {
		t.Fatalf("flame tick dealt no damage")
	}
	if target.status.burn <= 0 {
		t.Fatalf("flame tick did not apply burn")
	}
	if !target.status.inFlames {
		t.Fatalf("flame contact not recorded for exposure ramping")
	}
}

func TestFlameConeNarrowsWithReach(t *testing.T) {
	w := newDuelWorld(ArchetypePyro, ArchetypeBruiser)
	pyro := w.units[w.playerID]
	stats := w.stats(pyro).Pyro

	pyro.aim = pyro.pos().add(vec2{X: stats.FlameReachMin, Y: 0})
	shortReach, wideAngle := w.flameCone(pyro)

	pyro.aim = pyro.pos().add(vec2{X: stats.FlameReachMax, Y: 0})
	longReach, narrowAngle := w.flameCone(pyro)

	if shortReach >= longReach {
		t.Fatalf("reach did not grow with aim distance: %v vs %v", shortReach, longReach)
	}
	if narrowAngle >= wideAngle {
		t.Fatalf("cone did not narrow with reach: %v vs %v", narrowAngle, wideAngle)
	}
}

func TestFlaskLandsIntoSingleFirePool(t *testing.T) {
	w := newDuelWorld(ArchetypePyro, ArchetypeBruiser)
	pyro := w.units[w.playerID]
	now := time.Unix(0, 0)
	pyro.aim = vec2{X: pyro.X + 200, Y: pyro.Y}

	if !w.pyroThrowFlask(pyro, now) {
		t.Fatalf("flask throw rejected")
	}
	if w.pyroThrowFlask(pyro, now) {
		t.Fatalf("flask ignored its cooldown")
	}
	if len(w.projectiles) != 1 {
		t.Fatalf("expected 1 projectile, got %d", len(w.projectiles))
	}

	for i := 0; i < 2*tickRate; i++ {
		now = now.Add(time.Second / tickRate)
		w.advanceProjectiles(testDT, now)
	}

	if len(w.projectiles) != 0 {
		t.Fatalf("flask projectile survived its detonation")
	}
	if got := w.pyroPoolCount(pyro.ID); got != 1 {
		t.Fatalf("expected exactly one fire pool, got %d", got)
	}
}

func TestDetonateConsumesPools(t *testing.T) {
	w := newDuelWorld(ArchetypePyro, ArchetypeBruiser)
	pyro := w.units[w.playerID]
	target := w.units[w.enemyID]
	now := time.Unix(0, 0)

	w.spawnGroundEffect(&groundEffectState{
		GroundEffect: GroundEffect{
			Kind:    ZoneFirePool,
			OwnerID: pyro.ID,
			X:       target.X,
			Y:       target.Y,
			Radius:  60,
		},
		life: 5,
	})

	if !w.pyroDetonate(pyro, now) {
		t.Fatalf("detonate rejected with a live pool")
	}
	if target.Health >= target.MaxHealth {
		t.Fatalf("detonation dealt no damage")
	}
	if target.VX == 0 && target.VY == 0 {
		t.Fatalf("detonation applied no knockback")
	}
	if w.pyroPoolCount(pyro.ID) != 0 {
		t.Fatalf("detonation left pools standing")
	}
	if w.pyroDetonate(pyro, now) {
		t.Fatalf("detonate fired with nothing to consume")
	}
}

func TestFirePoolHealsOwnerBurnsOthers(t *testing.T) {
	w := newDuelWorld(ArchetypePyro, ArchetypeBruiser)
	pyro := w.units[w.playerID]
	target := w.units[w.enemyID]
	now := time.Unix(0, 0)

	pyro.Health = 50
	target.X, target.Y = pyro.X, pyro.Y
	zone := w.spawnGroundEffect(&groundEffectState{
		GroundEffect: GroundEffect{
			Kind:    ZoneFirePool,
			OwnerID: pyro.ID,
			X:       pyro.X,
			Y:       pyro.Y,
			Radius:  60,
		},
		life: 5,
	})

	w.tickFirePool(zone, testDT, now)

	if pyro.Health <= 50 {
		t.Fatalf("pool did not mend its owner: %v", pyro.Health)
	}
	if target.Health >= target.MaxHealth {
		t.Fatalf("pool did not burn the intruder")
	}
	if target.status.burn <= 0 {
		t.Fatalf("pool did not apply burn")
	}
}
