package server

import (
	"math"
	"testing"
	"time"
)

func TestStrayBurnsALifeInsteadOfDying(t *testing.T) {
	w := newDuelWorld(ArchetypeBruiser, ArchetypeStray)
	stray := w.units[w.enemyID]
	opponent := w.units[w.playerID]
	now := time.Unix(0, 0)

	stray.status.slow = 2
	livesBefore := stray.stray.lives

	w.applyDamage(stray, stray.MaxHealth+10, damagePhysical, opponent.ID, now)

	if !stray.Alive {
		t.Fatalf("stray died with lives remaining")
	}
	if stray.stray.lives != livesBefore-1 {
		t.Fatalf("expected %d lives, got %d", livesBefore-1, stray.stray.lives)
	}
	if stray.Health != stray.MaxHealth {
		t.Fatalf("revive did not restore full health: %v", stray.Health)
	}
	if stray.status.invincible <= 0 {
		t.Fatalf("revive without invincibility window")
	}
	if stray.status.slow != 0 {
		t.Fatalf("revive should clear statuses, slow=%v", stray.status.slow)
	}

	spawn := w.farthestSpawnFrom(stray)
	if stray.X != spawn.X || stray.Y != spawn.Y {
		t.Fatalf("expected teleport to (%v, %v), got (%v, %v)", spawn.X, spawn.Y, stray.X, stray.Y)
	}
}

func TestStrayFinalLifeIsPermanent(t *testing.T) {
	w := newDuelWorld(ArchetypeBruiser, ArchetypeStray)
	stray := w.units[w.enemyID]
	now := time.Unix(0, 0)
	stray.stray.lives = 1

	w.applyDamage(stray, stray.MaxHealth+10, damagePhysical, w.playerID, now)

	if stray.Alive {
		t.Fatalf("stray survived its last life")
	}
	w.checkMatchEnd()
	if w.phase != PhaseVictory {
		t.Fatalf("expected victory after the last life, got %q", w.phase)
	}
}

func TestTapReleaseSwipes(t *testing.T) {
	w := newDuelWorld(ArchetypeStray, ArchetypeBruiser)
	stray := w.units[w.playerID]
	target := w.units[w.enemyID]
	target.X, target.Y = stray.X+30, stray.Y
	stray.Aim = 0
	now := time.Unix(0, 0)

	w.strayPress(stray, SlotPrimary, now)
	stray.stray.pounceCharge.elapsed = strayTapThreshold / 2
	w.strayRelease(stray, SlotPrimary, now)

	if target.Health >= target.MaxHealth {
		t.Fatalf("tap release did not swipe")
	}
	if stray.stray.pounceTimer > 0 {
		t.Fatalf("tap release launched a pounce")
	}
}

func TestChargedReleaseLaunchesPounce(t *testing.T) {
	w := newDuelWorld(ArchetypeStray, ArchetypeBruiser)
	stray := w.units[w.playerID]
	stats := w.stats(stray).Stray
	stray.aim = vec2{X: stray.X + 200, Y: stray.Y}
	now := time.Unix(0, 0)

	w.strayPress(stray, SlotPrimary, now)
	stray.stray.pounceCharge.elapsed = stats.PounceMaxCharge
	w.strayRelease(stray, SlotPrimary, now)

	kit := stray.stray
	if kit.pounceTimer <= 0 {
		t.Fatalf("full charge did not launch a pounce")
	}
	if !kit.pounceFull {
		t.Fatalf("full charge not flagged for the silence bonus")
	}
	speed := math.Hypot(stray.VX, stray.VY)
	if math.Abs(speed-stats.PounceMaxSpeed) > 1e-6 {
		t.Fatalf("expected pounce speed %v, got %v", stats.PounceMaxSpeed, speed)
	}
}

func TestPounceHitsOnceWithFullChargeSilence(t *testing.T) {
	w := newDuelWorld(ArchetypeStray, ArchetypeBruiser)
	stray := w.units[w.playerID]
	target := w.units[w.enemyID]
	now := time.Unix(0, 0)

	target.X, target.Y = stray.X, stray.Y
	kit := stray.stray
	kit.pounceTimer = 0.3
	kit.pounceFull = true

	w.advanceStray(stray, testDT, now)

	if !kit.pounceHit {
		t.Fatalf("overlapping pounce did not connect")
	}
	if target.status.slow <= 0 || target.status.disarm <= 0 || target.status.silence <= 0 {
		t.Fatalf("pounce riders missing: slow=%v disarm=%v silence=%v",
			target.status.slow, target.status.disarm, target.status.silence)
	}

	healthAfterHit := target.Health
	w.advanceStray(stray, testDT, now)
	if target.Health != healthAfterHit {
		t.Fatalf("pounce hit the same target twice")
	}
}

func TestPounceHalvesIncomingDamage(t *testing.T) {
	w := newDuelWorld(ArchetypeBruiser, ArchetypeStray)
	stray := w.units[w.enemyID]
	now := time.Unix(0, 0)
	stray.stray.pounceTimer = 0.3

	w.applyDamage(stray, 20, damagePhysical, w.playerID, now)

	want := 20 * pounceDamageTaken
	got := stray.MaxHealth - stray.Health
	if math.Abs(got-want) > 1e-9 {
		t.Fatalf("expected %v damage mid-pounce, got %v", want, got)
	}
}

func TestYowlDeflectsProjectiles(t *testing.T) {
	w := newDuelWorld(ArchetypeStray, ArchetypeGunner)
	stray := w.units[w.playerID]
	enemy := w.units[w.enemyID]
	enemy.X, enemy.Y = stray.X+80, stray.Y
	now := time.Unix(0, 0)

	proj := w.spawnProjectile(&projectileState{
		Projectile: Projectile{
			Kind:    ProjectileDirect,
			OwnerID: enemy.ID,
			X:       stray.X + 40,
			Y:       stray.Y,
			Radius:  5,
			Damage:  10,
		},
		velocity: vec2{X: -400, Y: 0},
		life:     1,
	})

	if !w.strayYowl(stray, now) {
		t.Fatalf("yowl rejected")
	}
	if proj.OwnerID != stray.ID {
		t.Fatalf("deflected projectile kept its old owner %q", proj.OwnerID)
	}
	if proj.velocity.X <= 0 {
		t.Fatalf("deflected projectile still inbound: %v", proj.velocity)
	}
	if enemy.VX <= 0 {
		t.Fatalf("yowl applied no knockback, VX=%v", enemy.VX)
	}
	if enemy.status.slow <= 0 {
		t.Fatalf("yowl above the last life should slow, got %v", enemy.status.slow)
	}
}

func TestYowlTerrifiesOnLastLife(t *testing.T) {
	w := newDuelWorld(ArchetypeStray, ArchetypeGunner)
	stray := w.units[w.playerID]
	enemy := w.units[w.enemyID]
	enemy.X, enemy.Y = stray.X+80, stray.Y
	stray.stray.lives = 1

	if !w.strayYowl(stray, time.Unix(0, 0)) {
		t.Fatalf("yowl rejected")
	}
	if enemy.status.fear <= 0 {
		t.Fatalf("last-life yowl did not terrify, fear=%v", enemy.status.fear)
	}
}

func TestDoomMarkDetonatesAndCracksWalls(t *testing.T) {
	w := newDuelWorld(ArchetypeStray, ArchetypeBruiser)
	stray := w.units[w.playerID]
	target := w.units[w.enemyID]
	stats := w.stats(stray).Stray
	now := time.Unix(0, 0)

	target.X, target.Y = 700, 360
	w.obstacles = []Obstacle{{
		ID: "obstacle-1", Type: obstacleTypeWall, Destructible: true,
		X: target.X + 40, Y: target.Y - 20, Width: 24, Height: 40,
	}}

	if !w.strayMark(stray, now) {
		t.Fatalf("mark rejected")
	}
	if len(w.groundEffects) != 1 || w.groundEffects[0].Kind != ZoneDoomMark {
		t.Fatalf("mark zone missing: %+v", w.groundEffects)
	}

	healthBefore := target.Health
	for i := 0; i < int((stats.MarkDelay+0.5)*float64(tickRate)); i++ {
		now = now.Add(time.Second / tickRate)
		w.advanceGroundEffects(testDT, now)
	}

	if target.Health >= healthBefore {
		t.Fatalf("doom mark dealt no damage")
	}
	if len(w.obstacles) != 0 {
		t.Fatalf("destructible wall survived the blast")
	}
	crack := false
	for _, zone := range w.groundEffects {
		if zone.Kind == ZoneCrack {
			crack = true
		}
	}
	if !crack {
		t.Fatalf("no crack left where the wall stood")
	}
}
