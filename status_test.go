package server

import (
	"context"
	"math"
	"testing"
	"time"

	"orb-arena/server/logging"
)

func TestExtendNeverShortensTimers(t *testing.T) {
	w := newDuelWorld(ArchetypeBruiser, ArchetypePyro)
	target := w.units[w.enemyID]
	now := time.Unix(0, 0)

	w.applySlow(target, 2.0, w.playerID, now)
	w.applySlow(target, 0.5, w.playerID, now)

	if target.status.slow != 2.0 {
		t.Fatalf("reapplying a shorter slow shortened the timer: %v", target.status.slow)
	}
}

func TestWetDousesBurn(t *testing.T) {
	w := newDuelWorld(ArchetypeBruiser, ArchetypePyro)
	target := w.units[w.enemyID]
	now := time.Unix(0, 0)

	w.applyBurn(target, 3.0, w.playerID, now)
	if target.status.burn != 3.0 {
		t.Fatalf("burn not applied: %v", target.status.burn)
	}
	w.applyWet(target, 1.5)
	if target.status.burn != 0 {
		t.Fatalf("wet should douse burn, got %v", target.status.burn)
	}
}

func TestBurnDamagesOverTime(t *testing.T) {
	w := newDuelWorld(ArchetypeBruiser, ArchetypeBruiser)
	target := w.units[w.enemyID]
	now := time.Unix(0, 0)

	w.applyBurn(target, 1.0, w.playerID, now)
	w.advanceStatusEffects(testDT, now)

	want := (burnFlatPerSecond + target.MaxHealth*burnPctPerSecond) * testDT * crossFireResist
	got := target.MaxHealth - target.Health
	if math.Abs(got-want) > 1e-9 {
		t.Fatalf("expected burn tick of %v, got %v", want, got)
	}
}

func TestPyroResistsFire(t *testing.T) {
	w := newDuelWorld(ArchetypeBruiser, ArchetypePyro)
	pyro := w.units[w.enemyID]
	now := time.Unix(0, 0)

	w.applyDamage(pyro, 10, damageFire, w.playerID, now)

	want := 10 * pyroFireResist
	got := pyro.MaxHealth - pyro.Health
	if math.Abs(got-want) > 1e-9 {
		t.Fatalf("expected %v fire damage on pyro, got %v", want, got)
	}
}

func TestFlameExposureRampsFireDamage(t *testing.T) {
	w := newDuelWorld(ArchetypeBruiser, ArchetypeBruiser)
	target := w.units[w.enemyID]
	now := time.Unix(0, 0)
	target.status.flameExposure = 2.0

	w.applyDamage(target, 10, damageFire, w.playerID, now)

	want := 10 * crossFireResist * (1 + 2.0*flameExposureFactor)
	got := target.MaxHealth - target.Health
	if math.Abs(got-want) > 1e-9 {
		t.Fatalf("expected exposure-scaled damage %v, got %v", want, got)
	}
}

func TestFlameExposureDecaysOutOfFlames(t *testing.T) {
	var s statusTimers
	s.inFlames = true
	s.advance(1.0)
	if s.flameExposure != flameExposureRamp {
		t.Fatalf("expected exposure %v after a second in flames, got %v", flameExposureRamp, s.flameExposure)
	}
	// inFlames resets each advance; the next second decays.
	s.advance(1.0)
	want := flameExposureRamp - flameExposureDecay
	if math.Abs(s.flameExposure-want) > 1e-9 {
		t.Fatalf("expected exposure to decay to %v, got %v", want, s.flameExposure)
	}
}

func TestSilenceInterruptsCharges(t *testing.T) {
	w := newDuelWorld(ArchetypeBruiser, ArchetypePyro)
	bruiser := w.units[w.playerID]
	now := time.Unix(0, 0)

	bruiser.bruiser.slamCharge.begin()
	bruiser.bruiser.comboStep = 2
	bruiser.bruiser.comboWindow = 1

	w.applySilence(bruiser, 1.0, w.enemyID, now)

	if bruiser.bruiser.slamCharge.charging() {
		t.Fatalf("silence left the slam charging")
	}
	if bruiser.bruiser.comboStep != 0 || bruiser.bruiser.comboWindow != 0 {
		t.Fatalf("silence should reset the combo, got step=%d window=%v",
			bruiser.bruiser.comboStep, bruiser.bruiser.comboWindow)
	}
}

func TestParalyzeBlocksPresses(t *testing.T) {
	w := newDuelWorld(ArchetypePyro, ArchetypeBruiser)
	pyro := w.units[w.playerID]
	now := time.Unix(0, 0)
	pyro.status.paralyze = 1

	w.Step(1, now, testDT, []Command{pressCommand(pyro.ID, SlotPrimary)})

	if pyro.pyro.channeling {
		t.Fatalf("paralyzed unit started channeling")
	}
}

func TestInvincibilityBlocksDamage(t *testing.T) {
	w := newDuelWorld(ArchetypeBruiser, ArchetypePyro)
	target := w.units[w.enemyID]
	now := time.Unix(0, 0)
	w.applyInvincible(target, 1.0)

	if w.applyDamage(target, 50, damagePhysical, w.playerID, now) {
		t.Fatalf("invincible unit took damage")
	}
	if target.Health != target.MaxHealth {
		t.Fatalf("health changed under invincibility: %v", target.Health)
	}
}

func TestStatusSnapshotOmitsInactiveTimers(t *testing.T) {
	var s statusTimers
	s.slow = 1.5
	view := s.snapshot()
	if len(view) != 1 || view["slow"] != 1.5 {
		t.Fatalf("unexpected status snapshot: %+v", view)
	}
	if (&statusTimers{}).snapshot() != nil {
		t.Fatalf("empty status block should snapshot to nil")
	}
}

func TestStatusApplicationIsLogged(t *testing.T) {
	var captured []logging.Event
	publisher := logging.PublisherFunc(func(_ context.Context, event logging.Event) {
		captured = append(captured, event)
	})
	w := newWorld(WorldConfig{
		PlayerArchetype: ArchetypeBruiser,
		EnemyArchetype:  ArchetypePyro,
		Seed:            "test",
	}, publisher)
	w.units[w.enemyID].ai = nil

	w.applySlow(w.units[w.enemyID], 1.0, w.playerID, time.Unix(0, 0))

	found := false
	for _, event := range captured {
		if event.Type == "status.applied" {
			found = true
			if len(event.Targets) != 1 || event.Targets[0].ID != w.enemyID {
				t.Fatalf("status event missing target: %+v", event)
			}
		}
	}
	if !found {
		t.Fatalf("no status.applied event published, got %d events", len(captured))
	}
}
