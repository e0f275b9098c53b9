package server

import (
	"testing"
	"time"

	"orb-arena/server/logging"
)

// newAIWorld keeps the enemy's brain attached, unlike newDuelWorld.
func newAIWorld(player, enemy Archetype) *World {
	return newWorld(WorldConfig{
		PlayerArchetype: player,
		EnemyArchetype:  enemy,
		Obstacles:       false,
		Seed:            "test",
	}, logging.NopPublisher())
}

func findCommand(commands []Command, actorID string, kind CommandType, slot ActionSlot) *Command {
	for i := range commands {
		cmd := &commands[i]
		if cmd.ActorID != actorID || cmd.Type != kind {
			continue
		}
		if slot != "" && (cmd.Action == nil || cmd.Action.Slot != slot) {
			continue
		}
		return cmd
	}
	return nil
}

func TestAIEmitsAimAndMoveEveryTick(t *testing.T) {
	w := newAIWorld(ArchetypeBruiser, ArchetypePyro)
	now := time.Unix(0, 0)

	commands := w.runAI(1, now)

	if findCommand(commands, w.enemyID, CommandAim, "") == nil {
		t.Fatalf("no aim command emitted: %+v", commands)
	}
	if findCommand(commands, w.enemyID, CommandMove, "") == nil {
		t.Fatalf("no move command emitted: %+v", commands)
	}
	for _, cmd := range commands {
		if cmd.ActorID != w.enemyID {
			t.Fatalf("AI issued a command for %q", cmd.ActorID)
		}
	}
}

func TestAIHoldsMoveDirectionBetweenDecisions(t *testing.T) {
	w := newAIWorld(ArchetypeBruiser, ArchetypePyro)
	enemy := w.units[w.enemyID]
	now := time.Unix(0, 0)

	w.runAI(1, now)
	decided := enemy.ai.moveDir
	if enemy.ai.nextDecisionTick <= 1 {
		t.Fatalf("decision tick not scheduled: %d", enemy.ai.nextDecisionTick)
	}

	w.runAI(2, now)
	if enemy.ai.moveDir != decided {
		t.Fatalf("move direction changed before the decision tick: %+v -> %+v", decided, enemy.ai.moveDir)
	}
}

func TestAISeeksDistantOpponent(t *testing.T) {
	w := newAIWorld(ArchetypeBruiser, ArchetypeBruiser)
	enemy := w.units[w.enemyID]
	player := w.units[w.playerID]
	now := time.Unix(0, 0)

	commands := w.runAI(1, now)
	move := findCommand(commands, w.enemyID, CommandMove, "")
	if move == nil {
		t.Fatalf("no move command emitted")
	}
	toTarget := player.pos().sub(enemy.pos()).normalized()
	if move.Move.DX*toTarget.X+move.Move.DY*toTarget.Y <= 0 {
		t.Fatalf("melee AI not closing on a distant target: %+v", move.Move)
	}
}

func TestAIPyroChannelsInReach(t *testing.T) {
	w := newAIWorld(ArchetypeBruiser, ArchetypePyro)
	enemy := w.units[w.enemyID]
	player := w.units[w.playerID]
	now := time.Unix(0, 0)

	player.X, player.Y = enemy.X-120, enemy.Y
	enemy.Aim = angleOf(player.X-enemy.X, player.Y-enemy.Y)

	commands := w.runAI(1, now)
	if findCommand(commands, w.enemyID, CommandPress, SlotPrimary) == nil {
		t.Fatalf("pyro AI did not open the flame channel: %+v", commands)
	}
}

func TestAIFocusesAdjacentHostileDrone(t *testing.T) {
	w := newAIWorld(ArchetypeGunner, ArchetypeGunner)
	enemy := w.units[w.enemyID]
	player := w.units[w.playerID]
	now := time.Unix(0, 0)

	// Opponent in the far corner, drone parked next to the AI.
	player.X, player.Y = arenaWidth-30, arenaHeight-30
	drone := w.spawnDrone(player, w.stats(player).Gunner)
	drone.X, drone.Y = enemy.X+40, enemy.Y
	enemy.Aim = 0

	commands := w.runAI(1, now)
	aim := findCommand(commands, w.enemyID, CommandAim, "")
	if aim == nil {
		t.Fatalf("no aim command emitted")
	}
	if distance(aim.Aim.X, aim.Aim.Y, drone.X, drone.Y) > 1 {
		t.Fatalf("aim (%v,%v) ignored the adjacent drone at (%v,%v)", aim.Aim.X, aim.Aim.Y, drone.X, drone.Y)
	}
	if findCommand(commands, w.enemyID, CommandPress, SlotPrimary) == nil {
		t.Fatalf("gunner AI never opened fire on the drone: %+v", commands)
	}
}

func TestAIKeepsOpponentFocusAtCloseRange(t *testing.T) {
	w := newAIWorld(ArchetypeGunner, ArchetypeGunner)
	enemy := w.units[w.enemyID]
	player := w.units[w.playerID]
	now := time.Unix(0, 0)

	player.X, player.Y = enemy.X-120, enemy.Y
	drone := w.spawnDrone(player, w.stats(player).Gunner)
	drone.X, drone.Y = enemy.X+40, enemy.Y

	commands := w.runAI(1, now)
	aim := findCommand(commands, w.enemyID, CommandAim, "")
	if aim == nil {
		t.Fatalf("no aim command emitted")
	}
	if distance(aim.Aim.X, aim.Aim.Y, drone.X, drone.Y) <= 1 {
		t.Fatalf("AI aimed at a drone with the opponent in reach")
	}
}

func TestAIIgnoresDeadTarget(t *testing.T) {
	w := newAIWorld(ArchetypeBruiser, ArchetypeStray)
	w.units[w.playerID].Alive = false
	now := time.Unix(0, 0)

	commands := w.runAI(1, now)
	for _, cmd := range commands {
		if cmd.Type == CommandPress {
			t.Fatalf("AI attacked a dead target: %+v", cmd)
		}
	}
}

func TestAIReleasesScheduledHolds(t *testing.T) {
	w := newAIWorld(ArchetypeBruiser, ArchetypeBruiser)
	enemy := w.units[w.enemyID]
	enemy.ai.held[SlotSkill] = 5
	now := time.Unix(0, 0)

	early := w.runAI(4, now)
	if findCommand(early, w.enemyID, CommandRelease, SlotSkill) != nil {
		t.Fatalf("hold released before its tick")
	}

	due := w.runAI(5, now)
	if findCommand(due, w.enemyID, CommandRelease, SlotSkill) == nil {
		t.Fatalf("scheduled hold never released: %+v", due)
	}
	if _, still := enemy.ai.held[SlotSkill]; still {
		t.Fatalf("released hold still tracked")
	}
}

func TestAICommandsFlowThroughStep(t *testing.T) {
	w := newAIWorld(ArchetypeBruiser, ArchetypePyro)
	enemy := w.units[w.enemyID]
	now := time.Unix(0, 0)

	for tick := uint64(1); tick <= uint64(2*tickRate); tick++ {
		now = now.Add(time.Second / tickRate)
		w.Step(tick, now, testDT, nil)
	}

	if enemy.intentX == 0 && enemy.intentY == 0 && enemy.X == spawnPoints[1].X {
		t.Fatalf("AI never moved its unit")
	}
	if enemy.aim == (vec2{}) {
		t.Fatalf("AI never aimed")
	}
}
