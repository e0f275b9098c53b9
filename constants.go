package server

import "time"

const (
	ProtocolVersion = 1
	writeWait       = 10 * time.Second

	tickRate = 60 // ticks per second
	maxDelta = 0.1

	arenaWidth  = 1280.0
	arenaHeight = 720.0

	// Physics.
	friction          = 0.90
	moveAccel         = 2600.0
	restitution       = 0.78
	boundsBounce      = -0.5
	impactDamageSpeed = 420.0 // relative normal speed before collisions hurt
	impactDamageScale = 0.02
	maxKnockbackDelta = 520.0 // speed-change ceiling per impulse
	vaultMaxThickness = 28.0
	vaultSlowFactor   = 0.5
	waterSlowFactor   = 0.55

	// Status effects.
	slowMoveFactor      = 0.4
	paralyzeMoveFactor  = 0.02
	fearMoveSpeed       = 180.0
	burnFlatPerSecond   = 4.0
	burnPctPerSecond    = 0.015
	flameExposureRamp   = 1.0 // per second of flame contact
	flameExposureDecay  = 0.6
	flameExposureFactor = 0.25 // extra fire damage per exposure point
	wetFireResist       = 0.5
	pyroFireResist      = 0.35
	crossFireResist     = 0.85 // non-pyro, non-wet targets still shave a little
	pounceDamageTaken   = 0.5

	heartbeatInterval = 2 * time.Second
	disconnectAfter   = 3 * heartbeatInterval
)

var spawnPoints = [...]vec2{
	{X: arenaWidth * 0.2, Y: arenaHeight * 0.5},
	{X: arenaWidth * 0.8, Y: arenaHeight * 0.5},
	{X: arenaWidth * 0.5, Y: arenaHeight * 0.18},
	{X: arenaWidth * 0.5, Y: arenaHeight * 0.82},
}
