package server

// chargePhase is the tiny state machine behind hold-and-release abilities.
type chargePhase int

const (
	chargeIdle chargePhase = iota
	chargeCharging
)

// chargeState tracks one hold-and-release ability. Both the input path and
// the AI path go through begin/advance/release, so their behavior cannot
// diverge.
type chargeState struct {
	phase     chargePhase
	elapsed   float64
	maxCharge float64
	holdGrace float64
}

func newChargeState(maxCharge, holdGrace float64) chargeState {
	return chargeState{maxCharge: maxCharge, holdGrace: holdGrace}
}

func (c *chargeState) charging() bool { return c.phase == chargeCharging }

func (c *chargeState) begin() bool {
	if c.phase != chargeIdle {
		return false
	}
	c.phase = chargeCharging
	c.elapsed = 0
	return true
}

// advance accumulates hold time and reports whether the grace period after a
// full charge has lapsed, forcing an auto-release.
func (c *chargeState) advance(dt float64) (forced bool) {
	if c.phase != chargeCharging {
		return false
	}
	c.elapsed += dt
	return c.elapsed >= c.maxCharge+c.holdGrace
}

// release ends the charge and returns the power ratio in [0, 1].
func (c *chargeState) release() (float64, bool) {
	if c.phase != chargeCharging {
		return 0, false
	}
	ratio := clamp(c.elapsed/c.maxCharge, 0, 1)
	c.phase = chargeIdle
	c.elapsed = 0
	return ratio, true
}

// interrupt cancels the charge without producing a release.
func (c *chargeState) interrupt() {
	c.phase = chargeIdle
	c.elapsed = 0
}

// ratio reports current progress without mutating the machine.
func (c *chargeState) ratio() float64 {
	if c.phase != chargeCharging || c.maxCharge <= 0 {
		return 0
	}
	return clamp(c.elapsed/c.maxCharge, 0, 1)
}

// chargeScale maps a power ratio onto a min/max stat bound.
func chargeScale(min, max, ratio float64) float64 {
	return lerp(min, max, clamp(ratio, 0, 1))
}
