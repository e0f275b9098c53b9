package statusfx

import (
	"context"

	"orb-arena/server/logging"
)

// EventApplied is emitted when a status effect lands on a combatant.
const EventApplied logging.EventType = "status.applied"

// AppliedPayload names the status and how long it will run.
type AppliedPayload struct {
	Status          string  `json:"status"`
	DurationSeconds float64 `json:"durationSeconds"`
}

// Applied publishes a status application event.
func Applied(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, target logging.EntityRef, payload AppliedPayload, extra map[string]any) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventApplied,
		Tick:     tick,
		Actor:    actor,
		Targets:  []logging.EntityRef{target},
		Severity: logging.SeverityDebug,
		Category: logging.CategoryGameplay,
		Payload:  payload,
		Extra:    extra,
	})
}
