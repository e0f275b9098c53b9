package match

import (
	"context"

	"orb-arena/server/logging"
)

const (
	// EventStarted is emitted once when a duel is created.
	EventStarted logging.EventType = "match.started"
	// EventEnded is emitted once when either combatant is defeated for good.
	EventEnded logging.EventType = "match.ended"
)

// StartedPayload records who is fighting and under which seed.
type StartedPayload struct {
	PlayerArchetype string `json:"playerArchetype"`
	EnemyArchetype  string `json:"enemyArchetype"`
	Seed            string `json:"seed"`
}

// EndedPayload records the outcome of a duel.
type EndedPayload struct {
	Winner string `json:"winner"`
	Phase  string `json:"phase"`
}

// Started publishes a match start event.
func Started(ctx context.Context, pub logging.Publisher, tick uint64, payload StartedPayload, extra map[string]any) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventStarted,
		Tick:     tick,
		Actor:    logging.WorldRef(),
		Severity: logging.SeverityInfo,
		Category: logging.CategoryMatch,
		Payload:  payload,
		Extra:    extra,
	})
}

// Ended publishes a match end event.
func Ended(ctx context.Context, pub logging.Publisher, tick uint64, payload EndedPayload, extra map[string]any) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventEnded,
		Tick:     tick,
		Actor:    logging.WorldRef(),
		Severity: logging.SeverityInfo,
		Category: logging.CategoryMatch,
		Payload:  payload,
		Extra:    extra,
	})
}
