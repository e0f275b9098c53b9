package combat

import (
	"context"

	"orb-arena/server/logging"
)

const (
	// EventDamage is emitted when an attack or hazard deals damage.
	EventDamage logging.EventType = "combat.damage"
	// EventDefeat is emitted when a combatant runs out of health for good.
	EventDefeat logging.EventType = "combat.defeat"
	// EventRevived is emitted when a combatant burns a life instead of dying.
	EventRevived logging.EventType = "combat.revived"
)

// DamagePayload captures the amount dealt to a single target.
type DamagePayload struct {
	Ability      string  `json:"ability,omitempty"`
	Amount       float64 `json:"amount"`
	TargetHealth float64 `json:"targetHealth"`
}

// DefeatPayload describes the context of a fatal blow.
type DefeatPayload struct {
	Ability string `json:"ability,omitempty"`
}

// RevivedPayload records how many lives the survivor has left.
type RevivedPayload struct {
	LivesLeft int `json:"livesLeft"`
}

// Damage publishes a combat damage event for a single target.
func Damage(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, target logging.EntityRef, payload DamagePayload, extra map[string]any) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventDamage,
		Tick:     tick,
		Actor:    actor,
		Targets:  []logging.EntityRef{target},
		Severity: logging.SeverityInfo,
		Category: logging.CategoryCombat,
		Payload:  payload,
		Extra:    extra,
	})
}

// Defeat publishes a combat defeat event for the eliminated combatant.
func Defeat(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, target logging.EntityRef, payload DefeatPayload, extra map[string]any) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventDefeat,
		Tick:     tick,
		Actor:    actor,
		Targets:  []logging.EntityRef{target},
		Severity: logging.SeverityInfo,
		Category: logging.CategoryCombat,
		Payload:  payload,
		Extra:    extra,
	})
}

// Revived publishes a revival event for a combatant that burned a life.
func Revived(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload RevivedPayload, extra map[string]any) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventRevived,
		Tick:     tick,
		Actor:    actor,
		Severity: logging.SeverityInfo,
		Category: logging.CategoryCombat,
		Payload:  payload,
		Extra:    extra,
	})
}
