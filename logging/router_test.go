package logging_test

import (
	"context"
	"testing"
	"time"

	"orb-arena/server/logging"
	"orb-arena/server/logging/sinks"
)

func newMemoryRouter(t *testing.T, cfg logging.Config) (*logging.Router, *sinks.Memory) {
	t.Helper()
	memory := sinks.NewMemory()
	clock := logging.ClockFunc(func() time.Time { return time.Unix(42, 0) })
	router, err := logging.NewRouter(clock, cfg, []logging.NamedSink{
		{Name: "memory", Sink: memory},
	})
	if err != nil {
		t.Fatalf("new router: %v", err)
	}
	return router, memory
}

func TestRouterDeliversToSinks(t *testing.T) {
	cfg := logging.DefaultConfig()
	cfg.MinimumSeverity = logging.SeverityDebug
	router, memory := newMemoryRouter(t, cfg)

	router.Publish(context.Background(), logging.Event{
		Type:     "combat.damage",
		Tick:     9,
		Severity: logging.SeverityInfo,
		Actor:    logging.UnitRef("unit-player"),
	})
	if err := router.Close(context.Background()); err != nil {
		t.Fatalf("close: %v", err)
	}

	events := memory.Events()
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	if events[0].Type != "combat.damage" || events[0].Tick != 9 {
		t.Fatalf("unexpected event %+v", events[0])
	}
	if !events[0].Time.Equal(time.Unix(42, 0)) {
		t.Fatalf("router did not stamp the clock time: %v", events[0].Time)
	}

	stats := router.Stats()
	if stats.EventsTotal != 1 || stats.DroppedTotal != 0 {
		t.Fatalf("unexpected stats %+v", stats)
	}
}

func TestRouterFiltersBelowMinimumSeverity(t *testing.T) {
	cfg := logging.DefaultConfig()
	cfg.MinimumSeverity = logging.SeverityWarn
	router, memory := newMemoryRouter(t, cfg)

	router.Publish(context.Background(), logging.Event{
		Type:     "status.applied",
		Severity: logging.SeverityDebug,
	})
	if err := router.Close(context.Background()); err != nil {
		t.Fatalf("close: %v", err)
	}

	if got := memory.Events(); len(got) != 0 {
		t.Fatalf("debug event passed a warn filter: %+v", got)
	}
}

func TestRouterCategoryMinimumOverridesGlobalFloor(t *testing.T) {
	cfg := logging.DefaultConfig()
	cfg.MinimumSeverity = logging.SeverityWarn
	cfg.CategoryMinimum = map[string]logging.Severity{
		logging.CategoryMatch: logging.SeverityDebug,
	}
	router, memory := newMemoryRouter(t, cfg)

	router.Publish(context.Background(), logging.Event{
		Type:     "match.started",
		Severity: logging.SeverityInfo,
		Category: logging.CategoryMatch,
	})
	router.Publish(context.Background(), logging.Event{
		Type:     "combat.damage",
		Severity: logging.SeverityInfo,
		Category: logging.CategoryCombat,
	})
	if err := router.Close(context.Background()); err != nil {
		t.Fatalf("close: %v", err)
	}

	events := memory.Events()
	if len(events) != 1 {
		t.Fatalf("expected only the match event, got %d", len(events))
	}
	if events[0].Category != logging.CategoryMatch {
		t.Fatalf("wrong event passed the floor: %+v", events[0])
	}
}

func TestRouterIgnoresUntypedEvents(t *testing.T) {
	cfg := logging.DefaultConfig()
	router, memory := newMemoryRouter(t, cfg)

	router.Publish(context.Background(), logging.Event{Severity: logging.SeverityError})
	if err := router.Close(context.Background()); err != nil {
		t.Fatalf("close: %v", err)
	}

	if got := memory.Events(); len(got) != 0 {
		t.Fatalf("untyped event was forwarded: %+v", got)
	}
}

func TestRouterAttachesGlobalFields(t *testing.T) {
	cfg := logging.DefaultConfig()
	cfg.MinimumSeverity = logging.SeverityDebug
	cfg.Fields = map[string]any{"build": "test"}
	router, memory := newMemoryRouter(t, cfg)

	router.Publish(context.Background(), logging.Event{
		Type:     "match.started",
		Severity: logging.SeverityInfo,
		Extra:    map[string]any{"seed": "duel"},
	})
	if err := router.Close(context.Background()); err != nil {
		t.Fatalf("close: %v", err)
	}

	events := memory.Events()
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	if events[0].Extra["build"] != "test" {
		t.Fatalf("global field missing: %+v", events[0].Extra)
	}
	if events[0].Extra["seed"] != "duel" {
		t.Fatalf("event field clobbered: %+v", events[0].Extra)
	}
}

func TestRouterSinkLookup(t *testing.T) {
	router, memory := newMemoryRouter(t, logging.DefaultConfig())
	defer router.Close(context.Background())

	if router.Sink("memory") != memory {
		t.Fatalf("sink lookup by name failed")
	}
	if router.Sink("json") != nil {
		t.Fatalf("lookup invented a sink")
	}
}

func TestWithFieldsDoesNotOverrideEventFields(t *testing.T) {
	var captured []logging.Event
	base := logging.PublisherFunc(func(_ context.Context, event logging.Event) {
		captured = append(captured, event)
	})
	wrapped := logging.WithFields(base, map[string]any{"match": "a", "mode": "duel"})

	wrapped.Publish(context.Background(), logging.Event{
		Type:  "match.ended",
		Extra: map[string]any{"match": "b"},
	})

	if len(captured) != 1 {
		t.Fatalf("expected 1 event, got %d", len(captured))
	}
	if captured[0].Extra["match"] != "b" {
		t.Fatalf("wrapper overrode an event field: %+v", captured[0].Extra)
	}
	if captured[0].Extra["mode"] != "duel" {
		t.Fatalf("wrapper field missing: %+v", captured[0].Extra)
	}
}
