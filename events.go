package server

import (
	"context"

	"orb-arena/server/logging"
	loggingstatusfx "orb-arena/server/logging/statusfx"
)

// SoundTrigger is a fire-and-forget notification for the audio collaborator.
// Triggers are drained into each broadcast and never awaited.
type SoundTrigger struct {
	Kind   string  `json:"kind"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	UnitID string  `json:"unit,omitempty"`
}

const (
	soundFlameOn     = "flame-on"
	soundFlameOff    = "flame-off"
	soundOverheat    = "overheat"
	soundFlask       = "flask-throw"
	soundExplosion   = "explosion"
	soundRifleShot   = "rifle-shot"
	soundScatterShot = "scatter-shot"
	soundReload      = "reload"
	soundModeSwitch  = "mode-switch"
	soundDroneDeploy = "drone-deploy"
	soundDroneShot   = "drone-shot"
	soundDroneDown   = "drone-down"
	soundSwing       = "swing"
	soundSlam        = "slam"
	soundBash        = "bash"
	soundSwipe       = "swipe"
	soundPounce      = "pounce"
	soundYowl        = "yowl"
	soundMark        = "mark"
	soundMarkBlast   = "mark-blast"
	soundRevive      = "revive"
	soundDefeat      = "defeat"
)

func (w *World) pushSound(kind string, at vec2, unitID string) {
	if w == nil {
		return
	}
	w.soundTriggers = append(w.soundTriggers, SoundTrigger{
		Kind:   kind,
		X:      at.X,
		Y:      at.Y,
		UnitID: unitID,
	})
}

// flushSoundTriggers drains the queued audio notifications.
func (w *World) flushSoundTriggers() []SoundTrigger {
	if len(w.soundTriggers) == 0 {
		return nil
	}
	drained := make([]SoundTrigger, len(w.soundTriggers))
	copy(drained, w.soundTriggers)
	w.soundTriggers = w.soundTriggers[:0]
	return drained
}

func (w *World) publishStatusApplied(targetID, status string, duration float64, sourceID string) {
	if w == nil || w.publisher == nil {
		return
	}
	loggingstatusfx.Applied(
		context.Background(),
		w.publisher,
		w.currentTick,
		w.entityRef(sourceID),
		logging.UnitRef(targetID),
		loggingstatusfx.AppliedPayload{Status: status, DurationSeconds: duration},
		nil,
	)
}

// entityRef classifies an id for log events. Destroyed entities still get a
// best-effort ref so events about them remain attributable.
func (w *World) entityRef(id string) logging.EntityRef {
	if id == "" {
		return logging.WorldRef()
	}
	if _, ok := w.units[id]; ok {
		return logging.UnitRef(id)
	}
	if _, ok := w.drones[id]; ok {
		return logging.DroneRef(id)
	}
	return logging.EntityRef{ID: id, Kind: logging.EntityKindUnknown}
}
