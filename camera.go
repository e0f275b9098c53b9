package server

const (
	cameraLerpRate  = 6.0  // fraction per second toward the target
	cameraMouseBias = 0.18 // how far the pointer drags the look-ahead
)

// updateCamera eases the camera toward the player with a pointer-biased
// look-ahead, clamped so the view never leaves the arena. The renderer
// consumes the result directly.
func (w *World) updateCamera(dt float64) {
	player, ok := w.units[w.playerID]
	if !ok {
		return
	}

	target := vec2{
		X: player.X + (w.pointer.X-player.X)*cameraMouseBias,
		Y: player.Y + (w.pointer.Y-player.Y)*cameraMouseBias,
	}
	target.X = clamp(target.X, 0, arenaWidth)
	target.Y = clamp(target.Y, 0, arenaHeight)

	t := clamp(cameraLerpRate*dt, 0, 1)
	w.camera.X = lerp(w.camera.X, target.X, t)
	w.camera.Y = lerp(w.camera.Y, target.Y, t)
}
