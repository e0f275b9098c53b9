package server

import "fmt"

const (
	obstacleTypeWall  = "wall"
	obstacleTypeWater = "water"
)

type Obstacle struct {
	ID           string  `json:"id"`
	Type         string  `json:"type"`
	X            float64 `json:"x"`
	Y            float64 `json:"y"`
	Width        float64 `json:"width"`
	Height       float64 `json:"height"`
	Destructible bool    `json:"destructible,omitempty"`
}

func (o Obstacle) blocksMovement() bool {
	return o.Type == obstacleTypeWall
}

func (o Obstacle) center() vec2 {
	return vec2{X: o.X + o.Width/2, Y: o.Y + o.Height/2}
}

// defaultArenaObstacles lays out the duel arena: a broken wall line down the
// middle and two water pools near the flanks.
func defaultArenaObstacles() []Obstacle {
	obstacles := []Obstacle{
		{Type: obstacleTypeWall, X: arenaWidth/2 - 12, Y: arenaHeight*0.12, Width: 24, Height: arenaHeight * 0.24, Destructible: true},
		{Type: obstacleTypeWall, X: arenaWidth/2 - 12, Y: arenaHeight*0.64, Width: 24, Height: arenaHeight * 0.24, Destructible: true},
		{Type: obstacleTypeWall, X: arenaWidth*0.28 - 40, Y: arenaHeight*0.5 - 40, Width: 80, Height: 80},
		{Type: obstacleTypeWall, X: arenaWidth*0.72 - 40, Y: arenaHeight*0.5 - 40, Width: 80, Height: 80},
		{Type: obstacleTypeWater, X: arenaWidth*0.5 - 110, Y: arenaHeight*0.05, Width: 220, Height: 90},
		{Type: obstacleTypeWater, X: arenaWidth*0.5 - 110, Y: arenaHeight*0.95 - 90, Width: 220, Height: 90},
	}
	for i := range obstacles {
		obstacles[i].ID = fmt.Sprintf("obstacle-%d", i+1)
	}
	return obstacles
}

// removeObstacle deletes a destroyed wall from the world by id.
func (w *World) removeObstacle(id string) bool {
	for i, obs := range w.obstacles {
		if obs.ID != id {
			continue
		}
		w.obstacles = append(w.obstacles[:i], w.obstacles[i+1:]...)
		return true
	}
	return false
}
