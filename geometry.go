package server

import "math"

type vec2 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func (v vec2) add(o vec2) vec2 { return vec2{X: v.X + o.X, Y: v.Y + o.Y} }

func (v vec2) sub(o vec2) vec2 { return vec2{X: v.X - o.X, Y: v.Y - o.Y} }

func (v vec2) scale(s float64) vec2 { return vec2{X: v.X * s, Y: v.Y * s} }

func (v vec2) length() float64 { return math.Hypot(v.X, v.Y) }

// normalized returns a unit vector, or the zero vector for zero input.
func (v vec2) normalized() vec2 {
	length := v.length()
	if length == 0 {
		return vec2{}
	}
	return vec2{X: v.X / length, Y: v.Y / length}
}

func (v vec2) dot(o vec2) float64 { return v.X*o.X + v.Y*o.Y }

func clamp(value, min, max float64) float64 {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}

func lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

func distance(x1, y1, x2, y2 float64) float64 {
	return math.Hypot(x1-x2, y1-y2)
}

func angleOf(dx, dy float64) float64 {
	return math.Atan2(dy, dx)
}

// angleDiff returns the smallest signed difference between two angles.
func angleDiff(a, b float64) float64 {
	diff := math.Mod(a-b, 2*math.Pi)
	if diff > math.Pi {
		diff -= 2 * math.Pi
	}
	if diff < -math.Pi {
		diff += 2 * math.Pi
	}
	return diff
}

// circleRectOverlap reports whether a circle intersects an axis-aligned rect.
func circleRectOverlap(cx, cy, radius float64, obs Obstacle) bool {
	closestX := clamp(cx, obs.X, obs.X+obs.Width)
	closestY := clamp(cy, obs.Y, obs.Y+obs.Height)
	dx := cx - closestX
	dy := cy - closestY
	return dx*dx+dy*dy <= radius*radius
}

// pointSegmentDistance returns the distance from point p to segment ab.
func pointSegmentDistance(p, a, b vec2) float64 {
	ab := b.sub(a)
	lenSq := ab.dot(ab)
	if lenSq == 0 {
		return p.sub(a).length()
	}
	t := clamp(p.sub(a).dot(ab)/lenSq, 0, 1)
	closest := a.add(ab.scale(t))
	return p.sub(closest).length()
}

// coneContains reports whether target lies inside a cone rooted at origin
// with the given direction angle, reach, and half-angle.
func coneContains(origin vec2, angle, reach, halfAngle float64, target vec2, targetRadius float64) bool {
	offset := target.sub(origin)
	dist := offset.length()
	if dist-targetRadius > reach {
		return false
	}
	if dist <= targetRadius {
		return true
	}
	diff := math.Abs(angleDiff(angleOf(offset.X, offset.Y), angle))
	// Widen by the angular size of the target so grazing hits still land.
	return diff <= halfAngle+math.Asin(clamp(targetRadius/dist, 0, 1))
}
