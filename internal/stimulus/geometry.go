package stimulus

import "math"

// Point is a position in the playing field, in the same unit as its size.
type Point struct {
	X, Y float64
}

// RingPositions returns count equidistant points on a circle around the
// center of a square field, starting at the top and going clockwise.
// distance is the radius as a fraction of size.
func RingPositions(count int, distance, size float64) []Point {
	center := size / 2
	radius := distance * size
	out := make([]Point, count)
	for i := range out {
		angle := 2*math.Pi*float64(i)/float64(count) - math.Pi/2
		out[i] = Point{
			X: center + radius*math.Cos(angle),
			Y: center + radius*math.Sin(angle),
		}
	}
	return out
}

// IsHit reports whether tap lies within tolerance of target.
func IsHit(tap, target Point, tolerance float64) bool {
	return math.Hypot(tap.X-target.X, tap.Y-target.Y) <= tolerance
}
