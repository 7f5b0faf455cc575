package geometry

import "math"

// Centroid returns the arithmetic mean of points. A closing point that repeats
// the first one is counted like any other point.
func Centroid(points []Point2D) Point2D {
	if len(points) == 0 {
		return Point2D{}
	}
	var sx, sy float64
	for _, p := range points {
		sx += p.X
		sy += p.Y
	}
	n := float64(len(points))
	return Point2D{X: sx / n, Y: sy / n}
}

// ExpandPolygon scales every point's offset from the centroid by scale.
func ExpandPolygon(points []Point2D, scale float64) []Point2D {
	if len(points) == 0 {
		return nil
	}
	c := Centroid(points)
	out := make([]Point2D, len(points))
	for i, p := range points {
		out[i] = Point2D{
			X: c.X + (p.X-c.X)*scale,
			Y: c.Y + (p.Y-c.Y)*scale,
		}
	}
	return out
}

// BoundingBox returns the smallest rectangle containing points.
func BoundingBox(points []Point2D) Rect {
	if len(points) == 0 {
		return Rect{}
	}
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, p := range points {
		minX = math.Min(minX, p.X)
		minY = math.Min(minY, p.Y)
		maxX = math.Max(maxX, p.X)
		maxY = math.Max(maxY, p.Y)
	}
	return Rect{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}

// Translate returns points shifted by d.
func Translate(points []Point2D, d Point2D) []Point2D {
	out := make([]Point2D, len(points))
	for i, p := range points {
		out[i] = p.Add(d)
	}
	return out
}
