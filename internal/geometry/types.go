// Package geometry provides the planar types and solvers used for face alignment.
package geometry

import (
	"math"
	"reflect"
)

// Point2D is a point in pixel space.
type Point2D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Pt is shorthand for Point2D{X: x, Y: y}.
func Pt(x, y float64) Point2D {
	return Point2D{X: x, Y: y}
}

// Add returns p+q.
func (p Point2D) Add(q Point2D) Point2D {
	return Point2D{X: p.X + q.X, Y: p.Y + q.Y}
}

// Sub returns p-q.
func (p Point2D) Sub(q Point2D) Point2D {
	return Point2D{X: p.X - q.X, Y: p.Y - q.Y}
}

// Scale returns p scaled by f.
func (p Point2D) Scale(f float64) Point2D {
	return Point2D{X: p.X * f, Y: p.Y * f}
}

// Distance returns the Euclidean distance to q.
func (p Point2D) Distance(q Point2D) float64 {
	return math.Hypot(p.X-q.X, p.Y-q.Y)
}

// Finite reports whether both coordinates are finite.
func (p Point2D) Finite() bool {
	return isFinite(p.X) && isFinite(p.Y)
}

// Rect is an axis-aligned rectangle.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Center returns the center of r.
func (r Rect) Center() Point2D {
	return Point2D{X: r.X + r.Width/2, Y: r.Y + r.Height/2}
}

// Max returns the bottom-right corner.
func (r Rect) Max() Point2D {
	return Point2D{X: r.X + r.Width, Y: r.Y + r.Height}
}

// Empty reports whether r has no area.
func (r Rect) Empty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// NormalizePoint converts a landmark in any of the shapes a detector may
// produce into a Point2D. Accepted shapes are Point2D (or a pointer to one),
// maps with "x" and "y" keys, structs with X and Y fields, and sequences whose
// first two elements are numbers. The bool is false when v has no usable
// finite coordinates.
func NormalizePoint(v any) (Point2D, bool) {
	switch p := v.(type) {
	case nil:
		return Point2D{}, false
	case Point2D:
		return p, p.Finite()
	case *Point2D:
		if p == nil {
			return Point2D{}, false
		}
		return *p, p.Finite()
	case map[string]any:
		x, okx := toFloat(p["x"])
		y, oky := toFloat(p["y"])
		return finitePoint(x, y, okx && oky)
	case map[string]float64:
		x, okx := p["x"]
		y, oky := p["y"]
		return finitePoint(x, y, okx && oky)
	case []float64:
		if len(p) < 2 {
			return Point2D{}, false
		}
		return finitePoint(p[0], p[1], true)
	case []any:
		if len(p) < 2 {
			return Point2D{}, false
		}
		x, okx := toFloat(p[0])
		y, oky := toFloat(p[1])
		return finitePoint(x, y, okx && oky)
	}

	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return Point2D{}, false
		}
		rv = rv.Elem()
	}
	switch rv.Kind() {
	case reflect.Array, reflect.Slice:
		if rv.Len() < 2 {
			return Point2D{}, false
		}
		x, okx := toFloat(rv.Index(0).Interface())
		y, oky := toFloat(rv.Index(1).Interface())
		return finitePoint(x, y, okx && oky)
	case reflect.Struct:
		fx := rv.FieldByName("X")
		fy := rv.FieldByName("Y")
		if !fx.IsValid() || !fy.IsValid() || !fx.CanInterface() || !fy.CanInterface() {
			return Point2D{}, false
		}
		x, okx := toFloat(fx.Interface())
		y, oky := toFloat(fy.Interface())
		return finitePoint(x, y, okx && oky)
	}
	return Point2D{}, false
}

func finitePoint(x, y float64, ok bool) (Point2D, bool) {
	if !ok || !isFinite(x) || !isFinite(y) {
		return Point2D{}, false
	}
	return Point2D{X: x, Y: y}, true
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
