// Package input moves the pointer along timed paths. A Curve describes the
// path; MoveSmooth and MoveRelativeSmooth replay it at a fixed update rate.
package input

import "fmt"

// Vec is a position in pixels with sub-pixel precision.
type Vec struct {
	X, Y float64
}

// Curve is one of Linear, ConstantAcceleration or CurvedAcceleration.
type Curve interface {
	fmt.Stringer
	isCurve()
}

// Linear moves at constant speed.
type Linear struct{}

// ConstantAcceleration applies the same acceleration A (px/s²) on both axes.
// A positive A starts slow and speeds up; A of 0 is Linear.
type ConstantAcceleration struct {
	A float64
}

// CurvedAcceleration accelerates each axis independently, which bends the
// path between the two points.
type CurvedAcceleration struct {
	AX, AY float64
}

func (Linear) isCurve()               {}
func (ConstantAcceleration) isCurve() {}
func (CurvedAcceleration) isCurve()   {}

func (Linear) String() string { return "linear" }

func (c ConstantAcceleration) String() string {
	return fmt.Sprintf("constant-acceleration(%g)", c.A)
}

func (c CurvedAcceleration) String() string {
	return fmt.Sprintf("curved-acceleration(%g,%g)", c.AX, c.AY)
}

// PositionAt evaluates c at elapsed seconds t of a movement from start to
// end lasting total seconds. At t == total every curve is at end.
func PositionAt(c Curve, start, end Vec, total, t float64) Vec {
	if total <= 0 {
		return end
	}
	switch c := c.(type) {
	case ConstantAcceleration:
		return accelerated(start, end, total, t, c.A, c.A)
	case CurvedAcceleration:
		return accelerated(start, end, total, t, c.AX, c.AY)
	default:
		p := t / total
		return Vec{
			X: start.X + (end.X-start.X)*p,
			Y: start.Y + (end.Y-start.Y)*p,
		}
	}
}

// accelerated solves s(t) = start + v*t + a*t²/2 with v picked so that
// s(total) = end.
func accelerated(start, end Vec, total, t, ax, ay float64) Vec {
	vx := (2*(end.X-start.X) - ax*total*total) / (2 * total)
	vy := (2*(end.Y-start.Y) - ay*total*total) / (2 * total)
	return Vec{
		X: start.X + vx*t + ax*t*t/2,
		Y: start.Y + vy*t + ay*t*t/2,
	}
}

// Button names a mouse button.
type Button string

const (
	ButtonLeft   Button = "left"
	ButtonRight  Button = "right"
	ButtonMiddle Button = "center"
)

// ParseButton accepts left, right, middle or center. Empty means left.
func ParseButton(s string) (Button, error) {
	switch s {
	case "", "left":
		return ButtonLeft, nil
	case "right":
		return ButtonRight, nil
	case "middle", "center":
		return ButtonMiddle, nil
	}
	return "", fmt.Errorf("%w: unknown mouse button %q", ErrInvalidMotion, s)
}
