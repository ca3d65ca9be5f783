// Package region models rectangles on the desktop. A Region is either absolute
// (display coordinates) or relative to a captured area; Compose moves a
// relative Region into its parent's coordinate space.
package region

import (
	"fmt"
	"image"
)

type Point struct {
	X int `json:"x" yaml:"x"`
	Y int `json:"y" yaml:"y"`
}

func (p Point) String() string {
	return fmt.Sprintf("(%d,%d)", p.X, p.Y)
}

// Bounds is the origin + size view of a Region.
type Bounds struct {
	Left   int `json:"x" yaml:"x"`
	Top    int `json:"y" yaml:"y"`
	Width  int `json:"width" yaml:"width"`
	Height int `json:"height" yaml:"height"`
}

// Region returns the Region covered by b.
func (b Bounds) Region() Region {
	return FromRectangle(b.Left, b.Top, b.Width, b.Height)
}

// Region is an axis aligned rectangle spanning (SX,SY)-(EX,EY).
// Constructors always leave SX <= EX and SY <= EY.
type Region struct {
	SX, SY int
	EX, EY int
}

// FromPoints builds a Region from two corners given in any order.
func FromPoints(x1, y1, x2, y2 int) Region {
	if x1 > x2 {
		x1, x2 = x2, x1
	}
	if y1 > y2 {
		y1, y2 = y2, y1
	}
	return Region{SX: x1, SY: y1, EX: x2, EY: y2}
}

// FromRectangle builds a Region from an origin and a size.
func FromRectangle(x, y, w, h int) Region {
	return FromPoints(x, y, x+w, y+h)
}

// FromImageRect converts an image.Rectangle.
func FromImageRect(r image.Rectangle) Region {
	return FromPoints(r.Min.X, r.Min.Y, r.Max.X, r.Max.Y)
}

func (r Region) Width() int {
	return abs(r.EX - r.SX)
}

func (r Region) Height() int {
	return abs(r.EY - r.SY)
}

func (r Region) Origin() Point {
	return Point{X: r.SX, Y: r.SY}
}

// Rectangle returns the origin and the non-negative size of r.
func (r Region) Rectangle() Bounds {
	return Bounds{Left: r.SX, Top: r.SY, Width: r.Width(), Height: r.Height()}
}

// Center is the truncated average of the two corners.
func (r Region) Center() Point {
	return Point{X: (r.SX + r.EX) / 2, Y: (r.SY + r.EY) / 2}
}

// Compose translates r by the origin of parent. A match found inside a
// capture of parent becomes an absolute Region this way.
func (r Region) Compose(parent Region) Region {
	return Region{
		SX: r.SX + parent.SX,
		SY: r.SY + parent.SY,
		EX: r.EX + parent.SX,
		EY: r.EY + parent.SY,
	}
}

// Contains reports whether p lies inside r, edges included.
func (r Region) Contains(p Point) bool {
	return p.X >= r.SX && p.X <= r.EX && p.Y >= r.SY && p.Y <= r.EY
}

func (r Region) Empty() bool {
	return r.Width() == 0 || r.Height() == 0
}

func (r Region) ImageRect() image.Rectangle {
	return image.Rect(r.SX, r.SY, r.EX, r.EY)
}

func (r Region) String() string {
	return fmt.Sprintf("(%d,%d)-(%d,%d)", r.SX, r.SY, r.EX, r.EY)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
