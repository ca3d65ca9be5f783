package input

import (
	"errors"
	"fmt"
	"math"
	"time"

	"gitlab.com/web-doodle/mavis/pkg/poll"
	"gitlab.com/web-doodle/mavis/pkg/region"
)

var ErrInvalidMotion = errors.New("invalid motion")

// Pointer is the subset of the input injector driven by this package.
type Pointer interface {
	// MovePointer jumps to an absolute position. Positions beyond
	// boundsW x boundsH are ignored.
	MovePointer(x, y, boundsW, boundsH int)
	MoveRelative(dx, dy int)
	// ScrollWheel turns the wheel by units; positive scrolls up.
	ScrollWheel(units int)
}

// Motion describes how a smooth movement is replayed.
type Motion struct {
	Duration       time.Duration
	MovesPerSecond int
	Curve          Curve      // nil means Linear
	Clock          poll.Clock // nil means the wall clock
}

func (m Motion) validate() error {
	if m.Duration <= 0 {
		return fmt.Errorf("%w: duration must be positive", ErrInvalidMotion)
	}
	if m.MovesPerSecond <= 0 {
		return fmt.Errorf("%w: moves per second must be positive", ErrInvalidMotion)
	}
	return nil
}

func (m Motion) curve() Curve {
	if m.Curve == nil {
		return Linear{}
	}
	return m.Curve
}

func (m Motion) clock() poll.Clock {
	if m.Clock == nil {
		return poll.RealClock()
	}
	return m.Clock
}

// run calls step with the elapsed seconds once per update until Duration has
// passed. Updates start at least 1/MovesPerSecond apart.
func (m Motion) run(step func(elapsed float64)) {
	clock := m.clock()
	period := time.Second / time.Duration(m.MovesPerSecond)
	start := clock.Now()
	for {
		tickStart := clock.Now()
		elapsed := tickStart.Sub(start)
		if elapsed >= m.Duration {
			return
		}
		step(elapsed.Seconds())
		poll.YieldUntil(clock, tickStart.Add(period))
	}
}

// MoveSmooth moves the pointer from one absolute position to another along
// m.Curve. The last update always lands on to.
func MoveSmooth(p Pointer, from, to region.Point, boundsW, boundsH int, m Motion) error {
	if err := m.validate(); err != nil {
		return err
	}
	if from == to {
		return fmt.Errorf("%w: start and end are the same point %v", ErrInvalidMotion, from)
	}
	curve := m.curve()
	start := Vec{X: float64(from.X), Y: float64(from.Y)}
	end := Vec{X: float64(to.X), Y: float64(to.Y)}
	total := m.Duration.Seconds()
	m.run(func(t float64) {
		pos := PositionAt(curve, start, end, total, t)
		p.MovePointer(pixel(pos.X), pixel(pos.Y), boundsW, boundsH)
	})
	p.MovePointer(to.X, to.Y, boundsW, boundsH)
	return nil
}

// MoveRelativeSmooth moves the pointer by (dx, dy) along m.Curve using
// relative steps. Fractions of a pixel are carried to the next update and the
// steps always add up to exactly (dx, dy).
func MoveRelativeSmooth(p Pointer, dx, dy int, m Motion) error {
	if err := m.validate(); err != nil {
		return err
	}
	if dx == 0 && dy == 0 {
		return fmt.Errorf("%w: zero movement", ErrInvalidMotion)
	}
	curve := m.curve()
	target := Vec{X: float64(dx), Y: float64(dy)}
	total := m.Duration.Seconds()

	var last, acc Vec
	var movedX, movedY int
	m.run(func(t float64) {
		pos := PositionAt(curve, Vec{}, target, total, t)
		acc.X += pos.X - last.X
		acc.Y += pos.Y - last.Y
		last = pos
		if math.Abs(acc.X) >= 1 {
			step := int(acc.X)
			p.MoveRelative(step, 0)
			movedX += step
			acc.X -= float64(step)
		}
		if math.Abs(acc.Y) >= 1 {
			step := int(acc.Y)
			p.MoveRelative(0, step)
			movedY += step
			acc.Y -= float64(step)
		}
	})
	if rx, ry := dx-movedX, dy-movedY; rx != 0 || ry != 0 {
		p.MoveRelative(rx, ry)
	}
	return nil
}

// ScrollSmooth turns the wheel one unit at a time, spreading delta units
// evenly over duration.
func ScrollSmooth(p Pointer, delta int, duration time.Duration, clock poll.Clock) error {
	if delta == 0 {
		return fmt.Errorf("%w: scroll delta must not be zero", ErrInvalidMotion)
	}
	if clock == nil {
		clock = poll.RealClock()
	}
	steps := delta
	unit := 1
	if delta < 0 {
		steps, unit = -delta, -1
	}
	tick := duration / time.Duration(steps)
	for i := 0; i < steps; i++ {
		p.ScrollWheel(unit)
		clock.Sleep(tick)
	}
	return nil
}

// pixel truncates like an unsigned conversion; positions left of or above
// the screen become 0.
func pixel(v float64) int {
	if v <= 0 || math.IsNaN(v) {
		return 0
	}
	return int(v)
}
