// Package poll repeats capture and search until a template shows up or a wall
// clock deadline passes.
package poll

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"gitlab.com/web-doodle/mavis/pkg/logging"
	"gitlab.com/web-doodle/mavis/pkg/region"
	"gitlab.com/web-doodle/mavis/pkg/vision"
)

// ErrTimedOut means the deadline passed while every tick came back empty.
var ErrTimedOut = errors.New("timed out")

const (
	DefaultTicksPerSecond = 10
	DefaultMaxWait        = 5 * time.Second
)

// Capturer grabs a fresh frame of a screen region.
type Capturer interface {
	Capture(area region.Region) (*vision.Frame, error)
}

type Poller struct {
	ticksPerSecond int
	maxWait        time.Duration
	pacing         Pacing
	clock          Clock
	capturer       Capturer
	matcher        *vision.Matcher
	logger         *slog.Logger
}

type Option func(*Poller)

func WithTicksPerSecond(n int) Option {
	return func(p *Poller) { p.ticksPerSecond = n }
}

func WithMaxWait(d time.Duration) Option {
	return func(p *Poller) { p.maxWait = d }
}

func WithPacing(pc Pacing) Option {
	return func(p *Poller) { p.pacing = pc }
}

func WithClock(c Clock) Option {
	return func(p *Poller) {
		if c != nil {
			p.clock = c
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(p *Poller) { p.logger = logging.OrDiscard(l) }
}

func New(c Capturer, m *vision.Matcher, opts ...Option) *Poller {
	p := &Poller{
		ticksPerSecond: DefaultTicksPerSecond,
		maxWait:        DefaultMaxWait,
		pacing:         BusyYield,
		clock:          RealClock(),
		capturer:       c,
		matcher:        m,
		logger:         logging.Discard(),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.matcher == nil {
		p.matcher = vision.NewMatcher()
	}
	return p
}

// With returns a copy of p with opts applied on top.
func (p *Poller) With(opts ...Option) *Poller {
	cp := *p
	for _, opt := range opts {
		opt(&cp)
	}
	return &cp
}

func (p *Poller) TicksPerSecond() int    { return p.ticksPerSecond }
func (p *Poller) MaxWait() time.Duration { return p.maxWait }

// Poll calls fn once per tick until it reports done, returns an error, or
// more than MaxWait has elapsed since the first tick started. Ticks start at
// least 1/TicksPerSecond apart. Ticks are numbered from 1.
func (p *Poller) Poll(fn func(tick int) (bool, error)) error {
	if p.ticksPerSecond <= 0 {
		return fmt.Errorf("%w: ticks per second must be positive, got %d", vision.ErrInvalidInput, p.ticksPerSecond)
	}
	period := time.Second / time.Duration(p.ticksPerSecond)
	var pc pacer = busyPacer{clock: p.clock, period: period}
	if p.pacing == Sleep {
		pc = newSleepPacer(p.clock, p.ticksPerSecond)
	}

	start := p.clock.Now()
	pc.start()
	for tick := 1; ; tick++ {
		tickStart := p.clock.Now()
		done, err := fn(tick)
		if err != nil {
			return err
		}
		if done {
			return nil
		}
		if elapsed := p.clock.Now().Sub(start); elapsed > p.maxWait {
			return fmt.Errorf("%w after %s (%d ticks)", ErrTimedOut, elapsed.Round(time.Millisecond), tick)
		}
		pc.wait(tickStart)
	}
}

// WaitUntilVisible captures area every tick and searches it for tmpl. The
// returned Match is relative to area. Only ErrNotFound is retried; capture
// failures and invalid input end the loop at once.
func (p *Poller) WaitUntilVisible(tmpl *vision.Frame, area region.Region, threshold float64) (vision.Match, error) {
	if !(threshold >= 0 && threshold <= 1) {
		return vision.Match{}, fmt.Errorf("%w: threshold %v outside [0,1]", vision.ErrInvalidInput, threshold)
	}
	var found vision.Match
	start := p.clock.Now()
	err := p.Poll(func(tick int) (bool, error) {
		frame, err := p.capturer.Capture(area)
		if err != nil {
			return false, err
		}
		m, err := p.matcher.Search(frame, tmpl, threshold)
		switch {
		case err == nil:
			found = m
			p.logger.Debug("template visible", "tick", tick, "score", m.Score, "region", m.Region, "took", p.clock.Now().Sub(start))
			return true, nil
		case errors.Is(err, vision.ErrNotFound):
			return false, nil
		default:
			return false, err
		}
	})
	if err != nil {
		return vision.Match{}, err
	}
	return found, nil
}
