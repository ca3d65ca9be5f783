package poll

import (
	"runtime"
	"time"

	"go.uber.org/ratelimit"
)

// Clock is the time source of a Poller. It matches ratelimit.Clock so the
// same value drives both pacing strategies.
type Clock interface {
	Now() time.Time
	Sleep(time.Duration)
}

type realClock struct{}

func (realClock) Now() time.Time        { return time.Now() }
func (realClock) Sleep(d time.Duration) { time.Sleep(d) }

// RealClock returns the wall clock.
func RealClock() Clock { return realClock{} }

// Pacing selects how the loop waits out the rest of a tick.
type Pacing int

const (
	// BusyYield spins on runtime.Gosched until the tick period has elapsed.
	BusyYield Pacing = iota
	// Sleep blocks on a rate limiter.
	Sleep
)

func (p Pacing) String() string {
	switch p {
	case BusyYield:
		return "busy-yield"
	case Sleep:
		return "sleep"
	}
	return "unknown"
}

// ParsePacing accepts the names printed by Pacing.String.
func ParsePacing(s string) (Pacing, bool) {
	switch s {
	case "busy-yield", "busy", "":
		return BusyYield, true
	case "sleep":
		return Sleep, true
	}
	return BusyYield, false
}

// YieldUntil spins, yielding the processor, until clock reaches deadline.
func YieldUntil(clock Clock, deadline time.Time) {
	for clock.Now().Before(deadline) {
		runtime.Gosched()
	}
}

type pacer interface {
	start()
	wait(tickStart time.Time)
}

type busyPacer struct {
	clock  Clock
	period time.Duration
}

func (p busyPacer) start() {}

func (p busyPacer) wait(tickStart time.Time) {
	YieldUntil(p.clock, tickStart.Add(p.period))
}

type sleepPacer struct {
	rl ratelimit.Limiter
}

func newSleepPacer(clock Clock, ticksPerSecond int) *sleepPacer {
	return &sleepPacer{
		rl: ratelimit.New(ticksPerSecond,
			ratelimit.Per(time.Second),
			ratelimit.WithClock(clock),
			ratelimit.WithoutSlack),
	}
}

// The first Take returns at once; later ones block until a period after the
// previous one.
func (p *sleepPacer) start() { p.rl.Take() }

func (p *sleepPacer) wait(time.Time) { p.rl.Take() }
