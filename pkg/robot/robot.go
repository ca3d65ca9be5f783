// Package robot injects mouse and keyboard events through robotgo.
package robot

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/go-vgo/robotgo"

	"gitlab.com/web-doodle/mavis/pkg/input"
	"gitlab.com/web-doodle/mavis/pkg/logging"
	"gitlab.com/web-doodle/mavis/pkg/region"
)

type Robot struct {
	logger *slog.Logger
}

func New(logger *slog.Logger) *Robot {
	// Delays are applied by the callers.
	robotgo.MouseSleep = 0
	robotgo.KeySleep = 0
	return &Robot{logger: logging.OrDiscard(logger)}
}

// MovePointer moves to (x, y). Targets outside boundsW x boundsH are dropped.
func (r *Robot) MovePointer(x, y, boundsW, boundsH int) {
	if x < 0 || y < 0 || x > boundsW || y > boundsH {
		r.logger.Debug("pointer target out of bounds", "x", x, "y", y, "width", boundsW, "height", boundsH)
		return
	}
	robotgo.Move(x, y)
}

func (r *Robot) MoveRelative(dx, dy int) {
	if dx == 0 && dy == 0 {
		return
	}
	robotgo.MoveRelative(dx, dy)
}

func (r *Robot) ScrollWheel(units int) {
	robotgo.Scroll(0, units)
}

// Click presses button, holds it for delay and releases it.
func (r *Robot) Click(button input.Button, delay time.Duration) {
	robotgo.MouseToggle("down", string(button))
	time.Sleep(delay)
	robotgo.MouseToggle("up", string(button))
}

func (r *Robot) TypeText(text string) {
	robotgo.TypeStr(text)
}

// KeyTap taps key while holding modifiers.
func (r *Robot) KeyTap(key string, modifiers ...string) {
	args := make([]interface{}, len(modifiers))
	for i, m := range modifiers {
		args[i] = m
	}
	robotgo.KeyTap(key, args...)
}

// Activate brings the first process named name to the foreground.
func (r *Robot) Activate(name string) error {
	pid, err := findPID(name)
	if err != nil {
		return err
	}
	r.logger.Debug("activating window", "name", name, "pid", pid)
	robotgo.ActivePID(pid)
	return nil
}

// WindowRegion returns the screen area of the window of the first process
// named name.
func (r *Robot) WindowRegion(name string) (region.Region, error) {
	pid, err := findPID(name)
	if err != nil {
		return region.Region{}, err
	}
	left, top, width, height := robotgo.GetBounds(pid)
	if width <= 0 || height <= 0 {
		return region.Region{}, fmt.Errorf("window of %q has no size", name)
	}
	return region.FromRectangle(left, top, width, height), nil
}

func findPID(name string) (int32, error) {
	pids, err := robotgo.FindIds(name)
	if err != nil {
		return 0, fmt.Errorf("find %q: %w", name, err)
	}
	if len(pids) == 0 {
		return 0, fmt.Errorf("no process named %q", name)
	}
	return pids[0], nil
}

// Position returns the current pointer position.
func (r *Robot) Position() (int, int) {
	return robotgo.GetMousePos()
}
