package routine

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"gitlab.com/web-doodle/mavis/pkg/action"
	"gitlab.com/web-doodle/mavis/pkg/logging"
	"gitlab.com/web-doodle/mavis/pkg/poll"
	"gitlab.com/web-doodle/mavis/pkg/region"
	"gitlab.com/web-doodle/mavis/pkg/vision"
)

// Executor is the subset of *action.Dispatcher a routine needs.
type Executor interface {
	LocateTarget(tmpl *vision.Frame, area region.Region, threshold float64) (vision.Match, error)
	ClickOnTarget(tmpl *vision.Frame, area region.Region, threshold float64) (action.ClickResult, error)
	WaitForTarget(tmpl *vision.Frame, area region.Region, threshold float64, opts ...poll.Option) (vision.Match, error)
	TypeIntoTarget(tmpl *vision.Frame, area region.Region, threshold float64, text string) error
	ReadRegion(area region.Region) (string, error)
	ClickOnText(area region.Region, text string) (region.Point, error)
	PressKey(key string, modifiers ...string)
	Scroll(delta int, duration time.Duration) error
}

var _ Executor = (*action.Dispatcher)(nil)

type Runner struct {
	exec      Executor
	templates *vision.TemplateCache
	threshold float64
	area      region.Region
	clock     poll.Clock
	logger    *slog.Logger
}

type RunnerOption func(*Runner)

// WithDefaults sets the threshold and search area used by steps that do not
// name their own.
func WithDefaults(threshold float64, area region.Region) RunnerOption {
	return func(r *Runner) {
		r.threshold = threshold
		r.area = area
	}
}

func WithTemplateCache(c *vision.TemplateCache) RunnerOption {
	return func(r *Runner) {
		if c != nil {
			r.templates = c
		}
	}
}

func WithClock(c poll.Clock) RunnerOption {
	return func(r *Runner) {
		if c != nil {
			r.clock = c
		}
	}
}

func WithLogger(l *slog.Logger) RunnerOption {
	return func(r *Runner) { r.logger = logging.OrDiscard(l) }
}

func NewRunner(exec Executor, opts ...RunnerOption) *Runner {
	r := &Runner{
		exec:      exec,
		templates: vision.NewTemplateCache(),
		threshold: 0.8,
		clock:     poll.RealClock(),
		logger:    logging.Discard(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run executes the steps in order and stops at the first failure. Text read
// by steps with save_as is returned keyed by that name, including what was
// collected before a failure.
func (r *Runner) Run(rt *Routine) (map[string]string, error) {
	out := map[string]string{}
	if err := rt.Validate(); err != nil {
		return out, err
	}
	for i, s := range rt.Steps {
		r.logger.Info("routine step", "routine", rt.Name, "step", i+1, "action", s.Action)
		start := r.clock.Now()
		if err := r.step(rt, s, out); err != nil {
			return out, fmt.Errorf("routine %q step %d (%s): %w", rt.Name, i+1, s.Action, err)
		}
		r.logger.Debug("routine step done", "step", i+1, "elapsed", r.clock.Now().Sub(start))
	}
	return out, nil
}

func (r *Runner) step(rt *Routine, s Step, out map[string]string) error {
	area := r.area
	if s.Region != nil {
		area = s.Region.Region()
	}
	threshold := r.threshold
	if s.Threshold != nil {
		threshold = *s.Threshold
	}

	switch s.Action {
	case ActionSleep:
		r.clock.Sleep(s.Duration)
		return nil
	case ActionKey:
		r.exec.PressKey(s.Key, s.Modifiers...)
		return nil
	case ActionScroll:
		return r.exec.Scroll(s.Delta, s.Duration)
	case ActionClickText:
		p, err := r.exec.ClickOnText(area, s.Text)
		if err != nil {
			return err
		}
		if s.SaveAs != "" {
			out[s.SaveAs] = p.String()
		}
		return nil
	case ActionRead:
		text, err := r.exec.ReadRegion(area)
		if err != nil {
			return err
		}
		if s.SaveAs != "" {
			out[s.SaveAs] = text
		}
		return nil
	}

	tmpl, err := r.templates.Get(rt.resolve(s.Template))
	if err != nil {
		return err
	}
	switch s.Action {
	case ActionWait:
		var opts []poll.Option
		if s.Timeout > 0 {
			opts = append(opts, poll.WithMaxWait(s.Timeout))
		}
		if s.FPS > 0 {
			opts = append(opts, poll.WithTicksPerSecond(s.FPS))
		}
		m, err := r.exec.WaitForTarget(tmpl, area, threshold, opts...)
		if err != nil {
			return err
		}
		saveRegion(s, m.Region, out)
	case ActionLocate:
		m, err := r.exec.LocateTarget(tmpl, area, threshold)
		if err != nil {
			return err
		}
		saveRegion(s, m.Region, out)
	case ActionClick:
		res, err := r.exec.ClickOnTarget(tmpl, area, threshold)
		if err != nil {
			return err
		}
		if res.Fallback {
			r.logger.Warn("routine clicked fallback point", "template", s.Template, "point", res.Point)
		}
		if s.SaveAs != "" {
			out[s.SaveAs] = res.Point.String()
		}
	case ActionType:
		return r.exec.TypeIntoTarget(tmpl, area, threshold, s.Text)
	}
	return nil
}

func saveRegion(s Step, found region.Region, out map[string]string) {
	if s.SaveAs != "" {
		out[s.SaveAs] = found.String()
	}
}

func (rt *Routine) resolve(path string) string {
	if rt.dir == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(rt.dir, path)
}
