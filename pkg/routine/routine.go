// Package routine loads step lists from YAML and runs them against an
// action.Dispatcher.
package routine

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"gitlab.com/web-doodle/mavis/pkg/region"
)

var ErrInvalidRoutine = errors.New("invalid routine")

type Action string

const (
	ActionWait   Action = "wait"
	ActionClick  Action = "click"
	ActionLocate Action = "locate"
	ActionRead   Action = "read"
	ActionType   Action = "type"
	ActionSleep  Action = "sleep"
	ActionKey    Action = "key"
	ActionScroll Action = "scroll"
	// ActionClickText clicks text found by OCR instead of a template.
	ActionClickText Action = "click_text"
)

// Step is one entry of a routine. Which fields matter depends on Action.
type Step struct {
	Action    Action         `yaml:"action"`
	Template  string         `yaml:"template,omitempty"`
	Threshold *float64       `yaml:"threshold,omitempty"`
	Region    *region.Bounds `yaml:"region,omitempty"`
	Timeout   time.Duration  `yaml:"timeout,omitempty"`
	FPS       int            `yaml:"fps,omitempty"`
	Text      string         `yaml:"text,omitempty"`
	SaveAs    string         `yaml:"save_as,omitempty"`
	Duration  time.Duration  `yaml:"duration,omitempty"`
	Key       string         `yaml:"key,omitempty"`
	Modifiers []string       `yaml:"modifiers,omitempty"`
	Delta     int            `yaml:"delta,omitempty"`
}

type Routine struct {
	Name  string `yaml:"name"`
	Steps []Step `yaml:"steps"`

	// dir is where the routine was loaded from; relative template paths
	// resolve against it.
	dir string
}

// Load reads and validates a routine file.
func Load(path string) (*Routine, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read routine file %s: %w", path, err)
	}
	r, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	r.dir = filepath.Dir(path)
	return r, nil
}

// Parse decodes and validates routine YAML.
func Parse(data []byte) (*Routine, error) {
	var r Routine
	if err := yaml.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRoutine, err)
	}
	if err := r.Validate(); err != nil {
		return nil, err
	}
	return &r, nil
}

func (r *Routine) Validate() error {
	if len(r.Steps) == 0 {
		return fmt.Errorf("%w: routine %q has no steps", ErrInvalidRoutine, r.Name)
	}
	for i, s := range r.Steps {
		if err := s.validate(); err != nil {
			return fmt.Errorf("%w: step %d (%s): %v", ErrInvalidRoutine, i+1, s.Action, err)
		}
	}
	return nil
}

func (s Step) validate() error {
	switch s.Action {
	case ActionWait, ActionClick, ActionLocate, ActionType:
		if s.Template == "" {
			return errors.New("template is required")
		}
		if s.Action == ActionType && s.Text == "" {
			return errors.New("text is required")
		}
	case ActionClickText:
		if s.Text == "" {
			return errors.New("text is required")
		}
	case ActionRead:
		if s.Region == nil {
			return errors.New("region is required")
		}
	case ActionSleep:
		if s.Duration <= 0 {
			return errors.New("duration must be positive")
		}
	case ActionKey:
		if s.Key == "" {
			return errors.New("key is required")
		}
	case ActionScroll:
		if s.Delta == 0 {
			return errors.New("delta must not be zero")
		}
	case "":
		return errors.New("action is required")
	default:
		return fmt.Errorf("unknown action %q", s.Action)
	}
	if s.Threshold != nil && !(*s.Threshold >= 0 && *s.Threshold <= 1) {
		return fmt.Errorf("threshold %v outside [0,1]", *s.Threshold)
	}
	if s.Region != nil && (s.Region.Width <= 0 || s.Region.Height <= 0) {
		return fmt.Errorf("region %+v must have a positive size", *s.Region)
	}
	if s.Timeout < 0 {
		return fmt.Errorf("negative timeout %s", s.Timeout)
	}
	if s.FPS < 0 {
		return fmt.Errorf("negative fps %d", s.FPS)
	}
	return nil
}
