// Package action combines capture, matching and input injection into the
// operations used by scripts: click on a target, wait for it, read text.
package action

import (
	"errors"
	"fmt"
	"image"
	"log/slog"
	"math"
	"os"
	"time"

	"github.com/disintegration/imaging"

	"gitlab.com/web-doodle/mavis/pkg/input"
	"gitlab.com/web-doodle/mavis/pkg/logging"
	"gitlab.com/web-doodle/mavis/pkg/ocr"
	"gitlab.com/web-doodle/mavis/pkg/poll"
	"gitlab.com/web-doodle/mavis/pkg/region"
	"gitlab.com/web-doodle/mavis/pkg/vision"
)

const DefaultClickDelay = 50 * time.Millisecond

// Capturer grabs a region of the screen in absolute coordinates.
type Capturer = poll.Capturer

// Injector drives the mouse and keyboard.
type Injector interface {
	input.Pointer
	Click(button input.Button, delay time.Duration)
	TypeText(text string)
	KeyTap(key string, modifiers ...string)
}

// Positioner is implemented by injectors that can report the pointer
// position. Smooth motion needs it.
type Positioner interface {
	Position() (int, int)
}

// ClickResult describes a click. Fallback is set when the target was not
// found and the configured fallback point was clicked instead.
type ClickResult struct {
	Point    region.Point
	Target   region.Region
	Score    float64
	Fallback bool
}

type Dispatcher struct {
	capturer Capturer
	injector Injector
	ocr      ocr.Engine
	matcher  *vision.Matcher
	poller   *poll.Poller
	pollOpts []poll.Option

	boundsW, boundsH int
	clickDelay       time.Duration
	button           input.Button
	fallback         *region.Point
	tempDir          string
	motion           *input.Motion
	preprocess       func(image.Image) (image.Image, error)
	logger           *slog.Logger
}

type Option func(*Dispatcher)

// WithBounds sets the screen size used to drop out of range pointer moves.
func WithBounds(w, h int) Option {
	return func(d *Dispatcher) { d.boundsW, d.boundsH = w, h }
}

func WithClickDelay(delay time.Duration) Option {
	return func(d *Dispatcher) { d.clickDelay = delay }
}

func WithButton(b input.Button) Option {
	return func(d *Dispatcher) { d.button = b }
}

// WithFallbackPoint makes ClickOnTarget click p when the target is not found.
func WithFallbackPoint(p region.Point) Option {
	return func(d *Dispatcher) { d.fallback = &p }
}

// WithTempDir sets where ExtractText writes its images. Empty means os.TempDir.
func WithTempDir(dir string) Option {
	return func(d *Dispatcher) { d.tempDir = dir }
}

// WithMotion glides the pointer to click targets instead of jumping.
func WithMotion(m input.Motion) Option {
	return func(d *Dispatcher) { d.motion = &m }
}

// WithPreprocess transforms frames before they are handed to OCR.
func WithPreprocess(fn func(image.Image) (image.Image, error)) Option {
	return func(d *Dispatcher) { d.preprocess = fn }
}

func WithMatcher(m *vision.Matcher) Option {
	return func(d *Dispatcher) {
		if m != nil {
			d.matcher = m
		}
	}
}

// WithPollOptions configures the Poller used by the waiting operations.
func WithPollOptions(opts ...poll.Option) Option {
	return func(d *Dispatcher) { d.pollOpts = append(d.pollOpts, opts...) }
}

func WithLogger(l *slog.Logger) Option {
	return func(d *Dispatcher) { d.logger = logging.OrDiscard(l) }
}

func New(c Capturer, inj Injector, engine ocr.Engine, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		capturer:   c,
		injector:   inj,
		ocr:        engine,
		clickDelay: DefaultClickDelay,
		button:     input.ButtonLeft,
		boundsW:    math.MaxInt32,
		boundsH:    math.MaxInt32,
		logger:     logging.Discard(),
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.matcher == nil {
		d.matcher = vision.NewMatcher(vision.WithLogger(d.logger))
	}
	d.poller = poll.New(c, d.matcher, append([]poll.Option{poll.WithLogger(d.logger)}, d.pollOpts...)...)
	return d
}

// LocateTarget captures area once and searches it for tmpl. The returned
// Match is in absolute screen coordinates.
func (d *Dispatcher) LocateTarget(tmpl *vision.Frame, area region.Region, threshold float64) (vision.Match, error) {
	frame, err := d.capturer.Capture(area)
	if err != nil {
		return vision.Match{}, err
	}
	m, err := d.matcher.Search(frame, tmpl, threshold)
	if err != nil {
		return vision.Match{}, err
	}
	m.Region = m.Region.Compose(area)
	d.logger.Debug("target located", "region", m.Region, "score", m.Score, "scale", m.Scale)
	return m, nil
}

// ClickOnTarget clicks the center of tmpl inside area. When the target is
// not found and a fallback point is configured, the fallback is clicked and
// the result is marked; otherwise the search error is returned. Capture
// errors are always returned.
func (d *Dispatcher) ClickOnTarget(tmpl *vision.Frame, area region.Region, threshold float64) (ClickResult, error) {
	m, err := d.LocateTarget(tmpl, area, threshold)
	if err != nil {
		if d.fallback == nil || !errors.Is(err, vision.ErrNotFound) {
			return ClickResult{}, err
		}
		d.logger.Warn("target not found, clicking fallback point", "point", *d.fallback, "error", err)
		d.clickAt(*d.fallback)
		return ClickResult{Point: *d.fallback, Fallback: true}, nil
	}
	p := m.Region.Center()
	d.clickAt(p)
	d.logger.Info("clicked target", "point", p, "score", m.Score)
	return ClickResult{Point: p, Target: m.Region, Score: m.Score}, nil
}

// WaitForTarget polls area until tmpl shows up and returns its absolute
// Match. opts override the dispatcher's poll settings for this call.
func (d *Dispatcher) WaitForTarget(tmpl *vision.Frame, area region.Region, threshold float64, opts ...poll.Option) (vision.Match, error) {
	p := d.poller
	if len(opts) > 0 {
		p = p.With(opts...)
	}
	m, err := p.WaitUntilVisible(tmpl, area, threshold)
	if err != nil {
		return vision.Match{}, err
	}
	m.Region = m.Region.Compose(area)
	return m, nil
}

// TypeIntoTarget clicks the center of tmpl and types text. No fallback
// point is used.
func (d *Dispatcher) TypeIntoTarget(tmpl *vision.Frame, area region.Region, threshold float64, text string) error {
	m, err := d.LocateTarget(tmpl, area, threshold)
	if err != nil {
		return err
	}
	d.clickAt(m.Region.Center())
	d.injector.TypeText(text)
	return nil
}

// PressKey taps a key, e.g. "enter", while holding modifiers such as
// "shift" or "control".
func (d *Dispatcher) PressKey(key string, modifiers ...string) {
	d.injector.KeyTap(key, modifiers...)
}

// Scroll turns the mouse wheel by delta units spread over duration.
func (d *Dispatcher) Scroll(delta int, duration time.Duration) error {
	return input.ScrollSmooth(d.injector, delta, duration, nil)
}

// ExtractText writes frame to a temporary PNG, runs OCR on it and removes
// the file again on every path.
func (d *Dispatcher) ExtractText(frame *vision.Frame) (string, error) {
	var text string
	err := d.withTempImage(frame, func(path string) error {
		var err error
		text, err = d.ocr.ExtractText(path)
		return err
	})
	if err != nil {
		return "", err
	}
	return text, nil
}

// LocateText captures area and asks the OCR engine where text is. The
// engine must implement ocr.Locator. The region is absolute.
func (d *Dispatcher) LocateText(area region.Region, text string) (region.Region, error) {
	loc, ok := d.ocr.(ocr.Locator)
	if !ok {
		return region.Region{}, fmt.Errorf("%w: engine %T cannot locate text", ocr.ErrOCR, d.ocr)
	}
	frame, err := d.capturer.Capture(area)
	if err != nil {
		return region.Region{}, err
	}
	var found region.Region
	err = d.withTempImage(frame, func(path string) error {
		var err error
		found, err = loc.FindText(path, text)
		return err
	})
	if err != nil {
		return region.Region{}, err
	}
	found = found.Compose(area)
	d.logger.Debug("text located", "text", text, "region", found)
	return found, nil
}

// ClickOnText clicks the center of text inside area. No fallback point is
// used.
func (d *Dispatcher) ClickOnText(area region.Region, text string) (region.Point, error) {
	found, err := d.LocateText(area, text)
	if err != nil {
		return region.Point{}, err
	}
	p := found.Center()
	d.clickAt(p)
	d.logger.Info("clicked text", "text", text, "point", p)
	return p, nil
}

// withTempImage writes frame, after preprocessing, to a temporary PNG and
// calls fn with its path. The file is removed on every path and errors are
// wrapped in ocr.ErrOCR.
func (d *Dispatcher) withTempImage(frame *vision.Frame, fn func(path string) error) error {
	if frame.Empty() {
		return fmt.Errorf("%w: empty frame", vision.ErrInvalidInput)
	}
	f, err := os.CreateTemp(d.tempDir, "mavis-ocr-*.png")
	if err != nil {
		return fmt.Errorf("%w: create temp file: %v", ocr.ErrOCR, err)
	}
	path := f.Name()
	defer func() {
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			d.logger.Warn("remove ocr temp file", "path", path, "error", err)
		}
	}()
	if err := f.Close(); err != nil {
		return fmt.Errorf("%w: %v", ocr.ErrOCR, err)
	}

	var img image.Image = frame.Image()
	if d.preprocess != nil {
		if img, err = d.preprocess(img); err != nil {
			return fmt.Errorf("%w: preprocess: %v", ocr.ErrOCR, err)
		}
	}
	if err := imaging.Save(img, path); err != nil {
		return fmt.Errorf("%w: write %s: %v", ocr.ErrOCR, path, err)
	}

	if err := fn(path); err != nil {
		if !errors.Is(err, ocr.ErrOCR) && !errors.Is(err, ocr.ErrTextNotFound) {
			err = fmt.Errorf("%w: %w", ocr.ErrOCR, err)
		}
		return err
	}
	return nil
}

// ReadRegion captures area and extracts its text.
func (d *Dispatcher) ReadRegion(area region.Region) (string, error) {
	frame, err := d.capturer.Capture(area)
	if err != nil {
		return "", err
	}
	return d.ExtractText(frame)
}

// WaitForChange snapshots area, runs act and polls until area no longer
// looks like the snapshot.
func (d *Dispatcher) WaitForChange(area region.Region, act func() error, opts ...poll.Option) error {
	before, err := d.capturer.Capture(area)
	if err != nil {
		return err
	}
	beforeImg := before.Image()
	if act != nil {
		if err := act(); err != nil {
			return err
		}
	}
	p := d.poller
	if len(opts) > 0 {
		p = p.With(opts...)
	}
	return p.Poll(func(tick int) (bool, error) {
		now, err := d.capturer.Capture(area)
		if err != nil {
			return false, err
		}
		if vision.Similar(beforeImg, now.Image()) {
			return false, nil
		}
		d.logger.Debug("region changed", "region", area, "tick", tick)
		return true, nil
	})
}

func (d *Dispatcher) clickAt(p region.Point) {
	d.moveTo(p)
	d.injector.Click(d.button, d.clickDelay)
}

func (d *Dispatcher) moveTo(p region.Point) {
	if d.motion != nil {
		if pos, ok := d.injector.(Positioner); ok {
			x, y := pos.Position()
			err := input.MoveSmooth(d.injector, region.Point{X: x, Y: y}, p, d.boundsW, d.boundsH, *d.motion)
			if err == nil {
				return
			}
			d.logger.Debug("smooth move skipped", "error", err)
		}
	}
	d.injector.MovePointer(p.X, p.Y, d.boundsW, d.boundsH)
}
