// Package vision finds a template image inside a captured frame. The Matcher
// sweeps the template over a range of scales and keeps the placement with the
// highest normalized cross correlation.
package vision

import (
	"errors"
	"fmt"
	"image"
	"log/slog"
	"math"
	"time"

	"github.com/disintegration/imaging"

	"gitlab.com/web-doodle/mavis/pkg/logging"
	"gitlab.com/web-doodle/mavis/pkg/region"
)

var (
	// ErrInvalidInput marks a search that was rejected before any matching.
	ErrInvalidInput = errors.New("invalid input")
	// ErrNotFound means no placement scored above the threshold.
	ErrNotFound = errors.New("template not found")
)

// Match is the best placement of a template inside a frame. Region is relative
// to the frame.
type Match struct {
	Region region.Region
	Score  float64
	Scale  float64
}

// DefaultScales returns 0.5, 0.6, ... 2.0.
func DefaultScales() []float64 {
	scales := make([]float64, 0, 16)
	for i := 5; i <= 20; i++ {
		scales = append(scales, float64(i)/10)
	}
	return scales
}

type Matcher struct {
	correlator Correlator
	scales     []float64
	logger     *slog.Logger
}

type MatcherOption func(*Matcher)

func WithCorrelator(c Correlator) MatcherOption {
	return func(m *Matcher) {
		if c != nil {
			m.correlator = c
		}
	}
}

// WithScales replaces the scale sweep. Scales are tried in the given order.
func WithScales(scales ...float64) MatcherOption {
	return func(m *Matcher) {
		if len(scales) > 0 {
			m.scales = append([]float64(nil), scales...)
		}
	}
}

func WithLogger(l *slog.Logger) MatcherOption {
	return func(m *Matcher) {
		m.logger = logging.OrDiscard(l)
	}
}

func NewMatcher(opts ...MatcherOption) *Matcher {
	m := &Matcher{
		correlator: NCC{},
		scales:     DefaultScales(),
		logger:     logging.Discard(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Search looks for tmpl inside src. It returns the best Match only when its
// score is strictly greater than threshold, ErrNotFound otherwise.
func (m *Matcher) Search(src, tmpl *Frame, threshold float64) (Match, error) {
	if err := validate(src, tmpl, threshold); err != nil {
		return Match{}, err
	}

	start := time.Now()
	var tmplImg *image.RGBA
	best := Match{Score: math.Inf(-1)}
	var bestAt region.Point
	tried := 0
	for _, scale := range m.scales {
		w := int(math.Round(float64(tmpl.Width) * scale))
		h := int(math.Round(float64(tmpl.Height) * scale))
		if w <= 0 || h <= 0 || w > src.Width || h > src.Height {
			continue
		}
		scaled := tmpl
		if w != tmpl.Width || h != tmpl.Height {
			if tmplImg == nil {
				tmplImg = tmpl.Image()
			}
			scaled = FrameFromImage(imaging.Resize(tmplImg, w, h, imaging.Linear))
		}
		score, at, err := m.correlator.Correlate(src, scaled)
		if err != nil {
			return Match{}, fmt.Errorf("correlate at scale %.1f: %w", scale, err)
		}
		tried++
		if score > best.Score {
			best.Score = score
			best.Scale = scale
			bestAt = at
		}
	}

	m.logger.Debug("template search",
		"score", best.Score,
		"scale", best.Scale,
		"at", bestAt,
		"scales", tried,
		"took", time.Since(start))

	if tried == 0 || !(best.Score > threshold) {
		return Match{}, fmt.Errorf("%w: best score %.3f at scale %.1f, threshold %.2f",
			ErrNotFound, best.Score, best.Scale, threshold)
	}
	best.Region = region.FromRectangle(bestAt.X, bestAt.Y,
		int(float64(tmpl.Width)*best.Scale),
		int(float64(tmpl.Height)*best.Scale))
	return best, nil
}

// IsPresent reports whether Search finds tmpl. Errors other than ErrNotFound
// are logged and reported as absent.
func (m *Matcher) IsPresent(src, tmpl *Frame, threshold float64) bool {
	_, err := m.Search(src, tmpl, threshold)
	if err == nil {
		return true
	}
	if !errors.Is(err, ErrNotFound) {
		m.logger.Warn("template search failed", "error", err)
	}
	return false
}

func validate(src, tmpl *Frame, threshold float64) error {
	switch {
	case src.Empty():
		return fmt.Errorf("%w: empty source frame", ErrInvalidInput)
	case tmpl.Empty():
		return fmt.Errorf("%w: empty template", ErrInvalidInput)
	case tmpl.Width > src.Width || tmpl.Height > src.Height:
		return fmt.Errorf("%w: template %dx%d larger than source %dx%d",
			ErrInvalidInput, tmpl.Width, tmpl.Height, src.Width, src.Height)
	case !(threshold >= 0 && threshold <= 1):
		return fmt.Errorf("%w: threshold %v outside [0,1]", ErrInvalidInput, threshold)
	}
	return nil
}
