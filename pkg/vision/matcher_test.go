package vision

import (
	"errors"
	"math"
	"math/rand"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"

	"gitlab.com/web-doodle/mavis/pkg/region"
)

// noiseFrame builds a deterministic random frame.
func noiseFrame(w, h int, seed int64) *Frame {
	rng := rand.New(rand.NewSource(seed))
	f := NewFrame(w, h)
	rng.Read(f.Pix)
	return f
}

func flatFrame(w, h int, v uint8) *Frame {
	f := NewFrame(w, h)
	for i := range f.Pix {
		f.Pix[i] = v
	}
	return f
}

type countingCorrelator struct {
	calls int
	inner Correlator
}

func (c *countingCorrelator) Correlate(src, tmpl *Frame) (float64, region.Point, error) {
	c.calls++
	if c.inner == nil {
		return 0, region.Point{}, nil
	}
	return c.inner.Correlate(src, tmpl)
}

func TestSearchExactCopy(t *testing.T) {
	src := noiseFrame(48, 40, 1)
	tmpl := noiseFrame(10, 8, 2)
	src.Paste(tmpl, 17, 11)

	m := NewMatcher()
	got, err := m.Search(src, tmpl, 0)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	want := region.FromRectangle(17, 11, 10, 8)
	if got.Region != want {
		t.Fatalf("expected %v, got %v (score %.3f scale %.1f)", want, got.Region, got.Score, got.Scale)
	}
	if got.Scale != 1.0 {
		t.Fatalf("expected scale 1.0, got %.1f", got.Scale)
	}
	if got.Score < 0.999 {
		t.Fatalf("expected a near perfect score, got %f", got.Score)
	}
}

func TestSearchScaledCopy(t *testing.T) {
	src := noiseFrame(64, 64, 3)
	tmpl := noiseFrame(12, 12, 4)
	scaled := FrameFromImage(imaging.Resize(tmpl.Image(), 18, 18, imaging.Linear))
	src.Paste(scaled, 20, 25)

	got, err := NewMatcher().Search(src, tmpl, 0.9)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	w, h := got.Region.Width(), got.Region.Height()
	if math.Abs(float64(w)-18) > 1 || math.Abs(float64(h)-18) > 1 {
		t.Fatalf("expected about 18x18, got %dx%d (scale %.1f)", w, h, got.Scale)
	}
	if got.Region.Origin() != (region.Point{X: 20, Y: 25}) {
		t.Fatalf("unexpected origin %v", got.Region.Origin())
	}
}

func TestSearchTiesKeepFirstScale(t *testing.T) {
	src := noiseFrame(20, 20, 5)
	tmpl := noiseFrame(4, 4, 6)
	same := correlatorFunc(func(src, tmpl *Frame) (float64, region.Point, error) {
		return 0.9, region.Point{X: 3, Y: 1}, nil
	})

	got, err := NewMatcher(WithCorrelator(same)).Search(src, tmpl, 0.5)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if got.Scale != 0.5 {
		t.Fatalf("expected the first scale to win the tie, got %.1f", got.Scale)
	}
	if got.Region != region.FromRectangle(3, 1, 2, 2) {
		t.Fatalf("unexpected region %v", got.Region)
	}
}

func TestSearchFlatTemplateNotFound(t *testing.T) {
	src := NewFrame(40, 40)
	tmpl := flatFrame(6, 6, 255)

	score, _, err := NCC{}.Correlate(src, tmpl)
	if err != nil || score != 0 {
		t.Fatalf("flat template scored %f (%v), want 0", score, err)
	}
	for _, th := range []float64{0, 0.5, 0.95} {
		if _, err := NewMatcher().Search(src, tmpl, th); !errors.Is(err, ErrNotFound) {
			t.Fatalf("threshold %v: expected ErrNotFound, got %v", th, err)
		}
	}
}

func TestSearchInvalidThreshold(t *testing.T) {
	src := noiseFrame(20, 20, 6)
	tmpl := noiseFrame(5, 5, 7)
	for _, th := range []float64{-0.01, 1.01, 5, math.NaN(), math.Inf(1)} {
		cc := &countingCorrelator{}
		m := NewMatcher(WithCorrelator(cc))
		_, err := m.Search(src, tmpl, th)
		if !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("threshold %v: expected ErrInvalidInput, got %v", th, err)
		}
		if cc.calls != 0 {
			t.Fatalf("threshold %v: correlator called %d times", th, cc.calls)
		}
	}
}

func TestSearchOversizedTemplate(t *testing.T) {
	src := noiseFrame(20, 10, 8)
	tests := []struct {
		name string
		tmpl *Frame
	}{
		{"wider", noiseFrame(21, 5, 9)},
		{"taller", noiseFrame(5, 11, 9)},
		{"both", noiseFrame(30, 30, 9)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cc := &countingCorrelator{}
			_, err := NewMatcher(WithCorrelator(cc)).Search(src, tt.tmpl, 0.5)
			if !errors.Is(err, ErrInvalidInput) {
				t.Fatalf("expected ErrInvalidInput, got %v", err)
			}
			if cc.calls != 0 {
				t.Fatalf("correlator called %d times", cc.calls)
			}
		})
	}
}

func TestSearchEmptyBuffers(t *testing.T) {
	m := NewMatcher()
	if _, err := m.Search(&Frame{}, noiseFrame(2, 2, 1), 0.5); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("empty source: %v", err)
	}
	if _, err := m.Search(noiseFrame(4, 4, 1), &Frame{}, 0.5); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("empty template: %v", err)
	}
	if _, err := m.Search(nil, nil, 0.5); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("nil frames: %v", err)
	}
}

func TestSearchNotFound(t *testing.T) {
	src := noiseFrame(40, 40, 10)
	tmpl := noiseFrame(8, 8, 11)
	_, err := NewMatcher().Search(src, tmpl, 0.99)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSearchThresholdIsStrict(t *testing.T) {
	src := noiseFrame(10, 10, 12)
	tmpl := noiseFrame(3, 3, 13)
	fixed := correlatorFunc(func(src, tmpl *Frame) (float64, region.Point, error) {
		return 0.75, region.Point{X: 1, Y: 2}, nil
	})
	m := NewMatcher(WithCorrelator(fixed), WithScales(1))
	if _, err := m.Search(src, tmpl, 0.75); !errors.Is(err, ErrNotFound) {
		t.Fatalf("score equal to threshold must not match, got %v", err)
	}
	got, err := m.Search(src, tmpl, 0.7)
	if err != nil {
		t.Fatal(err)
	}
	if got.Region != region.FromRectangle(1, 2, 3, 3) {
		t.Fatalf("unexpected region %v", got.Region)
	}
}

func TestSearchCorrelatorError(t *testing.T) {
	boom := errors.New("boom")
	failing := correlatorFunc(func(src, tmpl *Frame) (float64, region.Point, error) {
		return 0, region.Point{}, boom
	})
	_, err := NewMatcher(WithCorrelator(failing)).Search(noiseFrame(10, 10, 1), noiseFrame(4, 4, 2), 0.5)
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped correlator error, got %v", err)
	}
}

func TestSearchSkipsOutOfRangeScales(t *testing.T) {
	cc := &countingCorrelator{inner: NCC{}}
	src := noiseFrame(12, 12, 14)
	tmpl := noiseFrame(10, 10, 15)
	// Only 0.5 .. 1.2 fit: round(10*1.2)=12, round(10*1.3)=13.
	_, _ = NewMatcher(WithCorrelator(cc)).Search(src, tmpl, 0)
	if cc.calls != 8 {
		t.Fatalf("expected 8 correlations, got %d", cc.calls)
	}
}

func TestIsPresent(t *testing.T) {
	src := noiseFrame(30, 30, 16)
	tmpl := noiseFrame(6, 6, 17)
	src.Paste(tmpl, 3, 4)
	m := NewMatcher()
	if !m.IsPresent(src, tmpl, 0.9) {
		t.Fatal("expected template to be present")
	}
	if m.IsPresent(src, tmpl, 2) {
		t.Fatal("invalid threshold must report absent")
	}
	if m.IsPresent(src, noiseFrame(6, 6, 18), 0.99) {
		t.Fatal("unrelated template reported present")
	}
}

func TestDefaultScales(t *testing.T) {
	s := DefaultScales()
	if len(s) != 16 || s[0] != 0.5 || s[len(s)-1] != 2.0 {
		t.Fatalf("unexpected scales %v", s)
	}
	for i := 1; i < len(s); i++ {
		if !(s[i] > s[i-1]) {
			t.Fatalf("scales not ascending: %v", s)
		}
	}
}

func TestFrameImageRoundTrip(t *testing.T) {
	f := noiseFrame(7, 5, 19)
	back := FrameFromImage(f.Image())
	if back.Width != 7 || back.Height != 5 {
		t.Fatalf("unexpected size %dx%d", back.Width, back.Height)
	}
	for i := range f.Pix {
		if f.Pix[i] != back.Pix[i] {
			t.Fatalf("pixel byte %d differs", i)
		}
	}
	// Sub images keep their own origin.
	sub := f.Image().SubImage(f.Bounds().Inset(1))
	sf := FrameFromImage(sub)
	r, g, b := f.At(1, 1)
	sr, sg, sb := sf.At(0, 0)
	if r != sr || g != sg || b != sb {
		t.Fatal("sub image offset not honoured")
	}
}

func TestTemplateCacheAndLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "button.png")
	want := noiseFrame(9, 6, 20)
	if err := SaveFrame(want, path); err != nil {
		t.Fatal(err)
	}

	c := NewTemplateCache()
	got, err := c.Get(path)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Width != 9 || got.Height != 6 || string(got.Pix) != string(want.Pix) {
		t.Fatal("loaded template differs from saved frame")
	}
	again, err := c.Get(path)
	if err != nil || again != got {
		t.Fatalf("expected cached frame, got %p err %v", again, err)
	}
	if c.Len() != 1 {
		t.Fatalf("expected 1 cached template, got %d", c.Len())
	}
	if _, err := c.Get(filepath.Join(dir, "missing.png")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestSimilar(t *testing.T) {
	img := noiseFrame(64, 64, 21).Image()
	if !Similar(img, img) {
		t.Fatal("an image must be similar to itself")
	}
}

type correlatorFunc func(src, tmpl *Frame) (float64, region.Point, error)

func (f correlatorFunc) Correlate(src, tmpl *Frame) (float64, region.Point, error) {
	return f(src, tmpl)
}
