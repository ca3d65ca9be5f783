package region

import (
	"image"
	"testing"
)

func TestFromPointsIsOrderIndependent(t *testing.T) {
	a := FromPoints(5, 5, 1, 1)
	b := FromPoints(1, 1, 5, 5)
	if a != b {
		t.Fatalf("expected identical regions, got %v and %v", a, b)
	}
	mixed := FromPoints(1, 5, 5, 1)
	if mixed != b {
		t.Fatalf("mixed corners not normalized: %v", mixed)
	}
	if a.SX > a.EX || a.SY > a.EY {
		t.Fatalf("region not normalized: %v", a)
	}
}

func TestCompose(t *testing.T) {
	child := FromPoints(2, 3, 4, 5)
	parent := FromRectangle(100, 100, 800, 600)
	got := child.Compose(parent)
	want := Region{SX: 102, SY: 103, EX: 104, EY: 105}
	if got != want {
		t.Fatalf("expected %v, got %v", want, got)
	}
	// Composition is a pure translation; size is kept.
	if got.Width() != child.Width() || got.Height() != child.Height() {
		t.Fatalf("size changed by composition: %v -> %v", child, got)
	}
}

func TestRectangle(t *testing.T) {
	r := FromRectangle(10, 20, 30, 40)
	b := r.Rectangle()
	if b.Left != 10 || b.Top != 20 || b.Width != 30 || b.Height != 40 {
		t.Fatalf("unexpected bounds %+v", b)
	}
	if b.Region() != r {
		t.Fatalf("bounds round trip mismatch: %v", b.Region())
	}

	neg := FromRectangle(10, 10, -4, -6)
	nb := neg.Rectangle()
	if nb.Left != 6 || nb.Top != 4 || nb.Width != 4 || nb.Height != 6 {
		t.Fatalf("negative size not normalized: %+v", nb)
	}
}

func TestCenter(t *testing.T) {
	tests := []struct {
		name string
		r    Region
		want Point
	}{
		{"even", FromRectangle(0, 0, 10, 20), Point{5, 10}},
		{"odd truncates", FromRectangle(1, 1, 4, 4), Point{3, 3}},
		{"degenerate", FromPoints(7, 9, 7, 9), Point{7, 9}},
		{"offset", FromRectangle(100, 200, 31, 11), Point{115, 205}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.r.Center(); got != tt.want {
				t.Fatalf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestContainsAndEmpty(t *testing.T) {
	r := FromRectangle(0, 0, 10, 10)
	if !r.Contains(Point{0, 0}) || !r.Contains(Point{10, 10}) {
		t.Fatal("edges should be contained")
	}
	if r.Contains(Point{11, 5}) {
		t.Fatal("point outside reported as contained")
	}
	if r.Empty() {
		t.Fatal("10x10 region reported empty")
	}
	if !FromPoints(3, 3, 3, 8).Empty() {
		t.Fatal("zero width region should be empty")
	}
}

func TestImageRectRoundTrip(t *testing.T) {
	ir := image.Rect(5, 6, 50, 60)
	r := FromImageRect(ir)
	if r.ImageRect() != ir {
		t.Fatalf("expected %v, got %v", ir, r.ImageRect())
	}
}
