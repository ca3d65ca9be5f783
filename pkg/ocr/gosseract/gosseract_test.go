package gosseract

import (
	"image"
	"testing"

	"github.com/otiai10/gosseract/v2"

	"gitlab.com/web-doodle/mavis/pkg/ocr"
)

var _ ocr.Engine = (*Engine)(nil)

func TestNewSplitsLanguages(t *testing.T) {
	e := New("deu+fra")
	if len(e.Languages) != 2 || e.Languages[0] != "deu" || e.Languages[1] != "fra" {
		t.Fatalf("unexpected languages %q", e.Languages)
	}
	if d := New(""); len(d.Languages) != 2 || d.Languages[0] != "rus" {
		t.Fatalf("unexpected default languages %q", d.Languages)
	}
}

var _ ocr.Locator = (*Engine)(nil)

func TestFindBox(t *testing.T) {
	boxes := []gosseract.BoundingBox{
		{Box: image.Rect(0, 0, 40, 12), Word: "Open"},
		{Box: image.Rect(10, 20, 120, 34), Word: "Media Manager\n"},
		{Box: image.Rect(10, 40, 120, 54), Word: "media"},
	}
	box, ok := findBox(boxes, "media manager")
	if !ok || box != image.Rect(10, 20, 120, 34) {
		t.Fatalf("unexpected box %v %v", box, ok)
	}
	if _, ok := findBox(boxes, "settings"); ok {
		t.Fatal("did not expect a match")
	}
	if _, ok := findBox(boxes, "  "); ok {
		t.Fatal("blank text must not match")
	}
}
