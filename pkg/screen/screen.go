// Package screen grabs regions of the desktop as vision frames.
package screen

import (
	"errors"
	"fmt"
	"image"

	"github.com/go-vgo/robotgo"
	"github.com/vova616/screenshot"

	"gitlab.com/web-doodle/mavis/pkg/region"
	"gitlab.com/web-doodle/mavis/pkg/vision"
)

var ErrCapture = errors.New("screen capture failed")

const (
	BackendRobotgo    = "robotgo"
	BackendScreenshot = "screenshot"
)

// Capturer grabs a region in absolute display coordinates.
type Capturer interface {
	Capture(area region.Region) (*vision.Frame, error)
}

// New returns the capturer for backend.
func New(backend string) (Capturer, error) {
	switch backend {
	case "", BackendRobotgo:
		return Robot{}, nil
	case BackendScreenshot:
		return Screenshot{}, nil
	}
	return nil, fmt.Errorf("unknown capture backend %q", backend)
}

// Robot captures through robotgo.
type Robot struct{}

func (Robot) Capture(area region.Region) (*vision.Frame, error) {
	if err := checkArea(area); err != nil {
		return nil, err
	}
	b := area.Rectangle()
	img := robotgo.CaptureImg(b.Left, b.Top, b.Width, b.Height)
	return toFrame(img, area)
}

// Screenshot captures through vova616/screenshot.
type Screenshot struct{}

func (Screenshot) Capture(area region.Region) (*vision.Frame, error) {
	if err := checkArea(area); err != nil {
		return nil, err
	}
	img, err := screenshot.CaptureRect(area.ImageRect())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCapture, err)
	}
	if img == nil {
		return nil, fmt.Errorf("%w: no image for %v", ErrCapture, area)
	}
	return toFrame(img, area)
}

// Size returns the primary display size.
func Size() (int, int) {
	return robotgo.GetScreenSize()
}

// Full returns the region covering the primary display.
func Full() region.Region {
	w, h := Size()
	return region.FromRectangle(0, 0, w, h)
}

func checkArea(area region.Region) error {
	if area.Empty() {
		return fmt.Errorf("%w: empty region %v", ErrCapture, area)
	}
	if area.SX < 0 || area.SY < 0 {
		return fmt.Errorf("%w: region %v starts off screen", ErrCapture, area)
	}
	return nil
}

func toFrame(img image.Image, area region.Region) (*vision.Frame, error) {
	if img == nil {
		return nil, fmt.Errorf("%w: no image for %v", ErrCapture, area)
	}
	f := vision.FrameFromImage(img)
	if f.Empty() {
		return nil, fmt.Errorf("%w: empty image for %v", ErrCapture, area)
	}
	return f, nil
}
