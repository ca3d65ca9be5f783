// Package opencv backs vision.Correlator with OpenCV's matchTemplate and
// provides the image clean-up applied before OCR. It needs cgo and OpenCV.
package opencv

import (
	"fmt"
	"image"
	"os"
	"path/filepath"
	"sync/atomic"

	"github.com/vcaesar/gcv"
	"gocv.io/x/gocv"

	"gitlab.com/web-doodle/mavis/pkg/region"
	"gitlab.com/web-doodle/mavis/pkg/vision"
)

// Correlator runs TM_CCOEFF_NORMED through gcv. When DebugDir is set every
// scaled template is written there for inspection.
type Correlator struct {
	DebugDir string

	seq atomic.Int64
}

func NewCorrelator(debugDir string) *Correlator {
	return &Correlator{DebugDir: debugDir}
}

func (c *Correlator) Correlate(src, tmpl *vision.Frame) (float64, region.Point, error) {
	srcImg := src.Image()
	tmplImg := tmpl.Image()
	srcMat, err := gocv.ImageToMatRGB(srcImg)
	if err != nil {
		return 0, region.Point{}, fmt.Errorf("source to mat: %w", err)
	}
	defer srcMat.Close()
	tmplMat, err := gocv.ImageToMatRGB(tmplImg)
	if err != nil {
		return 0, region.Point{}, fmt.Errorf("template to mat: %w", err)
	}
	defer tmplMat.Close()

	if c.DebugDir != "" {
		if err := os.MkdirAll(c.DebugDir, 0755); err == nil {
			n := c.seq.Add(1)
			gcv.ImgWrite(filepath.Join(c.DebugDir, fmt.Sprintf("template-%03d-%dx%d.png", n, tmpl.Width, tmpl.Height)), tmplImg)
		}
	}

	_, maxVal, _, maxLoc := gcv.FindImgMat(srcMat, tmplMat)
	return float64(maxVal), region.Point{X: maxLoc.X, Y: maxLoc.Y}, nil
}

// Grayscale converts img to a single channel image.
func Grayscale(img image.Image) (image.Image, error) {
	iMat, err := gocv.ImageToMatRGB(img)
	if err != nil {
		return img, err
	}
	defer iMat.Close()
	gocv.CvtColor(iMat, &iMat, gocv.ColorBGRToGray)
	nImg, err := iMat.ToImage()
	if err != nil {
		return img, err
	}
	return nImg, nil
}

// IntensifyText keeps near white strokes, closes small gaps and inverts the
// result so text ends up dark on a light background.
func IntensifyText(img image.Image) (image.Image, error) {
	iMat, err := gocv.ImageToMatRGB(img)
	if err != nil {
		return img, err
	}
	defer iMat.Close()
	gocv.CvtColor(iMat, &iMat, gocv.ColorBGRToGray)
	gocv.Threshold(iMat, &iMat, 245, 255, gocv.ThresholdBinary)
	element := gocv.GetStructuringElement(gocv.MorphRect, image.Point{X: 3, Y: 3})
	defer element.Close()
	gocv.MorphologyEx(iMat, &iMat, gocv.MorphClose, element)
	gocv.BitwiseNot(iMat, &iMat)
	nImg, err := iMat.ToImage()
	if err != nil {
		return img, err
	}
	return nImg, nil
}
