package vision

import (
	"image"
	"image/color"
)

// Frame is a packed RGB pixel buffer, 3 bytes per pixel, rows top to bottom.
type Frame struct {
	Pix    []uint8
	Width  int
	Height int
}

// NewFrame allocates a black frame.
func NewFrame(w, h int) *Frame {
	if w < 0 {
		w = 0
	}
	if h < 0 {
		h = 0
	}
	return &Frame{Pix: make([]uint8, w*h*3), Width: w, Height: h}
}

// FrameFromImage copies img into a Frame. Alpha is dropped.
func FrameFromImage(img image.Image) *Frame {
	if img == nil {
		return &Frame{}
	}
	b := img.Bounds()
	f := NewFrame(b.Dx(), b.Dy())
	switch src := img.(type) {
	case *image.RGBA:
		for y := 0; y < f.Height; y++ {
			row := src.Pix[(y+b.Min.Y-src.Rect.Min.Y)*src.Stride+(b.Min.X-src.Rect.Min.X)*4:]
			for x := 0; x < f.Width; x++ {
				copy(f.Pix[(y*f.Width+x)*3:], row[x*4:x*4+3])
			}
		}
	case *image.NRGBA:
		for y := 0; y < f.Height; y++ {
			row := src.Pix[(y+b.Min.Y-src.Rect.Min.Y)*src.Stride+(b.Min.X-src.Rect.Min.X)*4:]
			for x := 0; x < f.Width; x++ {
				copy(f.Pix[(y*f.Width+x)*3:], row[x*4:x*4+3])
			}
		}
	default:
		for y := 0; y < f.Height; y++ {
			for x := 0; x < f.Width; x++ {
				c := color.NRGBAModel.Convert(img.At(b.Min.X+x, b.Min.Y+y)).(color.NRGBA)
				i := (y*f.Width + x) * 3
				f.Pix[i], f.Pix[i+1], f.Pix[i+2] = c.R, c.G, c.B
			}
		}
	}
	return f
}

// Empty reports whether the frame holds no pixels.
func (f *Frame) Empty() bool {
	return f == nil || f.Width <= 0 || f.Height <= 0 || len(f.Pix) < f.Width*f.Height*3
}

func (f *Frame) Bounds() image.Rectangle {
	return image.Rect(0, 0, f.Width, f.Height)
}

// At returns the RGB triple at (x, y).
func (f *Frame) At(x, y int) (r, g, b uint8) {
	i := (y*f.Width + x) * 3
	return f.Pix[i], f.Pix[i+1], f.Pix[i+2]
}

func (f *Frame) Set(x, y int, r, g, b uint8) {
	i := (y*f.Width + x) * 3
	f.Pix[i], f.Pix[i+1], f.Pix[i+2] = r, g, b
}

// Image converts the frame to an opaque *image.RGBA.
func (f *Frame) Image() *image.RGBA {
	img := image.NewRGBA(f.Bounds())
	for i, j := 0, 0; i+2 < len(f.Pix) && j+3 < len(img.Pix); i, j = i+3, j+4 {
		img.Pix[j] = f.Pix[i]
		img.Pix[j+1] = f.Pix[i+1]
		img.Pix[j+2] = f.Pix[i+2]
		img.Pix[j+3] = 0xff
	}
	return img
}

// Paste copies src into f with its top-left corner at (x, y). Pixels falling
// outside f are dropped.
func (f *Frame) Paste(src *Frame, x, y int) {
	for sy := 0; sy < src.Height; sy++ {
		dy := y + sy
		if dy < 0 || dy >= f.Height {
			continue
		}
		for sx := 0; sx < src.Width; sx++ {
			dx := x + sx
			if dx < 0 || dx >= f.Width {
				continue
			}
			r, g, b := src.At(sx, sy)
			f.Set(dx, dy, r, g, b)
		}
	}
}
