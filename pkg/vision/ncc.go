package vision

import (
	"math"

	"gitlab.com/web-doodle/mavis/pkg/region"
)

// Correlator scores every placement of tmpl inside src with the zero mean
// normalized cross correlation (OpenCV's TM_CCOEFF_NORMED) and returns the
// maximum together with its top-left position. Ties keep the first position in
// row-major order.
type Correlator interface {
	Correlate(src, tmpl *Frame) (score float64, at region.Point, err error)
}

// NCC is the pure Go Correlator. Window sums come from integral images so the
// per-placement cost is the template dot product only.
type NCC struct{}

const nccEpsilon = 1e-9

func (NCC) Correlate(src, tmpl *Frame) (float64, region.Point, error) {
	W, H := src.Width, src.Height
	w, h := tmpl.Width, tmpl.Height
	n := float64(w * h)

	// Zero mean template, per channel.
	var mean [3]float64
	for i := 0; i < w*h; i++ {
		for c := 0; c < 3; c++ {
			mean[c] += float64(tmpl.Pix[i*3+c])
		}
	}
	for c := range mean {
		mean[c] /= n
	}
	t := make([]float64, w*h*3)
	var tNorm2 float64
	for i := range t {
		v := float64(tmpl.Pix[i]) - mean[i%3]
		t[i] = v
		tNorm2 += v * v
	}
	// A flat template has no variance to correlate against; every placement
	// scores 0 as in OpenCV.
	if tNorm2 < nccEpsilon {
		return 0, region.Point{}, nil
	}
	tNorm := math.Sqrt(tNorm2)

	sum, sq := integrals(src)
	stride := W + 1
	window := func(tab []float64, c, x, y int) float64 {
		a := (y*stride + x) * 3
		b := (y*stride + x + w) * 3
		d := ((y+h)*stride + x) * 3
		e := ((y+h)*stride + x + w) * 3
		return tab[e+c] - tab[b+c] - tab[d+c] + tab[a+c]
	}

	best := math.Inf(-1)
	var at region.Point
	for y := 0; y+h <= H; y++ {
		for x := 0; x+w <= W; x++ {
			var wVar float64
			for c := 0; c < 3; c++ {
				s := window(sum, c, x, y)
				wVar += window(sq, c, x, y) - s*s/n
			}
			if wVar < 0 {
				wVar = 0
			}

			var num float64
			for ty := 0; ty < h; ty++ {
				srow := src.Pix[((y+ty)*W+x)*3 : ((y+ty)*W+x+w)*3]
				trow := t[ty*w*3 : (ty+1)*w*3]
				for i, v := range trow {
					num += float64(srow[i]) * v
				}
			}

			score := 0.0
			if den := math.Sqrt(wVar) * tNorm; den > nccEpsilon {
				score = num / den
				if score > 1 {
					score = 1
				} else if score < -1 {
					score = -1
				}
			}
			if score > best {
				best = score
				at = region.Point{X: x, Y: y}
			}
		}
	}
	return best, at, nil
}

// integrals returns the per-channel integral image and integral of squares
// of f, each (Width+1)*(Height+1)*3 long.
func integrals(f *Frame) (sum, sq []float64) {
	stride := f.Width + 1
	sum = make([]float64, stride*(f.Height+1)*3)
	sq = make([]float64, len(sum))
	for y := 0; y < f.Height; y++ {
		var rowSum, rowSq [3]float64
		for x := 0; x < f.Width; x++ {
			p := (y*f.Width + x) * 3
			o := ((y+1)*stride + x + 1) * 3
			up := (y*stride + x + 1) * 3
			for c := 0; c < 3; c++ {
				v := float64(f.Pix[p+c])
				rowSum[c] += v
				rowSq[c] += v * v
				sum[o+c] = sum[up+c] + rowSum[c]
				sq[o+c] = sq[up+c] + rowSq[c]
			}
		}
	}
	return sum, sq
}
