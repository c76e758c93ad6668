package compositing

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/floats"
)

// Sigmoid parameters mapping mask probability to blend alpha. The curve
// pushes values near 0 and 1 to the extremes while keeping a smooth
// transition band around 0.5 instead of a hard cutoff.
const (
	sigmoidA = 5.0
	sigmoidB = -10.0
)

// Halftone band geometry of the hologram effect.
const (
	bandLength = 3
	bandGap    = 4
)

// sigmoidAlpha writes 1/(1+exp(a+b*m)) for each mask value into dst.
func sigmoidAlpha(dst, mask []float64) {
	copy(dst, mask)
	floats.Scale(sigmoidB, dst)
	floats.AddConst(sigmoidA, dst)
	for i, v := range dst {
		dst[i] = 1 / (1 + math.Exp(v))
	}
}

// blendWithBackground mixes the background into the live frame in place.
// Both buffers are interleaved BGR; alpha holds one weight per pixel.
func blendWithBackground(live, bg []uint8, alpha []float64) {
	for p, a := range alpha {
		base := p * 3
		inv := 1 - a
		live[base] = uint8(float64(live[base])*a + float64(bg[base])*inv)
		live[base+1] = uint8(float64(live[base+1])*a + float64(bg[base+1])*inv)
		live[base+2] = uint8(float64(live[base+2])*a + float64(bg[base+2])*inv)
	}
}

// applyOverlay composites the foreground image over the frame in place
// using the overlay's own mask and its precomputed complement.
func applyOverlay(live, fg []uint8, mask, inverted []float64) {
	for p, m := range mask {
		base := p * 3
		inv := inverted[p]
		live[base] = uint8(float64(live[base])*inv + float64(fg[base])*m)
		live[base+1] = uint8(float64(live[base+1])*inv + float64(fg[base+1])*m)
		live[base+2] = uint8(float64(live[base+2])*inv + float64(fg[base+2])*m)
	}
}

// darkenBandRows applies the scan-line halftone: rows falling into the
// periodic band pattern are darkened by a factor drawn uniformly from
// [0.1, 0.3) per row. The flicker between frames is intentional.
func darkenBandRows(pix []uint8, rowStride, rows int, rng *rand.Rand) {
	for y := 0; y < rows; y++ {
		if y%(bandLength+bandGap) >= bandLength {
			continue
		}
		f := 0.1 + rng.Float64()*0.2
		row := pix[y*rowStride : (y+1)*rowStride]
		for i, b := range row {
			row[i] = uint8(float64(b) * f)
		}
	}
}
