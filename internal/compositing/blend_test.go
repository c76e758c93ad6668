package compositing

import (
	"math"
	"math/rand"
	"testing"
)

func TestSigmoidAlphaBoundaries(t *testing.T) {
	alpha := make([]float64, 3)
	sigmoidAlpha(alpha, []float64{0, 1, 0.5})

	// 1/(1+e^5) and 1/(1+e^-5).
	wantLow := 1 / (1 + math.Exp(5))
	wantHigh := 1 / (1 + math.Exp(-5))

	if math.Abs(alpha[0]-wantLow) > 1e-12 {
		t.Errorf("sigmoid(0) = %v, want %v", alpha[0], wantLow)
	}
	if alpha[0] > 0.01 {
		t.Errorf("sigmoid(0) = %v, want near-zero alpha", alpha[0])
	}
	if math.Abs(alpha[1]-wantHigh) > 1e-12 {
		t.Errorf("sigmoid(1) = %v, want %v", alpha[1], wantHigh)
	}
	if alpha[1] < 0.99 {
		t.Errorf("sigmoid(1) = %v, want near-one alpha", alpha[1])
	}
	// With a=5, b=-10 the exponent vanishes at m=0.5, so the midpoint
	// is exactly 1/2.
	if math.Abs(alpha[2]-0.5) > 1e-12 {
		t.Errorf("sigmoid(0.5) = %v, want exactly 0.5", alpha[2])
	}
}

func TestBlendAllZeroMaskKeepsBackground(t *testing.T) {
	// 2x2 all-black live frame over an all-white background with an
	// all-zero mask: the output must be white within the sigmoid's
	// near-zero alpha tolerance.
	const pixels = 4
	live := make([]uint8, pixels*3)
	bg := make([]uint8, pixels*3)
	for i := range bg {
		bg[i] = 255
	}
	mask := make([]float64, pixels)
	alpha := make([]float64, pixels)

	sigmoidAlpha(alpha, mask)
	blendWithBackground(live, bg, alpha)

	for i, v := range live {
		if v < 253 {
			t.Errorf("byte %d = %d, want ~255 (background-dominated)", i, v)
		}
	}
}

func TestBlendAllOneMaskKeepsLiveFrame(t *testing.T) {
	const pixels = 4
	live := make([]uint8, pixels*3)
	for i := range live {
		live[i] = 200
	}
	bg := make([]uint8, pixels*3) // black background
	mask := []float64{1, 1, 1, 1}
	alpha := make([]float64, pixels)

	sigmoidAlpha(alpha, mask)
	blendWithBackground(live, bg, alpha)

	for i, v := range live {
		if v < 198 {
			t.Errorf("byte %d = %d, want ~200 (foreground-dominated)", i, v)
		}
	}
}

func TestApplyOverlay(t *testing.T) {
	// One opaque overlay pixel, one transparent, one half-blended.
	live := []uint8{10, 10, 10, 10, 10, 10, 10, 10, 10}
	fg := []uint8{250, 250, 250, 250, 250, 250, 250, 250, 250}
	mask := []float64{1, 0, 0.5}
	inverted := []float64{0, 1, 0.5}

	applyOverlay(live, fg, mask, inverted)

	want := []uint8{250, 250, 250, 10, 10, 10, 130, 130, 130}
	for i := range want {
		if live[i] != want[i] {
			t.Errorf("byte %d = %d, want %d", i, live[i], want[i])
		}
	}
}

func TestDarkenBandRows(t *testing.T) {
	const (
		width = 8
		rows  = 14 // two full band periods
	)
	rng := rand.New(rand.NewSource(7))

	pix := make([]uint8, rows*width*3)
	for i := range pix {
		pix[i] = 200
	}
	darkenBandRows(pix, width*3, rows, rng)

	for y := 0; y < rows; y++ {
		row := pix[y*width*3 : (y+1)*width*3]
		inBand := y%(bandLength+bandGap) < bandLength
		for i, v := range row {
			if !inBand {
				if v != 200 {
					t.Fatalf("row %d byte %d = %d, want untouched 200", y, i, v)
				}
				continue
			}
			// Darkening factor is drawn from [0.1, 0.3), so the
			// result must land in [20, 60).
			if v < 20 || v >= 60 {
				t.Fatalf("row %d byte %d = %d, want darkened into [20, 60)", y, i, v)
			}
		}
	}
}
