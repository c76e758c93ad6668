package background

import (
	"math/rand"
	"testing"
)

func TestAspectCrop(t *testing.T) {
	tests := []struct {
		name                   string
		imgW, imgH             int
		targetW, targetH       int
		wantX, wantY           int
		wantW, wantH           int
	}{
		{
			name: "wide source onto 16:9",
			imgW: 4000, imgH: 1000,
			targetW: 1280, targetH: 720,
			// scale = max(0.32, 0.72) = 0.72; crop 1777x1000 centered.
			wantX: 1111, wantY: 0,
			wantW: 1777, wantH: 1000,
		},
		{
			name: "tall source onto 16:9",
			imgW: 1000, imgH: 4000,
			targetW: 1280, targetH: 720,
			// scale = max(1.28, 0.18) = 1.28; crop 1000x562 at y=1719.
			wantX: 0, wantY: 1719,
			wantW: 1000, wantH: 562,
		},
		{
			name: "same aspect is full image",
			imgW: 2560, imgH: 1440,
			targetW: 1280, targetH: 720,
			wantX: 0, wantY: 0,
			wantW: 2560, wantH: 1440,
		},
		{
			name: "odd remainder floors offset and size",
			imgW: 101, imgH: 100,
			targetW: 100, targetH: 100,
			wantX: 0, wantY: 0,
			wantW: 100, wantH: 100,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := aspectCrop(tt.imgW, tt.imgH, tt.targetW, tt.targetH)
			if got.Min.X != tt.wantX || got.Min.Y != tt.wantY {
				t.Errorf("aspectCrop() offset = (%d,%d), want (%d,%d)",
					got.Min.X, got.Min.Y, tt.wantX, tt.wantY)
			}
			if got.Dx() != tt.wantW || got.Dy() != tt.wantH {
				t.Errorf("aspectCrop() size = %dx%d, want %dx%d",
					got.Dx(), got.Dy(), tt.wantW, tt.wantH)
			}
			// The crop must stay inside the source image.
			if got.Min.X < 0 || got.Min.Y < 0 || got.Max.X > tt.imgW || got.Max.Y > tt.imgH {
				t.Errorf("aspectCrop() = %v exceeds %dx%d source", got, tt.imgW, tt.imgH)
			}
		})
	}
}

func TestTileRepsCoverTarget(t *testing.T) {
	tests := []struct {
		name             string
		imgW, imgH       int
		targetW, targetH int
	}{
		{"small tile", 100, 80, 1280, 720},
		{"exact divisor", 128, 72, 1280, 720},
		{"single pixel", 1, 1, 33, 17},
		{"one axis larger", 2000, 80, 1280, 720},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repX, repY := tileReps(tt.imgW, tt.imgH, tt.targetW, tt.targetH)
			if repX*tt.imgW < tt.targetW || repY*tt.imgH < tt.targetH {
				t.Errorf("tileReps() = (%d,%d) leaves %dx%d uncovered for target %dx%d",
					repX, repY, repX*tt.imgW, repY*tt.imgH, tt.targetW, tt.targetH)
			}
			// Coverage must be tight: one repetition fewer must not cover.
			if repX > 1 && (repX-1)*tt.imgW >= tt.targetW {
				t.Errorf("tileReps() repX = %d not minimal", repX)
			}
			if repY > 1 && (repY-1)*tt.imgH >= tt.targetH {
				t.Errorf("tileReps() repY = %d not minimal", repY)
			}
		})
	}
}

func TestAdvanceStepsDeterministicWhenFaster(t *testing.T) {
	rng := rand.New(rand.NewSource(1))

	if got := advanceSteps(30, 10, rng); got != 3 {
		t.Errorf("advanceSteps(30, 10) = %d, want 3", got)
	}
	if got := advanceSteps(30, 30, rng); got != 1 {
		t.Errorf("advanceSteps(30, 30) = %d, want 1", got)
	}
	// Ties round half to even: 2.5 -> 2, 3.5 -> 4.
	if got := advanceSteps(25, 10, rng); got != 2 {
		t.Errorf("advanceSteps(25, 10) = %d, want 2", got)
	}
	if got := advanceSteps(35, 10, rng); got != 4 {
		t.Errorf("advanceSteps(35, 10) = %d, want 4", got)
	}
}

func TestAdvanceStepsStochasticFrequency(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	const iterations = 30000
	advances := 0
	for i := 0; i < iterations; i++ {
		steps := advanceSteps(10, 30, rng)
		if steps != 0 && steps != 1 {
			t.Fatalf("advanceSteps(10, 30) = %d, want 0 or 1", steps)
		}
		advances += steps
	}

	freq := float64(advances) / iterations
	if freq < 0.32 || freq > 0.35 {
		t.Errorf("long-run advance frequency = %.4f, want ~1/3", freq)
	}
}
