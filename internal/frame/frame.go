// Package frame holds the pixel-level data model shared by the pipeline
// stages: BGR frames (gocv Mats) and single-channel probability masks.
package frame

import (
	"fmt"

	"gocv.io/x/gocv"
)

// Mask is a single-channel foreground-probability plane in [0, 1], stored
// row-major at the same spatial size as the frame it belongs to.
type Mask struct {
	Data   []float64
	Width  int
	Height int
}

// NewMask allocates a zeroed mask of the given size.
func NewMask(width, height int) *Mask {
	return &Mask{
		Data:   make([]float64, width*height),
		Width:  width,
		Height: height,
	}
}

// Clone returns an independent copy of the mask.
func (m *Mask) Clone() *Mask {
	n := NewMask(m.Width, m.Height)
	copy(n.Data, m.Data)
	return n
}

// Blank returns an all-zero BGR frame of the given size. Used to keep the
// output device fed while the pipeline is paused.
func Blank(width, height int) gocv.Mat {
	return gocv.Zeros(height, width, gocv.MatTypeCV8UC3)
}

// Pixels returns the raw interleaved BGR bytes backing a frame Mat. The
// Mat must be continuous, which holds for everything this pipeline
// produces (captures, resizes and clones all allocate fresh storage).
func Pixels(m gocv.Mat) ([]uint8, error) {
	data, err := m.DataPtrUint8()
	if err != nil {
		return nil, fmt.Errorf("frame data not addressable: %w", err)
	}
	return data, nil
}
