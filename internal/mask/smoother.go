// Package mask implements temporal smoothing of segmentation masks.
package mask

import (
	"gonum.org/v1/gonum/floats"

	"github.com/andreasreinhardt/Linux-Fake-Background-Webcam/internal/frame"
)

// Smoother exponentially averages successive raw segmentation masks to
// suppress frame-to-frame flicker along the foreground edge.
//
// Alpha semantics match the original tool exactly, including the quirk at
// alpha == 0: the first raw mask is stored and never updated again. That
// is arguably an inversion of what "0% update speed" should mean, but it
// is the observed behavior and is preserved rather than fixed.
type Smoother struct {
	alpha float64
	prev  *frame.Mask
}

// NewSmoother creates a smoother with the given update coefficient.
// alpha is expected to already be clamped to [0, 1] by the config layer.
func NewSmoother(alpha float64) *Smoother {
	return &Smoother{alpha: alpha}
}

// Update folds a raw mask into the smoothed state and returns the state.
// The raw mask must match the size of every previous call; the caller
// resizes before calling. The returned mask is owned by the smoother and
// is only valid until the next Update.
func (s *Smoother) Update(raw *frame.Mask) *frame.Mask {
	switch {
	case s.prev == nil || s.alpha == 1:
		s.prev = raw.Clone()
	case s.alpha == 0:
		// Frozen: keep the first stored mask.
	default:
		floats.Scale(1-s.alpha, s.prev.Data)
		floats.AddScaled(s.prev.Data, s.alpha, raw.Data)
	}
	return s.prev
}

// Reset drops the stored state so the next Update stores its input as-is.
func (s *Smoother) Reset() {
	s.prev = nil
}
