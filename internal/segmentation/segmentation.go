// Package segmentation provides the person-segmentation capability the
// pipeline consumes. The model itself is an opaque asset; this package
// only constrains shapes: a BGR frame goes in, a probability mask of the
// same spatial size comes out.
package segmentation

import (
	"gocv.io/x/gocv"

	"github.com/andreasreinhardt/Linux-Fake-Background-Webcam/internal/frame"
)

// Segmenter turns a frame into a per-pixel foreground probability mask
// sized to match the frame.
type Segmenter interface {
	Segment(img gocv.Mat) (*frame.Mask, error)
	Close() error
}

// Options configures the ONNX backend.
type Options struct {
	// ModelPath is the selfie-segmentation ONNX model file.
	ModelPath string
	// LibraryPath optionally points at the onnxruntime shared library.
	LibraryPath string

	// Model input geometry and tensor names, with defaults matching
	// the common selfie-segmentation export.
	InputWidth  int
	InputHeight int
	InputName   string
	OutputName  string

	// UseCUDA enables the CUDA execution provider when available; the
	// session silently falls back to CPU otherwise.
	UseCUDA bool
}

func (o *Options) applyDefaults() {
	if o.InputWidth == 0 {
		o.InputWidth = 256
	}
	if o.InputHeight == 0 {
		o.InputHeight = 256
	}
	if o.InputName == "" {
		o.InputName = "input"
	}
	if o.OutputName == "" {
		o.OutputName = "output"
	}
}
