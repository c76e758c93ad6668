// Package background produces the endless stream of background frames the
// compositor blends behind the subject. A source is either a precomputed
// still image (optionally tiled) or a looping video whose playback rate
// adapts to the live pipeline's measured throughput.
package background

import (
	"fmt"
	"math/rand"
	"time"

	"gocv.io/x/gocv"
)

// Source yields background frames sized to the output dimensions.
type Source interface {
	// Next returns the background frame for the current pipeline
	// iteration. The returned Mat is owned by the source and must be
	// treated as read-only; it stays valid until the next call.
	Next() (gocv.Mat, error)

	// SetRate feeds the measured pipeline frame rate back into the
	// source so video playback stays perceptually real-time.
	SetRate(fps float64)

	Close() error
}

// Options controls how source material is fitted to the output frame.
type Options struct {
	Width      int
	Height     int
	KeepAspect bool
	Tile       bool

	// Rand drives the stochastic frame-skipping of video sources.
	// Nil selects a time-seeded generator; tests inject a fixed seed.
	Rand *rand.Rand
}

// Open loads a background source from path. The file is first tried as a
// still image; anything unreadable as an image is tried as a video. A
// path that is neither is a fatal configuration error.
func Open(path string, opts Options) (Source, error) {
	if opts.Width <= 0 || opts.Height <= 0 {
		return nil, fmt.Errorf("invalid background dimensions %dx%d", opts.Width, opts.Height)
	}
	if opts.Rand == nil {
		opts.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	img := gocv.IMRead(path, gocv.IMReadColor)
	if !img.Empty() {
		defer img.Close()
		return newStatic(img, opts)
	}
	img.Close()

	return openVideo(path, opts)
}
