// Package compositing layers the processed live frame over the chosen
// background: optional hologram styling, sigmoid-shaped mask blending and
// an optional static foreground overlay.
package compositing

import (
	"fmt"
	"image"
	"math/rand"
	"time"

	"gocv.io/x/gocv"

	"github.com/andreasreinhardt/Linux-Fake-Background-Webcam/internal/frame"
)

// Options is the immutable per-run configuration of the compositor.
type Options struct {
	// NoBackground replaces the configured background with a blurred
	// copy of the live frame itself.
	NoBackground bool
	// BlurRadius is the box-blur kernel size for NoBackground mode.
	// The config layer has already forced it odd.
	BlurRadius int
	// Hologram toggles the blue-tint/ghosting effect on the subject.
	Hologram bool

	// Rand drives the halftone flicker. Nil selects a time-seeded
	// generator; tests inject a fixed seed.
	Rand *rand.Rand
}

// Compositor blends frames. It reuses internal buffers between calls and
// is therefore not safe for concurrent use; the pipeline runs it from a
// single goroutine.
type Compositor struct {
	opts Options
	rng  *rand.Rand

	alpha   []float64
	blurred gocv.Mat
	holo    gocv.Mat
	shifted gocv.Mat
	ghosted gocv.Mat

	overlay *Overlay
}

// New creates a compositor. Overlay assets are attached separately via
// SetOverlay because they are reloaded on pause/resume transitions.
func New(opts Options) *Compositor {
	rng := opts.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Compositor{
		opts:    opts,
		rng:     rng,
		blurred: gocv.NewMat(),
		holo:    gocv.NewMat(),
		shifted: gocv.NewMat(),
		ghosted: gocv.NewMat(),
	}
}

// SetOverlay replaces the foreground overlay assets, closing any previous
// set. A nil overlay disables the foreground pass.
func (c *Compositor) SetOverlay(o *Overlay) {
	if c.overlay != nil {
		c.overlay.Close()
	}
	c.overlay = o
}

// Compose blends the live frame in place. The mask and background must
// already match the frame's dimensions; the compositor never resizes
// per frame.
func (c *Compositor) Compose(live *gocv.Mat, m *frame.Mask, bg gocv.Mat) error {
	if c.opts.NoBackground {
		k := image.Pt(c.opts.BlurRadius, c.opts.BlurRadius)
		gocv.Blur(*live, &c.blurred, k)
		bg = c.blurred
	}

	if c.opts.Hologram {
		if err := c.hologram(live); err != nil {
			return err
		}
	}

	livePix, err := frame.Pixels(*live)
	if err != nil {
		return err
	}
	bgPix, err := frame.Pixels(bg)
	if err != nil {
		return err
	}
	pixels := len(livePix) / 3
	if len(m.Data) != pixels || len(bgPix) != len(livePix) {
		return fmt.Errorf("compose: size mismatch, frame %d px, mask %d px, background %d bytes",
			pixels, len(m.Data), len(bgPix))
	}

	if len(c.alpha) != pixels {
		c.alpha = make([]float64, pixels)
	}
	sigmoidAlpha(c.alpha, m.Data)
	blendWithBackground(livePix, bgPix, c.alpha)

	if c.overlay != nil {
		fgPix, err := frame.Pixels(c.overlay.Image)
		if err != nil {
			return err
		}
		if len(c.overlay.Mask) != pixels {
			return fmt.Errorf("compose: overlay mask has %d px, frame has %d px",
				len(c.overlay.Mask), pixels)
		}
		applyOverlay(livePix, fgPix, c.overlay.Mask, c.overlay.Inverted)
	}
	return nil
}

// hologram restyles the live frame in place: blue color remap, flickering
// halftone rows and two diagonally shifted ghost copies, finally blended
// back over the original with unnormalized 0.5/0.6 weights. The slight
// oversaturation is intentional; AddWeighted saturates per channel.
func (c *Compositor) hologram(img *gocv.Mat) error {
	gocv.ApplyColorMap(*img, &c.holo, gocv.ColormapWinter)

	pix, err := frame.Pixels(c.holo)
	if err != nil {
		return err
	}
	darkenBandRows(pix, c.holo.Cols()*3, c.holo.Rows(), c.rng)

	if err := c.shiftInto(c.holo, 5, 5); err != nil {
		return err
	}
	gocv.AddWeighted(c.holo, 0.2, c.shifted, 0.8, 0, &c.ghosted)
	if err := c.shiftInto(c.holo, -5, -5); err != nil {
		return err
	}
	gocv.AddWeighted(c.ghosted, 0.4, c.shifted, 0.6, 0, &c.ghosted)
	gocv.AddWeighted(*img, 0.5, c.ghosted, 0.6, 0, img)
	return nil
}

// shiftInto translates src by (dx, dy) into the shift buffer, zero-filling
// the exposed edges (no wraparound).
func (c *Compositor) shiftInto(src gocv.Mat, dx, dy int) error {
	w, h := src.Cols(), src.Rows()
	if c.shifted.Empty() || c.shifted.Cols() != w || c.shifted.Rows() != h {
		c.shifted.Close()
		c.shifted = gocv.NewMatWithSize(h, w, gocv.MatTypeCV8UC3)
	}
	pix, err := frame.Pixels(c.shifted)
	if err != nil {
		return err
	}
	clear(pix)

	srcRect := image.Rect(max(0, -dx), max(0, -dy), w-max(0, dx), h-max(0, dy))
	dstRect := image.Rect(max(0, dx), max(0, dy), w-max(0, -dx), h-max(0, -dy))
	from := src.Region(srcRect)
	defer from.Close()
	to := c.shifted.Region(dstRect)
	defer to.Close()
	from.CopyTo(&to)
	return nil
}

// Close releases the internal buffers and any attached overlay.
func (c *Compositor) Close() error {
	c.blurred.Close()
	c.holo.Close()
	c.shifted.Close()
	c.ghosted.Close()
	if c.overlay != nil {
		c.overlay.Close()
		c.overlay = nil
	}
	return nil
}
