//go:build linux

// Package sink writes composited frames to a v4l2loopback device so that
// ordinary video applications can open it like any other webcam.
package sink

import (
	"fmt"
	"os"

	"gocv.io/x/gocv"

	"github.com/andreasreinhardt/Linux-Fake-Background-Webcam/internal/frame"
)

// Loopback is an open output handle on a v4l2loopback device programmed
// for raw RGB24 frames at a fixed size.
type Loopback struct {
	f      *os.File
	width  int
	height int
	rgb    gocv.Mat
}

// Open configures the loopback device for width×height RGB24 output.
func Open(path string, width, height int) (*Loopback, error) {
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return nil, fmt.Errorf("open output device %q: %w", path, err)
	}

	var format v4l2Format
	format.typ = v4l2BufTypeVideoOutput
	if err := vidiocGetFormat(f.Fd(), &format); err != nil {
		f.Close()
		return nil, fmt.Errorf("query format on %q: %w", path, err)
	}

	pix := format.pix()
	pix.Width = uint32(width)
	pix.Height = uint32(height)
	pix.PixelFormat = v4l2PixFmtRGB24
	pix.Field = v4l2FieldNone
	pix.BytesPerLine = uint32(3 * width)
	pix.SizeImage = uint32(3 * width * height)
	pix.Colorspace = v4l2ColorspaceSRGB

	if err := vidiocSetFormat(f.Fd(), &format); err != nil {
		f.Close()
		return nil, fmt.Errorf("set %dx%d RGB24 format on %q: %w", width, height, path, err)
	}

	return &Loopback{
		f:      f,
		width:  width,
		height: height,
		rgb:    gocv.NewMat(),
	}, nil
}

// Emit converts a BGR frame to RGB order and writes it to the device.
func (l *Loopback) Emit(bgr gocv.Mat) error {
	gocv.CvtColor(bgr, &l.rgb, gocv.ColorBGRToRGB)
	pix, err := frame.Pixels(l.rgb)
	if err != nil {
		return err
	}
	if _, err := l.f.Write(pix); err != nil {
		return fmt.Errorf("write frame to %q: %w", l.f.Name(), err)
	}
	return nil
}

// Close releases the device.
func (l *Loopback) Close() error {
	l.rgb.Close()
	return l.f.Close()
}
