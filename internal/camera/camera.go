// Package camera wraps the real V4L2 capture device. Property requests
// are best-effort: the driver may silently keep its own values, so every
// request is read back and mismatches are logged as warnings.
package camera

import (
	"fmt"
	"log"

	"gocv.io/x/gocv"
)

// RealCam is an open handle on the physical webcam.
type RealCam struct {
	cap *gocv.VideoCapture
}

// Open acquires the device and negotiates codec, dimensions and frame
// rate. Only opening the device can fail; refused properties are logged
// and the device's actual values win.
func Open(path string, width, height, fps int, codec string) (*RealCam, error) {
	cap, err := gocv.OpenVideoCaptureWithAPI(path, gocv.VideoCaptureV4L2)
	if err != nil {
		return nil, fmt.Errorf("open camera %q: %w", path, err)
	}
	c := &RealCam{cap: cap}
	c.logValues("original")

	c.setCodec(codec)
	c.setDimensions(width, height)
	c.setFrameRate(fps)

	c.logValues("new")
	return c, nil
}

func (c *RealCam) logValues(status string) {
	log.Printf("Real camera %s values are set as: %dx%d with %d FPS and video codec %s",
		status, c.Width(), c.Height(), c.FPS(), c.Codec())
}

func (c *RealCam) setCodec(codec string) {
	want := encodeFourCC(codec)
	if want == 0 {
		log.Printf("⚠️  Invalid codec %q, keeping camera default", codec)
		return
	}
	c.cap.Set(gocv.VideoCaptureFOURCC, want)
	if c.cap.Get(gocv.VideoCaptureFOURCC) != want {
		warnPropertyNotSet("codec", codec)
	}
}

func (c *RealCam) setDimensions(width, height int) {
	// Width and height must both be set before either is checked;
	// verifying in between can report a false refusal.
	c.cap.Set(gocv.VideoCaptureFrameWidth, float64(width))
	c.cap.Set(gocv.VideoCaptureFrameHeight, float64(height))

	if c.Width() != width {
		warnPropertyNotSet("frame width", fmt.Sprint(width))
	}
	if c.Height() != height {
		warnPropertyNotSet("frame height", fmt.Sprint(height))
	}
}

func (c *RealCam) setFrameRate(fps int) {
	c.cap.Set(gocv.VideoCaptureFPS, float64(fps))
	if c.FPS() != fps {
		warnPropertyNotSet("frame rate", fmt.Sprint(fps))
	}
}

func warnPropertyNotSet(prop, value string) {
	log.Printf("⚠️  Cannot set camera %s to %s, continuing with the device's auto-detected value", prop, value)
}

// Width returns the negotiated frame width.
func (c *RealCam) Width() int { return int(c.cap.Get(gocv.VideoCaptureFrameWidth)) }

// Height returns the negotiated frame height.
func (c *RealCam) Height() int { return int(c.cap.Get(gocv.VideoCaptureFrameHeight)) }

// FPS returns the negotiated frame rate.
func (c *RealCam) FPS() int { return int(c.cap.Get(gocv.VideoCaptureFPS)) }

// Codec returns the negotiated codec as a 4-character code.
func (c *RealCam) Codec() string {
	return decodeFourCC(c.cap.Get(gocv.VideoCaptureFOURCC))
}

// Read grabs one frame into dst. A false return is a transient condition,
// not an error; the pipeline simply retries on its next iteration.
func (c *RealCam) Read(dst *gocv.Mat) bool {
	return c.cap.Read(dst) && !dst.Empty()
}

// Close releases the device.
func (c *RealCam) Close() error {
	return c.cap.Close()
}
