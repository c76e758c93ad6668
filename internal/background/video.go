package background

import (
	"fmt"
	"math"
	"math/rand"

	"gocv.io/x/gocv"
)

// fallbackFPS stands in for sources that do not report a frame rate.
const fallbackFPS = 30

// video loops a video file, advancing playback at the source's native
// rate relative to the pipeline's measured rate.
type video struct {
	cap  *gocv.VideoCapture
	path string
	opts Options

	bgFPS      float64
	currentFPS float64
	rng        *rand.Rand

	raw    gocv.Mat
	out    gocv.Mat
	primed bool
}

func openVideo(path string, opts Options) (Source, error) {
	cap, err := gocv.VideoCaptureFile(path)
	if err != nil {
		return nil, fmt.Errorf("background %q is neither a readable image nor a video: %w", path, err)
	}
	bgFPS := cap.Get(gocv.VideoCaptureFPS)
	if bgFPS <= 0 {
		bgFPS = fallbackFPS
	}
	return &video{
		cap:  cap,
		path: path,
		opts: opts,
		bgFPS: bgFPS,
		// Until the pipeline reports a measurement, assume it keeps up
		// with the video so playback starts at native speed.
		currentFPS: bgFPS,
		rng:        opts.Rand,
		raw:        gocv.NewMat(),
		out:        gocv.NewMat(),
	}, nil
}

// advanceSteps decides how many source frames to consume this iteration.
// When the video is slower than the pipeline (rate < 1) a single-frame
// advance is taken with probability equal to the rate, so playback speed
// is correct in expectation without visible stutter. At rate >= 1 the
// advance is deterministic rounding, half to even.
func advanceSteps(bgFPS, currentFPS float64, rng *rand.Rand) int {
	rate := bgFPS / currentFPS
	if rate < 1 {
		if rng.Float64() < rate {
			return 1
		}
		return 0
	}
	return int(math.RoundToEven(rate))
}

func (v *video) Next() (gocv.Mat, error) {
	steps := advanceSteps(v.bgFPS, v.currentFPS, v.rng)
	if !v.primed && steps == 0 {
		steps = 1
	}
	for i := 0; i < steps; i++ {
		if err := v.readFrame(); err != nil {
			return gocv.Mat{}, err
		}
	}
	return v.out, nil
}

// readFrame reads one frame, rewinding to the first frame at end of
// stream. A read that fails even after rewinding means the source is
// corrupt or empty, which is fatal.
func (v *video) readFrame() error {
	if !v.cap.Read(&v.raw) || v.raw.Empty() {
		v.cap.Set(gocv.VideoCapturePosFrames, 0)
		if !v.cap.Read(&v.raw) || v.raw.Empty() {
			return fmt.Errorf("cannot read frame from %q after rewind", v.path)
		}
	}
	v.primed = true
	return resizeFrame(v.raw, &v.out, v.opts.Width, v.opts.Height, v.opts.KeepAspect)
}

func (v *video) SetRate(fps float64) {
	if fps > 0 {
		v.currentFPS = fps
	}
}

func (v *video) Close() error {
	v.raw.Close()
	v.out.Close()
	return v.cap.Close()
}
