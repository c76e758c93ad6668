// Package pipeline runs the steady-state capture → segment → composite →
// emit loop and owns the resources whose lifetime follows the
// active/paused state.
package pipeline

import (
	"context"
	"fmt"
	"log"
	"time"

	"gocv.io/x/gocv"

	"github.com/andreasreinhardt/Linux-Fake-Background-Webcam/config"
	"github.com/andreasreinhardt/Linux-Fake-Background-Webcam/internal/background"
	"github.com/andreasreinhardt/Linux-Fake-Background-Webcam/internal/camera"
	"github.com/andreasreinhardt/Linux-Fake-Background-Webcam/internal/compositing"
	"github.com/andreasreinhardt/Linux-Fake-Background-Webcam/internal/frame"
	"github.com/andreasreinhardt/Linux-Fake-Background-Webcam/internal/lifecycle"
	"github.com/andreasreinhardt/Linux-Fake-Background-Webcam/internal/mask"
	"github.com/andreasreinhardt/Linux-Fake-Background-Webcam/internal/segmentation"
	"github.com/andreasreinhardt/Linux-Fake-Background-Webcam/internal/sink"
	"github.com/andreasreinhardt/Linux-Fake-Background-Webcam/logger"
)

const (
	// reportInterval is how often throughput is measured and fed back
	// into the background source.
	reportInterval = time.Second
	// pausedInterval is the cadence of blank frames while paused.
	pausedInterval = time.Second
)

// Driver coordinates the pipeline. It is single-threaded: everything runs
// on the goroutine that calls Run, so no internal locking is needed. The
// only cross-goroutine input is the toggle channel fed by the signal
// handler.
type Driver struct {
	cfg      *config.Config
	seg      segmentation.Segmenter
	comp     *compositing.Compositor
	smoother *mask.Smoother
	machine  *lifecycle.Machine
	watcher  *lifecycle.Watcher
	stats    *logger.FrameLogger

	bg  background.Source
	cam *camera.RealCam
	out *sink.Loopback

	width  int
	height int

	live  gocv.Mat
	blank gocv.Mat

	currentFPS  float64
	frameCount  int
	windowStart time.Time

	toggle chan struct{}
}

// New opens the camera and the loopback device, loads the initial assets
// and prepares the lifecycle machinery. The camera is opened eagerly even
// in on-demand mode because the negotiated frame size is needed to
// configure the sink; the first paused iteration releases it again.
func New(cfg *config.Config, seg segmentation.Segmenter, stats *logger.FrameLogger) (*Driver, error) {
	cam, err := camera.Open(cfg.Camera.Path, cfg.Camera.Width, cfg.Camera.Height, cfg.Camera.FPS, cfg.Camera.Codec)
	if err != nil {
		return nil, err
	}

	// The device may renegotiate; its actual values win from here on.
	width, height := cam.Width(), cam.Height()
	if width == 0 || height == 0 {
		cam.Close()
		return nil, fmt.Errorf("camera dimensions error w=%d h=%d", width, height)
	}

	out, err := sink.Open(cfg.Output.LoopbackPath, width, height)
	if err != nil {
		cam.Close()
		return nil, err
	}

	d := &Driver{
		cfg: cfg,
		seg: seg,
		comp: compositing.New(compositing.Options{
			NoBackground: cfg.Effects.NoBackground,
			BlurRadius:   cfg.Effects.BackgroundBlur,
			Hologram:     cfg.Effects.Hologram,
		}),
		smoother: mask.NewSmoother(cfg.Alpha()),
		machine:  lifecycle.NewMachine(!cfg.Output.NoOnDemand),
		stats:    stats,
		cam:      cam,
		out:      out,
		width:    width,
		height:   height,
		live:     gocv.NewMat(),
		blank:    gocv.NewMat(),
		toggle:   make(chan struct{}, 1),
	}

	if d.machine.OnDemand() {
		watcher, err := lifecycle.NewWatcher(cfg.Output.WatchPath)
		if err != nil {
			d.cleanup()
			return nil, err
		}
		d.watcher = watcher
	}

	if err := d.loadAssets(); err != nil {
		d.cleanup()
		return nil, err
	}
	return d, nil
}

// RequestToggle asks the driver to flip between active and paused. Safe
// to call from the signal-handling goroutine; coalesces when the loop is
// behind.
func (d *Driver) RequestToggle() {
	select {
	case d.toggle <- struct{}{}:
	default:
	}
}

// Run executes the loop until the context is canceled or a fatal error
// occurs.
func (d *Driver) Run(ctx context.Context) error {
	defer d.cleanup()
	d.windowStart = time.Now()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-d.toggle:
			if err := d.handleToggle(); err != nil {
				return err
			}
		default:
		}

		if d.watcher != nil {
			if err := d.pollConsumers(); err != nil {
				return err
			}
		}

		if d.machine.State() == lifecycle.Active {
			if err := d.activeStep(); err != nil {
				return err
			}
		} else {
			if err := d.pausedStep(ctx); err != nil {
				return err
			}
		}
	}
}

func (d *Driver) handleToggle() error {
	if d.machine.Toggle() == lifecycle.Paused {
		log.Println("Paused.")
		return nil
	}
	log.Println("Resuming, reloading background / foreground images...")
	return d.loadAssets()
}

// pollConsumers drains device events and resolves the on-demand state.
func (d *Driver) pollConsumers() error {
	events, err := d.watcher.Poll()
	if err != nil {
		log.Printf("⚠️  Consumer watch error: %v", err)
		return nil
	}
	if len(events) == 0 {
		return nil
	}

	changed := d.machine.Apply(events)
	if d.machine.State() == lifecycle.Active {
		log.Printf("Consumers: %d", d.machine.Consumers())
		if changed {
			if err := d.loadAssets(); err != nil {
				return err
			}
		}
	} else if changed {
		log.Println("No consumers remaining, paused")
	}
	return nil
}

// activeStep processes one live frame. A capture that yields nothing is a
// transient condition: the iteration simply ends and the loop retries.
func (d *Driver) activeStep() error {
	if d.cam == nil {
		cam, err := camera.Open(d.cfg.Camera.Path, d.cfg.Camera.Width, d.cfg.Camera.Height,
			d.cfg.Camera.FPS, d.cfg.Camera.Codec)
		if err != nil {
			return err
		}
		d.cam = cam
	}
	if !d.cam.Read(&d.live) {
		return nil
	}

	fl := d.stats.StartFrame()

	segStart := time.Now()
	raw, err := d.seg.Segment(d.live)
	if err != nil {
		return err
	}
	fl.Printf("segment %.1fms", float64(time.Since(segStart).Microseconds())/1000)

	smoothed := d.smoother.Update(raw)

	var bgFrame gocv.Mat
	if d.bg != nil {
		if bgFrame, err = d.bg.Next(); err != nil {
			return err
		}
	}

	composeStart := time.Now()
	if err := d.comp.Compose(&d.live, smoothed, bgFrame); err != nil {
		return err
	}
	fl.Printf("compose %.1fms", float64(time.Since(composeStart).Microseconds())/1000)

	if err := d.out.Emit(d.live); err != nil {
		return err
	}
	fl.Commit()

	d.frameCount++
	if elapsed := time.Since(d.windowStart); elapsed > reportInterval {
		d.currentFPS = float64(d.frameCount) / elapsed.Seconds()
		if d.bg != nil {
			d.bg.SetRate(d.currentFPS)
		}
		log.Printf("FPS: %6.2f", d.currentFPS)
		d.frameCount = 0
		d.windowStart = time.Now()
	}
	return nil
}

// pausedStep keeps the output device alive with a blank frame at a slow
// cadence while the camera is released.
func (d *Driver) pausedStep(ctx context.Context) error {
	if d.cam != nil {
		// One last read so the blank frame matches the negotiated
		// size, then give the camera back to the system.
		if d.cam.Read(&d.live) {
			d.width, d.height = d.live.Cols(), d.live.Rows()
		}
		d.blank.Close()
		d.blank = frame.Blank(d.width, d.height)
		d.cam.Close()
		d.cam = nil
	}
	if d.blank.Empty() {
		d.blank = frame.Blank(d.width, d.height)
	}
	if err := d.out.Emit(d.blank); err != nil {
		return err
	}

	select {
	case <-ctx.Done():
	case <-time.After(pausedInterval):
	}
	return nil
}

// loadAssets (re)loads the background source and the foreground overlay.
// Called at startup and on every transition into Active, so a changed
// image on disk is picked up on resume. The mask state is reset alongside
// the background cursor.
func (d *Driver) loadAssets() error {
	if !d.cfg.Effects.NoBackground {
		path := config.FindFile(d.cfg.Images.BackgroundPattern, d.cfg.Images.Folder)
		if path == "" {
			return fmt.Errorf("no background matching %q under %q",
				d.cfg.Images.BackgroundPattern, d.cfg.Images.Folder)
		}
		src, err := background.Open(path, background.Options{
			Width:      d.width,
			Height:     d.height,
			KeepAspect: d.cfg.Effects.KeepAspect,
			Tile:       d.cfg.Effects.TileBackground,
		})
		if err != nil {
			return err
		}
		if d.bg != nil {
			d.bg.Close()
		}
		d.bg = src
	}

	if !d.cfg.Effects.NoForeground {
		fg := config.FindFile(d.cfg.Images.ForegroundPattern, d.cfg.Images.Folder)
		fgMask := config.FindFile(d.cfg.Images.ForegroundMaskPattern, d.cfg.Images.Folder)
		if fg != "" && fgMask != "" {
			overlay, err := compositing.LoadOverlay(fg, fgMask, d.width, d.height)
			if err != nil {
				return err
			}
			d.comp.SetOverlay(overlay)
		} else {
			d.comp.SetOverlay(nil)
		}
	}

	d.smoother.Reset()
	return nil
}

func (d *Driver) cleanup() {
	if d.cam != nil {
		d.cam.Close()
		d.cam = nil
	}
	if d.bg != nil {
		d.bg.Close()
		d.bg = nil
	}
	if d.watcher != nil {
		d.watcher.Close()
		d.watcher = nil
	}
	if d.out != nil {
		d.out.Close()
		d.out = nil
	}
	d.comp.Close()
	d.live.Close()
	d.blank.Close()
}
