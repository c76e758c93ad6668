package background

import (
	"gocv.io/x/gocv"
)

// static serves one precomputed frame forever.
type static struct {
	frame gocv.Mat
}

func newStatic(img gocv.Mat, opts Options) (Source, error) {
	s := &static{frame: gocv.NewMat()}

	if !opts.Tile {
		if err := resizeFrame(img, &s.frame, opts.Width, opts.Height, opts.KeepAspect); err != nil {
			s.frame.Close()
			return nil, err
		}
		return s, nil
	}

	// Tiling: an image already larger than the target in both axes is
	// simply scaled down; otherwise it is replicated and cropped.
	if img.Cols() > opts.Width && img.Rows() > opts.Height {
		if err := resizeFrame(img, &s.frame, opts.Width, opts.Height, false); err != nil {
			s.frame.Close()
			return nil, err
		}
		return s, nil
	}
	s.frame.Close()
	s.frame = tileFrame(img, opts.Width, opts.Height)
	return s, nil
}

func (s *static) Next() (gocv.Mat, error) { return s.frame, nil }

func (s *static) SetRate(float64) {}

func (s *static) Close() error { return s.frame.Close() }
