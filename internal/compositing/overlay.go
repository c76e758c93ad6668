package compositing

import (
	"fmt"
	"image"

	"gocv.io/x/gocv"
	"gonum.org/v1/gonum/floats"
)

// Overlay holds the foreground image drawn over every composited frame,
// together with its blend mask and the mask's pointwise complement.
// Immutable once loaded; the pipeline reloads a fresh set on start and on
// pause/resume transitions.
type Overlay struct {
	Image    gocv.Mat
	Mask     []float64
	Inverted []float64
}

// LoadOverlay reads the foreground image and its mask image, fits both to
// width×height and normalizes the mask to a [0, 1] single-channel plane.
func LoadOverlay(imagePath, maskPath string, width, height int) (*Overlay, error) {
	img := gocv.IMRead(imagePath, gocv.IMReadColor)
	if img.Empty() {
		img.Close()
		return nil, fmt.Errorf("cannot read foreground image %q", imagePath)
	}
	defer img.Close()

	fitted := gocv.NewMat()
	gocv.Resize(img, &fitted, image.Pt(width, height), 0, 0, gocv.InterpolationLinear)

	maskVals, err := loadOverlayMask(maskPath, width, height)
	if err != nil {
		fitted.Close()
		return nil, err
	}

	inverted := make([]float64, len(maskVals))
	copy(inverted, maskVals)
	floats.Scale(-1, inverted)
	floats.AddConst(1, inverted)

	return &Overlay{Image: fitted, Mask: maskVals, Inverted: inverted}, nil
}

// loadOverlayMask reads the mask image, min-max normalizes it to [0, 1],
// fits it to the frame size and collapses it to a single gray channel.
func loadOverlayMask(path string, width, height int) ([]float64, error) {
	raw := gocv.IMRead(path, gocv.IMReadColor)
	if raw.Empty() {
		raw.Close()
		return nil, fmt.Errorf("cannot read foreground mask image %q", path)
	}
	defer raw.Close()

	norm := gocv.NewMat()
	defer norm.Close()
	raw.ConvertTo(&norm, gocv.MatTypeCV32FC3)
	gocv.Normalize(norm, &norm, 0, 1, gocv.NormMinMax)

	fitted := gocv.NewMat()
	defer fitted.Close()
	gocv.Resize(norm, &fitted, image.Pt(width, height), 0, 0, gocv.InterpolationLinear)

	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(fitted, &gray, gocv.ColorBGRToGray)

	vals, err := gray.DataPtrFloat32()
	if err != nil {
		return nil, fmt.Errorf("overlay mask data not addressable: %w", err)
	}
	out := make([]float64, len(vals))
	for i, v := range vals {
		out[i] = float64(v)
	}
	return out, nil
}

// Close releases the overlay image.
func (o *Overlay) Close() error {
	return o.Image.Close()
}
