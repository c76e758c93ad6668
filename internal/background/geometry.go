package background

import (
	"fmt"
	"image"
	"math"

	"gocv.io/x/gocv"
)

// aspectCrop returns the centered crop of an imgW×imgH image that, once
// resized to targetW×targetH, preserves the pixel aspect ratio. Both the
// crop size and offset round down.
func aspectCrop(imgW, imgH, targetW, targetH int) image.Rectangle {
	scale := math.Max(float64(targetW)/float64(imgW), float64(targetH)/float64(imgH))
	cropW := int(math.Floor(float64(targetW) / scale))
	cropH := int(math.Floor(float64(targetH) / scale))
	x0 := int(math.Floor(0.5*float64(imgW) - 0.5*float64(cropW)))
	y0 := int(math.Floor(0.5*float64(imgH) - 0.5*float64(cropH)))
	return image.Rect(x0, y0, x0+cropW, y0+cropH)
}

// tileReps returns how many horizontal and vertical repetitions of an
// imgW×imgH image are needed to cover a targetW×targetH frame.
func tileReps(imgW, imgH, targetW, targetH int) (repX, repY int) {
	return (targetW-1)/imgW + 1, (targetH-1)/imgH + 1
}

// resizeFrame scales src into dst at width×height. With keepAspect the
// source is center-cropped first so its pixels keep their aspect ratio.
func resizeFrame(src gocv.Mat, dst *gocv.Mat, width, height int, keepAspect bool) error {
	if width == 0 || height == 0 {
		return fmt.Errorf("camera dimensions error w=%d h=%d", width, height)
	}
	if keepAspect {
		region := src.Region(aspectCrop(src.Cols(), src.Rows(), width, height))
		defer region.Close()
		gocv.Resize(region, dst, image.Pt(width, height), 0, 0, gocv.InterpolationLinear)
		return nil
	}
	gocv.Resize(src, dst, image.Pt(width, height), 0, 0, gocv.InterpolationLinear)
	return nil
}

// tileFrame replicates src until it covers width×height and crops to the
// exact target size.
func tileFrame(src gocv.Mat, width, height int) gocv.Mat {
	srcW, srcH := src.Cols(), src.Rows()
	repX, repY := tileReps(srcW, srcH, width, height)

	sheet := gocv.NewMatWithSize(repY*srcH, repX*srcW, gocv.MatTypeCV8UC3)
	defer sheet.Close()
	for y := 0; y < repY; y++ {
		for x := 0; x < repX; x++ {
			cell := sheet.Region(image.Rect(x*srcW, y*srcH, (x+1)*srcW, (y+1)*srcH))
			src.CopyTo(&cell)
			cell.Close()
		}
	}

	cropped := sheet.Region(image.Rect(0, 0, width, height))
	defer cropped.Close()
	return cropped.Clone()
}
