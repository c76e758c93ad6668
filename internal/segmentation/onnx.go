package segmentation

import (
	"fmt"
	"image"

	ort "github.com/yalue/onnxruntime_go"
	"gocv.io/x/gocv"

	"github.com/andreasreinhardt/Linux-Fake-Background-Webcam/internal/frame"
)

// onnxSegmenter runs a selfie-segmentation model through ONNX Runtime
// with persistent input/output tensors, so the per-frame cost is one
// preprocessing pass and one session run.
type onnxSegmenter struct {
	opts Options

	session      *ort.AdvancedSession
	inputTensor  *ort.Tensor[float32]
	outputTensor *ort.Tensor[float32]

	resized gocv.Mat
	rgb     gocv.Mat
	maskMat gocv.Mat
	scaled  gocv.Mat
	mask    *frame.Mask
}

// NewONNX loads the segmentation model and prepares a reusable session.
func NewONNX(opts Options) (Segmenter, error) {
	opts.applyDefaults()

	if opts.LibraryPath != "" {
		ort.SetSharedLibraryPath(opts.LibraryPath)
	}
	// Might already be initialized by another component, that's OK.
	_ = ort.InitializeEnvironment()

	w, h := opts.InputWidth, opts.InputHeight

	inputTensor, err := ort.NewTensor([]int64{1, int64(h), int64(w), 3}, make([]float32, h*w*3))
	if err != nil {
		return nil, fmt.Errorf("failed to create input tensor: %w", err)
	}
	outputTensor, err := ort.NewTensor([]int64{1, int64(h), int64(w), 1}, make([]float32, h*w))
	if err != nil {
		inputTensor.Destroy()
		return nil, fmt.Errorf("failed to create output tensor: %w", err)
	}

	sessionOptions, err := ort.NewSessionOptions()
	if err != nil {
		inputTensor.Destroy()
		outputTensor.Destroy()
		return nil, fmt.Errorf("failed to create session options: %w", err)
	}
	defer sessionOptions.Destroy()

	if opts.UseCUDA {
		cudaOptions, err := ort.NewCUDAProviderOptions()
		if err == nil {
			defer cudaOptions.Destroy()
			if err := cudaOptions.Update(map[string]string{"device_id": "0"}); err == nil {
				_ = sessionOptions.AppendExecutionProviderCUDA(cudaOptions)
			}
		}
	}

	session, err := ort.NewAdvancedSession(
		opts.ModelPath,
		[]string{opts.InputName},
		[]string{opts.OutputName},
		[]ort.Value{inputTensor},
		[]ort.Value{outputTensor},
		sessionOptions,
	)
	if err != nil {
		inputTensor.Destroy()
		outputTensor.Destroy()
		return nil, fmt.Errorf("failed to create ONNX session for %q: %w", opts.ModelPath, err)
	}

	return &onnxSegmenter{
		opts:         opts,
		session:      session,
		inputTensor:  inputTensor,
		outputTensor: outputTensor,
		resized:      gocv.NewMat(),
		rgb:          gocv.NewMat(),
		maskMat:      gocv.NewMatWithSize(h, w, gocv.MatTypeCV32F),
		scaled:       gocv.NewMat(),
	}, nil
}

// Segment resizes the frame to the model's input geometry, normalizes to
// [0, 1] RGB, runs the model and scales the mask back up to frame size.
func (s *onnxSegmenter) Segment(img gocv.Mat) (*frame.Mask, error) {
	gocv.Resize(img, &s.resized, image.Pt(s.opts.InputWidth, s.opts.InputHeight), 0, 0, gocv.InterpolationLinear)
	gocv.CvtColor(s.resized, &s.rgb, gocv.ColorBGRToRGB)

	pix, err := frame.Pixels(s.rgb)
	if err != nil {
		return nil, err
	}
	in := s.inputTensor.GetData()
	for i, b := range pix {
		in[i] = float32(b) / 255
	}

	if err := s.session.Run(); err != nil {
		return nil, fmt.Errorf("segmentation inference failed: %w", err)
	}

	low, err := s.maskMat.DataPtrFloat32()
	if err != nil {
		return nil, fmt.Errorf("mask buffer not addressable: %w", err)
	}
	copy(low, s.outputTensor.GetData())

	gocv.Resize(s.maskMat, &s.scaled, image.Pt(img.Cols(), img.Rows()), 0, 0, gocv.InterpolationLinear)
	vals, err := s.scaled.DataPtrFloat32()
	if err != nil {
		return nil, fmt.Errorf("scaled mask not addressable: %w", err)
	}

	if s.mask == nil || s.mask.Width != img.Cols() || s.mask.Height != img.Rows() {
		s.mask = frame.NewMask(img.Cols(), img.Rows())
	}
	for i, v := range vals {
		s.mask.Data[i] = float64(v)
	}
	return s.mask, nil
}

// Close releases the session, tensors and scratch buffers.
func (s *onnxSegmenter) Close() error {
	if s.session != nil {
		s.session.Destroy()
	}
	if s.inputTensor != nil {
		s.inputTensor.Destroy()
	}
	if s.outputTensor != nil {
		s.outputTensor.Destroy()
	}
	s.resized.Close()
	s.rgb.Close()
	s.maskMat.Close()
	s.scaled.Close()
	return nil
}
