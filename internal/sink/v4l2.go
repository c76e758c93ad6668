//go:build linux

package sink

import (
	"unsafe"

	"golang.org/x/sys/unix"
)

// Minimal slice of the V4L2 uapi needed to program a v4l2loopback output
// device for raw RGB24 frames.

const (
	v4l2BufTypeVideoOutput = 2
	v4l2FieldNone          = 1
	v4l2ColorspaceSRGB     = 8

	// 'RGB3': 24-bit RGB, the byte order the sink contract requires.
	v4l2PixFmtRGB24 = uint32('R') | uint32('G')<<8 | uint32('B')<<16 | uint32('3')<<24
)

// v4l2PixFormat mirrors struct v4l2_pix_format.
type v4l2PixFormat struct {
	Width        uint32
	Height       uint32
	PixelFormat  uint32
	Field        uint32
	BytesPerLine uint32
	SizeImage    uint32
	Colorspace   uint32
	Priv         uint32
	Flags        uint32
	YcbcrEnc     uint32
	Quantization uint32
	XferFunc     uint32
}

// v4l2Format mirrors struct v4l2_format. The fmt union holds pointers in
// some of its arms, so on 64-bit kernels it is aligned to 8 bytes; the
// explicit pad reproduces that layout.
type v4l2Format struct {
	typ uint32
	_   uint32
	fmt [200]byte
}

func (f *v4l2Format) pix() *v4l2PixFormat {
	return (*v4l2PixFormat)(unsafe.Pointer(&f.fmt[0]))
}

func ioctlRW(nr uintptr) uintptr {
	const (
		iocWrite = 1
		iocRead  = 2
		typeV    = 'V'
	)
	return (iocRead|iocWrite)<<30 | unsafe.Sizeof(v4l2Format{})<<16 | typeV<<8 | nr
}

func vidiocGetFormat(fd uintptr, f *v4l2Format) error {
	return ioctl(fd, ioctlRW(4), unsafe.Pointer(f))
}

func vidiocSetFormat(fd uintptr, f *v4l2Format) error {
	return ioctl(fd, ioctlRW(5), unsafe.Pointer(f))
}

func ioctl(fd, req uintptr, arg unsafe.Pointer) error {
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, fd, req, uintptr(arg))
	if errno != 0 {
		return errno
	}
	return nil
}
