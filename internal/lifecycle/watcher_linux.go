package lifecycle

import (
	"fmt"
	"unsafe"

	"golang.org/x/sys/unix"
)

// Watcher subscribes to open/close activity on the output device via
// inotify. Polls are non-blocking: each call drains whatever events have
// accumulated and returns immediately.
type Watcher struct {
	fd  int
	buf [4096]byte
}

// NewWatcher starts watching the given device path.
func NewWatcher(path string) (*Watcher, error) {
	fd, err := unix.InotifyInit1(unix.IN_NONBLOCK | unix.IN_CLOEXEC)
	if err != nil {
		return nil, fmt.Errorf("inotify init: %w", err)
	}
	flags := uint32(unix.IN_CREATE | unix.IN_OPEN | unix.IN_CLOSE_NOWRITE | unix.IN_CLOSE_WRITE)
	if _, err := unix.InotifyAddWatch(fd, path, flags); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("inotify watch %q: %w", path, err)
	}
	return &Watcher{fd: fd}, nil
}

// Poll drains pending events without blocking. An empty batch is normal
// and means no consumer activity since the last poll.
func (w *Watcher) Poll() ([]Event, error) {
	var events []Event
	for {
		n, err := unix.Read(w.fd, w.buf[:])
		if err != nil {
			if err == unix.EAGAIN {
				return events, nil
			}
			return events, fmt.Errorf("inotify read: %w", err)
		}
		if n <= 0 {
			return events, nil
		}
		for off := 0; off+unix.SizeofInotifyEvent <= n; {
			raw := (*unix.InotifyEvent)(unsafe.Pointer(&w.buf[off]))
			events = append(events, maskEvents(raw.Mask)...)
			off += unix.SizeofInotifyEvent + int(raw.Len)
		}
	}
}

// maskEvents expands an inotify mask into the events it carries.
func maskEvents(mask uint32) []Event {
	var events []Event
	if mask&unix.IN_OPEN != 0 {
		events = append(events, EventOpen)
	}
	if mask&unix.IN_CLOSE_NOWRITE != 0 {
		events = append(events, EventCloseNoWrite)
	}
	if mask&unix.IN_CLOSE_WRITE != 0 {
		events = append(events, EventCloseWrite)
	}
	if mask&unix.IN_CREATE != 0 {
		events = append(events, EventCreate)
	}
	return events
}

// Close releases the inotify descriptor.
func (w *Watcher) Close() error {
	return unix.Close(w.fd)
}
