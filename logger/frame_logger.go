// Package logger provides buffered, sampled logging for the per-frame
// hot path. Stage timings are interesting but a 30 fps loop cannot
// afford a synchronous log write per frame, so entries accumulate in
// memory and flush asynchronously, and only a sample of frames is
// logged at all.
package logger

import (
	"bytes"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"
)

// FrameLogger accumulates per-frame log entries and flushes them in the
// background.
type FrameLogger struct {
	buffer     bytes.Buffer
	mu         sync.Mutex
	autoFlush  bool
	flushChan  chan struct{}
	stopChan   chan struct{}
	enabled    atomic.Bool
	frameNum   atomic.Uint64
	sampleRate int // 0 = log every frame, N = log 1 in N
}

// NewFrameLogger creates a frame logger. With autoFlush a background
// goroutine drains the buffer periodically; otherwise the caller flushes.
func NewFrameLogger(autoFlush bool, sampleRate int) *FrameLogger {
	fl := &FrameLogger{
		autoFlush:  autoFlush,
		flushChan:  make(chan struct{}, 100),
		stopChan:   make(chan struct{}),
		sampleRate: sampleRate,
	}
	fl.enabled.Store(true)

	if autoFlush {
		go fl.flusher()
	}
	return fl
}

// FrameLog is the logging context of a single pipeline iteration.
type FrameLog struct {
	parent   *FrameLogger
	buffer   bytes.Buffer
	frameNum uint64
}

// StartFrame begins a per-frame logging context. Returns nil when this
// frame is not sampled; all FrameLog methods are nil-safe so the hot
// path never branches on it.
func (fl *FrameLogger) StartFrame() *FrameLog {
	if fl == nil || !fl.enabled.Load() {
		return nil
	}
	frameNum := fl.frameNum.Add(1)
	if fl.sampleRate != 0 && frameNum%uint64(fl.sampleRate) != 0 {
		return nil
	}
	return &FrameLog{parent: fl, frameNum: frameNum}
}

// Printf records a formatted entry against this frame.
func (l *FrameLog) Printf(format string, args ...interface{}) {
	if l == nil {
		return
	}
	timestamp := time.Now().Format("2006/01/02 15:04:05")
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintf(&l.buffer, "[%s] [frame %d] %s\n", timestamp, l.frameNum, msg)
}

// Commit hands the frame's entries to the parent buffer. Call after the
// frame has been emitted to the sink.
func (l *FrameLog) Commit() {
	if l == nil || l.buffer.Len() == 0 {
		return
	}
	l.parent.mu.Lock()
	l.parent.buffer.Write(l.buffer.Bytes())
	l.parent.mu.Unlock()

	if l.parent.autoFlush {
		select {
		case l.parent.flushChan <- struct{}{}:
		default:
			// Channel full, the periodic flush will pick it up.
		}
	}
}

// Flush writes all buffered entries to the standard logger.
func (fl *FrameLogger) Flush() {
	fl.mu.Lock()
	defer fl.mu.Unlock()
	if fl.buffer.Len() > 0 {
		log.Print(fl.buffer.String())
		fl.buffer.Reset()
	}
}

func (fl *FrameLogger) flusher() {
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-fl.flushChan:
			fl.Flush()
		case <-ticker.C:
			fl.Flush()
		case <-fl.stopChan:
			fl.Flush()
			return
		}
	}
}

// Stop terminates the background flusher after a final flush.
func (fl *FrameLogger) Stop() {
	if fl == nil {
		return
	}
	close(fl.stopChan)
}

// SetEnabled toggles logging without tearing the logger down.
func (fl *FrameLogger) SetEnabled(enabled bool) {
	fl.enabled.Store(enabled)
}

// Frames returns how many frames have passed through StartFrame.
func (fl *FrameLogger) Frames() uint64 {
	return fl.frameNum.Load()
}
