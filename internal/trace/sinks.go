package trace

import (
	"errors"
	"io"
	"sync"
)

type nopTracer struct{}

func (nopTracer) Emit(*Event)   {}
func (nopTracer) Flush() error  { return nil }
func (nopTracer) Close() error  { return nil }
func (nopTracer) Level() Level  { return LevelOff }
func (nopTracer) Enabled() bool { return false }

// Nop discards everything.
var Nop Tracer = nopTracer{}

func admits(level Level, ev *Event) bool {
	return ev.Kind == KindHeartbeat || level.ShouldEmit(ev.Scope)
}

// chromeWriter frames Chrome trace events as one JSON object.
type chromeWriter struct {
	w     io.Writer
	count int
}

func (c *chromeWriter) open() error {
	_, err := io.WriteString(c.w, "{\"traceEvents\":[\n")
	return err
}

func (c *chromeWriter) write(ev *Event) error {
	if c.count > 0 {
		if _, err := io.WriteString(c.w, ",\n"); err != nil {
			return err
		}
	}
	c.count++
	_, err := c.w.Write(formatChrome(ev))
	return err
}

func (c *chromeWriter) close() error {
	_, err := io.WriteString(c.w, "\n]}\n")
	return err
}

// StreamTracer writes every admitted event as soon as it arrives.
type StreamTracer struct {
	mu     sync.Mutex
	w      io.Writer
	level  Level
	format Format
	chrome *chromeWriter
	closed bool
}

// NewStreamTracer writes events to w in format; FormatAuto means text.
func NewStreamTracer(w io.Writer, level Level, format Format) *StreamTracer {
	t := &StreamTracer{w: w, level: level, format: format}
	if format == FormatChrome {
		t.chrome = &chromeWriter{w: w}
		_ = t.chrome.open() //nolint:errcheck
	}
	return t
}

func (t *StreamTracer) Emit(ev *Event) {
	if !admits(t.level, ev) {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return
	}
	ev.Seq = NextSeq()
	// трассировка не должна ронять форматирование
	if t.chrome != nil {
		_ = t.chrome.write(ev) //nolint:errcheck
		return
	}
	_, _ = t.w.Write(FormatEvent(ev, t.format)) //nolint:errcheck
}

func (t *StreamTracer) Flush() error {
	if f, ok := t.w.(interface{ Flush() error }); ok {
		return f.Flush()
	}
	return nil
}

// Close finishes a Chrome document and closes the writer when it is a file.
func (t *StreamTracer) Close() error {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return nil
	}
	t.closed = true
	var errs []error
	if t.chrome != nil {
		errs = append(errs, t.chrome.close())
	}
	t.mu.Unlock()

	errs = append(errs, t.Flush())
	if c, ok := t.w.(io.Closer); ok && !isStdStream(t.w) {
		errs = append(errs, c.Close())
	}
	return errors.Join(errs...)
}

func (t *StreamTracer) Level() Level  { return t.level }
func (t *StreamTracer) Enabled() bool { return t.level > LevelOff }

// RingTracer keeps the last capacity events in memory and writes them out
// on demand, typically when a run fails or is interrupted.
type RingTracer struct {
	mu     sync.Mutex
	events []Event
	next   int
	filled bool
	level  Level
}

// NewRingTracer keeps up to capacity events (4096 when capacity <= 0).
func NewRingTracer(capacity int, level Level) *RingTracer {
	if capacity <= 0 {
		capacity = 4096
	}
	return &RingTracer{events: make([]Event, capacity), level: level}
}

func (t *RingTracer) Emit(ev *Event) {
	if !admits(t.level, ev) {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	stored := *ev
	stored.Seq = NextSeq()
	t.events[t.next] = stored
	t.next++
	if t.next == len(t.events) {
		t.next = 0
		t.filled = true
	}
}

// Snapshot returns the stored events oldest first.
func (t *RingTracer) Snapshot() []Event {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.filled {
		return append([]Event(nil), t.events[:t.next]...)
	}
	out := make([]Event, 0, len(t.events))
	out = append(out, t.events[t.next:]...)
	return append(out, t.events[:t.next]...)
}

// Dump writes the snapshot in format. Chrome output is a complete document.
func (t *RingTracer) Dump(w io.Writer, format Format) error {
	events := t.Snapshot()
	if format == FormatChrome {
		cw := &chromeWriter{w: w}
		if err := cw.open(); err != nil {
			return err
		}
		for i := range events {
			if err := cw.write(&events[i]); err != nil {
				return err
			}
		}
		return cw.close()
	}
	for i := range events {
		if _, err := w.Write(FormatEvent(&events[i], format)); err != nil {
			return err
		}
	}
	return nil
}

func (t *RingTracer) Flush() error  { return nil }
func (t *RingTracer) Close() error  { return nil }
func (t *RingTracer) Level() Level  { return t.level }
func (t *RingTracer) Enabled() bool { return t.level > LevelOff }

// MultiTracer fans events out to several tracers.
type MultiTracer struct {
	tracers []Tracer
	level   Level
}

func NewMultiTracer(level Level, tracers ...Tracer) *MultiTracer {
	return &MultiTracer{tracers: tracers, level: level}
}

// Emit hands each tracer its own copy: sinks stamp Seq on the event.
func (t *MultiTracer) Emit(ev *Event) {
	for _, tr := range t.tracers {
		cp := *ev
		tr.Emit(&cp)
	}
}

func (t *MultiTracer) Flush() error {
	var errs []error
	for _, tr := range t.tracers {
		errs = append(errs, tr.Flush())
	}
	return errors.Join(errs...)
}

func (t *MultiTracer) Close() error {
	var errs []error
	for _, tr := range t.tracers {
		errs = append(errs, tr.Close())
	}
	return errors.Join(errs...)
}

func (t *MultiTracer) Level() Level  { return t.level }
func (t *MultiTracer) Enabled() bool { return t.level > LevelOff }
