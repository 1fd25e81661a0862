package trace

import (
	"context"
	"runtime"
	"strconv"
	"strings"
	"sync/atomic"
	"time"
)

var (
	seqCounter  atomic.Uint64
	spanCounter atomic.Uint64
)

// NextSeq returns the next global sequence number.
func NextSeq() uint64 { return seqCounter.Add(1) }

// NextSpanID returns a fresh span ID.
func NextSpanID() uint64 { return spanCounter.Add(1) }

// goroutineID parses the "goroutine N [" header of the current stack.
// Chrome traces use it as the thread lane, so parallel files line up per
// worker.
func goroutineID() uint64 {
	var buf [64]byte
	header := string(buf[:runtime.Stack(buf[:], false)])
	header, ok := strings.CutPrefix(header, "goroutine ")
	if !ok {
		return 0
	}
	num, _, ok := strings.Cut(header, " ")
	if !ok {
		return 0
	}
	gid, err := strconv.ParseUint(num, 10, 64)
	if err != nil {
		return 0
	}
	return gid
}

type tracerKey struct{}
type spanKey struct{}

// WithTracer attaches t to ctx; nil means Nop.
func WithTracer(ctx context.Context, t Tracer) context.Context {
	if t == nil {
		t = Nop
	}
	return context.WithValue(ctx, tracerKey{}, t)
}

// FromContext returns the tracer attached to ctx, or Nop.
func FromContext(ctx context.Context) Tracer {
	if ctx != nil {
		if t, ok := ctx.Value(tracerKey{}).(Tracer); ok {
			return t
		}
	}
	return Nop
}

// SpanContext is the active span carried through ctx.
type SpanContext struct {
	SpanID uint64
	GID    uint64
	File   string
}

// CurrentSpan returns the active span of ctx, zero when there is none.
func CurrentSpan(ctx context.Context) SpanContext {
	if ctx != nil {
		if sc, ok := ctx.Value(spanKey{}).(SpanContext); ok {
			return sc
		}
	}
	return SpanContext{}
}

// WithSpanContext makes sc the active span of the returned context.
func WithSpanContext(ctx context.Context, sc SpanContext) context.Context {
	if ctx == nil {
		return nil
	}
	return context.WithValue(ctx, spanKey{}, sc)
}

// Span is an open interval of work. A disabled span is still safe to use.
type Span struct {
	tracer   Tracer
	id       uint64
	parentID uint64
	gid      uint64
	scope    Scope
	file     string
	name     string
	started  time.Time
	extra    map[string]string
}

// Begin opens a span under parent (0 for a root) and emits its begin event.
func Begin(t Tracer, scope Scope, name string, parent uint64) *Span {
	return begin(t, scope, name, parent, "")
}

func begin(t Tracer, scope Scope, name string, parent uint64, file string) *Span {
	if t == nil || !t.Enabled() || !t.Level().ShouldEmit(scope) {
		return &Span{tracer: Nop, file: file}
	}
	s := &Span{
		tracer:   t,
		id:       NextSpanID(),
		parentID: parent,
		gid:      goroutineID(),
		scope:    scope,
		file:     file,
		name:     name,
		started:  time.Now(),
	}
	t.Emit(s.event(KindSpanBegin, s.started, ""))
	return s
}

// Start opens a span under the active span of ctx and returns a context in
// which the new span is active. The file of the parent span carries over.
func Start(ctx context.Context, scope Scope, name string) (context.Context, *Span) {
	parent := CurrentSpan(ctx)
	s := begin(FromContext(ctx), scope, name, parent.SpanID, parent.File)
	return s.attach(ctx), s
}

// StartFile opens a ScopeFile span for one Ruby file; spans started from the
// returned context are tagged with path.
func StartFile(ctx context.Context, path string) (context.Context, *Span) {
	s := begin(FromContext(ctx), ScopeFile, path, CurrentSpan(ctx).SpanID, path)
	return s.attach(ctx), s
}

func (s *Span) attach(ctx context.Context) context.Context {
	if s.id == 0 && s.file == CurrentSpan(ctx).File {
		return ctx
	}
	return WithSpanContext(ctx, SpanContext{SpanID: s.id, GID: s.gid, File: s.file})
}

func (s *Span) event(kind Kind, at time.Time, detail string) *Event {
	ev := &Event{
		Time:     at,
		Kind:     kind,
		Scope:    s.scope,
		SpanID:   s.id,
		ParentID: s.parentID,
		GID:      s.gid,
		File:     s.file,
		Name:     s.name,
		Detail:   detail,
	}
	if kind == KindSpanEnd {
		ev.Extra = s.extra
	}
	return ev
}

// End emits the end event and returns the span duration.
func (s *Span) End(detail string) time.Duration {
	if s == nil || s.tracer == nil || !s.tracer.Enabled() {
		return 0
	}
	now := time.Now()
	s.tracer.Emit(s.event(KindSpanEnd, now, detail))
	return now.Sub(s.started)
}

// WithExtra adds a key-value pair to the end event.
func (s *Span) WithExtra(key, value string) *Span {
	if s == nil || s.tracer == nil || !s.tracer.Enabled() {
		return s
	}
	if s.extra == nil {
		s.extra = make(map[string]string)
	}
	s.extra[key] = value
	return s
}

// ID returns the span ID, 0 for a disabled span.
func (s *Span) ID() uint64 {
	if s == nil {
		return 0
	}
	return s.id
}
