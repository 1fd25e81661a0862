package trace

import (
	"runtime"
	"strconv"
	"sync"
	"time"
)

// Heartbeat emits a liveness event every interval. Heartbeats that keep
// coming without file spans ending point at a file stuck in the printer.
type Heartbeat struct {
	tracer Tracer
	stop   chan struct{}
	done   chan struct{}
	once   sync.Once
}

// StartHeartbeat returns nil when tracing is off or interval is not positive.
func StartHeartbeat(tracer Tracer, interval time.Duration) *Heartbeat {
	if tracer == nil || !tracer.Enabled() || interval <= 0 {
		return nil
	}
	h := &Heartbeat{
		tracer: tracer,
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}
	go h.run(interval)
	return h
}

func (h *Heartbeat) run(interval time.Duration) {
	defer close(h.done)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	gid := goroutineID()
	for beat := 1; ; beat++ {
		select {
		case now := <-ticker.C:
			h.tracer.Emit(&Event{
				Time:   now,
				Kind:   KindHeartbeat,
				Scope:  ScopeDriver,
				GID:    gid,
				Name:   "heartbeat",
				Detail: "#" + strconv.Itoa(beat),
				Extra:  map[string]string{"goroutines": strconv.Itoa(runtime.NumGoroutine())},
			})
		case <-h.stop:
			return
		}
	}
}

// Stop ends the heartbeat and waits for the goroutine. Safe on nil and
// safe to call twice.
func (h *Heartbeat) Stop() {
	if h == nil {
		return
	}
	h.once.Do(func() { close(h.stop) })
	<-h.done
}
