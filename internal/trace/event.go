package trace

import "time"

// Kind is what happened.
type Kind uint8

const (
	KindSpanBegin Kind = iota + 1
	KindSpanEnd
	KindPoint
	// KindHeartbeat is the periodic liveness signal; sinks keep it at any
	// level so a hang still leaves a mark.
	KindHeartbeat
)

var kindNames = [...]string{
	KindSpanBegin: "begin",
	KindSpanEnd:   "end",
	KindPoint:     "point",
	KindHeartbeat: "heartbeat",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) && kindNames[k] != "" {
		return kindNames[k]
	}
	return "unknown"
}

// Scope is the granularity of an event. Smaller values are coarser.
type Scope uint8

const (
	// ScopeDriver covers one CLI run: path walking, config loading.
	ScopeDriver Scope = iota + 1
	// ScopeFile covers one Ruby file: read, format, write back.
	ScopeFile
	// ScopePhase covers pipeline phases inside a file (parse, meaning,
	// trivia, lower, print, verify).
	ScopePhase
	// ScopeNode covers single meaning nodes.
	ScopeNode
)

var scopeNames = [...]string{
	ScopeDriver: "driver",
	ScopeFile:   "file",
	ScopePhase:  "phase",
	ScopeNode:   "node",
}

func (s Scope) String() string {
	if int(s) < len(scopeNames) && scopeNames[s] != "" {
		return scopeNames[s]
	}
	return "unknown"
}

// Event is one trace record.
type Event struct {
	Time     time.Time
	Seq      uint64 // assigned by the sink that stores the event
	Kind     Kind
	Scope    Scope
	SpanID   uint64
	ParentID uint64 // 0 for roots
	GID      uint64
	// File is the Ruby file the span works on, inherited by nested spans.
	File   string
	Name   string // "parse", "print", "verify", a path for file spans
	Detail string
	Extra  map[string]string
}
