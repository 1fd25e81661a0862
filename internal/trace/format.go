package trace

import (
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"strings"
)

// Format is the serialization of trace events.
type Format uint8

const (
	FormatAuto   Format = iota // by output file extension
	FormatText                 // one line per event
	FormatNDJSON               // one JSON object per line
	FormatChrome               // chrome://tracing / Perfetto
)

// ParseFormat parses --trace-format.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "", "auto":
		return FormatAuto, nil
	case "text":
		return FormatText, nil
	case "ndjson":
		return FormatNDJSON, nil
	case "chrome":
		return FormatChrome, nil
	}
	return FormatAuto, fmt.Errorf("invalid trace format: %q (expected: auto|text|ndjson|chrome)", s)
}

// FormatEvent serializes one event. Chrome output is a single array element
// without separators.
func FormatEvent(ev *Event, format Format) []byte {
	switch format {
	case FormatNDJSON:
		return formatNDJSON(ev)
	case FormatChrome:
		return formatChrome(ev)
	default:
		return formatText(ev)
	}
}

type ndjsonEvent struct {
	Time     string            `json:"time"`
	Seq      uint64            `json:"seq"`
	Kind     string            `json:"kind"`
	Scope    string            `json:"scope"`
	SpanID   uint64            `json:"span_id,omitempty"`
	ParentID uint64            `json:"parent_id,omitempty"`
	GID      uint64            `json:"gid,omitempty"`
	File     string            `json:"file,omitempty"`
	Name     string            `json:"name"`
	Detail   string            `json:"detail,omitempty"`
	Extra    map[string]string `json:"extra,omitempty"`
}

func formatNDJSON(ev *Event) []byte {
	data, _ := json.Marshal(ndjsonEvent{ //nolint:errcheck
		Time:     ev.Time.Format("2006-01-02T15:04:05.000000Z07:00"),
		Seq:      ev.Seq,
		Kind:     ev.Kind.String(),
		Scope:    ev.Scope.String(),
		SpanID:   ev.SpanID,
		ParentID: ev.ParentID,
		GID:      ev.GID,
		File:     ev.File,
		Name:     ev.Name,
		Detail:   ev.Detail,
		Extra:    ev.Extra,
	})
	return append(data, '\n')
}

type chromeEvent struct {
	Name  string            `json:"name"`
	Cat   string            `json:"cat"`
	Phase string            `json:"ph"`
	TS    int64             `json:"ts"`
	PID   int               `json:"pid"`
	TID   uint64            `json:"tid"`
	Scope string            `json:"s,omitempty"`
	Args  map[string]string `json:"args,omitempty"`
}

func formatChrome(ev *Event) []byte {
	c := chromeEvent{
		Name: ev.Name,
		Cat:  ev.Scope.String(),
		TS:   ev.Time.UnixMicro(),
		PID:  1,
		TID:  ev.GID,
	}
	switch ev.Kind {
	case KindSpanBegin:
		c.Phase = "B"
	case KindSpanEnd:
		c.Phase = "E"
	default:
		c.Phase = "i"
		c.Scope = "t"
	}
	if len(ev.Extra) > 0 || ev.Detail != "" || (ev.File != "" && ev.File != ev.Name) {
		c.Args = make(map[string]string, len(ev.Extra)+2)
		maps.Copy(c.Args, ev.Extra)
		if ev.Detail != "" {
			c.Args["detail"] = ev.Detail
		}
		if ev.File != "" && ev.File != ev.Name {
			c.Args["file"] = ev.File
		}
	}
	data, _ := json.Marshal(c) //nolint:errcheck
	return data
}

// formatText renders "15:04:05.000000 →   parse [lib/a.rb] (detail) {k=v}".
// Nested spans are indented by scope.
func formatText(ev *Event) []byte {
	var sb strings.Builder
	sb.WriteString(ev.Time.Format("15:04:05.000000"))
	sb.WriteByte(' ')
	switch ev.Kind {
	case KindSpanBegin:
		sb.WriteString("→ ")
	case KindSpanEnd:
		sb.WriteString("← ")
	case KindHeartbeat:
		sb.WriteString("♡ ")
	default:
		sb.WriteString("• ")
	}
	if ev.Scope > ScopeDriver {
		sb.WriteString(strings.Repeat("  ", int(ev.Scope-ScopeDriver)))
	}
	sb.WriteString(ev.Name)
	if ev.File != "" && ev.File != ev.Name {
		fmt.Fprintf(&sb, " [%s]", ev.File)
	}
	if ev.Detail != "" {
		fmt.Fprintf(&sb, " (%s)", ev.Detail)
	}
	if len(ev.Extra) > 0 {
		sb.WriteString(" {")
		for i, k := range slices.Sorted(maps.Keys(ev.Extra)) {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(k + "=" + ev.Extra[k])
		}
		sb.WriteString("}")
	}
	sb.WriteByte('\n')
	return []byte(sb.String())
}
