package trace

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestLevelShouldEmit(t *testing.T) {
	cases := []struct {
		level Level
		scope Scope
		want  bool
	}{
		{LevelOff, ScopeDriver, false},
		{LevelPhase, ScopeFile, true},
		{LevelPhase, ScopePhase, false},
		{LevelDetail, ScopePhase, true},
		{LevelDetail, ScopeNode, false},
		{LevelDebug, ScopeNode, true},
	}
	for _, tc := range cases {
		if got := tc.level.ShouldEmit(tc.scope); got != tc.want {
			t.Errorf("%s.ShouldEmit(%s) = %v, want %v", tc.level, tc.scope, got, tc.want)
		}
	}
}

func TestRingKeepsLastEvents(t *testing.T) {
	r := NewRingTracer(2, LevelDebug)
	for _, name := range []string{"a", "b", "c"} {
		r.Emit(&Event{Kind: KindPoint, Scope: ScopeFile, Name: name})
	}
	got := r.Snapshot()
	if len(got) != 2 || got[0].Name != "b" || got[1].Name != "c" {
		t.Fatalf("snapshot = %+v, want b, c", got)
	}
}

func TestStreamChromeIsJSON(t *testing.T) {
	var buf bytes.Buffer
	tr := NewStreamTracer(&buf, LevelDetail, FormatChrome)
	sp := Begin(tr, ScopePhase, "parse", 0)
	sp.WithExtra("bytes", "12").End("ok")
	tr.Emit(&Event{Time: time.Now(), Kind: KindPoint, Scope: ScopeFile, Name: "skip"})
	if err := tr.Close(); err != nil {
		t.Fatal(err)
	}

	var doc struct {
		TraceEvents []map[string]any `json:"traceEvents"`
	}
	if err := json.Unmarshal(buf.Bytes(), &doc); err != nil {
		t.Fatalf("invalid chrome trace: %v\n%s", err, buf.String())
	}
	if len(doc.TraceEvents) != 3 {
		t.Fatalf("got %d events, want 3", len(doc.TraceEvents))
	}
	if ph := doc.TraceEvents[1]["ph"]; ph != "E" {
		t.Fatalf("second event phase = %v, want E", ph)
	}
}

func TestParseFormat(t *testing.T) {
	if f, err := ParseFormat("chrome"); err != nil || f != FormatChrome {
		t.Fatalf("ParseFormat(chrome) = %v, %v", f, err)
	}
	if _, err := ParseFormat("xml"); err == nil {
		t.Fatal("expected error for unknown format")
	}
}

func TestStartFileTagsNestedSpans(t *testing.T) {
	ring := NewRingTracer(16, LevelDetail)
	ctx := WithTracer(context.Background(), ring)

	ctx, file := StartFile(ctx, "lib/a.rb")
	_, parse := Start(ctx, ScopePhase, "parse")
	parse.End("")
	file.End("")

	got := ring.Snapshot()
	if len(got) != 4 {
		t.Fatalf("got %d events, want 4", len(got))
	}
	for _, ev := range got {
		if ev.File != "lib/a.rb" {
			t.Errorf("%s %s: file = %q", ev.Kind, ev.Name, ev.File)
		}
	}
	if got[1].Name != "parse" || got[1].ParentID != file.ID() {
		t.Fatalf("parse span = %+v, want parent %d", got[1], file.ID())
	}
}

func TestStartFilteredKeepsFile(t *testing.T) {
	ring := NewRingTracer(16, LevelPhase)
	ctx := WithTracer(context.Background(), ring)

	ctx, file := StartFile(ctx, "b.rb")
	ctx, phase := Start(ctx, ScopePhase, "print")
	if phase.ID() != 0 {
		t.Fatalf("phase span must be disabled at LevelPhase")
	}
	if sc := CurrentSpan(ctx); sc.File != "b.rb" || sc.SpanID != file.ID() {
		t.Fatalf("span context = %+v", sc)
	}
	phase.End("")
	file.End("")
	if n := len(ring.Snapshot()); n != 2 {
		t.Fatalf("got %d events, want 2", n)
	}
}

func TestRingDumpChrome(t *testing.T) {
	ring := NewRingTracer(2, LevelDebug)
	multi := NewMultiTracer(LevelDebug, Nop, ring)
	for _, name := range []string{"a", "b", "c"} {
		multi.Emit(&Event{Time: time.Now(), Kind: KindPoint, Scope: ScopeNode, Name: name, File: "x.rb"})
	}

	var buf bytes.Buffer
	if err := ring.Dump(&buf, FormatChrome); err != nil {
		t.Fatal(err)
	}
	var doc struct {
		TraceEvents []struct {
			Name string            `json:"name"`
			Args map[string]string `json:"args"`
		} `json:"traceEvents"`
	}
	if err := json.Unmarshal(buf.Bytes(), &doc); err != nil {
		t.Fatalf("invalid chrome dump: %v\n%s", err, buf.String())
	}
	if len(doc.TraceEvents) != 2 || doc.TraceEvents[0].Name != "b" {
		t.Fatalf("events = %+v", doc.TraceEvents)
	}
	if doc.TraceEvents[1].Args["file"] != "x.rb" {
		t.Fatalf("args = %v", doc.TraceEvents[1].Args)
	}
}

func TestTextFormatShowsFile(t *testing.T) {
	ev := &Event{Time: time.Now(), Kind: KindSpanEnd, Scope: ScopePhase, Name: "print", File: "a.rb", Extra: map[string]string{"width": "80", "bytes": "3"}}
	got := string(formatText(ev))
	for _, want := range []string{"←", "    print [a.rb]", "{bytes=3, width=80}"} {
		if !strings.Contains(got, want) {
			t.Errorf("text = %q, lacks %q", got, want)
		}
	}
}

func TestHeartbeatStopTwice(t *testing.T) {
	ring := NewRingTracer(8, LevelError)
	h := StartHeartbeat(ring, time.Millisecond)
	time.Sleep(5 * time.Millisecond)
	h.Stop()
	h.Stop()
	for _, ev := range ring.Snapshot() {
		if ev.Kind != KindHeartbeat || ev.Extra["goroutines"] == "" {
			t.Fatalf("unexpected event %+v", ev)
		}
	}
	if StartHeartbeat(Nop, time.Millisecond) != nil {
		t.Fatal("heartbeat on Nop must be nil")
	}
}
