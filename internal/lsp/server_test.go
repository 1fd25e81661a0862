package lsp

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"go.lsp.dev/protocol"
)

func frame(t *testing.T, buf *bytes.Buffer, msg map[string]any) {
	t.Helper()
	payload, err := json.Marshal(msg)
	if err != nil {
		t.Fatal(err)
	}
	if err := writeMessage(buf, payload); err != nil {
		t.Fatal(err)
	}
}

func readAll(t *testing.T, out []byte) []rpcMessage {
	t.Helper()
	r := bufio.NewReader(bytes.NewReader(out))
	var msgs []rpcMessage
	for {
		payload, err := readMessage(r)
		if errors.Is(err, io.EOF) {
			return msgs
		}
		if err != nil {
			t.Fatalf("read: %v", err)
		}
		var msg rpcMessage
		if err := json.Unmarshal(payload, &msg); err != nil {
			t.Fatalf("decode %s: %v", payload, err)
		}
		msgs = append(msgs, msg)
	}
}

func responseFor(t *testing.T, msgs []rpcMessage, id string) rpcMessage {
	t.Helper()
	for _, msg := range msgs {
		if string(msg.ID) == id && msg.Method == "" {
			return msg
		}
	}
	t.Fatalf("no response for id %s", id)
	return rpcMessage{}
}

func TestServerFormattingSession(t *testing.T) {
	root := t.TempDir()
	uri := pathToURI(filepath.Join(root, "a.rb"))

	var in bytes.Buffer
	frame(t, &in, map[string]any{"jsonrpc": "2.0", "id": 1, "method": "initialize",
		"params": map[string]any{"rootUri": pathToURI(root)}})
	frame(t, &in, map[string]any{"jsonrpc": "2.0", "method": "initialized", "params": map[string]any{}})
	frame(t, &in, map[string]any{"jsonrpc": "2.0", "method": "textDocument/didOpen",
		"params": map[string]any{"textDocument": map[string]any{
			"uri": uri, "languageId": "ruby", "version": 1, "text": "foo(a,b)\n",
		}}})
	frame(t, &in, map[string]any{"jsonrpc": "2.0", "id": 2, "method": "textDocument/formatting",
		"params": map[string]any{"textDocument": map[string]any{"uri": uri},
			"options": map[string]any{"tabSize": 2, "insertSpaces": true}}})
	frame(t, &in, map[string]any{"jsonrpc": "2.0", "id": 3, "method": "textDocument/hover", "params": map[string]any{}})
	frame(t, &in, map[string]any{"jsonrpc": "2.0", "id": 4, "method": "shutdown"})
	frame(t, &in, map[string]any{"jsonrpc": "2.0", "method": "exit"})

	var out bytes.Buffer
	srv := NewServer(&in, &out, ServerOptions{Debounce: time.Hour, Log: io.Discard})
	if err := srv.Run(context.Background()); !errors.Is(err, ErrExit) {
		t.Fatalf("Run = %v, want ErrExit", err)
	}

	msgs := readAll(t, out.Bytes())

	var init struct {
		Capabilities struct {
			DocumentFormattingProvider bool `json:"documentFormattingProvider"`
		} `json:"capabilities"`
		ServerInfo protocol.ServerInfo `json:"serverInfo"`
	}
	if err := json.Unmarshal(responseFor(t, msgs, "1").Result, &init); err != nil {
		t.Fatal(err)
	}
	if !init.Capabilities.DocumentFormattingProvider || init.ServerInfo.Name != "rbfmt" {
		t.Fatalf("unexpected capabilities: %+v", init)
	}

	var edits []protocol.TextEdit
	if err := json.Unmarshal(responseFor(t, msgs, "2").Result, &edits); err != nil {
		t.Fatal(err)
	}
	want := []protocol.TextEdit{{
		Range:   protocol.Range{End: protocol.Position{Line: 1, Character: 0}},
		NewText: "foo(a, b)\n",
	}}
	if diff := cmp.Diff(want, edits); diff != "" {
		t.Fatalf("edits mismatch (-want +got):\n%s", diff)
	}

	if resp := responseFor(t, msgs, "3"); resp.Error == nil || resp.Error.Code != codeMethodNotFound {
		t.Fatalf("unknown method must fail, got %+v", resp)
	}
}

func TestServerExitWithoutShutdown(t *testing.T) {
	var in bytes.Buffer
	frame(t, &in, map[string]any{"jsonrpc": "2.0", "method": "exit"})
	srv := NewServer(&in, io.Discard, ServerOptions{Log: io.Discard})
	if err := srv.Run(context.Background()); !errors.Is(err, ErrExitWithoutShutdown) {
		t.Fatalf("Run = %v, want ErrExitWithoutShutdown", err)
	}
}

func TestServerFormattingUnknownDocument(t *testing.T) {
	var out bytes.Buffer
	srv := NewServer(&bytes.Buffer{}, &out, ServerOptions{Log: io.Discard})
	params, err := json.Marshal(protocol.DocumentFormattingParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: "file:///nope.rb"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if err := srv.handleMessage(&rpcMessage{ID: json.RawMessage("7"), Method: "textDocument/formatting", Params: params}); err != nil {
		t.Fatal(err)
	}
	resp := responseFor(t, readAll(t, out.Bytes()), "7")
	if resp.Error == nil || resp.Error.Code != codeInvalidParams {
		t.Fatalf("want invalid params, got %+v", resp)
	}
}

func TestRunDiagnosticsPublishesParseError(t *testing.T) {
	root := t.TempDir()
	uri := pathToURI(filepath.Join(root, "broken.rb"))

	var out bytes.Buffer
	srv := NewServer(&bytes.Buffer{}, &out, ServerOptions{Debounce: time.Hour, Log: io.Discard})
	srv.workspaceRoot = root
	srv.openDocs[uri] = "def foo(\n"
	srv.versions[uri] = 3

	srv.scheduleDiagnostics()
	srv.stopDiagnostics()
	srv.runDiagnostics(srv.latestSeq)

	msgs := readAll(t, out.Bytes())
	if len(msgs) != 1 || msgs[0].Method != "textDocument/publishDiagnostics" {
		t.Fatalf("want one publish, got %+v", msgs)
	}
	var params struct {
		Version     *int                  `json:"version"`
		Diagnostics []protocol.Diagnostic `json:"diagnostics"`
	}
	if err := json.Unmarshal(msgs[0].Params, &params); err != nil {
		t.Fatal(err)
	}
	if params.Version == nil || *params.Version != 3 {
		t.Fatalf("version = %v", params.Version)
	}
	if len(params.Diagnostics) == 0 {
		t.Fatal("expected diagnostics")
	}
	got := params.Diagnostics[0]
	if got.Code != "SYN2001" || got.Severity != protocol.DiagnosticSeverityError || got.Source != "rbfmt" {
		t.Fatalf("unexpected diagnostic: %+v", got)
	}
	if _, ok := srv.published[uri]; !ok {
		t.Fatal("published set must track the document")
	}
}

func TestStaleDiagnosticsRunIsDropped(t *testing.T) {
	var out bytes.Buffer
	srv := NewServer(&bytes.Buffer{}, &out, ServerOptions{Debounce: time.Hour, Log: io.Discard})
	srv.workspaceRoot = t.TempDir()
	srv.openDocs["untitled:1"] = "x = 1\n"

	srv.scheduleDiagnostics()
	stale := srv.latestSeq
	srv.scheduleDiagnostics()
	srv.stopDiagnostics()
	srv.runDiagnostics(stale)
	if out.Len() != 0 {
		t.Fatalf("stale run published: %q", out.String())
	}
}

func TestApplySettings(t *testing.T) {
	srv := NewServer(&bytes.Buffer{}, io.Discard, ServerOptions{Log: io.Discard})
	srv.applySettings(json.RawMessage(`{"rbfmt":{"lineWidth":40,"verify":true}}`))
	if srv.width != 40 || !srv.verify {
		t.Fatalf("settings not applied: width=%d verify=%v", srv.width, srv.verify)
	}
	srv.applySettings(json.RawMessage(`{"other":{}}`))
	if srv.width != 40 {
		t.Fatal("unrelated settings must not reset width")
	}
}
