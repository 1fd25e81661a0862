// Package lsp serves whole-document formatting and formatter diagnostics
// over the Language Server Protocol on stdio.
package lsp

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"go.lsp.dev/protocol"

	"rbfmt/internal/config"
	"rbfmt/internal/driver"
	"rbfmt/internal/source"
	"rbfmt/internal/trace"
	"rbfmt/internal/version"
)

var (
	// ErrExit signals a graceful shutdown after receiving "exit".
	ErrExit = errors.New("lsp exit")
	// ErrExitWithoutShutdown signals an "exit" without a preceding "shutdown".
	ErrExitWithoutShutdown = errors.New("lsp exit without shutdown")
)

// ServerOptions configures LSP server behavior.
type ServerOptions struct {
	Debounce time.Duration
	// Width overrides the configured line width when positive.
	Width int
	// Verify reparses formatting results before handing them out.
	Verify         bool
	MaxDiagnostics int
	// Log receives server messages; stderr when nil.
	Log io.Writer
}

// Server handles stdio JSON-RPC for rbfmt.
type Server struct {
	in     *bufio.Reader
	out    *bufio.Writer
	log    io.Writer
	sendMu sync.Mutex

	mu                sync.Mutex
	openDocs          map[string]string
	versions          map[string]int
	published         map[string]struct{}
	configs           map[string]*config.Config
	workspaceRoot     string
	shutdownRequested bool
	width             int
	verify            bool
	traceLSP          bool
	maxDiagnostics    int

	debounce      time.Duration
	debounceTimer *time.Timer
	diagCancel    context.CancelFunc
	analysisSeq   uint64
	latestSeq     uint64
	baseCtx       context.Context
}

// NewServer constructs a new LSP server.
func NewServer(in io.Reader, out io.Writer, opts ServerOptions) *Server {
	debounce := opts.Debounce
	if debounce <= 0 {
		debounce = 300 * time.Millisecond
	}
	maxDiagnostics := opts.MaxDiagnostics
	if maxDiagnostics <= 0 {
		maxDiagnostics = 100
	}
	logw := opts.Log
	if logw == nil {
		logw = os.Stderr
	}
	return &Server{
		in:             bufio.NewReader(in),
		out:            bufio.NewWriter(out),
		log:            logw,
		openDocs:       make(map[string]string),
		versions:       make(map[string]int),
		published:      make(map[string]struct{}),
		configs:        make(map[string]*config.Config),
		width:          opts.Width,
		verify:         opts.Verify,
		maxDiagnostics: maxDiagnostics,
		debounce:       debounce,
		baseCtx:        context.Background(),
	}
}

// Run serves LSP requests until the client sends "exit" or closes the input.
func (s *Server) Run(ctx context.Context) error {
	s.baseCtx = ctx
	defer s.stopDiagnostics()
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		payload, err := readMessage(s.in)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		var msg rpcMessage
		if err := json.Unmarshal(payload, &msg); err != nil {
			s.logf("failed to parse message: %v", err)
			continue
		}
		if msg.Method == "" {
			continue
		}
		if err := s.handleMessage(&msg); err != nil {
			return err
		}
	}
}

func (s *Server) handleMessage(msg *rpcMessage) error {
	switch msg.Method {
	case protocol.MethodInitialize:
		return s.handleInitialize(msg)
	case protocol.MethodInitialized:
		return nil
	case protocol.MethodShutdown:
		return s.handleShutdown(msg)
	case protocol.MethodExit:
		if s.isShutdown() {
			return ErrExit
		}
		return ErrExitWithoutShutdown
	case protocol.MethodWorkspaceDidChangeConfiguration:
		return s.handleDidChangeConfiguration(msg)
	case protocol.MethodWorkspaceDidChangeWatchedFiles:
		s.dropConfigs()
		s.scheduleDiagnostics()
		return nil
	case protocol.MethodTextDocumentDidOpen:
		return s.handleDidOpen(msg)
	case protocol.MethodTextDocumentDidChange:
		return s.handleDidChange(msg)
	case protocol.MethodTextDocumentDidSave:
		return s.handleDidSave(msg)
	case protocol.MethodTextDocumentDidClose:
		return s.handleDidClose(msg)
	case protocol.MethodTextDocumentFormatting:
		return s.handleFormatting(msg)
	default:
		if len(msg.ID) > 0 {
			return s.sendError(msg.ID, codeMethodNotFound, "method not found")
		}
		return nil
	}
}

func (s *Server) handleInitialize(msg *rpcMessage) error {
	var params initializeParams
	if len(msg.Params) > 0 {
		if err := json.Unmarshal(msg.Params, &params); err != nil {
			return s.sendError(msg.ID, codeInvalidParams, "invalid params")
		}
	}
	root := ""
	if params.RootURI != "" {
		root = uriToPath(params.RootURI)
	}
	if root == "" && params.RootPath != "" {
		root = params.RootPath
	}
	if root == "" && len(params.WorkspaceFolders) > 0 {
		root = uriToPath(string(params.WorkspaceFolders[0].URI))
	}
	if root != "" {
		if abs, err := filepath.Abs(root); err == nil {
			root = abs
		}
	}
	s.mu.Lock()
	s.workspaceRoot = root
	s.mu.Unlock()
	s.applySettings(params.InitializationOptions)

	result := protocol.InitializeResult{
		Capabilities: protocol.ServerCapabilities{
			TextDocumentSync: &protocol.TextDocumentSyncOptions{
				OpenClose: true,
				Change:    protocol.TextDocumentSyncKindIncremental,
				Save:      &protocol.SaveOptions{IncludeText: true},
			},
			DocumentFormattingProvider: true,
		},
		ServerInfo: &protocol.ServerInfo{Name: "rbfmt", Version: version.Version},
	}
	return s.sendResponse(msg.ID, result)
}

func (s *Server) handleShutdown(msg *rpcMessage) error {
	s.mu.Lock()
	s.shutdownRequested = true
	s.mu.Unlock()
	s.stopDiagnostics()
	s.clearPublishedDiagnostics()
	return s.sendResponse(msg.ID, nil)
}

func (s *Server) handleDidOpen(msg *rpcMessage) error {
	var params protocol.DidOpenTextDocumentParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		return err
	}
	uri := canonicalURI(string(params.TextDocument.URI))
	if uri == "" {
		return nil
	}
	s.mu.Lock()
	s.openDocs[uri] = params.TextDocument.Text
	s.versions[uri] = int(params.TextDocument.Version)
	s.mu.Unlock()
	s.scheduleDiagnostics()
	return nil
}

func (s *Server) handleDidChange(msg *rpcMessage) error {
	var params didChangeTextDocumentParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		return err
	}
	uri := canonicalURI(string(params.TextDocument.URI))
	if uri == "" {
		return nil
	}
	s.mu.Lock()
	s.openDocs[uri] = applyChanges(s.openDocs[uri], params.ContentChanges)
	s.versions[uri] = int(params.TextDocument.Version)
	traceLSP := s.traceLSP
	s.mu.Unlock()
	if traceLSP {
		s.logf("didChange: uri=%s version=%d changes=%d", uri, params.TextDocument.Version, len(params.ContentChanges))
	}
	s.scheduleDiagnostics()
	return nil
}

func (s *Server) handleDidSave(msg *rpcMessage) error {
	var params didSaveTextDocumentParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		return err
	}
	uri := canonicalURI(string(params.TextDocument.URI))
	if uri == "" {
		return nil
	}
	if path := uriToPath(uri); path != "" && slices.Contains(config.FileNames, filepath.Base(path)) {
		s.dropConfigs()
	}
	s.mu.Lock()
	if params.Text != nil {
		if _, ok := s.openDocs[uri]; ok {
			s.openDocs[uri] = *params.Text
		}
	}
	s.mu.Unlock()
	s.scheduleDiagnostics()
	return nil
}

func (s *Server) handleDidClose(msg *rpcMessage) error {
	var params protocol.DidCloseTextDocumentParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		return err
	}
	uri := canonicalURI(string(params.TextDocument.URI))
	if uri == "" {
		return nil
	}
	s.mu.Lock()
	delete(s.openDocs, uri)
	delete(s.versions, uri)
	_, hadDiagnostics := s.published[uri]
	delete(s.published, uri)
	s.mu.Unlock()
	if hadDiagnostics {
		if err := s.sendPublish(uri, nil, nil); err != nil {
			s.logf("failed to clear diagnostics: %v", err)
		}
	}
	return nil
}

// handleFormatting answers with one edit replacing the whole document, or
// with no edits when the document is already formatted.
func (s *Server) handleFormatting(msg *rpcMessage) error {
	var params protocol.DocumentFormattingParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		return s.sendError(msg.ID, codeInvalidParams, "invalid params")
	}
	uri := canonicalURI(string(params.TextDocument.URI))
	s.mu.Lock()
	text, ok := s.openDocs[uri]
	s.mu.Unlock()
	if !ok {
		return s.sendError(msg.ID, codeInvalidParams, "document is not open: "+string(params.TextDocument.URI))
	}

	ctx, span := trace.StartFile(s.baseCtx, uri)
	res, err := s.formatDocument(ctx, uri, text)
	if err == nil {
		err = res.Err
	}
	if err != nil {
		span.End("error")
		return s.sendError(msg.ID, codeRequestFailed, err.Error())
	}
	span.End("")

	edits := []protocol.TextEdit{}
	if res.Changed {
		edits = append(edits, protocol.TextEdit{
			Range:   protocol.Range{End: endPosition(text)},
			NewText: string(res.Formatted),
		})
	}
	return s.sendResponse(msg.ID, edits)
}

// formatDocument runs the driver on an in-memory document.
func (s *Server) formatDocument(ctx context.Context, uri, text string) (driver.FileResult, error) {
	return s.formatInto(ctx, source.NewFileSet(), uri, text)
}

func (s *Server) formatInto(ctx context.Context, fileSet *source.FileSet, uri, text string) (driver.FileResult, error) {
	path := uriToPath(uri)
	name := path
	if name == "" {
		name = uri
	}
	cfg, err := s.configFor(path)
	if err != nil {
		return driver.FileResult{}, err
	}
	s.mu.Lock()
	opts := driver.FormatOptions{Stdout: true, Width: s.width, Verify: s.verify, Config: cfg}
	s.mu.Unlock()
	return driver.FormatSource(ctx, fileSet, name, []byte(text), opts), nil
}

// configFor discovers the config governing path, caching it per directory.
// Untitled buffers use the workspace root.
func (s *Server) configFor(path string) (*config.Config, error) {
	s.mu.Lock()
	dir := s.workspaceRoot
	s.mu.Unlock()
	if path != "" {
		dir = filepath.Dir(path)
	}
	if dir == "" {
		dir = "."
	}

	s.mu.Lock()
	cfg, ok := s.configs[dir]
	s.mu.Unlock()
	if ok {
		return cfg, nil
	}
	cfg, err := config.Discover(dir)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	s.mu.Lock()
	s.configs[dir] = cfg
	s.mu.Unlock()
	return cfg, nil
}

func (s *Server) dropConfigs() {
	s.mu.Lock()
	s.configs = make(map[string]*config.Config)
	s.mu.Unlock()
}

func (s *Server) handleDidChangeConfiguration(msg *rpcMessage) error {
	if len(msg.Params) == 0 {
		return nil
	}
	var params didChangeConfigurationParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		return nil
	}
	s.applySettings(params.Settings)
	s.scheduleDiagnostics()
	return nil
}

func (s *Server) applySettings(raw json.RawMessage) {
	if len(raw) == 0 {
		return
	}
	var settings lspSettings
	if err := json.Unmarshal(raw, &settings); err != nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if w := settings.Rbfmt.LineWidth; w != nil && *w >= 0 {
		s.width = *w
	}
	if v := settings.Rbfmt.Verify; v != nil {
		s.verify = *v
	}
	if t := settings.Rbfmt.Trace; t != nil {
		s.traceLSP = *t
	}
}

func (s *Server) isShutdown() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.shutdownRequested
}

func (s *Server) sendResponse(id json.RawMessage, result any) error {
	msg := map[string]any{
		"jsonrpc": "2.0",
		"id":      id,
		"result":  result,
	}
	return s.send(msg)
}

func (s *Server) sendError(id json.RawMessage, code int, message string) error {
	msg := map[string]any{
		"jsonrpc": "2.0",
		"id":      id,
		"error":   rpcError{Code: code, Message: message},
	}
	return s.send(msg)
}

func (s *Server) sendPublish(uri string, version *int, list []protocol.Diagnostic) error {
	if list == nil {
		list = []protocol.Diagnostic{}
	}
	msg := map[string]any{
		"jsonrpc": "2.0",
		"method":  protocol.MethodTextDocumentPublishDiagnostics,
		"params": publishDiagnosticsParams{
			URI:         protocol.DocumentURI(uri),
			Version:     version,
			Diagnostics: list,
		},
	}
	return s.send(msg)
}

func (s *Server) send(msg any) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	s.sendMu.Lock()
	defer s.sendMu.Unlock()
	if err := writeMessage(s.out, payload); err != nil {
		return err
	}
	return s.out.Flush()
}

func (s *Server) logf(format string, args ...any) {
	fmt.Fprintf(s.log, "lsp: "+format+"\n", args...)
}

func (s *Server) isLatestSeq(seq uint64) bool {
	if seq == 0 {
		return false
	}
	return seq == atomic.LoadUint64(&s.latestSeq)
}
