package lsp

import (
	"encoding/json"

	"go.lsp.dev/jsonrpc2"
	"go.lsp.dev/protocol"
)

type rpcMessage struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id,omitempty"`
	Method  string          `json:"method,omitempty"`
	Params  json.RawMessage `json:"params,omitempty"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *rpcError       `json:"error,omitempty"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

const (
	codeMethodNotFound = int(jsonrpc2.MethodNotFound)
	codeInvalidParams  = int(jsonrpc2.InvalidParams)
	// RequestFailed из LSP 3.17: запрос корректен, но обработать его не вышло.
	codeRequestFailed = -32803
)

// initializeParams keeps initializationOptions raw; it is decoded as
// lspSettings.
type initializeParams struct {
	RootURI               string                     `json:"rootUri,omitempty"`
	RootPath              string                     `json:"rootPath,omitempty"`
	WorkspaceFolders      []protocol.WorkspaceFolder `json:"workspaceFolders,omitempty"`
	InitializationOptions json.RawMessage            `json:"initializationOptions,omitempty"`
}

// contentChange differs from protocol.TextDocumentContentChangeEvent in that
// a missing range (full replacement) stays distinguishable from 0:0-0:0.
type contentChange struct {
	Range *protocol.Range `json:"range,omitempty"`
	Text  string          `json:"text"`
}

type didChangeTextDocumentParams struct {
	TextDocument protocol.VersionedTextDocumentIdentifier `json:"textDocument"`
	ContentChanges []contentChange                        `json:"contentChanges"`
}

type didSaveTextDocumentParams struct {
	TextDocument protocol.TextDocumentIdentifier `json:"textDocument"`
	Text         *string                         `json:"text,omitempty"`
}

// publishDiagnosticsParams carries the document version as a pointer so
// version 0 is still sent.
type publishDiagnosticsParams struct {
	URI         protocol.DocumentURI  `json:"uri"`
	Version     *int                  `json:"version,omitempty"`
	Diagnostics []protocol.Diagnostic `json:"diagnostics"`
}

type didChangeConfigurationParams struct {
	Settings json.RawMessage `json:"settings"`
}

type lspSettings struct {
	Rbfmt rbfmtSettings `json:"rbfmt"`
}

type rbfmtSettings struct {
	LineWidth *int  `json:"lineWidth,omitempty"`
	Verify    *bool `json:"verify,omitempty"`
	Trace     *bool `json:"trace,omitempty"`
}
