// Package diag defines the diagnostic model shared by the formatter pipeline
// and the driver.
//
// # Purpose
//
//   - Provide deterministic data structures that capture findings produced
//     while formatting a file: parse failures reported by the tree-sitter
//     adapter, contract violations of the meaning dispatch table, verification
//     failures, I/O problems.
//   - Offer light-weight utilities (Reporter, Bag) that let producers emit
//     diagnostics without coupling to concrete storage or rendering layers.
//
// # Scope
//
// Package diag does not perform any formatting, IO or CLI integration.
// Rendering lives in internal/diagfmt, orchestration in internal/driver.
//
// # Data model
//
// Diagnostic is the central record. It contains:
//
//   - Severity – Info, Warning or Error.
//   - Code – compact numeric identifier (see codes.go) with stable string form.
//   - Message – human oriented text; keep it short and actionable.
//   - Primary span – the canonical source.Span pointing to the issue.
//   - Notes – optional secondary spans/messages for additional context.
//
// Notes should be used sparingly: each note must add new context (e.g. “heredoc
// opened here”) rather than repeating the diagnostic message.
//
// # Emitting diagnostics
//
// The driver converts formatter errors into diagnostics through a Reporter;
// BagReporter aggregates them into a Bag, which supports sorting and
// deduplication before diagfmt renders the result.
package diag
