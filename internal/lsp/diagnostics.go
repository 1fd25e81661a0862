package lsp

import (
	"context"
	"sort"
	"sync/atomic"
	"time"

	"go.lsp.dev/protocol"

	"rbfmt/internal/diag"
	"rbfmt/internal/driver"
	"rbfmt/internal/source"
)

type docSnapshot struct {
	uri     string
	text    string
	version int
}

func (s *Server) scheduleDiagnostics() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.shutdownRequested {
		return
	}
	seq := atomic.AddUint64(&s.analysisSeq, 1)
	atomic.StoreUint64(&s.latestSeq, seq)
	if s.debounceTimer != nil {
		s.debounceTimer.Stop()
	}
	s.debounceTimer = time.AfterFunc(s.debounce, func() {
		s.runDiagnostics(seq)
	})
}

func (s *Server) stopDiagnostics() {
	s.mu.Lock()
	if s.debounceTimer != nil {
		s.debounceTimer.Stop()
		s.debounceTimer = nil
	}
	cancel := s.diagCancel
	s.diagCancel = nil
	s.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

// runDiagnostics formats every open document and publishes what the
// formatter reports about it. A newer schedule wins over a stale run.
func (s *Server) runDiagnostics(seq uint64) {
	if !s.isLatestSeq(seq) {
		return
	}
	ctx, cancel := context.WithCancel(s.baseCtx)
	s.mu.Lock()
	if s.diagCancel != nil {
		s.diagCancel()
	}
	s.diagCancel = cancel
	docs := make([]docSnapshot, 0, len(s.openDocs))
	for uri, text := range s.openDocs {
		docs = append(docs, docSnapshot{uri: uri, text: text, version: s.versions[uri]})
	}
	traceLSP := s.traceLSP
	s.mu.Unlock()
	defer cancel()

	sort.Slice(docs, func(i, j int) bool { return docs[i].uri < docs[j].uri })
	started := time.Now()
	for _, doc := range docs {
		if ctx.Err() != nil || !s.isLatestSeq(seq) {
			return
		}
		list, err := s.diagnoseDocument(ctx, doc)
		if err != nil {
			s.logf("diagnostics failed for %s: %v", doc.uri, err)
			continue
		}
		if !s.isLatestSeq(seq) {
			return
		}
		if !s.stillOpen(doc) {
			continue
		}
		version := doc.version
		if err := s.sendPublish(doc.uri, &version, list); err != nil {
			s.logf("failed to publish diagnostics: %v", err)
			return
		}
		s.mu.Lock()
		if len(list) > 0 {
			s.published[doc.uri] = struct{}{}
		} else {
			delete(s.published, doc.uri)
		}
		s.mu.Unlock()
	}
	if traceLSP {
		s.logf("diagnostics: seq=%d docs=%d elapsed=%s", seq, len(docs), time.Since(started))
	}
}

func (s *Server) stillOpen(doc docSnapshot) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	text, ok := s.openDocs[doc.uri]
	return ok && text == doc.text
}

func (s *Server) diagnoseDocument(ctx context.Context, doc docSnapshot) ([]protocol.Diagnostic, error) {
	fileSet := source.NewFileSet()
	res, err := s.formatInto(ctx, fileSet, doc.uri, doc.text)
	if err != nil {
		return nil, err
	}
	bag := driver.Diagnose(fileSet, []driver.FileResult{res}, false, false)
	return s.toLSPDiagnostics(fileSet, res.FileID, bag), nil
}

// toLSPDiagnostics keeps diagnostics that point into the document itself;
// overflows reported against the formatted output have no editor position.
func (s *Server) toLSPDiagnostics(fileSet *source.FileSet, fileID source.FileID, bag *diag.Bag) []protocol.Diagnostic {
	file := fileSet.Get(fileID)
	if file == nil || bag == nil {
		return nil
	}
	s.mu.Lock()
	limit := s.maxDiagnostics
	s.mu.Unlock()

	out := make([]protocol.Diagnostic, 0, bag.Len())
	for _, d := range bag.Items() {
		if d.Primary.File != fileID {
			continue
		}
		if len(out) >= limit {
			break
		}
		out = append(out, protocol.Diagnostic{
			Range:    rangeForSpan(file, d.Primary),
			Severity: severityToLSP(d.Severity),
			Code:     d.Code.ID(),
			Source:   "rbfmt",
			Message:  d.Message,
		})
	}
	return out
}

func severityToLSP(sev diag.Severity) protocol.DiagnosticSeverity {
	switch sev {
	case diag.SevError:
		return protocol.DiagnosticSeverityError
	case diag.SevWarning:
		return protocol.DiagnosticSeverityWarning
	default:
		return protocol.DiagnosticSeverityInformation
	}
}

// clearPublishedDiagnostics sends empty lists for every document that still
// shows diagnostics in the client.
func (s *Server) clearPublishedDiagnostics() {
	s.mu.Lock()
	uris := make([]string, 0, len(s.published))
	for uri := range s.published {
		uris = append(uris, uri)
	}
	s.published = make(map[string]struct{})
	s.mu.Unlock()
	sort.Strings(uris)
	for _, uri := range uris {
		if err := s.sendPublish(uri, nil, nil); err != nil {
			s.logf("failed to clear diagnostics: %v", err)
			return
		}
	}
}
