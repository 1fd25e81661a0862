package driver

import (
	"errors"
	"fmt"
	"strings"

	"fortio.org/safecast"

	"rbfmt/internal/diag"
	"rbfmt/internal/format"
	"rbfmt/internal/meaning"
	"rbfmt/internal/source"
)

// StageError ties an error to the stage it happened in, so the driver can
// tell a failed read from a failed write.
type StageError struct {
	Stage Stage
	Path  string
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Stage, e.Path, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

// Diagnose turns formatting results into diagnostics. check marks changed
// files as not formatted; timings adds one timing report per file.
func Diagnose(files *source.FileSet, results []FileResult, check, timings bool) *diag.Bag {
	bag := diag.NewBag(max(len(results)*4, 16))
	reporter := &diag.BagReporter{Bag: bag}
	for i := range results {
		r := &results[i]
		if r.Err != nil {
			reportError(reporter, files, r)
		}
		if check && r.Changed {
			reporter.Report(diag.FmtNotFormatted, diag.SevWarning, source.Span{File: r.FileID}, r.Path+" is not formatted", nil)
		}
		for _, line := range r.Overflows {
			reporter.Report(diag.FmtLayoutOverflow, diag.SevInfo, lineSpan(files, r.OutputID, line),
				fmt.Sprintf("line %d is wider than %d columns", line, r.Width), nil)
		}
		if timings && r.Timing != nil {
			appendTimingDiagnostic(bag, r.FileID, timingPayload{
				Path:    r.Path,
				TotalMS: r.Timing.TotalMS,
				Phases:  r.Timing.Phases,
			})
		}
	}
	bag.Sort()
	return bag
}

func reportError(reporter diag.Reporter, files *source.FileSet, r *FileResult) {
	var (
		parseErr *format.ParseError
		contract *meaning.ContractViolation
		lost     *format.LostError
		stageErr *StageError
	)
	err := r.Err
	switch {
	case errors.As(err, &parseErr):
		reporter.Report(diag.SynParseError, diag.SevError, offsetSpan(files, r.FileID, parseErr.Offset), parseErr.Msg, nil)
	case errors.As(err, &contract):
		msg := contract.Kind
		if contract.Field != "" {
			msg += "." + contract.Field
		}
		reporter.Report(diag.FmtContractViolation, diag.SevError, offsetSpan(files, r.FileID, contract.Offset),
			msg+": "+contract.Reason, nil)
	case errors.As(err, &lost):
		sp := offsetSpan(files, r.FileID, lost.Offset)
		sp.End = sp.Start + lengthOf(lost.Text)
		reporter.Report(diag.FmtCommentLost, diag.SevError, sp, lost.Err.Error(), nil)
	case errors.Is(err, format.ErrVerify):
		reporter.Report(diag.FmtVerifyFailed, diag.SevError, source.Span{File: r.FileID}, trimPrefix(err), nil)
	case errors.As(err, &stageErr) && stageErr.Stage == StageWrite:
		reporter.Report(diag.IOWriteFileError, diag.SevError, source.Span{File: r.FileID}, stageErr.Err.Error(), nil)
	case errors.As(err, &stageErr) && stageErr.Stage == StageRead:
		reporter.Report(diag.IOLoadFileError, diag.SevError, source.Span{File: r.FileID}, stageErr.Err.Error(), nil)
	default:
		reporter.Report(diag.UnknownCode, diag.SevError, source.Span{File: r.FileID}, err.Error(), nil)
	}
}

func trimPrefix(err error) string {
	return strings.TrimPrefix(err.Error(), "format: ")
}

func lengthOf(s string) uint32 {
	n, err := safecast.Conv[uint32](len(s))
	if err != nil {
		return 0
	}
	return n
}

// offsetSpan is a one-byte span at off, clamped to the file.
func offsetSpan(files *source.FileSet, id source.FileID, off uint32) source.Span {
	sp := source.Span{File: id, Start: off, End: off}
	if f := files.Get(id); f != nil {
		size, err := safecast.Conv[uint32](len(f.Content))
		if err != nil {
			return sp
		}
		sp.Start = min(off, size)
		sp.End = min(off+1, size)
	}
	return sp
}

// lineSpan covers 1-based line n of the file.
func lineSpan(files *source.FileSet, id source.FileID, n int) source.Span {
	f := files.Get(id)
	if f == nil || n <= 0 {
		return source.Span{File: id}
	}
	line, err := safecast.Conv[uint32](n)
	if err != nil {
		return source.Span{File: id}
	}
	return f.LineSpan(line)
}
