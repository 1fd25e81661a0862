package diagfmt

import (
	"encoding/json"
	"io"
	"slices"

	"rbfmt/internal/diag"
	"rbfmt/internal/source"
)

// PosJSON is a byte offset with its 1-based line and column when known.
type PosJSON struct {
	Byte uint32 `json:"byte"`
	Line uint32 `json:"line,omitempty"`
	Col  uint32 `json:"col,omitempty"`
}

type LocationJSON struct {
	File  string  `json:"file"`
	Start PosJSON `json:"start"`
	End   PosJSON `json:"end"`
}

type NoteJSON struct {
	Message  string       `json:"message"`
	Location LocationJSON `json:"location"`
}

type DiagnosticJSON struct {
	Severity string       `json:"severity"`
	Code     string       `json:"code"`
	Message  string       `json:"message"`
	Location LocationJSON `json:"location"`
	Notes    []NoteJSON   `json:"notes,omitempty"`
}

// FileJSON is the outcome of formatting one file. Diagnostics whose primary
// span lies in any of IDs (the source and its formatted output) are listed
// under the file.
type FileJSON struct {
	Path        string           `json:"path"`
	Changed     bool             `json:"changed"`
	Error       bool             `json:"error,omitempty"`
	Diff        string           `json:"diff,omitempty"`
	Diagnostics []DiagnosticJSON `json:"diagnostics,omitempty"`

	IDs []source.FileID `json:"-"`
}

type SummaryJSON struct {
	Files       int `json:"files"`
	Changed     int `json:"changed"`
	Failed      int `json:"failed"`
	Diagnostics int `json:"diagnostics"`
	// Omitted counts diagnostics cut by JSONOpts.Max or by the bag limit.
	Omitted int `json:"omitted,omitempty"`
}

// ReportJSON is the machine-readable result of a fmt run.
type ReportJSON struct {
	Files []FileJSON `json:"files"`
	// Diagnostics not tied to any listed file.
	Diagnostics []DiagnosticJSON `json:"diagnostics,omitempty"`
	Summary     SummaryJSON      `json:"summary"`
}

func locationJSON(span source.Span, fs *source.FileSet, opts JSONOpts) LocationJSON {
	loc := LocationJSON{Start: PosJSON{Byte: span.Start}, End: PosJSON{Byte: span.End}}
	f := fs.Get(span.File)
	if f == nil {
		return loc
	}
	loc.File = displayPath(f, fs, opts.PathMode)
	if opts.IncludePositions && !wholeFile(span) {
		start, end := f.Position(span.Start), f.Position(span.End)
		loc.Start.Line, loc.Start.Col = start.Line, start.Col
		loc.End.Line, loc.End.Col = end.Line, end.Col
	}
	return loc
}

func diagnosticJSON(d diag.Diagnostic, fs *source.FileSet, opts JSONOpts) DiagnosticJSON {
	out := DiagnosticJSON{
		Severity: d.Severity.String(),
		Code:     d.Code.ID(),
		Message:  d.Message,
		Location: locationJSON(d.Primary, fs, opts),
	}
	// тайминги живут в заметке, без неё payload теряется
	if opts.IncludeNotes || d.Code == diag.ObsTimings {
		for _, n := range d.Notes {
			out.Notes = append(out.Notes, NoteJSON{Message: n.Msg, Location: locationJSON(n.Span, fs, opts)})
		}
	}
	return out
}

// BuildReport distributes the diagnostics of bag over files, keeping bag
// order inside each file.
func BuildReport(files []FileJSON, bag *diag.Bag, fs *source.FileSet, opts JSONOpts) ReportJSON {
	report := ReportJSON{Files: slices.Clone(files)}
	owner := make(map[source.FileID]int)
	for i, f := range report.Files {
		for _, id := range f.IDs {
			owner[id] = i
		}
		if f.Changed {
			report.Summary.Changed++
		}
		if f.Error {
			report.Summary.Failed++
		}
	}
	report.Summary.Files = len(report.Files)

	items := bag.Items()
	shown := len(items)
	if opts.Max > 0 {
		shown = min(shown, opts.Max)
	}
	for _, d := range items[:shown] {
		dj := diagnosticJSON(d, fs, opts)
		if i, ok := owner[d.Primary.File]; ok {
			report.Files[i].Diagnostics = append(report.Files[i].Diagnostics, dj)
		} else {
			report.Diagnostics = append(report.Diagnostics, dj)
		}
	}
	report.Summary.Diagnostics = shown
	report.Summary.Omitted = len(items) - shown + bag.Dropped()
	return report
}

// Report writes BuildReport as one indented JSON document.
func Report(w io.Writer, files []FileJSON, bag *diag.Bag, fs *source.FileSet, opts JSONOpts) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(BuildReport(files, bag, fs, opts))
}
