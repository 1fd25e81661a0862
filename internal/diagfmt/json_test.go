package diagfmt

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"

	"rbfmt/internal/diag"
	"rbfmt/internal/source"
)

func TestReportGroupsByFile(t *testing.T) {
	fs := source.NewFileSet()
	broken := fs.AddVirtual("lib/broken.rb", []byte("def foo\n  bar(\nend\n"))
	ok := fs.AddVirtual("lib/ok.rb", []byte("x = 1\n"))
	output := fs.AddVirtual("lib/ok.rb", []byte("x = 1\n"))

	bag := diag.NewBag(10)
	bag.Add(diag.NewError(diag.SynParseError, source.Span{File: broken, Start: 14, End: 15}, "missing )"))
	bag.Add(diag.New(diag.SevInfo, diag.FmtLayoutOverflow, source.Span{File: output, Start: 0, End: 5}, "line exceeds 3 columns"))
	bag.Add(diag.New(diag.SevInfo, diag.ObsTimings, source.Span{File: 99}, "timings (run)"))

	files := []FileJSON{
		{Path: "lib/broken.rb", Error: true, IDs: []source.FileID{broken}},
		{Path: "lib/ok.rb", Changed: true, IDs: []source.FileID{ok, output}},
	}
	var buf bytes.Buffer
	opts := JSONOpts{IncludePositions: true, PathMode: PathModeBasename}
	if err := Report(&buf, files, bag, fs, opts); err != nil {
		t.Fatalf("Report() error: %v", err)
	}
	var got ReportJSON
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("invalid JSON output: %v\n%s", err, buf.String())
	}

	want := ReportJSON{
		Files: []FileJSON{
			{Path: "lib/broken.rb", Error: true, Diagnostics: []DiagnosticJSON{{
				Severity: "ERROR",
				Code:     "SYN2001",
				Message:  "missing )",
				Location: LocationJSON{
					File:  "broken.rb",
					Start: PosJSON{Byte: 14, Line: 2, Col: 7},
					End:   PosJSON{Byte: 15, Line: 3, Col: 1},
				},
			}}},
			{Path: "lib/ok.rb", Changed: true, Diagnostics: []DiagnosticJSON{{
				Severity: "INFO",
				Code:     "FMT3005",
				Message:  "line exceeds 3 columns",
				Location: LocationJSON{
					File:  "ok.rb",
					Start: PosJSON{Byte: 0, Line: 1, Col: 1},
					End:   PosJSON{Byte: 5, Line: 1, Col: 6},
				},
			}}},
		},
		Diagnostics: []DiagnosticJSON{{Severity: "INFO", Code: "OBS6001", Message: "timings (run)", Location: LocationJSON{Start: PosJSON{}, End: PosJSON{}}}},
		Summary:     SummaryJSON{Files: 2, Changed: 1, Failed: 1, Diagnostics: 3},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("report mismatch (-want +got):\n%s", diff)
	}
}

func TestReportMaxAndTimingNotes(t *testing.T) {
	fs := source.NewFileSet()
	fileID := fs.AddVirtual("a.rb", []byte("a\n"))

	bag := diag.NewBag(2)
	bag.Add(diag.New(diag.SevInfo, diag.ObsTimings, source.Span{File: fileID}, "timings").
		WithNote(source.Span{File: fileID}, `{"kind":"file"}`))
	bag.Add(diag.New(diag.SevWarning, diag.FmtNotFormatted, source.Span{File: fileID}, "not formatted").
		WithNote(source.Span{File: fileID}, "hidden"))
	bag.Add(diag.New(diag.SevWarning, diag.FmtNotFormatted, source.Span{File: fileID}, "over the limit"))

	files := []FileJSON{{Path: "a.rb", IDs: []source.FileID{fileID}}}
	got := BuildReport(files, bag, fs, JSONOpts{}).Files[0].Diagnostics
	if len(got[0].Notes) != 1 {
		t.Fatal("timing payload must survive without IncludeNotes")
	}
	if len(got[1].Notes) != 0 {
		t.Fatal("ordinary notes need IncludeNotes")
	}

	report := BuildReport(files, bag, fs, JSONOpts{Max: 1})
	if report.Summary.Diagnostics != 1 || report.Summary.Omitted != 2 {
		t.Fatalf("summary = %+v, want 1 shown and 2 omitted", report.Summary)
	}
	if files[0].Diagnostics != nil {
		t.Fatal("BuildReport must not write into the caller's slice")
	}
}
