package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"rbfmt/internal/config"
	"rbfmt/internal/diag"
	"rbfmt/internal/diagfmt"
	"rbfmt/internal/driver"
	"rbfmt/internal/source"
)

var fmtCmd = &cobra.Command{
	Use:   "fmt [flags] <path> [path...]",
	Short: "Format Ruby source files",
	Long: `Format Ruby files in place. Directories are walked recursively, honouring
.gitignore files and the exclude list of .rbfmt.toml / .rbfmt.yml.
Use "-" to read a single file from stdin and write the result to stdout.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runFmt,
}

func init() {
	fmtCmd.Flags().Bool("check", false, "report files that are not formatted without rewriting them")
	fmtCmd.Flags().Bool("stdout", false, "print formatted code to stdout instead of rewriting files")
	fmtCmd.Flags().Bool("diff", false, "print a unified diff instead of rewriting files")
	fmtCmd.Flags().Bool("verify", true, "reparse the output and compare meaning trees (--verify=false to skip)")
	fmtCmd.Flags().Int("width", 0, "maximum line width (overrides config)")
	fmtCmd.Flags().Int("jobs", 0, "max parallel files (0=auto)")
	fmtCmd.Flags().String("format", "text", "output format (text|json)")
	fmtCmd.Flags().String("config", "", "use this config file instead of discovering one per file")
	fmtCmd.Flags().String("stdin-filepath", "<stdin>", "file name reported for stdin input")
}

type fmtSettings struct {
	opts         driver.FormatOptions
	outputFormat string
	quiet        bool
	timings      bool
	color        bool
	maxDiag      int
	progress     bool
	stdinName    string
}

func readFmtSettings(cmd *cobra.Command) (fmtSettings, error) {
	var s fmtSettings
	flags := cmd.Flags()
	root := cmd.Root().PersistentFlags()

	check, err := flags.GetBool("check")
	if err != nil {
		return s, err
	}
	stdout, err := flags.GetBool("stdout")
	if err != nil {
		return s, err
	}
	diff, err := flags.GetBool("diff")
	if err != nil {
		return s, err
	}
	verify, err := flags.GetBool("verify")
	if err != nil {
		return s, err
	}
	width, err := flags.GetInt("width")
	if err != nil {
		return s, err
	}
	jobs, err := flags.GetInt("jobs")
	if err != nil {
		return s, err
	}
	if s.outputFormat, err = flags.GetString("format"); err != nil {
		return s, err
	}
	configPath, err := flags.GetString("config")
	if err != nil {
		return s, err
	}
	if s.stdinName, err = flags.GetString("stdin-filepath"); err != nil {
		return s, err
	}
	if s.quiet, err = root.GetBool("quiet"); err != nil {
		return s, err
	}
	if s.timings, err = root.GetBool("timings"); err != nil {
		return s, err
	}
	if s.maxDiag, err = root.GetInt("max-diagnostics"); err != nil {
		return s, err
	}
	s.progress = uiFlag.enabled(os.Stdout)
	s.color = colorFlag.enabled(os.Stderr)

	switch {
	case stdout && check:
		return s, fmt.Errorf("fmt: --stdout cannot be used with --check")
	case stdout && diff:
		return s, fmt.Errorf("fmt: --stdout cannot be used with --diff")
	case s.outputFormat != "text" && s.outputFormat != "json":
		return s, fmt.Errorf("fmt: unsupported output format %q", s.outputFormat)
	case stdout && s.outputFormat != "text":
		return s, fmt.Errorf("fmt: --stdout is only supported with text output")
	case width < 0:
		return s, fmt.Errorf("fmt: --width must be positive")
	}

	var cfg *config.Config
	if configPath != "" {
		if cfg, err = config.Load(configPath); err != nil {
			return s, err
		}
	}

	s.opts = driver.FormatOptions{
		Check:  check,
		Stdout: stdout,
		Diff:   diff,
		Verify: verify,
		Width:  width,
		Jobs:   jobs,
		Config: cfg,
	}
	return s, nil
}

func runFmt(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true

	s, err := readFmtSettings(cmd)
	if err != nil {
		return err
	}
	if len(args) == 1 && args[0] == "-" {
		return runFmtStdin(cmd, s)
	}

	started := time.Now()
	var (
		fileSet *source.FileSet
		results []driver.FileResult
	)
	if s.outputFormat == "text" && !s.opts.Stdout && !s.quiet && s.progress {
		fileSet, results, err = runFormatWithUI(cmd.Context(), "rbfmt fmt", args, s.opts)
	} else {
		fileSet, results, err = driver.FormatPaths(cmd.Context(), args, s.opts)
	}
	if err != nil {
		if errors.Is(err, driver.ErrNoFiles) {
			return fmt.Errorf("fmt: no Ruby files found in %s", strings.Join(args, " "))
		}
		return err
	}

	// тайминги в тексте печатаются отдельно, в JSON едут диагностиками
	bag := driver.Diagnose(fileSet, results, s.opts.Check, s.timings && s.outputFormat == "json")

	switch s.outputFormat {
	case "json":
		err = diagfmt.Report(cmd.OutOrStdout(), fileReports(results), bag, fileSet, diagfmt.JSONOpts{
			IncludePositions: true,
			PathMode:         diagfmt.PathModeAuto,
			Max:              s.maxDiag,
			IncludeNotes:     true,
		})
		if err != nil {
			return err
		}
	default:
		renderFmtText(cmd.OutOrStdout(), results, s)
		printDiagnostics(cmd.ErrOrStderr(), bag, fileSet, s)
		if s.timings {
			printFileTimings(cmd.ErrOrStderr(), results, time.Since(started))
		}
	}
	return fmtOutcome(results, s.opts.Check)
}

func renderFmtText(out io.Writer, results []driver.FileResult, s fmtSettings) {
	for _, r := range results {
		if r.Err != nil {
			continue
		}
		switch {
		case s.opts.Stdout:
			if _, err := out.Write(r.Formatted); err != nil {
				panic(err)
			}
		case s.opts.Diff:
			if r.Diff != "" {
				if _, err := io.WriteString(out, r.Diff); err != nil {
					panic(err)
				}
			}
		case s.opts.Check:
			if r.Changed && !s.quiet {
				if _, err := fmt.Fprintln(out, r.Path); err != nil {
					panic(err)
				}
			}
		default:
			if r.Changed && !s.quiet {
				if _, err := fmt.Fprintf(out, "reformatted %s\n", r.Path); err != nil {
					panic(err)
				}
			}
		}
	}
}

// printDiagnostics renders bag capped at --max-diagnostics. With --quiet only
// errors are shown.
func printDiagnostics(out io.Writer, bag *diag.Bag, fileSet *source.FileSet, s fmtSettings) {
	limit := s.maxDiag
	if limit <= 0 {
		limit = bag.Len()
	}
	shown := diag.NewBag(limit)
	for _, d := range bag.Items() {
		if !s.quiet || d.Severity >= diag.SevError {
			shown.Add(d)
		}
	}
	if shown.Len() == 0 {
		return
	}
	diagfmt.Pretty(out, shown, fileSet, diagfmt.PrettyOpts{
		Color:     s.color,
		Context:   1,
		PathMode:  diagfmt.PathModeAuto,
		ShowNotes: true,
	})
	if hidden := shown.Dropped(); hidden > 0 {
		if _, err := fmt.Fprintf(out, "... %d more diagnostics not shown\n", hidden); err != nil {
			panic(err)
		}
	}
}

func fmtOutcome(results []driver.FileResult, check bool) error {
	var failed, changed int
	for _, r := range results {
		if r.Err != nil {
			failed++
		} else if r.Changed {
			changed++
		}
	}
	switch {
	case failed > 0:
		return fmt.Errorf("fmt: failed to format %d of %d files", failed, len(results))
	case check && changed > 0:
		return fmt.Errorf("fmt: %d of %d files need formatting", changed, len(results))
	}
	return nil
}

// runFmtStdin formats standard input. The result always goes to stdout
// unless --check or --diff asks otherwise.
func runFmtStdin(cmd *cobra.Command, s fmtSettings) error {
	src, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return fmt.Errorf("fmt: failed to read stdin: %w", err)
	}
	fileSet := source.NewFileSet()
	s.opts.Stdout = !s.opts.Check && !s.opts.Diff
	result := driver.FormatSource(cmd.Context(), fileSet, s.stdinName, src, s.opts)
	results := []driver.FileResult{result}

	bag := driver.Diagnose(fileSet, results, s.opts.Check, false)
	if s.outputFormat == "json" {
		if err := diagfmt.Report(cmd.OutOrStdout(), fileReports(results), bag, fileSet, diagfmt.JSONOpts{IncludePositions: true, Max: s.maxDiag, IncludeNotes: true}); err != nil {
			return err
		}
		return fmtOutcome(results, s.opts.Check)
	}

	switch {
	case result.Err != nil:
		// при ошибке исходник уходит дальше как есть
		if s.opts.Stdout {
			if _, err := cmd.OutOrStdout().Write(src); err != nil {
				return err
			}
		}
	case s.opts.Diff:
		if _, err := io.WriteString(cmd.OutOrStdout(), result.Diff); err != nil {
			return err
		}
	case s.opts.Stdout:
		if _, err := cmd.OutOrStdout().Write(result.Formatted); err != nil {
			return err
		}
	}
	printDiagnostics(cmd.ErrOrStderr(), bag, fileSet, s)
	return fmtOutcome(results, s.opts.Check)
}

func fileReports(results []driver.FileResult) []diagfmt.FileJSON {
	files := make([]diagfmt.FileJSON, 0, len(results))
	for _, r := range results {
		files = append(files, diagfmt.FileJSON{
			Path:    r.Path,
			Changed: r.Changed,
			Error:   r.Err != nil,
			Diff:    r.Diff,
			IDs:     []source.FileID{r.FileID, r.OutputID},
		})
	}
	return files
}
