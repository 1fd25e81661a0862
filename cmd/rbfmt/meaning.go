package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"rbfmt/internal/diag"
	"rbfmt/internal/diagfmt"
	"rbfmt/internal/meaning"
	"rbfmt/internal/source"
	"rbfmt/internal/syntax"
	"rbfmt/internal/trivia"
)

var meaningCmd = &cobra.Command{
	Use:   "meaning [flags] <file|->",
	Short: "Dump the meaning tree of a Ruby file",
	Long: `Print the semantic tree the formatter works on, with comments attached
to their owners. Two sources with equal trees format to the same output.`,
	Args: cobra.ExactArgs(1),
	RunE: runMeaning,
}

func init() {
	meaningCmd.Flags().String("format", "text", "output format (text|json|graph)")
}

func runMeaning(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true

	outputFormat, err := cmd.Flags().GetString("format")
	if err != nil {
		return err
	}
	switch outputFormat {
	case "text", "json", "graph":
	default:
		return fmt.Errorf("meaning: unsupported output format %q", outputFormat)
	}

	fileSet := source.NewFileSet()
	var fileID source.FileID
	if path := args[0]; path == "-" {
		raw, readErr := io.ReadAll(cmd.InOrStdin())
		if readErr != nil {
			return fmt.Errorf("meaning: failed to read stdin: %w", readErr)
		}
		content, flags := source.Normalize(raw)
		fileID = fileSet.Add("<stdin>", content, flags|source.FileVirtual)
	} else if fileID, err = fileSet.Load(path); err != nil {
		return fmt.Errorf("meaning: failed to read %s: %w", path, err)
	}
	file := fileSet.Get(fileID)
	content := file.Content

	st, err := syntax.Parse(cmd.Context(), content)
	if err != nil {
		var perr *syntax.ParseError
		if errors.As(err, &perr) {
			return reportMeaningParseError(cmd, fileSet, fileID, perr)
		}
		return fmt.Errorf("meaning: %w", err)
	}
	defer st.Close()

	builder, err := meaning.Default()
	if err != nil {
		return err
	}
	tree, err := builder.Build(st, fileID)
	if err != nil {
		return fmt.Errorf("meaning: %s: %w", file.Path, err)
	}
	ann := trivia.Attach(tree)

	out := cmd.OutOrStdout()
	switch outputFormat {
	case "json":
		return diagfmt.FormatMeaningJSON(out, tree, ann)
	case "graph":
		return diagfmt.FormatMeaningGraph(out, tree)
	default:
		return diagfmt.FormatMeaningPretty(out, tree, ann, fileSet)
	}
}

func reportMeaningParseError(cmd *cobra.Command, fileSet *source.FileSet, fileID source.FileID, perr *syntax.ParseError) error {
	colored := colorFlag.enabled(os.Stderr)
	msg := "unexpected input"
	if perr.Missing {
		msg = "missing " + perr.Kind
	}
	bag := diag.NewBag(1)
	bag.Add(diag.NewError(diag.SynParseError, source.Span{File: fileID, Start: perr.Offset, End: max(perr.End, perr.Offset)}, msg))
	diagfmt.Pretty(cmd.ErrOrStderr(), bag, fileSet, diagfmt.PrettyOpts{Color: colored, Context: 1})
	return fmt.Errorf("meaning: %s does not parse", fileSet.Get(fileID).Path)
}
