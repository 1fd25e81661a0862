package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"rbfmt/internal/lsp"
)

var lspCmd = &cobra.Command{
	Use:          "lsp",
	Short:        "Run the formatting language server over stdio",
	SilenceUsage: true,
	Args:         cobra.NoArgs,
	RunE:         runLSP,
}

func init() {
	lspCmd.Flags().Int("width", 0, "override line width (0 = from config)")
	lspCmd.Flags().Bool("verify", true, "reparse formatted output before returning edits")
	lspCmd.Flags().Duration("debounce", 300*time.Millisecond, "delay before diagnostics run after an edit")
}

func runLSP(cmd *cobra.Command, _ []string) error {
	width, err := cmd.Flags().GetInt("width")
	if err != nil {
		return err
	}
	verify, err := cmd.Flags().GetBool("verify")
	if err != nil {
		return err
	}
	debounce, err := cmd.Flags().GetDuration("debounce")
	if err != nil {
		return err
	}
	maxDiagnostics, err := cmd.Root().PersistentFlags().GetInt("max-diagnostics")
	if err != nil {
		return err
	}
	if width < 0 {
		return fmt.Errorf("--width must be non-negative")
	}

	server := lsp.NewServer(os.Stdin, os.Stdout, lsp.ServerOptions{
		Debounce:       debounce,
		Width:          width,
		Verify:         verify,
		MaxDiagnostics: maxDiagnostics,
		Log:            os.Stderr,
	})
	if err := server.Run(cmd.Context()); err != nil {
		if errors.Is(err, lsp.ErrExit) {
			return nil
		}
		if errors.Is(err, lsp.ErrExitWithoutShutdown) {
			return fmt.Errorf("lsp exit without shutdown")
		}
		return err
	}
	return nil
}
