package main

import (
	"context"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"rbfmt/internal/driver"
	"rbfmt/internal/source"
	"rbfmt/internal/ui"
)

type formatOutcome struct {
	fileSet *source.FileSet
	results []driver.FileResult
	err     error
}

// runFormatWithUI runs driver.FormatPaths while a Bubble Tea program renders
// its progress events.
func runFormatWithUI(ctx context.Context, title string, paths []string, opts driver.FormatOptions) (*source.FileSet, []driver.FileResult, error) {
	events := make(chan driver.Event, 256)
	outcomeCh := make(chan formatOutcome, 1)

	go func() {
		optsCopy := opts
		optsCopy.Progress = driver.ChannelSink{Ch: events}
		fs, results, err := driver.FormatPaths(ctx, paths, optsCopy)
		outcomeCh <- formatOutcome{fileSet: fs, results: results, err: err}
		close(events)
	}()

	model := ui.NewProgressModel(title, nil, events)
	program := tea.NewProgram(model, tea.WithOutput(os.Stderr))
	_, uiErr := program.Run()
	// программа могла выйти раньше (ошибка, Ctrl+C), дочитываем события
	go func() {
		for range events {
		}
	}()
	outcome := <-outcomeCh
	if uiErr != nil {
		return outcome.fileSet, outcome.results, uiErr
	}
	return outcome.fileSet, outcome.results, outcome.err
}
