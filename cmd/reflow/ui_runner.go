package main

import (
	"context"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"reflow/internal/driver"
	"reflow/internal/ui"
)

type fmtOutcome struct {
	results []driver.FormatResult
	err     error
}

func runFmtWithUI(ctx context.Context, title string, paths []string, req driver.FormatOptions) ([]driver.FormatResult, error) {
	files, err := driver.CollectBundles(ctx, paths)
	if err != nil {
		return nil, err
	}
	events := make(chan driver.Event, 256)
	outcomeCh := make(chan fmtOutcome, 1)

	go func() {
		reqCopy := req
		reqCopy.Progress = driver.ChannelSink{Ch: events}
		res, err := driver.FormatPaths(ctx, paths, reqCopy)
		outcomeCh <- fmtOutcome{results: res, err: err}
		close(events)
	}()

	model := ui.NewProgressModel(title, files, events)
	program := tea.NewProgram(model, tea.WithOutput(os.Stdout))
	_, uiErr := program.Run()
	// UI мог выйти раньше воркеров
	go func() {
		for range events {
		}
	}()
	outcome := <-outcomeCh
	if uiErr != nil {
		return outcome.results, uiErr
	}
	return outcome.results, outcome.err
}
