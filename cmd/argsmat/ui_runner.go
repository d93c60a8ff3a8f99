package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"argsmat/internal/driver"
	"argsmat/internal/ui"
)

// wantProgressUI turns the --ui value into a yes/no. auto shows the view
// only when stdout is a terminal and CI is unset.
func wantProgressUI(value string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "auto":
		return isTerminal(os.Stdout) && os.Getenv("CI") == "", nil
	case "on", "always":
		return true, nil
	case "off", "never":
		return false, nil
	}
	return false, fmt.Errorf("invalid --ui value %q (expected auto|on|off)", value)
}

type runOutcome struct {
	run *driver.Run
	err error
}

// runWithUI processes target in the background while a progress view
// renders driver events. Files appear in the view as they are queued.
func runWithUI(ctx context.Context, title, target string, opts driver.Options) (*driver.Run, error) {
	events := make(chan driver.Event, 256)
	outcomeCh := make(chan runOutcome, 1)

	go func() {
		optsCopy := opts
		optsCopy.Sink = driver.ChannelSink{Ch: events}
		run, err := driver.Process(ctx, target, optsCopy)
		outcomeCh <- runOutcome{run: run, err: err}
		close(events)
	}()

	model := ui.NewProgressModel(title, nil, events)
	program := tea.NewProgram(model, tea.WithOutput(os.Stdout))
	_, uiErr := program.Run()
	// если UI завершился раньше, не блокируем driver
	go func() {
		for range events {
		}
	}()
	outcome := <-outcomeCh
	if uiErr != nil {
		return outcome.run, uiErr
	}
	return outcome.run, outcome.err
}
