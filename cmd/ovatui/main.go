// Command ovatui browses the OVA video library in the terminal.
//
// It reads the same OVAVIEW_* settings as the server. Logs go to the file
// named by OVAVIEW_TUI_LOG; without it the shell does not log.
package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/dalemusser/ovaview/internal/app/bootstrap"
	"github.com/dalemusser/ovaview/internal/app/system/timeouts"
	"github.com/dalemusser/ovaview/internal/tui"
	"go.uber.org/zap"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "ovatui:", err)
		os.Exit(1)
	}
}

func run() error {
	logger, err := newLogger(os.Getenv("OVAVIEW_TUI_LOG"))
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	_, appCfg, err := bootstrap.LoadConfig(logger)
	if err != nil {
		return err
	}
	if err := bootstrap.ValidateShellConfig(appCfg); err != nil {
		return err
	}
	timeouts.ConfigureFromEnv()

	client, err := bootstrap.NewOVAClient(appCfg, logger)
	if err != nil {
		return err
	}

	m := tui.New(tui.Options{
		Source:   client,
		Collator: bootstrap.NewCollator(appCfg),
		PageSize: appCfg.PageSize,
		Debounce: appCfg.SearchDebounce,
		Logger:   logger,
	})
	_, err = tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}

// newLogger writes JSON logs to path, or discards them when path is empty.
func newLogger(path string) (*zap.Logger, error) {
	if path == "" {
		return zap.NewNop(), nil
	}
	cfg := zap.NewProductionConfig()
	cfg.OutputPaths = []string{path}
	cfg.ErrorOutputPaths = []string{path}
	return cfg.Build()
}
