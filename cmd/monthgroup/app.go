package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/glamour"
	"monthgroup/internal/cli"
	"monthgroup/internal/config"
	"monthgroup/internal/log"
)

// openApp wires the full application from the environment. Logs go to
// stderr so stdout only carries the command's output.
func openApp(ctx context.Context) (*cli.App, error) {
	cfg := config.Load()
	logger := cli.SetupLoggerTo(os.Stderr, cfg.LogLevel)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cli.NewApp(ctx, cfg, logger)
}

func closeApp(app *cli.App) {
	if err := app.Close(); err != nil {
		app.Logger.Warn("Failed to close application", log.FieldError, err)
	}
}

// printMarkdown renders md for the terminal, falling back to the raw text.
func printMarkdown(md string) {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(120),
	)
	if err != nil {
		fmt.Print(md)
		return
	}
	out, err := r.Render(md)
	if err != nil {
		fmt.Print(md)
		return
	}
	fmt.Print(out)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func fail(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
}
