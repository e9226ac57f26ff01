package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/desertthunder/reelsync/internal/formatter"
	"github.com/desertthunder/reelsync/internal/shared"
	"github.com/desertthunder/reelsync/internal/sim"
	"github.com/urfave/cli/v3"
)

// FeedReplay runs a scripted feed session and prints its trace.
func (r *Runner) FeedReplay(ctx context.Context, cmd *cli.Command) error {
	path := cmd.StringArg("script")
	if path == "" {
		return fmt.Errorf("%w: script path", shared.ErrMissingArgument)
	}

	script, err := sim.LoadScript(path)
	if err != nil {
		return err
	}

	opts := sim.Options{Session: r.config.CurrentSession(), Logger: r.logger}
	if cmd.Bool("live") {
		if !opts.Session.Authenticated() {
			return shared.ErrNotAuthenticated
		}
		r.logger.Info("replaying against live API", "base_url", r.client.BaseURL())
		opts.API = r.client
	}

	r.logger.Info("replaying feed", "script", path, "items", len(script.Items), "steps", len(script.Steps))
	res, err := sim.Run(ctx, script, opts)
	if err != nil {
		return fmt.Errorf("replay failed: %w", err)
	}

	var data []byte
	switch strings.ToLower(cmd.String("format")) {
	case "csv":
		data, err = formatter.TraceToCSV(res)
	case "json":
		data, err = formatter.ToJSON(res)
	case "text", "":
		data = formatter.TraceToText(res)
	default:
		return fmt.Errorf("unsupported format %q", cmd.String("format"))
	}
	if err != nil {
		return err
	}

	return r.emit(cmd.String("output"), data)
}
