package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/desertthunder/reelsync/internal/formatter"
	"github.com/desertthunder/reelsync/internal/models"
	"github.com/desertthunder/reelsync/internal/quality"
	"github.com/desertthunder/reelsync/internal/shared"
	"github.com/urfave/cli/v3"
)

// QualityList prints the resolution options offered for the given sources.
func (r *Runner) QualityList(ctx context.Context, cmd *cli.Command) error {
	sources, err := parseSources(cmd.StringSlice("source"))
	if err != nil {
		return err
	}

	opts := models.Resolutions(sources)
	current := ""
	if i := models.DefaultResolution(opts); i >= 0 {
		current = opts[i].Value
	}

	switch strings.ToLower(cmd.String("format")) {
	case "json":
		return r.writeJSON(opts, true)
	case "text", "":
		return r.writeBytes(formatter.ResolutionsToText(opts, current, r.config.Session.Premium))
	default:
		return fmt.Errorf("unsupported format %q", cmd.String("format"))
	}
}

// QualitySwitch dry-runs a resolution switch on a simulated player and prints what the player was told to do.
func (r *Runner) QualitySwitch(ctx context.Context, cmd *cli.Command) error {
	value := cmd.StringArg("value")
	if value == "" {
		return fmt.Errorf("%w: resolution value", shared.ErrMissingArgument)
	}
	sources, err := parseSources(cmd.StringSlice("source"))
	if err != nil {
		return err
	}

	timeout := cmd.Duration("timeout")
	if timeout <= 0 {
		timeout = r.config.Quality.ReadyTimeout
	}

	player := &dryRunPlayer{position: cmd.Duration("position"), paused: cmd.Bool("paused")}
	opts := models.Resolutions(sources)
	if i := models.DefaultResolution(opts); i >= 0 {
		player.source = opts[i].SourceURL
	}

	toasts := r.newToasts()
	sw := quality.NewSwitcher(quality.Options{
		Player:       player,
		Resolutions:  opts,
		Session:      r.config.CurrentSession(),
		Toasts:       toasts,
		Clock:        r.clock,
		ReadyTimeout: timeout,
		Logger:       r.logger,
	})

	err = sw.SwitchTo(ctx, value)
	for _, step := range player.steps {
		r.writePlain("  %s\n", step)
	}
	r.flushToasts(toasts)
	if err != nil && !errors.Is(err, shared.ErrEntitlementRequired) {
		return err
	}

	cur, _ := sw.Current()
	state := "playing"
	if player.paused {
		state = "paused"
	}
	return r.writePlain("Current: %s at %s (%s)\n", cur.Label, player.position, state)
}

// parseSources reads value=url pairs into [models.VideoSources].
func parseSources(pairs []string) (models.VideoSources, error) {
	var src models.VideoSources
	for _, p := range pairs {
		value, url, ok := strings.Cut(p, "=")
		if !ok || url == "" {
			return src, fmt.Errorf("%w: source %q must be value=url", shared.ErrInvalidInput, p)
		}
		switch strings.ToLower(value) {
		case "4k":
			src.URL4K = url
		case "2k":
			src.URL2K = url
		case "1080p":
			src.URL1080p = url
		case "720p":
			src.URL720p = url
		case "480p":
			src.URL480p = url
		case "auto":
			src.VideoURL = url
		default:
			return src, fmt.Errorf("%w: unknown resolution %q", shared.ErrInvalidInput, value)
		}
	}
	return src, nil
}

// dryRunPlayer is a [quality.Player] whose sources are ready immediately.
type dryRunPlayer struct {
	source   string
	position time.Duration
	paused   bool
	steps    []string
}

func (p *dryRunPlayer) SetSource(url string) <-chan struct{} {
	p.source = url
	p.position = 0
	p.paused = true
	p.steps = append(p.steps, fmt.Sprintf("source %s", url))
	ready := make(chan struct{})
	close(ready)
	return ready
}

func (p *dryRunPlayer) Pause() {
	p.paused = true
	p.steps = append(p.steps, "pause")
}

func (p *dryRunPlayer) Seek(d time.Duration) {
	p.position = d
	p.steps = append(p.steps, fmt.Sprintf("seek %s", d))
}

func (p *dryRunPlayer) Play(context.Context) error {
	p.paused = false
	p.steps = append(p.steps, "play")
	return nil
}

func (p *dryRunPlayer) Position() time.Duration { return p.position }
func (p *dryRunPlayer) Paused() bool            { return p.paused }
