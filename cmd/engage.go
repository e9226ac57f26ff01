package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/reelsync/internal/engagement"
	"github.com/desertthunder/reelsync/internal/models"
	"github.com/desertthunder/reelsync/internal/repositories"
	"github.com/desertthunder/reelsync/internal/shared"
	"github.com/desertthunder/reelsync/internal/toast"
	"github.com/desertthunder/reelsync/internal/views"
	"github.com/urfave/cli/v3"
)

// engagementResult is the JSON shape printed by like and follow.
type engagementResult struct {
	ID     string `json:"id"`
	Field  string `json:"field"`
	Active bool   `json:"active"`
	Count  int    `json:"count"`
}

// Like toggles the like on a video, seeding the store from the local snapshot cache.
// --liked and --count take precedence over the cache when given.
func (r *Runner) Like(ctx context.Context, cmd *cli.Command) error {
	id := cmd.StringArg("id")
	if id == "" {
		return fmt.Errorf("%w: video id", shared.ErrMissingArgument)
	}
	return r.toggleEngagement(ctx, cmd, id, models.FieldLike, "liked")
}

// Follow toggles following a user, seeding the store from the local snapshot cache.
// --following and --count take precedence over the cache when given.
func (r *Runner) Follow(ctx context.Context, cmd *cli.Command) error {
	id := cmd.StringArg("id")
	if id == "" {
		return fmt.Errorf("%w: user id", shared.ErrMissingArgument)
	}
	return r.toggleEngagement(ctx, cmd, id, models.FieldFollow, "following")
}

func (r *Runner) toggleEngagement(ctx context.Context, cmd *cli.Command, id string, field models.Field, activeFlag string) error {
	db, err := r.openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	snapshots := repositories.NewSnapshotRepository(db)
	seed := models.Snapshot{Active: cmd.Bool(activeFlag), Count: int(cmd.Int("count"))}
	if cached, ok, err := snapshots.Get(ctx, id, field); err != nil {
		r.logger.Warn("failed to read cached snapshot", "entity", id, "error", err)
	} else if ok {
		r.logger.Debug("seeding from cache", "entity", id, "field", field, "active", cached.Active, "count", cached.Count)
		if !cmd.IsSet(activeFlag) {
			seed.Active = cached.Active
		}
		if !cmd.IsSet("count") {
			seed.Count = cached.Count
		}
	}

	toasts := r.newToasts()
	store := r.newStore(toasts, snapshots)
	switch field {
	case models.FieldFollow:
		store.TrackUser(id, seed.Active, seed.Count)
		err = store.ToggleFollow(ctx, id)
	default:
		store.Track(models.FeedItem{ID: id, Liked: seed.Active, LikeCount: seed.Count})
		err = store.ToggleLike(ctx, id)
	}
	if err != nil {
		r.flushToasts(toasts)
		return err
	}

	if err := r.flushToasts(toasts); err != nil {
		return err
	}

	snap, ok := store.Get(id, field)
	if !ok {
		return fmt.Errorf("%w: %s", shared.ErrNotFound, id)
	}

	if cmd.Bool("json") {
		return r.writeJSON(engagementResult{ID: id, Field: field.String(), Active: snap.Active, Count: snap.Count}, true)
	}
	return r.writePlain("✓ %s\n", describeEngagement(field, snap))
}

// View records a view when position meets the threshold for the item's kind and duration.
func (r *Runner) View(ctx context.Context, cmd *cli.Command) error {
	id := cmd.StringArg("id")
	if id == "" {
		return fmt.Errorf("%w: video id", shared.ErrMissingArgument)
	}
	kind := models.Kind(cmd.String("kind"))
	if kind != models.KindVideo && kind != models.KindClip {
		return fmt.Errorf("%w: kind must be video or clip, got %q", shared.ErrInvalidInput, kind)
	}
	pos := views.Position{Current: cmd.Duration("position"), Duration: cmd.Duration("duration")}

	store := r.newStore(r.newToasts(), nil)
	item := models.FeedItem{ID: id, Kind: kind, Duration: pos.Duration}
	store.Track(item)

	reporter := views.NewReporter(views.Options{
		Recorder: r.client,
		Counter:  store,
		Executor: shared.Inline,
		Logger:   r.logger,
	})
	reporter.Mount(ctx, item)
	defer reporter.Unmount(id)

	if !reporter.Observe(id, pos) {
		return r.writePlain("View not counted: watched %s of %s (%.0f%%)\n", pos.Current, pos.Duration, pos.Ratio()*100)
	}
	return r.writePlain("✓ View recorded for %s at %s\n", id, pos.Current)
}

func (r *Runner) newStore(toasts toast.Sink, mirror engagement.Mirror) *engagement.Store {
	return engagement.NewStore(engagement.Options{
		API:      r.client,
		Toasts:   toasts,
		Session:  r.config.CurrentSession(),
		Clock:    r.clock,
		Executor: shared.Inline,
		Logger:   r.logger,
		Mirror:   mirror,
	})
}

func describeEngagement(field models.Field, s models.Snapshot) string {
	switch field {
	case models.FieldFollow:
		if s.Active {
			return fmt.Sprintf("Following (%d followers)", s.Count)
		}
		return fmt.Sprintf("Not following (%d followers)", s.Count)
	default:
		if s.Active {
			return fmt.Sprintf("Liked (%d likes)", s.Count)
		}
		return fmt.Sprintf("Not liked (%d likes)", s.Count)
	}
}
