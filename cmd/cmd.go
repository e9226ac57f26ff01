// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

func configFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to configuration file",
		Value:   "config.toml",
	}
}

func sourceFlag() cli.Flag {
	return &cli.StringSliceFlag{
		Name:     "source",
		Aliases:  []string{"s"},
		Usage:    "Source as value=url (4k, 2k, 1080p, 720p, 480p or auto); repeatable",
		Required: true,
	}
}

func formatFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "format",
		Aliases: []string{"f"},
		Usage:   "Output format (text, csv or json)",
		Value:   "text",
	}
}

// setupCommand handles setup operations for configuration and the database.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:   "config",
				Usage:  "Write the default config.toml",
				Flags:  []cli.Flag{configFlag()},
				Action: r.SetupConfig,
			},
			{
				Name:   "database",
				Usage:  "Initialize database and run migrations",
				Flags:  []cli.Flag{configFlag()},
				Action: r.SetupDatabase,
			},
		},
	}
}

// likeCommand toggles the like on a video
func likeCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "like",
		Usage: "Toggle the like on a video",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "id"},
		},
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "liked",
				Usage: "Current like state when nothing is cached",
			},
			&cli.IntFlag{
				Name:  "count",
				Usage: "Current like count when nothing is cached",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output JSON",
			},
		},
		Action: r.Like,
	}
}

// followCommand toggles following a user
func followCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "follow",
		Usage: "Toggle following a user",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "id"},
		},
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "following",
				Usage: "Current follow state when nothing is cached",
			},
			&cli.IntFlag{
				Name:  "count",
				Usage: "Current follower count when nothing is cached",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output JSON",
			},
		},
		Action: r.Follow,
	}
}

// viewCommand reports a view once the watch threshold is reached
func viewCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "view",
		Usage: "Record a view if the watched position meets the threshold",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "id"},
		},
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "kind",
				Usage: "Item kind (video or clip)",
				Value: "video",
			},
			&cli.DurationFlag{
				Name:     "position",
				Aliases:  []string{"p"},
				Usage:    "Current playback position",
				Required: true,
			},
			&cli.DurationFlag{
				Name:     "duration",
				Aliases:  []string{"d"},
				Usage:    "Media duration",
				Required: true,
			},
		},
		Action: r.View,
	}
}

// notificationsCommand handles notification polling and history
func notificationsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "notifications",
		Aliases: []string{"notify", "n"},
		Usage:   "Poll, watch and review notifications",
		Commands: []*cli.Command{
			{
				Name:  "poll",
				Usage: "Fetch unread notifications once",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "ack",
						Usage: "Dismiss the celebration after printing it",
					},
				},
				Action: r.NotificationsPoll,
			},
			{
				Name:   "watch",
				Usage:  "Interactive TUI that polls until quit",
				Action: r.NotificationsWatch,
			},
			{
				Name:  "history",
				Usage: "Show locally recorded notifications",
				Flags: []cli.Flag{
					formatFlag(),
					&cli.IntFlag{
						Name:    "limit",
						Aliases: []string{"l"},
						Usage:   "Maximum number of entries",
						Value:   50,
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Write to a file instead of stdout",
					},
					&cli.DurationFlag{
						Name:  "prune",
						Usage: "Delete entries delivered longer ago than this before listing",
					},
				},
				Action: r.NotificationsHistory,
			},
		},
	}
}

// feedCommand handles scripted feed sessions
func feedCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "feed",
		Usage: "Feed session tools",
		Commands: []*cli.Command{
			{
				Name:  "replay",
				Usage: "Replay a scripted feed session and print the trace",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "script"},
				},
				Flags: []cli.Flag{
					formatFlag(),
					&cli.BoolFlag{
						Name:  "live",
						Usage: "Send engagement requests to the configured API",
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Write to a file instead of stdout",
					},
				},
				Action: r.FeedReplay,
			},
		},
	}
}

// qualityCommand handles resolution listing and dry-run switching
func qualityCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "quality",
		Usage: "Resolution options",
		Commands: []*cli.Command{
			{
				Name:   "list",
				Usage:  "List resolution options for a set of sources",
				Flags:  []cli.Flag{sourceFlag(), formatFlag()},
				Action: r.QualityList,
			},
			{
				Name:  "switch",
				Usage: "Dry-run a resolution switch against a simulated player",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "value"},
				},
				Flags: []cli.Flag{
					sourceFlag(),
					&cli.DurationFlag{
						Name:  "position",
						Usage: "Playback position before the switch",
					},
					&cli.BoolFlag{
						Name:  "paused",
						Usage: "Player is paused before the switch",
					},
					&cli.DurationFlag{
						Name:  "timeout",
						Usage: "How long to wait for the new source (defaults to quality.ready_timeout)",
					},
				},
				Action: r.QualitySwitch,
			},
		},
	}
}
