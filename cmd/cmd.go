// submodule cmd contains command definitions
package main

import (
	"github.com/desertthunder/rollplay/internal/imaging"
	"github.com/urfave/cli/v3"
)

func configFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to configuration file",
		Value:   "config.toml",
	}
}

// serveCommand runs the web API
func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the web API",
		Flags: []cli.Flag{
			configFlag(),
			&cli.BoolFlag{
				Name:  "open",
				Usage: "Open the login page in the default browser",
			},
		},
		Action: r.Serve,
	}
}

// setupCommand handles setup operations for configuration and database.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:   "config",
				Usage:  "Write a config.toml from the built-in template",
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

func discoveryFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringSliceFlag{
			Name:    "genre",
			Aliases: []string{"g"},
			Usage:   "Genre to roll over (repeatable, up to 6)",
		},
		&cli.IntFlag{
			Name:  "faces",
			Usage: "Die to roll (3, 4, 6, 8, 12 or 20); derived from the genre count when omitted",
		},
		&cli.IntFlag{
			Name:  "value",
			Usage: "Roll result; rolled when omitted",
		},
	}
}

// rollCommand rolls the die offline and shows what would be searched
func rollCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "roll",
		Usage: "Roll a die over genres and show the selected genre and queries",
		Flags: append(discoveryFlags(), &cli.BoolFlag{
			Name:  "json",
			Usage: "Output raw JSON",
		}),
		Action: r.Roll,
	}
}

// discoverCommand runs a discovery search for a stored session
func discoverCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "discover",
		Usage: "Search tracks for a signed-in session and export them",
		Flags: append(discoveryFlags(),
			configFlag(),
			&cli.StringFlag{
				Name:     "session",
				Aliases:  []string{"s"},
				Usage:    "Session ID (see 'rollplay session list')",
				Required: true,
			},
			&cli.StringFlag{
				Name:    "mode",
				Aliases: []string{"m"},
				Usage:   "Discovery mode: roll, country or mood",
				Value:   "roll",
			},
			&cli.StringFlag{
				Name:  "country",
				Usage: "Country for country mode",
			},
			&cli.StringFlag{
				Name:  "mood",
				Usage: "Mood for mood mode",
			},
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "Export format: text, markdown or csv",
				Value:   "text",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Write the export to this file instead of printing the track list",
			},
		),
		Action: r.Discover,
	}
}

// imageCommand handles cover image operations
func imageCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "image",
		Usage: "Cover image tools",
		Commands: []*cli.Command{
			{
				Name:  "normalize",
				Usage: "Re-encode an image as a JPEG under the upload size limit",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "input"},
				},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "output",
						Aliases:  []string{"o"},
						Usage:    "Output JPEG path",
						Required: true,
					},
					&cli.IntFlag{
						Name:  "max-bytes",
						Usage: "Size ceiling in bytes",
						Value: imaging.DefaultMaxBytes,
					},
				},
				Action: r.ImageNormalize,
			},
		},
	}
}

// sessionCommand manages stored web sessions
func sessionCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "session",
		Usage: "Manage stored web sessions",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List sessions",
				Flags: []cli.Flag{
					configFlag(),
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.SessionList,
			},
			{
				Name:   "purge",
				Usage:  "Delete expired sessions",
				Flags:  []cli.Flag{configFlag()},
				Action: r.SessionPurge,
			},
		},
	}
}

// historyCommand lists recent publish attempts
func historyCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "List recent playlist publishes",
		Flags: []cli.Flag{
			configFlag(),
			&cli.IntFlag{
				Name:  "limit",
				Usage: "Maximum number of records",
				Value: 20,
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
		},
		Action: r.History,
	}
}
