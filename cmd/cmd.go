// submodule cmd contains command definitions
package main

import (
	"github.com/desertthunder/ga4x/internal/formatter"
	"github.com/desertthunder/ga4x/internal/repositories"
	"github.com/urfave/cli/v3"
)

const version = "0.1.0"

func init() {
	// -v belongs to --verbose
	cli.VersionFlag = &cli.BoolFlag{
		Name:        "version",
		Aliases:     []string{"V"},
		Usage:       "print the version",
		HideDefault: true,
		Local:       true,
	}
}

// newApp builds the root command around r.
func newApp(r *Runner) *cli.Command {
	return &cli.Command{
		Name:     "ga4x",
		Usage:    "Sign in with Google and summarize Google Analytics 4 traffic",
		Version:  version,
		Writer:   r.output,
		Flags:    globalFlags(),
		Before:   r.before,
		Commands: r.register(),
	}
}

func formatUsage() string {
	return "Output format: " + formatter.FormatText + ", " + formatter.FormatMarkdown + ", " +
		formatter.FormatCSV + ", " + formatter.FormatJSON + " or " + formatter.FormatStyled
}

// globalFlags are accepted by every command.
func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "Path to configuration file",
			Value:   "config.toml",
		},
		&cli.StringFlag{
			Name:  "log-level",
			Usage: "Log level (debug, info, warn, error)",
			Value: "info",
		},
		&cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"v"},
			Usage:   "Shorthand for --log-level debug",
		},
	}
}

// serveCommand starts the web application
func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Start the web server",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "host",
				Usage: "Interface to listen on (overrides server.host)",
			},
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Port to listen on (overrides server.port)",
			},
		},
		Action: r.Serve,
	}
}

// reportCommand runs a one-shot sign-in and report from the terminal
func reportCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "report",
		Usage: "Sign in through the browser and print the report summary",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   formatUsage(),
				Value:   formatter.FormatText,
			},
			&cli.BoolFlag{
				Name:  "save",
				Usage: "Record the summary in the report history",
			},
			&cli.BoolFlag{
				Name:  "no-browser",
				Usage: "Print the sign-in URL instead of opening a browser",
			},
		},
		Action: r.Report,
	}
}

// historyCommand reads recorded report snapshots
func historyCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "Inspect recorded report snapshots",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List snapshots, newest first",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of snapshots to list",
						Value: repositories.DefaultListLimit,
					},
					&cli.StringFlag{
						Name:  "property",
						Usage: "Only list snapshots for this property ID",
					},
					&cli.StringFlag{
						Name:  "source",
						Usage: "Only list snapshots from this source (web or cli)",
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.HistoryList,
			},
			{
				Name:  "show",
				Usage: "Show one snapshot",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "id",
					},
				},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Usage:   formatUsage(),
						Value:   formatter.FormatText,
					},
				},
				Action: r.HistoryShow,
			},
			{
				Name:  "delete",
				Usage: "Delete one snapshot",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "id",
					},
				},
				Action: r.HistoryDelete,
			},
		},
	}
}

// setupCommand scaffolds configuration and the history database
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Create a config file or initialize the database",
		Commands: []*cli.Command{
			{
				Name:  "config",
				Usage: "Write an example config file",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "path",
						Usage: "Where to write the file (defaults to --config)",
					},
				},
				Action: r.SetupConfig,
			},
			{
				Name:  "database",
				Usage: "Create the database and run migrations",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "rollback",
						Usage: "Roll back the most recent migration instead",
					},
				},
				Action: r.SetupDatabase,
			},
		},
	}
}
