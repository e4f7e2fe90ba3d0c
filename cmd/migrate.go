package cmd

import (
	"fmt"

	"feedbot/database"

	"github.com/urfave/cli/v2"
)

func migrateCmd() *cli.Command {
	return &cli.Command{
		Name:        "migrate",
		Usage:       "Run database migrations",
		Description: `Runs schema migrations against the database named by DATABASE_URL.`,
		Subcommands: []*cli.Command{
			{
				Name:  "up",
				Usage: "Apply all pending migrations",
				Action: func(ctx *cli.Context) error {
					return database.MigrateUp()
				},
			},
			{
				Name:      "down",
				Usage:     "Roll back migrations",
				ArgsUsage: "[steps]",
				Action: func(ctx *cli.Context) error {
					steps := "1"
					if ctx.Args().Present() {
						steps = ctx.Args().First()
					}
					return database.MigrateDown(steps)
				},
			},
			{
				Name:  "status",
				Usage: "Show the current migration version",
				Action: func(ctx *cli.Context) error {
					return database.MigrateStatus()
				},
			},
		},
		Action: func(ctx *cli.Context) error {
			return fmt.Errorf("usage: feedbot migrate [up|down|status]")
		},
	}
}
