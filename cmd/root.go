package cmd

import (
	"github.com/urfave/cli/v2"
)

func RootApp() *cli.App {
	return &cli.App{
		Name:  "feedbot",
		Usage: "A Discord bot that watches release feeds",
		Description: `A Discord bot that polls a torrent index and a music
		tracker feed, deduplicates new entries against its database and
		posts them as embeds into per-guild channels.

		Configuration is read from environment variables:

		DISCORD_TOKEN      => bot token (DISCORD_DEV_TOKEN in development)
		DATABASE_URL       => PostgreSQL connection string
		TORRENT_INDEX_URL  => torrent index base URL (default https://nyaa.si/)
		MUSIC_FEED_URL     => pre-authenticated music tracker feed URL
		ENVIRONMENT        => development, production or test
		`,
		Commands: []*cli.Command{
			serveCmd(),
			migrateCmd(),
		},
		Action: func(ctx *cli.Context) error {
			// Show help if no command is specified
			return ctx.App.Run([]string{"", "help"})
		},
	}
}
