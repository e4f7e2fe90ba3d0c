package cmd

import (
	"fmt"
	"time"

	"feedbot/bot"
	"feedbot/config"
	"feedbot/database"
	"feedbot/feed"

	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

func serveCmd() *cli.Command {
	return &cli.Command{
		Name:        "serve",
		Usage:       "Run the bot",
		Description: `Connects to Discord and the database and runs the feed schedulers until interrupted.`,
		Action: func(cliCtx *cli.Context) error {
			ctx := cliCtx.Context

			log.Info("Starting feedbot...")
			cfg := config.Get()

			log.Info("Connecting to database...")
			db, err := database.NewConnection(ctx, cfg.DatabaseURL)
			if err != nil {
				return fmt.Errorf("failed to connect to database: %w", err)
			}

			torrent := feed.NewNyaaProvider(cfg.TorrentIndexURL)
			music := feed.NewMusicProvider(cfg.MusicFeedURL)

			log.Info("Initializing Discord bot...")
			discordBot, err := bot.New(ctx, bot.Config{Token: cfg.Token()}, db, torrent, music)
			if err != nil {
				db.Close()
				return fmt.Errorf("failed to initialize Discord bot: %w", err)
			}

			log.Infof("Bot is running in %s mode...", cfg.Environment)
			<-ctx.Done()

			log.Info("Shutting down bot...")
			if err := discordBot.Close(); err != nil {
				log.Errorf("Error closing Discord bot: %v", err)
			}

			log.Info("Closing database connection...")
			db.Close()

			// Give in-flight poll cycles a moment to finish logging.
			time.Sleep(1 * time.Second)
			log.Info("Shutdown completed")

			return nil
		},
	}
}
