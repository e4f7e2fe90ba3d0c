package config

import (
	"fmt"
	"os"
	"sync"
)

// Config holds all application configuration
type Config struct {
	// Discord configuration
	DiscordToken    string
	DiscordDevToken string

	// Database configuration
	DatabaseURL  string
	DatabaseName string

	// Feed sources
	TorrentIndexURL string
	MusicFeedURL    string

	// Environment: "development", "production" or "test"
	Environment string
}

var (
	instance *Config
	once     sync.Once
)

// Get returns the global configuration instance
func Get() *Config {
	once.Do(func() {
		var err error
		instance, err = load()
		if err != nil {
			panic(fmt.Sprintf("failed to load config: %v", err))
		}
	})
	return instance
}

// Token returns the credential set selected by the runtime mode.
func (c *Config) Token() string {
	if c.Environment == "development" && c.DiscordDevToken != "" {
		return c.DiscordDevToken
	}
	return c.DiscordToken
}

// load loads configuration from environment variables
func load() (*Config, error) {
	config := &Config{
		DiscordToken:    os.Getenv("DISCORD_TOKEN"),
		DiscordDevToken: os.Getenv("DISCORD_DEV_TOKEN"),

		DatabaseURL:  os.Getenv("DATABASE_URL"),
		DatabaseName: os.Getenv("DATABASE_NAME"),

		TorrentIndexURL: os.Getenv("TORRENT_INDEX_URL"),
		MusicFeedURL:    os.Getenv("MUSIC_FEED_URL"),

		Environment: os.Getenv("ENVIRONMENT"),
	}

	if config.TorrentIndexURL == "" {
		config.TorrentIndexURL = "https://nyaa.si/"
	}

	if config.Environment == "" {
		config.Environment = "development"
	}

	if config.Environment != "test" {
		if config.Token() == "" {
			return nil, fmt.Errorf("DISCORD_TOKEN is required")
		}
		if config.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required")
		}
		if config.MusicFeedURL == "" {
			return nil, fmt.Errorf("MUSIC_FEED_URL is required")
		}
	}

	return config, nil
}
