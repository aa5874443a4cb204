package main

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config is the CLI configuration, loaded from YAML with environment
// overrides on top.
type Config struct {
	API struct {
		BaseURL     string `yaml:"base_url"`
		Key         string `yaml:"key"`
		WaitSeconds int    `yaml:"wait_seconds"`
	} `yaml:"api"`
	Player struct {
		ID           string `yaml:"id"`
		SourceAgent  string `yaml:"source_agent"`
		OpponentMode string `yaml:"opponent_mode"`
	} `yaml:"player"`
	Feed struct {
		URL string `yaml:"url"`
	} `yaml:"feed"`
	Archive struct {
		Path string `yaml:"path"`
	} `yaml:"archive"`
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func loadConfig(path string) (*Config, error) {
	var config Config

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	config.API.BaseURL = getEnv("LEAGUE_API_URL", config.API.BaseURL)
	config.API.Key = getEnv("LEAGUE_API_KEY", config.API.Key)
	config.API.WaitSeconds = getEnvAsInt("LEAGUE_WAIT_SECONDS", config.API.WaitSeconds)
	config.Player.ID = getEnv("LEAGUE_PLAYER_ID", config.Player.ID)
	config.Player.SourceAgent = getEnv("LEAGUE_SOURCE_AGENT", config.Player.SourceAgent)
	config.Player.OpponentMode = getEnv("LEAGUE_OPPONENT_MODE", config.Player.OpponentMode)
	config.Feed.URL = getEnv("LEAGUE_FEED_URL", config.Feed.URL)
	config.Archive.Path = getEnv("LEAGUE_ARCHIVE_PATH", config.Archive.Path)

	if config.API.BaseURL == "" {
		return nil, fmt.Errorf("api base URL is required (LEAGUE_API_URL or config file)")
	}
	if config.Player.ID == "" {
		return nil, fmt.Errorf("player id is required (LEAGUE_PLAYER_ID or config file)")
	}
	if config.API.WaitSeconds <= 0 {
		config.API.WaitSeconds = 25
	}
	if config.Player.OpponentMode == "" {
		config.Player.OpponentMode = "agent"
	}
	if config.Archive.Path == "" {
		config.Archive.Path = "agentleague-archive.db"
	}

	return &config, nil
}
