package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

type Config struct {
	LogLevel         string `json:"log_level"`
	DBPath           string `json:"db_path"`
	BotName          string `json:"bot_name"`
	Trigger          string `json:"trigger"`
	LeaderboardLimit int    `json:"leaderboard_limit"`
	AnnounceChannel  string `json:"announce_channel"`
	MaxConcurrent    int    `json:"max_concurrent"`
	Slack            struct {
		Token string `json:"token"`
	} `json:"slack"`
	Telegram struct {
		Token string `json:"token"`
	} `json:"telegram"`
	Digest struct {
		Schedule string `json:"schedule"`
		Channel  string `json:"channel"`
	} `json:"digest"`
}

func Load(path string) (*Config, error) {
	cfg := &Config{}
	cfg.LogLevel = "info"
	cfg.DBPath = filepath.Join("data", "wfh.db")
	cfg.BotName = "wfh"
	cfg.Trigger = "wfh"
	cfg.LeaderboardLimit = 10
	cfg.MaxConcurrent = 2

	// Load from file if exists, otherwise write defaults
	if _, err := os.Stat(path); err == nil {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, err
		}
	} else if os.IsNotExist(err) {
		if err := writeDefaults(path, cfg); err != nil {
			return nil, err
		}
	}

	// Override from env (highest precedence)
	if token := os.Getenv("BOT_API_KEY"); token != "" {
		cfg.Slack.Token = token
	}
	if dbPath := os.Getenv("BOT_DB_PATH"); dbPath != "" {
		cfg.DBPath = dbPath
	}
	if name := os.Getenv("BOT_NAME"); name != "" {
		cfg.BotName = name
	}
	if tgToken := os.Getenv("TELEGRAM_BOT_TOKEN"); tgToken != "" {
		cfg.Telegram.Token = tgToken
	}

	return cfg, nil
}

// Save writes the config atomically.
func Save(path string, cfg *Config) error {
	return writeDefaults(path, cfg)
}

func writeDefaults(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	data = append(data, '\n')
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename config: %w", err)
	}
	return nil
}
