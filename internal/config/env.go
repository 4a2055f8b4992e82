package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// DefaultAddr is the listen address used when WPMHERO_ADDR is unset.
const DefaultAddr = ":8043"

// ServerConfig holds settings for the serve and worker commands.
type ServerConfig struct {
	Addr     string
	DBPath   string
	RedisURL string
	Queue    string
}

// UseQueue reports whether results should go through the job queue.
func (c ServerConfig) UseQueue() bool {
	return c.RedisURL != "" && c.Queue != ""
}

// LoadServerEnv loads envFile when present and reads the server settings
// from the environment. Variables already set take precedence over the file.
func LoadServerEnv(envFile string) (ServerConfig, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !os.IsNotExist(err) {
			return ServerConfig{}, fmt.Errorf("failed to load %s: %w", envFile, err)
		}
	}
	cfg := ServerConfig{
		Addr:     os.Getenv("WPMHERO_ADDR"),
		DBPath:   os.Getenv("WPMHERO_DB"),
		RedisURL: os.Getenv("REDIS_URL"),
		Queue:    os.Getenv("WPMHERO_QUEUE"),
	}
	if cfg.Addr == "" {
		cfg.Addr = DefaultAddr
	}
	if cfg.DBPath == "" {
		cfg.DBPath = DefaultDBPath()
	}
	return cfg, nil
}
