package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"
)

type EngineConfig struct {
	Host     string `json:"host"`
	Port     int    `json:"port"`
	Username string `json:"username"`
	Password string `json:"password"`
}

type BotConfig struct {
	Name  string `json:"name"`
	Owner string `json:"owner"`
}

type Config struct {
	Server struct {
		Host      string `json:"host"`
		Port      int    `json:"port"`
		JWTSecret string `json:"jwtSecret"`
	} `json:"server"`
	Postgres struct {
		DSN string `json:"dsn"`
	} `json:"postgres"`
	Redis struct {
		Addr     string `json:"addr"`
		Password string `json:"password"`
		DB       int    `json:"db"`
	} `json:"redis"`
	Engine EngineConfig `json:"engine"`
	Bot    BotConfig    `json:"bot"`
	Queue  struct {
		InputCapacity  int `json:"input_capacity"`  // 0 = unbounded
		OutputCapacity int `json:"output_capacity"` // 0 = unbounded
	} `json:"queue"`
	Cache struct {
		TTLSeconds int `json:"ttl_seconds"`
	} `json:"cache"`
}

var (
	once   sync.Once
	cfg    *Config
	cfgErr error
)

// LoadConfig reads config.json from disk (singleton)
func LoadConfig(path string) (*Config, error) {
	once.Do(func() {
		raw, err := os.ReadFile(path)
		if err != nil {
			cfgErr = fmt.Errorf("failed to read config file: %w", err)
			return
		}
		var c Config
		if err := json.Unmarshal(raw, &c); err != nil {
			cfgErr = fmt.Errorf("invalid config format: %w", err)
			return
		}
		// Minimal validation
		if c.Server.JWTSecret == "" {
			cfgErr = errors.New("jwtSecret must be set in config")
			return
		}
		if c.Bot.Name == "" {
			cfgErr = errors.New("bot name must be set in config")
			return
		}
		if c.Engine.Host == "" || c.Engine.Port == 0 {
			cfgErr = errors.New("engine host and port must be set in config")
			return
		}
		cfg = &c
	})
	return cfg, cfgErr
}

// GetConfig returns the loaded config (must call LoadConfig first)
func GetConfig() *Config {
	return cfg
}

// ResetConfigForTest resets the singleton state (for testing only)
func ResetConfigForTest() {
	once = sync.Once{}
	cfg = nil
	cfgErr = nil
}
