package tradecore

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/starlitcards/trade-core/tradecore/database"
)

func LoadConfig(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config: %w", err)
	}
	defer file.Close()

	var cfg Config
	if err = toml.NewDecoder(file).Decode(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type Config struct {
	Log     LogConfig         `toml:"log"`
	Server  ServerConfig      `toml:"server"`
	DB      database.DBConfig `toml:"db"`
	Trading TradingConfig     `toml:"trading"`
}

type LogConfig struct {
	Level slog.Level `toml:"level"`
}

type ServerConfig struct {
	Addr string `toml:"addr"`
}

type TradingConfig struct {
	ConfirmationWindowHours int `toml:"confirmation_window_hours"`
	MaxActiveTradesPerPair  int `toml:"max_active_trades_per_pair"`
	// SweepIntervalMinutes enables the optional expiry sweeper when > 0.
	SweepIntervalMinutes int `toml:"sweep_interval_minutes"`
}
