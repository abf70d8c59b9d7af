package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the application configuration. Values come from an optional
// config file plus BOOKBID_* environment overrides, with defaults that
// match the marketplace's published rules (2 minute anti-snipe window,
// 3% escrow fee, 7 day buyer protection).
type Config struct {
	Port             string        `mapstructure:"port"`
	AntiSnipeWindow  time.Duration `mapstructure:"anti_snipe_window"`
	MaxExtensions    int           `mapstructure:"max_extensions"` // 0 = unlimited
	EscrowFeeBps     int64         `mapstructure:"escrow_fee_bps"`
	ProtectionWindow time.Duration `mapstructure:"protection_window"`
	SweepInterval    time.Duration `mapstructure:"sweep_interval"`
}

// Load reads configuration from the given file path (optional, empty
// string skips the file) and the environment.
func Load(path string) (Config, error) {
	v := viper.New()

	v.SetDefault("port", ":8080")
	v.SetDefault("anti_snipe_window", 2*time.Minute)
	v.SetDefault("max_extensions", 0)
	v.SetDefault("escrow_fee_bps", 300)
	v.SetDefault("protection_window", 7*24*time.Hour)
	v.SetDefault("sweep_interval", 5*time.Second)

	v.SetEnvPrefix("BOOKBID")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("config: failed to read %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: failed to unmarshal: %w", err)
	}
	if cfg.EscrowFeeBps < 0 || cfg.EscrowFeeBps > 10000 {
		return Config{}, fmt.Errorf("config: escrow_fee_bps must be within [0, 10000], got %d", cfg.EscrowFeeBps)
	}
	return cfg, nil
}
