package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Telegram   TelegramConfig   `mapstructure:"telegram"`
	Moderation ModerationConfig `mapstructure:"moderation"`
	History    HistoryConfig    `mapstructure:"history"`
	Logging    LoggingConfig    `mapstructure:"logging"`
}

type TelegramConfig struct {
	BotToken       string `mapstructure:"bot_token"`
	AdminUsername  string `mapstructure:"admin_username"`
	PollingTimeout int    `mapstructure:"polling_timeout"`
}

type ModerationConfig struct {
	// GracePeriod suspends auto-approval for this long after start.
	GracePeriod time.Duration `mapstructure:"grace_period"`

	// AdDeleteDelayMinutes is the lifetime of a posted ad, in whole
	// minutes.
	AdDeleteDelayMinutes int `mapstructure:"ad_delete_delay_minutes"`
}

type HistoryConfig struct {
	// DBPath is the sqlite file for the approval audit log. Empty
	// disables the log.
	DBPath string `mapstructure:"db_path"`
}

type LoggingConfig struct {
	Level      string `mapstructure:"level"`
	JSONFormat bool   `mapstructure:"json_format"`
}

// AdDeleteDelay returns the configured ad lifetime as a duration.
func (c ModerationConfig) AdDeleteDelay() time.Duration {
	return time.Duration(c.AdDeleteDelayMinutes) * time.Minute
}

func Load() (*Config, error) {
	v := viper.New()

	// Set defaults
	v.SetDefault("telegram.polling_timeout", 60)
	v.SetDefault("moderation.grace_period", "60s")
	v.SetDefault("moderation.ad_delete_delay_minutes", 15)
	v.SetDefault("history.db_path", "")
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.json_format", false)

	// Config file locations
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")
	v.AddConfigPath("/etc/gatekeeper-tg-bot")

	// Environment variables
	v.SetEnvPrefix("GATEKEEPER_BOT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config: %w", err)
		}
		// Config file not found is OK, use env vars and defaults
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.Telegram.BotToken == "" {
		return fmt.Errorf("telegram.bot_token is required")
	}
	if c.Telegram.AdminUsername == "" {
		return fmt.Errorf("telegram.admin_username is required")
	}
	if c.Moderation.GracePeriod < 0 {
		return fmt.Errorf("moderation.grace_period must not be negative")
	}
	if c.Moderation.AdDeleteDelayMinutes < 1 {
		return fmt.Errorf("moderation.ad_delete_delay_minutes must be at least 1")
	}
	return nil
}
