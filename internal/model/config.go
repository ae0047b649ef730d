package model

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// SMTPConfig holds the outbound mail server settings. The account
// password is never stored here; it comes from the environment or the
// system keyring.
type SMTPConfig struct {
	Host     string `mapstructure:"host" yaml:"host"`
	Port     int    `mapstructure:"port" yaml:"port"`
	Sender   string `mapstructure:"sender" yaml:"sender"`
	Username string `mapstructure:"username" yaml:"username"`
}

// Address returns the host:port dial address for the SMTP server.
func (c SMTPConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Configured reports whether the minimum SMTP settings are present.
func (c SMTPConfig) Configured() bool {
	return c.Host != "" && c.Sender != ""
}

// SentCopyConfig controls the optional IMAP copy of delivered mail into
// the account's Sent mailbox.
type SentCopyConfig struct {
	Enabled  bool   `mapstructure:"enabled" yaml:"enabled"`
	Host     string `mapstructure:"host" yaml:"host"`
	Port     int    `mapstructure:"port" yaml:"port"`
	Mailbox  string `mapstructure:"mailbox" yaml:"mailbox"`
	Username string `mapstructure:"username" yaml:"username"`
}

// AIConfig holds settings for the draft synthesis model.
type AIConfig struct {
	Model     string `mapstructure:"model" yaml:"model"`
	MaxTokens int    `mapstructure:"max_tokens" yaml:"max_tokens"`
}

// HistoryConfig holds settings for the local send-history database.
type HistoryConfig struct {
	DBPath string `mapstructure:"db_path" yaml:"db_path"`
}

// AppConfig is the top-level application configuration.
type AppConfig struct {
	SMTP     SMTPConfig     `mapstructure:"smtp" yaml:"smtp"`
	SentCopy SentCopyConfig `mapstructure:"sentcopy" yaml:"sentcopy"`
	AI       AIConfig       `mapstructure:"ai" yaml:"ai"`
	History  HistoryConfig  `mapstructure:"history" yaml:"history"`
}

// configDir returns the application configuration directory,
// ~/.config/email-assistant, falling back to the working directory.
func configDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config", "email-assistant")
}

// DefaultConfigPath returns the default path for the configuration
// file, located at ~/.config/email-assistant/config.yaml.
func DefaultConfigPath() string {
	return filepath.Join(configDir(), "config.yaml")
}

// defaultAppConfig returns a sensible default configuration.
func defaultAppConfig() *AppConfig {
	return &AppConfig{
		SMTP: SMTPConfig{
			Host: "smtp.gmail.com",
			Port: 587,
		},
		SentCopy: SentCopyConfig{
			Port:    993,
			Mailbox: "Sent",
		},
		AI: AIConfig{
			Model:     "claude-sonnet-4-20250514",
			MaxTokens: 1024,
		},
		History: HistoryConfig{
			DBPath: filepath.Join(configDir(), "history.db"),
		},
	}
}

// LoadConfig reads configuration from the given YAML file path using
// Viper. If the file does not exist, it returns a default
// configuration so that first-run setup can fill it in.
func LoadConfig(path string) (*AppConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	// Set defaults so missing keys resolve to sensible values.
	v.SetDefault("smtp.host", "smtp.gmail.com")
	v.SetDefault("smtp.port", 587)
	v.SetDefault("sentcopy.port", 993)
	v.SetDefault("sentcopy.mailbox", "Sent")
	v.SetDefault("ai.model", "claude-sonnet-4-20250514")
	v.SetDefault("ai.max_tokens", 1024)
	v.SetDefault("history.db_path", filepath.Join(configDir(), "history.db"))

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(*os.PathError); ok {
			return defaultAppConfig(), nil
		}
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return defaultAppConfig(), nil
		}
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	cfg := defaultAppConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	return cfg, nil
}

// SaveConfig writes the given configuration to a YAML file at path,
// creating parent directories if needed.
func SaveConfig(path string, cfg *AppConfig) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.Set("smtp", cfg.SMTP)
	v.Set("sentcopy", cfg.SentCopy)
	v.Set("ai", cfg.AI)
	v.Set("history", cfg.History)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}

	return nil
}
