package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds the application's configuration.
type Config struct {
	Database struct {
		URL string `yaml:"url"`
	} `yaml:"database"`
	Provider struct {
		URL            string `yaml:"url"`
		PollInterval   int64  `yaml:"poll_interval_seconds"`
		RequestTimeout int64  `yaml:"request_timeout_seconds"`
	} `yaml:"provider"`
	Scoring struct {
		// Risk breakpoints are deliberately configuration, not code: the
		// classification is >= at each boundary, checked HIGH to MEDIUM.
		MediumMin     float64 `yaml:"medium_min"`
		HighMin       float64 `yaml:"high_min"`
		LowRiskNotice string  `yaml:"low_risk_notice"`
	} `yaml:"scoring"`
	Alerting struct {
		Enabled          bool   `yaml:"enabled"`
		TelegramBotToken string `yaml:"telegram_bot_token"`
		TelegramChatID   int64  `yaml:"telegram_chat_id"`
		MinRiskLevel     string `yaml:"min_risk_level"`
	} `yaml:"alerting"`
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`
}

// LoadConfig reads configuration from the specified YAML file.
func LoadConfig(configPath string) (*Config, error) {
	config := &Config{}

	file, err := os.Open(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer file.Close()

	decoder := yaml.NewDecoder(file)
	if err := decoder.Decode(config); err != nil {
		return nil, fmt.Errorf("failed to decode config file: %w", err)
	}

	if err := config.validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func (c *Config) validate() error {
	if c.Scoring.MediumMin <= 0 || c.Scoring.HighMin <= 0 {
		return fmt.Errorf("scoring thresholds must be positive (medium_min=%v, high_min=%v)", c.Scoring.MediumMin, c.Scoring.HighMin)
	}
	if c.Scoring.HighMin <= c.Scoring.MediumMin {
		return fmt.Errorf("scoring.high_min (%v) must be above scoring.medium_min (%v)", c.Scoring.HighMin, c.Scoring.MediumMin)
	}
	if c.Scoring.LowRiskNotice == "" {
		return fmt.Errorf("scoring.low_risk_notice must be set")
	}
	return nil
}
