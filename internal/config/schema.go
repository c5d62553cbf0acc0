package config

import (
	"path/filepath"
	"time"
)

// Config is the root configuration for papibot.
type Config struct {
	Bot       BotConfig       `json:"bot"`
	Telegram  TelegramConfig  `json:"telegram"`
	Limits    LimitsConfig    `json:"limits"`
	Detection DetectionConfig `json:"detection"`
	Runtime   RuntimeConfig   `json:"runtime"`
}

// BotConfig identifies the bot and its target conversation.
type BotConfig struct {
	// SelfToken is the identifier every outgoing reply must contain.
	SelfToken string `json:"selfToken"`
	// TargetGroupID is the monitored conversation. Empty means the identity
	// resolver bootstraps it from the first matching group message.
	TargetGroupID string `json:"targetGroupId"`
	// TargetGroupNames are the display-name fragments the identity resolver
	// matches while TargetGroupID is unset.
	TargetGroupNames []string `json:"targetGroupNames"`
}

// TelegramConfig holds the chat transport credentials.
type TelegramConfig struct {
	Token string `json:"token"`
}

// LimitsConfig holds the rate-limiter settings. The defaults are empirically
// chosen, not derived; they are configuration precisely so they can be tuned.
type LimitsConfig struct {
	MinIntervalMs int `json:"minIntervalMs"`
	MaxPerMinute  int `json:"maxPerMinute"`
}

// DetectionConfig holds the classifier thresholds.
type DetectionConfig struct {
	MatchThreshold    int     `json:"matchThreshold"`
	ConfidenceDivisor float64 `json:"confidenceDivisor"`
	// HighConfidence is the confidence above which replies get the excited
	// treatment.
	HighConfidence float64 `json:"highConfidence"`
}

// RuntimeConfig holds supervisor and connection settings.
type RuntimeConfig struct {
	ConnectTimeoutSec int    `json:"connectTimeoutSec"`
	ReconnectDelaySec int    `json:"reconnectDelaySec"`
	MaxRestarts       int    `json:"maxRestarts"`
	RestartDelaySec   int    `json:"restartDelaySec"`
	StatusIntervalSec int    `json:"statusIntervalSec"`
	JournalPath       string `json:"journalPath"`
}

// DefaultConfig returns a new Config with the defaults the original
// deployment ran with.
func DefaultConfig() *Config {
	return &Config{
		Bot: BotConfig{
			SelfToken: "papibot",
			TargetGroupNames: []string{
				"comerciante verificado p2p",
				"p2p comerciante verificado",
				"comerciante p2p",
			},
		},
		Limits: LimitsConfig{
			MinIntervalMs: 2000,
			MaxPerMinute:  15,
		},
		Detection: DetectionConfig{
			MatchThreshold:    2,
			ConfidenceDivisor: 3,
			HighConfidence:    0.8,
		},
		Runtime: RuntimeConfig{
			ConnectTimeoutSec: 60,
			ReconnectDelaySec: 3,
			MaxRestarts:       5,
			RestartDelaySec:   30,
			StatusIntervalSec: 60,
			JournalPath:       filepath.Join(GetConfigDir(), "journal.db"),
		},
	}
}

// MinInterval returns the minimum interval between sends as a duration.
func (c *Config) MinInterval() time.Duration {
	return time.Duration(c.Limits.MinIntervalMs) * time.Millisecond
}

// ConnectTimeout returns how long to wait for the connection to open.
func (c *Config) ConnectTimeout() time.Duration {
	return time.Duration(c.Runtime.ConnectTimeoutSec) * time.Second
}

// ReconnectDelay returns the fixed delay before a reconnect attempt.
func (c *Config) ReconnectDelay() time.Duration {
	return time.Duration(c.Runtime.ReconnectDelaySec) * time.Second
}

// RestartDelay returns the pause between supervisor restarts.
func (c *Config) RestartDelay() time.Duration {
	return time.Duration(c.Runtime.RestartDelaySec) * time.Second
}

// StatusInterval returns how often the orchestrator logs a status line.
func (c *Config) StatusInterval() time.Duration {
	return time.Duration(c.Runtime.StatusIntervalSec) * time.Second
}
