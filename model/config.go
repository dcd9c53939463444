package model

import (
	"log/slog"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v2"
)

type DelayRange struct {
	Min time.Duration `yaml:"min"`
	Max time.Duration `yaml:"max"`
}

type Config struct {
	Server struct {
		HTTP struct {
			Host string `yaml:"host"`
			Port int    `yaml:"port"`
		} `yaml:"http"`
		Authentication struct {
			Enable bool   `yaml:"enable"`
			Secret string `yaml:"secret"`
		} `yaml:"authentication"`
		ShutdownGrace time.Duration `yaml:"shutdown_grace"`
	} `yaml:"server"`
	Log struct {
		Level string `yaml:"level"`
	} `yaml:"log"`
	Game struct {
		ChatDuration       time.Duration `yaml:"chat_duration"`
		VoteDuration       time.Duration `yaml:"vote_duration"`
		RevealDuration     time.Duration `yaml:"reveal_duration"`
		TickInterval       time.Duration `yaml:"tick_interval"`
		MaxRounds          int           `yaml:"max_rounds"`
		AutoStartVote      bool          `yaml:"auto_start_vote"`
		AllowVoteChange    bool          `yaml:"allow_vote_change"`
		ClearChatEachRound bool          `yaml:"clear_chat_each_round"`
		MaxMessageLength   int           `yaml:"max_message_length"`
		SessionTTL         time.Duration `yaml:"session_ttl"`
		MaxSessions        int           `yaml:"max_sessions"`
		Elimination        struct {
			Rule      string  `yaml:"rule"`
			Threshold int     `yaml:"threshold"`
			Quorum    float64 `yaml:"quorum"`
		} `yaml:"elimination"`
		NPC struct {
			Seed             int64      `yaml:"seed"`
			Chat             bool       `yaml:"chat"`
			NoticeDelay      DelayRange `yaml:"notice_delay"`
			ComposeDelay     DelayRange `yaml:"compose_delay"`
			VoteDelay        DelayRange `yaml:"vote_delay"`
			SkipChance       float64    `yaml:"skip_chance"`
			GutFeelingChance float64    `yaml:"gut_feeling_chance"`
			VoteFallback     string     `yaml:"vote_fallback"`
		} `yaml:"npc"`
		Timeout struct {
			ChatReply    time.Duration `yaml:"chat_reply"`
			VoteDecision time.Duration `yaml:"vote_decision"`
		} `yaml:"timeout"`
	} `yaml:"game"`
	Gateway struct {
		Provider       string        `yaml:"provider"`
		Model          string        `yaml:"model"`
		FallbackModels []string      `yaml:"fallback_models"`
		BaseURL        string        `yaml:"base_url"`
		APIKeyEnv      string        `yaml:"api_key_env"`
		Temperature    float64       `yaml:"temperature"`
		MaxTokens      int           `yaml:"max_tokens"`
		Timeout        time.Duration `yaml:"timeout"`
	} `yaml:"gateway"`
	JSONLogger struct {
		Enable    bool   `yaml:"enable"`
		OutputDir string `yaml:"output_dir"`
		Filename  string `yaml:"filename"`
	} `yaml:"json_logger"`
	GameLogger struct {
		Enable    bool   `yaml:"enable"`
		OutputDir string `yaml:"output_dir"`
		Filename  string `yaml:"filename"`
	} `yaml:"game_logger"`
	RealtimeBroadcaster RealtimeBroadcasterConfig `yaml:"realtime_broadcaster"`
}

type RealtimeBroadcasterConfig struct {
	Enable    bool   `yaml:"enable"`
	OutputDir string `yaml:"output_dir"`
	Filename  string `yaml:"filename"`
}

func DefaultConfig() Config {
	var config Config
	config.Server.HTTP.Host = "127.0.0.1"
	config.Server.HTTP.Port = 8080
	config.Server.ShutdownGrace = 30 * time.Second
	config.Log.Level = "info"
	config.Game.ChatDuration = 360 * time.Second
	config.Game.VoteDuration = 60 * time.Second
	config.Game.RevealDuration = 5 * time.Second
	config.Game.TickInterval = time.Second
	config.Game.MaxRounds = 5
	config.Game.AllowVoteChange = true
	config.Game.MaxMessageLength = 280
	config.Game.SessionTTL = 30 * time.Minute
	config.Game.MaxSessions = 100
	config.Game.Elimination.Rule = string(RULE_THRESHOLD)
	config.Game.Elimination.Threshold = 3
	config.Game.Elimination.Quorum = 0.5
	config.Game.NPC.Seed = -1
	config.Game.NPC.Chat = true
	config.Game.NPC.NoticeDelay = DelayRange{Min: 500 * time.Millisecond, Max: 2 * time.Second}
	config.Game.NPC.ComposeDelay = DelayRange{Min: time.Second, Max: 3 * time.Second}
	config.Game.NPC.VoteDelay = DelayRange{Min: 2 * time.Second, Max: 15 * time.Second}
	config.Game.NPC.GutFeelingChance = 0.2
	config.Game.NPC.VoteFallback = string(FALLBACK_RANDOM)
	config.Game.Timeout.ChatReply = 10 * time.Second
	config.Game.Timeout.VoteDecision = 10 * time.Second
	config.Gateway.Provider = "canned"
	config.Gateway.Temperature = 0.7
	config.Gateway.MaxTokens = 120
	config.Gateway.Timeout = 10 * time.Second
	config.JSONLogger.OutputDir = "./log/json"
	config.JSONLogger.Filename = "{game_id}"
	config.GameLogger.OutputDir = "./log/game"
	config.GameLogger.Filename = "{game_id}"
	config.RealtimeBroadcaster.OutputDir = "./log/realtime"
	config.RealtimeBroadcaster.Filename = "{game_id}"
	return config
}

// LoadFromPath reads a YAML file over the defaults and applies environment overrides.
func LoadFromPath(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		slog.Error("failed to read config file", "path", path, "error", err)
		return nil, err
	}
	config := DefaultConfig()
	if err := yaml.Unmarshal(data, &config); err != nil {
		slog.Error("failed to parse config file", "path", path, "error", err)
		return nil, err
	}
	config.ApplyEnv()
	return &config, nil
}

func (c *Config) ApplyEnv() {
	if secret, ok := os.LookupEnv("SECRET_KEY"); ok && secret != "" {
		c.Server.Authentication.Secret = secret
	}
	if port, ok := os.LookupEnv("PORT"); ok {
		if value, err := strconv.Atoi(port); err == nil {
			c.Server.HTTP.Port = value
		} else {
			slog.Warn("ignoring invalid PORT", "value", port)
		}
	}
	if provider, ok := os.LookupEnv("AI_PROVIDER"); ok && provider != "" {
		c.Gateway.Provider = provider
	}
	if model, ok := os.LookupEnv("AI_MODEL"); ok && model != "" {
		c.Gateway.Model = model
	}
}

func (c Config) GatewayAPIKey() string {
	if c.Gateway.APIKeyEnv == "" {
		return ""
	}
	return os.Getenv(c.Gateway.APIKeyEnv)
}

func (c Config) LogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return slog.LevelInfo
	}
	return level
}
