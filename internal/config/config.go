// Package config provides configuration loading and structs for the rentassist server.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application.
type Config struct {
	Debug        bool               `yaml:"debug"`
	Server       ServerConfig       `yaml:"server"`
	Storage      StorageConfig      `yaml:"storage"`
	Lexicon      LexiconConfig      `yaml:"lexicon"`
	Search       SearchConfig       `yaml:"search"`
	Recommend    RecommendConfig    `yaml:"recommend"`
	Chat         ChatConfig         `yaml:"chat"`
	Conversation ConversationConfig `yaml:"conversation"`
	Generation   GenerationConfig   `yaml:"generation"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// StorageConfig holds paths for the catalog database and the term index.
// An empty BleveIndexPath disables spelling hints. When InboxDir is set, the
// server imports catalog files dropped into it.
type StorageConfig struct {
	DatabasePath   string `yaml:"database_path"`
	BleveIndexPath string `yaml:"bleve_index_path"`
	InboxDir       string `yaml:"inbox_dir"`
}

// LexiconConfig points at the keyword tables used by the intent parser.
// An empty TablesPath uses the built-in tables.
type LexiconConfig struct {
	TablesPath string `yaml:"tables_path"`
	Watch      *bool  `yaml:"watch"`
}

// WatchOrDefault returns whether to reload the tables file on change;
// defaults to true when unset.
func (l *LexiconConfig) WatchOrDefault() bool {
	if l.Watch != nil {
		return *l.Watch
	}
	return true
}

// SearchConfig holds catalog search settings.
type SearchConfig struct {
	DefaultLimit     int  `yaml:"default_limit"`
	MaxLimit         int  `yaml:"max_limit"`
	CandidatePool    int  `yaml:"candidate_pool"`
	DefaultSortLimit int  `yaml:"default_sort_limit"`
	SpellingHints    bool `yaml:"spelling_hints"`
}

// RecommendConfig holds recommendation settings.
type RecommendConfig struct {
	DefaultLimit int `yaml:"default_limit"`
	MaxLimit     int `yaml:"max_limit"`
	SourceLimit  int `yaml:"source_limit"`
}

// ChatConfig holds conversation engine settings.
type ChatConfig struct {
	HistoryTurns        int `yaml:"history_turns"`
	FallbackSuggestions int `yaml:"fallback_suggestions"`
	MaxMessageLength    int `yaml:"max_message_length"`
}

// ConversationConfig selects the conversation store. An empty RedisAddr uses
// the in-memory store.
type ConversationConfig struct {
	RedisAddr     string `yaml:"redis_addr"`
	RedisPassword string `yaml:"redis_password"`
	RedisDB       int    `yaml:"redis_db"`
	TTLHours      int    `yaml:"ttl_hours"`
	MaxTurns      int    `yaml:"max_turns"`
}

// TTL returns the session expiry as a duration.
func (c ConversationConfig) TTL() time.Duration {
	return time.Duration(c.TTLHours) * time.Hour
}

// GenerationConfig holds the text generation client settings. When no API key
// is configured, a deterministic mock generator is used.
type GenerationConfig struct {
	BaseURL        string  `yaml:"base_url"`
	APIKey         string  `yaml:"api_key"`
	APIKeyEnv      string  `yaml:"api_key_env"`
	Model          string  `yaml:"model"`
	Temperature    float64 `yaml:"temperature"`
	TimeoutSeconds int     `yaml:"timeout_seconds"`
}

// ResolveAPIKey returns APIKey, or the value of the APIKeyEnv variable.
func (g GenerationConfig) ResolveAPIKey() string {
	if g.APIKey != "" {
		return g.APIKey
	}
	if g.APIKeyEnv != "" {
		return os.Getenv(g.APIKeyEnv)
	}
	return ""
}

// Timeout returns the request timeout as a duration.
func (g GenerationConfig) Timeout() time.Duration {
	return time.Duration(g.TimeoutSeconds) * time.Second
}

// Load reads and parses the config file at path, expands paths, and applies defaults.
// Returns an error if the file cannot be read or parsed.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	ApplyDefaults(&cfg)

	configDir := filepath.Dir(path)
	cfg.Storage.DatabasePath = expandPath(cfg.Storage.DatabasePath, configDir)
	cfg.Storage.BleveIndexPath = expandPath(cfg.Storage.BleveIndexPath, configDir)
	cfg.Storage.InboxDir = expandPath(cfg.Storage.InboxDir, configDir)
	cfg.Lexicon.TablesPath = expandPath(cfg.Lexicon.TablesPath, configDir)

	return &cfg, nil
}

// Save writes the config to path.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// expandPath converts a path to absolute. Paths starting with "./" are relative to configDir;
// other relative paths are relative to the home directory. Empty paths and
// ":memory:" are returned unchanged.
func expandPath(path string, configDir string) string {
	if path == "" || path == ":memory:" || filepath.IsAbs(path) {
		return path
	}
	if strings.HasPrefix(path, "./") || path == "." {
		return filepath.Join(configDir, path)
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, path)
	}
	return path
}
