// Package config provides configuration loading, validation, and defaults
// for the agent. Configuration lives in a single JSON file (by default
// ~/.opennova/config.json) and is loaded once at startup; callers receive
// the config by value so external mutation cannot leak between components.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Provider name constants.
const (
	ProviderOllama    = "ollama"
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderGoogle    = "google"
)

// Default models per provider.
const (
	DefaultOllamaModel    = "llama3.2"
	DefaultOpenAIModel    = "gpt-4o"
	DefaultAnthropicModel = "claude-3-5-sonnet-20241022"
	DefaultGoogleModel    = "gemini-1.5-pro"
)

// Config file constants.
const (
	ConfigDirName  = ".opennova"
	ConfigFilename = "config.json"
	SchemaVersion  = "1.0"
)

// LLMConfig selects the language-model provider and model used for planning.
type LLMConfig struct {
	Provider string `json:"provider"` // ollama, openai, anthropic, google
	Model    string `json:"model"`
	APIKey   string `json:"api_key,omitempty"`
	BaseURL  string `json:"base_url,omitempty"` // Ollama server URL
}

// SafetyConfig controls the dangerous-plan confirmation protocol and the
// shell command blocklist.
type SafetyConfig struct {
	ConfirmationsRequired int      `json:"confirmations_required"`
	BlockedCommands       []string `json:"blocked_commands"`
}

// ExecutorConfig tunes plan execution pacing and shell timeouts.
type ExecutorConfig struct {
	StepDelayMS      int `json:"step_delay_ms"`
	ShellTimeoutSecs int `json:"shell_timeout_secs"`
}

// MemoryConfig controls the long-term memory store.
type MemoryConfig struct {
	Enabled bool   `json:"enabled"`
	DBPath  string `json:"db_path,omitempty"`
}

// SkillsConfig points at the optional skill manifest.
type SkillsConfig struct {
	ManifestPath string `json:"manifest_path,omitempty"`
}

// WatcherConfig enables the file-drop watcher.
type WatcherConfig struct {
	Enabled bool   `json:"enabled"`
	Path    string `json:"path,omitempty"`
}

// Config is the root configuration for the agent.
type Config struct {
	SchemaVersion string         `json:"schema_version"`
	LLM           LLMConfig      `json:"llm"`
	Safety        SafetyConfig   `json:"safety"`
	Executor      ExecutorConfig `json:"executor"`
	Memory        MemoryConfig   `json:"memory"`
	Skills        SkillsConfig   `json:"skills"`
	Watcher       WatcherConfig  `json:"watcher"`
}

// DefaultConfig returns the configuration used when no file exists yet.
func DefaultConfig() Config {
	return Config{
		SchemaVersion: SchemaVersion,
		LLM: LLMConfig{
			Provider: ProviderOllama,
			Model:    DefaultOllamaModel,
			BaseURL:  "http://localhost:11434",
		},
		Safety: SafetyConfig{
			ConfirmationsRequired: 3,
			BlockedCommands: []string{
				"format",
				"rm -rf /",
				"del /f /s /q c:\\",
				"format-volume",
			},
		},
		Executor: ExecutorConfig{
			StepDelayMS:      500,
			ShellTimeoutSecs: 30,
		},
		Memory: MemoryConfig{
			Enabled: true,
		},
		Skills:  SkillsConfig{},
		Watcher: WatcherConfig{},
	}
}

// DefaultPath returns the default config file location under the user's
// home directory.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}
	return filepath.Join(home, ConfigDirName, ConfigFilename), nil
}

// Load reads the config file at path, creating it with defaults when it does
// not exist. Fields absent from the file keep their default values.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			if saveErr := Save(path, &cfg); saveErr != nil {
				return Config{}, fmt.Errorf("failed to write default config: %w", saveErr)
			}
			return cfg, nil
		}
		return Config{}, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config in %s: %w", path, err)
	}

	return cfg, nil
}

// Save writes the config atomically (temp file plus rename) so a crash mid
// write cannot leave a truncated config behind.
func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write temp config: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to replace config file: %w", err)
	}

	return nil
}

// Validate checks invariants the rest of the system relies on.
func (c *Config) Validate() error {
	switch c.LLM.Provider {
	case ProviderOllama, ProviderOpenAI, ProviderAnthropic, ProviderGoogle:
	default:
		return fmt.Errorf("unknown llm provider: %s", c.LLM.Provider)
	}

	if c.Safety.ConfirmationsRequired < 1 {
		return fmt.Errorf("confirmations_required must be at least 1, got %d", c.Safety.ConfirmationsRequired)
	}

	if c.Executor.StepDelayMS < 0 {
		return fmt.Errorf("step_delay_ms cannot be negative")
	}
	if c.Executor.ShellTimeoutSecs <= 0 {
		return fmt.Errorf("shell_timeout_secs must be positive")
	}

	return nil
}

// GetAPIKey resolves the API key for the configured provider, preferring the
// config file entry and falling back to the conventional environment variable.
func (c *Config) GetAPIKey() (string, error) {
	if c.LLM.APIKey != "" {
		return c.LLM.APIKey, nil
	}

	var envVar string
	switch c.LLM.Provider {
	case ProviderOllama:
		return "", nil // Local runtime, no key needed
	case ProviderOpenAI:
		envVar = "OPENAI_API_KEY"
	case ProviderAnthropic:
		envVar = "ANTHROPIC_API_KEY"
	case ProviderGoogle:
		envVar = "GEMINI_API_KEY"
	default:
		return "", fmt.Errorf("unknown provider: %s", c.LLM.Provider)
	}

	if key := os.Getenv(envVar); key != "" {
		return key, nil
	}
	return "", fmt.Errorf("no API key for provider %s: set %s or llm.api_key in config", c.LLM.Provider, envVar)
}

// DefaultModel returns the fallback model name for the configured provider.
func (c *Config) DefaultModel() string {
	switch c.LLM.Provider {
	case ProviderOpenAI:
		return DefaultOpenAIModel
	case ProviderAnthropic:
		return DefaultAnthropicModel
	case ProviderGoogle:
		return DefaultGoogleModel
	default:
		return DefaultOllamaModel
	}
}
