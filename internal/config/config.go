package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Config represents runtime configuration for the service.
type Config struct {
	BasicConfig BasicConfig               `json:"basic_config"`
	Providers   map[string]ProviderConfig `json:"providers"`
	Gateway     GatewayConfig             `json:"gateway"`
}

type ProviderConfig struct {
	BaseURL string `json:"base_url"`
	Model   string `json:"model"`
	APIKey  string `json:"api_key"`
}

type BasicConfig struct {
	ServerAddress     string `json:"server_address"`
	FileBaseDir       string `json:"file_base_dir"`
	TempFileTTL       int    `json:"temp_file_ttl"`       // minutes
	TempCleanInterval int    `json:"temp_clean_interval"` // minutes
}

// GatewayConfig names the two model tiers: every question goes to Primary
// first, Fallback is tried once when the primary attempt fails.
type GatewayConfig struct {
	Primary  ModelTier `json:"primary"`
	Fallback ModelTier `json:"fallback"`
}

// ModelTier is one model endpoint plus its generation parameters and
// context-window budgets.
type ModelTier struct {
	Provider         string  `json:"provider"`
	Model            string  `json:"model"`
	Temperature      float32 `json:"temperature"`
	MaxTokens        int     `json:"max_tokens"`
	TopP             float32 `json:"top_p"`
	FrequencyPenalty float32 `json:"frequency_penalty"`
	PresencePenalty  float32 `json:"presence_penalty"`
	TimeoutSeconds   int     `json:"timeout_seconds"`
	HistoryLimit     int     `json:"history_limit"`
	DocumentChars    int     `json:"document_chars"`
}

// Timeout returns the per-attempt deadline for this tier.
func (t ModelTier) Timeout() time.Duration {
	return time.Duration(t.TimeoutSeconds) * time.Second
}

// Load reads configuration from the provided path (defaults to config.json).
func Load(path string) (*Config, error) {
	if path == "" {
		path = "config.json"
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve config path: %w", err)
	}

	file, err := os.Open(absPath)
	if err != nil {
		return nil, fmt.Errorf("open config %s: %w", absPath, err)
	}
	defer file.Close()

	var cfg Config
	if err := json.NewDecoder(file).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	cfg.applyDefaults()

	for _, tier := range []ModelTier{cfg.Gateway.Primary, cfg.Gateway.Fallback} {
		if _, ok := cfg.Providers[tier.Provider]; !ok {
			return nil, fmt.Errorf("provider %s not configured", tier.Provider)
		}
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.BasicConfig.ServerAddress == "" {
		c.BasicConfig.ServerAddress = ":8090"
	}
	if c.BasicConfig.FileBaseDir == "" {
		c.BasicConfig.FileBaseDir = "./data/uploads"
	}
	c.Gateway.Primary.applyDefaults(ModelTier{
		Provider:         "openai",
		Temperature:      0.7,
		MaxTokens:        2000,
		TopP:             0.95,
		FrequencyPenalty: 0.1,
		PresencePenalty:  0.05,
		TimeoutSeconds:   90,
		HistoryLimit:     10,
		DocumentChars:    8000,
	})
	c.Gateway.Fallback.applyDefaults(ModelTier{
		Provider:       "openai",
		Temperature:    0.6,
		MaxTokens:      1500,
		TopP:           0.9,
		TimeoutSeconds: 90,
		HistoryLimit:   8,
		DocumentChars:  6000,
	})
	for _, tier := range []*ModelTier{&c.Gateway.Primary, &c.Gateway.Fallback} {
		if tier.Model == "" {
			if prov, ok := c.Providers[tier.Provider]; ok {
				tier.Model = prov.Model
			}
		}
	}
}

func (t *ModelTier) applyDefaults(d ModelTier) {
	if t.Provider == "" {
		t.Provider = d.Provider
	}
	if t.Temperature == 0 {
		t.Temperature = d.Temperature
	}
	if t.MaxTokens == 0 {
		t.MaxTokens = d.MaxTokens
	}
	if t.TopP == 0 {
		t.TopP = d.TopP
	}
	if t.FrequencyPenalty == 0 {
		t.FrequencyPenalty = d.FrequencyPenalty
	}
	if t.PresencePenalty == 0 {
		t.PresencePenalty = d.PresencePenalty
	}
	if t.TimeoutSeconds == 0 {
		t.TimeoutSeconds = d.TimeoutSeconds
	}
	if t.HistoryLimit == 0 {
		t.HistoryLimit = d.HistoryLimit
	}
	if t.DocumentChars == 0 {
		t.DocumentChars = d.DocumentChars
	}
}
