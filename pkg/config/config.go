package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/papercomputeco/ragnotes/pkg/dotdir"
)

const (
	configFile = "config.toml"

	// v0 is the alpha version of the config
	v0 = 0

	// CurrentV is the currently supported version, points to v0
	CurrentV = v0
)

type Configer struct {
	ddm        *dotdir.Manager
	targetPath string
}

func NewConfiger(override string) (*Configer, error) {
	cfger := &Configer{}

	cfger.ddm = dotdir.NewManager()
	target, err := cfger.ddm.Target(override)
	if err != nil {
		return nil, err
	}

	// If no .ragnotes/ directory was resolved, targetPath stays empty;
	// LoadConfig will return defaults and SaveConfig will error clearly.
	if target == "" {
		return cfger, nil
	}

	path := filepath.Join(target, configFile)
	_, err = os.Stat(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	cfger.targetPath = path

	return cfger, nil
}

// ValidConfigKeys returns all supported configuration key names in TOML
// section order.
func ValidConfigKeys() []string {
	result := make([]string, 0, len(configKeys))
	seen := make(map[string]bool, len(configKeys))
	for _, k := range orderedKeys {
		if _, ok := configKeys[k]; ok {
			result = append(result, k)
			seen[k] = true
		}
	}

	// Append any keys in the map that we missed in the ordered list.
	for k := range configKeys {
		if !seen[k] {
			result = append(result, k)
		}
	}

	return result
}

// IsValidConfigKey returns true if the given key is a supported configuration key.
func IsValidConfigKey(key string) bool {
	_, ok := configKeys[key]
	return ok
}

func (c *Configer) GetTarget() string {
	return c.targetPath
}

// Dir returns the .ragnotes/ directory holding the config file.
func (c *Configer) Dir() string {
	if c.targetPath == "" {
		return ""
	}
	return filepath.Dir(c.targetPath)
}

// LoadConfig loads the configuration from config.toml in the target
// .ragnotes/ directory. If the file does not exist, returns
// NewDefaultConfig() so callers always receive a fully-populated Config.
// Fields explicitly set in the file override the defaults.
func (c *Configer) LoadConfig() (*Config, error) {
	if c.targetPath == "" {
		return NewDefaultConfig(), nil
	}

	data, err := os.ReadFile(c.targetPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return NewDefaultConfig(), nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	cfg, md, err := parseConfigTOML(data)
	if err != nil {
		return nil, err
	}

	applyDefaults(cfg, md)

	return cfg, nil
}

// applyDefaults fills zero-value fields in cfg with values from
// NewDefaultConfig(). Booleans are only defaulted when the file leaves them
// out, since false is a meaningful value.
func applyDefaults(cfg *Config, md toml.MetaData) {
	d := NewDefaultConfig()

	fill := func(dst *string, def string) {
		if *dst == "" {
			*dst = def
		}
	}
	fillUint := func(dst *uint, def uint) {
		if *dst == 0 {
			*dst = def
		}
	}

	if cfg.Version == 0 {
		cfg.Version = d.Version
	}

	fill(&cfg.Storage.Provider, d.Storage.Provider)
	fill(&cfg.API.Listen, d.API.Listen)
	fill(&cfg.Client.APITarget, d.Client.APITarget)

	fill(&cfg.VectorStore.Provider, d.VectorStore.Provider)
	fill(&cfg.VectorStore.Collection, d.VectorStore.Collection)

	fill(&cfg.Embedding.Provider, d.Embedding.Provider)
	fillUint(&cfg.Embedding.Dimensions, d.Embedding.Dimensions)

	fill(&cfg.Chat.Provider, d.Chat.Provider)

	if cfg.RAG.SimilarityCutoff == 0 {
		cfg.RAG.SimilarityCutoff = d.RAG.SimilarityCutoff
	}
	fill(&cfg.RAG.OnPartialFailure, d.RAG.OnPartialFailure)

	fill(&cfg.Events.Provider, d.Events.Provider)
	fill(&cfg.Events.Topic, d.Events.Topic)

	if !md.IsDefined("mcp", "enabled") {
		cfg.MCP.Enabled = d.MCP.Enabled
	}

	fillUint(&cfg.Import.Workers, d.Import.Workers)
	fillUint(&cfg.Import.QueueSize, d.Import.QueueSize)
}

// SaveConfig persists the configuration to config.toml in the target .ragnotes/ directory.
func (c *Configer) SaveConfig(cfg *Config) error {
	if cfg == nil {
		return errors.New("cannot save nil config")
	}

	if c.targetPath == "" {
		return errors.New("cannot save empty target path")
	}

	var buf bytes.Buffer
	encoder := toml.NewEncoder(&buf)
	if err := encoder.Encode(cfg); err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	if err := os.WriteFile(c.targetPath, buf.Bytes(), 0o600); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	return nil
}

// SetConfigValue loads the config, sets the given key to the given value, and saves it.
// Returns an error if the key is not a valid config key.
func (c *Configer) SetConfigValue(key string, value string) error {
	info, ok := configKeys[key]
	if !ok {
		return fmt.Errorf("unknown config key: %q", key)
	}

	cfg, err := c.LoadConfig()
	if err != nil {
		return err
	}

	if err := info.set(cfg, value); err != nil {
		return err
	}

	return c.SaveConfig(cfg)
}

// GetConfigValue loads the config and returns the string representation of the given key.
// Returns an error if the key is not a valid config key.
func (c *Configer) GetConfigValue(key string) (string, error) {
	info, ok := configKeys[key]
	if !ok {
		return "", fmt.Errorf("unknown config key: %q", key)
	}

	cfg, err := c.LoadConfig()
	if err != nil {
		return "", err
	}

	return info.get(cfg), nil
}

// PresetConfig returns a Config with sane defaults for the named provider
// preset. Presets only change the embedding and chat sections; storage and
// the vector store stay on local SQLite.
func PresetConfig(name string) (*Config, error) {
	cfg := NewDefaultConfig()

	switch strings.ToLower(name) {
	case "ollama":
		cfg.Embedding.Model = "nomic-embed-text"
		cfg.Chat.Model = "llama3.2"

	case "openai":
		cfg.Embedding = EmbeddingConfig{
			Provider:   "openai",
			Model:      "text-embedding-3-small",
			Dimensions: 1536,
		}
		cfg.Chat = ChatConfig{
			Provider: "openai",
			Model:    "gpt-4.1-mini",
		}

	case "anthropic":
		// Anthropic has no embedding API; embeddings stay on local Ollama.
		cfg.Chat = ChatConfig{
			Provider: "anthropic",
			Model:    "claude-3-5-haiku-latest",
		}

	case "google":
		cfg.Embedding = EmbeddingConfig{
			Provider:   "google",
			Model:      "text-embedding-004",
			Dimensions: 768,
		}
		cfg.Chat = ChatConfig{
			Provider: "google",
			Model:    "gemini-2.5-flash",
		}

	case "workersai":
		cfg.Embedding = EmbeddingConfig{
			Provider:   "workersai",
			Model:      "@cf/baai/bge-base-en-v1.5",
			Dimensions: 768,
		}
		cfg.Chat = ChatConfig{
			Provider: "workersai",
			Model:    "@cf/meta/llama-3.1-8b-instruct",
		}

	default:
		return nil, fmt.Errorf("unknown preset: %q (available: %s)", name, strings.Join(ValidPresetNames(), ", "))
	}

	return cfg, nil
}

// ValidPresetNames returns the list of recognized preset names.
func ValidPresetNames() []string {
	return []string{"ollama", "openai", "anthropic", "google", "workersai"}
}

// ParseConfigTOML parses raw TOML bytes into a Config.
// Returns an error if the version field is present and not equal to CurrentV.
func ParseConfigTOML(data []byte) (*Config, error) {
	cfg, _, err := parseConfigTOML(data)
	return cfg, err
}

func parseConfigTOML(data []byte) (*Config, toml.MetaData, error) {
	cfg := &Config{}
	md, err := toml.Decode(string(data), cfg)
	if err != nil {
		return nil, md, fmt.Errorf("parsing config TOML: %w", err)
	}

	if cfg.Version != 0 && cfg.Version != CurrentV {
		return nil, md, fmt.Errorf("unsupported config version %d (expected %d)", cfg.Version, CurrentV)
	}

	return cfg, md, nil
}
