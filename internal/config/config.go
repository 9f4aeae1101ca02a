package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

var (
	exeDirCache string
)

// getExecutableDir returns the directory where the executable is located
func getExecutableDir() string {
	if exeDirCache != "" {
		return exeDirCache
	}
	execPath, err := os.Executable()
	if err != nil {
		exeDirCache = "."
		return exeDirCache
	}
	execPath, err = filepath.EvalSymlinks(execPath)
	if err != nil {
		exeDirCache = "."
		return exeDirCache
	}
	exeDirCache = filepath.Dir(execPath)
	return exeDirCache
}

type Config struct {
	Port      int             `yaml:"port"`
	AI        AIConfig        `yaml:"ai,omitempty"`
	Output    OutputConfig    `yaml:"output,omitempty"`
	Retention RetentionConfig `yaml:"retention,omitempty"`
}

type AIConfig struct {
	Provider    string  `yaml:"provider,omitempty"` // "openai", "deepseek", "anthropic", "openai-compat"
	APIKey      string  `yaml:"api_key,omitempty"`
	BaseURL     string  `yaml:"base_url,omitempty"`
	Model       string  `yaml:"model,omitempty"`
	Temperature float32 `yaml:"temperature,omitempty"`
}

type OutputConfig struct {
	// Dir is the root directory generated projects are written under.
	Dir string `yaml:"dir,omitempty"`
}

type RetentionConfig struct {
	// Days controls how long run history is kept; 0 disables the sweeper.
	Days int `yaml:"days,omitempty"`
}

// ConfigPath returns the path of the config file next to the executable
func ConfigPath() string {
	return filepath.Join(getExecutableDir(), ".codeloom", "config.yaml")
}

// DataDir returns the directory used for run history and uploads
func DataDir() string {
	return filepath.Join(getExecutableDir(), ".codeloom")
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Port: 18080,
		AI: AIConfig{
			Provider:    "openai",
			Model:       "gpt-4",
			Temperature: 0.2,
		},
		Output: OutputConfig{
			Dir: filepath.Join(getExecutableDir(), "generated"),
		},
		Retention: RetentionConfig{
			Days: 30,
		},
	}
}

// Load reads the config file, falling back to defaults when it does not
// exist. Environment variables override API credentials so keys never
// have to live on disk.
func Load() (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(ConfigPath())
	if err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, err
		}
	} else if !os.IsNotExist(err) {
		return nil, err
	}

	applyEnvOverrides(cfg)
	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if key := os.Getenv("CODELOOM_API_KEY"); key != "" {
		cfg.AI.APIKey = key
	}
	if cfg.AI.APIKey == "" {
		switch cfg.AI.Provider {
		case "anthropic":
			cfg.AI.APIKey = os.Getenv("ANTHROPIC_API_KEY")
		default:
			cfg.AI.APIKey = os.Getenv("OPENAI_API_KEY")
		}
	}
	if model := os.Getenv("CODELOOM_MODEL"); model != "" {
		cfg.AI.Model = model
	}
	if baseURL := os.Getenv("CODELOOM_BASE_URL"); baseURL != "" {
		cfg.AI.BaseURL = baseURL
	}
}

// Save writes the config file
func (c *Config) Save() error {
	dir := filepath.Dir(ConfigPath())
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	return os.WriteFile(ConfigPath(), data, 0644)
}
