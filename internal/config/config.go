package config

import (
	"fmt"
	"os"

	"go.yaml.in/yaml/v3"
)

// Config represents <config-dir>/config.yaml. Every field is optional.
type Config struct {
	RenderCommand     string   `yaml:"render_command,omitempty"`
	DeployCommand     string   `yaml:"deploy_command,omitempty"`
	DefaultDeployArgs []string `yaml:"default_deploy_args,omitempty"`
	LogLevel          string   `yaml:"log_level,omitempty"`
}

// Default returns the configuration used when no config.yaml exists.
func Default() Config {
	return Config{
		RenderCommand:     "docker-app",
		DeployCommand:     "docker-compose",
		DefaultDeployArgs: []string{"up", "-d", "--remove-orphans"},
		LogLevel:          "info",
	}
}

// Parse parses config.yaml bytes. Fields left empty fall back to Default.
func Parse(data []byte) (Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config: %w", err)
	}
	return cfg.withDefaults(), nil
}

// Load reads config.yaml from path. A missing file yields Default().
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return Config{}, fmt.Errorf("reading config: %w", err)
	}
	return Parse(data)
}

// Marshal serializes a Config to YAML bytes.
func Marshal(cfg Config) ([]byte, error) {
	return yaml.Marshal(cfg)
}

// EnsureDir creates the config directory if it does not already exist.
func EnsureDir(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}
	return nil
}

func (c Config) withDefaults() Config {
	def := Default()
	if c.RenderCommand == "" {
		c.RenderCommand = def.RenderCommand
	}
	if c.DeployCommand == "" {
		c.DeployCommand = def.DeployCommand
	}
	if len(c.DefaultDeployArgs) == 0 {
		c.DefaultDeployArgs = def.DefaultDeployArgs
	}
	if c.LogLevel == "" {
		c.LogLevel = def.LogLevel
	}
	return c
}
