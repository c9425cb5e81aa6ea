package core

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/shakeplot/shakeplot/internal/common"
	"github.com/shakeplot/shakeplot/internal/logging"
)

// RenderConfig controls figure geometry. Zero values fall back to the
// renderer defaults (1200x360 panels, 200 Hz).
type RenderConfig struct {
	WidthPx       int     `yaml:"widthPx" validate:"omitempty,min=320,max=4096"`
	PanelHeightPx int     `yaml:"panelHeightPx" validate:"omitempty,min=120,max=2160"`
	MaxWidthPx    int     `yaml:"maxWidthPx" validate:"min=0"`
	MaxFreqHz     float64 `yaml:"maxFreqHz" validate:"min=0"`
}

// ServiceConfig is the root configuration of the service.
type ServiceConfig struct {
	Host             string `yaml:"host"`
	Port             int    `yaml:"port" validate:"min=1,max=65535"`
	MaxUploadSizeMiB int    `yaml:"maxUploadSizeMiB" validate:"min=1"`
	// RateLimitPerSecond caps requests per client IP; 0 disables limiting.
	RateLimitPerSecond float64        `yaml:"rateLimitPerSecond" validate:"min=0"`
	Logging            logging.Config `yaml:"logging"`
	Render             RenderConfig   `yaml:"render"`
}

// DefaultConfig returns the configuration used when no config file exists:
// listen on 0.0.0.0:5000 and accept uploads up to 16 MiB.
func DefaultConfig() *ServiceConfig {
	return &ServiceConfig{
		Host:             "0.0.0.0",
		Port:             5000,
		MaxUploadSizeMiB: 16,
		Logging:          logging.DefaultConfig(),
	}
}

// LoadConfig loads configuration from the specified YAML file. Keys absent
// from the file keep their default values.
func LoadConfig(configPath string) (*ServiceConfig, error) {
	// Read the config file
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", configPath, err)
	}

	// Parse YAML on top of the defaults
	config := DefaultConfig()
	err = yaml.Unmarshal(data, config)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", configPath, err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration in %s: %w", configPath, err)
	}

	return config, nil
}

// Validate checks the configuration against its constraints.
func (c *ServiceConfig) Validate() error {
	return common.ValidateStruct(c)
}

// Address returns the host:port the server binds to.
func (c *ServiceConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// MaxUploadBytes returns the upload cap in bytes.
func (c *ServiceConfig) MaxUploadBytes() int64 {
	return int64(c.MaxUploadSizeMiB) << 20
}

// BodyLimit renders the upload cap in the notation echo's body limit
// middleware parses, e.g. "16M".
func (c *ServiceConfig) BodyLimit() string {
	return fmt.Sprintf("%dM", c.MaxUploadSizeMiB)
}
