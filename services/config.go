package services

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server       ServerConfig    `yaml:"server"`
	Upload       UploadConfig    `yaml:"upload"`
	RateLimiting RateLimitConfig `yaml:"rate_limiting"`
}

type ServerConfig struct {
	Port        int `yaml:"port"`
	BodyLimitMB int `yaml:"body_limit_mb"`
}

type UploadConfig struct {
	MaxFileSizeMB int `yaml:"max_file_size_mb"`
	MaxDimension  int `yaml:"max_dimension"`
	PreviewSize   int `yaml:"preview_size"`
}

type RateLimitConfig struct {
	WindowSeconds int `yaml:"window_seconds"`
	Capacity      int `yaml:"capacity"`
}

// Window returns the configured rate-limit window as a duration.
func (r RateLimitConfig) Window() time.Duration {
	return time.Duration(r.WindowSeconds) * time.Second
}

func LoadConfig(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return &Config{
			Server: ServerConfig{
				Port:        8080,
				BodyLimitMB: 32,
			},
			Upload: UploadConfig{
				MaxFileSizeMB: 25,
				MaxDimension:  8192,
				PreviewSize:   64,
			},
			RateLimiting: RateLimitConfig{
				WindowSeconds: 60,
				Capacity:      30,
			},
		}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return &config, nil
}
