package main

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/advbet/roomcast"
)

// duration wraps time.Duration so config values can be written in the usual
// "30s"/"10m" form.
type duration time.Duration

func (d *duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = duration(v)
	return nil
}

type config struct {
	Listen       string   `yaml:"listen"`
	LogLevel     string   `yaml:"log_level"`
	PingInterval duration `yaml:"ping_interval"`
}

func defaultConfig() config {
	return config{
		Listen:       ":8000",
		LogLevel:     "info",
		PingInterval: duration(roomcast.DefaultPingInterval),
	}
}

// loadConfig reads a YAML config file, falling back to defaults for missing
// keys. An empty path returns the defaults.
func loadConfig(path string) (config, error) {
	cfg := defaultConfig()
	if path == "" {
		return cfg, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}
