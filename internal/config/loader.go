package config

import (
	"context"
	"errors"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Load builds a Config by layering defaults, an optional file, and env
// vars. Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML) if ROI_CONFIG is set
//  3. env (prefix ROI_)
//  4. PORT, when set, overrides the listen port
func Load(_ context.Context) (*Config, error) {
	base := New()

	k := koanf.New(".")

	if path := os.Getenv("ROI_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, err
		}
	}

	// Env keys like ROI_IP_LIMIT_PER_MIN map to ip_limit_per_min.
	// Underscores are preserved to match the koanf struct tags.
	envProvider := env.Provider("ROI_", ".", func(s string) string {
		s = strings.ToLower(s)
		return strings.TrimPrefix(s, "roi_")
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, err
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, err
	}

	// Plain PORT wins over everything for platform compatibility.
	if port := os.Getenv("PORT"); port != "" {
		cfg.Port = port
	}

	if cfg.Port == "" {
		return nil, errors.New("port must not be empty")
	}
	if cfg.IPLimitPerMin <= 0 {
		return nil, errors.New("ip_limit_per_min must be positive")
	}
	return &cfg, nil
}
