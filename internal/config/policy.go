package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/kirillkom/internship-allocator/internal/core/domain"
	"github.com/kirillkom/internship-allocator/internal/core/engine"
)

// LoadPolicy returns the fairness policy and district sets. An empty path
// yields the built-in defaults; otherwise keys present in the YAML file
// replace the corresponding defaults.
func LoadPolicy(path string) (domain.PolicyConfig, error) {
	if strings.TrimSpace(path) == "" {
		return engine.DefaultPolicyConfig(), nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return domain.PolicyConfig{}, fmt.Errorf("read policy file: %w", err)
	}
	cfg, err := ParsePolicy(raw)
	if err != nil {
		return domain.PolicyConfig{}, fmt.Errorf("policy file %s: %w", path, err)
	}
	return cfg, nil
}

// ApplyOverrides copies explicitly set environment values onto the policy.
func (c Config) ApplyOverrides(policy domain.PolicyConfig) domain.PolicyConfig {
	if c.MatchThreshold != nil {
		policy.Threshold = *c.MatchThreshold
	}
	if c.MatchMaxResults != nil {
		policy.MaxResults = *c.MatchMaxResults
	}
	return policy
}

// ParsePolicy overlays raw YAML on the defaults. Lists replace the default
// lists; participation bonuses are merged per status.
func ParsePolicy(raw []byte) (domain.PolicyConfig, error) {
	cfg := engine.DefaultPolicyConfig()

	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return domain.PolicyConfig{}, fmt.Errorf("parse policy yaml: %w", err)
	}
	if _, err := engine.NewPolicy(cfg); err != nil {
		return domain.PolicyConfig{}, err
	}
	if cfg.Threshold < 0 || cfg.Threshold > 1 {
		return domain.PolicyConfig{}, fmt.Errorf("threshold %v outside [0, 1]", cfg.Threshold)
	}
	return cfg, nil
}
