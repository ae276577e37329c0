package config

import (
	"bytes"
	"fmt"
	"os"

	"github.com/boddenberg/treasury-stress-go/internal/domain"

	"gopkg.in/yaml.v3"
)

// LoadPolicy reads the treasury policy YAML at path on top of
// domain.DefaultTreasuryPolicy. Keys absent from the file keep their default;
// lists (rules, fixed_expenses) replace the default list wholesale. An empty
// path returns the defaults.
func LoadPolicy(path string) (domain.TreasuryPolicy, error) {
	policy := domain.DefaultTreasuryPolicy()
	if path == "" {
		return policy, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return policy, fmt.Errorf("read policy: %w", err)
	}
	return ParsePolicy(data)
}

// ParsePolicy decodes YAML policy bytes over the defaults and validates the
// result. Unknown keys are rejected so typos do not silently fall back.
func ParsePolicy(data []byte) (domain.TreasuryPolicy, error) {
	policy := domain.DefaultTreasuryPolicy()
	if len(bytes.TrimSpace(data)) == 0 {
		return policy, nil
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&policy); err != nil {
		return policy, fmt.Errorf("parse policy: %w", err)
	}
	if err := policy.Validate(); err != nil {
		return policy, fmt.Errorf("invalid policy: %w", err)
	}
	return policy, nil
}
