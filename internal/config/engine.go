package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// LoadPolicy overlays any "engine" settings from Viper onto DefaultPolicy.
func LoadPolicy() (Policy, error) {
	policy := DefaultPolicy()

	if err := viper.UnmarshalKey("engine", &policy); err != nil {
		return Policy{}, fmt.Errorf("%w: %v", ErrInvalidPolicy, err)
	}

	if err := policy.Validate(); err != nil {
		return Policy{}, err
	}
	return policy, nil
}
