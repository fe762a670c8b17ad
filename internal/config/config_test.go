package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProducesAValidConfig(t *testing.T) {
	c := New()
	require.NoError(t, c.Validate())
	assert.NotEmpty(t, c.RunID)
}

func TestValidateCatchesBadFields(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero workers", func(c *Config) { c.Workers = 0 }},
		{"zero batch size", func(c *Config) { c.BatchSize = 0 }},
		{"zero k", func(c *Config) { c.K = 0 }},
		{"max rounds below min", func(c *Config) { c.MinRounds = 10; c.MaxRounds = 5 }},
		{"max wall-time below min", func(c *Config) { c.MinWallTime = 10; c.MaxWallTime = 5 }},
		{"empty uniform range", func(c *Config) { c.UniformLo = 5; c.UniformHi = 5 }},
		{"non-positive stddev", func(c *Config) { c.GaussStd = 0 }},
		{"no variant enabled", func(c *Config) { c.EnableGather = false; c.EnableAMS = false; c.AMSMultiD = nil }},
		{"bad ams-multi pivot count", func(c *Config) { c.AMSMultiD = []int{0} }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := New()
			tc.mutate(c)
			assert.Error(t, c.Validate())
		})
	}
}

func TestStringIncludesRunID(t *testing.T) {
	c := New()
	assert.Contains(t, c.String(), c.RunID)
}
