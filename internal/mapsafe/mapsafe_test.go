package mapsafe

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGet_IntAcceptsNarrowWireTypes(t *testing.T) {
	m := map[string]any{
		"as_int":    2454,
		"as_int16":  int16(2454),
		"as_uint16": uint16(2454),
		"as_int64":  int64(2454),
		"as_float":  float64(2454),
	}

	for key := range m {
		assert.Equal(t, 2454, Get(m, key, 0), "key %s", key)
	}
}

func TestGet_MissingKeyReturnsDefault(t *testing.T) {
	m := map[string]any{"present": 1}

	assert.Equal(t, 42, Get(m, "absent", 42))
	assert.Equal(t, "fallback", Get(m, "absent", "fallback"))
}

func TestGet_TypeMismatchReturnsDefault(t *testing.T) {
	m := map[string]any{"version": "0.3.1", "flag": true}

	assert.Equal(t, 0, Get(m, "version", 0))
	assert.Equal(t, "0.3.1", Get(m, "version", "unknown"))
	assert.Equal(t, true, Get(m, "flag", false))
	assert.Equal(t, "none", Get(m, "flag", "none"))
}

func TestGet_FloatFromInt(t *testing.T) {
	m := map[string]any{"weight": 1}

	assert.InDelta(t, 1.0, Get(m, "weight", 0.0), 1e-9)
}
