package device

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/genarabia-ai/dialect-tts/internal/envvar"
)

func TestProbe_EnvOverrideWins(t *testing.T) {
	t.Setenv(envvar.DialectTTSDevice, "cuda")
	assert.Equal(t, CUDA, probe())

	t.Setenv(envvar.DialectTTSDevice, "cpu")
	assert.Equal(t, CPU, probe())
}

func TestProbe_FallsBackWithoutOverride(t *testing.T) {
	t.Setenv(envvar.DialectTTSDevice, "")

	// The result depends on the host, but it is always one of the known
	// devices.
	d := probe()
	assert.Contains(t, []Device{MPS, CUDA, CPU}, d)
}

func TestSelector_Memoizes(t *testing.T) {
	t.Setenv(envvar.DialectTTSDevice, "cuda")

	s := NewSelector()
	assert.Equal(t, CUDA, s.Select())

	// The probe result is fixed for the selector's lifetime; later env
	// changes do not rebind it.
	t.Setenv(envvar.DialectTTSDevice, "cpu")
	assert.Equal(t, CUDA, s.Select())
}
