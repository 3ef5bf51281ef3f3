package audio

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-audio/wav"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/genarabia-ai/dialect-tts/internal/backend"
)

func TestNormalize_PeakReachesOne(t *testing.T) {
	samples := []float32{-0.5, 0.3, 0.25, -0.1}

	out := normalize(samples)

	var peak float64
	for _, s := range out {
		if a := math.Abs(float64(s)); a > peak {
			peak = a
		}
	}
	assert.InDelta(t, 1.0, peak, 1e-6)

	// Relative ratios are preserved.
	assert.InDelta(t, -1.0, float64(out[0]), 1e-6)
	assert.InDelta(t, 0.6, float64(out[1]), 1e-6)
	assert.InDelta(t, 0.5, float64(out[2]), 1e-6)
	assert.InDelta(t, -0.2, float64(out[3]), 1e-6)
}

func TestNormalize_AllZeroInputStaysSilent(t *testing.T) {
	samples := []float32{0, 0, 0, 0}

	out := normalize(samples)

	require.Len(t, out, len(samples))
	for _, s := range out {
		assert.False(t, math.IsNaN(float64(s)))
		assert.Zero(t, s)
	}
}

func TestDefaultFilename_Deterministic(t *testing.T) {
	a := DefaultFilename("egyptian", "مرحبا بك")
	b := DefaultFilename("egyptian", "مرحبا بك")
	c := DefaultFilename("ksa", "مرحبا بك")
	d := DefaultFilename("egyptian", "أهلا")

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.NotEqual(t, a, d)
	assert.Regexp(t, `^egyptian_[0-9a-f]{8}\.wav$`, a)
}

func TestFinalize_WritesMonoWAV(t *testing.T) {
	dir := t.TempDir()
	f := NewFinalizer(dir)

	// Flat one-dimensional waveform (Channels unset) becomes mono.
	path, err := f.Finalize(&FinalizeRequest{
		Waveform:   &backend.Waveform{Samples: []float32{0.1, -0.4, 0.2, 0.4}},
		SampleRate: 22050,
		Text:       "مرحبا بك",
		Dialect:    "egyptian",
	})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, DefaultFilename("egyptian", "مرحبا بك")), path)

	file, err := os.Open(path)
	require.NoError(t, err)
	defer file.Close()

	dec := wav.NewDecoder(file)
	buf, err := dec.FullPCMBuffer()
	require.NoError(t, err)

	assert.Equal(t, 1, buf.Format.NumChannels)
	assert.Equal(t, 22050, buf.Format.SampleRate)
	require.Len(t, buf.Data, 4)

	// Peak samples (-0.4 and 0.4 share the peak) normalize to full scale.
	assert.Equal(t, -32767, buf.Data[1])
	assert.Equal(t, 32767, buf.Data[3])
}

func TestFinalize_ExplicitOutputPath(t *testing.T) {
	dir := t.TempDir()
	f := NewFinalizer(dir)

	custom := filepath.Join(dir, "nested", "custom.wav")
	path, err := f.Finalize(&FinalizeRequest{
		Waveform:   &backend.Waveform{Samples: []float32{0.5, -0.5}, Channels: 1},
		SampleRate: 24000,
		OutputPath: custom,
		Text:       "ignored",
		Dialect:    "ksa",
	})
	require.NoError(t, err)
	assert.Equal(t, custom, path)
	assert.FileExists(t, custom)
}

func TestFinalize_NoPartialArtifactOnEmptyInput(t *testing.T) {
	dir := t.TempDir()
	f := NewFinalizer(dir)

	_, err := f.Finalize(&FinalizeRequest{
		Waveform:   &backend.Waveform{},
		SampleRate: 22050,
		Text:       "x",
		Dialect:    "egyptian",
	})
	require.Error(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
