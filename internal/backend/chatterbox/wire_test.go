package chatterbox

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/genarabia-ai/dialect-tts/internal/backend"
)

// encodeSamples is the inverse of decodeWaveform, mirroring how the runner
// serializes its output.
func encodeSamples(samples []float32) []byte {
	out := make([]byte, len(samples)*4)
	for i, s := range samples {
		binary.LittleEndian.PutUint32(out[i*4:], math.Float32bits(s))
	}
	return out
}

func TestGenerateFrame_CarriesRequestVerbatim(t *testing.T) {
	req := &backend.GenerateRequest{
		Text:              "مرحبا بك",
		LanguageID:        "ar",
		Temperature:       0.8,
		RepetitionPenalty: 2.0,
		TopP:              1.0,
		MinP:              0.05,
		CFGWeight:         0.5,
		AudioPromptPath:   "/tmp/reference_12345678.wav",
	}

	data, err := msgpack.Marshal(newGenerateFrame(req))
	require.NoError(t, err)

	var decoded generateFrame
	require.NoError(t, msgpack.Unmarshal(data, &decoded))

	assert.Equal(t, req.Text, decoded.Text)
	assert.Equal(t, req.LanguageID, decoded.LanguageID)
	assert.Equal(t, req.Temperature, decoded.Temperature)
	assert.Equal(t, req.RepetitionPenalty, decoded.RepetitionPenalty)
	assert.Equal(t, req.TopP, decoded.TopP)
	assert.Equal(t, req.MinP, decoded.MinP)
	assert.Equal(t, req.CFGWeight, decoded.CFGWeight)
	assert.Equal(t, req.AudioPromptPath, decoded.AudioPromptPath)
}

func TestDecodeWaveform_RoundTrip(t *testing.T) {
	samples := []float32{0.0, 0.5, -0.5, 1.0, -1.0, 3.14e-3}

	w, err := decodeWaveform(&resultFrame{
		Samples:  encodeSamples(samples),
		Channels: 1,
	})
	require.NoError(t, err)

	assert.Equal(t, samples, w.Samples)
	assert.Equal(t, 1, w.Channels)
}

func TestDecodeWaveform_RejectsMisalignedPayload(t *testing.T) {
	_, err := decodeWaveform(&resultFrame{
		Samples:  []byte{0x00, 0x01, 0x02},
		Channels: 1,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "float32-aligned")
}

func TestDecodeWaveform_EmptyPayload(t *testing.T) {
	w, err := decodeWaveform(&resultFrame{Channels: 1})
	require.NoError(t, err)
	assert.Empty(t, w.Samples)
}

func TestReadyFrame_OptionalInfoSurvivesRoundTrip(t *testing.T) {
	data, err := msgpack.Marshal(&readyFrame{
		Event:      "ready",
		SampleRate: 24000,
		Info: map[string]any{
			"text_vocab_size": 2454,
			"version":         "0.3.1",
		},
	})
	require.NoError(t, err)

	var decoded readyFrame
	require.NoError(t, msgpack.Unmarshal(data, &decoded))

	assert.Equal(t, "ready", decoded.Event)
	assert.Equal(t, 24000, decoded.SampleRate)
	assert.Empty(t, decoded.Error)
	require.Contains(t, decoded.Info, "text_vocab_size")
}
