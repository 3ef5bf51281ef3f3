package chatterbox

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/genarabia-ai/dialect-tts/internal/backend"
)

// Wire protocol between the Go process and the chatterbox runner: a stream
// of msgpack frames over the runner's stdin/stdout. The runner announces
// itself with a ready frame after the model is loaded, then answers one
// generate frame with one result frame.

// readyFrame is the runner's startup announcement.
type readyFrame struct {
	Event      string         `msgpack:"event"`
	SampleRate int            `msgpack:"sample_rate"`
	Error      string         `msgpack:"error,omitempty"`
	Info       map[string]any `msgpack:"info,omitempty"`
}

// generateFrame is one synthesis request.
type generateFrame struct {
	Text              string  `msgpack:"text"`
	LanguageID        string  `msgpack:"language_id"`
	Temperature       float64 `msgpack:"temperature"`
	RepetitionPenalty float64 `msgpack:"repetition_penalty"`
	TopP              float64 `msgpack:"top_p"`
	MinP              float64 `msgpack:"min_p"`
	CFGWeight         float64 `msgpack:"cfg_weight"`
	AudioPromptPath   string  `msgpack:"audio_prompt_path,omitempty"`
}

// resultFrame is the runner's answer to a generate frame. Samples are raw
// little-endian float32, interleaved when channels > 1.
type resultFrame struct {
	Error      string  `msgpack:"error,omitempty"`
	Samples    []byte  `msgpack:"samples"`
	Channels   int     `msgpack:"channels"`
	SampleRate int     `msgpack:"sample_rate"`
	Seconds    float64 `msgpack:"seconds,omitempty"`
}

// newGenerateFrame maps a boundary request onto the wire representation.
func newGenerateFrame(req *backend.GenerateRequest) *generateFrame {
	return &generateFrame{
		Text:              req.Text,
		LanguageID:        req.LanguageID,
		Temperature:       req.Temperature,
		RepetitionPenalty: req.RepetitionPenalty,
		TopP:              req.TopP,
		MinP:              req.MinP,
		CFGWeight:         req.CFGWeight,
		AudioPromptPath:   req.AudioPromptPath,
	}
}

// decodeWaveform converts a result frame's raw sample bytes into a Waveform.
func decodeWaveform(f *resultFrame) (*backend.Waveform, error) {
	if len(f.Samples)%4 != 0 {
		return nil, fmt.Errorf("sample payload not float32-aligned: %d bytes", len(f.Samples))
	}

	samples := make([]float32, len(f.Samples)/4)
	for i := range samples {
		bits := binary.LittleEndian.Uint32(f.Samples[i*4:])
		samples[i] = math.Float32frombits(bits)
	}

	return &backend.Waveform{
		Samples:  samples,
		Channels: f.Channels,
	}, nil
}
