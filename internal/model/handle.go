package model

import (
	"context"

	"github.com/genarabia-ai/dialect-tts/internal/backend"
	"github.com/genarabia-ai/dialect-tts/internal/device"
	"github.com/genarabia-ai/dialect-tts/internal/dialect"
)

// TextVocabSize is the text vocabulary size of the fine-tuned artifacts.
// The stock multilingual architecture config ships with 2352 tokens; the
// fine-tuned weights only load against the expanded vocabulary, so the
// registry passes this override into every instantiation.
const TextVocabSize = 2454

// Handle is a loaded voice model bound to one dialect and one compute
// device. Handles are created by the registry, cached there, and never
// mutated after creation.
type Handle struct {
	Dialect dialect.Dialect
	Device  device.Device

	impl backend.Handle
}

// Generate invokes the model's generation entry point.
func (h *Handle) Generate(ctx context.Context, req *backend.GenerateRequest) (*backend.Waveform, error) {
	return h.impl.Generate(ctx, req)
}

// SampleRate returns the model's native output sample rate in Hz.
func (h *Handle) SampleRate() int {
	return h.impl.SampleRate()
}

// VocabSize returns the effective text vocabulary size of the loaded model.
func (h *Handle) VocabSize() int {
	return h.impl.VocabSize()
}

// Close releases the model and any accelerator memory it holds.
func (h *Handle) Close() error {
	return h.impl.Close()
}
