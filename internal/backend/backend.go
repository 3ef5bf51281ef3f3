package backend

import (
	"context"
	"time"
)

// Backend instantiates voice models from a local artifact directory. The
// neural net itself is a black box behind this boundary; the backend owns
// how a Handle is brought up and torn down.
type Backend interface {
	// Provider returns the backend identifier.
	Provider() string

	// Load instantiates a model from the artifact directory and returns a
	// ready-to-infer handle bound to the device in opts.
	Load(ctx context.Context, modelDir string, opts Options) (Handle, error)
}

// Options configures model instantiation.
type Options struct {
	// Device is the compute device the model binds to ("mps", "cuda", "cpu").
	Device string

	// TextVocabSize overrides the architecture's compiled-in text vocabulary
	// size. The fine-tuned artifacts require the expanded vocabulary.
	TextVocabSize int
}

// Handle is a loaded, inference-ready voice model.
type Handle interface {
	// Generate synthesizes a waveform from text. Sampling parameters are
	// forwarded verbatim; the model may fail or produce degenerate output
	// for out-of-range values.
	Generate(ctx context.Context, req *GenerateRequest) (*Waveform, error)

	// SampleRate returns the model's native output sample rate in Hz.
	SampleRate() int

	// VocabSize returns the effective text vocabulary size of the loaded model.
	VocabSize() int

	// Close releases the model and any accelerator memory it holds.
	Close() error
}

// GenerateRequest carries one synthesis call across the model boundary.
type GenerateRequest struct {
	Text              string
	LanguageID        string
	Temperature       float64
	RepetitionPenalty float64
	TopP              float64
	MinP              float64
	CFGWeight         float64

	// AudioPromptPath, when set, conditions the output voice on the given
	// reference recording instead of the dialect's default speaker.
	AudioPromptPath string
}

// Waveform is raw model output. Samples are interleaved when Channels > 1.
// Channels == 0 marks a flat one-dimensional sequence (treated as mono
// downstream).
type Waveform struct {
	Samples  []float32
	Channels int
}

// Frames returns the number of per-channel frames.
func (w *Waveform) Frames() int {
	ch := w.Channels
	if ch < 1 {
		ch = 1
	}
	return len(w.Samples) / ch
}

// Duration returns the audio duration at the given sample rate.
func (w *Waveform) Duration(sampleRate int) time.Duration {
	if sampleRate <= 0 {
		return 0
	}
	return time.Duration(float64(w.Frames()) / float64(sampleRate) * float64(time.Second))
}
