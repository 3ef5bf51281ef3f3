package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/genarabia-ai/dialect-tts/internal/audio"
	"github.com/genarabia-ai/dialect-tts/internal/backend"
	"github.com/genarabia-ai/dialect-tts/internal/dialect"
	"github.com/genarabia-ai/dialect-tts/internal/model"
	"github.com/genarabia-ai/dialect-tts/internal/xfs"
)

// languageID is the fixed language tag passed to every generation call.
// Dialect selection happens through model choice, not the language tag.
const languageID = "ar"

// Error definitions for the service package.
var (
	// ErrEmptyText indicates the input text is empty after normalization.
	ErrEmptyText = errors.New("input text is empty")

	// ErrGenerationFailed wraps an error raised by the model's inference call.
	ErrGenerationFailed = errors.New("generation failed")

	// ErrReferenceNotFound indicates a required reference recording is
	// missing. Missing optional references degrade to unconditioned
	// generation instead.
	ErrReferenceNotFound = errors.New("reference audio not found")
)

// TTS turns synthesis requests into saved audio artifacts.
type TTS struct {
	registry  *model.Registry
	finalizer *audio.Finalizer
}

// NewTTS creates a new TTS service.
func NewTTS(registry *model.Registry, finalizer *audio.Finalizer) *TTS {
	return &TTS{
		registry:  registry,
		finalizer: finalizer,
	}
}

// Params are the sampling parameters forwarded verbatim to the model. The
// service applies no clamping or range validation; out-of-range values are
// the caller's responsibility.
type Params struct {
	Temperature       float64
	RepetitionPenalty float64
	TopP              float64
	MinP              float64
	CFGWeight         float64
}

// SynthesizeRequest is one synthesis call.
type SynthesizeRequest struct {
	Text    string
	Dialect dialect.Dialect
	Params  Params

	// ReferenceAudioPath conditions the output voice on a recording. When
	// ReferenceRequired is false a missing file is a logged warning and
	// generation proceeds unconditioned; when true it is a hard error.
	ReferenceAudioPath string
	ReferenceRequired  bool

	// OutputPath overrides the deterministic content-hash filename.
	OutputPath string
}

// Result is a finished synthesis.
type Result struct {
	Path          string
	SampleRate    int
	InferenceTime time.Duration
	AudioDuration time.Duration
}

// RealTimeFactor is the ratio of generated audio duration to wall-clock
// inference time.
func (r *Result) RealTimeFactor() float64 {
	if r.InferenceTime <= 0 {
		return 0
	}
	return r.AudioDuration.Seconds() / r.InferenceTime.Seconds()
}

// Synthesize validates the request, resolves the dialect's model, runs
// generation and finalizes the artifact. Registry errors propagate
// unchanged; inference errors come back wrapped in ErrGenerationFailed.
func (s *TTS) Synthesize(ctx context.Context, req *SynthesizeRequest) (*Result, error) {
	if !req.Dialect.Valid() {
		return nil, fmt.Errorf("%w: %q (must be one of %v)", dialect.ErrInvalid, req.Dialect, dialect.All())
	}

	text := normalizeText(req.Text)
	if text == "" {
		return nil, ErrEmptyText
	}

	handle, err := s.registry.Resolve(ctx, req.Dialect)
	if err != nil {
		return nil, err
	}

	refPath, err := s.resolveReference(req)
	if err != nil {
		return nil, err
	}

	slog.Info("Generating audio",
		"dialect", req.Dialect,
		"text", text,
		"temperature", req.Params.Temperature,
		"repetition_penalty", req.Params.RepetitionPenalty,
		"top_p", req.Params.TopP,
		"min_p", req.Params.MinP,
		"cfg_weight", req.Params.CFGWeight,
		"reference_audio", refPath)

	start := time.Now()
	waveform, err := handle.Generate(ctx, &backend.GenerateRequest{
		Text:              text,
		LanguageID:        languageID,
		Temperature:       req.Params.Temperature,
		RepetitionPenalty: req.Params.RepetitionPenalty,
		TopP:              req.Params.TopP,
		MinP:              req.Params.MinP,
		CFGWeight:         req.Params.CFGWeight,
		AudioPromptPath:   refPath,
	})
	inference := time.Since(start)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrGenerationFailed, err)
	}

	path, err := s.finalizer.Finalize(&audio.FinalizeRequest{
		Waveform:   waveform,
		SampleRate: handle.SampleRate(),
		OutputPath: req.OutputPath,
		Text:       req.Text,
		Dialect:    req.Dialect.String(),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrGenerationFailed, err)
	}

	result := &Result{
		Path:          path,
		SampleRate:    handle.SampleRate(),
		InferenceTime: inference,
		AudioDuration: waveform.Duration(handle.SampleRate()),
	}

	slog.Info("Audio generated",
		"path", path,
		"duration_s", result.AudioDuration.Seconds(),
		"inference_s", result.InferenceTime.Seconds(),
		"rtf", result.RealTimeFactor())

	return result, nil
}

// resolveReference applies the soft-fail/hard-fail policy for reference
// audio.
func (s *TTS) resolveReference(req *SynthesizeRequest) (string, error) {
	if req.ReferenceAudioPath == "" {
		return "", nil
	}

	if xfs.Exists(req.ReferenceAudioPath) {
		return req.ReferenceAudioPath, nil
	}

	if req.ReferenceRequired {
		return "", fmt.Errorf("%w: %s", ErrReferenceNotFound, req.ReferenceAudioPath)
	}

	slog.Warn("Reference audio missing, generating without conditioning",
		"path", req.ReferenceAudioPath)
	return "", nil
}

// normalizeText collapses internal whitespace runs to single spaces and
// trims. This is the only text transformation applied before generation.
func normalizeText(text string) string {
	return strings.Join(strings.Fields(text), " ")
}
