package http

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/danielgtaylor/huma/v2"
	"github.com/google/uuid"

	"github.com/genarabia-ai/dialect-tts/internal/config"
	"github.com/genarabia-ai/dialect-tts/internal/dialect"
	"github.com/genarabia-ai/dialect-tts/internal/model"
	"github.com/genarabia-ai/dialect-tts/internal/service"
	"github.com/genarabia-ai/dialect-tts/internal/xfs"
)

type (
	// GenerateRequestDTO is the request body for the Generate operation.
	GenerateRequestDTO struct {
		Text    string `json:"text" minLength:"1" doc:"Arabic text to convert to speech"`
		Dialect string `json:"dialect" doc:"Dialect to use (egyptian, emirates, ksa, kuwaiti)"`

		Temperature       *float64 `json:"temperature,omitempty" doc:"Controls randomness (lower = more conservative)"`
		RepetitionPenalty *float64 `json:"repetition_penalty,omitempty" doc:"Prevents repetition (higher = less repetition)"`
		TopP              *float64 `json:"top_p,omitempty" doc:"Nucleus sampling threshold"`
		MinP              *float64 `json:"min_p,omitempty" doc:"Minimum probability threshold"`
		CFGWeight         *float64 `json:"cfg_weight,omitempty" doc:"Classifier-free guidance weight"`

		ReferenceAudioFile string `json:"reference_audio_file,omitempty" doc:"Filename of an uploaded reference recording"`
	}

	// GenerateInput is the huma input for the Generate operation.
	GenerateInput struct {
		Body GenerateRequestDTO
	}

	// AudioOutput returns a generated WAV artifact.
	AudioOutput struct {
		ContentType        string  `header:"Content-Type"`
		ContentDisposition string  `header:"Content-Disposition"`
		InferenceSeconds   float64 `header:"X-Inference-Seconds"`
		RealTimeFactor     float64 `header:"X-Real-Time-Factor"`
		Body               []byte
	}
)

type (
	// UploadReferenceInput is the huma input for the UploadReference operation.
	UploadReferenceInput struct {
		RawBody huma.MultipartFormFiles[ReferenceFormData]
	}

	// ReferenceFormData is the multipart payload of an upload.
	ReferenceFormData struct {
		File huma.FormFile `form:"file" contentType:"audio/wav" required:"true"`
	}

	// UploadReferenceOutput is the huma output for the UploadReference operation.
	UploadReferenceOutput struct {
		Body UploadReferenceResponseDTO
	}

	// UploadReferenceResponseDTO names the stored reference recording.
	UploadReferenceResponseDTO struct {
		Status   string `json:"status"`
		Filename string `json:"filename"`
		Path     string `json:"path"`
	}
)

// TTSHandler handles HTTP requests for TTS generation.
type TTSHandler struct {
	service    *service.TTS
	uploadsDir string
	defaults   config.GenerationConfig
}

// NewTTSHandler creates a new TTSHandler instance.
func NewTTSHandler(api huma.API, svc *service.TTS, uploadsDir string, defaults config.GenerationConfig) *TTSHandler {
	h := &TTSHandler{
		service:    svc,
		uploadsDir: uploadsDir,
		defaults:   defaults,
	}

	huma.Register(api, huma.Operation{
		OperationID:   "generate",
		Method:        http.MethodPost,
		Path:          "/api/generate",
		Summary:       "Generate TTS audio from text",
		Tags:          []string{"tts"},
		DefaultStatus: http.StatusOK,
	}, h.handleGenerate)

	huma.Register(api, huma.Operation{
		OperationID:   "upload-reference",
		Method:        http.MethodPost,
		Path:          "/api/upload-reference",
		Summary:       "Upload a reference recording for voice conditioning",
		Tags:          []string{"tts"},
		DefaultStatus: http.StatusOK,
	}, h.handleUploadReference)

	return h
}

// handleGenerate handles the generate operation.
func (h *TTSHandler) handleGenerate(ctx context.Context, input *GenerateInput) (*AudioOutput, error) {
	d, err := dialect.Parse(input.Body.Dialect)
	if err != nil {
		return nil, huma.Error400BadRequest("invalid dialect", err)
	}

	req := &service.SynthesizeRequest{
		Text:    input.Body.Text,
		Dialect: d,
		Params:  h.params(&input.Body),
	}

	// Uploaded references soft-fail when missing; the service logs a
	// warning and generates with the dialect's default voice.
	if input.Body.ReferenceAudioFile != "" {
		req.ReferenceAudioPath = filepath.Join(h.uploadsDir, filepath.Base(input.Body.ReferenceAudioFile))
	}

	result, err := h.service.Synthesize(ctx, req)
	if err != nil {
		return nil, mapServiceError(err)
	}

	return newAudioOutput(result, fmt.Sprintf("%s_generated.wav", d))
}

// handleUploadReference stores a caller-supplied reference recording in the
// temporary uploads directory.
func (h *TTSHandler) handleUploadReference(_ context.Context, input *UploadReferenceInput) (*UploadReferenceOutput, error) {
	form := input.RawBody.Data()

	if !strings.HasSuffix(strings.ToLower(form.File.Filename), ".wav") {
		return nil, huma.Error400BadRequest("only WAV files are supported")
	}

	if err := xfs.EnsureDir(h.uploadsDir); err != nil {
		return nil, huma.Error500InternalServerError("failed to prepare uploads directory", err)
	}

	filename := fmt.Sprintf("reference_%s.wav", uuid.NewString()[:8])
	path := filepath.Join(h.uploadsDir, filename)

	out, err := os.Create(path)
	if err != nil {
		return nil, huma.Error500InternalServerError("failed to store reference audio", err)
	}
	defer out.Close()

	if _, err := io.Copy(out, form.File); err != nil {
		os.Remove(path)
		return nil, huma.Error500InternalServerError("failed to store reference audio", err)
	}

	return &UploadReferenceOutput{
		Body: UploadReferenceResponseDTO{
			Status:   "success",
			Filename: filename,
			Path:     path,
		},
	}, nil
}

// params merges request overrides over the configured defaults. Values are
// forwarded verbatim; out-of-range numbers are the caller's responsibility.
func (h *TTSHandler) params(dto *GenerateRequestDTO) service.Params {
	p := service.Params{
		Temperature:       h.defaults.Temperature,
		RepetitionPenalty: h.defaults.RepetitionPenalty,
		TopP:              h.defaults.TopP,
		MinP:              h.defaults.MinP,
		CFGWeight:         h.defaults.CFGWeight,
	}

	if dto.Temperature != nil {
		p.Temperature = *dto.Temperature
	}
	if dto.RepetitionPenalty != nil {
		p.RepetitionPenalty = *dto.RepetitionPenalty
	}
	if dto.TopP != nil {
		p.TopP = *dto.TopP
	}
	if dto.MinP != nil {
		p.MinP = *dto.MinP
	}
	if dto.CFGWeight != nil {
		p.CFGWeight = *dto.CFGWeight
	}

	return p
}

// newAudioOutput reads the finished artifact into the response.
func newAudioOutput(result *service.Result, downloadName string) (*AudioOutput, error) {
	data, err := os.ReadFile(result.Path)
	if err != nil {
		return nil, huma.Error500InternalServerError("failed to read generated audio", err)
	}

	return &AudioOutput{
		ContentType:        "audio/wav",
		ContentDisposition: fmt.Sprintf("attachment; filename=%q", downloadName),
		InferenceSeconds:   result.InferenceTime.Seconds(),
		RealTimeFactor:     result.RealTimeFactor(),
		Body:               data,
	}, nil
}

// mapServiceError translates core errors into caller-visible responses.
func mapServiceError(err error) error {
	switch {
	case errors.Is(err, dialect.ErrInvalid), errors.Is(err, service.ErrEmptyText):
		return huma.Error400BadRequest("invalid request", err)
	case errors.Is(err, service.ErrReferenceNotFound):
		return huma.Error400BadRequest("reference audio not found", err)
	case errors.Is(err, model.ErrNotFound):
		return huma.Error404NotFound("model not found, ensure artifacts are provisioned", err)
	default:
		return huma.Error500InternalServerError("failed to generate audio", err)
	}
}
