package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"

	"github.com/danielgtaylor/huma/v2"

	"github.com/genarabia-ai/dialect-tts/internal/config"
	"github.com/genarabia-ai/dialect-tts/internal/dialect"
	"github.com/genarabia-ai/dialect-tts/internal/samples"
	"github.com/genarabia-ai/dialect-tts/internal/service"
)

type (
	// SamplesOutput lists the training samples per dialect.
	SamplesOutput struct {
		Body map[string][]samples.Sample
	}

	// SampleAudioInput addresses one training sample recording.
	SampleAudioInput struct {
		Dialect  string `path:"dialect"`
		SampleID string `path:"sampleId"`
	}

	// CompareRequestDTO regenerates a training sample's text for comparison.
	CompareRequestDTO struct {
		Dialect  string `json:"dialect"`
		SampleID string `json:"sample_id" minLength:"1"`

		Temperature       *float64 `json:"temperature,omitempty"`
		RepetitionPenalty *float64 `json:"repetition_penalty,omitempty"`
		TopP              *float64 `json:"top_p,omitempty"`
		MinP              *float64 `json:"min_p,omitempty"`
		CFGWeight         *float64 `json:"cfg_weight,omitempty"`

		// UseSampleAsReference defaults to true: the sample recording
		// conditions the output voice, and its absence is a hard error.
		UseSampleAsReference *bool `json:"use_sample_as_reference,omitempty"`
	}

	// CompareInput is the huma input for the Compare operation.
	CompareInput struct {
		Body CompareRequestDTO
	}
)

// SamplesHandler serves the read-only training-samples catalog and
// comparison generation.
type SamplesHandler struct {
	service  *service.TTS
	catalog  *samples.Catalog
	defaults config.GenerationConfig
}

// NewSamplesHandler creates a new SamplesHandler instance.
func NewSamplesHandler(api huma.API, svc *service.TTS, catalog *samples.Catalog, defaults config.GenerationConfig) *SamplesHandler {
	h := &SamplesHandler{
		service:  svc,
		catalog:  catalog,
		defaults: defaults,
	}

	huma.Register(api, huma.Operation{
		OperationID:   "list-samples",
		Method:        http.MethodGet,
		Path:          "/api/samples",
		Summary:       "List training samples by dialect",
		Tags:          []string{"samples"},
		DefaultStatus: http.StatusOK,
	}, h.handleList)

	huma.Register(api, huma.Operation{
		OperationID:   "get-sample-audio",
		Method:        http.MethodGet,
		Path:          "/api/samples/{dialect}/{sampleId}",
		Summary:       "Get the original training sample recording",
		Tags:          []string{"samples"},
		DefaultStatus: http.StatusOK,
	}, h.handleAudio)

	huma.Register(api, huma.Operation{
		OperationID:   "compare",
		Method:        http.MethodPost,
		Path:          "/api/compare",
		Summary:       "Generate TTS for a training sample's text for comparison",
		Tags:          []string{"samples"},
		DefaultStatus: http.StatusOK,
	}, h.handleCompare)

	return h
}

// handleList handles the list-samples operation.
func (h *SamplesHandler) handleList(_ context.Context, _ *struct{}) (*SamplesOutput, error) {
	if h.catalog == nil {
		return nil, huma.Error404NotFound("samples catalog not available")
	}
	return &SamplesOutput{Body: h.catalog.All()}, nil
}

// handleAudio handles the get-sample-audio operation.
func (h *SamplesHandler) handleAudio(_ context.Context, input *SampleAudioInput) (*AudioOutput, error) {
	if h.catalog == nil {
		return nil, huma.Error404NotFound("samples catalog not available")
	}

	d, err := dialect.Parse(input.Dialect)
	if err != nil {
		return nil, huma.Error404NotFound("dialect not found", err)
	}

	sample, err := h.catalog.Find(d, input.SampleID)
	if err != nil {
		return nil, huma.Error404NotFound("sample not found", err)
	}

	data, err := os.ReadFile(h.catalog.AudioPath(d, sample))
	if err != nil {
		return nil, huma.Error404NotFound(fmt.Sprintf("audio file not found: %s", sample.Filename), err)
	}

	return &AudioOutput{
		ContentType:        "audio/wav",
		ContentDisposition: fmt.Sprintf("attachment; filename=%q", sample.Filename),
		Body:               data,
	}, nil
}

// handleCompare handles the compare operation.
func (h *SamplesHandler) handleCompare(ctx context.Context, input *CompareInput) (*AudioOutput, error) {
	if h.catalog == nil {
		return nil, huma.Error404NotFound("samples catalog not available")
	}

	d, err := dialect.Parse(input.Body.Dialect)
	if err != nil {
		return nil, huma.Error400BadRequest("invalid dialect", err)
	}

	sample, err := h.catalog.Find(d, input.Body.SampleID)
	if err != nil {
		return nil, huma.Error404NotFound("sample not found", err)
	}

	req := &service.SynthesizeRequest{
		Text:    sample.Text,
		Dialect: d,
		Params:  h.params(&input.Body),
	}

	// Conditioning on the sample's own recording is the default; when the
	// caller asked for it and the recording is gone that is a hard error,
	// unlike the uploaded-reference soft-fail path.
	useReference := true
	if input.Body.UseSampleAsReference != nil {
		useReference = *input.Body.UseSampleAsReference
	}
	if useReference {
		req.ReferenceAudioPath = h.catalog.AudioPath(d, sample)
		req.ReferenceRequired = true
	}

	result, err := h.service.Synthesize(ctx, req)
	if err != nil {
		if errors.Is(err, service.ErrReferenceNotFound) {
			return nil, huma.Error404NotFound("sample recording missing", err)
		}
		return nil, mapServiceError(err)
	}

	return newAudioOutput(result, fmt.Sprintf("%s_%s_generated.wav", d, sample.ID))
}

func (h *SamplesHandler) params(dto *CompareRequestDTO) service.Params {
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
