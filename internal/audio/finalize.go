package audio

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"math"
	"os"
	"path/filepath"

	gaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/genarabia-ai/dialect-tts/internal/backend"
	"github.com/genarabia-ai/dialect-tts/internal/xfs"
)

// Finalizer converts raw model waveforms into saved, normalized WAV files.
type Finalizer struct {
	outputDir string
}

// NewFinalizer creates a finalizer writing into outputDir. The directory is
// created on first use.
func NewFinalizer(outputDir string) *Finalizer {
	return &Finalizer{outputDir: outputDir}
}

// FinalizeRequest carries one waveform and its naming inputs.
type FinalizeRequest struct {
	Waveform   *backend.Waveform
	SampleRate int

	// OutputPath, when set, is used verbatim. Otherwise the filename is
	// derived from a content hash of the original input text plus the
	// dialect, so identical requests resolve to the same file
	// (last-writer-wins, no uniqueness suffix).
	OutputPath string
	Text       string
	Dialect    string
}

// Finalize peak-normalizes the waveform and writes it as 16-bit PCM WAV at
// the given sample rate. The write is atomic: the file appears under its
// final name only once fully written.
func (f *Finalizer) Finalize(req *FinalizeRequest) (string, error) {
	w := req.Waveform
	if w == nil || len(w.Samples) == 0 {
		return "", fmt.Errorf("empty waveform")
	}
	if req.SampleRate <= 0 {
		return "", fmt.Errorf("invalid sample rate %d", req.SampleRate)
	}

	channels := w.Channels
	if channels < 1 {
		// Flat one-dimensional output is mono.
		channels = 1
	}

	normalized := normalize(w.Samples)

	outPath := req.OutputPath
	if outPath == "" {
		outPath = filepath.Join(f.outputDir, DefaultFilename(req.Dialect, req.Text))
	}

	if err := xfs.EnsureDir(filepath.Dir(outPath)); err != nil {
		return "", fmt.Errorf("create output directory: %w", err)
	}

	if err := writeWAV(outPath, normalized, channels, req.SampleRate); err != nil {
		return "", err
	}

	return outPath, nil
}

// DefaultFilename derives the deterministic artifact name from the original
// input text and dialect.
func DefaultFilename(dialect, text string) string {
	sum := md5.Sum([]byte(text))
	return fmt.Sprintf("%s_%s.wav", dialect, hex.EncodeToString(sum[:])[:8])
}

// normalize peak-normalizes samples into [-1, 1]. All-zero input is
// returned unchanged instead of dividing by zero.
func normalize(samples []float32) []float32 {
	var peak float64
	for _, s := range samples {
		if a := math.Abs(float64(s)); a > peak {
			peak = a
		}
	}

	if peak == 0 {
		return samples
	}

	out := make([]float32, len(samples))
	for i, s := range samples {
		out[i] = float32(float64(s) / peak)
	}
	return out
}

// writeWAV serializes samples as 16-bit PCM, writing to a temp file and
// renaming so a failed write leaves no partial artifact visible.
func writeWAV(path string, samples []float32, channels, sampleRate int) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*.wav")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()

	cleanup := func() {
		tmp.Close()
		os.Remove(tmpName)
	}

	buf := &gaudio.IntBuffer{
		Format: &gaudio.Format{
			NumChannels: channels,
			SampleRate:  sampleRate,
		},
		Data:           toPCM16(samples),
		SourceBitDepth: 16,
	}

	enc := wav.NewEncoder(tmp, sampleRate, 16, channels, 1)
	if err := enc.Write(buf); err != nil {
		cleanup()
		return fmt.Errorf("write wav: %w", err)
	}
	if err := enc.Close(); err != nil {
		cleanup()
		return fmt.Errorf("close wav encoder: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp file: %w", err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("rename artifact: %w", err)
	}

	return nil
}

// toPCM16 converts [-1, 1] floats to interleaved 16-bit integer samples.
func toPCM16(samples []float32) []int {
	out := make([]int, len(samples))
	for i, s := range samples {
		v := math.Round(float64(s) * 32767)
		if v > 32767 {
			v = 32767
		} else if v < -32768 {
			v = -32768
		}
		out[i] = int(v)
	}
	return out
}
