package chatterbox

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"strconv"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/genarabia-ai/dialect-tts/internal/backend"
	"github.com/genarabia-ai/dialect-tts/internal/mapsafe"
)

// BackendName is the backend identifier.
const BackendName = "chatterbox"

// Backend implements backend.Backend for the ChatterboxTTS runner. Each
// loaded model is one long-lived runner process holding the torch model in
// memory; the handle talks to it over stdin/stdout.
type Backend struct {
	binPath         string
	startupTimeout  time.Duration
	generateTimeout time.Duration
}

// NewBackend creates a new Chatterbox backend.
func NewBackend(binPath string, startupTimeout, generateTimeout time.Duration) (*Backend, error) {
	if _, err := exec.LookPath(binPath); err != nil {
		return nil, fmt.Errorf("runner binary not found: %w", err)
	}

	return &Backend{
		binPath:         binPath,
		startupTimeout:  startupTimeout,
		generateTimeout: generateTimeout,
	}, nil
}

// Provider returns the backend identifier.
func (b *Backend) Provider() string {
	return BackendName
}

// Load starts a runner process for the artifact directory and waits for its
// ready frame. The vocabulary override and device are fixed at startup; the
// returned handle never rebinds either.
func (b *Backend) Load(ctx context.Context, modelDir string, opts backend.Options) (backend.Handle, error) {
	args := []string{
		"serve",
		"--model-dir", modelDir,
		"--device", opts.Device,
		"--text-vocab-size", strconv.Itoa(opts.TextVocabSize),
	}

	cmd := exec.Command(b.binPath, args...)

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("stdin pipe: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, fmt.Errorf("stderr pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start runner: %w", err)
	}

	go forwardStderr(stderr, modelDir)

	h := &Handle{
		cmd:             cmd,
		stdin:           stdin,
		enc:             msgpack.NewEncoder(stdin),
		dec:             msgpack.NewDecoder(stdout),
		vocabSize:       opts.TextVocabSize,
		generateTimeout: b.generateTimeout,
	}

	ready, err := h.awaitReady(ctx, b.startupTimeout)
	if err != nil {
		h.kill()
		return nil, err
	}

	h.sampleRate = ready.SampleRate
	if v := mapsafe.Get(ready.Info, "text_vocab_size", 0); v != 0 {
		h.vocabSize = v
	}

	slog.Info("Runner ready",
		"model_dir", modelDir,
		"device", opts.Device,
		"sample_rate", h.sampleRate,
		"vocab_size", h.vocabSize,
		"runner_version", mapsafe.Get(ready.Info, "version", "unknown"))

	return h, nil
}

// forwardStderr relays runner diagnostics into the process log.
func forwardStderr(r io.Reader, modelDir string) {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		slog.Debug("runner", "model_dir", modelDir, "line", scanner.Text())
	}
}

// Handle is one running model process.
type Handle struct {
	cmd             *exec.Cmd
	stdin           io.WriteCloser
	enc             *msgpack.Encoder
	dec             *msgpack.Decoder
	sampleRate      int
	vocabSize       int
	generateTimeout time.Duration

	// mu serializes frames on the wire; the runner answers one request at
	// a time.
	mu     sync.Mutex
	closed bool
}

// awaitReady reads the ready frame, bounded by the startup timeout.
func (h *Handle) awaitReady(ctx context.Context, timeout time.Duration) (*readyFrame, error) {
	type outcome struct {
		frame *readyFrame
		err   error
	}
	ch := make(chan outcome, 1)

	go func() {
		var f readyFrame
		if err := h.dec.Decode(&f); err != nil {
			ch <- outcome{err: fmt.Errorf("%w: %v", backend.ErrRunnerExited, err)}
			return
		}
		ch <- outcome{frame: &f}
	}()

	select {
	case out := <-ch:
		if out.err != nil {
			return nil, out.err
		}
		if out.frame.Error != "" {
			return nil, fmt.Errorf("runner failed to load model: %s", out.frame.Error)
		}
		if out.frame.Event != "ready" {
			return nil, fmt.Errorf("unexpected runner frame %q before ready", out.frame.Event)
		}
		return out.frame, nil
	case <-time.After(timeout):
		return nil, fmt.Errorf("runner did not become ready within %v", timeout)
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Generate synthesizes one waveform. The call blocks until the runner
// answers; a timeout or context cancellation kills the process since the
// wire would otherwise be left mid-frame.
func (h *Handle) Generate(ctx context.Context, req *backend.GenerateRequest) (*backend.Waveform, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return nil, backend.ErrRunnerExited
	}

	if err := h.enc.Encode(newGenerateFrame(req)); err != nil {
		return nil, fmt.Errorf("%w: %v", backend.ErrRunnerExited, err)
	}

	type outcome struct {
		frame *resultFrame
		err   error
	}
	ch := make(chan outcome, 1)

	go func() {
		var f resultFrame
		if err := h.dec.Decode(&f); err != nil {
			ch <- outcome{err: fmt.Errorf("%w: %v", backend.ErrRunnerExited, err)}
			return
		}
		ch <- outcome{frame: &f}
	}()

	select {
	case out := <-ch:
		if out.err != nil {
			h.closeLocked()
			return nil, out.err
		}
		if out.frame.Error != "" {
			return nil, fmt.Errorf("runner generation failed: %s", out.frame.Error)
		}
		return decodeWaveform(out.frame)
	case <-time.After(h.generateTimeout):
		h.closeLocked()
		return nil, fmt.Errorf("generation timed out after %v", h.generateTimeout)
	case <-ctx.Done():
		h.closeLocked()
		return nil, ctx.Err()
	}
}

// SampleRate returns the model's native output sample rate in Hz.
func (h *Handle) SampleRate() int {
	return h.sampleRate
}

// VocabSize returns the effective text vocabulary size of the loaded model.
func (h *Handle) VocabSize() int {
	return h.vocabSize
}

// Close stops the runner process and releases its memory.
func (h *Handle) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.closeLocked()
}

func (h *Handle) closeLocked() error {
	if h.closed {
		return nil
	}
	h.closed = true
	_ = h.stdin.Close()
	return h.kill()
}

func (h *Handle) kill() error {
	if h.cmd.Process == nil {
		return nil
	}
	if err := h.cmd.Process.Kill(); err != nil {
		slog.Error("Failed to kill runner process", "error", err)
		return err
	}
	_ = h.cmd.Wait()
	return nil
}
