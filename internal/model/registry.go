package model

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/genarabia-ai/dialect-tts/internal/backend"
	"github.com/genarabia-ai/dialect-tts/internal/device"
	"github.com/genarabia-ai/dialect-tts/internal/dialect"
)

// artifactComponents lists the files expected inside each dialect's artifact
// directory. Missing components are logged at load time but only the
// instantiation call itself decides whether the model is usable.
var artifactComponents = map[string]string{
	"T3 (Text-to-Speech Transformer)": "t3_23lang.safetensors",
	"S3Gen (Speech Generator)":        "s3gen.pt",
	"Voice Encoder":                   "ve.pt",
	"Conditionals (Voice/Style)":      "conds.pt",
	"Tokenizer":                       "mtl_tokenizer.json",
}

// Registry resolves dialects to loaded model handles, loading each at most
// once and caching it for the process lifetime.
type Registry struct {
	backend   backend.Backend
	modelsDir string
	device    device.Device

	mu      sync.RWMutex
	handles map[dialect.Dialect]*Handle

	loadMu sync.Mutex
	loads  map[dialect.Dialect]*sync.Mutex
}

// NewRegistry creates a new model registry. Every model it loads binds to
// the given device; there is no per-request override.
func NewRegistry(b backend.Backend, modelsDir string, dev device.Device) *Registry {
	return &Registry{
		backend:   b,
		modelsDir: modelsDir,
		device:    dev,
		handles:   make(map[dialect.Dialect]*Handle),
		loads:     make(map[dialect.Dialect]*sync.Mutex),
	}
}

// Resolve returns the handle for the dialect, loading it from local storage
// if not cached. Concurrent first-time requests for the same dialect share
// one load; different dialects load independently.
func (r *Registry) Resolve(ctx context.Context, d dialect.Dialect) (*Handle, error) {
	if !d.Valid() {
		return nil, fmt.Errorf("%w: %q (must be one of %v)", dialect.ErrInvalid, d, dialect.All())
	}

	if h := r.cached(d); h != nil {
		return h, nil
	}

	lock := r.dialectLock(d)
	lock.Lock()
	defer lock.Unlock()

	// Another request may have finished the load while we waited.
	if h := r.cached(d); h != nil {
		return h, nil
	}

	h, err := r.load(ctx, d)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	r.handles[d] = h
	r.mu.Unlock()

	return h, nil
}

// LoadAll preloads every dialect in the closed set. A missing artifact
// directory is logged and skipped so the remaining dialects still load;
// those dialects stay eligible for on-demand loading later.
func (r *Registry) LoadAll(ctx context.Context) {
	for _, d := range dialect.All() {
		if _, err := r.Resolve(ctx, d); err != nil {
			if errors.Is(err, ErrNotFound) {
				slog.Warn("Skipping dialect, artifacts not provisioned", "dialect", d, "error", err)
				continue
			}
			slog.Error("Failed to preload dialect", "dialect", d, "error", err)
		}
	}
}

// Evict closes every cached handle and clears the cache. Subsequent Resolve
// calls reload from disk.
func (r *Registry) Evict() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for d, h := range r.handles {
		if err := h.Close(); err != nil {
			slog.Warn("Failed to close model handle", "dialect", d, "error", err)
		}
	}
	r.handles = make(map[dialect.Dialect]*Handle)

	slog.Info("Model cache cleared")
}

// Loaded returns the dialects with a cached handle, sorted by name.
func (r *Registry) Loaded() []dialect.Dialect {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]dialect.Dialect, 0, len(r.handles))
	for d := range r.handles {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })

	return out
}

// Device returns the compute device every handle binds to.
func (r *Registry) Device() device.Device {
	return r.device
}

func (r *Registry) cached(d dialect.Dialect) *Handle {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.handles[d]
}

// dialectLock returns the per-dialect load mutex, creating it on first use.
func (r *Registry) dialectLock(d dialect.Dialect) *sync.Mutex {
	r.loadMu.Lock()
	defer r.loadMu.Unlock()

	lock, ok := r.loads[d]
	if !ok {
		lock = &sync.Mutex{}
		r.loads[d] = lock
	}
	return lock
}

// load instantiates the dialect's model from its artifact directory. A
// failed load does not populate the cache, leaving the dialect eligible for
// retry once artifacts are provisioned or repaired.
func (r *Registry) load(ctx context.Context, d dialect.Dialect) (*Handle, error) {
	dir := filepath.Join(r.modelsDir, d.String())

	if _, err := os.Stat(dir); err != nil {
		return nil, fmt.Errorf("%w: expected artifacts at %s", ErrNotFound, dir)
	}

	slog.Info("Loading dialect model", "dialect", d, "path", dir, "device", r.device)
	verifyArtifacts(d, dir)

	impl, err := r.backend.Load(ctx, dir, backend.Options{
		Device:        string(r.device),
		TextVocabSize: TextVocabSize,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: dialect %s: %w", ErrLoadFailed, d, err)
	}

	slog.Info("Dialect model loaded",
		"dialect", d,
		"sample_rate", impl.SampleRate(),
		"vocab_size", impl.VocabSize())

	return &Handle{
		Dialect: d,
		Device:  r.device,
		impl:    impl,
	}, nil
}

// verifyArtifacts logs the presence of each expected artifact component.
// Symlinked artifacts are resolved so the log names the real file.
func verifyArtifacts(d dialect.Dialect, dir string) {
	for component, name := range artifactComponents {
		path := filepath.Join(dir, name)

		info, err := os.Lstat(path)
		if err != nil {
			slog.Warn("Artifact component missing", "dialect", d, "component", component, "file", name)
			continue
		}

		if info.Mode()&os.ModeSymlink != 0 {
			resolved, err := filepath.EvalSymlinks(path)
			if err != nil {
				slog.Warn("Artifact symlink broken", "dialect", d, "component", component, "file", name, "error", err)
				continue
			}
			if st, err := os.Stat(resolved); err == nil {
				slog.Info("Artifact component present",
					"dialect", d, "component", component, "file", name,
					"symlink_target", filepath.Base(resolved),
					"size_mb", float64(st.Size())/(1024*1024))
				continue
			}
		}

		if st, err := os.Stat(path); err == nil {
			slog.Info("Artifact component present",
				"dialect", d, "component", component, "file", name,
				"size_mb", float64(st.Size())/(1024*1024))
		}
	}
}
