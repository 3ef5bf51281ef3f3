package device

import (
	"log/slog"
	"os"
	"os/exec"
	"runtime"
	"sync"

	"github.com/genarabia-ai/dialect-tts/internal/envvar"
)

// Device is the compute device models are loaded onto.
type Device string

const (
	// MPS is the Apple-silicon Metal accelerator.
	MPS Device = "mps"

	// CUDA is an NVIDIA GPU accelerator.
	CUDA Device = "cuda"

	// CPU is the general-purpose fallback.
	CPU Device = "cpu"
)

// Selector memoizes the device probe so every model loaded through it binds
// to the same device. Construct one in main and thread the result explicitly.
type Selector struct {
	once     sync.Once
	selected Device
}

// NewSelector creates a new device selector.
func NewSelector() *Selector {
	return &Selector{}
}

// Select probes on first call and returns the memoized result afterwards.
// Probe order follows the runner's preference: Apple-silicon Metal first,
// then CUDA, then CPU. DIALECT_TTS_DEVICE forces a specific device and
// skips probing.
func (s *Selector) Select() Device {
	s.once.Do(func() {
		s.selected = probe()
		slog.Info("Compute device selected", "device", s.selected)
	})
	return s.selected
}

func probe() Device {
	if forced := os.Getenv(envvar.DialectTTSDevice); forced != "" {
		return Device(forced)
	}

	if runtime.GOOS == "darwin" && runtime.GOARCH == "arm64" {
		return MPS
	}

	if hasCUDA() {
		return CUDA
	}

	return CPU
}

// hasCUDA reports whether an NVIDIA GPU is visible to the process.
func hasCUDA() bool {
	if _, err := os.Stat("/proc/driver/nvidia/version"); err == nil {
		return true
	}
	if _, err := exec.LookPath("nvidia-smi"); err == nil {
		return true
	}
	return false
}
