package queue

import (
	"log/slog"
	"runtime"
	"strings"

	"golang.org/x/sys/cpu"

	"github.com/born-ml/dispatch/internal/parallel"
)

// Config controls how a queue schedules tasks.
type Config struct {
	Parallel    parallel.Config // Chunking used inside kernel bodies.
	MaxInFlight int             // Maximum number of kernels executing at the same time.
	Logger      *slog.Logger    // Defaults to slog.Default() when nil.
}

// DefaultConfig returns defaults derived from the CPU count and vector features.
func DefaultConfig() Config {
	p := parallel.DefaultConfig()
	if DetectFeatures().WideVectors() {
		// Wide vector units finish small chunks faster than a goroutine hop.
		p.MinChunkSize *= 4
	}
	return Config{
		Parallel:    p,
		MaxInFlight: max(2, runtime.NumCPU()),
	}
}

// Features lists the CPU vector extensions relevant for kernel selection.
type Features struct {
	AVX2    bool
	AVX512F bool
	FMA     bool
	ASIMD   bool
	SVE     bool
}

// DetectFeatures probes the running CPU.
func DetectFeatures() Features {
	return Features{
		AVX2:    cpu.X86.HasAVX2,
		AVX512F: cpu.X86.HasAVX512F,
		FMA:     cpu.X86.HasFMA,
		ASIMD:   cpu.ARM64.HasASIMD,
		SVE:     cpu.ARM64.HasSVE,
	}
}

// WideVectors reports whether the CPU has 256-bit or wider vector units.
func (f Features) WideVectors() bool {
	return f.AVX512F || (f.AVX2 && f.FMA) || f.SVE
}

// String returns the detected features, or "scalar" when none are present.
func (f Features) String() string {
	var names []string
	if f.AVX2 {
		names = append(names, "AVX2")
	}
	if f.AVX512F {
		names = append(names, "AVX512F")
	}
	if f.FMA {
		names = append(names, "FMA")
	}
	if f.ASIMD {
		names = append(names, "ASIMD")
	}
	if f.SVE {
		names = append(names, "SVE")
	}
	if len(names) == 0 {
		return "scalar"
	}
	return strings.Join(names, " ")
}
