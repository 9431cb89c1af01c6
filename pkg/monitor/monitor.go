// Package monitor samples resource usage of the training process via
// gopsutil and reports it through the structured log, one sample per
// epoch when enabled.
package monitor

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"time"

	"github.com/shirou/gopsutil/v3/process"
)

type Sample struct {
	CPUPercent    float64   `json:"cpu_percent"`
	MemoryBytes   uint64    `json:"memory_bytes"`
	MemoryPercent float32   `json:"memory_percent"`
	Goroutines    int       `json:"goroutines"`
	Threads       int32     `json:"threads"`
	Timestamp     time.Time `json:"timestamp"`
}

type Process struct {
	proc   *process.Process
	logger *slog.Logger
}

func NewProcess(logger *slog.Logger) (*Process, error) {
	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return nil, fmt.Errorf("attach process monitor: %w", err)
	}

	return &Process{
		proc:   proc,
		logger: logger,
	}, nil
}

func (p *Process) Sample() (Sample, error) {
	s := Sample{
		Goroutines: runtime.NumGoroutine(),
		Timestamp:  time.Now(),
	}

	if cpu, err := p.proc.CPUPercent(); err == nil {
		s.CPUPercent = cpu
	}
	if mem, err := p.proc.MemoryInfo(); err == nil && mem != nil {
		s.MemoryBytes = mem.RSS
	}
	if pct, err := p.proc.MemoryPercent(); err == nil {
		s.MemoryPercent = pct
	}
	if threads, err := p.proc.NumThreads(); err == nil {
		s.Threads = threads
	}

	return s, nil
}

// LogEpoch records one resource sample tagged with the epoch index.
func (p *Process) LogEpoch(ctx context.Context, epoch int) {
	s, err := p.Sample()
	if err != nil {
		p.logger.WarnContext(ctx, "failed to sample process", slog.Any("error", err))

		return
	}

	p.logger.InfoContext(ctx, "resource usage",
		slog.Int("epoch", epoch),
		slog.Float64("cpu_percent", s.CPUPercent),
		slog.Uint64("memory_bytes", s.MemoryBytes),
		slog.Int("goroutines", s.Goroutines),
		slog.Int("threads", int(s.Threads)),
	)
}
