package api

import (
	"context"
	"log/slog"
	"os"
	"runtime"

	"github.com/shirou/gopsutil/v3/process"
)

// procSampler reads resource usage of the running server process.
type procSampler struct {
	proc *process.Process
}

func newProcSampler() *procSampler {
	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		slog.Warn("api: process stats unavailable", "err", err)
		return &procSampler{}
	}
	return &procSampler{proc: p}
}

// sample returns the current stats. Fields gopsutil cannot read are left zero.
func (s *procSampler) sample(ctx context.Context) ProcessStats {
	out := ProcessStats{Goroutines: runtime.NumGoroutine()}
	if s.proc == nil {
		return out
	}
	if mem, err := s.proc.MemoryInfoWithContext(ctx); err == nil && mem != nil {
		out.RSSBytes = mem.RSS
	} else if err != nil {
		slog.Debug("api: read process memory", "err", err)
	}
	if cpu, err := s.proc.CPUPercentWithContext(ctx); err == nil {
		out.CPUPercent = cpu
	} else {
		slog.Debug("api: read process cpu", "err", err)
	}
	return out
}
