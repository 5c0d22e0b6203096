// Package prof wires the runtime profilers behind the --cpu-profile,
// --mem-profile and --runtime-trace flags.
package prof

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"runtime/pprof"
	rtrace "runtime/trace"
)

// Paths selects the profiles to record. Empty paths are skipped.
type Paths struct {
	CPU     string
	Mem     string
	Runtime string
}

// Session owns the files of the running profilers.
type Session struct {
	cpu     *os.File
	runtime *os.File
	memPath string
	stopped bool
}

// Start enables every profiler named in p. On failure the profilers already
// started are stopped again.
func Start(p Paths) (*Session, error) {
	s := &Session{memPath: p.Mem}
	if p.CPU != "" {
		f, err := os.Create(p.CPU)
		if err != nil {
			return nil, err
		}
		if err := pprof.StartCPUProfile(f); err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("cpu profile: %w", err)
		}
		s.cpu = f
	}
	if p.Runtime != "" {
		f, err := os.Create(p.Runtime)
		if err != nil {
			_ = s.Stop()
			return nil, err
		}
		if err := rtrace.Start(f); err != nil {
			_ = f.Close()
			_ = s.Stop()
			return nil, fmt.Errorf("runtime trace: %w", err)
		}
		s.runtime = f
	}
	return s, nil
}

// Stop ends the profilers and writes the heap profile. Repeated calls are
// no-ops.
func (s *Session) Stop() error {
	if s == nil || s.stopped {
		return nil
	}
	s.stopped = true
	var errs []error
	if s.runtime != nil {
		rtrace.Stop()
		errs = append(errs, s.runtime.Close())
	}
	if s.cpu != nil {
		pprof.StopCPUProfile()
		errs = append(errs, s.cpu.Close())
	}
	if s.memPath != "" {
		errs = append(errs, writeHeap(s.memPath))
	}
	return errors.Join(errs...)
}

func writeHeap(path string) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := f.Close(); err == nil {
			err = closeErr
		}
	}()
	runtime.GC()
	return pprof.WriteHeapProfile(f)
}
