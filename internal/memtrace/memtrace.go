// Package memtrace samples process memory usage behind a narrow interface so
// the training loop does not depend on a particular measurement mechanism.
package memtrace

import (
	"fmt"
	"runtime"
	"sync"

	"github.com/prometheus/procfs"
)

// Probe reports memory usage in bytes.
type Probe interface {
	// Current samples the usage right now.
	Current() uint64
	// Peak returns the largest usage observed so far.
	Peak() uint64
}

// Source reads one memory figure from the running process.
type Source interface {
	Name() string
	Read() (uint64, error)
}

// HeapSource reports bytes of allocated heap objects as seen by the Go runtime.
type HeapSource struct{}

// Name implements Source.
func (HeapSource) Name() string { return "heap" }

// Read implements Source.
func (HeapSource) Read() (uint64, error) {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	return ms.Alloc, nil
}

// RSSSource reports the resident set size of the process from /proc.
type RSSSource struct {
	proc procfs.Proc
}

// NewRSSSource opens /proc/self.
func NewRSSSource() (*RSSSource, error) {
	p, err := procfs.Self()
	if err != nil {
		return nil, fmt.Errorf("memtrace: open /proc/self: %w", err)
	}
	return &RSSSource{proc: p}, nil
}

// Name implements Source.
func (*RSSSource) Name() string { return "rss" }

// Read implements Source.
func (s *RSSSource) Read() (uint64, error) {
	status, err := s.proc.NewStatus()
	if err != nil {
		return 0, fmt.Errorf("memtrace: read status: %w", err)
	}
	return status.VmRSS, nil
}

// NewSource resolves a source by name.
func NewSource(name string) (Source, error) {
	switch name {
	case "", "heap":
		return HeapSource{}, nil
	case "rss":
		return NewRSSSource()
	default:
		return nil, fmt.Errorf("memtrace: unknown source %q", name)
	}
}

// Tracker samples a Source and keeps the peak across every sample taken
// between Start and Stop. It is not safe for concurrent use.
type Tracker struct {
	src     Source
	last    uint64
	peak    uint64
	samples int
	err     error
	stopped bool
	once    sync.Once
}

// Start begins tracking and takes the first sample. Callers must Stop the
// tracker exactly once, normally with defer.
func Start(src Source) *Tracker {
	t := &Tracker{src: src}
	t.read()
	return t
}

// Current takes a sample and returns it. After Stop it returns the final sample.
func (t *Tracker) Current() uint64 {
	if t.stopped {
		return t.last
	}
	return t.read()
}

// Peak returns the maximum usage observed.
func (t *Tracker) Peak() uint64 {
	return t.peak
}

// Samples returns how many samples were taken.
func (t *Tracker) Samples() int {
	return t.samples
}

// Err returns the first read error, if any. Failed reads keep the previous value.
func (t *Tracker) Err() error {
	return t.err
}

// Stop takes a final sample and freezes the tracker. Extra calls are no-ops.
func (t *Tracker) Stop() {
	t.once.Do(func() {
		t.read()
		t.stopped = true
	})
}

// SourceName returns the name of the underlying source.
func (t *Tracker) SourceName() string {
	return t.src.Name()
}

func (t *Tracker) read() uint64 {
	v, err := t.src.Read()
	t.samples++
	if err != nil {
		if t.err == nil {
			t.err = err
		}
		return t.last
	}
	t.last = v
	if v > t.peak {
		t.peak = v
	}
	return v
}
