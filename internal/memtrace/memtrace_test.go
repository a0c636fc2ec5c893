package memtrace

import (
	"errors"
	"os"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type scriptedSource struct {
	values []uint64
	errAt  int
	reads  int
}

func (s *scriptedSource) Name() string { return "scripted" }

func (s *scriptedSource) Read() (uint64, error) {
	i := s.reads
	s.reads++
	if s.errAt > 0 && i == s.errAt {
		return 0, errors.New("boom")
	}
	if i >= len(s.values) {
		return s.values[len(s.values)-1], nil
	}
	return s.values[i], nil
}

func TestTrackerPeakCoversUnreportedSamples(t *testing.T) {
	src := &scriptedSource{values: []uint64{10, 50, 20, 30}}
	tr := Start(src)
	assert.Equal(t, uint64(50), tr.Current())
	assert.Equal(t, uint64(20), tr.Current())
	tr.Stop()

	assert.Equal(t, uint64(50), tr.Peak())
	assert.Equal(t, 4, tr.Samples())
	assert.Equal(t, uint64(30), tr.Current())
	assert.Equal(t, 4, tr.Samples())
}

func TestTrackerStopIsIdempotent(t *testing.T) {
	src := &scriptedSource{values: []uint64{1, 2, 3, 4}}
	tr := Start(src)
	tr.Stop()
	tr.Stop()
	assert.Equal(t, 2, src.reads)

	// Frozen after stop.
	assert.Equal(t, uint64(2), tr.Current())
	assert.Equal(t, 2, src.reads)
}

func TestTrackerKeepsLastValueOnError(t *testing.T) {
	src := &scriptedSource{values: []uint64{7, 0, 9}, errAt: 1}
	tr := Start(src)
	assert.Equal(t, uint64(7), tr.Current())
	require.Error(t, tr.Err())
	assert.Equal(t, uint64(9), tr.Current())
	assert.Equal(t, uint64(9), tr.Peak())
}

func TestHeapSource(t *testing.T) {
	v, err := HeapSource{}.Read()
	require.NoError(t, err)
	assert.Positive(t, v)
}

func TestRSSSource(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("rss source reads /proc")
	}
	if _, err := os.Stat("/proc/self/status"); err != nil {
		t.Skipf("no /proc: %v", err)
	}
	src, err := NewRSSSource()
	require.NoError(t, err)
	assert.Equal(t, "rss", src.Name())

	v, err := src.Read()
	require.NoError(t, err)
	assert.Positive(t, v)

	byName, err := NewSource("rss")
	require.NoError(t, err)
	assert.Equal(t, "rss", byName.Name())
}

func TestNewSource(t *testing.T) {
	src, err := NewSource("")
	require.NoError(t, err)
	assert.Equal(t, "heap", src.Name())

	_, err = NewSource("gpu")
	require.Error(t, err)
}

func TestTrackerImplementsProbe(t *testing.T) {
	var _ Probe = Start(HeapSource{})
}
