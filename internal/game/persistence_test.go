package game

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveNowWritesImmediatelyAndCountsAsImmediate(t *testing.T) {
	dir := t.TempDir()
	p := NewPersistence(filepath.Join(dir, "world.json"), time.Hour, discardLogger())
	w := NewWorld()

	require.NoError(t, p.SaveNow(w))

	stats := p.Stats()
	assert.Equal(t, int64(1), stats.Immediate)
	assert.Zero(t, stats.Debounced)
	assert.Zero(t, stats.Errors)

	loaded, err := LoadWorld(filepath.Join(dir, "world.json"), discardLogger())
	require.NoError(t, err)
	assert.NotNil(t, loaded.Rooms)
}

func TestSaveDebouncedWithZeroIntervalFlushesSynchronouslyAsDebounced(t *testing.T) {
	dir := t.TempDir()
	p := NewPersistence(filepath.Join(dir, "world.json"), 0, discardLogger())
	w := NewWorld()

	p.SaveDebounced(w)
	p.SaveDebounced(w)

	stats := p.Stats()
	assert.Equal(t, int64(2), stats.Debounced, "expected each debounce-disabled call to flush and count once")
	assert.Zero(t, stats.Immediate)
	assert.Zero(t, stats.Errors)
}

func TestSaveDebouncedCoalescesBurstsIntoOneTimerFire(t *testing.T) {
	dir := t.TempDir()
	p := NewPersistence(filepath.Join(dir, "world.json"), 20*time.Millisecond, discardLogger())
	w := NewWorld()

	p.SaveDebounced(w)
	p.SaveDebounced(w)
	p.SaveDebounced(w)

	require.Eventually(t, func() bool {
		return p.Stats().Debounced >= 1
	}, time.Second, 5*time.Millisecond)

	assert.EqualValues(t, 1, p.Stats().Debounced, "expected the burst to coalesce into a single flush")
}

func TestSaveNowAgainstADirectoryPathCountsAnError(t *testing.T) {
	dir := t.TempDir()
	blocked := filepath.Join(dir, "world.json")
	require.NoError(t, os.MkdirAll(blocked, 0o755))

	p := NewPersistence(blocked, time.Hour, discardLogger())
	err := p.SaveNow(NewWorld())
	require.Error(t, err, "renaming a temp file onto an existing directory must fail")

	stats := p.Stats()
	assert.EqualValues(t, 1, stats.Errors)
	assert.EqualValues(t, 1, stats.Immediate)
}
