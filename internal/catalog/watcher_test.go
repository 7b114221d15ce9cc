package catalog

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func writeCatalog(t *testing.T, path, doc string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))
}

func TestFileStore_Reload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "products.json")

	s := OpenFile(path, nil)
	assert.Equal(t, 0, s.Len(), "missing file serves an empty catalog")
	assert.Error(t, s.Ping(context.Background()))

	writeCatalog(t, path, `[{"id":"a"},{"id":"b"}]`)
	assert.Equal(t, 2, s.Reload())
	assert.NoError(t, s.Ping(context.Background()))

	writeCatalog(t, path, `not json`)
	assert.Equal(t, 0, s.Reload())
}

func TestWatcher_ReloadsOnChange(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	path := filepath.Join(t.TempDir(), "products.json")
	writeCatalog(t, path, `[{"id":"a"}]`)

	s := OpenFile(path, nil)
	require.Equal(t, 1, s.Len())

	w, err := NewWatcher(s, nil)
	require.NoError(t, err)
	w.SetDebounce(10 * time.Millisecond)
	require.NoError(t, w.Start(context.Background()))

	writeCatalog(t, path, `[{"id":"a"},{"id":"b"},{"id":"c"}]`)

	require.Eventually(t, func() bool { return s.Len() == 3 }, 5*time.Second, 20*time.Millisecond)

	require.NoError(t, w.Stop())
	assert.NoError(t, w.Stop(), "second stop is a no-op")
}

func TestWatcher_StopsWithContext(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	path := filepath.Join(t.TempDir(), "products.json")
	writeCatalog(t, path, `[]`)

	w, err := NewWatcher(OpenFile(path, nil), nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, w.Start(ctx))
	cancel()

	select {
	case <-w.doneCh:
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not exit on context cancel")
	}
	require.NoError(t, w.Stop())
}

func TestWatcher_StopWithoutStart(t *testing.T) {
	path := filepath.Join(t.TempDir(), "products.json")
	w, err := NewWatcher(OpenFile(path, nil), nil)
	require.NoError(t, err)
	assert.NoError(t, w.Stop())
}
