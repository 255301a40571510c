package editor

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestWatcher_DeliversWrites(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "resume.json")
	require.NoError(t, os.WriteFile(path, []byte("{}"), 0o644))

	w, err := NewWatcher(nil)
	require.NoError(t, err)
	defer w.Stop()

	changes := make(chan string, 16)
	require.NoError(t, w.Add(path, func(_ string, content []byte) { changes <- string(content) }))
	w.Start(context.Background())

	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.json"), []byte("ignored"), 0o644))
	require.NoError(t, os.WriteFile(path, []byte(`{"skills": ["Go"]}`), 0o644))

	deadline := time.After(5 * time.Second)
	for {
		select {
		case got := <-changes:
			require.NotEqual(t, "ignored", got)
			if got == `{"skills": ["Go"]}` {
				return
			}
		case <-deadline:
			t.Fatal("write was not delivered")
		}
	}
}

func TestWatcher_StopsOnContextCancel(t *testing.T) {
	w, err := NewWatcher(nil)
	require.NoError(t, err)
	require.NoError(t, w.Add(filepath.Join(t.TempDir(), "layout.jsx"), func(string, []byte) {}))

	ctx, cancel := context.WithCancel(context.Background())
	w.Start(ctx)
	cancel()
	w.Stop()
}

func TestWatcher_StopWithoutStart(t *testing.T) {
	w, err := NewWatcher(nil)
	require.NoError(t, err)
	w.Stop()
}
