package session

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

func TestWatcher_ReportsRemoval(t *testing.T) {
	defer goleak.VerifyNone(t)

	st := NewStore(filepath.Join(t.TempDir(), "session.json"), nil)
	require.NoError(t, st.Save(New("tok", "ada@example.com")))

	w, err := st.Watch(context.Background())
	require.NoError(t, err)
	defer w.Stop()

	// Other files in the directory are ignored.
	require.NoError(t, os.WriteFile(filepath.Join(filepath.Dir(st.Path()), "other.json"), []byte("{}"), 0600))
	require.NoError(t, st.Save(New("tok-2", "ada@example.com")))
	select {
	case <-w.Ended():
		t.Fatal("ended without the session being removed")
	case <-time.After(100 * time.Millisecond):
	}

	require.NoError(t, st.Clear())
	select {
	case <-w.Ended():
	case <-time.After(5 * time.Second):
		t.Fatal("removal not reported")
	}
}

func TestWatcher_StopsWithContext(t *testing.T) {
	defer goleak.VerifyNone(t)

	st := NewStore(filepath.Join(t.TempDir(), "nested", "session.json"), nil)
	ctx, cancel := context.WithCancel(context.Background())

	w, err := st.Watch(ctx)
	require.NoError(t, err)
	cancel()
	w.Stop()

	select {
	case <-w.Ended():
		t.Fatal("cancelled watcher must not report an ended session")
	default:
	}
	assert.DirExists(t, filepath.Dir(st.Path()))
}
