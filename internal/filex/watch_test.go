package filex

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestWatch_ReportsSettledFile(t *testing.T) {
	dir := t.TempDir()
	w, err := Watch(dir, 20*time.Millisecond, nil)
	require.NoError(t, err)
	defer w.Close()

	path := filepath.Join(dir, "photo.png")
	require.NoError(t, os.WriteFile(path, []byte("one"), 0o600))
	require.NoError(t, os.WriteFile(path, []byte("two"), 0o600))

	select {
	case got := <-w.Files():
		require.Equal(t, path, got)
	case <-time.After(5 * time.Second):
		t.Fatal("no file reported")
	}
}

func TestWatch_SkipsDirectories(t *testing.T) {
	dir := t.TempDir()
	w, err := Watch(dir, 20*time.Millisecond, nil)
	require.NoError(t, err)
	defer w.Close()

	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub"), 0o700))
	file := filepath.Join(dir, "a.txt")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o600))

	select {
	case got := <-w.Files():
		require.Equal(t, file, got)
	case <-time.After(5 * time.Second):
		t.Fatal("no file reported")
	}
}

func TestWatch_CloseClosesFiles(t *testing.T) {
	w, err := Watch(t.TempDir(), time.Hour, nil)
	require.NoError(t, err)

	require.NoError(t, w.Close())
	_, ok := <-w.Files()
	require.False(t, ok)
	require.NoError(t, w.Close())
}

func TestWatch_RejectsNonDirectory(t *testing.T) {
	file := filepath.Join(t.TempDir(), "f")
	require.NoError(t, os.WriteFile(file, nil, 0o600))

	_, err := Watch(file, 0, nil)
	require.Error(t, err)

	_, err = Watch(filepath.Join(t.TempDir(), "missing"), 0, nil)
	require.Error(t, err)
}
