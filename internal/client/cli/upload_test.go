package cli

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/storeit/internal/client/gateway"
	"github.com/dmitrijs2005/storeit/internal/client/notify"
	"github.com/dmitrijs2005/storeit/internal/client/route"
	"github.com/dmitrijs2005/storeit/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFiles(t *testing.T, files map[string]string) []string {
	t.Helper()
	dir := t.TempDir()
	var paths []string
	for name, body := range files {
		p := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(p, []byte(body), 0o600))
		paths = append(paths, p)
	}
	return paths
}

func TestUpload_WaitsForBatch(t *testing.T) {
	fc := &fakeClient{}
	env := newTestApp(t, fc, "", "tok")
	paths := writeFiles(t, map[string]string{"a.txt": "aaa", "b.png": "bbb"})

	require.NoError(t, env.app.Upload(context.Background(), paths))
	assert.ElementsMatch(t, []string{"a.txt", "b.png"}, fc.uploaded)
	assert.ElementsMatch(t, []string{"a.txt uploaded", "b.png uploaded"}, env.rec.Messages(notify.LevelSuccess))
}

func TestUpload_OversizeFailsBatch(t *testing.T) {
	fc := &fakeClient{}
	cfg := testConfig()
	cfg.MaxUploadSize = 4
	env := newTestAppWith(t, cfg, fc, "", "tok")
	paths := writeFiles(t, map[string]string{"big.bin": "0123456789", "ok.txt": "ok"})

	err := env.app.Upload(context.Background(), paths)
	require.ErrorIs(t, err, errUploadsFailed)
	assert.True(t, isReported(err))
	assert.Equal(t, []string{"ok.txt"}, fc.uploaded)
	assert.Equal(t, []string{"big.bin is too large. Max file size is 4 Bytes."}, env.rec.Messages(notify.LevelError))
}

func TestUpload_MissingFile(t *testing.T) {
	fc := &fakeClient{}
	env := newTestApp(t, fc, "", "tok")

	err := env.app.Upload(context.Background(), []string{filepath.Join(t.TempDir(), "nope.txt")})
	require.Error(t, err)
	assert.True(t, isReported(err))
	assert.Empty(t, fc.Calls())
	assert.Len(t, env.rec.Messages(notify.LevelError), 1)
}

func TestUpload_NoFiles(t *testing.T) {
	env := newTestApp(t, &fakeClient{}, "", "tok")
	require.ErrorIs(t, env.app.Upload(context.Background(), nil), common.ErrorValidation)
}

func TestUpload_NoCredential(t *testing.T) {
	fc := &fakeClient{}
	env := newTestApp(t, fc, "", "")
	paths := writeFiles(t, map[string]string{"a.txt": "a"})

	err := env.app.Upload(context.Background(), paths)
	require.ErrorIs(t, err, gateway.ErrNoCredential)
	assert.Empty(t, fc.Calls())
	assert.Equal(t, route.SignIn, env.app.nav.Current())
	assert.Equal(t, []string{gateway.MsgNoCredential}, env.rec.Messages(notify.LevelError))
}

func TestUpload_InteractiveQueueAndCancel(t *testing.T) {
	fc := &fakeClient{uploadGate: make(chan struct{})}
	t.Cleanup(func() { close(fc.uploadGate) })
	env := newTestApp(t, fc, "", "tok")
	env.app.interactive = true
	ctx := context.Background()
	paths := writeFiles(t, map[string]string{"slow.mov": "frames"})

	require.NoError(t, env.app.Upload(ctx, paths))
	assert.Equal(t, []string{"Uploading 1 file(s); see 'queue'"}, env.rec.Messages(notify.LevelInfo))

	require.NoError(t, env.app.Queue(ctx))
	assert.Contains(t, env.out.String(), "slow.mov")

	queued := env.app.uploads.Queue()
	require.Len(t, queued, 1)
	require.NoError(t, env.app.CancelUpload(ctx, queued[0].ID.String()[:8]))
	assert.Contains(t, env.rec.Messages(notify.LevelInfo), "Upload of slow.mov cancelled")

	env.out.Reset()
	require.NoError(t, env.app.Queue(ctx))
	assert.Equal(t, "No uploads in progress\n", env.out.String())
	assert.Empty(t, fc.uploaded)
}

func TestCancelUpload_NoMatch(t *testing.T) {
	env := newTestApp(t, &fakeClient{}, "", "tok")

	err := env.app.CancelUpload(context.Background(), "deadbeef")
	require.ErrorIs(t, err, common.ErrorNotFound)
	assert.Equal(t, []string{`No upload matches "deadbeef"`}, env.rec.Messages(notify.LevelError))
}

func TestWatch_UploadsNewFiles(t *testing.T) {
	fc := &fakeClient{}
	env := newTestApp(t, fc, "", "tok")
	dir := t.TempDir()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- env.app.Watch(ctx, dir) }()

	require.Eventually(t, func() bool {
		for _, m := range env.rec.Messages(notify.LevelInfo) {
			if strings.HasPrefix(m, "Watching ") {
				return true
			}
		}
		return false
	}, 5*time.Second, 10*time.Millisecond)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "scan.jpg"), []byte("jpeg"), 0o600))
	require.Eventually(t, func() bool {
		return len(env.rec.Messages(notify.LevelSuccess)) == 1
	}, 5*time.Second, 20*time.Millisecond)
	assert.Equal(t, []string{"scan.jpg uploaded"}, env.rec.Messages(notify.LevelSuccess))

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not stop")
	}
}

func TestWatch_NotADirectory(t *testing.T) {
	env := newTestApp(t, &fakeClient{}, "", "tok")
	paths := writeFiles(t, map[string]string{"file.txt": "x"})

	err := env.app.Watch(context.Background(), paths[0])
	require.Error(t, err)
	assert.True(t, isReported(err))
}
