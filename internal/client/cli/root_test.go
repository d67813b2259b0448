package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dmitrijs2005/storeit/internal/client/config"
	"github.com/dmitrijs2005/storeit/internal/client/gateway"
	"github.com/dmitrijs2005/storeit/internal/client/models"
	"github.com/dmitrijs2005/storeit/internal/client/notify"
	"github.com/dmitrijs2005/storeit/internal/client/session"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type rootRun struct {
	code   int
	out    string
	errOut string
	cfg    *config.Config
	opts   Options
}

// execute runs Execute with NewApp replaced by an App over fc.
func execute(t *testing.T, fc *fakeClient, rec *notify.Recorder, input string, args ...string) rootRun {
	t.Helper()
	var run rootRun
	orig := newAppFn
	newAppFn = func(cfg *config.Config, opts Options) (*App, error) {
		run.cfg, run.opts = cfg, opts
		opts.Notifier = rec
		return newApp(cfg, fc, session.New(nil), prometheus.NewRegistry(), nil, opts)
	}
	t.Cleanup(func() { newAppFn = orig })

	var out, errOut bytes.Buffer
	run.code = Execute(context.Background(), args, strings.NewReader(input), &out, &errOut)
	run.out, run.errOut = out.String(), errOut.String()
	return run
}

func TestExecute_OneShotWithToken(t *testing.T) {
	t.Setenv(EnvToken, "")
	fc := &fakeClient{files: []models.FileRecord{{Name: "notes.txt", Type: models.TypeDocument, CreatedAt: created}}}
	rec := &notify.Recorder{}

	run := execute(t, fc, rec, "", "--token", "flag-token", "--server", "http://files.example/", "ls")
	require.Equal(t, 0, run.code, run.errOut)
	assert.Equal(t, "flag-token", run.opts.Token)
	assert.Equal(t, "http://files.example/", run.cfg.ServerURL)
	assert.Equal(t, []string{"ListFiles"}, fc.Calls())
	assert.Contains(t, run.out, "notes.txt")
}

func TestExecute_TokenFromEnvironment(t *testing.T) {
	t.Setenv(EnvToken, "env-token")
	fc := &fakeClient{}

	run := execute(t, fc, &notify.Recorder{}, "", "usage")
	require.Equal(t, 0, run.code, run.errOut)
	assert.Equal(t, "env-token", run.opts.Token)
	assert.Equal(t, []string{"StorageUsage"}, fc.Calls())
}

func TestExecute_TokenFromEnvFile(t *testing.T) {
	unsetToken(t)
	envFile := filepath.Join(t.TempDir(), "storeit.env")
	require.NoError(t, os.WriteFile(envFile, []byte(EnvToken+"=file-token\n"), 0o600))
	fc := &fakeClient{}

	run := execute(t, fc, &notify.Recorder{}, "", "--env-file", envFile, "queue")
	require.Equal(t, 0, run.code, run.errOut)
	assert.Equal(t, "file-token", run.opts.Token)
}

func unsetToken(t *testing.T) {
	t.Helper()
	t.Setenv(EnvToken, "")
	require.NoError(t, os.Unsetenv(EnvToken))
}

func TestExecute_NoToken(t *testing.T) {
	t.Setenv(EnvToken, "")
	fc := &fakeClient{}
	rec := &notify.Recorder{}

	run := execute(t, fc, rec, "", "ls", "trash")
	assert.Equal(t, 1, run.code)
	assert.Empty(t, fc.Calls())
	assert.Equal(t, []string{gateway.MsgNoCredential}, rec.Messages(notify.LevelError))
	assert.Empty(t, run.errOut, "reported errors are not printed twice")
}

func TestExecute_AssumeYes(t *testing.T) {
	t.Setenv(EnvToken, "tok")
	fc := &fakeClient{files: ownedFiles()}

	run := execute(t, fc, &notify.Recorder{}, "", "-y", "trash", "report.pdf")
	require.Equal(t, 0, run.code, run.errOut)
	assert.True(t, run.opts.AssumeYes)
	assert.True(t, fc.called("MoveToTrash"))
}

func TestExecute_BadArguments(t *testing.T) {
	t.Setenv(EnvToken, "tok")

	run := execute(t, &fakeClient{}, &notify.Recorder{}, "", "rename", "only-one")
	assert.Equal(t, 1, run.code)
	assert.Contains(t, run.errOut, "Error:")

	run = execute(t, &fakeClient{}, &notify.Recorder{}, "", "ls", "--sort", "sideways")
	assert.Equal(t, 1, run.code)
	assert.Contains(t, run.errOut, "Error:")
}

func TestExecute_BadConfig(t *testing.T) {
	run := execute(t, &fakeClient{}, &notify.Recorder{}, "", "--max-upload-size", "0", "queue")
	assert.Equal(t, 1, run.code)
	assert.Contains(t, run.errOut, "max upload size")
	assert.Nil(t, run.cfg, "no app is built from an invalid configuration")
}

func TestExecute_Version(t *testing.T) {
	run := execute(t, &fakeClient{}, &notify.Recorder{}, "", "version")
	require.Equal(t, 0, run.code, run.errOut)
	assert.Contains(t, run.out, "Build version:")
	assert.Nil(t, run.cfg)
}

func TestExecute_ShellByDefault(t *testing.T) {
	captureOutput(t)
	t.Setenv(EnvToken, "tok")
	fc := &fakeClient{}

	run := execute(t, fc, &notify.Recorder{}, "usage\nexit\n")
	require.Equal(t, 0, run.code, run.errOut)
	assert.Equal(t, []string{"StorageUsage"}, fc.Calls())
}
