package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/storeit/internal/client/client"
	"github.com/dmitrijs2005/storeit/internal/client/config"
	"github.com/dmitrijs2005/storeit/internal/client/gateway"
	"github.com/dmitrijs2005/storeit/internal/client/models"
	"github.com/dmitrijs2005/storeit/internal/client/notify"
	"github.com/dmitrijs2005/storeit/internal/client/route"
	"github.com/dmitrijs2005/storeit/internal/client/search"
	"github.com/dmitrijs2005/storeit/internal/client/session"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClient is an in-memory client.Client. Every method records its name.
type fakeClient struct {
	mu    sync.Mutex
	calls []string

	token  string
	user   models.User
	files  []models.FileRecord
	shared []models.SharedFileRecord
	trash  []models.TrashedFileRecord
	usage  []models.StorageUsage
	grants []models.AccessGrant
	found  []models.SearchResult
	target models.UploadTarget

	// err is returned by every backend call when set.
	err error
	// uploadGate blocks uploads until closed or the request is cancelled.
	uploadGate chan struct{}

	sortSeen     models.SortKey
	categorySeen models.FileType
	uploaded     []string
	renamed      [2]string
	shareArgs    []string
	edited       string
	editContent  string
	queries      []string
}

func (f *fakeClient) record(name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, name)
	return f.err
}

func (f *fakeClient) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeClient) called(name string) bool {
	for _, c := range f.Calls() {
		if c == name {
			return true
		}
	}
	return false
}

func (f *fakeClient) SignIn(_ context.Context, email, password string) (string, error) {
	if err := f.record("SignIn"); err != nil {
		return "", err
	}
	return f.token, nil
}

func (f *fakeClient) SignUp(_ context.Context, fullName, email, password string) (string, error) {
	if err := f.record("SignUp"); err != nil {
		return "", err
	}
	return f.token, nil
}

func (f *fakeClient) SignOut(context.Context) error {
	return f.record("SignOut")
}

func (f *fakeClient) Dashboard(context.Context) (*models.User, error) {
	if err := f.record("Dashboard"); err != nil {
		return nil, err
	}
	u := f.user
	return &u, nil
}

func (f *fakeClient) ListFiles(context.Context) ([]models.FileRecord, error) {
	if err := f.record("ListFiles"); err != nil {
		return nil, err
	}
	return f.files, nil
}

func (f *fakeClient) ListFilesByType(_ context.Context, category models.FileType, sort models.SortKey) ([]models.FileRecord, error) {
	if err := f.record("ListFilesByType"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	f.categorySeen, f.sortSeen = category, sort
	f.mu.Unlock()
	return f.files, nil
}

func (f *fakeClient) ListShared(_ context.Context, sort models.SortKey) ([]models.SharedFileRecord, error) {
	if err := f.record("ListShared"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	f.sortSeen = sort
	f.mu.Unlock()
	return f.shared, nil
}

func (f *fakeClient) ListTrash(context.Context) ([]models.TrashedFileRecord, error) {
	if err := f.record("ListTrash"); err != nil {
		return nil, err
	}
	return f.trash, nil
}

func (f *fakeClient) StorageUsage(context.Context) ([]models.StorageUsage, error) {
	if err := f.record("StorageUsage"); err != nil {
		return nil, err
	}
	return f.usage, nil
}

func (f *fakeClient) Upload(ctx context.Context, name string, _ models.FileType, content io.Reader) (string, error) {
	if err := f.record("Upload"); err != nil {
		return "", err
	}
	if f.uploadGate != nil {
		select {
		case <-f.uploadGate:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	if _, err := io.ReadAll(content); err != nil {
		return "", err
	}
	f.mu.Lock()
	f.uploaded = append(f.uploaded, name)
	f.mu.Unlock()
	return name + " uploaded", nil
}

func (f *fakeClient) Rename(_ context.Context, oldName, newName string) (client.RenameResult, error) {
	if err := f.record("Rename"); err != nil {
		return client.RenameResult{}, err
	}
	f.mu.Lock()
	f.renamed = [2]string{oldName, newName}
	f.mu.Unlock()
	return client.RenameResult{NewName: newName, Message: "File renamed"}, nil
}

func (f *fakeClient) MoveToTrash(_ context.Context, name string) (string, error) {
	if err := f.record("MoveToTrash"); err != nil {
		return "", err
	}
	return name + " moved to trash", nil
}

func (f *fakeClient) Restore(_ context.Context, name string) (string, error) {
	if err := f.record("Restore"); err != nil {
		return "", err
	}
	return name + " restored", nil
}

func (f *fakeClient) Delete(_ context.Context, name string) (string, error) {
	if err := f.record("Delete"); err != nil {
		return "", err
	}
	return name + " deleted", nil
}

func (f *fakeClient) ListAccessers(context.Context, uuid.UUID) ([]models.AccessGrant, error) {
	if err := f.record("ListAccessers"); err != nil {
		return nil, err
	}
	return f.grants, nil
}

func (f *fakeClient) AddAccesser(_ context.Context, fileName, email string, perm models.Permission) ([]models.AccessGrant, error) {
	if err := f.record("AddAccesser"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.shareArgs = []string{fileName, email, string(perm)}
	f.grants = append(f.grants, models.AccessGrant{AccesserID: uuid.New(), Email: email, Permission: perm})
	return f.grants, nil
}

func (f *fakeClient) RemoveAccesser(_ context.Context, fileName, email string) ([]models.AccessGrant, error) {
	if err := f.record("RemoveAccesser"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	kept := []models.AccessGrant{}
	for _, g := range f.grants {
		if g.Email != email {
			kept = append(kept, g)
		}
	}
	f.grants = kept
	return kept, nil
}

func (f *fakeClient) RequestEditTarget(context.Context, string, uuid.UUID) (models.UploadTarget, error) {
	if err := f.record("RequestEditTarget"); err != nil {
		return models.UploadTarget{}, err
	}
	return f.target, nil
}

func (f *fakeClient) UploadEdit(_ context.Context, _ models.UploadTarget, name string, content io.Reader) (string, error) {
	if err := f.record("UploadEdit"); err != nil {
		return "", err
	}
	b, err := io.ReadAll(content)
	if err != nil {
		return "", err
	}
	f.mu.Lock()
	f.edited, f.editContent = name, string(b)
	f.mu.Unlock()
	return "File updated", nil
}

func (f *fakeClient) Search(_ context.Context, q string) ([]models.SearchResult, error) {
	if err := f.record("Search"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	f.queries = append(f.queries, q)
	f.mu.Unlock()
	return f.found, nil
}

var _ client.Client = (*fakeClient)(nil)

func testConfig() *config.Config {
	var c config.Config
	c.LoadDefaults()
	c.SearchDebounce = time.Millisecond
	c.SearchCacheTTL = 0
	return &c
}

type testEnv struct {
	app *App
	rec *notify.Recorder
	out *bytes.Buffer
}

// newTestApp builds an App over fc reading input. A non-empty token signs
// the session in.
func newTestApp(t *testing.T, fc *fakeClient, input, token string) *testEnv {
	t.Helper()
	return newTestAppWith(t, testConfig(), fc, input, token)
}

func newTestAppWith(t *testing.T, cfg *config.Config, fc *fakeClient, input, token string) *testEnv {
	t.Helper()
	env := &testEnv{rec: &notify.Recorder{}, out: &bytes.Buffer{}}
	a, err := newApp(cfg, fc, session.New(nil), prometheus.NewRegistry(), nil, Options{
		In:       strings.NewReader(input),
		Out:      env.out,
		Token:    token,
		Notifier: env.rec,
	})
	require.NoError(t, err)
	t.Cleanup(a.Close)
	env.app = a
	return env
}

// noTerminal makes GetPassword read from the App input.
func noTerminal(t *testing.T) {
	t.Helper()
	orig := isTerminal
	isTerminal = func(int) bool { return false }
	t.Cleanup(func() { isTerminal = orig })
}

func TestGetStatus(t *testing.T) {
	env := newTestApp(t, &fakeClient{}, "", "")
	assert.Equal(t, "(signed out /)", env.app.getStatus())

	env = newTestApp(t, &fakeClient{}, "", "tok")
	assert.Equal(t, "(signed in /)", env.app.getStatus())

	env.app.user = &models.User{Email: "alice@example.com"}
	env.app.nav.Navigate(route.Trash)
	assert.Equal(t, "(alice@example.com /trash)", env.app.getStatus())
}

func TestRequireCredential_RedirectsWithoutCalls(t *testing.T) {
	fc := &fakeClient{}
	env := newTestApp(t, fc, "", "")

	err := env.app.List(context.Background(), listAll, "")
	require.ErrorIs(t, err, gateway.ErrNoCredential)
	assert.True(t, isReported(err))
	assert.Empty(t, fc.Calls())
	assert.Equal(t, route.SignIn, env.app.nav.Current())
	assert.Equal(t, []string{gateway.MsgNoCredential}, env.rec.Messages(notify.LevelError))
}

func TestFail_ShowsUserMessage(t *testing.T) {
	env := newTestApp(t, &fakeClient{}, "", "tok")

	err := env.app.fail(context.Background(), "op", &gateway.RequestError{Status: 401})
	require.ErrorIs(t, err, gateway.ErrUnauthorized)
	assert.True(t, isReported(err))
	assert.Equal(t, []string{gateway.MsgUnauthorized}, env.rec.Messages(notify.LevelError))
}

func TestReported(t *testing.T) {
	assert.NoError(t, reported(nil))

	base := errors.New("boom")
	r := reported(base)
	assert.True(t, isReported(r))
	assert.ErrorIs(t, r, base)
	assert.Same(t, r, reported(r))
	assert.True(t, isReported(fmt.Errorf("wrapped: %w", r)))
	assert.False(t, isReported(base))
}

func TestViewer_FallsBackToDashboard(t *testing.T) {
	id := uuid.New()
	fc := &fakeClient{user: models.User{ID: id, Email: "bob@example.com"}}
	env := newTestApp(t, fc, "", "opaque-token")

	got, err := env.app.viewer(context.Background())
	require.NoError(t, err)
	assert.Equal(t, id, got)

	_, err = env.app.viewer(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"Dashboard"}, fc.Calls(), "dashboard user is cached")
}

func TestPublish_KeepsLatest(t *testing.T) {
	env := newTestApp(t, &fakeClient{}, "", "")
	env.app.search.Close()

	for _, q := range []string{"a", "ab", "abc"} {
		env.app.publish(search.Snapshot{Query: q})
	}
	require.Len(t, env.app.updates, 1)
	assert.Equal(t, "abc", (<-env.app.updates).Query)
}
