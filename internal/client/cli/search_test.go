package cli

import (
	"context"
	"io"
	"testing"

	"github.com/dmitrijs2005/storeit/internal/client/gateway"
	"github.com/dmitrijs2005/storeit/internal/client/models"
	"github.com/dmitrijs2005/storeit/internal/client/notify"
	"github.com/dmitrijs2005/storeit/internal/client/route"
	"github.com/dmitrijs2005/storeit/internal/client/search"
	"github.com/dmitrijs2005/storeit/internal/client/tui"
	"github.com/dmitrijs2005/storeit/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearch_PrintsResults(t *testing.T) {
	fc := &fakeClient{found: []models.SearchResult{
		{Name: "invoice.pdf", Type: models.TypeDocument, Size: 512, CreatedAt: created},
	}}
	env := newTestApp(t, fc, "", "tok")

	require.NoError(t, env.app.Search(context.Background(), "  invoice "))
	assert.Equal(t, []string{"invoice"}, fc.queries)
	assert.Contains(t, env.out.String(), "invoice.pdf")
	assert.Contains(t, env.out.String(), "512 Bytes")
}

func TestSearch_RepeatQueryIsSentAgain(t *testing.T) {
	fc := &fakeClient{}
	env := newTestApp(t, fc, "", "tok")
	ctx := context.Background()

	require.NoError(t, env.app.Search(ctx, "tax"))
	require.NoError(t, env.app.Search(ctx, "tax"))
	assert.Equal(t, []string{"tax", "tax"}, fc.queries)
	assert.Contains(t, env.out.String(), "No files found")
}

func TestSearch_EmptyQuery(t *testing.T) {
	fc := &fakeClient{}
	env := newTestApp(t, fc, "", "tok")

	require.ErrorIs(t, env.app.Search(context.Background(), "   "), common.ErrorValidation)
	assert.Empty(t, fc.Calls())
}

func TestSearch_Failure(t *testing.T) {
	fc := &fakeClient{err: &gateway.RequestError{Status: 500, Message: "search index offline"}}
	env := newTestApp(t, fc, "", "tok")

	err := env.app.Search(context.Background(), "tax")
	require.Error(t, err)
	assert.True(t, isReported(err))
	assert.Equal(t, []string{"search index offline"}, env.rec.Messages(notify.LevelError))
	assert.Empty(t, env.out.String())
}

func TestSearch_Cancelled(t *testing.T) {
	env := newTestApp(t, &fakeClient{}, "", "tok")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// The cancelled context wins unless the query already settled.
	err := env.app.Search(ctx, "tax")
	if err != nil {
		require.ErrorIs(t, err, context.Canceled)
	}
}

func stubSearchBox(t *testing.T, picked *models.SearchResult) {
	t.Helper()
	orig := runSearchBox
	runSearchBox = func(context.Context, tui.Controller, <-chan search.Snapshot, io.Reader, io.Writer) (*models.SearchResult, error) {
		return picked, nil
	}
	t.Cleanup(func() { runSearchBox = orig })
}

func TestFind_ListsPickedCategory(t *testing.T) {
	stubSearchBox(t, &models.SearchResult{Name: "cat.png", Type: models.TypeImage})
	fc := &fakeClient{files: []models.FileRecord{{Name: "cat.png", Type: models.TypeImage, CreatedAt: created}}}
	env := newTestApp(t, fc, "", "tok")

	require.NoError(t, env.app.Find(context.Background()))
	assert.Equal(t, []string{"ListFilesByType"}, fc.Calls())
	assert.Equal(t, models.TypeImage, fc.categorySeen)
	assert.Equal(t, "/images", env.app.nav.Current())
	assert.Contains(t, env.out.String(), "cat.png")
}

func TestFind_NothingPicked(t *testing.T) {
	stubSearchBox(t, nil)
	fc := &fakeClient{}
	env := newTestApp(t, fc, "", "tok")

	require.NoError(t, env.app.Find(context.Background()))
	assert.Empty(t, fc.Calls())
}

func TestFind_RequiresCredential(t *testing.T) {
	stubSearchBox(t, &models.SearchResult{Type: models.TypeImage})
	fc := &fakeClient{}
	env := newTestApp(t, fc, "", "")

	require.ErrorIs(t, env.app.Find(context.Background()), gateway.ErrNoCredential)
	assert.Equal(t, route.SignIn, env.app.nav.Current())
}
