package search

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/storeit/internal/client/gateway"
	"github.com/dmitrijs2005/storeit/internal/client/metrics"
	"github.com/dmitrijs2005/storeit/internal/client/models"
	"github.com/dmitrijs2005/storeit/internal/client/notify"
	"github.com/dmitrijs2005/storeit/internal/client/route"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTimer struct {
	clock   *fakeClock
	f       func()
	stopped bool
	fired   bool
}

func (t *fakeTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	pending := !t.stopped && !t.fired
	t.stopped = true
	return pending
}

// fakeClock fires timers only when told to.
type fakeClock struct {
	mu     sync.Mutex
	timers []*fakeTimer
	delays []time.Duration
}

func (c *fakeClock) AfterFunc(d time.Duration, f func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &fakeTimer{clock: c, f: f}
	c.timers = append(c.timers, t)
	c.delays = append(c.delays, d)
	return t
}

// Fire runs every pending timer and returns how many ran.
func (c *fakeClock) Fire() int {
	c.mu.Lock()
	var due []*fakeTimer
	for _, t := range c.timers {
		if !t.stopped && !t.fired {
			t.fired = true
			due = append(due, t)
		}
	}
	c.mu.Unlock()
	for _, t := range due {
		t.f()
	}
	return len(due)
}

const staleMetric = "storeit_client_search_stale_responses_total"

const staleOne = `
# HELP storeit_client_search_stale_responses_total Search responses dropped because a newer query superseded them.
# TYPE storeit_client_search_stale_responses_total counter
storeit_client_search_stale_responses_total 1
`

type creds struct{ missing bool }

func (c creds) Token() (string, error) {
	if c.missing {
		return "", gateway.ErrNoCredential
	}
	return "tok", nil
}

// fakeSearcher answers immediately unless a gate is registered for the query.
type fakeSearcher struct {
	mu      sync.Mutex
	queries []string
	gates   map[string]chan struct{}
	started chan string
	err     error
}

func (f *fakeSearcher) Search(_ context.Context, q string) ([]models.SearchResult, error) {
	f.mu.Lock()
	f.queries = append(f.queries, q)
	gate := f.gates[q]
	err := f.err
	f.mu.Unlock()
	if f.started != nil {
		f.started <- q
	}
	if gate != nil {
		<-gate
	}
	if err != nil {
		return nil, err
	}
	return []models.SearchResult{{Name: q + ".pdf", Type: models.TypeDocument}}, nil
}

func (f *fakeSearcher) Queries() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.queries...)
}

type fixture struct {
	clock    *fakeClock
	searcher *fakeSearcher
	nav      *route.History
	rec      *notify.Recorder
	reg      *prometheus.Registry
}

func newController(t *testing.T, s *fakeSearcher, c Credentials, opts Options) (*Controller, *fixture) {
	t.Helper()
	f := &fixture{
		clock:    &fakeClock{},
		searcher: s,
		nav:      route.NewHistory("/documents?query=old"),
		rec:      &notify.Recorder{},
		reg:      prometheus.NewRegistry(),
	}
	opts.AfterFunc = f.clock.AfterFunc
	opts.Metrics = metrics.New(f.reg)
	ctrl := NewController(s, c, f.nav, f.rec, opts)
	t.Cleanup(ctrl.Close)
	return ctrl, f
}

func TestDebounceCollapsesKeystrokes(t *testing.T) {
	s := &fakeSearcher{}
	c, f := newController(t, s, creds{}, Options{})

	c.SetQuery("a")
	c.SetQuery("ab")
	c.SetQuery("abc")
	assert.Empty(t, s.Queries(), "nothing is sent before the quiet period ends")

	assert.Equal(t, 1, f.clock.Fire())
	assert.Equal(t, []string{"abc"}, s.Queries())
	assert.Equal(t, DefaultDebounce, f.clock.delays[0])

	snap := c.Snapshot()
	assert.Equal(t, "abc", snap.Active)
	assert.True(t, snap.Open)
	require.Len(t, snap.Results, 1)
	assert.Equal(t, "abc.pdf", snap.Results[0].Name)
}

func TestStaleResponseIsDropped(t *testing.T) {
	s := &fakeSearcher{
		gates:   map[string]chan struct{}{"ab": make(chan struct{}), "abc": make(chan struct{})},
		started: make(chan string, 2),
	}
	c, f := newController(t, s, creds{}, Options{})

	c.SetQuery("ab")
	go f.clock.Fire()
	require.Equal(t, "ab", <-s.started)

	c.SetQuery("abc")
	go f.clock.Fire()
	require.Equal(t, "abc", <-s.started)

	close(s.gates["abc"])
	require.Eventually(t, func() bool { return c.Snapshot().Open }, time.Second, time.Millisecond)

	close(s.gates["ab"])
	// the "ab" response arrives last and must not win
	require.Eventually(t, func() bool {
		return testutil.GatherAndCompare(f.reg, strings.NewReader(staleOne), staleMetric) == nil
	}, time.Second, time.Millisecond)

	snap := c.Snapshot()
	assert.Equal(t, "abc", snap.Active)
	require.Len(t, snap.Results, 1)
	assert.Equal(t, "abc.pdf", snap.Results[0].Name)
	assert.False(t, snap.Loading)
}

func TestEmptyQueryClearsWithoutRequest(t *testing.T) {
	s := &fakeSearcher{}
	c, f := newController(t, s, creds{}, Options{})

	c.SetQuery("report")
	f.clock.Fire()
	require.True(t, c.Snapshot().Open)

	c.SetQuery("")
	f.clock.Fire()

	snap := c.Snapshot()
	assert.False(t, snap.Open)
	assert.Empty(t, snap.Results)
	assert.Equal(t, []string{"report"}, s.Queries())
	assert.Equal(t, "/documents", f.nav.Current())
}

func TestEmptyQueryFromFreshState(t *testing.T) {
	s := &fakeSearcher{}
	c, f := newController(t, s, creds{}, Options{})

	c.SetQuery("")
	f.clock.Fire()
	assert.Empty(t, s.Queries())
	assert.False(t, c.Snapshot().Open)
}

func TestSelectNavigatesByType(t *testing.T) {
	tests := []struct {
		typ  models.FileType
		want string
	}{
		{models.TypeVideo, "/media"},
		{models.TypeAudio, "/media"},
		{models.TypeImage, "/images"},
		{models.TypeDocument, "/documents"},
		{models.TypeOther, "/others"},
	}
	for _, tt := range tests {
		t.Run(string(tt.typ), func(t *testing.T) {
			s := &fakeSearcher{}
			c, f := newController(t, s, creds{}, Options{})
			c.SetQuery("x")
			f.clock.Fire()

			c.Select(models.SearchResult{Name: "x", Type: tt.typ})
			assert.Equal(t, tt.want, f.nav.Current())
			assert.Equal(t, Snapshot{Results: []models.SearchResult(nil)}, c.Snapshot())
		})
	}
}

func TestResetForcesRepeatQuery(t *testing.T) {
	s := &fakeSearcher{}
	c, f := newController(t, s, creds{}, Options{})

	c.SetQuery("report")
	f.clock.Fire()
	c.Reset()
	assert.Equal(t, Snapshot{Results: []models.SearchResult(nil)}, c.Snapshot())
	assert.Equal(t, "/documents?query=old", f.nav.Current(), "reset does not navigate")

	c.SetQuery("report")
	f.clock.Fire()
	assert.Equal(t, []string{"report", "report"}, s.Queries())
	assert.True(t, c.Snapshot().Open)
}

func TestNoCredentialKeepsPriorResults(t *testing.T) {
	s := &fakeSearcher{}
	c, f := newController(t, s, creds{}, Options{})
	c.SetQuery("report")
	f.clock.Fire()
	require.Len(t, c.Snapshot().Results, 1)

	c.creds = creds{missing: true}
	c.SetQuery("reports")
	f.clock.Fire()

	assert.Equal(t, []string{"report"}, s.Queries())
	assert.Equal(t, route.SignIn, f.nav.Current())
	assert.Equal(t, []string{gateway.MsgNoCredential}, f.rec.Messages(notify.LevelError))
	snap := c.Snapshot()
	assert.True(t, snap.Open)
	assert.False(t, snap.Loading)
	require.Len(t, snap.Results, 1)
	assert.Equal(t, "report.pdf", snap.Results[0].Name)
}

func TestNoCredentialWhileRequestInFlight(t *testing.T) {
	s := &fakeSearcher{
		gates:   map[string]chan struct{}{"ab": make(chan struct{})},
		started: make(chan string, 1),
	}
	c, f := newController(t, s, creds{}, Options{})

	c.SetQuery("ab")
	go f.clock.Fire()
	require.Equal(t, "ab", <-s.started)
	require.True(t, c.Snapshot().Loading)

	c.mu.Lock()
	c.creds = creds{missing: true}
	c.mu.Unlock()
	c.SetQuery("abc")
	f.clock.Fire()

	snap := c.Snapshot()
	assert.False(t, snap.Loading, "no request is in flight for abc")
	assert.Equal(t, route.SignIn, f.nav.Current())

	close(s.gates["ab"])
	require.Eventually(t, func() bool {
		return testutil.GatherAndCompare(f.reg, strings.NewReader(staleOne), staleMetric) == nil
	}, time.Second, time.Millisecond)

	snap = c.Snapshot()
	assert.False(t, snap.Loading)
	assert.Equal(t, "abc", snap.Active)
	assert.Empty(t, snap.Results)
	assert.Equal(t, []string{"ab"}, s.Queries())
}

func TestFailureNotifies(t *testing.T) {
	s := &fakeSearcher{err: &gateway.RequestError{Status: 500}}
	c, f := newController(t, s, creds{}, Options{})
	c.SetQuery("x")
	f.clock.Fire()

	assert.Equal(t, []string{gateway.MsgGeneric}, f.rec.Messages(notify.LevelError))
	snap := c.Snapshot()
	assert.False(t, snap.Loading)
	assert.False(t, snap.Open)
	assert.Empty(t, snap.Results)
}

func TestFailureDropsPreviousResults(t *testing.T) {
	s := &fakeSearcher{}
	c, f := newController(t, s, creds{}, Options{})
	c.SetQuery("report")
	f.clock.Fire()
	require.True(t, c.Snapshot().Open)

	s.mu.Lock()
	s.err = &gateway.RequestError{Status: 500}
	s.mu.Unlock()
	c.SetQuery("other")
	f.clock.Fire()

	snap := c.Snapshot()
	assert.Equal(t, "other", snap.Active)
	assert.False(t, snap.Open)
	assert.Empty(t, snap.Results)
}

func TestCacheServesRepeatQuery(t *testing.T) {
	s := &fakeSearcher{}
	c, f := newController(t, s, creds{}, Options{CacheTTL: time.Minute, CacheSize: 8})

	c.SetQuery("report")
	f.clock.Fire()
	c.SetQuery("")
	f.clock.Fire()
	c.SetQuery("report")
	f.clock.Fire()

	assert.Equal(t, []string{"report"}, s.Queries())
	assert.True(t, c.Snapshot().Open)
}

func TestOnChangeAndClose(t *testing.T) {
	var mu sync.Mutex
	var seen []Snapshot
	s := &fakeSearcher{}
	c, f := newController(t, s, creds{}, Options{OnChange: func(sn Snapshot) {
		mu.Lock()
		seen = append(seen, sn)
		mu.Unlock()
	}})

	c.SetQuery("q")
	f.clock.Fire()
	c.Close()
	c.SetQuery("ignored")
	assert.Equal(t, 0, f.clock.Fire())

	mu.Lock()
	defer mu.Unlock()
	require.NotEmpty(t, seen)
	assert.True(t, seen[len(seen)-1].Open)
}
