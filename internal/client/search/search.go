// Package search debounces query input, issues one backend search per quiet
// period and applies a response only while its query is still the active one.
package search

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/dmitrijs2005/storeit/internal/client/gateway"
	"github.com/dmitrijs2005/storeit/internal/client/metrics"
	"github.com/dmitrijs2005/storeit/internal/client/models"
	"github.com/dmitrijs2005/storeit/internal/client/notify"
	"github.com/dmitrijs2005/storeit/internal/client/route"
	"github.com/dmitrijs2005/storeit/internal/logging"
	"github.com/hashicorp/golang-lru/v2/expirable"
)

const DefaultDebounce = 500 * time.Millisecond

type Searcher interface {
	Search(ctx context.Context, query string) ([]models.SearchResult, error)
}

type Credentials interface {
	Token() (string, error)
}

// Timer is the part of *time.Timer the controller needs.
type Timer interface {
	Stop() bool
}

// AfterFunc schedules f after d. time.AfterFunc is the default.
type AfterFunc func(d time.Duration, f func()) Timer

type Options struct {
	Debounce time.Duration
	// CacheTTL and CacheSize enable the result cache when both are positive.
	CacheTTL  time.Duration
	CacheSize int
	AfterFunc AfterFunc
	// OnChange is called after every visible change, outside any lock.
	OnChange func(Snapshot)
	Logger   logging.Logger
	Metrics  *metrics.Metrics
}

// Snapshot is the visible search state.
type Snapshot struct {
	// Query is the raw input; Active is the debounced query last promoted.
	Query   string
	Active  string
	Results []models.SearchResult
	// Open is true once a response for Active was applied. Results may be
	// empty, meaning nothing matched.
	Open    bool
	Loading bool
}

type Controller struct {
	searcher Searcher
	creds    Credentials
	nav      route.Navigator
	notifier notify.Notifier
	log      logging.Logger
	metrics  *metrics.Metrics
	debounce time.Duration
	after    AfterFunc
	onChange func(Snapshot)
	cache    *expirable.LRU[string, []models.SearchResult]

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu      sync.Mutex
	query   string
	active  string
	results []models.SearchResult
	open    bool
	loading bool
	timer   Timer
	gen     uint64 // bumped per keystroke
	seq     uint64 // bumped per promoted query
	closed  bool
}

func NewController(s Searcher, creds Credentials, nav route.Navigator, n notify.Notifier, opts Options) *Controller {
	log := opts.Logger
	if log == nil {
		log = logging.Nop()
	}
	d := opts.Debounce
	if d <= 0 {
		d = DefaultDebounce
	}
	after := opts.AfterFunc
	if after == nil {
		after = func(d time.Duration, f func()) Timer { return time.AfterFunc(d, f) }
	}
	var cache *expirable.LRU[string, []models.SearchResult]
	if opts.CacheTTL > 0 && opts.CacheSize > 0 {
		cache = expirable.NewLRU[string, []models.SearchResult](opts.CacheSize, nil, opts.CacheTTL)
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Controller{
		searcher: s,
		creds:    creds,
		nav:      nav,
		notifier: n,
		log:      log.With("component", "search"),
		metrics:  opts.Metrics,
		debounce: d,
		after:    after,
		onChange: opts.OnChange,
		cache:    cache,
		ctx:      ctx,
		cancel:   cancel,
	}
}

// SetQuery records a keystroke and restarts the quiet period.
func (c *Controller) SetQuery(q string) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.query = q
	c.gen++
	gen := c.gen
	if c.timer != nil {
		c.timer.Stop()
	}
	c.timer = c.after(c.debounce, func() { c.promote(gen, q) })
	snap := c.snapshot()
	c.mu.Unlock()

	c.changed(snap)
}

// promote makes q the active query if no keystroke arrived since it was scheduled.
func (c *Controller) promote(gen uint64, q string) {
	c.mu.Lock()
	if c.closed || gen != c.gen {
		c.mu.Unlock()
		return
	}
	c.timer = nil
	c.active = q
	c.seq++
	seq := c.seq

	if q == "" {
		c.results = nil
		c.open = false
		c.loading = false
		snap := c.snapshot()
		c.mu.Unlock()
		c.nav.DropQuery(route.QueryParam)
		c.changed(snap)
		return
	}

	if _, err := c.creds.Token(); err != nil {
		// The superseded request, if any, settles as stale.
		c.loading = false
		snap := c.snapshot()
		c.mu.Unlock()
		c.log.Warn(c.ctx, "search refused without credential", "query", q)
		notify.Error(c.notifier, gateway.MsgNoCredential)
		c.nav.Navigate(route.SignIn)
		c.changed(snap)
		return
	}

	if c.cache != nil {
		if res, ok := c.cache.Get(q); ok {
			c.metrics.CacheHit()
			c.apply(res)
			snap := c.snapshot()
			c.mu.Unlock()
			c.changed(snap)
			return
		}
		c.metrics.CacheMiss()
	}

	c.loading = true
	c.wg.Add(1)
	snap := c.snapshot()
	c.mu.Unlock()
	c.changed(snap)

	defer c.wg.Done()
	c.metrics.SearchIssued()
	res, err := c.searcher.Search(c.ctx, q)
	c.settle(seq, q, res, err)
}

func (c *Controller) settle(seq uint64, q string, res []models.SearchResult, err error) {
	if err == nil && c.cache != nil {
		c.cache.Add(q, res)
	}

	c.mu.Lock()
	if seq != c.seq {
		c.mu.Unlock()
		c.metrics.SearchStale()
		c.log.Debug(c.ctx, "stale search response dropped", "query", q)
		return
	}
	c.loading = false
	switch {
	case err == nil:
		c.apply(res)
	case !errors.Is(err, context.Canceled):
		// Results of an older query must not pass for this one's.
		c.results = nil
		c.open = false
	}
	snap := c.snapshot()
	c.mu.Unlock()

	if err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		c.log.Warn(c.ctx, "search failed", "query", q, "error", err)
		if errors.Is(err, gateway.ErrNoCredential) {
			c.nav.Navigate(route.SignIn)
		}
		notify.Error(c.notifier, gateway.UserMessage(err))
	}
	c.changed(snap)
}

// apply must be called with c.mu held.
func (c *Controller) apply(res []models.SearchResult) {
	c.results = append([]models.SearchResult(nil), res...)
	c.open = true
}

// Select clears the session and navigates to the listing holding r.
func (c *Controller) Select(r models.SearchResult) {
	c.mu.Lock()
	c.clear()
	snap := c.snapshot()
	c.mu.Unlock()

	c.nav.Navigate(route.ForFileType(r.Type))
	c.changed(snap)
}

// Reset clears the session without navigating, so the next query is
// issued even when it matches the previous one.
func (c *Controller) Reset() {
	c.mu.Lock()
	c.clear()
	snap := c.snapshot()
	c.mu.Unlock()
	c.changed(snap)
}

// clear must be called with c.mu held. In-flight responses become stale.
func (c *Controller) clear() {
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	c.gen++
	c.seq++
	c.query = ""
	c.active = ""
	c.results = nil
	c.open = false
	c.loading = false
}

func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshot()
}

// snapshot must be called with c.mu held.
func (c *Controller) snapshot() Snapshot {
	return Snapshot{
		Query:   c.query,
		Active:  c.active,
		Results: append([]models.SearchResult(nil), c.results...),
		Open:    c.open,
		Loading: c.loading,
	}
}

func (c *Controller) changed(s Snapshot) {
	if c.onChange != nil {
		c.onChange(s)
	}
}

// Close stops the debounce timer, aborts the in-flight request and waits for
// it to return.
func (c *Controller) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	c.clear()
	c.mu.Unlock()

	c.cancel()
	c.wg.Wait()
}
