package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/dmitrijs2005/storeit/internal/client/client"
	"github.com/dmitrijs2005/storeit/internal/client/config"
	"github.com/dmitrijs2005/storeit/internal/client/gateway"
	"github.com/dmitrijs2005/storeit/internal/client/metrics"
	"github.com/dmitrijs2005/storeit/internal/client/models"
	"github.com/dmitrijs2005/storeit/internal/client/notify"
	"github.com/dmitrijs2005/storeit/internal/client/route"
	"github.com/dmitrijs2005/storeit/internal/client/search"
	"github.com/dmitrijs2005/storeit/internal/client/session"
	"github.com/dmitrijs2005/storeit/internal/client/upload"
	"github.com/dmitrijs2005/storeit/internal/logging"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
)

// Options carry what NewApp cannot derive from the configuration.
type Options struct {
	In  io.Reader
	Out io.Writer
	// Token seeds the session, e.g. from --token.
	Token string
	// AssumeYes skips confirmation prompts.
	AssumeYes bool
	Notifier  notify.Notifier
	Logger    logging.Logger
}

type App struct {
	cfg      *config.Config
	log      logging.Logger
	session  *session.Session
	api      client.Client
	nav      *route.History
	notifier notify.Notifier
	registry *prometheus.Registry
	metrics  *metrics.Metrics
	uploads  *upload.Orchestrator
	search   *search.Controller
	updates  chan search.Snapshot
	http     *http.Client

	in        io.Reader
	reader    *bufio.Reader
	out       io.Writer
	assumeYes bool
	// interactive is set by the shell; uploads then run in the background.
	interactive bool

	user *models.User
}

// NewApp wires the HTTP backend, the session and the orchestration
// components for one process.
func NewApp(cfg *config.Config, opts Options) (*App, error) {
	if opts.Logger == nil {
		opts.Logger = logging.New(os.Stderr, cfg.LogLevel)
	}
	sess := session.New(session.NewMemoryStore())
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	gw, err := gateway.New(cfg.ServerURL, sess, gateway.Options{
		Timeout:  cfg.RequestTimeout,
		Logger:   opts.Logger,
		Observer: m,
	})
	if err != nil {
		return nil, err
	}
	return newApp(cfg, client.NewHTTPClient(gw), sess, reg, m, opts)
}

func newApp(cfg *config.Config, api client.Client, sess *session.Session, reg *prometheus.Registry, m *metrics.Metrics, opts Options) (*App, error) {
	if opts.In == nil {
		opts.In = os.Stdin
	}
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	if opts.Notifier == nil {
		opts.Notifier = notify.NewWriter(opts.Out)
	}
	if opts.Logger == nil {
		opts.Logger = logging.Nop()
	}
	if opts.Token != "" {
		if err := sess.SetToken(opts.Token); err != nil {
			return nil, err
		}
	}

	a := &App{
		cfg:       cfg,
		log:       opts.Logger,
		session:   sess,
		api:       api,
		nav:       route.NewHistory(route.Dashboard),
		notifier:  opts.Notifier,
		registry:  reg,
		metrics:   m,
		updates:   make(chan search.Snapshot, 1),
		http:      &http.Client{},
		in:        opts.In,
		reader:    bufio.NewReader(opts.In),
		out:       opts.Out,
		assumeYes: opts.AssumeYes,
	}

	a.uploads = upload.NewOrchestrator(api, sess, a.nav, a.notifier, upload.Options{
		MaxSize:     cfg.MaxUploadSize,
		Concurrency: cfg.UploadConcurrency,
		Logger:      a.log,
		Metrics:     m,
	})
	a.search = search.NewController(api, sess, a.nav, a.notifier, search.Options{
		Debounce:  cfg.SearchDebounce,
		CacheTTL:  cfg.SearchCacheTTL,
		CacheSize: cfg.SearchCacheSize,
		OnChange:  a.publish,
		Logger:    a.log,
		Metrics:   m,
	})
	return a, nil
}

// publish keeps only the latest snapshot in a.updates.
func (a *App) publish(s search.Snapshot) {
	select {
	case <-a.updates:
	default:
	}
	select {
	case a.updates <- s:
	default:
	}
}

// Close aborts background work.
func (a *App) Close() {
	for _, t := range a.uploads.Queue() {
		_ = a.uploads.Remove(t.ID)
	}
	a.search.Close()
}

// Registry is the Prometheus registry every component reports to.
func (a *App) Registry() *prometheus.Registry {
	return a.registry
}

func (a *App) signedIn() bool {
	return a.session.SignedIn()
}

func (a *App) getStatus() string {
	who := "signed out"
	if a.signedIn() {
		who = "signed in"
		if a.user != nil {
			who = a.user.Email
		}
	}
	return fmt.Sprintf("(%s %s)", who, a.nav.Current())
}

// requireCredential refuses to go on without a stored credential, sending the
// user to sign-in the way the orchestration components do.
func (a *App) requireCredential(ctx context.Context, op string) error {
	if a.signedIn() {
		return nil
	}
	a.log.Warn(ctx, "refused without credential", "op", op)
	a.nav.Navigate(route.SignIn)
	notify.Error(a.notifier, gateway.MsgNoCredential)
	return reported(fmt.Errorf("%s: %w", op, gateway.ErrNoCredential))
}

// fail logs err, shows its user-facing text and marks it reported.
func (a *App) fail(ctx context.Context, op string, err error) error {
	a.log.Warn(ctx, "operation failed", "op", op, "error", err)
	if errors.Is(err, gateway.ErrNoCredential) {
		a.nav.Navigate(route.SignIn)
	}
	notify.Error(a.notifier, gateway.UserMessage(err))
	return reported(fmt.Errorf("%s: %w", op, err))
}

// localFail is fail for errors that never reached the backend; their own
// text is what the user needs to see.
func (a *App) localFail(ctx context.Context, op string, err error) error {
	a.log.Warn(ctx, "operation failed", "op", op, "error", err)
	notify.Error(a.notifier, err.Error())
	return reported(fmt.Errorf("%s: %w", op, err))
}

// viewer is the identity matched against grant lists: the token subject when
// there is one, the dashboard user otherwise.
func (a *App) viewer(ctx context.Context) (uuid.UUID, error) {
	if id, ok := a.session.ViewerID(); ok {
		return id, nil
	}
	u, err := a.currentUser(ctx)
	if err != nil {
		return uuid.Nil, err
	}
	return u.ID, nil
}

func (a *App) currentUser(ctx context.Context) (*models.User, error) {
	if a.user != nil {
		return a.user, nil
	}
	u, err := a.api.Dashboard(ctx)
	if err != nil {
		return nil, err
	}
	a.user = u
	return u, nil
}

// reportedError has already been shown to the user.
type reportedError struct {
	err error
}

func (e *reportedError) Error() string { return e.err.Error() }
func (e *reportedError) Unwrap() error { return e.err }

func reported(err error) error {
	if err == nil {
		return nil
	}
	var r *reportedError
	if errors.As(err, &r) {
		return err
	}
	return &reportedError{err: err}
}

func isReported(err error) bool {
	var r *reportedError
	return errors.As(err, &r)
}
