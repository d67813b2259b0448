// Package actions drives the per-file action flow: menu, confirmation
// dialog, backend call, reset.
//
// One Controller exists per rendered file. Controllers share nothing but the
// backend and credential source, so any number of them may be submitting at
// once; a single controller submits at most one action at a time.
package actions

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/dmitrijs2005/storeit/internal/client/client"
	"github.com/dmitrijs2005/storeit/internal/client/gateway"
	"github.com/dmitrijs2005/storeit/internal/client/metrics"
	"github.com/dmitrijs2005/storeit/internal/client/models"
	"github.com/dmitrijs2005/storeit/internal/client/notify"
	"github.com/dmitrijs2005/storeit/internal/client/route"
	"github.com/dmitrijs2005/storeit/internal/client/upload"
	"github.com/dmitrijs2005/storeit/internal/common"
	"github.com/dmitrijs2005/storeit/internal/logging"
	"github.com/google/uuid"
)

var (
	// ErrBusy means an action of this controller is still being submitted.
	ErrBusy = errors.New("action in progress")

	// ErrNotAvailable means the action is not offered for this file or viewer.
	ErrNotAvailable = errors.New("action not available")

	// ErrInvalidState means the call does not fit the current state.
	ErrInvalidState = errors.New("invalid action state")

	// ErrNoUploadTarget means a replacement was offered before the backend
	// issued both halves of the upload target.
	ErrNoUploadTarget = errors.New("upload target not ready")
)

type State int

const (
	StateIdle State = iota
	StateMenuOpen
	StateDialogOpen
	StateSubmitting
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateMenuOpen:
		return "menu-open"
	case StateDialogOpen:
		return "dialog-open"
	case StateSubmitting:
		return "submitting"
	default:
		return "unknown"
	}
}

// Backend is the part of client.Client the controller calls.
type Backend interface {
	Rename(ctx context.Context, oldName, newName string) (client.RenameResult, error)
	MoveToTrash(ctx context.Context, name string) (string, error)
	Restore(ctx context.Context, name string) (string, error)
	Delete(ctx context.Context, name string) (string, error)
	ListAccessers(ctx context.Context, fileID uuid.UUID) ([]models.AccessGrant, error)
	AddAccesser(ctx context.Context, fileName, email string, perm models.Permission) ([]models.AccessGrant, error)
	RemoveAccesser(ctx context.Context, fileName, email string) ([]models.AccessGrant, error)
	RequestEditTarget(ctx context.Context, fileName string, ownerID uuid.UUID) (models.UploadTarget, error)
	UploadEdit(ctx context.Context, target models.UploadTarget, name string, content io.Reader) (string, error)
}

type Credentials interface {
	Token() (string, error)
}

// Deps are the collaborators shared by every controller of a view.
type Deps struct {
	Backend  Backend
	Creds    Credentials
	Nav      route.Navigator
	Notifier notify.Notifier
	Logger   logging.Logger
	Metrics  *metrics.Metrics
	// MaxUploadSize bounds replacement files; zero means common.MaxFileSize.
	MaxUploadSize int64
}

type Controller struct {
	caps Capabilities
	deps Deps
	log  logging.Logger

	mu      sync.Mutex
	target  Target
	state   State
	pending Kind
	grants  []models.AccessGrant
	viewer  uuid.UUID
	upload  models.UploadTarget
}

func NewController(caps Capabilities, target Target, deps Deps) *Controller {
	log := deps.Logger
	if log == nil {
		log = logging.Nop()
	}
	if deps.MaxUploadSize <= 0 {
		deps.MaxUploadSize = common.MaxFileSize
	}
	return &Controller{
		caps:   caps,
		deps:   deps,
		log:    log.With("component", "actions", "variant", caps.Variant, "file", target.Name),
		target: target,
		grants: []models.AccessGrant{},
	}
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Pending is the action whose dialog is open or being submitted.
func (c *Controller) Pending() Kind {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pending
}

func (c *Controller) Target() Target {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.target
}

func (c *Controller) OpenMenu() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateIdle {
		return c.stateErr()
	}
	c.state = StateMenuOpen
	return nil
}

func (c *Controller) DismissMenu() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateMenuOpen {
		return c.stateErr()
	}
	c.state = StateIdle
	return nil
}

// Available lists the menu entries for the current grants and viewer.
func (c *Controller) Available() []Kind {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.available()
}

func (c *Controller) available() []Kind {
	perm, ok := models.PermissionFor(c.grants, c.viewer)
	out := make([]Kind, 0, len(c.caps.Actions))
	for _, k := range c.caps.Actions {
		if need, gated := c.caps.Gates[k]; gated && (!ok || perm != need) {
			continue
		}
		out = append(out, k)
	}
	return out
}

func (c *Controller) isAvailable(k Kind) bool {
	for _, a := range c.available() {
		if a == k {
			return true
		}
	}
	return false
}

// Choose picks a menu entry. Direct entries such as download leave the
// state untouched; every other entry opens its dialog.
func (c *Controller) Choose(k Kind) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateMenuOpen {
		return c.stateErr()
	}
	if !c.isAvailable(k) {
		return fmt.Errorf("%s: %w", k, ErrNotAvailable)
	}
	if c.caps.direct(k) {
		return nil
	}
	c.state = StateDialogOpen
	c.pending = k
	c.upload = models.UploadTarget{}
	return nil
}

// Cancel closes the open dialog.
func (c *Controller) Cancel() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateDialogOpen {
		return c.stateErr()
	}
	c.reset()
	return nil
}

// reset must be called with c.mu held.
func (c *Controller) reset() {
	c.state = StateIdle
	c.pending = ""
	c.upload = models.UploadTarget{}
}

// stateErr must be called with c.mu held.
func (c *Controller) stateErr() error {
	if c.state == StateSubmitting {
		return ErrBusy
	}
	return fmt.Errorf("%w: %s", ErrInvalidState, c.state)
}

// Submit confirms the open dialog with a. The credential is checked right
// before the backend call; without one the navigator is sent to sign-in and
// nothing is sent.
//
// The controller returns to idle whether the call succeeds or fails, with
// two exceptions: removing an accesser keeps the share dialog open, and a
// successful Edit keeps the dialog open waiting for UploadReplacement.
func (c *Controller) Submit(ctx context.Context, a Action) error {
	c.mu.Lock()
	if c.state != StateDialogOpen {
		err := c.stateErr()
		c.mu.Unlock()
		return err
	}
	if !c.accepts(a) {
		pending := c.pending
		c.mu.Unlock()
		return fmt.Errorf("%w: %s dialog cannot submit %s", ErrInvalidState, pending, a.Kind())
	}
	if err := c.gateHeld(); err != nil {
		c.mu.Unlock()
		return err
	}
	if err := validate(a); err != nil {
		c.mu.Unlock()
		return err
	}
	c.state = StateSubmitting
	name := c.target.Name
	ownerID := c.target.OwnerID
	c.mu.Unlock()

	if err := c.checkCredential(ctx, a.Kind()); err != nil {
		c.mu.Lock()
		c.reset()
		c.mu.Unlock()
		return err
	}

	msg, err := c.dispatch(ctx, a, name, ownerID)

	c.mu.Lock()
	switch {
	case a.Kind() == KindRemoveAccesser:
		c.state = StateDialogOpen
	case a.Kind() == KindEdit && err == nil:
		c.state = StateDialogOpen
	default:
		c.reset()
	}
	c.mu.Unlock()

	c.deps.Metrics.ActionSubmitted(string(a.Kind()), err == nil)
	if err != nil {
		return c.fail(ctx, a.Kind(), err)
	}
	if msg != "" {
		notify.Success(c.deps.Notifier, msg)
	}
	return nil
}

// gateHeld closes the open dialog once the grants no longer offer its entry.
// It must be called with c.mu held.
func (c *Controller) gateHeld() error {
	if c.isAvailable(c.pending) {
		return nil
	}
	k := c.pending
	c.reset()
	return fmt.Errorf("%s: %w", k, ErrNotAvailable)
}

// accepts must be called with c.mu held.
func (c *Controller) accepts(a Action) bool {
	if a.Kind() == KindRemoveAccesser {
		return c.pending == KindShare
	}
	return a.Kind() == c.pending
}

func validate(a Action) error {
	switch v := a.(type) {
	case Rename:
		if strings.TrimSpace(v.NewName) == "" {
			return fmt.Errorf("%w: new name is empty", common.ErrorValidation)
		}
	case Share:
		if strings.TrimSpace(v.Email) == "" {
			return fmt.Errorf("%w: accesser email is empty", common.ErrorValidation)
		}
		if _, err := models.ParsePermission(string(v.Permission)); err != nil {
			return err
		}
	case RemoveAccesser:
		if v.Email == "" {
			return fmt.Errorf("%w: accesser email is empty", common.ErrorValidation)
		}
	}
	return nil
}

// dispatch performs the backend call of a and applies its result. It
// returns the success notice text.
func (c *Controller) dispatch(ctx context.Context, a Action, name string, ownerID uuid.UUID) (string, error) {
	switch v := a.(type) {
	case Rename:
		res, err := c.deps.Backend.Rename(ctx, name, v.NewName)
		if err != nil {
			return "", err
		}
		c.mu.Lock()
		c.target.Name = res.NewName
		c.mu.Unlock()
		return res.Message, nil

	case Share:
		grants, err := c.deps.Backend.AddAccesser(ctx, name, v.Email, v.Permission)
		if err != nil {
			return "", err
		}
		c.setGrants(grants)
		return "", nil

	case RemoveAccesser:
		grants, err := c.deps.Backend.RemoveAccesser(ctx, name, v.Email)
		if err != nil {
			return "", err
		}
		c.setGrants(grants)
		return "", nil

	case MoveToTrash:
		return c.deps.Backend.MoveToTrash(ctx, name)

	case Restore:
		return c.deps.Backend.Restore(ctx, name)

	case Delete:
		return c.deps.Backend.Delete(ctx, name)

	case Edit:
		target, err := c.deps.Backend.RequestEditTarget(ctx, name, ownerID)
		if err != nil {
			return "", err
		}
		if !target.Ready() {
			return "", ErrNoUploadTarget
		}
		c.mu.Lock()
		c.upload = target
		c.mu.Unlock()
		return "", nil

	default:
		return "", fmt.Errorf("%w: unknown action %T", ErrInvalidState, a)
	}
}

func (c *Controller) checkCredential(ctx context.Context, k Kind) error {
	if _, err := c.deps.Creds.Token(); err != nil {
		c.log.Warn(ctx, "action refused without credential", "action", k)
		c.deps.Nav.Navigate(route.SignIn)
		notify.Error(c.deps.Notifier, gateway.UserMessage(gateway.ErrNoCredential))
		return fmt.Errorf("%s: %w", k, gateway.ErrNoCredential)
	}
	return nil
}

func (c *Controller) fail(ctx context.Context, k Kind, err error) error {
	c.log.Warn(ctx, "action failed", "action", k, "error", err)
	if errors.Is(err, gateway.ErrNoCredential) {
		c.deps.Nav.Navigate(route.SignIn)
	}
	notify.Error(c.deps.Notifier, gateway.UserMessage(err))
	return fmt.Errorf("%s: %w", k, err)
}

// UploadTargetReady reports whether a replacement may be offered.
func (c *Controller) UploadTargetReady() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state == StateDialogOpen && c.pending == KindEdit && c.upload.Ready() && c.isAvailable(KindEdit)
}

// UploadReplacement sends exactly one file to the target obtained by a
// successful Edit submission. An oversize file is rejected locally and the
// dialog stays open for another choice.
func (c *Controller) UploadReplacement(ctx context.Context, src upload.Source) error {
	c.mu.Lock()
	if c.state != StateDialogOpen || c.pending != KindEdit {
		err := c.stateErr()
		c.mu.Unlock()
		return err
	}
	if err := c.gateHeld(); err != nil {
		c.mu.Unlock()
		return err
	}
	if !c.upload.Ready() {
		c.mu.Unlock()
		return ErrNoUploadTarget
	}
	if src.Size() > c.deps.MaxUploadSize {
		c.mu.Unlock()
		notify.Error(c.deps.Notifier, fmt.Sprintf("%s is too large. Max file size is %s.",
			src.Name(), models.FormatSize(c.deps.MaxUploadSize)))
		return fmt.Errorf("%s: %w", src.Name(), upload.ErrOversize)
	}
	c.state = StateSubmitting
	target := c.upload
	c.mu.Unlock()

	if err := c.checkCredential(ctx, KindEdit); err != nil {
		c.mu.Lock()
		c.reset()
		c.mu.Unlock()
		return err
	}

	msg, err := c.sendReplacement(ctx, target, src)

	c.mu.Lock()
	c.reset()
	c.mu.Unlock()

	c.deps.Metrics.ActionSubmitted("edit-upload", err == nil)
	if err != nil {
		return c.fail(ctx, KindEdit, err)
	}
	if msg == "" {
		msg = src.Name() + " replaced successfully"
	}
	notify.Success(c.deps.Notifier, msg)
	return nil
}

func (c *Controller) sendReplacement(ctx context.Context, target models.UploadTarget, src upload.Source) (string, error) {
	rc, err := src.Open()
	if err != nil {
		return "", fmt.Errorf("open %s: %w", src.Name(), err)
	}
	defer rc.Close()
	return c.deps.Backend.UploadEdit(ctx, target, src.Name(), rc)
}

// LoadGrants fetches the file's grant list and replaces the local one.
func (c *Controller) LoadGrants(ctx context.Context) error {
	if _, err := c.deps.Creds.Token(); err != nil {
		c.deps.Nav.Navigate(route.SignIn)
		return fmt.Errorf("load grants: %w", gateway.ErrNoCredential)
	}
	c.mu.Lock()
	id := c.target.UUID
	c.mu.Unlock()

	grants, err := c.deps.Backend.ListAccessers(ctx, id)
	if err != nil {
		return c.fail(ctx, KindShare, err)
	}
	c.setGrants(grants)
	return nil
}

func (c *Controller) setGrants(g []models.AccessGrant) {
	cp := make([]models.AccessGrant, len(g))
	copy(cp, g)
	c.mu.Lock()
	c.grants = cp
	c.mu.Unlock()
}

func (c *Controller) Grants() []models.AccessGrant {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]models.AccessGrant, len(c.grants))
	copy(out, c.grants)
	return out
}

// SetViewer sets the identity matched against the grant list.
func (c *Controller) SetViewer(id uuid.UUID) {
	c.mu.Lock()
	c.viewer = id
	c.mu.Unlock()
}

// Permission derives the viewer's permission from the current grants.
func (c *Controller) Permission() (models.Permission, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return models.PermissionFor(c.grants, c.viewer)
}

func (c *Controller) Details() Details {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ext := models.TypeOf(c.target.Name)
	perm, _ := models.PermissionFor(c.grants, c.viewer)
	grants := make([]models.AccessGrant, len(c.grants))
	copy(grants, c.grants)
	return Details{
		Name:       c.target.Name,
		Type:       c.target.Type,
		Extension:  ext,
		Size:       models.FormatSize(c.target.Size),
		CreatedAt:  c.target.CreatedAt,
		OwnerName:  c.target.OwnerName,
		OwnerEmail: c.target.OwnerEmail,
		Permission: perm,
		Grants:     grants,
	}
}

// DownloadURL returns the signed link. It does not change state.
func (c *Controller) DownloadURL() (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.isAvailable(KindDownload) || c.target.DownloadURL == "" {
		return "", fmt.Errorf("%s: %w", KindDownload, ErrNotAvailable)
	}
	return c.target.DownloadURL, nil
}
