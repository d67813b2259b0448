package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/storeit/internal/client/actions"
	"github.com/dmitrijs2005/storeit/internal/client/models"
	"github.com/dmitrijs2005/storeit/internal/client/notify"
	"github.com/dmitrijs2005/storeit/internal/common"
)

func (a *App) actionDeps() actions.Deps {
	return actions.Deps{
		Backend:       a.api,
		Creds:         a.session,
		Nav:           a.nav,
		Notifier:      a.notifier,
		Logger:        a.log,
		Metrics:       a.metrics,
		MaxUploadSize: a.cfg.MaxUploadSize,
	}
}

// owned finds name in the user's own listing.
func (a *App) owned(ctx context.Context, name string) (*actions.Controller, error) {
	c, err := a.findOwned(ctx, name)
	if err != nil || c != nil {
		return c, err
	}
	return nil, a.notFound(name)
}

// findOwned returns a nil controller when name is not among the user's files.
func (a *App) findOwned(ctx context.Context, name string) (*actions.Controller, error) {
	if err := a.requireCredential(ctx, "find file"); err != nil {
		return nil, err
	}
	files, err := a.api.ListFiles(ctx)
	if err != nil {
		return nil, a.fail(ctx, "list files", err)
	}
	for _, f := range files {
		if f.Name == name {
			return actions.NewController(actions.Owned, actions.FromFile(f), a.actionDeps()), nil
		}
	}
	return nil, nil
}

func (a *App) trashed(ctx context.Context, name string) (*actions.Controller, error) {
	if err := a.requireCredential(ctx, "find file"); err != nil {
		return nil, err
	}
	files, err := a.api.ListTrash(ctx)
	if err != nil {
		return nil, a.fail(ctx, "list trash", err)
	}
	for _, f := range files {
		if f.Name == name {
			return actions.NewController(actions.Trashed, actions.FromTrashed(f), a.actionDeps()), nil
		}
	}
	return nil, a.notFound(name)
}

// shared finds name among the files shared with the user and loads its
// grants, so permission-gated actions reflect the current grant list.
func (a *App) shared(ctx context.Context, name string) (*actions.Controller, error) {
	if err := a.requireCredential(ctx, "find file"); err != nil {
		return nil, err
	}
	files, err := a.api.ListShared(ctx, models.DefaultSort)
	if err != nil {
		return nil, a.fail(ctx, "list shared files", err)
	}
	for _, f := range files {
		if f.Name != name {
			continue
		}
		c := actions.NewController(actions.Shared, actions.FromShared(f), a.actionDeps())
		id, err := a.viewer(ctx)
		if err != nil {
			return nil, a.fail(ctx, "resolve viewer", err)
		}
		c.SetViewer(id)
		if err := c.LoadGrants(ctx); err != nil {
			return nil, reported(err)
		}
		return c, nil
	}
	return nil, a.notFound(name)
}

// ownedOrShared looks in the user's own files first.
func (a *App) ownedOrShared(ctx context.Context, name string) (*actions.Controller, error) {
	c, err := a.findOwned(ctx, name)
	if err != nil || c != nil {
		return c, err
	}
	return a.shared(ctx, name)
}

func (a *App) notFound(name string) error {
	notify.Error(a.notifier, fmt.Sprintf("No file named %q", name))
	return reported(fmt.Errorf("%q: %w", name, common.ErrorNotFound))
}

// open walks the controller from idle into the dialog (or direct action) of k.
func (a *App) open(c *actions.Controller, k actions.Kind) error {
	if err := c.OpenMenu(); err != nil {
		return err
	}
	if err := c.Choose(k); err != nil {
		_ = c.DismissMenu()
		if errors.Is(err, actions.ErrNotAvailable) {
			notify.Error(a.notifier, fmt.Sprintf("%s is not available for %s", k.Label(), c.Target().Name))
			return reported(err)
		}
		return err
	}
	return nil
}

// submit confirms the open dialog. Backend and credential failures were
// already shown by the controller; local validation failures are shown here.
func (a *App) submit(ctx context.Context, c *actions.Controller, act actions.Action) error {
	err := c.Submit(ctx, act)
	if err == nil {
		return nil
	}
	if errors.Is(err, common.ErrorValidation) {
		notify.Error(a.notifier, err.Error())
	}
	return reported(err)
}

// run performs k end to end on c.
func (a *App) run(ctx context.Context, c *actions.Controller, act actions.Action) error {
	if err := a.open(c, act.Kind()); err != nil {
		return err
	}
	return a.submit(ctx, c, act)
}

func (a *App) confirm(question string) (bool, error) {
	if a.assumeYes {
		return true, nil
	}
	return Confirm(a.reader, question, a.out)
}
