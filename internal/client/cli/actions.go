package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/storeit/internal/client/actions"
	"github.com/dmitrijs2005/storeit/internal/client/models"
	"github.com/dmitrijs2005/storeit/internal/client/notify"
	"github.com/dmitrijs2005/storeit/internal/filex"
	"github.com/dmitrijs2005/storeit/internal/netx"
)

func (a *App) Rename(ctx context.Context, name, newName string) error {
	c, err := a.owned(ctx, name)
	if err != nil {
		return err
	}
	return a.run(ctx, c, actions.Rename{NewName: newName})
}

// Share grants email access to name and prints the resulting grant list.
func (a *App) Share(ctx context.Context, name, email string, perm models.Permission) error {
	c, err := a.owned(ctx, name)
	if err != nil {
		return err
	}
	if err := a.open(c, actions.KindShare); err != nil {
		return err
	}
	if err := a.submit(ctx, c, actions.Share{Email: email, Permission: perm}); err != nil {
		return err
	}
	notify.Success(a.notifier, fmt.Sprintf("%s shared with %s", name, email))
	a.printGrants(c.Grants())
	return nil
}

// Unshare revokes the grant of email on name.
func (a *App) Unshare(ctx context.Context, name, email string) error {
	c, err := a.owned(ctx, name)
	if err != nil {
		return err
	}
	if err := c.LoadGrants(ctx); err != nil {
		return reported(err)
	}
	if err := a.open(c, actions.KindShare); err != nil {
		return err
	}
	if err := a.submit(ctx, c, actions.RemoveAccesser{Email: email}); err != nil {
		return err
	}
	_ = c.Cancel()
	notify.Success(a.notifier, fmt.Sprintf("%s no longer has access to %s", email, name))
	a.printGrants(c.Grants())
	return nil
}

// Accessers prints who has access to name.
func (a *App) Accessers(ctx context.Context, name string) error {
	c, err := a.owned(ctx, name)
	if err != nil {
		return err
	}
	if err := c.LoadGrants(ctx); err != nil {
		return reported(err)
	}
	a.printGrants(c.Grants())
	return nil
}

func (a *App) Trash(ctx context.Context, name string) error {
	c, err := a.owned(ctx, name)
	if err != nil {
		return err
	}
	ok, err := a.confirm(fmt.Sprintf("Move %s to trash?", name))
	if err != nil || !ok {
		return err
	}
	return a.run(ctx, c, actions.MoveToTrash{})
}

func (a *App) Restore(ctx context.Context, name string) error {
	c, err := a.trashed(ctx, name)
	if err != nil {
		return err
	}
	return a.run(ctx, c, actions.Restore{})
}

// Delete removes a trashed file for good.
func (a *App) Delete(ctx context.Context, name string) error {
	c, err := a.trashed(ctx, name)
	if err != nil {
		return err
	}
	ok, err := a.confirm(fmt.Sprintf("Permanently delete %s? This cannot be undone.", name))
	if err != nil || !ok {
		return err
	}
	return a.run(ctx, c, actions.Delete{})
}

// Details prints what is known about name without changing it.
func (a *App) Details(ctx context.Context, name string) error {
	c, err := a.ownedOrShared(ctx, name)
	if err != nil {
		return err
	}
	if c.Target().OwnerName == "" {
		if err := c.LoadGrants(ctx); err != nil {
			return reported(err)
		}
	}
	if err := a.open(c, actions.KindDetails); err != nil {
		return err
	}
	d := c.Details()
	_ = c.Cancel()

	fmt.Fprintf(a.out, "Name:     %s\n", d.Name)
	fmt.Fprintf(a.out, "Type:     %s", d.Type)
	if d.Extension != "" {
		fmt.Fprintf(a.out, " (%s)", d.Extension)
	}
	fmt.Fprintln(a.out)
	fmt.Fprintf(a.out, "Size:     %s\n", d.Size)
	fmt.Fprintf(a.out, "Created:  %s\n", d.CreatedAt.Format(timeLayout))
	if d.OwnerEmail != "" {
		fmt.Fprintf(a.out, "Owner:    %s <%s>\n", d.OwnerName, d.OwnerEmail)
		perm := string(d.Permission)
		if perm == "" {
			perm = "none"
		}
		fmt.Fprintf(a.out, "Access:   %s\n", perm)
		return nil
	}
	a.printGrants(d.Grants)
	return nil
}

// Download saves name into dir through its signed link.
func (a *App) Download(ctx context.Context, name, dir string) error {
	c, err := a.ownedOrShared(ctx, name)
	if err != nil {
		return err
	}
	if err := a.open(c, actions.KindDownload); err != nil {
		return err
	}
	link, err := c.DownloadURL()
	if err != nil {
		_ = c.DismissMenu()
		notify.Error(a.notifier, fmt.Sprintf("%s has no download link", name))
		return reported(err)
	}
	_ = c.DismissMenu()

	dir, err = filex.EnsureDir(dir)
	if err != nil {
		return a.localFail(ctx, "download", err)
	}
	path, err := netx.DownloadToFile(ctx, a.http, link, dir, name)
	if err != nil {
		return a.localFail(ctx, "download", err)
	}
	notify.Success(a.notifier, "Saved "+path)
	return nil
}

// Edit replaces the contents of a file shared with edit permission by the
// local file at path.
func (a *App) Edit(ctx context.Context, name, path string) error {
	src, err := filex.OpenLocal(path)
	if err != nil {
		return err
	}
	c, err := a.shared(ctx, name)
	if err != nil {
		return err
	}
	if err := a.run(ctx, c, actions.Edit{}); err != nil {
		return err
	}
	if !c.UploadTargetReady() {
		_ = c.Cancel()
		return reported(actions.ErrNoUploadTarget)
	}
	if err := c.UploadReplacement(ctx, src); err != nil {
		_ = c.Cancel()
		return reported(err)
	}
	return nil
}

func (a *App) printGrants(grants []models.AccessGrant) {
	if len(grants) == 0 {
		fmt.Fprintln(a.out, "Not shared with anyone")
		return
	}
	rows := make([][]string, 0, len(grants))
	for _, g := range grants {
		rows = append(rows, []string{g.Email, string(g.Permission), g.GrantedAt.Format(timeLayout)})
	}
	a.printTable([]string{"Email", "Permission", "Since"}, rows)
}
