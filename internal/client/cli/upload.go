package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/storeit/internal/client/gateway"
	"github.com/dmitrijs2005/storeit/internal/client/models"
	"github.com/dmitrijs2005/storeit/internal/client/notify"
	"github.com/dmitrijs2005/storeit/internal/client/upload"
	"github.com/dmitrijs2005/storeit/internal/common"
	"github.com/dmitrijs2005/storeit/internal/filex"
)

// errUploadsFailed is returned when at least one file of a waited batch did
// not upload. Each failure was already notified.
var errUploadsFailed = errors.New("some uploads failed")

// Upload sends the files at paths as one batch. The shell returns at once and
// reports each file as it settles; otherwise Upload waits for the batch.
func (a *App) Upload(ctx context.Context, paths []string) error {
	if len(paths) == 0 {
		return fmt.Errorf("%w: no files given", common.ErrorValidation)
	}
	files, err := filex.OpenAll(paths)
	if err != nil {
		return a.localFail(ctx, "upload", err)
	}
	srcs := make([]upload.Source, len(files))
	for i, f := range files {
		srcs[i] = f
	}

	batch, err := a.uploads.SubmitBatch(ctx, srcs)
	if err != nil {
		if errors.Is(err, gateway.ErrNoCredential) {
			notify.Error(a.notifier, gateway.MsgNoCredential)
		}
		return reported(err)
	}

	if a.interactive {
		if n := countState(batch.Tasks(), upload.StateQueued, upload.StateUploading); n > 0 {
			notify.Info(a.notifier, fmt.Sprintf("Uploading %d file(s); see 'queue'", n))
		}
		return nil
	}

	tasks, err := batch.Wait(ctx)
	if err != nil {
		return err
	}
	if countState(tasks, upload.StateSucceeded) != len(tasks) {
		return reported(errUploadsFailed)
	}
	return nil
}

func countState(tasks []upload.Task, states ...upload.State) int {
	n := 0
	for _, t := range tasks {
		for _, s := range states {
			if t.State == s {
				n++
				break
			}
		}
	}
	return n
}

// Queue prints the uploads that have not settled yet.
func (a *App) Queue(context.Context) error {
	tasks := a.uploads.Queue()
	if len(tasks) == 0 {
		fmt.Fprintln(a.out, "No uploads in progress")
		return nil
	}
	rows := make([][]string, 0, len(tasks))
	for _, t := range tasks {
		rows = append(rows, []string{t.ID.String()[:8], t.Name, models.FormatSize(t.Size), t.State.String()})
	}
	a.printTable([]string{"ID", "Name", "Size", "State"}, rows)
	return nil
}

// CancelUpload removes the unsettled upload whose id starts with prefix.
func (a *App) CancelUpload(ctx context.Context, prefix string) error {
	if prefix == "" {
		return fmt.Errorf("%w: no upload id given", common.ErrorValidation)
	}
	var match []upload.Task
	for _, t := range a.uploads.Queue() {
		if strings.HasPrefix(t.ID.String(), prefix) {
			match = append(match, t)
		}
	}
	switch len(match) {
	case 0:
		notify.Error(a.notifier, fmt.Sprintf("No upload matches %q", prefix))
		return reported(fmt.Errorf("upload %s: %w", prefix, common.ErrorNotFound))
	case 1:
	default:
		notify.Error(a.notifier, fmt.Sprintf("%q matches %d uploads", prefix, len(match)))
		return reported(fmt.Errorf("%w: ambiguous upload id %s", common.ErrorValidation, prefix))
	}

	t := match[0]
	if err := a.uploads.Remove(t.ID); err != nil {
		// Settled in the meantime.
		notify.Error(a.notifier, fmt.Sprintf("%s already finished", t.Name))
		return reported(err)
	}
	a.log.Info(ctx, "upload removed", "name", t.Name, "id", t.ID)
	notify.Info(a.notifier, fmt.Sprintf("Upload of %s cancelled", t.Name))
	return nil
}

// Watch uploads every file that settles in dir until ctx is done.
func (a *App) Watch(ctx context.Context, dir string) error {
	if err := a.requireCredential(ctx, "watch"); err != nil {
		return err
	}
	w, err := filex.Watch(dir, 0, a.log)
	if err != nil {
		return a.localFail(ctx, "watch", err)
	}
	defer w.Close()
	notify.Info(a.notifier, fmt.Sprintf("Watching %s; press Ctrl+C to stop", dir))

	for {
		select {
		case <-ctx.Done():
			return nil
		case path, ok := <-w.Files():
			if !ok {
				return nil
			}
			f, err := filex.OpenLocal(path)
			if err != nil {
				a.log.Warn(ctx, "watched file vanished", "path", path, "error", err)
				continue
			}
			if _, err := a.uploads.SubmitBatch(ctx, []upload.Source{f}); err != nil {
				if errors.Is(err, gateway.ErrNoCredential) {
					notify.Error(a.notifier, gateway.MsgNoCredential)
				}
				return reported(err)
			}
		}
	}
}
