// Package upload runs batches of file uploads concurrently, one request per
// accepted file, and tracks each file's lifecycle independently.
package upload

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/dmitrijs2005/storeit/internal/client/gateway"
	"github.com/dmitrijs2005/storeit/internal/client/metrics"
	"github.com/dmitrijs2005/storeit/internal/client/models"
	"github.com/dmitrijs2005/storeit/internal/client/notify"
	"github.com/dmitrijs2005/storeit/internal/client/route"
	"github.com/dmitrijs2005/storeit/internal/common"
	"github.com/dmitrijs2005/storeit/internal/logging"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// Uploader sends one file. client.HTTPClient satisfies it.
type Uploader interface {
	Upload(ctx context.Context, name string, fileType models.FileType, content io.Reader) (string, error)
}

// Credentials reports whether a bearer credential is available.
type Credentials interface {
	Token() (string, error)
}

type Options struct {
	// MaxSize is the per-file ceiling; zero means common.MaxFileSize.
	MaxSize int64
	// Concurrency caps in-flight uploads per batch; zero means no cap.
	Concurrency int
	Logger      logging.Logger
	Metrics     *metrics.Metrics
}

type Orchestrator struct {
	up       Uploader
	creds    Credentials
	nav      route.Navigator
	notifier notify.Notifier
	log      logging.Logger
	metrics  *metrics.Metrics
	maxSize  int64
	limit    int

	mu    sync.Mutex
	queue []*entry
}

type entry struct {
	task   Task
	src    Source
	ctx    context.Context
	cancel context.CancelFunc
}

func NewOrchestrator(up Uploader, creds Credentials, nav route.Navigator, n notify.Notifier, opts Options) *Orchestrator {
	log := opts.Logger
	if log == nil {
		log = logging.Nop()
	}
	maxSize := opts.MaxSize
	if maxSize <= 0 {
		maxSize = common.MaxFileSize
	}
	return &Orchestrator{
		up:       up,
		creds:    creds,
		nav:      nav,
		notifier: n,
		log:      log.With("component", "upload"),
		metrics:  opts.Metrics,
		maxSize:  maxSize,
		limit:    opts.Concurrency,
	}
}

// Batch is the handle of one SubmitBatch call.
type Batch struct {
	o       *Orchestrator
	entries []*entry
	done    chan struct{}
}

// SubmitBatch validates every file and starts one upload per accepted file.
// It returns without waiting for the uploads.
//
// With no credential nothing is uploaded, the navigator is sent to sign-in
// and gateway.ErrNoCredential is returned.
func (o *Orchestrator) SubmitBatch(ctx context.Context, files []Source) (*Batch, error) {
	if _, err := o.creds.Token(); err != nil {
		o.log.Warn(ctx, "upload batch refused", "files", len(files), "error", err)
		o.nav.Navigate(route.SignIn)
		return nil, fmt.Errorf("submit batch: %w", gateway.ErrNoCredential)
	}

	b := &Batch{o: o, done: make(chan struct{})}
	var accepted []*entry

	o.mu.Lock()
	for _, f := range files {
		t, ext := models.TypeOf(f.Name())
		e := &entry{
			task: Task{ID: uuid.New(), Name: f.Name(), Size: f.Size(), Type: t, Ext: ext, State: StateQueued},
			src:  f,
		}
		b.entries = append(b.entries, e)

		if f.Size() > o.maxSize {
			e.task.State = StateRejectedOversize
			e.task.Err = ErrOversize
			e.task.Message = fmt.Sprintf("%s is too large. Max file size is %s.", f.Name(), models.FormatSize(o.maxSize))
			continue
		}
		e.ctx, e.cancel = context.WithCancel(ctx)
		o.queue = append(o.queue, e)
		accepted = append(accepted, e)
	}
	o.mu.Unlock()

	for _, e := range b.entries {
		if e.task.State == StateRejectedOversize {
			o.metrics.UploadSettled(metrics.UploadOversize)
			o.log.Warn(ctx, "file rejected", "name", e.task.Name, "size", e.task.Size)
			notify.Error(o.notifier, e.task.Message)
		}
	}

	go func() {
		defer close(b.done)
		var g errgroup.Group
		if o.limit > 0 {
			g.SetLimit(o.limit)
		}
		for _, e := range accepted {
			g.Go(func() error {
				o.run(e)
				return nil
			})
		}
		_ = g.Wait()
	}()

	return b, nil
}

func (o *Orchestrator) run(e *entry) {
	defer e.cancel()

	o.mu.Lock()
	if e.task.State == StateRemoved {
		o.mu.Unlock()
		return
	}
	e.task.State = StateUploading
	o.mu.Unlock()

	msg, err := o.send(e)

	o.mu.Lock()
	if e.task.State == StateRemoved {
		o.mu.Unlock()
		o.log.Debug(e.ctx, "late upload result ignored", "name", e.task.Name)
		return
	}
	o.dequeue(e)
	if err != nil {
		e.task.State = StateFailed
		e.task.Err = err
		e.task.Message = gateway.UserMessage(err)
	} else {
		e.task.State = StateSucceeded
		if msg == "" {
			msg = e.task.Name + " uploaded successfully"
		}
		e.task.Message = msg
	}
	task := e.task
	o.mu.Unlock()

	if err != nil {
		o.metrics.UploadSettled(metrics.UploadFailed)
		o.log.Warn(e.ctx, "upload failed", "name", task.Name, "error", err)
		if errors.Is(err, gateway.ErrNoCredential) {
			o.nav.Navigate(route.SignIn)
		}
		notify.Error(o.notifier, task.Message)
		return
	}
	o.metrics.UploadSettled(metrics.UploadSucceeded)
	o.log.Info(e.ctx, "upload done", "name", task.Name, "size", task.Size)
	notify.Success(o.notifier, task.Message)
}

func (o *Orchestrator) send(e *entry) (string, error) {
	rc, err := e.src.Open()
	if err != nil {
		return "", fmt.Errorf("open %s: %w", e.task.Name, err)
	}
	defer rc.Close()
	return o.up.Upload(e.ctx, e.task.Name, e.task.Type, rc)
}

// dequeue must be called with o.mu held.
func (o *Orchestrator) dequeue(e *entry) {
	for i, q := range o.queue {
		if q == e {
			o.queue = append(o.queue[:i], o.queue[i+1:]...)
			return
		}
	}
}

// Queue returns the unsettled tasks in submission order.
func (o *Orchestrator) Queue() []Task {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]Task, 0, len(o.queue))
	for _, e := range o.queue {
		out = append(out, e.task)
	}
	return out
}

// Remove drops a queued or uploading task and cancels its request. Whatever
// the request returns afterwards is ignored.
func (o *Orchestrator) Remove(id uuid.UUID) error {
	o.mu.Lock()
	var found *entry
	for _, e := range o.queue {
		if e.task.ID == id {
			found = e
			break
		}
	}
	if found == nil {
		o.mu.Unlock()
		return fmt.Errorf("task %s: %w", id, common.ErrorNotFound)
	}
	o.dequeue(found)
	found.task.State = StateRemoved
	found.task.Err = ErrRemoved
	o.mu.Unlock()

	found.cancel()
	o.metrics.UploadSettled(metrics.UploadRemoved)
	return nil
}

// Tasks returns a snapshot of every file in the batch, including rejected ones.
func (b *Batch) Tasks() []Task {
	b.o.mu.Lock()
	defer b.o.mu.Unlock()
	out := make([]Task, len(b.entries))
	for i, e := range b.entries {
		out[i] = e.task
	}
	return out
}

// Wait blocks until every accepted upload has settled or ctx is done, and
// returns the final snapshot. There is no aggregate batch result.
func (b *Batch) Wait(ctx context.Context) ([]Task, error) {
	select {
	case <-b.done:
		return b.Tasks(), nil
	case <-ctx.Done():
		return b.Tasks(), ctx.Err()
	}
}

// Done is closed when every accepted upload has settled.
func (b *Batch) Done() <-chan struct{} {
	return b.done
}
