package upload

import (
	"errors"
	"io"

	"github.com/dmitrijs2005/storeit/internal/client/models"
	"github.com/google/uuid"
)

var (
	// ErrOversize marks a file rejected before upload for exceeding the size ceiling.
	ErrOversize = errors.New("file exceeds maximum upload size")

	// ErrRemoved marks a task removed from the queue before it settled.
	ErrRemoved = errors.New("removed from queue")
)

// Source is a local file offered for upload.
type Source interface {
	Name() string
	Size() int64
	Open() (io.ReadCloser, error)
}

type State int

const (
	StateQueued State = iota
	StateUploading
	StateSucceeded
	StateFailed
	StateRejectedOversize
	StateRemoved
)

func (s State) String() string {
	switch s {
	case StateQueued:
		return "queued"
	case StateUploading:
		return "uploading"
	case StateSucceeded:
		return "succeeded"
	case StateFailed:
		return "failed"
	case StateRejectedOversize:
		return "rejected-oversize"
	case StateRemoved:
		return "removed"
	default:
		return "unknown"
	}
}

// Settled reports whether the task has left the pipeline.
func (s State) Settled() bool {
	return s != StateQueued && s != StateUploading
}

// Task is a snapshot of one file's progress.
type Task struct {
	ID   uuid.UUID
	Name string
	Size int64
	Type models.FileType
	Ext  string

	State State
	// Message is the backend's confirmation on success or the user-facing
	// failure text otherwise.
	Message string
	Err     error
}
