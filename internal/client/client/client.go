package client

import (
	"context"
	"io"

	"github.com/dmitrijs2005/storeit/internal/client/models"
	"github.com/google/uuid"
)

// RenameResult is the backend-confirmed outcome of a rename.
type RenameResult struct {
	NewName string
	Message string
}

type Client interface {
	SignIn(ctx context.Context, email, password string) (string, error)
	SignUp(ctx context.Context, fullName, email, password string) (string, error)
	SignOut(ctx context.Context) error
	Dashboard(ctx context.Context) (*models.User, error)

	ListFiles(ctx context.Context) ([]models.FileRecord, error)
	ListFilesByType(ctx context.Context, category models.FileType, sort models.SortKey) ([]models.FileRecord, error)
	ListShared(ctx context.Context, sort models.SortKey) ([]models.SharedFileRecord, error)
	ListTrash(ctx context.Context) ([]models.TrashedFileRecord, error)
	StorageUsage(ctx context.Context) ([]models.StorageUsage, error)

	Upload(ctx context.Context, name string, fileType models.FileType, content io.Reader) (string, error)
	Rename(ctx context.Context, oldName, newName string) (RenameResult, error)
	MoveToTrash(ctx context.Context, name string) (string, error)
	Restore(ctx context.Context, name string) (string, error)
	Delete(ctx context.Context, name string) (string, error)

	ListAccessers(ctx context.Context, fileID uuid.UUID) ([]models.AccessGrant, error)
	AddAccesser(ctx context.Context, fileName, email string, perm models.Permission) ([]models.AccessGrant, error)
	RemoveAccesser(ctx context.Context, fileName, email string) ([]models.AccessGrant, error)

	RequestEditTarget(ctx context.Context, fileName string, ownerID uuid.UUID) (models.UploadTarget, error)
	UploadEdit(ctx context.Context, target models.UploadTarget, name string, content io.Reader) (string, error)

	Search(ctx context.Context, query string) ([]models.SearchResult, error)
}
