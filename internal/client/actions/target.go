package actions

import (
	"time"

	"github.com/dmitrijs2005/storeit/internal/client/models"
	"github.com/google/uuid"
)

// Target is the file a controller acts on, whatever listing it came from.
type Target struct {
	UUID        uuid.UUID
	Name        string
	Size        int64
	Type        models.FileType
	CreatedAt   time.Time
	OwnerID     uuid.UUID
	OwnerName   string
	OwnerEmail  string
	DownloadURL string
}

func FromFile(f models.FileRecord) Target {
	return Target{
		UUID:        f.UUID,
		Name:        f.Name,
		Size:        f.Size,
		Type:        f.Type,
		CreatedAt:   f.CreatedAt,
		OwnerID:     f.OwnerID,
		DownloadURL: f.SignedURL.URL,
	}
}

func FromTrashed(f models.TrashedFileRecord) Target {
	return Target{
		UUID:      f.UUID,
		Name:      f.Name,
		Size:      f.Size,
		Type:      f.Type,
		CreatedAt: f.CreatedAt,
		OwnerID:   f.OwnerID,
	}
}

func FromShared(f models.SharedFileRecord) Target {
	t, _ := models.TypeOf(f.Name)
	return Target{
		UUID:        f.UUID,
		Name:        f.Name,
		Size:        f.Size,
		Type:        t,
		CreatedAt:   f.AddedAt,
		OwnerID:     f.OwnerID,
		OwnerName:   f.OwnerName,
		OwnerEmail:  f.OwnerEmail,
		DownloadURL: f.SignedURL.URL,
	}
}

// Details is what the details dialog shows.
type Details struct {
	Name       string
	Type       models.FileType
	Extension  string
	Size       string
	CreatedAt  time.Time
	OwnerName  string
	OwnerEmail string
	// Permission is empty when the viewer holds no grant.
	Permission models.Permission
	Grants     []models.AccessGrant
}
