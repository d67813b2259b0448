// Package models defines the records exchanged with the storage backend.
package models

import (
	"time"

	"github.com/google/uuid"
)

// SignedURL is a time-limited, pre-authorized download link.
type SignedURL struct {
	URL string `json:"signedUrl"`
}

// FileRecord is a file in the signed-in user's own listing.
// Name is unique per owner directory; the backend enforces it.
type FileRecord struct {
	ID        int64     `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UUID      uuid.UUID `json:"file_uuid"`
	OwnerID   uuid.UUID `json:"file_owner_id"`
	Path      string    `json:"file_path"`
	Name      string    `json:"file_name"`
	Size      int64     `json:"file_size"`
	Type      FileType  `json:"file_type"`
	SignedURL SignedURL `json:"signedUrl"`
}

// TrashedFileRecord shares its identity with the FileRecord it was before
// being trashed. It carries no download link.
type TrashedFileRecord struct {
	ID        int64     `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UUID      uuid.UUID `json:"file_uuid"`
	OwnerID   uuid.UUID `json:"file_owner_id"`
	Path      string    `json:"file_path"`
	Name      string    `json:"file_name"`
	Size      int64     `json:"file_size"`
	Type      FileType  `json:"file_type"`
}

// SharedFileRecord is a file owned by someone else, seen through the grant
// that made it visible to the current user.
//
// Permission is what the listing endpoint reported at fetch time. It is never
// used for gating; see actions.Controller.Permission.
type SharedFileRecord struct {
	ID            int64      `json:"id"`
	AddedAt       time.Time  `json:"accesser_added_at"`
	UUID          uuid.UUID  `json:"file_uuid"`
	Size          int64      `json:"file_size"`
	OwnerID       uuid.UUID  `json:"owner_id"`
	OwnerEmail    string     `json:"owner_email"`
	OwnerName     string     `json:"owner_name"`
	AccesserID    uuid.UUID  `json:"accesser_id"`
	AccesserEmail string     `json:"accesser_email"`
	Permission    Permission `json:"permission_type"`
	Name          string     `json:"file_name"`
	SignedURL     SignedURL  `json:"signedUrl"`
}

// SearchResult is one hit returned by the search endpoint.
type SearchResult struct {
	Name      string    `json:"file_name"`
	UUID      uuid.UUID `json:"file_uuid"`
	CreatedAt time.Time `json:"created_at"`
	Type      FileType  `json:"file_type"`
	Size      int64     `json:"file_size"`
}

// StorageUsage is the total size of the user's files of one type.
type StorageUsage struct {
	Type      FileType `json:"file_type"`
	TotalSize int64    `json:"total_size"`
}

// User is the signed-in account as reported by the dashboard endpoint.
type User struct {
	ID       uuid.UUID `json:"user_id"`
	FullName string    `json:"fullName"`
	Email    string    `json:"email"`
}

// UploadTarget is the signed destination for replacing a shared file's
// contents. Both fields must be present before a replacement is accepted.
type UploadTarget struct {
	Path  string `json:"path"`
	Token string `json:"token"`
}

// Ready reports whether both halves of the target were issued.
func (t UploadTarget) Ready() bool {
	return t.Path != "" && t.Token != ""
}
