package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/storeit/internal/common"
	"github.com/google/uuid"
)

// Permission is the access level an AccessGrant confers.
type Permission string

const (
	PermissionView Permission = "view"
	PermissionEdit Permission = "edit"
)

// ParsePermission accepts "view" or "edit" in any case.
func ParsePermission(s string) (Permission, error) {
	switch Permission(strings.ToLower(strings.TrimSpace(s))) {
	case PermissionView:
		return PermissionView, nil
	case PermissionEdit:
		return PermissionEdit, nil
	default:
		return "", fmt.Errorf("%w: unknown permission %q (want view or edit)", common.ErrorValidation, s)
	}
}

// AccessGrant authorizes a non-owner to view or edit one file. Grants belong
// to the file, not to the accesser.
type AccessGrant struct {
	AccesserID uuid.UUID  `json:"accesser_id"`
	Email      string     `json:"accesser_email"`
	Permission Permission `json:"permission_type"`
	GrantedAt  time.Time  `json:"accesser_added_at"`
}

// PermissionFor scans grants for viewer and returns the matching permission.
// The second result is false when the viewer holds no grant.
func PermissionFor(grants []AccessGrant, viewer uuid.UUID) (Permission, bool) {
	if viewer == uuid.Nil {
		return "", false
	}
	for _, g := range grants {
		if g.AccesserID == viewer {
			return g.Permission, true
		}
	}
	return "", false
}
