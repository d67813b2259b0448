package actions

import "github.com/dmitrijs2005/storeit/internal/client/models"

// Kind names an entry of the action menu.
type Kind string

const (
	KindRename         Kind = "rename"
	KindDetails        Kind = "details"
	KindShare          Kind = "share"
	KindRemoveAccesser Kind = "remove-accesser"
	KindDownload       Kind = "download"
	KindMoveToTrash    Kind = "trash"
	KindRestore        Kind = "restore"
	KindDelete         Kind = "delete"
	KindEdit           Kind = "edit"
)

var labels = map[Kind]string{
	KindRename:         "Rename",
	KindDetails:        "Details",
	KindShare:          "Share",
	KindRemoveAccesser: "Remove accesser",
	KindDownload:       "Download",
	KindMoveToTrash:    "Move to Trash",
	KindRestore:        "Restore",
	KindDelete:         "Delete",
	KindEdit:           "Edit",
}

func (k Kind) Label() string {
	if l, ok := labels[k]; ok {
		return l
	}
	return string(k)
}

// Action is a confirmed dialog submission. The set of implementations is
// closed; Controller.Submit switches over all of them.
type Action interface {
	Kind() Kind
	sealed()
}

type Rename struct{ NewName string }

type Share struct {
	Email      string
	Permission models.Permission
}

// RemoveAccesser is submitted from inside an open share dialog.
type RemoveAccesser struct{ Email string }

type MoveToTrash struct{}

type Restore struct{}

type Delete struct{}

// Edit requests the upload target for a replacement. The replacement itself
// is sent with Controller.UploadReplacement.
type Edit struct{}

func (Rename) Kind() Kind         { return KindRename }
func (Share) Kind() Kind          { return KindShare }
func (RemoveAccesser) Kind() Kind { return KindRemoveAccesser }
func (MoveToTrash) Kind() Kind    { return KindMoveToTrash }
func (Restore) Kind() Kind        { return KindRestore }
func (Delete) Kind() Kind         { return KindDelete }
func (Edit) Kind() Kind           { return KindEdit }

func (Rename) sealed()         {}
func (Share) sealed()          {}
func (RemoveAccesser) sealed() {}
func (MoveToTrash) sealed()    {}
func (Restore) sealed()        {}
func (Delete) sealed()         {}
func (Edit) sealed()           {}

// Capabilities describes one file variant: which actions its menu offers,
// which of them open no dialog, and which need a minimum permission.
type Capabilities struct {
	Variant string
	Actions []Kind
	Direct  []Kind
	Gates   map[Kind]models.Permission
}

var (
	Owned = Capabilities{
		Variant: "owned",
		Actions: []Kind{KindRename, KindDetails, KindShare, KindDownload, KindMoveToTrash},
		Direct:  []Kind{KindDownload},
	}
	Trashed = Capabilities{
		Variant: "trashed",
		Actions: []Kind{KindRestore, KindDelete},
	}
	Shared = Capabilities{
		Variant: "shared",
		Actions: []Kind{KindDetails, KindDownload, KindEdit},
		Direct:  []Kind{KindDownload},
		Gates:   map[Kind]models.Permission{KindEdit: models.PermissionEdit},
	}
)

func (c Capabilities) offers(k Kind) bool {
	for _, a := range c.Actions {
		if a == k {
			return true
		}
	}
	return false
}

func (c Capabilities) direct(k Kind) bool {
	for _, a := range c.Direct {
		if a == k {
			return true
		}
	}
	return false
}
