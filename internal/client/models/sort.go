package models

import "fmt"

// SortKey orders type listings on the backend.
type SortKey string

const (
	SortDateDesc SortKey = "date-desc"
	SortDateAsc  SortKey = "date-asc"
	SortNameAsc  SortKey = "name-asc"
	SortNameDesc SortKey = "name-desc"
	SortSizeDesc SortKey = "size-desc"
	SortSizeAsc  SortKey = "size-asc"
)

// DefaultSort is used when no sort key is given.
const DefaultSort = SortNameAsc

func ParseSortKey(s string) (SortKey, error) {
	if s == "" {
		return DefaultSort, nil
	}
	switch k := SortKey(s); k {
	case SortDateDesc, SortDateAsc, SortNameAsc, SortNameDesc, SortSizeDesc, SortSizeAsc:
		return k, nil
	}
	return "", fmt.Errorf("unknown sort key %q", s)
}
