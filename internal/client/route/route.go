// Package route names client destinations and abstracts navigation so the
// orchestration core can "redirect" without knowing how it is presented.
package route

import (
	"net/url"
	"strings"
	"sync"

	"github.com/dmitrijs2005/storeit/internal/client/models"
)

const (
	Dashboard = "/"
	SignIn    = "/sign-in"
	SignUp    = "/sign-up"
	Shared    = "/shared"
	Trash     = "/trash"
)

// QueryParam is the location parameter mirroring the active search query.
const QueryParam = "query"

// Navigator moves the user to another destination.
type Navigator interface {
	Navigate(dest string)
	// DropQuery removes a parameter from the current location.
	DropQuery(key string)
}

// ForFileType returns the listing that contains files of type t. Video and
// audio share the media listing; every other type has a pluralized listing.
func ForFileType(t models.FileType) string {
	switch t {
	case models.TypeVideo, models.TypeAudio, models.TypeMedia:
		return "/media"
	case "":
		return "/" + string(models.TypeOther) + "s"
	default:
		return "/" + string(t) + "s"
	}
}

// History is an in-memory Navigator that remembers where it has been.
type History struct {
	mu      sync.Mutex
	current *url.URL
	visits  []string
}

func NewHistory(start string) *History {
	u, err := url.Parse(start)
	if err != nil || start == "" {
		u = &url.URL{Path: Dashboard}
	}
	return &History{current: u, visits: []string{u.String()}}
}

func (h *History) Navigate(dest string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	u, err := url.Parse(dest)
	if err != nil {
		u = &url.URL{Path: dest}
	}
	h.current = u
	h.visits = append(h.visits, u.String())
}

func (h *History) DropQuery(key string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	q := h.current.Query()
	if _, ok := q[key]; !ok {
		return
	}
	q.Del(key)
	next := *h.current
	next.RawQuery = q.Encode()
	h.current = &next
	h.visits = append(h.visits, next.String())
}

// Current returns the current location including any query string.
func (h *History) Current() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.current.String()
}

// Visits returns every location visited so far, oldest first.
func (h *History) Visits() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]string, len(h.visits))
	copy(out, h.visits)
	return out
}

// Count reports how many times dest was navigated to.
func (h *History) Count(dest string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	n := 0
	for _, v := range h.visits {
		if v == dest || strings.HasPrefix(v, dest+"?") {
			n++
		}
	}
	return n
}
