package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/storeit/internal/client/models"
	"github.com/dmitrijs2005/storeit/internal/client/route"
	"github.com/dmitrijs2005/storeit/internal/client/search"
	"github.com/dmitrijs2005/storeit/internal/client/tui"
	"github.com/dmitrijs2005/storeit/internal/common"
)

// runSearchBox is a test seam for the interactive search box.
var runSearchBox = tui.Run

// Search runs one query through the search controller and prints the hits.
func (a *App) Search(ctx context.Context, query string) error {
	query = strings.TrimSpace(query)
	if query == "" {
		return fmt.Errorf("%w: search query is empty", common.ErrorValidation)
	}
	if err := a.requireCredential(ctx, "search"); err != nil {
		return err
	}

	a.search.Reset()
	a.search.SetQuery(query)
	snap, err := a.awaitSearch(ctx, query)
	if err != nil {
		return err
	}
	if !snap.Open {
		// Failed; the controller notified.
		return reported(fmt.Errorf("search %q failed", query))
	}
	a.printResults(snap.Results)
	return nil
}

// awaitSearch blocks until query is active and no longer loading.
func (a *App) awaitSearch(ctx context.Context, query string) (search.Snapshot, error) {
	for {
		if s := a.search.Snapshot(); s.Active == query && !s.Loading {
			return s, nil
		}
		select {
		case <-ctx.Done():
			return search.Snapshot{}, ctx.Err()
		case <-a.updates:
		}
	}
}

// Find opens the interactive search box. Picking a result moves to the
// listing that holds it and prints that listing.
func (a *App) Find(ctx context.Context) error {
	if err := a.requireCredential(ctx, "find"); err != nil {
		return err
	}
	picked, err := runSearchBox(ctx, a.search, a.updates, a.in, a.out)
	if err != nil {
		return err
	}
	if picked == nil {
		return nil
	}
	listing := strings.TrimPrefix(route.ForFileType(picked.Type), "/")
	return a.List(ctx, listing, models.DefaultSort)
}

func (a *App) printResults(results []models.SearchResult) {
	if len(results) == 0 {
		fmt.Fprintln(a.out, "No files found")
		return
	}
	rows := make([][]string, 0, len(results))
	for _, r := range results {
		rows = append(rows, []string{r.Name, string(r.Type), models.FormatSize(r.Size), r.CreatedAt.Format(timeLayout)})
	}
	a.printTable([]string{"Name", "Type", "Size", "Created"}, rows)
}
