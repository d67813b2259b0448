package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/dmitrijs2005/storeit/internal/client/models"
	"github.com/dmitrijs2005/storeit/internal/client/route"
	"github.com/dmitrijs2005/storeit/internal/common"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const timeLayout = "02 Jan 2006 15:04"

// Listing names accepted by ls besides the type categories.
const (
	listAll    = "all"
	listShared = "shared"
	listTrash  = "trash"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	titleCaser  = cases.Title(language.English)
)

// List prints one listing: all files, a type category (documents, images,
// media, others), files shared with the user, or the trash.
func (a *App) List(ctx context.Context, listing string, sort models.SortKey) error {
	if err := a.requireCredential(ctx, "list"); err != nil {
		return err
	}
	if sort == "" {
		sort = models.DefaultSort
	}

	switch listing = strings.ToLower(listing); listing {
	case "", listAll:
		files, err := a.api.ListFiles(ctx)
		if err != nil {
			return a.fail(ctx, "list files", err)
		}
		a.nav.Navigate(route.Dashboard)
		a.printFiles(files)

	case listShared:
		files, err := a.api.ListShared(ctx, sort)
		if err != nil {
			return a.fail(ctx, "list shared files", err)
		}
		a.nav.Navigate(route.Shared)
		a.printShared(files)

	case listTrash:
		files, err := a.api.ListTrash(ctx)
		if err != nil {
			return a.fail(ctx, "list trash", err)
		}
		a.nav.Navigate(route.Trash)
		a.printTrash(files)

	case "documents", "images", "media", "others":
		files, err := a.api.ListFilesByType(ctx, models.CategoryFromRoute(listing), sort)
		if err != nil {
			return a.fail(ctx, "list "+listing, err)
		}
		a.nav.Navigate("/" + listing)
		a.printFiles(files)

	default:
		return fmt.Errorf("%w: unknown listing %q", common.ErrorValidation, listing)
	}
	return nil
}

// Usage prints the storage used per file type.
func (a *App) Usage(ctx context.Context) error {
	if err := a.requireCredential(ctx, "usage"); err != nil {
		return err
	}
	usage, err := a.api.StorageUsage(ctx)
	if err != nil {
		return a.fail(ctx, "storage usage", err)
	}
	var total int64
	rows := make([][]string, 0, len(usage)+1)
	for _, u := range usage {
		total += u.TotalSize
		rows = append(rows, []string{titleCaser.String(string(u.Type)), models.FormatSize(u.TotalSize)})
	}
	rows = append(rows, []string{"Total", models.FormatSize(total)})
	a.printTable([]string{"Type", "Used"}, rows)
	return nil
}

func (a *App) printFiles(files []models.FileRecord) {
	if len(files) == 0 {
		fmt.Fprintln(a.out, "No files uploaded")
		return
	}
	rows := make([][]string, 0, len(files))
	for _, f := range files {
		rows = append(rows, []string{f.Name, string(f.Type), models.FormatSize(f.Size), f.CreatedAt.Format(timeLayout)})
	}
	a.printTable([]string{"Name", "Type", "Size", "Created"}, rows)
}

func (a *App) printShared(files []models.SharedFileRecord) {
	if len(files) == 0 {
		fmt.Fprintln(a.out, "No files shared with you")
		return
	}
	rows := make([][]string, 0, len(files))
	for _, f := range files {
		rows = append(rows, []string{f.Name, f.OwnerEmail, string(f.Permission), models.FormatSize(f.Size), f.AddedAt.Format(timeLayout)})
	}
	a.printTable([]string{"Name", "Owner", "Permission", "Size", "Added"}, rows)
}

func (a *App) printTrash(files []models.TrashedFileRecord) {
	if len(files) == 0 {
		fmt.Fprintln(a.out, "Trash is empty")
		return
	}
	rows := make([][]string, 0, len(files))
	for _, f := range files {
		rows = append(rows, []string{f.Name, string(f.Type), models.FormatSize(f.Size), f.CreatedAt.Format(timeLayout)})
	}
	a.printTable([]string{"Name", "Type", "Size", "Created"}, rows)
}

func (a *App) printTable(headers []string, rows [][]string) {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		}).
		Headers(headers...).
		Rows(rows...)
	fmt.Fprintln(a.out, t.String())
}
