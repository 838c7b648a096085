package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/ppec-inventory/internal/config"
	"github.com/ppec-inventory/internal/models"
	"github.com/ppec-inventory/internal/service"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/goccy/go-json"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("213"))
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

func printJSON(w io.Writer, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(mutedStyle).
		Headers(headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
}

func orDash(value string) string {
	if strings.TrimSpace(value) == "" {
		return "-"
	}
	return value
}

func printBatchList(w io.Writer, batches []models.Batch) error {
	if len(batches) == 0 {
		_, err := fmt.Fprintln(w, mutedStyle.Render("No batches recorded."))
		return err
	}
	t := newTable("Batch", "Date", "Type", "Size", "Qty", "Location")
	for _, batch := range batches {
		t.Row(
			batch.BatchNumber,
			batch.ManufactureDate,
			batch.ComponentType,
			orDash(batch.Size),
			strconv.Itoa(batch.AmountComponents),
			batch.Location,
		)
	}
	_, err := fmt.Fprintln(w, t.Render())
	return err
}

func printBatch(w io.Writer, batch *models.Batch) error {
	fmt.Fprintln(w, titleStyle.Render("Batch "+batch.BatchNumber))
	fmt.Fprintf(w, "Manufactured: %s\nType: %s\nSize: %s\nComponents: %d\nLocation: %s\n",
		batch.ManufactureDate, batch.ComponentType, orDash(batch.Size), batch.AmountComponents, batch.Location)
	t := newTable("Serial", "Status")
	for _, item := range batch.StatusBySerial() {
		t.Row(item.Serial, item.Status)
	}
	_, err := fmt.Fprintln(w, t.Render())
	return err
}

func printComponent(w io.Writer, component *models.Component) error {
	fmt.Fprintln(w, titleStyle.Render("Component "+component.Serial))
	_, err := fmt.Fprintf(w, "Manufactured: %s\nType: %s\nSize: %s\nStatus: %s\nFinish: %s\n",
		component.ManufactureDate, component.ComponentType, orDash(component.Size), component.Status, component.Finish)
	return err
}

func printComponentList(w io.Writer, components []models.Component) error {
	t := newTable("Serial", "Type", "Size", "Status", "Finish")
	for _, component := range components {
		t.Row(component.Serial, component.ComponentType, orDash(component.Size), component.Status, component.Finish)
	}
	_, err := fmt.Fprintln(w, t.Render())
	return err
}

func printLocated(w io.Writer, title string, items []service.LocatedComponent) error {
	fmt.Fprintln(w, titleStyle.Render(fmt.Sprintf("%s (%d)", title, len(items))))
	if len(items) == 0 {
		_, err := fmt.Fprintln(w, mutedStyle.Render("none"))
		return err
	}
	t := newTable("Serial", "Finish", "Location")
	for _, item := range items {
		t.Row(item.Component.Serial, item.Component.Finish, orDash(item.Location))
	}
	_, err := fmt.Fprintln(w, t.Render())
	return err
}

func printSearchResult(w io.Writer, result *service.SearchResult) error {
	if err := printLocated(w, "Unfinished", result.Unfinished); err != nil {
		return err
	}
	return printLocated(w, "Finished", result.Finished)
}

func printCatalog(w io.Writer, catalog []config.CatalogEntry) error {
	t := newTable("Type", "Sizes")
	for _, entry := range catalog {
		sizes := "-"
		if len(entry.Sizes) > 0 {
			sizes = strings.Join(entry.Sizes, "\n")
		}
		t.Row(entry.Type, sizes)
	}
	_, err := fmt.Fprintln(w, t.Render())
	return err
}
