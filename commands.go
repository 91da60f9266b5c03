package main

import (
	"context"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/airock47/proctrack/internal/api"
	"github.com/airock47/proctrack/internal/export"
	"github.com/airock47/proctrack/internal/grid"
)

// Commands run off the update loop; they touch nothing on the model and
// report back through typed messages.

func fetchCmd(client *api.Client) tea.Cmd {
	return func() tea.Msg {
		rows, err := client.FetchAll(context.Background())
		return fetchDoneMsg{rows: rows, err: err}
	}
}

func saveCmd(recon *grid.Reconciler) tea.Cmd {
	return func() tea.Msg {
		return saveDoneMsg{report: recon.SaveAll(context.Background())}
	}
}

func stockDetailCmd(client *api.Client, row grid.Row) tea.Cmd {
	return func() tea.Msg {
		detail, err := client.StockDetail(context.Background(), row.ProductCode, row.ProductName)
		return stockDetailMsg{product: row.ProductName, detail: detail, err: err}
	}
}

func exportCmd(dir string, rows []grid.Row) tea.Cmd {
	return func() tea.Msg {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return exportDoneMsg{err: err}
		}
		path := filepath.Join(dir, export.FileName(time.Now()))
		if err := export.Write(path, rows); err != nil {
			return exportDoneMsg{err: err}
		}
		return exportDoneMsg{path: path}
	}
}
