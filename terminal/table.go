package terminal

import (
	"fmt"
	"os"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// AlgorithmInfo is one registry row for display.
type AlgorithmInfo struct {
	Name        string
	DisplayName string
	Group       string
}

// DownloadResult is one finished (or failed) block download for display.
type DownloadResult struct {
	GridID   string
	FileName string
	Bytes    int64
	Duration time.Duration
	Status   string
}

// TableFormatter handles formatted table output
type TableFormatter struct {
	table *tablewriter.Table
}

// NewTableFormatter creates a new table formatter
func NewTableFormatter() *TableFormatter {
	table := tablewriter.NewWriter(os.Stdout)
	table.Options(
		tablewriter.WithRendition(tw.Rendition{Borders: tw.Border{Left: tw.Pending, Right: tw.Pending, Top: tw.Pending, Bottom: tw.Pending}}),
		tablewriter.WithPadding(tw.Padding{Left: "\t", Right: "\t"}),
	)
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.MaxWidth = 0 // No max width
		cfg.Header = tw.CellConfig{
			Alignment: tw.CellAlignment{
				Global: tw.AlignLeft,
			},
		}
		cfg.Row = tw.CellConfig{
			Alignment: tw.CellAlignment{
				Global: tw.AlignLeft,
			},
		}
	})

	return &TableFormatter{
		table: table,
	}
}

// FormatAlgorithms renders the provider registry.
func (tf *TableFormatter) FormatAlgorithms(algorithms []AlgorithmInfo) error {
	tf.table.Reset()
	tf.table.Header("Name", "Display Name", "Group")

	for _, a := range algorithms {
		tf.table.Append([]string{a.Name, a.DisplayName, a.Group})
	}

	return tf.table.Render()
}

// FormatFields renders the attribute fields of the loaded feature source.
func (tf *TableFormatter) FormatFields(fields []string) error {
	if len(fields) == 0 {
		fmt.Println("No fields available")
		return nil
	}

	tf.table.Reset()
	tf.table.Header("#", "Field")

	for i, f := range fields {
		tf.table.Append([]string{fmt.Sprintf("%d", i+1), f})
	}

	return tf.table.Render()
}

// FormatResults renders a download summary.
func (tf *TableFormatter) FormatResults(results []DownloadResult) error {
	if len(results) == 0 {
		fmt.Println("Nothing downloaded")
		return nil
	}

	tf.table.Reset()
	tf.table.Header("Grid ID", "File", "Size", "Time", "Status")

	for _, r := range results {
		tf.table.Append([]string{
			r.GridID,
			r.FileName,
			formatSize(uint64(r.Bytes)),
			fmt.Sprintf("%.1fs", r.Duration.Seconds()),
			r.Status,
		})
	}

	return tf.table.Render()
}

// formatSize formats a file size in human-readable format
func formatSize(size uint64) string {
	const unit = 1024
	if size < unit {
		return fmt.Sprintf("%d B", size)
	}
	div, exp := uint64(unit), 0
	for n := size / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(size)/float64(div), "KMGTPE"[exp])
}
