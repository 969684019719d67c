package blocks

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// csvHeader defines the CSV header for the download report
const csvHeader = "Timestamp,GridID,Category,FileName,SizeMB,TimeSec,Status\n"

// ReportRecord is one row of the per-invocation download report.
type ReportRecord struct {
	GridID   string
	Category Category
	FileName string
	Bytes    int64
	Duration time.Duration
	Status   string // "ok", "failed" or "unpack-failed"
}

// AppendReportRecord appends a record to the CSV report at path, writing the
// header first when the file is new.
func AppendReportRecord(path string, rec ReportRecord) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create report directory %s: %v", dir, err)
		}
	}

	fileExists := true
	if _, err := os.Stat(path); os.IsNotExist(err) {
		fileExists = false
	}

	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open report %s: %v", path, err)
	}
	defer file.Close()

	if !fileExists {
		if _, err := file.WriteString(csvHeader); err != nil {
			return fmt.Errorf("failed to write report header: %v", err)
		}
	}

	writer := csv.NewWriter(file)
	record := []string{
		time.Now().Format(time.RFC3339),
		rec.GridID,
		rec.Category.String(),
		rec.FileName,
		strconv.FormatFloat(float64(rec.Bytes)/(1024*1024), 'f', 2, 64),
		strconv.FormatFloat(rec.Duration.Seconds(), 'f', 2, 64),
		rec.Status,
	}
	if err := writer.Write(record); err != nil {
		return fmt.Errorf("failed to write report record: %v", err)
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("failed to flush report writer: %v", err)
	}
	return nil
}
