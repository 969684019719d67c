package blocks

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppendReportRecord(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.csv")

	require.NoError(t, AppendReportRecord(path, ReportRecord{
		GridID:   "605_64",
		Category: TerrainModel,
		FileName: "DTM_605_64_TIF_UTM32-ETRS89.zip",
		Bytes:    3 * 1024 * 1024,
		Duration: 4200 * time.Millisecond,
		Status:   "ok",
	}))
	require.NoError(t, AppendReportRecord(path, ReportRecord{
		GridID:   "605_65",
		Category: TerrainModel,
		FileName: "DTM_605_65_TIF_UTM32-ETRS89.zip",
		Status:   "failed",
	}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 3, "one header plus two records")
	assert.Equal(t, strings.TrimSpace(csvHeader), lines[0])

	records, err := csv.NewReader(strings.NewReader(strings.Join(lines[1:], "\n"))).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)

	first := records[0]
	require.Len(t, first, 7)
	_, err = time.Parse(time.RFC3339, first[0])
	assert.NoError(t, err)
	assert.Equal(t, "605_64", first[1])
	assert.Equal(t, "terrain-model", first[2])
	assert.Equal(t, "3.00", first[4])
	assert.Equal(t, "4.20", first[5])
	assert.Equal(t, "ok", first[6])

	assert.Equal(t, "failed", records[1][6])
}

func TestAppendReportRecordCreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reports", "2026", "report.csv")
	require.NoError(t, AppendReportRecord(path, ReportRecord{
		GridID:   "617_57",
		Category: PointCloud,
		FileName: "PUNKTSKY_617_57_TIF_UTM32-ETRS89.zip",
		Status:   "ok",
	}))
	_, err := os.Stat(path)
	assert.NoError(t, err)
}
