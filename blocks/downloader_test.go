package blocks

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dfsfetch/gis"
)

// fakeSource is a minimal in-memory FeatureSource.
type fakeSource struct {
	fields   []string
	features []gis.Feature
}

func (s *fakeSource) Fields() []string                       { return s.fields }
func (s *fakeSource) SelectedFeatures() ([]gis.Feature, error) { return s.features, nil }

// fakeSession serves canned file contents keyed by remote path and records
// every fetch attempt.
type fakeSession struct {
	files   map[string][]byte
	fetched []string
	quits   int
}

func (s *fakeSession) Fetch(remotePath string, w io.Writer) (int64, error) {
	s.fetched = append(s.fetched, remotePath)
	data, ok := s.files[remotePath]
	if !ok {
		return 0, fmt.Errorf("550 no such file")
	}
	n, err := w.Write(data)
	return int64(n), err
}

func (s *fakeSession) Quit() error {
	s.quits++
	return nil
}

// recordingFeedback captures the messages sent through the feedback channel.
type recordingFeedback struct {
	infos  []string
	errors []string
}

func (f *recordingFeedback) Infof(format string, args ...interface{}) {
	f.infos = append(f.infos, fmt.Sprintf(format, args...))
}

func (f *recordingFeedback) Errorf(format string, args ...interface{}) {
	f.errors = append(f.errors, fmt.Sprintf(format, args...))
}

func gridSource(ids ...string) *fakeSource {
	src := &fakeSource{fields: []string{"GridID", "Name"}}
	for i, id := range ids {
		attrs := map[string]interface{}{"Name": fmt.Sprintf("block %d", i)}
		if id != "" {
			attrs["GridID"] = id
		}
		src.features = append(src.features, gis.Feature{ID: fmt.Sprint(i), Attributes: attrs})
	}
	return src
}

func testRequest(t *testing.T) Request {
	t.Helper()
	return Request{
		Category:  TerrainModel,
		Field:     "GridID",
		Username:  "user",
		Password:  "pass",
		OutputDir: t.TempDir(),
	}
}

// zipArchive builds a valid zip holding the given entries.
func zipArchive(t *testing.T, entries map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, content := range entries {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func TestDownloaderRun(t *testing.T) {
	src := gridSource("605_64", "605_65")
	sess := &fakeSession{files: map[string][]byte{
		TerrainModel.RemotePath("605_64"): []byte("tif bytes one"),
		TerrainModel.RemotePath("605_65"): []byte("tif bytes two"),
	}}
	dl := Downloader{Dial: func(username, password string) (Session, error) {
		assert.Equal(t, "user", username)
		assert.Equal(t, "pass", password)
		return sess, nil
	}}

	req := testRequest(t)
	count, err := dl.Run(src, req)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
	assert.Equal(t, 1, sess.quits)
	assert.Len(t, sess.fetched, 2)

	data, err := os.ReadFile(filepath.Join(req.OutputDir, TerrainModel.Filename("605_64")))
	require.NoError(t, err)
	assert.Equal(t, "tif bytes one", string(data))
}

func TestDownloaderSkipsEmptyGridID(t *testing.T) {
	src := gridSource("605_64", "", "605_66")
	sess := &fakeSession{files: map[string][]byte{
		TerrainModel.RemotePath("605_64"): []byte("a"),
		TerrainModel.RemotePath("605_66"): []byte("b"),
	}}
	fb := &recordingFeedback{}
	dl := Downloader{
		Dial:     func(string, string) (Session, error) { return sess, nil },
		Feedback: fb,
	}

	count, err := dl.Run(src, testRequest(t))
	require.NoError(t, err)
	assert.Equal(t, 2, count)
	assert.Len(t, sess.fetched, 2, "feature with no grid ID must not be fetched")
	assert.Contains(t, fb.infos, "Skipping feature 1 with no grid ID.")
}

func TestDownloaderContinuesAfterFailure(t *testing.T) {
	src := gridSource("605_64", "999_99", "605_66")
	sess := &fakeSession{files: map[string][]byte{
		TerrainModel.RemotePath("605_64"): []byte("a"),
		TerrainModel.RemotePath("605_66"): []byte("b"),
	}}
	fb := &recordingFeedback{}
	dl := Downloader{
		Dial:     func(string, string) (Session, error) { return sess, nil },
		Feedback: fb,
	}

	count, err := dl.Run(src, testRequest(t))
	require.NoError(t, err, "a per-feature failure must not fail the invocation")
	assert.Equal(t, 2, count)
	assert.Len(t, sess.fetched, 3, "remaining features are still attempted")

	require.Len(t, fb.errors, 1)
	assert.Contains(t, fb.errors[0], "Failed to download "+TerrainModel.Filename("999_99"))
	assert.Contains(t, fb.infos, "Processing 3 selected features...")
	assert.Contains(t, fb.infos, "Download complete. 2 files downloaded.")
}

func TestDownloaderDialFailureIsFatal(t *testing.T) {
	src := gridSource("605_64")
	dl := Downloader{Dial: func(string, string) (Session, error) {
		return nil, fmt.Errorf("530 login incorrect")
	}}

	count, err := dl.Run(src, testRequest(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to connect to FTPS server")
	assert.Zero(t, count)
}

func TestDownloaderPreconditionsBeforeDial(t *testing.T) {
	dials := 0
	dl := Downloader{Dial: func(string, string) (Session, error) {
		dials++
		return &fakeSession{}, nil
	}}

	tests := []struct {
		name    string
		src     gis.FeatureSource
		mutate  func(*Request)
		wantErr string
	}{
		{
			name:    "missing credentials",
			src:     gridSource("605_64"),
			mutate:  func(r *Request) { r.Username = "" },
			wantErr: "FTP username and password are required",
		},
		{
			name:    "missing output folder",
			src:     gridSource("605_64"),
			mutate:  func(r *Request) { r.OutputDir = "" },
			wantErr: "output folder",
		},
		{
			name:    "output folder does not exist",
			src:     gridSource("605_64"),
			mutate:  func(r *Request) { r.OutputDir = filepath.Join(r.OutputDir, "missing") },
			wantErr: "does not exist",
		},
		{
			name:    "unknown field",
			src:     gridSource("605_64"),
			mutate:  func(r *Request) { r.Field = "KN10kmDK" },
			wantErr: `no field "KN10kmDK"`,
		},
		{
			name:    "nil source",
			src:     nil,
			mutate:  func(*Request) {},
			wantErr: "no active feature source",
		},
		{
			name:    "empty selection",
			src:     &fakeSource{fields: []string{"GridID"}},
			mutate:  func(*Request) {},
			wantErr: "no features are selected",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := testRequest(t)
			tt.mutate(&req)
			count, err := dl.Run(tt.src, req)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
			assert.Zero(t, count)
		})
	}
	assert.Zero(t, dials, "precondition failures must not open a connection")
}

func TestDownloaderUnpack(t *testing.T) {
	archive := zipArchive(t, map[string]string{
		"DTM_605_64.tif":     "raster",
		"meta/DTM_605_64.md": "metadata",
	})
	src := gridSource("605_64")
	sess := &fakeSession{files: map[string][]byte{
		TerrainModel.RemotePath("605_64"): archive,
	}}
	dl := Downloader{Dial: func(string, string) (Session, error) { return sess, nil }}

	req := testRequest(t)
	req.Unpack = true
	count, err := dl.Run(src, req)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	data, err := os.ReadFile(filepath.Join(req.OutputDir, "DTM_605_64.tif"))
	require.NoError(t, err)
	assert.Equal(t, "raster", string(data))
	_, err = os.Stat(filepath.Join(req.OutputDir, "meta", "DTM_605_64.md"))
	assert.NoError(t, err)
}

func TestDownloaderNoUnpackByDefault(t *testing.T) {
	archive := zipArchive(t, map[string]string{"DTM_605_64.tif": "raster"})
	src := gridSource("605_64")
	sess := &fakeSession{files: map[string][]byte{
		TerrainModel.RemotePath("605_64"): archive,
	}}
	dl := Downloader{Dial: func(string, string) (Session, error) { return sess, nil }}

	req := testRequest(t)
	count, err := dl.Run(src, req)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	_, err = os.Stat(filepath.Join(req.OutputDir, "DTM_605_64.tif"))
	assert.True(t, os.IsNotExist(err), "archive must stay packed unless asked")
	_, err = os.Stat(filepath.Join(req.OutputDir, TerrainModel.Filename("605_64")))
	assert.NoError(t, err)
}

func TestDownloaderUnpackFailureStillCounts(t *testing.T) {
	src := gridSource("605_64")
	sess := &fakeSession{files: map[string][]byte{
		TerrainModel.RemotePath("605_64"): []byte("not a zip at all"),
	}}
	dl := Downloader{Dial: func(string, string) (Session, error) { return sess, nil }}

	req := testRequest(t)
	req.Unpack = true
	count, err := dl.Run(src, req)
	require.NoError(t, err)
	assert.Equal(t, 1, count, "the transfer succeeded before the unpack failed")
}

func TestDownloaderOnResult(t *testing.T) {
	src := gridSource("605_64", "999_99")
	sess := &fakeSession{files: map[string][]byte{
		TerrainModel.RemotePath("605_64"): []byte("abc"),
	}}
	var results []ReportRecord
	dl := Downloader{
		Dial:     func(string, string) (Session, error) { return sess, nil },
		OnResult: func(rec ReportRecord) { results = append(results, rec) },
	}

	count, err := dl.Run(src, testRequest(t))
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	require.Len(t, results, 2)
	assert.Equal(t, "605_64", results[0].GridID)
	assert.Equal(t, "ok", results[0].Status)
	assert.Equal(t, int64(3), results[0].Bytes)
	assert.Equal(t, "999_99", results[1].GridID)
	assert.Equal(t, "failed", results[1].Status)
}

func TestDownloaderWritesReport(t *testing.T) {
	src := gridSource("605_64", "999_99")
	sess := &fakeSession{files: map[string][]byte{
		TerrainModel.RemotePath("605_64"): []byte("a"),
	}}
	dl := Downloader{Dial: func(string, string) (Session, error) { return sess, nil }}

	req := testRequest(t)
	req.ReportPath = filepath.Join(t.TempDir(), "report.csv")
	count, err := dl.Run(src, req)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	data, err := os.ReadFile(req.ReportPath)
	require.NoError(t, err)
	report := string(data)
	assert.Contains(t, report, "Timestamp,GridID,Category,FileName,SizeMB,TimeSec,Status")
	assert.Contains(t, report, ",ok")
	assert.Contains(t, report, ",failed")
}
