package blocks

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"

	"dfsfetch/gis"
)

// Session is the narrow view of an authenticated FTPS connection the
// downloader needs: one streaming fetch per call, one Quit at the end.
type Session interface {
	Fetch(remotePath string, w io.Writer) (int64, error)
	Quit() error
}

// Sizer is optionally implemented by sessions that can report a remote
// file's size ahead of the transfer.
type Sizer interface {
	Size(remotePath string) (int64, error)
}

// Dialer opens and authenticates a session. A failed dial or login is fatal
// to the whole invocation.
type Dialer func(username, password string) (Session, error)

// Feedback is the host's informational/error channel. Errorf reports a
// non-fatal per-feature failure; Infof everything else.
type Feedback interface {
	Infof(format string, args ...interface{})
	Errorf(format string, args ...interface{})
}

type nopFeedback struct{}

func (nopFeedback) Infof(string, ...interface{})  {}
func (nopFeedback) Errorf(string, ...interface{}) {}

// Downloader runs block downloads against a feature selection: one session
// per invocation, one fetch per selected feature with a non-empty grid ID,
// strictly sequential in selection order.
type Downloader struct {
	Dial     Dialer
	Feedback Feedback
	Log      *zap.Logger
	Progress bool               // render a per-file progress bar
	OnResult func(ReportRecord) // called once per attempted feature
}

// Run executes one invocation and returns the number of files downloaded.
// Precondition failures and connection errors return before or without any
// transfer; per-feature failures are reported through Feedback and skipped.
func (d *Downloader) Run(src gis.FeatureSource, req Request) (int, error) {
	fb := d.Feedback
	if fb == nil {
		fb = nopFeedback{}
	}
	log := d.Log
	if log == nil {
		log = zap.NewNop()
	}

	if err := req.Validate(); err != nil {
		return 0, err
	}
	if src == nil {
		return 0, fmt.Errorf("no active feature source")
	}
	if !hasField(src.Fields(), req.Field) {
		return 0, fmt.Errorf("layer has no field %q", req.Field)
	}
	features, err := src.SelectedFeatures()
	if err != nil {
		return 0, fmt.Errorf("failed to read selection: %w", err)
	}
	if len(features) == 0 {
		return 0, fmt.Errorf("no features are selected")
	}

	fb.Infof("Processing %d selected features...", len(features))

	sess, err := d.Dial(req.Username, req.Password)
	if err != nil {
		return 0, fmt.Errorf("failed to connect to FTPS server: %w", err)
	}
	defer sess.Quit()
	fb.Infof("Connected to FTPS server.")

	downloaded := 0
	for _, feature := range features {
		gridID := feature.StringAttribute(req.Field)
		if gridID == "" {
			fb.Infof("Skipping feature %s with no grid ID.", feature.ID)
			log.Info("feature skipped", zap.String("feature", feature.ID))
			continue
		}

		filename := req.Category.Filename(gridID)
		remotePath := req.Category.RemotePath(gridID)
		localPath := filepath.Join(req.OutputDir, filename)

		fb.Infof("Downloading %s to %s...", filename, localPath)
		start := time.Now()

		n, err := d.fetchOne(sess, remotePath, localPath)
		if err != nil {
			ferr := &FeatureError{Kind: KindTransfer, GridID: gridID, Filename: filename, Err: err}
			fb.Errorf("Failed to download %s: %v", filename, err)
			log.Warn("download failed", zap.String("grid", gridID), zap.Error(ferr))
			d.report(fb, req, ReportRecord{
				GridID: gridID, Category: req.Category, FileName: filename,
				Bytes: n, Duration: time.Since(start), Status: "failed",
			})
			continue
		}

		downloaded++
		fb.Infof("Downloaded: %s", filename)
		log.Info("downloaded", zap.String("grid", gridID), zap.String("file", filename), zap.Int64("bytes", n))
		status := "ok"

		if req.Unpack && strings.EqualFold(filepath.Ext(filename), ".zip") {
			fb.Infof("Unpacking %s...", filename)
			if err := Unzip(localPath, req.OutputDir); err != nil {
				ferr := &FeatureError{Kind: KindUnpack, GridID: gridID, Filename: filename, Err: err}
				fb.Errorf("Failed to download %s: %v", filename, err)
				log.Warn("unpack failed", zap.String("grid", gridID), zap.Error(ferr))
				status = "unpack-failed"
			} else {
				fb.Infof("Unpacked: %s", filename)
			}
		}

		d.report(fb, req, ReportRecord{
			GridID: gridID, Category: req.Category, FileName: filename,
			Bytes: n, Duration: time.Since(start), Status: status,
		})
	}

	fb.Infof("Download complete. %d files downloaded.", downloaded)
	return downloaded, nil
}

// fetchOne streams one remote file into a newly created local file. The
// partial file is left in place on failure, as the original behavior did.
func (d *Downloader) fetchOne(sess Session, remotePath, localPath string) (int64, error) {
	out, err := os.Create(localPath)
	if err != nil {
		return 0, err
	}

	var w io.Writer = out
	if d.Progress {
		bar := newTransferBar(sess, remotePath)
		w = io.MultiWriter(out, bar)
		defer bar.Finish()
	}

	n, err := sess.Fetch(remotePath, w)
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	return n, err
}

func newTransferBar(sess Session, remotePath string) *progressbar.ProgressBar {
	total := int64(-1)
	if sizer, ok := sess.(Sizer); ok {
		if size, err := sizer.Size(remotePath); err == nil {
			total = size
		}
	}
	return progressbar.NewOptions64(total,
		progressbar.OptionClearOnFinish(),
		progressbar.OptionSetElapsedTime(false),
		progressbar.OptionSetPredictTime(false),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionShowBytes(true),
		progressbar.OptionSetDescription(filepath.Base(remotePath)),
	)
}

func (d *Downloader) report(fb Feedback, req Request, rec ReportRecord) {
	if d.OnResult != nil {
		d.OnResult(rec)
	}
	if req.ReportPath == "" {
		return
	}
	if err := AppendReportRecord(req.ReportPath, rec); err != nil {
		fb.Errorf("Failed to write download report: %v", err)
	}
}

func hasField(fields []string, name string) bool {
	for _, f := range fields {
		if f == name {
			return true
		}
	}
	return false
}
