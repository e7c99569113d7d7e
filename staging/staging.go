// Package staging copies model weight files into the function bundle at build
// time. Staging is advisory: a missing or unreadable model is reported and
// skipped, and nothing here returns an error to the caller.
package staging

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/awantoch/cvdfunctions/blob"
	"github.com/awantoch/cvdfunctions/constants"
	"github.com/awantoch/cvdfunctions/telemetry"
	"github.com/awantoch/cvdfunctions/utils"
	"github.com/pkg/errors"
)

// Outcome is what happened to one model file.
type Outcome string

const (
	OutcomeCopied  Outcome = "copied"
	OutcomeSkipped Outcome = "skipped"
	OutcomeFailed  Outcome = "failed"
)

// ModelFile describes one expected weight artifact.
type ModelFile struct {
	Name        string
	Source      string
	Destination string
	Exists      bool
}

// Result is the staging outcome for one ModelFile.
type Result struct {
	File    ModelFile
	Outcome Outcome
	Err     error
}

// Report lists the per-file results in staging order.
type Report struct {
	Results []Result
}

// Copied returns the number of files copied.
func (r Report) Copied() int {
	n := 0
	for _, res := range r.Results {
		if res.Outcome == OutcomeCopied {
			n++
		}
	}
	return n
}

// Total returns the number of files staging was asked to copy.
func (r Report) Total() int {
	return len(r.Results)
}

// Stager copies a fixed list of model files from a source into a directory.
type Stager struct {
	source  blob.ModelSource
	destDir string
	models  []string
}

// NewStager returns a Stager. An empty model list means constants.ModelFiles.
func NewStager(source blob.ModelSource, destDir string, models []string) *Stager {
	if len(models) == 0 {
		models = constants.ModelFiles
	}
	return &Stager{source: source, destDir: destDir, models: models}
}

// Run stages every model in order and prints a notice per file and a summary.
func (s *Stager) Run(ctx context.Context) Report {
	var report Report
	for _, name := range s.models {
		res := s.stage(ctx, name)
		telemetry.RecordStaging(string(res.Outcome))
		report.Results = append(report.Results, res)
	}
	summarize(report)
	return report
}

func (s *Stager) stage(ctx context.Context, name string) Result {
	file := ModelFile{
		Name:        name,
		Source:      s.source.Location(name),
		Destination: filepath.Join(s.destDir, name),
	}
	if err := os.MkdirAll(s.destDir, 0o755); err != nil {
		return failed(file, errors.Wrap(err, "create destination directory"))
	}

	obj, err := s.source.Stat(ctx, name)
	if errors.Is(err, blob.ErrNotFound) {
		utils.User(constants.NoticeNotFound, name)
		utils.Debug("model %s not found at %s", name, file.Source)
		return Result{File: file, Outcome: OutcomeSkipped}
	}
	if err != nil {
		return failed(file, err)
	}
	file.Exists = true

	rc, _, err := s.source.Open(ctx, name)
	if err != nil {
		return failed(file, err)
	}
	defer rc.Close()

	if err := copyFile(rc, obj, file.Destination); err != nil {
		return failed(file, err)
	}
	utils.User(constants.NoticeCopied, name)
	return Result{File: file, Outcome: OutcomeCopied}
}

func failed(file ModelFile, err error) Result {
	utils.User(constants.NoticeCopyFailed, file.Name, err)
	utils.Warn("staging %s failed: %+v", file.Name, err)
	return Result{File: file, Outcome: OutcomeFailed, Err: err}
}

// copyFile writes r to dst via a temp file in the same directory, then
// applies the source mode and modification time and renames into place.
// A failed or short copy leaves no file at dst.
func copyFile(r io.Reader, obj blob.Object, dst string) error {
	tmp, err := os.CreateTemp(filepath.Dir(dst), "."+filepath.Base(dst)+".*.tmp")
	if err != nil {
		return errors.Wrap(err, "create temp file")
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	n, err := io.Copy(tmp, r)
	if err != nil {
		tmp.Close()
		return errors.Wrap(err, "copy bytes")
	}
	if obj.Size > 0 && n != obj.Size {
		tmp.Close()
		return errors.Errorf("short copy: wrote %d of %d bytes", n, obj.Size)
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(err, "close temp file")
	}
	mode := obj.Mode
	if mode == 0 {
		mode = 0o644
	}
	if err := os.Chmod(tmpPath, mode); err != nil {
		return errors.Wrap(err, "set mode")
	}
	if !obj.ModTime.IsZero() {
		if err := os.Chtimes(tmpPath, obj.ModTime, obj.ModTime); err != nil {
			return errors.Wrap(err, "set times")
		}
	}
	return errors.Wrap(os.Rename(tmpPath, dst), "rename into place")
}

func summarize(report Report) {
	copied, total := report.Copied(), report.Total()
	utils.User(constants.NoticeSummary, copied, total)
	switch {
	case copied == 0:
		utils.User(constants.NoticeNoneCopied)
	case copied < total:
		utils.User(constants.NoticeSomeMissing, copied, total)
	}
}
