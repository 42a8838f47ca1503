package report

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/wonny/precinho/internal/contracts"
	"github.com/wonny/precinho/pkg/logger"
)

// Files lists the artifacts written for one run
type Files struct {
	CSV  string
	JSON string
	HTML string
}

// Writer writes run artifacts into a folder (docs/ by default)
// ⭐ SSOT: 리포트 파일 생성은 여기서만
type Writer struct {
	dir            string
	targetMultiple float64
	logger         *logger.Logger
}

// NewWriter creates a report writer
func NewWriter(dir string, targetMultiple float64, log *logger.Logger) *Writer {
	return &Writer{
		dir:            dir,
		targetMultiple: targetMultiple,
		logger:         log,
	}
}

// Write produces ranking_<date>.csv, ranking_<date>.json and index.html
func (w *Writer) Write(report *contracts.RunReport) (*Files, error) {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return nil, fmt.Errorf("create report dir: %w", err)
	}

	date := report.GeneratedAt.Format("2006-01-02")
	csvName := fmt.Sprintf("ranking_%s.csv", date)
	jsonName := fmt.Sprintf("ranking_%s.json", date)

	files := &Files{
		CSV:  filepath.Join(w.dir, csvName),
		JSON: filepath.Join(w.dir, jsonName),
		HTML: filepath.Join(w.dir, "index.html"),
	}

	if err := writeFile(files.CSV, func(f *os.File) error { return WriteCSV(f, report.Ranked) }); err != nil {
		return nil, fmt.Errorf("write csv: %w", err)
	}
	if err := writeFile(files.JSON, func(f *os.File) error { return WriteJSON(f, report) }); err != nil {
		return nil, fmt.Errorf("write json: %w", err)
	}

	page := NewPageData(report, w.targetMultiple, csvName, jsonName)
	if err := writeFile(files.HTML, func(f *os.File) error { return WriteHTML(f, page) }); err != nil {
		return nil, fmt.Errorf("write html: %w", err)
	}

	w.logger.WithFields(map[string]interface{}{
		"run_id": report.RunID,
		"dir":    w.dir,
		"ranked": len(report.Ranked),
	}).Info("Reports written")

	return files, nil
}

// writeFile writes through a temp file and renames, so readers never see partial output
func writeFile(path string, fn func(*os.File) error) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if err := fn(tmp); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
