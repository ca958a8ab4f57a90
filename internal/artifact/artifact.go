// Package artifact names, writes, and reads the pipeline's dated CSV files.
//
// Each stage writes one file per run under <dataDir>/<tier>/, stamped with the
// run's calendar date. Re-running a stage on the same day overwrites that
// day's file.
package artifact

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Tier is a pipeline stage's output directory.
type Tier string

const (
	Bronze Tier = "bronze"
	Silver Tier = "silver"
	Gold   Tier = "gold"
)

const stampFormat = "2006_01_02"

// Stamp formats a run date the way artifact filenames expect it.
func Stamp(runDate time.Time) string {
	return runDate.Format(stampFormat)
}

// ParseStamp parses a run date in the filename format, e.g. "2024_01_02".
func ParseStamp(s string) (time.Time, error) {
	t, err := time.Parse(stampFormat, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing run date %q: %w", s, err)
	}
	return t, nil
}

// Path builds the artifact path for a stage's output, e.g.
// data/bronze/2024_01_02_lastfm_streams.csv.
func Path(dataDir string, tier Tier, runDate time.Time, suffix string) string {
	return filepath.Join(dataDir, string(tier), fmt.Sprintf("%s_%s.csv", Stamp(runDate), suffix))
}

// Write writes a header row plus records to path, creating the tier directory
// if needed. The file only appears with its full contents; partial tables are
// never left behind.
func Write(path string, header []string, records [][]string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating artifact directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating artifact %q: %w", path, err)
	}

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		f.Close()
		return fmt.Errorf("writing header: %w", err)
	}
	if err := w.WriteAll(records); err != nil {
		f.Close()
		return fmt.Errorf("writing records: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing artifact %q: %w", path, err)
	}
	return nil
}

// Read returns an artifact's header row and records.
func Read(path string) (header []string, records [][]string, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("opening artifact %q: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	rows, err := r.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("reading artifact %q: %w", path, err)
	}
	if len(rows) == 0 {
		return nil, nil, fmt.Errorf("artifact %q has no header row", path)
	}
	return rows[0], rows[1:], nil
}
