// Package records reads and writes the invoice record file shared by the
// extraction pipeline, the form filler and the control server.
package records

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"zwrot/internal/calendar"
	"zwrot/internal/model"
)

// undated is where records without a usable service date sort.
var undated = time.Date(1900, time.January, 1, 0, 0, 0, 0, time.UTC)

// SortByServiceDate orders records by service date, oldest first. The sort is
// stable and records without a parseable date come first.
func SortByServiceDate(recs []model.Record) {
	keys := make([]time.Time, len(recs))
	for i, r := range recs {
		keys[i] = ServiceTime(r)
	}
	idx := make([]int, len(recs))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool { return keys[idx[a]].Before(keys[idx[b]]) })

	sorted := make([]model.Record, len(recs))
	for i, j := range idx {
		sorted[i] = recs[j]
	}
	copy(recs, sorted)
}

// ServiceTime is the sort key of r.
func ServiceTime(r model.Record) time.Time {
	t, err := calendar.ParseDate(r.ServiceDate)
	if err != nil {
		return undated
	}
	return t
}

func Read(path string) ([]model.Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	var recs []model.Record
	if err := json.Unmarshal(data, &recs); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return recs, nil
}

// Write replaces path atomically with recs as an indented JSON array.
func Write(path string, recs []model.Record) error {
	data, err := json.MarshalIndent(recs, "", "    ")
	if err != nil {
		return fmt.Errorf("encode records: %w", err)
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}
	_ = os.Chmod(tmpPath, 0o644)
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}
	return nil
}
