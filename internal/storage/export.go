package storage

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"strconv"

	"github.com/san-kum/wormsim/internal/metrics"
)

// ExportData is a stored run together with its step histogram.
type ExportData struct {
	RunMetadata
	Histogram []metrics.Bucket `json:"histogram"`
}

// Export writes the run as indented JSON.
func (s *Store) Export(w io.Writer, runID string) error {
	meta, err := s.Load(runID)
	if err != nil {
		return err
	}
	hist, err := s.LoadHistogram(runID)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(ExportData{RunMetadata: *meta, Histogram: hist})
}

// ExportCSV writes the run's step histogram as CSV.
func (s *Store) ExportCSV(w io.Writer, runID string) error {
	hist, err := s.LoadHistogram(runID)
	if err != nil {
		return err
	}
	return WriteHistogramCSV(w, hist)
}

func WriteHistogramCSV(w io.Writer, hist []metrics.Bucket) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(histogramHeader); err != nil {
		return err
	}
	for _, b := range hist {
		row := []string{strconv.Itoa(b.Lo), strconv.Itoa(b.Hi), strconv.Itoa(b.Count)}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
