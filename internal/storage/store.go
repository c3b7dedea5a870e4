package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/san-kum/wormsim/internal/metrics"
	"github.com/san-kum/wormsim/internal/texture"
	"github.com/san-kum/wormsim/internal/wormhole"
)

const (
	metadataFile  = "metadata.json"
	histogramFile = "histogram.csv"
)

var histogramHeader = []string{"bucket_lo", "bucket_hi", "count"}

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

func (s *Store) Dir() string { return s.baseDir }

// RunMetadata describes one stored render.
type RunMetadata struct {
	ID          string             `json:"id"`
	Name        string             `json:"name"`
	Timestamp   time.Time          `json:"timestamp"`
	Width       int                `json:"width"`
	Height      int                `json:"height"`
	Supersample int                `json:"supersample"`
	Workers     int                `json:"workers"`
	Camera      wormhole.Params    `json:"camera"`
	Texture     texture.Params     `json:"texture"`
	Integrator  string             `json:"integrator"`
	Elapsed     float64            `json:"elapsed_seconds"`
	Metrics     map[string]float64 `json:"metrics"`
	Output      string             `json:"output,omitempty"`
}

// Save records a run under a fresh directory named after meta.Name and the
// current time. It fills in ID and Timestamp and returns the ID.
func (s *Store) Save(meta RunMetadata, hist []metrics.Bucket) (string, error) {
	if meta.Name == "" {
		meta.Name = "render"
	}
	now := time.Now()

	runID, runDir, err := s.createRunDir(fmt.Sprintf("%s_%d", meta.Name, now.Unix()))
	if err != nil {
		return "", err
	}
	meta.ID = runID
	meta.Timestamp = now

	if err := writeJSON(filepath.Join(runDir, metadataFile), meta); err != nil {
		return "", err
	}
	if err := writeHistogram(filepath.Join(runDir, histogramFile), hist); err != nil {
		return "", err
	}
	return runID, nil
}

// createRunDir claims base, or base_2, base_3, ... when runs share a second.
func (s *Store) createRunDir(base string) (string, string, error) {
	if err := s.Init(); err != nil {
		return "", "", err
	}
	id := base
	for i := 2; ; i++ {
		dir := filepath.Join(s.baseDir, id)
		err := os.Mkdir(dir, 0755)
		if err == nil {
			return id, dir, nil
		}
		if !errors.Is(err, os.ErrExist) {
			return "", "", err
		}
		id = fmt.Sprintf("%s_%d", base, i)
	}
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeHistogram(path string, hist []metrics.Bucket) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := WriteHistogramCSV(f, hist); err != nil {
		return err
	}
	return f.Close()
}

// List returns every readable run, oldest first.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	sort.SliceStable(runs, func(i, j int) bool {
		return runs[i].Timestamp.Before(runs[j].Timestamp)
	})
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("storage: %s: %w", runID, err)
	}
	return &meta, nil
}

func (s *Store) LoadHistogram(runID string) ([]metrics.Bucket, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, histogramFile))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return []metrics.Bucket{}, nil
	}

	buckets := make([]metrics.Bucket, 0, len(records)-1)
	for _, record := range records[1:] {
		if len(record) < 3 {
			continue
		}
		var vals [3]int
		ok := true
		for i := range vals {
			v, err := strconv.Atoi(record[i])
			if err != nil {
				ok = false
				break
			}
			vals[i] = v
		}
		if !ok {
			continue
		}
		buckets = append(buckets, metrics.Bucket{Lo: vals[0], Hi: vals[1], Count: vals[2]})
	}
	return buckets, nil
}
