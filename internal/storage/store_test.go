package storage

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/san-kum/wormsim/internal/metrics"
	"github.com/san-kum/wormsim/internal/texture"
	"github.com/san-kum/wormsim/internal/wormhole"
)

func testRun() (RunMetadata, []metrics.Bucket) {
	meta := RunMetadata{
		Name:        "interstellar",
		Width:       4,
		Height:      4,
		Supersample: 1,
		Camera:      wormhole.DefaultParams(),
		Texture:     texture.DefaultParams(),
		Integrator:  "euler",
		Elapsed:     0.25,
		Metrics:     map[string]float64{"mean_steps": 397.5},
		Output:      "wormhole.png",
	}
	hist := []metrics.Bucket{
		{Lo: 0, Hi: 1000, Count: 16},
		{Lo: 1000, Hi: 2000, Count: 0},
		{Lo: 2000, Hi: 3001, Count: 0},
	}
	return meta, hist
}

func TestStoreSaveLoad(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	meta, hist := testRun()
	runID, err := st.Save(meta, hist)
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if !strings.HasPrefix(runID, "interstellar_") {
		t.Errorf("unexpected run id %q", runID)
	}

	got, err := st.Load(runID)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if got.ID != runID || got.Timestamp.IsZero() {
		t.Errorf("id/timestamp not recorded: %+v", got)
	}
	if got.Camera != meta.Camera || got.Texture != meta.Texture {
		t.Errorf("parameters changed: %+v", got)
	}
	if got.Metrics["mean_steps"] != 397.5 {
		t.Errorf("expected mean_steps 397.5, got %f", got.Metrics["mean_steps"])
	}

	loaded, err := st.LoadHistogram(runID)
	if err != nil {
		t.Fatalf("load histogram failed: %v", err)
	}
	if len(loaded) != len(hist) {
		t.Fatalf("expected %d buckets, got %d", len(hist), len(loaded))
	}
	for i := range hist {
		if loaded[i] != hist[i] {
			t.Errorf("bucket %d = %+v, want %+v", i, loaded[i], hist[i])
		}
	}
}

func TestStoreList(t *testing.T) {
	st := New(filepath.Join(t.TempDir(), "runs"))

	runs, err := st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 0 {
		t.Errorf("expected 0 runs, got %d", len(runs))
	}

	meta, hist := testRun()
	first, err := st.Save(meta, hist)
	if err != nil {
		t.Fatal(err)
	}
	second, err := st.Save(meta, hist)
	if err != nil {
		t.Fatal(err)
	}
	if first == second {
		t.Fatalf("runs share id %s", first)
	}

	runs, err = st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runs))
	}
	if runs[0].ID != first {
		t.Errorf("runs not ordered by time: %s, %s", runs[0].ID, runs[1].ID)
	}
}

func TestStoreFileStructure(t *testing.T) {
	dir := t.TempDir()
	st := New(dir)

	meta, hist := testRun()
	runID, err := st.Save(meta, hist)
	if err != nil {
		t.Fatal(err)
	}

	for _, name := range []string{"metadata.json", "histogram.csv"} {
		if _, err := os.Stat(filepath.Join(dir, runID, name)); os.IsNotExist(err) {
			t.Errorf("%s not created", name)
		}
	}

	data, err := os.ReadFile(filepath.Join(dir, runID, "histogram.csv"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(data), "bucket_lo,bucket_hi,count\n0,1000,16\n") {
		t.Errorf("unexpected histogram.csv:\n%s", data)
	}
}

func TestStoreExport(t *testing.T) {
	st := New(t.TempDir())
	meta, hist := testRun()
	runID, err := st.Save(meta, hist)
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := st.Export(&buf, runID); err != nil {
		t.Fatal(err)
	}
	var got ExportData
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("export is not JSON: %v", err)
	}
	if got.ID != runID || len(got.Histogram) != 3 || got.Integrator != "euler" {
		t.Errorf("unexpected export %+v", got)
	}

	buf.Reset()
	if err := st.ExportCSV(&buf, runID); err != nil {
		t.Fatal(err)
	}
	if lines := strings.Count(buf.String(), "\n"); lines != 4 {
		t.Errorf("expected 4 csv lines, got %d", lines)
	}
}

func TestStoreLoad_Missing(t *testing.T) {
	st := New(t.TempDir())
	if _, err := st.Load("nope"); !os.IsNotExist(err) {
		t.Errorf("expected not-exist error, got %v", err)
	}
	if _, err := st.LoadHistogram("nope"); !os.IsNotExist(err) {
		t.Errorf("expected not-exist error, got %v", err)
	}
}
