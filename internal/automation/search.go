package automation

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/san-kum/wormsim/internal/experiment"
	"github.com/san-kum/wormsim/internal/metrics"
	"github.com/san-kum/wormsim/internal/optim"
)

// Search renders every point of a parameter grid and keeps the one that
// minimizes (or maximizes) a frame metric. The best frame is re-rendered
// and saved to Output when set.
type Search struct {
	Preset   string               `yaml:"preset"`
	Params   map[string]float64   `yaml:"params"`
	Grid     map[string][]float64 `yaml:"grid"`
	Metric   string               `yaml:"metric"`
	Maximize bool                 `yaml:"maximize"`
	Output   string               `yaml:"output"`
}

func metricByName(name string) (metrics.Metric, error) {
	var names []string
	for _, m := range metrics.Defaults() {
		if m.Name() == name {
			return m, nil
		}
		names = append(names, m.Name())
	}
	sort.Strings(names)
	return nil, fmt.Errorf("unknown metric: %s (available: %s)", name, strings.Join(names, ", "))
}

func RunSearch(ctx context.Context, search *Search, registry *experiment.Registry, outDir string) (*Result, error) {
	if _, err := metricByName(search.Metric); err != nil {
		return nil, err
	}
	base, err := baseConfig(search.Preset, search.Params)
	if err != nil {
		return nil, err
	}

	grid := optim.FromGrid(search.Grid)
	fmt.Printf("Search: %s over %d points\n", search.Metric, grid.Size())

	sign := 1.0
	if search.Maximize {
		sign = -1
	}
	objective := func(ctx context.Context, params map[string]float64) (float64, error) {
		cfg := base.Clone()
		for k, v := range params {
			if err := SetParam(cfg, k, v); err != nil {
				return 0, err
			}
		}
		res, err := renderOne(ctx, cfg, registry, "", "")
		if err != nil {
			return 0, err
		}
		m, _ := metricByName(search.Metric)
		return sign * res.Frame.Evaluate(m)[search.Metric], nil
	}

	best, score, err := grid.Search(ctx, objective)
	if err != nil {
		return nil, err
	}

	cfg := base.Clone()
	keys := make([]string, 0, len(best))
	for k, v := range best {
		if err := SetParam(cfg, k, v); err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	res, err := renderOne(ctx, cfg, registry, outDir, search.Output)
	if err != nil {
		return nil, err
	}

	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s=%.4g", k, best[k])
	}
	res.Label = fmt.Sprintf("best %s (%s=%.4g)", strings.Join(parts, " "), search.Metric, sign*score)
	fmt.Printf("Search: %s\n", res.Label)
	return res, nil
}
