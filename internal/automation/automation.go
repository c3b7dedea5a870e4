package automation

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/wormsim/internal/config"
	"github.com/san-kum/wormsim/internal/experiment"
	"github.com/san-kum/wormsim/internal/imageio"
	"github.com/san-kum/wormsim/internal/render"
)

// Scenario defines a scripted sequence of renders and sweeps.
type Scenario struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Steps       []ScenarioStep `yaml:"steps"`
	Sweeps      []Sweep        `yaml:"sweeps"`
	Searches    []Search       `yaml:"searches"`
}

// ScenarioStep renders one frame from a preset with parameter overrides.
type ScenarioStep struct {
	Preset     string             `yaml:"preset"`
	Integrator string             `yaml:"integrator"`
	Params     map[string]float64 `yaml:"params"`
	SaveAs     string             `yaml:"save_as"`
}

// Sweep renders a frame for each of N evenly spaced values of one
// parameter. Output is a printf pattern taking the frame index; a name
// without a %d verb gets _000, _001, ... before its extension.
type Sweep struct {
	Preset string             `yaml:"preset"`
	Params map[string]float64 `yaml:"params"`
	Param  string             `yaml:"param"`
	Min    float64            `yaml:"min"`
	Max    float64            `yaml:"max"`
	N      int                `yaml:"n"`
	Output string             `yaml:"output"`
}

// Result is one rendered frame of a scenario.
type Result struct {
	Label  string
	Config *config.Config
	Frame  *render.Frame
	Output string
}

func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, err
	}

	return &scenario, nil
}

// SetParam assigns a named numeric field of cfg.
func SetParam(cfg *config.Config, name string, v float64) error {
	switch strings.ToLower(name) {
	case "a":
		cfg.Camera.A = v
	case "n":
		cfg.Camera.N = v
	case "dt":
		cfg.Camera.Dt = v
	case "max_steps":
		cfg.Camera.MaxSteps = int(v)
	case "cam_l":
		cfg.Camera.CamL = v
	case "zoom":
		cfg.Camera.Zoom = v
	case "width":
		cfg.Width = int(v)
	case "height":
		cfg.Height = int(v)
	case "supersample":
		cfg.Supersample = int(v)
	case "ring_radius":
		cfg.Texture.RingRadius = v
	case "ring_width":
		cfg.Texture.RingWidth = v
	case "disk_threshold":
		cfg.Texture.DiskThreshold = v
	default:
		return fmt.Errorf("unknown parameter: %s", name)
	}
	return nil
}

// Param reads a named numeric field of cfg. Names match SetParam.
func Param(cfg *config.Config, name string) (float64, error) {
	switch strings.ToLower(name) {
	case "a":
		return cfg.Camera.A, nil
	case "n":
		return cfg.Camera.N, nil
	case "dt":
		return cfg.Camera.Dt, nil
	case "max_steps":
		return float64(cfg.Camera.MaxSteps), nil
	case "cam_l":
		return cfg.Camera.CamL, nil
	case "zoom":
		return cfg.Camera.Zoom, nil
	case "width":
		return float64(cfg.Width), nil
	case "height":
		return float64(cfg.Height), nil
	case "supersample":
		return float64(cfg.Supersample), nil
	case "ring_radius":
		return cfg.Texture.RingRadius, nil
	case "ring_width":
		return cfg.Texture.RingWidth, nil
	case "disk_threshold":
		return cfg.Texture.DiskThreshold, nil
	}
	return 0, fmt.Errorf("unknown parameter: %s", name)
}

func baseConfig(preset string, params map[string]float64) (*config.Config, error) {
	cfg, err := config.Resolve(preset, "")
	if err != nil {
		return nil, err
	}
	for k, v := range params {
		if err := SetParam(cfg, k, v); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// RunScenario executes all steps, then all sweeps. Frames are written under
// outDir when a step names an output.
func RunScenario(ctx context.Context, scenario *Scenario, registry *experiment.Registry, outDir string) ([]Result, error) {
	results := make([]Result, 0, len(scenario.Steps))

	for i, step := range scenario.Steps {
		fmt.Printf("Running step %d/%d: %s\n", i+1, len(scenario.Steps), orDefault(step.Preset, "default"))

		cfg, err := baseConfig(step.Preset, step.Params)
		if err != nil {
			return results, fmt.Errorf("step %d: %w", i+1, err)
		}
		if step.Integrator != "" {
			cfg.Integrator = step.Integrator
		}

		res, err := renderOne(ctx, cfg, registry, outDir, step.SaveAs)
		if err != nil {
			return results, fmt.Errorf("step %d: %w", i+1, err)
		}
		res.Label = fmt.Sprintf("step %d", i+1)
		results = append(results, *res)
	}

	for i := range scenario.Sweeps {
		sweep, err := RunSweep(ctx, &scenario.Sweeps[i], registry, outDir)
		results = append(results, sweep...)
		if err != nil {
			return results, fmt.Errorf("sweep %d: %w", i+1, err)
		}
	}

	for i := range scenario.Searches {
		res, err := RunSearch(ctx, &scenario.Searches[i], registry, outDir)
		if err != nil {
			return results, fmt.Errorf("search %d: %w", i+1, err)
		}
		results = append(results, *res)
	}

	return results, nil
}

// RunSweep renders sweep.N frames with sweep.Param stepped from Min to Max.
func RunSweep(ctx context.Context, sweep *Sweep, registry *experiment.Registry, outDir string) ([]Result, error) {
	if sweep.N < 1 {
		return nil, fmt.Errorf("sweep over %s needs at least one frame", sweep.Param)
	}
	base, err := baseConfig(sweep.Preset, sweep.Params)
	if err != nil {
		return nil, err
	}
	if err := SetParam(base.Clone(), sweep.Param, sweep.Min); err != nil {
		return nil, err
	}

	results := make([]Result, 0, sweep.N)
	paramStep := 0.0
	if sweep.N > 1 {
		paramStep = (sweep.Max - sweep.Min) / float64(sweep.N-1)
	}

	for i := 0; i < sweep.N; i++ {
		paramVal := sweep.Min + float64(i)*paramStep
		cfg := base.Clone()
		if err := SetParam(cfg, sweep.Param, paramVal); err != nil {
			return results, err
		}

		out := ""
		if sweep.Output != "" {
			out = FrameName(sweep.Output, i)
		}
		res, err := renderOne(ctx, cfg, registry, outDir, out)
		if err != nil {
			return results, fmt.Errorf("%s=%.4f: %w", sweep.Param, paramVal, err)
		}
		res.Label = fmt.Sprintf("%s=%.4f", sweep.Param, paramVal)
		results = append(results, *res)

		fmt.Printf("Sweep %d/%d: %s=%.4f\n", i+1, sweep.N, sweep.Param, paramVal)
	}

	return results, nil
}

var indexVerb = regexp.MustCompile(`%0?[0-9]*d`)

// FrameName returns the output name of frame i of a sweep.
func FrameName(pattern string, i int) string {
	if indexVerb.MatchString(pattern) {
		return fmt.Sprintf(pattern, i)
	}
	ext := filepath.Ext(pattern)
	return fmt.Sprintf("%s_%03d%s", strings.TrimSuffix(pattern, ext), i, ext)
}

func renderOne(ctx context.Context, cfg *config.Config, registry *experiment.Registry, outDir, saveAs string) (*Result, error) {
	exp := experiment.New(cfg)
	if err := exp.Setup(registry, nil); err != nil {
		return nil, err
	}
	frame, err := exp.Run(ctx)
	if err != nil {
		return nil, err
	}

	res := &Result{Config: exp.Config(), Frame: frame}
	if saveAs != "" {
		res.Output = filepath.Join(outDir, saveAs)
		if err := imageio.Save(res.Output, frame.Image); err != nil {
			return nil, err
		}
	}
	return res, nil
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
