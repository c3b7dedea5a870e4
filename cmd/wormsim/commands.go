package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"sort"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/wormsim/internal/automation"
	"github.com/san-kum/wormsim/internal/config"
	"github.com/san-kum/wormsim/internal/experiment"
	"github.com/san-kum/wormsim/internal/export"
	"github.com/san-kum/wormsim/internal/gui"
	"github.com/san-kum/wormsim/internal/imageio"
	"github.com/san-kum/wormsim/internal/metrics"
	"github.com/san-kum/wormsim/internal/raytrace"
	"github.com/san-kum/wormsim/internal/render"
	"github.com/san-kum/wormsim/internal/storage"
	"github.com/san-kum/wormsim/internal/vecmath"
	"github.com/san-kum/wormsim/internal/viz"
)

const histogramBuckets = 20

func runRender(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	exp := experiment.New(cfg)
	if err := exp.Setup(experiment.NewRegistry(), nil); err != nil {
		return err
	}

	fmt.Printf("rendering %dx%d (%s, %s)\n", cfg.Width, cfg.Height, runName(), cfg.Integrator)
	frame, err := exp.Run(ctx)
	if err != nil {
		return err
	}
	return finishFrame(cfg, frame)
}

// finishFrame saves the image, prints the summary and records the run.
func finishFrame(cfg *config.Config, frame *render.Frame) error {
	if err := imageio.Save(cfg.Output, frame.Image); err != nil {
		return err
	}

	values := frame.Evaluate(metrics.Defaults()...)
	fmt.Printf("elapsed: %v\n", frame.Elapsed.Round(time.Millisecond))
	printMetrics(values)
	fmt.Printf("saved: %s\n", cfg.Output)

	if noStore {
		return nil
	}
	runID, err := saveRun(runName(), cfg, frame, values)
	if err != nil {
		return err
	}
	fmt.Printf("run id: %s\n", runID)
	return nil
}

func saveRun(name string, cfg *config.Config, frame *render.Frame, values map[string]float64) (string, error) {
	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return "", err
	}
	meta := storage.RunMetadata{
		Name:        name,
		Width:       cfg.Width,
		Height:      cfg.Height,
		Supersample: cfg.Supersample,
		Workers:     cfg.Workers,
		Camera:      cfg.Camera,
		Texture:     cfg.Texture,
		Integrator:  cfg.Integrator,
		Elapsed:     frame.Elapsed.Seconds(),
		Metrics:     values,
		Output:      cfg.Output,
	}
	hist := metrics.Histogram(frame.Samples.Steps, cfg.Camera.MaxSteps, histogramBuckets)
	return st.Save(meta, hist)
}

func printMetrics(values map[string]float64) {
	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Printf("  %-16s %.4f\n", name, values[name])
	}
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	m, err := viz.NewModel(context.Background(), runName(), experiment.New(cfg), experiment.NewRegistry())
	if err != nil {
		return err
	}

	final, err := tea.NewProgram(m.WithTheme(themeName)).Run()
	if err != nil {
		return err
	}
	done := final.(viz.Model)
	if done.Err() != nil {
		return done.Err()
	}
	if done.Frame() == nil {
		fmt.Println("render canceled")
		return nil
	}
	return finishFrame(cfg, done.Frame())
}

func runView(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	gui.Run(viz.NewSession(cfg, experiment.NewRegistry()))
	return nil
}

// pathRecorder collects the state of a ray at every step.
type pathRecorder struct {
	l, r, phi []float64
}

func (p *pathRecorder) OnStep(s raytrace.State, _ vecmath.Vec4) {
	p.l = append(p.l, s.L)
	p.r = append(p.r, s.R)
	p.phi = append(p.phi, s.Phi)
}

func traceRay(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	x, y := pixelX, pixelY
	if x < 0 {
		x = cfg.Width / 2
	}
	if y < 0 {
		y = cfg.Height / 2
	}
	if x >= cfg.Width || y >= cfg.Height {
		return fmt.Errorf("pixel (%d, %d) outside %dx%d frame", x, y, cfg.Width, cfg.Height)
	}

	integ, err := experiment.NewRegistry().GetIntegrator(cfg.Integrator)
	if err != nil {
		return err
	}
	rec := &pathRecorder{}
	tr := raytrace.NewTracer(cfg.Camera, integ)
	tr.SetObserver(rec)

	vel := render.CameraRay(x, y, cfg.Width, cfg.Height, cfg.Camera.Zoom)
	res := tr.Trace(vel)

	fate := "trapped"
	if res.Escaped {
		fate = "escaped"
	}
	fmt.Printf("pixel:      (%d, %d)\n", x, y)
	fmt.Printf("ray:        [%.4f %.4f %.4f]\n", vel[0], vel[1], vel[2])
	fmt.Printf("steps:      %d/%d (%s)\n", res.Steps, cfg.Camera.MaxSteps, fate)
	fmt.Printf("final l:    %.4f  phi: %.4f\n", res.Final.L, res.Final.Phi)
	fmt.Printf("direction:  [%.4f %.4f %.4f %.4f]\n", res.Direction[0], res.Direction[1], res.Direction[2], res.Direction[3])
	fmt.Printf("brightness: %.4f\n\n", render.Brightness(res.Steps, cfg.Camera.MaxSteps))

	if len(rec.l) < 2 {
		return nil
	}
	fmt.Println(asciigraph.Plot(rec.l, asciigraph.Height(10), asciigraph.Width(70), asciigraph.Caption("l (radial coordinate)")))
	fmt.Println()
	fmt.Println(asciigraph.Plot(rec.r, asciigraph.Height(8), asciigraph.Width(70), asciigraph.Caption("r(l)")))
	fmt.Println()

	bound := cfg.Camera.Bound()
	path := export.PolarPath(rec.l, rec.phi)
	xs := make([]float64, len(path))
	ys := make([]float64, len(path))
	for i, p := range path {
		xs[i], ys[i] = p.X, p.Y
	}
	canvas := viz.NewCanvas(40, 20)
	canvas.DrawCircle(40, 40, 40*cfg.Camera.A/bound)
	canvas.PlotPath(xs, ys, bound)
	fmt.Println("path in the (|l| cos phi, |l| sin phi) plane, throat circle |l| = a:")
	fmt.Print(canvas.String())

	if svgPath != "" {
		svg := export.RayPathSVG(path, cfg.Camera.A, bound, 600, export.DefaultPathStyle)
		if err := export.WriteSVG(os.Stdout, svgPath, svg); err != nil {
			return err
		}
		if svgPath != "-" {
			fmt.Printf("saved: %s\n", svgPath)
		}
	}
	return nil
}

func listPresets(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tSIZE\tA\tN\tDT\tSTEPS\tCAM_L\tZOOM\tTEXTURE")
	for _, name := range config.ListPresets() {
		p := config.GetPreset(name)
		fmt.Fprintf(w, "%s\t%dx%d\t%g\t%g\t%g\t%d\t%g\t%g\t%s\n",
			name, p.Width, p.Height,
			p.Camera.A, p.Camera.N, p.Camera.Dt, p.Camera.MaxSteps, p.Camera.CamL, p.Camera.Zoom,
			p.Texture.Mode)
	}
	return w.Flush()
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	fmt.Printf("runs in %s\n\n", st.Dir())
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTIME\tSIZE\tINTEG\tMEAN_STEPS\tESCAPED\tELAPSED\tOUTPUT")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%dx%d\t%s\t%.1f\t%.1f%%\t%.2fs\t%s\n",
			run.ID,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Width, run.Height,
			run.Integrator,
			run.Metrics["mean_steps"],
			100*run.Metrics["escape_ratio"],
			run.Elapsed,
			run.Output,
		)
	}

	return w.Flush()
}

func exportRun(cmd *cobra.Command, args []string) error {
	return storage.New(dataDir).Export(os.Stdout, args[0])
}

func exportCSV(cmd *cobra.Command, args []string) error {
	return storage.New(dataDir).ExportCSV(os.Stdout, args[0])
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	hist, err := st.LoadHistogram(runID)
	if err != nil {
		return err
	}
	if len(hist) == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("size: %dx%d, max steps %d\n\n", meta.Width, meta.Height, meta.Camera.MaxSteps)

	graph := asciigraph.Plot(metrics.Counts(hist),
		asciigraph.Height(12),
		asciigraph.Width(80),
		asciigraph.Caption(fmt.Sprintf("rays per step bucket (%d..%d)", hist[0].Lo, hist[len(hist)-1].Hi)),
	)
	fmt.Println(graph)
	return nil
}

func benchRender(cmd *cobra.Command, args []string) error {
	sizes := [][2]int{{64, 48}, {160, 120}, {320, 240}}
	workerCounts := []int{1, runtime.NumCPU()}
	if workerCounts[1] == 1 {
		workerCounts = workerCounts[:1]
	}

	registry := experiment.NewRegistry()

	fmt.Printf("benchmarking %s\n\n", integrator)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SIZE\tWORKERS\tTIME\tPIXELS/SEC\tMEAN_STEPS")

	for _, size := range sizes {
		for _, n := range workerCounts {
			cfg := config.DefaultConfig()
			cfg.Width, cfg.Height = size[0], size[1]
			cfg.Workers = n
			cfg.Integrator = integrator

			exp := experiment.New(cfg)
			if err := exp.Setup(registry, nil); err != nil {
				return err
			}

			frame, err := exp.Run(context.Background())
			if err != nil {
				return err
			}

			pixels := float64(size[0] * size[1])
			mean := frame.Evaluate(metrics.NewMeanSteps())["mean_steps"]
			fmt.Fprintf(w, "%dx%d\t%d\t%v\t%.0f\t%.1f\n",
				size[0], size[1], n, frame.Elapsed.Round(time.Microsecond),
				pixels/frame.Elapsed.Seconds(), mean)
		}
	}

	return w.Flush()
}

func runBatch(cmd *cobra.Command, args []string) error {
	scenario, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	fmt.Printf("scenario: %s\n", scenario.Name)
	if scenario.Description != "" {
		fmt.Printf("%s\n", scenario.Description)
	}

	results, err := automation.RunScenario(ctx, scenario, experiment.NewRegistry(), outDir)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "FRAME\tSIZE\tELAPSED\tMEAN_STEPS\tOUTPUT\tRUN")
	for _, res := range results {
		values := res.Frame.Evaluate(metrics.Defaults()...)
		runID := "-"
		if !noStore {
			cfg := res.Config.Clone()
			cfg.Output = res.Output
			if runID, err = saveRun(scenario.Name, cfg, res.Frame, values); err != nil {
				return err
			}
		}
		fmt.Fprintf(w, "%s\t%dx%d\t%v\t%.1f\t%s\t%s\n",
			res.Label, res.Frame.Width, res.Frame.Height,
			res.Frame.Elapsed.Round(time.Millisecond), values["mean_steps"], res.Output, runID)
	}
	return w.Flush()
}
