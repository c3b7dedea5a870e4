package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/san-kum/wormsim/internal/config"
	"github.com/san-kum/wormsim/internal/experiment"
	"github.com/san-kum/wormsim/internal/imageio"
	"github.com/san-kum/wormsim/internal/render"
	"github.com/san-kum/wormsim/internal/texture"
	"github.com/san-kum/wormsim/internal/viz"
)

var (
	dataDir string
	verbose bool

	configFile string
	preset     string
	outPath    string
	noStore    bool

	width       int
	height      int
	throat      float64
	smoothing   float64
	dt          float64
	maxSteps    int
	camL        float64
	zoom        float64
	texMode     string
	ringRadius  float64
	ringWidth   float64
	diskThresh  float64
	diskColor   string
	integrator  string
	workers     int
	supersample int

	pixelX  int
	pixelY  int
	svgPath string

	outDir    string
	themeName string
)

// main registers the commands and runs the root command, which renders
// a frame when no subcommand is given. It exits with status 1 on error.
func main() {
	rootCmd := &cobra.Command{
		Use:          "wormsim",
		Short:        "wormhole ray tracer",
		SilenceUsage: true,
		RunE:         runRender,
	}
	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		setupLogging()
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".wormsim", "run store directory")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	addRenderFlags(rootCmd)

	renderCmd := &cobra.Command{
		Use:   "render",
		Short: "render a frame to an image file",
		Args:  cobra.NoArgs,
		RunE:  runRender,
	}
	addRenderFlags(renderCmd)

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "render with a live progress view and terminal preview",
		Args:  cobra.NoArgs,
		RunE:  runLive,
	}
	addRenderFlags(liveCmd)
	liveCmd.Flags().StringVar(&themeName, "theme", viz.ThemeGargantua.Name, "colour theme (gargantua, nebula, minimal)")

	viewCmd := &cobra.Command{
		Use:   "view",
		Short: "open a window and re-render as camera parameters change",
		Args:  cobra.NoArgs,
		RunE:  runView,
	}
	addRenderFlags(viewCmd)

	traceCmd := &cobra.Command{
		Use:   "trace",
		Short: "trace the ray through one pixel and plot its path",
		Args:  cobra.NoArgs,
		RunE:  traceRay,
	}
	addRenderFlags(traceCmd)
	traceCmd.Flags().IntVar(&pixelX, "x", -1, "pixel column (default: centre)")
	traceCmd.Flags().IntVar(&pixelY, "y", -1, "pixel row (default: centre)")
	traceCmd.Flags().StringVar(&svgPath, "svg", "", "write the path as SVG (- for stdout)")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list scene presets",
		Args:  cobra.NoArgs,
		RunE:  listPresets,
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export run metadata and histogram as JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export the step histogram as CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot the step histogram of a run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	benchCmd := &cobra.Command{
		Use:   "bench",
		Short: "time renders across sizes and worker counts",
		Args:  cobra.NoArgs,
		RunE:  benchRender,
	}
	benchCmd.Flags().StringVar(&integrator, "integrator", config.DefaultIntegrator,
		"integrator ("+strings.Join(experiment.NewRegistry().ListIntegrators(), ", ")+")")

	batchCmd := &cobra.Command{
		Use:   "batch [scenario.yaml]",
		Short: "run a scenario of renders and parameter sweeps",
		Args:  cobra.ExactArgs(1),
		RunE:  runBatch,
	}
	batchCmd.Flags().StringVar(&outDir, "out-dir", ".", "directory for scenario frames")
	batchCmd.Flags().BoolVar(&noStore, "no-store", false, "do not record runs")

	rootCmd.AddCommand(renderCmd, liveCmd, viewCmd, traceCmd, presetsCmd, listCmd, exportCmd, exportCSVCmd, plotCmd, benchCmd, batchCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addRenderFlags(cmd *cobra.Command) {
	def := config.DefaultConfig()
	reg := experiment.NewRegistry()
	f := cmd.Flags()

	f.StringVar(&configFile, "config", "", "config file path (yaml)")
	f.StringVar(&preset, "preset", "", "scene preset (see wormsim presets)")
	f.StringVarP(&outPath, "out", "o", "", "output image ("+strings.Join(imageio.Formats(), ", ")+")")
	f.BoolVar(&noStore, "no-store", false, "do not record the run")

	f.IntVar(&width, "width", def.Width, "image width")
	f.IntVar(&height, "height", def.Height, "image height")
	f.Float64Var(&throat, "a", def.Camera.A, "throat radius")
	f.Float64Var(&smoothing, "n", def.Camera.N, "throat smoothing")
	f.Float64Var(&dt, "dt", def.Camera.Dt, "integration step")
	f.IntVar(&maxSteps, "max-steps", def.Camera.MaxSteps, "step budget per ray")
	f.Float64Var(&camL, "cam-l", def.Camera.CamL, "camera radial coordinate")
	f.Float64Var(&zoom, "zoom", def.Camera.Zoom, "focal length")
	f.StringVar(&texMode, "texture", string(def.Texture.Mode), "texture mode ("+strings.Join(reg.ListTextures(), ", ")+")")
	f.Float64Var(&ringRadius, "ring-radius", def.Texture.RingRadius, "ring radius")
	f.Float64Var(&ringWidth, "ring-width", def.Texture.RingWidth, "ring width")
	f.Float64Var(&diskThresh, "disk-threshold", def.Texture.DiskThreshold, "disk half-thickness")
	f.StringVar(&diskColor, "disk-color", def.Texture.DiskColor, "disk colour (any CSS colour)")
	f.StringVar(&integrator, "integrator", def.Integrator, "integrator ("+strings.Join(reg.ListIntegrators(), ", ")+")")
	f.IntVar(&workers, "workers", def.Workers, "render workers (0 = all CPUs)")
	f.IntVar(&supersample, "supersample", def.Supersample, "samples per pixel side")
}

// resolveConfig applies preset, then config file, then explicitly set flags.
func resolveConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Resolve(preset, configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	f := cmd.Flags()
	if f.Changed("width") {
		cfg.Width = width
	}
	if f.Changed("height") {
		cfg.Height = height
	}
	if f.Changed("a") {
		cfg.Camera.A = throat
	}
	if f.Changed("n") {
		cfg.Camera.N = smoothing
	}
	if f.Changed("dt") {
		cfg.Camera.Dt = dt
	}
	if f.Changed("max-steps") {
		cfg.Camera.MaxSteps = maxSteps
	}
	if f.Changed("cam-l") {
		cfg.Camera.CamL = camL
	}
	if f.Changed("zoom") {
		cfg.Camera.Zoom = zoom
	}
	if f.Changed("texture") {
		cfg.Texture.Mode = texture.Mode(texMode)
	}
	if f.Changed("ring-radius") {
		cfg.Texture.RingRadius = ringRadius
	}
	if f.Changed("ring-width") {
		cfg.Texture.RingWidth = ringWidth
	}
	if f.Changed("disk-threshold") {
		cfg.Texture.DiskThreshold = diskThresh
	}
	if f.Changed("disk-color") {
		cfg.Texture.DiskColor = diskColor
	}
	if f.Changed("integrator") {
		cfg.Integrator = integrator
	}
	if f.Changed("workers") {
		cfg.Workers = workers
	}
	if f.Changed("supersample") {
		cfg.Supersample = supersample
	}
	if outPath != "" {
		cfg.Output = outPath
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func runName() string {
	if preset != "" {
		return preset
	}
	return "render"
}

func setupLogging() {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	render.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}
