// Package gui shows rendered frames in a raylib window and re-renders
// them as the camera parameters are stepped from the keyboard.
package gui

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/san-kum/wormsim/internal/imageio"
	"github.com/san-kum/wormsim/internal/metrics"
	"github.com/san-kum/wormsim/internal/render"
	"github.com/san-kum/wormsim/internal/viz"
)

var (
	ColBg      = rl.NewColor(10, 10, 10, 255)
	ColAccent  = rl.NewColor(255, 200, 100, 255)
	ColSelect  = rl.NewColor(255, 255, 255, 255)
	ColText    = rl.NewColor(140, 140, 140, 255)
	ColTextDim = rl.NewColor(60, 60, 60, 255)
	ColError   = rl.NewColor(255, 68, 68, 255)
)

const (
	windowWidth  = 1280
	windowHeight = 720
	panelWidth   = 300
)

type renderResult struct {
	frame *render.Frame
	err   error
}

// App owns the window state. All fields are touched from the draw loop
// only; renders run in a goroutine and report back over results.
type App struct {
	Session   *viz.Session
	Tex       rl.Texture2D
	HasTex    bool
	Frame     *render.Frame
	Values    map[string]float64
	Rendering bool
	Err       error
	Notice    string

	shown   int
	started time.Time
	results chan renderResult
	cancel  context.CancelFunc
}

func initWindow() {
	rl.InitWindow(windowWidth, windowHeight, "wormsim")
	rl.SetTargetFPS(60)
	rl.SetExitKey(0)
}

// Run opens the viewer on s and blocks until the window is closed.
func Run(s *viz.Session) {
	initWindow()
	defer rl.CloseWindow()

	app := NewApp(s)
	defer app.unload()
	app.RunLoop()
}

func NewApp(s *viz.Session) *App {
	return &App{
		Session: s,
		shown:   -1,
		results: make(chan renderResult, 1),
	}
}

func (a *App) RunLoop() {
	for !rl.WindowShouldClose() {
		if a.Update() {
			break
		}
		a.Draw()
	}
	if a.cancel != nil {
		a.cancel()
	}
}

// Update handles input and collects finished renders. It reports true
// when the user asked to quit.
func (a *App) Update() bool {
	if rl.IsKeyPressed(rl.KeyQ) || rl.IsKeyPressed(rl.KeyEscape) {
		return true
	}

	s := a.Session
	if rl.IsKeyPressed(rl.KeyDown) || rl.IsKeyPressed(rl.KeyJ) {
		s.Next()
	}
	if rl.IsKeyPressed(rl.KeyUp) || rl.IsKeyPressed(rl.KeyK) {
		s.Prev()
	}
	coarse := rl.IsKeyDown(rl.KeyLeftShift) || rl.IsKeyDown(rl.KeyRightShift)
	if rl.IsKeyPressed(rl.KeyRight) || rl.IsKeyPressed(rl.KeyL) {
		a.Err = s.Adjust(1, coarse)
	}
	if rl.IsKeyPressed(rl.KeyLeft) || rl.IsKeyPressed(rl.KeyH) {
		a.Err = s.Adjust(-1, coarse)
	}
	if rl.IsKeyPressed(rl.KeyT) {
		s.CycleTexture()
	}
	if rl.IsKeyPressed(rl.KeyS) {
		a.save()
	}

	select {
	case res := <-a.results:
		a.Rendering = false
		switch {
		case res.err == nil:
			a.upload(res.frame)
		case !errors.Is(res.err, context.Canceled):
			a.Err = res.err
		}
	default:
	}

	if !a.Rendering && a.shown != s.Version() {
		a.startRender()
	}
	return false
}

func (a *App) startRender() {
	a.shown = a.Session.Version()
	exp, err := a.Session.Experiment()
	if err != nil {
		a.Err = err
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	a.cancel = cancel
	a.Rendering = true
	a.started = time.Now()
	go func() {
		frame, err := exp.Run(ctx)
		a.results <- renderResult{frame: frame, err: err}
	}()
}

// upload replaces the window texture with the pixels of f.
func (a *App) upload(f *render.Frame) {
	img := rl.NewImageFromImage(f.Image)
	if a.HasTex {
		rl.UnloadTexture(a.Tex)
	}
	a.Tex = rl.LoadTextureFromImage(img)
	rl.UnloadImage(img)
	rl.SetTextureFilter(a.Tex, rl.FilterBilinear)

	a.HasTex = true
	a.Frame = f
	a.Values = f.Evaluate(metrics.Defaults()...)
}

func (a *App) unload() {
	if a.HasTex {
		rl.UnloadTexture(a.Tex)
		a.HasTex = false
	}
}

func (a *App) save() {
	if a.Frame == nil {
		return
	}
	out := a.Session.Config().Output
	if err := imageio.Save(out, a.Frame.Image); err != nil {
		a.Err = err
		return
	}
	a.Notice = "saved " + out
}

func (a *App) Draw() {
	rl.BeginDrawing()
	rl.ClearBackground(ColBg)

	if a.HasTex {
		area := windowWidth - panelWidth
		scale := float32(viz.FitScale(int(a.Tex.Width), int(a.Tex.Height), area, windowHeight))
		w, h := float32(a.Tex.Width)*scale, float32(a.Tex.Height)*scale
		pos := rl.NewVector2((float32(area)-w)/2, (windowHeight-h)/2)
		rl.DrawTextureEx(a.Tex, pos, 0, scale, rl.White)
	}
	a.DrawHUD()

	rl.EndDrawing()
}

func (a *App) DrawHUD() {
	x := int32(windowWidth - panelWidth + 20)
	rl.DrawText("wormsim", x, 30, 24, ColSelect)

	y := int32(80)
	for i, line := range a.Session.Lines() {
		col := ColText
		if i == a.Session.Selected() {
			col = ColSelect
		}
		rl.DrawText(line, x, y, 18, col)
		y += 26
	}

	y += 20
	cfg := a.Session.Config()
	rl.DrawText(fmt.Sprintf("%dx%d  %s  %d workers", cfg.Width, cfg.Height, cfg.Integrator, a.Session.Workers()), x, y, 14, ColTextDim)
	y += 30

	switch {
	case a.Rendering:
		rl.DrawText(fmt.Sprintf("RENDERING %s", time.Since(a.started).Round(100*time.Millisecond)), x, y, 16, ColAccent)
	case a.Frame != nil:
		rl.DrawText(fmt.Sprintf("DONE %s", a.Frame.Elapsed.Round(time.Millisecond)), x, y, 16, ColAccent)
	}
	y += 30

	names := make([]string, 0, len(a.Values))
	for name := range a.Values {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		rl.DrawText(fmt.Sprintf("%-16s %.4f", name, a.Values[name]), x, y, 14, ColText)
		y += 20
	}

	if a.Err != nil {
		rl.DrawText(a.Err.Error(), 20, windowHeight-60, 14, ColError)
	} else if a.Notice != "" {
		rl.DrawText(a.Notice, 20, windowHeight-60, 14, ColText)
	}
	rl.DrawText("ARROWS: ADJUST  SHIFT: x10  T: TEXTURE  S: SAVE  Q: QUIT", 20, windowHeight-30, 14, ColTextDim)
	rl.DrawText(fmt.Sprintf("%d FPS", rl.GetFPS()), windowWidth-80, windowHeight-30, 14, ColTextDim)
}
