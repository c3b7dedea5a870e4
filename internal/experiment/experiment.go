package experiment

import (
	"context"
	"fmt"

	"github.com/san-kum/wormsim/internal/config"
	"github.com/san-kum/wormsim/internal/render"
)

// Experiment is one configured render.
type Experiment struct {
	cfg      *config.Config
	renderer *render.Renderer
}

func New(cfg *config.Config) *Experiment {
	return &Experiment{cfg: cfg.Clone()}
}

func (e *Experiment) Config() *config.Config { return e.cfg }

// Setup validates the configuration and resolves its named parts.
func (e *Experiment) Setup(reg *Registry, progress func(done, total int)) error {
	if err := e.cfg.Validate(); err != nil {
		return err
	}
	newIntegrator, err := reg.IntegratorFactory(e.cfg.Integrator)
	if err != nil {
		return err
	}
	tex, err := reg.GetTexture(e.cfg.Texture)
	if err != nil {
		return err
	}

	e.renderer, err = render.New(e.cfg.Camera, tex, render.Options{
		Width:         e.cfg.Width,
		Height:        e.cfg.Height,
		Workers:       e.cfg.Workers,
		Supersample:   e.cfg.Supersample,
		NewIntegrator: newIntegrator,
		Progress:      progress,
	})
	return err
}

func (e *Experiment) Run(ctx context.Context) (*render.Frame, error) {
	if e.renderer == nil {
		return nil, fmt.Errorf("experiment not setup")
	}
	return e.renderer.Render(ctx)
}

// Renderer returns the underlying renderer, or nil before Setup.
func (e *Experiment) Renderer() *render.Renderer {
	return e.renderer
}
