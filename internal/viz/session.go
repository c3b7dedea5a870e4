package viz

import (
	"fmt"

	"github.com/san-kum/wormsim/internal/automation"
	"github.com/san-kum/wormsim/internal/config"
	"github.com/san-kum/wormsim/internal/experiment"
	"github.com/san-kum/wormsim/internal/texture"
)

// Knob is a render parameter an interactive viewer can step.
type Knob struct {
	Name string
	Step float64
}

var ViewerKnobs = []Knob{
	{Name: "zoom", Step: 0.1},
	{Name: "cam_l", Step: 0.1},
	{Name: "a", Step: 0.05},
	{Name: "n", Step: 0.1},
	{Name: "max_steps", Step: 250},
}

// coarseFactor multiplies a knob step when the coarse modifier is held.
const coarseFactor = 10

// Session is the configuration an interactive viewer edits. Every
// accepted change bumps Version so the viewer knows to re-render.
// Not safe for concurrent use; Experiment hands render goroutines a copy.
type Session struct {
	cfg     *config.Config
	reg     *experiment.Registry
	knobs   []Knob
	sel     int
	version int
	workers int
}

func NewSession(cfg *config.Config, reg *experiment.Registry) *Session {
	return &Session{cfg: cfg.Clone(), reg: reg, knobs: ViewerKnobs}
}

// Config returns a copy of the current configuration.
func (s *Session) Config() *config.Config { return s.cfg.Clone() }

func (s *Session) Selected() int { return s.sel }

func (s *Session) Version() int { return s.version }

// Workers is the resolved worker count of the last experiment built.
func (s *Session) Workers() int { return s.workers }

func (s *Session) Next() { s.sel = (s.sel + 1) % len(s.knobs) }

func (s *Session) Prev() { s.sel = (s.sel - 1 + len(s.knobs)) % len(s.knobs) }

// Value returns the current value of the named knob.
func (s *Session) Value(name string) float64 {
	v, _ := automation.Param(s.cfg, name)
	return v
}

// Adjust moves the selected knob by dir steps. A change that leaves the
// configuration invalid is rejected and the session is unchanged.
func (s *Session) Adjust(dir int, coarse bool) error {
	k := s.knobs[s.sel]
	step := k.Step * float64(dir)
	if coarse {
		step *= coarseFactor
	}

	next := s.cfg.Clone()
	if err := automation.SetParam(next, k.Name, s.Value(k.Name)+step); err != nil {
		return err
	}
	if err := next.Validate(); err != nil {
		return err
	}
	s.cfg = next
	s.version++
	return nil
}

// CycleTexture switches to the next registered texture mode.
func (s *Session) CycleTexture() {
	modes := s.reg.ListTextures()
	if len(modes) == 0 {
		return
	}
	next := modes[0]
	for i, m := range modes {
		if m == string(s.cfg.Texture.Mode) {
			next = modes[(i+1)%len(modes)]
		}
	}
	s.cfg.Texture.Mode = texture.Mode(next)
	s.version++
}

// Experiment builds a ready-to-run experiment from a copy of the current
// configuration.
func (s *Session) Experiment() (*experiment.Experiment, error) {
	exp := experiment.New(s.cfg)
	if err := exp.Setup(s.reg, nil); err != nil {
		return nil, err
	}
	s.workers = exp.Renderer().Options().Workers
	return exp, nil
}

// Lines formats one line per knob, the selected one marked, followed by
// the texture mode.
func (s *Session) Lines() []string {
	lines := make([]string, 0, len(s.knobs)+1)
	for i, k := range s.knobs {
		marker := " "
		if i == s.sel {
			marker = ">"
		}
		lines = append(lines, fmt.Sprintf("%s %-10s %8.4g", marker, k.Name, s.Value(k.Name)))
	}
	return append(lines, fmt.Sprintf("  %-10s %8s", "texture", s.cfg.Texture.Mode))
}

// FitScale returns the largest scale at which a w×h image fits inside
// maxW×maxH.
func FitScale(w, h, maxW, maxH int) float64 {
	if w <= 0 || h <= 0 {
		return 1
	}
	return min(float64(maxW)/float64(w), float64(maxH)/float64(h))
}
