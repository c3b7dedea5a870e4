package experiment

import (
	"fmt"
	"sort"

	"github.com/san-kum/wormsim/internal/integrators"
	"github.com/san-kum/wormsim/internal/ode"
	"github.com/san-kum/wormsim/internal/texture"
)

type Registry struct {
	integrators map[string]func() ode.Integrator
	textures    map[string]texture.Mode
}

func NewRegistry() *Registry {
	r := &Registry{
		integrators: make(map[string]func() ode.Integrator),
		textures:    make(map[string]texture.Mode),
	}

	r.RegisterIntegrator("euler", func() ode.Integrator { return integrators.NewEuler() })
	r.RegisterIntegrator("rk4", func() ode.Integrator { return integrators.NewRK4() })

	r.textures[string(texture.ModeDisk)] = texture.ModeDisk
	r.textures[string(texture.ModeRing)] = texture.ModeRing

	return r
}

// RegisterIntegrator adds or replaces an integrator factory.
func (r *Registry) RegisterIntegrator(name string, fn func() ode.Integrator) {
	r.integrators[name] = fn
}

func (r *Registry) GetIntegrator(name string) (ode.Integrator, error) {
	fn, err := r.IntegratorFactory(name)
	if err != nil {
		return nil, err
	}
	return fn(), nil
}

// IntegratorFactory returns the constructor for name. Renderers call it
// once per worker.
func (r *Registry) IntegratorFactory(name string) (func() ode.Integrator, error) {
	fn, ok := r.integrators[name]
	if !ok {
		return nil, fmt.Errorf("unknown integrator: %s", name)
	}
	return fn, nil
}

func (r *Registry) GetTexture(p texture.Params) (*texture.Texture, error) {
	if p.Mode != "" {
		if _, ok := r.textures[string(p.Mode)]; !ok {
			return nil, fmt.Errorf("unknown texture: %s", p.Mode)
		}
	}
	return texture.New(p)
}

func (r *Registry) ListIntegrators() []string {
	return sortedKeys(r.integrators)
}

func (r *Registry) ListTextures() []string {
	return sortedKeys(r.textures)
}

func sortedKeys[V any](m map[string]V) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
