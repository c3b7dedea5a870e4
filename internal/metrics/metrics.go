package metrics

// Sample is what a metric sees of one rendered pixel.
type Sample struct {
	Steps      int
	MaxSteps   int
	Escaped    bool
	Brightness float64
}

type Metric interface {
	Name() string
	Observe(s Sample)
	Value() float64
	Reset()
}

// Defaults returns the metrics recorded for every stored run.
func Defaults() []Metric {
	return []Metric{
		NewMeanSteps(),
		NewPeakSteps(),
		NewMeanBrightness(),
		NewEscapeRatio(),
	}
}

type MeanSteps struct {
	samples int
	total   int
}

func NewMeanSteps() *MeanSteps { return &MeanSteps{} }

func (m *MeanSteps) Name() string { return "mean_steps" }

func (m *MeanSteps) Observe(s Sample) {
	m.total += s.Steps
	m.samples++
}

func (m *MeanSteps) Value() float64 {
	if m.samples == 0 {
		return 0
	}
	return float64(m.total) / float64(m.samples)
}

func (m *MeanSteps) Reset() {
	m.total = 0
	m.samples = 0
}

type PeakSteps struct {
	peak int
}

func NewPeakSteps() *PeakSteps { return &PeakSteps{} }

func (m *PeakSteps) Name() string { return "max_steps" }

func (m *PeakSteps) Observe(s Sample) { m.peak = max(m.peak, s.Steps) }

func (m *PeakSteps) Value() float64 { return float64(m.peak) }

func (m *PeakSteps) Reset() { m.peak = 0 }

type MeanBrightness struct {
	samples int
	total   float64
}

func NewMeanBrightness() *MeanBrightness { return &MeanBrightness{} }

func (m *MeanBrightness) Name() string { return "mean_brightness" }

func (m *MeanBrightness) Observe(s Sample) {
	m.total += s.Brightness
	m.samples++
}

func (m *MeanBrightness) Value() float64 {
	if m.samples == 0 {
		return 0
	}
	return m.total / float64(m.samples)
}

func (m *MeanBrightness) Reset() {
	m.total = 0
	m.samples = 0
}

// EscapeRatio is the fraction of rays that left the radial bound.
type EscapeRatio struct {
	samples int
	escaped int
}

func NewEscapeRatio() *EscapeRatio { return &EscapeRatio{} }

func (m *EscapeRatio) Name() string { return "escape_ratio" }

func (m *EscapeRatio) Observe(s Sample) {
	if s.Escaped {
		m.escaped++
	}
	m.samples++
}

func (m *EscapeRatio) Value() float64 {
	if m.samples == 0 {
		return 0
	}
	return float64(m.escaped) / float64(m.samples)
}

func (m *EscapeRatio) Reset() {
	m.escaped = 0
	m.samples = 0
}
