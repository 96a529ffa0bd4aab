// Package boxfilter provides the running-sum window used to average ground
// colours over a square neighbourhood in two 1D passes.
package boxfilter

// Sample carries the accumulated channels of one or more underlay cells.
type Sample struct {
	Hue        int
	Saturation int
	Lightness  int
	Multiplier int
	Count      int
}

func (s *Sample) Add(o Sample) {
	s.Hue += o.Hue
	s.Saturation += o.Saturation
	s.Lightness += o.Lightness
	s.Multiplier += o.Multiplier
	s.Count += o.Count
}

func (s *Sample) Sub(o Sample) {
	s.Hue -= o.Hue
	s.Saturation -= o.Saturation
	s.Lightness -= o.Lightness
	s.Multiplier -= o.Multiplier
	s.Count -= o.Count
}

func (s Sample) Empty() bool { return s.Count == 0 }

// Span is a half-open index range [Lo, Hi).
type Span struct {
	Lo, Hi int
}

func (s Span) Has(i int) bool { return i >= s.Lo && i < s.Hi }
func (s Span) Len() int       { return max(0, s.Hi-s.Lo) }

// Window is a running sum of samples.
type Window struct {
	sum Sample
}

func (w *Window) Add(s Sample) { w.sum.Add(s) }
func (w *Window) Sub(s Sample) { w.sum.Sub(s) }
func (w *Window) Sum() Sample  { return w.sum }

// Sweep walks i over steps. For each i it calls enter(i+radius) and
// leave(i-radius) when those indices lie inside valid, then visit(i).
// Any callback may be nil.
func Sweep(steps Span, radius int, valid Span, enter, leave, visit func(int)) {
	for i := steps.Lo; i < steps.Hi; i++ {
		if in := i + radius; enter != nil && valid.Has(in) {
			enter(in)
		}
		if out := i - radius; leave != nil && valid.Has(out) {
			leave(out)
		}
		if visit != nil {
			visit(i)
		}
	}
}

// Columns is a set of windows indexed over a span, one per row of a sweep.
type Columns struct {
	span Span
	win  []Window
}

func NewColumns(span Span) *Columns {
	return &Columns{span: span, win: make([]Window, span.Len())}
}

func (c *Columns) Span() Span { return c.span }

func (c *Columns) At(i int) *Window { return &c.win[i-c.span.Lo] }
