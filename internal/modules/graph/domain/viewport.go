package domain

import "time"

type ViewportState int

const (
	ViewportEmpty ViewportState = iota
	ViewportLive
)

func (s ViewportState) String() string {
	if s == ViewportLive {
		return "live"
	}
	return "empty"
}

// VisualOptions is the fixed configuration handed to a render target when an
// instance is created. It does not change for the lifetime of the instance.
type VisualOptions struct {
	Shape        string
	Size         int
	FontSize     int
	BorderWidth  int
	EdgeWidth    int
	ArrowScale   float64
	Physics      Physics
	Hover        bool
	TooltipDelay time.Duration
}

type Physics struct {
	Enabled               bool
	GravitationalConstant float64
	SpringConstant        float64
	SpringLength          float64
	Iterations            int
}
