package models

import "fmt"

// Default sample labels used by the cell texture workflow.
const (
	LabelBackground = "Bg"
	LabelForeground = "Fg"
)

// Sample is a labelled point whose neighbourhood is measured.
type Sample struct {
	// Label is the class of the sample, e.g. Bg or Fg.
	Label string `yaml:"label"`

	// X and Y are pixel coordinates, (0,0) at the top-left corner.
	X int `yaml:"x"`
	Y int `yaml:"y"`
}

func (s Sample) String() string {
	return fmt.Sprintf("%s@(%d,%d)", s.Label, s.X, s.Y)
}

// Record is the measurement of one sample: the concatenated feature
// vectors of every (direction, step) combination, in schedule order.
type Record struct {
	Sample Sample

	// Values has one entry per report column after the label.
	Values []float64
}

// Window is the rectangle of image pixels analysed for a sample.
type Window struct {
	// X, Y are the top-left corner in image coordinates.
	X, Y int

	// Width, Height are the dimensions of the window in pixels.
	Width, Height int
}

// Empty reports whether the window covers no pixels.
func (w Window) Empty() bool {
	return w.Width <= 0 || w.Height <= 0
}
