package glcm

import "fmt"

// Direction is the angular orientation along which neighbour pixels are
// sampled. Only the four grid directions are supported.
type Direction int

const (
	Deg0 Direction = iota
	Deg90
	Deg180
	Deg270
)

var directionDegrees = [...]int{0, 90, 180, 270}

// Directions lists every supported direction in ascending angle order.
func Directions() []Direction {
	return []Direction{Deg0, Deg90, Deg180, Deg270}
}

// ParseDirection maps an angle in degrees to a Direction.
func ParseDirection(degrees int) (Direction, error) {
	switch degrees {
	case 0:
		return Deg0, nil
	case 90:
		return Deg90, nil
	case 180:
		return Deg180, nil
	case 270:
		return Deg270, nil
	}
	return 0, fmt.Errorf("%w: %d degrees (must be 0, 90, 180 or 270)", ErrInvalidDirection, degrees)
}

// Valid reports whether d is one of the four supported directions.
func (d Direction) Valid() bool {
	return d >= Deg0 && d <= Deg270
}

// Degrees returns the angle of d, or -1 for an invalid direction.
func (d Direction) Degrees() int {
	if !d.Valid() {
		return -1
	}
	return directionDegrees[d]
}

func (d Direction) String() string {
	if !d.Valid() {
		return fmt.Sprintf("Direction(%d)", int(d))
	}
	return fmt.Sprintf("%d degrees", directionDegrees[d])
}

// Offset returns the displacement from a reference pixel to its neighbour
// step pixels away. Image rows grow downwards, so 90 degrees points up.
func (d Direction) Offset(step int) (dx, dy int) {
	switch d {
	case Deg0:
		return step, 0
	case Deg90:
		return 0, -step
	case Deg180:
		return -step, 0
	case Deg270:
		return 0, step
	}
	return 0, 0
}

// scanWindow returns the half-open ranges of reference pixel coordinates
// whose neighbour lies inside a width x height image. The ranges are empty
// when step reaches the extent along the direction.
func (d Direction) scanWindow(width, height, step int) (x0, x1, y0, y1 int) {
	switch d {
	case Deg0:
		return 0, width - step, 0, height
	case Deg90:
		return 0, width, step, height
	case Deg180:
		return step, width, 0, height
	case Deg270:
		return 0, width, 0, height - step
	}
	return 0, 0, 0, 0
}

// Combination is one (direction, step) entry of a measurement schedule.
type Combination struct {
	Direction Direction
	Step      int
}

func (c Combination) String() string {
	return fmt.Sprintf("direction %d step %d", c.Direction.Degrees(), c.Step)
}

// DefaultCombinations returns the schedule used by the cell texture tool:
// every direction at steps 1 and 3, direction-major.
func DefaultCombinations() []Combination {
	combos := make([]Combination, 0, 8)
	for _, d := range Directions() {
		for _, step := range []int{1, 3} {
			combos = append(combos, Combination{Direction: d, Step: step})
		}
	}
	return combos
}
