package sampler

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"strings"

	"texturemeasures/internal/models"
)

// ErrWindowOutOfBounds is returned when a sample's window does not fit the
// image under the active boundary policy.
var ErrWindowOutOfBounds = errors.New("window out of bounds")

// PixelSource is an addressable 8-bit intensity image. *image.Gray
// satisfies it.
type PixelSource interface {
	Bounds() image.Rectangle
	GrayAt(x, y int) color.Gray
}

// BoundaryPolicy decides how windows crossing the image edge are handled.
type BoundaryPolicy int

const (
	// BoundaryReject fails samples whose window leaves the image.
	BoundaryReject BoundaryPolicy = iota
	// BoundaryClip measures the part of the window inside the image.
	BoundaryClip
)

// ParseBoundaryPolicy accepts "reject" or "clip". Empty means "reject".
func ParseBoundaryPolicy(name string) (BoundaryPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "reject":
		return BoundaryReject, nil
	case "clip":
		return BoundaryClip, nil
	}
	return 0, fmt.Errorf("unknown boundary policy %q (must be reject or clip)", name)
}

func (p BoundaryPolicy) String() string {
	switch p {
	case BoundaryReject:
		return "reject"
	case BoundaryClip:
		return "clip"
	}
	return fmt.Sprintf("BoundaryPolicy(%d)", int(p))
}

// WindowFor returns the (2r+1)x(2r+1) window centred on s, in coordinates
// relative to the top-left corner of bounds.
func WindowFor(bounds image.Rectangle, s models.Sample, radius int, policy BoundaryPolicy) (models.Window, error) {
	size := image.Rect(0, 0, bounds.Dx(), bounds.Dy())
	rect := image.Rect(s.X-radius, s.Y-radius, s.X+radius+1, s.Y+radius+1)

	switch policy {
	case BoundaryReject:
		if !rect.In(size) {
			return models.Window{}, fmt.Errorf("%w: window %v exceeds %dx%d image",
				ErrWindowOutOfBounds, rect, size.Dx(), size.Dy())
		}
	case BoundaryClip:
		rect = rect.Intersect(size)
		if rect.Empty() {
			return models.Window{}, fmt.Errorf("%w: sample (%d,%d) lies outside %dx%d image",
				ErrWindowOutOfBounds, s.X, s.Y, size.Dx(), size.Dy())
		}
	default:
		return models.Window{}, fmt.Errorf("%w: unknown boundary policy %d", ErrInvalidParams, int(policy))
	}

	return models.Window{X: rect.Min.X, Y: rect.Min.Y, Width: rect.Dx(), Height: rect.Dy()}, nil
}

// ExtractWindow copies the pixels of w out of src into a new row-major buffer.
func ExtractWindow(src PixelSource, w models.Window) []byte {
	if w.Empty() {
		return nil
	}
	pix := make([]byte, w.Width*w.Height)
	origin := src.Bounds().Min

	if gray, ok := src.(*image.Gray); ok {
		for y := 0; y < w.Height; y++ {
			off := gray.PixOffset(origin.X+w.X, origin.Y+w.Y+y)
			copy(pix[y*w.Width:(y+1)*w.Width], gray.Pix[off:off+w.Width])
		}
		return pix
	}

	for y := 0; y < w.Height; y++ {
		for x := 0; x < w.Width; x++ {
			pix[y*w.Width+x] = src.GrayAt(origin.X+w.X+x, origin.Y+w.Y+y).Y
		}
	}
	return pix
}
