package sampler

import (
	"errors"
	"image"
	"image/color"
	"testing"

	"texturemeasures/internal/models"
)

// grayRamp returns an image whose pixel (x, y) has value 10*y + x
func grayRamp(rect image.Rectangle) *image.Gray {
	img := image.NewGray(rect)
	for y := rect.Min.Y; y < rect.Max.Y; y++ {
		for x := rect.Min.X; x < rect.Max.X; x++ {
			img.SetGray(x, y, color.Gray{Y: uint8(10*(y-rect.Min.Y) + (x - rect.Min.X))})
		}
	}
	return img
}

// wrapped hides the concrete type so that ExtractWindow takes the generic path
type wrapped struct{ *image.Gray }

func (w wrapped) Bounds() image.Rectangle    { return w.Gray.Bounds() }
func (w wrapped) GrayAt(x, y int) color.Gray { return w.Gray.GrayAt(x, y) }

func TestWindowForReject(t *testing.T) {
	bounds := image.Rect(0, 0, 10, 8)

	testCases := []struct {
		sample models.Sample
		ok     bool
	}{
		{models.Sample{Label: "Fg", X: 5, Y: 4}, true},
		{models.Sample{Label: "Fg", X: 2, Y: 2}, true},
		{models.Sample{Label: "Fg", X: 7, Y: 5}, true},
		{models.Sample{Label: "Bg", X: 1, Y: 4}, false},
		{models.Sample{Label: "Bg", X: 8, Y: 4}, false},
		{models.Sample{Label: "Bg", X: 5, Y: 6}, false},
	}

	for _, tc := range testCases {
		w, err := WindowFor(bounds, tc.sample, 2, BoundaryReject)
		if tc.ok {
			if err != nil {
				t.Errorf("%s: unexpected error: %v", tc.sample, err)
				continue
			}
			expected := models.Window{X: tc.sample.X - 2, Y: tc.sample.Y - 2, Width: 5, Height: 5}
			if w != expected {
				t.Errorf("%s: expected %+v, got %+v", tc.sample, expected, w)
			}
		} else if !errors.Is(err, ErrWindowOutOfBounds) {
			t.Errorf("%s: expected ErrWindowOutOfBounds, got %v", tc.sample, err)
		}
	}
}

func TestWindowForClip(t *testing.T) {
	bounds := image.Rect(0, 0, 10, 8)

	w, err := WindowFor(bounds, models.Sample{Label: "Bg", X: 1, Y: 7}, 2, BoundaryClip)
	if err != nil {
		t.Fatalf("WindowFor failed: %v", err)
	}
	expected := models.Window{X: 0, Y: 5, Width: 4, Height: 3}
	if w != expected {
		t.Errorf("expected %+v, got %+v", expected, w)
	}

	w, err = WindowFor(bounds, models.Sample{Label: "Bg", X: -1, Y: 3}, 2, BoundaryClip)
	if err != nil {
		t.Fatalf("WindowFor failed for a sample left of the image: %v", err)
	}
	expected = models.Window{X: 0, Y: 1, Width: 2, Height: 5}
	if w != expected {
		t.Errorf("expected %+v, got %+v", expected, w)
	}

	_, err = WindowFor(bounds, models.Sample{Label: "Bg", X: -1, Y: 3}, 2, BoundaryReject)
	if !errors.Is(err, ErrWindowOutOfBounds) {
		t.Errorf("expected ErrWindowOutOfBounds under reject, got %v", err)
	}

	_, err = WindowFor(bounds, models.Sample{Label: "Bg", X: 20, Y: 20}, 2, BoundaryClip)
	if !errors.Is(err, ErrWindowOutOfBounds) {
		t.Errorf("expected ErrWindowOutOfBounds for a sample outside the image, got %v", err)
	}

	_, err = WindowFor(bounds, models.Sample{Label: "Bg", X: 5, Y: 4}, 2, BoundaryPolicy(7))
	if !errors.Is(err, ErrInvalidParams) {
		t.Errorf("expected ErrInvalidParams for an unknown policy, got %v", err)
	}
}

func TestExtractWindow(t *testing.T) {
	for _, rect := range []image.Rectangle{image.Rect(0, 0, 10, 8), image.Rect(3, -2, 13, 6)} {
		img := grayRamp(rect)
		w := models.Window{X: 2, Y: 3, Width: 3, Height: 2}
		expected := []byte{32, 33, 34, 42, 43, 44}

		for name, src := range map[string]PixelSource{"gray": img, "generic": wrapped{img}} {
			pix := ExtractWindow(src, w)
			if len(pix) != len(expected) {
				t.Fatalf("%s %v: expected %d pixels, got %d", name, rect, len(expected), len(pix))
			}
			for i := range expected {
				if pix[i] != expected[i] {
					t.Errorf("%s %v: pixel %d expected %d, got %d", name, rect, i, expected[i], pix[i])
				}
			}
		}
	}

	if pix := ExtractWindow(grayRamp(image.Rect(0, 0, 4, 4)), models.Window{}); pix != nil {
		t.Errorf("expected nil for an empty window, got %v", pix)
	}
}

func TestParseBoundaryPolicy(t *testing.T) {
	for _, p := range []BoundaryPolicy{BoundaryReject, BoundaryClip} {
		parsed, err := ParseBoundaryPolicy(p.String())
		if err != nil || parsed != p {
			t.Errorf("ParseBoundaryPolicy(%q): expected %v, got %v (err %v)", p.String(), p, parsed, err)
		}
	}
	if p, err := ParseBoundaryPolicy(""); err != nil || p != BoundaryReject {
		t.Errorf("expected empty policy to mean reject, got %v (err %v)", p, err)
	}
	if _, err := ParseBoundaryPolicy("wrap"); err == nil {
		t.Errorf("expected an error for an unknown policy")
	}
}
