package visualization

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"texturemeasures/internal/models"
	"texturemeasures/pkg/glcm"
)

// heatGain stretches small probabilities before the log so that sparse
// matrices remain visible.
const heatGain = 1e4

// labelColors assigns fixed colours to the default labels; other labels
// cycle through extraColors.
var labelColors = map[string]color.RGBA{
	models.LabelBackground: {R: 0, G: 160, B: 255, A: 255},
	models.LabelForeground: {R: 255, G: 200, B: 0, A: 255},
}

var extraColors = []color.RGBA{
	{R: 255, G: 64, B: 64, A: 255},
	{R: 64, G: 255, B: 64, A: 255},
	{R: 255, G: 64, B: 255, A: 255},
	{R: 64, G: 255, B: 255, A: 255},
}

// MatrixImage renders a co-occurrence matrix as a 256x256 grayscale heat
// map. Row a of the matrix is image row a, so the diagonal runs from the
// top-left corner. Intensities are log scaled relative to the largest cell.
func MatrixImage(m *glcm.Matrix) *image.Gray16 {
	n := m.Levels()
	img := image.NewGray16(image.Rect(0, 0, n, n))

	peak := 0.0
	for a := 0; a < n; a++ {
		for _, p := range m.Row(a) {
			peak = math.Max(peak, p)
		}
	}
	if peak == 0 {
		return img
	}

	norm := math.Log1p(peak * heatGain)
	for a := 0; a < n; a++ {
		for b, p := range m.Row(a) {
			if p <= 0 {
				continue
			}
			value := math.Log1p(p*heatGain) / norm
			img.SetGray16(b, a, color.Gray16{Y: uint16(math.Round(math.Min(1, value) * 65535))})
		}
	}

	return img
}

// DrawMarkers returns a colour copy of src with the analysis window of every
// sample outlined and its label written above the window.
func DrawMarkers(src image.Image, samples []models.Sample, radius int) *image.RGBA {
	bounds := src.Bounds()
	out := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(out, out.Bounds(), src, bounds.Min, draw.Src)

	extra := make(map[string]color.RGBA)
	for _, s := range samples {
		c, ok := labelColors[s.Label]
		if !ok {
			if c, ok = extra[s.Label]; !ok {
				c = extraColors[len(extra)%len(extraColors)]
				extra[s.Label] = c
			}
		}

		rect := image.Rect(s.X-radius, s.Y-radius, s.X+radius+1, s.Y+radius+1)
		outline(out, rect, c)

		d := &font.Drawer{
			Dst:  out,
			Src:  image.NewUniform(c),
			Face: basicfont.Face7x13,
			Dot:  fixed.P(rect.Min.X, rect.Min.Y-2),
		}
		d.DrawString(s.Label)
	}

	return out
}

// outline draws the one pixel border of r, clipped to img.
func outline(img *image.RGBA, r image.Rectangle, c color.RGBA) {
	b := img.Bounds()
	for x := r.Min.X; x < r.Max.X; x++ {
		for _, y := range []int{r.Min.Y, r.Max.Y - 1} {
			if (image.Point{X: x, Y: y}).In(b) {
				img.SetRGBA(x, y, c)
			}
		}
	}
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for _, x := range []int{r.Min.X, r.Max.X - 1} {
			if (image.Point{X: x, Y: y}).In(b) {
				img.SetRGBA(x, y, c)
			}
		}
	}
}

// SaveImage writes img to path, creating parent directories. The format is
// chosen from the extension (png, jpg, gif, tif, bmp).
func SaveImage(img image.Image, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create image directory: %w", err)
	}
	if err := imaging.Save(img, path, imaging.JPEGQuality(90)); err != nil {
		return fmt.Errorf("failed to save image %s: %w", path, err)
	}
	return nil
}
