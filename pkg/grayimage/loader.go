// Package grayimage loads image files as 8-bit grayscale buffers.
//
// Colour images are reduced to luminance and 16-bit images are quantised to
// 8 bits using the conversions of image/color.GrayModel. The result always
// has its origin at (0,0).
package grayimage

import (
	"fmt"
	"image"

	"github.com/disintegration/imaging"
	"golang.org/x/image/draw"
)

// Load decodes a PNG, JPEG, GIF, TIFF or BMP file, applies its EXIF
// orientation and converts it to grayscale.
func Load(path string) (*image.Gray, error) {
	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	return ToGray(img), nil
}

// ToGray converts img to an *image.Gray anchored at the origin. An
// *image.Gray that is already anchored at the origin is returned as is.
func ToGray(img image.Image) *image.Gray {
	bounds := img.Bounds()
	if g, ok := img.(*image.Gray); ok && bounds.Min == (image.Point{}) {
		return g
	}

	gray := image.NewGray(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(gray, gray.Bounds(), img, bounds.Min, draw.Src)
	return gray
}
