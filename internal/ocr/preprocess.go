package ocr

import (
	"image"

	"github.com/disintegration/imaging"

	"github.com/meditext/labstruct/internal/detection"
)

// retryScale is the upscale factor applied before the retry pass.
const retryScale = 2

// preprocessForRetry produces a grayscale, 2x-upscaled rendition of the
// image. Photographed reports shared over messaging apps arrive heavily
// downscaled; upscaling before recognition recovers small glyphs.
func preprocessForRetry(img image.Image) image.Image {
	b := img.Bounds()
	gray := imaging.Grayscale(img)
	return imaging.Resize(gray, b.Dx()*retryScale, b.Dy()*retryScale, imaging.CatmullRom)
}

// rescaleDetections maps detection geometry from the upscaled retry image
// back into original image coordinates.
func rescaleDetections(raw []detection.RawDetection, factor float64) {
	for i := range raw {
		for j := range raw[i].Polygon {
			raw[i].Polygon[j].X *= factor
			raw[i].Polygon[j].Y *= factor
		}
	}
}
