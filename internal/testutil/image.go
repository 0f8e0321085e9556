// Package testutil generates synthetic report images for tests that
// exercise the OCR boundary without shipping scanned sample documents.
package testutil

import (
	"image"
	"image/color"
	"image/draw"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

const (
	lineHeight = 24
	marginX    = 20
	marginY    = 20
)

// SampleReportLines is a minimal lab report layout: patient lines, a
// section heading, a table header and two data rows.
var SampleReportLines = []string{
	"Patient Name: John Doe",
	"Lab No: 2301456",
	"HAEMATOLOGY",
	"Test Name      Result    Unit",
	"Hemoglobin     14.2      g/dL",
	"WBC            7800      /cumm",
}

// RenderReportImage draws the given text lines onto a white canvas with a
// fixed-width font, one line per row. The output is deliberately plain so
// any OCR engine can read it.
func RenderReportImage(lines []string, width int) *image.RGBA {
	height := 2*marginY + lineHeight*len(lines)
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: color.White}, image.Point{}, draw.Src)

	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(color.Black),
		Face: basicfont.Face7x13,
	}
	for i, line := range lines {
		d.Dot = fixed.P(marginX, marginY+lineHeight*i+basicfont.Face7x13.Ascent)
		d.DrawString(line)
	}
	return img
}

// SaveReportImage writes a rendered report image under dir and returns its
// path.
func SaveReportImage(t *testing.T, img image.Image, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, imaging.Save(img, path))
	return path
}
