package qr

import (
	"bytes"
	"image"
	"image/color"
	"image/png"

	"golang.org/x/image/draw"
)

var palette = color.Palette{color.White, color.Black}

// PNGSurface renders module matrices as black on white PNG images.
type PNGSurface struct{}

func (PNGSurface) Raster(modules [][]bool, size int) ([]byte, error) {
	n := len(modules)
	src := image.NewPaletted(image.Rect(0, 0, n, n), palette)
	for y, row := range modules {
		for x, on := range row {
			if on {
				src.SetColorIndex(x, y, 1)
			}
		}
	}

	dst := image.NewPaletted(image.Rect(0, 0, size, size), palette)
	draw.NearestNeighbor.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)

	var buf bytes.Buffer
	if err := png.Encode(&buf, dst); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
