// Package raster supplies the grayscale sample grid consumed by the
// toolpath generator. It wraps image loading, grayscale conversion,
// inversion and resizing behind a small immutable Grid type.
package raster

import (
	"fmt"
	"image"

	"github.com/anthonynsimon/bild/effect"
	"github.com/anthonynsimon/bild/imgio"
	"github.com/anthonynsimon/bild/transform"
)

// Grid is a rows x cols grid of 8-bit intensity samples.
// It is never mutated after construction; operations return new grids.
type Grid struct {
	rows, cols int
	pix        []uint8
}

// NewGrid creates a grid from row-major samples. len(pix) must be rows*cols.
func NewGrid(rows, cols int, pix []uint8) (*Grid, error) {
	if rows <= 0 || cols <= 0 {
		return nil, fmt.Errorf("raster: grid must have at least one row and one column, got %dx%d", rows, cols)
	}
	if len(pix) != rows*cols {
		return nil, fmt.Errorf("raster: expected %d samples, got %d", rows*cols, len(pix))
	}
	p := make([]uint8, len(pix))
	copy(p, pix)
	return &Grid{rows: rows, cols: cols, pix: p}, nil
}

// Rows returns the number of rows.
func (g *Grid) Rows() int { return g.rows }

// Cols returns the number of columns.
func (g *Grid) Cols() int { return g.cols }

// At returns the intensity sample at (row, col).
func (g *Grid) At(row, col int) uint8 {
	return g.pix[row*g.cols+col]
}

// Invert returns a new grid with every sample replaced by 255-sample.
func (g *Grid) Invert() *Grid {
	p := make([]uint8, len(g.pix))
	for i, v := range g.pix {
		p[i] = 255 - v
	}
	return &Grid{rows: g.rows, cols: g.cols, pix: p}
}

// FromImage converts an image to a grayscale sample grid.
// 16-bit sources are scaled down to 8 bits, matching the usual
// heightmap export convention.
func FromImage(img image.Image) (*Grid, error) {
	b := img.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 {
		return nil, fmt.Errorf("raster: image has empty bounds %v", b)
	}

	if g16, ok := img.(*image.Gray16); ok {
		rows, cols := b.Dy(), b.Dx()
		pix := make([]uint8, rows*cols)
		for y := 0; y < rows; y++ {
			for x := 0; x < cols; x++ {
				v := g16.Gray16At(b.Min.X+x, b.Min.Y+y).Y
				pix[y*cols+x] = uint8(v >> 8)
			}
		}
		return &Grid{rows: rows, cols: cols, pix: pix}, nil
	}

	gray := effect.Grayscale(img)
	gb := gray.Bounds()
	rows, cols := gb.Dy(), gb.Dx()
	pix := make([]uint8, rows*cols)
	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			// Grayscale output has R == G == B.
			r, _, _, _ := gray.At(gb.Min.X+x, gb.Min.Y+y).RGBA()
			pix[y*cols+x] = uint8(r >> 8)
		}
	}
	return &Grid{rows: rows, cols: cols, pix: pix}, nil
}

// Load reads an image file and converts it to a sample grid.
func Load(path string) (*Grid, error) {
	img, err := imgio.Open(path)
	if err != nil {
		return nil, fmt.Errorf("raster: open %s: %w", path, err)
	}
	return FromImage(img)
}

// Resample returns a new grid resized to rows x cols using bilinear
// filtering. The grid is converted through an image so that the resize
// kernel from bild is applied uniformly.
func (g *Grid) Resample(rows, cols int) (*Grid, error) {
	if rows <= 0 || cols <= 0 {
		return nil, fmt.Errorf("raster: resample target must be positive, got %dx%d", rows, cols)
	}
	if rows == g.rows && cols == g.cols {
		return g, nil
	}
	src := image.NewGray(image.Rect(0, 0, g.cols, g.rows))
	for y := 0; y < g.rows; y++ {
		for x := 0; x < g.cols; x++ {
			src.Pix[y*src.Stride+x] = g.At(y, x)
		}
	}
	dst := transform.Resize(src, cols, rows, transform.Linear)
	return FromImage(dst)
}
