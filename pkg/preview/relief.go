package preview

import (
	"fmt"
	"math"

	"github.com/deadsy/sdfx/render"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/wytr/opencarve/pkg/raster"
	"github.com/wytr/opencarve/pkg/toolpath"
)

// defaultReliefCells controls marching cubes tessellation resolution.
const defaultReliefCells = 120

// Compile-time interface check.
var _ sdf.SDF3 = (*reliefSDF)(nil)

// reliefSDF is a signed-distance field of the stock after carving: a
// slab whose top surface is lowered by the per-pixel cutting depth.
// The field is approximate away from the surface, which is sufficient
// for marching cubes.
type reliefSDF struct {
	grid      *raster.Grid
	params    toolpath.Params
	thickness float64
}

func (r *reliefSDF) BoundingBox() sdf.Box3 {
	p := r.params
	pad := math.Max(p.MaxDepth*0.25, 0.5)
	return sdf.Box3{
		Min: v3.Vec{X: -pad, Y: -pad, Z: -r.thickness - pad},
		Max: v3.Vec{X: p.Width + pad, Y: p.Height + pad, Z: pad},
	}
}

func (r *reliefSDF) Evaluate(p v3.Vec) float64 {
	prm := r.params
	top := -r.depthAt(p.X, p.Y)

	dTop := p.Z - top
	dBottom := -r.thickness - p.Z
	dSides := math.Max(
		math.Max(-p.X, p.X-prm.Width),
		math.Max(-p.Y, p.Y-prm.Height),
	)
	return math.Max(dTop, math.Max(dBottom, dSides))
}

// depthAt bilinearly samples the cutting depth at a physical position.
// Points outside the carved area (the margin band) are at surface
// height. The row/column mapping matches the generator exactly: the top
// image row sits at the far Y edge.
func (r *reliefSDF) depthAt(x, y float64) float64 {
	p := r.params
	spanX := p.Width - 2*p.Margin
	spanY := p.Height - 2*p.Margin
	if spanX <= 0 || spanY <= 0 {
		return 0
	}
	fx := (x - p.Margin) / spanX
	fy := (y - p.Margin) / spanY
	if fx < 0 || fx > 1 || fy < 0 || fy > 1 {
		return 0
	}

	rows, cols := r.grid.Rows(), r.grid.Cols()
	cx := fx * float64(cols-1)
	cy := (1 - fy) * float64(rows-1)

	x0 := int(math.Floor(cx))
	y0 := int(math.Floor(cy))
	x1 := min(x0+1, cols-1)
	y1 := min(y0+1, rows-1)
	tx := cx - float64(x0)
	ty := cy - float64(y0)

	d00 := r.pixelDepth(y0, x0)
	d10 := r.pixelDepth(y0, x1)
	d01 := r.pixelDepth(y1, x0)
	d11 := r.pixelDepth(y1, x1)

	top := d00 + tx*(d10-d00)
	bot := d01 + tx*(d11-d01)
	return top + ty*(bot-top)
}

func (r *reliefSDF) pixelDepth(row, col int) float64 {
	return float64(255-r.grid.At(row, col)) / 255.0 * r.params.MaxDepth
}

// ReliefMesh tessellates the carved stock into a triangle mesh using
// marching cubes. cells controls resolution; pass 0 for the default.
func ReliefMesh(p toolpath.Params, grid *raster.Grid, cells int) (*Mesh, error) {
	if grid == nil || grid.Rows() < 1 || grid.Cols() < 1 {
		return nil, fmt.Errorf("preview: grid must have at least one row and one column")
	}
	if cells <= 0 {
		cells = defaultReliefCells
	}

	s := &reliefSDF{
		grid:      grid,
		params:    p,
		thickness: math.Max(p.MaxDepth*1.5, p.MaxDepth+1),
	}

	renderer := render.NewMarchingCubesUniform(cells)
	triangles := render.ToTriangles(s, renderer)

	numVerts := len(triangles) * 3
	mesh := &Mesh{
		Vertices: make([]float32, 0, numVerts*3),
		Normals:  make([]float32, 0, numVerts*3),
		Indices:  make([]uint32, 0, numVerts),
		Name:     "stock",
	}

	for i, tri := range triangles {
		n := tri.Normal()
		nx := float32(n.X)
		ny := float32(n.Y)
		nz := float32(n.Z)

		for j := 0; j < 3; j++ {
			v := tri[j]
			mesh.Vertices = append(mesh.Vertices, float32(v.X), float32(v.Y), float32(v.Z))
			mesh.Normals = append(mesh.Normals, nx, ny, nz)
			mesh.Indices = append(mesh.Indices, uint32(i*3+j))
		}
	}
	return mesh, nil
}
