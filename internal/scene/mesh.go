package scene

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Mesh is an indexed triangle mesh with flat color.
type Mesh struct {
	// Name identifies the mesh in logs and captures.
	Name string

	// ID is the picking id; 0 means not pickable.
	ID uint32

	Flags Flags

	// Positions are object-space vertices.
	Positions []mgl32.Vec3

	// Triangles indexes Positions in counter-clockwise triples.
	Triangles []uint32

	// Edges indexes Positions in pairs. When nil the unique triangle
	// edges are used.
	Edges []uint32

	Color     mgl32.Vec4
	Transform mgl32.Mat4
}

// EdgeIndices returns the line list for the mesh edges.
func (m *Mesh) EdgeIndices() []uint32 {
	if m.Edges != nil {
		return m.Edges
	}
	type pair struct{ a, b uint32 }
	seen := make(map[pair]bool, len(m.Triangles))
	out := make([]uint32, 0, len(m.Triangles)*2)
	for i := 0; i+2 < len(m.Triangles); i += 3 {
		tri := m.Triangles[i : i+3]
		for j := 0; j < 3; j++ {
			a, b := tri[j], tri[(j+1)%3]
			if a > b {
				a, b = b, a
			}
			if seen[pair{a, b}] {
				continue
			}
			seen[pair{a, b}] = true
			out = append(out, a, b)
		}
	}
	return out
}

// Centroids returns the center of every triangle.
func (m *Mesh) Centroids() []mgl32.Vec3 {
	out := make([]mgl32.Vec3, 0, len(m.Triangles)/3)
	for i := 0; i+2 < len(m.Triangles); i += 3 {
		a := m.Positions[m.Triangles[i]]
		b := m.Positions[m.Triangles[i+1]]
		c := m.Positions[m.Triangles[i+2]]
		out = append(out, a.Add(b).Add(c).Mul(1.0/3))
	}
	return out
}

// NewBox returns an axis-aligned box centered at center with outward
// facing triangles.
func NewBox(name string, center, size mgl32.Vec3, color mgl32.Vec4) *Mesh {
	h := size.Mul(0.5)
	positions := []mgl32.Vec3{
		{-h[0], -h[1], -h[2]}, {h[0], -h[1], -h[2]}, {h[0], h[1], -h[2]}, {-h[0], h[1], -h[2]},
		{-h[0], -h[1], h[2]}, {h[0], -h[1], h[2]}, {h[0], h[1], h[2]}, {-h[0], h[1], h[2]},
	}
	triangles := []uint32{
		4, 5, 6, 4, 6, 7, // +z
		1, 0, 3, 1, 3, 2, // -z
		5, 1, 2, 5, 2, 6, // +x
		0, 4, 7, 0, 7, 3, // -x
		7, 6, 2, 7, 2, 3, // +y
		0, 1, 5, 0, 5, 4, // -y
	}
	edges := []uint32{
		0, 1, 1, 2, 2, 3, 3, 0,
		4, 5, 5, 6, 6, 7, 7, 4,
		0, 4, 1, 5, 2, 6, 3, 7,
	}
	return &Mesh{
		Name:      name,
		Flags:     Visible,
		Positions: positions,
		Triangles: triangles,
		Edges:     edges,
		Color:     color,
		Transform: mgl32.Translate3D(center[0], center[1], center[2]),
	}
}

// NewQuad returns a w x h quad in the XY plane facing +z.
func NewQuad(name string, center mgl32.Vec3, w, h float32, color mgl32.Vec4) *Mesh {
	x, y := w/2, h/2
	return &Mesh{
		Name:      name,
		Flags:     Visible,
		Positions: []mgl32.Vec3{{-x, -y, 0}, {x, -y, 0}, {x, y, 0}, {-x, y, 0}},
		Triangles: []uint32{0, 1, 2, 0, 2, 3},
		Color:     color,
		Transform: mgl32.Translate3D(center[0], center[1], center[2]),
	}
}
