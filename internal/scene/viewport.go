package scene

import (
	"github.com/go-gl/mathgl/mgl32"
)

// RenderStyle selects the visual styles drawn for a viewport.
type RenderStyle struct {
	Fill         bool
	Edges        bool
	Centroids    bool
	CornerPoints bool

	Background    mgl32.Vec4
	EdgeColor     mgl32.Vec4
	CentroidColor mgl32.Vec4
	CornerColor   mgl32.Vec4
	EdgeWidth     float32
	PointSize     float32

	// Selection colors replace mesh colors for selected meshes.
	SelectionFill mgl32.Vec4
	SelectionEdge mgl32.Vec4
}

// DefaultStyle draws filled polygons with edges.
func DefaultStyle() *RenderStyle {
	return &RenderStyle{
		Fill:          true,
		Edges:         true,
		Background:    mgl32.Vec4{0.1, 0.1, 0.12, 1},
		EdgeColor:     mgl32.Vec4{0, 0, 0, 1},
		CentroidColor: mgl32.Vec4{0.2, 0.6, 1, 1},
		CornerColor:   mgl32.Vec4{1, 1, 1, 1},
		EdgeWidth:     1,
		PointSize:     3,
		SelectionFill: mgl32.Vec4{1, 0.6, 0.1, 1},
		SelectionEdge: mgl32.Vec4{1, 0.8, 0.2, 1},
	}
}

// Viewport is one view of the scene.
type Viewport struct {
	Name    string
	Width   int
	Height  int
	Visible bool

	Camera *Camera
	Style  *RenderStyle
}

// NewViewport returns a visible viewport with the default camera and
// style.
func NewViewport(name string, width, height int) *Viewport {
	return &Viewport{
		Name:    name,
		Width:   width,
		Height:  height,
		Visible: true,
		Camera:  DefaultCamera(),
		Style:   DefaultStyle(),
	}
}

// Aspect returns width / height, 1 for an empty viewport.
func (v *Viewport) Aspect() float32 {
	if v.Width <= 0 || v.Height <= 0 {
		return 1
	}
	return float32(v.Width) / float32(v.Height)
}
