// Package scene is the scene query surface the frame renderer draws from:
// mesh layers with visibility flags, viewports with cameras and render
// styles, and lighting.
package scene

import (
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/go-gl/mathgl/mgl32"
)

// Layer groups meshes by role.
type Layer uint8

// Mesh layers.
const (
	LayerContent Layer = iota
	LayerSelection
	LayerTool
	LayerBrush
	LayerRenderTarget
)

// String returns the layer name.
func (l Layer) String() string {
	switch l {
	case LayerContent:
		return "content"
	case LayerSelection:
		return "selection"
	case LayerTool:
		return "tool"
	case LayerBrush:
		return "brush"
	case LayerRenderTarget:
		return "rendertarget"
	default:
		return fmt.Sprintf("Layer(%d)", l)
	}
}

// Errors returned by Memory.
var (
	ErrDuplicateMesh     = errors.New("scene: duplicate mesh")
	ErrMeshNotFound      = errors.New("scene: mesh not found")
	ErrDuplicateViewport = errors.New("scene: duplicate viewport")
)

// Scene is queried once per frame by the renderer. Returned slices are
// read-only.
type Scene interface {
	// Layer returns the meshes in l. The selection layer holds the
	// selected content meshes.
	Layer(l Layer) []*Mesh

	// Viewports returns every viewport in draw order.
	Viewports() []*Viewport

	// Lighting returns the light list and ambient term.
	Lighting() Lighting
}

// Memory is an in-memory Scene. It is safe for concurrent use.
type Memory struct {
	mu        sync.RWMutex
	layers    map[Layer][]*Mesh
	viewports []*Viewport
	lighting  Lighting
	nextID    uint32
}

var _ Scene = (*Memory)(nil)

// NewMemory returns an empty scene.
func NewMemory() *Memory {
	return &Memory{layers: make(map[Layer][]*Mesh), nextID: 1}
}

// layerFlags are the role flags implied by each stored layer.
var layerFlags = map[Layer]Flags{
	LayerContent:      Content,
	LayerTool:         Tool,
	LayerBrush:        Brush,
	LayerRenderTarget: RenderTarget,
}

// Add stores m in layer l, sets the layer's role flag and assigns a
// picking id if m has none. Selected meshes are added to the content
// layer with the Selected flag.
func (s *Memory) Add(l Layer, m *Mesh) error {
	if l == LayerSelection {
		l = LayerContent
		m.Flags |= Selected
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.find(m.Name) != nil {
		return fmt.Errorf("%w: %s", ErrDuplicateMesh, m.Name)
	}
	m.Flags |= layerFlags[l]
	if m.ID == 0 {
		m.ID = s.nextID
		s.nextID++
	}
	s.layers[l] = append(s.layers[l], m)
	return nil
}

// Remove deletes the named mesh from every layer.
func (s *Memory) Remove(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := false
	for l, meshes := range s.layers {
		n := len(meshes)
		meshes = slices.DeleteFunc(meshes, func(m *Mesh) bool { return m.Name == name })
		if len(meshes) != n {
			removed = true
		}
		s.layers[l] = meshes
	}
	return removed
}

// Find returns the named mesh or nil.
func (s *Memory) Find(name string) *Mesh {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.find(name)
}

func (s *Memory) find(name string) *Mesh {
	for _, meshes := range s.layers {
		for _, m := range meshes {
			if m.Name == name {
				return m
			}
		}
	}
	return nil
}

// ByID returns the mesh with the given picking id or nil.
func (s *Memory) ByID(id uint32) *Mesh {
	if id == 0 {
		return nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, meshes := range s.layers {
		for _, m := range meshes {
			if m.ID == id {
				return m
			}
		}
	}
	return nil
}

// SetSelected sets or clears the Selected flag of a content mesh.
func (s *Memory) SetSelected(name string, selected bool) error {
	return s.update(name, func(m *Mesh) {
		if selected {
			m.Flags |= Selected
		} else {
			m.Flags &^= Selected
		}
	})
}

// SetHidden sets or clears the Hidden flag.
func (s *Memory) SetHidden(name string, hidden bool) error {
	return s.update(name, func(m *Mesh) {
		if hidden {
			m.Flags |= Hidden
		} else {
			m.Flags &^= Hidden
		}
	})
}

// Translate moves the named mesh by offset in world space.
func (s *Memory) Translate(name string, offset mgl32.Vec3) error {
	return s.update(name, func(m *Mesh) {
		m.Transform = mgl32.Translate3D(offset[0], offset[1], offset[2]).Mul4(m.Transform)
	})
}

// ClearSelection deselects every mesh and returns how many were selected.
func (s *Memory) ClearSelection() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, m := range s.layers[LayerContent] {
		if m.Flags&Selected != 0 {
			m.Flags &^= Selected
			n++
		}
	}
	return n
}

func (s *Memory) update(name string, fn func(m *Mesh)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	m := s.find(name)
	if m == nil {
		return fmt.Errorf("%w: %s", ErrMeshNotFound, name)
	}
	fn(m)
	return nil
}

// Layer implements Scene.
func (s *Memory) Layer(l Layer) []*Mesh {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if l == LayerSelection {
		var out []*Mesh
		for _, m := range s.layers[LayerContent] {
			if m.Flags&Selected != 0 {
				out = append(out, m)
			}
		}
		return out
	}
	return slices.Clone(s.layers[l])
}

// AddViewport appends a viewport.
func (s *Memory) AddViewport(v *Viewport) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.viewports {
		if existing.Name == v.Name {
			return fmt.Errorf("%w: %s", ErrDuplicateViewport, v.Name)
		}
	}
	s.viewports = append(s.viewports, v)
	return nil
}

// Viewport returns the named viewport or nil.
func (s *Memory) Viewport(name string) *Viewport {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, v := range s.viewports {
		if v.Name == name {
			return v
		}
	}
	return nil
}

// Viewports implements Scene.
func (s *Memory) Viewports() []*Viewport {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.viewports)
}

// SetLighting replaces the scene lighting.
func (s *Memory) SetLighting(l Lighting) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lighting = l
}

// Lighting implements Scene.
func (s *Memory) Lighting() Lighting {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lighting
}
