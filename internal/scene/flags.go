package scene

import "strings"

// Flags is the visibility bitmask carried by every mesh.
type Flags uint32

// Visibility flags.
const (
	Visible Flags = 1 << iota
	Content
	Controller
	Selected
	Tool
	Brush
	RenderTarget
	Hidden
)

var flagNames = []struct {
	flag Flags
	name string
}{
	{Visible, "visible"},
	{Content, "content"},
	{Controller, "controller"},
	{Selected, "selected"},
	{Tool, "tool"},
	{Brush, "brush"},
	{RenderTarget, "rendertarget"},
	{Hidden, "hidden"},
}

// Has reports whether every bit in want is set.
func (f Flags) Has(want Flags) bool {
	return f&want == want
}

// String returns the set flags joined by "|".
func (f Flags) String() string {
	if f == 0 {
		return "none"
	}
	var parts []string
	for _, n := range flagNames {
		if f&n.flag != 0 {
			parts = append(parts, n.name)
		}
	}
	return strings.Join(parts, "|")
}

// Filter selects meshes by their flags. A mesh passes when it has every
// Require bit, at least one Any bit (if Any is non-zero) and no Exclude
// bit.
type Filter struct {
	Require Flags
	Any     Flags
	Exclude Flags
}

// Match reports whether f accepts flags.
func (f Filter) Match(flags Flags) bool {
	if !flags.Has(f.Require) {
		return false
	}
	if f.Any != 0 && flags&f.Any == 0 {
		return false
	}
	return flags&f.Exclude == 0
}

// Filters used by the frame renderer.
var (
	ContentFilter      = Filter{Require: Visible, Any: Content | Controller, Exclude: Selected | Hidden}
	SelectionFilter    = Filter{Require: Visible | Content | Selected, Exclude: Hidden}
	RenderTargetFilter = Filter{Require: Visible | RenderTarget, Exclude: Hidden}
	BrushFilter        = Filter{Require: Visible | Brush, Exclude: Hidden}
	ToolFilter         = Filter{Require: Visible | Tool, Exclude: Hidden}
)

// Select returns the meshes accepted by f, preserving order.
func Select(meshes []*Mesh, f Filter) []*Mesh {
	var out []*Mesh
	for _, m := range meshes {
		if m != nil && f.Match(m.Flags) {
			out = append(out, m)
		}
	}
	return out
}
