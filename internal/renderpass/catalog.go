package renderpass

import (
	"fmt"
	"sort"
)

// Catalog pass names.
const (
	PolygonFill                          = "polygon_fill"
	TagDepthHiddenWithStencil            = "tag_depth_hidden_with_stencil"
	TagDepthVisibleWithStencil           = "tag_depth_visible_with_stencil"
	ClearDepth                           = "clear_depth"
	DepthOnly                            = "depth_only"
	RequireStencilTagDepthVisible        = "require_stencil_tag_depth_visible"
	RequireStencilTagDepthHiddenAndBlend = "require_stencil_tag_depth_hidden_and_blend"
	EdgeLines                            = "edge_lines"
	CornerPoints                         = "corner_points"
	PolygonCentroids                     = "polygon_centroids"
	HiddenLineWithBlend                  = "hidden_line_with_blend"
	BrushBack                            = "brush_back"
	BrushFront                           = "brush_front"
	RendertargetMeshes                   = "rendertarget_meshes"
)

// Stencil sentinels written by the tool tagging passes.
const (
	StencilTagHidden  uint8 = 1
	StencilTagVisible uint8 = 2
)

// Alpha of occluded tool geometry and of hidden selection edges.
const (
	HiddenToolAlpha = 0.6
	HiddenLineAlpha = 0.2
)

// ToolPasses lists the tool visualization passes in draw order.
var ToolPasses = [6]string{
	TagDepthHiddenWithStencil,
	TagDepthVisibleWithStencil,
	ClearDepth,
	DepthOnly,
	RequireStencilTagDepthVisible,
	RequireStencilTagDepthHiddenAndBlend,
}

// Shaders names the shader programs passes select from.
type Shaders struct {
	Standard     string
	WideLines    string
	Points       string
	Tool         string
	Brush        string
	RenderTarget string

	// ID writes picking ids instead of color. It is used as an override
	// and is not the default shader of any pass.
	ID string
}

// DefaultShaders returns the built-in shader names.
func DefaultShaders() Shaders {
	return Shaders{
		Standard:     "standard",
		WideLines:    "wide_lines",
		Points:       "points",
		Tool:         "tool",
		Brush:        "brush",
		RenderTarget: "rendertarget",
		ID:           "id",
	}
}

// Catalog is the fixed set of render passes used by the editor.
type Catalog struct {
	depth  DepthConvention
	passes map[string]Renderpass
}

// NewCatalog builds every pass for the given depth convention. Each depth
// comparison goes through depth.Func.
func NewCatalog(depth DepthConvention, shaders Shaders) *Catalog {
	c := &Catalog{depth: depth, passes: make(map[string]Renderpass)}
	df := depth.Func
	tris := func(cull CullMode) Rasterization {
		return Rasterization{Primitive: PrimitiveTriangles, Cull: cull, FrontFace: FrontCCW}
	}

	c.add(Renderpass{
		Name:        PolygonFill,
		Shader:      shaders.Standard,
		VertexInput: "standard",
		Pipeline: Pipeline{
			Rasterization: tris(CullBack),
			DepthStencil:  DepthStencil{DepthTest: true, DepthWrite: true, DepthCompare: df(CompareLess)},
			ColorBlend:    opaque,
		},
	})

	// Tool passes 1 and 2 tag tool pixels behind (1) and in front of (2)
	// scene depth without touching color or depth.
	c.add(Renderpass{
		Name:        TagDepthHiddenWithStencil,
		Shader:      shaders.Tool,
		VertexInput: "standard",
		Pipeline: Pipeline{
			Rasterization: tris(CullBack),
			DepthStencil: DepthStencil{
				DepthTest:    true,
				DepthCompare: df(CompareGreater),
				StencilTest:  true,
				Front:        stencil(CompareAlways, StencilReplace, StencilTagHidden),
				Back:         stencil(CompareAlways, StencilReplace, StencilTagHidden),
			},
			ColorBlend: colorWritesOff,
		},
	})
	c.add(Renderpass{
		Name:        TagDepthVisibleWithStencil,
		Shader:      shaders.Tool,
		VertexInput: "standard",
		Pipeline: Pipeline{
			Rasterization: tris(CullBack),
			DepthStencil: DepthStencil{
				DepthTest:    true,
				DepthCompare: df(CompareLessEqual),
				StencilTest:  true,
				Front:        stencil(CompareAlways, StencilReplace, StencilTagVisible),
				Back:         stencil(CompareAlways, StencilReplace, StencilTagVisible),
			},
			ColorBlend: colorWritesOff,
		},
	})

	// Pass 3 resets depth under tool pixels to the far plane so pass 4 can
	// write the tool's own depth.
	far := depth.ClearValue()
	c.add(Renderpass{
		Name:        ClearDepth,
		Shader:      shaders.Tool,
		VertexInput: "standard",
		Pipeline: Pipeline{
			Rasterization: tris(CullBack),
			DepthStencil:  DepthStencil{DepthTest: true, DepthWrite: true, DepthCompare: CompareAlways},
			ColorBlend:    colorWritesOff,
		},
		Begin: func(s DepthRanger) { s.SetDepthRange(far, far) },
		End:   func(s DepthRanger) { s.SetDepthRange(0, 1) },
	})
	c.add(Renderpass{
		Name:        DepthOnly,
		Shader:      shaders.Tool,
		VertexInput: "standard",
		Pipeline: Pipeline{
			Rasterization: tris(CullBack),
			DepthStencil:  DepthStencil{DepthTest: true, DepthWrite: true, DepthCompare: df(CompareLess)},
			ColorBlend:    colorWritesOff,
		},
	})
	c.add(Renderpass{
		Name:        RequireStencilTagDepthVisible,
		Shader:      shaders.Tool,
		VertexInput: "standard",
		Pipeline: Pipeline{
			Rasterization: tris(CullBack),
			DepthStencil: DepthStencil{
				DepthTest:    true,
				DepthWrite:   true,
				DepthCompare: df(CompareLessEqual),
				StencilTest:  true,
				Front:        stencil(CompareEqual, StencilKeep, StencilTagVisible),
				Back:         stencil(CompareEqual, StencilKeep, StencilTagVisible),
			},
			ColorBlend: opaque,
		},
	})
	c.add(Renderpass{
		Name:        RequireStencilTagDepthHiddenAndBlend,
		Shader:      shaders.Tool,
		VertexInput: "standard",
		Pipeline: Pipeline{
			Rasterization: tris(CullBack),
			DepthStencil: DepthStencil{
				DepthTest:    true,
				DepthWrite:   true,
				DepthCompare: df(CompareLessEqual),
				StencilTest:  true,
				Front:        stencil(CompareEqual, StencilKeep, StencilTagHidden),
				Back:         stencil(CompareAlways, StencilReplace, StencilTagHidden),
			},
			ColorBlend: constantAlpha(HiddenToolAlpha),
		},
	})

	c.add(Renderpass{
		Name:        EdgeLines,
		Shader:      shaders.WideLines,
		VertexInput: "standard",
		Pipeline: Pipeline{
			Rasterization: Rasterization{Primitive: PrimitiveLines, LineWidth: 1},
			DepthStencil:  DepthStencil{DepthTest: true, DepthWrite: true, DepthCompare: df(CompareLessEqual)},
			ColorBlend:    opaque,
		},
	})
	c.add(Renderpass{
		Name:        CornerPoints,
		Shader:      shaders.Points,
		VertexInput: "standard",
		Pipeline: Pipeline{
			Rasterization: Rasterization{Primitive: PrimitivePoints, PointSize: 1},
			DepthStencil:  DepthStencil{DepthTest: true, DepthWrite: true, DepthCompare: df(CompareLessEqual)},
			ColorBlend:    opaque,
		},
	})
	c.add(Renderpass{
		Name:        PolygonCentroids,
		Shader:      shaders.Points,
		VertexInput: "standard",
		Pipeline: Pipeline{
			Rasterization: Rasterization{Primitive: PrimitivePoints, PointSize: 1},
			DepthStencil:  DepthStencil{DepthTest: true, DepthWrite: true, DepthCompare: df(CompareLessEqual)},
			ColorBlend:    opaque,
		},
	})
	c.add(Renderpass{
		Name:        HiddenLineWithBlend,
		Shader:      shaders.WideLines,
		VertexInput: "standard",
		Pipeline: Pipeline{
			Rasterization: Rasterization{Primitive: PrimitiveLines, LineWidth: 1},
			DepthStencil:  DepthStencil{DepthTest: true, DepthCompare: df(CompareGreater)},
			ColorBlend:    constantAlpha(HiddenLineAlpha),
		},
	})

	// Brush previews are drawn with brush_front (back faces culled) and
	// then brush_back (front faces culled).
	c.add(Renderpass{
		Name:        BrushBack,
		Shader:      shaders.Brush,
		VertexInput: "standard",
		Pipeline: Pipeline{
			Rasterization: tris(CullFront),
			DepthStencil:  DepthStencil{DepthTest: true, DepthCompare: df(CompareLess)},
			ColorBlend:    premultiplied,
		},
	})
	c.add(Renderpass{
		Name:        BrushFront,
		Shader:      shaders.Brush,
		VertexInput: "standard",
		Pipeline: Pipeline{
			Rasterization: tris(CullBack),
			DepthStencil:  DepthStencil{DepthTest: true, DepthCompare: df(CompareLess)},
			ColorBlend:    premultiplied,
		},
	})
	c.add(Renderpass{
		Name:        RendertargetMeshes,
		Shader:      shaders.RenderTarget,
		VertexInput: "textured",
		Pipeline: Pipeline{
			Rasterization: tris(CullNone),
			DepthStencil:  DepthStencil{DepthTest: true, DepthWrite: true, DepthCompare: df(CompareLess)},
			ColorBlend:    premultiplied,
		},
	})

	return c
}

func (c *Catalog) add(rp Renderpass) {
	if _, dup := c.passes[rp.Name]; dup {
		panic("renderpass: duplicate pass " + rp.Name)
	}
	c.passes[rp.Name] = rp
}

// Depth returns the depth convention the catalog was built for.
func (c *Catalog) Depth() DepthConvention {
	return c.depth
}

// Get returns a copy of the named pass.
func (c *Catalog) Get(name string) (Renderpass, bool) {
	rp, ok := c.passes[name]
	return rp, ok
}

// MustGet returns the named pass and panics if it does not exist.
func (c *Catalog) MustGet(name string) Renderpass {
	rp, ok := c.passes[name]
	if !ok {
		panic(fmt.Sprintf("renderpass: unknown pass %q", name))
	}
	return rp
}

// Len returns the number of passes.
func (c *Catalog) Len() int {
	return len(c.passes)
}

// Names returns the pass names in sorted order.
func (c *Catalog) Names() []string {
	names := make([]string, 0, len(c.passes))
	for name := range c.passes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
