package renderpass

// Rasterization is the rasterizer state of a pass.
type Rasterization struct {
	Primitive Primitive
	Cull      CullMode
	FrontFace FrontFace

	// LineWidth and PointSize are in pixels; zero means 1.
	LineWidth float32
	PointSize float32
}

// StencilFace is the stencil state for one triangle facing.
type StencilFace struct {
	Compare     CompareOp
	FailOp      StencilOp
	DepthFailOp StencilOp
	PassOp      StencilOp
	Reference   uint8
	TestMask    uint8
	WriteMask   uint8
}

// DepthStencil is the depth and stencil state of a pass.
type DepthStencil struct {
	DepthTest    bool
	DepthWrite   bool
	DepthCompare CompareOp

	StencilTest bool
	Front       StencilFace
	Back        StencilFace
}

// BlendComponent is the blend equation of one channel group.
type BlendComponent struct {
	Op  BlendOp
	Src BlendFactor
	Dst BlendFactor
}

// ColorBlend is the color output state of a pass.
type ColorBlend struct {
	Enabled  bool
	Color    BlendComponent
	Alpha    BlendComponent
	Constant [4]float32

	WriteMask ColorWriteMask
}

// Pipeline bundles the fixed-function state of a pass.
type Pipeline struct {
	Rasterization Rasterization
	DepthStencil  DepthStencil
	ColorBlend    ColorBlend
}

// DepthRanger is the part of a GPU state tracker that pass hooks use.
type DepthRanger interface {
	SetDepthRange(near, far float32)
}

// Hook runs immediately before or after a pass is drawn.
type Hook func(s DepthRanger)

// Renderpass pairs a shader selection with a pipeline. Catalog entries are
// built once and never modified.
type Renderpass struct {
	Name        string
	Shader      string
	VertexInput string
	Pipeline    Pipeline

	Begin Hook
	End   Hook
}

// DepthConvention selects between standard (near=0, far=1) and reverse
// (near=1, far=0) depth.
type DepthConvention struct {
	Reverse bool
}

// Func maps a compare op written for standard depth to the op to use
// under this convention.
func (d DepthConvention) Func(op CompareOp) CompareOp {
	if !d.Reverse {
		return op
	}
	switch op {
	case CompareLess:
		return CompareGreater
	case CompareLessEqual:
		return CompareGreaterEqual
	case CompareGreater:
		return CompareLess
	case CompareGreaterEqual:
		return CompareLessEqual
	default:
		return op
	}
}

// ClearValue is the depth of the far plane, used to clear depth buffers.
func (d DepthConvention) ClearValue() float32 {
	if d.Reverse {
		return 0
	}
	return 1
}

// String returns "reverse" or "standard".
func (d DepthConvention) String() string {
	if d.Reverse {
		return "reverse"
	}
	return "standard"
}

var (
	colorWritesOff = ColorBlend{WriteMask: ColorWriteNone}
	opaque         = ColorBlend{WriteMask: ColorWriteAll}

	premultiplied = ColorBlend{
		Enabled:   true,
		Color:     BlendComponent{Op: BlendAdd, Src: BlendOne, Dst: BlendOneMinusSrcAlpha},
		Alpha:     BlendComponent{Op: BlendAdd, Src: BlendOne, Dst: BlendOneMinusSrcAlpha},
		WriteMask: ColorWriteAll,
	}
)

func constantAlpha(alpha float32) ColorBlend {
	return ColorBlend{
		Enabled:   true,
		Color:     BlendComponent{Op: BlendAdd, Src: BlendConstantAlpha, Dst: BlendOneMinusConstantAlpha},
		Alpha:     BlendComponent{Op: BlendAdd, Src: BlendConstantAlpha, Dst: BlendOneMinusConstantAlpha},
		Constant:  [4]float32{0, 0, 0, alpha},
		WriteMask: ColorWriteAll,
	}
}

func stencil(compare CompareOp, pass StencilOp, ref uint8) StencilFace {
	return StencilFace{
		Compare:     compare,
		FailOp:      StencilKeep,
		DepthFailOp: StencilKeep,
		PassOp:      pass,
		Reference:   ref,
		TestMask:    0xff,
		WriteMask:   0xff,
	}
}
