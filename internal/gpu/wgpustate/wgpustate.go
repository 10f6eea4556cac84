// Package wgpustate translates render pass descriptors into WebGPU
// pipeline state.
//
// WebGPU bakes rasterizer, depth-stencil and blend state into immutable
// render pipelines and keeps only the stencil reference, blend constant
// and viewport depth range dynamic. Translate produces the baked part;
// Tracker applies the dynamic part to a render pass encoder.
package wgpustate

import (
	"errors"
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"

	"github.com/dshills/scenedit/internal/renderpass"
)

// Translation errors.
var (
	// ErrStencilReference indicates front and back faces use different
	// stencil references, which WebGPU cannot express.
	ErrStencilReference = errors.New("wgpustate: front and back stencil references differ")

	// ErrStencilMask indicates front and back faces use different masks.
	ErrStencilMask = errors.New("wgpustate: front and back stencil masks differ")
)

// Topologies maps primitive kinds to WebGPU topologies.
var Topologies = map[renderpass.Primitive]wgpu.PrimitiveTopology{
	renderpass.PrimitiveTriangles: wgpu.PrimitiveTopologyTriangleList,
	renderpass.PrimitiveLines:     wgpu.PrimitiveTopologyLineList,
	renderpass.PrimitivePoints:    wgpu.PrimitiveTopologyPointList,
}

// CullModes maps cull modes.
var CullModes = map[renderpass.CullMode]wgpu.CullMode{
	renderpass.CullNone:  wgpu.CullModeNone,
	renderpass.CullBack:  wgpu.CullModeBack,
	renderpass.CullFront: wgpu.CullModeFront,
}

// FrontFaces maps winding orders.
var FrontFaces = map[renderpass.FrontFace]wgpu.FrontFace{
	renderpass.FrontCCW: wgpu.FrontFaceCCW,
	renderpass.FrontCW:  wgpu.FrontFaceCW,
}

// CompareFunctions maps compare ops.
var CompareFunctions = map[renderpass.CompareOp]wgpu.CompareFunction{
	renderpass.CompareNever:        wgpu.CompareFunctionNever,
	renderpass.CompareLess:         wgpu.CompareFunctionLess,
	renderpass.CompareEqual:        wgpu.CompareFunctionEqual,
	renderpass.CompareLessEqual:    wgpu.CompareFunctionLessEqual,
	renderpass.CompareGreater:      wgpu.CompareFunctionGreater,
	renderpass.CompareNotEqual:     wgpu.CompareFunctionNotEqual,
	renderpass.CompareGreaterEqual: wgpu.CompareFunctionGreaterEqual,
	renderpass.CompareAlways:       wgpu.CompareFunctionAlways,
}

// StencilOperations maps stencil ops. Increment and decrement clamp.
var StencilOperations = map[renderpass.StencilOp]wgpu.StencilOperation{
	renderpass.StencilKeep:      wgpu.StencilOperationKeep,
	renderpass.StencilZero:      wgpu.StencilOperationZero,
	renderpass.StencilReplace:   wgpu.StencilOperationReplace,
	renderpass.StencilIncrement: wgpu.StencilOperationIncrementClamp,
	renderpass.StencilDecrement: wgpu.StencilOperationDecrementClamp,
	renderpass.StencilInvert:    wgpu.StencilOperationInvert,
}

// BlendFactors maps blend factors. WebGPU has no constant-alpha factor;
// constant-alpha factors map to the constant color factors and the blend
// constant is splatted from its alpha (see BlendConstant).
var BlendFactors = map[renderpass.BlendFactor]wgpu.BlendFactor{
	renderpass.BlendZero:                  wgpu.BlendFactorZero,
	renderpass.BlendOne:                   wgpu.BlendFactorOne,
	renderpass.BlendSrcAlpha:              wgpu.BlendFactorSrcAlpha,
	renderpass.BlendOneMinusSrcAlpha:      wgpu.BlendFactorOneMinusSrcAlpha,
	renderpass.BlendDstAlpha:              wgpu.BlendFactorDstAlpha,
	renderpass.BlendOneMinusDstAlpha:      wgpu.BlendFactorOneMinusDstAlpha,
	renderpass.BlendConstantColor:         wgpu.BlendFactorConstant,
	renderpass.BlendOneMinusConstantColor: wgpu.BlendFactorOneMinusConstant,
	renderpass.BlendConstantAlpha:         wgpu.BlendFactorConstant,
	renderpass.BlendOneMinusConstantAlpha: wgpu.BlendFactorOneMinusConstant,
}

// BlendOperations maps blend equations.
var BlendOperations = map[renderpass.BlendOp]wgpu.BlendOperation{
	renderpass.BlendAdd:             wgpu.BlendOperationAdd,
	renderpass.BlendSubtract:        wgpu.BlendOperationSubtract,
	renderpass.BlendReverseSubtract: wgpu.BlendOperationReverseSubtract,
	renderpass.BlendMin:             wgpu.BlendOperationMin,
	renderpass.BlendMax:             wgpu.BlendOperationMax,
}

// Formats are the attachment formats pipelines are built for.
type Formats struct {
	Color        wgpu.TextureFormat
	DepthStencil wgpu.TextureFormat
}

// DefaultFormats returns RGBA8 color with a combined depth-stencil buffer.
func DefaultFormats() Formats {
	return Formats{
		Color:        wgpu.TextureFormatRGBA8Unorm,
		DepthStencil: wgpu.TextureFormatDepth24PlusStencil8,
	}
}

// State is the WebGPU rendition of a renderpass.Pipeline.
type State struct {
	Primitive    wgpu.PrimitiveState
	DepthStencil wgpu.DepthStencilState
	Target       wgpu.ColorTargetState

	// Dynamic state set on the render pass encoder.
	StencilReference uint32
	BlendConstant    wgpu.Color
}

// Translate converts p to WebGPU state.
func Translate(p renderpass.Pipeline, f Formats) (State, error) {
	var s State

	r := p.Rasterization
	s.Primitive = wgpu.PrimitiveState{
		Topology:  Topologies[r.Primitive],
		FrontFace: FrontFaces[r.FrontFace],
		CullMode:  CullModes[r.Cull],
	}

	ds := p.DepthStencil
	s.DepthStencil = wgpu.DepthStencilState{
		Format:       f.DepthStencil,
		DepthCompare: wgpu.CompareFunctionAlways,
		StencilFront: disabledFace(),
		StencilBack:  disabledFace(),
	}
	if ds.DepthTest {
		s.DepthStencil.DepthCompare = CompareFunctions[ds.DepthCompare]
		s.DepthStencil.DepthWriteEnabled = ds.DepthWrite
	}
	if ds.StencilTest {
		if ds.Front.Reference != ds.Back.Reference {
			return State{}, fmt.Errorf("%w: %d != %d", ErrStencilReference, ds.Front.Reference, ds.Back.Reference)
		}
		if ds.Front.TestMask != ds.Back.TestMask || ds.Front.WriteMask != ds.Back.WriteMask {
			return State{}, ErrStencilMask
		}
		s.DepthStencil.StencilFront = face(ds.Front)
		s.DepthStencil.StencilBack = face(ds.Back)
		s.DepthStencil.StencilReadMask = uint32(ds.Front.TestMask)
		s.DepthStencil.StencilWriteMask = uint32(ds.Front.WriteMask)
		s.StencilReference = uint32(ds.Front.Reference)
	}

	cb := p.ColorBlend
	s.Target = wgpu.ColorTargetState{
		Format:    f.Color,
		WriteMask: colorWriteMask(cb.WriteMask),
	}
	if cb.Enabled {
		s.Target.Blend = &wgpu.BlendState{
			Color: component(cb.Color),
			Alpha: component(cb.Alpha),
		}
		s.BlendConstant = BlendConstant(cb)
	}
	return s, nil
}

// BlendConstant returns the dynamic blend constant for cb. When any
// factor reads the constant alpha the alpha is splatted to every channel.
func BlendConstant(cb renderpass.ColorBlend) wgpu.Color {
	k := cb.Constant
	for _, f := range []renderpass.BlendFactor{cb.Color.Src, cb.Color.Dst, cb.Alpha.Src, cb.Alpha.Dst} {
		if f == renderpass.BlendConstantAlpha || f == renderpass.BlendOneMinusConstantAlpha {
			a := float64(k[3])
			return wgpu.Color{R: a, G: a, B: a, A: a}
		}
	}
	return wgpu.Color{R: float64(k[0]), G: float64(k[1]), B: float64(k[2]), A: float64(k[3])}
}

func disabledFace() wgpu.StencilFaceState {
	return wgpu.StencilFaceState{
		Compare:     wgpu.CompareFunctionAlways,
		FailOp:      wgpu.StencilOperationKeep,
		DepthFailOp: wgpu.StencilOperationKeep,
		PassOp:      wgpu.StencilOperationKeep,
	}
}

func face(f renderpass.StencilFace) wgpu.StencilFaceState {
	return wgpu.StencilFaceState{
		Compare:     CompareFunctions[f.Compare],
		FailOp:      StencilOperations[f.FailOp],
		DepthFailOp: StencilOperations[f.DepthFailOp],
		PassOp:      StencilOperations[f.PassOp],
	}
}

func component(c renderpass.BlendComponent) wgpu.BlendComponent {
	return wgpu.BlendComponent{
		Operation: BlendOperations[c.Op],
		SrcFactor: BlendFactors[c.Src],
		DstFactor: BlendFactors[c.Dst],
	}
}

func colorWriteMask(m renderpass.ColorWriteMask) wgpu.ColorWriteMask {
	var out wgpu.ColorWriteMask
	if m&renderpass.ColorWriteRed != 0 {
		out |= wgpu.ColorWriteMaskRed
	}
	if m&renderpass.ColorWriteGreen != 0 {
		out |= wgpu.ColorWriteMaskGreen
	}
	if m&renderpass.ColorWriteBlue != 0 {
		out |= wgpu.ColorWriteMaskBlue
	}
	if m&renderpass.ColorWriteAlpha != 0 {
		out |= wgpu.ColorWriteMaskAlpha
	}
	return out
}
