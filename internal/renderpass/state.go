package renderpass

import "fmt"

// Primitive is the primitive topology of a pass.
type Primitive uint8

const (
	// PrimitiveTriangles draws filled triangle lists.
	PrimitiveTriangles Primitive = iota
	// PrimitiveLines draws line lists.
	PrimitiveLines
	// PrimitivePoints draws point lists.
	PrimitivePoints
)

// String returns the topology name.
func (p Primitive) String() string {
	switch p {
	case PrimitiveTriangles:
		return "triangles"
	case PrimitiveLines:
		return "lines"
	case PrimitivePoints:
		return "points"
	default:
		return fmt.Sprintf("Primitive(%d)", p)
	}
}

// CullMode selects which triangle faces are discarded.
type CullMode uint8

const (
	CullNone CullMode = iota
	CullBack
	CullFront
)

// String returns the cull mode name.
func (c CullMode) String() string {
	switch c {
	case CullNone:
		return "none"
	case CullBack:
		return "back"
	case CullFront:
		return "front"
	default:
		return fmt.Sprintf("CullMode(%d)", c)
	}
}

// FrontFace is the winding order of front-facing triangles.
type FrontFace uint8

const (
	FrontCCW FrontFace = iota
	FrontCW
)

// String returns the winding name.
func (f FrontFace) String() string {
	if f == FrontCW {
		return "cw"
	}
	return "ccw"
}

// CompareOp is a depth or stencil comparison function. For depth the
// incoming fragment value is the left operand.
type CompareOp uint8

const (
	CompareNever CompareOp = iota
	CompareLess
	CompareEqual
	CompareLessEqual
	CompareGreater
	CompareNotEqual
	CompareGreaterEqual
	CompareAlways
)

var compareNames = [...]string{
	CompareNever:        "never",
	CompareLess:         "less",
	CompareEqual:        "equal",
	CompareLessEqual:    "lequal",
	CompareGreater:      "greater",
	CompareNotEqual:     "notequal",
	CompareGreaterEqual: "gequal",
	CompareAlways:       "always",
}

// String returns the short GL-style name, e.g. "lequal".
func (c CompareOp) String() string {
	if int(c) < len(compareNames) {
		return compareNames[c]
	}
	return fmt.Sprintf("CompareOp(%d)", c)
}

// Test evaluates a compare b.
func (c CompareOp) Test(a, b float32) bool {
	switch c {
	case CompareNever:
		return false
	case CompareLess:
		return a < b
	case CompareEqual:
		return a == b
	case CompareLessEqual:
		return a <= b
	case CompareGreater:
		return a > b
	case CompareNotEqual:
		return a != b
	case CompareGreaterEqual:
		return a >= b
	default:
		return true
	}
}

// StencilOp is the action applied to a stencil value.
type StencilOp uint8

const (
	StencilKeep StencilOp = iota
	StencilZero
	StencilReplace
	StencilIncrement
	StencilDecrement
	StencilInvert
)

var stencilOpNames = [...]string{
	StencilKeep:      "keep",
	StencilZero:      "zero",
	StencilReplace:   "replace",
	StencilIncrement: "incr",
	StencilDecrement: "decr",
	StencilInvert:    "invert",
}

// String returns the op name.
func (s StencilOp) String() string {
	if int(s) < len(stencilOpNames) {
		return stencilOpNames[s]
	}
	return fmt.Sprintf("StencilOp(%d)", s)
}

// Apply returns the new stencil value for current under reference ref.
// Increment and decrement clamp.
func (s StencilOp) Apply(current, ref uint8) uint8 {
	switch s {
	case StencilZero:
		return 0
	case StencilReplace:
		return ref
	case StencilIncrement:
		if current == 0xff {
			return current
		}
		return current + 1
	case StencilDecrement:
		if current == 0 {
			return current
		}
		return current - 1
	case StencilInvert:
		return ^current
	default:
		return current
	}
}

// BlendFactor is a source or destination blend weight.
type BlendFactor uint8

const (
	BlendZero BlendFactor = iota
	BlendOne
	BlendSrcAlpha
	BlendOneMinusSrcAlpha
	BlendDstAlpha
	BlendOneMinusDstAlpha
	BlendConstantColor
	BlendOneMinusConstantColor
	BlendConstantAlpha
	BlendOneMinusConstantAlpha
)

var blendFactorNames = [...]string{
	BlendZero:                  "zero",
	BlendOne:                   "one",
	BlendSrcAlpha:              "src_alpha",
	BlendOneMinusSrcAlpha:      "one_minus_src_alpha",
	BlendDstAlpha:              "dst_alpha",
	BlendOneMinusDstAlpha:      "one_minus_dst_alpha",
	BlendConstantColor:         "constant_color",
	BlendOneMinusConstantColor: "one_minus_constant_color",
	BlendConstantAlpha:         "constant_alpha",
	BlendOneMinusConstantAlpha: "one_minus_constant_alpha",
}

// String returns the factor name.
func (f BlendFactor) String() string {
	if int(f) < len(blendFactorNames) {
		return blendFactorNames[f]
	}
	return fmt.Sprintf("BlendFactor(%d)", f)
}

// BlendOp combines weighted source and destination values.
type BlendOp uint8

const (
	BlendAdd BlendOp = iota
	BlendSubtract
	BlendReverseSubtract
	BlendMin
	BlendMax
)

// String returns the equation name.
func (o BlendOp) String() string {
	switch o {
	case BlendAdd:
		return "add"
	case BlendSubtract:
		return "subtract"
	case BlendReverseSubtract:
		return "reverse_subtract"
	case BlendMin:
		return "min"
	case BlendMax:
		return "max"
	default:
		return fmt.Sprintf("BlendOp(%d)", o)
	}
}

// ColorWriteMask selects which color channels a pass writes.
type ColorWriteMask uint8

const (
	ColorWriteRed ColorWriteMask = 1 << iota
	ColorWriteGreen
	ColorWriteBlue
	ColorWriteAlpha

	ColorWriteNone ColorWriteMask = 0
	ColorWriteAll                 = ColorWriteRed | ColorWriteGreen | ColorWriteBlue | ColorWriteAlpha
)

// String returns the enabled channels, e.g. "rgba" or "none".
func (m ColorWriteMask) String() string {
	if m == ColorWriteNone {
		return "none"
	}
	b := make([]byte, 0, 4)
	for i, c := range "rgba" {
		if m&(1<<i) != 0 {
			b = append(b, byte(c))
		}
	}
	return string(b)
}
