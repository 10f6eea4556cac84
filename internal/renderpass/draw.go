package renderpass

// Override substitutes parts of a catalog pass for one draw.
type Override struct {
	// Shader replaces the pass shader when non-empty.
	Shader string

	// Constant replaces the blend constant when non-nil.
	Constant *[4]float32
}

// Descriptor is the ephemeral description of one draw submission. It is
// derived from a catalog entry and never written back.
type Descriptor struct {
	Pass     string
	Shader   string
	Pipeline Pipeline
	Begin    Hook
	End      Hook
}

// Draw builds a descriptor for rp with an optional override.
func Draw(rp Renderpass, o *Override) Descriptor {
	d := Descriptor{
		Pass:     rp.Name,
		Shader:   rp.Shader,
		Pipeline: rp.Pipeline,
		Begin:    rp.Begin,
		End:      rp.End,
	}
	if o == nil {
		return d
	}
	if o.Shader != "" {
		d.Shader = o.Shader
	}
	if o.Constant != nil {
		d.Pipeline.ColorBlend.Constant = *o.Constant
	}
	return d
}
