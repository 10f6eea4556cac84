package scene

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Camera is a perspective camera.
type Camera struct {
	Position mgl32.Vec3
	Target   mgl32.Vec3
	Up       mgl32.Vec3

	// FovY is the vertical field of view in degrees.
	FovY float32
	Near float32
	Far  float32
}

// DefaultCamera looks at the origin from +z.
func DefaultCamera() *Camera {
	return &Camera{
		Position: mgl32.Vec3{0, 0, 5},
		Up:       mgl32.Vec3{0, 1, 0},
		FovY:     60,
		Near:     0.1,
		Far:      100,
	}
}

// View returns the world to eye transform.
func (c *Camera) View() mgl32.Mat4 {
	return mgl32.LookAtV(c.Position, c.Target, c.Up)
}

// Projection returns the eye to clip transform. With reverse set, NDC
// depth is mirrored so the near plane maps to window depth 1 and the far
// plane to 0.
func (c *Camera) Projection(aspect float32, reverse bool) mgl32.Mat4 {
	p := mgl32.Perspective(mgl32.DegToRad(c.FovY), aspect, c.Near, c.Far)
	if reverse {
		p = mgl32.Scale3D(1, 1, -1).Mul4(p)
	}
	return p
}

// ViewProjection returns Projection * View.
func (c *Camera) ViewProjection(aspect float32, reverse bool) mgl32.Mat4 {
	return c.Projection(aspect, reverse).Mul4(c.View())
}

// Orbit rotates the camera around its target by yaw and pitch radians.
func (c *Camera) Orbit(yaw, pitch float32) {
	offset := c.Position.Sub(c.Target)
	q := mgl32.QuatRotate(yaw, c.Up)
	if right := c.Up.Cross(offset); right.Len() > 0 {
		q = q.Mul(mgl32.QuatRotate(pitch, right.Normalize()))
	}
	c.Position = c.Target.Add(q.Rotate(offset))
}

// Dolly moves the camera toward its target by the given fraction of the
// current distance. The camera never passes the near plane.
func (c *Camera) Dolly(fraction float32) {
	offset := c.Position.Sub(c.Target)
	next := offset.Mul(1 - fraction)
	if next.Len() < c.Near*2 {
		return
	}
	c.Position = c.Target.Add(next)
}

// Light is a directional light.
type Light struct {
	Direction mgl32.Vec3
	Color     mgl32.Vec3
}

// Lighting is the light list and ambient term of a scene.
type Lighting struct {
	Lights  []Light
	Ambient mgl32.Vec3
}

// Shade returns color lit by l for a surface facing normal.
func (l Lighting) Shade(color mgl32.Vec4, normal mgl32.Vec3) mgl32.Vec4 {
	if len(l.Lights) == 0 {
		return color
	}
	lit := l.Ambient
	for _, light := range l.Lights {
		d := normal.Dot(light.Direction.Normalize().Mul(-1))
		if d > 0 {
			lit = lit.Add(light.Color.Mul(d))
		}
	}
	return mgl32.Vec4{
		mgl32.Clamp(color[0]*lit[0], 0, 1),
		mgl32.Clamp(color[1]*lit[1], 0, 1),
		mgl32.Clamp(color[2]*lit[2], 0, 1),
		color[3],
	}
}
