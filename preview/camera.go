package preview

import (
	"github.com/chewxy/math32"

	"github.com/gogpu/vsgbridge/graph"
)

// Home camera framing, relative to the bound radius.
const (
	homeFOV         = 30
	homeDistance    = 3.5
	homeFarDistance = 4.5
	nearFarRatio    = 0.001
)

// Camera is a perspective camera. FOV is the vertical field of view in
// degrees.
type Camera struct {
	Position [3]float32
	LookAt   [3]float32
	Up       [3]float32
	FOV      float32
	Near     float32
	Far      float32
}

// HomeCamera frames a bounding sphere: the eye looks along +Y at the
// centre from 3.5 radii away with Z up.
func HomeCamera(b graph.Sphere) Camera {
	c := [3]float32{float32(b.Center[0]), float32(b.Center[1]), float32(b.Center[2])}
	r := float32(b.Radius)
	if r <= 0 {
		r = 1
	}
	return Camera{
		Position: [3]float32{c[0], c[1] - r*homeDistance, c[2]},
		LookAt:   c,
		Up:       [3]float32{0, 0, 1},
		FOV:      homeFOV,
		Near:     nearFarRatio * r * homeFarDistance,
		Far:      r * homeFarDistance,
	}
}

// withDefaults fills a partially specified caller camera.
func (c Camera) withDefaults() Camera {
	if c.FOV <= 0 || c.FOV >= 180 {
		c.FOV = homeFOV
	}
	if c.Up == ([3]float32{}) {
		c.Up = [3]float32{0, 1, 0}
	}
	if c.Far <= 0 {
		c.Far = 1000
	}
	if c.Near <= 0 || c.Near >= c.Far {
		c.Near = c.Far * nearFarRatio
	}
	return c
}

// View returns the column-major world-to-eye matrix.
func (c Camera) View() [16]float32 {
	f := normalize(sub(c.LookAt, c.Position))
	s := normalize(cross(f, c.Up))
	u := cross(s, f)
	e := c.Position
	return [16]float32{
		s[0], u[0], -f[0], 0,
		s[1], u[1], -f[1], 0,
		s[2], u[2], -f[2], 0,
		-dot(s, e), -dot(u, e), dot(f, e), 1,
	}
}

// Projection returns the column-major perspective matrix for the given
// aspect ratio, mapping depth to [0, 1].
func (c Camera) Projection(aspect float32) [16]float32 {
	if aspect <= 0 {
		aspect = 1
	}
	fy := 1 / math32.Tan(c.FOV*math32.Pi/360)
	n, f := c.Near, c.Far
	return [16]float32{
		fy / aspect, 0, 0, 0,
		0, fy, 0, 0,
		0, 0, f / (n - f), -1,
		0, 0, n * f / (n - f), 0,
	}
}

func sub(a, b [3]float32) [3]float32 { return [3]float32{a[0] - b[0], a[1] - b[1], a[2] - b[2]} }
func dot(a, b [3]float32) float32    { return a[0]*b[0] + a[1]*b[1] + a[2]*b[2] }

func cross(a, b [3]float32) [3]float32 {
	return [3]float32{
		a[1]*b[2] - a[2]*b[1],
		a[2]*b[0] - a[0]*b[2],
		a[0]*b[1] - a[1]*b[0],
	}
}

func normalize(v [3]float32) [3]float32 {
	l := math32.Sqrt(dot(v, v))
	if l == 0 {
		return v
	}
	return [3]float32{v[0] / l, v[1] / l, v[2] / l}
}
