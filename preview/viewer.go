// Package preview opens an exported scene file and presents it from a
// camera.
//
// The viewer loads a file with the serial package, rebuilds the graph,
// computes its world bound and derives view and projection matrices. The
// actual drawing is delegated to a Presenter so the preview can run
// against a window, an offscreen target or, by default, a log.
package preview

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/gogpu/gpucontext"

	"github.com/gogpu/vsgbridge/extarray"
	"github.com/gogpu/vsgbridge/graph"
	"github.com/gogpu/vsgbridge/serial"
)

// Default window size when no window is attached.
const (
	DefaultWidth  = 800
	DefaultHeight = 600
)

// ErrEmptyScene is returned when a file contains nothing with a bound.
var ErrEmptyScene = errors.New("preview: scene has no drawable content")

// Stats counts what a frame contains.
type Stats struct {
	Nodes    int
	Draws    int
	Vertices int
	Lights   int
}

// Frame is one view of a loaded scene.
type Frame struct {
	Path   string
	Graph  *graph.Graph
	Root   graph.Handle
	Camera Camera

	View       [16]float32
	Projection [16]float32
	Width      int
	Height     int

	Bound graph.Sphere
	Stats Stats
}

// Presenter shows a frame.
type Presenter interface {
	Present(ctx context.Context, f *Frame) error
}

// LogPresenter reports frames through the package logger.
type LogPresenter struct{}

// Present implements Presenter.
func (LogPresenter) Present(_ context.Context, f *Frame) error {
	slogger().Info("preview frame",
		"path", f.Path,
		"size", fmt.Sprintf("%dx%d", f.Width, f.Height),
		"nodes", f.Stats.Nodes,
		"draws", f.Stats.Draws,
		"vertices", f.Stats.Vertices,
		"center", f.Bound.Center,
		"radius", f.Bound.Radius,
		"eye", f.Camera.Position,
	)
	return nil
}

// Viewer loads scene files and hands them to a Presenter.
type Viewer struct {
	// Presenter defaults to LogPresenter.
	Presenter Presenter
	// Window supplies the surface size; nil uses DefaultWidth by
	// DefaultHeight.
	Window gpucontext.WindowProvider
}

// Run loads path and presents it once. A nil camera frames the whole
// scene.
func (v *Viewer) Run(ctx context.Context, path string, cam *Camera) error {
	f, err := v.Load(path, cam)
	if err != nil {
		return err
	}
	defer f.Graph.Free()

	p := v.Presenter
	if p == nil {
		p = LogPresenter{}
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := p.Present(ctx, f); err != nil {
		return fmt.Errorf("preview: present %s: %w", path, err)
	}
	if v.Window != nil {
		v.Window.RequestRedraw()
	}
	return nil
}

// Load reads path and prepares a frame without presenting it. The caller
// owns the returned graph.
func (v *Viewer) Load(path string, cam *Camera) (*Frame, error) {
	doc, err := serial.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("preview: %w", err)
	}
	g, root, err := doc.Graph()
	if err != nil {
		return nil, fmt.Errorf("preview: %s: %w", path, err)
	}

	f := &Frame{Path: path, Graph: g, Root: root}
	b, ok := sceneBound(g, root, &f.Stats)
	if cam == nil && !ok {
		g.Free()
		return nil, fmt.Errorf("%w: %s", ErrEmptyScene, path)
	}
	f.Bound = b

	if cam != nil {
		f.Camera = cam.withDefaults()
	} else {
		f.Camera = HomeCamera(b)
	}

	f.Width, f.Height = DefaultWidth, DefaultHeight
	if v.Window != nil {
		if w, h := v.Window.Size(); w > 0 && h > 0 {
			f.Width, f.Height = w, h
		}
	}
	f.View = f.Camera.View()
	f.Projection = f.Camera.Projection(float32(f.Width) / float32(f.Height))

	slogger().Debug("preview loaded", "path", path, "nodes", f.Stats.Nodes, "radius", b.Radius)
	return f, nil
}

// box is an axis-aligned accumulator in world space.
type box struct {
	min, max [3]float64
	valid    bool
}

func (b *box) add(p [3]float64) {
	if !b.valid {
		b.min, b.max, b.valid = p, p, true
		return
	}
	for i := range 3 {
		b.min[i] = math.Min(b.min[i], p[i])
		b.max[i] = math.Max(b.max[i], p[i])
	}
}

func (b *box) sphere() graph.Sphere {
	var s graph.Sphere
	var d2 float64
	for i := range 3 {
		s.Center[i] = (b.min[i] + b.max[i]) / 2
		d := b.max[i] - b.min[i]
		d2 += d * d
	}
	s.Radius = math.Sqrt(d2) / 2
	return s
}

// sceneBound walks the graph from root with accumulated transforms. Node
// bounds and vec3 vertex positions both contribute. A shared subtree is
// visited once per path; a node reached again below itself is skipped.
func sceneBound(g *graph.Graph, root graph.Handle, st *Stats) (graph.Sphere, bool) {
	var b box
	onPath := make(map[graph.Handle]bool)
	var visit func(h graph.Handle, m [16]float64)
	visit = func(h graph.Handle, m [16]float64) {
		n := g.Node(h)
		if n == nil || onPath[h] {
			return
		}
		onPath[h] = true
		defer delete(onPath, h)
		st.Nodes++
		switch n.Kind {
		case graph.KindTransform:
			m = mul(m, n.Matrix)
		case graph.KindLight:
			st.Lights++
		}
		if n.Kind.HasBound() && n.Bound.Radius > 0 {
			c := transform(m, n.Bound.Center)
			r := n.Bound.Radius * maxScale(m)
			b.add([3]float64{c[0] - r, c[1] - r, c[2] - r})
			b.add([3]float64{c[0] + r, c[1] + r, c[2] + r})
		}
		if n.Draw != nil {
			st.Draws++
			if len(n.Draw.Arrays) > 0 {
				st.Vertices += addPositions(&b, m, n.Draw.Arrays[0])
			}
		}
		for _, c := range n.Commands {
			switch c := c.(type) {
			case *graph.BindVertexBuffersCommand:
				if c.FirstBinding == 0 && len(c.Arrays) > 0 {
					st.Vertices += addPositions(&b, m, c.Arrays[0])
				}
			case *graph.DrawIndexedCommand:
				st.Draws++
			}
		}
		for _, c := range g.Subnodes(h) {
			visit(c, m)
		}
	}
	visit(root, graph.Identity)
	if !b.valid {
		return graph.Sphere{}, false
	}
	return b.sphere(), true
}

func addPositions(b *box, m [16]float64, a *extarray.Array) int {
	if a == nil || a.Type() != extarray.TypeVec3 {
		return 0
	}
	v := a.Float32s()
	for i := 0; i+2 < len(v); i += 3 {
		b.add(transform(m, [3]float64{float64(v[i]), float64(v[i+1]), float64(v[i+2])}))
	}
	return len(v) / 3
}

// mul returns a*b for column-major matrices.
func mul(a, b [16]float64) [16]float64 {
	var r [16]float64
	for c := range 4 {
		for row := range 4 {
			var s float64
			for k := range 4 {
				s += a[k*4+row] * b[c*4+k]
			}
			r[c*4+row] = s
		}
	}
	return r
}

func transform(m [16]float64, p [3]float64) [3]float64 {
	return [3]float64{
		m[0]*p[0] + m[4]*p[1] + m[8]*p[2] + m[12],
		m[1]*p[0] + m[5]*p[1] + m[9]*p[2] + m[13],
		m[2]*p[0] + m[6]*p[1] + m[10]*p[2] + m[14],
	}
}

// maxScale is the largest column length of the upper 3x3.
func maxScale(m [16]float64) float64 {
	var s float64
	for c := range 3 {
		x, y, z := m[c*4], m[c*4+1], m[c*4+2]
		s = math.Max(s, math.Sqrt(x*x+y*y+z*z))
	}
	return s
}
