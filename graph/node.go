package graph

import (
	"github.com/gogpu/vsgbridge/extarray"
)

// Handle addresses a node in a Graph. The zero value is Nil.
type Handle uint32

// Nil is the invalid handle.
const Nil Handle = 0

// Valid reports whether h is not Nil.
func (h Handle) Valid() bool { return h != Nil }

// Sphere is a bounding sphere.
type Sphere struct {
	Center [3]float64
	Radius float64
}

// LODChild is a child of a LOD node, shown while the node covers at least
// MinScreenRatio of the screen height.
type LODChild struct {
	MinScreenRatio float64
	Child          Handle
}

// LightType identifies a light source.
type LightType uint8

// Light types, numbered as the host sends them.
const (
	LightPoint LightType = iota
	LightDirectional
	LightSpot
	LightAmbient
)

var lightNames = [...]string{
	LightPoint:       "Point",
	LightDirectional: "Directional",
	LightSpot:        "Spot",
	LightAmbient:     "Ambient",
}

// String returns the light type name.
func (t LightType) String() string {
	if int(t) < len(lightNames) {
		return lightNames[t]
	}
	return "Unknown"
}

// Light is the payload of a Light node. Angles are half-angles in degrees.
type Light struct {
	Type       LightType
	Color      [4]float32
	Intensity  float32
	Position   [3]float32
	Direction  [3]float32
	InnerAngle float32
	OuterAngle float32
	// EyeFrame places the light in eye coordinates instead of the
	// local frame.
	EyeFrame bool
}

// Meta is one named metadata value. Floats is nil for string values.
type Meta struct {
	Name   string
	Text   string
	Floats *extarray.Array
}

// Draw is the payload of Geometry and VertexIndexDraw nodes.
type Draw struct {
	// Arrays are the vertex attribute arrays in binding order.
	Arrays  []*extarray.Array
	Indices *extarray.Array

	IndexCount    uint32
	InstanceCount uint32
	FirstIndex    uint32
	VertexOffset  int32
	FirstInstance uint32
}

// Node is one scene graph node. Which fields are meaningful depends on
// Kind.
type Node struct {
	Kind Kind
	Meta []Meta

	Children []Handle
	LODs     []LODChild

	// Matrix is the column-major local transform of a Transform node.
	Matrix [16]float64
	Bound  Sphere
	Light  Light
	Draw   *Draw

	StateCommands []Command
	Commands      []Command
}

// Identity is the 4x4 identity matrix in column-major order.
var Identity = [16]float64{
	1, 0, 0, 0,
	0, 1, 0, 0,
	0, 0, 1, 0,
	0, 0, 0, 1,
}

// MetaValue returns the metadata entry with the given name.
func (n *Node) MetaValue(name string) (Meta, bool) {
	for _, m := range n.Meta {
		if m.Name == name {
			return m, true
		}
	}
	return Meta{}, false
}

// SetMeta adds or replaces a metadata entry. A replaced entry is
// returned so its array can be released; it is no longer reachable from
// the graph.
func (n *Node) SetMeta(m Meta) (old Meta, replaced bool) {
	for i := range n.Meta {
		if n.Meta[i].Name == m.Name {
			old = n.Meta[i]
			n.Meta[i] = m
			return old, true
		}
	}
	n.Meta = append(n.Meta, m)
	return Meta{}, false
}
