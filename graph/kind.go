// Package graph is the retained scene graph the bridge builds.
//
// Nodes live in an arena (Graph) and are addressed by Handle. A node's
// Kind decides which attachments it accepts: generic children, LOD
// children, state commands or draw commands. Leaf data (vertex arrays,
// indices, uniform values, texture pixels) is held as extarray.Array
// values that may borrow host memory; CollectLeaves and ReleaseLeaves
// walk everything reachable from a root to find them.
package graph

// Kind identifies the type of a scene graph node.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindGroup
	KindTransform
	KindCull
	KindCullGroup
	KindLOD
	KindLight
	KindStateGroup
	KindCommands
	KindGeometry
	KindVertexIndexDraw
)

var kindNames = [...]string{
	KindInvalid:         "Invalid",
	KindGroup:           "Group",
	KindTransform:       "Transform",
	KindCull:            "Cull",
	KindCullGroup:       "CullGroup",
	KindLOD:             "LOD",
	KindLight:           "Light",
	KindStateGroup:      "StateGroup",
	KindCommands:        "Commands",
	KindGeometry:        "Geometry",
	KindVertexIndexDraw: "VertexIndexDraw",
}

// String returns the kind name.
func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "Unknown"
}

// ParseKind returns the kind with the given name.
func ParseKind(name string) (Kind, bool) {
	for k, n := range kindNames {
		if n == name && Kind(k) != KindInvalid {
			return Kind(k), true
		}
	}
	return KindInvalid, false
}

// Role is the way a node or command is attached to its parent.
type Role uint8

const (
	// RoleChild is a plain child node.
	RoleChild Role = iota
	// RoleLODChild is a child selected by screen ratio.
	RoleLODChild
	// RoleStateCommand is a state command of a state group.
	RoleStateCommand
	// RoleCommand is an entry of a command list.
	RoleCommand
)

var roleNames = [...]string{
	RoleChild:        "child",
	RoleLODChild:     "LOD child",
	RoleStateCommand: "state command",
	RoleCommand:      "command",
}

// String returns the role name.
func (r Role) String() string {
	if int(r) < len(roleNames) {
		return roleNames[r]
	}
	return "unknown"
}

// Accepts reports whether a node of kind k takes attachments in role r.
func (k Kind) Accepts(r Role) bool {
	switch r {
	case RoleChild:
		switch k {
		case KindGroup, KindTransform, KindCull, KindCullGroup, KindStateGroup:
			return true
		}
	case RoleLODChild:
		return k == KindLOD
	case RoleStateCommand:
		return k == KindStateGroup
	case RoleCommand:
		return k == KindCommands
	}
	return false
}

// MaxChildren returns the child limit for RoleChild attachments, or -1
// when unlimited. Kinds that take no children return 0.
func (k Kind) MaxChildren() int {
	switch {
	case k == KindCull:
		return 1
	case k.Accepts(RoleChild):
		return -1
	default:
		return 0
	}
}

// HasBound reports whether the kind carries a bounding sphere.
func (k Kind) HasBound() bool {
	return k == KindCull || k == KindCullGroup || k == KindLOD
}

// IsDraw reports whether the kind draws geometry itself.
func (k Kind) IsDraw() bool {
	return k == KindGeometry || k == KindVertexIndexDraw
}
