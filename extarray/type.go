package extarray

// Type identifies the element layout of an Array.
type Type uint8

// Element types. Integer vectors are unsigned; signed and normalized
// variants share the same storage layout.
const (
	TypeInvalid Type = iota
	TypeUbyte
	TypeUbvec2
	TypeUbvec3
	TypeUbvec4
	TypeUshort
	TypeUsvec2
	TypeUsvec3
	TypeUsvec4
	TypeUint
	TypeUivec2
	TypeUivec3
	TypeUivec4
	TypeFloat
	TypeVec2
	TypeVec3
	TypeVec4
	// TypeBlock64 is one 64-bit compressed texel block (BC1, ETC2 RGB8).
	TypeBlock64
	// TypeBlock128 is one 128-bit compressed texel block (BC2-7, ETC2 RGBA8, EAC RG, ASTC).
	TypeBlock128
)

var typeInfo = [...]struct {
	name       string
	size       int
	components int
}{
	TypeInvalid:  {"invalid", 0, 0},
	TypeUbyte:    {"ubyte", 1, 1},
	TypeUbvec2:   {"ubvec2", 2, 2},
	TypeUbvec3:   {"ubvec3", 3, 3},
	TypeUbvec4:   {"ubvec4", 4, 4},
	TypeUshort:   {"ushort", 2, 1},
	TypeUsvec2:   {"usvec2", 4, 2},
	TypeUsvec3:   {"usvec3", 6, 3},
	TypeUsvec4:   {"usvec4", 8, 4},
	TypeUint:     {"uint", 4, 1},
	TypeUivec2:   {"uivec2", 8, 2},
	TypeUivec3:   {"uivec3", 12, 3},
	TypeUivec4:   {"uivec4", 16, 4},
	TypeFloat:    {"float", 4, 1},
	TypeVec2:     {"vec2", 8, 2},
	TypeVec3:     {"vec3", 12, 3},
	TypeVec4:     {"vec4", 16, 4},
	TypeBlock64:  {"block64", 8, 1},
	TypeBlock128: {"block128", 16, 1},
}

// Size returns the element size in bytes, or 0 for an invalid type.
func (t Type) Size() int {
	if int(t) >= len(typeInfo) {
		return 0
	}
	return typeInfo[t].size
}

// Components returns the number of scalar components per element.
func (t Type) Components() int {
	if int(t) >= len(typeInfo) {
		return 0
	}
	return typeInfo[t].components
}

// Valid reports whether t names a known element type.
func (t Type) Valid() bool {
	return t > TypeInvalid && int(t) < len(typeInfo)
}

// IsFloat reports whether the elements are 32-bit floats.
func (t Type) IsFloat() bool {
	return t >= TypeFloat && t <= TypeVec4
}

// String returns the element type name, as used in serialized files.
func (t Type) String() string {
	if int(t) >= len(typeInfo) {
		return "invalid"
	}
	return typeInfo[t].name
}

// TypeFromString returns the Type with the given name.
func TypeFromString(s string) (Type, bool) {
	for i := range typeInfo {
		if typeInfo[i].name == s && Type(i) != TypeInvalid {
			return Type(i), true
		}
	}
	return TypeInvalid, false
}

// UnsignedVector returns the integer vector type with the given component
// count and component width in bits (8, 16 or 32).
func UnsignedVector(components, bits int) Type {
	if components < 1 || components > 4 {
		return TypeInvalid
	}
	switch bits {
	case 8:
		return TypeUbyte + Type(components-1)
	case 16:
		return TypeUshort + Type(components-1)
	case 32:
		return TypeUint + Type(components-1)
	}
	return TypeInvalid
}

// FloatVector returns the 32-bit float vector type with the given
// component count.
func FloatVector(components int) Type {
	if components < 1 || components > 4 {
		return TypeInvalid
	}
	return TypeFloat + Type(components-1)
}
