// Package extarray provides typed, zero-copy array views over memory owned
// by the host application.
//
// An Array is either borrowed (the bytes belong to the caller and must
// outlive the view until Release) or owned (allocated by this module, for
// example narrowed index buffers). Free never touches borrowed memory, so
// graph teardown is safe regardless of release ordering.
package extarray

import (
	"errors"
	"fmt"
	"math"
	"sync/atomic"
	"unsafe"
)

// Errors returned by array constructors.
var (
	ErrInvalidType  = errors.New("extarray: invalid element type")
	ErrInvalidDims  = errors.New("extarray: invalid dimensions")
	ErrShortBuffer  = errors.New("extarray: buffer shorter than dimensions require")
	ErrMisaligned   = errors.New("extarray: buffer length is not a multiple of the element size")
	ErrIndexRange   = errors.New("extarray: index does not fit the requested width")
	ErrNotFloatType = errors.New("extarray: element type is not a float type")
)

// Array is a typed view over a contiguous byte range.
type Array struct {
	typ      Type
	data     []byte
	width    int
	height   int
	depth    int
	borrowed bool
	released atomic.Bool
	freed    atomic.Bool
}

// Borrow wraps caller memory as a width x height x depth array of t.
// The bytes are not copied. data may be longer than required (mip chains
// trail the base level).
func Borrow(t Type, data []byte, width, height, depth int) (*Array, error) {
	if !t.Valid() {
		return nil, ErrInvalidType
	}
	if width <= 0 || height <= 0 || depth <= 0 {
		return nil, fmt.Errorf("%w: %dx%dx%d", ErrInvalidDims, width, height, depth)
	}
	need := width * height * depth * t.Size()
	if len(data) < need {
		return nil, fmt.Errorf("%w: have %d bytes, need %d", ErrShortBuffer, len(data), need)
	}
	return &Array{typ: t, data: data, width: width, height: height, depth: depth, borrowed: true}, nil
}

// BorrowBytes wraps caller memory as a one-dimensional array of t.
func BorrowBytes(t Type, data []byte) (*Array, error) {
	if !t.Valid() {
		return nil, ErrInvalidType
	}
	if len(data)%t.Size() != 0 {
		return nil, ErrMisaligned
	}
	return &Array{typ: t, data: data, width: len(data) / t.Size(), height: 1, depth: 1, borrowed: true}, nil
}

// BorrowFloat32 wraps a float32 slice as an array of float vectors. The
// slice length must be a multiple of the component count of t.
func BorrowFloat32(t Type, v []float32) (*Array, error) {
	if !t.IsFloat() {
		return nil, ErrNotFloatType
	}
	if len(v)%t.Components() != 0 {
		return nil, ErrMisaligned
	}
	return &Array{
		typ:      t,
		data:     float32Bytes(v),
		width:    len(v) / t.Components(),
		height:   1,
		depth:    1,
		borrowed: true,
	}, nil
}

// BorrowUint32 wraps a uint32 slice without copying.
func BorrowUint32(v []uint32) *Array {
	var b []byte
	if len(v) > 0 {
		b = unsafe.Slice((*byte)(unsafe.Pointer(unsafe.SliceData(v))), len(v)*4)
	}
	return &Array{typ: TypeUint, data: b, width: len(v), height: 1, depth: 1, borrowed: true}
}

// New returns an owned array that takes data as its storage.
func New(t Type, data []byte, width, height, depth int) (*Array, error) {
	a, err := Borrow(t, data, width, height, depth)
	if err != nil {
		return nil, err
	}
	a.borrowed = false
	return a, nil
}

// NewBytes returns an owned one-dimensional array that takes data as its
// storage. Unlike New it accepts empty data.
func NewBytes(t Type, data []byte) (*Array, error) {
	a, err := BorrowBytes(t, data)
	if err != nil {
		return nil, err
	}
	a.borrowed = false
	return a, nil
}

// NewFloat32 returns an owned copy of v as an array of float vectors.
func NewFloat32(t Type, v []float32) (*Array, error) {
	cp := make([]float32, len(v))
	copy(cp, v)
	a, err := BorrowFloat32(t, cp)
	if err != nil {
		return nil, err
	}
	a.borrowed = false
	return a, nil
}

// Indices materializes a fresh owned index array from host index storage.
// With use32 false every index is narrowed to 16 bits; an index above
// 0xFFFF is an error.
func Indices(src []int32, use32 bool) (*Array, error) {
	if use32 {
		dst := make([]uint32, len(src))
		for i, v := range src {
			if v < 0 {
				return nil, fmt.Errorf("%w: index %d is %d", ErrIndexRange, i, v)
			}
			dst[i] = uint32(v)
		}
		a := BorrowUint32(dst)
		a.borrowed = false
		return a, nil
	}
	dst := make([]uint16, len(src))
	for i, v := range src {
		if v < 0 || v > math.MaxUint16 {
			return nil, fmt.Errorf("%w: index %d is %d", ErrIndexRange, i, v)
		}
		dst[i] = uint16(v)
	}
	var b []byte
	if len(dst) > 0 {
		b = unsafe.Slice((*byte)(unsafe.Pointer(unsafe.SliceData(dst))), len(dst)*2)
	}
	return &Array{typ: TypeUshort, data: b, width: len(dst), height: 1, depth: 1}, nil
}

// Type returns the element type.
func (a *Array) Type() Type { return a.typ }

// Len returns the number of elements (width * height * depth).
func (a *Array) Len() int { return a.width * a.height * a.depth }

// Width returns the first dimension.
func (a *Array) Width() int { return a.width }

// Height returns the second dimension.
func (a *Array) Height() int { return a.height }

// Depth returns the third dimension.
func (a *Array) Depth() int { return a.depth }

// Stride returns the element size in bytes.
func (a *Array) Stride() int { return a.typ.Size() }

// Borrowed reports whether the memory belongs to the caller.
func (a *Array) Borrowed() bool { return a.borrowed }

// Released reports whether Release has been called.
func (a *Array) Released() bool { return a.released.Load() }

// Bytes returns the underlying bytes, or nil once the array has been
// released or freed. The slice may extend past Len()*Stride().
func (a *Array) Bytes() []byte {
	if a.released.Load() || a.freed.Load() {
		return nil
	}
	return a.data
}

// Release drops the reference to borrowed memory so the caller may free
// it. It reports whether this call performed the release; subsequent calls
// are no-ops. Owned arrays are released the same way.
func (a *Array) Release() bool {
	if !a.released.CompareAndSwap(false, true) {
		return false
	}
	if a.borrowed {
		a.data = nil
	}
	return true
}

// Free drops owned storage. Borrowed memory is never touched; Free reports
// false for a borrowed array that was not released first, which indicates
// the caller's buffer was still referenced at teardown.
func (a *Array) Free() bool {
	if !a.freed.CompareAndSwap(false, true) {
		return true
	}
	if a.borrowed {
		ok := a.released.Load()
		a.data = nil
		return ok
	}
	a.data = nil
	return true
}

// Float32s returns the elements of a float array as a flat float32 slice
// without copying. It returns nil for other types or released arrays.
func (a *Array) Float32s() []float32 {
	b := a.Bytes()
	if !a.typ.IsFloat() || len(b) < 4 {
		return nil
	}
	n := a.Len() * a.typ.Components()
	return unsafe.Slice((*float32)(unsafe.Pointer(unsafe.SliceData(b))), n)
}

// Uint16s returns the elements of a ushort array without copying.
func (a *Array) Uint16s() []uint16 {
	b := a.Bytes()
	if a.typ != TypeUshort || len(b) < 2 {
		return nil
	}
	return unsafe.Slice((*uint16)(unsafe.Pointer(unsafe.SliceData(b))), a.Len())
}

// Uint32s returns the elements of a uint array without copying.
func (a *Array) Uint32s() []uint32 {
	b := a.Bytes()
	if a.typ != TypeUint || len(b) < 4 {
		return nil
	}
	return unsafe.Slice((*uint32)(unsafe.Pointer(unsafe.SliceData(b))), a.Len())
}

func float32Bytes(v []float32) []byte {
	if len(v) == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(unsafe.SliceData(v))), len(v)*4)
}
