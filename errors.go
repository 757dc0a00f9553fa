package vsgbridge

import (
	"errors"
	"fmt"

	"github.com/gogpu/vsgbridge/graph"
)

// Session errors.
var (
	// ErrSessionActive is returned by BeginExport while a session is open.
	ErrSessionActive = errors.New("vsgbridge: export session already active")

	// ErrNoSession is returned by every add or bind operation outside an
	// open session.
	ErrNoSession = errors.New("vsgbridge: no active export session")

	// ErrStackUnderflow is returned by EndNode when only the root remains.
	ErrStackUnderflow = errors.New("vsgbridge: node stack underflow")

	// ErrIncompatibleHead is returned when the stack head cannot accept the
	// node or command being added.
	ErrIncompatibleHead = errors.New("vsgbridge: incompatible stack head")

	// ErrNoActiveStateGroup is returned when a state command targets the
	// active state group and none is open.
	ErrNoActiveStateGroup = errors.New("vsgbridge: no active state group")

	// ErrNoActivePipeline is returned by CreateBindDescriptorSet before any
	// pipeline was bound.
	ErrNoActivePipeline = errors.New("vsgbridge: no active pipeline")

	// ErrNoDescriptors is returned by CreateBindDescriptorSet with an empty
	// descriptor accumulator.
	ErrNoDescriptors = errors.New("vsgbridge: no pending descriptors")

	// ErrNoCommandsHead is returned when a command targets the commands node
	// and the stack head is not one.
	ErrNoCommandsHead = errors.New("vsgbridge: stack head is not a commands node")

	// ErrEmptyMesh is returned for mesh or vertex buffer data without
	// vertices.
	ErrEmptyMesh = errors.New("vsgbridge: mesh has no vertices")

	// ErrEmptyGraph is returned by EndExport when no node was added.
	ErrEmptyGraph = errors.New("vsgbridge: nothing to export")
)

// StructuralError reports an operation rejected by the shape of the graph
// under construction.
type StructuralError struct {
	Op   string
	Head graph.Kind
	Err  error
}

func (e *StructuralError) Error() string {
	return fmt.Sprintf("vsgbridge: %s under %v: %v", e.Op, e.Head, e.Err)
}

func (e *StructuralError) Unwrap() error { return e.Err }
