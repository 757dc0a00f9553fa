package graph

import (
	"github.com/gogpu/vsgbridge/extarray"
	"github.com/gogpu/vsgbridge/pipeline"
)

// CommandType identifies the type of a command.
type CommandType uint8

const (
	CmdBindPipeline      CommandType = iota // Bind a graphics pipeline
	CmdBindDescriptorSet                    // Bind a descriptor set
	CmdBindVertexBuffers                    // Bind vertex arrays
	CmdBindIndexBuffer                      // Bind an index array
	CmdDrawIndexed                          // Issue an indexed draw
)

var commandTypeNames = [...]string{
	CmdBindPipeline:      "BindPipeline",
	CmdBindDescriptorSet: "BindDescriptorSet",
	CmdBindVertexBuffers: "BindVertexBuffers",
	CmdBindIndexBuffer:   "BindIndexBuffer",
	CmdDrawIndexed:       "DrawIndexed",
}

// String returns the string representation of a CommandType.
func (c CommandType) String() string {
	if int(c) < len(commandTypeNames) {
		return commandTypeNames[c]
	}
	return "Unknown"
}

// Command is implemented by all command types. Commands are stored by
// pointer so a cached command attached in several places stays one
// instance.
type Command interface {
	// Type returns the CommandType for this command.
	Type() CommandType
}

// BindPipelineCommand binds a graphics pipeline.
type BindPipelineCommand struct {
	Pipeline *pipeline.Pipeline
}

// Type implements Command.
func (*BindPipelineCommand) Type() CommandType { return CmdBindPipeline }

// BindDescriptorSetCommand binds a descriptor set against the layout of
// the pipeline that was active when it was created.
type BindDescriptorSetCommand struct {
	Pipeline *pipeline.Pipeline
	FirstSet uint32
	Set      *DescriptorSet
}

// Type implements Command.
func (*BindDescriptorSetCommand) Type() CommandType { return CmdBindDescriptorSet }

// BindVertexBuffersCommand binds vertex arrays to consecutive bindings.
type BindVertexBuffersCommand struct {
	FirstBinding uint32
	Arrays       []*extarray.Array
}

// Type implements Command.
func (*BindVertexBuffersCommand) Type() CommandType { return CmdBindVertexBuffers }

// BindIndexBufferCommand binds an index array. The array type (ushort or
// uint) selects the index width.
type BindIndexBufferCommand struct {
	Indices *extarray.Array
}

// Type implements Command.
func (*BindIndexBufferCommand) Type() CommandType { return CmdBindIndexBuffer }

// DrawIndexedCommand issues an indexed draw.
type DrawIndexedCommand struct {
	IndexCount    uint32
	InstanceCount uint32
	FirstIndex    uint32
	VertexOffset  int32
	FirstInstance uint32
}

// Type implements Command.
func (*DrawIndexedCommand) Type() CommandType { return CmdDrawIndexed }
