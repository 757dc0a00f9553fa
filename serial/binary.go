package serial

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"
)

// magic starts every binary document.
var magic = [4]byte{'V', 'S', 'G', 'B'}

// maxLen bounds every length prefix read from a file.
const maxLen = 1 << 30

// chunkLen is the largest allocation made ahead of the bytes it holds.
const chunkLen = 1 << 16

// writer appends little-endian values and keeps the first error.
type writer struct {
	w   *bufio.Writer
	err error
	buf [8]byte
}

func (w *writer) write(b []byte) {
	if w.err != nil {
		return
	}
	_, w.err = w.w.Write(b)
}

func (w *writer) u8(v uint8) { w.write([]byte{v}) }

func (w *writer) bool(v bool) {
	if v {
		w.u8(1)
	} else {
		w.u8(0)
	}
}

func (w *writer) u16(v uint16) {
	binary.LittleEndian.PutUint16(w.buf[:2], v)
	w.write(w.buf[:2])
}

func (w *writer) u32(v uint32) {
	binary.LittleEndian.PutUint32(w.buf[:4], v)
	w.write(w.buf[:4])
}

func (w *writer) i32(v int32) { w.u32(uint32(v)) } // #nosec G115 -- bit-preserving

func (w *writer) u64(v uint64) {
	binary.LittleEndian.PutUint64(w.buf[:8], v)
	w.write(w.buf[:8])
}

func (w *writer) f32(v float32) { w.u32(math.Float32bits(v)) }
func (w *writer) f64(v float64) { w.u64(math.Float64bits(v)) }

func (w *writer) length(n int) { w.u32(uint32(n)) } // #nosec G115 -- sections are far below 4 GiB

func (w *writer) bytes(b []byte) {
	w.length(len(b))
	w.write(b)
}

func (w *writer) str(s string) { w.bytes([]byte(s)) }

func (w *writer) u32s(v []uint32) {
	w.length(len(v))
	for _, x := range v {
		w.u32(x)
	}
}

func (w *writer) f64s(v []float64) {
	w.length(len(v))
	for _, x := range v {
		w.f64(x)
	}
}

func (w *writer) strs(v []string) {
	w.length(len(v))
	for _, s := range v {
		w.str(s)
	}
}

// reader consumes values written by writer and keeps the first error.
type reader struct {
	r   *bufio.Reader
	err error
	buf [8]byte
}

func (r *reader) read(n int) []byte {
	if r.err != nil {
		return r.buf[:n]
	}
	if _, err := io.ReadFull(r.r, r.buf[:n]); err != nil {
		r.err = fmt.Errorf("%w: %w", ErrCorrupt, err)
	}
	return r.buf[:n]
}

func (r *reader) u8() uint8   { return r.read(1)[0] }
func (r *reader) bool() bool  { return r.u8() != 0 }
func (r *reader) u16() uint16 { return binary.LittleEndian.Uint16(r.read(2)) }
func (r *reader) u32() uint32 { return binary.LittleEndian.Uint32(r.read(4)) }
func (r *reader) i32() int32  { return int32(r.u32()) } // #nosec G115 -- bit-preserving
func (r *reader) u64() uint64 { return binary.LittleEndian.Uint64(r.read(8)) }

func (r *reader) f32() float32 { return math.Float32frombits(r.u32()) }
func (r *reader) f64() float64 { return math.Float64frombits(r.u64()) }

// length reads a count and rejects values no valid file contains.
func (r *reader) length() int {
	n := r.u32()
	if r.err == nil && n > maxLen {
		r.err = fmt.Errorf("%w: length %d", ErrCorrupt, n)
	}
	if r.err != nil {
		return 0
	}
	return int(n)
}

func (r *reader) bytes() []byte {
	n := r.length()
	if n == 0 || r.err != nil {
		return nil
	}
	var b bytes.Buffer
	b.Grow(min(n, chunkLen))
	if m, err := io.CopyN(&b, r.r, int64(n)); err != nil {
		if err == io.EOF {
			err = fmt.Errorf("%w: %d of %d bytes", io.ErrUnexpectedEOF, m, n)
		}
		r.err = fmt.Errorf("%w: %w", ErrCorrupt, err)
		return nil
	}
	return b.Bytes()
}

func (r *reader) str() string { return string(r.bytes()) }

func (r *reader) u32s() []uint32 {
	n := r.length()
	if n == 0 {
		return nil
	}
	out := make([]uint32, 0, min(n, 1<<16))
	for i := 0; i < n && r.err == nil; i++ {
		out = append(out, r.u32())
	}
	return out
}

func (r *reader) f64s() []float64 {
	n := r.length()
	if n == 0 {
		return nil
	}
	out := make([]float64, 0, min(n, 1<<16))
	for i := 0; i < n && r.err == nil; i++ {
		out = append(out, r.f64())
	}
	return out
}

func (r *reader) strs() []string {
	n := r.length()
	if n == 0 {
		return nil
	}
	out := make([]string, 0, min(n, 1<<10))
	for i := 0; i < n && r.err == nil; i++ {
		out = append(out, r.str())
	}
	return out
}

// count reads a section length for a loop.
func (r *reader) count() int {
	n := r.length()
	if r.err != nil {
		return 0
	}
	return n
}

// EncodeBinary writes d in the binary encoding.
func EncodeBinary(out io.Writer, d *Document) error {
	w := &writer{w: bufio.NewWriter(out)}
	w.write(magic[:])
	w.u32(d.Version)
	w.u32(d.Root)

	w.length(len(d.Leaves))
	for _, l := range d.Leaves {
		w.str(l.Type)
		w.u32(l.Width)
		w.u32(l.Height)
		w.u32(l.Depth)
		w.bytes(l.Data)
	}

	w.length(len(d.Pipelines))
	for i := range d.Pipelines {
		w.pipeline(&d.Pipelines[i])
	}

	w.length(len(d.DescriptorSets))
	for _, s := range d.DescriptorSets {
		w.u32(s.Pipeline)
		w.u32(s.Set)
		w.length(len(s.Descriptors))
		for _, desc := range s.Descriptors {
			w.u32(desc.Binding)
			w.u8(desc.Type)
			w.i32(desc.Uniform)
			w.length(len(desc.Images))
			for _, im := range desc.Images {
				w.image(im)
			}
		}
	}

	w.length(len(d.Nodes))
	for i := range d.Nodes {
		w.node(&d.Nodes[i])
	}

	if w.err != nil {
		return fmt.Errorf("serial: write: %w", w.err)
	}
	if err := w.w.Flush(); err != nil {
		return fmt.Errorf("serial: write: %w", err)
	}
	return nil
}

func (w *writer) pipeline(p *Pipeline) {
	w.str(p.ID)
	w.length(len(p.VertexBindings))
	for _, vb := range p.VertexBindings {
		w.u32(vb.Binding)
		w.u64(vb.Stride)
		w.u8(vb.Rate)
		w.length(len(vb.Attributes))
		for _, a := range vb.Attributes {
			w.u32(a.Location)
			w.u64(a.Offset)
			w.u32(a.Format)
		}
	}
	w.length(len(p.SetLayouts))
	for _, l := range p.SetLayouts {
		w.length(len(l.Entries))
		for _, e := range l.Entries {
			w.u32(e.Binding)
			w.u8(e.Type)
			w.u32(e.Count)
			w.u32(e.Stages)
			w.u32(e.ViewDimension)
		}
	}
	w.u32(p.PushConstantSize)
	w.u32(p.Topology)
	w.u32(p.CullMode)
	w.bool(p.DepthDisabled)
	w.length(len(p.Blend))
	for _, b := range p.Blend {
		for _, v := range b.Color {
			w.u32(v)
		}
		for _, v := range b.Alpha {
			w.u32(v)
		}
	}
	w.u32(p.ColorFormat)
	w.u32(p.DepthFormat)
	w.length(len(p.Stages))
	for _, s := range p.Stages {
		w.u32(s.Stage)
		w.str(s.EntryPoint)
		w.str(s.Source)
		w.strs(s.Defines)
		w.u32s(s.Specialization)
		w.u32s(s.SPIRV)
	}
}

func (w *writer) image(im Image) {
	w.u32(im.Leaf)
	w.u32(im.Format)
	w.u32(im.Width)
	w.u32(im.Height)
	w.u32(im.Depth)
	w.u32(im.MipCount)
	s := im.Sampler
	w.u32(s.AddressU)
	w.u32(s.AddressV)
	w.u32(s.AddressW)
	w.u32(s.MagFilter)
	w.u32(s.MinFilter)
	w.u32(s.MipmapFilter)
	w.f32(s.LodMin)
	w.f32(s.LodMax)
	w.u16(s.Anisotropy)
}

// Node flags mark the optional payloads that follow.
const (
	hasLight uint8 = 1 << iota
	hasDraw
)

func (w *writer) node(n *Node) {
	w.str(n.Kind)
	w.length(len(n.Meta))
	for _, m := range n.Meta {
		w.str(m.Name)
		w.str(m.Text)
		w.i32(m.Floats)
	}
	w.u32s(n.Children)
	w.length(len(n.LODs))
	for _, l := range n.LODs {
		w.f64(l.MinScreenRatio)
		w.u32(l.Child)
	}
	w.f64s(n.Matrix)
	w.f64s(n.Bound)

	var flags uint8
	if n.Light != nil {
		flags |= hasLight
	}
	if n.Draw != nil {
		flags |= hasDraw
	}
	w.u8(flags)
	if l := n.Light; l != nil {
		w.u32(l.Type)
		for _, v := range l.Color {
			w.f32(v)
		}
		w.f32(l.Intensity)
		for _, v := range l.Position {
			w.f32(v)
		}
		for _, v := range l.Direction {
			w.f32(v)
		}
		w.f32(l.InnerAngle)
		w.f32(l.OuterAngle)
		w.bool(l.EyeFrame)
	}
	if d := n.Draw; d != nil {
		w.u32s(d.Arrays)
		w.i32(d.Indices)
		w.u32(d.IndexCount)
		w.u32(d.InstanceCount)
		w.u32(d.FirstIndex)
		w.i32(d.VertexOffset)
		w.u32(d.FirstInstance)
	}
	w.commands(n.StateCommands)
	w.commands(n.Commands)
}

func (w *writer) commands(cmds []Command) {
	w.length(len(cmds))
	for _, c := range cmds {
		w.str(c.Type)
		w.i32(c.Pipeline)
		w.i32(c.Set)
		w.u32(c.First)
		w.u32s(c.Arrays)
		w.i32(c.Indices)
		w.u32(c.IndexCount)
		w.u32(c.InstanceCount)
		w.u32(c.FirstIndex)
		w.i32(c.VertexOffset)
		w.u32(c.FirstInstance)
	}
}

// DecodeBinary reads a document in the binary encoding.
func DecodeBinary(in io.Reader) (*Document, error) {
	r := &reader{r: bufio.NewReader(in)}
	var m [4]byte
	if _, err := io.ReadFull(r.r, m[:]); err != nil || !bytes.Equal(m[:], magic[:]) {
		return nil, ErrBadMagic
	}
	d := &Document{Version: r.u32(), Root: r.u32()}
	if r.err == nil && (d.Version == 0 || d.Version > Version) {
		return nil, fmt.Errorf("%w: %d", ErrVersion, d.Version)
	}

	for n := r.count(); n > 0 && r.err == nil; n-- {
		d.Leaves = append(d.Leaves, Leaf{
			Type:   r.str(),
			Width:  r.u32(),
			Height: r.u32(),
			Depth:  r.u32(),
			Data:   r.bytes(),
		})
	}
	for n := r.count(); n > 0 && r.err == nil; n-- {
		d.Pipelines = append(d.Pipelines, r.pipeline())
	}
	for n := r.count(); n > 0 && r.err == nil; n-- {
		s := DescriptorSet{Pipeline: r.u32(), Set: r.u32()}
		for k := r.count(); k > 0 && r.err == nil; k-- {
			desc := Descriptor{Binding: r.u32(), Type: r.u8(), Uniform: r.i32()}
			for j := r.count(); j > 0 && r.err == nil; j-- {
				desc.Images = append(desc.Images, r.image())
			}
			s.Descriptors = append(s.Descriptors, desc)
		}
		d.DescriptorSets = append(d.DescriptorSets, s)
	}
	for n := r.count(); n > 0 && r.err == nil; n-- {
		d.Nodes = append(d.Nodes, r.node())
	}
	if r.err != nil {
		return nil, fmt.Errorf("serial: read: %w", r.err)
	}
	return d, nil
}

func (r *reader) pipeline() Pipeline {
	p := Pipeline{ID: r.str()}
	for n := r.count(); n > 0 && r.err == nil; n-- {
		vb := VertexBinding{Binding: r.u32(), Stride: r.u64(), Rate: r.u8()}
		for k := r.count(); k > 0 && r.err == nil; k-- {
			vb.Attributes = append(vb.Attributes, Attribute{Location: r.u32(), Offset: r.u64(), Format: r.u32()})
		}
		p.VertexBindings = append(p.VertexBindings, vb)
	}
	for n := r.count(); n > 0 && r.err == nil; n-- {
		var l SetLayout
		for k := r.count(); k > 0 && r.err == nil; k-- {
			l.Entries = append(l.Entries, LayoutEntry{
				Binding:       r.u32(),
				Type:          r.u8(),
				Count:         r.u32(),
				Stages:        r.u32(),
				ViewDimension: r.u32(),
			})
		}
		p.SetLayouts = append(p.SetLayouts, l)
	}
	p.PushConstantSize = r.u32()
	p.Topology = r.u32()
	p.CullMode = r.u32()
	p.DepthDisabled = r.bool()
	for n := r.count(); n > 0 && r.err == nil; n-- {
		var b Blend
		for i := range b.Color {
			b.Color[i] = r.u32()
		}
		for i := range b.Alpha {
			b.Alpha[i] = r.u32()
		}
		p.Blend = append(p.Blend, b)
	}
	p.ColorFormat = r.u32()
	p.DepthFormat = r.u32()
	for n := r.count(); n > 0 && r.err == nil; n-- {
		p.Stages = append(p.Stages, Stage{
			Stage:          r.u32(),
			EntryPoint:     r.str(),
			Source:         r.str(),
			Defines:        r.strs(),
			Specialization: r.u32s(),
			SPIRV:          r.u32s(),
		})
	}
	return p
}

func (r *reader) image() Image {
	return Image{
		Leaf:     r.u32(),
		Format:   r.u32(),
		Width:    r.u32(),
		Height:   r.u32(),
		Depth:    r.u32(),
		MipCount: r.u32(),
		Sampler: Sampler{
			AddressU:     r.u32(),
			AddressV:     r.u32(),
			AddressW:     r.u32(),
			MagFilter:    r.u32(),
			MinFilter:    r.u32(),
			MipmapFilter: r.u32(),
			LodMin:       r.f32(),
			LodMax:       r.f32(),
			Anisotropy:   r.u16(),
		},
	}
}

func (r *reader) node() Node {
	n := Node{Kind: r.str()}
	for k := r.count(); k > 0 && r.err == nil; k-- {
		n.Meta = append(n.Meta, Meta{Name: r.str(), Text: r.str(), Floats: r.i32()})
	}
	n.Children = r.u32s()
	for k := r.count(); k > 0 && r.err == nil; k-- {
		n.LODs = append(n.LODs, LOD{MinScreenRatio: r.f64(), Child: r.u32()})
	}
	n.Matrix = r.f64s()
	n.Bound = r.f64s()

	flags := r.u8()
	if flags&hasLight != 0 {
		l := &Light{Type: r.u32()}
		for i := range l.Color {
			l.Color[i] = r.f32()
		}
		l.Intensity = r.f32()
		for i := range l.Position {
			l.Position[i] = r.f32()
		}
		for i := range l.Direction {
			l.Direction[i] = r.f32()
		}
		l.InnerAngle = r.f32()
		l.OuterAngle = r.f32()
		l.EyeFrame = r.bool()
		n.Light = l
	}
	if flags&hasDraw != 0 {
		n.Draw = &Draw{
			Arrays:        r.u32s(),
			Indices:       r.i32(),
			IndexCount:    r.u32(),
			InstanceCount: r.u32(),
			FirstIndex:    r.u32(),
			VertexOffset:  r.i32(),
			FirstInstance: r.u32(),
		}
	}
	n.StateCommands = r.commands()
	n.Commands = r.commands()
	return n
}

func (r *reader) commands() []Command {
	var out []Command
	for k := r.count(); k > 0 && r.err == nil; k-- {
		out = append(out, Command{
			Type:          r.str(),
			Pipeline:      r.i32(),
			Set:           r.i32(),
			First:         r.u32(),
			Arrays:        r.u32s(),
			Indices:       r.i32(),
			IndexCount:    r.u32(),
			InstanceCount: r.u32(),
			FirstIndex:    r.u32(),
			VertexOffset:  r.i32(),
			FirstInstance: r.u32(),
		})
	}
	return out
}
