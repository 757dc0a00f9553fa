package vsgbridge

import (
	"context"
	"sync"

	"github.com/gogpu/vsgbridge/preview"
)

// Exporter is the single-session host boundary. It owns one Session and
// serializes every call into it, so a host may call it from any thread.
//
// Example:
//
//	e := vsgbridge.NewExporter(vsgbridge.WithStructuralPolicy(vsgbridge.StructuralPermissive))
//	if err := e.BeginExport(); err != nil {
//	    return err
//	}
//	_ = e.AddGroup()
//	res, err := e.EndExport("scene.vsgb")
type Exporter struct {
	mu      sync.Mutex
	opts    []Option
	session *Session
}

// NewExporter creates an idle exporter.
func NewExporter(opts ...Option) *Exporter {
	return &Exporter{opts: opts, session: NewSession(opts...)}
}

func (e *Exporter) do(fn func(*Session) error) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return fn(e.session)
}

// Building reports whether an export is in progress.
func (e *Exporter) Building() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.session.Building()
}

// BeginExport starts a session. It returns ErrSessionActive and leaves the
// running session untouched if one is open.
func (e *Exporter) BeginExport() error { return e.do((*Session).BeginExport) }

// EndExport writes the scene to path and ends the session.
func (e *Exporter) EndExport(path string) (*ExportResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.session.EndExport(path)
}

// AbortExport ends the session without writing a file.
func (e *Exporter) AbortExport() error { return e.do((*Session).AbortExport) }

// The node, metadata, command and descriptor methods below lock the
// exporter and forward to the Session method of the same name.

func (e *Exporter) AddGroup() error      { return e.do((*Session).AddGroup) }
func (e *Exporter) AddStateGroup() error { return e.do((*Session).AddStateGroup) }
func (e *Exporter) AddCommands() error   { return e.do((*Session).AddCommands) }
func (e *Exporter) EndNode() error       { return e.do((*Session).EndNode) }

func (e *Exporter) AddTransform(d TransformData) error {
	return e.do(func(s *Session) error { return s.AddTransform(d) })
}

func (e *Exporter) AddCull(d CullData) error {
	return e.do(func(s *Session) error { return s.AddCull(d) })
}

func (e *Exporter) AddCullGroup(d CullData) error {
	return e.do(func(s *Session) error { return s.AddCullGroup(d) })
}

func (e *Exporter) AddLOD(d CullData) error {
	return e.do(func(s *Session) error { return s.AddLOD(d) })
}

func (e *Exporter) AddLODChild(d LODChildData) error {
	return e.do(func(s *Session) error { return s.AddLODChild(d) })
}

func (e *Exporter) AddLight(d LightData) error {
	return e.do(func(s *Session) error { return s.AddLight(d) })
}

func (e *Exporter) AddVertexIndexDraw(d MeshData) error {
	return e.do(func(s *Session) error { return s.AddVertexIndexDraw(d) })
}

func (e *Exporter) AddGeometry(d MeshData) error {
	return e.do(func(s *Session) error { return s.AddGeometry(d) })
}

func (e *Exporter) AddSkybox(d DescriptorImageData) error {
	return e.do(func(s *Session) error { return s.AddSkybox(d) })
}

func (e *Exporter) AddStringValue(name, value string) error {
	return e.do(func(s *Session) error { return s.AddStringValue(name, value) })
}

func (e *Exporter) AddFloatArray(name string, values []float32) error {
	return e.do(func(s *Session) error { return s.AddFloatArray(name, values) })
}

func (e *Exporter) AddBindGraphicsPipeline(d PipelineData, target Target) error {
	return e.do(func(s *Session) error { return s.AddBindGraphicsPipeline(d, target) })
}

func (e *Exporter) AddBindVertexBuffers(d VertexBuffersData) error {
	return e.do(func(s *Session) error { return s.AddBindVertexBuffers(d) })
}

func (e *Exporter) AddBindIndexBuffer(d IndexBufferData) error {
	return e.do(func(s *Session) error { return s.AddBindIndexBuffer(d) })
}

func (e *Exporter) AddDrawIndexed(d DrawIndexedData) error {
	return e.do(func(s *Session) error { return s.AddDrawIndexed(d) })
}

func (e *Exporter) AddDescriptorImage(d DescriptorImageData) error {
	return e.do(func(s *Session) error { return s.AddDescriptorImage(d) })
}

func (e *Exporter) AddDescriptorFloat(d DescriptorFloatData) error {
	return e.do(func(s *Session) error { return s.AddDescriptorFloat(d) })
}

func (e *Exporter) AddDescriptorFloatArray(d DescriptorFloatArrayData) error {
	return e.do(func(s *Session) error { return s.AddDescriptorFloatArray(d) })
}

func (e *Exporter) AddDescriptorFloatBuffer(d DescriptorFloatBufferData) error {
	return e.do(func(s *Session) error { return s.AddDescriptorFloatBuffer(d) })
}

func (e *Exporter) AddDescriptorVector(d DescriptorVectorData) error {
	return e.do(func(s *Session) error { return s.AddDescriptorVector(d) })
}

func (e *Exporter) AddDescriptorVectorArray(d DescriptorVectorArrayData) error {
	return e.do(func(s *Session) error { return s.AddDescriptorVectorArray(d) })
}

func (e *Exporter) CreateBindDescriptorSet(target Target) error {
	return e.do(func(s *Session) error { return s.CreateBindDescriptorSet(target) })
}

// LaunchViewer opens an exported file in the preview viewer. Failures,
// including a panicking Presenter, are logged and never reported to the
// host. A nil camera frames the scene.
func (e *Exporter) LaunchViewer(path string, cam *CameraData) {
	defer func() {
		if r := recover(); r != nil {
			Logger().Error("vsgbridge: viewer panicked", "path", path, "panic", r)
		}
	}()
	o := buildOptions(e.opts)
	v := &preview.Viewer{Presenter: o.presenter, Window: o.window}
	var pc *preview.Camera
	if cam != nil {
		pc = &preview.Camera{
			Position: cam.Position,
			LookAt:   cam.LookAt,
			Up:       cam.Up,
			FOV:      cam.FOV,
			Near:     cam.Near,
			Far:      cam.Far,
		}
	}
	if err := v.Run(context.Background(), path, pc); err != nil {
		Logger().Warn("vsgbridge: viewer failed", "path", path, "err", err)
	}
}
