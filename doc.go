// Package vsgbridge builds retained scene graphs from a host engine's
// scene description and writes them to disk.
//
// # Overview
//
// A host walks its scene and reports it as a sequence of calls: push a
// group, a transform, a state group, bind a pipeline, queue descriptors,
// draw geometry, pop. The bridge turns that stream into a graph of typed
// nodes, builds each pipeline, texture and buffer once per host id, and
// serializes the result when the export ends.
//
// # Quick Start
//
//	e := vsgbridge.NewExporter()
//	if err := e.BeginExport(); err != nil {
//	    log.Fatal(err)
//	}
//	_ = e.AddGroup()
//	_ = e.AddTransform(vsgbridge.TransformData{Matrix: m})
//	_ = e.AddGeometry(vsgbridge.MeshData{ID: "tri", Vertices: v, Indices: idx})
//	_ = e.EndNode()
//	_ = e.EndNode()
//	res, err := e.EndExport("scene.vsgb")
//
// # Memory
//
// Vertex, index, uniform and pixel slices passed by the host are borrowed,
// not copied. They must stay unchanged until EndExport (or AbortExport)
// returns; after that the bridge holds no reference to them.
//
// # Devices
//
// Pipelines and descriptor sets are created on a HAL device. By default a
// session opens a private headless device on the noop backend; use
// WithDevice or WithDeviceProvider to build on a host's device.
//
// # Architecture
//
//   - graph: node arena, commands, descriptor sets and leaf collection
//   - pipeline: pipeline state derivation, shader generation and compilation
//   - texture, format: texture format classification and conversion
//   - extarray: borrowed and owned typed arrays
//   - cache: populate-once resource stores
//   - serial: binary and TOML scene files
//   - preview: loads a scene file and frames it for presentation
//
// # Logging
//
// The package is silent by default. SetLogger installs a log/slog logger
// for this package and its sub-packages.
package vsgbridge
