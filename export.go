package vsgbridge

import (
	"fmt"
	"maps"
	"slices"

	"github.com/gogpu/vsgbridge/cache"
	"github.com/gogpu/vsgbridge/graph"
	"github.com/gogpu/vsgbridge/serial"
	"github.com/gogpu/vsgbridge/texture"
)

// ExportResult describes a finished export.
type ExportResult struct {
	Path   string
	Format serial.Format

	// Nodes is the number of distinct nodes written.
	Nodes int
	// Leaves is the number of distinct leaf arrays written and LeafBytes
	// their total size.
	Leaves    int
	LeafBytes int

	// Detached counts subtrees pushed without a parent under the
	// permissive policy. They are released but not written.
	Detached int

	// Unreleased counts borrowed arrays that no release pass reached
	// before teardown.
	Unreleased int

	Stats map[string]cache.Stats
}

// EndExport serializes the graph to path, releases every host buffer it
// borrowed and returns the session to idle. Release and teardown run even
// when writing fails.
func (s *Session) EndExport(path string) (*ExportResult, error) {
	if err := s.check(); err != nil {
		return nil, err
	}
	res := &ExportResult{Path: path, Format: s.opts.config.OutputFormat, Stats: s.Stats()}
	defer func() {
		res.Unreleased = s.teardown()
	}()

	if s.root == graph.Nil {
		return nil, ErrEmptyGraph
	}

	leaves := graph.CollectLeaves(s.graph, s.root)
	doc, err := serial.FromGraph(s.graph, s.root, leaves)
	if err != nil {
		return nil, fmt.Errorf("vsgbridge: EndExport: %w", err)
	}
	if res.Format == serial.FormatAuto {
		res.Format = serial.FormatFor(path)
	}
	if err := serial.WriteFile(path, doc, res.Format); err != nil {
		return nil, fmt.Errorf("vsgbridge: EndExport: %w", err)
	}

	res.Nodes = len(doc.Nodes)
	res.Leaves = leaves.Len()
	res.LeafBytes = doc.LeafBytes()
	res.Detached = len(s.detached)

	if s.opts.config.LogCacheStats {
		for _, name := range slices.Sorted(maps.Keys(res.Stats)) {
			st := res.Stats[name]
			Logger().Info("vsgbridge: cache",
				"name", name, "len", st.Len, "hits", st.Hits,
				"misses", st.Misses, "builds", st.Builds, "failures", st.Failures)
		}
	}
	Logger().Info("vsgbridge: export written",
		"path", path, "format", res.Format, "nodes", res.Nodes,
		"leaves", res.Leaves, "bytes", res.LeafBytes, "detached", res.Detached)
	return res, nil
}

// AbortExport ends the session without writing anything. Host buffers
// are released as in EndExport.
func (s *Session) AbortExport() error {
	if err := s.check(); err != nil {
		return err
	}
	s.teardown()
	Logger().Debug("vsgbridge: export aborted")
	return nil
}

// teardown releases host buffers, destroys GPU objects and returns the
// session to idle. It returns the number of borrowed arrays that were
// still unreleased when the arena was freed.
func (s *Session) teardown() int {
	released := graph.ReleaseLeaves(s.graph, s.root)
	for _, h := range s.detached {
		released += graph.ReleaseLeaves(s.graph, h)
	}
	// Textures and queued buffers that never reached the graph.
	s.textures.Clear(func(d *texture.Data) {
		if d.Array.Release() {
			released++
		}
	})
	s.dropPending(false)
	unreleased := s.graph.Free()
	if unreleased > 0 {
		Logger().Warn("vsgbridge: host buffers referenced until teardown", "count", unreleased)
	}

	dev := s.dev.device
	s.descriptorSets.Clear(func(c *graph.BindDescriptorSetCommand) {
		c.Set.Destroy(dev)
	})
	s.assembler.Release()
	s.dev.close()
	Logger().Debug("vsgbridge: session torn down", "released", released)

	s.dev = deviceHandle{}
	s.assembler = nil
	s.graph = nil
	s.root = graph.Nil
	s.stack = s.stack[:0]
	s.detached = nil
	s.pipelines, s.geometry = nil, nil
	s.vertexBuffers, s.indexBuffers, s.draws = nil, nil, nil
	s.descriptorSets, s.textures = nil, nil
	s.activePipeline = nil
	return unreleased
}
