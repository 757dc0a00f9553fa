// Command vsgdump prints the node tree and contents of an exported scene
// file.
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/gogpu/vsgbridge/serial"
)

func main() {
	var (
		leaves    = flag.Bool("leaves", false, "list leaf arrays")
		pipelines = flag.Bool("pipelines", false, "list pipelines and their stages")
		check     = flag.Bool("check", false, "rebuild the graph to validate the file")
	)
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: vsgdump [flags] file...\n")
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	failed := false
	for _, path := range flag.Args() {
		doc, err := serial.ReadFile(path)
		if err != nil {
			log.Printf("%s: %v", path, err)
			failed = true
			continue
		}
		fmt.Printf("%s: version %d, %d nodes, %d leaves (%d bytes), %d pipelines, %d descriptor sets\n",
			path, doc.Version, len(doc.Nodes), len(doc.Leaves), doc.LeafBytes(),
			len(doc.Pipelines), len(doc.DescriptorSets))
		dumpTree(os.Stdout, doc)
		if *leaves {
			dumpLeaves(os.Stdout, doc)
		}
		if *pipelines {
			dumpPipelines(os.Stdout, doc)
		}
		if *check {
			g, _, err := doc.Graph()
			if err != nil {
				log.Printf("%s: %v", path, err)
				failed = true
				continue
			}
			fmt.Printf("graph ok: %d nodes\n", g.Len())
			g.Free()
		}
	}
	if failed {
		os.Exit(1)
	}
}

func dumpTree(w io.Writer, doc *serial.Document) {
	seen := make(map[uint32]bool)
	var visit func(i uint32, depth int, prefix string)
	visit = func(i uint32, depth int, prefix string) {
		if int(i) >= len(doc.Nodes) {
			return
		}
		n := doc.Nodes[i]
		indent := strings.Repeat("  ", depth)
		fmt.Fprintf(w, "%s%s[%d] %s%s\n", indent, prefix, i, n.Kind, nodeDetail(n))
		if seen[i] {
			return
		}
		seen[i] = true
		for _, m := range n.Meta {
			if m.Floats >= 0 {
				fmt.Fprintf(w, "%s    %s = leaf %d\n", indent, m.Name, m.Floats)
			} else {
				fmt.Fprintf(w, "%s    %s = %q\n", indent, m.Name, m.Text)
			}
		}
		for _, c := range n.StateCommands {
			fmt.Fprintf(w, "%s    state %s\n", indent, commandDetail(c))
		}
		for _, c := range n.Commands {
			fmt.Fprintf(w, "%s    %s\n", indent, commandDetail(c))
		}
		for _, c := range n.Children {
			visit(c, depth+1, "")
		}
		for _, l := range n.LODs {
			visit(l.Child, depth+1, fmt.Sprintf("lod>=%g ", l.MinScreenRatio))
		}
	}
	visit(doc.Root, 0, "")
}

func nodeDetail(n serial.Node) string {
	var parts []string
	if len(n.Bound) == 4 {
		parts = append(parts, fmt.Sprintf("bound=(%g %g %g) r=%g", n.Bound[0], n.Bound[1], n.Bound[2], n.Bound[3]))
	}
	if len(n.Matrix) == 16 {
		parts = append(parts, fmt.Sprintf("translate=(%g %g %g)", n.Matrix[12], n.Matrix[13], n.Matrix[14]))
	}
	if n.Light != nil {
		parts = append(parts, fmt.Sprintf("light type=%d intensity=%g", n.Light.Type, n.Light.Intensity))
	}
	if n.Draw != nil {
		parts = append(parts, fmt.Sprintf("arrays=%v indices=%d count=%d", n.Draw.Arrays, n.Draw.Indices, n.Draw.IndexCount))
	}
	if len(parts) == 0 {
		return ""
	}
	return " " + strings.Join(parts, " ")
}

func commandDetail(c serial.Command) string {
	switch c.Type {
	case "BindPipeline":
		return fmt.Sprintf("%s pipeline=%d", c.Type, c.Pipeline)
	case "BindDescriptorSet":
		return fmt.Sprintf("%s pipeline=%d set=%d", c.Type, c.Pipeline, c.Set)
	case "BindVertexBuffers":
		return fmt.Sprintf("%s first=%d arrays=%v", c.Type, c.First, c.Arrays)
	case "BindIndexBuffer":
		return fmt.Sprintf("%s leaf=%d", c.Type, c.Indices)
	case "DrawIndexed":
		return fmt.Sprintf("%s count=%d instances=%d", c.Type, c.IndexCount, c.InstanceCount)
	}
	return c.Type
}

func dumpLeaves(w io.Writer, doc *serial.Document) {
	fmt.Fprintln(w, "leaves:")
	for i, l := range doc.Leaves {
		fmt.Fprintf(w, "  [%d] %s %dx%dx%d %d bytes\n", i, l.Type, l.Width, l.Height, l.Depth, len(l.Data))
	}
}

func dumpPipelines(w io.Writer, doc *serial.Document) {
	fmt.Fprintln(w, "pipelines:")
	for i, p := range doc.Pipelines {
		fmt.Fprintf(w, "  [%d] %s topology=%d cull=%d push=%d sets=%d\n",
			i, p.ID, p.Topology, p.CullMode, p.PushConstantSize, len(p.SetLayouts))
		for _, st := range p.Stages {
			fmt.Fprintf(w, "      stage %d %s: %d words, defines %v\n", st.Stage, st.EntryPoint, len(st.SPIRV), st.Defines)
		}
	}
}
