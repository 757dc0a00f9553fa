// Command vsgimage exports an image file as a textured quad scene.
//
// PNG, JPEG, GIF, BMP, TIFF and WebP inputs are accepted.
package main

import (
	"flag"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/gogpu/vsgbridge"
	"github.com/gogpu/vsgbridge/pipeline"
	"github.com/gogpu/vsgbridge/texture"
)

func main() {
	var (
		output  = flag.String("output", "", "output file (default: input name with .vsgb)")
		config  = flag.String("config", "", "TOML settings file")
		mipmaps = flag.Bool("mipmaps", true, "generate a mip chain")
		view    = flag.Bool("view", false, "open the result in the preview viewer")
		verbose = flag.Bool("v", false, "log session details")
	)
	flag.Parse()
	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: vsgimage [flags] image")
		os.Exit(2)
	}
	input := flag.Arg(0)
	if *output == "" {
		*output = strings.TrimSuffix(input, filepath.Ext(input)) + ".vsgb"
	}
	if *verbose {
		vsgbridge.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
	}

	var opts []vsgbridge.Option
	if *config != "" {
		cfg, err := vsgbridge.LoadConfig(*config)
		if err != nil {
			log.Fatal(err)
		}
		opts = append(opts, vsgbridge.WithConfig(cfg))
	}

	img, err := loadImage(input)
	if err != nil {
		log.Fatal(err)
	}
	spec := texture.SpecFromImage(img, *mipmaps)

	e := vsgbridge.NewExporter(opts...)
	res, err := exportQuad(e, *output, filepath.Base(input), spec)
	if err != nil {
		log.Fatalf("export %s: %v", input, err)
	}
	log.Printf("wrote %s: %d nodes, %d leaves, %d bytes", res.Path, res.Nodes, res.Leaves, res.LeafBytes)

	if *view {
		e.LaunchViewer(res.Path, nil)
	}
}

func loadImage(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return img, nil
}

// exportQuad writes Group -> StateGroup{pipeline, texture} -> Geometry.
// The quad keeps the image aspect ratio with height 1.
func exportQuad(e *vsgbridge.Exporter, path, name string, spec texture.Spec) (*vsgbridge.ExportResult, error) {
	if err := e.BeginExport(); err != nil {
		return nil, err
	}
	aspect := float32(spec.Width) / float32(spec.Height)
	x := aspect / 2

	steps := []func() error{
		e.AddGroup,
		func() error { return e.AddStringValue("source", name) },
		e.AddStateGroup,
		func() error {
			return e.AddBindGraphicsPipeline(vsgbridge.PipelineData{
				ID:             "textured-quad",
				UVChannelCount: 1,
				ShaderMode:     pipeline.ModeDiffuseMap,
			}, vsgbridge.TargetStateGroup)
		},
		func() error {
			return e.AddDescriptorImage(vsgbridge.DescriptorImageData{
				ID: "diffuse",
				Images: []vsgbridge.ImageData{{
					ID:         name,
					Pixels:     spec.Pixels,
					Format:     spec.Format,
					Width:      spec.Width,
					Height:     spec.Height,
					Depth:      spec.Depth,
					MipCount:   spec.MipCount,
					WrapMode:   spec.Wrap,
					FilterMode: spec.Filter,
					MipmapMode: spec.Mipmap,
				}},
			})
		},
		func() error { return e.CreateBindDescriptorSet(vsgbridge.TargetStateGroup) },
		func() error {
			return e.AddGeometry(vsgbridge.MeshData{
				ID:       "quad",
				Vertices: []float32{-x, 0, 0, x, 0, 0, x, 0, 1, -x, 0, 1},
				UV0:      []float32{0, 1, 1, 1, 1, 0, 0, 0},
				Indices:  []int32{0, 1, 2, 2, 3, 0},
			})
		},
	}
	for _, step := range steps {
		if err := step(); err != nil {
			_ = e.AbortExport()
			return nil, err
		}
	}
	return e.EndExport(path)
}
