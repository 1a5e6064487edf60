package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/AlleyKatPr0/bspsrc/bspfile"
	"github.com/AlleyKatPr0/bspsrc/brush"
	"github.com/AlleyKatPr0/bspsrc/lump"
)

type options struct {
	bspPath       string
	skipOverlays  bool
	dumpBrushes   bool
	dumpGameLumps bool
}

func main() {
	opts, err := parseFlags()
	if err != nil {
		fmt.Fprintf(os.Stderr, "bspdump: %v\n", err)
		os.Exit(2)
	}
	if err := run(opts); err != nil {
		fmt.Fprintf(os.Stderr, "bspdump: %v\n", err)
		os.Exit(1)
	}
}

func parseFlags() (options, error) {
	var opts options
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: go run ./cmd/bspdump [flags] <bsp>\n")
		flag.PrintDefaults()
	}
	skipOverlays := flag.Bool("no-overlays", false, "Skip sibling .lmp/.bsp_lump/.ent overlay files")
	dumpBrushes := flag.Bool("brushes", false, "Reconstruct and summarize the world brush model")
	dumpGameLumps := flag.Bool("gamelumps", false, "List the nested game-lump directory")
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		return options{}, fmt.Errorf("missing bsp path")
	}
	opts.bspPath = flag.Arg(0)
	opts.skipOverlays = *skipOverlays
	opts.dumpBrushes = *dumpBrushes
	opts.dumpGameLumps = *dumpGameLumps
	return opts, nil
}

func run(opts options) error {
	loadOpts := bspfile.LoadOptions{}
	if !opts.skipOverlays {
		loadOpts = loadOpts.WithOSOverlays(filepath.Dir(opts.bspPath))
	}

	f, err := bspfile.Load(context.Background(), opts.bspPath, loadOpts)
	if err != nil {
		return fmt.Errorf("load %s: %w", opts.bspPath, err)
	}
	defer f.Close()

	if err := emitSection("header", headerSummary{
		Dialect:     f.Dialect.String(),
		Version:     f.Version,
		MapRevision: f.Directory.Header.MapRevision,
	}); err != nil {
		return err
	}

	if err := emitSection("lumps", lumpSummaries(f)); err != nil {
		return err
	}

	if opts.dumpGameLumps && f.GameLumps != nil {
		if err := emitSection("gamelumps", gameLumpSummaries(f)); err != nil {
			return err
		}
	}

	if opts.dumpBrushes {
		summary, err := dumpWorldBrushes(f)
		if err != nil {
			return fmt.Errorf("reconstruct brushes: %w", err)
		}
		if err := emitSection("brushes", summary); err != nil {
			return err
		}
	}

	return nil
}

type headerSummary struct {
	Dialect     string `json:"dialect"`
	Version     int32  `json:"version"`
	MapRevision int32  `json:"mapRevision"`
}

type lumpSummary struct {
	Index  int    `json:"index"`
	Type   string `json:"type"`
	Length int32  `json:"length"`
}

func lumpSummaries(f *bspfile.BspFile) []lumpSummary {
	out := make([]lumpSummary, 0, len(f.Directory.Lumps))
	for _, l := range f.Directory.Lumps {
		if l.Length == 0 {
			continue
		}
		out = append(out, lumpSummary{Index: l.Index, Type: lump.Type(l.Index).String(), Length: l.Length})
	}
	return out
}

type gameLumpSummary struct {
	FourCC     string `json:"fourCC"`
	Length     int32  `json:"length"`
	Compressed bool   `json:"compressed"`
}

func gameLumpSummaries(f *bspfile.BspFile) []gameLumpSummary {
	out := make([]gameLumpSummary, 0, len(f.GameLumps.Lumps))
	for _, l := range f.GameLumps.Lumps {
		out = append(out, gameLumpSummary{FourCC: fourCCString(l.FourCC), Length: l.Length, Compressed: l.Compressed})
	}
	return out
}

func fourCCString(v int32) string {
	b := []byte{byte(v), byte(v >> 8), byte(v >> 16), byte(v >> 24)}
	return string(b)
}

type brushSummary struct {
	WorldBrushCount int `json:"worldBrushCount"`
	Emitted         int `json:"emitted"`
	Rejected        int `json:"rejected"`
	Warnings        int `json:"warnings"`
}

func dumpWorldBrushes(f *bspfile.BspFile) (brushSummary, error) {
	if len(f.Data.Models) == 0 {
		return brushSummary{}, fmt.Errorf("file has no models")
	}
	world := f.Data.Models[0]

	rc := &brush.Reconstructor{Dialect: f.Dialect}
	emitted, rejected, warnings, err := rc.WriteBrushes(context.Background(), f.Data, world.FirstBrush, world.NumBrush, nil, brush.NopEmitter{})
	if err != nil {
		return brushSummary{}, err
	}
	return brushSummary{
		WorldBrushCount: int(world.NumBrush),
		Emitted:         emitted,
		Rejected:        rejected,
		Warnings:        len(warnings),
	}, nil
}

func emitSection(name string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", name, err)
	}
	fmt.Printf("== %s ==\n%s\n\n", name, data)
	return nil
}
