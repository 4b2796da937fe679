package main

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"oss.terrastruct.com/xdefer"

	"oss.terrastruct.com/wire/lib/xmain"
	"oss.terrastruct.com/wire/wirecache"
	"oss.terrastruct.com/wire/wireroute"
	"oss.terrastruct.com/wire/wiretarget"
)

func main() {
	xmain.Main(run)
}

func help(ms *xmain.State) {
	fmt.Fprintf(ms.Stdout, `Usage:
  %[1]s [--watch] [--debug] [--strict] scene.json [out.json]

%[1]s routes every connection of scene.json as an orthogonal wire and writes
the routed wires to out.json. It defaults to scene.wires.json if an output
path is not provided.

Use - to read the scene from stdin or write the wires to stdout.

Flags:
%[2]s
`, filepath.Base(ms.Name), ms.Opts.Defaults())
}

func run(ctx context.Context, ms *xmain.State) (err error) {
	watchFlag, err := ms.Opts.Bool("WIRE_WATCH", "watch", "w", false, "watch the scene for changes and reroute.")
	if err != nil {
		return err
	}
	debugFlag, err := ms.Opts.Bool("DEBUG", "debug", "d", false, "print debug logs.")
	if err != nil {
		return err
	}
	strictFlag, err := ms.Opts.Bool("WIRE_STRICT", "strict", "", false, "exit with code 2 when any wire falls back to a direct line.")
	if err != nil {
		return err
	}
	rf, err := registerRouteFlags(ms)
	if err != nil {
		return err
	}

	err = ms.Opts.Parse()
	if errors.Is(err, pflag.ErrHelp) {
		help(ms)
		return nil
	}
	if err != nil {
		return err
	}

	opts, err := rf.options()
	if err != nil {
		return err
	}

	args := ms.Opts.Flags.Args()
	if len(args) == 0 {
		help(ms)
		return nil
	} else if len(args) > 2 {
		return xmain.UsageErrorf("too many arguments passed")
	}
	inputPath := args[0]
	outputPath := "-"
	if len(args) == 2 {
		outputPath = args[1]
	} else if inputPath != "-" {
		outputPath = renameExt(inputPath, ".wires.json")
	}

	ctx = ms.Slog(ctx, *debugFlag)
	cache := wirecache.New()

	if *watchFlag {
		if inputPath == "-" {
			return xmain.UsageErrorf("-w[atch] cannot be combined with reading input from stdin")
		}
		if outputPath == "-" {
			return xmain.UsageErrorf("-w[atch] cannot be combined with writing output to stdout")
		}
		w, err := newWatcher(ctx, ms, cache, opts, inputPath, outputPath)
		if err != nil {
			return err
		}
		return w.run()
	}

	res, err := compile(ctx, ms, cache, opts, inputPath, outputPath)
	if err != nil {
		return err
	}
	if outputPath != "-" {
		logResult(ms, res, inputPath, outputPath, "")
	}
	if *strictFlag {
		return checkFallbacks(res)
	}
	return nil
}

func checkFallbacks(res *wiretarget.Result) error {
	if res.Fallbacks == 0 {
		return nil
	}
	return xmain.ExitErrorf(2, "%d of %d wires fell back to direct lines", res.Fallbacks, len(res.Wires))
}

type routeFlags struct {
	gridSize        *float64
	margin          *float64
	padding         *float64
	srcClearance    *float64
	dstClearance    *float64
	turnPenalty     *int64
	crossingPenalty *int64
	sharedCells     *int64
	portExits       *bool
}

func registerRouteFlags(ms *xmain.State) (f routeFlags, err error) {
	def := wireroute.DefaultOptions()
	f.gridSize, err = ms.Opts.Float64("WIRE_GRID_SIZE", "grid-size", "", def.GridSize, "distance between routing grid lines.")
	if err != nil {
		return f, err
	}
	f.margin, err = ms.Opts.Float64("WIRE_MARGIN", "margin", "", def.Margin, "space kept free around every node.")
	if err != nil {
		return f, err
	}
	f.padding, err = ms.Opts.Float64("WIRE_PADDING", "padding", "", def.Padding, "routable space around the scene.")
	if err != nil {
		return f, err
	}
	f.srcClearance, err = ms.Opts.Float64("WIRE_SOURCE_CLEARANCE", "source-clearance", "", def.SourceClearance, "length of the straight stub leaving a source port.")
	if err != nil {
		return f, err
	}
	f.dstClearance, err = ms.Opts.Float64("WIRE_TARGET_CLEARANCE", "target-clearance", "", def.TargetClearance, "length of the straight stub entering a target port.")
	if err != nil {
		return f, err
	}
	f.turnPenalty, err = ms.Opts.Int64("WIRE_TURN_PENALTY", "turn-penalty", "", int64(def.TurnPenalty), "extra cost of a bend, in grid steps.")
	if err != nil {
		return f, err
	}
	f.crossingPenalty, err = ms.Opts.Int64("WIRE_CROSSING_PENALTY", "crossing-penalty", "", int64(def.CrossingPenalty), "extra cost of crossing an already routed wire, in grid steps.")
	if err != nil {
		return f, err
	}
	f.sharedCells, err = ms.Opts.Int64("WIRE_SHARED_SOURCE_CELLS", "shared-source-cells", "", int64(def.SharedSourceCells), "cells next to a source stub that wires from the same port may share freely.")
	if err != nil {
		return f, err
	}
	f.portExits, err = ms.Opts.Bool("WIRE_PORT_EXITS", "port-exits", "", def.PortExits, "block the grid cell in front of every port.")
	if err != nil {
		return f, err
	}
	return f, nil
}

// options must be called after the flags are parsed.
func (f routeFlags) options() (*wireroute.Options, error) {
	if *f.gridSize <= 0 {
		return nil, xmain.UsageErrorf("--grid-size must be positive.\nYou provided: %v", *f.gridSize)
	}
	for name, v := range map[string]float64{
		"margin":           *f.margin,
		"padding":          *f.padding,
		"source-clearance": *f.srcClearance,
		"target-clearance": *f.dstClearance,
	} {
		if v < 0 {
			return nil, xmain.UsageErrorf("--%s must not be negative.\nYou provided: %v", name, v)
		}
	}
	for name, v := range map[string]int64{
		"turn-penalty":        *f.turnPenalty,
		"crossing-penalty":    *f.crossingPenalty,
		"shared-source-cells": *f.sharedCells,
	} {
		if v < 0 {
			return nil, xmain.UsageErrorf("--%s must not be negative.\nYou provided: %d", name, v)
		}
	}
	return &wireroute.Options{
		GridSize:          *f.gridSize,
		Margin:            *f.margin,
		Padding:           *f.padding,
		SourceClearance:   *f.srcClearance,
		TargetClearance:   *f.dstClearance,
		TurnPenalty:       int(*f.turnPenalty),
		CrossingPenalty:   int(*f.crossingPenalty),
		SharedSourceCells: int(*f.sharedCells),
		PortExits:         *f.portExits,
	}, nil
}

func compile(ctx context.Context, ms *xmain.State, cache *wirecache.Cache, opts *wireroute.Options, inputPath, outputPath string) (_ *wiretarget.Result, err error) {
	defer xdefer.Errorf(&err, "failed to route %s", ms.HumanPath(inputPath))

	input, err := ms.ReadPath(inputPath)
	if err != nil {
		return nil, err
	}
	scene, err := wiretarget.Parse(input)
	if err != nil {
		return nil, err
	}
	results, err := cache.RouteAll(ctx, scene.RouterScene(), scene.Connections, opts)
	if err != nil {
		return nil, err
	}
	res := wiretarget.NewResult(scene.Connections, results)

	err = ms.WritePath(outputPath, res.Bytes())
	if err != nil {
		return nil, err
	}
	return res, nil
}

func logResult(ms *xmain.State, res *wiretarget.Result, inputPath, outputPath, prefix string) {
	if res.Fallbacks > 0 {
		ms.Log.Warn.Printf("%d of %d wires could not be routed around obstacles and are drawn as direct lines", res.Fallbacks, len(res.Wires))
	}
	ms.Log.Success.Printf("successfully %srouted %v to %v", prefix, ms.HumanPath(inputPath), ms.HumanPath(outputPath))
}

// newExt must include leading .
func renameExt(fp string, newExt string) string {
	ext := filepath.Ext(fp)
	if ext == "" {
		return fp + newExt
	}
	return strings.TrimSuffix(fp, ext) + newExt
}
