package main

import (
	"fmt"
	"os"

	"connector-align/internal/align"
	"connector-align/internal/assembly"
	"connector-align/internal/mathutil"
	"connector-align/internal/scene"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: inspectscene <scene.yaml>")
		os.Exit(2)
	}
	f, err := scene.LoadFile(os.Args[1])
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	w, err := f.Build(nil)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Scene %q: grids=%d, blocks=%d, panels=%d, events=%d\n",
		f.Name, len(f.Grids), len(f.Blocks), len(f.Panels), len(f.Events))

	locator := align.NewLocator(align.DefaultLocatorConfig(), nil)
	for _, p := range w.Panels() {
		tracker := assembly.NewTracker(w.Registry(), p.Grid(), nil)
		grids := tracker.Grids()
		fmt.Printf("\nPanel %d %q on grid %d, assembly %v\n", p.ID(), p.Name(), p.Grid(), grids)

		home := w.Connectors(grids)
		fmt.Printf("  Home connectors: %d\n", len(home))
		pair, ok := locator.Locate(home, tracker.Contains, w)
		tracker.Close()
		if !ok {
			fmt.Println("  No pair")
			continue
		}
		fmt.Printf("  Pair: %q (%d) -> %q (%d), distance %.3f, status %s\n",
			pair.Home.Name, pair.Home.ID, pair.Target.Name, pair.Target.ID, pair.Distance, pair.Home.Status)

		off := align.Resolve(pair.Home, pair.Target, p.Transform())
		printVec("Position", off.Position)
		printVec("Rotation", off.Rotation)
		printVec("PanelPosition", off.PanelPosition)
		printVec("PanelRotation", off.PanelRotation)
	}
}

func printVec(label string, v mathutil.Vec3) {
	fmt.Printf("    %-14s [%9.3f %9.3f %9.3f]\n", label, v[0], v[1], v[2])
}
