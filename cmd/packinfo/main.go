package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/dustin/go-humanize"

	"regionatlas.dev/internal/atlas/region"
	"regionatlas.dev/internal/persistence/artifacts"
	"regionatlas.dev/internal/persistence/indexdb"
	"regionatlas.dev/internal/persistence/regionpack"
)

func main() {
	var (
		packPath     = flag.String("pack", "", "path to .pack.zst")
		manifestPath = flag.String("manifest", "", "manifest.jsonl.zst to summarize (optional)")
		indexPath    = flag.String("index", "", "index.sqlite to list runs from (optional)")
	)
	flag.Parse()

	if *packPath == "" && *manifestPath == "" && *indexPath == "" {
		fmt.Fprintln(os.Stderr, "missing -pack, -manifest or -index")
		os.Exit(2)
	}

	if *packPath != "" {
		if err := packSummary(*packPath); err != nil {
			fmt.Fprintln(os.Stderr, "read pack:", err)
			os.Exit(1)
		}
	}
	if *manifestPath != "" {
		if err := manifestSummary(*manifestPath); err != nil {
			fmt.Fprintln(os.Stderr, "read manifest:", err)
			os.Exit(1)
		}
	}
	if *indexPath != "" {
		if err := indexSummary(*indexPath); err != nil {
			fmt.Fprintln(os.Stderr, "read index:", err)
			os.Exit(1)
		}
	}
}

type planeStats struct {
	underlays, overlays, blocked, bridges int
	minHeight, maxHeight                  int
	placements                            int
}

func packSummary(path string) error {
	st, err := os.Stat(path)
	if err != nil {
		return err
	}
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	var (
		planes   [region.Z]planeStats
		minX     = 1 << 30
		minY     = 1 << 30
		maxX     = -1
		maxY     = -1
		count    int
		objectID = map[int]bool{}
	)
	for z := range planes {
		planes[z].minHeight, planes[z].maxHeight = 1<<31-1, -1<<31
	}
	h, err := regionpack.Scan(f, func(r *region.Region) error {
		count++
		minX, maxX = min(minX, r.RegionX), max(maxX, r.RegionX)
		minY, maxY = min(minY, r.RegionY), max(maxY, r.RegionY)
		for z := 0; z < region.Z; z++ {
			p := &planes[z]
			for x := 0; x < region.X; x++ {
				for y := 0; y < region.Y; y++ {
					if r.UnderlayID(z, x, y) > 0 {
						p.underlays++
					}
					if r.OverlayID(z, x, y) > 0 {
						p.overlays++
					}
					s := r.Setting(z, x, y)
					if s&region.FlagBlocked != 0 {
						p.blocked++
					}
					if s&region.FlagBridge != 0 {
						p.bridges++
					}
					hh := r.Height(z, x, y)
					p.minHeight, p.maxHeight = min(p.minHeight, hh), max(p.maxHeight, hh)
				}
			}
		}
		for _, pl := range r.Placements {
			planes[pl.Position.Z].placements++
			objectID[pl.ID] = true
		}
		return nil
	})
	if err != nil {
		return err
	}

	fmt.Printf("pack v%d source=%q regions=%d size=%s\n", h.Version, h.Source, h.Regions, humanize.Bytes(uint64(st.Size())))
	if count == 0 {
		return nil
	}
	fmt.Printf("region bounds x=[%d,%d] y=[%d,%d] distinct objects=%d\n", minX, maxX, minY, maxY, len(objectID))
	for z, p := range planes {
		fmt.Printf("plane %d: underlay=%d overlay=%d blocked=%d bridge=%d placements=%d height=[%d,%d]\n",
			z, p.underlays, p.overlays, p.blocked, p.bridges, p.placements, p.minHeight, p.maxHeight)
	}
	return nil
}

func manifestSummary(path string) error {
	entries, err := artifacts.ReadManifest(path)
	if err != nil {
		return err
	}
	type key struct {
		kind  string
		plane int
	}
	counts := map[key]int{}
	bytes := map[key]int64{}
	empty := map[key]int{}
	for _, e := range entries {
		if e.Region < 0 {
			continue
		}
		k := key{e.Kind, e.Plane}
		counts[k]++
		bytes[k] += int64(e.Bytes)
		if e.Empty {
			empty[k]++
		}
	}
	keys := make([]key, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].kind != keys[j].kind {
			return keys[i].kind < keys[j].kind
		}
		return keys[i].plane < keys[j].plane
	})
	fmt.Printf("manifest entries=%d\n", len(entries))
	for _, k := range keys {
		fmt.Printf("%s plane %d: chunks=%d empty=%d size=%s\n", k.kind, k.plane, counts[k], empty[k], humanize.Bytes(uint64(bytes[k])))
	}
	return nil
}

func indexSummary(path string) error {
	if _, err := os.Stat(path); err != nil {
		return err
	}
	idx, err := indexdb.OpenSQLite(path)
	if err != nil {
		return err
	}
	defer idx.Close()
	runs, err := idx.Runs(context.Background())
	if err != nil {
		return err
	}
	for _, r := range runs {
		status := "unfinished"
		if !r.FinishedAt.IsZero() {
			status = "took " + r.FinishedAt.Sub(r.StartedAt).Round(time.Millisecond).String()
		}
		fmt.Printf("run %s started=%s %s chunks=%d kinds=%v planes=%v pack=%s\n",
			r.ID, humanize.Time(r.StartedAt), status, r.Chunks, r.Kinds, r.Planes, r.Pack)
	}
	return nil
}
