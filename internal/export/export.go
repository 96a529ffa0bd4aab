// Package export turns rendered planes into files: a chunk zip per kind,
// optional full-plane images and previews, object JSON, and the manifest
// and index rows describing them.
package export

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"regionatlas.dev/internal/atlas/compositor"
	"regionatlas.dev/internal/config"
	"regionatlas.dev/internal/persistence/artifacts"
	"regionatlas.dev/internal/persistence/indexdb"
)

// Mirror receives every finished output file.
type Mirror interface {
	Enqueue(localPath string)
}

type Exporter struct {
	Comp   *compositor.Compositor
	Output config.Output
	RunID  string

	// Optional sinks.
	Manifest *artifacts.Manifest
	Index    *indexdb.SQLiteIndex
	Mirror   Mirror

	Logger logrus.FieldLogger

	mu      sync.Mutex
	summary Summary
}

type Summary struct {
	Chunks  int
	Skipped int
	Bytes   int64
	Files   []string
	Elapsed time.Duration
}

// ZipName is the chunk archive of a kind.
func ZipName(kind compositor.Kind) string {
	if kind == compositor.KindHeight {
		return "heightmap.zip"
	}
	return string(kind) + ".zip"
}

// Export renders every kind over planes and writes its outputs below
// Output.Dir.
func (e *Exporter) Export(ctx context.Context, kinds []compositor.Kind, planes []int) (Summary, error) {
	start := time.Now()
	if e.Logger == nil {
		e.Logger = e.Comp.Logger
	}
	for _, kind := range kinds {
		if err := e.exportKind(ctx, kind, planes); err != nil {
			return e.snapshot(start), err
		}
	}
	s := e.snapshot(start)
	e.Logger.WithFields(logrus.Fields{
		"run":     e.RunID,
		"chunks":  s.Chunks,
		"skipped": s.Skipped,
		"files":   len(s.Files),
		"bytes":   humanize.Bytes(uint64(s.Bytes)),
		"elapsed": s.Elapsed.Round(time.Millisecond),
	}).Info("export finished")
	return s, nil
}

func (e *Exporter) snapshot(start time.Time) Summary {
	e.mu.Lock()
	defer e.mu.Unlock()
	s := e.summary
	s.Files = append([]string(nil), e.summary.Files...)
	s.Elapsed = time.Since(start)
	return s
}

func (e *Exporter) exportKind(ctx context.Context, kind compositor.Kind, planes []int) error {
	results, err := e.Comp.RenderAll(ctx, kind, planes)
	if err != nil {
		return err
	}

	var zw *artifacts.ZipWriter
	if e.Output.Chunks {
		zw, err = artifacts.CreateZip(filepath.Join(e.Output.Dir, ZipName(kind)))
		if err != nil {
			return err
		}
	}

	g, ctx := errgroup.WithContext(ctx)
	workers := e.Output.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	g.SetLimit(workers)
	for _, res := range results {
		res := res
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			if kind == compositor.KindObjects {
				return e.writeObjects(zw, res)
			}
			return e.writeRaster(zw, res)
		})
	}
	err = g.Wait()

	if zw != nil {
		if cerr := zw.Close(); err == nil {
			err = cerr
		}
		if err == nil {
			var size int64
			if st, serr := os.Stat(zw.Path()); serr == nil {
				size = st.Size()
			}
			n, raw := zw.Stats()
			e.Logger.WithFields(logrus.Fields{
				"kind":    kind,
				"entries": n,
				"raw":     humanize.Bytes(uint64(raw)),
				"size":    humanize.Bytes(uint64(size)),
			}).Info("chunk zip written")
			e.addFile(zw.Path(), size)
		}
	}
	return err
}

func (e *Exporter) writeRaster(zw *artifacts.ZipWriter, res compositor.Result) error {
	kind, z := res.Kind, res.Plane
	if zw != nil {
		for _, ch := range e.Comp.Chunks(kind, res.Canvas, z, e.Comp.Scale(kind)) {
			if ch.Empty && !e.Output.EmptyChunks {
				e.skip()
				continue
			}
			entry, err := zw.AddPNG(artifacts.ChunkName(z, ch.RegionX, ch.RegionY, "png"), ch.Image)
			if err != nil {
				return err
			}
			e.chunk(kind, z, ch.RegionX, ch.RegionY, zw, entry, ch.Empty)
		}
	}

	dir := filepath.Join(e.Output.Dir, string(kind))
	if e.Output.FullImages {
		path := filepath.Join(dir, fmt.Sprintf("img-%d.png", z))
		entry, err := artifacts.WritePNG(path, res.Canvas.Image())
		if err != nil {
			return err
		}
		e.plane(kind, z, path, entry)
	}
	if e.Output.PreviewSize > 0 {
		path := filepath.Join(dir, fmt.Sprintf("preview-%d.png", z))
		entry, err := artifacts.WritePNG(path, res.Canvas.Preview(e.Output.PreviewSize))
		if err != nil {
			return err
		}
		e.plane(kind, z, path, entry)
	}
	return nil
}

func (e *Exporter) writeObjects(zw *artifacts.ZipWriter, res compositor.Result) error {
	set, z := res.Objects, res.Plane
	if zw != nil {
		for _, ro := range set.Regions {
			if len(ro.Records) == 0 && !e.Output.EmptyChunks {
				e.skip()
				continue
			}
			entry, err := zw.AddJSON(artifacts.ChunkName(z, ro.RegionX, ro.RegionY, "json"), ro.Records)
			if err != nil {
				return err
			}
			e.chunk(res.Kind, z, ro.RegionX, ro.RegionY, zw, entry, len(ro.Records) == 0)
		}
	}
	if e.Output.FullImages {
		path := filepath.Join(e.Output.Dir, string(res.Kind), fmt.Sprintf("objects-%d.json", z))
		entry, err := artifacts.WriteJSON(path, set.All)
		if err != nil {
			return err
		}
		e.plane(res.Kind, z, path, entry)
	}
	e.Index.RecordObjects(e.RunID, z, set.All)
	return nil
}

func (e *Exporter) chunk(kind compositor.Kind, z, rx, ry int, zw *artifacts.ZipWriter, entry artifacts.Entry, empty bool) {
	e.mu.Lock()
	e.summary.Chunks++
	e.mu.Unlock()

	e.manifest(artifacts.ManifestEntry{
		RunID:   e.RunID,
		Kind:    string(kind),
		Plane:   z,
		RegionX: rx,
		RegionY: ry,
		Region:  rx<<8 | ry,
		File:    filepath.Base(zw.Path()),
		Entry:   entry.Name,
		Hash:    entry.Hash,
		Bytes:   entry.Bytes,
		Empty:   empty,
	})
	e.Index.RecordChunk(indexdb.Chunk{
		RunID:   e.RunID,
		Kind:    string(kind),
		Plane:   z,
		RegionX: rx,
		RegionY: ry,
		Entry:   entry.Name,
		Hash:    entry.Hash,
		Bytes:   entry.Bytes,
		Empty:   empty,
	})
}

func (e *Exporter) plane(kind compositor.Kind, z int, path string, entry artifacts.Entry) {
	e.manifest(artifacts.ManifestEntry{
		RunID:  e.RunID,
		Kind:   string(kind),
		Plane:  z,
		Region: -1,
		File:   e.rel(path),
		Hash:   entry.Hash,
		Bytes:  entry.Bytes,
	})
	e.addFile(path, int64(entry.Bytes))
}

func (e *Exporter) manifest(m artifacts.ManifestEntry) {
	if e.Manifest == nil {
		return
	}
	if err := e.Manifest.Write(m); err != nil {
		e.Logger.WithError(err).Warn("manifest write failed")
	}
}

func (e *Exporter) addFile(path string, size int64) {
	e.mu.Lock()
	e.summary.Files = append(e.summary.Files, path)
	e.summary.Bytes += size
	e.mu.Unlock()
	if e.Mirror != nil {
		e.Mirror.Enqueue(path)
	}
}

func (e *Exporter) skip() {
	e.mu.Lock()
	e.summary.Skipped++
	e.mu.Unlock()
}

func (e *Exporter) rel(path string) string {
	if r, err := filepath.Rel(e.Output.Dir, path); err == nil {
		return filepath.ToSlash(r)
	}
	return path
}
