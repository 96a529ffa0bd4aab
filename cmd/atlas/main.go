package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"regionatlas.dev/internal/atlas/colors"
	"regionatlas.dev/internal/atlas/compositor"
	"regionatlas.dev/internal/atlas/defs"
	"regionatlas.dev/internal/atlas/region"
	"regionatlas.dev/internal/config"
	"regionatlas.dev/internal/export"
	"regionatlas.dev/internal/logging"
	"regionatlas.dev/internal/persistence/artifacts"
	"regionatlas.dev/internal/persistence/indexdb"
	"regionatlas.dev/internal/persistence/regionpack"
)

func main() {
	var (
		packPath   = flag.String("pack", "regions.pack.zst", "region pack to render")
		defsDir    = flag.String("defs", "./defs", "definition catalog directory")
		configPath = flag.String("config", "", "path to atlas.yaml (optional)")
		outDir     = flag.String("out", "", "output directory (overrides output.dir)")
		kindsFlag  = flag.String("kinds", "", "comma separated kinds: map,collision,objects,height")
		planesFlag = flag.String("planes", "", "comma separated planes, e.g. 0,1,2,3")
		logLevel   = flag.String("log_level", "", "log level (or set LOG_LEVEL)")
		logFormat  = flag.String("log_format", "", "text or json (or set LOG_FORMAT)")
	)
	flag.Parse()

	logger := logging.New(logging.Options{Level: *logLevel, Format: *logFormat})

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "load config:", err)
		os.Exit(2)
	}
	if *outDir != "" {
		cfg.Output.Dir = *outDir
	}
	if *kindsFlag != "" {
		cfg.Kinds = splitList(*kindsFlag)
	}
	if *planesFlag != "" {
		planes, err := parsePlanes(*planesFlag)
		if err != nil {
			fmt.Fprintln(os.Stderr, "bad -planes:", err)
			os.Exit(2)
		}
		cfg.Planes = planes
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(2)
	}

	ctx, cancel := signalContext()
	defer cancel()

	if err := run(ctx, cfg, *packPath, *defsDir, logger); err != nil {
		logger.WithError(err).Error("export failed")
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, packPath, defsDir string, logger *logrus.Logger) error {
	kinds, err := cfg.ParsedKinds()
	if err != nil {
		return err
	}

	header, regions, err := regionpack.Read(packPath)
	if err != nil {
		return fmt.Errorf("read pack: %w", err)
	}
	grid, err := region.NewGrid(regions)
	if err != nil {
		return fmt.Errorf("region grid: %w", err)
	}
	tables, err := defs.Load(defsDir)
	if err != nil {
		return fmt.Errorf("load defs: %w", err)
	}
	logger.WithFields(logrus.Fields{
		"pack":      packPath,
		"source":    header.Source,
		"regions":   grid.Len(),
		"underlays": len(tables.Underlays),
		"overlays":  len(tables.Overlays),
		"objects":   len(tables.Objects),
	}).Info("inputs loaded")

	if err := os.MkdirAll(cfg.Output.Dir, 0o755); err != nil {
		return err
	}

	runID := uuid.NewString()
	log := logger.WithField("run", runID)
	comp := compositor.New(grid, tables, colors.NewPalette(cfg.Render.PaletteBrightness), cfg.Options(), log)

	idx, err := openIndex(cfg.Output)
	if err != nil {
		return fmt.Errorf("open index: %w", err)
	}
	if idx != nil {
		defer idx.Close()
		if err := idx.BeginRun(ctx, indexdb.Run{
			ID:          runID,
			Pack:        packPath,
			PackRegions: header.Regions,
			DefsDigest:  tables.Digest(),
			Kinds:       cfg.Kinds,
			Planes:      cfg.Planes,
		}); err != nil {
			return err
		}
		if err := idx.UpsertCatalogs(ctx, defsDir, tables.Digests); err != nil {
			return fmt.Errorf("index catalogs: %w", err)
		}
	}

	var manifest *artifacts.Manifest
	if cfg.Output.Manifest {
		manifest, err = artifacts.CreateManifest(filepath.Join(cfg.Output.Dir, "manifest.jsonl.zst"))
		if err != nil {
			return err
		}
	}

	mirror, err := buildMirror(cfg.Mirror, cfg.Output.Dir, log)
	if err != nil {
		return err
	}
	defer mirror.Close()

	exp := &export.Exporter{
		Comp:     comp,
		Output:   cfg.Output,
		RunID:    runID,
		Manifest: manifest,
		Index:    idx,
		Logger:   log,
	}
	if mirror != nil {
		exp.Mirror = mirror
	}
	summary, err := exp.Export(ctx, kinds, cfg.Planes)
	if manifest != nil {
		if cerr := manifest.Close(); err == nil {
			err = cerr
		}
	}
	if err != nil {
		return err
	}
	if manifest != nil && mirror != nil {
		mirror.Enqueue(manifest.Path())
	}
	idx.FinishRun(runID, summary.Chunks)

	if cfg.Output.Archive {
		files := summary.Files
		if manifest != nil {
			files = append(files, manifest.Path())
		}
		dir, err := artifacts.ArchiveRun(cfg.Output.Dir, artifacts.RunMeta{
			RunID:       runID,
			Pack:        packPath,
			PackRegions: header.Regions,
			DefsDigest:  tables.Digest(),
			Kinds:       cfg.Kinds,
			Planes:      cfg.Planes,
			CreatedAt:   time.Now().UTC().Format(time.RFC3339Nano),
		}, files)
		if err != nil {
			return err
		}
		log.WithField("dir", dir).Info("run archived")
	}
	if st := idx.Stats(); st.DropChunkTotal > 0 || st.DropObjectTotal > 0 {
		log.WithFields(logrus.Fields{"chunks": st.DropChunkTotal, "objects": st.DropObjectTotal}).Warn("index dropped rows")
	}
	return nil
}

func openIndex(out config.Output) (*indexdb.SQLiteIndex, error) {
	path := strings.TrimSpace(out.IndexDB)
	if path == "" {
		return nil, nil
	}
	if !filepath.IsAbs(path) {
		path = filepath.Join(out.Dir, path)
	}
	return indexdb.OpenSQLite(path)
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func parsePlanes(s string) ([]int, error) {
	var out []int
	for _, p := range splitList(s) {
		z, err := strconv.Atoi(p)
		if err != nil {
			return nil, err
		}
		out = append(out, z)
	}
	return out, nil
}

func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	ch := make(chan os.Signal, 2)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-ch
		cancel()
	}()
	return ctx, cancel
}
