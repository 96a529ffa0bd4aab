package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"

	"regionatlas.dev/internal/items"
	"regionatlas.dev/internal/logging"
)

func main() {
	var (
		defsPath   = flag.String("items", "./defs/items.json", "item definitions")
		spritesDir = flag.String("sprites", "./sprites", "directory of <id>.png item sprites")
		outDir     = flag.String("out", "./itemfinder", "output directory")
		logLevel   = flag.String("log_level", "", "log level (or set LOG_LEVEL)")
	)
	flag.Parse()

	logger := logging.New(logging.Options{Level: *logLevel})

	defs, err := items.Load(*defsPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "load items:", err)
		os.Exit(1)
	}
	cands := items.Candidates(defs)
	kept, st, err := items.Filter(cands, items.Dir(*spritesDir), logger)
	if err != nil {
		fmt.Fprintln(os.Stderr, "filter:", err)
		os.Exit(1)
	}
	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		fmt.Fprintln(os.Stderr, "mkdir:", err)
		os.Exit(1)
	}
	n, err := items.Export(*outDir, kept)
	if err != nil {
		fmt.Fprintln(os.Stderr, "export:", err)
		os.Exit(1)
	}
	logger.WithFields(logrus.Fields{
		"items":      len(defs),
		"candidates": st.Candidates,
		"missing":    st.Missing,
		"duplicates": st.Duplicates,
		"written":    n,
		"out":        *outDir,
	}).Info("item sprites exported")
}
