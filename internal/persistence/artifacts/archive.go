package artifacts

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"
)

type RunMeta struct {
	RunID       string   `json:"run_id"`
	Pack        string   `json:"pack"`
	PackRegions int      `json:"pack_regions"`
	DefsDigest  string   `json:"defs_digest"`
	Kinds       []string `json:"kinds"`
	Planes      []int    `json:"planes"`
	Files       []string `json:"files"`
	CreatedAt   string   `json:"created_at"`
}

// ArchiveRun copies the given output files into outDir/archives/run_<id>/
// next to a meta.json, and returns the archive directory.
func ArchiveRun(outDir string, meta RunMeta, files []string) (string, error) {
	if meta.RunID == "" {
		return "", fmt.Errorf("archive: empty run id")
	}
	dir := filepath.Join(outDir, "archives", "run_"+meta.RunID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	meta.Files = make([]string, 0, len(files))
	for _, src := range files {
		dst := filepath.Join(dir, filepath.Base(src))
		if err := copyFile(src, dst); err != nil {
			return "", fmt.Errorf("archive %s: %w", src, err)
		}
		meta.Files = append(meta.Files, filepath.Base(dst))
	}
	if meta.CreatedAt == "" {
		meta.CreatedAt = time.Now().UTC().Format(time.RFC3339Nano)
	}
	b, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(filepath.Join(dir, "meta.json"), b, 0o644); err != nil {
		return "", err
	}
	return dir, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer func() { _ = out.Close() }()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Close()
}
