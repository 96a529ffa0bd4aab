package artifacts

import (
	"bytes"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/klauspost/compress/zip"
)

func testImage() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	img.Set(1, 2, color.RGBA{R: 255, A: 255})
	return img
}

func TestZipWriterEntries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "map.zip")
	zw, err := CreateZip(path)
	if err != nil {
		t.Fatalf("CreateZip: %v", err)
	}

	var wg sync.WaitGroup
	for z := 0; z < 4; z++ {
		wg.Add(1)
		go func(z int) {
			defer wg.Done()
			if _, err := zw.AddPNG(ChunkName(z, 50, 50, "png"), testImage()); err != nil {
				t.Errorf("AddPNG: %v", err)
			}
		}(z)
	}
	wg.Wait()
	jsonEntry, err := zw.AddJSON(ChunkName(0, 50, 50, "json"), []int{1, 2, 3})
	if err != nil {
		t.Fatalf("AddJSON: %v", err)
	}
	if n, _ := zw.Stats(); n != 5 {
		t.Fatalf("entries=%d want 5", n)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
	if _, err := zw.AddJSON("late.json", 1); err == nil {
		t.Fatalf("expected error after close")
	}

	zr, err := zip.OpenReader(path)
	if err != nil {
		t.Fatalf("OpenReader: %v", err)
	}
	defer zr.Close()
	methods := map[string]uint16{}
	files := map[string]*zip.File{}
	for _, f := range zr.File {
		methods[f.Name] = f.Method
		files[f.Name] = f
	}
	if methods["2/50-50.png"] != zip.Store {
		t.Fatalf("png method=%d want store (%v)", methods["2/50-50.png"], methods)
	}
	if methods["0/50-50.json"] != zip.Deflate {
		t.Fatalf("json method=%d want deflate", methods["0/50-50.json"])
	}

	rc, err := files["0/50-50.json"].Open()
	if err != nil {
		t.Fatalf("open entry: %v", err)
	}
	b, _ := io.ReadAll(rc)
	_ = rc.Close()
	if string(b) != "[1,2,3]" || Hash(b) != jsonEntry.Hash || jsonEntry.Bytes != len(b) {
		t.Fatalf("json entry=%q meta=%+v", b, jsonEntry)
	}
}

func TestWritePNGAndJSON(t *testing.T) {
	dir := t.TempDir()
	e, err := WritePNG(filepath.Join(dir, "img-0.png"), testImage())
	if err != nil {
		t.Fatalf("WritePNG: %v", err)
	}
	raw, err := os.ReadFile(filepath.Join(dir, "img-0.png"))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if e.Hash != Hash(raw) || e.Bytes != len(raw) || e.Name != "img-0.png" {
		t.Fatalf("entry=%+v", e)
	}
	img, err := png.Decode(bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if r, _, _, _ := img.At(1, 2).RGBA(); r != 0xFFFF {
		t.Fatalf("pixel lost")
	}
	if _, err := os.Stat(filepath.Join(dir, "img-0.png.tmp")); !os.IsNotExist(err) {
		t.Fatalf("temp file left behind: %v", err)
	}

	if _, err := WriteJSON(filepath.Join(dir, "sub", "objects-0.json"), map[string]int{"a": 1}); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}
	var m map[string]int
	b, _ := os.ReadFile(filepath.Join(dir, "sub", "objects-0.json"))
	if err := json.Unmarshal(b, &m); err != nil || m["a"] != 1 {
		t.Fatalf("json=%s err=%v", b, err)
	}
}

func TestManifestRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "manifest.jsonl.zst")
	m, err := CreateManifest(path)
	if err != nil {
		t.Fatalf("CreateManifest: %v", err)
	}
	want := []ManifestEntry{
		{RunID: "r", Kind: "map", Plane: 0, RegionX: 50, RegionY: 50, Region: 50<<8 | 50, File: "map.zip", Entry: "0/50-50.png", Hash: "ab", Bytes: 10},
		{RunID: "r", Kind: "map", Plane: 0, Region: -1, File: "img-0.png", Hash: "cd", Bytes: 99},
	}
	for _, e := range want {
		if err := m.Write(e); err != nil {
			t.Fatalf("Write: %v", err)
		}
	}
	if m.Len() != 2 {
		t.Fatalf("len=%d", m.Len())
	}
	if err := m.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	got, err := ReadManifest(path)
	if err != nil {
		t.Fatalf("ReadManifest: %v", err)
	}
	if len(got) != 2 || got[0] != want[0] || got[1] != want[1] {
		t.Fatalf("got=%+v", got)
	}
}

func TestArchiveRunCopiesFiles(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "map.zip")
	if err := os.WriteFile(src, []byte("zipdata"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	archDir, err := ArchiveRun(dir, RunMeta{RunID: "abc", Kinds: []string{"map"}}, []string{src})
	if err != nil {
		t.Fatalf("ArchiveRun: %v", err)
	}
	got, err := os.ReadFile(filepath.Join(archDir, "map.zip"))
	if err != nil || string(got) != "zipdata" {
		t.Fatalf("archived=%q err=%v", got, err)
	}
	var meta RunMeta
	b, err := os.ReadFile(filepath.Join(archDir, "meta.json"))
	if err != nil {
		t.Fatalf("expected meta.json to exist: %v", err)
	}
	if err := json.Unmarshal(b, &meta); err != nil {
		t.Fatalf("meta: %v", err)
	}
	if meta.RunID != "abc" || len(meta.Files) != 1 || meta.Files[0] != "map.zip" || meta.CreatedAt == "" {
		t.Fatalf("meta=%+v", meta)
	}

	if _, err := ArchiveRun(dir, RunMeta{}, nil); err == nil {
		t.Fatalf("expected error for empty run id")
	}
}
