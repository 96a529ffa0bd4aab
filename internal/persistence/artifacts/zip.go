// Package artifacts writes the files an export run produces: chunk zips,
// full images, object JSON, the manifest and per-run archives.
package artifacts

import (
	"bytes"
	"encoding/json"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/cespare/xxhash/v2"
	"github.com/klauspost/compress/zip"
)

// Entry describes one written payload.
type Entry struct {
	Name  string
	Hash  string
	Bytes int
}

// ZipWriter is safe for concurrent use.
type ZipWriter struct {
	path string

	mu      sync.Mutex
	f       *os.File
	zw      *zip.Writer
	entries int
	bytes   int64
}

func CreateZip(path string) (*ZipWriter, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, err
	}
	return &ZipWriter{path: path, f: f, zw: zip.NewWriter(f)}, nil
}

func (z *ZipWriter) Path() string { return z.path }

// AddPNG stores img as name. PNG data is already compressed so it is not
// deflated again.
func (z *ZipWriter) AddPNG(name string, img image.Image) (Entry, error) {
	b, err := EncodePNG(img)
	if err != nil {
		return Entry{}, fmt.Errorf("%s: %w", name, err)
	}
	return z.add(name, zip.Store, b)
}

// AddPNGBytes stores already encoded PNG data as name.
func (z *ZipWriter) AddPNGBytes(name string, b []byte) (Entry, error) {
	return z.add(name, zip.Store, b)
}

func (z *ZipWriter) AddJSON(name string, v any) (Entry, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return Entry{}, fmt.Errorf("%s: %w", name, err)
	}
	return z.add(name, zip.Deflate, b)
}

func (z *ZipWriter) add(name string, method uint16, b []byte) (Entry, error) {
	z.mu.Lock()
	defer z.mu.Unlock()
	if z.zw == nil {
		return Entry{}, fmt.Errorf("%s: zip closed", z.path)
	}
	w, err := z.zw.CreateHeader(&zip.FileHeader{Name: name, Method: method})
	if err != nil {
		return Entry{}, err
	}
	if _, err := w.Write(b); err != nil {
		return Entry{}, err
	}
	z.entries++
	z.bytes += int64(len(b))
	return Entry{Name: name, Hash: Hash(b), Bytes: len(b)}, nil
}

// Stats returns the number of entries and their uncompressed size.
func (z *ZipWriter) Stats() (entries int, bytes int64) {
	z.mu.Lock()
	defer z.mu.Unlock()
	return z.entries, z.bytes
}

func (z *ZipWriter) Close() error {
	z.mu.Lock()
	defer z.mu.Unlock()
	if z.zw == nil {
		return nil
	}
	err := z.zw.Close()
	z.zw = nil
	if cerr := z.f.Close(); err == nil {
		err = cerr
	}
	return err
}

// ChunkName is the zip entry of one region's chunk on plane z.
func ChunkName(z, regionX, regionY int, ext string) string {
	return strconv.Itoa(z) + "/" + strconv.Itoa(regionX) + "-" + strconv.Itoa(regionY) + "." + ext
}

func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Hash is the hex xxhash64 of b.
func Hash(b []byte) string {
	return fmt.Sprintf("%016x", xxhash.Sum64(b))
}
