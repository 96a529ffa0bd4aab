package artifacts

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/klauspost/compress/zstd"
)

// ManifestEntry is one line of the manifest.
type ManifestEntry struct {
	RunID   string `json:"run_id"`
	Kind    string `json:"kind"`
	Plane   int    `json:"plane"`
	RegionX int    `json:"region_x"`
	RegionY int    `json:"region_y"`
	// Region is -1 for whole-plane artifacts.
	Region int    `json:"region"`
	File   string `json:"file"`
	Entry  string `json:"entry"`
	Hash   string `json:"hash"`
	Bytes  int    `json:"bytes"`
	Empty  bool   `json:"empty,omitempty"`
}

// Manifest appends JSON lines to a zstd stream. Safe for concurrent use.
type Manifest struct {
	path string

	mu  sync.Mutex
	f   *os.File
	enc *zstd.Encoder
	w   *bufio.Writer
	n   int
}

func CreateManifest(path string) (*Manifest, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, err
	}
	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	return &Manifest{
		path: path,
		f:    f,
		enc:  enc,
		w:    bufio.NewWriterSize(enc, 128*1024),
	}, nil
}

func (m *Manifest) Path() string { return m.path }

func (m *Manifest) Write(e ManifestEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	b, err := json.Marshal(e)
	if err != nil {
		return err
	}
	if _, err := m.w.Write(b); err != nil {
		return err
	}
	if err := m.w.WriteByte('\n'); err != nil {
		return err
	}
	m.n++
	return nil
}

func (m *Manifest) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.n
}

func (m *Manifest) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.f == nil {
		return nil
	}
	err := m.w.Flush()
	if cerr := m.enc.Close(); err == nil {
		err = cerr
	}
	if cerr := m.f.Close(); err == nil {
		err = cerr
	}
	m.f, m.enc, m.w = nil, nil, nil
	return err
}

// ReadManifest decodes every entry of a manifest file.
func ReadManifest(path string) ([]ManifestEntry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	dec, err := zstd.NewReader(f)
	if err != nil {
		return nil, err
	}
	defer dec.Close()

	var out []ManifestEntry
	sc := bufio.NewScanner(dec)
	sc.Buffer(make([]byte, 64*1024), 1<<20)
	for sc.Scan() {
		var e ManifestEntry
		if err := json.Unmarshal(sc.Bytes(), &e); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, sc.Err()
}
