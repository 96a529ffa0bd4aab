package artifacts

import (
	"encoding/json"
	"image"
	"os"
	"path/filepath"
)

// WritePNG writes img to path through a temporary file.
func WritePNG(path string, img image.Image) (Entry, error) {
	b, err := EncodePNG(img)
	if err != nil {
		return Entry{}, err
	}
	return writeFile(path, b)
}

func WriteJSON(path string, v any) (Entry, error) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return Entry{}, err
	}
	return writeFile(path, b)
}

func writeFile(path string, b []byte) (Entry, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return Entry{}, err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return Entry{}, err
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return Entry{}, err
	}
	return Entry{Name: filepath.Base(path), Hash: Hash(b), Bytes: len(b)}, nil
}
