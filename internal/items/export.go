package items

import (
	"bufio"
	"os"
	"path/filepath"
	"strconv"

	"regionatlas.dev/internal/persistence/artifacts"
)

// Output file names.
const (
	ImagesFile = "item-images.zip"
	NamesFile  = "item-names"
)

// Export writes kept sprites to outDir/item-images.zip as <id>.png and one
// "name=id" line per sprite to outDir/item-names. An id already written is
// skipped.
func Export(outDir string, kept []*Sprite) (int, error) {
	zw, err := artifacts.CreateZip(filepath.Join(outDir, ImagesFile))
	if err != nil {
		return 0, err
	}
	f, err := os.Create(filepath.Join(outDir, NamesFile))
	if err != nil {
		_ = zw.Close()
		return 0, err
	}
	w := bufio.NewWriter(f)

	written := make(map[int]bool, len(kept))
	for _, s := range kept {
		if written[s.ID] {
			continue
		}
		if _, err := zw.AddPNGBytes(strconv.Itoa(s.ID)+".png", s.PNG); err != nil {
			_ = zw.Close()
			_ = f.Close()
			return len(written), err
		}
		written[s.ID] = true
		if _, err := w.WriteString(s.Name + "=" + strconv.Itoa(s.ID) + "\n"); err != nil {
			_ = zw.Close()
			_ = f.Close()
			return len(written), err
		}
	}

	if err := w.Flush(); err != nil {
		_ = zw.Close()
		_ = f.Close()
		return len(written), err
	}
	if err := f.Close(); err != nil {
		_ = zw.Close()
		return len(written), err
	}
	return len(written), zw.Close()
}
