package items

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strconv"

	"github.com/cespare/xxhash/v2"
	"github.com/sirupsen/logrus"
	"golang.org/x/image/draw"
)

// Sprite is a decoded item image.
type Sprite struct {
	ID   int
	Name string
	// PNG is the sprite file as read.
	PNG []byte

	bounds image.Rectangle
	pix    []byte
	sum    uint64
}

// SpriteSource returns the PNG bytes of one item sprite.
type SpriteSource interface {
	Sprite(id int) ([]byte, error)
}

// Dir reads <id>.png files from a directory.
type Dir string

func (d Dir) Sprite(id int) ([]byte, error) {
	return os.ReadFile(filepath.Join(string(d), strconv.Itoa(id)+".png"))
}

type FilterStats struct {
	Candidates int
	Missing    int
	Duplicates int
	Kept       int
}

// Filter keeps each candidate unless an earlier kept sprite has the same
// name and identical pixels. Candidates without a sprite are skipped.
func Filter(cands []Candidate, src SpriteSource, logger logrus.FieldLogger) ([]*Sprite, FilterStats, error) {
	st := FilterStats{Candidates: len(cands)}
	byName := map[string][]*Sprite{}
	var kept []*Sprite

	for _, c := range cands {
		raw, err := src.Sprite(c.ID)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				st.Missing++
				if logger != nil {
					logger.WithField("item", c.ID).Debug("no sprite")
				}
				continue
			}
			return nil, st, fmt.Errorf("item %d: %w", c.ID, err)
		}
		s, err := decodeSprite(c, raw)
		if err != nil {
			return nil, st, fmt.Errorf("item %d: %w", c.ID, err)
		}
		if duplicateOf(byName[c.Name], s) != nil {
			st.Duplicates++
			if logger != nil {
				logger.WithFields(logrus.Fields{"item": c.ID, "name": c.Name}).Debug("duplicate sprite")
			}
			continue
		}
		byName[c.Name] = append(byName[c.Name], s)
		kept = append(kept, s)
	}
	st.Kept = len(kept)
	return kept, st, nil
}

func decodeSprite(c Candidate, raw []byte) (*Sprite, error) {
	img, err := png.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}
	b := img.Bounds()
	nrgba := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(nrgba, nrgba.Bounds(), img, b.Min, draw.Src)

	var dims [8]byte
	binary.LittleEndian.PutUint32(dims[0:], uint32(b.Dx()))
	binary.LittleEndian.PutUint32(dims[4:], uint32(b.Dy()))
	d := xxhash.New()
	_, _ = d.Write(dims[:])
	_, _ = d.Write(nrgba.Pix)

	return &Sprite{
		ID:     c.ID,
		Name:   c.Name,
		PNG:    raw,
		bounds: nrgba.Bounds(),
		pix:    nrgba.Pix,
		sum:    d.Sum64(),
	}, nil
}

func duplicateOf(same []*Sprite, s *Sprite) *Sprite {
	for _, k := range same {
		if k.sum == s.sum && k.bounds == s.bounds && bytes.Equal(k.pix, s.pix) {
			return k
		}
	}
	return nil
}
