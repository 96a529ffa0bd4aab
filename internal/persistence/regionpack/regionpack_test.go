package regionpack

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/zstd"

	"regionatlas.dev/internal/atlas/atlastest"
	"regionatlas.dev/internal/atlas/region"
)

func TestWriteReadRoundTrip(t *testing.T) {
	a := atlastest.Flat(50, 50, 1)
	a.Settings[1][3][4] = region.FlagBridge | region.FlagBlocked
	a.Overlays[0][10][20] = 7
	a.OverlayPaths[0][10][20] = 6
	a.OverlayRotations[0][10][20] = 3
	a.Heights[0][0][0] = -480
	a.Heights[2][63][63] = 1 << 20
	atlastest.Place(a, 1276, 10, 2, 5, 6, 0)

	b := atlastest.Flat(50, 51, 1)

	path := filepath.Join(t.TempDir(), "packs", "regions.pack.zst")
	if err := Write(path, Header{Source: "cache-test"}, []*region.Region{a, b}); err != nil {
		t.Fatalf("Write: %v", err)
	}

	h, got, err := Read(path)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if h.Version != Version || h.Regions != 2 || h.Source != "cache-test" {
		t.Fatalf("header=%+v", h)
	}
	if len(got) != 2 {
		t.Fatalf("regions=%d want 2", len(got))
	}
	r := got[0]
	if r.RegionX != 50 || r.RegionY != 50 {
		t.Fatalf("region at %d,%d", r.RegionX, r.RegionY)
	}
	if r.Settings != a.Settings || r.Underlays != a.Underlays || r.Overlays != a.Overlays ||
		r.OverlayPaths != a.OverlayPaths || r.OverlayRotations != a.OverlayRotations || r.Heights != a.Heights {
		t.Fatalf("layers differ after round trip")
	}
	if len(r.Placements) != 1 || r.Placements[0] != a.Placements[0] {
		t.Fatalf("placements=%+v want %+v", r.Placements, a.Placements)
	}
	if got[1].RegionY != 51 || got[1].UnderlayID(0, 63, 0) != 1 {
		t.Fatalf("second region wrong: %d,%d", got[1].RegionX, got[1].RegionY)
	}
}

func TestScanStreams(t *testing.T) {
	var buf bytes.Buffer
	regions := []*region.Region{region.New(1, 1), region.New(1, 2), region.New(2, 1)}
	if err := Encode(&buf, Header{}, regions); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	var ids []int
	h, err := Scan(&buf, func(r *region.Region) error {
		ids = append(ids, r.ID())
		return nil
	})
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if h.Regions != 3 || len(ids) != 3 || ids[2] != 2<<8|1 {
		t.Fatalf("header=%+v ids=%v", h, ids)
	}
}

func compress(t *testing.T, body string) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	enc, err := zstd.NewWriter(&buf)
	if err != nil {
		t.Fatalf("zstd: %v", err)
	}
	if _, err := enc.Write([]byte(body)); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := enc.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	return &buf
}

func TestDecodeRejects(t *testing.T) {
	cases := []struct {
		name string
		body string
		want string
	}{
		{"version", `{"version":2,"regions":0}` + "\n", "unsupported pack version"},
		{"count", `{"version":1,"regions":1}` + "\n", "header lists 1 regions"},
		{"layer", `{"version":1,"regions":1}` + "\n" + `{"region_x":1,"region_y":1,"planes":[{"settings":"AA=="}]}` + "\n", "plane 0 settings"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := Decode(compress(t, tc.body))
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("err=%v want substring %q", err, tc.want)
			}
		})
	}
}

func TestDecodeRejectsStrayPlacement(t *testing.T) {
	r := region.New(3, 3)
	r.Placements = []region.Placement{{ID: 1, Type: 10, Position: region.Position{X: 0, Y: 0}}}
	var buf bytes.Buffer
	if err := Encode(&buf, Header{}, []*region.Region{r}); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if _, _, err := Decode(&buf); err == nil || !strings.Contains(err.Error(), "outside region") {
		t.Fatalf("err=%v want outside region", err)
	}
}
