package compositor

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"regionatlas.dev/internal/atlas/canvas"
)

type Kind string

const (
	KindMap       Kind = "map"
	KindCollision Kind = "collision"
	KindObjects   Kind = "objects"
	KindHeight    Kind = "height"
)

var Kinds = []Kind{KindMap, KindCollision, KindObjects, KindHeight}

func ParseKind(s string) (Kind, error) {
	for _, k := range Kinds {
		if string(k) == s {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown kind %q", s)
}

// Scale is the pixels-per-tile of the kind's canvas.
func (c *Compositor) Scale(kind Kind) int {
	if kind == KindHeight {
		return 1
	}
	return c.Options.Scale
}

// Result is one rendered plane. Canvas is nil for KindObjects and Objects is
// nil for the raster kinds.
type Result struct {
	Kind    Kind
	Plane   int
	Canvas  *canvas.Canvas
	Objects *ObjectSet
	Elapsed time.Duration
}

// Render composites one plane of one kind.
func (c *Compositor) Render(kind Kind, z int) (Result, error) {
	start := time.Now()
	res := Result{Kind: kind, Plane: z}
	var err error
	switch kind {
	case KindMap:
		res.Canvas, err = c.Map(z)
	case KindCollision:
		res.Canvas, err = c.Collision(z)
	case KindHeight:
		res.Canvas, err = c.Height(z)
	case KindObjects:
		res.Objects, err = c.Objects(z)
	default:
		err = fmt.Errorf("unknown kind %q", kind)
	}
	res.Elapsed = time.Since(start)
	return res, err
}

// RenderAll composites the given planes concurrently, one goroutine and one
// canvas per plane. Results come back in the order of planes. Every plane is
// validated before any work starts.
func (c *Compositor) RenderAll(ctx context.Context, kind Kind, planes []int) ([]Result, error) {
	for _, z := range planes {
		if err := checkPlane(z); err != nil {
			return nil, err
		}
	}
	results := make([]Result, len(planes))
	g, ctx := errgroup.WithContext(ctx)
	for i, z := range planes {
		i, z := i, z
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			res, err := c.Render(kind, z)
			if err != nil {
				return fmt.Errorf("%s plane %d: %w", kind, z, err)
			}
			results[i] = res
			c.Logger.WithFields(logrus.Fields{"kind": kind, "plane": z, "elapsed": res.Elapsed.Round(time.Millisecond)}).Info("plane rendered")
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
