// Package canvas is the raster the compositors draw on.
package canvas

import (
	"encoding/binary"
	"image"
	"image/color"

	"github.com/cespare/xxhash/v2"
	"golang.org/x/image/draw"

	"regionatlas.dev/internal/atlas/objects"
)

// Canvas is an RGBA image addressed with packed 0xAARRGGBB colours.
// Writes outside the image are dropped.
type Canvas struct {
	img *image.RGBA
}

func New(w, h int) *Canvas {
	return &Canvas{img: image.NewRGBA(image.Rect(0, 0, w, h))}
}

func (c *Canvas) Image() *image.RGBA      { return c.img }
func (c *Canvas) Bounds() image.Rectangle { return c.img.Rect }

func (c *Canvas) Set(x, y int, argb uint32) {
	if !(image.Point{X: x, Y: y}).In(c.img.Rect) {
		return
	}
	i := c.img.PixOffset(x, y)
	p := c.img.Pix[i : i+4 : i+4]
	p[0] = uint8(argb >> 16)
	p[1] = uint8(argb >> 8)
	p[2] = uint8(argb)
	p[3] = uint8(argb >> 24)
}

func (c *Canvas) At(x, y int) uint32 {
	if !(image.Point{X: x, Y: y}).In(c.img.Rect) {
		return 0
	}
	return ARGB(c.img.RGBAAt(x, y))
}

// Fill paints r, clipped to the canvas.
func (c *Canvas) Fill(r image.Rectangle, argb uint32) {
	r = r.Intersect(c.img.Rect)
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			c.Set(x, y, argb)
		}
	}
}

// Apply runs drawing commands whose coordinates are relative to origin.
func (c *Canvas) Apply(originX, originY int, cmds []objects.Command) {
	for _, cmd := range cmds {
		c.Fill(image.Rect(originX+cmd.X, originY+cmd.Y, originX+cmd.X+cmd.W, originY+cmd.Y+cmd.H), cmd.Color)
	}
}

// Chunk copies r out of the canvas.
func (c *Canvas) Chunk(r image.Rectangle) *image.RGBA {
	out := image.NewRGBA(image.Rect(0, 0, r.Dx(), r.Dy()))
	draw.Draw(out, out.Rect, c.img, r.Min, draw.Src)
	return out
}

// Uniform reports whether every pixel of r has the same colour.
func (c *Canvas) Uniform(r image.Rectangle) bool {
	return Uniform(c.img.SubImage(r.Intersect(c.img.Rect)).(*image.RGBA))
}

// Uniform reports whether every pixel of img has the same colour.
func Uniform(img *image.RGBA) bool {
	b := img.Rect
	if b.Empty() {
		return true
	}
	first := img.RGBAAt(b.Min.X, b.Min.Y)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if img.RGBAAt(x, y) != first {
				return false
			}
		}
	}
	return true
}

// Preview scales the canvas so its longer side is at most maxSide pixels.
func (c *Canvas) Preview(maxSide int) *image.RGBA {
	w, h := c.img.Rect.Dx(), c.img.Rect.Dy()
	if maxSide <= 0 || (w <= maxSide && h <= maxSide) {
		return c.Chunk(c.img.Rect)
	}
	pw, ph := maxSide, maxSide
	if w >= h {
		ph = max(1, h*maxSide/w)
	} else {
		pw = max(1, w*maxSide/h)
	}
	out := image.NewRGBA(image.Rect(0, 0, pw, ph))
	draw.ApproxBiLinear.Scale(out, out.Rect, c.img, c.img.Rect, draw.Src, nil)
	return out
}

// Digest hashes the canvas size and pixels.
func (c *Canvas) Digest() uint64 {
	return Digest(c.img)
}

func Digest(img *image.RGBA) uint64 {
	d := xxhash.New()
	var hdr [8]byte
	binary.LittleEndian.PutUint32(hdr[:4], uint32(img.Rect.Dx()))
	binary.LittleEndian.PutUint32(hdr[4:], uint32(img.Rect.Dy()))
	_, _ = d.Write(hdr[:])
	for y := img.Rect.Min.Y; y < img.Rect.Max.Y; y++ {
		i := img.PixOffset(img.Rect.Min.X, y)
		_, _ = d.Write(img.Pix[i : i+4*img.Rect.Dx()])
	}
	return d.Sum64()
}

func ARGB(c color.RGBA) uint32 {
	return uint32(c.A)<<24 | uint32(c.R)<<16 | uint32(c.G)<<8 | uint32(c.B)
}
