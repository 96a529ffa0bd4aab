package colors

import "math"

// Palette brightness exponents, brightest first.
const (
	BrightnessMax  = 0.6
	BrightnessHigh = 0.7
	BrightnessLow  = 0.8
	BrightnessMin  = 0.9
)

const paletteSize = 1 << 16

// Palette maps every packed HSL value to 0xRRGGBB.
type Palette struct {
	brightness float64
	rgb        []uint32
}

func NewPalette(brightness float64) *Palette {
	p := &Palette{brightness: brightness, rgb: make([]uint32, paletteSize)}
	for i := range p.rgb {
		p.rgb[i] = HSLToRGB(i, brightness)
	}
	return p
}

func (p *Palette) Brightness() float64 { return p.brightness }

// Lookup returns the RGB value for a palette index. The transparent sentinel
// and anything else outside the table report ok=false.
func (p *Palette) Lookup(idx int) (rgb uint32, ok bool) {
	if idx < 0 || idx >= len(p.rgb) {
		return 0, false
	}
	return p.rgb[idx], true
}

// ARGB is Lookup with the alpha channel forced opaque; 0 when not paintable.
func (p *Palette) ARGB(idx int) uint32 {
	rgb, ok := p.Lookup(idx)
	if !ok {
		return 0
	}
	return rgb | 0xFF000000
}

// HSLToRGB converts one packed HSL value and applies the brightness curve.
// The result is never 0 so callers can use 0 as "empty".
func HSLToRGB(packed int, brightness float64) uint32 {
	hue := float64(UnpackHue(packed))/64.0 + 0.0078125
	sat := float64(UnpackSaturation(packed))/8.0 + 0.0625
	lum := float64(UnpackLightness(packed)) / 128.0

	chroma := (1.0 - math.Abs(2.0*lum-1.0)) * sat
	x := chroma * (1 - math.Abs(math.Mod(hue*6.0, 2.0)-1.0))
	light := lum - chroma/2

	r, g, b := light, light, light
	switch int(hue * 6.0) {
	case 0:
		r += chroma
		g += x
	case 1:
		g += chroma
		r += x
	case 2:
		g += chroma
		b += x
	case 3:
		b += chroma
		g += x
	case 4:
		b += chroma
		r += x
	default:
		r += chroma
		b += x
	}

	rgb := uint32(int(r*256.0))<<16 | uint32(int(g*256.0))<<8 | uint32(int(b*256.0))
	rgb = adjustForBrightness(rgb, brightness)
	if rgb == 0 {
		rgb = 1
	}
	return rgb
}

func adjustForBrightness(rgb uint32, brightness float64) uint32 {
	r := float64(rgb>>16) / 256.0
	g := float64(rgb>>8&0xFF) / 256.0
	b := float64(rgb&0xFF) / 256.0
	r = math.Pow(r, brightness)
	g = math.Pow(g, brightness)
	b = math.Pow(b, brightness)
	return uint32(int(r*256.0))<<16 | uint32(int(g*256.0))<<8 | uint32(int(b*256.0))
}
