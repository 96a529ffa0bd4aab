package defs

import "regionatlas.dev/internal/atlas/mathx"

// hsl is the floating point decomposition shared by both definition kinds.
type hsl struct {
	hue, sat, light float64
}

func rgbToHSL(rgb int) hsl {
	r := float64(rgb>>16&0xFF) / 256.0
	g := float64(rgb>>8&0xFF) / 256.0
	b := float64(rgb&0xFF) / 256.0

	lo := min(r, g, b)
	hi := max(r, g, b)

	var out hsl
	out.light = (lo + hi) / 2
	if lo != hi {
		if out.light < 0.5 {
			out.sat = (hi - lo) / (hi + lo)
		} else {
			out.sat = (hi - lo) / (2.0 - hi - lo)
		}
		switch hi {
		case r:
			out.hue = (g - b) / (hi - lo)
		case g:
			out.hue = 2.0 + (b-r)/(hi-lo)
		default:
			out.hue = 4.0 + (r-g)/(hi-lo)
		}
	}
	out.hue /= 6.0
	return out
}

func (c hsl) saturation() int { return mathx.Clamp(int(c.sat*256.0), 0, 255) }
func (c hsl) lightness() int  { return mathx.Clamp(int(c.light*256.0), 0, 255) }

// UnderlayHSL derives the blend channels of an underlay from its RGB colour.
// The hue is pre-weighted by the multiplier so sums can be averaged directly.
func UnderlayHSL(rgb int) (hue, sat, light, multiplier int) {
	c := rgbToHSL(rgb)
	if c.light > 0.5 {
		multiplier = int((1.0 - c.light) * c.sat * 512.0)
	} else {
		multiplier = int(c.light * c.sat * 512.0)
	}
	if multiplier < 1 {
		multiplier = 1
	}
	return int(c.hue * float64(multiplier)), c.saturation(), c.lightness(), multiplier
}

// OverlayHSL derives the 8-bit hue, saturation and lightness of an overlay
// colour.
func OverlayHSL(rgb int) (hue, sat, light int) {
	c := rgbToHSL(rgb)
	return int(c.hue * 256.0), c.saturation(), c.lightness()
}

// Derive fills the HSL channels from Color.
func (u *Underlay) Derive() {
	u.Hue, u.Saturation, u.Lightness, u.HueMultiplier = UnderlayHSL(u.Color)
}

// Derive fills the primary and secondary HSL channels from the colours.
func (o *Overlay) Derive() {
	if o.HasSecondary() {
		o.OtherHue, o.OtherSaturation, o.OtherLightness = OverlayHSL(o.SecondaryColor)
	}
	o.Hue, o.Saturation, o.Lightness = OverlayHSL(o.Color)
}
