// Package colors implements the 16-bit packed HSL colour space used by map
// definitions and the brightness-scaled palette that maps it to RGB.
package colors

import "regionatlas.dev/internal/atlas/mathx"

// Transparent marks a colour that must not be painted. It lies outside the
// palette so it can never collide with a real index.
const Transparent = 12345678

// Packed HSL markers accepted by AdjustUnderlay / AdjustOverlay.
const (
	Unset   = -1
	NoPaint = -2
)

// DefaultLightness is the target brightness the map compositors request.
const DefaultLightness = 96

// PackHSL folds 8-bit hue/saturation/lightness into the 16-bit format:
// 6 bits hue, 3 bits saturation, 7 bits lightness. Saturation is halved once
// for each lightness threshold crossed.
func PackHSL(hue, sat, light int) int {
	if light > 179 {
		sat /= 2
	}
	if light > 192 {
		sat /= 2
	}
	if light > 217 {
		sat /= 2
	}
	if light > 243 {
		sat /= 2
	}
	return (sat/32)<<7 + (hue/4)<<10 + light/2
}

// AdjustUnderlay rescales the lightness bits of a packed underlay colour.
func AdjustUnderlay(packed, lightness int) int {
	if packed == Unset {
		return Transparent
	}
	return adjust(packed, lightness)
}

// AdjustOverlay is AdjustUnderlay for overlay colours, which also know the
// no-paint marker and treat Unset as a bare lightness.
func AdjustOverlay(packed, lightness int) int {
	switch packed {
	case NoPaint:
		return Transparent
	case Unset:
		return mathx.Clamp(lightness, 2, 126)
	}
	return adjust(packed, lightness)
}

func adjust(packed, lightness int) int {
	l := (packed & 127) * lightness / 128
	l = mathx.Clamp(l, 2, 126)
	return (packed & 0xFF80) + l
}

func UnpackHue(packed int) int        { return packed >> 10 & 63 }
func UnpackSaturation(packed int) int { return packed >> 7 & 7 }
func UnpackLightness(packed int) int  { return packed & 127 }
