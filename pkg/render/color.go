package render

import (
	"image/color"

	"golang.org/x/image/math/f32"
)

// ToRGBA converts a float RGBA color in [0,1] to an 8-bit straight-alpha
// color. Components outside the range are clamped.
func ToRGBA(c f32.Vec4) color.RGBA {
	return color.RGBA{
		R: channel(c[0]),
		G: channel(c[1]),
		B: channel(c[2]),
		A: channel(c[3]),
	}
}

// FromColor converts any color.Color to a float RGBA color in [0,1] with
// straight alpha.
func FromColor(c color.Color) f32.Vec4 {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return f32.Vec4{
		float32(n.R) / 255,
		float32(n.G) / 255,
		float32(n.B) / 255,
		float32(n.A) / 255,
	}
}

// Clamp limits every component of c to [0,1].
func Clamp(c f32.Vec4) f32.Vec4 {
	for i := range c {
		c[i] = min(max(c[i], 0), 1)
	}
	return c
}

func channel(x float32) uint8 {
	return uint8(min(max(x, 0), 1)*255 + 0.5)
}
