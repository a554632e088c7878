package painting

import (
	"image/color"
	"math/rand/v2"
)

// Palette holds the brush colors a session can be given.
var Palette = []color.RGBA{
	{R: 39, G: 96, B: 163, A: 255},   // blue
	{R: 242, G: 108, B: 96, A: 255},  // burnt orange
	{R: 153, G: 86, B: 152, A: 255},  // purple
	{R: 0, G: 90, B: 100, A: 255},    // teal
	{R: 236, G: 0, B: 140, A: 255},   // magenta
	{R: 129, G: 203, B: 235, A: 255}, // sky
	{R: 223, G: 130, B: 182, A: 255}, // pink
}

// DefaultThickness is the stroke width in pixels.
const DefaultThickness = 20

// Brush is the color and width a session paints with.
type Brush struct {
	Color     color.RGBA `json:"color"`
	Thickness float64    `json:"thickness"`
}

// RandomBrush picks a palette color.
func RandomBrush(rng *rand.Rand, thickness float64) Brush {
	return Brush{Color: Palette[rng.IntN(len(Palette))], Thickness: thickness}
}
