package canvas

import (
	"image"
	"image/color"
	"math"

	"linkage-tracer/pkg/geometry"
)

// digitPatterns contains 3x5 pixel patterns for digits 0-9.
// Each digit is represented as 5 rows of 3 bits.
var digitPatterns = [10][5]uint8{
	{0b111, 0b101, 0b101, 0b101, 0b111}, // 0
	{0b010, 0b110, 0b010, 0b010, 0b111}, // 1
	{0b111, 0b001, 0b111, 0b100, 0b111}, // 2
	{0b111, 0b001, 0b111, 0b001, 0b111}, // 3
	{0b101, 0b101, 0b111, 0b001, 0b001}, // 4
	{0b111, 0b100, 0b111, 0b001, 0b111}, // 5
	{0b111, 0b100, 0b111, 0b101, 0b111}, // 6
	{0b111, 0b001, 0b001, 0b001, 0b001}, // 7
	{0b111, 0b101, 0b111, 0b101, 0b111}, // 8
	{0b111, 0b101, 0b111, 0b001, 0b111}, // 9
}

// letterPatterns contains 3x5 pixel patterns for letters and symbols used
// in measurement labels.
var letterPatterns = map[rune][5]uint8{
	'A': {0b010, 0b101, 0b111, 0b101, 0b101},
	'B': {0b110, 0b101, 0b110, 0b101, 0b110},
	'C': {0b011, 0b100, 0b100, 0b100, 0b011},
	'D': {0b110, 0b101, 0b101, 0b101, 0b110},
	'E': {0b111, 0b100, 0b110, 0b100, 0b111},
	'F': {0b111, 0b100, 0b110, 0b100, 0b100},
	'G': {0b011, 0b100, 0b101, 0b101, 0b011},
	'H': {0b101, 0b101, 0b111, 0b101, 0b101},
	'I': {0b111, 0b010, 0b010, 0b010, 0b111},
	'K': {0b101, 0b101, 0b110, 0b101, 0b101},
	'L': {0b100, 0b100, 0b100, 0b100, 0b111},
	'M': {0b101, 0b111, 0b101, 0b101, 0b101},
	'N': {0b101, 0b111, 0b111, 0b101, 0b101},
	'O': {0b010, 0b101, 0b101, 0b101, 0b010},
	'P': {0b110, 0b101, 0b110, 0b100, 0b100},
	'R': {0b110, 0b101, 0b110, 0b101, 0b101},
	'S': {0b011, 0b100, 0b010, 0b001, 0b110},
	'T': {0b111, 0b010, 0b010, 0b010, 0b010},
	'U': {0b101, 0b101, 0b101, 0b101, 0b111},
	'W': {0b101, 0b101, 0b101, 0b111, 0b101},
	'X': {0b101, 0b101, 0b010, 0b101, 0b101},
	'+': {0b000, 0b010, 0b111, 0b010, 0b000},
	'-': {0b000, 0b000, 0b111, 0b000, 0b000},
	'.': {0b000, 0b000, 0b000, 0b000, 0b010},
	' ': {0b000, 0b000, 0b000, 0b000, 0b000},
}

// getCharPattern returns the 3x5 pixel pattern for a character.
// Returns a zero pattern for unsupported characters.
func getCharPattern(ch rune) [5]uint8 {
	if ch >= '0' && ch <= '9' {
		return digitPatterns[ch-'0']
	}
	if ch >= 'a' && ch <= 'z' {
		ch = ch - 'a' + 'A'
	}
	if pattern, ok := letterPatterns[ch]; ok {
		return pattern
	}
	return [5]uint8{}
}

func setPixel(output *image.RGBA, x, y int, col color.RGBA) {
	b := output.Bounds()
	if x >= b.Min.X && x < b.Max.X && y >= b.Min.Y && y < b.Max.Y {
		output.Set(x, y, col)
	}
}

// drawLine draws a line between two points using Bresenham's algorithm.
func drawLine(output *image.RGBA, x1, y1, x2, y2 int, col color.RGBA, thickness int) {
	dx := x2 - x1
	dy := y2 - y1
	if dx < 0 {
		dx = -dx
	}
	if dy < 0 {
		dy = -dy
	}

	sx := 1
	if x1 > x2 {
		sx = -1
	}
	sy := 1
	if y1 > y2 {
		sy = -1
	}

	err := dx - dy

	for {
		for t := -thickness / 2; t <= thickness/2; t++ {
			for s := -thickness / 2; s <= thickness/2; s++ {
				setPixel(output, x1+s, y1+t, col)
			}
		}

		if x1 == x2 && y1 == y2 {
			break
		}

		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x1 += sx
		}
		if e2 < dx {
			err += dx
			y1 += sy
		}
	}
}

// drawDashedLine draws a line in alternating on/off segments.
func drawDashedLine(output *image.RGBA, a, b geometry.Point2D, col color.RGBA, thickness int, dashLen float64) {
	length := a.Distance(b)
	if length == 0 {
		return
	}
	segments := int(length / dashLen)
	if segments < 1 {
		segments = 1
	}
	for i := 0; i < segments; i += 2 {
		t0 := float64(i) / float64(segments)
		t1 := float64(i+1) / float64(segments)
		p0 := a.Lerp(b, t0)
		p1 := a.Lerp(b, t1)
		drawLine(output, int(p0.X), int(p0.Y), int(p1.X), int(p1.Y), col, thickness)
	}
}

// drawCircle draws a circle outline with a 2 pixel stroke, or a filled
// disc.
func drawCircle(output *image.RGBA, cx, cy, r float64, col color.RGBA, filled bool) {
	minX := int(cx - r - 1)
	maxX := int(cx + r + 1)
	minY := int(cy - r - 1)
	maxY := int(cy + r + 1)

	r2 := r * r
	innerR2 := (r - 2) * (r - 2)

	for y := minY; y <= maxY; y++ {
		for x := minX; x <= maxX; x++ {
			dx := float64(x) - cx
			dy := float64(y) - cy
			dist2 := dx*dx + dy*dy

			if filled {
				if dist2 <= r2 {
					setPixel(output, x, y, col)
				}
			} else if dist2 <= r2 && dist2 >= innerR2 {
				setPixel(output, x, y, col)
			}
		}
	}
}

// drawRing fills the annulus between two radii with alpha blending, used
// for the nudge donut.
func drawRing(output *image.RGBA, cx, cy, inner, outer float64, col color.RGBA) {
	minX := int(cx - outer - 1)
	maxX := int(cx + outer + 1)
	minY := int(cy - outer - 1)
	maxY := int(cy + outer + 1)

	inner2 := inner * inner
	outer2 := outer * outer

	for y := minY; y <= maxY; y++ {
		for x := minX; x <= maxX; x++ {
			dx := float64(x) - cx
			dy := float64(y) - cy
			dist2 := dx*dx + dy*dy
			if dist2 >= inner2 && dist2 <= outer2 {
				blendPixel(output, x, y, col)
			}
		}
	}
}

// blendPixel source-over composites col onto the output pixel.
func blendPixel(output *image.RGBA, x, y int, col color.RGBA) {
	b := output.Bounds()
	if x < b.Min.X || x >= b.Max.X || y < b.Min.Y || y >= b.Max.Y {
		return
	}
	if col.A == 255 {
		output.SetRGBA(x, y, col)
		return
	}
	dst := output.RGBAAt(x, y)
	a := uint32(col.A)
	ia := 255 - a
	output.SetRGBA(x, y, color.RGBA{
		R: uint8((uint32(col.R)*a + uint32(dst.R)*ia) / 255),
		G: uint8((uint32(col.G)*a + uint32(dst.G)*ia) / 255),
		B: uint8((uint32(col.B)*a + uint32(dst.B)*ia) / 255),
		A: 255,
	})
}

// fillTriangle fills the triangle spanned by three points.
func fillTriangle(output *image.RGBA, tri [3]geometry.Point2D, col color.RGBA) {
	minX := int(math.Min(tri[0].X, math.Min(tri[1].X, tri[2].X)))
	maxX := int(math.Max(tri[0].X, math.Max(tri[1].X, tri[2].X))) + 1
	minY := int(math.Min(tri[0].Y, math.Min(tri[1].Y, tri[2].Y)))
	maxY := int(math.Max(tri[0].Y, math.Max(tri[1].Y, tri[2].Y))) + 1

	for y := minY; y <= maxY; y++ {
		for x := minX; x <= maxX; x++ {
			p := geometry.Point2D{X: float64(x) + 0.5, Y: float64(y) + 0.5}
			if pointInTriangle(p, tri) {
				setPixel(output, x, y, col)
			}
		}
	}
}

func pointInTriangle(p geometry.Point2D, tri [3]geometry.Point2D) bool {
	d1 := edgeSign(p, tri[0], tri[1])
	d2 := edgeSign(p, tri[1], tri[2])
	d3 := edgeSign(p, tri[2], tri[0])

	hasNeg := d1 < 0 || d2 < 0 || d3 < 0
	hasPos := d1 > 0 || d2 > 0 || d3 > 0
	return !(hasNeg && hasPos)
}

func edgeSign(p, a, b geometry.Point2D) float64 {
	return (p.X-b.X)*(a.Y-b.Y) - (a.X-b.X)*(p.Y-b.Y)
}

// DrawLabel draws text centered at the given pixel using the built-in 3x5
// font scaled up.
func DrawLabel(output *image.RGBA, label string, centerX, centerY int, col color.RGBA, scale int) {
	if scale < 1 {
		scale = 1
	}
	if scale > 6 {
		scale = 6
	}

	charWidth := 3 * scale
	charHeight := 5 * scale
	spacing := scale

	runes := []rune(label)
	labelWidth := len(runes)*charWidth + (len(runes)-1)*spacing

	startX := centerX - labelWidth/2
	startY := centerY - charHeight/2

	for i, ch := range runes {
		pattern := getCharPattern(ch)
		charX := startX + i*(charWidth+spacing)

		for row := 0; row < 5; row++ {
			for c := 0; c < 3; c++ {
				if (pattern[row] & (1 << (2 - c))) == 0 {
					continue
				}
				for dy := 0; dy < scale; dy++ {
					for dx := 0; dx < scale; dx++ {
						setPixel(output, charX+c*scale+dx, startY+row*scale+dy, col)
					}
				}
			}
		}
	}
}

// LabelWidth returns the pixel width DrawLabel will use for a string.
func LabelWidth(label string, scale int) int {
	if scale < 1 {
		scale = 1
	}
	n := len([]rune(label))
	if n == 0 {
		return 0
	}
	return n*3*scale + (n-1)*scale
}
