package indexgrid

import (
	"image/color"

	"dfsfetch/gis"
)

// Hatch style constants for the reference grid: diagonal line pattern plus a
// solid black outline.
var (
	hatchColor   = color.RGBA{R: 55, G: 126, B: 184, A: 255}
	outlineColor = color.RGBA{A: 255}
)

// HatchStyle builds the fixed fill symbol applied to the loaded index grid:
// exactly two symbol layers, line-pattern fill first, outline second.
func HatchStyle() *gis.FillSymbol {
	pattern := gis.LinePatternFill{
		LineWidth: 0.26,
		Distance:  2.0,
		Angle:     45,
		Color:     hatchColor,
	}
	outline := gis.SimpleLine{
		Width: 0.46,
		Color: outlineColor,
	}

	symbol := gis.NewFillSymbol()
	symbol.ChangeSymbolLayer(0, pattern)
	symbol.AppendSymbolLayer(outline)
	return symbol
}
