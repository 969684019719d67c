package gis

import (
	"fmt"
	"image/color"
)

// SymbolLayer is one layer of a fill symbol. Concrete types carry the
// cosmetic parameters the renderer needs; there is no rendering here.
type SymbolLayer interface {
	symbolLayer()
}

// SimpleFill is a plain solid fill, the default layer of a new symbol.
type SimpleFill struct {
	Color color.RGBA
}

// LinePatternFill fills a polygon with evenly spaced parallel lines.
type LinePatternFill struct {
	LineWidth float64 // millimetres
	Distance  float64 // spacing between lines, millimetres
	Angle     float64 // degrees
	Color     color.RGBA
}

// SimpleLine is a solid outline stroke.
type SimpleLine struct {
	Width float64 // millimetres
	Color color.RGBA
}

func (SimpleFill) symbolLayer()      {}
func (LinePatternFill) symbolLayer() {}
func (SimpleLine) symbolLayer()      {}

// FillSymbol is an ordered stack of symbol layers applied to a polygon layer.
type FillSymbol struct {
	layers []SymbolLayer
}

// NewFillSymbol returns a symbol with a single default solid fill layer,
// matching how host fill symbols are constructed before restyling.
func NewFillSymbol() *FillSymbol {
	return &FillSymbol{layers: []SymbolLayer{SimpleFill{Color: color.RGBA{A: 255}}}}
}

// ChangeSymbolLayer replaces the layer at index i.
func (s *FillSymbol) ChangeSymbolLayer(i int, l SymbolLayer) error {
	if i < 0 || i >= len(s.layers) {
		return fmt.Errorf("symbol layer index %d out of range", i)
	}
	s.layers[i] = l
	return nil
}

// AppendSymbolLayer adds a layer on top of the stack.
func (s *FillSymbol) AppendSymbolLayer(l SymbolLayer) {
	s.layers = append(s.layers, l)
}

// Layers returns the symbol layers bottom-up.
func (s *FillSymbol) Layers() []SymbolLayer {
	return s.layers
}
