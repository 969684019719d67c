package gis

import "github.com/paulmach/orb/geojson"

// VectorLayer is a named vector layer with an optional fill renderer.
type VectorLayer struct {
	name     string
	features *geojson.FeatureCollection
	renderer *FillSymbol
}

// NewVectorLayer wraps a feature collection as a layer.
func NewVectorLayer(name string, fc *geojson.FeatureCollection) *VectorLayer {
	return &VectorLayer{name: name, features: fc}
}

// Name returns the layer name.
func (l *VectorLayer) Name() string {
	return l.name
}

// FeatureCount returns the number of features in the layer.
func (l *VectorLayer) FeatureCount() int {
	if l.features == nil {
		return 0
	}
	return len(l.features.Features)
}

// Features exposes the underlying feature collection.
func (l *VectorLayer) Features() *geojson.FeatureCollection {
	return l.features
}

// SetRenderer replaces the layer's fill symbol.
func (l *VectorLayer) SetRenderer(s *FillSymbol) {
	l.renderer = s
}

// Renderer returns the layer's fill symbol, nil when unstyled.
func (l *VectorLayer) Renderer() *FillSymbol {
	return l.renderer
}

// Project is an ordered registry of map layers, standing in for the host
// application's active project. Invocations are single-threaded, so no
// locking is required.
type Project struct {
	layers []*VectorLayer
}

// NewProject returns an empty project.
func NewProject() *Project {
	return &Project{}
}

// AddMapLayer appends a layer to the project.
func (p *Project) AddMapLayer(l *VectorLayer) {
	p.layers = append(p.layers, l)
}

// MapLayers returns the project's layers in registration order.
func (p *Project) MapLayers() []*VectorLayer {
	return p.layers
}
