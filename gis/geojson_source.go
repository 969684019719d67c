package gis

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/paulmach/orb/geojson"
)

// GeoJSONSource is a FeatureSource backed by a GeoJSON feature collection,
// the file-based stand-in for a host layer's active selection. By default
// every feature counts as selected; Select narrows the selection to a set of
// feature IDs.
type GeoJSONSource struct {
	name     string
	fc       *geojson.FeatureCollection
	selected map[string]bool
}

// OpenGeoJSON reads a feature collection from a file on disk.
func OpenGeoJSON(path string) (*GeoJSONSource, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return NewGeoJSONSource(name, data)
}

// NewGeoJSONSource parses a feature collection from raw GeoJSON.
func NewGeoJSONSource(name string, data []byte) (*GeoJSONSource, error) {
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse GeoJSON: %w", err)
	}
	return &GeoJSONSource{name: name, fc: fc}, nil
}

// Name returns the layer name the source was opened under.
func (s *GeoJSONSource) Name() string {
	return s.name
}

// Select limits the selection to features whose ID is in ids. An empty list
// restores the select-all default.
func (s *GeoJSONSource) Select(ids []string) {
	if len(ids) == 0 {
		s.selected = nil
		return
	}
	s.selected = make(map[string]bool, len(ids))
	for _, id := range ids {
		s.selected[strings.TrimSpace(id)] = true
	}
}

// Fields returns the union of property keys across all features, sorted.
func (s *GeoJSONSource) Fields() []string {
	seen := make(map[string]bool)
	for _, f := range s.fc.Features {
		for k := range f.Properties {
			seen[k] = true
		}
	}
	fields := make([]string, 0, len(seen))
	for k := range seen {
		fields = append(fields, k)
	}
	sort.Strings(fields)
	return fields
}

// SelectedFeatures returns the selected features in collection order.
func (s *GeoJSONSource) SelectedFeatures() ([]Feature, error) {
	var out []Feature
	for i, f := range s.fc.Features {
		id := featureID(f, i)
		if s.selected != nil && !s.selected[id] {
			continue
		}
		out = append(out, Feature{ID: id, Attributes: map[string]interface{}(f.Properties)})
	}
	return out, nil
}

func featureID(f *geojson.Feature, index int) string {
	if f.ID == nil {
		return fmt.Sprintf("%d", index)
	}
	return renderValue(f.ID)
}
