// Package indexgrid loads the public 10 km reference index grid as a styled
// vector layer.
package indexgrid

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/paulmach/orb/geojson"
	"go.uber.org/zap"

	"dfsfetch/gis"
)

// DefaultURL is the public reference-grid resource covering the Danish
// landmass.
const DefaultURL = "https://raw.githubusercontent.com/Esbern/DK_10km_grid/refs/heads/main/DK_10K_grid.geojson"

// LayerName is the name the loaded layer is registered under.
const LayerName = "10km_index_grid"

// Loader fetches a GeoJSON resource and adds it to a project with the fixed
// hatched style. Stateless; safe to reuse across invocations.
type Loader struct {
	Client *http.Client
	Log    *zap.Logger
}

// Load fetches url, parses it as a feature collection, applies the hatch
// style and adds the resulting layer to project. An empty URL is an error;
// callers wanting the default pass DefaultURL explicitly. On any failure no
// layer is added.
func (l *Loader) Load(url string, project *gis.Project) (*gis.VectorLayer, error) {
	if url == "" {
		return nil, fmt.Errorf("no URL provided")
	}
	log := l.Log
	if log == nil {
		log = zap.NewNop()
	}
	client := l.Client
	if client == nil {
		client = &http.Client{Timeout: 60 * time.Second}
	}

	log.Info("loading index grid", zap.String("url", url))

	data, err := fetch(client, url)
	if err != nil {
		return nil, fmt.Errorf("failed to load the GeoJSON file: %w", err)
	}

	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("failed to load the GeoJSON file: %w", err)
	}

	layer := gis.NewVectorLayer(LayerName, fc)
	layer.SetRenderer(HatchStyle())
	project.AddMapLayer(layer)

	log.Info("index grid loaded", zap.Int("features", layer.FeatureCount()))
	return layer, nil
}

func fetch(client *http.Client, url string) ([]byte, error) {
	resp, err := client.Get(url)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status: %s", resp.Status)
	}
	return io.ReadAll(resp.Body)
}
