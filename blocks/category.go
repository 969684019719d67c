package blocks

import (
	"fmt"
	"strings"
)

// Category selects which elevation-model product a block belongs to.
type Category int

const (
	TerrainModel Category = iota // DTM
	SurfaceModel                 // DSM
	PointCloud                   // PUNKTSKY
)

// template maps a category to its fixed remote directory and filename
// pattern. A static table, not conditionals, so new products are one row.
type template struct {
	remoteDir string
	pattern   string // {id} is replaced by the grid identifier
}

var templates = map[Category]template{
	TerrainModel: {"/dhm_danmarks_hoejdemodel/DTM/", "DTM_{id}_TIF_UTM32-ETRS89.zip"},
	SurfaceModel: {"/dhm_danmarks_hoejdemodel/DSM/", "DSM_{id}_TIF_UTM32-ETRS89.zip"},
	// The archive still names point cloud blocks with the TIF infix.
	PointCloud: {"/dhm_danmarks_hoejdemodel/PUNKTSKY/", "PUNKTSKY_{id}_TIF_UTM32-ETRS89.zip"},
}

// Categories returns all categories in display order.
func Categories() []Category {
	return []Category{TerrainModel, SurfaceModel, PointCloud}
}

func (c Category) String() string {
	switch c {
	case TerrainModel:
		return "terrain-model"
	case SurfaceModel:
		return "surface-model"
	case PointCloud:
		return "point-cloud"
	default:
		return fmt.Sprintf("Category(%d)", int(c))
	}
}

// ParseCategory accepts the canonical names plus the product abbreviations
// used by the archive (dtm, dsm, pointcloud/punktsky).
func ParseCategory(s string) (Category, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "terrain-model", "dtm":
		return TerrainModel, nil
	case "surface-model", "dsm":
		return SurfaceModel, nil
	case "point-cloud", "pointcloud", "punktsky":
		return PointCloud, nil
	default:
		return 0, fmt.Errorf("unknown category %q (want terrain-model, surface-model or point-cloud)", s)
	}
}

// Filename returns the archive filename for a grid identifier.
func (c Category) Filename(gridID string) string {
	return strings.ReplaceAll(templates[c].pattern, "{id}", gridID)
}

// RemoteDir returns the fixed remote directory for the category.
func (c Category) RemoteDir() string {
	return templates[c].remoteDir
}

// RemotePath returns the full remote path for a grid identifier. Pure and
// deterministic: identical inputs always yield identical paths.
func (c Category) RemotePath(gridID string) string {
	return templates[c].remoteDir + c.Filename(gridID)
}
