package gis

import (
	"fmt"
	"strconv"
	"strings"
)

// Feature is a single map feature: a record ID plus attribute values keyed by
// field name. Attribute access is read-only; features are owned by their source.
type Feature struct {
	ID         string
	Attributes map[string]interface{}
}

// Attribute returns the raw attribute value for a field name.
func (f Feature) Attribute(field string) (interface{}, bool) {
	v, ok := f.Attributes[field]
	return v, ok
}

// StringAttribute returns the attribute value rendered as a string, or ""
// when the field is absent, nil, or blank.
func (f Feature) StringAttribute(field string) string {
	v, ok := f.Attributes[field]
	if !ok || v == nil {
		return ""
	}
	return strings.TrimSpace(renderValue(v))
}

// FeatureSource provides the currently selected features of a host layer.
type FeatureSource interface {
	// Fields lists the attribute field names available on the layer.
	Fields() []string
	// SelectedFeatures returns the selected features in selection order.
	SelectedFeatures() ([]Feature, error)
}

// renderValue formats an attribute value without the float artifacts that
// JSON decoding introduces (grid IDs like 605 must not become "605.000000").
func renderValue(v interface{}) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		if t == float64(int64(t)) {
			return strconv.FormatInt(int64(t), 10)
		}
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	default:
		return fmt.Sprint(t)
	}
}
