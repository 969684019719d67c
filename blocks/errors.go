package blocks

import "fmt"

// ErrorKind separates what went wrong inside the per-feature boundary. Both
// kinds are handled identically (reported, feature loop continues); the kind
// only disambiguates logs.
type ErrorKind int

const (
	KindTransfer ErrorKind = iota
	KindUnpack
)

func (k ErrorKind) String() string {
	switch k {
	case KindTransfer:
		return "transfer"
	case KindUnpack:
		return "unpack"
	default:
		return "unknown"
	}
}

// FeatureError is the non-fatal error for a single feature's download or
// unpack. It never aborts the remaining features.
type FeatureError struct {
	Kind     ErrorKind
	GridID   string
	Filename string
	Err      error
}

func (e *FeatureError) Error() string {
	return fmt.Sprintf("%s of %s (grid %s) failed: %v", e.Kind, e.Filename, e.GridID, e.Err)
}

func (e *FeatureError) Unwrap() error {
	return e.Err
}
