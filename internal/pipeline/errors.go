package pipeline

import (
	"errors"

	"colorgrid/internal/cells"
	"colorgrid/internal/classify"
	"colorgrid/internal/detect"
	"colorgrid/internal/rectify"
)

// Stage errors, re-exported so callers need only this package.
var (
	ErrBoardNotFound     = detect.ErrBoardNotFound
	ErrInvalidGeometry   = rectify.ErrInvalidGeometry
	ErrEmptyCellRegion   = cells.ErrEmptyCellRegion
	ErrClusteringFailure = classify.ErrClusteringFailure
)

// Error kinds reported by Kind.
const (
	KindBoardNotFound     = "BoardNotFound"
	KindInvalidGeometry   = "InvalidGeometry"
	KindEmptyCellRegion   = "EmptyCellRegion"
	KindClusteringFailure = "ClusteringFailure"
	KindInternal          = "Internal"
)

// Kind names the failure class of err. Nil yields the empty string and any
// error outside the four stage failures is Internal.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrBoardNotFound):
		return KindBoardNotFound
	case errors.Is(err, ErrInvalidGeometry):
		return KindInvalidGeometry
	case errors.Is(err, ErrEmptyCellRegion):
		return KindEmptyCellRegion
	case errors.Is(err, ErrClusteringFailure):
		return KindClusteringFailure
	default:
		return KindInternal
	}
}
