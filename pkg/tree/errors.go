package tree

import "errors"

var (
	// ErrInvalidNode is returned when an operation names a node identity
	// that does not exist in the current tree, either because it was never
	// issued or because the node has been removed.
	ErrInvalidNode = errors.New("tree: invalid node reference")

	// ErrInvalidPlacement is returned when an insert names a placement
	// value outside the defined set.
	ErrInvalidPlacement = errors.New("tree: invalid placement")

	// ErrNotVisible is returned by Navigator.Select when the target node is
	// hidden under a collapsed ancestor. The selection is left unchanged.
	ErrNotVisible = errors.New("tree: node not visible")
)
