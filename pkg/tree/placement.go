package tree

// Placement determines where Insert splices a new node relative to a
// reference node. Placement is a property of the insert request only; it is
// never stored on nodes.
type Placement int

const (
	// Before inserts the new node as a sibling immediately before the
	// reference node.
	Before Placement = iota

	// After inserts the new node as a sibling immediately after the
	// reference node.
	After

	// FirstChild inserts the new node as a child of the reference node,
	// placed before all existing children.
	FirstChild

	// LastChild inserts the new node as a child of the reference node,
	// placed after all existing children.
	LastChild

	// Parent inserts the new node as the new immediate parent of the
	// reference node: it takes the reference's position among its siblings
	// and the reference (with its whole subtree) becomes its only child.
	Parent
)

func (p Placement) String() string {
	switch p {
	case Before:
		return "before"
	case After:
		return "after"
	case FirstChild:
		return "first-child"
	case LastChild:
		return "last-child"
	case Parent:
		return "parent"
	default:
		return "invalid"
	}
}

func (p Placement) valid() bool {
	return p >= Before && p <= Parent
}
