package render

import (
	"errors"
	"fmt"
)

var (
	// ErrUnrenderableNode is returned for nodes outside the closed IR set,
	// nil nodes and malformed nodes. It signals an IR construction bug.
	ErrUnrenderableNode = errors.New("unrenderable node")

	// ErrUnsupported is returned when a node is well formed but the target
	// dialect has no syntax for it. It always comes with
	// ErrUnrenderableNode.
	ErrUnsupported = errors.New("not supported by dialect")
)

// UnrenderableError describes the node that could not be rendered.
type UnrenderableError struct {
	Node        string // Go type of the node
	Kind        string // kind tag, when the node has one
	Dialect     string
	Reason      string
	Unsupported bool
}

func (e *UnrenderableError) Error() string {
	what := e.Node
	if e.Kind != "" {
		what = fmt.Sprintf("%s(%s)", e.Node, e.Kind)
	}
	return fmt.Sprintf("render %s for %s: %s", what, e.Dialect, e.Reason)
}

// Unwrap exposes the sentinels for errors.Is.
func (e *UnrenderableError) Unwrap() []error {
	if e.Unsupported {
		return []error{ErrUnrenderableNode, ErrUnsupported}
	}
	return []error{ErrUnrenderableNode}
}

// IsUnrenderable reports whether err was caused by an unrenderable node.
func IsUnrenderable(err error) bool {
	return errors.Is(err, ErrUnrenderableNode)
}
