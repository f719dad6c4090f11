package loot

import "math"

// MaxDepth is the "any depth" sentinel; it outlasts any realistic tree.
const MaxDepth = math.MaxInt16

// MaxStack bounds Stack.Max. It must match the lte tag below.
const MaxStack = 1 << 20

// Stack is an inclusive count range.
type Stack struct {
	Min int `json:"min" yaml:"min" validate:"gte=0"`
	Max int `json:"max" yaml:"max" validate:"gtefield=Min,lte=1048576"`
}

// Drop describes one roll of a loot evaluation.
type Drop struct {
	// Path to drop from; Root means the node loot is invoked on.
	Path string `json:"path,omitempty"`

	// Depth is the maximum number of branch levels to descend.
	// It decreases at each visited sub-branch.
	Depth int `json:"depth" validate:"gte=0"`

	// Luck is the starting inclusion probability.
	// It decays at each visited sub-branch; values above 1 always include.
	Luck float64 `json:"luck"`

	// Stack is the range of copies produced per hit.
	Stack Stack `json:"stack"`

	// Modify applies one of the invoking node's modifiers to each copy.
	Modify bool `json:"modify,omitempty"`
}

// DefaultDrop returns {Root, depth 1, luck 1.0, stack 1..1, no modify}.
func DefaultDrop() Drop {
	return Drop{
		Path:  Root,
		Depth: 1,
		Luck:  1.0,
		Stack: Stack{Min: 1, Max: 1},
	}
}

// AnyDepth returns a copy of d allowed to descend the whole subtree.
func (d Drop) AnyDepth() Drop {
	d.Depth = MaxDepth
	return d
}

// Validate reports ErrInvalidDrop when the stack range is reversed,
// negative or above MaxStack, the depth negative, or the luck not a number.
func (d Drop) Validate() error {
	return validateDrop(d)
}
