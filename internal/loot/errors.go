package loot

import "errors"

var (
	// ErrPathNotFound is returned (or carried by a panic) when a branch path
	// does not resolve.
	ErrPathNotFound = errors.New("branch path not found")

	// ErrInvalidDrop reports a drop specification that breaks its preconditions.
	ErrInvalidDrop = errors.New("invalid drop")

	// ErrInvalidLuck reports a luck value that cannot be compared against.
	ErrInvalidLuck = errors.New("invalid luck; must be a number")

	// ErrBagSyntax reports a malformed bag definition.
	ErrBagSyntax = errors.New("bag syntax error")
)
