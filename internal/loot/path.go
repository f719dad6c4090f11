package loot

import (
	"fmt"
	"strings"
)

// Root is the "no path" value: the roll happens on the node itself.
const Root = ""

// Separator splits branch paths.
const Separator = "/"

// Branch returns the branch at path.
//
// The whole trimmed path is first tried as a direct branch name, so a branch
// literally named "a/b" wins over the nested a → b. Otherwise the path is
// walked segment by segment. A path without separator that is not a direct
// branch returns false; a segment missing in the middle of a walk panics,
// since the caller asserted that path exists.
func (c *Catalog) Branch(path string) (*Catalog, bool) {
	b, err := c.resolve(path, true)
	if err != nil {
		return nil, false
	}
	return b, true
}

// Find is Branch for untrusted input: every miss is reported as an error
// wrapping ErrPathNotFound, never as a panic.
func (c *Catalog) Find(path string) (*Catalog, error) {
	return c.resolve(path, false)
}

func (c *Catalog) resolve(path string, strict bool) (*Catalog, error) {
	name := strings.Trim(path, Separator)

	// simple case
	if b, ok := c.branches[name]; ok {
		return b, nil
	}
	if !strings.Contains(name, Separator) {
		return nil, fmt.Errorf("%q: %w", path, ErrPathNotFound)
	}

	// segmented path
	node := c
	for _, seg := range strings.Split(name, Separator) {
		if seg == "" {
			continue
		}
		next, ok := node.branches[seg]
		if !ok {
			err := fmt.Errorf("segment %q of %q: %w", seg, path, ErrPathNotFound)
			if strict {
				panic(err)
			}
			return nil, err
		}
		node = next
	}
	return node, nil
}

// target resolves a drop/roll path: Root is the node itself.
func (c *Catalog) target(path string) *Catalog {
	if path == Root {
		return c
	}
	b, ok := c.Branch(path)
	if !ok {
		panic(fmt.Errorf("%q: %w", path, ErrPathNotFound))
	}
	return b
}
