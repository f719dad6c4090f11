package loot

import (
	"fmt"
	"slices"
)

// Catalog is a node of the loot tree: its own items, named sub-branches it
// exclusively owns, and the modifiers registered on it.
//
// A Catalog carries no random state. Building is single-threaded; once built,
// a Catalog may be rolled from several goroutines as long as each one passes
// its own RandomSource.
type Catalog struct {
	items     []Item
	branches  map[string]*Catalog
	names     []string // sorted branch names, the iteration order
	modifiers []Modifier
}

// New creates an empty catalog.
func New() *Catalog {
	return &Catalog{branches: make(map[string]*Catalog)}
}

// From creates a catalog holding the given items.
func From(items ...Item) *Catalog {
	c := New()
	c.items = append(c.items, items...)
	return c
}

// Items returns this level's items.
func (c *Catalog) Items() []Item {
	return slices.Clone(c.items)
}

// Branches returns this level's branch names in iteration order.
func (c *Catalog) Branches() []string {
	return slices.Clone(c.names)
}

// SelfCount returns the item count at this level.
func (c *Catalog) SelfCount() int { return len(c.items) }

// AllCount returns the item count including every sub-level.
func (c *Catalog) AllCount() int {
	n := len(c.items)
	for _, name := range c.names {
		n += c.branches[name].AllCount()
	}
	return n
}

// Add appends an item at this level.
func (c *Catalog) Add(item Item) *Catalog {
	c.items = append(c.items, item)
	return c
}

// Attach stores sub under name, replacing (not merging) any previous branch
// of that name.
func (c *Catalog) Attach(name string, sub *Catalog) *Catalog {
	if sub == nil {
		sub = New()
	}
	if c.branches == nil {
		c.branches = make(map[string]*Catalog)
	}
	if _, ok := c.branches[name]; !ok {
		i, _ := slices.BinarySearch(c.names, name)
		c.names = slices.Insert(c.names, i, name)
	}
	c.branches[name] = sub
	return c
}

// AddIn adds an item to the branch at path.
// It panics if the path does not exist: branches must be attached first.
func (c *Catalog) AddIn(item Item, path string) *Catalog {
	b, ok := c.Branch(path)
	if !ok {
		panic(fmt.Errorf("add in %q: %w", path, ErrPathNotFound))
	}
	b.Add(item)
	return c
}

// AddModifier registers a modifier on this node. Only the node loot is
// invoked on consults its modifiers.
func (c *Catalog) AddModifier(m Modifier) *Catalog {
	c.modifiers = append(c.modifiers, m)
	return c
}

// AllItems returns this level's items followed by every branch's items,
// depth first, in branch order.
func (c *Catalog) AllItems() []Item {
	bag := slices.Clone(c.items)
	for _, name := range c.names {
		bag = append(bag, c.branches[name].AllItems()...)
	}
	return bag
}
