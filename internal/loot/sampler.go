package loot

// Roll picks a random item from the branch at path, using a fresh entropy
// seeded source. It panics if path does not resolve.
func (c *Catalog) Roll(path string, nesting int, threshold float64) (Item, bool) {
	return c.RollSeeded(path, nesting, threshold, DefaultRNG())
}

// RollAny picks a random item anywhere in the catalog.
func (c *Catalog) RollAny() (Item, bool) {
	return c.Roll(Root, MaxDepth, 1.0)
}

// RollSeeded is Roll drawing every random decision from rng.
func (c *Catalog) RollSeeded(path string, nesting int, threshold float64, rng RandomSource) (Item, bool) {
	picked := c.target(path).randomPick(nesting, threshold, rng)
	if picked == nil {
		return Item{}, false
	}
	return picked.Clone(), true
}

// randomPick collects at most one candidate from this level and one from
// each branch, then picks one of them uniformly.
//
// RNG consumption order, per call:
//   - one Float64 against threshold, only if this level has items,
//     then one IntN to choose the item on a hit;
//   - if nesting > 0, for each branch in name order: one Float64 decay
//     draw followed by the branch's own recursive consumption;
//   - one IntN to choose among candidates, if there are any.
func (c *Catalog) randomPick(nesting int, threshold float64, rng RandomSource) *Item {
	var bag []*Item

	if len(c.items) > 0 && Draw(threshold, rng) {
		bag = append(bag, &c.items[rng.IntN(len(c.items))])
	}

	if nesting > 0 {
		for _, name := range c.names {
			next := decayThreshold(threshold, drawDecay(rng))
			if it := c.branches[name].randomPick(nesting-1, next, rng); it != nil {
				bag = append(bag, it)
			}
		}
	}

	if len(bag) == 0 {
		return nil
	}
	return bag[rng.IntN(len(bag))]
}
