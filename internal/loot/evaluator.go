package loot

// Loot rolls against a looting table using a fresh entropy seeded source.
// See LootSeeded.
func (c *Catalog) Loot(drops []Drop) []Item {
	return c.LootSeeded(drops, DefaultRNG())
}

// LootSeeded evaluates drops in order and returns every produced copy:
// drop order first, then copy order within a drop.
//
// A drop whose roll finds nothing contributes nothing. When a drop has
// Modify set and this node has modifiers, each copy goes through one
// modifier chosen at random; modifiers registered on sub-branches are not
// consulted.
//
// Drops must satisfy Validate and their paths must exist; LootSeeded panics
// otherwise.
func (c *Catalog) LootSeeded(drops []Drop, rng RandomSource) []Item {
	mustValidateDrops(drops)

	var rewards []Item
	for _, d := range drops {
		picked := c.target(d.Path).randomPick(d.Depth, d.Luck, rng)
		if picked == nil {
			continue
		}

		stack := drawStack(d.Stack, rng)
		for range stack {
			citem := picked.Clone()
			if d.Modify && len(c.modifiers) > 0 {
				modifier := c.modifiers[rng.IntN(len(c.modifiers))]
				citem = modifier(citem)
			}
			rewards = append(rewards, citem)
		}
	}
	return rewards
}
