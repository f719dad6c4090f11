package loot

import "strings"

// String renders the catalog as a text tree labelled ROOT.
func (c *Catalog) String() string {
	return c.Render("ROOT")
}

// Render renders the catalog as a text tree: each node lists its item names,
// then its branches.
//
//	ROOT
//	├── Staff
//	└── weapons
//	    ├── Bat
//	    └── Uzi
func (c *Catalog) Render(label string) string {
	var sb strings.Builder
	sb.WriteString(label)
	sb.WriteByte('\n')
	c.render(&sb, "")
	return sb.String()
}

func (c *Catalog) render(sb *strings.Builder, indent string) {
	total := len(c.items) + len(c.names)
	n := 0
	line := func(text string) (last bool) {
		n++
		last = n == total
		sb.WriteString(indent)
		if last {
			sb.WriteString("└── ")
		} else {
			sb.WriteString("├── ")
		}
		sb.WriteString(text)
		sb.WriteByte('\n')
		return last
	}

	for _, it := range c.items {
		line(it.Name)
	}
	for _, name := range c.names {
		next := indent + "│   "
		if line(name) {
			next = indent + "    "
		}
		c.branches[name].render(sb, next)
	}
}
