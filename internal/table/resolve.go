// resolve.go
package table

import (
	"fmt"

	"github.com/xtding233/loot-backend/internal/loot"
)

// Overrides carries per-request overrides applied to every drop of a table.
type Overrides struct {
	Luck   *float64
	Depth  *int
	Min    *int
	Max    *int
	Modify *bool
}

type Resolver interface {
	// Returns the table normalized into loot drops, overrides applied
	Resolve(table string, o Overrides) (Resolved, error)
}

var _ Resolver = (*Loader)(nil)

// Resolve merges default → table → drop → overrides into loot drops.
// Each field falls back to loot.DefaultDrop when nothing sets it.
func (l *Loader) Resolve(table string, o Overrides) (Resolved, error) {
	raw, err := l.LoadTable(table)
	if err != nil {
		return Resolved{}, err
	}

	drops := make([]loot.Drop, len(raw.Drops))
	for i, dc := range raw.Drops {
		d := loot.DefaultDrop()
		d.Path = dc.Path
		applyDefaults(&d, raw.Defaults)
		applyDefaults(&d, dc.DropDefaults)
		applyOverrides(&d, o)
		drops[i] = d
	}
	if err := loot.ValidateDrops(drops); err != nil {
		return Resolved{}, fmt.Errorf("table %q: %w", table, err)
	}

	return Resolved{
		Table:   table,
		Catalog: raw.Catalog,
		Version: raw.Version,
		Drops:   drops,
	}, nil
}

func applyDefaults(d *loot.Drop, def DropDefaults) {
	if def.Depth != nil {
		d.Depth = int(*def.Depth)
	}
	if def.Luck != nil {
		d.Luck = *def.Luck
	}
	if def.Modify != nil {
		d.Modify = *def.Modify
	}
	if def.Stack != nil {
		applyStack(&d.Stack, def.Stack.Min, def.Stack.Max)
	}
}

func applyOverrides(d *loot.Drop, o Overrides) {
	if o.Luck != nil {
		d.Luck = *o.Luck
	}
	if o.Depth != nil {
		d.Depth = *o.Depth
	}
	if o.Modify != nil {
		d.Modify = *o.Modify
	}
	applyStack(&d.Stack, o.Min, o.Max)
}

// applyStack sets the given bounds; a new min without a max raises the max
// to keep the range ordered.
func applyStack(s *loot.Stack, lo, hi *int) {
	if lo != nil {
		s.Min = *lo
	}
	if hi != nil {
		s.Max = *hi
	} else if s.Max < s.Min {
		s.Max = s.Min
	}
}
