package service

import (
	"github.com/xtding233/loot-backend/internal/loot"
	"github.com/xtding233/loot-backend/internal/table"
)

// DropSpec is a drop as received from a client: unset fields keep the
// values of loot.DefaultDrop.
type DropSpec struct {
	Path     string      `json:"path,omitempty"`
	Depth    *int        `json:"depth,omitempty"`
	AnyDepth bool        `json:"any_depth,omitempty"`
	Luck     *float64    `json:"luck,omitempty"`
	Stack    *loot.Stack `json:"stack,omitempty"`
	Modify   bool        `json:"modify,omitempty"`
}

// Drop converts the spec into a loot drop.
func (s DropSpec) Drop() loot.Drop {
	d := loot.DefaultDrop()
	d.Path = s.Path
	if s.Depth != nil {
		d.Depth = *s.Depth
	}
	if s.AnyDepth {
		d = d.AnyDepth()
	}
	if s.Luck != nil {
		d.Luck = *s.Luck
	}
	if s.Stack != nil {
		d.Stack = *s.Stack
	}
	d.Modify = s.Modify
	return d
}

type RollRequest struct {
	Catalog string
	Path    string
	Depth   *int     // default loot.MaxDepth
	Luck    *float64 // default 1.0
	Seed    *uint64  // nil draws a fresh seed
}

type RollResult struct {
	Catalog string     `json:"catalog"`
	Path    string     `json:"path,omitempty"`
	Item    *loot.Item `json:"item,omitempty"` // nil when nothing was picked
	Seed    uint64     `json:"seed"`
}

type LootRequest struct {
	Catalog string     `json:"-"`
	Drops   []DropSpec `json:"drops"`
	Seed    *uint64    `json:"seed,omitempty"`
}

type LootResult struct {
	Catalog string      `json:"catalog"`
	Rewards []loot.Item `json:"rewards"`
	Seed    uint64      `json:"seed"`
}

type TableRequest struct {
	Table     string
	Overrides table.Overrides
	Seed      *uint64
}

type TableResult struct {
	Table   string      `json:"table"`
	Catalog string      `json:"catalog"`
	Version string      `json:"version,omitempty"`
	Rewards []loot.Item `json:"rewards"`
	Seed    uint64      `json:"seed"`
	Cached  bool        `json:"cached"`
}

type SimulateRequest struct {
	Table  string
	Trials int // 0 means DefaultTrials
	Seed   *uint64
}

type SimulateResult struct {
	Table   string      `json:"table"`
	Catalog string      `json:"catalog"`
	Seed    uint64      `json:"seed"`
	Report  loot.Report `json:"report"`
}
