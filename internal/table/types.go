// types.go
package table

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/xtding233/loot-backend/internal/loot"
)

// RawCatalog is a catalog definition loaded from YAML: either a nested
// root node or a bag, plus the modifiers registered on the root.
type RawCatalog struct {
	Version   string           `yaml:"version"`
	Notes     string           `yaml:"notes,omitempty"`
	Root      *NodeConfig      `yaml:"root,omitempty"`
	Bag       string           `yaml:"bag,omitempty"` // bag notation, see loot.ParseBag
	Modifiers []ModifierConfig `yaml:"modifiers,omitempty"`
}

type NodeConfig struct {
	Items    []ItemConfig           `yaml:"items,omitempty"`
	Branches map[string]*NodeConfig `yaml:"branches,omitempty"`
}

// ItemConfig accepts either a bare name or a {name, props} mapping.
type ItemConfig struct {
	Name  string            `yaml:"name"`
	Props map[string]string `yaml:"props,omitempty"`
}

func (c *ItemConfig) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		c.Name = node.Value
		return nil
	}
	type plain ItemConfig
	return node.Decode((*plain)(c))
}

// ModifierConfig renames the item with a prefix and/or suffix and merges
// props into it.
type ModifierConfig struct {
	Name   string            `yaml:"name"`
	Prefix string            `yaml:"prefix,omitempty"`
	Suffix string            `yaml:"suffix,omitempty"`
	Props  map[string]string `yaml:"props,omitempty"`
}

// RawTable is a drop table loaded from YAML.
type RawTable struct {
	Version  string       `yaml:"version"`
	Catalog  string       `yaml:"catalog"`
	Notes    string       `yaml:"notes,omitempty"`
	Defaults DropDefaults `yaml:"defaults"`
	Drops    []DropConfig `yaml:"drops"`
}

// DropDefaults holds the drop fields a table (or default.yaml) may preset.
// nil means unset.
type DropDefaults struct {
	Depth  *Depth       `yaml:"depth,omitempty"`
	Luck   *float64     `yaml:"luck,omitempty"`
	Stack  *StackConfig `yaml:"stack,omitempty"`
	Modify *bool        `yaml:"modify,omitempty"`
}

type DropConfig struct {
	Path         string `yaml:"path"`
	DropDefaults `yaml:",inline"`
}

// StackConfig is a copy range. A min without max raises max to at least min.
type StackConfig struct {
	Min *int `yaml:"min"`
	Max *int `yaml:"max,omitempty"`
}

// Depth is a drop depth: an integer, or "max" / "any" for loot.MaxDepth.
type Depth int

func (d *Depth) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: depth must be a scalar", node.Line)
	}
	switch strings.ToLower(node.Value) {
	case "max", "any":
		*d = Depth(loot.MaxDepth)
		return nil
	}
	var n int
	if err := node.Decode(&n); err != nil {
		return fmt.Errorf("line %d: depth must be an integer or \"max\": %w", node.Line, err)
	}
	*d = Depth(n)
	return nil
}

// Resolved is a drop table normalized into loot drops.
type Resolved struct {
	Table   string      `json:"table"`
	Catalog string      `json:"catalog"`
	Version string      `json:"version,omitempty"` // effective table version for tracing
	Drops   []loot.Drop `json:"drops"`
}
