package table

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// ValidateCatalog checks semantic constraints of a RawCatalog.
func ValidateCatalog(cfg RawCatalog) error {
	var errs []string

	switch {
	case cfg.Root != nil && cfg.Bag != "":
		errs = append(errs, "root and bag are mutually exclusive")
	case cfg.Root == nil && strings.TrimSpace(cfg.Bag) == "":
		errs = append(errs, "one of root or bag is required")
	}
	if cfg.Root != nil {
		errs = validateNode(cfg.Root, "root", errs)
	}

	seen := make(map[string]bool, len(cfg.Modifiers))
	for i, m := range cfg.Modifiers {
		switch {
		case m.Name == "":
			errs = append(errs, fmt.Sprintf("modifiers[%d].name is required", i))
		case seen[m.Name]:
			errs = append(errs, fmt.Sprintf("modifiers[%d].name %q is duplicated", i, m.Name))
		}
		seen[m.Name] = true
		if m.Prefix == "" && m.Suffix == "" && len(m.Props) == 0 {
			errs = append(errs, fmt.Sprintf("modifiers[%d] must set prefix, suffix or props", i))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("catalog validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

func validateNode(n *NodeConfig, at string, errs []string) []string {
	for i, it := range n.Items {
		if strings.TrimSpace(it.Name) == "" {
			errs = append(errs, fmt.Sprintf("%s.items[%d].name is required", at, i))
		}
	}
	names := make([]string, 0, len(n.Branches))
	for name := range n.Branches {
		names = append(names, name)
	}
	sort.Strings(names) // stable error order
	for _, name := range names {
		if strings.Trim(name, "/") == "" {
			errs = append(errs, fmt.Sprintf("%s.branches: branch name %q is empty", at, name))
			continue
		}
		if sub := n.Branches[name]; sub != nil {
			errs = validateNode(sub, at+"."+name, errs)
		}
	}
	return errs
}

// ValidateTable checks semantic constraints of a merged RawTable.
func ValidateTable(cfg RawTable) error {
	var errs []string

	if cfg.Catalog == "" {
		errs = append(errs, "catalog is required")
	}
	if len(cfg.Drops) == 0 {
		errs = append(errs, "drops must not be empty")
	}
	errs = validateDefaults(cfg.Defaults, "defaults", errs)
	for i, d := range cfg.Drops {
		errs = validateDefaults(d.DropDefaults, fmt.Sprintf("drops[%d]", i), errs)
	}

	if len(errs) > 0 {
		return fmt.Errorf("table validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

func validateDefaults(d DropDefaults, at string, errs []string) []string {
	if d.Depth != nil && *d.Depth < 0 {
		errs = append(errs, at+".depth must be >= 0")
	}
	if d.Luck != nil && math.IsNaN(*d.Luck) {
		errs = append(errs, at+".luck must be a number")
	}
	if s := d.Stack; s != nil {
		if s.Min == nil {
			errs = append(errs, at+".stack.min is required")
		} else if *s.Min < 0 {
			errs = append(errs, at+".stack.min must be >= 0")
		}
		if s.Min != nil && s.Max != nil && *s.Max < *s.Min {
			errs = append(errs, at+".stack.max must be >= stack.min")
		}
	}
	return errs
}
