package table

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/xtding233/loot-backend/internal/loot"
)

var (
	// ErrNotFound is returned when a catalog or table file does not exist.
	ErrNotFound = errors.New("definition not found")
	// ErrInvalidName rejects names that would escape the definition dirs.
	ErrInvalidName = errors.New("invalid definition name")
)

// Paths helper for catalog and table files.
type Paths struct {
	BaseDir string // base directory, e.g., /opt/app/configs
}

func (p Paths) CatalogDir() string { return filepath.Join(p.BaseDir, "catalogs") }
func (p Paths) TableDir() string   { return filepath.Join(p.BaseDir, "tables") }

func (p Paths) CatalogPath(name string) string {
	return filepath.Join(p.CatalogDir(), name+".yaml")
}
func (p Paths) DefaultTablePath() string {
	return filepath.Join(p.TableDir(), "default.yaml")
}
func (p Paths) TablePath(name string) string {
	return filepath.Join(p.TableDir(), name+".yaml")
}

// Loader reads YAML definitions, builds catalogs and merges
// default → table. Results are cached until Invalidate.
type Loader struct {
	paths Paths

	mu       sync.RWMutex
	catalogs map[string]*loot.Catalog
	tables   map[string]RawTable
}

// NewLoader creates a definition loader with the given base directory.
func NewLoader(baseDir string) *Loader {
	return &Loader{
		paths:    Paths{BaseDir: baseDir},
		catalogs: make(map[string]*loot.Catalog),
		tables:   make(map[string]RawTable),
	}
}

func (l *Loader) Paths() Paths { return l.paths }

// LoadCatalog returns the built catalog called name.
// A returned catalog is shared and must not be modified.
func (l *Loader) LoadCatalog(name string) (*loot.Catalog, error) {
	if err := checkName(name); err != nil {
		return nil, err
	}

	l.mu.RLock()
	c, ok := l.catalogs[name]
	l.mu.RUnlock()
	if ok {
		return c, nil
	}

	var raw RawCatalog
	found, err := readYAML(l.paths.CatalogPath(name), &raw)
	if err != nil {
		return nil, fmt.Errorf("read catalog %q: %w", name, err)
	}
	if !found {
		return nil, fmt.Errorf("catalog %q: %w", name, ErrNotFound)
	}
	if err := ValidateCatalog(raw); err != nil {
		return nil, fmt.Errorf("catalog %q: %w", name, err)
	}
	c, err = BuildCatalog(raw)
	if err != nil {
		return nil, fmt.Errorf("catalog %q: %w", name, err)
	}

	l.mu.Lock()
	// another reader may have built it meanwhile; keep the first
	if prev, ok := l.catalogs[name]; ok {
		c = prev
	} else {
		l.catalogs[name] = c
	}
	l.mu.Unlock()
	return c, nil
}

// LoadTable loads and merges default → table.
// It returns the merged RawTable (without normalization).
func (l *Loader) LoadTable(name string) (RawTable, error) {
	if err := checkName(name); err != nil {
		return RawTable{}, err
	}

	l.mu.RLock()
	t, ok := l.tables[name]
	l.mu.RUnlock()
	if ok {
		return t, nil
	}

	var defTable, table RawTable
	if _, err := readYAML(l.paths.DefaultTablePath(), &defTable); err != nil { // default file may not exist
		return RawTable{}, fmt.Errorf("read default table: %w", err)
	}
	found, err := readYAML(l.paths.TablePath(name), &table)
	if err != nil {
		return RawTable{}, fmt.Errorf("read table %q: %w", name, err)
	}
	if !found {
		return RawTable{}, fmt.Errorf("table %q: %w", name, ErrNotFound)
	}

	merged := mergeTable(defTable, table)
	if err := ValidateTable(merged); err != nil {
		return RawTable{}, fmt.Errorf("table %q: %w", name, err)
	}

	l.mu.Lock()
	l.tables[name] = merged
	l.mu.Unlock()
	return merged, nil
}

// Names lists the definitions in dir (catalogs or tables), sorted,
// without the default table.
func (l *Loader) Names(dir string) ([]string, error) {
	files, err := filepath.Glob(filepath.Join(dir, "*.yaml"))
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(files))
	for _, f := range files {
		name := strings.TrimSuffix(filepath.Base(f), ".yaml")
		if dir == l.paths.TableDir() && name == "default" {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// Invalidate clears loader's cache. Call after hot-reload detects changes.
func (l *Loader) Invalidate() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.catalogs = make(map[string]*loot.Catalog)
	l.tables = make(map[string]RawTable)
}

func checkName(name string) error {
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("%q: %w", name, ErrInvalidName)
	}
	return nil
}

// readYAML loads a YAML file into out. Missing files report found=false, no error.
func readYAML(path string, out any) (found bool, err error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	if err := yaml.Unmarshal(b, out); err != nil {
		return false, err
	}
	return true, nil
}

// mergeTable overlays b onto a: scalars and defaults b sets win, a non-empty
// drop list in b replaces a's.
func mergeTable(a, b RawTable) RawTable {
	out := a

	if b.Version != "" {
		out.Version = b.Version
	}
	if b.Catalog != "" {
		out.Catalog = b.Catalog
	}
	if b.Notes != "" {
		out.Notes = b.Notes
	}
	out.Defaults = mergeDefaults(a.Defaults, b.Defaults)
	if len(b.Drops) > 0 {
		out.Drops = append([]DropConfig(nil), b.Drops...)
	}
	return out
}

func mergeDefaults(a, b DropDefaults) DropDefaults {
	out := a
	if b.Depth != nil {
		out.Depth = b.Depth
	}
	if b.Luck != nil {
		out.Luck = b.Luck
	}
	if b.Modify != nil {
		out.Modify = b.Modify
	}
	// stack
	switch {
	case out.Stack == nil && b.Stack != nil:
		c := *b.Stack
		out.Stack = &c
	case out.Stack != nil && b.Stack != nil:
		c := *out.Stack
		if b.Stack.Min != nil {
			c.Min = b.Stack.Min
			c.Max = nil
		}
		if b.Stack.Max != nil {
			c.Max = b.Stack.Max
		}
		out.Stack = &c
	}
	return out
}

// BuildCatalog turns a definition into a catalog. It expects a definition
// that passed ValidateCatalog.
func BuildCatalog(raw RawCatalog) (*loot.Catalog, error) {
	var c *loot.Catalog
	if raw.Bag != "" {
		var err error
		if c, err = loot.ParseBag(raw.Bag); err != nil {
			return nil, err
		}
	} else {
		c = buildNode(raw.Root)
	}
	for _, m := range raw.Modifiers {
		c.AddModifier(compileModifier(m))
	}
	return c, nil
}

func buildNode(n *NodeConfig) *loot.Catalog {
	c := loot.New()
	if n == nil {
		return c
	}
	for _, it := range n.Items {
		c.Add(loot.NewItem(it.Name, it.Props))
	}
	for name, sub := range n.Branches {
		c.Attach(name, buildNode(sub))
	}
	return c
}

func compileModifier(m ModifierConfig) loot.Modifier {
	props := loot.Props(m.Props)
	return func(item loot.Item) loot.Item {
		return item.Extend(m.Prefix+item.Name+m.Suffix, props)
	}
}
