package loot

import (
	"maps"
	"slices"
	"strings"
)

// Props holds the item properties.
type Props map[string]string

// Modifier transforms a picked item copy. It receives its own clone and
// returns the item to reward in its place.
type Modifier func(item Item) Item

// Item is one catalog entry: a name plus optional properties.
// Items are compared by name only; duplicates are allowed.
type Item struct {
	Name  string `json:"name"`
	Props Props  `json:"props,omitempty"` // nil means no properties
}

// A creates an item with just a name.
func A(name string) Item { return Item{Name: name} }

// An creates an item with just a name.
func An(name string) Item { return A(name) }

// Named creates an item with just a name.
func Named(name string) Item { return A(name) }

// NewItem creates an item with a name and some properties.
func NewItem(name string, props Props) Item {
	return Item{Name: name, Props: maps.Clone(props)}
}

// Clone returns a copy that shares nothing with i.
func (i Item) Clone() Item {
	return Item{Name: i.Name, Props: maps.Clone(i.Props)}
}

// Extend creates a new item named name, carrying i's properties overridden
// by props.
func (i Item) Extend(name string, props Props) Item {
	merged := make(Props, len(i.Props)+len(props))
	maps.Copy(merged, i.Props)
	maps.Copy(merged, props)
	return Item{Name: name, Props: merged}
}

// HasProp reports whether the property exists.
func (i Item) HasProp(key string) bool {
	_, ok := i.Props[key]
	return ok
}

// GetProp returns a property value.
func (i Item) GetProp(key string) (string, bool) {
	v, ok := i.Props[key]
	return v, ok
}

// SetProp sets a property, replacing any previous value.
func (i *Item) SetProp(key, value string) *Item {
	props := make(Props, len(i.Props)+1)
	maps.Copy(props, i.Props)
	props[key] = value
	i.Props = props
	return i
}

// String renders name{k=v,...} with sorted keys, or the bare name.
func (i Item) String() string {
	if len(i.Props) == 0 {
		return i.Name
	}
	var sb strings.Builder
	sb.WriteString(i.Name)
	sb.WriteByte('{')
	for n, k := range slices.Sorted(maps.Keys(i.Props)) {
		if n > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(k)
		sb.WriteByte('=')
		sb.WriteString(i.Props[k])
	}
	sb.WriteByte('}')
	return sb.String()
}

// Names returns the names of items, in order.
func Names(items []Item) []string {
	names := make([]string, len(items))
	for n, it := range items {
		names[n] = it.Name
	}
	return names
}
