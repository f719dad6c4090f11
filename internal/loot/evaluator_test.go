package loot

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLootDropOrder(t *testing.T) {
	c := stuffed()
	drops := []Drop{
		{Path: "weapons", Luck: 1, Stack: Stack{Min: 1, Max: 1}},
		{Path: "equipment/leather/Scraps", Luck: 1, Stack: Stack{Min: 1, Max: 1}},
	}
	rng := NewSeededRNG(11)
	for i := 0; i < 100; i++ {
		rewards := c.LootSeeded(drops, rng)
		require.Len(t, rewards, 2)
		assert.Contains(t, []string{"Bat", "Uzi"}, rewards[0].Name)
		assert.Contains(t, []string{"ArmBand", "Patch"}, rewards[1].Name)
	}
}

func TestLootDefaultDrop(t *testing.T) {
	c := stuffed()
	rewards := c.Loot([]Drop{DefaultDrop()})
	require.Len(t, rewards, 1, "the root threshold 1.0 always hits Staff")
}

func TestLootMissContributesNothing(t *testing.T) {
	c := stuffed()
	d := DefaultDrop().AnyDepth()
	d.Luck = 0
	assert.Empty(t, c.LootSeeded([]Drop{d, d}, NewSeededRNG(12)))
	assert.Empty(t, c.Loot(nil))
}

func TestLootStack(t *testing.T) {
	c := From(A("Gold"))
	d := DefaultDrop()
	d.Stack = Stack{Min: 2, Max: 5}

	seen := map[int]bool{}
	rng := NewSeededRNG(13)
	for i := 0; i < 1000; i++ {
		n := len(c.LootSeeded([]Drop{d}, rng))
		if n < 2 || n > 5 {
			t.Fatalf("stack %d out of [2,5]", n)
		}
		seen[n] = true
	}
	assert.Len(t, seen, 4)
}

func TestLootZeroStack(t *testing.T) {
	c := From(A("Gold"))
	d := DefaultDrop()
	d.Stack = Stack{}
	assert.Empty(t, c.LootSeeded([]Drop{d}, NewSeededRNG(14)))
}

func TestLootCopiesAreIndependent(t *testing.T) {
	c := From(NewItem("Gold", Props{"weight": "1"}))
	d := DefaultDrop()
	d.Stack = Stack{Min: 2, Max: 2}
	rewards := c.LootSeeded([]Drop{d}, NewSeededRNG(15))
	require.Len(t, rewards, 2)

	rewards[0].Props["weight"] = "9"
	v, _ := rewards[1].GetProp("weight")
	assert.Equal(t, "1", v)
	v, _ = c.Items()[0].GetProp("weight")
	assert.Equal(t, "1", v)
}

func cursed(item Item) Item {
	return item.Extend("Cursed "+item.Name, Props{"cursed": "yes"})
}

func TestLootModify(t *testing.T) {
	c := From(A("Staff")).AddModifier(cursed)
	d := DefaultDrop()
	d.Stack = Stack{Min: 3, Max: 3}

	plain := c.LootSeeded([]Drop{d}, NewSeededRNG(16))
	require.Len(t, plain, 3)
	for _, it := range plain {
		assert.Equal(t, "Staff", it.Name)
		assert.False(t, it.HasProp("cursed"))
	}

	d.Modify = true
	modified := c.LootSeeded([]Drop{d}, NewSeededRNG(16))
	require.Len(t, modified, 3)
	for _, it := range modified {
		assert.Equal(t, "Cursed Staff", it.Name)
		assert.True(t, it.HasProp("cursed"))
	}
	assert.Equal(t, "Staff", c.Items()[0].Name)
}

func TestLootModifyWithoutModifiers(t *testing.T) {
	c := From(A("Staff"))
	d := DefaultDrop()
	d.Modify = true
	rewards := c.LootSeeded([]Drop{d}, NewSeededRNG(17))
	require.Len(t, rewards, 1)
	assert.Equal(t, "Staff", rewards[0].Name)
}

func TestLootModifiersNotInherited(t *testing.T) {
	weapons := From(A("Bat")).AddModifier(cursed)
	c := New().Attach("weapons", weapons)

	d := DefaultDrop()
	d.Path = "weapons"
	d.Modify = true

	rewards := c.LootSeeded([]Drop{d}, NewSeededRNG(18))
	require.Len(t, rewards, 1)
	assert.Equal(t, "Bat", rewards[0].Name, "branch modifiers are ignored from the root")

	d.Path = Root
	rewards = weapons.LootSeeded([]Drop{d}, NewSeededRNG(18))
	require.Len(t, rewards, 1)
	assert.Equal(t, "Cursed Bat", rewards[0].Name)
}

func TestLootModifierPickPerCopy(t *testing.T) {
	tag := func(v string) Modifier {
		return func(it Item) Item {
			it.SetProp("tag", v)
			return it
		}
	}
	c := From(A("Ring")).AddModifier(tag("red")).AddModifier(tag("blue"))
	d := DefaultDrop()
	d.Stack = Stack{Min: 50, Max: 50}
	d.Modify = true

	seen := map[string]bool{}
	for _, it := range c.LootSeeded([]Drop{d}, NewSeededRNG(19)) {
		v, ok := it.GetProp("tag")
		require.True(t, ok)
		seen[v] = true
	}
	assert.Len(t, seen, 2)
}

func TestLootSeededIsDeterministic(t *testing.T) {
	c := stuffed()
	drops := []Drop{
		DefaultDrop().AnyDepth(),
		{Path: "equipment", Depth: MaxDepth, Luck: 1, Stack: Stack{Min: 1, Max: 3}},
		{Path: "weapons", Depth: MaxDepth, Luck: 0.5, Stack: Stack{Min: 1, Max: 1}},
	}
	for seed := uint64(120); seed < 130; seed++ {
		a := c.LootSeeded(drops, NewSeededRNG(seed))
		b := c.LootSeeded(drops, NewSeededRNG(seed))
		assert.Equal(t, a, b, "seed %d", seed)
	}
}

func TestLootStats(t *testing.T) {
	if testing.Short() {
		t.Skip("statistical test")
	}
	const (
		rolls            = 100000
		luckForEquipment = 0.3
		luckForWeapons   = 0.8
	)
	c := stuffed()
	drops := []Drop{
		{Path: "equipment", Luck: luckForEquipment, Stack: Stack{Min: 1, Max: 1}},
		{Path: "weapons", Luck: luckForWeapons, Stack: Stack{Min: 1, Max: 1}},
	}
	drops[0] = drops[0].AnyDepth()
	drops[1] = drops[1].AnyDepth()

	counts := map[string]int{}
	total := 0
	rng := NewSeededRNG(2024)
	for i := 0; i < rolls; i++ {
		for _, it := range c.LootSeeded(drops, rng) {
			counts[it.Name]++
			total++
		}
	}

	for _, name := range []string{"Gloves", "Boots", "Jacket", "Pads", "ArmBand", "Patch", "Bat", "Uzi"} {
		assert.Positive(t, counts[name], "there should be some %s", name)
	}
	assert.Zero(t, counts["Staff"])

	equipment := counts["Gloves"] + counts["Boots"] + counts["Jacket"] + counts["Pads"] + counts["ArmBand"] + counts["Patch"]
	weapons := counts["Bat"] + counts["Uzi"]
	assert.Equal(t, total, equipment+weapons)

	within := func(got int, luck float64) bool {
		theory := rolls * luck
		return float64(got) >= theory*0.7 && float64(got) < theory*1.6
	}
	assert.True(t, within(equipment, luckForEquipment), "equipment=%d", equipment)
	assert.True(t, within(weapons, luckForWeapons), "weapons=%d", weapons)
}

func TestLootInvalidDropPanics(t *testing.T) {
	c := stuffed()
	bad := []Drop{
		{Luck: 1, Stack: Stack{Min: 3, Max: 1}},
		{Luck: 1, Depth: -1, Stack: Stack{Min: 1, Max: 1}},
		{Luck: 1, Stack: Stack{Min: -1, Max: 1}},
		{Luck: math.NaN(), Stack: Stack{Min: 1, Max: 1}},
		{Luck: 1, Stack: Stack{Min: 0, Max: math.MaxInt}},
		{Luck: 1, Stack: Stack{Min: MaxStack + 1, Max: MaxStack + 1}},
	}
	for _, d := range bad {
		func() {
			defer func() {
				r := recover()
				require.NotNil(t, r, "%+v should panic", d)
				err, ok := r.(error)
				require.True(t, ok)
				assert.True(t, errors.Is(err, ErrInvalidDrop), err.Error())
			}()
			c.LootSeeded([]Drop{DefaultDrop(), d}, NewSeededRNG(20))
		}()
	}
}

func TestLootInvalidDropConsumesNothing(t *testing.T) {
	c := stuffed()
	rng := newCountingRNG(21)
	assert.Panics(t, func() {
		c.LootSeeded([]Drop{DefaultDrop(), {Stack: Stack{Min: 2, Max: 1}}}, rng)
	})
	assert.Zero(t, rng.floats+rng.ints, "validation happens before any roll")
}

func TestLootMissingPathPanics(t *testing.T) {
	c := stuffed()
	d := DefaultDrop()
	d.Path = "armory/swords"
	defer func() {
		r := recover()
		require.NotNil(t, r)
		err, ok := r.(error)
		require.True(t, ok)
		assert.True(t, errors.Is(err, ErrPathNotFound))
		assert.True(t, strings.Contains(err.Error(), "armory"))
	}()
	c.LootSeeded([]Drop{d}, NewSeededRNG(22))
}
