package loot

// stuffed builds:
//
//	ROOT: Staff
//	weapons: Bat, Uzi
//	equipment: Gloves, Boots
//	equipment/leather: Jacket, Pads
//	equipment/leather/Scraps: ArmBand, Patch
func stuffed() *Catalog {
	c := From(A("Staff"))
	c.Attach("weapons", From(A("Bat"), An("Uzi")))
	c.Attach("equipment", From(A("Gloves"), A("Boots")))

	equipment, _ := c.Branch("equipment")
	equipment.Attach("leather", From(A("Jacket"), A("Pads")))

	leather, _ := c.Branch("equipment/leather")
	leather.Attach("Scraps", From(A("ArmBand"), A("Patch")))
	return c
}

// countingRNG wraps a RandomSource and counts calls.
type countingRNG struct {
	inner  RandomSource
	floats int
	ints   int
}

func newCountingRNG(seed uint64) *countingRNG {
	return &countingRNG{inner: NewSeededRNG(seed)}
}

func (c *countingRNG) Float64() float64 {
	c.floats++
	return c.inner.Float64()
}

func (c *countingRNG) IntN(n int) int {
	c.ints++
	return c.inner.IntN(n)
}

// fixedRNG replays fixed values: Float64 cycles over floats, IntN returns 0.
type fixedRNG struct {
	floats []float64
	i      int
}

func (f *fixedRNG) Float64() float64 {
	v := f.floats[f.i%len(f.floats)]
	f.i++
	return v
}

func (f *fixedRNG) IntN(int) int { return 0 }
