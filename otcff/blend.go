package otcff

import (
	"github.com/npillmayer/varfont/otvar"
)

// Blender evaluates CFF2 blend operations for one design-space location.
// Region scalars are computed once when the location is set and reused for
// every blend, which is what makes per-glyph rasterization affordable.
type Blender struct {
	store   *otvar.ItemVariationStore
	coords  otvar.NormalizedCoords
	scalars map[int][]float64 // per vsindex
	vsindex int
}

// NewBlender creates a blender over the font's variation store.
func NewBlender(store *otvar.ItemVariationStore) *Blender {
	return &Blender{store: store, scalars: make(map[int][]float64)}
}

// SetCoordinates fixes the design-space location. All scalar caches are
// recomputed; SetVSIndex resets to 0.
func (b *Blender) SetCoordinates(coords otvar.NormalizedCoords) {
	b.coords = coords
	b.scalars = make(map[int][]float64)
	b.vsindex = 0
}

// SetVSIndex selects the item variation data subtable subsequent blends
// draw their regions from (charstring operator vsindex).
func (b *Blender) SetVSIndex(index int) error {
	if b.store == nil || index < 0 || index >= len(b.store.Data) {
		return otvar.InvalidVariationDataError{Table: otvar.TagCFF2, Section: "Blend",
			Issue: "vsindex out of range"}
	}
	b.vsindex = index
	return nil
}

// AtDefault reports whether all scalars of the current subtable are zero, in
// which case blends reduce to their base values.
func (b *Blender) AtDefault() bool {
	for _, s := range b.currentScalars() {
		if s != 0 {
			return false
		}
	}
	return true
}

// currentScalars returns the region scalars of the active subtable, computing
// and caching them on first use.
func (b *Blender) currentScalars() []float64 {
	if s, ok := b.scalars[b.vsindex]; ok {
		return s
	}
	if b.store == nil || b.vsindex >= len(b.store.Data) {
		return nil
	}
	ivd := b.store.Data[b.vsindex]
	scalars := make([]float64, len(ivd.RegionIndexes))
	for i, ri := range ivd.RegionIndexes {
		if int(ri) < len(b.store.Regions) {
			scalars[i] = b.store.Regions[ri].Scalar(b.coords)
		}
	}
	b.scalars[b.vsindex] = scalars
	return scalars
}

// Blend computes base + Σ deltas[i]·scalar[i]. The number of deltas must
// equal the region count of the active subtable.
func (b *Blender) Blend(base float64, deltas []float64) (float64, error) {
	scalars := b.currentScalars()
	if len(deltas) != len(scalars) {
		return 0, otvar.InvalidVariationDataError{Table: otvar.TagCFF2, Section: "Blend",
			Issue: "delta count does not match region count"}
	}
	v := base
	for i, d := range deltas {
		v += d * scalars[i]
	}
	return v, nil
}

// BlendPoint blends an x/y pair sharing one delta layout.
func (b *Blender) BlendPoint(x, y float64, dx, dy []float64) (float64, float64, error) {
	bx, err := b.Blend(x, dx)
	if err != nil {
		return 0, 0, err
	}
	by, err := b.Blend(y, dy)
	if err != nil {
		return 0, 0, err
	}
	return bx, by, nil
}

// ApplyBlendOperands resolves a charstring blend operator. The stack slice
// holds n base values followed by n·k deltas, with k the region count of the
// active subtable; n is the trailing operand of the blend operator itself
// (already popped by the caller). The n blended values are returned in stack
// order.
func (b *Blender) ApplyBlendOperands(operands []float64, n int) ([]float64, error) {
	k := len(b.currentScalars())
	if n < 0 || len(operands) != n*(k+1) {
		return nil, otvar.InvalidVariationDataError{Table: otvar.TagCFF2, Section: "Blend",
			Issue: "blend operand count does not match region count"}
	}
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		deltas := operands[n+i*k : n+(i+1)*k]
		v, err := b.Blend(operands[i], deltas)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}
