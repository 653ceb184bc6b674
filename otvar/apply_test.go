package otvar

import (
	"math"
	"testing"
)

// stubOutlines serves one outline for every glyph.
type stubOutlines struct {
	outline GlyphOutline
}

func (s stubOutlines) BasePoints(gid GlyphIndex) (GlyphOutline, bool) {
	return s.outline, true
}

// stubSource serves one tuple set for every glyph.
type stubSource struct {
	set *TupleSet
}

func (s stubSource) TupleVariations(gid GlyphIndex) (*TupleSet, error) {
	return s.set, nil
}

func (s stubSource) ItemStore(table Tag) *ItemVariationStore {
	return nil
}

var testAxes = []Axis{{Tag: TagAxisWeight, Minimum: 100, Default: 400, Maximum: 900}}

// fullRegion matches every coordinate on wght with scalar 1 at the maximum.
var fullRegion = Region{TagAxisWeight: AxisRange{Start: 0, Peak: 1, End: 1}}

func lineOutline(n int) GlyphOutline {
	// n points evenly spaced on the x axis, one contour
	outline := GlyphOutline{Points: make([]Point, n), Ends: []int{n - 1}}
	for i := range outline.Points {
		outline.Points[i] = Point{X: float64(i * 10), Y: 0, OnCurve: true}
	}
	return outline
}

func tupleFor(points []int, xs, ys []int16) TupleVariation {
	var data []byte
	data = append(data, PackPointNumbers(points)...)
	data = append(data, PackDeltaValues(xs)...)
	data = append(data, PackDeltaValues(ys)...)
	return TupleVariation{Region: fullRegion, Private: true, Serialized: data}
}

func TestApplyDeltasNoVariationFallsBack(t *testing.T) {
	base := lineOutline(4)
	applier := &DeltaApplier{
		Outlines: stubOutlines{base},
		Source:   stubSource{&TupleSet{}},
		Axes:     testAxes,
	}
	varied, changed := applier.ApplyDeltas(0, UserCoords{TagAxisWeight: 900})
	if changed {
		t.Error("expected no variation to be applied")
	}
	for i := range base.Points {
		if varied.Points[i] != base.Points[i] {
			t.Errorf("point %d moved without variation data", i)
		}
	}
}

func TestApplyDeltasScaling(t *testing.T) {
	base := lineOutline(2)
	tuple := tupleFor([]int{0, 1}, []int16{10, 20}, []int16{0, 0})
	applier := &DeltaApplier{
		Outlines: stubOutlines{base},
		Source:   stubSource{&TupleSet{Tuples: []TupleVariation{tuple}}},
		Axes:     testAxes,
	}
	// wght 650 normalizes to 0.5, the region ramps linearly to its peak
	varied, changed := applier.ApplyDeltas(0, UserCoords{TagAxisWeight: 650})
	if !changed {
		t.Fatal("expected variation to be applied")
	}
	if varied.Points[0].X != 0+10*0.5 || varied.Points[1].X != 10+20*0.5 {
		t.Errorf("unexpected varied points: %+v", varied.Points)
	}
	if len(varied.Ends) != 1 || varied.Ends[0] != 1 {
		t.Errorf("contour structure changed: %+v", varied.Ends)
	}
}

func TestIUPLinearInterpolation(t *testing.T) {
	// contour of 6 points on a line; only the two endpoints are touched.
	// inferred deltas of the 4 points in between must vary linearly.
	base := lineOutline(6)
	tuple := tupleFor([]int{0, 5}, []int16{0, 50}, []int16{0, 0})
	applier := &DeltaApplier{
		Outlines: stubOutlines{base},
		Source:   stubSource{&TupleSet{Tuples: []TupleVariation{tuple}}},
		Axes:     testAxes,
	}
	varied, _ := applier.ApplyDeltas(0, UserCoords{TagAxisWeight: 900}) // scalar 1
	for i := 0; i < 6; i++ {
		wantDelta := 50.0 * float64(i) / 5.0
		got := varied.Points[i].X - base.Points[i].X
		if math.Abs(got-wantDelta) > 1e-9 {
			t.Errorf("point %d: inferred delta %g, want %g", i, got, wantDelta)
		}
	}
}

func TestIUPExtrapolationCopiesNearest(t *testing.T) {
	// point 2 lies outside the base-coordinate span of the touched points
	// 0 and 1, so it copies the delta of the nearer one
	base := GlyphOutline{
		Points: []Point{{X: 0}, {X: 10}, {X: 30}},
		Ends:   []int{2},
	}
	tuple := tupleFor([]int{0, 1}, []int16{4, 8}, []int16{0, 0})
	applier := &DeltaApplier{
		Outlines: stubOutlines{base},
		Source:   stubSource{&TupleSet{Tuples: []TupleVariation{tuple}}},
		Axes:     testAxes,
	}
	varied, _ := applier.ApplyDeltas(0, UserCoords{TagAxisWeight: 900})
	if got := varied.Points[2].X - base.Points[2].X; got != 8 {
		t.Errorf("expected extrapolated point to copy delta 8, got %g", got)
	}
}

func TestIUPAllUntouchedContourStaysPut(t *testing.T) {
	// two contours; the second has no touched points and must not move
	base := GlyphOutline{
		Points: []Point{{X: 0}, {X: 10}, {X: 100}, {X: 110}},
		Ends:   []int{1, 3},
	}
	tuple := tupleFor([]int{0, 1}, []int16{5, 5}, []int16{0, 0})
	applier := &DeltaApplier{
		Outlines: stubOutlines{base},
		Source:   stubSource{&TupleSet{Tuples: []TupleVariation{tuple}}},
		Axes:     testAxes,
	}
	varied, _ := applier.ApplyDeltas(0, UserCoords{TagAxisWeight: 900})
	for i := 2; i < 4; i++ {
		if varied.Points[i] != base.Points[i] {
			t.Errorf("untouched contour moved: point %d %+v", i, varied.Points[i])
		}
	}
}

func TestApplyDeltasFailsClosed(t *testing.T) {
	applier := &DeltaApplier{Axes: testAxes}
	outline, changed := applier.ApplyDeltas(0, UserCoords{})
	if changed || len(outline.Points) != 0 {
		t.Errorf("expected empty fail-closed result, got %+v", outline)
	}
}
