package otvar

// Delta application: turn a glyph's tuple variations plus a design-space
// point into a varied outline. Touched points receive their decoded deltas;
// untouched points on partially-touched contours get inferred ones (IUP).

// Point is one outline point in font units.
type Point struct {
	X       float64
	Y       float64
	OnCurve bool
}

// GlyphOutline is a glyph's base outline: points plus the end-point index of
// each contour (glyf convention). An empty outline is valid (e.g. space).
type GlyphOutline struct {
	Points []Point
	Ends   []int
}

// OutlineProvider is the collaborator that hands out base outlines.
// Implementations parse glyf/loca or CFF2 charstrings; this package only
// consumes the decoded points.
type OutlineProvider interface {
	// BasePoints returns the unvaried outline of a glyph, or ok=false when
	// the glyph has none (missing, or of a kind the provider cannot decode).
	BasePoints(gid GlyphIndex) (GlyphOutline, bool)
}

// DeltaApplier combines an outline provider, a variation source and the
// font's axes into the per-glyph delta pipeline. It holds only read-only
// references and is safe for concurrent use.
type DeltaApplier struct {
	Outlines OutlineProvider
	Source   VariationSource
	Axes     []Axis
	Avar     *AvarTable
}

// ApplyDeltas returns the outline of a glyph varied to the given user
// coordinates. It fails closed: missing collaborators, absent variation
// data, an empty tuple list or a non-matching design-space point all yield
// the base outline unchanged. Contour structure is never altered, only
// coordinates move.
func (a *DeltaApplier) ApplyDeltas(gid GlyphIndex, user UserCoords) (GlyphOutline, bool) {
	coords := NormalizeAll(user, a.Axes, a.Avar)
	return a.ApplyNormalized(gid, coords)
}

// ApplyNormalized is ApplyDeltas for already-normalized coordinates.
// The boolean result reports whether any variation was applied.
func (a *DeltaApplier) ApplyNormalized(gid GlyphIndex, coords NormalizedCoords) (GlyphOutline, bool) {
	if a == nil || a.Outlines == nil {
		return GlyphOutline{}, false
	}
	base, ok := a.Outlines.BasePoints(gid)
	if !ok {
		return GlyphOutline{}, false
	}
	if a.Source == nil || len(base.Points) == 0 {
		return base, false
	}
	set, err := a.Source.TupleVariations(gid)
	if err != nil || set == nil || len(set.Tuples) == 0 {
		return base, false
	}
	matched := MatchTuples(coords, set.Tuples)
	if len(matched) == 0 {
		return base, false
	}

	n := len(base.Points)
	totalX := make([]float64, n)
	totalY := make([]float64, n)
	for _, st := range matched {
		deltas := ParsePacked(st.Tuple.Serialized, n, st.Tuple.Private, set.SharedPoints, st.Tuple.ZeroDeltas)
		inferUntouched(deltas, base)
		for i := range deltas {
			totalX[i] += deltas[i].X * st.Scalar
			totalY[i] += deltas[i].Y * st.Scalar
		}
	}

	varied := GlyphOutline{
		Points: make([]Point, n),
		Ends:   base.Ends,
	}
	for i, p := range base.Points {
		varied.Points[i] = Point{X: p.X + totalX[i], Y: p.Y + totalY[i], OnCurve: p.OnCurve}
	}
	return varied, true
}

// inferUntouched reconstructs deltas for points the tuple did not encode
// (IUP). Inference works per contour and independently per axis: an
// untouched point whose base coordinate lies between its nearest touched
// neighbors on the contour cycle is interpolated proportionally; one lying
// outside that range copies the delta of the nearer neighbor. A contour with
// no touched points at all keeps zero deltas (no movement).
func inferUntouched(deltas []PointDelta, outline GlyphOutline) {
	start := 0
	for _, end := range outline.Ends {
		if end >= len(deltas) {
			end = len(deltas) - 1
		}
		inferContour(deltas, outline.Points, start, end)
		start = end + 1
	}
	// points beyond the last contour end (defensive: malformed outline)
	if start < len(deltas) {
		inferContour(deltas, outline.Points, start, len(deltas)-1)
	}
}

func inferContour(deltas []PointDelta, points []Point, start, end int) {
	if start > end {
		return
	}
	n := end - start + 1
	anyTouched := false
	for i := start; i <= end; i++ {
		if deltas[i].Touched {
			anyTouched = true
			break
		}
	}
	if !anyTouched {
		return // all-untouched contour: conservative zero deltas
	}
	for i := start; i <= end; i++ {
		if deltas[i].Touched {
			continue
		}
		prev, next := i, i
		for j := 1; j <= n; j++ {
			idx := start + ((i-start)-j+n)%n
			if deltas[idx].Touched {
				prev = idx
				break
			}
		}
		for j := 1; j <= n; j++ {
			idx := start + ((i-start)+j)%n
			if deltas[idx].Touched {
				next = idx
				break
			}
		}
		if prev == next {
			// single touched point on the contour
			deltas[i].X = deltas[prev].X
			deltas[i].Y = deltas[prev].Y
			continue
		}
		deltas[i].X = iupAxis(points[i].X, points[prev].X, points[next].X, deltas[prev].X, deltas[next].X)
		deltas[i].Y = iupAxis(points[i].Y, points[prev].Y, points[next].Y, deltas[prev].Y, deltas[next].Y)
	}
}

// iupAxis infers one coordinate's delta from the two touched reference
// points. Between the references the delta interpolates linearly with the
// base coordinate; outside, the nearer reference's delta is copied.
func iupAxis(coord, coord1, coord2, delta1, delta2 float64) float64 {
	if coord1 > coord2 {
		coord1, coord2 = coord2, coord1
		delta1, delta2 = delta2, delta1
	}
	if coord <= coord1 {
		return delta1
	}
	if coord >= coord2 {
		return delta2
	}
	t := (coord - coord1) / (coord2 - coord1)
	return delta1 + t*(delta2-delta1)
}
