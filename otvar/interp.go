package otvar

// Interpolation primitives and tuple matching. All variation math in the end
// reduces to InterpolateValue: a base value plus a weighted sum of deltas,
// with the weights ("scalars") produced by region tent functions.

// InterpolateValue computes base + Σ deltas[i]*scalars[i].
// deltas and scalars must have the same length; a shorter scalars slice
// limits the sum (zero weight for the tail).
func InterpolateValue(base float64, deltas []float64, scalars []float64) float64 {
	value := base
	n := len(deltas)
	if len(scalars) < n {
		n = len(scalars)
	}
	for i := 0; i < n; i++ {
		value += deltas[i] * scalars[i]
	}
	return value
}

// InterpolatePoint applies InterpolateValue independently to x and y.
func InterpolatePoint(xBase, yBase float64, xDeltas, yDeltas, scalars []float64) (x, y float64) {
	x = InterpolateValue(xBase, xDeltas, scalars)
	y = InterpolateValue(yBase, yDeltas, scalars)
	return
}

// ScaledTuple is one active tuple variation: a tuple together with its
// region scalar at the current coordinates. The scalar is always > 0.
type ScaledTuple struct {
	Tuple  *TupleVariation
	Scalar float64
}

// MatchTuples selects the tuples whose region covers the given coordinates.
// Tuples with scalar 0 are dropped. Order of the result follows the tuple
// declaration order, so that float summation is reproducible across calls.
func MatchTuples(coords NormalizedCoords, tuples []TupleVariation) []ScaledTuple {
	var matched []ScaledTuple
	for i := range tuples {
		scalar := tuples[i].Region.Scalar(coords)
		if scalar == 0 {
			continue
		}
		matched = append(matched, ScaledTuple{Tuple: &tuples[i], Scalar: scalar})
	}
	return matched
}

// RegionScalars evaluates every region of a list at the given coordinates.
// This is the scalar vector used by item variation stores and CFF2 blending.
func RegionScalars(coords NormalizedCoords, regions []Region) []float64 {
	scalars := make([]float64, len(regions))
	for i, region := range regions {
		scalars[i] = region.Scalar(coords)
	}
	return scalars
}
