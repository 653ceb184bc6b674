package otvar

// AxisRange is the support of a variation region on one axis: a tent function
// which is 0 outside [Start,End], 1 at Peak, and linear in between.
// Start ≤ Peak ≤ End, all in normalized [-1,1] coordinates.
type AxisRange struct {
	Start float64
	Peak  float64
	End   float64
}

// Region is an N-dimensional tent function over normalized design space,
// keyed by axis tag. Axes absent from the region do not restrict it
// (scalar factor 1). Regions are shared read-only data: a gvar shared tuple
// or an item variation store region list may be referenced by many variation
// records.
type Region map[Tag]AxisRange

// rangeForPeak builds an AxisRange for a peak-only tuple: the implicit
// support runs from 0 to the peak (OpenType spec, "tuple variation store").
func rangeForPeak(peak float64) AxisRange {
	if peak < 0 {
		return AxisRange{Start: peak, Peak: peak, End: 0}
	}
	return AxisRange{Start: 0, Peak: peak, End: peak}
}

// AxisScalar evaluates the tent function of rng at coord.
// It returns exactly 0 outside [Start,End] and for a degenerate all-zero
// range (an axis which does not participate; the table parsers drop such
// axes from regions, so this case only arises for hand-built ranges),
// 1 at the peak, and the linear ramp value in between. The result is never
// negative and never extrapolated.
func AxisScalar(coord float64, rng AxisRange) float64 {
	if rng.Peak == 0 && rng.Start == 0 && rng.End == 0 {
		return 0
	}
	if coord < rng.Start || coord > rng.End {
		return 0
	}
	if coord == rng.Peak {
		return 1
	}
	if coord < rng.Peak {
		if rng.Peak == rng.Start {
			return 1
		}
		return (coord - rng.Start) / (rng.Peak - rng.Start)
	}
	if rng.Peak == rng.End {
		return 1
	}
	return (rng.End - coord) / (rng.End - rng.Peak)
}

// Scalar evaluates the region's tent function at the given coordinates:
// the product of AxisScalar over every axis present in the region.
// It short-circuits to 0 as soon as any factor is 0.
func (r Region) Scalar(coords NormalizedCoords) float64 {
	scalar := 1.0
	for tag, rng := range r {
		factor := AxisScalar(coords[tag], rng)
		if factor == 0 {
			return 0
		}
		scalar *= factor
	}
	return scalar
}

// Equalish reports whether two regions agree on every axis within the given
// absolute threshold on all three triple members. Used by the CFF2 optimizer
// for region deduplication.
func (r Region) Equalish(other Region, threshold float64) bool {
	if len(r) != len(other) {
		return false
	}
	for tag, rng := range r {
		o, ok := other[tag]
		if !ok {
			return false
		}
		if absf(rng.Start-o.Start) > threshold ||
			absf(rng.Peak-o.Peak) > threshold ||
			absf(rng.End-o.End) > threshold {
			return false
		}
	}
	return true
}

func absf(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
