package otvar

// Table avar warps normalized axis values through per-axis piecewise-linear
// segment maps. It refines, never replaces, the default normalization: input
// and output are both in [-1,1].
// See https://docs.microsoft.com/en-us/typography/opentype/spec/avar

// avarSegment is one (fromCoordinate, toCoordinate) pair of a segment map.
type avarSegment struct {
	from float64
	to   float64
}

// AvarTable is a parsed avar table. Segment maps are held in fvar axis
// declaration order.
type AvarTable struct {
	segmentMaps [][]avarSegment
}

// ParseAvar parses an avar table.
func ParseAvar(data []byte) (*AvarTable, error) {
	b := binarySegm(data)
	if len(b) < 8 {
		return nil, InvalidVariationDataError{Table: TagAvar, Section: "Header", Issue: "table too short"}
	}
	if b.U16(0) != 1 || b.U16(2) != 0 {
		return nil, InvalidVariationDataError{Table: TagAvar, Section: "Header", Issue: "unsupported version"}
	}
	axisCount := int(b.U16(6))
	avar := &AvarTable{segmentMaps: make([][]avarSegment, axisCount)}
	offset := 8
	for i := 0; i < axisCount; i++ {
		count, err := b.u16(offset)
		if err != nil {
			return nil, InvalidVariationDataError{Table: TagAvar, Section: "SegmentMaps", Issue: "truncated segment map"}
		}
		offset += 2
		segments := make([]avarSegment, count)
		for j := range segments {
			rec, err := b.view(offset, 4)
			if err != nil {
				return nil, InvalidVariationDataError{Table: TagAvar, Section: "SegmentMaps", Issue: "truncated segment record"}
			}
			segments[j] = avarSegment{from: f2dot14(rec[0:2]), to: f2dot14(rec[2:4])}
			offset += 4
		}
		avar.segmentMaps[i] = segments
	}
	return avar, nil
}

// mapValue maps one normalized value through the segment map of an axis.
func mapValue(value float64, segments []avarSegment) float64 {
	if len(segments) == 0 {
		return value
	}
	if value <= segments[0].from {
		return segments[0].to
	}
	last := segments[len(segments)-1]
	if value >= last.from {
		return last.to
	}
	for i := 1; i < len(segments); i++ {
		if value < segments[i].from {
			prev, next := segments[i-1], segments[i]
			if next.from == prev.from {
				return prev.to
			}
			t := (value - prev.from) / (next.from - prev.from)
			return prev.to + t*(next.to-prev.to)
		}
	}
	return value
}

// Apply warps normalized coordinates through the table's segment maps.
// Axes beyond the avar axis count pass through unchanged.
func (a *AvarTable) Apply(coords NormalizedCoords, axes []Axis) NormalizedCoords {
	if a == nil {
		return coords
	}
	mapped := make(NormalizedCoords, len(coords))
	for tag, value := range coords {
		mapped[tag] = value
	}
	for i, axis := range axes {
		if i >= len(a.segmentMaps) {
			break
		}
		mapped[axis.Tag] = mapValue(coords[axis.Tag], a.segmentMaps[i])
	}
	return mapped
}
