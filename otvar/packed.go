package otvar

// Decoding of packed delta streams, as used by tuple variations (gvar and
// cvar). One stream holds an optional point-number sub-stream followed by an
// x-delta and a y-delta sub-stream, all run-length encoded.
//
// Decoding convention for the run-control bytes used here:
//
//	point numbers:  0x80 = numbers are words,  low 7 bits = run length
//	deltas:         0x80 = deltas are zero, 0x40 = deltas are words,
//	                low 6 bits = run length
//
// A zero run length means "all remaining entries". Corrupt or truncated
// streams never abort decoding with an error: the parser degrades to
// all-zero, untouched output, so that one bad tuple cannot break rendering
// of an otherwise usable glyph.

// PointDelta is the decoded delta of one outline point. Touched marks points
// the tuple explicitly encodes; deltas of untouched points must be inferred
// (see IUP in apply.go).
type PointDelta struct {
	X       float64
	Y       float64
	Touched bool
}

const (
	pointsAreWords   = 0x80
	pointRunLenMask  = 0x7f
	deltasAreZero    = 0x80
	deltasAreWords   = 0x40
	deltaRunLenMask  = 0x3f
	maxPackedRunSize = deltaRunLenMask
)

// ParsePointNumbers decodes a packed point-number sub-stream. The first byte
// is the touched-point count (with the high bit flagging a 2-byte count); a
// count of 0 stands for "all points". Point numbers are stored as successive
// differences and summed up to absolute indices.
//
// Returns the absolute point indices (nil for "all points"), the number of
// bytes consumed, and ok=false when the stream is truncated.
func ParsePointNumbers(data []byte) (points []int, consumed int, ok bool) {
	if len(data) == 0 {
		return nil, 0, false
	}
	count := int(data[0])
	offset := 1
	if count&0x80 != 0 {
		if len(data) < 2 {
			return nil, 1, false
		}
		count = (count&0x7f)<<8 | int(data[1])
		offset = 2
	}
	if count == 0 {
		return nil, offset, true
	}
	points = make([]int, 0, count)
	last := 0
	for len(points) < count {
		if offset >= len(data) {
			return nil, offset, false
		}
		control := data[offset]
		offset++
		runLen := int(control & pointRunLenMask)
		if runLen == 0 {
			runLen = count - len(points)
		}
		for i := 0; i < runLen && len(points) < count; i++ {
			var diff int
			if control&pointsAreWords != 0 {
				if offset+2 > len(data) {
					return nil, offset, false
				}
				diff = int(u16(data[offset:]))
				offset += 2
			} else {
				if offset >= len(data) {
					return nil, offset, false
				}
				diff = int(data[offset])
				offset++
			}
			last += diff
			points = append(points, last)
		}
	}
	return points, offset, true
}

// ParseDeltaValues decodes one run-length encoded delta sub-stream of the
// given length. Returns the values, bytes consumed, and ok=false on
// truncation.
func ParseDeltaValues(data []byte, count int) (values []int16, consumed int, ok bool) {
	values = make([]int16, 0, count)
	offset := 0
	for len(values) < count {
		if offset >= len(data) {
			return values, offset, false
		}
		control := data[offset]
		offset++
		runLen := int(control & deltaRunLenMask)
		if runLen == 0 {
			runLen = count - len(values)
		}
		for i := 0; i < runLen && len(values) < count; i++ {
			switch {
			case control&deltasAreZero != 0:
				values = append(values, 0)
			case control&deltasAreWords != 0:
				if offset+2 > len(data) {
					return values, offset, false
				}
				values = append(values, i16(data[offset:]))
				offset += 2
			default:
				if offset >= len(data) {
					return values, offset, false
				}
				values = append(values, int16(int8(data[offset])))
				offset++
			}
		}
	}
	return values, offset, true
}

// ParsePacked decodes the complete packed delta data of one tuple variation
// and distributes the values over the glyph's points:
//
//   - zero=true short-circuits and yields pointCount zero deltas, all touched,
//     regardless of any payload bytes present.
//   - privatePoints=true expects a point-number sub-stream at the start of
//     data; otherwise sharedPoints names the touched points (nil = all).
//
// Indices named by the point list receive decoded values and Touched=true;
// all other indices stay {0,0,untouched}. Any decode problem degrades to
// all-zero untouched output.
func ParsePacked(data []byte, pointCount int, privatePoints bool, sharedPoints []int, zero bool) []PointDelta {
	deltas := make([]PointDelta, pointCount)
	if zero {
		for i := range deltas {
			deltas[i].Touched = true
		}
		return deltas
	}
	points := sharedPoints
	offset := 0
	if privatePoints {
		var ok bool
		var consumed int
		points, consumed, ok = ParsePointNumbers(data)
		if !ok {
			tracer().Infof("corrupt point-number stream, ignoring tuple")
			return make([]PointDelta, pointCount)
		}
		offset = consumed
	}
	touchedCount := len(points)
	if points == nil {
		touchedCount = pointCount
	}
	xs, consumed, ok := ParseDeltaValues(data[offset:], touchedCount)
	if !ok {
		tracer().Infof("corrupt x-delta stream, ignoring tuple")
		return make([]PointDelta, pointCount)
	}
	offset += consumed
	ys, _, ok := ParseDeltaValues(data[offset:], touchedCount)
	if !ok {
		tracer().Infof("corrupt y-delta stream, ignoring tuple")
		return make([]PointDelta, pointCount)
	}
	if points == nil {
		for i := 0; i < pointCount; i++ {
			deltas[i] = PointDelta{X: float64(xs[i]), Y: float64(ys[i]), Touched: true}
		}
		return deltas
	}
	for i, p := range points {
		if p < 0 || p >= pointCount {
			continue // out-of-range point number, skip silently
		}
		deltas[p] = PointDelta{X: float64(xs[i]), Y: float64(ys[i]), Touched: true}
	}
	return deltas
}

// --- Encoding ---------------------------------------------------------------

// PackDeltaValues run-length encodes one delta sub-stream. Zero runs are
// emitted without payload, values fitting into a signed byte as bytes, the
// rest as big-endian words. The encoding round-trips through
// ParseDeltaValues exactly.
func PackDeltaValues(values []int16) []byte {
	var out []byte
	i := 0
	for i < len(values) {
		j := i
		switch {
		case values[i] == 0:
			for j < len(values) && values[j] == 0 && j-i < maxPackedRunSize {
				j++
			}
			out = append(out, deltasAreZero|byte(j-i))
		case fitsInt8(values[i]):
			for j < len(values) && values[j] != 0 && fitsInt8(values[j]) && j-i < maxPackedRunSize {
				j++
			}
			out = append(out, byte(j-i))
			for _, v := range values[i:j] {
				out = append(out, byte(int8(v)))
			}
		default:
			for j < len(values) && !fitsInt8(values[j]) && j-i < maxPackedRunSize {
				j++
			}
			out = append(out, deltasAreWords|byte(j-i))
			for _, v := range values[i:j] {
				out = append(out, byte(uint16(v)>>8), byte(uint16(v)))
			}
		}
		i = j
	}
	return out
}

func fitsInt8(v int16) bool {
	return v >= -128 && v <= 127
}

// PackPointNumbers encodes a sorted list of absolute point indices as a
// packed point-number sub-stream (differences, byte runs where possible).
func PackPointNumbers(points []int) []byte {
	var out []byte
	if len(points) >= 0x80 {
		out = append(out, byte(len(points)>>8)|0x80, byte(len(points)))
	} else {
		out = append(out, byte(len(points)))
	}
	if len(points) == 0 {
		return out
	}
	diffs := make([]int, len(points))
	last := 0
	wide := false
	for i, p := range points {
		diffs[i] = p - last
		if diffs[i] > 0xff {
			wide = true
		}
		last = p
	}
	i := 0
	for i < len(diffs) {
		n := len(diffs) - i
		if n > pointRunLenMask {
			n = pointRunLenMask
		}
		if wide {
			out = append(out, pointsAreWords|byte(n))
			for _, d := range diffs[i : i+n] {
				out = append(out, byte(d>>8), byte(d))
			}
		} else {
			out = append(out, byte(n))
			for _, d := range diffs[i : i+n] {
				out = append(out, byte(d))
			}
		}
		i += n
	}
	return out
}
