package otvar

// Axis flags, from table fvar.
type AxisFlags uint16

const (
	// AxisFlagHidden indicates the axis should not be exposed in user interfaces.
	AxisFlagHidden AxisFlags = 0x0001
)

// Axis describes one variation axis of a font, as declared in table fvar.
// Values are in user units (e.g., 400, 700 for a weight axis).
// An Axis is immutable once parsed; Minimum ≤ Default ≤ Maximum holds for
// every axis of a well-formed font (the Validator checks this).
type Axis struct {
	Tag     Tag
	NameID  uint16
	Flags   AxisFlags
	Minimum float64
	Default float64
	Maximum float64
}

// UserCoords is a point in design space, in user units, keyed by axis tag.
// Axes absent from the map are taken at their default value.
type UserCoords map[Tag]float64

// NormalizedCoords is a point in design space after normalization:
// every value lies in [-1,1], with 0 at the axis default.
type NormalizedCoords map[Tag]float64

// Normalize maps a user-space axis value to [-1,1]: the default maps to 0,
// the axis minimum to -1, the maximum to +1, with linear scaling between and
// clamping beyond. A degenerate axis (minimum == default or maximum ==
// default) yields 0 on the degenerate side instead of dividing by zero.
func Normalize(value float64, axis Axis) float64 {
	var norm float64
	switch {
	case value < axis.Default:
		if axis.Default == axis.Minimum {
			return 0
		}
		norm = (value - axis.Default) / (axis.Default - axis.Minimum)
	case value > axis.Default:
		if axis.Maximum == axis.Default {
			return 0
		}
		norm = (value - axis.Default) / (axis.Maximum - axis.Default)
	default:
		return 0
	}
	if norm < -1 {
		return -1
	}
	if norm > 1 {
		return 1
	}
	return norm
}

// NormalizeAll normalizes a sparse user coordinate set against a font's axes.
// Axes missing from user map to 0 (their default). Unknown tags in user are
// ignored with a trace warning; clamping, not rejection, is the contract
// here. If avar is non-nil, its segment maps warp the result.
func NormalizeAll(user UserCoords, axes []Axis, avar *AvarTable) NormalizedCoords {
	coords := make(NormalizedCoords, len(axes))
	known := make(map[Tag]bool, len(axes))
	for _, axis := range axes {
		known[axis.Tag] = true
		value, ok := user[axis.Tag]
		if !ok {
			coords[axis.Tag] = 0
			continue
		}
		coords[axis.Tag] = Normalize(value, axis)
	}
	for tag := range user {
		if !known[tag] {
			tracer().Infof("coordinate for unknown axis %s ignored", tag)
		}
	}
	if avar != nil {
		coords = avar.Apply(coords, axes)
	}
	return coords
}
