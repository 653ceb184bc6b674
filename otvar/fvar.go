package otvar

// Table fvar declares a font's variation axes and named instances.
// See https://docs.microsoft.com/en-us/typography/opentype/spec/fvar

// NamedInstance is a predefined, named point in design space, such as
// "Bold Condensed". Coordinates are in user units, one per fvar axis, in
// axis declaration order.
type NamedInstance struct {
	Index            int
	SubfamilyNameID  uint16
	PostScriptNameID uint16 // 0 if not present
	Coordinates      []float64
}

// FvarTable is a parsed fvar table.
type FvarTable struct {
	Axes      []Axis
	Instances []NamedInstance
}

const (
	fvarHeaderSize = 16
	fvarAxisSize   = 20
)

// fixed1616 interprets 4 bytes as a signed 16.16 fixed-point number.
func fixed1616(b []byte) float64 {
	return float64(int32(u32(b))) / 65536.0
}

// ParseFvar parses an fvar table.
func ParseFvar(data []byte) (*FvarTable, error) {
	b := binarySegm(data)
	if len(b) < fvarHeaderSize {
		return nil, InvalidVariationDataError{Table: TagFvar, Section: "Header", Issue: "table too short"}
	}
	if b.U16(0) != 1 || b.U16(2) != 0 {
		return nil, InvalidVariationDataError{Table: TagFvar, Section: "Header", Issue: "unsupported version"}
	}
	axesOffset := int(b.U16(4))
	axisCount := int(b.U16(8))
	axisSize := int(b.U16(10))
	instanceCount := int(b.U16(12))
	instanceSize := int(b.U16(14))
	if axisSize != fvarAxisSize {
		return nil, InvalidVariationDataError{Table: TagFvar, Section: "Header", Issue: "unexpected axis record size"}
	}
	// instanceSize is axisCount*4 + 4, or +2 more when a PostScript name ID
	// is present per instance.
	if instanceCount > 0 && instanceSize < axisCount*4+4 {
		return nil, InvalidVariationDataError{Table: TagFvar, Section: "Header", Issue: "instance record size too small"}
	}
	end := axesOffset + axisCount*axisSize + instanceCount*instanceSize
	if axesOffset < fvarHeaderSize || end > len(b) {
		return nil, InvalidVariationDataError{Table: TagFvar, Section: "Header", Issue: "axis/instance records exceed table bounds"}
	}

	fvar := &FvarTable{Axes: make([]Axis, axisCount)}
	for i := 0; i < axisCount; i++ {
		rec, _ := b.view(axesOffset+i*axisSize, axisSize)
		fvar.Axes[i] = Axis{
			Tag:     Tag(u32(rec[0:4])),
			Minimum: fixed1616(rec[4:8]),
			Default: fixed1616(rec[8:12]),
			Maximum: fixed1616(rec[12:16]),
			Flags:   AxisFlags(u16(rec[16:18])),
			NameID:  u16(rec[18:20]),
		}
	}
	hasPSName := instanceSize >= axisCount*4+6
	instOffset := axesOffset + axisCount*axisSize
	fvar.Instances = make([]NamedInstance, instanceCount)
	for i := 0; i < instanceCount; i++ {
		rec, _ := b.view(instOffset+i*instanceSize, instanceSize)
		inst := NamedInstance{
			Index:           i,
			SubfamilyNameID: u16(rec[0:2]),
			Coordinates:     make([]float64, axisCount),
		}
		for a := 0; a < axisCount; a++ {
			inst.Coordinates[a] = fixed1616(rec[4+a*4 : 8+a*4])
		}
		if hasPSName {
			inst.PostScriptNameID = u16(rec[4+axisCount*4 : 6+axisCount*4])
		}
		fvar.Instances[i] = inst
	}
	tracer().Debugf("fvar: %d axes, %d named instances", axisCount, instanceCount)
	return fvar, nil
}

// UserCoordsOf converts a named instance's coordinate tuple into a sparse
// user coordinate map, keyed by the fvar axis tags.
func (f *FvarTable) UserCoordsOf(inst NamedInstance) UserCoords {
	coords := make(UserCoords, len(f.Axes))
	for i, axis := range f.Axes {
		if i < len(inst.Coordinates) {
			coords[axis.Tag] = inst.Coordinates[i]
		}
	}
	return coords
}

// Instance returns the named instance at the given index, or an
// InvalidInstanceIndexError when the index is out of range. This is the only
// place in the package where a range problem surfaces as a hard error: a bad
// index is programmer-level misuse, not corrupt font data.
func (f *FvarTable) Instance(index int) (NamedInstance, error) {
	if index < 0 || index >= len(f.Instances) {
		return NamedInstance{}, InvalidInstanceIndexError{Index: index, Count: len(f.Instances)}
	}
	return f.Instances[index], nil
}
