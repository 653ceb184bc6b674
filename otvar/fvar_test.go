package otvar

import "testing"

// buildFvar assembles a minimal fvar table with the given axes and
// instances (instances without PostScript name IDs).
func buildFvar(axes []Axis, instances [][]float64) []byte {
	putU16 := func(b []byte, i int, v uint16) {
		b[i] = byte(v >> 8)
		b[i+1] = byte(v)
	}
	putFixed := func(b []byte, i int, v float64) {
		u := uint32(int32(v * 65536))
		b[i] = byte(u >> 24)
		b[i+1] = byte(u >> 16)
		b[i+2] = byte(u >> 8)
		b[i+3] = byte(u)
	}
	instanceSize := len(axes)*4 + 4
	data := make([]byte, fvarHeaderSize+len(axes)*fvarAxisSize+len(instances)*instanceSize)
	putU16(data, 0, 1) // version 1.0
	putU16(data, 4, fvarHeaderSize)
	putU16(data, 6, 2) // reserved
	putU16(data, 8, uint16(len(axes)))
	putU16(data, 10, fvarAxisSize)
	putU16(data, 12, uint16(len(instances)))
	putU16(data, 14, uint16(instanceSize))
	for i, axis := range axes {
		rec := data[fvarHeaderSize+i*fvarAxisSize:]
		u := uint32(axis.Tag)
		rec[0], rec[1], rec[2], rec[3] = byte(u>>24), byte(u>>16), byte(u>>8), byte(u)
		putFixed(rec, 4, axis.Minimum)
		putFixed(rec, 8, axis.Default)
		putFixed(rec, 12, axis.Maximum)
		putU16(rec, 16, uint16(axis.Flags))
		putU16(rec, 18, axis.NameID)
	}
	instOffset := fvarHeaderSize + len(axes)*fvarAxisSize
	for i, coords := range instances {
		rec := data[instOffset+i*instanceSize:]
		putU16(rec, 0, uint16(257+i)) // subfamily name ID
		for a, c := range coords {
			putFixed(rec, 4+a*4, c)
		}
	}
	return data
}

func TestParseFvar(t *testing.T) {
	axes := []Axis{
		{Tag: TagAxisWeight, Minimum: 100, Default: 400, Maximum: 900, NameID: 256},
		{Tag: TagAxisWidth, Minimum: 75, Default: 100, Maximum: 125, NameID: 257},
	}
	data := buildFvar(axes, [][]float64{{700, 100}, {400, 75}})
	fvar, err := ParseFvar(data)
	if err != nil {
		t.Fatalf("cannot parse fvar: %v", err)
	}
	if len(fvar.Axes) != 2 {
		t.Fatalf("expected 2 axes, got %d", len(fvar.Axes))
	}
	if fvar.Axes[0].Tag != TagAxisWeight || fvar.Axes[0].Maximum != 900 {
		t.Errorf("unexpected first axis: %+v", fvar.Axes[0])
	}
	if len(fvar.Instances) != 2 {
		t.Fatalf("expected 2 instances, got %d", len(fvar.Instances))
	}
	if fvar.Instances[0].Coordinates[0] != 700 {
		t.Errorf("unexpected instance coordinates: %+v", fvar.Instances[0])
	}
	coords := fvar.UserCoordsOf(fvar.Instances[1])
	if coords[TagAxisWidth] != 75 {
		t.Errorf("expected wdth 75, got %g", coords[TagAxisWidth])
	}
}

func TestFvarInstanceIndexOutOfRange(t *testing.T) {
	fvar := &FvarTable{Instances: []NamedInstance{{}}}
	if _, err := fvar.Instance(0); err != nil {
		t.Errorf("index 0 should be valid: %v", err)
	}
	_, err := fvar.Instance(1)
	if _, ok := err.(InvalidInstanceIndexError); !ok {
		t.Errorf("expected InvalidInstanceIndexError, got %v", err)
	}
}

func TestParseFvarTruncated(t *testing.T) {
	if _, err := ParseFvar([]byte{0, 1, 0, 0}); err == nil {
		t.Error("expected error for truncated fvar")
	}
}
