package varfont

import (
	"sort"
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/npillmayer/varfont/otvar"
)

// buildSFNT assembles a font file from raw tables: offset table, sorted
// table records, 4-byte-aligned table data.
func buildSFNT(tables map[string][]byte) []byte {
	tags := make([]string, 0, len(tables))
	for tag := range tables {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	out := make([]byte, 12+len(tags)*16)
	putU16 := func(i int, v uint16) {
		out[i] = byte(v >> 8)
		out[i+1] = byte(v)
	}
	putU32 := func(i int, v uint32) {
		out[i] = byte(v >> 24)
		out[i+1] = byte(v >> 16)
		out[i+2] = byte(v >> 8)
		out[i+3] = byte(v)
	}
	putU32(0, 0x00010000)
	putU16(4, uint16(len(tags)))
	for i, tag := range tags {
		rec := 12 + i*16
		copy(out[rec:], tag)
		putU32(rec+8, uint32(len(out)))
		putU32(rec+12, uint32(len(tables[tag])))
		out = append(out, tables[tag]...)
		for len(out)%4 != 0 {
			out = append(out, 0)
		}
	}
	return out
}

// buildTestFvar assembles an fvar with one weight axis 100/400/900 and one
// named instance at 700.
func buildTestFvar() []byte {
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
	data := make([]byte, 16+20+8)
	putU16(data, 0, 1) // version 1.0
	putU16(data, 4, 16)
	putU16(data, 6, 2)
	putU16(data, 8, 1)  // axisCount
	putU16(data, 10, 20)
	putU16(data, 12, 1) // instanceCount
	putU16(data, 14, 8) // instanceSize
	copy(data[16:], "wght")
	putFixed(data, 20, 100)
	putFixed(data, 24, 400)
	putFixed(data, 28, 900)
	putU16(data, 34, 256) // axis name ID
	putU16(data, 36, 257) // instance subfamily name ID
	putFixed(data, 40, 700)
	return data
}

func TestParseTableDirectory(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.varfont")
	defer teardown()
	font := buildSFNT(map[string][]byte{
		"cmap": {1, 2, 3, 4},
		"maxp": {0, 0, 0x50, 0, 0, 7},
	})
	tables, err := parseTableDirectory(font)
	if err != nil {
		t.Fatalf("cannot parse table directory: %v", err)
	}
	if len(tables) != 2 {
		t.Fatalf("expected 2 tables, got %d", len(tables))
	}
	if len(tables[otvar.T("cmap")]) != 4 {
		t.Errorf("cmap has %d bytes", len(tables[otvar.T("cmap")]))
	}
	if numGlyphs(tables) != 7 {
		t.Errorf("numGlyphs is %d, expected 7", numGlyphs(tables))
	}
}

func TestParseTableDirectoryRejectsGarbage(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.varfont")
	defer teardown()
	if _, err := parseTableDirectory([]byte{0xde, 0xad, 0xbe, 0xef, 0, 0, 0, 0, 0, 0, 0, 0}); err == nil {
		t.Error("expected an error for an unsupported font type")
	}
	font := buildSFNT(map[string][]byte{"maxp": {0, 0, 0, 0, 0, 7}})
	font[12+12+3] = 0xff // inflate the table size beyond the file
	if _, err := parseTableDirectory(font); err == nil {
		t.Error("expected an error for out-of-bounds table records")
	}
}

func TestParseVariableFont(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.varfont")
	defer teardown()
	font := buildSFNT(map[string][]byte{
		"fvar": buildTestFvar(),
		"maxp": {0, 0, 0x50, 0, 0, 2},
	})
	f, err := ParseVariableFont(font)
	if err != nil {
		t.Fatalf("cannot parse font: %v", err)
	}
	if !f.IsVariable() {
		t.Fatal("font with fvar must be variable")
	}
	axes := f.Axes()
	if len(axes) != 1 || axes[0].Tag != otvar.TagAxisWeight {
		t.Fatalf("axes decoded wrong: %+v", axes)
	}
	coords := f.Normalize(otvar.UserCoords{otvar.TagAxisWeight: 650})
	if coords[otvar.TagAxisWeight] != 0.5 {
		t.Errorf("wght 650 normalized to %g, expected 0.5", coords[otvar.TagAxisWeight])
	}
	instances := f.NamedInstances()
	if len(instances) != 1 || instances[0].Coordinates[0] != 700 {
		t.Fatalf("named instances decoded wrong: %+v", instances)
	}
	// no name table: synthesized instance names
	if name := f.InstanceName(instances[0]); name != "Instance 0" {
		t.Errorf("instance name is %q", name)
	}
}

func TestParseStaticFont(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.varfont")
	defer teardown()
	font := buildSFNT(map[string][]byte{
		"maxp": {0, 0, 0x50, 0, 0, 2},
	})
	f, err := ParseVariableFont(font)
	if err != nil {
		t.Fatalf("cannot parse font: %v", err)
	}
	if f.IsVariable() {
		t.Error("font without fvar must be static")
	}
	if axes := f.Axes(); axes != nil {
		t.Errorf("static font reports axes: %+v", axes)
	}
	if _, ok := f.OutlineAt(0, nil); ok {
		t.Error("static font must not vary outlines")
	}
}

func TestValidateSyntheticFont(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.varfont")
	defer teardown()
	font := buildSFNT(map[string][]byte{
		"fvar": buildTestFvar(),
		"maxp": {0, 0, 0x50, 0, 0, 2},
	})
	f, err := ParseVariableFont(font)
	if err != nil {
		t.Fatalf("cannot parse font: %v", err)
	}
	report := f.Validate()
	if !report.Valid {
		t.Errorf("synthetic font should validate, errors: %v", report.Errors)
	}
	// no HVAR is a warning, not an error
	if len(report.Warnings) == 0 {
		t.Error("expected at least the missing-HVAR warning")
	}
}
