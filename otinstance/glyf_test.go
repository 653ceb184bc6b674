package otinstance

import (
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/npillmayer/varfont/otvar"
)

// triangleGlyph is a hand-encoded one-contour simple glyph with points
// (10,20), (110,20), (60,100), all on-curve.
func triangleGlyph() []byte {
	return []byte{
		0x00, 0x01, // numberOfContours
		0x00, 10, 0x00, 20, 0x00, 110, 0x00, 100, // bounding box
		0x00, 0x02, // endPtsOfContours
		0x00, 0x00, // instructionLength
		0x37, 0x33, 0x27, // flags: all short deltas
		10, 100, 50, // x deltas: +10, +100, -50
		20, 80, // y deltas: +20, (same), +80
	}
}

// buildGlyphTable wraps raw glyf records into a table with a short loca.
// Records must have even lengths.
func buildGlyphTable(t *testing.T, records ...[]byte) *GlyphTable {
	t.Helper()
	var glyf []byte
	var loca []byte
	putLoca := func() {
		loca = append(loca, byte(uint16(len(glyf)/2)>>8), byte(len(glyf)/2))
	}
	putLoca()
	for _, r := range records {
		glyf = append(glyf, r...)
		putLoca()
	}
	table, err := ParseGlyphTable(glyf, loca, false, len(records))
	if err != nil {
		t.Fatalf("cannot build glyph table: %v", err)
	}
	return table
}

func TestParseSimpleGlyph(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.otinstance")
	defer teardown()
	table := buildGlyphTable(t, triangleGlyph(), nil)
	outline, ok := table.BasePoints(0)
	if !ok {
		t.Fatal("cannot decode simple glyph")
	}
	want := []otvar.Point{
		{X: 10, Y: 20, OnCurve: true},
		{X: 110, Y: 20, OnCurve: true},
		{X: 60, Y: 100, OnCurve: true},
	}
	if len(outline.Points) != len(want) {
		t.Fatalf("expected %d points, got %d", len(want), len(outline.Points))
	}
	for i, p := range outline.Points {
		if p != want[i] {
			t.Errorf("point %d is %+v, expected %+v", i, p, want[i])
		}
	}
	if len(outline.Ends) != 1 || outline.Ends[0] != 2 {
		t.Errorf("contour ends are %v", outline.Ends)
	}
	if _, ok := table.BasePoints(1); ok {
		t.Error("empty glyph must not decode to an outline")
	}
}

func TestCompositeGlyphDetection(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.otinstance")
	defer teardown()
	composite := []byte{
		0xff, 0xff, // numberOfContours -1
		0, 0, 0, 0, 0, 0, 0, 0, // bounding box
		0x00, 0x00, // component flags (truncated stand-in)
		0x00, 0x01,
	}
	table := buildGlyphTable(t, composite)
	if !table.IsComposite(0) {
		t.Error("composite glyph not detected")
	}
	if _, ok := table.BasePoints(0); ok {
		t.Error("composite glyph must not decode as simple outline")
	}
}

func TestGlyphRoundTrip(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.otinstance")
	defer teardown()
	table := buildGlyphTable(t, triangleGlyph())
	outline, ok := table.BasePoints(0)
	if !ok {
		t.Fatal("cannot decode glyph")
	}
	// shift the apex, as applied deltas would
	outline.Points[2].X += 300.4
	outline.Points[2].Y -= 20.6
	record, ok := table.Reserialize(0, outline)
	if !ok {
		t.Fatal("cannot re-serialize glyph")
	}
	reparsed, ok := parseSimpleGlyph(record, 1)
	if !ok {
		t.Fatal("re-serialized record does not parse")
	}
	want := []otvar.Point{
		{X: 10, Y: 20, OnCurve: true},
		{X: 110, Y: 20, OnCurve: true},
		{X: 360, Y: 79, OnCurve: true}, // rounded to font units
	}
	for i, p := range reparsed.Points {
		if p != want[i] {
			t.Errorf("point %d is %+v, expected %+v", i, p, want[i])
		}
	}
	if len(record)%2 != 0 {
		t.Error("glyf records must be 2-byte aligned")
	}
	// bounding box must track the moved apex
	xMax := int(int16(uint16(record[6])<<8 | uint16(record[7])))
	if xMax != 360 {
		t.Errorf("xMax is %d, expected 360", xMax)
	}
}

func TestLocaValidation(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.otinstance")
	defer teardown()
	if _, err := ParseGlyphTable([]byte{0}, []byte{0, 0}, false, 2); err == nil {
		t.Error("expected an error for a short loca")
	}
	// non-monotonic offsets
	loca := []byte{0x00, 0x02, 0x00, 0x01, 0x00, 0x02}
	if _, err := ParseGlyphTable(make([]byte, 8), loca, false, 2); err == nil {
		t.Error("expected an error for non-monotonic loca offsets")
	}
}
