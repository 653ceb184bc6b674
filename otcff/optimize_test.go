package otcff

import (
	"bytes"
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/npillmayer/varfont/otvar"
)

func TestMergeRegions(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.otcff")
	defer teardown()
	store := &otvar.ItemVariationStore{
		Regions: []otvar.Region{
			{otvar.TagAxisWeight: {Start: 0, Peak: 1, End: 1}},
			{otvar.TagAxisWidth: {Start: -1, Peak: -1, End: 0}},
			{otvar.TagAxisWeight: {Start: 0, Peak: 1.0001, End: 1}}, // same as region 0
		},
		Data: []otvar.ItemVariationData{{
			RegionIndexes: []uint16{0, 1, 2},
			Deltas:        [][]int32{{10, 20, 30}},
		}},
	}
	mergeRegions(store, 0.001)
	if len(store.Regions) != 2 {
		t.Fatalf("expected 2 regions after merging, got %d", len(store.Regions))
	}
	want := []uint16{0, 1, 0}
	for i, ri := range store.Data[0].RegionIndexes {
		if ri != want[i] {
			t.Errorf("region index %d rewritten to %d, expected %d", i, ri, want[i])
		}
	}
}

func TestMergeRegionsKeepsDistinct(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.otcff")
	defer teardown()
	store := testStore()
	mergeRegions(store, 0.001)
	if len(store.Regions) != 2 {
		t.Errorf("distinct regions must survive, got %d", len(store.Regions))
	}
}

func TestExtractBlendSubrs(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.otcff")
	defer teardown()
	// a 10-byte blend segment repeated in three glyphs
	blendSeg := []byte{140, 141, 142, 143, 144, 145, 146, 147, 140, csBlend}
	tail := []byte{139, 1}
	cs := func() []byte {
		return append(append([]byte{}, blendSeg...), tail...)
	}
	f := &Font{Charstrings: [][]byte{cs(), cs(), cs()}}
	report, err := Optimize(f, DefaultOptimizerOptions())
	if err != nil {
		t.Fatalf("optimizer failed: %v", err)
	}
	if report.SubroutinesAdded != 1 {
		t.Fatalf("expected 1 subroutine, got %d", report.SubroutinesAdded)
	}
	if !bytes.Equal(f.LocalSubrs[0], blendSeg) {
		t.Errorf("subroutine body is % x", f.LocalSubrs[0])
	}
	// subr 0 encodes as 0-bias(1)=-107, one byte, then callsubr
	wantCS := append(append([]byte{}, encodeCSInt(-107)...), csCallsubr)
	wantCS = append(wantCS, tail...)
	for g, c := range f.Charstrings {
		if !bytes.Equal(c, wantCS) {
			t.Errorf("charstring %d not rewritten, got % x", g, c)
		}
	}
	if report.EstimatedSizeTo >= report.EstimatedSizeFrom {
		t.Errorf("expected a size win, %d -> %d",
			report.EstimatedSizeFrom, report.EstimatedSizeTo)
	}
}

func TestExtractBlendSubrsSkipsRare(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.otcff")
	defer teardown()
	// segment appears once; extraction would grow the font
	f := &Font{Charstrings: [][]byte{
		{140, 141, 142, csBlend, 139, 1},
		{150, 151, 1},
	}}
	before := append([]byte{}, f.Charstrings[0]...)
	report, err := Optimize(f, DefaultOptimizerOptions())
	if err != nil {
		t.Fatalf("optimizer failed: %v", err)
	}
	if report.SubroutinesAdded != 0 {
		t.Errorf("expected no subroutines, got %d", report.SubroutinesAdded)
	}
	if !bytes.Equal(f.Charstrings[0], before) {
		t.Error("charstring was rewritten without a size win")
	}
}

func TestOptimizeReportsRegions(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.otcff")
	defer teardown()
	f := &Font{VarStore: testStore()}
	report, err := Optimize(f, DefaultOptimizerOptions())
	if err != nil {
		t.Fatalf("optimizer failed: %v", err)
	}
	if report.RegionsBefore != 2 || report.RegionsAfter != 2 {
		t.Errorf("region counts wrong: %d -> %d", report.RegionsBefore, report.RegionsAfter)
	}
}

func TestSplitSegments(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.otcff")
	defer teardown()
	segs, ok := splitSegments([]byte{140, 141, csBlend, 139, csCallsubr, 28, 1, 0, 1})
	if !ok {
		t.Fatal("tokenizer rejected a valid charstring")
	}
	if len(segs) != 3 {
		t.Fatalf("expected 3 segments, got %d", len(segs))
	}
	if !segs[0].hasBlend || segs[0].hasCall {
		t.Error("segment 0 should be blend-only")
	}
	if segs[1].hasBlend || !segs[1].hasCall {
		t.Error("segment 1 should be call-only")
	}
	if _, ok := splitSegments([]byte{28, 1}); ok {
		t.Error("expected truncated shortint to be rejected")
	}
}
