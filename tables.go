package varfont

import (
	"fmt"
	"math"

	"github.com/npillmayer/varfont/otvar"
)

// Code comments occasionally cite the OpenType specification version 1.9;
// see https://docs.microsoft.com/en-us/typography/opentype/spec/.

// errFontFormat produces user level errors for font parsing.
func errFontFormat(message string) error {
	return fmt.Errorf("OpenType font format: %s", message)
}

func checkedAddUint32(a, b uint32) (uint32, error) {
	if a > math.MaxUint32-b {
		return 0, fmt.Errorf("integer overflow: %d + %d", a, b)
	}
	return a + b, nil
}

// parseTableDirectory decodes the SFNT offset table and table records,
// returning raw per-table byte views into font.
// "The Offset Table is followed immediately by the Table Record entries …
// sorted in ascending order by tag", 16 bytes each.
func parseTableDirectory(font []byte) (map[otvar.Tag][]byte, error) {
	if len(font) < 12 {
		return nil, errFontFormat("font header")
	}
	fontType := u32(font[0:4])
	if !(fontType == 0x4f54544f || // OTTO
		fontType == 0x00010000 || // TrueType
		fontType == 0x74727565) { // true
		return nil, errFontFormat(fmt.Sprintf("font type not supported: %x", fontType))
	}
	tableCount := int(u16(font[4:6]))
	recordsEnd := 12 + tableCount*16
	if tableCount > 512 || recordsEnd > len(font) {
		return nil, errFontFormat("table record entries")
	}
	tables := make(map[otvar.Tag][]byte, tableCount)
	prevTag := otvar.Tag(0)
	for i := 0; i < tableCount; i++ {
		rec := font[12+i*16 : 12+(i+1)*16]
		tag := otvar.MakeTag(rec)
		if tag < prevTag {
			return nil, errFontFormat("table order")
		}
		prevTag = tag
		off, size := u32(rec[8:12]), u32(rec[12:16])
		if off&3 != 0 { // "all tables must begin on four byte boundries"
			return nil, errFontFormat("invalid table offset")
		}
		tableEnd, err := checkedAddUint32(off, size)
		if err != nil {
			return nil, errFontFormat(fmt.Sprintf("table %s: size calculation overflow", tag))
		}
		if tableEnd > uint32(len(font)) {
			return nil, errFontFormat(fmt.Sprintf("table %s: bounds [%d:%d] exceed font size %d",
				tag, off, tableEnd, len(font)))
		}
		tables[tag] = font[off:tableEnd]
		tracer().Debugf("font table %s: %d bytes", tag, size)
	}
	return tables, nil
}

// Byte offsets of the handful of fixed header fields instancing needs.
const (
	maxpNumGlyphsOffset   = 4
	headLocaFormatOffset  = 50
	hheaNumHMetricsOffset = 34
)

// numGlyphs reads maxp.numGlyphs, 0 when maxp is absent or short.
func numGlyphs(tables map[otvar.Tag][]byte) int {
	maxp, ok := tables[otvar.T("maxp")]
	if !ok || len(maxp) < maxpNumGlyphsOffset+2 {
		return 0
	}
	return int(u16(maxp[maxpNumGlyphsOffset:]))
}

// longLocaFormat reads head.indexToLocFormat.
func longLocaFormat(tables map[otvar.Tag][]byte) bool {
	head, ok := tables[otvar.T("head")]
	return ok && len(head) >= headLocaFormatOffset+2 && u16(head[headLocaFormatOffset:]) == 1
}

// numberOfMetrics reads hhea.numberOfHMetrics or vhea.numOfLongVerMetrics;
// both headers keep the count in the same slot.
func numberOfMetrics(tables map[otvar.Tag][]byte, header otvar.Tag) int {
	hdr, ok := tables[header]
	if !ok || len(hdr) < hheaNumHMetricsOffset+2 {
		return 0
	}
	return int(u16(hdr[hheaNumHMetricsOffset:]))
}

func u16(b []byte) uint16 {
	_ = b[1]
	return uint16(b[0])<<8 | uint16(b[1])
}

func u32(b []byte) uint32 {
	_ = b[3]
	return uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])
}
