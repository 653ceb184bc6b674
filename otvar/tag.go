package otvar

// GlyphIndex is a glyph index in a font.
type GlyphIndex uint16

// Tag is defined by the OpenType spec as:
// Array of four uint8s (length = 32 bits) used to identify a table, design-variation axis,
// script, language system, feature, or baseline
type Tag uint32

// MakeTag creates a Tag from 4 bytes, e.g.,
//
//	MakeTag([]byte("gvar"))
//
// If b is shorter or longer, it will be silently extended or cut as appropriate.
func MakeTag(b []byte) Tag {
	if b == nil {
		b = []byte{0, 0, 0, 0}
	} else if len(b) > 4 {
		b = b[:4]
	} else if len(b) < 4 {
		b = append([]byte{0, 0, 0, 0}[:4-len(b)], b...)
	}
	return Tag(u32(b))
}

// T returns a Tag from a (4-letter) string.
// If t is shorter or longer, it will be silently extended or cut as appropriate.
func T(t string) Tag {
	t = (t + "    ")[:4]
	return Tag(u32([]byte(t)))
}

func (t Tag) String() string {
	bytes := []byte{
		byte(t >> 24 & 0xff),
		byte(t >> 16 & 0xff),
		byte(t >> 8 & 0xff),
		byte(t & 0xff),
	}
	return string(bytes)
}

// Tags of the variation-bearing tables handled by this package.
var (
	TagFvar = T("fvar")
	TagAvar = T("avar")
	TagGvar = T("gvar")
	TagCvar = T("cvar")
	TagHvar = T("HVAR")
	TagVvar = T("VVAR")
	TagMvar = T("MVAR")
	TagCFF2 = T("CFF2")
	TagStat = T("STAT")
)

// Registered variation axis tags.
var (
	TagAxisWeight      = T("wght")
	TagAxisWidth       = T("wdth")
	TagAxisSlant       = T("slnt")
	TagAxisItalic      = T("ital")
	TagAxisOpticalSize = T("opsz")
)

// MVAR value tags for font-wide metrics (subset; see OpenType spec chapter
// "MVAR — Metrics Variations Table" for the full registry).
var (
	TagMetricAscender  = T("hasc")
	TagMetricDescender = T("hdsc")
	TagMetricLineGap   = T("hlgp")
	TagMetricVAscender = T("vasc")
	TagMetricVDescend  = T("vdsc")
	TagMetricVLineGap  = T("vlgp")
	TagMetricXHeight   = T("xhgt")
	TagMetricCapHeight = T("cpht")
	TagMetricUndlOfs   = T("undo")
	TagMetricUndlSize  = T("unds")
	TagMetricStrkOfs   = T("stro")
	TagMetricStrkSize  = T("strs")
)
