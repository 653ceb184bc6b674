package varfont

import (
	"os"

	"github.com/npillmayer/varfont/otvar"
	"golang.org/x/image/font/sfnt"
)

// ScalableFont is an internal representation of an outline-font of type
// TTF or OTF, with its variation subsystem decoded when the font is
// variable.
type ScalableFont struct {
	Fontname   string
	Filepath   string     // file path
	Binary     []byte     // raw data
	SFNT       *sfnt.Font // the font's container
	Tables     map[otvar.Tag][]byte
	Variations *Variations // nil for static fonts
}

// LoadVariableFont loads an OpenType font (TTF or OTF) from a file.
// Static fonts load fine too; their Variations field stays nil.
func LoadVariableFont(fontfile string) (*ScalableFont, error) {
	bytez, err := os.ReadFile(fontfile)
	if err != nil {
		return nil, err
	}
	f, err := ParseVariableFont(bytez)
	if err != nil {
		return nil, err
	}
	f.Filepath = fontfile
	return f, nil
}

// ParseVariableFont parses an OpenType font (TTF or OTF) from memory.
// The input must not change after parsing for the font to be usable.
func ParseVariableFont(fbytes []byte) (f *ScalableFont, err error) {
	f = &ScalableFont{Binary: fbytes}
	if f.Tables, err = parseTableDirectory(fbytes); err != nil {
		return nil, err
	}
	if sf, serr := sfnt.Parse(f.Binary); serr == nil {
		f.SFNT = sf
		if name, nerr := sf.Name(nil, sfnt.NameIDFull); nerr == nil {
			f.Fontname = name
			tracer().Debugf("loaded and parsed SFNT %s", f.Fontname)
		}
	} else {
		// variation decoding does not depend on the x/image view
		tracer().Infof("font not parseable by sfnt package: %v", serr)
	}
	f.Variations, err = decodeVariations(f.Tables)
	return f, err
}

// IsVariable reports whether the font carries variation axes.
func (f *ScalableFont) IsVariable() bool {
	return f.Variations != nil && len(f.Variations.Axes) > 0
}

// Table returns the raw bytes of a table, nil when absent.
func (f *ScalableFont) Table(tag otvar.Tag) []byte {
	return f.Tables[tag]
}
