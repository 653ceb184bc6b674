package otinstance

import (
	"fmt"

	"github.com/npillmayer/varfont/otvar"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/text/encoding/unicode"
)

const (
	nameHeaderSize = 6
	nameRecordSize = 12
)

// NameTable is a decoded view over the OpenType 'name' table, restricted to
// the Unicode BMP and Windows BMP encodings.
type NameTable struct {
	names map[sfnt.NameID]string
}

// ParseNames decodes a 'name' table. Malformed or out-of-bounds records are
// skipped; Unicode BMP and Windows BMP records only, Windows winning when
// both exist for a name ID.
func ParseNames(data []byte) (*NameTable, error) {
	if len(data) < nameHeaderSize {
		return nil, otvar.InvalidVariationDataError{Table: otvar.T("name"), Section: "Header",
			Issue: "table too short"}
	}
	count := int(uint16(data[2])<<8 | uint16(data[3]))
	stringStorageOffset := int(uint16(data[4])<<8 | uint16(data[5]))
	if nameHeaderSize+count*nameRecordSize > len(data) {
		return nil, otvar.InvalidVariationDataError{Table: otvar.T("name"), Section: "Records",
			Issue: "record section out of bounds"}
	}
	t := &NameTable{names: make(map[sfnt.NameID]string)}
	for i := 0; i < count; i++ {
		rec := data[nameHeaderSize+i*nameRecordSize : nameHeaderSize+(i+1)*nameRecordSize]
		platform := uint16(rec[0])<<8 | uint16(rec[1])
		encoding := uint16(rec[2])<<8 | uint16(rec[3])
		nameID := sfnt.NameID(uint16(rec[6])<<8 | uint16(rec[7]))
		windows := platform == 3 && encoding == 1
		if !windows && !(platform == 0 && encoding == 3) {
			continue
		}
		strLen := int(uint16(rec[8])<<8 | uint16(rec[9]))
		recordOffset := int(uint16(rec[10])<<8 | uint16(rec[11]))
		start := stringStorageOffset + recordOffset
		if start+strLen > len(data) {
			continue
		}
		value, err := decodeNameUTF16(data[start : start+strLen])
		if err != nil || value == "" {
			continue
		}
		if _, have := t.names[nameID]; !have || windows {
			t.names[nameID] = value
		}
	}
	return t, nil
}

// Name returns the decoded string for a name ID.
func (t *NameTable) Name(id sfnt.NameID) (string, bool) {
	if t == nil {
		return "", false
	}
	s, ok := t.names[id]
	return s, ok
}

// InstanceName resolves the subfamily name of a named instance, falling back
// to a synthesized "Instance <n>" when the name table has no entry.
func (t *NameTable) InstanceName(inst otvar.NamedInstance) string {
	if s, ok := t.Name(sfnt.NameID(inst.SubfamilyNameID)); ok {
		return s
	}
	return fmt.Sprintf("Instance %d", inst.Index)
}

// PostScriptName resolves the PostScript name of a named instance; empty
// when the instance carries none.
func (t *NameTable) PostScriptName(inst otvar.NamedInstance) string {
	if inst.PostScriptNameID == 0 || inst.PostScriptNameID == 0xffff {
		return ""
	}
	s, _ := t.Name(sfnt.NameID(inst.PostScriptNameID))
	return s
}

func decodeNameUTF16(str []byte) (string, error) {
	decoder := unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM).NewDecoder()
	s, err := decoder.Bytes(str)
	if err != nil {
		return "", fmt.Errorf("decoding UTF-16 error: %v", err)
	}
	return string(s), nil
}
