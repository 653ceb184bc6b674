// Package fontload locates and reads font files for tests and tools.
package fontload

import (
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/image/font/sfnt"
)

// FindTestFont resolves a font file name against the usual testdata
// locations: $VARFONT_TESTDATA if set, then testdata/ and ../testdata/
// relative to the working directory.
func FindTestFont(name string) (string, error) {
	dirs := []string{"testdata", filepath.Join("..", "testdata")}
	if env := os.Getenv("VARFONT_TESTDATA"); env != "" {
		dirs = append([]string{env}, dirs...)
	}
	for _, dir := range dirs {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}
	return "", fmt.Errorf("test font %s not found", name)
}

// ReadFontFile reads a font file and checks that it begins with a known
// SFNT magic number.
func ReadFontFile(path string) ([]byte, error) {
	bytez, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if len(bytez) < 4 {
		return nil, fmt.Errorf("%s is not a font file", path)
	}
	magic := uint32(bytez[0])<<24 | uint32(bytez[1])<<16 | uint32(bytez[2])<<8 | uint32(bytez[3])
	switch magic {
	case 0x00010000, 0x4f54544f, 0x74727565: // TrueType, OTTO, true
		return bytez, nil
	}
	return nil, fmt.Errorf("%s has unknown font magic %08x", path, magic)
}

// FullName extracts a font's full name via the sfnt package, empty when the
// font or its name table resists decoding.
func FullName(data []byte) string {
	f, err := sfnt.Parse(data)
	if err != nil {
		return ""
	}
	name, err := f.Name(nil, sfnt.NameIDFull)
	if err != nil {
		return ""
	}
	return name
}
