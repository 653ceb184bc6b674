/*
Package varfont handles OpenType font variations.

There is a certain confusion with the nomenclature of typesetting. We will
stick to the following definitions:

▪︎ A "variable font" carries a whole design space of related designs in one
file, spanned by axes like weight and width (fvar table).

▪︎ An "instance" is one static design picked from that space, either a named
instance the designer ships in fvar, or an arbitrary design-space location.

▪︎ "Instancing" is baking such a location into a static font: glyph deltas
applied, metrics adjusted, variation tables gone.

This root package decodes a font's table directory and wires the variation
subsystems together:

▪︎ otvar decodes and evaluates the variation tables (fvar, avar, gvar, HVAR,
VVAR, MVAR) and applies glyph deltas,

▪︎ otcff handles CFF2 blending and size optimization,

▪︎ otinstance generates static instances, sequentially or in batches.

# Status

Work in progress. Font collections (*.ttc) are not supported, and cvar
(hinting variation) data is ignored.

# Links

OpenType font variations overview:
https://docs.microsoft.com/en-us/typography/opentype/spec/otvaroverview

______________________________________________________________________

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © Norbert Pillmayer <norbert@pillmayer.com>
*/
package varfont

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer writes to trace with key 'font.varfont'
func tracer() tracing.Trace {
	return tracing.Select("font.varfont")
}
