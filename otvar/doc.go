/*
Package otvar gives access to the variation data of OpenType variable fonts.

A variable font carries one design space declaration (table `fvar`) plus a
number of delta-carrying tables: `gvar` for TrueType outlines, blend operands
inside `CFF2` charstrings, and item variation stores for metrics (`HVAR`,
`VVAR`, `MVAR`). Package otvar decodes these tables and implements the math
that turns a point in design space into concrete per-point and per-metric
deltas:

▪︎ axis value normalization (user units → [-1,1], including `avar` remapping)

▪︎ region ("tent function") scalars and tuple matching

▪︎ packed delta-stream decoding

▪︎ delta application to glyph outlines, including inference of untouched
points (IUP)

The package does not interpret outlines beyond what variation math requires,
and it never assembles SFNT binaries. Byte-level container I/O is left to
clients; the collaborator interfaces (OutlineProvider, VariationSource)
define the seam.

All table types in this package are read-only views into the font's binary
data. They are safe for concurrent use once constructed.

# Status

gvar, fvar, avar, HVAR, VVAR and MVAR are supported. `cvar` (CVT variations)
is recognized but not interpreted; the Validator reports it as unchecked.

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © Norbert Pillmayer <norbert@pillmayer.com>
*/
package otvar

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer writes to trace with key 'font.otvar'
func tracer() tracing.Trace {
	return tracing.Select("font.otvar")
}
