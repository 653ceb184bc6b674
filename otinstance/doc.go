/*
Package otinstance generates static font instances from variable fonts.

Given a design-space location, an instance generator

  ▪︎ applies glyph deltas to TrueType outlines and re-serializes the glyf
    and loca tables,

  ▪︎ rebuilds hmtx and hhea with variation-adjusted metrics,

  ▪︎ degrades per-glyph or per-metric failures to the unvaried base value
    and reports them as warnings rather than aborting the instance.

A memoizing cache keyed by entity and design-space location avoids repeated
work when many instances share glyphs, and a batch generator distributes
instance generation over a worker pool while preserving submission order.

# Status

Work in progress. CFF2 charstrings pass through unvaried; blending them into
static Type 2 charstrings is not implemented yet.

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © Norbert Pillmayer <norbert@pillmayer.com>
*/
package otinstance

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'font.otinstance'.
func tracer() tracing.Trace {
	return tracing.Select("font.otinstance")
}
