/*
Package otcff handles the variation side of CFF2 font programs: locating the
charstrings and the item variation store inside a CFF2 table, evaluating the
charstring `blend` operator against a design-space point, and optimizing
blend-heavy charstring sets (region deduplication and blend-subroutine
extraction).

It deliberately does not interpret path construction operators; clients who
rasterize CFF2 outlines combine this package's Blender with their own
charstring interpreter.

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © Norbert Pillmayer <norbert@pillmayer.com>
*/
package otcff

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer writes to trace with key 'font.otcff'
func tracer() tracing.Trace {
	return tracing.Select("font.otcff")
}
