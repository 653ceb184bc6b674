package main

import (
	"strings"

	"github.com/pterm/pterm"
)

func helpOp(intp *Intp, op *Op) (error, bool) {
	help(op.arg)
	return nil, false
}

func help(topic string) {
	tracer().Infof("help %v", topic)
	t := strings.ToLower(topic)
	switch t {
	case "axes", "axis":
		pterm.Info.Println("axes")
		pterm.Println(`
	Lists the variation axes of the loaded font (table fvar):
	tag, user-space minimum, default and maximum, and the hidden flag.
	Axis tags are 4 letters, e.g. wght (weight) or wdth (width).
	`)
	case "coords", "coordinates", "normalize":
		pterm.Info.Println("normalize")
		pterm.Println(`
	Coordinates are written as comma-separated tag=value pairs:

	    normalize:wght=700,wdth=87.5

	Values are user-space (e.g. weight 100..900). 'normalize' prints the
	normalized design-space coordinates (-1..+1), with the avar mapping
	applied when the font has one. Out-of-range values are clamped, axes
	not mentioned sit at their default.
	`)
	case "instance", "instances", "generate":
		pterm.Info.Println("instance / generate")
		pterm.Println(`
	'instances' lists the named instances the font ships in fvar.

	    instance:2

	generates the named instance with index 2.

	    generate:wght=650

	generates a static instance at an arbitrary design-space location.
	Both print the rebuilt tables and any degradation warnings.
	`)
	case "batch":
		pterm.Info.Println("batch")
		pterm.Println(`
	Generates several instances over a worker pool:

	    batch:wght=100;wght=400;wght=700

	Locations are separated by semicolons. Failures are isolated per
	instance and reported at the end.
	`)
	case "validate":
		pterm.Info.Println("validate")
		pterm.Println(`
	Checks the font's variation data for structural consistency: axis
	ranges, instance coordinates, gvar glyph counts, metric stores.
	Errors make the font unusable for instancing, warnings do not.
	`)
	case "optimize":
		pterm.Info.Println("optimize")
		pterm.Println(`
	Shrinks a CFF2 font program: merges near-identical variation regions
	and extracts repeated blend sequences into subroutines. Prints
	before/after estimates. TrueType-flavored fonts are not supported.
	`)
	default:
		pterm.Info.Println("Commands")
		pterm.Println(`
	tables                lists the font's tables
	axes                  lists variation axes
	instances             lists named instances
	normalize:<coords>    maps user coordinates to design space
	instance:<index>      generates a named instance
	generate:<coords>     generates an instance at a location
	batch:<loc;loc;...>   generates several instances in parallel
	validate              checks variation data consistency
	optimize              optimizes a CFF2 font program
	help:<command>        details for one command
	quit                  exits (also <ctrl>D)
	`)
	}
}
