package otcff

import (
	"sort"

	"github.com/npillmayer/varfont/otvar"
)

// OptimizerOptions tunes the CFF2 size optimizer.
type OptimizerOptions struct {
	RegionMergeThreshold float64 // per-coordinate tolerance for merging regions
	MaxSubroutines       int     // total local subr count cap
}

// DefaultOptimizerOptions are the settings used by the CLI.
func DefaultOptimizerOptions() OptimizerOptions {
	return OptimizerOptions{
		RegionMergeThreshold: 0.001,
		MaxSubroutines:       65535,
	}
}

// OptimizerReport summarizes what an optimizer run changed. Sizes are
// estimates over charstring and region-list bytes, not full table sizes.
type OptimizerReport struct {
	RegionsBefore     int
	RegionsAfter      int
	SubroutinesAdded  int
	EstimatedSizeFrom int
	EstimatedSizeTo   int
}

// Optimize shrinks a CFF2 font in place. Two passes: near-identical variation
// regions are merged (delta-set references rewritten to the survivor), then
// repeated blend sequences in charstrings are hoisted into local subroutines.
func Optimize(f *Font, opts OptimizerOptions) (*OptimizerReport, error) {
	if f == nil {
		return nil, otvar.InvalidVariationDataError{Table: otvar.TagCFF2, Section: "Optimizer",
			Issue: "no font to optimize"}
	}
	report := &OptimizerReport{
		EstimatedSizeFrom: f.estimateSize(),
	}
	if f.VarStore != nil {
		report.RegionsBefore = len(f.VarStore.Regions)
		mergeRegions(f.VarStore, opts.RegionMergeThreshold)
		report.RegionsAfter = len(f.VarStore.Regions)
		tracer().Infof("CFF2 optimizer: %d regions merged into %d",
			report.RegionsBefore, report.RegionsAfter)
	}
	report.SubroutinesAdded = extractBlendSubrs(f, opts.MaxSubroutines)
	report.EstimatedSizeTo = f.estimateSize()
	return report, nil
}

func (f *Font) estimateSize() int {
	size := 0
	for _, cs := range f.Charstrings {
		size += len(cs)
	}
	for _, s := range f.LocalSubrs {
		size += len(s)
	}
	if f.VarStore != nil {
		for _, r := range f.VarStore.Regions {
			size += len(r) * 6 // start/peak/end as F2DOT14
		}
	}
	return size
}

// --- Region merging ---------------------------------------------------------

// mergeRegions collapses regions that agree within threshold on every
// coordinate, keeping the first of each group and rewriting every delta-set
// reference to it.
func mergeRegions(store *otvar.ItemVariationStore, threshold float64) {
	remap := make([]uint16, len(store.Regions))
	var kept []otvar.Region
	for i, r := range store.Regions {
		merged := false
		for j, k := range kept {
			if r.Equalish(k, threshold) {
				remap[i] = uint16(j)
				merged = true
				break
			}
		}
		if !merged {
			remap[i] = uint16(len(kept))
			kept = append(kept, r)
		}
	}
	if len(kept) == len(store.Regions) {
		return
	}
	store.Regions = kept
	for d := range store.Data {
		indexes := store.Data[d].RegionIndexes
		for i, ri := range indexes {
			if int(ri) < len(remap) {
				indexes[i] = remap[ri]
			}
		}
	}
}

// --- Blend subroutine extraction --------------------------------------------

// segment is one operand run plus its terminating operator inside a
// charstring, as raw bytes.
type segment struct {
	data     string // raw bytes, string for map keys
	hasBlend bool
	hasCall  bool
}

// extractBlendSubrs finds blend-carrying charstring segments that repeat
// across glyphs and moves the most profitable ones into local subroutines.
// Candidates are ranked by frequency times size; the cap limits the total
// local subr count. Returns the number of subroutines added.
func extractBlendSubrs(f *Font, maxSubrs int) int {
	counts := make(map[string]int)
	perGlyph := make([][]segment, len(f.Charstrings))
	for g, cs := range f.Charstrings {
		segs, ok := splitSegments(cs)
		if !ok {
			tracer().Infof("CFF2 optimizer: charstring %d not tokenizable, skipped", g)
			continue
		}
		perGlyph[g] = segs
		for _, s := range segs {
			if s.hasBlend && !s.hasCall {
				counts[s.data]++
			}
		}
	}

	type candidate struct {
		data    string
		savings int
	}
	var candidates []candidate
	for data, freq := range counts {
		if freq < 2 {
			continue
		}
		// call site costs at most 3 bytes operand plus the callsubr byte
		saved := freq*(len(data)-4) - len(data)
		if saved > 0 {
			candidates = append(candidates, candidate{data: data, savings: saved})
		}
	}
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].savings != candidates[j].savings {
			return candidates[i].savings > candidates[j].savings
		}
		return candidates[i].data < candidates[j].data // deterministic order
	})
	budget := maxSubrs - len(f.LocalSubrs)
	if budget < 0 {
		budget = 0
	}
	// existing call sites encode against the current bias, so the subr
	// count must stay within the same bias band
	if n := len(f.LocalSubrs); n > 0 {
		switch {
		case n < 1240 && budget > 1240-n:
			budget = 1240 - n
		case n < 33900 && budget > 33900-n:
			budget = 33900 - n
		}
	}
	if len(candidates) > budget {
		candidates = candidates[:budget]
	}
	if len(candidates) == 0 {
		return 0
	}

	subrIndex := make(map[string]int, len(candidates))
	for _, c := range candidates {
		subrIndex[c.data] = len(f.LocalSubrs)
		f.LocalSubrs = append(f.LocalSubrs, []byte(c.data))
	}
	bias := calcSubrBias(len(f.LocalSubrs))
	for g, segs := range perGlyph {
		if segs == nil {
			continue
		}
		var rewritten []byte
		changed := false
		for _, s := range segs {
			if idx, ok := subrIndex[s.data]; ok {
				rewritten = append(rewritten, encodeCSInt(idx-bias)...)
				rewritten = append(rewritten, csCallsubr)
				changed = true
			} else {
				rewritten = append(rewritten, s.data...)
			}
		}
		if changed {
			f.Charstrings[g] = rewritten
		}
	}
	return len(candidates)
}

// splitSegments tokenizes a charstring into operand runs with their
// operators. Unknown or truncated encodings abort the split; the charstring
// is then left untouched.
func splitSegments(cs []byte) ([]segment, bool) {
	var segs []segment
	start := 0
	var blend, call bool
	flush := func(end int) {
		segs = append(segs, segment{data: string(cs[start:end]), hasBlend: blend, hasCall: call})
		start, blend, call = end, false, false
	}
	i := 0
	for i < len(cs) {
		b0 := int(cs[i])
		switch {
		case b0 >= 32 && b0 <= 246:
			i++
		case b0 >= 247 && b0 <= 254:
			i += 2
		case b0 == csShortint:
			i += 3
		case b0 == 255: // 16.16 fixed
			i += 5
		case b0 == csEscape:
			i += 2
			flush(i)
		default: // one-byte operator
			i++
			if b0 == csBlend {
				blend = true
			}
			if b0 == csCallsubr || b0 == csCallgsubr {
				call = true
			}
			flush(i)
		}
		if i > len(cs) {
			return nil, false
		}
	}
	if start < len(cs) { // trailing operands without operator
		flush(len(cs))
	}
	return segs, true
}
