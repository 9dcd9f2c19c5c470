package shape

import "sort"

// BlockConfig is one MCE hardware tile size for a single accumulator-array
// evaluation. The MCE only supports this fixed set of shapes.
type BlockConfig struct {
	Width, Height uint32
}

// AllBlockConfigs is the full hardware-supported set. Its order is the
// tie order SortBlockConfigs preserves; most strategies sort the list
// before trying blocks (see SortBlockConfigs).
func AllBlockConfigs() []BlockConfig {
	return []BlockConfig{
		{Width: 16, Height: 16},
		{Width: 32, Height: 8},
		{Width: 8, Height: 32},
		{Width: 16, Height: 8},
		{Width: 8, Height: 16},
		{Width: 8, Height: 8},
	}
}

func containsOutput(b BlockConfig, outH, outW uint32) bool {
	return b.Height >= outH && b.Width >= outW
}

// SortBlockConfigs orders blocks "most efficient first" for an output of
// shape (outH,outW), tie-broken by whether weights are wider than tall.
// This is a direct port of the original's
// SortBlockConfigsBasedOnShapeRemainder comparator: a stable sort so that
// ties preserve AllBlockConfigs' declaration order, matching
// std::stable_sort in the source.
func SortBlockConfigs(blocks []BlockConfig, outH, outW uint32, weightsWiderThanTall bool) []BlockConfig {
	out := make([]BlockConfig, len(blocks))
	copy(out, blocks)
	less := func(a, b BlockConfig) bool {
		aContains := containsOutput(a, outH, outW)
		bContains := containsOutput(b, outH, outW)
		if aContains && bContains {
			// Both fully contain the output: smaller block area wins.
			return a.Width*a.Height < b.Width*b.Height
		}
		if !aContains && !bContains {
			aRem := (outH % a.Height) + (outW % a.Width)
			bRem := (outH % b.Height) + (outW % b.Width)
			if aRem != bRem {
				return aRem > bRem
			}
			if weightsWiderThanTall {
				if a.Width != b.Width {
					return a.Width > b.Width
				}
				return a.Height > b.Height
			}
			if a.Height != b.Height {
				return a.Height > b.Height
			}
			return a.Width > b.Width
		}
		// Exactly one contains the output: that one wins.
		return aContains
	}
	sort.SliceStable(out, func(i, j int) bool { return less(out[i], out[j]) })
	return out
}

// PromoteBlockWidth stable-re-sorts blocks so any whose width equals want
// is moved ahead of the rest, preserving relative order otherwise. Used by
// Strategy4, which fixes its MCE-output stripe width up front and prefers
// blocks that exactly match it.
func PromoteBlockWidth(blocks []BlockConfig, want uint32) []BlockConfig {
	out := make([]BlockConfig, len(blocks))
	copy(out, blocks)
	sort.SliceStable(out, func(i, j int) bool {
		iw := out[i].Width == want
		jw := out[j].Width == want
		if iw == jw {
			return false
		}
		return iw
	})
	return out
}
