package shape

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSortBlockConfigs_PrefersSmallestContainingBlock(t *testing.T) {
	blocks := AllBlockConfigs()
	// Output 4x4 is fully contained by every block in the set.
	sorted := SortBlockConfigs(blocks, 4, 4, false)
	assert.True(t, sorted[0].Width*sorted[0].Height <= sorted[len(sorted)-1].Width*sorted[len(sorted)-1].Height)
	assert.Equal(t, BlockConfig{Width: 8, Height: 8}, sorted[0])
}

func TestSortBlockConfigs_NonContainingPrefersWeightsWiderTieBreak(t *testing.T) {
	blocks := []BlockConfig{{Width: 32, Height: 8}, {Width: 8, Height: 32}}
	// Output larger than every block: neither contains it.
	sortedWide := SortBlockConfigs(blocks, 64, 64, true)
	assert.Equal(t, uint32(32), sortedWide[0].Width)

	sortedTall := SortBlockConfigs(blocks, 64, 64, false)
	assert.Equal(t, uint32(32), sortedTall[0].Height)
}

func TestPromoteBlockWidth_MovesMatchingWidthFirst(t *testing.T) {
	blocks := []BlockConfig{{Width: 16, Height: 16}, {Width: 8, Height: 8}, {Width: 8, Height: 32}}
	promoted := PromoteBlockWidth(blocks, 8)
	assert.Equal(t, uint32(8), promoted[0].Width)
	assert.Equal(t, uint32(8), promoted[1].Width)
	assert.Equal(t, uint32(16), promoted[2].Width)
}
