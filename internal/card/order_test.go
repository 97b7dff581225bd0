package card

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func printing(id int, url string) Printing {
	return Printing{Name: "Lightning Bolt", MultiverseID: id, ImageURL: url}
}

func TestSortNewestFirst(t *testing.T) {
	in := []Printing{
		printing(209, "http://img/209"),
		printing(0, "http://img/none"),
		printing(442130, "http://img/442130"),
		printing(191089, ""),
		printing(191089, "http://img/191089"),
	}

	got := SortNewestFirst(in)

	require.Len(t, got, 3)
	assert.Equal(t, 442130, got[0].MultiverseID)
	assert.Equal(t, 191089, got[1].MultiverseID)
	assert.Equal(t, 209, got[2].MultiverseID)
	assert.Equal(t, 209, in[0].MultiverseID, "input must not be reordered")
}

func TestNewestOldest(t *testing.T) {
	in := []Printing{printing(5, "a"), printing(9, "b"), printing(1, "c")}

	newest, ok := Newest(in)
	require.True(t, ok)
	assert.Equal(t, 9, newest.MultiverseID)

	oldest, ok := Oldest(in)
	require.True(t, ok)
	assert.Equal(t, 1, oldest.MultiverseID)

	p, ok := Select(in, PolicyOldest)
	require.True(t, ok)
	assert.Equal(t, oldest, p)

	p, ok = Select(in, PolicyNewest)
	require.True(t, ok)
	assert.Equal(t, newest, p)
}

func TestSelect_NoImage(t *testing.T) {
	_, ok := Select([]Printing{printing(0, "x"), printing(3, "")}, PolicyNewest)
	assert.False(t, ok)

	_, ok = Select(nil, PolicyOldest)
	assert.False(t, ok)
}

func TestParsePolicy(t *testing.T) {
	p, err := ParsePolicy("")
	require.NoError(t, err)
	assert.Equal(t, PolicyNewest, p)

	p, err = ParsePolicy("oldest")
	require.NoError(t, err)
	assert.Equal(t, PolicyOldest, p)

	_, err = ParsePolicy("random")
	assert.Error(t, err)
}

func TestPrintingKey(t *testing.T) {
	assert.Equal(t, "386616", printing(386616, "x").Key())
	assert.Empty(t, printing(0, "x").Key())
	assert.False(t, printing(0, "x").HasImage())
	assert.True(t, printing(1, "x").HasImage())
}
