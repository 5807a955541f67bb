package vector

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddRejectsWrongDimension(t *testing.T) {
	idx := NewIndex(3)

	assert.NoError(t, idx.Add([]float32{1, 0, 0}))
	assert.Error(t, idx.Add([]float32{1, 0}))
	assert.Equal(t, 1, idx.Len())
}

func TestSearchOrdersByDistance(t *testing.T) {
	idx := NewIndex(2)
	require.NoError(t, idx.Add([]float32{10, 10})) // far
	require.NoError(t, idx.Add([]float32{0, 1}))   // near
	require.NoError(t, idx.Add([]float32{3, 4}))   // middle

	matches, err := idx.Search([]float32{0, 0}, 3)
	require.NoError(t, err)
	require.Len(t, matches, 3)

	assert.Equal(t, 1, matches[0].Index)
	assert.Equal(t, 2, matches[1].Index)
	assert.Equal(t, 0, matches[2].Index)

	assert.InDelta(t, 1.0, matches[0].Distance, 1e-6)
	assert.InDelta(t, 25.0, matches[1].Distance, 1e-6)
	assert.InDelta(t, 200.0, matches[2].Distance, 1e-6)
}

func TestSearchCapsResultsAtK(t *testing.T) {
	idx := NewIndex(1)
	for i := 0; i < 5; i++ {
		require.NoError(t, idx.Add([]float32{float32(i)}))
	}

	matches, err := idx.Search([]float32{0}, 2)
	require.NoError(t, err)
	assert.Len(t, matches, 2)
	assert.Equal(t, 0, matches[0].Index)
	assert.Equal(t, 1, matches[1].Index)
}

func TestSearchRejectsWrongDimension(t *testing.T) {
	idx := NewIndex(2)
	require.NoError(t, idx.Add([]float32{1, 2}))

	_, err := idx.Search([]float32{1}, 1)
	assert.Error(t, err)
}
