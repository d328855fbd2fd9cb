package ml

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAggregateVectorsEmpty(t *testing.T) {
	out, err := AggregateVectors(nil, AggregateMean)
	require.NoError(t, err)
	assert.Empty(t, out)
	assert.True(t, IsZeroVector(out))
}

func TestAggregateVectorsSingle(t *testing.T) {
	// aggregating one vector is the identity for every method
	v := []float64{0.1, 0.0, 0.9}
	for _, method := range []AggregationMethod{AggregateMean, AggregateMax, AggregateSum} {
		out, err := AggregateVectors([][]float64{v}, method)
		require.NoError(t, err)
		assert.Equal(t, v, out, string(method))
	}
}

func TestAggregateVectorsMean(t *testing.T) {
	out, err := AggregateVectors([][]float64{
		{1, 0, 3},
		{3, 2, 1},
	}, AggregateMean)
	require.NoError(t, err)
	assert.Equal(t, []float64{2, 1, 2}, out)
}

func TestAggregateVectorsMax(t *testing.T) {
	out, err := AggregateVectors([][]float64{
		{1, 0, 3},
		{3, 2, 1},
	}, AggregateMax)
	require.NoError(t, err)
	assert.Equal(t, []float64{3, 2, 3}, out)
}

func TestAggregateVectorsSum(t *testing.T) {
	out, err := AggregateVectors([][]float64{
		{1, 0, 3},
		{3, 2, 1},
	}, AggregateSum)
	require.NoError(t, err)
	assert.Equal(t, []float64{4, 2, 4}, out)
}

func TestAggregateVectorsDimensionMismatch(t *testing.T) {
	_, err := AggregateVectors([][]float64{{1, 2}, {1, 2, 3}}, AggregateMean)
	assert.ErrorContains(t, err, "dimension mismatch")
}

func TestAggregateVectorsUnknownMethod(t *testing.T) {
	_, err := AggregateVectors([][]float64{{1}}, AggregationMethod("median"))
	assert.ErrorContains(t, err, "unknown aggregation method")
}

func TestNormalize(t *testing.T) {
	out := Normalize([]float64{3, 4})
	assert.InDelta(t, 0.6, out[0], 1e-12)
	assert.InDelta(t, 0.8, out[1], 1e-12)
}

func TestNormalizeZeroVector(t *testing.T) {
	v := []float64{0, 0, 0}
	assert.Equal(t, v, Normalize(v))
}

func TestIsZeroVector(t *testing.T) {
	assert.True(t, IsZeroVector(nil))
	assert.True(t, IsZeroVector([]float64{}))
	assert.True(t, IsZeroVector([]float64{0, 0}))
	assert.False(t, IsZeroVector([]float64{0, 1e-9}))
}
