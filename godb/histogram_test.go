package godb

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHistogramConservesTotalCount(t *testing.T) {
	h := NewIntHistogram(10, 0, 99)
	for v := int32(0); v < 100; v++ {
		h.AddValue(v)
	}
	var sum int32
	for _, b := range h.buckets {
		sum += b
	}
	require.Equal(t, int32(100), sum)
	require.Equal(t, int32(100), h.total)
}

func TestHistogramIgnoresOutOfRangeValues(t *testing.T) {
	h := NewIntHistogram(10, 0, 9)
	h.AddValue(-5)
	h.AddValue(100)
	require.Equal(t, int32(0), h.total)
}

func TestHistogramSelectivityMonotoneByOperator(t *testing.T) {
	h := NewIntHistogram(10, 0, 99)
	for v := int32(0); v < 100; v++ {
		h.AddValue(v)
	}

	require.Greater(t, h.EstimateSelectivity(OpGt, int32(10)), h.EstimateSelectivity(OpGt, int32(90)))
	require.Greater(t, h.EstimateSelectivity(OpLt, int32(90)), h.EstimateSelectivity(OpLt, int32(10)))
	require.InDelta(t, 1.0, h.EstimateSelectivity(OpGe, int32(0))+h.EstimateSelectivity(OpLt, int32(0)), 0.05)
}

func TestHistogramSelectivityOutOfRangeClamps(t *testing.T) {
	h := NewIntHistogram(10, 0, 99)
	for v := int32(0); v < 100; v++ {
		h.AddValue(v)
	}

	require.Equal(t, 1.0, h.EstimateSelectivity(OpGt, int32(-1)))
	require.Equal(t, 0.0, h.EstimateSelectivity(OpEq, int32(-1)))
	require.Equal(t, 1.0, h.EstimateSelectivity(OpLt, int32(200)))
	require.Equal(t, 0.0, h.EstimateSelectivity(OpEq, int32(200)))
}
