package ml

import (
	"fmt"
	"math"
)

// AggregationMethod selects how multiple skill vectors are reduced to one
// vector per user. Mean is the default used for matching.
type AggregationMethod string

const (
	AggregateMean AggregationMethod = "mean"
	AggregateMax  AggregationMethod = "max"
	AggregateSum  AggregationMethod = "sum"
)

// AggregateVectors reduces a list of equal-length vectors to a single
// vector. An empty input returns the zero-length vector (the "nothing
// specified" sentinel), not an error.
func AggregateVectors(vectors [][]float64, method AggregationMethod) ([]float64, error) {
	if len(vectors) == 0 {
		return []float64{}, nil
	}

	dim := len(vectors[0])
	for _, v := range vectors[1:] {
		if len(v) != dim {
			return nil, fmt.Errorf("vector dimension mismatch: %d vs %d", len(v), dim)
		}
	}

	out := make([]float64, dim)
	switch method {
	case AggregateMean:
		for _, v := range vectors {
			for i, x := range v {
				out[i] += x
			}
		}
		n := float64(len(vectors))
		for i := range out {
			out[i] /= n
		}
	case AggregateMax:
		copy(out, vectors[0])
		for _, v := range vectors[1:] {
			for i, x := range v {
				if x > out[i] {
					out[i] = x
				}
			}
		}
	case AggregateSum:
		for _, v := range vectors {
			for i, x := range v {
				out[i] += x
			}
		}
	default:
		return nil, fmt.Errorf("unknown aggregation method: %q", method)
	}
	return out, nil
}

// Normalize scales a vector to unit length. The zero vector is returned
// unchanged.
func Normalize(v []float64) []float64 {
	var sum float64
	for _, x := range v {
		sum += x * x
	}
	if sum == 0 {
		return v
	}
	n := math.Sqrt(sum)
	out := make([]float64, len(v))
	for i, x := range v {
		out[i] = x / n
	}
	return out
}

// IsZeroVector reports whether every component is zero (including the
// zero-length vector).
func IsZeroVector(v []float64) bool {
	for _, x := range v {
		if x != 0 {
			return false
		}
	}
	return true
}
