package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWeightedAverage(t *testing.T) {
	assert.Equal(t, 0.0, WeightedAverage(nil, nil))
	assert.Equal(t, 5.5, WeightedAverage([]float64{5.0, 6.0}, nil))
	// 4*30 + 7*70 = 610 / 100
	assert.Equal(t, 6.1, WeightedAverage([]float64{4.0, 7.0}, []float64{30, 70}))
	assert.Equal(t, 5.0, WeightedAverage([]float64{4.0, 6.0}, []float64{0, 0}))
}
