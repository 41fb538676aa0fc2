package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestApplyDiscount(t *testing.T) {
	tests := []struct {
		name     string
		unit     float64
		discount float64
		want     float64
	}{
		{"zero discount is a no-op", 249.0, 0, 249.0},
		{"full discount zeroes the price", 249.0, 100, 0},
		{"half discount", 200.0, 50, 100.0},
		{"fractional discount", 100.0, 12.5, 87.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, ApplyDiscount(tt.unit, tt.discount), 1e-9)
		})
	}
}

func TestLineTotal(t *testing.T) {
	assert.InDelta(t, 300.0, LineTotal(200, 50, 3), 1e-9)
	assert.InDelta(t, 0.0, LineTotal(200, 100, 3), 1e-9)
}
