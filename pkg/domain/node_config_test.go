package domain

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMillisToDuration(t *testing.T) {
	tests := []struct {
		name     string
		ms       float64
		expected time.Duration
	}{
		{"zero", 0, 0},
		{"negative", -5, 0},
		{"nan", math.NaN(), 0},
		{"fractional", 1.5, 1500 * time.Microsecond},
		{"one hour", 3600000, time.Hour},
		{"saturates", 1e300, time.Duration(math.MaxInt64)},
		{"positive infinity", math.Inf(1), time.Duration(math.MaxInt64)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, MillisToDuration(tt.ms))
		})
	}
}

func TestNode_Timeout(t *testing.T) {
	timeout, ok := Node{Data: map[string]any{"timeout": 250}}.Timeout()
	assert.True(t, ok)
	assert.Equal(t, 250*time.Millisecond, timeout)

	timeout, ok = Node{Data: map[string]any{"timeout": 1e300}}.Timeout()
	assert.True(t, ok)
	assert.Equal(t, time.Duration(math.MaxInt64), timeout)

	_, ok = Node{Data: map[string]any{"timeout": math.NaN()}}.Timeout()
	assert.False(t, ok)

	_, ok = Node{Data: map[string]any{}}.Timeout()
	assert.False(t, ok)
}
