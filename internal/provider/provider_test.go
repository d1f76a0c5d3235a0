package provider_test

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/bitvera/priceoracle/internal/provider"
)

func TestToFloat(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		in   any
		want float64
	}{
		{"float", 42.5, 42.5},
		{"zero", 0.0, 0},
		{"negative", -3.25, -3.25},
		{"string", "43000.12", 43000.12},
		{"string with spaces", " 1.5 ", 1.5},
		{"garbage string", "not-a-number", 0},
		{"empty string", "", 0},
		{"nil", nil, 0},
		{"bool", true, 0},
		{"slice", []any{1.0}, 0},
		{"nan", math.NaN(), 0},
		{"inf", math.Inf(1), 0},
		{"inf string", "+Inf", 0},
		{"json number", json.Number("99.9"), 99.9},
		{"bad json number", json.Number("nope"), 0},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tc.want, provider.ToFloat(tc.in))
		})
	}
}
