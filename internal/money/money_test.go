package money

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCLP(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"0", "$0"},
		{"1000", "$1.000"},
		{"1234567", "$1.234.567"},
		{"999.5", "$1.000"},
		{"-2500", "-$2.500"},
		{"10000000000000000000", "$10000000000000000000"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CLP(decimal.RequireFromString(tt.in)), tt.in)
	}
}

func TestParse(t *testing.T) {
	valid := map[string]string{
		"1250":               "1250",
		" 1250.50 ":          "1250.5",
		"1250,5":             "1250.5",
		"-5":                 "-5",
		"0":                  "0",
		"999999999999":       "999999999999",
		"1234.5600000000001": "1234.5600000000001",
		"000000000001":       "1",
	}
	for in, want := range valid {
		d, err := Parse(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, d.String(), in)
	}

	for _, in := range []string{"", "abc", "NaN", "+3", "1e3", "1e999999999", "1E5", "1.000.000", "$900", "1000000000000", "1.2.3", "."} {
		_, err := Parse(in)
		assert.ErrorIs(t, err, ErrInvalidAmount, in)
	}
}
