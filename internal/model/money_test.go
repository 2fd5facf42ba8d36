package model

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestFormatMoney(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "0", want: "$0.00"},
		{in: "5.5", want: "$5.50"},
		{in: "999.999", want: "$1,000.00"},
		{in: "1575", want: "$1,575.00"},
		{in: "1234567.891", want: "$1,234,567.89"},
		{in: "-800", want: "-$800.00"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatMoney(decimal.RequireFromString(tt.in)))
		})
	}
}
