package common

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestFormatAmount_Abbreviation(t *testing.T) {
	cases := []struct {
		name   string
		amount string
		want   string
	}{
		{"small", "42.5", "42.50"},
		{"just below threshold", "9999.99", "9999.99"},
		{"threshold", "10000", "10k"},
		{"rounded thousands", "15750", "16k"},
		{"below a million", "999999", "1000k"},
		{"a million", "1000000", "1.0M"},
		{"millions", "2345678", "2.3M"},
		{"negative thousands", "-15750", "-16k"},
		{"negative millions", "-2345678", "-2.3M"},
		{"zero", "0", "0.00"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			amount, err := decimal.NewFromString(tc.amount)
			if err != nil {
				t.Fatalf("bad amount %q: %v", tc.amount, err)
			}
			if got := FormatAmount(amount, false); got != tc.want {
				t.Errorf("FormatAmount(%s) = %q, want %q", tc.amount, got, tc.want)
			}
		})
	}
}

func TestFormatAmount_ShowFullBypassesAbbreviation(t *testing.T) {
	amount := decimal.NewFromInt(2345678)
	if got := FormatAmount(amount, true); got != "2345678.00" {
		t.Errorf("FormatAmount full = %q, want 2345678.00", got)
	}
}
