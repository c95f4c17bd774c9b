package core

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in  string
		out string
		ok  bool
	}{
		{"1", "1", true},
		{"1250.00", "1250", true},
		{"800,50", "800.5", true},
		{"12.345", "12.35", true},
		{" 2.50 ", "2.5", true},
		{"-1", "", false},
		{"0", "", false},
		{"abc", "", false},
		{"1.2.3", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		got, err := ParseAmount(tc.in)
		if tc.ok {
			if err != nil || !got.Equal(decimal.RequireFromString(tc.out)) {
				t.Fatalf("%q expected %s, got %s (err=%v)", tc.in, tc.out, got, err)
			}
		} else if err == nil {
			t.Fatalf("%q expected error", tc.in)
		}
	}
}

func TestFormatMoney(t *testing.T) {
	cases := []struct {
		amount string
		code   string
		want   string
	}{
		{"1250.00", "USD", "$1,250.00"},
		{"15750.5", "USD", "$15,750.50"},
		{"8900.25", "EUR", "€8,900.25"},
		{"800.5", "GBP", "£800.50"},
		{"2100.75", "JPY", "¥2,101"},
		{"12.3", "CHF", "CHF 12.30"},
		{"-5", "USD", "-$5.00"},
		{"0", "USD", "$0.00"},
	}
	for _, tc := range cases {
		got := FormatMoney(decimal.RequireFromString(tc.amount), tc.code)
		if got != tc.want {
			t.Errorf("FormatMoney(%s, %s) = %q, want %q", tc.amount, tc.code, got, tc.want)
		}
	}
}

func TestValidateCurrency(t *testing.T) {
	for _, code := range []string{"USD", "EUR", "GBP", "JPY"} {
		if err := ValidateCurrency(code); err != nil {
			t.Fatalf("%s expected ok, got %v", code, err)
		}
	}
	for _, code := range []string{"", "US", "EURO", "QQQ"} {
		if err := ValidateCurrency(code); err == nil {
			t.Fatalf("%q expected error", code)
		}
	}
}
