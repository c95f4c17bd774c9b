// Package core provides the record types of the back office and the money
// helpers shared by every layer.
//
// This file contains parsing of user-entered amounts and the display
// formatting used for balances and transaction amounts.
package core

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var moneyPrinter = message.NewPrinter(language.AmericanEnglish)

var currencySymbols = map[string]string{
	"USD": "$",
	"EUR": "€",
	"GBP": "£",
	"JPY": "¥",
}

// ParseAmount converts a user-entered decimal string into an exact amount.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators and
// rounds half-up to two places. Negative and zero amounts are rejected.
//
// Examples:
//
//	ParseAmount("1250.00") -> 1250.00, nil
//	ParseAmount("800,50")  -> 800.50, nil
//	ParseAmount("12.345")  -> 12.35, nil
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, invalid("amount is required")
	}
	s = strings.ReplaceAll(s, ",", ".")
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, invalid("amount %q is not a number", s)
	}
	d = d.Round(2)
	if !d.IsPositive() {
		return decimal.Zero, invalid("amount must be positive")
	}
	return d, nil
}

// ValidateCurrency reports whether code is a recognized ISO 4217 code.
func ValidateCurrency(code string) error {
	if len(code) != 3 {
		return invalid("currency %q must be a 3-letter ISO code", code)
	}
	if _, err := currency.ParseISO(code); err != nil {
		return invalid("currency %q is not recognized", code)
	}
	return nil
}

// CurrencySymbol returns the display symbol for code, or the code followed
// by a space when no symbol is known.
func CurrencySymbol(code string) string {
	if sym, ok := currencySymbols[strings.ToUpper(code)]; ok {
		return sym
	}
	return strings.ToUpper(code) + " "
}

// FormatMoney renders amount the way the dashboard shows it: currency
// symbol, thousands separators and the currency's standard number of
// decimals ("$1,250.00", "€8,900.25", "¥2,101").
func FormatMoney(amount decimal.Decimal, code string) string {
	scale := 2
	if unit, err := currency.ParseISO(code); err == nil {
		scale, _ = currency.Standard.Rounding(unit)
	}

	rounded := amount.Abs().Round(int32(scale))
	whole := rounded.Truncate(0)
	out := moneyPrinter.Sprintf("%d", whole.IntPart())
	if scale > 0 {
		frac := rounded.Sub(whole).Shift(int32(scale)).IntPart()
		out += fmt.Sprintf(".%0*d", scale, frac)
	}

	sign := ""
	if amount.IsNegative() && !rounded.IsZero() {
		sign = "-"
	}
	return sign + CurrencySymbol(code) + out
}
