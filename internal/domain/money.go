package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Money is an amount in integer minor units (COP has no cents in practice,
// so one unit is one peso). Every monetary value is normalized to Money when
// a record is ingested; the engine never parses strings.
type Money int64

// Decimal returns the amount as a decimal for scaling and ratio math.
func (m Money) Decimal() decimal.Decimal {
	return decimal.NewFromInt(int64(m))
}

// MoneyFromDecimal rounds half away from zero to whole minor units.
func MoneyFromDecimal(d decimal.Decimal) Money {
	return Money(d.Round(0).IntPart())
}

// Abs returns the absolute amount.
func (m Money) Abs() Money {
	if m < 0 {
		return -m
	}
	return m
}

// UnmarshalJSON accepts plain numbers (125000, 77500.0) and
// currency-formatted strings ("$ 125.000", "-60000", "1.500,75"); see
// ParseMoney for the string rules.
func (m *Money) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		*m = 0
		return nil
	}

	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		v, err := ParseMoney(s)
		if err != nil {
			return err
		}
		*m = v
		return nil
	}

	d, err := decimal.NewFromString(string(data))
	if err != nil {
		return fmt.Errorf("money: invalid number %q: %w", string(data), err)
	}
	*m = MoneyFromDecimal(d)
	return nil
}

// ParseMoney normalizes a formatted amount into minor units.
//
// A '-' or '(' anywhere before the first digit makes the amount negative.
// Separators are '.' and ','. A trailing group of one or two digits is the
// fraction and is rounded to whole units; every other group after the first
// must have exactly three digits. Anything else is rejected rather than
// guessed.
func ParseMoney(s string) (Money, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}

	first := strings.IndexFunc(s, isDigit)
	if first < 0 {
		return 0, fmt.Errorf("money: no digits in %q", s)
	}
	last := strings.LastIndexFunc(s, isDigit)

	prefix, body, suffix := s[:first], s[first:last+1], s[last+1:]
	negative := strings.ContainsAny(prefix, "-(")
	if strings.ContainsAny(suffix, ".,-") {
		return 0, fmt.Errorf("money: invalid amount %q", s)
	}

	whole, frac, err := splitAmount(body)
	if err != nil {
		return 0, fmt.Errorf("money: invalid amount %q: %w", s, err)
	}
	if frac != "" {
		whole += "." + frac
	}

	d, err := decimal.NewFromString(whole)
	if err != nil {
		return 0, fmt.Errorf("money: invalid amount %q: %w", s, err)
	}
	if negative {
		d = d.Neg()
	}
	return MoneyFromDecimal(d), nil
}

// splitAmount returns the integer digits and the fraction digits of body,
// which starts and ends with a digit.
func splitAmount(body string) (whole, frac string, err error) {
	var groups []string
	var seps []rune
	start := 0
	for i, r := range body {
		switch {
		case isDigit(r):
		case r == '.' || r == ',':
			groups = append(groups, body[start:i])
			seps = append(seps, r)
			start = i + 1
		default:
			return "", "", fmt.Errorf("unexpected %q", r)
		}
	}
	groups = append(groups, body[start:])

	if len(seps) == 0 {
		return body, "", nil
	}
	for _, g := range groups {
		if g == "" {
			return "", "", fmt.Errorf("empty digit group")
		}
	}

	n := len(groups)
	if l := len(groups[n-1]); l <= 2 {
		frac = groups[n-1]
		decimalSep := seps[n-2]
		groups, seps = groups[:n-1], seps[:n-2]
		for _, sep := range seps {
			if sep == decimalSep {
				return "", "", fmt.Errorf("separator %q used for both thousands and decimals", sep)
			}
		}
	}

	if len(groups[0]) > 3 && len(groups) > 1 {
		return "", "", fmt.Errorf("leading group %q too long", groups[0])
	}
	for i, g := range groups[1:] {
		if len(g) != 3 {
			return "", "", fmt.Errorf("thousands group %q must have three digits", g)
		}
		if seps[i] != seps[0] {
			return "", "", fmt.Errorf("mixed thousands separators")
		}
	}
	return strings.Join(groups, ""), frac, nil
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}
