package domain

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// ParseBRL normalizes a locale-formatted currency string ("R$ 1.234,56",
// "1.234,56", "59,90") into a float amount. Grouping dots are dropped and the
// trailing comma group is the decimal part. A value that cannot be parsed
// normalizes to zero; the caller treats zero as "no price".
func ParseBRL(s string) float64 {
	// Keep only digits, comma, dot and sign.
	cleaned := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' || r == ',' || r == '.' || r == '-' {
			return r
		}
		return -1
	}, s)
	if cleaned == "" {
		return 0
	}

	if i := strings.LastIndex(cleaned, ","); i >= 0 {
		// pt-BR shape: dots are grouping, last comma starts the decimals.
		intPart := strings.ReplaceAll(cleaned[:i], ".", "")
		intPart = strings.ReplaceAll(intPart, ",", "")
		cleaned = intPart + "." + cleaned[i+1:]
	} else if strings.Count(cleaned, ".") > 1 {
		// "1.234.567": all dots are grouping.
		cleaned = strings.ReplaceAll(cleaned, ".", "")
	}

	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0
	}
	return v
}

// FormatBRL renders an amount in pt-BR currency style: "R$ 1.234,56".
func FormatBRL(v float64) string {
	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
	}

	// Round to cents before splitting to avoid 59.899999 artifacts.
	cents := int64(v*100 + 0.5)
	intPart := cents / 100
	frac := cents % 100

	digits := strconv.FormatInt(intPart, 10)
	var b strings.Builder
	lead := len(digits) % 3
	if lead > 0 {
		b.WriteString(digits[:lead])
	}
	for i := lead; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteByte('.')
		}
		b.WriteString(digits[i : i+3])
	}

	return fmt.Sprintf("%sR$ %s,%02d", sign, b.String(), frac)
}

// Price is a product price that may arrive from JSON either as a number or
// as a locale-formatted currency string. It always unmarshals to a number;
// unparseable strings normalize to zero.
type Price float64

// UnmarshalJSON accepts 59.9, "59,90" or "R$ 1.234,56".
func (p *Price) UnmarshalJSON(data []byte) error {
	var n float64
	if err := json.Unmarshal(data, &n); err == nil {
		*p = Price(n)
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("price must be a number or string: %s", string(data))
	}
	*p = Price(ParseBRL(s))
	return nil
}

// MarshalJSON always emits the normalized numeric value.
func (p Price) MarshalJSON() ([]byte, error) {
	return json.Marshal(float64(p))
}
