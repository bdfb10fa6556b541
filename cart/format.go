package cart

import (
	"math"
	"strconv"
	"strings"
)

// FormatConfig controls how monetary values are rendered.
type FormatConfig struct {
	Decimals          int
	DecimalPoint      string
	ThousandSeparator string

	// Prepend is placed in front of the rendered number, e.g. "$".
	Prepend string

	// OnZero, when set, replaces the rendered output entirely for values
	// that are exactly zero (e.g. "Free").
	OnZero string
}

// Format renders v the way PHP's number_format would: fixed decimals,
// configurable decimal point and thousand grouping.
func Format(v float64, f FormatConfig) string {
	if v == 0 && f.OnZero != "" {
		return f.OnZero
	}

	dec := f.Decimals
	if dec < 0 {
		dec = 0
	}

	// number_format rounds ties away from zero; FormatFloat rounds them to
	// even, so round explicitly first.
	pow := math.Pow(10, float64(dec))
	r := math.Floor(math.Abs(v)*pow+0.5) / pow
	if v < 0 {
		r = -r
	}
	if r == 0 {
		r = 0 // drop the sign on -0 so tiny negatives don't render "-0.00"
	}

	s := strconv.FormatFloat(r, 'f', dec, 64)

	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}

	intPart, fracPart, _ := strings.Cut(s, ".")
	if f.ThousandSeparator != "" {
		intPart = groupThousands(intPart, f.ThousandSeparator)
	}

	out := intPart
	if dec > 0 {
		dp := f.DecimalPoint
		if dp == "" {
			dp = "."
		}
		out += dp + fracPart
	}
	if neg {
		out = "-" + out
	}

	return f.Prepend + out
}

// ParsePrice accepts a numeric string that may contain the configured
// prepend, thousand separator, and decimal point ("$1,311.82").
func ParsePrice(s string, f FormatConfig) (float64, error) {
	cleaned := strings.TrimSpace(s)
	if f.Prepend != "" {
		cleaned = strings.TrimPrefix(cleaned, f.Prepend)
	}
	if f.ThousandSeparator != "" {
		cleaned = strings.ReplaceAll(cleaned, f.ThousandSeparator, "")
	}
	if f.DecimalPoint != "" && f.DecimalPoint != "." {
		cleaned = strings.ReplaceAll(cleaned, f.DecimalPoint, ".")
	}

	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, &ValidationError{Msg: "Please supply a valid price."}
	}
	return v, nil
}

func groupThousands(digits, sep string) string {
	n := len(digits)
	if n <= 3 {
		return digits
	}

	var b strings.Builder
	head := n % 3
	if head > 0 {
		b.WriteString(digits[:head])
	}
	for i := head; i < n; i += 3 {
		if b.Len() > 0 {
			b.WriteString(sep)
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}
