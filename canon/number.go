package canon

import (
	"encoding/json"
	"errors"
	"math"
	"math/big"
	"strconv"
	"strings"
)

// writeNumber renders a decoded JSON number literal.
//
// Integer literals keep arbitrary precision and are normalized ("-0" is "0").
// Literals with a fraction or exponent are parsed as float64 and rendered by
// formatFloat, so "1e2" and "100.0" yield the same bytes.
func (e *encoder) writeNumber(n json.Number) error {
	s := string(n)
	if !validNumber(s) {
		return e.fail("CANON-NUM-002", "canon: invalid number literal "+strconv.Quote(s))
	}
	if isIntegerLiteral(s) {
		var z big.Int
		if _, ok := z.SetString(s, 10); !ok {
			return e.fail("CANON-NUM-002", "canon: invalid number literal "+strconv.Quote(s))
		}
		e.buf.WriteString(z.String())
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		var ne *strconv.NumError
		if !errors.As(err, &ne) || ne.Err != strconv.ErrRange {
			return e.fail("CANON-NUM-002", "canon: invalid number literal "+strconv.Quote(s))
		}
		// Overflow yields ±Inf and is rejected below; underflow keeps the
		// nearest representable value.
	}
	return e.writeFloat(f)
}

func (e *encoder) writeFloat(f float64) error {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return e.fail("CANON-NUM-001", "canon: non-finite number")
	}
	e.buf.WriteString(formatFloat(f))
	return nil
}

// formatFloat renders a finite float64 with the shortest digits that round-trip.
// Decimal exponents in [-4, 16) use fixed notation, with ".0" appended to
// integral values; others use d.ddde±XX with at least two exponent digits.
func formatFloat(f float64) string {
	if f == 0 {
		if math.Signbit(f) {
			return "-0.0"
		}
		return "0.0"
	}
	s := strconv.FormatFloat(f, 'e', -1, 64)
	mant, exp, _ := strings.Cut(s, "e")
	x, _ := strconv.Atoi(exp)

	var b strings.Builder
	if strings.HasPrefix(mant, "-") {
		b.WriteByte('-')
		mant = mant[1:]
	}
	digits := strings.Replace(mant, ".", "", 1)

	switch {
	case x < -4 || x >= 16:
		b.WriteString(digits[:1])
		if len(digits) > 1 {
			b.WriteByte('.')
			b.WriteString(digits[1:])
		}
		b.WriteByte('e')
		if x < 0 {
			b.WriteByte('-')
			x = -x
		} else {
			b.WriteByte('+')
		}
		if x < 10 {
			b.WriteByte('0')
		}
		b.WriteString(strconv.Itoa(x))
	case x < 0:
		b.WriteString("0.")
		b.WriteString(strings.Repeat("0", -x-1))
		b.WriteString(digits)
	case len(digits) <= x+1:
		b.WriteString(digits)
		b.WriteString(strings.Repeat("0", x+1-len(digits)))
		b.WriteString(".0")
	default:
		b.WriteString(digits[:x+1])
		b.WriteByte('.')
		b.WriteString(digits[x+1:])
	}
	return b.String()
}

func isIntegerLiteral(s string) bool {
	return !strings.ContainsAny(s, ".eE")
}

// validNumber reports whether s is a JSON number literal.
func validNumber(s string) bool {
	if s == "" {
		return false
	}
	if s[0] == '-' {
		s = s[1:]
		if s == "" {
			return false
		}
	}
	switch {
	case s[0] == '0':
		s = s[1:]
	case '1' <= s[0] && s[0] <= '9':
		s = s[1:]
		for len(s) > 0 && isDigit(s[0]) {
			s = s[1:]
		}
	default:
		return false
	}
	if len(s) >= 2 && s[0] == '.' && isDigit(s[1]) {
		s = s[2:]
		for len(s) > 0 && isDigit(s[0]) {
			s = s[1:]
		}
	}
	if len(s) >= 2 && (s[0] == 'e' || s[0] == 'E') {
		s = s[1:]
		if s[0] == '+' || s[0] == '-' {
			s = s[1:]
			if s == "" {
				return false
			}
		}
		for len(s) > 0 && isDigit(s[0]) {
			s = s[1:]
		}
	}
	return s == ""
}

func isDigit(c byte) bool { return '0' <= c && c <= '9' }
