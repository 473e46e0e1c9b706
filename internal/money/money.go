// Package money formats amounts the way the shop prints them: Chilean pesos,
// no decimals, dot as thousands separator. It also reads amounts typed by
// users or sent by the API.
package money

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var chile = language.MustParse("es-CL")

// ErrInvalidAmount is returned by Parse for anything but a plain decimal.
var ErrInvalidAmount = errors.New("invalid amount")

// At most 12 integer digits; the fraction is only capped so float noise
// from the API ("1234.5600000000001") still reads.
var plainAmount = regexp.MustCompile(`^-?\d{1,12}(?:[.,]\d{1,20})?$`)

// Parse reads "1250", "1250.50" or "1250,5". Exponents, "+", NaN, thousands
// separators and more than 12 integer digits are rejected.
func Parse(raw string) (decimal.Decimal, error) {
	s := strings.TrimSpace(raw)
	if !plainAmount.MatchString(s) {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidAmount, raw)
	}
	d, err := decimal.NewFromString(strings.Replace(s, ",", ".", 1))
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidAmount, raw)
	}
	return d, nil
}

// int64 range with headroom for rounding.
var groupLimit = decimal.New(1, 18)

// CLP renders d as "$1.234". Fractions are rounded half away from zero.
// Amounts beyond the int64 range are printed without grouping.
func CLP(d decimal.Decimal) string {
	r := d.Round(0)
	sign := ""
	if r.IsNegative() {
		sign = "-"
		r = r.Neg()
	}
	if r.GreaterThanOrEqual(groupLimit) {
		return sign + "$" + r.String()
	}
	p := message.NewPrinter(chile)
	return p.Sprintf("%s$%d", sign, r.IntPart())
}
