package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

// FormatRupiah renders an amount the Indonesian way: "Rp 6.000.000" with dot
// thousands separators and a comma before non-zero cents.
func FormatRupiah(d decimal.Decimal) string {
	s := d.Abs().StringFixed(2)
	intPart, frac, _ := strings.Cut(s, ".")

	var b strings.Builder
	if d.IsNegative() {
		b.WriteString("-")
	}
	b.WriteString("Rp ")
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(r)
	}
	if frac != "00" {
		b.WriteByte(',')
		b.WriteString(frac)
	}
	return b.String()
}
