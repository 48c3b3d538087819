package money

import (
	"math/big"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
)

var symbols = map[string]string{
	"USD": "$",
	"EUR": "€",
	"GBP": "£",
}

// SymbolFormatter renders <symbol><amount> with two decimals and comma grouping. It needs
// no locale data and never fails.
type SymbolFormatter struct{}

func (SymbolFormatter) FormatAmount(amount float64, currency, _ string) string {
	sym, ok := symbols[currency]
	if !ok {
		sym = currency + " "
	}
	return sym + groupDecimal(amount)
}

// groupDecimal formats amount with two decimals and thousands separators. The integer
// part is grouped as a big.Int so amounts beyond int64 keep their sign and digits.
func groupDecimal(amount float64) string {
	s := strconv.FormatFloat(amount, 'f', 2, 64)
	whole, frac, _ := strings.Cut(s, ".")
	n, ok := new(big.Int).SetString(whole, 10)
	if !ok {
		return s
	}
	if frac == "" {
		return humanize.BigComma(n)
	}
	return humanize.BigComma(n) + "." + frac
}
