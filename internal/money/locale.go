package money

import (
	"fmt"

	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// LocaleFormatter formats amounts with CLDR symbols, grouping and digits for the locale.
// Unknown locale tags or currencies are handed to the fallback.
type LocaleFormatter struct {
	fallback AmountFormatter
}

// NewLocaleFormatter checks that probeLocale and probeCurrency resolve against the locale
// data before returning the formatter.
func NewLocaleFormatter(fallback AmountFormatter, probeLocale, probeCurrency string) (*LocaleFormatter, error) {
	if _, err := language.Parse(probeLocale); err != nil {
		return nil, fmt.Errorf("locale %q: %w", probeLocale, err)
	}
	if _, err := currency.ParseISO(probeCurrency); err != nil {
		return nil, fmt.Errorf("currency %q: %w", probeCurrency, err)
	}
	return &LocaleFormatter{fallback: fallback}, nil
}

func (f *LocaleFormatter) FormatAmount(amount float64, code, localeTag string) string {
	tag, err := language.Parse(localeTag)
	if err != nil {
		return f.fallback.FormatAmount(amount, code, localeTag)
	}
	unit, err := currency.ParseISO(code)
	if err != nil {
		return f.fallback.FormatAmount(amount, code, localeTag)
	}

	scale, _ := currency.Standard.Rounding(unit)
	p := message.NewPrinter(tag)
	return p.Sprint(currency.NarrowSymbol(unit)) +
		p.Sprint(number.Decimal(amount, number.MinFractionDigits(scale), number.MaxFractionDigits(scale)))
}
