// Package money formats valuation amounts and price ranges per currency and locale.
package money

import (
	"strings"

	"assetvaluer/internal/sanitize"
)

// RangeSeparator joins the low and high bound of a price range.
const RangeSeparator = " – "

const (
	StrategyLocale = "locale"
	StrategySymbol = "symbol"
)

// AmountFormatter formats a single amount in a currency for a locale tag.
type AmountFormatter interface {
	FormatAmount(amount float64, currency, localeTag string) string
}

// Formatter resolves language codes to locales and delegates to the strategy chosen at
// construction time.
type Formatter struct {
	san      *sanitize.Sanitizer
	strategy AmountFormatter
	name     string
}

// New picks the formatting strategy once. "symbol" forces the symbol fallback; anything
// else uses locale-aware formatting when the locale data can serve the default locale and
// currency.
func New(san *sanitize.Sanitizer, mode string) *Formatter {
	fallback := SymbolFormatter{}
	if !strings.EqualFold(mode, StrategySymbol) {
		settings := san.Settings()
		if lf, err := NewLocaleFormatter(fallback, settings.DefaultLocale(), settings.DefaultCurrency()); err == nil {
			return &Formatter{san: san, strategy: lf, name: StrategyLocale}
		}
	}
	return &Formatter{san: san, strategy: fallback, name: StrategySymbol}
}

// Strategy names the active strategy.
func (f *Formatter) Strategy() string { return f.name }

// Amount formats amount in currency using the locale of the language code.
func (f *Formatter) Amount(amount float64, currency, language string) string {
	return f.strategy.FormatAmount(amount, currency, f.san.Locale(language))
}

// PriceRange formats a low/high pair. Bounds that are empty or not numeric are dropped;
// a single remaining bound is formatted alone.
func (f *Formatter) PriceRange(low, high any, currency, language string) string {
	if isEmpty(low) && isEmpty(high) {
		return ""
	}
	parts := make([]string, 0, 2)
	for _, bound := range []any{low, high} {
		if isEmpty(bound) {
			continue
		}
		if n, ok := f.san.Number(bound); ok {
			parts = append(parts, f.Amount(n, currency, language))
		}
	}
	return strings.Join(parts, RangeSeparator)
}

func isEmpty(v any) bool {
	if v == nil {
		return true
	}
	s, ok := v.(string)
	return ok && strings.TrimSpace(s) == ""
}
