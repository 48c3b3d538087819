package service

import (
	"fmt"
	"html"
	"regexp"

	"go.uber.org/zap"

	"assetvaluer/internal/sanitize"
	"assetvaluer/internal/templates"
)

// widgetContainer matches the opening of the element that receives the data attributes.
var widgetContainer = regexp.MustCompile(`(?i)<div\s+id="valuationWidget"`)

// WidgetService renders the camera-capture valuation widget.
type WidgetService struct {
	san      *sanitize.Sanitizer
	resolver templates.Resolver
	options
}

func NewWidgetService(san *sanitize.Sanitizer, resolver templates.Resolver, opts ...Option) *WidgetService {
	return &WidgetService{san: san, resolver: resolver, options: buildOptions(opts)}
}

// Render returns the widget markup for language with currency, language and locale data
// attributes on the container. It returns "" when no template can be read.
func (w *WidgetService) Render(language, currency string) string {
	language = w.san.Language(language)
	currency = w.san.Currency(currency)
	loc := w.san.Locale(language)

	markup, err := w.resolver.Resolve(language)
	if err != nil {
		w.log.Warn("widget template unavailable", zap.String("language", language), zap.Error(err))
		return ""
	}

	dataset := fmt.Sprintf(` data-aiav-currency="%s" data-aiav-language="%s" data-aiav-locale="%s"`,
		html.EscapeString(currency), html.EscapeString(language), html.EscapeString(loc))
	return InjectDataset(string(markup), dataset)
}

// InjectDataset appends attrs to the first widget container tag. Markup without a
// container is returned unchanged.
func InjectDataset(markup, attrs string) string {
	loc := widgetContainer.FindStringIndex(markup)
	if loc == nil {
		return markup
	}
	return markup[:loc[0]] + `<div id="valuationWidget"` + attrs + markup[loc[1]:]
}
