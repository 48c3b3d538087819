package service

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"

	"assetvaluer/internal/templates"
)

func TestWidgetService_Render(t *testing.T) {
	svc := NewWidgetService(newSanitizer(), templates.Embedded())

	tests := []struct {
		name     string
		language string
		currency string
		want     string
	}{
		{"english", "en", "usd", `<div id="valuationWidget" data-aiav-currency="USD" data-aiav-language="en" data-aiav-locale="en-GB"`},
		{"arabic", "AR", "eur", `<div id="valuationWidget" data-aiav-currency="EUR" data-aiav-language="ar" data-aiav-locale="ar"`},
		{"unsupported language falls back", "fr", "", `<div id="valuationWidget" data-aiav-currency="GBP" data-aiav-language="en" data-aiav-locale="en-GB"`},
		{"hostile input is normalized", `"><script>`, `"><b>`, `data-aiav-currency="GBP" data-aiav-language="en"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := svc.Render(tt.language, tt.currency)

			assert.Contains(t, out, tt.want)
			assert.NotContains(t, out, "<script>")
		})
	}
}

func TestWidgetService_Render_MissingTemplate(t *testing.T) {
	resolver := templates.NewFSResolver(fstest.MapFS{}, map[string]string{"en": "missing.html"})
	svc := NewWidgetService(newSanitizer(), resolver)

	assert.Equal(t, "", svc.Render("en", "GBP"))
	assert.Equal(t, "", svc.Render("ar", "GBP"))
}

func TestInjectDataset(t *testing.T) {
	const attrs = ` data-x="1"`

	assert.Equal(t,
		`<section><div id="valuationWidget" data-x="1" class="w"></div><div id="valuationWidget"></div></section>`,
		InjectDataset(`<section><div id="valuationWidget" class="w"></div><div id="valuationWidget"></div></section>`, attrs),
		"only the first container is touched")

	assert.Equal(t,
		`<div id="valuationWidget" data-x="1">`,
		InjectDataset(`<DIV  id="valuationWidget">`, attrs))

	assert.Equal(t, `<div id="other"></div>`, InjectDataset(`<div id="other"></div>`, attrs))
}
