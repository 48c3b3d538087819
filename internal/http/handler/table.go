package handler

import (
	"bytes"
	"errors"
	"html/template"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"assetvaluer/internal/service"
)

var tableTemplate = template.Must(template.New("assets").Parse(`<table class="aiav-assets">
<thead><tr>{{range .Columns}}<th>{{.}}</th>{{end}}</tr></thead>
<tbody>
{{- if .Rows}}{{range .Rows}}
<tr data-asset-id="{{.ID}}" lang="{{.Language}}">
<td>{{if .ThumbnailURL}}<img src="{{.ThumbnailURL}}" alt="{{.Title}}" loading="lazy" />{{end}}</td>
<td>{{.Title}}</td>
<td>{{.Category}}</td>
<td>{{.Brand}}</td>
<td>{{.Model}}</td>
<td>{{.Specs}}</td>
<td>{{.Valuation}}</td>
<td>{{.Confidence}}</td>
<td>{{.Date}}</td>
</tr>{{end}}{{else}}
<tr><td colspan="{{len .Columns}}">{{.Placeholder}}</td></tr>{{end}}
</tbody>
</table>
`))

// tableFilter reads language, currency and limit from the query string. A limit that is
// not an integer is treated as absent.
func tableFilter(c *fiber.Ctx) service.TableFilter {
	f := service.TableFilter{
		Language: c.Query("language"),
		Currency: c.Query("currency"),
	}
	// Atoi saturates out-of-range values, which the service then clamps.
	n, err := strconv.Atoi(strings.TrimSpace(c.Query("limit")))
	if err == nil || errors.Is(err, strconv.ErrRange) {
		f.Limit = n
	}
	return f
}

// AssetTable renders the newest assets as an HTML table.
//
// @Summary  Asset table
// @Tags     assets
// @Produce  html
// @Param    language query string false "filter and display language"
// @Param    currency query string false "display currency"
// @Param    limit    query int    false "rows, 1 to 200" default(50)
// @Success  200
// @Failure  500 {object} errorPayload
// @Router   /assets/table [get]
func AssetTable(svc *service.TableService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		table, err := svc.Render(c.UserContext(), tableFilter(c))
		if err != nil {
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}

		var buf bytes.Buffer
		if err := tableTemplate.Execute(&buf, table); err != nil {
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		c.Type("html", "utf-8")
		return c.Send(buf.Bytes())
	}
}

// ListAssets returns the same rows as AssetTable as JSON.
//
// @Summary  List assets
// @Tags     assets
// @Produce  json
// @Param    language query string false "filter and display language"
// @Param    currency query string false "display currency"
// @Param    limit    query int    false "rows, 1 to 200" default(50)
// @Success  200 {object} service.Table
// @Failure  500 {object} errorPayload
// @Router   /assets [get]
func ListAssets(svc *service.TableService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		table, err := svc.Render(c.UserContext(), tableFilter(c))
		if err != nil {
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.JSON(table)
	}
}
