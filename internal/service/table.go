package service

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"assetvaluer/internal/model"
	"assetvaluer/internal/money"
	"assetvaluer/internal/repository"
	"assetvaluer/internal/sanitize"
	"assetvaluer/internal/storage"
)

const (
	DefaultLimit = 50
	MinLimit     = 1
	MaxLimit     = 200

	// NoConfidence is shown when an asset has no confidence value.
	NoConfidence = "—"
	// NoAssetsMessage replaces the table body when nothing matches.
	NoAssetsMessage = "No assets found"
)

// Columns is the fixed table header.
var Columns = []string{"Image", "Title", "Category", "Brand", "Model", "Specs", "Valuation", "Confidence", "Date"}

// TableFilter holds the table parameters. Language filters by exact stored language and
// overrides the formatting language; Currency overrides the stored currency per row.
// A zero Limit means DefaultLimit.
type TableFilter struct {
	Language string
	Currency string
	Limit    int
}

// Row is the display model of one asset. Values are plain text; renderers escape them.
type Row struct {
	ID           string `json:"id"`
	ThumbnailURL string `json:"thumbnail_url"`
	Title        string `json:"title"`
	Category     string `json:"category"`
	Brand        string `json:"brand"`
	Model        string `json:"model"`
	Specs        string `json:"specs"`
	Valuation    string `json:"valuation"`
	Confidence   string `json:"confidence"`
	Date         string `json:"date"`
	Language     string `json:"language"`
	Currency     string `json:"currency"`
}

// Table is the rendered result. Placeholder is set instead of rows when nothing matched.
type Table struct {
	Columns     []string `json:"columns"`
	Rows        []Row    `json:"rows"`
	Placeholder string   `json:"placeholder,omitempty"`
	Limit       int      `json:"limit"`
}

// TableService renders saved assets as display rows.
type TableService struct {
	repo      repository.AssetRepository
	store     storage.Storage
	san       *sanitize.Sanitizer
	formatter *money.Formatter
	options
}

// NewTableService constructs a TableService. store may be nil, in which case rows carry
// no thumbnail URL.
func NewTableService(repo repository.AssetRepository, store storage.Storage, san *sanitize.Sanitizer, formatter *money.Formatter, opts ...Option) *TableService {
	return &TableService{
		repo:      repo,
		store:     store,
		san:       san,
		formatter: formatter,
		options:   buildOptions(opts),
	}
}

// ClampLimit applies the default and the [MinLimit, MaxLimit] bounds.
func ClampLimit(n int) int {
	if n == 0 {
		n = DefaultLimit
	}
	return max(MinLimit, min(MaxLimit, n))
}

// Render queries the newest assets and derives one row per asset, preserving query order.
func (t *TableService) Render(ctx context.Context, f TableFilter) (*Table, error) {
	q := repository.AssetQuery{Limit: ClampLimit(f.Limit)}
	if lang := t.san.Key(f.Language); lang != "" {
		q.MetaKey = t.prefix + "language"
		q.MetaValue = lang
	}

	assets, err := t.repo.List(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list assets: %w", err)
	}

	table := &Table{Columns: Columns, Rows: make([]Row, 0, len(assets)), Limit: q.Limit}
	for i := range assets {
		table.Rows = append(table.Rows, t.row(ctx, &assets[i], f))
	}
	if len(table.Rows) == 0 {
		table.Placeholder = NoAssetsMessage
	}
	return table, nil
}

func (t *TableService) row(ctx context.Context, a *model.Asset, f TableFilter) Row {
	meta := func(k string) string { return a.Meta[t.prefix+k] }

	language := f.Language
	if language == "" {
		language = meta("language")
	}
	language = t.san.Language(language)

	currency := f.Currency
	if currency == "" {
		currency = meta("currency")
	}
	currency = t.san.Currency(currency)

	title := a.Title
	if strings.TrimSpace(title) == "" {
		title = DefaultTitle
	}

	return Row{
		ID:           a.ID,
		ThumbnailURL: t.thumbnailURL(ctx, a),
		Title:        title,
		Category:     meta("category"),
		Brand:        meta("brand"),
		Model:        meta("model"),
		Specs:        meta("specs"),
		Valuation:    t.valuation(a, currency, language),
		Confidence:   ConfidenceDisplay(meta("confidence")),
		Date:         a.CreatedAt.In(t.location).Format(t.dateFormat),
		Language:     language,
		Currency:     currency,
	}
}

// valuation prefers a stored valuation for the currency and falls back to its price range.
func (t *TableService) valuation(a *model.Asset, currency, language string) string {
	prices := model.PriceBookFromMeta(a.Meta, t.prefix)[strings.ToLower(currency)]
	if v := strings.TrimSpace(prices.Valuation); v != "" {
		return v
	}
	return t.formatter.PriceRange(prices.Low, prices.High, currency, language)
}

func (t *TableService) thumbnailURL(ctx context.Context, a *model.Asset) string {
	if t.store == nil || a.Thumbnail == nil || a.Thumbnail.StoragePath == "" {
		return ""
	}
	u, err := t.store.PresignGet(ctx, a.Thumbnail.StoragePath, t.thumbnailTTL)
	if err != nil {
		t.log.Warn("presign thumbnail failed", zap.String("asset_id", a.ID), zap.Error(err))
		return ""
	}
	return u
}

// ConfidenceDisplay renders a stored confidence. Values in (0,1] are fractions and shown as
// percentages, values above 1 are already percentages, anything else is shown as stored.
func ConfidenceDisplay(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return NoConfidence
	}
	c, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(c) || math.IsInf(c, 0) || c <= 0 {
		return raw
	}
	if c <= 1 {
		return fmt.Sprintf("%.1f%%", c*100)
	}
	return fmt.Sprintf("%.1f%%", c)
}
