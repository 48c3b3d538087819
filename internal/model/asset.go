package model

import (
	"regexp"
	"strings"
	"time"
)

// Asset is a saved valuation: display text, namespaced key-value metadata and the captured
// image attached as its thumbnail.
type Asset struct {
	ID        string            `json:"id"`
	Title     string            `json:"title"`
	Body      string            `json:"body"`
	Excerpt   string            `json:"excerpt"`
	Meta      map[string]string `json:"meta"`
	Thumbnail *Attachment       `json:"thumbnail,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
}

// Attachment is a binary file owned by exactly one asset.
type Attachment struct {
	ID          string    `json:"id"`
	AssetID     string    `json:"asset_id"`
	Filename    string    `json:"filename"`
	StoragePath string    `json:"storage_path"`
	Size        int64     `json:"size"`
	ContentType string    `json:"content_type"`
	CreatedAt   time.Time `json:"created_at"`
}

// Price metadata fields. A stored key is <prefix><field>_<suffix>, the suffix normally being
// a lower-cased currency code.
const (
	PriceValuation = "valuation"
	PriceLow       = "price_low"
	PriceHigh      = "price_high"
)

// PriceKey matches the dynamic price key family, case-insensitively.
var PriceKey = regexp.MustCompile(`(?i)^(valuation|price_low|price_high)_(.+)$`)

// PriceRange holds the price fields stored for one currency.
type PriceRange struct {
	Valuation string
	Low       string
	High      string
}

// PriceBook maps a currency suffix to its price range.
type PriceBook map[string]PriceRange

// Set assigns one field of the range for suffix. Unknown fields are ignored.
func (b PriceBook) Set(field, suffix, value string) {
	r := b[suffix]
	switch field {
	case PriceValuation:
		r.Valuation = value
	case PriceLow:
		r.Low = value
	case PriceHigh:
		r.High = value
	default:
		return
	}
	b[suffix] = r
}

// PriceBookFromMeta collects the price fields out of namespaced metadata.
func PriceBookFromMeta(meta map[string]string, prefix string) PriceBook {
	book := PriceBook{}
	for k, v := range meta {
		if !strings.HasPrefix(k, prefix) {
			continue
		}
		m := PriceKey.FindStringSubmatch(strings.TrimPrefix(k, prefix))
		if m == nil {
			continue
		}
		book.Set(strings.ToLower(m[1]), m[2], v)
	}
	return book
}
