package repository

import (
	"context"
	"errors"

	"assetvaluer/internal/model"
)

// ErrNotFound is returned when an asset does not exist.
var ErrNotFound = errors.New("asset not found")

// AssetRepository is the record store for assets: records, their key-value metadata and
// attachment rows. Binary content lives in object storage, not here.
type AssetRepository interface {
	// Create inserts a new asset record and returns the stored record.
	Create(ctx context.Context, a *model.Asset) (*model.Asset, error)

	// FindByID returns an asset with its metadata and thumbnail, or ErrNotFound.
	FindByID(ctx context.Context, id string) (*model.Asset, error)

	// List returns assets most-recent-first, bounded by q.Limit, optionally restricted to
	// assets whose metadata q.MetaKey equals q.MetaValue exactly.
	List(ctx context.Context, q AssetQuery) ([]model.Asset, error)

	// SetMeta upserts metadata entries for an asset.
	SetMeta(ctx context.Context, id string, meta map[string]string) error

	// AddAttachment inserts an attachment row owned by att.AssetID.
	AddAttachment(ctx context.Context, att *model.Attachment) (*model.Attachment, error)

	// SetThumbnail marks an attachment as the asset's primary image.
	SetThumbnail(ctx context.Context, assetID, attachmentID string) error

	// Delete removes an asset with its metadata and attachment rows. Deleting a missing
	// asset is not an error.
	Delete(ctx context.Context, id string) error
}

// AssetQuery filters a List call.
type AssetQuery struct {
	Limit     int
	MetaKey   string
	MetaValue string
}
