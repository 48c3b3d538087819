package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"

	"assetvaluer/internal/model"
	"assetvaluer/internal/repository"
)

// AssetPostgres is a PostgreSQL implementation of repository.AssetRepository.
// It uses database/sql with parameterized queries and contains no business logic.
type AssetPostgres struct {
	db *sql.DB
}

// NewAssetPostgres creates a new AssetPostgres repository.
func NewAssetPostgres(db *sql.DB) *AssetPostgres {
	return &AssetPostgres{db: db}
}

var _ repository.AssetRepository = (*AssetPostgres)(nil)

const thumbnailColumns = `t.id, t.filename, t.storage_path, t.size, t.content_type, t.created_at`

// thumbnailRow scans the nullable columns of a LEFT JOINed attachment.
type thumbnailRow struct {
	id, filename, path, contentType sql.NullString
	size                            sql.NullInt64
	createdAt                       sql.NullTime
}

func (t *thumbnailRow) dest() []any {
	return []any{&t.id, &t.filename, &t.path, &t.size, &t.contentType, &t.createdAt}
}

func (t *thumbnailRow) attachment(assetID string) *model.Attachment {
	if !t.id.Valid {
		return nil
	}
	return &model.Attachment{
		ID:          t.id.String,
		AssetID:     assetID,
		Filename:    t.filename.String,
		StoragePath: t.path.String,
		Size:        t.size.Int64,
		ContentType: t.contentType.String,
		CreatedAt:   t.createdAt.Time,
	}
}

// Create inserts a new asset row and returns the stored record.
func (r *AssetPostgres) Create(ctx context.Context, a *model.Asset) (*model.Asset, error) {
	const q = `
		INSERT INTO assets (id, title, body, excerpt, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, title, body, excerpt, created_at
	`
	var out model.Asset
	if err := r.db.QueryRowContext(ctx, q, a.ID, a.Title, a.Body, a.Excerpt, a.CreatedAt).Scan(
		&out.ID,
		&out.Title,
		&out.Body,
		&out.Excerpt,
		&out.CreatedAt,
	); err != nil {
		return nil, err
	}
	out.Meta = map[string]string{}
	return &out, nil
}

// FindByID fetches a single asset with its thumbnail and metadata.
func (r *AssetPostgres) FindByID(ctx context.Context, id string) (*model.Asset, error) {
	const q = `
		SELECT a.id, a.title, a.body, a.excerpt, a.created_at, ` + thumbnailColumns + `
		FROM assets a
		LEFT JOIN asset_attachments t ON t.id = a.thumbnail_id
		WHERE a.id = $1
	`
	var (
		a  model.Asset
		th thumbnailRow
	)
	dest := append([]any{&a.ID, &a.Title, &a.Body, &a.Excerpt, &a.CreatedAt}, th.dest()...)
	if err := r.db.QueryRowContext(ctx, q, id).Scan(dest...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	a.Thumbnail = th.attachment(a.ID)

	rows, err := r.db.QueryContext(ctx, `SELECT meta_key, meta_value FROM asset_meta WHERE asset_id = $1`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	a.Meta = map[string]string{}
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, err
		}
		a.Meta[k] = v
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &a, nil
}

// List returns the newest assets first. The inner query bounds and filters the assets; the
// outer joins fan each one out into one row per metadata entry, folded back here.
func (r *AssetPostgres) List(ctx context.Context, q repository.AssetQuery) ([]model.Asset, error) {
	const qList = `
		SELECT a.id, a.title, a.body, a.excerpt, a.created_at, ` + thumbnailColumns + `, m.meta_key, m.meta_value
		FROM (
			SELECT id, title, body, excerpt, created_at, thumbnail_id
			FROM assets
			WHERE $1 = '' OR EXISTS (
				SELECT 1 FROM asset_meta f
				WHERE f.asset_id = assets.id AND f.meta_key = $1 AND f.meta_value = $2
			)
			ORDER BY created_at DESC, id DESC
			LIMIT $3
		) a
		LEFT JOIN asset_attachments t ON t.id = a.thumbnail_id
		LEFT JOIN asset_meta m ON m.asset_id = a.id
		ORDER BY a.created_at DESC, a.id DESC
	`
	rows, err := r.db.QueryContext(ctx, qList, q.MetaKey, q.MetaValue, q.Limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Asset, 0)
	index := map[string]int{}
	for rows.Next() {
		var (
			a          model.Asset
			th         thumbnailRow
			key, value sql.NullString
		)
		dest := append([]any{&a.ID, &a.Title, &a.Body, &a.Excerpt, &a.CreatedAt}, th.dest()...)
		if err := rows.Scan(append(dest, &key, &value)...); err != nil {
			return nil, err
		}
		i, seen := index[a.ID]
		if !seen {
			a.Thumbnail = th.attachment(a.ID)
			a.Meta = map[string]string{}
			items = append(items, a)
			i = len(items) - 1
			index[a.ID] = i
		}
		if key.Valid {
			items[i].Meta[key.String] = value.String
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// SetMeta upserts all entries in a single transaction, in key order.
func (r *AssetPostgres) SetMeta(ctx context.Context, id string, meta map[string]string) error {
	if len(meta) == 0 {
		return nil
	}
	const q = `
		INSERT INTO asset_meta (asset_id, meta_key, meta_value)
		VALUES ($1, $2, $3)
		ON CONFLICT (asset_id, meta_key) DO UPDATE SET meta_value = EXCLUDED.meta_value
	`
	keys := make([]string, 0, len(meta))
	for k := range meta {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	for _, k := range keys {
		if _, err := tx.ExecContext(ctx, q, id, k, meta[k]); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("set meta %s: %w", k, err)
		}
	}
	return tx.Commit()
}

// AddAttachment inserts an attachment row and returns the stored record.
func (r *AssetPostgres) AddAttachment(ctx context.Context, att *model.Attachment) (*model.Attachment, error) {
	const q = `
		INSERT INTO asset_attachments (id, asset_id, filename, storage_path, size, content_type, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, asset_id, filename, storage_path, size, content_type, created_at
	`
	var out model.Attachment
	if err := r.db.QueryRowContext(ctx, q,
		att.ID,
		att.AssetID,
		att.Filename,
		att.StoragePath,
		att.Size,
		att.ContentType,
		att.CreatedAt,
	).Scan(
		&out.ID,
		&out.AssetID,
		&out.Filename,
		&out.StoragePath,
		&out.Size,
		&out.ContentType,
		&out.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &out, nil
}

// SetThumbnail points the asset at one of its attachments.
func (r *AssetPostgres) SetThumbnail(ctx context.Context, assetID, attachmentID string) error {
	const q = `UPDATE assets SET thumbnail_id = $2 WHERE id = $1`
	res, err := r.db.ExecContext(ctx, q, assetID, attachmentID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// Delete removes an asset; metadata and attachment rows go with it via ON DELETE CASCADE.
func (r *AssetPostgres) Delete(ctx context.Context, id string) error {
	const q = `DELETE FROM assets WHERE id = $1`
	_, err := r.db.ExecContext(ctx, q, id)
	return err
}
