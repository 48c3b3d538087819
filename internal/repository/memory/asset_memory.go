// Package memory is an in-process AssetRepository used by tests and local runs without a
// database.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"assetvaluer/internal/model"
	"assetvaluer/internal/repository"
)

// AssetMemory keeps assets in a map guarded by a mutex. Returned values are copies.
type AssetMemory struct {
	mu          sync.RWMutex
	assets      map[string]*model.Asset
	attachments map[string]*model.Attachment
	now         func() time.Time
}

// NewAssetMemory returns an empty store.
func NewAssetMemory() *AssetMemory {
	return &AssetMemory{
		assets:      map[string]*model.Asset{},
		attachments: map[string]*model.Attachment{},
		now:         time.Now,
	}
}

var _ repository.AssetRepository = (*AssetMemory)(nil)

func (m *AssetMemory) Create(_ context.Context, a *model.Asset) (*model.Asset, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored := *a
	if stored.ID == "" {
		stored.ID = uuid.NewString()
	}
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = m.now()
	}
	stored.Meta = map[string]string{}
	stored.Thumbnail = nil
	m.assets[stored.ID] = &stored
	return copyAsset(&stored), nil
}

func (m *AssetMemory) FindByID(_ context.Context, id string) (*model.Asset, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	a, ok := m.assets[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return copyAsset(a), nil
}

func (m *AssetMemory) List(_ context.Context, q repository.AssetQuery) ([]model.Asset, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	items := make([]model.Asset, 0, len(m.assets))
	for _, a := range m.assets {
		if q.MetaKey != "" && a.Meta[q.MetaKey] != q.MetaValue {
			continue
		}
		items = append(items, *copyAsset(a))
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].ID > items[j].ID
		}
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})
	if q.Limit > 0 && len(items) > q.Limit {
		items = items[:q.Limit]
	}
	return items, nil
}

func (m *AssetMemory) SetMeta(_ context.Context, id string, meta map[string]string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	a, ok := m.assets[id]
	if !ok {
		return repository.ErrNotFound
	}
	for k, v := range meta {
		a.Meta[k] = v
	}
	return nil
}

func (m *AssetMemory) AddAttachment(_ context.Context, att *model.Attachment) (*model.Attachment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.assets[att.AssetID]; !ok {
		return nil, repository.ErrNotFound
	}
	stored := *att
	m.attachments[stored.ID] = &stored
	out := stored
	return &out, nil
}

func (m *AssetMemory) SetThumbnail(_ context.Context, assetID, attachmentID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	a, ok := m.assets[assetID]
	if !ok {
		return repository.ErrNotFound
	}
	att, ok := m.attachments[attachmentID]
	if !ok || att.AssetID != assetID {
		return repository.ErrNotFound
	}
	a.Thumbnail = att
	return nil
}

func (m *AssetMemory) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.assets, id)
	for k, att := range m.attachments {
		if att.AssetID == id {
			delete(m.attachments, k)
		}
	}
	return nil
}

// Len returns the number of stored assets.
func (m *AssetMemory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.assets)
}

func copyAsset(a *model.Asset) *model.Asset {
	out := *a
	out.Meta = make(map[string]string, len(a.Meta))
	for k, v := range a.Meta {
		out.Meta[k] = v
	}
	if a.Thumbnail != nil {
		th := *a.Thumbnail
		out.Thumbnail = &th
	}
	return &out
}
