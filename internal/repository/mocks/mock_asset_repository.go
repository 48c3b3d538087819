package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"assetvaluer/internal/model"
	"assetvaluer/internal/repository"
)

type MockAssetRepository struct {
	mock.Mock
}

var _ repository.AssetRepository = (*MockAssetRepository)(nil)

func (m *MockAssetRepository) Create(ctx context.Context, a *model.Asset) (*model.Asset, error) {
	args := m.Called(ctx, a)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Asset), args.Error(1)
}

func (m *MockAssetRepository) FindByID(ctx context.Context, id string) (*model.Asset, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Asset), args.Error(1)
}

func (m *MockAssetRepository) List(ctx context.Context, q repository.AssetQuery) ([]model.Asset, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Asset), args.Error(1)
}

func (m *MockAssetRepository) SetMeta(ctx context.Context, id string, meta map[string]string) error {
	args := m.Called(ctx, id, meta)
	return args.Error(0)
}

func (m *MockAssetRepository) AddAttachment(ctx context.Context, att *model.Attachment) (*model.Attachment, error) {
	args := m.Called(ctx, att)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Attachment), args.Error(1)
}

func (m *MockAssetRepository) SetThumbnail(ctx context.Context, assetID, attachmentID string) error {
	args := m.Called(ctx, assetID, attachmentID)
	return args.Error(0)
}

func (m *MockAssetRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
