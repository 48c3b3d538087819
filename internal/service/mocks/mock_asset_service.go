package mocks

import (
	"context"
	"io"

	"github.com/stretchr/testify/mock"

	"assetvaluer/internal/model"
	"assetvaluer/internal/service"
	"assetvaluer/internal/storage"
)

type MockAssetService struct {
	mock.Mock
}

var _ service.AssetService = (*MockAssetService)(nil)

func (m *MockAssetService) Save(ctx context.Context, payload map[string]any) (*service.SaveResult, error) {
	args := m.Called(ctx, payload)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.SaveResult), args.Error(1)
}

func (m *MockAssetService) Get(ctx context.Context, id string) (*model.Asset, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Asset), args.Error(1)
}

func (m *MockAssetService) Image(ctx context.Context, id string) (io.ReadCloser, storage.ObjectInfo, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, storage.ObjectInfo{}, args.Error(2)
	}
	return args.Get(0).(io.ReadCloser), args.Get(1).(storage.ObjectInfo), args.Error(2)
}
