package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"assetvaluer/internal/model"
	"assetvaluer/internal/money"
	"assetvaluer/internal/repository"
	"assetvaluer/internal/repository/memory"
	repoMocks "assetvaluer/internal/repository/mocks"
	storeMocks "assetvaluer/internal/storage/mocks"
)

func newTableService(repo repository.AssetRepository, store *storeMocks.MockStorage) *TableService {
	san := newSanitizer()
	if store == nil {
		return NewTableService(repo, nil, san, money.New(san, money.StrategySymbol))
	}
	return NewTableService(repo, store, san, money.New(san, money.StrategySymbol))
}

func seed(t *testing.T, repo *memory.AssetMemory, a model.Asset, meta map[string]string) string {
	t.Helper()
	ctx := context.Background()
	stored, err := repo.Create(ctx, &a)
	require.NoError(t, err)
	require.NoError(t, repo.SetMeta(ctx, stored.ID, meta))
	return stored.ID
}

func TestTableService_Render_Empty(t *testing.T) {
	svc := newTableService(memory.NewAssetMemory(), nil)

	table, err := svc.Render(context.Background(), TableFilter{})

	require.NoError(t, err)
	assert.Empty(t, table.Rows)
	assert.Equal(t, NoAssetsMessage, table.Placeholder)
	assert.Equal(t, Columns, table.Columns)
	assert.Len(t, table.Columns, 9)
	assert.Equal(t, DefaultLimit, table.Limit)
}

func TestTableService_Render_ClampsLimit(t *testing.T) {
	tests := []struct {
		in   int
		want int
	}{
		{0, 50},
		{-5, 1},
		{1, 1},
		{120, 120},
		{1000, 200},
	}

	for _, tt := range tests {
		mRepo := new(repoMocks.MockAssetRepository)
		mRepo.On("List", mock.Anything, repository.AssetQuery{Limit: tt.want}).Return([]model.Asset{}, nil).Once()

		table, err := newTableService(mRepo, nil).Render(context.Background(), TableFilter{Limit: tt.in})

		require.NoError(t, err)
		assert.Equal(t, tt.want, table.Limit)
		mRepo.AssertExpectations(t)
	}
}

func TestTableService_Render_LanguageFilter(t *testing.T) {
	mRepo := new(repoMocks.MockAssetRepository)
	mRepo.On("List", mock.Anything, repository.AssetQuery{
		Limit:     DefaultLimit,
		MetaKey:   "_aiav_language",
		MetaValue: "ar",
	}).Return([]model.Asset{}, nil).Once()

	_, err := newTableService(mRepo, nil).Render(context.Background(), TableFilter{Language: "<AR>"})

	require.NoError(t, err)
	mRepo.AssertExpectations(t)
}

func TestTableService_Render_ListError(t *testing.T) {
	mRepo := new(repoMocks.MockAssetRepository)
	mRepo.On("List", mock.Anything, mock.Anything).Return(nil, errors.New("connection reset"))

	table, err := newTableService(mRepo, nil).Render(context.Background(), TableFilter{})

	assert.Nil(t, table)
	assert.ErrorContains(t, err, "connection reset")
}

func TestTableService_Render_Rows(t *testing.T) {
	repo := memory.NewAssetMemory()
	created := time.Date(2026, 3, 4, 23, 15, 0, 0, time.UTC)

	older := seed(t, repo, model.Asset{Title: "Canon EOS R5", CreatedAt: created.Add(-time.Hour)}, map[string]string{
		"_aiav_brand":          "Canon",
		"_aiav_model":          "EOS R5",
		"_aiav_category":       "Camera",
		"_aiav_specs":          "45MP",
		"_aiav_currency":       "USD",
		"_aiav_language":       "en",
		"_aiav_confidence":     "0.87",
		"_aiav_price_low_usd":  "100",
		"_aiav_price_high_usd": "200",
	})
	newer := seed(t, repo, model.Asset{CreatedAt: created}, map[string]string{
		"_aiav_currency":      "GBP",
		"_aiav_valuation_gbp": "£1,200 (est.)",
		"_aiav_price_low_gbp": "1000",
	})

	table, err := newTableService(repo, nil).Render(context.Background(), TableFilter{})
	require.NoError(t, err)
	require.Len(t, table.Rows, 2)
	assert.Empty(t, table.Placeholder)

	first := table.Rows[0]
	assert.Equal(t, newer, first.ID)
	assert.Equal(t, DefaultTitle, first.Title)
	assert.Equal(t, "£1,200 (est.)", first.Valuation, "stored valuation wins over the range")
	assert.Equal(t, NoConfidence, first.Confidence)
	assert.Equal(t, "en", first.Language)
	assert.Empty(t, first.ThumbnailURL)

	second := table.Rows[1]
	assert.Equal(t, older, second.ID)
	assert.Equal(t, "Canon EOS R5", second.Title)
	assert.Equal(t, "Camera", second.Category)
	assert.Equal(t, "Canon", second.Brand)
	assert.Equal(t, "EOS R5", second.Model)
	assert.Equal(t, "45MP", second.Specs)
	assert.Equal(t, "$100.00 – $200.00", second.Valuation)
	assert.Equal(t, "87.0%", second.Confidence)
	assert.Equal(t, "March 4, 2026", second.Date)
	assert.Equal(t, "USD", second.Currency)
}

func TestTableService_Render_CurrencyOverride(t *testing.T) {
	repo := memory.NewAssetMemory()
	seed(t, repo, model.Asset{Title: "Lens"}, map[string]string{
		"_aiav_currency":       "USD",
		"_aiav_price_low_usd":  "100",
		"_aiav_price_high_eur": "90",
	})

	table, err := newTableService(repo, nil).Render(context.Background(), TableFilter{Currency: "eur"})
	require.NoError(t, err)
	require.Len(t, table.Rows, 1)

	assert.Equal(t, "EUR", table.Rows[0].Currency)
	assert.Equal(t, "€90.00", table.Rows[0].Valuation)
}

func TestTableService_Render_NoPriceForCurrency(t *testing.T) {
	repo := memory.NewAssetMemory()
	seed(t, repo, model.Asset{Title: "Lens"}, map[string]string{"_aiav_price_low_usd": "100"})

	table, err := newTableService(repo, nil).Render(context.Background(), TableFilter{})
	require.NoError(t, err)
	require.Len(t, table.Rows, 1)

	assert.Equal(t, "GBP", table.Rows[0].Currency)
	assert.Empty(t, table.Rows[0].Valuation)
}

func TestTableService_Render_Thumbnail(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewAssetMemory()
	mStore := new(storeMocks.MockStorage)

	withThumb := func(title, path string) {
		id := seed(t, repo, model.Asset{Title: title}, map[string]string{})
		att, err := repo.AddAttachment(ctx, &model.Attachment{ID: title + "-att", AssetID: id, StoragePath: path})
		require.NoError(t, err)
		require.NoError(t, repo.SetThumbnail(ctx, id, att.ID))
	}
	withThumb("ok", "assets/ok.png")
	withThumb("broken", "assets/broken.png")

	mStore.On("PresignGet", mock.Anything, "assets/ok.png", 30*time.Minute).Return("https://cdn.example/ok.png?sig=1", nil)
	mStore.On("PresignGet", mock.Anything, "assets/broken.png", 30*time.Minute).Return("", errors.New("signer down"))

	san := newSanitizer()
	svc := NewTableService(repo, mStore, san, money.New(san, money.StrategySymbol), WithThumbnailTTL(30*time.Minute))
	table, err := svc.Render(ctx, TableFilter{})
	require.NoError(t, err)

	urls := map[string]string{}
	for _, r := range table.Rows {
		urls[r.Title] = r.ThumbnailURL
	}
	assert.Equal(t, "https://cdn.example/ok.png?sig=1", urls["ok"])
	assert.Equal(t, "", urls["broken"])
	mStore.AssertExpectations(t)
}

func TestConfidenceDisplay(t *testing.T) {
	tests := map[string]string{
		"":      NoConfidence,
		"  ":    NoConfidence,
		"0.87":  "87.0%",
		"1":     "100.0%",
		"87":    "87.0%",
		"87.26": "87.3%",
		"0":     "0",
		"-1":    "-1",
		"high":  "high",
	}
	for in, want := range tests {
		assert.Equal(t, want, ConfidenceDisplay(in), "input %q", in)
	}
}
