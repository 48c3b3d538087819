package service

import (
	"context"
	"encoding/base64"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"assetvaluer/internal/imagedata"
	"assetvaluer/internal/locale"
	"assetvaluer/internal/model"
	"assetvaluer/internal/repository"
	"assetvaluer/internal/repository/memory"
	repoMocks "assetvaluer/internal/repository/mocks"
	"assetvaluer/internal/sanitize"
	"assetvaluer/internal/storage"
	storeMocks "assetvaluer/internal/storage/mocks"
)

var (
	pngBytes   = []byte{0x89, 'P', 'N', 'G', 0x0d, 0x0a, 0x1a, 0x0a}
	pngDataURL = "data:image/png;base64," + base64.StdEncoding.EncodeToString(pngBytes)
	fixedNow   = time.Date(2026, 3, 4, 10, 30, 0, 0, time.UTC)
)

func newSanitizer() *sanitize.Sanitizer {
	return sanitize.New(locale.Default())
}

// putEchoesKey makes a MockStorage Put succeed and report the key it was given.
func putEchoesKey(mStore *storeMocks.MockStorage) *mock.Call {
	return mStore.On("Put", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(func(_ context.Context, key string, _ io.Reader, opt storage.PutObjectOptions) storage.ObjectInfo {
			return storage.ObjectInfo{Key: key, Size: opt.Size, ContentType: opt.ContentType}
		}, nil)
}

func TestAssetService_Save_HappyPath(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewAssetMemory()
	mStore := new(storeMocks.MockStorage)
	putEchoesKey(mStore).Once()

	svc := NewAssetService(mStore, repo, newSanitizer(), WithClock(func() time.Time { return fixedNow }))

	res, err := svc.Save(ctx, map[string]any{
		"image":      pngDataURL,
		"brand":      "Canon",
		"model":      "EOS R5",
		"category":   "Camera",
		"specs":      "45MP sensor\n\n8K video",
		"notes":      "Boxed",
		"currency":   "usd",
		"language":   "en",
		"confidence": 0.87,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, res.ID)
	assert.NotEmpty(t, res.AttachmentRef)

	a, err := repo.FindByID(ctx, res.ID)
	require.NoError(t, err)
	assert.Equal(t, "Canon EOS R5", a.Title)
	assert.Equal(t, "<p>45MP sensor</p>\n<p>8K video</p>\n", a.Body)
	assert.Equal(t, "Boxed", a.Excerpt)
	assert.Equal(t, fixedNow, a.CreatedAt)
	assert.Equal(t, "USD", a.Meta["_aiav_currency"])
	assert.Equal(t, "0.87", a.Meta["_aiav_confidence"])
	require.NotNil(t, a.Thumbnail)
	assert.Equal(t, res.AttachmentRef, a.Thumbnail.ID)
	assert.True(t, strings.HasPrefix(a.Thumbnail.StoragePath, "assets/"))
	assert.True(t, strings.HasSuffix(a.Thumbnail.StoragePath, ".png"))
	assert.Equal(t, "image/png", a.Thumbnail.ContentType)
	assert.Equal(t, int64(len(pngBytes)), a.Thumbnail.Size)

	mStore.AssertExpectations(t)
}

func TestAssetService_Save_ValidationHappensBeforeMutation(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		payload map[string]any
		wantErr error
	}{
		{"nil payload", nil, ErrInvalidPayload},
		{"missing image", map[string]any{"brand": "Canon"}, ErrMissingImage},
		{"empty image", map[string]any{"image": "  "}, ErrMissingImage},
		{"non-string image", map[string]any{"image": 42}, ErrMissingImage},
		{"not a data url", map[string]any{"image": "hello"}, imagedata.ErrInvalidImageFormat},
		{"unsupported type", map[string]any{"image": "data:image/bmp;base64,AAAA"}, imagedata.ErrUnsupportedImageType},
		{"bad base64", map[string]any{"image": "data:image/png;base64,@@@"}, imagedata.ErrInvalidImageData},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := memory.NewAssetMemory()
			mStore := new(storeMocks.MockStorage)
			svc := NewAssetService(mStore, repo, newSanitizer())

			res, err := svc.Save(ctx, tt.payload)

			assert.ErrorIs(t, err, tt.wantErr)
			assert.Nil(t, res)
			assert.Equal(t, 0, repo.Len())
			mStore.AssertNotCalled(t, "Put", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestAssetService_Save_RecordCreationFailed(t *testing.T) {
	mRepo := new(repoMocks.MockAssetRepository)
	mStore := new(storeMocks.MockStorage)
	mRepo.On("Create", mock.Anything, mock.Anything).Return(nil, errors.New("duplicate key value violates unique constraint"))

	svc := NewAssetService(mStore, mRepo, newSanitizer())
	_, err := svc.Save(context.Background(), map[string]any{"image": pngDataURL})

	assert.ErrorIs(t, err, ErrRecordCreationFailed)
	assert.Contains(t, err.Error(), "duplicate key value violates unique constraint")
	assert.Equal(t, KindRecordCreationFailed, Kind(err))
	mRepo.AssertExpectations(t)
	mStore.AssertNotCalled(t, "Put", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestAssetService_Save_RollsBackWhenImageStorageFails(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewAssetMemory()
	mStore := new(storeMocks.MockStorage)
	mStore.On("Put", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(storage.ObjectInfo{}, errors.New("bucket unavailable"))

	svc := NewAssetService(mStore, repo, newSanitizer())
	res, err := svc.Save(ctx, map[string]any{"image": pngDataURL, "brand": "Canon"})

	assert.Nil(t, res)
	assert.ErrorIs(t, err, ErrAttachmentStorageFailed)
	assert.Contains(t, err.Error(), "bucket unavailable")
	assert.Equal(t, 0, repo.Len(), "record must not survive a failed image upload")

	all, err := repo.List(ctx, repository.AssetQuery{Limit: 10})
	require.NoError(t, err)
	assert.Empty(t, all)
	mStore.AssertExpectations(t)
}

func TestAssetService_Save_RollsBackUploadedObject(t *testing.T) {
	mRepo := new(repoMocks.MockAssetRepository)
	mStore := new(storeMocks.MockStorage)

	mRepo.On("Create", mock.Anything, mock.Anything).Return(&model.Asset{ID: "a1"}, nil)
	mRepo.On("SetMeta", mock.Anything, "a1", mock.Anything).Return(nil)
	putEchoesKey(mStore)
	mRepo.On("AddAttachment", mock.Anything, mock.Anything).Return(nil, errors.New("fk violation"))
	mStore.On("Delete", mock.Anything, mock.MatchedBy(func(key string) bool {
		return strings.HasPrefix(key, "assets/") && strings.HasSuffix(key, ".png")
	})).Return(errors.New("delete fail"))
	mRepo.On("Delete", mock.Anything, "a1").Return(nil)

	svc := NewAssetService(mStore, mRepo, newSanitizer())
	_, err := svc.Save(context.Background(), map[string]any{"image": pngDataURL})

	assert.ErrorIs(t, err, ErrAttachmentStorageFailed)
	assert.Contains(t, err.Error(), "fk violation")
	assert.NotContains(t, err.Error(), "delete fail", "rollback failures are not surfaced")
	mRepo.AssertExpectations(t)
	mStore.AssertExpectations(t)
}

func TestAssetService_Save_MetadataFailureRollsBack(t *testing.T) {
	mRepo := new(repoMocks.MockAssetRepository)
	mStore := new(storeMocks.MockStorage)

	mRepo.On("Create", mock.Anything, mock.Anything).Return(&model.Asset{ID: "a1"}, nil)
	mRepo.On("SetMeta", mock.Anything, "a1", mock.Anything).Return(errors.New("value too long"))
	mRepo.On("Delete", mock.Anything, "a1").Return(nil)

	svc := NewAssetService(mStore, mRepo, newSanitizer())
	_, err := svc.Save(context.Background(), map[string]any{"image": pngDataURL})

	assert.ErrorIs(t, err, ErrRecordCreationFailed)
	mRepo.AssertExpectations(t)
	mStore.AssertNotCalled(t, "Put", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestAssetService_Metadata(t *testing.T) {
	svc := NewAssetService(nil, nil, newSanitizer()).(*assetService)

	meta := svc.metadata(map[string]any{
		"image":           pngDataURL,
		"currency":        "e-u-r",
		"language":        "AR",
		"brand":           "<b>Nikon</b>",
		"model":           "Z8",
		"category":        "Camera",
		"specs":           "Line one\nLine <i>two</i>",
		"notes":           123,
		"confidence":      "87%",
		"price_low_USD":   "100",
		"price_low_usd":   "150",
		"PRICE_HIGH_usd":  250,
		"valuation_gbp":   "<script>x</script>£2,000",
		"price_high_eur":  map[string]any{"nested": true},
		"price_mid_usd":   "ignored",
		"unrelated_field": "ignored",
		"valuation_":      "ignored",
	})

	assert.Equal(t, map[string]string{
		"_aiav_currency":       "EUR",
		"_aiav_language":       "ar",
		"_aiav_brand":          "Nikon",
		"_aiav_model":          "Z8",
		"_aiav_category":       "Camera",
		"_aiav_specs":          "Line one\nLine two",
		"_aiav_notes":          "",
		"_aiav_confidence":     "87",
		"_aiav_price_low_usd":  "150",
		"_aiav_price_high_usd": "250",
		"_aiav_valuation_gbp":  "£2,000",
	}, meta)
}

func TestAssetService_Metadata_UnparseableConfidenceSkipped(t *testing.T) {
	svc := NewAssetService(nil, nil, newSanitizer(), WithMetaPrefix("_x_")).(*assetService)

	meta := svc.metadata(map[string]any{"confidence": "high", "currency": 7})

	assert.Equal(t, map[string]string{"_x_currency": "GBP"}, meta)
}

func TestAssetService_Title(t *testing.T) {
	svc := NewAssetService(nil, nil, newSanitizer()).(*assetService)

	assert.Equal(t, "Canon EOS", svc.title(map[string]any{"brand": "Canon", "model": "EOS", "category": "Camera"}))
	assert.Equal(t, "Canon", svc.title(map[string]any{"brand": "Canon"}))
	assert.Equal(t, "EOS", svc.title(map[string]any{"model": "EOS"}))
	assert.Equal(t, "Camera", svc.title(map[string]any{"category": "Camera"}))
	assert.Equal(t, DefaultTitle, svc.title(map[string]any{"brand": "   "}))
}

func TestAssetService_Get(t *testing.T) {
	ctx := context.Background()
	mRepo := new(repoMocks.MockAssetRepository)
	svc := NewAssetService(nil, mRepo, newSanitizer())

	_, err := svc.Get(ctx, "")
	assert.ErrorIs(t, err, ErrIDRequired)

	mRepo.On("FindByID", ctx, "missing").Return(nil, repository.ErrNotFound).Once()
	_, err = svc.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	mRepo.On("FindByID", ctx, "broken").Return(nil, errors.New("db fail")).Once()
	_, err = svc.Get(ctx, "broken")
	assert.EqualError(t, err, "db fail")

	mRepo.On("FindByID", ctx, "a1").Return(&model.Asset{ID: "a1"}, nil).Once()
	a, err := svc.Get(ctx, "a1")
	require.NoError(t, err)
	assert.Equal(t, "a1", a.ID)

	mRepo.AssertExpectations(t)
}

func TestAssetService_Image(t *testing.T) {
	ctx := context.Background()
	mRepo := new(repoMocks.MockAssetRepository)
	mStore := new(storeMocks.MockStorage)
	svc := NewAssetService(mStore, mRepo, newSanitizer())

	mRepo.On("FindByID", ctx, "bare").Return(&model.Asset{ID: "bare"}, nil).Once()
	_, _, err := svc.Image(ctx, "bare")
	assert.ErrorIs(t, err, ErrNotFound)

	body := io.NopCloser(strings.NewReader("png"))
	mRepo.On("FindByID", ctx, "a1").Return(&model.Asset{ID: "a1", Thumbnail: &model.Attachment{StoragePath: "assets/x.png"}}, nil).Once()
	mStore.On("Get", ctx, "assets/x.png").Return(body, storage.ObjectInfo{ContentType: "image/png"}, nil).Once()

	rc, info, err := svc.Image(ctx, "a1")
	require.NoError(t, err)
	assert.Equal(t, "image/png", info.ContentType)
	assert.NoError(t, rc.Close())

	mRepo.AssertExpectations(t)
	mStore.AssertExpectations(t)
}

func TestKind(t *testing.T) {
	assert.Equal(t, KindInvalidPayload, Kind(ErrInvalidPayload))
	assert.Equal(t, KindUnsupportedImageType, Kind(imagedata.ErrUnsupportedImageType))
	assert.Equal(t, KindAttachmentStorageFailed, Kind(errors.Join(ErrAttachmentStorageFailed, errors.New("x"))))
	assert.Equal(t, KindInternal, Kind(errors.New("other")))
}
