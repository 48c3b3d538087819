package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"assetvaluer/internal/imagedata"
	"assetvaluer/internal/logger"
	"assetvaluer/internal/metrics"
	"assetvaluer/internal/model"
	"assetvaluer/internal/repository"
	"assetvaluer/internal/sanitize"
	"assetvaluer/internal/storage"
)

// DefaultMetaPrefix namespaces metadata keys away from host-managed fields.
const DefaultMetaPrefix = "_aiav_"

// DefaultTitle is used when neither brand, model nor category is known.
const DefaultTitle = "Asset"

var tracer = otel.Tracer("assetvaluer/service")

// Metadata fields copied from the payload. Currency and language are normalized codes,
// specs and notes keep their line breaks.
var (
	codeFields      = []string{"currency", "language"}
	textFields      = []string{"category", "brand", "model"}
	multilineFields = []string{"specs", "notes"}
)

// SaveResult identifies a saved asset and its image attachment.
type SaveResult struct {
	ID            string `json:"id"`
	AttachmentRef string `json:"attachmentRef"`
}

// AssetService defines the asset ingestion use cases.
type AssetService interface {
	// Save validates payload, creates the asset record with its metadata and stores the
	// embedded image. A record whose image cannot be stored is deleted again.
	Save(ctx context.Context, payload map[string]any) (*SaveResult, error)

	// Get returns a saved asset by ID.
	Get(ctx context.Context, id string) (*model.Asset, error)

	// Image streams the asset's thumbnail image.
	Image(ctx context.Context, id string) (io.ReadCloser, storage.ObjectInfo, error)
}

// Option configures the services in this package.
type Option func(*options)

type options struct {
	prefix       string
	log          logger.Logger
	metrics      *metrics.AssetMetrics
	now          func() time.Time
	dateFormat   string
	location     *time.Location
	thumbnailTTL time.Duration
}

func buildOptions(opts []Option) options {
	o := options{
		prefix:       DefaultMetaPrefix,
		log:          logger.NewNop(),
		now:          time.Now,
		dateFormat:   "January 2, 2006",
		location:     time.UTC,
		thumbnailTTL: time.Hour,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithMetaPrefix overrides the metadata key namespace.
func WithMetaPrefix(prefix string) Option {
	return func(o *options) {
		if prefix != "" {
			o.prefix = prefix
		}
	}
}

func WithLogger(l logger.Logger) Option {
	return func(o *options) { o.log = l }
}

func WithMetrics(m *metrics.AssetMetrics) Option {
	return func(o *options) { o.metrics = m }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithDateFormat sets the Go time layout of the table's Date column.
func WithDateFormat(layout string) Option {
	return func(o *options) {
		if layout != "" {
			o.dateFormat = layout
		}
	}
}

// WithLocation sets the time zone dates are shown in.
func WithLocation(loc *time.Location) Option {
	return func(o *options) {
		if loc != nil {
			o.location = loc
		}
	}
}

// WithThumbnailTTL sets how long presigned thumbnail URLs stay valid.
func WithThumbnailTTL(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.thumbnailTTL = d
		}
	}
}

type assetService struct {
	store storage.Storage
	repo  repository.AssetRepository
	san   *sanitize.Sanitizer
	options
}

// NewAssetService constructs a new AssetService.
func NewAssetService(store storage.Storage, repo repository.AssetRepository, san *sanitize.Sanitizer, opts ...Option) AssetService {
	return &assetService{store: store, repo: repo, san: san, options: buildOptions(opts)}
}

func (s *assetService) Save(ctx context.Context, payload map[string]any) (res *SaveResult, err error) {
	ctx, span := tracer.Start(ctx, "AssetService.Save", trace.WithSpanKind(trace.SpanKindInternal))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			s.metrics.Failed(Kind(err))
		} else {
			s.metrics.Saved()
		}
		span.End()
	}()

	if payload == nil {
		return nil, ErrInvalidPayload
	}
	raw, _ := payload["image"].(string)
	if strings.TrimSpace(raw) == "" {
		return nil, ErrMissingImage
	}
	img, err := imagedata.Decode(raw)
	if err != nil {
		return nil, err
	}

	specs := s.san.MultilineText(payload["specs"])
	rec := &model.Asset{
		ID:        uuid.NewString(),
		Title:     s.title(payload),
		Body:      sanitize.Paragraphs(specs),
		Excerpt:   s.san.MultilineText(payload["notes"]),
		CreatedAt: s.now().UTC(),
	}
	stored, err := s.repo.Create(ctx, rec)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRecordCreationFailed, err)
	}
	span.SetAttributes(attribute.String("asset.id", stored.ID))

	if err := s.repo.SetMeta(ctx, stored.ID, s.metadata(payload)); err != nil {
		s.rollback(ctx, "metadata", stored.ID, "")
		return nil, fmt.Errorf("%w: %w", ErrRecordCreationFailed, err)
	}

	att, err := s.attach(ctx, stored.ID, img)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrAttachmentStorageFailed, err)
	}

	s.log.Info("asset saved",
		zap.String("asset_id", stored.ID),
		zap.String("attachment_id", att.ID),
		zap.Int64("size", att.Size),
	)
	return &SaveResult{ID: stored.ID, AttachmentRef: att.ID}, nil
}

// title prefers "brand model", then category, then DefaultTitle.
func (s *assetService) title(payload map[string]any) string {
	t := strings.TrimSpace(s.san.PlainText(payload["brand"]) + " " + s.san.PlainText(payload["model"]))
	if t == "" {
		t = s.san.PlainText(payload["category"])
	}
	if t == "" {
		t = DefaultTitle
	}
	return t
}

// metadata builds the namespaced entries for every recognized payload key. Dynamic price
// keys are visited in sorted order, so spellings differing only by case resolve to the
// lower-case one.
func (s *assetService) metadata(payload map[string]any) map[string]string {
	meta := map[string]string{}
	for _, k := range codeFields {
		v, ok := payload[k]
		if !ok {
			continue
		}
		str, _ := v.(string)
		if k == "currency" {
			meta[s.prefix+k] = s.san.Currency(str)
		} else {
			meta[s.prefix+k] = s.san.Language(str)
		}
	}
	for _, k := range textFields {
		if v, ok := payload[k]; ok {
			meta[s.prefix+k] = s.san.PlainText(v)
		}
	}
	for _, k := range multilineFields {
		if v, ok := payload[k]; ok {
			meta[s.prefix+k] = s.san.MultilineText(v)
		}
	}
	if v, ok := payload["confidence"]; ok {
		if c, ok := s.san.Number(v); ok {
			meta[s.prefix+"confidence"] = strconv.FormatFloat(c, 'f', -1, 64)
		}
	}

	keys := make([]string, 0, len(payload))
	for k := range payload {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if !model.PriceKey.MatchString(k) {
			continue
		}
		value, ok := scalar(payload[k])
		if !ok {
			continue
		}
		key := s.san.Key(k)
		if !model.PriceKey.MatchString(key) {
			continue
		}
		meta[s.prefix+key] = s.san.PlainText(value)
	}
	return meta
}

// scalar stringifies JSON scalars. Objects, arrays and null are rejected.
func scalar(v any) (string, bool) {
	switch x := v.(type) {
	case string:
		return x, true
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64), true
	case json.Number:
		return x.String(), true
	case int:
		return strconv.Itoa(x), true
	case bool:
		if x {
			return "1", true
		}
		return "", true
	default:
		return "", false
	}
}

// attach uploads the image under a unique name and links it as the asset thumbnail.
// Every failure rolls the asset back.
func (s *assetService) attach(ctx context.Context, assetID string, img *imagedata.Image) (*model.Attachment, error) {
	name := uuid.NewString() + "." + img.Extension
	key := path.Join("assets", name)

	info, err := s.store.Put(ctx, key, bytes.NewReader(img.Data), storage.PutObjectOptions{
		Size:        img.Size(),
		ContentType: img.ContentType,
		Metadata:    map[string]string{"asset-id": assetID},
	})
	if err != nil {
		s.rollback(ctx, "upload", assetID, "")
		return nil, fmt.Errorf("upload to storage: %w", err)
	}

	att, err := s.repo.AddAttachment(ctx, &model.Attachment{
		ID:          uuid.NewString(),
		AssetID:     assetID,
		Filename:    name,
		StoragePath: info.Key,
		Size:        img.Size(),
		ContentType: img.ContentType,
		CreatedAt:   s.now().UTC(),
	})
	if err != nil {
		s.rollback(ctx, "attachment", assetID, key)
		return nil, fmt.Errorf("save attachment: %w", err)
	}

	if err := s.repo.SetThumbnail(ctx, assetID, att.ID); err != nil {
		s.rollback(ctx, "thumbnail", assetID, key)
		return nil, fmt.Errorf("set thumbnail: %w", err)
	}
	return att, nil
}

// rollback deletes the uploaded object (when objectKey is set) and the asset record. It is
// best-effort: failures are logged and counted, never returned. It runs detached from the
// request's cancellation.
func (s *assetService) rollback(ctx context.Context, stage, assetID, objectKey string) {
	ctx = context.WithoutCancel(ctx)
	ok := true
	if objectKey != "" {
		if err := s.store.Delete(ctx, objectKey); err != nil {
			ok = false
			s.log.Error("rollback: delete object failed",
				zap.String("stage", stage), zap.String("asset_id", assetID), zap.String("key", objectKey), zap.Error(err))
		}
	}
	if err := s.repo.Delete(ctx, assetID); err != nil {
		ok = false
		s.log.Error("rollback: delete asset failed",
			zap.String("stage", stage), zap.String("asset_id", assetID), zap.Error(err))
	} else {
		s.log.Warn("asset rolled back", zap.String("stage", stage), zap.String("asset_id", assetID))
	}
	s.metrics.RolledBack(stage, ok)
}

func (s *assetService) Get(ctx context.Context, id string) (*model.Asset, error) {
	if id == "" {
		return nil, ErrIDRequired
	}
	a, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return a, nil
}

func (s *assetService) Image(ctx context.Context, id string) (io.ReadCloser, storage.ObjectInfo, error) {
	a, err := s.Get(ctx, id)
	if err != nil {
		return nil, storage.ObjectInfo{}, err
	}
	if a.Thumbnail == nil {
		return nil, storage.ObjectInfo{}, ErrNotFound
	}
	return s.store.Get(ctx, a.Thumbnail.StoragePath)
}
