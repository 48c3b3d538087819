package service

import (
	"errors"

	"assetvaluer/internal/imagedata"
)

var (
	ErrInvalidPayload          = errors.New("payload must be a JSON object")
	ErrMissingImage            = errors.New("image is required")
	ErrRecordCreationFailed    = errors.New("record creation failed")
	ErrAttachmentStorageFailed = errors.New("attachment storage failed")
	ErrIDRequired              = errors.New("id is required")
	ErrNotFound                = errors.New("asset not found")
)

// Machine-readable error kinds.
const (
	KindInvalidPayload          = "INVALID_PAYLOAD"
	KindMissingImage            = "MISSING_IMAGE"
	KindInvalidImageFormat      = "INVALID_IMAGE_FORMAT"
	KindUnsupportedImageType    = "UNSUPPORTED_IMAGE_TYPE"
	KindInvalidImageData        = "INVALID_IMAGE_DATA"
	KindRecordCreationFailed    = "RECORD_CREATION_FAILED"
	KindAttachmentStorageFailed = "ATTACHMENT_STORAGE_FAILED"
	KindNotFound                = "NOT_FOUND"
	KindInternal                = "INTERNAL_ERROR"
)

var kinds = []struct {
	err  error
	kind string
}{
	{ErrInvalidPayload, KindInvalidPayload},
	{ErrMissingImage, KindMissingImage},
	{imagedata.ErrInvalidImageFormat, KindInvalidImageFormat},
	{imagedata.ErrUnsupportedImageType, KindUnsupportedImageType},
	{imagedata.ErrInvalidImageData, KindInvalidImageData},
	{ErrRecordCreationFailed, KindRecordCreationFailed},
	{ErrAttachmentStorageFailed, KindAttachmentStorageFailed},
	{ErrNotFound, KindNotFound},
}

// Kind classifies err into one of the Kind* codes.
func Kind(err error) string {
	for _, k := range kinds {
		if errors.Is(err, k.err) {
			return k.kind
		}
	}
	return KindInternal
}
