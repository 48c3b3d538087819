// Package imagedata decodes base64 data-URL images captured by the valuation widget.
package imagedata

import (
	"encoding/base64"
	"errors"
	"regexp"
	"strings"
)

var (
	ErrInvalidImageFormat   = errors.New("image is not a base64 data URL")
	ErrUnsupportedImageType = errors.New("unsupported image type")
	ErrInvalidImageData     = errors.New("image data is not valid base64")
)

var (
	dataURL       = regexp.MustCompile(`(?s)^data:image/([A-Za-z0-9.+-]+);base64,(.*)$`)
	base64Payload = regexp.MustCompile(`^[A-Za-z0-9+/]*={0,2}$`)
)

// allowed maps an accepted format to its normalized extension.
var allowed = map[string]string{
	"jpg":  "jpg",
	"jpeg": "jpg",
	"png":  "png",
	"gif":  "gif",
	"webp": "webp",
}

var contentTypes = map[string]string{
	"jpg":  "image/jpeg",
	"png":  "image/png",
	"gif":  "image/gif",
	"webp": "image/webp",
}

// Image is a decoded image ready to be stored.
type Image struct {
	Data        []byte
	Extension   string
	ContentType string
}

// Size returns the number of decoded bytes.
func (i *Image) Size() int64 { return int64(len(i.Data)) }

// Decode parses a data:image/<format>;base64,<payload> string. Payloads are decoded
// strictly: any byte outside the base64 alphabet, including whitespace, is rejected.
func Decode(s string) (*Image, error) {
	m := dataURL.FindStringSubmatch(s)
	if m == nil {
		return nil, ErrInvalidImageFormat
	}

	ext, ok := allowed[strings.ToLower(m[1])]
	if !ok {
		return nil, ErrUnsupportedImageType
	}

	payload := m[2]
	if payload == "" || !base64Payload.MatchString(payload) {
		return nil, ErrInvalidImageData
	}
	data, err := base64.StdEncoding.Strict().DecodeString(payload)
	if err != nil || len(data) == 0 {
		return nil, ErrInvalidImageData
	}

	return &Image{
		Data:        data,
		Extension:   ext,
		ContentType: contentTypes[ext],
	}, nil
}
