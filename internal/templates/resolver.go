// Package templates resolves the static widget markup for a language.
package templates

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
)

// ErrNoTemplate is returned when no markup is registered for a language.
var ErrNoTemplate = errors.New("no template for language")

//go:embed widgets/*.html
var widgets embed.FS

// DefaultFiles maps the supported languages to their bundled markup.
var DefaultFiles = map[string]string{
	"en": "widgets/camera-ai-asset-valuer-english.html",
	"ar": "widgets/camera-ai-asset-valuer-arabic.html",
}

// Resolver maps a language code to widget markup.
type Resolver interface {
	Resolve(language string) ([]byte, error)
}

// FSResolver reads markup files from a filesystem.
type FSResolver struct {
	fsys  fs.FS
	files map[string]string
}

// NewFSResolver returns a resolver reading files out of fsys. The map is copied.
func NewFSResolver(fsys fs.FS, files map[string]string) *FSResolver {
	m := make(map[string]string, len(files))
	for k, v := range files {
		m[k] = v
	}
	return &FSResolver{fsys: fsys, files: m}
}

// Embedded returns the resolver over the bundled markup.
func Embedded() *FSResolver {
	return NewFSResolver(widgets, DefaultFiles)
}

func (r *FSResolver) Resolve(language string) ([]byte, error) {
	name, ok := r.files[language]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNoTemplate, language)
	}
	b, err := fs.ReadFile(r.fsys, name)
	if err != nil {
		return nil, fmt.Errorf("read template %s: %w", name, err)
	}
	return b, nil
}
