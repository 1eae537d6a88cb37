// Package validation classifies uploads by filename extension and enforces the
// per-category and global size ceilings. Everything here is a pure function of
// its inputs and the static Limits it was built with.
package validation

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/dmitrijs2005/mediaupload/internal/common"
	"github.com/gabriel-vasile/mimetype"
)

// Category is the content family an upload belongs to.
type Category string

const (
	CategoryVideo Category = "video"
	CategoryAudio Category = "audio"
	CategoryImage Category = "image"
	CategoryText  Category = "text"
)

// extensions is the fixed classification table. Keys are lower-case and
// include the leading dot, as returned by filepath.Ext.
var extensions = map[Category][]string{
	CategoryVideo: {".mp4", ".mov", ".avi", ".mkv"},
	CategoryAudio: {".mp3", ".wav", ".m4a", ".flac"},
	CategoryImage: {".jpg", ".jpeg", ".png", ".webp", ".tiff"},
	CategoryText:  {".txt", ".md", ".html", ".json"},
}

// Limits holds the byte ceilings. A category missing from PerCategory is
// bounded by Global only.
type Limits struct {
	Global      int64
	PerCategory map[Category]int64
}

// DefaultLimits returns the stock ceilings: video 10 GiB, audio 2 GiB,
// image 100 MiB, text 500 MiB, 10 GiB overall.
func DefaultLimits() Limits {
	return Limits{
		Global: 10 * common.GiB,
		PerCategory: map[Category]int64{
			CategoryVideo: 10 * common.GiB,
			CategoryAudio: 2 * common.GiB,
			CategoryImage: 100 * common.MiB,
			CategoryText:  500 * common.MiB,
		},
	}
}

type Validator struct {
	limits Limits
	byExt  map[string]Category
}

func New(limits Limits) *Validator {
	byExt := make(map[string]Category)
	for category, exts := range extensions {
		for _, ext := range exts {
			byExt[ext] = category
		}
	}
	return &Validator{limits: limits, byExt: byExt}
}

// extension returns the lower-cased extension of filename. A name that is
// nothing but an extension, such as ".mp4", is a dotfile and has none.
func extension(filename string) string {
	ext := filepath.Ext(filename)
	if strings.TrimSuffix(filepath.Base(filename), ext) == "" {
		return ""
	}
	return strings.ToLower(ext)
}

// Classify returns the category for filename's extension. Unknown extensions
// fail with common.ErrUnsupportedType naming the extension.
func (v *Validator) Classify(filename string) (Category, error) {
	ext := extension(filename)
	if category, ok := v.byExt[ext]; ok {
		return category, nil
	}
	if ext == "" {
		return "", fmt.Errorf("%w: %q has no extension", common.ErrUnsupportedType, filename)
	}
	return "", fmt.Errorf("%w: %s", common.ErrUnsupportedType, ext)
}

// CheckSize passes iff size <= min(category ceiling, global ceiling).
// An empty or unknown category is bounded by the global ceiling alone.
func (v *Validator) CheckSize(size int64, category Category) error {
	if limit, ok := v.limits.PerCategory[category]; ok && size > limit {
		return fmt.Errorf("%w for %s: %d bytes (limit %d bytes)", common.ErrSizeExceeded, category, size, limit)
	}
	if size > v.limits.Global {
		return fmt.Errorf("%w: %d bytes (global limit %d bytes)", common.ErrSizeExceeded, size, v.limits.Global)
	}
	return nil
}

// Validate classifies filename and checks size against the resulting category.
func (v *Validator) Validate(filename string, size int64) (Category, error) {
	category, err := v.Classify(filename)
	if err != nil {
		return "", err
	}
	if err := v.CheckSize(size, category); err != nil {
		return "", err
	}
	return category, nil
}

// ContentTypeHint returns a warning when the registry's canonical extension
// for the declared content type disagrees with filename, or when the type is
// unregistered and the extension is not one we classify either. It never
// rejects anything; callers log the hint. An empty string means nothing
// looked off.
func (v *Validator) ContentTypeHint(filename, contentType string) string {
	ext := extension(filename)
	declared, known := v.byExt[ext]

	m := mimetype.Lookup(contentType)
	if m == nil {
		// The registry lacks some types we accept, e.g. text/markdown.
		if known {
			return ""
		}
		return fmt.Sprintf("content type %q is not a recognised MIME type", contentType)
	}
	if !known {
		return ""
	}
	canonical, ok := v.byExt[m.Extension()]
	if ok && canonical != declared {
		return fmt.Sprintf("content type %q looks like %s but %s is classified as %s", contentType, canonical, ext, declared)
	}
	return ""
}
