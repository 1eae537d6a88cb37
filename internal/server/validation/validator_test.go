package validation

import (
	"testing"

	"github.com/dmitrijs2005/mediaupload/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify_KnownExtensions(t *testing.T) {
	v := New(DefaultLimits())

	for category, exts := range extensions {
		for _, ext := range exts {
			t.Run(ext, func(t *testing.T) {
				got, err := v.Classify("file" + ext)
				require.NoError(t, err)
				assert.Equal(t, category, got)
			})
		}
	}
}

func TestClassify_CaseInsensitive(t *testing.T) {
	v := New(DefaultLimits())

	got, err := v.Classify("HOLIDAY.MP4")
	require.NoError(t, err)
	assert.Equal(t, CategoryVideo, got)

	got, err = v.Classify("scan.Tiff")
	require.NoError(t, err)
	assert.Equal(t, CategoryImage, got)
}

func TestClassify_Unsupported(t *testing.T) {
	v := New(DefaultLimits())

	tests := []struct {
		filename string
		mention  string
	}{
		{"malicious.exe", ".exe"},
		{"archive.tar.gz", ".gz"},
		{"notes.DOCX", ".docx"},
		{"README", "no extension"},
		{".mp4", "no extension"},
		{".MP3", "no extension"},
	}
	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			_, err := v.Classify(tt.filename)
			require.ErrorIs(t, err, common.ErrUnsupportedType)
			assert.Contains(t, err.Error(), tt.mention)
		})
	}
}

func TestCheckSize(t *testing.T) {
	v := New(DefaultLimits())

	tests := []struct {
		name     string
		size     int64
		category Category
		wantErr  bool
	}{
		{"image at limit", 100 * common.MiB, CategoryImage, false},
		{"image over limit", 100*common.MiB + 1, CategoryImage, true},
		{"audio under limit", 2*common.GiB - 1, CategoryAudio, false},
		{"audio over limit", 2*common.GiB + 1, CategoryAudio, true},
		{"text over limit", 500*common.MiB + 1, CategoryText, true},
		{"video at global limit", 10 * common.GiB, CategoryVideo, false},
		{"video over global limit", 10*common.GiB + 1, CategoryVideo, true},
		{"unknown category uses global", 9 * common.GiB, "", false},
		{"unknown category over global", 10*common.GiB + 1, "", true},
		{"zero bytes", 0, CategoryText, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.CheckSize(tt.size, tt.category)
			if tt.wantErr {
				require.ErrorIs(t, err, common.ErrSizeExceeded)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestCheckSize_GlobalBelowCategory(t *testing.T) {
	limits := DefaultLimits()
	limits.Global = 1 * common.GiB
	v := New(limits)

	// video allows 10 GiB but the global ceiling is tighter
	err := v.CheckSize(2*common.GiB, CategoryVideo)
	require.ErrorIs(t, err, common.ErrSizeExceeded)
	assert.Contains(t, err.Error(), "global")
}

func TestCheckSize_IsMinOfCeilings(t *testing.T) {
	v := New(DefaultLimits())
	limits := DefaultLimits()

	sizes := []int64{0, 1, common.MiB, 100*common.MiB - 1, 100 * common.MiB, 100*common.MiB + 1,
		500 * common.MiB, 2 * common.GiB, 10 * common.GiB, 10*common.GiB + 1}

	for category, ceiling := range limits.PerCategory {
		bound := min(ceiling, limits.Global)
		for _, size := range sizes {
			err := v.CheckSize(size, category)
			assert.Equal(t, size <= bound, err == nil, "category=%s size=%d", category, size)
		}
	}
}

func TestValidate(t *testing.T) {
	v := New(DefaultLimits())

	category, err := v.Validate("v1.mp4", 100)
	require.NoError(t, err)
	assert.Equal(t, CategoryVideo, category)

	_, err = v.Validate("huge_image.png", common.GiB)
	require.ErrorIs(t, err, common.ErrSizeExceeded)
	assert.Contains(t, err.Error(), "image")

	_, err = v.Validate("malicious.exe", 1)
	require.ErrorIs(t, err, common.ErrUnsupportedType)
	assert.Contains(t, err.Error(), ".exe")
}

func TestContentTypeHint(t *testing.T) {
	v := New(DefaultLimits())

	assert.Empty(t, v.ContentTypeHint("v1.mp4", "video/mp4"))
	assert.Empty(t, v.ContentTypeHint("photo.jpg", "image/jpeg"))
	assert.Contains(t, v.ContentTypeHint("v1.mp4", "image/png"), "image")
}

func TestContentTypeHint_UnregisteredType(t *testing.T) {
	v := New(DefaultLimits())

	assert.Empty(t, v.ContentTypeHint("notes.md", "made/up"), "known extension stays quiet")
	assert.Empty(t, v.ContentTypeHint("v1.mp4", "made/up"))
	assert.Contains(t, v.ContentTypeHint("blob.bin", "made/up"), "not a recognised MIME type")
	assert.Contains(t, v.ContentTypeHint(".md", "made/up"), "not a recognised MIME type")
}
