package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCategoryFor(t *testing.T) {
	tests := []struct {
		mimeType string
		want     Category
	}{
		{"video/mp4", CategoryVideos},
		{"VIDEO/QuickTime", CategoryVideos},
		{"audio/mpeg", CategoryAudio},
		{"image/png", CategoryImages},
		{" image/webp", CategoryImages},
		{"application/pdf", CategoryDocuments},
		{"text/plain", CategoryDocuments},
		{"", CategoryDocuments},
		{"videos", CategoryDocuments},
	}

	for _, tt := range tests {
		t.Run(tt.mimeType, func(t *testing.T) {
			assert.Equal(t, tt.want, CategoryFor(tt.mimeType))
		})
	}
}

func TestCategoriesOrder(t *testing.T) {
	assert.Equal(t, []Category{CategoryVideos, CategoryAudio, CategoryImages, CategoryDocuments}, Categories())
}
