package storage

import "strings"

// CategoryFor maps a MIME type to its category by case-insensitive prefix.
// Anything unrecognized, including an empty type, is a document.
func CategoryFor(mimeType string) Category {
	mt := strings.ToLower(strings.TrimSpace(mimeType))
	switch {
	case strings.HasPrefix(mt, "video/"):
		return CategoryVideos
	case strings.HasPrefix(mt, "audio/"):
		return CategoryAudio
	case strings.HasPrefix(mt, "image/"):
		return CategoryImages
	default:
		return CategoryDocuments
	}
}
