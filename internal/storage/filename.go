package storage

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/auroraos/backend/internal/shared/id"
)

const (
	randomSuffixLen  = 6
	defaultExtension = "bin"
)

var extPattern = regexp.MustCompile(`^\w+$`)

// extension returns the text after the last dot of name, or "bin"
func extension(name string) string {
	i := strings.LastIndexByte(name, '.')
	if i < 0 {
		return defaultExtension
	}
	ext := name[i+1:]
	if !extPattern.MatchString(ext) {
		return defaultExtension
	}
	return ext
}

// generateFilename builds {unixMillis}_{base36x6}.{ext}
func generateFilename(name string, now time.Time, gen *id.Generator) (string, error) {
	suffix, err := gen.RandomBase36(randomSuffixLen)
	if err != nil {
		return "", fmt.Errorf("generate filename: %w", err)
	}
	return fmt.Sprintf("%d_%s.%s", now.UnixMilli(), suffix, extension(name)), nil
}
