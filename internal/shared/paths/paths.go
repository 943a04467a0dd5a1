package paths

import (
	"net/url"
	"path"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Root is the managed storage root inside the DATA directory.
const Root = "aurora-files"

// Category subdirectories
const (
	Videos    = "videos"
	Audio     = "audio"
	Images    = "images"
	Documents = "documents"
)

// managedPattern matches exactly one generated file under one category.
const managedPattern = Root + "/{" + Videos + "," + Audio + "," + Images + "," + Documents + "}/*"

// CategoryDirs returns the fixed category directory names in scan order.
func CategoryDirs() []string {
	return []string{Videos, Audio, Images, Documents}
}

// CategoryDir returns the managed directory for a category.
func CategoryDir(category string) string {
	return path.Join(Root, category)
}

// Managed returns the managed path of a file within a category.
func Managed(category, filename string) string {
	return path.Join(Root, category, filename)
}

// IsManaged reports whether rel has the shape <root>/<category>/<file>.
func IsManaged(rel string) bool {
	if rel == "" || path.Clean(rel) != rel {
		return false
	}
	name := path.Base(rel)
	if name == "." || name == ".." {
		return false
	}
	ok, err := doublestar.Match(managedPattern, rel)
	return err == nil && ok
}

// RelativeFromURI extracts the managed relative path from a platform URI
// such as file:///data/user/0/app/files/aurora-files/videos/x.mp4.
// rootURI is the platform URI of Root itself; uri must sit directly under it.
// It returns false when the URI does not point into the managed namespace.
func RelativeFromURI(uri, rootURI string) (string, bool) {
	uri = normalizeURI(uri)
	rootURI = strings.TrimSuffix(normalizeURI(rootURI), "/")
	if rootURI == "" {
		return "", false
	}

	rest, ok := strings.CutPrefix(uri, rootURI+"/")
	if !ok {
		return "", false
	}

	rel := Root + "/" + rest
	if !IsManaged(rel) {
		return "", false
	}
	return rel, true
}

func normalizeURI(uri string) string {
	if i := strings.IndexAny(uri, "?#"); i >= 0 {
		uri = uri[:i]
	}
	if unescaped, err := url.PathUnescape(uri); err == nil {
		uri = unescaped
	}
	return uri
}
