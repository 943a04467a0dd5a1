// Package paths provides the on-device storage layout.
//
// The layout is the on-disk contract with previously stored files and must
// not change. All managed paths are relative to the bridge's DATA directory.
//
// # Directory Structure
//
//	aurora-files/
//	  ├── videos/
//	  ├── audio/
//	  ├── images/
//	  └── documents/
//
// # Usage
//
//	import "github.com/auroraos/backend/internal/shared/paths"
//
//	dir := paths.CategoryDir(paths.Videos)          // aurora-files/videos
//	p := paths.Managed(paths.Videos, "1700000000000_k3x9qa.mp4")
//
//	// root is the platform URI of aurora-files in DATA
//	if rel, ok := paths.RelativeFromURI(uri, root); ok {
//	    // rel is inside this app's managed namespace
//	}
package paths
