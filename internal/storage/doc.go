/*
Package storage routes file saves between ephemeral session memory and
native on-device storage.

A Router is built around a bridge.Bridge. When the bridge reports native
capability, saves land under the DATA directory at

	aurora-files/{videos,audio,images,documents}/{unixMillis}_{base36x6}.{ext}

either by a native copy from a source path (retried once with implicit
directory resolution) or by a chunked create-then-append write of base64
chunks. Without native capability a save produces an ephemeral handle
(blob:aurora/<ulid>) that lives until it is deleted or the router is closed.

# Usage

	router := storage.New(bridge.NewLocalBridge(afero.NewOsFs(), cfg), storage.Options{
		Logger:  logger,
		Metrics: metrics,
	})
	defer router.Close()

	ref, err := router.SaveFile(ctx, storage.File{
		Name:     "clip.mp4",
		Size:     size,
		MimeType: "video/mp4",
		Content:  f,
	})
	if err != nil {
		return err
	}
	url := router.ResolvePlaybackURL(ref.URI)

ShouldUseNativeStorage is advisory: SaveFile never consults the threshold.
*/
package storage
