// Package bridge defines the native storage bridge used by the storage router.
//
// The bridge is the only way the backend touches on-device storage. Its
// operations mirror the host shell's filesystem plugin: copy, writeFile,
// appendFile, getUri, readdir, stat, deleteFile, convertFileSrc and
// isNativePlatform. Payloads for writeFile and appendFile are base64 encoded.
//
// Implementations:
//   - LocalBridge: emulates the device filesystem on an afero.Fs
//   - RemoteBridge: forwards calls to a native shell over loopback HTTP
//   - Disabled: browser-only mode, no native capability
//
// Example Usage:
//
//	b := bridge.NewLocalBridge(afero.NewOsFs(), bridge.LocalConfig{DataDir: "/var/lib/aurora"})
//	err := b.WriteFile(ctx, bridge.WriteOptions{
//	    Path:      "aurora-files/videos/1700000000000_k3x9qa.mp4",
//	    Data:      bridge.EncodeChunk(chunk),
//	    Directory: bridge.DirectoryData,
//	    Recursive: true,
//	})
package bridge
