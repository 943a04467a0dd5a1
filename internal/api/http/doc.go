// Package http exposes the storage router to the shell front-end over gin.
//
// Routes:
//
//	GET    /health                 liveness and native capability
//	GET    /storage/capability     CapabilityCheck
//	GET    /storage/policy?size=N  ShouldUseNativeStorage
//	POST   /storage/files          SaveFile (multipart "file", optional "source_path")
//	DELETE /storage/files?uri=     DeleteFile, always 204
//	GET    /storage/url?uri=       ResolvePlaybackURL
//	GET    /storage/stats          GetStorageStatistics
//	GET    /storage/entries        ListStorageEntries
//	GET    /storage/session/:id    bytes of an ephemeral handle, with range support
//
// Responses use the {"success": bool, "error": string} envelope.
package http
