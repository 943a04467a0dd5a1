// Package main is the entry point for the Aurora storage server.
//
// The server routes files from the desktop shell to the cheapest tier that
// can hold them: session memory in a browser, native device storage when a
// bridge is available.
//
//	Shell (WebView) → storage server → bridge (local dirs | remote shell | none)
//
// The server provides:
//   - Multipart uploads with size-based tier selection
//   - Chunked native writes and native copies
//   - Delete, playback URL resolution and usage statistics
//   - Prometheus metrics at /metrics
//
// Configuration:
//   - Environment variables (12-factor)
//   - CLI flags (override env vars)
//
// Usage:
//
//	# Emulated device directories under ./data
//	./server -port 8000 -bridge local -data-dir ./data
//
//	# Native shell bridge
//	./server -bridge remote -bridge-url http://127.0.0.1:8787
//
//	# Development mode (colored logs, debug level)
//	./server -dev
//
// Signals:
//   - SIGINT, SIGTERM: Graceful shutdown
package main
