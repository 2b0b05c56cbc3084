// Package probe provides ffprobe-based color metadata inspection. A single
// JSON call per file selects the first video stream and returns exactly the
// four fields the classifier and verifier need: color transfer, color space,
// color primaries, and pixel format.
//
// Files:
//   - types.go: Metadata and the "unknown" sentinel
//   - prober.go: Prober interface, FFprobe implementation, ParseJSON
//   - errors.go: ProbeError and its sentinel causes
package probe
