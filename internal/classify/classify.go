// Package classify maps probed color metadata to one of a fixed set of color
// profiles. The decision is a pure function with a strict precedence order:
// explicit HLG, explicit PQ, HDR-looking streams with a missing or wrong
// transfer tag, and finally SDR.
package classify

import (
	"strings"

	"github.com/backmassage/sdrnorm/internal/probe"
)

// Profile is the classification result for one video stream.
type Profile int

const (
	ProfileSDR Profile = iota
	ProfileHLG
	ProfilePQ
	ProfileHeuristicHDR // untagged or mislabeled stream that looks HDR
)

// Transfer characteristic names as reported by ffprobe.
const (
	TransferHLG = "arib-std-b67"
	TransferPQ  = "smpte2084"
)

func (p Profile) String() string {
	switch p {
	case ProfileSDR:
		return "sdr"
	case ProfileHLG:
		return "hlg"
	case ProfilePQ:
		return "pq"
	case ProfileHeuristicHDR:
		return "heuristic-hdr"
	default:
		return "invalid"
	}
}

// IsHDR reports whether the profile needs tone mapping.
func (p Profile) IsHDR() bool {
	return p == ProfileHLG || p == ProfilePQ || p == ProfileHeuristicHDR
}

// Profiles lists every profile in a stable order.
func Profiles() []Profile {
	return []Profile{ProfileSDR, ProfileHLG, ProfilePQ, ProfileHeuristicHDR}
}

// highBitDepthFormats are the common 10/12-bit planar formats that mark a
// stream as HDR-like when its transfer tag is missing.
var highBitDepthFormats = map[string]bool{
	"p010le":      true,
	"p016le":      true,
	"yuv420p10le": true,
	"yuv422p10le": true,
	"yuv444p10le": true,
	"yuv420p12le": true,
	"yuv422p12le": true,
	"yuv444p12le": true,
}

// Classify returns the color profile for md. First match wins.
func Classify(md probe.Metadata) Profile {
	switch md.Transfer {
	case TransferHLG:
		return ProfileHLG
	case TransferPQ:
		return ProfilePQ
	}
	if LooksHDR(md) {
		return ProfileHeuristicHDR
	}
	return ProfileSDR
}

// LooksHDR reports whether md carries BT.2020 color or a high bit-depth
// pixel format, ignoring the transfer tag. The "10le"/"12le" substring test
// is deliberately loose so unusual format names are never treated as SDR;
// it can misfire on exotic formats such as gray10le.
func LooksHDR(md probe.Metadata) bool {
	if strings.Contains(md.Primaries, "bt2020") || strings.Contains(md.ColorSpace, "bt2020") {
		return true
	}
	pf := md.PixelFormat
	return highBitDepthFormats[pf] ||
		strings.Contains(pf, "10le") ||
		strings.Contains(pf, "12le")
}
