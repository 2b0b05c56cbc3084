package probe

import "strings"

// Unknown is the value recorded for any field ffprobe did not report.
const Unknown = "unknown"

// Metadata holds the color characteristics of a file's first video stream.
// All fields are lowercase and never empty; absent values are [Unknown].
// Construct it with [NewMetadata] or [ParseJSON] and treat it as read-only.
type Metadata struct {
	Transfer    string `json:"color_transfer"`
	ColorSpace  string `json:"color_space"`
	Primaries   string `json:"color_primaries"`
	PixelFormat string `json:"pix_fmt"`
}

// NewMetadata normalizes raw ffprobe values into a Metadata.
func NewMetadata(transfer, colorSpace, primaries, pixelFormat string) Metadata {
	return Metadata{
		Transfer:    normalize(transfer),
		ColorSpace:  normalize(colorSpace),
		Primaries:   normalize(primaries),
		PixelFormat: normalize(pixelFormat),
	}
}

func normalize(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return Unknown
	}
	return s
}
