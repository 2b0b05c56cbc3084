package planner

import "github.com/backmassage/sdrnorm/internal/classify"

// AudioMode selects how audio streams are handled. Only passthrough exists.
type AudioMode string

const AudioCopy AudioMode = "copy"

// Param is one filter option. An empty Key marks a positional value, as in
// "format=yuv420p".
type Param struct {
	Key   string
	Value string
}

// FilterStage is a single video filter with ordered options.
type FilterStage struct {
	Name   string
	Params []Param
}

// EncodeParams are the fixed output encoder settings.
type EncodeParams struct {
	VideoCodec string
	Preset     string
	CRF        int
	Audio      AudioMode
}

// Plan is the complete set of color decisions for one file. It is produced
// by BuildPlan and consumed by the ffmpeg package, which serializes Stages
// into a filter-chain expression.
type Plan struct {
	Profile classify.Profile
	Stages  []FilterStage
	Encode  EncodeParams
}
