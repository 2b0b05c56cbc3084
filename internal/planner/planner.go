package planner

import (
	"github.com/backmassage/sdrnorm/internal/classify"
	"github.com/backmassage/sdrnorm/internal/probe"
)

// Target color standard. Every plan ends in these values and the verifier
// checks produced files against them.
const (
	TargetStandard = "bt709"
	TargetPixFmt   = "yuv420p"

	// Working formats used inside the tone-mapping chain.
	WorkingPixFmt      = "gbrpf32le"
	IntermediatePixFmt = "p010le"

	// NominalPeakLuminance is the npl value (nits) used when linearizing.
	NominalPeakLuminance = "100"
)

// Fixed encoder settings shared by every profile.
const (
	VideoCodec = "libx264"
	Preset     = "slow"
	CRF        = 23
)

// Target returns the metadata a conforming output file must report.
func Target() probe.Metadata {
	return probe.Metadata{
		Transfer:    TargetStandard,
		ColorSpace:  TargetStandard,
		Primaries:   TargetStandard,
		PixelFormat: TargetPixFmt,
	}
}

// BuildPlan returns the transformation plan for profile. The result is a
// deterministic function of profile and shares no memory with earlier
// results, so callers may modify it freely.
//
// HLG is linearized, tone-mapped with Hable, and converted to BT.709.
// PQ takes the same path after forcing a 10-bit intermediate format.
// HeuristicHDR reuses the PQ path: the true transfer is unknown, and a
// PQ-style tone map is the chosen fallback. SDR gets a single colorspace
// normalization stage.
func BuildPlan(profile classify.Profile) Plan {
	var stages []FilterStage
	switch profile {
	case classify.ProfileHLG:
		stages = toneMapStages()
	case classify.ProfilePQ, classify.ProfileHeuristicHDR:
		stages = append([]FilterStage{formatStage(IntermediatePixFmt)}, toneMapStages()...)
	default:
		stages = []FilterStage{normalizeStage()}
	}

	return Plan{
		Profile: profile,
		Stages:  stages,
		Encode:  DefaultEncodeParams(),
	}
}

// DefaultEncodeParams returns the encoder settings used by every plan.
func DefaultEncodeParams() EncodeParams {
	return EncodeParams{
		VideoCodec: VideoCodec,
		Preset:     Preset,
		CRF:        CRF,
		Audio:      AudioCopy,
	}
}

// Describe returns a one-line operator summary of what the plan does.
func (p Plan) Describe() string {
	switch p.Profile {
	case classify.ProfileHLG:
		return "HDR (HLG): tone mapping to SDR (Hable)"
	case classify.ProfilePQ:
		return "HDR (PQ): tone mapping to SDR (Hable)"
	case classify.ProfileHeuristicHDR:
		return "HDR-like (BT.2020 and/or 10-bit, transfer not HLG/PQ): fallback PQ tone mapping (Hable)"
	default:
		return "SDR: normalization only"
	}
}
