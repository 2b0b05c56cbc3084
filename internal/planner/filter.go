package planner

// toneMapStages is the zscale+tonemap pipeline shared by every HDR profile:
// linearize, switch to float, remap primaries, tone-map with Hable, then
// convert transfer and matrix to BT.709 limited range at 8-bit 4:2:0.
func toneMapStages() []FilterStage {
	return []FilterStage{
		{Name: "zscale", Params: []Param{
			{Key: "t", Value: "linear"},
			{Key: "npl", Value: NominalPeakLuminance},
		}},
		formatStage(WorkingPixFmt),
		{Name: "zscale", Params: []Param{
			{Key: "p", Value: TargetStandard},
		}},
		{Name: "tonemap", Params: []Param{
			{Key: "tonemap", Value: "hable"},
			{Key: "desat", Value: "0"},
		}},
		{Name: "zscale", Params: []Param{
			{Key: "t", Value: TargetStandard},
			{Key: "m", Value: TargetStandard},
			{Key: "r", Value: "tv"},
		}},
		formatStage(TargetPixFmt),
	}
}

// normalizeStage converts an SDR stream's matrix, transfer, and pixel
// format to the target without tone mapping.
func normalizeStage() FilterStage {
	return FilterStage{Name: "colorspace", Params: []Param{
		{Key: "all", Value: TargetStandard},
		{Key: "trc", Value: TargetStandard},
		{Key: "format", Value: TargetPixFmt},
	}}
}

func formatStage(pixFmt string) FilterStage {
	return FilterStage{Name: "format", Params: []Param{{Value: pixFmt}}}
}
