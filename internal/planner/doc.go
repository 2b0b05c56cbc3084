// Package planner turns a color profile into the ordered filter stages and
// encode parameters that bring a stream to Rec.709 SDR. Plans depend on the
// profile alone; there is no per-file tuning.
//
//   - types.go: Plan, FilterStage, Param, EncodeParams
//   - planner.go: BuildPlan and the target profile
//   - filter.go: the fixed stage sequences
package planner
