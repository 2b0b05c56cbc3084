// Package ffmpeg is the boundary to the external media engine. It serializes
// a planner.Plan into ffmpeg's filter-chain syntax, builds the argument list,
// runs the process, and turns a non-zero exit into an EncodeError carrying
// the captured stderr.
//
//   - builder.go: FilterChain and Build
//   - executor.go: Engine interface and the exec-backed Executor
//   - errors.go: EncodeError and stderr diagnosis
package ffmpeg
