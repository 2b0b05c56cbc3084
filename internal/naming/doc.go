// Package naming maps batch inputs to their output file names and
// recognizes those names again when verifying a finished batch.
package naming
