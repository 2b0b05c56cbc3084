// Package pipeline turns inputs into normalized outputs. It discovers batch
// inputs, runs each job through probe, classify, plan and encode, and reports
// every step as an [Event]. One file's failure never stops the others.
//
// Jobs run sequentially by default. With Runner.Jobs > 1 a bounded worker
// pool encodes files in parallel; each worker buffers its file's events and
// flushes them as one block so per-file output is never interleaved.
package pipeline
