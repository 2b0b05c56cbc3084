package pipeline

import "github.com/backmassage/sdrnorm/internal/naming"

// Job pairs an input file with its destination.
type Job struct {
	InputPath  string
	OutputPath string
}

// BatchJobs maps discovered inputs to jobs writing into outDir with the
// batch naming suffix.
func BatchJobs(inputs []string, outDir string) []Job {
	jobs := make([]Job, len(inputs))
	for i, in := range inputs {
		jobs[i] = Job{InputPath: in, OutputPath: naming.OutputPath(in, outDir)}
	}
	return jobs
}
