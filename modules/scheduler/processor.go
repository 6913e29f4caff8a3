package scheduler

import (
	"context"

	jobqueuemodel "github.com/andreypavlenko/talentpipe/modules/jobqueue/model"
)

// Processor turns one claimed job into a terminal state. Implementations
// (the résumé pipeline, and any future job kind) own the heartbeat calls at
// their own stage boundaries and the final Complete/Fail call; the scheduler
// only owns claiming and concurrency.
type Processor interface {
	// Kind is the job_queue.kind this processor handles.
	Kind() string
	// Process runs the job to completion. It must not return an error for
	// conditions the processor itself already turned into a Fail/Complete
	// call — a returned error here is only logged, it does not retry the job
	// a second time.
	Process(ctx context.Context, job *jobqueuemodel.Job) error
}
