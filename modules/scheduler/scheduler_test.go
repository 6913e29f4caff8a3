package scheduler

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/andreypavlenko/talentpipe/internal/config"
	"github.com/andreypavlenko/talentpipe/internal/platform/logger"
	jobqueueModel "github.com/andreypavlenko/talentpipe/modules/jobqueue/model"
	jobqueuePorts "github.com/andreypavlenko/talentpipe/modules/jobqueue/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeJobQueue struct {
	jobqueuePorts.JobQueueService
	mu      sync.Mutex
	claimed int
	toClaim []*jobqueueModel.Job
}

func (f *fakeJobQueue) Claim(ctx context.Context, kind string, batchSize int, workerID string) ([]*jobqueueModel.Job, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.toClaim) == 0 {
		return nil, nil
	}
	n := batchSize
	if n > len(f.toClaim) {
		n = len(f.toClaim)
	}
	claimed := f.toClaim[:n]
	f.toClaim = f.toClaim[n:]
	f.claimed += n
	return claimed, nil
}

type countingProcessor struct {
	kind       string
	inFlight   int32
	maxInFligh int32
	processed  int32
	release    chan struct{}
}

func (p *countingProcessor) Kind() string { return p.kind }

func (p *countingProcessor) Process(ctx context.Context, job *jobqueueModel.Job) error {
	n := atomic.AddInt32(&p.inFlight, 1)
	for {
		old := atomic.LoadInt32(&p.maxInFligh)
		if n <= old || atomic.CompareAndSwapInt32(&p.maxInFligh, old, n) {
			break
		}
	}
	<-p.release
	atomic.AddInt32(&p.inFlight, -1)
	atomic.AddInt32(&p.processed, 1)
	return nil
}

func newTestLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("error", "console")
	require.NoError(t, err)
	return log
}

func TestScheduler_DispatchOnce_RespectsBatchSizeCap(t *testing.T) {
	jobs := make([]*jobqueueModel.Job, 0, 10)
	for i := 0; i < 10; i++ {
		jobs = append(jobs, &jobqueueModel.Job{ID: "job", Kind: "resume.ingest"})
	}
	queue := &fakeJobQueue{toClaim: jobs}
	proc := &countingProcessor{kind: "resume.ingest", release: make(chan struct{})}
	close(proc.release) // let every dispatched task return immediately

	sched := New(queue, []Processor{proc}, config.SchedulerConfig{BatchSize: 3, WorkerID: "w1"}, newTestLogger(t))

	sched.dispatchOnce(context.Background())
	sched.wg.Wait()

	assert.LessOrEqual(t, proc.maxInFligh, int32(3))
	assert.Equal(t, int32(3), proc.processed)
	assert.Equal(t, 3, queue.claimed)
}

func TestScheduler_DurationUntilNextCleanup_WrapsToTomorrow(t *testing.T) {
	sched := New(&fakeJobQueue{}, nil, config.SchedulerConfig{CleanupHour: 2, CleanupMinute: 0}, newTestLogger(t))
	d := sched.durationUntilNextCleanup()
	assert.Greater(t, d, time.Duration(0))
	assert.LessOrEqual(t, d, 24*time.Hour)
}
