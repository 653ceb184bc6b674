package otinstance

import (
	"fmt"
	"runtime"
	"sync"

	"github.com/npillmayer/varfont/otvar"
)

// Instancer is the single-instance interface the batch generator drives.
// *Generator satisfies it.
type Instancer interface {
	Generate(user otvar.UserCoords) (*InstanceResult, error)
}

// BatchResult is one entry of a batch: either a generated instance or the
// error that felled it. A panic inside one instance's generation is
// recovered into its entry and never cancels sibling work.
type BatchResult struct {
	Result *InstanceResult
	Err    error
}

// Future is the pending outcome of one submitted generation job. A pool
// worker fulfills it exactly once.
type Future struct {
	done chan struct{}
	res  BatchResult
}

// Value blocks until the job has run, then returns its outcome.
func (f *Future) Value() (*InstanceResult, error) {
	<-f.done
	return f.res.Result, f.res.Err
}

// BatchGenerator distributes instance generation over a fixed worker pool.
// Results come back in submission order. An optional shared cache memoizes
// whole instances by location, and an optional progress callback fires after
// each completion.
type BatchGenerator struct {
	Instancer Instancer
	Cache     *ThreadSafeCache           // may be nil
	Workers   int                        // 0 selects max(4, GOMAXPROCS)
	Progress  func(completed, total int) // may be nil
}

func (b *BatchGenerator) poolSize() int {
	if b.Workers > 0 {
		return b.Workers
	}
	workers := runtime.GOMAXPROCS(0)
	if workers < 4 {
		workers = 4
	}
	return workers
}

// Pool is a running group of generation workers fed by Submit. There is no
// cancellation: once submitted, a job runs to completion or failure.
type Pool struct {
	jobs      chan poolJob
	wg        sync.WaitGroup
	mu        sync.Mutex
	completed int
	onDone    func(completed int)
}

type poolJob struct {
	user otvar.UserCoords
	fut  *Future
}

// StartPool spins up the generation workers. Callers must Close the pool
// when done submitting.
func (b *BatchGenerator) StartPool() *Pool {
	return b.startPool(nil)
}

func (b *BatchGenerator) startPool(onDone func(completed int)) *Pool {
	p := &Pool{jobs: make(chan poolJob), onDone: onDone}
	workers := b.poolSize()
	tracer().Debugf("starting %d generation workers", workers)
	for w := 0; w < workers; w++ {
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			for job := range p.jobs {
				job.fut.res = b.generateOne(job.user)
				close(job.fut.done)
				if p.onDone != nil {
					p.mu.Lock()
					p.completed++
					p.onDone(p.completed)
					p.mu.Unlock()
				}
			}
		}()
	}
	return p
}

// Submit queues one location for generation and returns its future.
func (p *Pool) Submit(user otvar.UserCoords) *Future {
	fut := &Future{done: make(chan struct{})}
	p.jobs <- poolJob{user: user, fut: fut}
	return fut
}

// Close stops intake, drains the queued jobs and joins the workers.
func (p *Pool) Close() {
	close(p.jobs)
	p.wg.Wait()
}

// GenerateBatch generates one instance per location. Results come back in
// submission order even when workers complete out of order.
func (b *BatchGenerator) GenerateBatch(locations []otvar.UserCoords) []BatchResult {
	results := make([]BatchResult, len(locations))
	if len(locations) == 0 {
		return results
	}
	var onDone func(int)
	if b.Progress != nil {
		onDone = func(completed int) { b.Progress(completed, len(locations)) }
	}
	pool := b.startPool(onDone)
	futures := make([]*Future, len(locations))
	for i, user := range locations {
		futures[i] = pool.Submit(user)
	}
	pool.Close()
	for i, fut := range futures {
		res, err := fut.Value()
		results[i] = BatchResult{Result: res, Err: err}
	}
	return results
}

// generateOne runs one instance through the cache with panic containment.
func (b *BatchGenerator) generateOne(user otvar.UserCoords) (res BatchResult) {
	defer func() {
		if r := recover(); r != nil {
			tracer().Errorf("instance generation panicked: %v", r)
			res = BatchResult{Err: fmt.Errorf("instance generation panicked: %v", r)}
		}
	}()
	if b.Cache == nil {
		result, err := b.Instancer.Generate(user)
		return BatchResult{Result: result, Err: err}
	}
	v, err := b.Cache.Fetch(KeyFor("instance", user), func() (interface{}, error) {
		return b.Instancer.Generate(user)
	})
	if err != nil {
		return BatchResult{Err: err}
	}
	return BatchResult{Result: v.(*InstanceResult)}
}
