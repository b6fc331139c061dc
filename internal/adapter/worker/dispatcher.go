package worker

import (
	"context"
	"errors"
	"hash/fnv"
	"strconv"
	"sync"

	"github.com/rs/zerolog"

	"securetodo/internal/core/telemetry"
)

const (
	defaultWorkers = 4
	defaultQueue   = 64
)

var ErrStopped = errors.New("dispatcher stopped")

// Job is a unit of work. ctx is the context the job was submitted with.
type Job func(ctx context.Context)

type envelope struct {
	ctx context.Context
	job Job
}

// Dispatcher routes jobs to a fixed set of workers by hashing a key, so jobs
// sharing a key run one at a time in submission order.
type Dispatcher struct {
	workers []chan envelope
	log     zerolog.Logger
	metrics *telemetry.AppMetrics

	mu      sync.RWMutex
	stopped bool
	started sync.Once
	wg      sync.WaitGroup
}

// NewDispatcher creates numWorkers workers with queueSize buffered jobs each.
// Non-positive values fall back to the defaults.
func NewDispatcher(numWorkers, queueSize int, log zerolog.Logger, metrics *telemetry.AppMetrics) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	if queueSize <= 0 {
		queueSize = defaultQueue
	}

	d := &Dispatcher{
		workers: make([]chan envelope, numWorkers),
		log:     log,
		metrics: metrics,
	}
	for i := range d.workers {
		d.workers[i] = make(chan envelope, queueSize)
	}

	return d
}

// Start launches the workers. Cancelling ctx has the same effect as Stop.
func (d *Dispatcher) Start(ctx context.Context) {
	d.started.Do(func() {
		for i, ch := range d.workers {
			d.wg.Add(1)
			go d.runWorker(i, ch)
		}

		if ctx.Done() != nil {
			go func() {
				<-ctx.Done()
				d.Stop()
			}()
		}
	})
}

// Submit queues job on the worker owning key. It blocks while that worker's
// queue is full and fails once the dispatcher is stopped.
func (d *Dispatcher) Submit(ctx context.Context, key string, job Job) error {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.stopped {
		return ErrStopped
	}

	idx := d.shardIndex(key)
	select {
	case d.workers[idx] <- envelope{ctx: ctx, job: job}:
	case <-ctx.Done():
		return ctx.Err()
	}
	d.metrics.SetWorkerQueueLength(strconv.Itoa(idx), len(d.workers[idx]))

	return nil
}

// Stop refuses new jobs, lets the workers drain what is queued and waits for
// them to exit.
func (d *Dispatcher) Stop() {
	d.mu.Lock()
	if !d.stopped {
		d.stopped = true
		for _, ch := range d.workers {
			close(ch)
		}
	}
	d.mu.Unlock()

	d.wg.Wait()
}

func (d *Dispatcher) Workers() int {
	return len(d.workers)
}

func (d *Dispatcher) shardIndex(key string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *Dispatcher) runWorker(id int, ch <-chan envelope) {
	defer d.wg.Done()

	for env := range ch {
		d.run(id, env)
		d.metrics.SetWorkerQueueLength(strconv.Itoa(id), len(ch))
	}
}

func (d *Dispatcher) run(id int, env envelope) {
	defer func() {
		if r := recover(); r != nil {
			d.log.Error().Interface("panic", r).Int("worker_id", id).Msg("job panicked")
		}
	}()

	env.job(env.ctx)
}
