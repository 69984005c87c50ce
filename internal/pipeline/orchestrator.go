package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// ErrQueueFull is returned by Submit when no queue slot is free.
var ErrQueueFull = errors.New("job queue is full")

// OrchestratorConfig sizes the worker pool and job retention.
type OrchestratorConfig struct {
	WorkerCount  int
	MaxQueueSize int
	JobTTL       time.Duration
}

// Orchestrator runs summarization jobs on a bounded queue.
type Orchestrator struct {
	jobs       *JobStore
	queue      chan *Job
	summarizer *Summarizer
	rec        Recorder
	log        *slog.Logger
	cfg        OrchestratorConfig

	cancel context.CancelFunc
	wg     sync.WaitGroup

	stopOnce sync.Once
}

func NewOrchestrator(cfg OrchestratorConfig, s *Summarizer, rec Recorder, log *slog.Logger) *Orchestrator {
	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 1
	}
	if cfg.MaxQueueSize <= 0 {
		cfg.MaxQueueSize = 1
	}
	if cfg.JobTTL <= 0 {
		cfg.JobTTL = time.Hour
	}
	if rec == nil {
		rec = nopRecorder{}
	}
	return &Orchestrator{
		jobs:       NewJobStore(cfg.JobTTL),
		queue:      make(chan *Job, cfg.MaxQueueSize),
		summarizer: s,
		rec:        rec,
		log:        log,
		cfg:        cfg,
	}
}

// Start launches worker goroutines.
func (o *Orchestrator) Start(ctx context.Context) {
	workerCtx, cancel := context.WithCancel(ctx)
	o.cancel = cancel

	for i := range o.cfg.WorkerCount {
		o.wg.Add(1)
		go func() {
			defer o.wg.Done()
			w := NewWorker(o.summarizer, o.log.With("worker", i))
			for {
				select {
				case <-workerCtx.Done():
					return
				case job, ok := <-o.queue:
					if !ok {
						return
					}
					o.rec.SetQueueDepth(len(o.queue))
					w.Process(workerCtx, job)
				}
			}
		}()
	}

	// Start job store cleanup.
	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		ticker := time.NewTicker(cleanupInterval(o.cfg.JobTTL))
		defer ticker.Stop()
		for {
			select {
			case <-workerCtx.Done():
				return
			case <-ticker.C:
				o.jobs.Cleanup()
			}
		}
	}()
}

func cleanupInterval(ttl time.Duration) time.Duration {
	return min(5*time.Minute, max(ttl/2, time.Second))
}

// Stop cancels in-flight jobs and waits for workers to exit.
func (o *Orchestrator) Stop() {
	o.stopOnce.Do(func() {
		if o.cancel != nil {
			o.cancel()
		}
		o.wg.Wait()
	})
}

// Submit validates and queues a new job.
func (o *Orchestrator) Submit(job *Job) error {
	if err := o.summarizer.CheckFilename(job.Filename); err != nil {
		return err
	}
	o.jobs.Put(job)
	select {
	case o.queue <- job:
		o.rec.SetQueueDepth(len(o.queue))
		return nil
	default:
		job.AddError("queue full")
		job.Finish(StatusFailed, nil)
		return fmt.Errorf("%w (%d)", ErrQueueFull, o.cfg.MaxQueueSize)
	}
}

// GetJob returns a job by ID.
func (o *Orchestrator) GetJob(id string) *Job {
	return o.jobs.Get(id)
}

// QueueDepth returns current queue depth.
func (o *Orchestrator) QueueDepth() int {
	return len(o.queue)
}
