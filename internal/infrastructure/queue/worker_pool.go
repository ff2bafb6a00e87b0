package queue

import (
	"context"
	"errors"
	"sync"
	"time"

	"chat-importer/internal/pkg/logger"
)

// Source is a queue the pool can pull jobs from.
type Source interface {
	Dequeue(ctx context.Context, timeout time.Duration) (*Job, error)
	Ack(ctx context.Context, job Job) error
}

type WorkerPool struct {
	JobChan chan Job
	wg      sync.WaitGroup
	ctx     context.Context    // graceful shutdown için
	cancel  context.CancelFunc // graceful shutdown için
	log     *logger.Logger

	ackMu sync.RWMutex
	ack   func(job Job)
}

func NewWorkerPool(workerCount int, handlers map[JobType]Handler, log *logger.Logger) *WorkerPool {
	if workerCount < 1 {
		workerCount = 1
	}
	ctx, cancel := context.WithCancel(context.Background())
	pool := &WorkerPool{
		// tampon yok: dispatcher bir iş ancak boşta worker varsa çeker
		JobChan: make(chan Job),
		ctx:     ctx,
		cancel:  cancel,
		log:     log.With("component", "worker_pool"),
	}
	for i := 0; i < workerCount; i++ {
		worker := &Worker{
			ID:       i,
			JobChan:  pool.JobChan,
			Wg:       &pool.wg,
			Handlers: handlers,
			OnDone:   pool.done,
			Log:      pool.log,
		}
		pool.wg.Add(1)
		worker.Start(pool.ctx)
	}
	return pool
}

// AddJob blocks until a worker takes the job or the pool shuts down.
func (p *WorkerPool) AddJob(job Job) bool {
	select {
	case p.JobChan <- job:
		return true
	case <-p.ctx.Done():
		return false
	}
}

func (p *WorkerPool) done(job Job, err error) {
	if p.ctx.Err() != nil && errors.Is(err, context.Canceled) {
		// kapanışta yarım kalan iş processing listesinde kalır, sonraki açılışta tekrar kuyruğa alınır
		return
	}
	p.ackMu.RLock()
	ack := p.ack
	p.ackMu.RUnlock()
	if ack != nil {
		ack(job)
	}
}

// Consume pulls jobs from src until ctx is cancelled. Jobs are acknowledged once their handler returns.
func (p *WorkerPool) Consume(ctx context.Context, pollTimeout time.Duration, src Source) error {
	p.ackMu.Lock()
	p.ack = func(job Job) {
		if err := src.Ack(context.Background(), job); err != nil {
			p.log.Warn("job ack failed", "job_id", job.ID, "error", err)
		}
	}
	p.ackMu.Unlock()

	for {
		if ctx.Err() != nil || p.ctx.Err() != nil {
			return nil
		}
		job, err := src.Dequeue(ctx, pollTimeout)
		if err != nil {
			if errors.Is(err, context.Canceled) || ctx.Err() != nil {
				return nil
			}
			p.log.Error("dequeue failed", "error", err)
			select {
			case <-time.After(time.Second):
			case <-ctx.Done():
				return nil
			}
			continue
		}
		if job == nil {
			continue
		}
		if !p.AddJob(*job) {
			return nil
		}
	}
}

func (p *WorkerPool) Shutdown() {
	p.cancel()
	p.wg.Wait()
}
