package queue

import (
	"context"
	"fmt"
	"sync"

	"chat-importer/internal/pkg/logger"
)

// Handler processes one job type. Handlers own their retry policy; the
// worker only logs the outcome.
type Handler func(ctx context.Context, job Job) error

type Worker struct {
	ID       int        // worker id
	JobChan  <-chan Job // iş kuyruğu
	Wg       *sync.WaitGroup
	Handlers map[JobType]Handler
	OnDone   func(job Job, err error)
	Log      *logger.Logger
}

func (w *Worker) Start(ctx context.Context) { // worker başlatma fonksiyonu
	go func() {
		defer w.Wg.Done()
		for {
			select {
			case job, ok := <-w.JobChan: // channeldan iş alınır
				if !ok {
					w.Log.Debug("job channel closed", "worker", w.ID)
					return
				}
				w.processJob(ctx, job)
			case <-ctx.Done():
				w.Log.Debug("worker stopping", "worker", w.ID)
				return
			}
		}
	}()
}

func (w *Worker) processJob(ctx context.Context, job Job) {
	log := w.Log.With("worker", w.ID, "job_id", job.ID, "job_type", job.Type)
	log.Info("processing job")

	err := w.run(ctx, job)
	if err != nil {
		log.Error("job failed", "error", err)
	} else {
		log.Info("job succeeded")
	}
	if w.OnDone != nil {
		w.OnDone(job, err)
	}
}

func (w *Worker) run(ctx context.Context, job Job) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()

	handler, ok := w.Handlers[job.Type]
	if !ok {
		return fmt.Errorf("unknown job type: %s", job.Type)
	}
	return handler(ctx, job)
}
