package queue

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"chat-importer/internal/pkg/logger"
)

type fakeSource struct {
	mu    sync.Mutex
	jobs  []Job
	acked []string
}

func (s *fakeSource) Dequeue(ctx context.Context, timeout time.Duration) (*Job, error) {
	s.mu.Lock()
	if len(s.jobs) > 0 {
		job := s.jobs[0]
		s.jobs = s.jobs[1:]
		s.mu.Unlock()
		return &job, nil
	}
	s.mu.Unlock()
	select {
	case <-time.After(timeout):
		return nil, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (s *fakeSource) Ack(_ context.Context, job Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.acked = append(s.acked, job.ID)
	return nil
}

func (s *fakeSource) ackedCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.acked)
}

func TestSerializeRoundTripKeepsRaw(t *testing.T) {
	job := NewImportJob("p-1")
	data, err := SerializeJob(job)
	if err != nil {
		t.Fatalf("serialize: %v", err)
	}
	got, err := DeserializeJob(data)
	if err != nil {
		t.Fatalf("deserialize: %v", err)
	}
	if got.ProgressID != "p-1" || got.Type != JobImport || got.raw != data {
		t.Fatalf("unexpected job: %+v", got)
	}
	if _, err := DeserializeJob("{not json"); err == nil {
		t.Fatal("expected error for malformed job")
	}
}

func TestWorkerPoolProcessesAndAcks(t *testing.T) {
	src := &fakeSource{jobs: []Job{NewImportJob("a"), NewImportJob("b"), NewCleanupJob("u")}}

	var mu sync.Mutex
	seen := map[string]bool{}
	handlers := map[JobType]Handler{
		JobImport: func(_ context.Context, job Job) error {
			mu.Lock()
			seen[job.ProgressID] = true
			mu.Unlock()
			return nil
		},
		JobCleanup: func(_ context.Context, job Job) error {
			return errors.New("boom")
		},
	}

	pool := NewWorkerPool(2, handlers, logger.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- pool.Consume(ctx, 10*time.Millisecond, src) }()

	deadline := time.Now().Add(2 * time.Second)
	for src.ackedCount() < 3 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	cancel()
	if err := <-done; err != nil {
		t.Fatalf("consume: %v", err)
	}
	pool.Shutdown()

	if src.ackedCount() != 3 {
		t.Fatalf("expected 3 acks, got %d", src.ackedCount())
	}
	if !seen["a"] || !seen["b"] {
		t.Fatalf("import handler did not see both jobs: %v", seen)
	}
}

func TestWorkerRecoversFromPanic(t *testing.T) {
	var gotErr error
	var wg sync.WaitGroup
	ch := make(chan Job, 1)
	w := &Worker{
		ID:      1,
		JobChan: ch,
		Wg:      &wg,
		Handlers: map[JobType]Handler{
			JobImport: func(context.Context, Job) error { panic("kaboom") },
		},
		OnDone: func(_ Job, err error) { gotErr = err },
		Log:    logger.Nop(),
	}
	wg.Add(1)
	w.Start(context.Background())
	ch <- NewImportJob("x")
	close(ch)
	wg.Wait()

	if gotErr == nil {
		t.Fatal("expected panic to be reported as error")
	}
}

func TestUnknownJobType(t *testing.T) {
	w := &Worker{Handlers: map[JobType]Handler{}, Log: logger.Nop()}
	if err := w.run(context.Background(), Job{Type: "nope"}); err == nil {
		t.Fatal("expected unknown job type error")
	}
}
