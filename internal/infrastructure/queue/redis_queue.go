package queue

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// RedisQueue is a reliable list queue: jobs move to a processing list on
// dequeue and leave it on ack, so a crashed worker's jobs can be requeued.
type RedisQueue struct {
	client     *redis.Client
	name       string
	processing string
}

func NewRedisQueue(client *redis.Client, name string) *RedisQueue {
	return &RedisQueue{client: client, name: name, processing: name + ":processing"}
}

func (q *RedisQueue) Enqueue(ctx context.Context, job Job) error {
	data, err := SerializeJob(job)
	if err != nil {
		return err
	}
	if err := q.client.LPush(ctx, q.name, data).Err(); err != nil {
		return fmt.Errorf("enqueue %s: %w", job.Type, err)
	}
	return nil
}

func (q *RedisQueue) EnqueueImport(ctx context.Context, progressID string) error {
	return q.Enqueue(ctx, NewImportJob(progressID))
}

func (q *RedisQueue) EnqueueCleanup(ctx context.Context, uploadID string) error {
	return q.Enqueue(ctx, NewCleanupJob(uploadID))
}

// Dequeue returns (nil, nil) when nothing arrived within timeout.
func (q *RedisQueue) Dequeue(ctx context.Context, timeout time.Duration) (*Job, error) {
	data, err := q.client.BRPopLPush(ctx, q.name, q.processing, timeout).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	job, err := DeserializeJob(data)
	if err != nil {
		// bozuk kayıt kuyrukta kalmasın
		q.client.LRem(ctx, q.processing, 1, data)
		return nil, err
	}
	return job, nil
}

func (q *RedisQueue) Ack(ctx context.Context, job Job) error {
	if job.raw == "" {
		return nil
	}
	return q.client.LRem(ctx, q.processing, 1, job.raw).Err()
}

// RequeueInFlight moves jobs left in the processing list by a previous run
// back onto the main queue.
func (q *RedisQueue) RequeueInFlight(ctx context.Context) (int, error) {
	n := 0
	for {
		err := q.client.RPopLPush(ctx, q.processing, q.name).Err()
		if errors.Is(err, redis.Nil) {
			return n, nil
		}
		if err != nil {
			return n, err
		}
		n++
	}
}

func (q *RedisQueue) Len(ctx context.Context) (int64, error) {
	return q.client.LLen(ctx, q.name).Result()
}

func NewRedisClient(addr, password string, db int) *redis.Client {
	return redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})
}
