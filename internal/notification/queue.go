package notification

import (
	"context"
	"fmt"
)

// PoolQueue runs jobs on the in-process worker pool.
type PoolQueue struct {
	pool      *WorkerPool
	deliverer *Deliverer
}

func NewPoolQueue(pool *WorkerPool, deliverer *Deliverer) *PoolQueue {
	return &PoolQueue{pool: pool, deliverer: deliverer}
}

func (q *PoolQueue) Enqueue(ctx context.Context, job Job) error {
	if err := job.Validate(); err != nil {
		return err
	}
	return q.pool.Submit(ctx, func(workerCtx context.Context) error {
		return q.deliverer.Run(workerCtx, job)
	})
}

// BrokerQueue publishes jobs to a durable broker queue; Consume feeds them
// back to the deliverer, typically on another process.
type BrokerQueue struct {
	backend Backend
	queue   string
}

func NewBrokerQueue(backend Backend, queue string) *BrokerQueue {
	return &BrokerQueue{backend: backend, queue: queue}
}

func (q *BrokerQueue) Enqueue(ctx context.Context, job Job) error {
	if err := job.Validate(); err != nil {
		return err
	}
	data, err := job.Marshal()
	if err != nil {
		return fmt.Errorf("encode job: %w", err)
	}
	_, err = q.backend.Publish(ctx, q.queue, data, map[string]string{"kind": string(job.Kind)})
	if err != nil {
		return fmt.Errorf("publish job: %w", err)
	}
	return nil
}

// Consume blocks, delivering broker jobs until ctx ends. An undecodable
// message is acknowledged and dropped; the deliverer owns retries.
func (q *BrokerQueue) Consume(ctx context.Context, deliverer *Deliverer) error {
	return q.backend.Subscribe(ctx, q.queue, func(ctx context.Context, msg Message) error {
		job, err := UnmarshalJob(msg.Data)
		if err != nil {
			deliverer.log.Error("dropping undecodable notification job", "message_id", msg.ID, "error", err)
			return nil
		}
		return deliverer.Run(ctx, job)
	})
}
