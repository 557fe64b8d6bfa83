package jobs

import (
	"context"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskRecurringMaterialize inserts due occurrences of recurring transactions.
	TaskRecurringMaterialize = "txn:materialize_recurring"
)

// NewRecurringMaterializeTask constructs the materialization task.
// The task carries no payload; the job scans the whole collection.
func NewRecurringMaterializeTask() *asynq.Task {
	return asynq.NewTask(TaskRecurringMaterialize, nil)
}

// Client submits jobs to the queue.
type Client struct {
	client *asynq.Client
}

// NewClient constructs an Asynq client.
func NewClient(redisOpts asynq.RedisClientOpt) *Client {
	return &Client{client: asynq.NewClient(redisOpts)}
}

// EnqueueRecurringMaterialize enqueues an immediate materialization run.
func (c *Client) EnqueueRecurringMaterialize(ctx context.Context) (*asynq.TaskInfo, error) {
	return c.client.EnqueueContext(ctx, NewRecurringMaterializeTask(), asynq.Queue(QueueDefault))
}

// Close releases the underlying client.
func (c *Client) Close() error {
	return c.client.Close()
}
