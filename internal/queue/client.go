package queue

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"github.com/tripdesk/backend/internal/config"
	"github.com/tripdesk/backend/internal/regen"
)

type Client struct {
	client     *asynq.Client
	queue      string
	jobTimeout time.Duration
}

func NewClient(cfg config.RedisConfig, gen config.GenerationConfig) *Client {
	return &Client{
		client: asynq.NewClient(asynq.RedisClientOpt{
			Addr:     cfg.Addr,
			Password: cfg.Password,
			DB:       cfg.DB,
		}),
		queue:      gen.Queue,
		jobTimeout: gen.JobTimeout,
	}
}

func (c *Client) Close() error {
	return c.client.Close()
}

// EnqueueGenerationRun satisfies regen.Enqueuer. Retries are disabled: a
// failed job settles its batch once; re-running it would corrupt the
// settlement counter.
func (c *Client) EnqueueGenerationRun(job regen.Job) error {
	return c.enqueue(TypeGenerationRun, job, asynq.Queue(c.queue), asynq.MaxRetry(0), asynq.Timeout(c.jobTimeout))
}

func (c *Client) enqueue(taskType string, payload interface{}, opts ...asynq.Option) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}
	task := asynq.NewTask(taskType, data)
	_, err = c.client.Enqueue(task, opts...)
	if err != nil {
		return fmt.Errorf("enqueue %s: %w", taskType, err)
	}
	return nil
}
