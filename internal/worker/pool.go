package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	QueueReportes = "jobs:reportes"
	QueueEmail    = "jobs:email"
)

const (
	JobCierreReporte = "cierre_reporte"
	JobEmail         = "email"
)

// MaxJobAttempts bounds how often a failing job is retried before it moves to
// the dead letter queue.
const MaxJobAttempts = 3

// Job is the generic envelope for all async tasks.
type Job struct {
	Type     string          `json:"type"`
	Payload  json.RawMessage `json:"payload"`
	Attempts int             `json:"attempts"`
}

// CierreReportePayload asks the report worker to render and mail the closure
// report for one cierre.
type CierreReportePayload struct {
	CierreID uuid.UUID `json:"cierre_id"`
}

// Dispatcher enqueues async jobs into Redis lists.
// The worker pool dequeues them via BRPOP.
type Dispatcher struct {
	rdb *redis.Client
}

func NewDispatcher(rdb *redis.Client) *Dispatcher {
	return &Dispatcher{rdb: rdb}
}

// EnqueueCierreReporte pushes a closure-report job to Redis.
func (d *Dispatcher) EnqueueCierreReporte(ctx context.Context, payload CierreReportePayload) error {
	return d.enqueue(ctx, QueueReportes, JobCierreReporte, payload)
}

// EnqueueEmail pushes an email job to Redis.
func (d *Dispatcher) EnqueueEmail(ctx context.Context, payload EmailJobPayload) error {
	return d.enqueue(ctx, QueueEmail, JobEmail, payload)
}

func (d *Dispatcher) enqueue(ctx context.Context, queue, jobType string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	job := Job{Type: jobType, Payload: data}
	encoded, err := json.Marshal(job)
	if err != nil {
		return err
	}
	return d.rdb.LPush(ctx, queue, encoded).Err()
}

// Handlers bundles the job processors the pool dispatches to.
type Handlers struct {
	Reporte *ReporteWorker
	Email   *EmailWorker
}

// StartWorkerPool launches numWorkers goroutines consuming both queues.
// Each goroutine blocks on BRPOP — zero CPU when idle.
func StartWorkerPool(ctx context.Context, rdb *redis.Client, handlers *Handlers, numWorkers int) {
	for i := 0; i < numWorkers; i++ {
		go runWorker(ctx, rdb, handlers, i)
	}
	log.Info().Msgf("worker pool started with %d workers", numWorkers)
}

func runWorker(ctx context.Context, rdb *redis.Client, handlers *Handlers, id int) {
	queues := []string{QueueReportes, QueueEmail}
	for {
		select {
		case <-ctx.Done():
			log.Info().Msgf("worker %d shutting down", id)
			return
		default:
			// Blocking pop — waits up to 5s then loops to check ctx
			result, err := rdb.BRPop(ctx, 5*time.Second, queues...).Result()
			if err != nil {
				continue // timeout or context cancelled
			}
			if len(result) < 2 {
				continue
			}
			processJob(ctx, rdb, handlers, result[0], result[1])
		}
	}
}

func processJob(ctx context.Context, rdb *redis.Client, handlers *Handlers, queue, raw string) {
	var job Job
	if err := json.Unmarshal([]byte(raw), &job); err != nil {
		log.Error().Str("queue", queue).Err(err).Msg("failed to unmarshal job")
		return
	}

	var err error
	switch job.Type {
	case JobCierreReporte:
		err = handlers.Reporte.Process(ctx, job.Payload)
	case JobEmail:
		err = handlers.Email.Process(ctx, job.Payload)
	default:
		log.Warn().Str("type", job.Type).Str("queue", queue).Msg("unknown job type — dropping")
		return
	}
	if err != nil {
		retryOrDLQ(ctx, rdb, queue, job, err)
	}
}

// retryOrDLQ re-enqueues a failed job with its attempt counter bumped, or
// moves it to the dead letter queue once the retry budget is spent.
func retryOrDLQ(ctx context.Context, rdb *redis.Client, queue string, job Job, cause error) {
	job.Attempts++
	if job.Attempts >= MaxJobAttempts {
		SendToDLQ(ctx, rdb, queue, job.Type, job.Payload, cause.Error(), job.Attempts)
		return
	}
	encoded, err := json.Marshal(job)
	if err != nil {
		log.Error().Err(err).Str("type", job.Type).Msg("failed to re-marshal job for retry")
		return
	}
	if err := rdb.LPush(ctx, queue, encoded).Err(); err != nil {
		log.Error().Err(err).Str("queue", queue).Msg("failed to re-enqueue job")
		return
	}
	log.Warn().
		Str("type", job.Type).
		Str("queue", queue).
		Int("attempt", job.Attempts).
		Err(cause).
		Msg("job failed, retrying")
}
