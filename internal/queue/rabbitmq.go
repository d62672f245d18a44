package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"alfredoptarigan/cv-screening/internal/logger"
	"alfredoptarigan/cv-screening/internal/tasks"
)

const publishTimeout = 5 * time.Second

// RabbitMQ publishes tasks to a durable queue and feeds consumed tasks into a
// local dispatcher, so queued work survives restarts and is shared between
// instances.
type RabbitMQ struct {
	conn      *amqp.Connection
	publishCh *amqp.Channel
	consumeCh *amqp.Channel
	queue     amqp.Queue
	prefetch  int
	mu        sync.Mutex
	log       *zap.Logger
}

func NewRabbitMQ(url, queueName string, prefetch int, log *zap.Logger) (*RabbitMQ, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	publishCh, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open publish channel: %w", err)
	}

	consumeCh, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open consume channel: %w", err)
	}

	q, err := publishCh.QueueDeclare(
		queueName,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,
	)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to declare queue: %w", err)
	}

	if prefetch < 1 {
		prefetch = 1
	}

	log = logger.WithFields(log, zap.String("component", "rabbitmq"), zap.String("queue", q.Name))
	log.Info("connected to RabbitMQ")

	return &RabbitMQ{
		conn:      conn,
		publishCh: publishCh,
		consumeCh: consumeCh,
		queue:     q,
		prefetch:  prefetch,
		log:       log,
	}, nil
}

// Dispatch implements tasks.Dispatcher by publishing a persistent message.
func (r *RabbitMQ) Dispatch(ctx context.Context, task tasks.Task) error {
	body, err := json.Marshal(task)
	if err != nil {
		return fmt.Errorf("failed to encode task: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	r.mu.Lock()
	defer r.mu.Unlock()

	err = r.publishCh.PublishWithContext(
		ctx,
		"",           // exchange
		r.queue.Name, // routing key
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish %s: %w", task, err)
	}
	return nil
}

// Consume forwards deliveries to local until ctx is done or the channel
// closes. Messages are acknowledged once the local dispatcher accepts them.
func (r *RabbitMQ) Consume(ctx context.Context, local tasks.Dispatcher) error {
	if err := r.consumeCh.Qos(r.prefetch, 0, false); err != nil {
		return fmt.Errorf("failed to set qos: %w", err)
	}

	msgs, err := r.consumeCh.Consume(
		r.queue.Name,
		"",
		false, // auto-ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("failed to register consumer: %w", err)
	}

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case d, ok := <-msgs:
				if !ok {
					r.log.Warn("delivery channel closed")
					return
				}
				handleDelivery(ctx, d, local, r.log)
			}
		}
	}()

	return nil
}

func (r *RabbitMQ) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.conn.Close(); err != nil && err != amqp.ErrClosed {
		return fmt.Errorf("failed to close RabbitMQ connection: %w", err)
	}
	return nil
}

func decodeTask(body []byte) (tasks.Task, error) {
	var task tasks.Task
	if err := json.Unmarshal(body, &task); err != nil {
		return tasks.Task{}, fmt.Errorf("invalid task format: %w", err)
	}
	if !task.Kind.Valid() || task.ID == 0 {
		return tasks.Task{}, fmt.Errorf("invalid task %q", string(body))
	}
	return task, nil
}

// handleDelivery drops undecodable messages and requeues tasks the local
// dispatcher refuses.
func handleDelivery(ctx context.Context, d amqp.Delivery, local tasks.Dispatcher, log *zap.Logger) {
	task, err := decodeTask(d.Body)
	if err != nil {
		log.Warn("discarding message", zap.Error(err))
		if err := d.Reject(false); err != nil {
			log.Warn("failed to reject message", zap.Error(err))
		}
		return
	}

	if err := local.Dispatch(ctx, task); err != nil {
		log.Warn("local dispatch failed, requeueing", zap.Stringer("task", task), zap.Error(err))
		if err := d.Nack(false, true); err != nil {
			log.Warn("failed to nack message", zap.Error(err))
		}
		return
	}

	if err := d.Ack(false); err != nil {
		log.Warn("failed to ack message", zap.Error(err))
	}
}
