package main

import (
	"context"
	"fmt"

	"alfredoptarigan/cv-screening/internal/config"
	"alfredoptarigan/cv-screening/internal/queue"
	"alfredoptarigan/cv-screening/internal/services"
	"alfredoptarigan/cv-screening/internal/tasks"
)

// inlineDispatcher runs tasks synchronously in the calling goroutine. It is
// used when there is no broker shared with the API.
type inlineDispatcher map[tasks.Kind]services.TaskHandler

func (d inlineDispatcher) Dispatch(ctx context.Context, task tasks.Task) error {
	handler, ok := d[task.Kind]
	if !ok {
		return fmt.Errorf("no handler for task kind %q", task.Kind)
	}
	return handler(ctx, task.ID)
}

// newExtraction wires an extraction service whose re-extract requests go to
// RabbitMQ when configured, otherwise run inline. The returned func releases
// the broker connection.
func newExtraction(ctx context.Context, e *env) (*services.ExtractionService, func(), error) {
	storage, err := services.NewStorage(ctx, e.cfg.Storage)
	if err != nil {
		return nil, nil, err
	}

	if e.cfg.Queue.Driver == config.QueueDriverRabbitMQ {
		rabbit, err := queue.NewRabbitMQ(e.cfg.Queue.RabbitMQURL, e.cfg.Queue.QueueName, 1, e.log)
		if err != nil {
			return nil, nil, err
		}
		extraction := services.NewExtractionService(e.store, storage, services.NewExtractorRegistry(), rabbit, e.log)
		return extraction, func() { _ = rabbit.Close() }, nil
	}

	inline := inlineDispatcher{}
	extraction := services.NewExtractionService(e.store, storage, services.NewExtractorRegistry(), inline, e.log)
	inline[tasks.KindExtractDocument] = extraction.Extract
	inline[tasks.KindReextractDocument] = extraction.ForceExtract
	return extraction, func() {}, nil
}
