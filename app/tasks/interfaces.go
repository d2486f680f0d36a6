package tasks

import "context"

// TaskSchedulerInterface defines the interface for task scheduling operations.
// Used by the main application to manage background task processing.
type TaskSchedulerInterface interface {
	Start()
	Stop()
	EnqueueTask(task TaskInterface) error
}

// CrawlerInterface is what the scheduler needs from the crawl service.
type CrawlerInterface interface {
	RunCycle(ctx context.Context) (int, error)
}
