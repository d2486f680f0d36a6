package tasks

import (
	"context"
	"fmt"
	"log/slog"
)

// CrawlCycleTask runs one incremental crawl over every enabled site.
type CrawlCycleTask struct {
	Task
	crawler CrawlerInterface
}

func NewCrawlCycleTask(crawler CrawlerInterface) *CrawlCycleTask {
	return &CrawlCycleTask{
		Task:    NewTask(TaskTypeCrawlCycle),
		crawler: crawler,
	}
}

func (t *CrawlCycleTask) Execute(ctx context.Context) error {
	inserted, err := t.crawler.RunCycle(ctx)
	if err != nil {
		return fmt.Errorf("crawl cycle failed: %w", err)
	}

	slog.Debug("Crawl cycle task completed", "inserted", inserted, "duration", t.GetDuration().String())

	return nil
}
