package generation

import (
	"context"
	"sync"

	"copydesk/internal/core"
	"copydesk/internal/logger"
)

// ItemResult is the outcome of one item in a batch run.
type ItemResult struct {
	Request  Request
	Content  core.GeneratedContent
	Attempts []core.GenerationAttempt
	Err      error
}

// GenerateBatch runs independent content items through the retry loop
// concurrently, capped at the given worker count so external-service quotas
// are respected. Retries within one item stay strictly sequential; one item
// failing never aborts the others. Results come back in input order.
func (o *Orchestrator) GenerateBatch(ctx context.Context, items []Request, workers int) []ItemResult {
	if workers <= 0 {
		workers = 1
	}
	if workers > len(items) {
		workers = len(items)
	}

	results := make([]ItemResult, len(items))
	indexes := make(chan int)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range indexes {
				content, attempts, err := o.GenerateWithRetry(ctx, items[i])
				results[i] = ItemResult{
					Request:  items[i],
					Content:  content,
					Attempts: attempts,
					Err:      err,
				}
				if err != nil {
					logger.Error("batch item failed", err, "keyword", items[i].Keyword)
				}
			}
		}()
	}

	for i := range items {
		indexes <- i
	}
	close(indexes)
	wg.Wait()

	return results
}
