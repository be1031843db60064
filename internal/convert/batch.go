package convert

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"sync"

	"github.com/schollz/progressbar/v3"

	"pdf2x/internal/llamaparse"
)

// Job is one input/output pair in a batch conversion.
type Job struct {
	Input     string
	OutputKey string
}

// RunBatch converts all jobs with a pool of worker goroutines. Every job is
// attempted; the returned error aggregates the per-file failures.
func RunBatch(ctx context.Context, converter *Converter, jobs []Job, format llamaparse.Format, concurrency int) error {
	if concurrency <= 0 {
		concurrency = runtime.NumCPU()
		slog.Info("concurrency not specified or invalid, defaulting to number of CPUs", "concurrency", concurrency)
	}
	if concurrency > len(jobs) {
		concurrency = len(jobs)
	}

	bar := progressbar.NewOptions(len(jobs),
		progressbar.OptionSetDescription("converting"),
		progressbar.OptionSetWidth(30),
		progressbar.OptionClearOnFinish(),
	)

	queue := make(chan int)
	errs := make([]error, len(jobs))
	var wg sync.WaitGroup

	wg.Add(concurrency)
	for w := 0; w < concurrency; w++ {
		go func() {
			defer wg.Done()
			for i := range queue {
				job := jobs[i]
				errs[i] = converter.Convert(ctx, job.Input, job.OutputKey, format)
				_ = bar.Add(1)
			}
		}()
	}

	for i := range jobs {
		select {
		case <-ctx.Done():
			close(queue)
			wg.Wait()
			return ctx.Err()
		case queue <- i:
		}
	}
	close(queue)
	wg.Wait()

	var failed int
	for i, err := range errs {
		if err != nil {
			failed++
			slog.Error("conversion failed", "input", jobs[i].Input, "error", err)
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d conversions failed", failed, len(jobs))
	}

	return nil
}
