package tasks

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/desertthunder/tally/internal/formatter"
	"github.com/desertthunder/tally/internal/models"
	"github.com/desertthunder/tally/internal/shared"
	"golang.org/x/time/rate"
)

// PageLoader fetches one page of records for export.
type PageLoader[R any] func(ctx context.Context, page, pageSize int) (models.PagedResult[R], error)

// ExportOpts contains configuration for bulk CSV exports.
type ExportOpts struct {
	OutputPath string  // Destination file (default: {entity}_export_{uuid}.csv)
	PageSize   int     // Records per fetched page (default: 200)
	NumWorkers int     // Concurrent page fetchers (default: 4, max: 8)
	RateLimit  float64 // Page fetches per second (default: 20)
}

// ExportResult summarizes a finished export.
type ExportResult struct {
	OutputPath   string
	TotalRecords int
	Pages        int
	Duration     time.Duration
}

// pageResult carries one fetched page back to the collector.
type pageResult[R any] struct {
	page  int
	items []R
	err   error
}

// ExportCSV walks every page of an entity and writes one CSV file.
//
// Page 1 is fetched up front to learn the record count, then a small worker
// pool fetches the remaining pages concurrently under a rate limiter so a
// big export cannot starve the interactive queries sharing the database.
// Pages are reassembled in order before writing. Progress updates stream
// over prog (which may be nil) for CLI display.
//
// Any failed page fails the whole export; a CSV with silent holes is worse
// than no file.
func ExportCSV[R any](
	ctx context.Context,
	prog chan<- ProgressUpdate,
	entity string,
	load PageLoader[R],
	header []string,
	record func(R) []string,
	opts ExportOpts,
) (*ExportResult, error) {
	if load == nil || record == nil {
		return nil, fmt.Errorf("%w: export loader and record mapper required", shared.ErrInvalidInput)
	}
	if entity == "" {
		entity = "records"
	}
	if opts.OutputPath == "" {
		opts.OutputPath = fmt.Sprintf("%s_export_%s.csv", entity, shared.GenerateID())
	}
	if opts.PageSize <= 0 {
		opts.PageSize = 200
	}
	if opts.NumWorkers <= 0 {
		opts.NumWorkers = 4
	}
	if opts.NumWorkers > 8 {
		opts.NumWorkers = 8
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = 20
	}

	start := time.Now()
	sendProgress(prog, countingUpdate(entity))

	first, err := load(ctx, 1, opts.PageSize)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch first page: %w", err)
	}

	totalPages := first.TotalPages()
	sendProgress(prog, countedUpdate(entity, first.TotalCount, totalPages))

	pages := make([][]R, totalPages)
	pages[0] = first.Items

	if totalPages > 1 {
		limiter := rate.NewLimiter(rate.Limit(opts.RateLimit), 1)

		jobs := make(chan int, totalPages-1)
		results := make(chan pageResult[R], totalPages-1)

		var wg sync.WaitGroup
		for i := 0; i < opts.NumWorkers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for page := range jobs {
					if err := limiter.Wait(ctx); err != nil {
						results <- pageResult[R]{page: page, err: err}
						continue
					}
					result, err := load(ctx, page, opts.PageSize)
					results <- pageResult[R]{page: page, items: result.Items, err: err}
				}
			}()
		}

		for page := 2; page <= totalPages; page++ {
			jobs <- page
		}
		close(jobs)

		go func() {
			wg.Wait()
			close(results)
		}()

		fetched := 1
		var firstErr error
		for res := range results {
			fetched++
			if res.err != nil {
				sendProgress(prog, pageFailedUpdate(fetched, totalPages, res.page, res.err))
				if firstErr == nil {
					firstErr = fmt.Errorf("failed to fetch page %d: %w", res.page, res.err)
				}
				continue
			}
			pages[res.page-1] = res.items
			sendProgress(prog, pageFetchedUpdate(fetched, totalPages, res.page))
		}
		if firstErr != nil {
			return nil, firstErr
		}
	}

	records := make([][]string, 0, first.TotalCount)
	for _, items := range pages {
		for _, item := range items {
			records = append(records, record(item))
		}
	}

	var buf bytes.Buffer
	if err := formatter.WriteCSV(&buf, header, records); err != nil {
		return nil, err
	}
	if err := os.WriteFile(opts.OutputPath, buf.Bytes(), 0644); err != nil {
		return nil, fmt.Errorf("failed to write export file: %w", err)
	}

	sendProgress(prog, wroteFileUpdate(opts.OutputPath, len(records)))

	return &ExportResult{
		OutputPath:   opts.OutputPath,
		TotalRecords: len(records),
		Pages:        totalPages,
		Duration:     time.Since(start),
	}, nil
}
