package worker

import (
	"context"
	"go_lan_speed/client/comms"
	"go_lan_speed/report"
	"sync"
)

// Task is run once per connection of a round
type Task[R any] func(ctx context.Context, worker int) R

// StartWorkers runs task on n goroutines, numbered from 1.
// Results are delivered in completion order and the channel is closed once every worker returned.
func StartWorkers[R any](ctx context.Context, n int, task Task[R]) <-chan R {
	results := make(chan R, max(n, 0))

	var wg sync.WaitGroup
	for i := 1; i <= n; i++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			results <- task(ctx, worker)
		}(i)
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	return results
}

// StartTCP starts n TCP downloads of size bytes from offer
func StartTCP(ctx context.Context, n int, offer comms.Offer, size uint64, opts comms.Options) <-chan report.TCPResult {
	addr := offer.TCPAddr()
	return StartWorkers(ctx, n, func(ctx context.Context, worker int) report.TCPResult {
		return comms.TCPDownload(ctx, worker, addr, size, opts)
	})
}

// StartUDP starts n UDP downloads of size bytes from offer
func StartUDP(ctx context.Context, n int, offer comms.Offer, size uint64, opts comms.Options) <-chan report.UDPResult {
	addr := offer.UDPAddr()
	return StartWorkers(ctx, n, func(ctx context.Context, worker int) report.UDPResult {
		return comms.UDPDownload(ctx, worker, addr, size, opts)
	})
}
