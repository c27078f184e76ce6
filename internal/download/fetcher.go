package download

import (
	"context"
	"log/slog"
	"time"
)

// Downloader writes the body of a URL to a local file.
// *http.Client satisfies it.
type Downloader interface {
	DownloadFile(ctx context.Context, url, destPath string, onProgress func(written, total int64)) error
}

// Fetcher downloads a single image, retrying with exponential backoff.
type Fetcher struct {
	client Downloader
	delay  func(attempt int) time.Duration
	sleep  func(ctx context.Context, d time.Duration) error
	logger *slog.Logger
}

// NewFetcher creates a Fetcher. delay gives the wait after a failed
// 0-indexed attempt.
func NewFetcher(client Downloader, delay func(attempt int) time.Duration, logger *slog.Logger) *Fetcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Fetcher{
		client: client,
		delay:  delay,
		sleep:  waitForRetry,
		logger: logger,
	}
}

// Fetch downloads url to destPath, making up to maxAttempts attempts.
//
// Every error is retried; there is no wait after the last attempt.
// When all attempts fail a *RetryError carrying the last error is
// returned. Cancelling ctx stops the loop and returns ctx.Err().
func (f *Fetcher) Fetch(ctx context.Context, url, destPath string, maxAttempts int, onProgress func(written, total int64)) error {
	if maxAttempts <= 0 {
		return ErrMaxRetries
	}

	var lastErr error
	for tries := 0; tries < maxAttempts; tries++ {
		err := f.client.DownloadFile(ctx, url, destPath, onProgress)
		if err == nil {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		lastErr = err

		if tries == maxAttempts-1 {
			break
		}

		wait := f.delay(tries)
		f.logger.Debug("download attempt failed",
			"url", url,
			"attempt", tries+1,
			"max_attempts", maxAttempts,
			"retry_in", wait,
			"error", err)
		if err := f.sleep(ctx, wait); err != nil {
			return err
		}
	}

	return &RetryError{Attempts: maxAttempts, Err: lastErr}
}

func waitForRetry(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
