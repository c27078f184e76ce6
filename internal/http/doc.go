// Package http provides the HTTP client used to fetch cover images.
//
// The Client in this package handles:
//   - A browser-like User-Agent header, so image CDNs do not reject the requests
//   - A fixed per-request timeout
//   - Connection reuse across every download of a run
//   - File downloads with progress tracking
//
// # Basic Usage
//
//	client := http.NewClient(30*time.Second, http.DefaultUserAgent)
//
//	// Download a cover to disk
//	err := client.DownloadFile(ctx, imageURL, "MAL_Images/Trigun_6.jpg", nil)
//
// Any response outside the 2xx range is returned as a *StatusError.
//
// # Progress Tracking
//
// The ProgressWriter type can be used to wrap any io.Writer for progress tracking:
//
//	pw := &http.ProgressWriter{
//	    Writer:   file,
//	    Total:    contentLength,
//	    OnUpdate: func(written, total int64) { /* update UI */ },
//	}
package http
