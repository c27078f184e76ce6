// Package download provides the download orchestration logic for
// fetching cover images listed in a MyAnimeList export.
//
// # Manager
//
// The Manager coordinates the entire run:
//
//  1. Parse the export file
//  2. Create the output directory
//  3. Download each entry's cover, retrying failures
//  4. Optionally convert or resize the saved cover
//  5. Tally successes, failures and skipped entries
//
// # Basic Usage
//
//	manager := download.NewManager(settings, logger, func(event download.ProgressEvent) {
//	    fmt.Println(event.Message)
//	})
//
//	if err := manager.Initialize(ctx, "animelist.xml"); err != nil {
//	    log.Fatal(err)
//	}
//
//	summary, err := manager.Run(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(summary) // Downloaded: 12/14
//
// # Concurrency
//
// Entries are processed one at a time, in export order. Setting
// MaxConcurrentDownload above 1 downloads that many covers in parallel.
//
// # Retry Logic
//
// Failed downloads are retried with exponential backoff, configured via
// settings.DownloadMaxRetries, settings.DownloadRetryCooldown and
// settings.DownloadRetryExponent. The defaults wait 1s, 2s, 4s and 8s
// between five attempts.
package download
