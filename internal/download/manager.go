package download

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/handiism/mal-image-downloader/internal/config"
	"github.com/handiism/mal-image-downloader/internal/http"
	ioutils "github.com/handiism/mal-image-downloader/internal/io"
	"github.com/handiism/mal-image-downloader/internal/mal"
	"github.com/handiism/mal-image-downloader/internal/model"
	"golang.org/x/sync/errgroup"
)

// ProgressLevel indicates the severity/type of a progress message.
type ProgressLevel int

const (
	LevelInfo ProgressLevel = iota
	LevelVerbose
	LevelWarning
	LevelError
	LevelSuccess
)

// ProgressEvent represents a download progress update.
type ProgressEvent struct {
	Message string
	Level   ProgressLevel
}

// Summary is the outcome of a run.
type Summary struct {
	// Total counts every entry of the export, including skipped ones.
	Total     int
	Succeeded int
	Failed    int
	Skipped   int
}

// String returns the final tally line, e.g. "Downloaded: 2/3".
func (s *Summary) String() string {
	return fmt.Sprintf("Downloaded: %d/%d", s.Succeeded, s.Total)
}

// Manager coordinates cover downloads for one export.
type Manager struct {
	settings     *config.Settings
	httpClient   *http.Client
	fetcher      *Fetcher
	imageService *ioutils.ImageService
	logger       *slog.Logger

	export *mal.Export

	processed     int32
	succeeded     int32
	failed        int32
	skipped       int32
	receivedBytes int64

	onProgress func(ProgressEvent)
	mu         sync.Mutex
}

// NewManager creates a new download Manager. A nil logger uses slog.Default().
func NewManager(settings *config.Settings, logger *slog.Logger, onProgress func(ProgressEvent)) *Manager {
	if logger == nil {
		logger = slog.Default()
	}

	httpClient := http.NewClient(settings.RequestTimeout(), settings.UserAgent)
	return &Manager{
		settings:     settings,
		httpClient:   httpClient,
		fetcher:      NewFetcher(httpClient, settings.RetryDelay, logger),
		imageService: ioutils.NewImageService(),
		logger:       logger,
		onProgress:   onProgress,
	}
}

// Initialize parses the export at xmlPath.
//
// Parse failures, including a malformed document, are returned unchanged.
func (m *Manager) Initialize(ctx context.Context, xmlPath string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	export, err := mal.Parse(xmlPath)
	if err != nil {
		return err
	}
	m.export = export

	m.logger.Debug("parsed export", "path", xmlPath, "content_type", export.ContentType, "entries", len(export.Entries))
	m.progress(ProgressEvent{Message: fmt.Sprintf("Found %d %s entries", len(export.Entries), export.ContentType), Level: LevelInfo})
	return nil
}

// Entries returns the parsed entries in export order.
func (m *Manager) Entries() []*model.Entry {
	if m.export == nil {
		return nil
	}
	return m.export.Entries
}

// ContentType returns the classification of the parsed export.
func (m *Manager) ContentType() model.ContentType {
	if m.export == nil {
		return ""
	}
	return m.export.ContentType
}

// TargetPath returns where the entry's cover is saved.
func (m *Manager) TargetPath(entry *model.Entry) string {
	return filepath.Join(m.settings.OutputDir, entry.FileName(m.settings.TitleMaxLength))
}

// Run downloads the cover of every entry and returns the tally.
//
// Per-entry failures are reported through the progress callback and do
// not stop the run. An error is returned only if the output directory
// cannot be created or ctx is cancelled.
func (m *Manager) Run(ctx context.Context) (*Summary, error) {
	if m.export == nil {
		return nil, ErrNotInitialized
	}

	if err := ioutils.EnsureDir(m.settings.OutputDir); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	entries := m.export.Entries
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(m.settings.MaxConcurrentDownload)

	for i, entry := range entries {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			return m.processEntry(gctx, i+1, len(entries), entry)
		})
	}

	err := g.Wait()
	summary := m.summary()
	if err == nil {
		err = ctx.Err()
	}
	if err != nil {
		return summary, err
	}

	m.logger.Debug("run finished",
		"total", summary.Total,
		"succeeded", summary.Succeeded,
		"failed", summary.Failed,
		"skipped", summary.Skipped)
	return summary, nil
}

// GetProgress returns current run progress.
func (m *Manager) GetProgress() (processed, total, succeeded int32, received int64) {
	return atomic.LoadInt32(&m.processed), int32(len(m.Entries())),
		atomic.LoadInt32(&m.succeeded), atomic.LoadInt64(&m.receivedBytes)
}

func (m *Manager) summary() *Summary {
	return &Summary{
		Total:     len(m.Entries()),
		Succeeded: int(atomic.LoadInt32(&m.succeeded)),
		Failed:    int(atomic.LoadInt32(&m.failed)),
		Skipped:   int(atomic.LoadInt32(&m.skipped)),
	}
}

func (m *Manager) processEntry(ctx context.Context, idx, total int, entry *model.Entry) error {
	defer atomic.AddInt32(&m.processed, 1)

	m.progress(ProgressEvent{Message: fmt.Sprintf("[%d/%d] %s", idx, total, entry.Title), Level: LevelInfo})

	if !entry.HasImage() {
		atomic.AddInt32(&m.skipped, 1)
		m.progress(ProgressEvent{Message: "No image URL, skipped", Level: LevelVerbose})
		return nil
	}

	dest := m.TargetPath(entry)
	err := m.fetcher.Fetch(ctx, entry.ImageURL, dest, m.settings.DownloadMaxRetries, m.trackBytes())
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		atomic.AddInt32(&m.failed, 1)
		m.logger.Warn("download failed", "id", entry.ID, "url", entry.ImageURL, "error", err)
		m.progress(ProgressEvent{Message: fmt.Sprintf("Failed: %v", err), Level: LevelError})
		return nil
	}

	m.postProcess(ctx, dest)

	atomic.AddInt32(&m.succeeded, 1)
	m.progress(ProgressEvent{Message: "Downloaded", Level: LevelSuccess})
	return nil
}

// trackBytes returns a progress callback adding the bytes of one entry
// to the run total. A retry restarts its count from zero.
func (m *Manager) trackBytes() func(written, total int64) {
	var prev int64
	return func(written, total int64) {
		if written < prev {
			prev = 0
		}
		atomic.AddInt64(&m.receivedBytes, written-prev)
		prev = written
	}
}

// postProcess converts or resizes a saved cover when enabled.
// Failures keep the downloaded file as is.
func (m *Manager) postProcess(ctx context.Context, path string) {
	if !m.settings.ConvertCoverArtToJPG && !m.settings.CoverArtResize {
		return
	}

	if !m.settings.CoverArtResize {
		format, err := m.sniffFormat(path)
		if err != nil {
			m.progress(ProgressEvent{Message: fmt.Sprintf("Kept original %s: %v", filepath.Base(path), err), Level: LevelWarning})
			return
		}
		if format == "jpeg" {
			m.progress(ProgressEvent{Message: "Already JPEG, not converted", Level: LevelVerbose})
			return
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		m.progress(ProgressEvent{Message: fmt.Sprintf("Error reading %s: %v", filepath.Base(path), err), Level: LevelWarning})
		return
	}

	processed := data
	if m.settings.CoverArtResize {
		processed, err = m.imageService.ResizeImage(ctx, processed, m.settings.CoverArtMaxSize, m.settings.CoverArtMaxSize)
	} else {
		processed, err = m.imageService.ConvertToJPEG(ctx, processed)
	}
	if err != nil {
		m.progress(ProgressEvent{Message: fmt.Sprintf("Kept original %s: %v", filepath.Base(path), err), Level: LevelWarning})
		return
	}

	if err := ioutils.WriteFileAtomic(ctx, path, processed); err != nil {
		m.progress(ProgressEvent{Message: fmt.Sprintf("Error saving %s: %v", filepath.Base(path), err), Level: LevelWarning})
	}
}

func (m *Manager) sniffFormat(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer file.Close()
	return m.imageService.Format(file)
}

func (m *Manager) progress(event ProgressEvent) {
	if m.onProgress == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onProgress(event)
}
