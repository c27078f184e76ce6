package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/handiism/mal-image-downloader/internal/config"
	"github.com/handiism/mal-image-downloader/internal/download"
)

var version = "dev"

var (
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#95E1A3"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B"))
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFE66D"))
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#6C757D"))
	titleStyle   = lipgloss.NewStyle().Bold(true)
)

var rule = strings.Repeat("=", 60)

// errInterrupted maps to exit code 130.
var errInterrupted = errors.New("download cancelled")

type options struct {
	configPath  string
	saveConfig  string
	outputDir   string
	retries     int
	concurrency int
	convertJPG  bool
	resize      int
	dryRun      bool
	verbose     bool
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "mal-images <xml_file>",
		Short: "Download cover images from a MyAnimeList XML export",
		Long: `mal-images - download cover images from a MyAnimeList XML export

Reads an anime or manga list export and saves every entry's cover
image as <title>_<id>.jpg in the output directory (MAL_Images by default).
Exports whose file name contains "anime" are read as anime lists,
everything else as manga lists.`,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("expected exactly one XML file, got %d arguments", len(args))
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			return run(cmd, opts, args[0])
		},
		Version: version,
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.configPath, "config", "", "Path to settings file (.json, .toml, .yaml)")
	flags.StringVar(&opts.saveConfig, "save-config", "", "Write the effective settings to this file")
	flags.StringVarP(&opts.outputDir, "output", "o", "", "Output directory (default \"MAL_Images\")")
	flags.IntVar(&opts.retries, "retries", 0, "Attempts per image (default 5)")
	flags.IntVarP(&opts.concurrency, "concurrency", "j", 0, "Images downloaded in parallel (default 1)")
	flags.BoolVar(&opts.convertJPG, "convert-jpg", false, "Re-encode non-JPEG covers as JPEG")
	flags.IntVar(&opts.resize, "resize", 0, "Resize covers to fit within NxN pixels")
	flags.BoolVar(&opts.dryRun, "dry-run", false, "Parse the export without downloading")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "Show verbose output")

	cmd.SetVersionTemplate("mal-images {{.Version}}\n")
	return cmd
}

func run(cmd *cobra.Command, opts *options, xmlPath string) error {
	out := cmd.OutOrStdout()

	if _, err := os.Stat(xmlPath); err != nil {
		return fmt.Errorf("%s not found", xmlPath)
	}

	settings, err := loadSettings(cmd, opts)
	if err != nil {
		return err
	}

	if opts.saveConfig != "" {
		if err := settings.Save(opts.saveConfig); err != nil {
			return fmt.Errorf("saving config: %w", err)
		}
		fmt.Fprintln(out, dimStyle.Render("Settings saved to "+opts.saveConfig))
	}

	level := slog.LevelError
	if opts.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

	// Handle interrupts
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-sigCh:
			fmt.Fprintln(out, "\nInterrupted, cancelling...")
			cancel()
		case <-ctx.Done():
		}
	}()

	manager := download.NewManager(settings, logger, printer(out, opts.verbose))

	fmt.Fprintln(out, rule)
	fmt.Fprintln(out, titleStyle.Render("MyAnimeList XML Image Downloader"))
	fmt.Fprintln(out, rule)
	fmt.Fprintln(out)

	if err := manager.Initialize(ctx, xmlPath); err != nil {
		return err
	}

	if opts.dryRun {
		printPlan(out, manager)
		return nil
	}

	summary, err := manager.Run(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return errInterrupted
		}
		return err
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, rule)
	fmt.Fprintln(out, summary.String())
	if opts.verbose {
		fmt.Fprintln(out, dimStyle.Render(fmt.Sprintf("Failed: %d, skipped (no image URL): %d", summary.Failed, summary.Skipped)))
	}
	fmt.Fprintln(out, rule)
	return nil
}

// loadSettings reads the settings file, then applies flags that were set.
func loadSettings(cmd *cobra.Command, opts *options) (*config.Settings, error) {
	settings := config.DefaultSettings()
	if opts.configPath != "" {
		var err error
		settings, err = config.Load(opts.configPath)
		if err != nil {
			return nil, fmt.Errorf("loading config: %w", err)
		}
	}

	flags := cmd.Flags()
	if flags.Changed("output") {
		settings.OutputDir = opts.outputDir
	}
	if flags.Changed("retries") {
		settings.DownloadMaxRetries = opts.retries
	}
	if flags.Changed("concurrency") {
		settings.MaxConcurrentDownload = opts.concurrency
	}
	if opts.convertJPG {
		settings.ConvertCoverArtToJPG = true
	}
	if flags.Changed("resize") {
		settings.CoverArtResize = opts.resize > 0
		settings.CoverArtMaxSize = opts.resize
	}

	if err := settings.Validate(); err != nil {
		return nil, err
	}
	return settings, nil
}

func printer(out io.Writer, verbose bool) func(download.ProgressEvent) {
	return func(event download.ProgressEvent) {
		switch event.Level {
		case download.LevelVerbose:
			if !verbose {
				return
			}
			fmt.Fprintln(out, dimStyle.Render("    "+event.Message))
		case download.LevelSuccess:
			fmt.Fprintln(out, "  "+successStyle.Render("✓ "+event.Message))
		case download.LevelError:
			fmt.Fprintln(out, "  "+errorStyle.Render("✗ "+event.Message))
		case download.LevelWarning:
			fmt.Fprintln(out, "  "+warningStyle.Render("! "+event.Message))
		default:
			fmt.Fprintln(out, event.Message)
		}
	}
}

func printPlan(out io.Writer, manager *download.Manager) {
	entries := manager.Entries()
	fmt.Fprintln(out, "\n[Dry run - not downloading]")
	for i, entry := range entries {
		target := dimStyle.Render("(no image URL)")
		if entry.HasImage() {
			target = manager.TargetPath(entry)
		}
		fmt.Fprintf(out, "[%d/%d] %s -> %s\n", i+1, len(entries), entry.Title, target)
	}
}

func exitCode(err error) int {
	if errors.Is(err, errInterrupted) {
		return 130
	}
	return 1
}
