package wishlist

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/chromedp/cdproto/browser"
	"github.com/chromedp/chromedp"
)

const (
	exportFileName       = "goodreads_library_export.csv"
	exportPollInterval   = 3 * time.Second
	downloadPollInterval = 2 * time.Second
	defaultExportTimeout = 5 * time.Minute
)

// chromedp entry points are vars so tests can stub the browser away
var (
	chromedpExecAllocator = chromedp.NewExecAllocator
	chromedpContext       = chromedp.NewContext
	chromedpRunner        = chromedp.Run
)

// ExportOptions configures the browser-driven library export.
type ExportOptions struct {
	Email       string
	Password    string
	DownloadDir string
	Headless    bool
	Timeout     time.Duration
}

// ExportLibrary logs in to Goodreads with a real browser, requests a library
// export and downloads the CSV. Returns the path of the downloaded file,
// ready for LoadCSV.
func ExportLibrary(parentCtx context.Context, opts ExportOptions) (string, error) {
	if opts.Email == "" || opts.Password == "" {
		return "", errors.New("export requires both email and password")
	}

	timeout := opts.Timeout
	if timeout == 0 {
		timeout = defaultExportTimeout
	}
	ctx, cancel := context.WithTimeout(parentCtx, timeout)
	defer cancel()

	downloadDir, cleanup, err := prepareDownloadDir(opts.DownloadDir)
	if err != nil {
		return "", err
	}
	if cleanup != nil {
		defer cleanup()
	}

	allocCtx, cancelAllocator := chromedpExecAllocator(ctx, allocatorOptions(opts)...)
	defer cancelAllocator()
	browserCtx, cancelBrowser := chromedpContext(allocCtx)
	defer cancelBrowser()

	setDownloads := browser.SetDownloadBehavior(browser.SetDownloadBehaviorBehaviorAllow).
		WithDownloadPath(downloadDir).
		WithEventsEnabled(true)
	if err := chromedpRunner(browserCtx, setDownloads); err != nil {
		return "", fmt.Errorf("failed to configure download directory: %w", err)
	}

	if err := login(browserCtx, opts); err != nil {
		return "", err
	}
	if err := requestExport(browserCtx); err != nil {
		return "", err
	}

	link, err := waitForExportLink(browserCtx)
	if err != nil {
		return "", err
	}
	if err := chromedpRunner(browserCtx, chromedp.Navigate(link)); err != nil {
		return "", fmt.Errorf("failed to start export download: %w", err)
	}

	downloaded, err := waitForDownload(browserCtx, downloadDir)
	if err != nil {
		return "", err
	}

	final, err := moveExport(downloaded, opts.DownloadDir)
	if err != nil {
		return "", err
	}
	slog.Info("Library export downloaded", "path", final)
	return final, nil
}

func allocatorOptions(opts ExportOptions) []chromedp.ExecAllocatorOption {
	return []chromedp.ExecAllocatorOption{
		chromedp.NoDefaultBrowserCheck,
		chromedp.NoFirstRun,
		chromedp.Flag("headless", opts.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-sync", true),
		chromedp.Flag("mute-audio", true),
		chromedp.Flag("disable-default-apps", true),
	}
}

func prepareDownloadDir(path string) (string, func(), error) {
	if path != "" {
		if err := os.MkdirAll(path, 0755); err != nil {
			return "", nil, fmt.Errorf("failed to create download directory: %w", err)
		}
		return filepath.Clean(path), nil, nil
	}
	tmpDir, err := os.MkdirTemp("", "goodreader-export-*")
	if err != nil {
		return "", nil, fmt.Errorf("failed to create temporary download directory: %w", err)
	}
	return tmpDir, func() { _ = os.RemoveAll(tmpDir) }, nil
}

func login(ctx context.Context, opts ExportOptions) error {
	slog.Info("Logging in to Goodreads", "email", opts.Email)

	tasks := chromedp.Tasks{
		chromedp.Navigate("https://www.goodreads.com/user/sign_in"),
		// The email form hides behind the Amazon SSO buttons
		chromedp.WaitVisible(`//button[contains(., "Sign in with email")]`, chromedp.BySearch),
		chromedp.Click(`//button[contains(., "Sign in with email")]`, chromedp.BySearch),
		chromedp.WaitVisible(`input[name="email"]`, chromedp.ByQuery),
		chromedp.SendKeys(`input[name="email"]`, opts.Email, chromedp.ByQuery),
		chromedp.WaitVisible(`input[name="password"]`, chromedp.ByQuery),
		chromedp.SendKeys(`input[name="password"]`, opts.Password, chromedp.ByQuery),
		chromedp.Click(`//button[@type="submit" or contains(., "Sign in")] | //input[@type="submit" and (@name="signIn" or @id="signInSubmit")]`, chromedp.BySearch),
		chromedp.WaitVisible(`.siteHeader__topLevelItem--profile`, chromedp.ByQuery),
	}
	if err := chromedpRunner(ctx, tasks...); err != nil {
		return fmt.Errorf("failed to log in to Goodreads: %w", err)
	}
	return nil
}

func requestExport(ctx context.Context) error {
	slog.Info("Requesting library export")

	tasks := chromedp.Tasks{
		chromedp.Navigate("https://www.goodreads.com/review/import"),
		chromedp.WaitVisible(`//input[@value='Export Library']`, chromedp.BySearch),
		chromedp.Click(`//input[@value='Export Library']`, chromedp.BySearch),
	}
	if err := chromedpRunner(ctx, tasks...); err != nil {
		return fmt.Errorf("failed to request library export: %w", err)
	}
	return nil
}

func waitForExportLink(ctx context.Context) (string, error) {
	start := time.Now()
	ticker := time.NewTicker(exportPollInterval)
	defer ticker.Stop()

	for {
		var link string
		err := chromedpRunner(ctx, chromedp.Evaluate(`
			(() => {
				const link = document.querySelector('a[href*="goodreads_library_export.csv"]');
				return link ? link.href : "";
			})()
		`, &link))
		if err != nil {
			return "", fmt.Errorf("failed to check export link: %w", err)
		}
		if link != "" {
			slog.Info("Export link ready", "waited", time.Since(start))
			return link, nil
		}

		select {
		case <-ctx.Done():
			return "", fmt.Errorf("timed out waiting for export link: %w", ctx.Err())
		case <-ticker.C:
		}
		if err := chromedpRunner(ctx, chromedp.Reload()); err != nil {
			slog.Debug("Failed to refresh export page", "error", err)
		}
	}
}

func waitForDownload(ctx context.Context, downloadDir string) (string, error) {
	start := time.Now()
	ticker := time.NewTicker(downloadPollInterval)
	defer ticker.Stop()

	for {
		path, found, err := findDownloadedCSV(downloadDir)
		if err != nil {
			return "", err
		}
		if found {
			slog.Info("Export download completed", "path", path, "waited", time.Since(start))
			return path, nil
		}

		select {
		case <-ctx.Done():
			return "", fmt.Errorf("timed out waiting for export download: %w", ctx.Err())
		case <-ticker.C:
		}
	}
}

func findDownloadedCSV(downloadDir string) (string, bool, error) {
	entries, err := os.ReadDir(downloadDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to read download directory: %w", err)
	}
	for _, entry := range entries {
		name := entry.Name()
		if strings.Contains(name, exportFileName) && strings.HasSuffix(name, ".csv") {
			return filepath.Join(downloadDir, name), true, nil
		}
	}
	return "", false, nil
}

func moveExport(downloadedPath, requestedDir string) (string, error) {
	targetDir := requestedDir
	if targetDir == "" {
		targetDir = "exports"
	}
	if err := os.MkdirAll(targetDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create target directory: %w", err)
	}

	targetPath := filepath.Join(targetDir, exportFileName)
	if downloadedPath == targetPath {
		return targetPath, nil
	}
	if err := os.Rename(downloadedPath, targetPath); err != nil {
		return "", fmt.Errorf("failed to move downloaded export: %w", err)
	}
	return targetPath, nil
}
