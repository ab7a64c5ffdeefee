// Package snapshot renders the running dashboard in headless Chrome and
// saves a full-page PNG.
package snapshot

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/chromedp/chromedp"

	"ramen-dashboard/utils"
)

const (
	renderWait   = 4 * time.Second
	pageTimeout  = 60 * time.Second
	pngQuality   = 90
	windowWidth  = 1280
	windowHeight = 1600
)

// Capturer takes screenshots of a dashboard URL.
type Capturer struct {
	chromeBin string
	logger    *utils.Logger
	retry     *utils.RetryConfig
}

// New returns a Capturer. An empty chromeBin falls back to well-known
// install locations.
func New(chromeBin string, logger *utils.Logger) *Capturer {
	return &Capturer{
		chromeBin: findChromeBinary(chromeBin),
		logger:    logger,
		retry: &utils.RetryConfig{
			MaxAttempts: 2,
			BaseDelay:   2 * time.Second,
			Logger:      logger,
		},
	}
}

// Capture loads url, waits for the listings table and the client-side
// charts, and writes a PNG to path.
func (c *Capturer) Capture(ctx context.Context, url, path string) error {
	c.logger.Info("[snapshot] Using browser binary: %s", c.chromeBin)

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-setuid-sandbox", true),
		chromedp.WindowSize(windowWidth, windowHeight),
	)
	if c.chromeBin != "" {
		opts = append(opts, chromedp.ExecPath(c.chromeBin))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()

	var buf []byte
	err := c.retry.Do(ctx, "snapshot "+url, func() error {
		browserCtx, cancel := chromedp.NewContext(allocCtx, chromedp.WithLogf(func(string, ...interface{}) {}))
		defer cancel()
		browserCtx, cancelTimeout := context.WithTimeout(browserCtx, pageTimeout)
		defer cancelTimeout()

		if err := chromedp.Run(browserCtx,
			chromedp.Navigate(url),
			chromedp.WaitVisible("#listings", chromedp.ByID),
			chromedp.Sleep(renderWait),
			chromedp.FullScreenshot(&buf, pngQuality),
		); err != nil {
			return fmt.Errorf("chromedp screenshot: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("snapshot: create output dir: %w", err)
		}
	}
	if err := os.WriteFile(path, buf, 0644); err != nil {
		return fmt.Errorf("snapshot: write %q: %w", path, err)
	}
	c.logger.Info("[snapshot] Saved %d bytes to %s", len(buf), path)
	return nil
}

// findChromeBinary locates Chrome/Chromium binary.
func findChromeBinary(preferred string) string {
	if preferred != "" {
		return preferred
	}
	if bin := os.Getenv("CHROME_BIN"); bin != "" {
		return bin
	}

	names := []string{"google-chrome-stable", "google-chrome", "chromium", "chromium-browser"}
	for _, name := range names {
		if path, err := exec.LookPath(name); err == nil {
			return path
		}
	}

	paths := []string{
		"/usr/bin/google-chrome-stable",
		"/usr/bin/google-chrome",
		"/usr/bin/chromium-browser",
		"/usr/bin/chromium",
		"/snap/bin/chromium",
		"/opt/google/chrome/google-chrome",
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}

	return ""
}
