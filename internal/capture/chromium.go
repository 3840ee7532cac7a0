package capture

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"

	appLog "prodcal/internal/log"
)

// Default capture parameters. The preview viewport fits one landscape month
// per screen of the /calendar page.
const (
	DefaultWidth      = 1400
	DefaultHeight     = 1000
	DefaultTimeoutSec = 30
)

// readySelector is exposed by rendered pages once layout is complete.
const readySelector = `[data-ready="true"]`

var (
	ErrNoURL    = errors.New("capture: URL is required")
	ErrNoOutput = errors.New("capture: OutputPath is required")
	ErrNoHTML   = errors.New("capture: HTML document is empty")
)

// CaptureOptions defines parameters for a PNG preview capture.
type CaptureOptions struct {
	// URL to capture, e.g. "http://127.0.0.1:8080/calendar?year=2026".
	URL string
	// OutputPath is where the PNG screenshot is written.
	OutputPath string

	// Width and Height are the viewport dimensions in pixels. Zero means
	// DefaultWidth / DefaultHeight.
	Width  int
	Height int

	// Timeout bounds the whole capture. Zero means DefaultTimeoutSec.
	Timeout time.Duration
	// ExecPath overrides the Chromium binary chromedp would otherwise find.
	ExecPath string
}

func (o *CaptureOptions) normalize() error {
	if o.URL == "" {
		return ErrNoURL
	}
	if o.OutputPath == "" {
		return ErrNoOutput
	}
	if o.Width <= 0 {
		o.Width = DefaultWidth
	}
	if o.Height <= 0 {
		o.Height = DefaultHeight
	}
	if o.Timeout <= 0 {
		o.Timeout = time.Duration(DefaultTimeoutSec) * time.Second
	}
	return nil
}

// PDFOptions controls printing an HTML document to PDF.
type PDFOptions struct {
	Timeout  time.Duration
	ExecPath string
	// Portrait switches off the default landscape orientation.
	Portrait bool
}

// newBrowser returns a chromedp context, using a custom allocator only when
// an explicit Chromium path is configured.
func newBrowser(parent context.Context, execPath string) (context.Context, context.CancelFunc) {
	if execPath == "" {
		return chromedp.NewContext(parent)
	}
	opts := append(chromedp.DefaultExecAllocatorOptions[:], chromedp.ExecPath(execPath))
	allocCtx, allocCancel := chromedp.NewExecAllocator(parent, opts...)
	ctx, cancel := chromedp.NewContext(allocCtx)
	return ctx, func() {
		cancel()
		allocCancel()
	}
}

// CaptureCalendarPNG navigates headless Chromium to opts.URL, waits for the
// page to report data-ready="true", and writes a full-page PNG screenshot.
func CaptureCalendarPNG(parentCtx context.Context, opts CaptureOptions) error {
	if err := opts.normalize(); err != nil {
		return err
	}

	ctx, cancel := newBrowser(parentCtx, opts.ExecPath)
	defer cancel()

	ctx, timeoutCancel := context.WithTimeout(ctx, opts.Timeout)
	defer timeoutCancel()

	var png []byte
	tasks := chromedp.Tasks{
		chromedp.EmulateViewport(int64(opts.Width), int64(opts.Height)),
		chromedp.Navigate(opts.URL),
		chromedp.WaitVisible(readySelector, chromedp.ByQuery),
		// Small extra delay to allow final paints.
		chromedp.Sleep(300 * time.Millisecond),
		chromedp.FullScreenshot(&png, 100),
	}

	if err := chromedp.Run(ctx, tasks); err != nil {
		return fmt.Errorf("capture: chromedp run failed: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(opts.OutputPath), 0o755); err != nil {
		return fmt.Errorf("capture: create output dir: %w", err)
	}
	if err := os.WriteFile(opts.OutputPath, png, 0o644); err != nil {
		return fmt.Errorf("capture: failed to write PNG: %w", err)
	}

	appLog.Info("preview captured", "url", opts.URL, "path", opts.OutputPath, "bytes", len(png))
	return nil
}

// PrintPDF loads an HTML document into headless Chromium and prints it,
// honouring the document's @page size. The document is served from a
// temporary file so relative styles resolve without a web server.
func PrintPDF(parentCtx context.Context, html []byte, opts PDFOptions) ([]byte, error) {
	if len(html) == 0 {
		return nil, ErrNoHTML
	}
	if opts.Timeout <= 0 {
		opts.Timeout = time.Duration(DefaultTimeoutSec) * time.Second
	}

	tmp, err := os.CreateTemp("", "prodcal-*.html")
	if err != nil {
		return nil, fmt.Errorf("capture: create temp document: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(html); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("capture: write temp document: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return nil, fmt.Errorf("capture: close temp document: %w", err)
	}

	ctx, cancel := newBrowser(parentCtx, opts.ExecPath)
	defer cancel()

	ctx, timeoutCancel := context.WithTimeout(ctx, opts.Timeout)
	defer timeoutCancel()

	var pdf []byte
	tasks := chromedp.Tasks{
		chromedp.Navigate("file://" + tmp.Name()),
		chromedp.WaitReady(readySelector, chromedp.ByQuery),
		chromedp.ActionFunc(func(ctx context.Context) error {
			buf, _, err := page.PrintToPDF().
				WithLandscape(!opts.Portrait).
				WithPrintBackground(true).
				WithPreferCSSPageSize(true).
				Do(ctx)
			if err != nil {
				return err
			}
			pdf = buf
			return nil
		}),
	}

	if err := chromedp.Run(ctx, tasks); err != nil {
		return nil, fmt.Errorf("capture: print to pdf failed: %w", err)
	}

	appLog.Debug("pdf printed", "bytes", len(pdf))
	return pdf, nil
}
