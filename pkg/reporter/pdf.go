package reporter

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/sirupsen/logrus"

	"github.com/amosWeiskopf/reportsmith/internal/config"
	"github.com/amosWeiskopf/reportsmith/internal/logger"
	"github.com/amosWeiskopf/reportsmith/internal/models"
)

const (
	defaultPageWidthPx = 1200
	cssPxPerInch       = 96.0
)

// PDFRenderer prints the HTML export through headless Chrome as a single
// page tall enough to hold the whole report
type PDFRenderer struct {
	reporter *Reporter
	execPath string
	widthPx  int
	timeout  time.Duration
	log      logrus.FieldLogger
}

// NewPDFRenderer creates a PDFRenderer. An empty chrome path lets chromedp
// find the browser.
func NewPDFRenderer(r *Reporter, cfg config.ExportConfig, log logrus.FieldLogger) *PDFRenderer {
	width := cfg.PageWidthPx
	if width <= 0 {
		width = defaultPageWidthPx
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = time.Minute
	}
	return &PDFRenderer{
		reporter: r,
		execPath: cfg.ChromePath,
		widthPx:  width,
		timeout:  timeout,
		log:      logger.OrNop(log),
	}
}

// Render returns the PDF bytes for doc
func (p *PDFRenderer) Render(ctx context.Context, doc *models.ReportDocument) ([]byte, error) {
	html, err := p.reporter.Render(doc, FormatHTML)
	if err != nil {
		return nil, err
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.WindowSize(p.widthPx, 800),
	)
	if p.execPath != "" {
		opts = append(opts, chromedp.ExecPath(p.execPath))
	}
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()

	taskCtx, cancelTask := chromedp.NewContext(allocCtx)
	defer cancelTask()
	taskCtx, cancelTimeout := context.WithTimeout(taskCtx, p.timeout)
	defer cancelTimeout()

	start := time.Now()
	var height float64
	var pdf []byte
	err = chromedp.Run(taskCtx,
		emulation.SetDeviceMetricsOverride(int64(p.widthPx), 800, 1, false),
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			tree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(tree.Frame.ID, html).Do(ctx)
		}),
		chromedp.WaitReady("#report-export", chromedp.ByID),
		chromedp.Evaluate(`document.documentElement.scrollHeight`, &height),
		chromedp.ActionFunc(func(ctx context.Context) error {
			buf, _, err := page.PrintToPDF().
				WithPrintBackground(true).
				WithPaperWidth(float64(p.widthPx) / cssPxPerInch).
				WithPaperHeight((height + 1) / cssPxPerInch).
				WithMarginTop(0).
				WithMarginBottom(0).
				WithMarginLeft(0).
				WithMarginRight(0).
				WithPageRanges("1").
				Do(ctx)
			if err != nil {
				return err
			}
			pdf = buf
			return nil
		}),
	)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("pdf export timed out after %s: %w", p.timeout, err)
		}
		return nil, fmt.Errorf("pdf export: %w", err)
	}

	p.log.WithFields(logrus.Fields{
		"report":   doc.ID,
		"height":   height,
		"bytes":    len(pdf),
		"duration": time.Since(start),
	}).Info("PDF exported")
	return pdf, nil
}
