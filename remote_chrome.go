package html2pdf

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"
)

var _ Backend = (*RemoteChromeBackend)(nil)

// RemoteChromeBackend prints documents on a Chrome instance reached over the
// DevTools protocol, such as a browserless or chromedp/headless-shell
// container. The document is sent as content, so the remote browser needs
// no access to the local filesystem.
type RemoteChromeBackend struct {
	url    string
	logger *zap.Logger

	// print runs the DevTools session, replaced in tests.
	print func(ctx context.Context, remoteURL, document string, params *page.PrintToPDFParams, media string) ([]byte, error)
}

// NewRemoteChromeBackend creates a backend for the DevTools endpoint at
// remoteURL (ws:// or http://). An empty URL makes the backend unavailable.
func NewRemoteChromeBackend(remoteURL string, logger *zap.Logger) *RemoteChromeBackend {
	if logger == nil {
		logger = zap.NewNop()
	}
	b := &RemoteChromeBackend{url: strings.TrimSpace(remoteURL), logger: logger}
	b.print = b.printRemote
	return b
}

// Name implements Backend.
func (b *RemoteChromeBackend) Name() string { return BackendRemoteChrome }

// Probe reports Available when a well-formed endpoint URL is configured.
// Reachability is only known once a session is opened.
func (b *RemoteChromeBackend) Probe(_ context.Context) Availability {
	if b.url == "" {
		return Unavailable
	}
	u, err := url.Parse(b.url)
	if err != nil || u.Host == "" {
		return Unavailable
	}
	switch u.Scheme {
	case "ws", "wss", "http", "https":
		return Available
	default:
		return Unavailable
	}
}

// Render reads the document, injects the print stylesheet and prints it remotely.
func (b *RemoteChromeBackend) Render(ctx context.Context, job Job) ([]byte, error) {
	f := formatOrDefault(job.Format)

	content, err := job.ReadInput()
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %v", ErrPageLoad, job.InputPath, err)
	}

	document := injectStyle(string(content), buildPrintCSS(f))
	return b.print(ctx, b.url, document, remotePrintParams(f), chromeMedia(f))
}

// remotePrintParams mirrors chromePrintOptions for the cdproto API.
func remotePrintParams(f *Format) *page.PrintToPDFParams {
	paper := f.paper()
	params := page.PrintToPDF().
		WithPrintBackground(true).
		WithPaperWidth(paper.width).
		WithPaperHeight(paper.height).
		WithMarginTop(f.Margins.Top.Inches()).
		WithMarginRight(f.Margins.Right.Inches()).
		WithMarginBottom(f.Margins.Bottom.Inches()).
		WithMarginLeft(f.Margins.Left.Inches())

	if f.hasHeaderFooter() {
		params = params.
			WithDisplayHeaderFooter(true).
			WithHeaderTemplate(buildChromeTemplate(f.HeaderText, f.HeaderFontSize)).
			WithFooterTemplate(buildChromeTemplate(f.FooterText, f.FooterFontSize))
	}

	return params
}

func (b *RemoteChromeBackend) printRemote(ctx context.Context, remoteURL, document string, params *page.PrintToPDFParams, media string) ([]byte, error) {
	allocCtx, allocCancel := chromedp.NewRemoteAllocator(ctx, remoteURL)
	defer allocCancel()

	browserCtx, browserCancel := chromedp.NewContext(allocCtx,
		chromedp.WithLogf(func(format string, args ...any) {
			b.logger.Debug(fmt.Sprintf(format, args...))
		}),
	)
	defer browserCancel()

	var pdf []byte
	err := chromedp.Run(browserCtx,
		emulation.SetEmulatedMedia().WithMedia(media),
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			frameTree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return fmt.Errorf("%w: %v", ErrPageCreate, err)
			}
			if err := page.SetDocumentContent(frameTree.Frame.ID, document).Do(ctx); err != nil {
				return fmt.Errorf("%w: %v", ErrPageLoad, err)
			}
			return nil
		}),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.ActionFunc(func(ctx context.Context) error {
			data, _, err := params.Do(ctx)
			if err != nil {
				return fmt.Errorf("%w: %v", ErrPDFGeneration, err)
			}
			pdf = data
			return nil
		}),
	)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		if errors.Is(err, ErrPageCreate) || errors.Is(err, ErrPageLoad) || errors.Is(err, ErrPDFGeneration) {
			return nil, fmt.Errorf("%s: %w", remoteURL, err)
		}
		return nil, fmt.Errorf("%w: %s: %v", ErrBrowserConnect, remoteURL, err)
	}
	return pdf, nil
}
