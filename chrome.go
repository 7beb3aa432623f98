package html2pdf

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"go.uber.org/zap"

	"github.com/alnah/go-html2pdf/internal/process"
)

// DefaultPageLoadTimeout bounds how long Chrome waits for the document to load
// when the context carries no deadline.
const DefaultPageLoadTimeout = 30 * time.Second

// Media types passed to Chrome's media emulation.
const (
	mediaPrint  = "print"
	mediaScreen = "screen"
)

// ChromeOptions configures the local Chrome backend.
type ChromeOptions struct {
	BrowserBin string        // explicit Chrome binary, skips lookup
	NoSandbox  bool          // required in most containers and CI runners
	Timeout    time.Duration // page load timeout, DefaultPageLoadTimeout when zero
}

// chromeRequest is what a renderer needs to print one page.
type chromeRequest struct {
	PDF   *proto.PagePrintToPDF
	CSS   string
	Media string
}

// chromeRenderer abstracts the browser so backend tests run without Chrome.
type chromeRenderer interface {
	RenderFromFile(ctx context.Context, filePath string, req chromeRequest) ([]byte, error)
	Close() error
}

// Compile-time interface checks.
var (
	_ Backend        = (*ChromeBackend)(nil)
	_ Installer      = (*ChromeBackend)(nil)
	_ io.Closer      = (*ChromeBackend)(nil)
	_ chromeRenderer = (*rodRenderer)(nil)
)

// ChromeBackend prints documents with a local headless Chrome driven by rod.
type ChromeBackend struct {
	opts     ChromeOptions
	logger   *zap.Logger
	renderer chromeRenderer

	// Lookups, replaced in tests.
	lookPath    func() (string, bool)
	managedPath func() string
	download    func(ctx context.Context) (string, error)
}

// NewChromeBackend creates the rod-based backend. Nothing is launched until
// the first Render.
func NewChromeBackend(opts ChromeOptions, logger *zap.Logger) *ChromeBackend {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultPageLoadTimeout
	}
	b := &ChromeBackend{
		opts:        opts,
		logger:      logger,
		lookPath:    launcher.LookPath,
		managedPath: func() string { return launcher.NewBrowser().BinPath() },
		download:    downloadChromium,
	}
	b.renderer = &rodRenderer{opts: opts, resolveBin: b.resolveBin, logger: logger}
	return b
}

// Name implements Backend.
func (b *ChromeBackend) Name() string { return BackendChrome }

// Probe reports Available when a browser binary can be found, Installable
// when rod can download Chromium. An explicit binary that does not exist
// is Unavailable: downloading would not fix the configuration.
func (b *ChromeBackend) Probe(_ context.Context) Availability {
	if b.opts.BrowserBin != "" {
		if isExecutableFile(b.opts.BrowserBin) {
			return Available
		}
		return Unavailable
	}
	if b.resolveBin() != "" {
		return Available
	}
	return Installable
}

// Install downloads rod's managed Chromium. It is a no-op when a browser is
// already available.
func (b *ChromeBackend) Install(ctx context.Context) error {
	if b.opts.BrowserBin != "" {
		return fmt.Errorf("%w: browser binary %s is configured explicitly", ErrInstallUnsupported, b.opts.BrowserBin)
	}
	if b.resolveBin() != "" {
		return nil
	}
	path, err := b.download(ctx)
	if err != nil {
		return fmt.Errorf("downloading Chromium: %w", err)
	}
	b.logger.Info("chromium downloaded", zap.String("path", path))
	return nil
}

// Render prints the input document with the translated format.
func (b *ChromeBackend) Render(ctx context.Context, job Job) ([]byte, error) {
	f := formatOrDefault(job.Format)
	return b.renderer.RenderFromFile(ctx, job.InputPath, chromeRequest{
		PDF:   chromePrintOptions(f),
		CSS:   buildPrintCSS(f),
		Media: chromeMedia(f),
	})
}

// Close shuts down the browser if one was launched.
func (b *ChromeBackend) Close() error {
	return b.renderer.Close()
}

// resolveBin returns the browser to launch: explicit, system, then rod's
// managed download. Empty when none exists.
func (b *ChromeBackend) resolveBin() string {
	if b.opts.BrowserBin != "" {
		return b.opts.BrowserBin
	}
	if path, ok := b.lookPath(); ok {
		return path
	}
	if path := b.managedPath(); path != "" && isExecutableFile(path) {
		return path
	}
	return ""
}

// chromePrintOptions translates the format to Chrome's print parameters.
// Paper size and margins are in inches.
func chromePrintOptions(f *Format) *proto.PagePrintToPDF {
	paper := f.paper()
	opts := &proto.PagePrintToPDF{
		PaperWidth:      floatPtr(paper.width),
		PaperHeight:     floatPtr(paper.height),
		MarginTop:       floatPtr(f.Margins.Top.Inches()),
		MarginRight:     floatPtr(f.Margins.Right.Inches()),
		MarginBottom:    floatPtr(f.Margins.Bottom.Inches()),
		MarginLeft:      floatPtr(f.Margins.Left.Inches()),
		PrintBackground: true,
	}

	if f.hasHeaderFooter() {
		opts.DisplayHeaderFooter = true
		opts.HeaderTemplate = buildChromeTemplate(f.HeaderText, f.HeaderFontSize)
		opts.FooterTemplate = buildChromeTemplate(f.FooterText, f.FooterFontSize)
	}

	return opts
}

func chromeMedia(f *Format) string {
	if f.PrintMediaCSS {
		return mediaPrint
	}
	return mediaScreen
}

// floatPtr returns a pointer to a float64 value.
func floatPtr(v float64) *float64 {
	return &v
}

func isExecutableFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

func downloadChromium(ctx context.Context) (string, error) {
	browser := launcher.NewBrowser()
	browser.Context = ctx
	return browser.Get()
}

// rodRenderer implements chromeRenderer with a lazily launched browser.
type rodRenderer struct {
	opts       ChromeOptions
	resolveBin func() string
	logger     *zap.Logger

	mu       sync.Mutex
	launcher *launcher.Launcher
	browser  *rod.Browser
}

// ensureBrowser launches Chrome on first use. The browser outlives the
// attempt context and is released by Close.
func (r *rodRenderer) ensureBrowser() (*rod.Browser, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.browser != nil {
		return r.browser, nil
	}

	l := launcher.New().Headless(true)
	if bin := r.resolveBin(); bin != "" {
		l = l.Bin(bin)
	}
	if r.opts.NoSandbox {
		l = l.NoSandbox(true)
	}

	u, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}

	browser := rod.New().ControlURL(u)
	if err := browser.Connect(); err != nil {
		l.Kill()
		return nil, fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}

	r.logger.Debug("chrome launched", zap.Int("pid", l.PID()))
	r.launcher = l
	r.browser = browser
	return browser, nil
}

// fileURL builds a file:// URL for an absolute path. Characters such as
// '#', '?' and '%' are escaped so they stay part of the file name.
func fileURL(path string) string {
	p := filepath.ToSlash(path)
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return (&url.URL{Scheme: "file", Path: p}).String()
}

// RenderFromFile opens a local HTML file in headless Chrome and prints it.
func (r *rodRenderer) RenderFromFile(ctx context.Context, filePath string, req chromeRequest) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	browser, err := r.ensureBrowser()
	if err != nil {
		return nil, err
	}

	page, err := browser.Page(proto.TargetCreateTarget{URL: fileURL(filePath)})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPageCreate, err)
	}
	defer func() { _ = page.Close() }()

	timeout := r.opts.Timeout
	if deadline, ok := ctx.Deadline(); ok {
		timeout = time.Until(deadline)
		if timeout <= 0 {
			return nil, context.DeadlineExceeded
		}
	}

	p := page.Context(ctx)
	if err := p.Timeout(timeout).WaitLoad(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPageLoad, err)
	}

	if err := (proto.EmulationSetEmulatedMedia{Media: req.Media}).Call(p); err != nil {
		return nil, fmt.Errorf("%w: emulating %s media: %v", ErrPageLoad, req.Media, err)
	}

	if req.CSS != "" {
		if err := p.AddStyleTag("", req.CSS); err != nil {
			return nil, fmt.Errorf("%w: injecting print stylesheet: %v", ErrPageLoad, err)
		}
	}

	reader, err := p.PDF(req.PDF)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPDFGeneration, err)
	}

	pdf, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("%w: reading PDF stream: %v", ErrPDFGeneration, err)
	}
	return pdf, nil
}

// Close disconnects from the browser and kills its process group.
func (r *rodRenderer) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.browser == nil {
		return nil
	}

	err := r.browser.Close()
	if pid := r.launcher.PID(); pid > 0 {
		if termErr := process.Terminate(pid); termErr != nil {
			r.logger.Debug("terminating chrome process group", zap.Int("pid", pid), zap.Error(termErr))
		}
	}
	r.launcher.Kill()
	r.launcher.Cleanup()

	r.browser = nil
	r.launcher = nil
	return err
}
